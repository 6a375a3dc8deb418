package auth

import (
	_ "embed"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/joao-fontenele/maejang/internal/domain"
)

//go:embed policy.yaml
var defaultPolicyYAML []byte

type Access string

const (
	AccessPublic        Access = "public"
	AccessAuthenticated Access = "authenticated"
	AccessCustomer      Access = Access(domain.RoleCustomer)
	AccessOwner         Access = Access(domain.RoleOwner)
)

type DenyReason int

const (
	DenyNoCredential DenyReason = iota + 1
	DenyWrongRole
)

func (r DenyReason) String() string {
	switch r {
	case DenyNoCredential:
		return "no credential"
	case DenyWrongRole:
		return "wrong role"
	}
	return "unknown"
}

// Decision is either Allow or Deny with a reason.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

func Allow() Decision { return Decision{Allowed: true} }

func Deny(reason DenyReason) Decision { return Decision{Reason: reason} }

// Status is the HTTP status a denial maps to.
func (d Decision) Status() int {
	switch {
	case d.Allowed:
		return http.StatusOK
	case d.Reason == DenyNoCredential:
		return http.StatusUnauthorized
	default:
		return http.StatusForbidden
	}
}

// Rule binds a route pattern to the access it requires. Route is
// "METHOD /path" or "/path" for every method. Path segments may be literals,
// a "{name}" placeholder matching one segment, or a trailing "**" matching
// the rest of the path (including nothing).
type Rule struct {
	Route  string `yaml:"route"`
	Access Access `yaml:"access"`
}

type policyFile struct {
	Rules []Rule `yaml:"rules"`
}

type segmentKind int

const (
	segRest segmentKind = iota
	segEnd
	segParam
	segLiteral
)

type segment struct {
	kind  segmentKind
	value string
}

type compiledRule struct {
	method   string
	segments []segment
	access   Access
	route    string
}

// AccessPolicy is the route table deciding which role may reach which
// operation. More specific patterns win over catch-alls; a path no rule
// matches requires an authenticated caller.
type AccessPolicy struct {
	rules []compiledRule
}

// DefaultAccessPolicy loads the embedded route table.
func DefaultAccessPolicy() (*AccessPolicy, error) {
	return ParseAccessPolicy(defaultPolicyYAML)
}

func ParseAccessPolicy(data []byte) (*AccessPolicy, error) {
	var f policyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing access policy: %w", err)
	}
	return NewAccessPolicy(f.Rules)
}

func NewAccessPolicy(rules []Rule) (*AccessPolicy, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		c, err := compileRule(r)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, c)
	}

	sort.SliceStable(compiled, func(i, j int) bool {
		return moreSpecific(compiled[i], compiled[j])
	})

	return &AccessPolicy{rules: compiled}, nil
}

func compileRule(r Rule) (compiledRule, error) {
	switch r.Access {
	case AccessPublic, AccessAuthenticated, AccessCustomer, AccessOwner:
	default:
		return compiledRule{}, fmt.Errorf("route %q: unknown access %q", r.Route, r.Access)
	}

	method, path := "", strings.TrimSpace(r.Route)
	if before, after, ok := strings.Cut(path, " "); ok {
		method, path = strings.ToUpper(before), strings.TrimSpace(after)
	}
	if !strings.HasPrefix(path, "/") {
		return compiledRule{}, fmt.Errorf("route %q: path must start with /", r.Route)
	}

	parts := splitPath(path)
	segments := make([]segment, 0, len(parts))
	for i, p := range parts {
		switch {
		case p == "**":
			if i != len(parts)-1 {
				return compiledRule{}, fmt.Errorf("route %q: ** must be the last segment", r.Route)
			}
			segments = append(segments, segment{kind: segRest})
		case strings.HasPrefix(p, "{") && strings.HasSuffix(p, "}"):
			segments = append(segments, segment{kind: segParam, value: p})
		default:
			segments = append(segments, segment{kind: segLiteral, value: p})
		}
	}

	return compiledRule{method: method, segments: segments, access: r.Access, route: r.Route}, nil
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func (r compiledRule) kindAt(i int) segmentKind {
	if i < len(r.segments) {
		return r.segments[i].kind
	}
	return segEnd
}

func moreSpecific(a, b compiledRule) bool {
	n := max(len(a.segments), len(b.segments))
	for i := 0; i < n; i++ {
		ka, kb := a.kindAt(i), b.kindAt(i)
		if ka != kb {
			return ka > kb
		}
	}
	return a.method != "" && b.method == ""
}

func (r compiledRule) matches(method string, parts []string) bool {
	if r.method != "" && r.method != method {
		return false
	}
	for i, seg := range r.segments {
		if seg.kind == segRest {
			return true
		}
		if i >= len(parts) {
			return false
		}
		if seg.kind == segLiteral && seg.value != parts[i] {
			return false
		}
	}
	return len(parts) == len(r.segments)
}

// Requirement returns the access level the request needs.
func (p *AccessPolicy) Requirement(method, path string) Access {
	parts := splitPath(path)
	for _, r := range p.rules {
		if r.matches(method, parts) {
			return r.access
		}
	}
	return AccessAuthenticated
}

// Authorize decides whether principal (nil for anonymous) may call method on path.
func (p *AccessPolicy) Authorize(principal *domain.Principal, method, path string) Decision {
	required := p.Requirement(method, path)
	if required == AccessPublic {
		return Allow()
	}
	if principal == nil {
		return Deny(DenyNoCredential)
	}
	if required == AccessAuthenticated || Access(principal.Role) == required {
		return Allow()
	}
	return Deny(DenyWrongRole)
}
