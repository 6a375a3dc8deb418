package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/joao-fontenele/maejang/internal/domain"
)

// MinSigningKeyLength matches the HS256 output size; shorter keys are refused at start-up.
const MinSigningKeyLength = 32

var (
	ErrMissingSigningKey = errors.New("token signing key is not configured")
	ErrWeakSigningKey    = fmt.Errorf("token signing key must be at least %d bytes", MinSigningKeyLength)
)

var (
	ErrMalformed        = errors.New("token is malformed")
	ErrInvalidSignature = errors.New("token signature is invalid")
	ErrExpired          = errors.New("token has expired")
	ErrInvalidClaim     = errors.New("token claim is invalid")
)

// Claims is the verified payload of an access token.
type Claims struct {
	Subject   string
	UserID    int64
	Role      domain.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

func (c Claims) Principal() domain.Principal {
	return domain.Principal{UserID: c.UserID, Email: c.Subject, Role: c.Role}
}

// TokenCodec issues and verifies HS256 access tokens. The key is fixed at
// construction and only read afterwards, so a codec is safe for concurrent use.
type TokenCodec struct {
	key []byte
	now func() time.Time
}

type CodecOption func(*TokenCodec)

// WithClock replaces the wall clock used for issuing and expiry checks.
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) {
		c.now = now
	}
}

func NewTokenCodec(key []byte, opts ...CodecOption) (*TokenCodec, error) {
	if len(key) == 0 {
		return nil, ErrMissingSigningKey
	}
	if len(key) < MinSigningKeyLength {
		return nil, ErrWeakSigningKey
	}

	c := &TokenCodec{
		key: append([]byte(nil), key...),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *TokenCodec) Issue(userID int64, subject string, role domain.Role, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", fmt.Errorf("%w: ttl must be positive", domain.ErrValidation)
	}

	now := c.now()
	claims := jwt.MapClaims{
		"sub":  subject,
		"uid":  userID,
		"role": string(role),
		"iat":  now.Unix(),
		"exp":  expiresAt(now, ttl),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.key)
}

// expiresAt rounds up to the next whole second so the token lives at least ttl.
func expiresAt(now time.Time, ttl time.Duration) int64 {
	exp := now.Add(ttl)
	if exp.Nanosecond() > 0 {
		return exp.Unix() + 1
	}
	return exp.Unix()
}

// Verify checks signature and expiry, reporting ErrMalformed, ErrInvalidSignature,
// ErrExpired or ErrInvalidClaim.
func (c *TokenCodec) Verify(tokenString string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithJSONNumber(),
		jwt.WithTimeFunc(c.now),
	)

	token, err := parser.Parse(tokenString, func(*jwt.Token) (interface{}, error) {
		return c.key, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
			return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		default:
			return nil, fmt.Errorf("%w: %v", ErrInvalidClaim, err)
		}
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrMalformed
	}

	return claimsFromMap(mapClaims)
}

func claimsFromMap(m jwt.MapClaims) (*Claims, error) {
	sub, err := m.GetSubject()
	if err != nil || sub == "" {
		return nil, fmt.Errorf("%w: sub", ErrInvalidClaim)
	}

	uid, err := parseUserID(m["uid"])
	if err != nil {
		return nil, err
	}

	rawRole, _ := m["role"].(string)
	role, err := domain.ParseRole(rawRole)
	if err != nil {
		return nil, fmt.Errorf("%w: role", ErrInvalidClaim)
	}

	claims := &Claims{Subject: sub, UserID: uid, Role: role}
	if iat, err := m.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	if exp, err := m.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return claims, nil
}

// parseUserID widens the uid claim from any of the encodings other issuers
// emit: 32/64-bit integers, JSON numbers, integral floats and numeric strings.
func parseUserID(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		if f, err := n.Float64(); err == nil {
			return integralFloat(f)
		}
	case float64:
		return integralFloat(n)
	case string:
		if i, err := strconv.ParseInt(n, 10, 64); err == nil {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: uid", ErrInvalidClaim)
}

func integralFloat(f float64) (int64, error) {
	if f != math.Trunc(f) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("%w: uid", ErrInvalidClaim)
	}
	return int64(f), nil
}
