package auth

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/maejang/internal/domain"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newTestCodec(t *testing.T, clock *fakeClock) *TokenCodec {
	t.Helper()
	codec, err := NewTokenCodec(testKey, WithClock(clock.Now))
	require.NoError(t, err)
	return codec
}

func TestNewTokenCodec_RequiresKey(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		_, err := NewTokenCodec(nil)
		assert.ErrorIs(t, err, ErrMissingSigningKey)
	})

	t.Run("short key", func(t *testing.T) {
		_, err := NewTokenCodec([]byte("short"))
		assert.ErrorIs(t, err, ErrWeakSigningKey)
	})
}

func TestTokenCodec_RoundTrip(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	codec := newTestCodec(t, clock)

	tests := []struct {
		id   int64
		role domain.Role
		ttl  time.Duration
	}{
		{1, domain.RoleCustomer, time.Second},
		{42, domain.RoleOwner, 6 * time.Hour},
		{1 << 40, domain.RoleCustomer, 24 * time.Hour},
	}

	for _, tt := range tests {
		token, err := codec.Issue(tt.id, "user@example.com", tt.role, tt.ttl)
		require.NoError(t, err)

		claims, err := codec.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, tt.id, claims.UserID)
		assert.Equal(t, tt.role, claims.Role)
		assert.Equal(t, "user@example.com", claims.Subject)
		assert.Equal(t, clock.now.Add(tt.ttl).Unix(), claims.ExpiresAt.Unix())
		assert.Equal(t, clock.now.Unix(), claims.IssuedAt.Unix())
	}
}

func TestTokenCodec_Issue_RejectsNonPositiveTTL(t *testing.T) {
	codec := newTestCodec(t, &fakeClock{now: time.Now()})

	_, err := codec.Issue(1, "a@example.com", domain.RoleCustomer, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTokenCodec_ExpiryBoundary(t *testing.T) {
	issuedAt := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := &fakeClock{now: issuedAt}
	codec := newTestCodec(t, clock)

	token, err := codec.Issue(7, "c@example.com", domain.RoleCustomer, time.Hour)
	require.NoError(t, err)

	clock.now = issuedAt.Add(time.Hour - time.Second)
	_, err = codec.Verify(token)
	assert.NoError(t, err, "one second before exp")

	clock.now = issuedAt.Add(time.Hour + time.Second)
	_, err = codec.Verify(token)
	assert.ErrorIs(t, err, ErrExpired, "one second after exp")
}

func TestTokenCodec_FractionalIssueTimeKeepsFullTTL(t *testing.T) {
	issuedAt := time.Date(2026, 5, 1, 12, 0, 0, 600*int(time.Millisecond), time.UTC)
	clock := &fakeClock{now: issuedAt}
	codec := newTestCodec(t, clock)

	token, err := codec.Issue(7, "c@example.com", domain.RoleCustomer, time.Hour)
	require.NoError(t, err)

	clock.now = issuedAt.Add(time.Hour - time.Millisecond)
	_, err = codec.Verify(token)
	assert.NoError(t, err)

	clock.now = issuedAt.Add(time.Hour + time.Second)
	_, err = codec.Verify(token)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestTokenCodec_DistinguishesFailures(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	codec := newTestCodec(t, clock)

	valid, err := codec.Issue(1, "a@example.com", domain.RoleOwner, time.Hour)
	require.NoError(t, err)

	other, err := NewTokenCodec([]byte("another-key-another-key-another-k"))
	require.NoError(t, err)
	foreign, err := other.Issue(1, "a@example.com", domain.RoleOwner, time.Hour)
	require.NoError(t, err)

	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"empty", "", ErrMalformed},
		{"garbage", "not-a-jwt", ErrMalformed},
		{"bad segments", "header.payload.signature", ErrMalformed},
		{"foreign key", foreign, ErrInvalidSignature},
		{"tampered signature", tampered, ErrInvalidSignature},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Verify(tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestTokenCodec_RejectsOtherAlgorithms(t *testing.T) {
	codec := newTestCodec(t, &fakeClock{now: time.Now()})

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"sub": "a@example.com", "uid": 1, "role": "OWNER",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(testKey)
	require.NoError(t, err)

	_, err = codec.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestTokenCodec_InvalidClaims(t *testing.T) {
	codec := newTestCodec(t, &fakeClock{now: time.Now()})
	exp := time.Now().Add(time.Hour).Unix()

	sign := func(claims jwt.MapClaims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testKey)
		require.NoError(t, err)
		return s
	}

	tests := []struct {
		name   string
		claims jwt.MapClaims
	}{
		{"missing uid", jwt.MapClaims{"sub": "a@example.com", "role": "OWNER", "exp": exp}},
		{"non numeric uid", jwt.MapClaims{"sub": "a@example.com", "uid": "abc", "role": "OWNER", "exp": exp}},
		{"fractional uid", jwt.MapClaims{"sub": "a@example.com", "uid": 1.5, "role": "OWNER", "exp": exp}},
		{"unknown role", jwt.MapClaims{"sub": "a@example.com", "uid": 1, "role": "ADMIN", "exp": exp}},
		{"missing sub", jwt.MapClaims{"uid": 1, "role": "OWNER", "exp": exp}},
		{"missing exp", jwt.MapClaims{"sub": "a@example.com", "uid": 1, "role": "OWNER"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Verify(sign(tt.claims))
			assert.ErrorIs(t, err, ErrInvalidClaim)
		})
	}
}

func TestParseUserID_Widening(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int64
	}{
		{"int32", int32(12), 12},
		{"int64", int64(1) << 40, 1 << 40},
		{"int", 9, 9},
		{"json number", json.Number("123456789012"), 123456789012},
		{"integral float", float64(77), 77},
		{"numeric string", "31", 31},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseUserID(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []any{nil, "x1", json.Number("1.25"), true} {
		_, err := parseUserID(bad)
		assert.ErrorIs(t, err, ErrInvalidClaim, "%v", bad)
	}
}

func TestTokenCodec_AcceptsStringUID(t *testing.T) {
	codec := newTestCodec(t, &fakeClock{now: time.Now()})

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "s@example.com", "uid": "5001", "role": "CUSTOMER",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(testKey)
	require.NoError(t, err)

	claims, err := codec.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, int64(5001), claims.UserID)
}
