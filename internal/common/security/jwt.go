package security

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the JWT payload for session tokens. The role claim is
// informational; authorization always re-reads the role from the store.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and verifies HS256 session tokens. The secret and TTL
// come from configuration, set once at startup. The clock is injectable so
// expiry behavior can be tested without sleeping.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: secret, ttl: ttl, now: time.Now}
}

// WithClock replaces the issuer's clock and returns the issuer. Tests use
// this to step time across the expiry boundary.
func (i *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	i.now = now
	return i
}

// Generate signs a token asserting the username as subject, expiring one TTL
// from now.
func (i *TokenIssuer) Generate(username, role string) (string, error) {
	now := i.now()
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Verify checks signature integrity, then expiry, then extracts the claims.
// Signature, expiry and parse failures stay distinguishable via errors.Is
// against the jwt package sentinels; callers outside the trust boundary
// collapse them all into a single unauthenticated outcome.
func (i *TokenIssuer) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(func() time.Time { return i.now() }))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
