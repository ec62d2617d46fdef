package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpired      = errors.New("token expired")
)

// Claim is the identity carried inside a signed token and attached to the
// request as the current viewer.
type Claim struct {
	ID        ID     `json:"account_id"`
	FirstName string `json:"account_firstname"`
	LastName  string `json:"account_lastname"`
	Email     string `json:"account_email"`
	Role      Role   `json:"account_type"`
}

type tokenClaims struct {
	Claim
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies HS256 tokens with a shared secret.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenCodec(secret []byte, ttl time.Duration) *TokenCodec {
	return &TokenCodec{secret: secret, ttl: ttl, now: time.Now}
}

func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue signs claim with an expiry of now plus the codec's ttl, rounded up to
// the whole second the token format can carry.
func (c *TokenCodec) Issue(claim Claim) (string, error) {
	now := c.now()
	expires := now.Add(c.ttl)
	if rounded := expires.Truncate(time.Second); rounded.Before(expires) {
		expires = rounded.Add(time.Second)
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Claim: claim,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claim.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})

	return token.SignedString(c.secret)
}

// Verify returns the claim inside token. It fails with ErrExpired once the
// expiry instant is reached and with ErrInvalidToken for anything malformed,
// unsigned or signed with another secret.
func (c *TokenCodec) Verify(token string) (Claim, error) {
	claims := &tokenClaims{}

	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)

	switch {
	case err == nil:
		return claims.Claim, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return Claim{}, ErrExpired
	default:
		return Claim{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
}
