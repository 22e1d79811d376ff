package directory

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// TokenVerifier represents an object that can resolve a bearer token to a user id
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// HS256TokenVerifier implements TokenVerifier over HMAC-SHA256 signed JWTs
type HS256TokenVerifier struct {
	secret []byte
}

// NewHS256TokenVerifier returns an *HS256TokenVerifier verifying with secret
func NewHS256TokenVerifier(secret string) *HS256TokenVerifier {
	return &HS256TokenVerifier{secret: []byte(secret)}
}

/*
Verify checks the token's signature and expiry and returns its subject claim.
Expired and otherwise invalid tokens resolve to distinct ErrUnauthorized errors
*/
func (h *HS256TokenVerifier) Verify(token string) (string, error) {
	parsed, err := jwt.Parse(token,
		func(t *jwt.Token) (interface{}, error) { return h.secret, nil },
		jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("%w: Token expired", ErrUnauthorized)
		}
		return "", fmt.Errorf("%w: Invalid token", ErrUnauthorized)
	}

	subject, err := parsed.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", fmt.Errorf("%w: Invalid token", ErrUnauthorized)
	}
	return subject, nil
}
