package auth

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"crewlink-server/services/messaging-api/internal/config"
)

// Verifier validates shared-secret JWTs issued by the accounts service.
type Verifier struct {
	secret []byte
}

// NewVerifier builds a Verifier from the configured signing secret.
func NewVerifier(cfg *config.Config) *Verifier {
	return &Verifier{secret: []byte(cfg.AuthSecret)}
}

// Decode validates the token and returns its subject, the account email.
func (v *Verifier) Decode(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || strings.TrimSpace(subject) == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return subject, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
