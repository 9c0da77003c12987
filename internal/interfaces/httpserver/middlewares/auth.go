package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"crewlink-server/services/messaging-api/internal/domain"
	"crewlink-server/services/messaging-api/internal/domain/user"
	"crewlink-server/services/messaging-api/internal/infrastructure/auth"
)

// PrincipalKey is the gin context key the Principal is stored under.
const PrincipalKey = "auth_principal"

// Authenticate validates the bearer token and resolves the caller into a
// Principal stored on the gin context.
func Authenticate(verifier *auth.Verifier, users user.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := auth.BearerToken(c.GetHeader("Authorization"))
		if tokenString == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}

		email, err := verifier.Decode(tokenString)
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		account, err := users.FindByEmail(c.Request.Context(), email)
		if err != nil {
			abortUnauthorized(c, "unknown account")
			return
		}

		c.Set(PrincipalKey, &domain.Principal{
			UserID: account.ID,
			Email:  account.Email,
			Role:   account.Role,
		})
		c.Next()
	}
}

// PrincipalFromContext returns the authenticated caller, or nil when the
// request did not pass authentication.
func PrincipalFromContext(c *gin.Context) *domain.Principal {
	if val, ok := c.Get(PrincipalKey); ok {
		if principal, ok := val.(*domain.Principal); ok {
			return principal
		}
	}
	return nil
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": message,
	})
}
