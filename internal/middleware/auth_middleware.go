package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ArowuTest/raffle-backend/internal/models"
)

// CallerKey is the gin context key holding the authenticated caller identity
const CallerKey = "caller"

// IdentityVerifier turns a bearer token into a caller identity
type IdentityVerifier interface {
	Identity(token string) (string, error)
}

// JWTAuthMiddleware creates a gin middleware that authenticates the caller from a bearer token
func JWTAuthMiddleware(verifier IdentityVerifier, logger *logrus.Logger) gin.HandlerFunc {
	const bearerSchema = "Bearer "

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthenticated(c, "Authorization header is required")
			return
		}
		if !strings.HasPrefix(authHeader, bearerSchema) {
			abortUnauthenticated(c, "Authorization header must start with Bearer ")
			return
		}

		identity, err := verifier.Identity(strings.TrimSpace(authHeader[len(bearerSchema):]))
		if err != nil {
			logger.WithError(err).WithField("request_id", c.GetString(RequestIDKey)).Warn("Token validation failed")
			abortUnauthenticated(c, "Invalid token")
			return
		}

		c.Set(CallerKey, identity)
		c.Next()
	}
}

// Caller returns the identity set by JWTAuthMiddleware, or "" on public routes
func Caller(c *gin.Context) string {
	return c.GetString(CallerKey)
}

func abortUnauthenticated(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg, "kind": models.ErrorKindUnauthorized})
}
