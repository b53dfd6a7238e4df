package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/theshibabasement/neuroflow/internal/platform/logger"
	"github.com/theshibabasement/neuroflow/internal/services"
)

const principalKey = "auth.principal"

type AuthMiddleware struct {
	log  *logger.Logger
	auth services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, auth services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("middleware", "Auth"), auth: auth}
}

// RequireAPIKey authenticates via X-API-Key or a bearer token.
func (am *AuthMiddleware) RequireAPIKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := am.authenticate(c)
		if !ok {
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

// RequireAdminKey additionally demands the admin bit.
func (am *AuthMiddleware) RequireAdminKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := am.authenticate(c)
		if !ok {
			return
		}
		if !principal.Admin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{"message": "admin key required", "code": "forbidden"},
			})
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

func (am *AuthMiddleware) authenticate(c *gin.Context) (*services.Principal, bool) {
	rawKey := extractKey(c)
	if rawKey == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": gin.H{"message": "missing api key", "code": "unauthorized"},
		})
		return nil, false
	}
	principal, err := am.auth.Validate(c.Request.Context(), rawKey)
	if err != nil {
		am.log.Debug("api key rejected", "error", err)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": gin.H{"message": "invalid api key", "code": "unauthorized"},
		})
		return nil, false
	}
	return principal, true
}

// Principal returns the authenticated caller set by the middleware, if any.
func Principal(c *gin.Context) *services.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(*services.Principal); ok {
			return p
		}
	}
	return nil
}

func extractKey(c *gin.Context) string {
	if key := strings.TrimSpace(c.GetHeader("X-API-Key")); key != "" {
		return key
	}
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
