package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	jwtpkg "roomies/invitehub/pkg/jwt"
	"roomies/invitehub/pkg/response"
)

const ContextKeyUserClaims = "user_claims"

// bearerClaims extracts and validates an access token from the
// Authorization header. The message describes the failure.
func bearerClaims(c *gin.Context, jwtManager *jwtpkg.Manager) (*jwtpkg.Claims, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, "missing authorization header"
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, "invalid authorization format"
	}

	claims, err := jwtManager.Validate(parts[1])
	if err != nil {
		return nil, "invalid or expired token"
	}
	if claims.TokenType != jwtpkg.TokenTypeAccess {
		return nil, "invalid token type"
	}
	return claims, ""
}

func JWTAuth(jwtManager *jwtpkg.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, msg := bearerClaims(c, jwtManager)
		if claims == nil {
			response.Unauthorized(c, msg)
			c.Abort()
			return
		}
		c.Set(ContextKeyUserClaims, claims)
		c.Next()
	}
}

// OptionalJWTAuth attaches claims when a valid access token is present and
// lets the request through either way. Handlers decide how to answer
// anonymous callers.
func OptionalJWTAuth(jwtManager *jwtpkg.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, _ := bearerClaims(c, jwtManager); claims != nil {
			c.Set(ContextKeyUserClaims, claims)
		}
		c.Next()
	}
}
