package middleware

import (
	"net/http"
	"strings"

	"github.com/Sinanalungal/Image-Generator-Backend/shared/models"
	"github.com/Sinanalungal/Image-Generator-Backend/shared/tokens"
	"github.com/gin-gonic/gin"
)

const claimsKey = "claims"

// TokenParser verifies a bearer token of the given type.
type TokenParser interface {
	Parse(token, wantType string) (*tokens.Claims, error)
}

func AuthMiddleware(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Authorization header required",
			})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Invalid authorization header format",
			})
			c.Abort()
			return
		}

		claims, err := parser.Parse(parts[1], tokens.TypeAccess)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireRole rejects callers whose token does not carry role. It must run
// after AuthMiddleware.
func RequireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok {
			RespondWithError(c, http.StatusUnauthorized, "Authentication credentials were not provided")
			c.Abort()
			return
		}
		if claims.Role() != role {
			RespondWithError(c, http.StatusForbidden, "You do not have permission to perform this action")
			c.Abort()
			return
		}
		c.Next()
	}
}

func GetClaims(c *gin.Context) (*tokens.Claims, bool) {
	v, exists := c.Get(claimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*tokens.Claims)
	return claims, ok
}

// GetRole returns the caller's role, standard when unauthenticated.
func GetRole(c *gin.Context) models.Role {
	if claims, ok := GetClaims(c); ok {
		return claims.Role()
	}
	return models.RoleStandard
}
