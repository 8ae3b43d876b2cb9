package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/walthampeppinosdosa/peppinos-api/apperr"
	"github.com/walthampeppinosdosa/peppinos-api/auth"
	"github.com/walthampeppinosdosa/peppinos-api/models"
	"github.com/walthampeppinosdosa/peppinos-api/permissions"
)

// ValidateToken parses the bearer token and injects the owner identity and
// role into the request context.
func ValidateToken(c *gin.Context) {
	tokenString := c.GetHeader("Authorization")
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing"})
		c.Abort()
		return
	}
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	claims, err := auth.ParseToken(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		c.Abort()
		return
	}

	c.Set("owner_id", claims.UserID)
	c.Set("role", string(claims.Role))
	c.Next()
}

// RequireAdmin allows only dashboard roles through.
func RequireAdmin(c *gin.Context) {
	if !GetRole(c).IsAdmin() {
		err := apperr.Forbidden("admin role required")
		c.JSON(apperr.HTTPStatus(err), apperr.Payload(err))
		c.Abort()
		return
	}
	c.Next()
}

// RequireAction consults the capability table before letting the request
// proceed; the diet-partition half of the check happens in the handler once
// the target record is loaded.
func RequireAction(action permissions.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !permissions.Can(GetRole(c), action) {
			err := apperr.Forbidden("role %s may not %s", GetRole(c), action)
			c.JSON(apperr.HTTPStatus(err), apperr.Payload(err))
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetOwnerID extracts the caller's cart/order owner identity from context.
func GetOwnerID(c *gin.Context) string {
	val, _ := c.Get("owner_id")
	s, _ := val.(string)
	return s
}

// GetRole extracts the caller role from context.
func GetRole(c *gin.Context) models.Role {
	val, _ := c.Get("role")
	s, _ := val.(string)
	return models.Role(s)
}
