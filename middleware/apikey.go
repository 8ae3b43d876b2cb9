package middleware

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// ValidateAPIKey guards file-download endpoints. The admin dashboard opens
// report exports in a new tab, where no Authorization header can be set, so
// these accept a key via header or query string instead.
func ValidateAPIKey(c *gin.Context) {
	apiKey := c.GetHeader("X-API-KEY")
	if apiKey == "" {
		apiKey = c.Query("api_key")
	}
	if apiKey == "" || apiKey != os.Getenv("REPORT_API_KEY") {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or missing API key"})
		c.Abort()
		return
	}
	c.Next()
}
