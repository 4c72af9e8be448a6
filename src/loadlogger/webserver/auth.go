package webserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIKeyMiddleware guards mutating endpoints with the static X-API-Key
// header. The key comes from env only; it is deliberately not a runtime
// setting.
func APIKeyMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("X-API-Key") != apiKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"err": "invalid API key"})
			return
		}
		c.Next()
	}
}
