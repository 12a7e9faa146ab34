package middleware

import (
	"github.com/gin-gonic/gin"
)

// CORS sets permissive headers when no origin list is configured and
// locked-down headers otherwise.
func CORS(allowedOrigins string) gin.HandlerFunc {
	origin := allowedOrigins
	if origin == "" {
		origin = "*"
	}
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		c.Header("Access-Control-Expose-Headers", "X-Request-ID")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
