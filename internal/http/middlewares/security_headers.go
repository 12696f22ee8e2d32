package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const apiCSP = "default-src 'none'; frame-ancestors 'none'"

// SecurityHeaders sets the headers every JSON response carries. hsts is on
// when the service sits behind TLS.
func SecurityHeaders(hsts bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Content-Security-Policy", apiCSP)

		if hsts {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		// challenges, sessions and tokens must never be cached
		if strings.HasPrefix(c.Request.URL.Path, "/auth") {
			h.Set("Cache-Control", "no-store")
		}

		c.Next()
	}
}
