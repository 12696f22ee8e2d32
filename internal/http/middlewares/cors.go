package middlewares

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
)

const corsMaxAge = "600"

var (
	corsMethods = strings.Join([]string{
		http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodOptions,
	}, ",")
	corsHeaders = strings.Join([]string{
		"Authorization", "Content-Type", "If-None-Match", ClientIDHeader, requestIDHeader,
	}, ",")
	corsExposed = strings.Join([]string{"ETag", requestIDHeader, ClientIDHeader}, ",")
)

// CORSMiddleware allows the dashboard shell's origins with credentials, since
// the client id travels in a cookie. Preflights from other origins get 403.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		origin := ctx.GetHeader("Origin")
		ok := origin != "" && slices.Contains(allowedOrigins, origin)

		if ok {
			h := ctx.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Expose-Headers", corsExposed)
			h.Add("Vary", "Origin")
		}

		if ctx.Request.Method != http.MethodOptions {
			ctx.Next()
			return
		}

		if !ok {
			ctx.AbortWithStatus(http.StatusForbidden)
			return
		}

		ctx.Header("Access-Control-Allow-Methods", corsMethods)
		ctx.Header("Access-Control-Allow-Headers", corsHeaders)
		ctx.Header("Access-Control-Max-Age", corsMaxAge)
		ctx.AbortWithStatus(http.StatusNoContent)
	}
}
