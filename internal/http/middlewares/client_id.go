package middlewares

import (
	"net/http"

	"github.com/expromedia/Marx/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ClientCookie   = "lmnts_client"
	ClientIDHeader = "X-Client-Id"

	clientCookieMaxAge = 60 * 60 * 24 * 365
)

// ClientID identifies the browser behind a request. The id comes from the
// client cookie or the X-Client-Id header; anything that is not a UUID is
// replaced with a fresh one, which is handed back in both places.
func ClientID(secure bool) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader(ClientIDHeader)
		if id == "" {
			id, _ = ctx.Cookie(ClientCookie)
		}

		parsed, err := uuid.Parse(id)
		if err != nil {
			parsed = uuid.New()
		}
		id = parsed.String()

		ctx.SetSameSite(http.SameSiteLaxMode)
		ctx.SetCookie(ClientCookie, id, clientCookieMaxAge, "/", "", secure, true)
		ctx.Header(ClientIDHeader, id)

		ctx.Set(CtxClientID, id)
		ctx.Request = ctx.Request.WithContext(observability.WithClientID(ctx.Request.Context(), id))

		ctx.Next()
	}
}

func ClientIDFromContext(c *gin.Context) string {
	return c.GetString(CtxClientID)
}
