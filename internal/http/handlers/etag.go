package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RespondJSONWithETag answers 304 when the client already holds this exact
// payload. Dashboard payloads depend on the session, so they are marked
// private and must be revalidated.
func RespondJSONWithETag(ctx *gin.Context, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		_ = ctx.Error(err)
		RespondInternal(ctx, "Could not encode response")
		return
	}

	tag := etagFor(body)

	ctx.Header("ETag", tag)
	ctx.Header("Cache-Control", "private, no-cache")

	if matchesAny(ctx.GetHeader("If-None-Match"), tag) {
		ctx.Status(http.StatusNotModified)
		return
	}

	ctx.Data(status, "application/json; charset=utf-8", body)
}

func etagFor(body []byte) string {
	sum := sha256.Sum256(body)

	// 16 bytes is plenty to tell two page payloads apart
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

func matchesAny(header, tag string) bool {
	header = strings.TrimSpace(header)
	if header == "" {
		return false
	}
	if header == "*" {
		return true
	}

	for _, candidate := range strings.Split(header, ",") {
		// weak comparison, W/"x" matches "x"
		if strings.TrimPrefix(strings.TrimSpace(candidate), "W/") == tag {
			return true
		}
	}

	return false
}
