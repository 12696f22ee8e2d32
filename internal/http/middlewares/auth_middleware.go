package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/expromedia/Marx/internal/actorctx"
	"github.com/expromedia/Marx/internal/auth"
	"github.com/expromedia/Marx/internal/domain/user"
	"github.com/expromedia/Marx/internal/portal"
	"github.com/gin-gonic/gin"
)

// Keep these small so tests can fake them easily.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*auth.Claims, error)
}

type SessionRestorer interface {
	Restore(ctx context.Context, clientID string) (portal.Snapshot, error)
}

type AuthMiddleware struct {
	jwt      TokenVerifier
	sessions SessionRestorer
}

func NewAuthMiddleware(jwt TokenVerifier, sessions SessionRestorer) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, sessions: sessions}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":      "unauthorized",
			"message":   message,
			"requestId": c.GetString(CtxRequestID),
		},
	})
}

// RequireAuth accepts a bearer token only when it was minted for the calling
// client and that client still holds the same committed session.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c, "Missing or invalid Authorization header")
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if raw == "" {
			abortUnauthorized(c, "Missing or invalid access token")
			return
		}

		claims, err := m.jwt.VerifyAccessToken(raw)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired access token")
			return
		}

		clientID := ClientIDFromContext(c)
		if claims.ClientID != clientID {
			abortUnauthorized(c, "Token was issued to another client")
			return
		}

		snap, err := m.sessions.Restore(c.Request.Context(), clientID)
		if err != nil {
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error": gin.H{
					"code":      "session_unavailable",
					"message":   "Session storage is unavailable",
					"requestId": c.GetString(CtxRequestID),
				},
			})
			return
		}

		if snap.User == nil || snap.User.Username != claims.Username || snap.User.Role != claims.Role {
			abortUnauthorized(c, "Session has ended")
			return
		}

		c.Set(CtxClaims, claims)
		c.Set(CtxUser, *snap.User)
		c.Request = c.Request.WithContext(actorctx.WithUser(c.Request.Context(), *snap.User))

		c.Next()
	}
}

// helpers so handlers don't need to know the keys

func UserFromContext(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(CtxUser)
	if !ok {
		return user.User{}, false
	}
	u, ok := v.(user.User)
	return u, ok
}

func RoleFromContext(c *gin.Context) (user.Role, bool) {
	u, ok := UserFromContext(c)
	if !ok {
		return "", false
	}
	return u.Role, true
}
