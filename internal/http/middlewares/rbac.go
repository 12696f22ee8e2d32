package middlewares

import (
	"net/http"
	"slices"

	"github.com/expromedia/Marx/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// RequireRole lets the request through when the session role is one of allowed.
func RequireRole(allowed ...user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := RoleFromContext(c)
		if !ok {
			abortUnauthorized(c, "Missing identity context")
			return
		}

		switch role {
		case user.RoleAdmin, user.RoleStaff:
		default:
			abortUnauthorized(c, "Unknown role")
			return
		}

		if !slices.Contains(allowed, role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":      "forbidden",
					"message":   "Your role cannot perform this action",
					"requestId": c.GetString(CtxRequestID),
				},
			})
			return
		}

		c.Next()
	}
}
