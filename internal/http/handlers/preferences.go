package handlers

import (
	"context"
	"net/http"

	"github.com/expromedia/Marx/internal/http/middlewares"
	"github.com/expromedia/Marx/internal/session"
	"github.com/gin-gonic/gin"
)

type ThemeStore interface {
	Theme(ctx context.Context, clientID string) (session.Theme, error)
	SetTheme(ctx context.Context, clientID string, theme session.Theme) error
}

// PreferencesHandler serves the display theme. It does not need a session:
// the theme outlives logout.
type PreferencesHandler struct {
	themes ThemeStore
}

func NewPreferencesHandler(themes ThemeStore) *PreferencesHandler {
	return &PreferencesHandler{themes: themes}
}

type ThemeRequest struct {
	Theme string `json:"theme" binding:"required,theme"`
}

func (h *PreferencesHandler) GetTheme(ctx *gin.Context) {
	theme, err := h.themes.Theme(ctx.Request.Context(), middlewares.ClientIDFromContext(ctx))
	if err != nil {
		_ = ctx.Error(err)
		RespondUnavailable(ctx, "storage_unavailable", "Could not read preferences")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"theme": theme})
}

func (h *PreferencesHandler) SetTheme(ctx *gin.Context) {
	var req ThemeRequest
	if !BindJSON(ctx, &req) {
		return
	}

	theme, err := session.ParseTheme(req.Theme)
	if err != nil {
		RespondBadRequest(ctx, "Theme must be light or dark", nil)
		return
	}

	if err := h.themes.SetTheme(ctx.Request.Context(), middlewares.ClientIDFromContext(ctx), theme); err != nil {
		_ = ctx.Error(err)
		RespondUnavailable(ctx, "storage_unavailable", "Could not save preferences")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"theme": theme})
}
