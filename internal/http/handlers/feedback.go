package handlers

import (
	"errors"
	"net/http"

	"github.com/expromedia/Marx/internal/domain/hotel"
	"github.com/expromedia/Marx/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

func (h *DashboardHandler) CreateFeedback(ctx *gin.Context) {
	var req hotel.CreateFeedbackRequest
	if !BindJSON(ctx, &req) {
		return
	}

	fb, err := h.feedback.Add(ctx.Request.Context(), middlewares.ClientIDFromContext(ctx), req)
	if err != nil {
		_ = ctx.Error(err)
		RespondInternal(ctx, "Could not save feedback")
		return
	}

	ctx.JSON(http.StatusCreated, fb)
}

// UpdateFeedbackStatus moves an entry forward (New, Reviewed, Resolved).
// The route is admin only.
func (h *DashboardHandler) UpdateFeedbackStatus(ctx *gin.Context) {
	var req hotel.UpdateFeedbackStatusRequest
	if !BindJSON(ctx, &req) {
		return
	}

	fb, err := h.feedback.UpdateStatus(ctx.Request.Context(), middlewares.ClientIDFromContext(ctx), ctx.Param("id"), req.Status)

	switch {
	case err == nil:
		ctx.JSON(http.StatusOK, fb)
	case errors.Is(err, hotel.ErrFeedbackNotFound):
		RespondNotFound(ctx, "Feedback not found")
	case errors.Is(err, hotel.ErrInvalidTransition):
		RespondConflict(ctx, "invalid_transition", err.Error())
	default:
		_ = ctx.Error(err)
		RespondInternal(ctx, "Could not update feedback")
	}
}
