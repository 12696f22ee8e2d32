package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/expromedia/Marx/internal/automation"
	"github.com/expromedia/Marx/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type WorkflowRunner interface {
	Run(ctx context.Context, clientID, workflowID string) (automation.Output, error)
}

type WorkflowsHandler struct {
	runner WorkflowRunner
}

func NewWorkflowsHandler(runner WorkflowRunner) *WorkflowsHandler {
	return &WorkflowsHandler{runner: runner}
}

// Run generates the workflow's content. A remote failure is reported with the
// same message the dashboard shows in place of the output.
func (h *WorkflowsHandler) Run(ctx *gin.Context) {
	out, err := h.runner.Run(ctx.Request.Context(), middlewares.ClientIDFromContext(ctx), ctx.Param("id"))

	switch {
	case err == nil:
		ctx.JSON(http.StatusOK, out)
	case errors.Is(err, automation.ErrUnknownWorkflow):
		RespondNotFound(ctx, "Workflow not found")
	case errors.Is(err, automation.ErrRunInProgress):
		RespondConflict(ctx, "run_in_progress", "This workflow is already generating")
	case errors.Is(err, automation.ErrRemoteGeneration):
		_ = ctx.Error(err)
		RespondError(ctx, http.StatusBadGateway, "generation_failed", automation.FailureMessage, nil)
	default:
		_ = ctx.Error(err)
		RespondInternal(ctx, "Could not run workflow")
	}
}
