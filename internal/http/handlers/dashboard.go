package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/expromedia/Marx/internal/dashboard"
	"github.com/expromedia/Marx/internal/domain/hotel"
	"github.com/expromedia/Marx/internal/http/middlewares"
	"github.com/expromedia/Marx/internal/portal"
	"github.com/gin-gonic/gin"
)

type Navigator interface {
	Snapshot(clientID string) portal.Snapshot
	SelectTab(clientID, name string) (portal.Snapshot, error)
	SetMobileNav(clientID string, open bool) (portal.Snapshot, error)
	SetProfileMenu(clientID string, open bool) (portal.Snapshot, error)
	SetSidebarCollapsed(clientID string, collapsed bool) (portal.Snapshot, error)
	DismissMenus(clientID string) (portal.Snapshot, error)
}

type FeedbackStore interface {
	List(ctx context.Context, clientID string) ([]hotel.Feedback, error)
	Add(ctx context.Context, clientID string, req hotel.CreateFeedbackRequest) (hotel.Feedback, error)
	UpdateStatus(ctx context.Context, clientID, id string, status hotel.FeedbackStatus) (hotel.Feedback, error)
}

// DashboardHandler serves the menu, the navigation state and the tab pages.
// Every route sits behind RequireAuth.
type DashboardHandler struct {
	nav      Navigator
	feedback FeedbackStore
}

func NewDashboardHandler(nav Navigator, feedback FeedbackStore) *DashboardHandler {
	return &DashboardHandler{nav: nav, feedback: feedback}
}

type SelectTabRequest struct {
	Tab string `json:"tab" binding:"required,max=64"`
}

type ToggleRequest struct {
	Open *bool `json:"open" binding:"required"`
}

type SidebarRequest struct {
	Collapsed *bool `json:"collapsed" binding:"required"`
}

func (h *DashboardHandler) Menu(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Not signed in", nil)
		return
	}

	snap := h.nav.Snapshot(middlewares.ClientIDFromContext(ctx))

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"user":      u,
		"tabs":      dashboard.MenuFor(u.Role),
		"activeTab": snap.Nav.ActiveTab,
	})
}

func (h *DashboardHandler) Nav(ctx *gin.Context) {
	snap := h.nav.Snapshot(middlewares.ClientIDFromContext(ctx))

	ctx.JSON(http.StatusOK, gin.H{"nav": snap.Nav})
}

func (h *DashboardHandler) respondNav(ctx *gin.Context, snap portal.Snapshot, err error) {
	switch {
	case err == nil:
		ctx.JSON(http.StatusOK, gin.H{"nav": snap.Nav})
	case errors.Is(err, portal.ErrTabNotAllowed):
		RespondForbidden(ctx, "This tab is not available for your role")
	case errors.Is(err, portal.ErrNotLoggedIn):
		RespondUnauthorized(ctx, "unauthorized", "Not signed in", nil)
	default:
		_ = ctx.Error(err)
		RespondInternal(ctx, "Could not update navigation")
	}
}

func (h *DashboardHandler) SelectTab(ctx *gin.Context) {
	var req SelectTabRequest
	if !BindJSON(ctx, &req) {
		return
	}

	snap, err := h.nav.SelectTab(middlewares.ClientIDFromContext(ctx), req.Tab)
	h.respondNav(ctx, snap, err)
}

func (h *DashboardHandler) SetMobileNav(ctx *gin.Context) {
	var req ToggleRequest
	if !BindJSON(ctx, &req) {
		return
	}

	snap, err := h.nav.SetMobileNav(middlewares.ClientIDFromContext(ctx), *req.Open)
	h.respondNav(ctx, snap, err)
}

func (h *DashboardHandler) SetProfileMenu(ctx *gin.Context) {
	var req ToggleRequest
	if !BindJSON(ctx, &req) {
		return
	}

	snap, err := h.nav.SetProfileMenu(middlewares.ClientIDFromContext(ctx), *req.Open)
	h.respondNav(ctx, snap, err)
}

func (h *DashboardHandler) SetSidebar(ctx *gin.Context) {
	var req SidebarRequest
	if !BindJSON(ctx, &req) {
		return
	}

	snap, err := h.nav.SetSidebarCollapsed(middlewares.ClientIDFromContext(ctx), *req.Collapsed)
	h.respondNav(ctx, snap, err)
}

func (h *DashboardHandler) DismissMenus(ctx *gin.Context) {
	snap, err := h.nav.DismissMenus(middlewares.ClientIDFromContext(ctx))
	h.respondNav(ctx, snap, err)
}

// Page renders one tab. Unknown names fall back to Overview; a tab outside
// the caller's role is refused even when asked for directly.
func (h *DashboardHandler) Page(ctx *gin.Context) {
	role, ok := middlewares.RoleFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Not signed in", nil)
		return
	}

	tab := dashboard.Resolve(ctx.Param("tab"))
	if !tab.Allows(role) {
		RespondForbidden(ctx, "This tab is not available for your role")
		return
	}

	var page any

	switch tab.Page {
	case dashboard.PageOverview:
		page = dashboard.Overview(role)

	case dashboard.PageReservations:
		var f dashboard.ReservationsFilter
		if !BindQuery(ctx, &f) {
			return
		}
		page = dashboard.Reservations(f)

	case dashboard.PageRooms:
		var f dashboard.RoomsFilter
		if !BindQuery(ctx, &f) {
			return
		}
		page = dashboard.Rooms(f)

	case dashboard.PageHousekeeping:
		page = dashboard.Housekeeping()

	case dashboard.PageInventory:
		page = dashboard.Inventory()

	case dashboard.PageCRM:
		var f dashboard.CRMFilter
		if !BindQuery(ctx, &f) {
			return
		}
		page = dashboard.CRM(f)

	case dashboard.PageFinance:
		page = dashboard.Finance()

	case dashboard.PageGuestFeedback:
		var f dashboard.FeedbackFilter
		if !BindQuery(ctx, &f) {
			return
		}

		list, err := h.feedback.List(ctx.Request.Context(), middlewares.ClientIDFromContext(ctx))
		if err != nil {
			_ = ctx.Error(err)
			RespondInternal(ctx, "Could not load feedback")
			return
		}
		page = dashboard.GuestFeedback(list, f, role)

	case dashboard.PageAIWorkflows:
		page = dashboard.AIWorkflows()

	default:
		page = dashboard.Overview(role)
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"tab":  tab,
		"page": page,
	})
}
