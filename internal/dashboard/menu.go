// Package dashboard holds the tab registry, role based menu filtering and the
// page builders behind every tab.
package dashboard

import (
	"slices"
	"strings"

	"github.com/expromedia/Marx/internal/domain/user"
)

type PageID string

const (
	PageOverview      PageID = "overview"
	PageReservations  PageID = "reservations"
	PageRooms         PageID = "rooms"
	PageHousekeeping  PageID = "housekeeping"
	PageInventory     PageID = "inventory"
	PageCRM           PageID = "crm"
	PageFinance       PageID = "finance"
	PageGuestFeedback PageID = "guest-feedback"
	PageAIWorkflows   PageID = "ai-workflows"
)

type Tab struct {
	Label string      `json:"label"`
	Page  PageID      `json:"slug"`
	Icon  string      `json:"icon"`
	Roles []user.Role `json:"-"`
}

const DefaultTabLabel = "Overview"

var (
	both      = []user.Role{user.RoleAdmin, user.RoleStaff}
	adminOnly = []user.Role{user.RoleAdmin}
)

// master list, in sidebar order
var tabs = []Tab{
	{Label: "Overview", Page: PageOverview, Icon: "layout-dashboard", Roles: both},
	{Label: "Reservations", Page: PageReservations, Icon: "calendar-check", Roles: both},
	{Label: "Rooms", Page: PageRooms, Icon: "bed", Roles: adminOnly},
	{Label: "Housekeeping", Page: PageHousekeeping, Icon: "clipboard-check", Roles: both},
	{Label: "Inventory", Page: PageInventory, Icon: "package", Roles: adminOnly},
	{Label: "CRM", Page: PageCRM, Icon: "users", Roles: adminOnly},
	{Label: "Finance", Page: PageFinance, Icon: "bar-chart-3", Roles: adminOnly},
	{Label: "Guest Feedback", Page: PageGuestFeedback, Icon: "message-square-quote", Roles: both},
	{Label: "AI Workflows", Page: PageAIWorkflows, Icon: "sparkles", Roles: both},
}

// Tabs returns a copy of the master list.
func Tabs() []Tab {
	return slices.Clone(tabs)
}

func (t Tab) Allows(role user.Role) bool {
	return slices.Contains(t.Roles, role)
}

// MenuFor keeps the tabs whose role set contains role, preserving order.
func MenuFor(role user.Role) []Tab {
	switch role {
	case user.RoleAdmin, user.RoleStaff:
	default:
		return []Tab{}
	}

	out := make([]Tab, 0, len(tabs))
	for _, t := range tabs {
		if t.Allows(role) {
			out = append(out, t)
		}
	}

	return out
}

// Lookup finds a tab by label or slug, case-insensitively.
func Lookup(name string) (Tab, bool) {
	name = strings.TrimSpace(name)

	for _, t := range tabs {
		if strings.EqualFold(t.Label, name) || strings.EqualFold(string(t.Page), name) {
			return t, true
		}
	}

	return Tab{}, false
}

// Resolve is Lookup with the Overview tab as fallback.
func Resolve(name string) Tab {
	if t, ok := Lookup(name); ok {
		return t
	}

	return tabs[0]
}
