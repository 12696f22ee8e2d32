package dashboard

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/expromedia/Marx/internal/domain/hotel"
	"github.com/expromedia/Marx/internal/domain/user"
)

const filterAll = "All"

type StatCard struct {
	Title    string `json:"title"`
	Value    string `json:"value"`
	Trend    string `json:"trend"`
	Positive bool   `json:"isPositive"`
}

type DailyPoint struct {
	Name     string `json:"name"`
	Bookings int    `json:"bookings"`
	Revenue  int    `json:"revenue"`
}

type OverviewPage struct {
	Role   user.Role    `json:"role"`
	Stats  []StatCard   `json:"stats"`
	Weekly []DailyPoint `json:"weekly"`
}

func Overview(role user.Role) OverviewPage {
	return OverviewPage{
		Role: role,
		Stats: []StatCard{
			{Title: "Total Bookings", Value: "124", Trend: "+12%", Positive: true},
			{Title: "Guest Check-ins", Value: "48", Trend: "+5%", Positive: true},
			{Title: "Room Occupancy", Value: "84%", Trend: "-2%", Positive: false},
			{Title: "Total Revenue", Value: "$24,500", Trend: "+18%", Positive: true},
		},
		Weekly: []DailyPoint{
			{Name: "Mon", Bookings: 4, Revenue: 2400},
			{Name: "Tue", Bookings: 7, Revenue: 1398},
			{Name: "Wed", Bookings: 5, Revenue: 9800},
			{Name: "Thu", Bookings: 9, Revenue: 3908},
			{Name: "Fri", Bookings: 12, Revenue: 4800},
			{Name: "Sat", Bookings: 15, Revenue: 3800},
			{Name: "Sun", Bookings: 10, Revenue: 4300},
		},
	}
}

type RoomsFilter struct {
	Search   string `form:"search" json:"search"`
	Type     string `form:"type" json:"type"`
	Status   string `form:"status" json:"status"`
	MaxPrice int    `form:"maxPrice" json:"maxPrice" binding:"omitempty,min=0,max=100000"`
}

type RoomsPage struct {
	Filter   RoomsFilter        `json:"filter"`
	Rooms    []hotel.Room       `json:"rooms"`
	Count    int                `json:"count"`
	Types    []hotel.RoomType   `json:"types"`
	Statuses []hotel.RoomStatus `json:"statuses"`
}

const defaultMaxPrice = 1000

func Rooms(f RoomsFilter) RoomsPage {
	if f.Type == "" {
		f.Type = filterAll
	}
	if f.Status == "" {
		f.Status = filterAll
	}
	if f.MaxPrice == 0 {
		f.MaxPrice = defaultMaxPrice
	}

	search := strings.ToLower(f.Search)

	out := make([]hotel.Room, 0)
	for _, r := range hotel.Rooms() {
		matchesSearch := strings.Contains(r.Number, f.Search) || slices.ContainsFunc(r.Amenities, func(a string) bool {
			return strings.Contains(strings.ToLower(a), search)
		})
		matchesType := f.Type == filterAll || string(r.Type) == f.Type
		matchesStatus := f.Status == filterAll || string(r.Status) == f.Status
		matchesPrice := r.Price <= f.MaxPrice

		if matchesSearch && matchesType && matchesStatus && matchesPrice {
			out = append(out, r)
		}
	}

	return RoomsPage{
		Filter:   f,
		Rooms:    out,
		Count:    len(out),
		Types:    hotel.RoomTypes(),
		Statuses: hotel.RoomStatuses(),
	}
}

type ReservationsFilter struct {
	Status string `form:"status" json:"status"`
}

type ReservationsPage struct {
	Filter ReservationsFilter  `json:"filter"`
	Items  []hotel.Reservation `json:"items"`
	Count  int                 `json:"count"`
}

// Reservations lists bookings in booking-list order.
func Reservations(f ReservationsFilter) ReservationsPage {
	if f.Status == "" {
		f.Status = filterAll
	}

	out := make([]hotel.Reservation, 0)
	for _, r := range hotel.Reservations() {
		if f.Status == filterAll || string(r.Status) == f.Status {
			out = append(out, r)
		}
	}

	return ReservationsPage{Filter: f, Items: out, Count: len(out)}
}

type HousekeepingTask struct {
	Room     hotel.Room `json:"room"`
	Kind     string     `json:"kind"`
	Action   string     `json:"action"`
	Assignee string     `json:"assignee"`
}

type HousekeepingPage struct {
	Tasks []HousekeepingTask `json:"tasks"`
	Count int                `json:"count"`
}

func Housekeeping() HousekeepingPage {
	tasks := make([]HousekeepingTask, 0)

	for _, r := range hotel.Rooms() {
		switch r.Status {
		case hotel.RoomCleaning:
			tasks = append(tasks, HousekeepingTask{Room: r, Kind: "cleaning", Action: "Mark as Cleaned", Assignee: "Unassigned"})
		case hotel.RoomMaintenance:
			tasks = append(tasks, HousekeepingTask{Room: r, Kind: "maintenance", Action: "Update Maintenance", Assignee: "Unassigned"})
		}
	}

	return HousekeepingPage{Tasks: tasks, Count: len(tasks)}
}

type InventoryRow struct {
	hotel.InventoryItem
	StockStatus string `json:"stockStatus"`
}

type InventoryPage struct {
	Items         []InventoryRow `json:"items"`
	TotalItems    int            `json:"totalItems"`
	LowStockCount int            `json:"lowStockCount"`
}

func Inventory() InventoryPage {
	items := hotel.Inventory()
	rows := make([]InventoryRow, 0, len(items))
	low := 0

	for _, it := range items {
		status := "Good"
		if it.LowStock() {
			status = "Low Stock"
			low++
		}
		rows = append(rows, InventoryRow{InventoryItem: it, StockStatus: status})
	}

	return InventoryPage{Items: rows, TotalItems: len(rows), LowStockCount: low}
}

type CRMFilter struct {
	Search string `form:"search" json:"search"`
}

type GuestCard struct {
	hotel.Guest
	Initials string `json:"initials"`
}

type CRMPage struct {
	Filter CRMFilter   `json:"filter"`
	Guests []GuestCard `json:"guests"`
	Count  int         `json:"count"`
}

func CRM(f CRMFilter) CRMPage {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]GuestCard, 0)
	for _, g := range hotel.Guests() {
		if search != "" &&
			!strings.Contains(strings.ToLower(g.Name), search) &&
			!strings.Contains(strings.ToLower(g.Email), search) {
			continue
		}
		out = append(out, GuestCard{Guest: g, Initials: Initials(g.Name)})
	}

	return CRMPage{Filter: f, Guests: out, Count: len(out)}
}

// Initials takes the first letter of every word in name.
func Initials(name string) string {
	var b strings.Builder
	for _, part := range strings.Fields(name) {
		for _, r := range part {
			b.WriteRune(r)
			break
		}
	}
	return b.String()
}

type MonthlyRevenue struct {
	Month   string `json:"month"`
	Revenue int    `json:"revenue"`
}

type CategoryShare struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

type KPI struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Color string `json:"color"`
}

type FinancePage struct {
	Period     string           `json:"period"`
	Growth     string           `json:"growth"`
	Revenue    []MonthlyRevenue `json:"revenue"`
	Categories []CategoryShare  `json:"categories"`
	KPIs       []KPI            `json:"kpis"`
}

func Finance() FinancePage {
	return FinancePage{
		Period: "Last 30 Days",
		Growth: "+15.2%",
		Revenue: []MonthlyRevenue{
			{Month: "Jan", Revenue: 45000},
			{Month: "Feb", Revenue: 52000},
			{Month: "Mar", Revenue: 48000},
			{Month: "Apr", Revenue: 61000},
			{Month: "May", Revenue: 55000},
			{Month: "Jun", Revenue: 67000},
		},
		Categories: []CategoryShare{
			{Name: "Room Service", Value: 400, Color: "#0ea5e9"},
			{Name: "Accommodations", Value: 1200, Color: "#6366f1"},
			{Name: "Events", Value: 300, Color: "#f59e0b"},
			{Name: "Spa & Wellness", Value: 200, Color: "#10b981"},
		},
		KPIs: []KPI{
			{Label: "Avg Daily Rate", Value: "$342.00", Color: "sky"},
			{Label: "RevPAR", Value: "$287.50", Color: "indigo"},
			{Label: "Net Profit", Value: "$42,300", Color: "emerald"},
			{Label: "Operating Costs", Value: "$18,900", Color: "rose"},
		},
	}
}

type FeedbackFilter struct {
	Category string `form:"category" json:"category"`
	Rating   int    `form:"rating" json:"rating" binding:"omitempty,min=0,max=5"`
	Search   string `form:"search" json:"search"`
}

type FeedbackStats struct {
	Average  string `json:"average"`
	Total    int    `json:"total"`
	Resolved int    `json:"resolved"`
}

type FeedbackPage struct {
	Filter     FeedbackFilter           `json:"filter"`
	Items      []hotel.Feedback         `json:"items"`
	Stats      FeedbackStats            `json:"stats"`
	Categories []hotel.FeedbackCategory `json:"categories"`
	CanResolve bool                     `json:"canResolve"`
}

// GuestFeedback filters list and computes stats over the unfiltered list.
func GuestFeedback(list []hotel.Feedback, f FeedbackFilter, role user.Role) FeedbackPage {
	if f.Category == "" {
		f.Category = filterAll
	}

	return FeedbackPage{
		Filter:     f,
		Items:      FilterFeedback(list, f),
		Stats:      ComputeFeedbackStats(list),
		Categories: hotel.FeedbackCategories(),
		CanResolve: role == user.RoleAdmin,
	}
}

func FilterFeedback(list []hotel.Feedback, f FeedbackFilter) []hotel.Feedback {
	search := strings.ToLower(f.Search)

	out := make([]hotel.Feedback, 0, len(list))
	for _, fb := range list {
		matchesCategory := f.Category == "" || f.Category == filterAll || string(fb.Category) == f.Category
		matchesRating := f.Rating == 0 || fb.Rating == f.Rating
		matchesSearch := strings.Contains(strings.ToLower(fb.GuestName), search) ||
			strings.Contains(strings.ToLower(fb.Comment), search)

		if matchesCategory && matchesRating && matchesSearch {
			out = append(out, fb)
		}
	}

	return out
}

func ComputeFeedbackStats(list []hotel.Feedback) FeedbackStats {
	if len(list) == 0 {
		return FeedbackStats{Average: "0.0"}
	}

	sum, resolved := 0, 0
	for _, fb := range list {
		sum += fb.Rating
		if fb.Status == hotel.FeedbackResolved {
			resolved++
		}
	}

	avg := float64(sum) / float64(len(list))
	// round half away from zero, one decimal
	avg = math.Round(avg*10) / 10

	return FeedbackStats{
		Average:  fmt.Sprintf("%.1f", avg),
		Total:    len(list),
		Resolved: resolved,
	}
}

type WorkflowsPage struct {
	Workflows []hotel.Workflow `json:"workflows"`
}

func AIWorkflows() WorkflowsPage {
	return WorkflowsPage{Workflows: hotel.Workflows()}
}
