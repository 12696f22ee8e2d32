package hotel

import "errors"

type RoomType string

const (
	RoomSingle RoomType = "Single"
	RoomDouble RoomType = "Double"
	RoomSuite  RoomType = "Suite"
	RoomDeluxe RoomType = "Deluxe"
)

func RoomTypes() []RoomType {
	return []RoomType{RoomSingle, RoomDouble, RoomSuite, RoomDeluxe}
}

type RoomStatus string

const (
	RoomAvailable   RoomStatus = "Available"
	RoomOccupied    RoomStatus = "Occupied"
	RoomCleaning    RoomStatus = "Cleaning"
	RoomMaintenance RoomStatus = "Maintenance"
)

func RoomStatuses() []RoomStatus {
	return []RoomStatus{RoomAvailable, RoomOccupied, RoomCleaning, RoomMaintenance}
}

type Room struct {
	ID        string     `json:"id"`
	Number    string     `json:"number"`
	Type      RoomType   `json:"type"`
	Price     int        `json:"price"`
	Status    RoomStatus `json:"status"`
	Amenities []string   `json:"amenities"`
	Image     string     `json:"image"`
}

type ReservationStatus string

const (
	ReservationConfirmed  ReservationStatus = "Confirmed"
	ReservationPending    ReservationStatus = "Pending"
	ReservationCheckedOut ReservationStatus = "Checked-Out"
	ReservationCancelled  ReservationStatus = "Cancelled"
)

type Reservation struct {
	ID        string            `json:"id"`
	GuestName string            `json:"guestName"`
	RoomID    string            `json:"roomId"`
	CheckIn   string            `json:"checkIn"`
	CheckOut  string            `json:"checkOut"`
	Status    ReservationStatus `json:"status"`
}

type InventoryItem struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	MinThreshold int    `json:"minThreshold"`
	Category     string `json:"category"`
}

// LowStock reports whether the item is at or below its reorder threshold.
func (i InventoryItem) LowStock() bool {
	return i.Quantity <= i.MinThreshold
}

type Guest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Stays    int    `json:"stays"`
	Rating   int    `json:"rating"`
	Spent    string `json:"spent"`
	Location string `json:"location"`
}

type FeedbackCategory string

const (
	FeedbackRoom      FeedbackCategory = "Room"
	FeedbackService   FeedbackCategory = "Service"
	FeedbackStaff     FeedbackCategory = "Staff"
	FeedbackAmenities FeedbackCategory = "Amenities"
)

func FeedbackCategories() []FeedbackCategory {
	return []FeedbackCategory{FeedbackRoom, FeedbackService, FeedbackStaff, FeedbackAmenities}
}

type FeedbackStatus string

const (
	FeedbackNew      FeedbackStatus = "New"
	FeedbackReviewed FeedbackStatus = "Reviewed"
	FeedbackResolved FeedbackStatus = "Resolved"
)

var (
	ErrFeedbackNotFound  = errors.New("feedback not found")
	ErrInvalidTransition = errors.New("invalid feedback status transition")
)

type Feedback struct {
	ID         string           `json:"id"`
	GuestName  string           `json:"guestName"`
	Rating     int              `json:"rating"`
	Comment    string           `json:"comment"`
	Category   FeedbackCategory `json:"category"`
	Date       string           `json:"date"`
	RoomNumber string           `json:"roomNumber,omitempty"`
	StaffName  string           `json:"staffName,omitempty"`
	Status     FeedbackStatus   `json:"status"`
}

// CanTransition allows New -> Reviewed/Resolved and Reviewed -> Resolved.
func (s FeedbackStatus) CanTransition(to FeedbackStatus) bool {
	switch s {
	case FeedbackNew:
		return to == FeedbackReviewed || to == FeedbackResolved
	case FeedbackReviewed:
		return to == FeedbackResolved
	default:
		return false
	}
}

type CreateFeedbackRequest struct {
	GuestName  string           `json:"guestName" binding:"required,max=120"`
	Rating     int              `json:"rating" binding:"required,min=1,max=5"`
	Category   FeedbackCategory `json:"category" binding:"required,oneof=Room Service Staff Amenities"`
	Comment    string           `json:"comment" binding:"required,max=2000"`
	RoomNumber string           `json:"roomNumber" binding:"omitempty,max=10"`
	StaffName  string           `json:"staffName" binding:"omitempty,max=120"`
}

type UpdateFeedbackStatusRequest struct {
	Status FeedbackStatus `json:"status" binding:"required,oneof=Reviewed Resolved"`
}

type WorkflowStatus string

const (
	WorkflowActive WorkflowStatus = "Active"
	WorkflowPaused WorkflowStatus = "Paused"
	WorkflowFailed WorkflowStatus = "Failed"
)

type Workflow struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Status      WorkflowStatus `json:"status"`
	Action      string         `json:"action"`
}
