package hotel

// Fixed demo records. Every accessor returns a fresh copy so callers can
// filter or append without touching the shared values.

func Rooms() []Room {
	return []Room{
		{ID: "1", Number: "101", Type: RoomSingle, Price: 150, Status: RoomAvailable, Amenities: []string{"Wifi", "TV", "Coffee Maker"}, Image: "https://picsum.photos/400/300?random=1"},
		{ID: "2", Number: "102", Type: RoomDouble, Price: 250, Status: RoomOccupied, Amenities: []string{"Wifi", "TV", "Mini Bar"}, Image: "https://picsum.photos/400/300?random=2"},
		{ID: "3", Number: "201", Type: RoomSuite, Price: 500, Status: RoomAvailable, Amenities: []string{"Sea View", "Balcony", "King Bed"}, Image: "https://picsum.photos/400/300?random=3"},
		{ID: "4", Number: "202", Type: RoomDeluxe, Price: 350, Status: RoomCleaning, Amenities: []string{"Sea View", "Wifi", "Breakfast"}, Image: "https://picsum.photos/400/300?random=4"},
		{ID: "5", Number: "301", Type: RoomSuite, Price: 600, Status: RoomMaintenance, Amenities: []string{"Balcony", "Kitchen", "King Bed"}, Image: "https://picsum.photos/400/300?random=5"},
		{ID: "6", Number: "103", Type: RoomSingle, Price: 180, Status: RoomAvailable, Amenities: []string{"Wifi", "Garden View"}, Image: "https://picsum.photos/400/300?random=6"},
	}
}

func Inventory() []InventoryItem {
	return []InventoryItem{
		{ID: "i1", Name: "Towels", Quantity: 150, MinThreshold: 50, Category: "Linens"},
		{ID: "i2", Name: "Soap Bars", Quantity: 200, MinThreshold: 100, Category: "Toiletries"},
		{ID: "i3", Name: "Bedsheets", Quantity: 80, MinThreshold: 40, Category: "Linens"},
		{ID: "i4", Name: "Mini Bar Water", Quantity: 300, MinThreshold: 100, Category: "Food & Beverage"},
	}
}

func Reservations() []Reservation {
	return []Reservation{
		{ID: "r1", GuestName: "Alice Johnson", RoomID: "102", CheckIn: "2024-05-10", CheckOut: "2024-05-15", Status: ReservationConfirmed},
		{ID: "r2", GuestName: "Bob Smith", RoomID: "202", CheckIn: "2024-05-12", CheckOut: "2024-05-14", Status: ReservationPending},
		{ID: "r3", GuestName: "Charlie Davis", RoomID: "301", CheckIn: "2024-05-08", CheckOut: "2024-05-10", Status: ReservationCheckedOut},
	}
}

func Guests() []Guest {
	return []Guest{
		{ID: "g1", Name: "John Wick", Email: "john@continental.com", Stays: 12, Rating: 5, Spent: "$12,400", Location: "New York, USA"},
		{ID: "g2", Name: "Diana Prince", Email: "diana@themyscira.gov", Stays: 4, Rating: 5, Spent: "$8,200", Location: "London, UK"},
		{ID: "g3", Name: "Arthur Curry", Email: "king@atlantis.org", Stays: 2, Rating: 4, Spent: "$3,100", Location: "Amnesty Bay, ME"},
	}
}

func SampleFeedback() []Feedback {
	return []Feedback{
		{
			ID:         "f1",
			GuestName:  "John Wick",
			Rating:     5,
			Comment:    "Exceptional service and the sea view room was breathtaking. Will definitely return!",
			Category:   FeedbackRoom,
			Date:       "2024-04-15",
			RoomNumber: "201",
			Status:     FeedbackReviewed,
		},
		{
			ID:        "f2",
			GuestName: "Diana Prince",
			Rating:    4,
			Comment:   "The spa facilities are top-notch. Staff was very helpful with my luggage.",
			Category:  FeedbackService,
			Date:      "2024-04-18",
			Status:    FeedbackNew,
		},
		{
			ID:         "f3",
			GuestName:  "Arthur Curry",
			Rating:     3,
			Comment:    "The AC in room 102 was a bit noisy during the night.",
			Category:   FeedbackRoom,
			Date:       "2024-04-20",
			RoomNumber: "102",
			Status:     FeedbackResolved,
		},
		{
			ID:        "f4",
			GuestName: "Bruce Wayne",
			Rating:    5,
			Comment:   "Concierge handled my late-night requests with absolute professional discretion. Highly commendable.",
			Category:  FeedbackStaff,
			Date:      "2024-04-22",
			StaffName: "Alfred",
			Status:    FeedbackNew,
		},
	}
}

func Workflows() []Workflow {
	return []Workflow{
		{
			ID:          "pre-arrival",
			Name:        "Pre-arrival Automation",
			Description: "Automatically triggers when a reservation status changes to 'Confirmed'. Sends personalized emails with hotel info and a pre-check-in link.",
			Status:      WorkflowActive,
			Action:      "Test Run Automation",
		},
		{
			ID:          "check-out",
			Name:        "Check-out Intelligence",
			Description: "Triggers upon guest departure. Generates final invoice summary and sends a survey link to capture guest satisfaction in real-time.",
			Status:      WorkflowActive,
			Action:      "Execute Workflow",
		},
	}
}
