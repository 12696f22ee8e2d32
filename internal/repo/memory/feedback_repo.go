package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/expromedia/Marx/internal/domain/hotel"
)

// FeedbackRepo holds a per-client feedback list seeded from the demo records.
// Nothing here outlives the process.
type FeedbackRepo struct {
	mu    sync.Mutex
	lists map[string][]hotel.Feedback
	now   func() time.Time
}

func NewFeedbackRepo() *FeedbackRepo {
	return &FeedbackRepo{
		lists: make(map[string][]hotel.Feedback),
		now:   time.Now,
	}
}

// list returns the client's slice, seeding it on first use. Callers hold mu.
func (r *FeedbackRepo) list(clientID string) []hotel.Feedback {
	l, ok := r.lists[clientID]
	if !ok {
		l = hotel.SampleFeedback()
		r.lists[clientID] = l
	}
	return l
}

func (r *FeedbackRepo) List(_ context.Context, clientID string) ([]hotel.Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.list(clientID)), nil
}

// Add puts a new entry at the top of the list with status New.
func (r *FeedbackRepo) Add(_ context.Context, clientID string, req hotel.CreateFeedbackRequest) (hotel.Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l := r.list(clientID)
	now := r.now().UTC()

	id := fmt.Sprintf("f%d", now.UnixMilli())
	for slices.ContainsFunc(l, func(f hotel.Feedback) bool { return f.ID == id }) {
		now = now.Add(time.Millisecond)
		id = fmt.Sprintf("f%d", now.UnixMilli())
	}

	fb := hotel.Feedback{
		ID:         id,
		GuestName:  req.GuestName,
		Rating:     req.Rating,
		Comment:    req.Comment,
		Category:   req.Category,
		Date:       now.Format(time.DateOnly),
		RoomNumber: req.RoomNumber,
		StaffName:  req.StaffName,
		Status:     hotel.FeedbackNew,
	}

	r.lists[clientID] = append([]hotel.Feedback{fb}, l...)

	return fb, nil
}

func (r *FeedbackRepo) UpdateStatus(_ context.Context, clientID, id string, status hotel.FeedbackStatus) (hotel.Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l := r.list(clientID)

	i := slices.IndexFunc(l, func(f hotel.Feedback) bool { return f.ID == id })
	if i < 0 {
		return hotel.Feedback{}, hotel.ErrFeedbackNotFound
	}

	if l[i].Status == status {
		return l[i], nil
	}
	if !l[i].Status.CanTransition(status) {
		return hotel.Feedback{}, fmt.Errorf("%w: %s -> %s", hotel.ErrInvalidTransition, l[i].Status, status)
	}

	l[i].Status = status

	return l[i], nil
}

// Forget drops the client's list; the next read reseeds it.
func (r *FeedbackRepo) Forget(clientID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.lists, clientID)
}
