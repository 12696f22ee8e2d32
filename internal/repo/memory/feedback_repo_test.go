package memory

import (
	"context"
	"testing"
	"time"

	"github.com/expromedia/Marx/internal/domain/hotel"
	"github.com/stretchr/testify/require"
)

func TestFeedbackRepo_AddPrependsNewEntry(t *testing.T) {
	ctx := context.Background()
	r := NewFeedbackRepo()
	r.now = func() time.Time { return time.Date(2024, 5, 1, 23, 30, 0, 0, time.UTC) }

	fb, err := r.Add(ctx, "c1", hotel.CreateFeedbackRequest{
		GuestName: "Clark Kent",
		Rating:    4,
		Category:  hotel.FeedbackAmenities,
		Comment:   "Pool was great.",
	})
	require.NoError(t, err)
	require.Equal(t, hotel.FeedbackNew, fb.Status)
	require.Equal(t, "2024-05-01", fb.Date)
	require.Equal(t, "f1714606200000", fb.ID)

	list, err := r.List(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, list, 5)
	require.Equal(t, fb.ID, list[0].ID)

	// same millisecond still yields a distinct id
	again, err := r.Add(ctx, "c1", hotel.CreateFeedbackRequest{GuestName: "Lois", Rating: 5, Category: hotel.FeedbackRoom, Comment: "ok"})
	require.NoError(t, err)
	require.NotEqual(t, fb.ID, again.ID)

	other, err := r.List(ctx, "c2")
	require.NoError(t, err)
	require.Len(t, other, 4, "clients do not share lists")
}

func TestFeedbackRepo_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	r := NewFeedbackRepo()

	fb, err := r.UpdateStatus(ctx, "c1", "f2", hotel.FeedbackResolved)
	require.NoError(t, err)
	require.Equal(t, hotel.FeedbackResolved, fb.Status)

	_, err = r.UpdateStatus(ctx, "c1", "f3", hotel.FeedbackReviewed)
	require.ErrorIs(t, err, hotel.ErrInvalidTransition)

	_, err = r.UpdateStatus(ctx, "c1", "nope", hotel.FeedbackReviewed)
	require.ErrorIs(t, err, hotel.ErrFeedbackNotFound)

	r.Forget("c1")
	list, err := r.List(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, hotel.FeedbackNew, list[1].Status, "forget reseeds from demo data")
}
