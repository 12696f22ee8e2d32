package jobs

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeRecorder struct {
	mu  sync.Mutex
	got map[string]int
}

func (f *fakeRecorder) ObserveSweep(target string, removed int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got[target] += removed
}

func TestScheduler_RunNow(t *testing.T) {
	rec := &fakeRecorder{got: map[string]int{}}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	s := NewScheduler("@every 1h", rec, log,
		Task{Name: "challenges", Run: func() int { return 2 }},
		Task{Name: "clients", Run: func() int { return 0 }},
	)

	s.RunNow()

	require.Equal(t, map[string]int{"challenges": 2, "clients": 0}, rec.got)
}

func TestScheduler_RejectsBadSpec(t *testing.T) {
	s := NewScheduler("every now and then", nil, nil, Task{Name: "x", Run: func() int { return 0 }})
	require.Error(t, s.Start())
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler("@every 1h", nil, nil, Task{Name: "x", Run: func() int { return 0 }})
	require.NoError(t, s.Start())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}
