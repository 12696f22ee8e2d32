package portal

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"testing"
	"time"

	"github.com/expromedia/Marx/internal/domain/user"
	"github.com/stretchr/testify/require"
)

type nopStore struct{}

func (nopStore) Load(context.Context, string) (*user.User, error) { return nil, nil }
func (nopStore) Save(context.Context, string, user.User) error { return nil }
func (nopStore) Clear(context.Context, string) error { return nil }

func newSweepTarget(t *testing.T) *Choreographer {
	t.Helper()

	c := New(nopStore{}, Timing{
		TickInterval: time.Millisecond,
		MinStep:      3,
		MaxStep:      14,
		CommitDelay:  time.Hour,
		LogoutDelay:  time.Hour,
	}, rand.New(rand.NewSource(3)), slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(c.Close)
	return c
}

func (c *Choreographer) tracked(clientID string) *clientState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.clients[clientID]
}

func TestForgetIfStale_RechecksUnderLock(t *testing.T) {
	tests := []struct {
		name    string
		// between runs after the sweep picked st as a candidate
		between func(t *testing.T, c *Choreographer)
		forget  bool
	}{
		{
			name:    "still idle",
			between: func(*testing.T, *Choreographer) {},
			forget:  true,
		},
		{
			name: "seen again",
			between: func(t *testing.T, c *Choreographer) {
				c.now = func() time.Time { return time.Now().Add(time.Minute) }
				c.Snapshot("guest")
			},
			forget: false,
		},
		{
			name: "login started",
			between: func(t *testing.T, c *Choreographer) {
				_, err := c.BeginLogin("guest", user.User{Username: "info@expromedia.com.ng", Role: user.RoleAdmin})
				require.NoError(t, err)
			},
			forget: false,
		},
		{
			name: "replaced",
			between: func(t *testing.T, c *Choreographer) {
				c.Forget("guest")
				c.Snapshot("guest")
			},
			forget: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			c := newSweepTarget(t)

			var hooked []string
			c.OnForget(func(id string) { hooked = append(hooked, id) })

			c.Snapshot("guest")
			st := c.tracked("guest")
			cutoff := time.Now().Add(time.Second).UnixNano()

			tt.between(t, c)
			hooked = nil

			require.Equal(t, tt.forget, c.forgetIfStale("guest", st, cutoff))
			if tt.forget {
				require.Nil(t, c.tracked("guest"))
				require.Equal(t, []string{"guest"}, hooked)
				return
			}

			require.NotNil(t, c.tracked("guest"))
			require.Empty(t, hooked)
		})
	}
}
