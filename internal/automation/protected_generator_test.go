package automation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestProtectedGenerator_OpensAfterThreshold(t *testing.T) {
	calls := 0
	fail := true
	inner := fakeGenerator{generateFn: func(context.Context, string) (string, error) {
		calls++
		if fail {
			return "", errors.New("503")
		}
		return "hello", nil
	}}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	g := NewProtectedGenerator(inner, ProtectedGeneratorConfig{FailureThreshold: 2, Cooldown: time.Minute})
	g.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		_, err := g.Generate(context.Background(), "p")
		require.Error(t, err)
	}
	require.Equal(t, "open", g.State())

	_, err := g.Generate(context.Background(), "p")
	require.ErrorIs(t, err, ErrCircuitOpen)
	require.Equal(t, 2, calls, "open circuit must not reach the provider")

	// cooldown elapsed, trial call succeeds and closes the circuit
	now = now.Add(time.Minute)
	fail = false

	text, err := g.Generate(context.Background(), "p")
	require.NoError(t, err)
	require.Equal(t, "hello", text)
	require.Equal(t, "closed", g.State())
}

func TestProtectedGenerator_HalfOpenFailureReopens(t *testing.T) {
	inner := fakeGenerator{generateFn: func(context.Context, string) (string, error) {
		return "", errors.New("503")
	}}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	g := NewProtectedGenerator(inner, ProtectedGeneratorConfig{FailureThreshold: 1, Cooldown: time.Second})
	g.now = func() time.Time { return now }

	_, _ = g.Generate(context.Background(), "p")
	require.Equal(t, "open", g.State())

	now = now.Add(time.Second)
	_, err := g.Generate(context.Background(), "p")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrCircuitOpen)
	require.Equal(t, "open", g.State())
}

func TestProtectedGenerator_EnforcesTimeout(t *testing.T) {
	inner := fakeGenerator{generateFn: func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}

	g := NewProtectedGenerator(inner, ProtectedGeneratorConfig{Timeout: 10 * time.Millisecond})

	_, err := g.Generate(context.Background(), "p")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
