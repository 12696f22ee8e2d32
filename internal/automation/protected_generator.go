package automation

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker open")

type breakerState string

const (
	stateClosed   breakerState = "closed"
	stateOpen     breakerState = "open"
	stateHalfOpen breakerState = "half_open"
)

type ProtectedGeneratorConfig struct {
	Timeout          time.Duration // hard timeout per call
	FailureThreshold int           // consecutive failures to open circuit
	Cooldown         time.Duration // how long to stay open before half-open
	HalfOpenMaxCalls int           // trial calls allowed in half-open
}

// ProtectedGenerator wraps a Generator with a per-call timeout and a circuit
// breaker, so an unreachable provider fails fast instead of tying up requests.
type ProtectedGenerator struct {
	inner Generator
	cfg   ProtectedGeneratorConfig
	now   func() time.Time

	mu                  sync.Mutex
	state               breakerState
	consecutiveFailures int
	openedAt            time.Time
	halfOpenInFlight    int
}

func NewProtectedGenerator(inner Generator, cfg ProtectedGeneratorConfig) *ProtectedGenerator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	if cfg.HalfOpenMaxCalls <= 0 {
		cfg.HalfOpenMaxCalls = 1
	}

	return &ProtectedGenerator{
		inner: inner,
		cfg:   cfg,
		now:   time.Now,
		state: stateClosed,
	}
}

func (g *ProtectedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if !g.allowRequest() {
		return "", ErrCircuitOpen
	}

	callCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	text, err := g.inner.Generate(callCtx, prompt)

	g.afterRequest(err)

	return text, err
}

func (g *ProtectedGenerator) State() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return string(g.state)
}

func (g *ProtectedGenerator) allowRequest() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.state {
	case stateClosed:
		return true
	case stateOpen:
		if g.now().Sub(g.openedAt) < g.cfg.Cooldown {
			return false
		}
		g.state = stateHalfOpen
		g.halfOpenInFlight = 1
		return true
	case stateHalfOpen:
		if g.halfOpenInFlight >= g.cfg.HalfOpenMaxCalls {
			return false
		}
		g.halfOpenInFlight++
		return true
	default:
		return true
	}
}

func (g *ProtectedGenerator) afterRequest(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == stateHalfOpen && g.halfOpenInFlight > 0 {
		g.halfOpenInFlight--
	}

	if err == nil {
		g.consecutiveFailures = 0
		g.state = stateClosed
		return
	}

	// the caller going away says nothing about the provider
	if errors.Is(err, context.Canceled) {
		return
	}

	g.consecutiveFailures++

	if g.state == stateHalfOpen || g.consecutiveFailures >= g.cfg.FailureThreshold {
		g.state = stateOpen
		g.openedAt = g.now()
	}
}
