package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/expromedia/Marx/internal/actorctx"
)

var (
	ErrUnknownWorkflow  = errors.New("unknown workflow")
	ErrRunInProgress    = errors.New("a workflow is already running")
	ErrRemoteGeneration = errors.New("remote generation failed")
)

// FailureMessage is what the dashboard shows in place of generated content.
const FailureMessage = "Failed to run AI workflow. Please check your API configuration."

type workflow struct {
	title    string
	prompt   string
	fallback string
}

var workflows = map[string]workflow{
	"pre-arrival": {
		title: "Pre-arrival Email Generated (Automation Active)",
		prompt: `Generate a high-end, welcoming pre-arrival email for a guest named "John Wick" staying at Grand Port Hotel & Suites.
Include hotel features (Infinity Pool, Michelin Star Dining, Spa), check-in details (starts at 3 PM), and a call-to-action link for pre-check-in.
Keep it professional but warm. Use modern formatting.`,
		fallback: "Error generating email.",
	},
	"check-out": {
		title: "Check-out Summary & Feedback Request Generated",
		prompt: `Generate a professional invoice summary and thank-you email for a guest named "Diana Prince" who just checked out of Grand Port Hotel & Suites.
Include a polite request for feedback through a survey link. Ensure the tone is elegant and grateful.`,
		fallback: "Error generating content.",
	},
}

type Output struct {
	WorkflowID  string    `json:"workflowId"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	GeneratedAt time.Time `json:"generatedAt"`
	RequestedBy string    `json:"requestedBy,omitempty"`
}

// Recorder receives one observation per run; result is "ok", "empty" or "error".
type Recorder interface {
	ObserveGeneration(workflowID, result string, d time.Duration)
}

type Service struct {
	gen Generator
	rec Recorder
	log *slog.Logger
	now func() time.Time

	mu      sync.Mutex
	running map[string]struct{}
}

func NewService(gen Generator, rec Recorder, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		gen:     gen,
		rec:     rec,
		log:     log,
		now:     time.Now,
		running: make(map[string]struct{}),
	}
}

func Known(workflowID string) bool {
	_, ok := workflows[workflowID]
	return ok
}

// Run executes one workflow for a client. Only one run per client may be in
// flight; a second call fails with ErrRunInProgress.
func (s *Service) Run(ctx context.Context, clientID, workflowID string) (Output, error) {
	wf, ok := workflows[workflowID]
	if !ok {
		return Output{}, ErrUnknownWorkflow
	}

	if !s.acquire(clientID) {
		return Output{}, ErrRunInProgress
	}
	defer s.release(clientID)

	start := s.now()
	text, err := s.gen.Generate(ctx, wf.prompt)
	elapsed := s.now().Sub(start)

	if err != nil {
		s.observe(workflowID, "error", elapsed)
		s.log.WarnContext(ctx, "workflow generation failed",
			"client_id", clientID,
			"workflow", workflowID,
			"err", err,
		)
		return Output{}, fmt.Errorf("%w: %w", ErrRemoteGeneration, err)
	}

	result := "ok"
	if strings.TrimSpace(text) == "" {
		result = "empty"
		text = wf.fallback
	}
	s.observe(workflowID, result, elapsed)

	s.log.InfoContext(ctx, "workflow generated",
		"client_id", clientID,
		"workflow", workflowID,
		"result", result,
		"latency_ms", elapsed.Milliseconds(),
	)

	out := Output{
		WorkflowID:  workflowID,
		Title:       wf.title,
		Content:     text,
		GeneratedAt: s.now().UTC(),
	}
	if u, ok := actorctx.UserFrom(ctx); ok {
		out.RequestedBy = u.DisplayName
	}

	return out, nil
}

func (s *Service) Running(clientID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.running[clientID]
	return ok
}

func (s *Service) acquire(clientID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.running[clientID]; busy {
		return false
	}
	s.running[clientID] = struct{}{}
	return true
}

func (s *Service) release(clientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.running, clientID)
}

func (s *Service) observe(workflowID, result string, d time.Duration) {
	if s.rec != nil {
		s.rec.ObserveGeneration(workflowID, result, d)
	}
}
