// Package portal drives the per-client login and logout choreography and keeps
// the navigation state of every signed-in client.
package portal

import (
	"errors"
	"time"

	"github.com/expromedia/Marx/internal/dashboard"
	"github.com/expromedia/Marx/internal/domain/user"
)

type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseLoggingIn  Phase = "logging_in"
	PhaseLoggedIn   Phase = "logged_in"
	PhaseLoggingOut Phase = "logging_out"
)

// Transient phases end on their own.
func (p Phase) Transient() bool {
	return p == PhaseLoggingIn || p == PhaseLoggingOut
}

var (
	ErrBusy           = errors.New("a login or logout is already in progress")
	ErrNotLoggedIn    = errors.New("not logged in")
	ErrTabNotAllowed  = errors.New("tab not available for role")
	ErrClosed         = errors.New("choreographer closed")
	ErrSessionPersist = errors.New("could not persist session")
)

type Nav struct {
	ActiveTab        string `json:"activeTab"`
	MobileNavOpen    bool   `json:"mobileNavOpen"`
	ProfileOpen      bool   `json:"profileOpen"`
	SidebarCollapsed bool   `json:"sidebarCollapsed"`
}

func defaultNav() Nav {
	return Nav{ActiveTab: dashboard.DefaultTabLabel}
}

type Snapshot struct {
	ClientID  string     `json:"clientId"`
	Phase     Phase      `json:"phase"`
	Progress  int        `json:"progress"`
	User      *user.User `json:"user,omitempty"`
	Nav       Nav        `json:"nav"`
	Episode   uint64     `json:"episode"`
	LastError string     `json:"lastError,omitempty"`
}

type EventKind string

const (
	EventLoginStarted    EventKind = "login_started"
	EventProgress        EventKind = "progress"
	EventLoginCommitted  EventKind = "login_committed"
	EventLogoutStarted   EventKind = "logout_started"
	EventLogoutCompleted EventKind = "logout_completed"
	EventEpisodeFailed   EventKind = "episode_failed"
)

// Event is delivered to observers after the state change it describes.
// Elapsed is set on the events that end an episode.
type Event struct {
	Kind     EventKind
	Snapshot Snapshot
	Elapsed  time.Duration
	Err      error
}

// Observer must not block.
type Observer func(Event)

// Timing holds the choreography durations and the progress step range.
type Timing struct {
	TickInterval time.Duration
	MinStep      int
	MaxStep      int
	CommitDelay  time.Duration
	LogoutDelay  time.Duration
}

func DefaultTiming() Timing {
	return Timing{
		TickInterval: 120 * time.Millisecond,
		MinStep:      3,
		MaxStep:      14,
		CommitDelay:  600 * time.Millisecond,
		LogoutDelay:  2500 * time.Millisecond,
	}
}

func (t Timing) withDefaults() Timing {
	d := DefaultTiming()
	if t.TickInterval <= 0 {
		t.TickInterval = d.TickInterval
	}
	if t.MinStep <= 0 {
		t.MinStep = d.MinStep
	}
	if t.MaxStep < t.MinStep {
		t.MaxStep = max(d.MaxStep, t.MinStep)
	}
	if t.CommitDelay < 0 {
		t.CommitDelay = d.CommitDelay
	}
	if t.LogoutDelay < 0 {
		t.LogoutDelay = d.LogoutDelay
	}
	return t
}
