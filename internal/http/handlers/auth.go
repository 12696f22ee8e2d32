package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/expromedia/Marx/internal/auth"
	"github.com/expromedia/Marx/internal/challenge"
	"github.com/expromedia/Marx/internal/domain/user"
	"github.com/expromedia/Marx/internal/http/middlewares"
	"github.com/expromedia/Marx/internal/portal"
	"github.com/gin-gonic/gin"
)

const (
	challengeMismatchMessage = "Invalid verification answer. Please try again."
	streamKeepAlive          = 15 * time.Second
)

type ChallengeIssuer interface {
	Current(clientID string) challenge.Challenge
	Issue(clientID string) challenge.Challenge
	Peek(clientID string) (challenge.Challenge, bool)
	Check(clientID, input string) bool
	Forget(clientID string)
}

type CredentialValidator interface {
	Validate(identity, secret string, role user.Role, challengeInput string, expectedAnswer int) (user.User, error)
}

type Choreography interface {
	Restore(ctx context.Context, clientID string) (portal.Snapshot, error)
	BeginLogin(clientID string, u user.User) (portal.Snapshot, error)
	BeginLogout(clientID string) (portal.Snapshot, error)
	Subscribe(fn portal.Observer) (unsubscribe func())
}

type TokenIssuer interface {
	GenerateAccessToken(clientID string, u user.User) (string, time.Time, error)
}

type LoginRecorder interface {
	ObserveLoginAttempt(role, result string)
}

type AuthHandler struct {
	issuer    ChallengeIssuer
	validator CredentialValidator
	sessions  Choreography
	tokens    TokenIssuer
	rec       LoginRecorder
}

func NewAuthHandler(issuer ChallengeIssuer, validator CredentialValidator, sessions Choreography, tokens TokenIssuer, rec LoginRecorder) *AuthHandler {
	return &AuthHandler{
		issuer:    issuer,
		validator: validator,
		sessions:  sessions,
		tokens:    tokens,
		rec:       rec,
	}
}

type LoginRequest struct {
	Username        string `json:"username" binding:"required,max=254"`
	Password        string `json:"password" binding:"required,max=128"`
	Role            string `json:"role" binding:"required,role"`
	ChallengeAnswer string `json:"challengeAnswer" binding:"max=16"`
}

type CheckChallengeRequest struct {
	Answer string `json:"answer" binding:"max=16"`
}

type sessionResponse struct {
	portal.Snapshot
	AccessToken string     `json:"accessToken,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
}

func (h *AuthHandler) record(role user.Role, result string) {
	if h.rec != nil {
		h.rec.ObserveLoginAttempt(string(role), result)
	}
}

// GetChallenge returns the live challenge, issuing one on first contact.
func (h *AuthHandler) GetChallenge(ctx *gin.Context) {
	c := h.issuer.Current(middlewares.ClientIDFromContext(ctx))

	ctx.JSON(http.StatusOK, gin.H{"question": c.Question})
}

func (h *AuthHandler) RefreshChallenge(ctx *gin.Context) {
	c := h.issuer.Issue(middlewares.ClientIDFromContext(ctx))

	ctx.JSON(http.StatusOK, gin.H{"question": c.Question})
}

// CheckChallenge reports whether answer solves the live challenge. The login
// form keeps its submit button disabled until this is true.
func (h *AuthHandler) CheckChallenge(ctx *gin.Context) {
	var req CheckChallengeRequest
	if !BindJSON(ctx, &req) {
		return
	}

	ready := h.issuer.Check(middlewares.ClientIDFromContext(ctx), req.Answer)

	ctx.JSON(http.StatusOK, gin.H{"ready": ready})
}

func (h *AuthHandler) rejectChallenge(ctx *gin.Context, clientID string, role user.Role) {
	fresh := h.issuer.Issue(clientID)
	h.record(role, "challenge_mismatch")

	RespondError(ctx, http.StatusBadRequest, "challenge_mismatch", challengeMismatchMessage, gin.H{
		"question": fresh.Question,
	})
}

// Login checks the challenge and the credentials and, when both pass, starts
// the login choreography. The session is committed once it finishes.
func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest
	if !BindJSON(ctx, &req) {
		return
	}

	role, err := user.ParseRole(req.Role)
	if err != nil {
		RespondBadRequest(ctx, "Unknown role", nil)
		return
	}

	clientID := middlewares.ClientIDFromContext(ctx)

	if _, err := h.sessions.Restore(ctx.Request.Context(), clientID); err != nil {
		_ = ctx.Error(err)
		RespondUnavailable(ctx, "session_unavailable", "Session storage is unavailable")
		return
	}

	live, ok := h.issuer.Peek(clientID)
	if !ok {
		h.rejectChallenge(ctx, clientID, role)
		return
	}

	u, err := h.validator.Validate(req.Username, req.Password, role, req.ChallengeAnswer, live.Answer)

	var invalid *auth.InvalidCredentialsError
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrChallengeMismatch):
		h.rejectChallenge(ctx, clientID, role)
		return
	case errors.As(err, &invalid):
		fresh := h.issuer.Issue(clientID)
		h.record(role, "invalid_credentials")
		RespondUnauthorized(ctx, "invalid_credentials", invalid.Message(), gin.H{
			"question": fresh.Question,
		})
		return
	case errors.Is(err, user.ErrUnknownRole):
		RespondBadRequest(ctx, "Unknown role", nil)
		return
	default:
		_ = ctx.Error(err)
		RespondInternal(ctx, "Could not validate credentials")
		return
	}

	snap, err := h.sessions.BeginLogin(clientID, u)
	switch {
	case err == nil:
	case errors.Is(err, portal.ErrBusy):
		h.record(role, "busy")
		if snap.Phase == portal.PhaseLoggedIn {
			RespondConflict(ctx, "already_logged_in", "This client is already signed in.")
			return
		}
		RespondConflict(ctx, "session_busy", "A login or logout is already in progress.")
		return
	case errors.Is(err, portal.ErrClosed):
		RespondUnavailable(ctx, "shutting_down", "The server is shutting down")
		return
	default:
		_ = ctx.Error(err)
		RespondInternal(ctx, "Could not start session")
		return
	}

	h.issuer.Forget(clientID)
	h.record(role, "accepted")

	ctx.JSON(http.StatusAccepted, gin.H{
		"session": snap,
		"stream":  "/auth/session/stream",
	})
}

// Session reports the client's phase. Once a session is committed the
// response carries an access token for the dashboard routes.
func (h *AuthHandler) Session(ctx *gin.Context) {
	clientID := middlewares.ClientIDFromContext(ctx)

	snap, err := h.sessions.Restore(ctx.Request.Context(), clientID)
	if err != nil {
		_ = ctx.Error(err)
		RespondUnavailable(ctx, "session_unavailable", "Session storage is unavailable")
		return
	}

	resp := sessionResponse{Snapshot: snap}

	if snap.User != nil && snap.Phase == portal.PhaseLoggedIn {
		token, exp, err := h.tokens.GenerateAccessToken(clientID, *snap.User)
		if err != nil {
			RespondInternal(ctx, "Could not generate access token")
			return
		}
		resp.AccessToken = token
		resp.ExpiresAt = &exp
	}

	ctx.JSON(http.StatusOK, resp)
}

func episodeEnded(k portal.EventKind) bool {
	switch k {
	case portal.EventLoginCommitted, portal.EventLogoutCompleted, portal.EventEpisodeFailed:
		return true
	default:
		return false
	}
}

// Stream pushes the choreography of the calling client as server-sent events
// until the running episode ends. A client at rest gets one snapshot.
func (h *AuthHandler) Stream(ctx *gin.Context) {
	clientID := middlewares.ClientIDFromContext(ctx)

	events := make(chan portal.Event, 64)
	unsubscribe := h.sessions.Subscribe(func(ev portal.Event) {
		if ev.Snapshot.ClientID != clientID {
			return
		}
		select {
		case events <- ev:
		default: // slow reader, it will catch up from the next event
		}
	})
	defer unsubscribe()

	snap, err := h.sessions.Restore(ctx.Request.Context(), clientID)
	if err != nil {
		_ = ctx.Error(err)
		RespondUnavailable(ctx, "session_unavailable", "Session storage is unavailable")
		return
	}

	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("X-Accel-Buffering", "no")

	ctx.SSEvent("snapshot", snap)
	ctx.Writer.Flush()

	if !snap.Phase.Transient() {
		return
	}

	keepAlive := time.NewTicker(streamKeepAlive)
	defer keepAlive.Stop()

	sent := snap.Progress

	ctx.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Request.Context().Done():
			return false
		case <-keepAlive.C:
			_, _ = io.WriteString(w, ": keepalive\n\n")
			return true
		case ev := <-events:
			// events buffered before the snapshot was taken can trail it
			if ev.Kind == portal.EventProgress && ev.Snapshot.Episode == snap.Episode && ev.Snapshot.Progress <= sent {
				return true
			}
			if ev.Kind == portal.EventProgress {
				sent = ev.Snapshot.Progress
			}
			ctx.SSEvent(string(ev.Kind), ev.Snapshot)
			return !episodeEnded(ev.Kind)
		}
	})
}

func (h *AuthHandler) Logout(ctx *gin.Context) {
	snap, err := h.sessions.BeginLogout(middlewares.ClientIDFromContext(ctx))

	switch {
	case err == nil:
	case errors.Is(err, portal.ErrBusy):
		RespondConflict(ctx, "session_busy", "A login or logout is already in progress.")
		return
	case errors.Is(err, portal.ErrNotLoggedIn):
		RespondConflict(ctx, "not_logged_in", "There is no session to end.")
		return
	case errors.Is(err, portal.ErrClosed):
		RespondUnavailable(ctx, "shutting_down", "The server is shutting down")
		return
	default:
		_ = ctx.Error(err)
		RespondInternal(ctx, "Could not end session")
		return
	}

	ctx.JSON(http.StatusAccepted, gin.H{
		"session": snap,
		"stream":  "/auth/session/stream",
	})
}
