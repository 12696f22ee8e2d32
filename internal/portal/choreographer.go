package portal

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/expromedia/Marx/internal/domain/user"
)

const storeTimeout = 3 * time.Second

type SessionStore interface {
	Load(ctx context.Context, clientID string) (*user.User, error)
	Save(ctx context.Context, clientID string, u user.User) error
	Clear(ctx context.Context, clientID string) error
}

type clientState struct {
	mu sync.Mutex

	phase    Phase
	progress int
	user     *user.User
	pending  *user.User
	nav      Nav
	lastErr  string
	restored bool

	lastSeen atomic.Int64

	// episode is bumped on every transition start; a goroutine whose episode
	// no longer matches must not touch the state.
	episode uint64
	cancel  context.CancelFunc
}

func (s *clientState) snapshot(clientID string) Snapshot {
	snap := Snapshot{
		ClientID:  clientID,
		Phase:     s.phase,
		Progress:  s.progress,
		Nav:       s.nav,
		Episode:   s.episode,
		LastError: s.lastErr,
	}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}

// Choreographer owns one state machine per client. Login and logout episodes
// run on their own goroutines and are cancelled by Forget and Close.
type Choreographer struct {
	store  SessionStore
	timing Timing
	log    *slog.Logger
	now    func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand

	root   context.Context
	stop   context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool

	clients  map[string]*clientState
	onForget func(clientID string)

	obsMu     sync.RWMutex
	observers map[uint64]Observer
	nextObs   uint64
}

func New(store SessionStore, timing Timing, rng *rand.Rand, log *slog.Logger) *Choreographer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if log == nil {
		log = slog.Default()
	}

	root, stop := context.WithCancel(context.Background())

	return &Choreographer{
		store:     store,
		timing:    timing.withDefaults(),
		log:       log,
		now:       time.Now,
		rng:       rng,
		root:      root,
		stop:      stop,
		clients:   make(map[string]*clientState),
		observers: make(map[uint64]Observer),
	}
}

func (c *Choreographer) Timing() Timing { return c.timing }

// Subscribe registers fn for every event of every client.
func (c *Choreographer) Subscribe(fn Observer) (unsubscribe func()) {
	c.obsMu.Lock()
	id := c.nextObs
	c.nextObs++
	c.observers[id] = fn
	c.obsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.obsMu.Lock()
			delete(c.observers, id)
			c.obsMu.Unlock()
		})
	}
}

func (c *Choreographer) notify(ev Event) {
	c.obsMu.RLock()
	fns := make([]Observer, 0, len(c.observers))
	for _, fn := range c.observers {
		fns = append(fns, fn)
	}
	c.obsMu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func (c *Choreographer) state(clientID string) *clientState {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.clients[clientID]
	if !ok {
		st = &clientState{phase: PhaseIdle, nav: defaultNav()}
		c.clients[clientID] = st
	}
	st.lastSeen.Store(c.now().UnixNano())

	return st
}

// track registers an episode goroutine unless the choreographer is closed.
// Callers hold the client lock.
func (c *Choreographer) track() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	c.wg.Add(1)
	return true
}

func (c *Choreographer) step() int {
	c.rngMu.Lock()
	defer c.rngMu.Unlock()

	return c.timing.MinStep + c.rng.Intn(c.timing.MaxStep-c.timing.MinStep+1)
}

// Restore seeds an idle client from the session store the first time it is
// seen, so a reload finds the committed session again.
func (c *Choreographer) Restore(ctx context.Context, clientID string) (Snapshot, error) {
	st := c.state(clientID)

	st.mu.Lock()
	defer st.mu.Unlock()

	if st.restored || st.phase != PhaseIdle {
		return st.snapshot(clientID), nil
	}

	u, err := c.store.Load(ctx, clientID)
	if err != nil {
		return st.snapshot(clientID), fmt.Errorf("restore session: %w", err)
	}

	st.restored = true
	if u != nil {
		st.phase = PhaseLoggedIn
		st.user = u
		st.nav = defaultNav()
	}

	return st.snapshot(clientID), nil
}

func (c *Choreographer) Snapshot(clientID string) Snapshot {
	st := c.state(clientID)

	st.mu.Lock()
	defer st.mu.Unlock()

	return st.snapshot(clientID)
}

// BeginLogin starts the progress animation for an idle client. u is held as
// pending and reaches the store only after the animation completes.
func (c *Choreographer) BeginLogin(clientID string, u user.User) (Snapshot, error) {
	st := c.state(clientID)

	st.mu.Lock()
	if st.phase != PhaseIdle {
		snap := st.snapshot(clientID)
		st.mu.Unlock()
		return snap, ErrBusy
	}
	if !c.track() {
		st.mu.Unlock()
		return Snapshot{}, ErrClosed
	}

	st.episode++
	ep := st.episode
	st.phase = PhaseLoggingIn
	st.progress = 0
	st.pending = &u
	st.lastErr = ""
	st.restored = true

	ctx, cancel := context.WithCancel(c.root)
	st.cancel = cancel
	snap := st.snapshot(clientID)
	st.mu.Unlock()

	c.log.Info("login choreography started", "client_id", clientID, "role", u.Role, "episode", ep)
	c.notify(Event{Kind: EventLoginStarted, Snapshot: snap})

	go c.runLogin(ctx, cancel, clientID, st, ep)

	return snap, nil
}

func (c *Choreographer) runLogin(ctx context.Context, cancel context.CancelFunc, clientID string, st *clientState, ep uint64) {
	defer c.wg.Done()
	defer cancel()

	started := c.now()

	ticker := time.NewTicker(c.timing.TickInterval)
	for reached := false; !reached; {
		select {
		case <-ctx.Done():
			ticker.Stop()
			return
		case <-ticker.C:
		}

		step := c.step()

		st.mu.Lock()
		if st.episode != ep {
			st.mu.Unlock()
			ticker.Stop()
			return
		}
		st.progress = min(st.progress+step, 100)
		reached = st.progress >= 100
		snap := st.snapshot(clientID)
		st.mu.Unlock()

		c.notify(Event{Kind: EventProgress, Snapshot: snap})
	}
	ticker.Stop()

	timer := time.NewTimer(c.timing.CommitDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}

	st.mu.Lock()
	if st.episode != ep || st.phase != PhaseLoggingIn || ctx.Err() != nil {
		st.mu.Unlock()
		return
	}

	pending := *st.pending

	saveCtx, cancelSave := context.WithTimeout(ctx, storeTimeout)
	err := c.store.Save(saveCtx, clientID, pending)
	cancelSave()

	st.pending = nil
	st.progress = 0
	st.cancel = nil

	if err != nil {
		st.phase = PhaseIdle
		st.lastErr = ErrSessionPersist.Error()
		snap := st.snapshot(clientID)
		st.mu.Unlock()

		c.log.Error("login commit failed", "client_id", clientID, "episode", ep, "err", err)
		c.notify(Event{Kind: EventEpisodeFailed, Snapshot: snap, Elapsed: c.now().Sub(started), Err: fmt.Errorf("%w: %w", ErrSessionPersist, err)})
		return
	}

	st.phase = PhaseLoggedIn
	st.user = &pending
	snap := st.snapshot(clientID)
	st.mu.Unlock()

	c.log.Info("login committed", "client_id", clientID, "role", pending.Role, "episode", ep)
	c.notify(Event{Kind: EventLoginCommitted, Snapshot: snap, Elapsed: c.now().Sub(started)})
}

// BeginLogout schedules the session clear after the logout delay.
func (c *Choreographer) BeginLogout(clientID string) (Snapshot, error) {
	st := c.state(clientID)

	st.mu.Lock()
	switch st.phase {
	case PhaseLoggedIn:
	case PhaseLoggingIn, PhaseLoggingOut:
		snap := st.snapshot(clientID)
		st.mu.Unlock()
		return snap, ErrBusy
	default:
		snap := st.snapshot(clientID)
		st.mu.Unlock()
		return snap, ErrNotLoggedIn
	}
	if !c.track() {
		st.mu.Unlock()
		return Snapshot{}, ErrClosed
	}

	st.episode++
	ep := st.episode
	st.phase = PhaseLoggingOut
	st.lastErr = ""
	st.nav.ProfileOpen = false

	ctx, cancel := context.WithCancel(c.root)
	st.cancel = cancel
	snap := st.snapshot(clientID)
	st.mu.Unlock()

	c.log.Info("logout choreography started", "client_id", clientID, "episode", ep)
	c.notify(Event{Kind: EventLogoutStarted, Snapshot: snap})

	go c.runLogout(ctx, cancel, clientID, st, ep)

	return snap, nil
}

func (c *Choreographer) runLogout(ctx context.Context, cancel context.CancelFunc, clientID string, st *clientState, ep uint64) {
	defer c.wg.Done()
	defer cancel()

	started := c.now()

	timer := time.NewTimer(c.timing.LogoutDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}

	st.mu.Lock()
	if st.episode != ep || st.phase != PhaseLoggingOut || ctx.Err() != nil {
		st.mu.Unlock()
		return
	}

	clearCtx, cancelClear := context.WithTimeout(ctx, storeTimeout)
	err := c.store.Clear(clearCtx, clientID)
	cancelClear()

	st.cancel = nil

	if err != nil {
		st.phase = PhaseLoggedIn
		st.lastErr = ErrSessionPersist.Error()
		snap := st.snapshot(clientID)
		st.mu.Unlock()

		c.log.Error("logout clear failed", "client_id", clientID, "episode", ep, "err", err)
		c.notify(Event{Kind: EventEpisodeFailed, Snapshot: snap, Elapsed: c.now().Sub(started), Err: fmt.Errorf("%w: %w", ErrSessionPersist, err)})
		return
	}

	st.phase = PhaseIdle
	st.user = nil
	st.progress = 0
	st.nav = defaultNav()
	snap := st.snapshot(clientID)
	st.mu.Unlock()

	c.log.Info("logout completed", "client_id", clientID, "episode", ep)
	c.notify(Event{Kind: EventLogoutCompleted, Snapshot: snap, Elapsed: c.now().Sub(started)})
}

// Forget cancels any running episode and drops the client's in-memory state.
// The persisted session is untouched. Safe to call more than once.
func (c *Choreographer) Forget(clientID string) {
	c.mu.Lock()
	st, ok := c.clients[clientID]
	delete(c.clients, clientID)
	hook := c.onForget
	c.mu.Unlock()

	if !ok {
		return
	}

	st.mu.Lock()
	st.episode++
	if st.cancel != nil {
		st.cancel()
		st.cancel = nil
	}
	st.mu.Unlock()

	if hook != nil {
		hook(clientID)
	}
}

// OnForget registers fn to run after a client's state has been dropped, so
// other per-client caches can follow.
func (c *Choreographer) OnForget(fn func(clientID string)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.onForget = fn
}

// SweepIdle forgets clients at rest that have not been seen for maxIdle.
func (c *Choreographer) SweepIdle(maxIdle time.Duration) int {
	cutoff := c.now().Add(-maxIdle).UnixNano()

	c.mu.Lock()
	candidates := make(map[string]*clientState)
	for id, st := range c.clients {
		candidates[id] = st
	}
	c.mu.Unlock()

	n := 0
	for id, st := range candidates {
		if c.forgetIfStale(id, st, cutoff) {
			n++
		}
	}

	return n
}

// forgetIfStale drops st only if it is still the tracked state for clientID,
// is at rest, and has not been seen since cutoff. The client lock is taken
// before c.mu, the same order BeginLogin uses through track.
func (c *Choreographer) forgetIfStale(clientID string, st *clientState, cutoff int64) bool {
	st.mu.Lock()
	if st.phase.Transient() {
		st.mu.Unlock()
		return false
	}

	// state() refreshes lastSeen under c.mu, so the value is settled here
	c.mu.Lock()
	if c.clients[clientID] != st || st.lastSeen.Load() >= cutoff {
		c.mu.Unlock()
		st.mu.Unlock()
		return false
	}
	delete(c.clients, clientID)
	hook := c.onForget
	c.mu.Unlock()

	st.episode++
	if st.cancel != nil {
		st.cancel()
		st.cancel = nil
	}
	st.mu.Unlock()

	if hook != nil {
		hook(clientID)
	}

	return true
}

func (c *Choreographer) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.clients)
}

// Close cancels every running episode and waits for the goroutines to exit.
func (c *Choreographer) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.stop()
	c.wg.Wait()
}
