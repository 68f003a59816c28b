// Package session owns the lifecycle of the single in-progress poker
// session: starting it, switching between play/select/break periods,
// and finalizing it into an immutable historical record.
package session

import (
	"log"
	"sync"
	"time"

	"github.com/avakulenko/grindlog/internal/bus"
	"github.com/avakulenko/grindlog/internal/clock"
	"github.com/avakulenko/grindlog/internal/store"
)

// Tracker is the session state machine. At most one session runs at a
// time; every transition reads the clock, persists the result, and is
// broadcast to observing contexts through the store's bus.
//
// Invalid transitions (Start while running, Toggle/Stop while idle)
// are silent no-ops.
type Tracker struct {
	store *store.Store
	clock *clock.Clock

	mu     sync.Mutex
	active *store.ActiveSession
	unsub  func()
}

// New restores any persisted in-progress session and starts observing
// remote changes to it. Call Close when done.
func New(s *store.Store, c *clock.Clock) *Tracker {
	t := &Tracker{store: s, clock: c}
	t.restore()
	if b := s.Bus(); b != nil {
		t.unsub = b.Subscribe(t.onChange)
	}
	return t
}

// Close stops observing remote changes.
func (t *Tracker) Close() {
	if t.unsub != nil {
		t.unsub()
	}
}

// restore loads a persisted active session after a process restart.
// A corrupt entry was already discarded by the store; a session with a
// broken current period falls back to play.
func (t *Tracker) restore() {
	as, err := t.store.ActiveSession()
	if err != nil {
		log.Printf("session: restore active session: %v", err)
		return
	}
	if as == nil {
		return
	}
	if !as.Current.Type.Valid() {
		as.Current.Type = store.PeriodPlay
	}
	if as.Current.Start.IsZero() {
		as.Current.Start = as.OverallStartTime
	}
	t.active = as
	log.Printf("session: restored active session started %s", as.OverallStartTime.Format(time.RFC3339))
}

// onChange applies changes made by another process observing the same
// store: the local view is replaced in full, last write wins. Local
// mutations already updated t.active before publishing.
func (t *Tracker) onChange(c bus.Change) {
	if !c.Remote || c.Key != bus.KeyActiveSession {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if c.Value == nil {
		t.active = nil
		return
	}
	as, err := t.store.ActiveSession()
	if err != nil {
		log.Printf("session: re-read active session: %v", err)
		return
	}
	if as != nil && !as.Current.Type.Valid() {
		as.Current.Type = store.PeriodPlay
	}
	t.active = as
}

// Running reports whether a session is in progress.
func (t *Tracker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active != nil
}

// CurrentType returns the type of the open period, or play when idle.
func (t *Tracker) CurrentType() store.PeriodType {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active == nil {
		return store.PeriodPlay
	}
	return t.active.Current.Type
}

// Snapshot returns a copy of the active session, or nil when idle.
func (t *Tracker) Snapshot() *store.ActiveSession {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active == nil {
		return nil
	}
	cp := *t.active
	cp.Closed = append([]store.Period(nil), t.active.Closed...)
	return &cp
}

// Elapsed returns whole seconds since the session started, recomputed
// from wall time on every call rather than accumulated. Zero when idle.
func (t *Tracker) Elapsed(now time.Time) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active == nil {
		return 0
	}
	secs := int64(now.Sub(t.active.OverallStartTime) / time.Second)
	if secs < 0 {
		return 0
	}
	return secs
}

// Start begins a new session with a single open play period. A no-op
// when a session is already running.
func (t *Tracker) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active != nil {
		return nil
	}

	now, _ := t.clock.Now()
	as := store.ActiveSession{
		OverallStartTime: now,
		Current:          store.OpenPeriod{Start: now, Type: store.PeriodPlay},
	}
	if err := t.store.SaveActiveSession(as); err != nil {
		return err
	}
	// A leftover unconfirmed draft from a previous session is dropped
	// once a new session starts.
	if err := t.store.ClearCompletedSession(); err != nil {
		log.Printf("session: clear stale draft: %v", err)
	}

	saved, err := t.store.ActiveSession()
	if err != nil || saved == nil {
		t.active = &as
	} else {
		t.active = saved
	}
	return nil
}

// Toggle closes the open period and opens a new one of newType. A
// no-op when idle, when newType matches the current period, or when
// newType is unknown.
func (t *Tracker) Toggle(newType store.PeriodType) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active == nil || !newType.Valid() || t.active.Current.Type == newType {
		return nil
	}

	now, _ := t.clock.Now()
	t.active.Closed = append(t.active.Closed, store.Period{
		Start: t.active.Current.Start,
		End:   now,
		Type:  t.active.Current.Type,
	})
	t.active.Current = store.OpenPeriod{Start: now, Type: newType}

	return t.store.SaveActiveSession(*t.active)
}

// Stop closes the session and publishes a finalized draft awaiting
// user confirmation (notes and hand count come later). Returns nil
// when idle. The store swap is atomic: the active session disappears
// and the draft appears together, or neither.
func (t *Tracker) Stop() (*store.Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active == nil {
		return nil, nil
	}

	now, _ := t.clock.Now()
	periods := append([]store.Period(nil), t.active.Closed...)
	periods = append(periods, store.Period{
		Start: t.active.Current.Start,
		End:   now,
		Type:  t.active.Current.Type,
	})

	draft := store.Session{
		OverallStartTime: t.active.OverallStartTime,
		OverallEndTime:   now,
		OverallDuration:  int64(now.Sub(t.active.OverallStartTime) / time.Second),
		Periods:          periods,
	}
	if draft.OverallDuration < 0 {
		draft.OverallDuration = 0
	}

	if err := t.store.FinalizeActiveSession(draft); err != nil {
		return nil, err
	}
	t.active = nil
	return &draft, nil
}

// Confirm stores the completed draft as a historical session with the
// user-supplied notes and hand count.
func (t *Tracker) Confirm(draft store.Session, notes string, handsPlayed int64) (store.Session, error) {
	return t.store.ConfirmCompletedSession(draft, notes, handsPlayed)
}
