// Package membership keeps the current user's joined-event set in step with
// the backend. Intents apply optimistically, then either get confirmed (and
// the affected cached reads invalidated) or rolled back to the membership the
// backend last acknowledged. Gateway calls for one event run in intent order,
// so that acknowledgement always reflects the backend's latest applied change.
package membership

import (
	"context"
	"sort"
	"sync"

	"tumatch/client/internal/api"
	"tumatch/client/internal/logging"
	"tumatch/client/internal/models"
	"tumatch/client/internal/query"

	"github.com/sirupsen/logrus"
)

// Gateway is the part of the API client the tracker drives.
type Gateway interface {
	JoinEvent(ctx context.Context, eventID, userID string) (*models.EventParticipant, error)
	LeaveEvent(ctx context.Context, eventID, userID string) error
}

// Invalidator drops cached reads by key prefix. *query.Cache implements it.
type Invalidator interface {
	Invalidate(prefixes ...string) int
}

type entry struct {
	// joined is what the user sees, optimistic while an intent is in flight.
	joined bool
	// confirmed is the membership the backend last acknowledged.
	confirmed bool
	state     State
	// intent counts intents started for the event; only the newest settles state.
	intent uint64
	// tail is closed when the newest intent's gateway call has finished.
	tail <-chan struct{}
	err  error
}

// Tracker holds one user's membership state per event.
type Tracker struct {
	mu      sync.Mutex
	userID  string
	gw      Gateway
	cache   Invalidator
	log     logrus.FieldLogger
	entries map[string]*entry
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithCache invalidates cache after every settled intent.
func WithCache(cache Invalidator) Option {
	return func(t *Tracker) { t.cache = cache }
}

// WithLogger sets the logger failures are reported to.
func WithLogger(log logrus.FieldLogger) Option {
	return func(t *Tracker) { t.log = log }
}

// NewTracker creates a tracker for userID.
func NewTracker(userID string, gw Gateway, opts ...Option) *Tracker {
	t := &Tracker{
		userID:  userID,
		gw:      gw,
		log:     logging.Discard(),
		entries: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// UserID returns the tracked user.
func (t *Tracker) UserID() string {
	return t.userID
}

// IsJoined reports the current (possibly optimistic) membership of eventID.
func (t *Tracker) IsJoined(eventID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[eventID]
	return ok && e.joined
}

// State returns the reconciliation state of eventID.
func (t *Tracker) State(eventID string) State {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.entries[eventID]; ok {
		return e.state
	}
	return NotJoined
}

// LastError returns the error of the last failed intent on eventID, if any.
func (t *Tracker) LastError(eventID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.entries[eventID]; ok {
		return e.err
	}
	return nil
}

// Joined returns the sorted ids of all joined events.
func (t *Tracker) Joined() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := make([]string, 0, len(t.entries))
	for id, e := range t.entries {
		if e.joined {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Join applies a join intent. A duplicate join reported by the backend keeps
// the optimistic state and returns nil.
func (t *Tracker) Join(ctx context.Context, eventID string) error {
	in := t.begin(eventID, IntentJoin)
	err := in.wait(ctx)
	if err == nil {
		_, err = t.gw.JoinEvent(ctx, eventID, t.userID)
	}
	if err != nil && api.IsAlreadyJoined(err) {
		t.log.WithFields(logrus.Fields{"event_id": eventID, "user_id": t.userID}).
			Debug("already joined, keeping optimistic state")
		err = nil
	}
	return t.settle(eventID, IntentJoin, in, err)
}

// Leave applies a leave intent. Leaving an event the backend does not list
// the user in is an error and rolls back.
func (t *Tracker) Leave(ctx context.Context, eventID string) error {
	in := t.begin(eventID, IntentLeave)
	err := in.wait(ctx)
	if err == nil {
		err = t.gw.LeaveEvent(ctx, eventID, t.userID)
	}
	return t.settle(eventID, IntentLeave, in, err)
}

// Toggle leaves a joined event and joins any other.
func (t *Tracker) Toggle(ctx context.Context, eventID string) error {
	if t.IsJoined(eventID) {
		return t.Leave(ctx, eventID)
	}
	return t.Join(ctx, eventID)
}

// inflight is one started intent. Gateway calls for an event are dispatched
// in the order their intents began: each waits for prev and closes done.
type inflight struct {
	seq  uint64
	prev <-chan struct{}
	done chan struct{}
}

func (in *inflight) wait(ctx context.Context) error {
	if in.prev == nil {
		return nil
	}
	select {
	case <-in.prev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// release lets the next intent dispatch once this one and all before it are done.
func (in *inflight) release() {
	if in.prev == nil {
		close(in.done)
		return
	}
	select {
	case <-in.prev:
		close(in.done)
	default:
		go func() {
			<-in.prev
			close(in.done)
		}()
	}
}

func (t *Tracker) begin(eventID string, intent Intent) *inflight {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := t.entry(eventID)
	e.intent++
	in := &inflight{seq: e.intent, prev: e.tail, done: make(chan struct{})}
	e.tail = in.done
	if intent == IntentJoin {
		e.joined, e.state = true, Joining
	} else {
		e.joined, e.state = false, Leaving
	}
	return in
}

func (t *Tracker) settle(eventID string, intent Intent, in *inflight, err error) error {
	t.mu.Lock()
	e := t.entry(eventID)
	if err == nil {
		e.confirmed = intent == IntentJoin
	}
	latest := e.intent == in.seq
	switch {
	case err == nil && latest:
		e.joined = e.confirmed
		e.err = nil
		if e.joined {
			e.state = Joined
		} else {
			e.state = NotJoined
		}
	case err != nil && latest:
		e.joined = e.confirmed
		e.state = Failed
		e.err = err
	case !e.state.Pending():
		// a newer intent gave up before dispatching
		e.joined = e.confirmed
	}
	t.mu.Unlock()
	in.release()

	entry := t.log.WithFields(logrus.Fields{
		"event_id": eventID,
		"user_id":  t.userID,
		"intent":   intent,
	})
	if err != nil {
		entry.WithError(err).WithField("superseded", !latest).Warn("membership intent failed")
		return &IntentError{
			Intent:  intent,
			EventID: eventID,
			Message: failureMessage(intent),
			Err:     err,
		}
	}

	if t.cache != nil {
		t.cache.Invalidate(query.EventKey(eventID), query.ParticipantsKey(eventID), query.EventsPrefix)
	}
	entry.Debug("membership intent confirmed")
	return nil
}

// entry must be called with t.mu held.
func (t *Tracker) entry(eventID string) *entry {
	e, ok := t.entries[eventID]
	if !ok {
		e = &entry{state: NotJoined}
		t.entries[eventID] = e
	}
	return e
}

// Sync rebuilds membership from events annotated with current_user_joined.
// Events with an intent in flight keep their optimistic state.
func (t *Tracker) Sync(events []models.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, ev := range events {
		t.confirm(ev.ID, ev.CurrentUserJoined)
	}
}

// SyncRoster derives the membership of one event from its authoritative roster.
func (t *Tracker) SyncRoster(eventID string, participants []models.EventParticipant) {
	joined := false
	for _, p := range participants {
		if p.UserID == t.userID {
			joined = true
			break
		}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.confirm(eventID, joined)
}

func (t *Tracker) confirm(eventID string, joined bool) {
	e := t.entry(eventID)
	if e.state.Pending() {
		return
	}
	e.joined = joined
	e.confirmed = joined
	e.err = nil
	if joined {
		e.state = Joined
	} else {
		e.state = NotJoined
	}
}
