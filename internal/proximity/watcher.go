package proximity

import (
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"popin/backend/internal/geo"
)

// Place is the snapshot of a venue the watcher evaluates against. The place
// directory owns the underlying record; the watcher only reads snapshots.
type Place struct {
	ID     string
	Name   string
	Coord  geo.Coordinate
	Active bool
}

// Result is the outcome of one place's evaluation within a tick. When Err is
// set the place's stored state was left untouched and CanJoin is false.
type Result struct {
	PlaceID   string
	DistanceM float64
	Tier      Tier
	CanJoin   bool
	Notified  bool
	Err       error
}

// Notifier delivers a proximity alert. Delivery is best effort: the watcher
// commits its bookkeeping before calling it and never retries.
type Notifier interface {
	Notify(sessionID, placeID, title, body string) error
}

type placeState struct {
	tier           Tier
	changedAt      time.Time
	notified       bool
	lastNotifiedAt time.Time
}

type sessionState struct {
	mu     sync.Mutex
	places map[string]*placeState
}

// Watcher tracks per-session, per-place proximity episodes. An episode starts
// when a session's tier for a place leaves Far and ends when it returns to
// Far; at most one notification fires per episode, and a fresh episode that
// starts within the cooldown of the last notification stays silent.
type Watcher struct {
	mu       sync.RWMutex
	policy   *Policy
	cooldown time.Duration
	notifier Notifier
	log      *zap.Logger
	sessions map[string]*sessionState

	now func() time.Time
}

// NewWatcher builds a watcher around a validated policy. notifier may be nil,
// in which case episode starts are tracked but nothing is delivered.
func NewWatcher(policy *Policy, cooldown time.Duration, notifier Notifier, log *zap.Logger) *Watcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		policy:   policy,
		cooldown: cooldown,
		notifier: notifier,
		log:      log,
		sessions: make(map[string]*sessionState),
		now:      time.Now,
	}
}

// Evaluate applies one location tick for a session against a place snapshot.
// Inactive places have their stored state discarded and are omitted from the
// results. A place whose coordinates cannot be evaluated is flagged in its
// Result with CanJoin false and does not disturb other places. An invalid
// user coordinate fails the whole tick and leaves all state untouched.
func (w *Watcher) Evaluate(sessionID string, user geo.Coordinate, places []Place) ([]Result, error) {
	if err := user.Validate(); err != nil {
		return nil, err
	}

	w.mu.RLock()
	policy := w.policy
	cooldown := w.cooldown
	w.mu.RUnlock()

	sess := w.session(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	now := w.now()
	results := make([]Result, 0, len(places))
	for _, place := range places {
		if !place.Active {
			delete(sess.places, place.ID)
			continue
		}

		d, err := geo.Distance(user, place.Coord)
		if err != nil {
			results = append(results, Result{PlaceID: place.ID, Err: err})
			continue
		}

		tier := policy.Classify(d)
		st, ok := sess.places[place.ID]
		if !ok {
			st = &placeState{tier: TierFar, changedAt: now}
			sess.places[place.ID] = st
		}

		notifiedNow := false
		if st.tier == TierFar && tier != TierFar {
			// Episode start. Suppression is anchored to the most recent
			// notification, independent of exit/re-entry.
			if st.lastNotifiedAt.IsZero() || now.Sub(st.lastNotifiedAt) >= cooldown {
				st.notified = true
				st.lastNotifiedAt = now
				notifiedNow = true
				w.emit(sessionID, place)
			}
		}
		if st.tier != TierFar && tier == TierFar {
			st.notified = false
		}
		st.tier = tier
		st.changedAt = now

		results = append(results, Result{
			PlaceID:   place.ID,
			DistanceM: d,
			Tier:      tier,
			CanJoin:   CanJoinChat(tier),
			Notified:  notifiedNow,
		})
	}
	return results, nil
}

// CanJoin reports whether the session's last evaluated tier for the place
// permits chat. No stored state means no valid proximity computation, which
// fails closed.
func (w *Watcher) CanJoin(sessionID, placeID string) bool {
	w.mu.RLock()
	sess, ok := w.sessions[sessionID]
	w.mu.RUnlock()
	if !ok {
		return false
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	st, ok := sess.places[placeID]
	if !ok {
		return false
	}
	return CanJoinChat(st.tier)
}

// Reset discards all proximity state for a session. Called on session end.
func (w *Watcher) Reset(sessionID string) {
	w.mu.Lock()
	delete(w.sessions, sessionID)
	w.mu.Unlock()
}

// Configure swaps in a new threshold set and cooldown. Takes effect on the
// next Evaluate; already-stored tiers are not reclassified. On error the
// previous configuration remains in effect.
func (w *Watcher) Configure(t Thresholds, cooldown time.Duration) error {
	policy, err := NewPolicy(t)
	if err != nil {
		return err
	}
	if cooldown < 0 {
		return eris.Wrap(ErrInvalidThresholds, "cooldown must not be negative")
	}

	w.mu.Lock()
	w.policy = policy
	w.cooldown = cooldown
	w.mu.Unlock()
	return nil
}

// Thresholds returns the currently active cutoffs.
func (w *Watcher) Thresholds() Thresholds {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.policy.Thresholds()
}

// Cooldown returns the currently active notification cooldown.
func (w *Watcher) Cooldown() time.Duration {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cooldown
}

func (w *Watcher) session(id string) *sessionState {
	w.mu.Lock()
	defer w.mu.Unlock()
	sess, ok := w.sessions[id]
	if !ok {
		sess = &sessionState{places: make(map[string]*placeState)}
		w.sessions[id] = sess
	}
	return sess
}

func (w *Watcher) emit(sessionID string, place Place) {
	if w.notifier == nil {
		return
	}
	title := place.Name
	body := "You're near " + place.Name + ". The room is open."
	if err := w.notifier.Notify(sessionID, place.ID, title, body); err != nil {
		w.log.Warn("notification delivery failed",
			zap.String("session_id", sessionID),
			zap.String("place_id", place.ID),
			zap.Error(err))
	}
}
