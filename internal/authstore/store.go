// Package authstore holds reactive session state: the single source of truth
// for "who is logged in" within one session's scope. It subscribes to
// session-change events, collapses event bursts through a debounce window,
// and recomputes the merged AuthUser from the latest event only.
package authstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"sellerhood/internal/debounce"
	"sellerhood/internal/models"
	"sellerhood/internal/observability"
)

// EventKind identifies a session-change notification.
type EventKind string

const (
	EventSignedIn       EventKind = "SIGNED_IN"
	EventSignedOut      EventKind = "SIGNED_OUT"
	EventTokenRefreshed EventKind = "TOKEN_REFRESHED"
	EventInitialSession EventKind = "INITIAL_SESSION"
)

// Session is the optional payload of a session-change event.
type Session struct {
	UserID uint
}

// Event is a session-change notification.
type Event struct {
	Kind    EventKind
	Session *Session
}

// State is an observable snapshot of the store.
type State struct {
	User    *models.AuthUser
	Loading bool
}

// AuthError reports a failed sign-out; store state is unchanged when it is
// returned.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("sign-out failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// FetchUserFunc loads the merged AuthUser for an identity.
type FetchUserFunc func(ctx context.Context, userID uint) (*models.AuthUser, error)

// SignOutFunc performs the backend sign-out call.
type SignOutFunc func(ctx context.Context) error

// DefaultDebounceWindow collapses bursts of session events emitted for one
// logical transition, preventing redundant profile refetches.
const DefaultDebounceWindow = 100 * time.Millisecond

// Store holds one session's reactive auth state. All mutation goes through
// its public operations.
type Store struct {
	mu      sync.Mutex
	user    *models.AuthUser
	loading bool
	// epoch guards against late writes: a recomputation scheduled before a
	// sign-out must not resurrect the cleared user when it resolves after.
	epoch uint64

	fetchUser FetchUserFunc
	signOutFn SignOutFunc
	deb       *debounce.Debouncer[Event]

	subs    map[int]func(State)
	nextSub int
}

// Option configures a Store.
type Option func(*options)

type options struct {
	window time.Duration
}

// WithDebounceWindow overrides the event debounce window.
func WithDebounceWindow(d time.Duration) Option {
	return func(o *options) { o.window = d }
}

// New creates a Store in the loading state.
func New(fetch FetchUserFunc, signOut SignOutFunc, opts ...Option) *Store {
	o := options{window: DefaultDebounceWindow}
	for _, opt := range opts {
		opt(&o)
	}
	s := &Store{
		loading:   true,
		fetchUser: fetch,
		signOutFn: signOut,
		subs:      make(map[int]func(State)),
	}
	s.deb = debounce.New(o.window, s.apply)
	return s
}

// Initialize resolves the initial session. Any failure resolves to a nil
// user; failures are not surfaced as a separate error state at this layer.
func (s *Store) Initialize(ctx context.Context, session *Session) {
	evt := Event{Kind: EventInitialSession, Session: session}
	s.apply(evt)
}

// HandleEvent enqueues a session-change notification. Successive events
// within the debounce window collapse to one recomputation using the most
// recent event.
func (s *Store) HandleEvent(evt Event) {
	observability.AuthSessionEvents.WithLabelValues(string(evt.Kind)).Inc()
	s.deb.Trigger(evt)
}

// apply recomputes state from a single event. It runs on the debounce timer
// (or inline from Initialize) and must not hold the lock across the user
// fetch.
func (s *Store) apply(evt Event) {
	s.mu.Lock()
	epoch := s.epoch
	s.mu.Unlock()

	var user *models.AuthUser
	switch {
	case evt.Kind == EventSignedOut,
		evt.Session == nil,
		evt.Session.UserID == 0:
		user = nil
	default:
		fetched, err := s.fetchUser(context.Background(), evt.Session.UserID)
		if err != nil {
			// Not authenticated as far as this layer is concerned.
			observability.GlobalLogger.Warn("auth state recompute failed",
				"event", string(evt.Kind), "error", err.Error())
			fetched = nil
		}
		user = fetched
	}

	s.mu.Lock()
	if s.epoch != epoch {
		// A sign-out landed while we were fetching; drop this result.
		s.mu.Unlock()
		return
	}
	s.user = user
	s.loading = false
	state := State{User: user, Loading: false}
	subs := s.subscribers()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}

// SignOut invokes the backend sign-out. On success local state clears
// immediately, without waiting for the asynchronous notification. On failure
// an AuthError is returned and prior state is left unchanged. Callers handle
// navigation themselves.
func (s *Store) SignOut(ctx context.Context) error {
	if err := s.signOutFn(ctx); err != nil {
		return &AuthError{Err: err}
	}

	// A sign-in event still sitting in the debounce window must not fire
	// after the clear and resurrect the user.
	s.deb.Cancel()

	s.mu.Lock()
	s.user = nil
	s.loading = false
	s.epoch++
	state := State{User: nil, Loading: false}
	subs := s.subscribers()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
	return nil
}

// Subscribe registers fn for state changes and returns an unsubscribe
// function.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{User: s.user, Loading: s.loading}
}

// Close stops the debounce timer. Pending events are dropped.
func (s *Store) Close() {
	s.deb.Stop()
}

// subscribers snapshots the callback list; callers must hold the lock.
func (s *Store) subscribers() []func(State) {
	out := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		out = append(out, fn)
	}
	return out
}
