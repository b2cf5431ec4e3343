package authstore

import (
	"context"
	"sync"
	"time"
)

// Registry hosts one Store per account so the multi-user HTTP surface can
// route session events to the right session state. Stores are created
// lazily on first access.
type Registry struct {
	mu     sync.Mutex
	stores map[uint]*Store

	fetch   FetchUserFunc
	signOut func(ctx context.Context, userID uint) error
	window  time.Duration
}

// NewRegistry creates an empty registry. signOut is invoked with the user ID
// of the store being signed out.
func NewRegistry(fetch FetchUserFunc, signOut func(ctx context.Context, userID uint) error, opts ...Option) *Registry {
	o := options{window: DefaultDebounceWindow}
	for _, opt := range opts {
		opt(&o)
	}
	return &Registry{
		stores:  make(map[uint]*Store),
		fetch:   fetch,
		signOut: signOut,
		window:  o.window,
	}
}

// StoreFor returns the store for userID, creating and initializing it on
// first access.
func (r *Registry) StoreFor(ctx context.Context, userID uint) *Store {
	r.mu.Lock()
	s, ok := r.stores[userID]
	if !ok {
		uid := userID
		s = New(r.fetch, func(ctx context.Context) error {
			return r.signOut(ctx, uid)
		}, WithDebounceWindow(r.window))
		r.stores[userID] = s
		r.mu.Unlock()
		s.Initialize(ctx, &Session{UserID: userID})
		return s
	}
	r.mu.Unlock()
	return s
}

// Dispatch routes a session event to the user's store, creating it if
// needed.
func (r *Registry) Dispatch(ctx context.Context, userID uint, evt Event) {
	r.StoreFor(ctx, userID).HandleEvent(evt)
}

// Close stops every hosted store.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.stores {
		s.Close()
	}
}
