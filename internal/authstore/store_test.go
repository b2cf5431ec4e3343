package authstore

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"sellerhood/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fetchUserStub(users map[uint]*models.AuthUser) FetchUserFunc {
	return func(_ context.Context, id uint) (*models.AuthUser, error) {
		if u, ok := users[id]; ok {
			return u, nil
		}
		return nil, errors.New("user not found")
	}
}

func noopSignOut(context.Context) error { return nil }

func TestInitializeResolvesUser(t *testing.T) {
	u := &models.AuthUser{ID: 1, Email: "a@b.com", Nickname: "이한솔"}
	s := New(fetchUserStub(map[uint]*models.AuthUser{1: u}), noopSignOut)
	defer s.Close()

	assert.True(t, s.Snapshot().Loading)
	s.Initialize(context.Background(), &Session{UserID: 1})

	state := s.Snapshot()
	assert.False(t, state.Loading)
	require.NotNil(t, state.User)
	assert.Equal(t, "이한솔", state.User.Nickname)
}

func TestInitializeFailureResolvesToNilUser(t *testing.T) {
	s := New(fetchUserStub(nil), noopSignOut)
	defer s.Close()

	s.Initialize(context.Background(), &Session{UserID: 42})

	state := s.Snapshot()
	assert.False(t, state.Loading)
	assert.Nil(t, state.User)
}

func TestInitializeNoSession(t *testing.T) {
	var fetches int32
	s := New(func(context.Context, uint) (*models.AuthUser, error) {
		atomic.AddInt32(&fetches, 1)
		return nil, nil
	}, noopSignOut)
	defer s.Close()

	s.Initialize(context.Background(), nil)

	state := s.Snapshot()
	assert.False(t, state.Loading)
	assert.Nil(t, state.User)
	assert.EqualValues(t, 0, atomic.LoadInt32(&fetches))
}

func TestEventStormCollapsesToLastEvent(t *testing.T) {
	u := &models.AuthUser{ID: 1, Nickname: "셀러"}
	var fetches int32
	s := New(func(_ context.Context, id uint) (*models.AuthUser, error) {
		atomic.AddInt32(&fetches, 1)
		return u, nil
	}, noopSignOut, WithDebounceWindow(30*time.Millisecond))
	defer s.Close()

	var mu sync.Mutex
	var notifications []State
	unsub := s.Subscribe(func(st State) {
		mu.Lock()
		notifications = append(notifications, st)
		mu.Unlock()
	})
	defer unsub()

	// Storm within the window: only the last event may be processed.
	s.HandleEvent(Event{Kind: EventSignedIn, Session: &Session{UserID: 1}})
	s.HandleEvent(Event{Kind: EventSignedOut})
	s.HandleEvent(Event{Kind: EventSignedIn, Session: &Session{UserID: 1}})

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(notifications) == 1
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, notifications, 1)
	assert.False(t, notifications[0].Loading)
	require.NotNil(t, notifications[0].User)
	assert.Equal(t, "셀러", notifications[0].User.Nickname)
	// One recomputation means one profile refetch.
	assert.EqualValues(t, 1, atomic.LoadInt32(&fetches))
}

func TestSignedOutEventClearsUser(t *testing.T) {
	u := &models.AuthUser{ID: 1}
	s := New(fetchUserStub(map[uint]*models.AuthUser{1: u}), noopSignOut,
		WithDebounceWindow(5*time.Millisecond))
	defer s.Close()

	s.Initialize(context.Background(), &Session{UserID: 1})
	require.NotNil(t, s.Snapshot().User)

	s.HandleEvent(Event{Kind: EventSignedOut})
	assert.Eventually(t, func() bool {
		return s.Snapshot().User == nil
	}, time.Second, 5*time.Millisecond)
}

func TestEventWithoutUserClearsRegardlessOfKind(t *testing.T) {
	u := &models.AuthUser{ID: 1}
	s := New(fetchUserStub(map[uint]*models.AuthUser{1: u}), noopSignOut,
		WithDebounceWindow(5*time.Millisecond))
	defer s.Close()

	s.Initialize(context.Background(), &Session{UserID: 1})

	// token-refreshed with an empty session clears the user.
	s.HandleEvent(Event{Kind: EventTokenRefreshed, Session: &Session{}})
	assert.Eventually(t, func() bool {
		return s.Snapshot().User == nil
	}, time.Second, 5*time.Millisecond)
}

func TestSignOutClearsImmediately(t *testing.T) {
	u := &models.AuthUser{ID: 1}
	s := New(fetchUserStub(map[uint]*models.AuthUser{1: u}), noopSignOut)
	defer s.Close()

	s.Initialize(context.Background(), &Session{UserID: 1})
	require.NotNil(t, s.Snapshot().User)

	require.NoError(t, s.SignOut(context.Background()))
	// No waiting on any async notification: the clear is synchronous.
	assert.Nil(t, s.Snapshot().User)
}

func TestSignOutFailureLeavesStateUnchanged(t *testing.T) {
	u := &models.AuthUser{ID: 1}
	s := New(fetchUserStub(map[uint]*models.AuthUser{1: u}),
		func(context.Context) error { return errors.New("backend unreachable") })
	defer s.Close()

	s.Initialize(context.Background(), &Session{UserID: 1})

	err := s.SignOut(context.Background())
	require.Error(t, err)
	var authErr *AuthError
	assert.ErrorAs(t, err, &authErr)
	assert.NotNil(t, s.Snapshot().User)
}

func TestLateRecomputationCannotResurrectSignedOutUser(t *testing.T) {
	gate := make(chan struct{})
	u := &models.AuthUser{ID: 1, Nickname: "좀비"}
	s := New(func(context.Context, uint) (*models.AuthUser, error) {
		<-gate
		return u, nil
	}, noopSignOut, WithDebounceWindow(time.Millisecond))
	defer s.Close()

	// Schedule a recomputation whose fetch is still in flight...
	s.HandleEvent(Event{Kind: EventSignedIn, Session: &Session{UserID: 1}})
	time.Sleep(20 * time.Millisecond) // let the debounce fire and block on the gate

	// ...then sign out while it is pending.
	require.NoError(t, s.SignOut(context.Background()))
	assert.Nil(t, s.Snapshot().User)

	// Releasing the stale fetch must not bring the user back.
	close(gate)
	time.Sleep(50 * time.Millisecond)
	assert.Nil(t, s.Snapshot().User)
}

func TestSignOutDropsQueuedSignInEvent(t *testing.T) {
	u := &models.AuthUser{ID: 1, Nickname: "좀비"}
	s := New(fetchUserStub(map[uint]*models.AuthUser{1: u}), noopSignOut,
		WithDebounceWindow(20*time.Millisecond))
	defer s.Close()

	// A sign-in event is still waiting in the debounce window when the user
	// signs out. It must never fire afterwards.
	s.HandleEvent(Event{Kind: EventSignedIn, Session: &Session{UserID: 1}})
	require.NoError(t, s.SignOut(context.Background()))
	assert.Nil(t, s.Snapshot().User)

	time.Sleep(60 * time.Millisecond)
	assert.Nil(t, s.Snapshot().User)
}

func TestRegistryRoutesPerUser(t *testing.T) {
	users := map[uint]*models.AuthUser{
		1: {ID: 1, Nickname: "일번"},
		2: {ID: 2, Nickname: "이번"},
	}
	var signedOut []uint
	r := NewRegistry(fetchUserStub(users), func(_ context.Context, id uint) error {
		signedOut = append(signedOut, id)
		return nil
	}, WithDebounceWindow(time.Millisecond))
	defer r.Close()

	ctx := context.Background()
	s1 := r.StoreFor(ctx, 1)
	s2 := r.StoreFor(ctx, 2)
	assert.NotSame(t, s1, s2)
	assert.Same(t, s1, r.StoreFor(ctx, 1))

	require.NotNil(t, s1.Snapshot().User)
	assert.Equal(t, "일번", s1.Snapshot().User.Nickname)

	require.NoError(t, s1.SignOut(ctx))
	assert.Equal(t, []uint{1}, signedOut)
	assert.Nil(t, s1.Snapshot().User)
	assert.NotNil(t, s2.Snapshot().User)
}
