package querycache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchMissFetchesAndStores(t *testing.T) {
	c := New()
	ctx := context.Background()

	var calls int32
	v, err := Fetch(ctx, c, "post:1", time.Minute, func(context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "hello", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", v)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))

	// Second read is a hit; the fetch function must not run again.
	v, err = Fetch(ctx, c, "post:1", time.Minute, func(context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "other", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", v)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestFetchErrorStoresNothing(t *testing.T) {
	c := New()
	ctx := context.Background()

	_, err := Fetch(ctx, c, "post:9", time.Minute, func(context.Context) (string, error) {
		return "", errors.New("backend down")
	})
	require.Error(t, err)
	assert.Equal(t, 0, c.Len())

	// Next read retries and can succeed.
	v, err := Fetch(ctx, c, "post:9", time.Minute, func(context.Context) (string, error) {
		return "recovered", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", v)
}

func TestFetchDeduplicatesConcurrentReads(t *testing.T) {
	c := New()
	ctx := context.Background()

	var calls int32
	gate := make(chan struct{})

	fetch := func(context.Context) ([]int, error) {
		atomic.AddInt32(&calls, 1)
		<-gate
		return []int{1, 2, 3}, nil
	}

	var wg sync.WaitGroup
	results := make([][]int, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := Fetch(ctx, c, "posts:all", time.Minute, fetch)
			require.NoError(t, err)
			results[i] = v
		}(i)
	}

	// Let both goroutines reach the in-flight fetch before releasing it.
	time.Sleep(20 * time.Millisecond)
	close(gate)
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	assert.Equal(t, results[0], results[1])
}

func TestFetchStaleServedSynchronouslyWithBackgroundRefresh(t *testing.T) {
	c := New()
	ctx := context.Background()

	now := time.Now()
	c.SetClock(func() time.Time { return now })
	c.Put("post:5", "old")

	// Move past the staleness window.
	now = now.Add(10 * time.Minute)

	var refreshed int32
	v, err := Fetch(ctx, c, "post:5", 5*time.Minute, func(context.Context) (string, error) {
		atomic.AddInt32(&refreshed, 1)
		return "new", nil
	})
	require.NoError(t, err)
	// The stale value comes back immediately, no loading gap.
	assert.Equal(t, "old", v)

	// The background refetch replaces the entry.
	assert.Eventually(t, func() bool {
		v, state := c.lookup("post:5", 5*time.Minute)
		return state == Fresh && v == "new"
	}, time.Second, 5*time.Millisecond)
	assert.EqualValues(t, 1, atomic.LoadInt32(&refreshed))
}

func TestFetchZeroWindowAlwaysRefreshes(t *testing.T) {
	c := New()
	ctx := context.Background()
	c.Put("comments:1", "cached")

	v, err := Fetch(ctx, c, "comments:1", 0, func(context.Context) (string, error) {
		return "fresher", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "cached", v)

	assert.Eventually(t, func() bool {
		v, _ := c.lookup("comments:1", 0)
		return v == "fresher"
	}, time.Second, 5*time.Millisecond)
}

func TestPatchOnlyTouchesValue(t *testing.T) {
	c := New()

	now := time.Now()
	c.SetClock(func() time.Time { return now })
	c.Put("post:3", 10)

	// Advance close to the staleness edge, then patch.
	now = now.Add(4 * time.Minute)
	c.Patch("post:3", func(v any) any { return v.(int) + 1 })

	v, state := c.lookup("post:3", 5*time.Minute)
	assert.Equal(t, 11, v)
	assert.Equal(t, Fresh, state)

	// The patch must not have reset the timestamp: one more minute tips
	// the entry over the window.
	now = now.Add(2 * time.Minute)
	_, state = c.lookup("post:3", 5*time.Minute)
	assert.Equal(t, Stale, state)
}

func TestPatchDoesNotCreateEntries(t *testing.T) {
	c := New()
	c.Patch("post:404", func(v any) any { return "resurrected" })
	_, state := c.lookup("post:404", time.Minute)
	assert.Equal(t, Missing, state)
}

func TestInvalidateAndPrefix(t *testing.T) {
	c := New()
	c.Put("post:1", "a")
	c.Put("posts:cat=tips", "b")
	c.Put("posts:cat=worry", "c")

	c.Invalidate("post:1")
	_, state := c.lookup("post:1", time.Minute)
	assert.Equal(t, Missing, state)

	c.InvalidatePrefix("posts:")
	assert.Equal(t, 0, c.Len())
}

func TestPatchPrefix(t *testing.T) {
	c := New()
	c.Put("posts:cat=tips", []int{1, 2})
	c.Put("posts:cat=worry", []int{3})
	c.Put("post:1", "untouched")

	c.PatchPrefix("posts:", func(key string, v any) any {
		out := append([]int(nil), v.([]int)...)
		for i := range out {
			out[i] *= 10
		}
		return out
	})

	v, _ := c.lookup("posts:cat=tips", time.Minute)
	assert.Equal(t, []int{10, 20}, v)
	v, _ = c.lookup("post:1", time.Minute)
	assert.Equal(t, "untouched", v)
}
