package query_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nikbrunner/bmc/internal/query"
	"gotest.tools/v3/assert"
)

// counter returns a fetch function that counts calls and returns the count.
func counter(calls *atomic.Int32) query.FetchFunc {
	return func(ctx context.Context) (any, error) {
		return int(calls.Add(1)), nil
	}
}

func TestCache_ReadFetchesOnceThenServesCache(t *testing.T) {
	var calls atomic.Int32
	c := query.New(query.Params{})
	c.Register("bookmarks", counter(&calls), query.Options{})

	first := c.Read(context.Background(), "bookmarks")
	second := c.Read(context.Background(), "bookmarks")

	assert.Equal(t, first.Status, query.StatusSuccess)
	assert.Equal(t, first.Value, 1)
	assert.Equal(t, second.Value, 1)
	assert.Equal(t, calls.Load(), int32(1))
	assert.Equal(t, c.FetchCount("bookmarks"), 1)
}

func TestCache_ConcurrentReadsShareOneFetch(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	started := make(chan struct{}, 1)

	c := query.New(query.Params{})
	c.Register("bookmarks", func(ctx context.Context) (any, error) {
		calls.Add(1)
		started <- struct{}{}
		<-release
		return "list", nil
	}, query.Options{})

	const readers = 8
	results := make([]query.Entry, readers)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0] = c.Read(context.Background(), "bookmarks")
	}()
	<-started

	// The first fetch is now in flight; the rest must attach to it.
	entry, ok := c.Peek("bookmarks")
	assert.Assert(t, ok)
	assert.Equal(t, entry.Status, query.StatusPending)

	for i := 1; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.Read(context.Background(), "bookmarks")
		}(i)
	}

	// Give the late readers a moment to join the flight.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, calls.Load(), int32(1))
	for i, r := range results {
		assert.Equal(t, r.Value, "list", "reader %d", i)
	}
}

func TestCache_InvalidateCausesExactlyOneRefetch(t *testing.T) {
	var calls atomic.Int32
	c := query.New(query.Params{})
	c.Register("bookmarks", counter(&calls), query.Options{})
	ctx := context.Background()

	c.Read(ctx, "bookmarks")
	c.Invalidate("bookmarks")

	entry, _ := c.Peek("bookmarks")
	assert.Assert(t, entry.Stale)

	refetched := c.Read(ctx, "bookmarks")
	again := c.Read(ctx, "bookmarks")

	assert.Equal(t, refetched.Value, 2)
	assert.Assert(t, !refetched.Stale)
	assert.Equal(t, again.Value, 2)
	assert.Equal(t, calls.Load(), int32(2))
}

func TestCache_DoubleInvalidateIsNoOp(t *testing.T) {
	var calls atomic.Int32
	c := query.New(query.Params{})
	c.Register("bookmarks", counter(&calls), query.Options{})
	ctx := context.Background()

	c.Read(ctx, "bookmarks")
	c.Invalidate("bookmarks")
	c.Invalidate("bookmarks")
	c.Read(ctx, "bookmarks")
	c.Read(ctx, "bookmarks")

	assert.Equal(t, calls.Load(), int32(2))
}

func TestCache_InvalidateAbsentKeyIsNoOp(t *testing.T) {
	var calls atomic.Int32
	c := query.New(query.Params{})
	c.Register("bookmarks", counter(&calls), query.Options{})

	c.Invalidate("bookmarks")

	_, ok := c.Peek("bookmarks")
	assert.Assert(t, !ok)
	assert.Equal(t, calls.Load(), int32(0))
}

func TestCache_InvalidateDuringFetchLeavesResultStale(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	started := make(chan struct{}, 2)

	c := query.New(query.Params{})
	c.Register("bookmarks", func(ctx context.Context) (any, error) {
		n := int(calls.Add(1))
		started <- struct{}{}
		if n == 1 {
			<-release
		}
		return n, nil
	}, query.Options{})

	done := make(chan query.Entry)
	go func() { done <- c.Read(context.Background(), "bookmarks") }()
	<-started

	c.Invalidate("bookmarks")
	close(release)

	first := <-done
	assert.Equal(t, first.Value, 1)
	assert.Assert(t, first.Stale, "result that raced an invalidation must be stale")

	second := c.Read(context.Background(), "bookmarks")
	assert.Equal(t, second.Value, 2)
	assert.Assert(t, !second.Stale)
}

func TestCache_ErrorIsStickyUntilInvalidated(t *testing.T) {
	var calls atomic.Int32
	boom := errors.New("Internal Server Error")

	c := query.New(query.Params{})
	c.Register("bookmarks", func(ctx context.Context) (any, error) {
		if calls.Add(1) == 1 {
			return nil, boom
		}
		return "ok", nil
	}, query.Options{})
	ctx := context.Background()

	failed := c.Read(ctx, "bookmarks")
	assert.Equal(t, failed.Status, query.StatusError)
	assert.Assert(t, errors.Is(failed.Err, boom))

	again := c.Read(ctx, "bookmarks")
	assert.Equal(t, again.Status, query.StatusError)
	assert.Equal(t, calls.Load(), int32(1))

	c.Invalidate("bookmarks")
	recovered := c.Read(ctx, "bookmarks")
	assert.Equal(t, recovered.Status, query.StatusSuccess)
	assert.Equal(t, recovered.Value, "ok")
	assert.NilError(t, recovered.Err)
}

func TestCache_RetryPolicy(t *testing.T) {
	tests := []struct {
		name      string
		retry     int
		failures  int32
		wantCalls int32
		want      query.Status
	}{
		{"no retry surfaces first failure", 0, 1, 1, query.StatusError},
		{"retry recovers", 2, 2, 3, query.StatusSuccess},
		{"retries exhausted", 1, 5, 2, query.StatusError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			c := query.New(query.Params{})
			c.Register("k", func(ctx context.Context) (any, error) {
				if calls.Add(1) <= tt.failures {
					return nil, errors.New("fail")
				}
				return "ok", nil
			}, query.Options{Retry: tt.retry, RetryDelay: time.Millisecond})

			entry := c.Read(context.Background(), "k")

			assert.Equal(t, entry.Status, tt.want)
			assert.Equal(t, calls.Load(), tt.wantCalls)
			assert.Equal(t, c.FetchCount("k"), 1, "retries belong to one fetch")
		})
	}
}

func TestCache_RemoveDropsEntry(t *testing.T) {
	var calls atomic.Int32
	c := query.New(query.Params{})
	c.Register("users", counter(&calls), query.Options{})
	ctx := context.Background()

	c.Read(ctx, "users")
	c.Remove("users")

	_, ok := c.Peek("users")
	assert.Assert(t, !ok)

	entry := c.Read(ctx, "users")
	assert.Equal(t, entry.Value, 2)
}

func TestCache_RemoveDiscardsInFlightResult(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)

	c := query.New(query.Params{})
	c.Register("users", func(ctx context.Context) (any, error) {
		started <- struct{}{}
		<-release
		return "old session", nil
	}, query.Options{})

	read := make(chan query.Entry, 1)
	go func() {
		read <- c.Read(context.Background(), "users")
	}()
	<-started

	c.Remove("users")
	close(release)
	entry := <-read

	assert.Equal(t, entry.Status, query.StatusError)
	assert.Assert(t, errors.Is(entry.Err, query.ErrRemoved))
	assert.Assert(t, entry.Value == nil)

	_, ok := c.Peek("users")
	assert.Assert(t, !ok, "removed entry must not be resurrected by an old fetch")
}

func TestCache_StaleTime(t *testing.T) {
	var calls atomic.Int32
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := query.New(query.Params{Now: func() time.Time { return now }})
	c.Register("bookmarks", counter(&calls), query.Options{StaleTime: time.Minute})
	ctx := context.Background()

	c.Read(ctx, "bookmarks")
	now = now.Add(30 * time.Second)
	assert.Equal(t, c.Read(ctx, "bookmarks").Value, 1)

	now = now.Add(31 * time.Second)
	entry, _ := c.Peek("bookmarks")
	assert.Assert(t, entry.Stale)
	assert.Equal(t, c.Read(ctx, "bookmarks").Value, 2)
}

func TestCache_UnknownKey(t *testing.T) {
	c := query.New(query.Params{})

	entry := c.Read(context.Background(), "nope")

	assert.Equal(t, entry.Status, query.StatusError)
	assert.Assert(t, errors.Is(entry.Err, query.ErrUnknownQuery))
}

func TestCache_Clear(t *testing.T) {
	var calls atomic.Int32
	c := query.New(query.Params{})
	c.Register("users", counter(&calls), query.Options{})
	c.Register("bookmarks", counter(&calls), query.Options{})
	ctx := context.Background()

	c.Read(ctx, "users")
	c.Read(ctx, "bookmarks")
	c.Clear()

	_, usersOK := c.Peek("users")
	_, bookmarksOK := c.Peek("bookmarks")
	assert.Assert(t, !usersOK)
	assert.Assert(t, !bookmarksOK)

	// Registrations survive teardown.
	assert.Equal(t, c.Read(ctx, "users").Status, query.StatusSuccess)
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, query.StatusPending.String(), "pending")
	assert.Equal(t, query.StatusSuccess.String(), "success")
	assert.Equal(t, query.StatusError.String(), "error")
}
