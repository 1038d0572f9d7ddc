package query

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nikbrunner/bmc/internal/logger"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrUnknownQuery is stored on entries read for a key nobody registered.
	ErrUnknownQuery = errors.New("unknown query key")
	// ErrRemoved is returned to readers whose fetch settled after the entry
	// was removed or the cache cleared. Nothing is stored for it.
	ErrRemoved = errors.New("query entry removed")
)

// Status is the state of a cache entry.
type Status int

const (
	StatusPending Status = iota
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Entry is a snapshot of one cached query result.
type Entry struct {
	Key       string
	Status    Status
	Value     any   // last successful value; kept on later errors
	Err       error // set when Status == StatusError
	FetchedAt time.Time
	Stale     bool
}

// FetchFunc loads the value for a query key.
type FetchFunc func(ctx context.Context) (any, error)

// Options tune a single query.
type Options struct {
	// StaleTime is how long a success stays fresh. 0 means fresh until
	// invalidated.
	StaleTime time.Duration
	// Retry is the number of extra attempts after a failed fetch.
	Retry      int
	RetryDelay time.Duration
}

type registration struct {
	fetch FetchFunc
	opts  Options
}

type slot struct {
	entry Entry
	// gen changes on Remove so an orphaned in-flight fetch can't write back.
	gen uint64
	// invalidations counts Invalidate calls; a fetch that started before
	// the latest one stores its result as stale.
	invalidations uint64
}

// Cache is a keyed cache of asynchronous results. At most one fetch per key
// is in flight; concurrent readers share it. Safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	queries map[string]registration
	slots   map[string]*slot
	fetches map[string]int
	gen     uint64

	group singleflight.Group
	log   logger.Logger
	now   func() time.Time
}

// Params holds parameters for creating a new Cache.
type Params struct {
	Logger logger.Logger    // optional
	Now    func() time.Time // optional, for tests
}

// New creates an empty cache.
func New(params Params) *Cache {
	log := params.Logger
	if log == nil {
		log = logger.NewNop()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}

	return &Cache{
		queries: make(map[string]registration),
		slots:   make(map[string]*slot),
		fetches: make(map[string]int),
		log:     log.With(logger.String("component", "query")),
		now:     now,
	}
}

// Register binds a fetch function to key. Re-registering replaces it.
func (c *Cache) Register(key string, fetch FetchFunc, opts Options) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queries[key] = registration{fetch: fetch, opts: opts}
}

// Peek returns the current entry without triggering a fetch.
func (c *Cache) Peek(key string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.slots[key]
	if !ok {
		return Entry{Key: key, Status: StatusPending}, false
	}
	return c.snapshot(s, c.queries[key].opts), true
}

// Read returns the cached entry if it is usable, otherwise fetches it.
// A success is usable while fresh; an error is usable until invalidated.
// Concurrent reads of the same key share one fetch.
func (c *Cache) Read(ctx context.Context, key string) Entry {
	c.mu.Lock()
	reg, registered := c.queries[key]
	if !registered {
		c.mu.Unlock()
		return Entry{Key: key, Status: StatusError, Err: fmt.Errorf("%w: %q", ErrUnknownQuery, key)}
	}

	s, ok := c.slots[key]
	if ok {
		snap := c.snapshot(s, reg.opts)
		if snap.Status != StatusPending && !snap.Stale {
			c.mu.Unlock()
			return snap
		}
	} else {
		c.gen++
		s = &slot{entry: Entry{Key: key, Status: StatusPending}, gen: c.gen}
		c.slots[key] = s
	}
	c.mu.Unlock()

	v, _, _ := c.group.Do(key, func() (any, error) {
		return c.fetch(ctx, key), nil
	})
	return v.(Entry)
}

// fetch runs the registered fetch function and stores its outcome.
func (c *Cache) fetch(ctx context.Context, key string) Entry {
	c.mu.Lock()
	reg := c.queries[key]
	s, ok := c.slots[key]
	if !ok {
		// Removed between Read and the start of the flight.
		c.gen++
		s = &slot{entry: Entry{Key: key, Status: StatusPending}, gen: c.gen}
		c.slots[key] = s
	}
	gen, invalidations := s.gen, s.invalidations
	c.fetches[key]++
	c.mu.Unlock()

	start := c.now()
	value, err := c.attempt(ctx, key, reg)

	c.mu.Lock()
	defer c.mu.Unlock()

	current, ok := c.slots[key]
	if !ok || current.gen != gen {
		c.log.Debug("discarding result of removed entry", logger.String("key", key))
		return Entry{Key: key, Status: StatusError, Err: ErrRemoved, FetchedAt: c.now()}
	}

	current.entry.FetchedAt = c.now()
	current.entry.Stale = current.invalidations != invalidations
	if err != nil {
		current.entry.Status = StatusError
		current.entry.Err = err
		c.log.Debug("fetch failed", logger.String("key", key), logger.Error(err))
	} else {
		current.entry.Status = StatusSuccess
		current.entry.Value = value
		current.entry.Err = nil
		c.log.Debug("fetched", logger.String("key", key), logger.Duration("elapsed", c.now().Sub(start)))
	}
	return c.snapshot(current, reg.opts)
}

func (c *Cache) attempt(ctx context.Context, key string, reg registration) (any, error) {
	var lastErr error
	for try := 0; try <= reg.opts.Retry; try++ {
		if try > 0 {
			c.log.Debug("retrying fetch", logger.String("key", key), logger.Int("attempt", try+1))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(reg.opts.RetryDelay):
			}
		}
		value, err := reg.fetch(ctx)
		if err == nil {
			return value, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// Invalidate marks key stale so the next Read refetches it once.
// Invalidating a stale or absent entry is a no-op.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.slots[key]
	if !ok {
		return
	}
	s.invalidations++
	if s.entry.Stale {
		return
	}
	s.entry.Stale = true
	c.log.Debug("invalidated", logger.String("key", key))
}

// Remove drops the entry for key. A fetch still in flight for it is
// discarded when it settles.
func (c *Cache) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.slots[key]; !ok {
		return
	}
	delete(c.slots, key)
	c.group.Forget(key)
	c.log.Debug("removed", logger.String("key", key))
}

// Clear drops every entry. Registrations are kept.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.slots {
		c.group.Forget(key)
	}
	c.slots = make(map[string]*slot)
}

// FetchCount returns how many fetches have been issued for key.
func (c *Cache) FetchCount(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetches[key]
}

// snapshot must be called with c.mu held.
func (c *Cache) snapshot(s *slot, opts Options) Entry {
	e := s.entry
	if e.Status == StatusSuccess && !e.Stale && opts.StaleTime > 0 {
		e.Stale = c.now().Sub(e.FetchedAt) >= opts.StaleTime
	}
	return e
}
