// Package query implements the per-session resource cache: keyed fetches
// with in-flight de-duplication, status tracking, invalidation and mounted
// observers.
package query

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Status is the lifecycle state of a cache entry.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Fetcher performs the network call for a key.
type Fetcher func(ctx context.Context) (any, error)

// Listener observes every state change of one key.
type Listener func(Snapshot)

// Snapshot is a point-in-time view of one entry. Data survives a failed
// refetch, so an error snapshot may still carry the last good data.
type Snapshot struct {
	Key       Key
	Status    Status
	Data      any
	Err       error
	UpdatedAt time.Time
	Stale     bool
	Fetching  bool
}

// Hooks receive cache events for instrumentation. Nil hooks are skipped.
type Hooks struct {
	Fetched     func(resource string, elapsed time.Duration, err error)
	Joined      func(resource string)
	Hit         func(resource string)
	Invalidated func(resource string)
}

// Options tune a Cache.
type Options struct {
	// StaleTime ages successful entries; zero keeps them fresh until
	// invalidated.
	StaleTime time.Duration
	// Retry is the number of extra attempts after a failed fetch. Failed
	// admin queries surface immediately by default.
	Retry      int
	RetryDelay time.Duration
	Hooks      Hooks
}

type observer struct {
	id uint64
	fn Listener
}

type entry struct {
	key        Key
	status     Status
	data       any
	err        error
	updatedAt  time.Time
	stale      bool
	inflight   int
	gen        uint64
	settledGen uint64
	fetcher    Fetcher
	observers  []observer
}

// Cache is safe for concurrent use. At most one fetch per key is in flight
// at a time; callers arriving meanwhile join it.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	group   singleflight.Group
	epoch   uint64
	nextObs uint64

	opts Options
	log  zerolog.Logger
	now  func() time.Time
}

// New returns an empty cache.
func New(opts Options, log zerolog.Logger) *Cache {
	return &Cache{
		entries: make(map[string]*entry),
		opts:    opts,
		log:     log,
		now:     time.Now,
	}
}

// Get returns the cached value for key, fetching it when the entry is idle,
// stale or expired. A cached error is returned as-is until a manual Refetch
// or an invalidation; it is never retried silently. Refetch marks the entry
// stale, so a Get during a manual retry joins it.
func (c *Cache) Get(ctx context.Context, key Key, fetch Fetcher) (any, error) {
	id := key.String()

	c.mu.Lock()
	e := c.entryLocked(id, key)
	if !e.stale && !c.expiredLocked(e) {
		switch e.status {
		case StatusSuccess:
			data := e.data
			c.mu.Unlock()
			c.hit(key)
			return data, nil
		case StatusError:
			err := e.err
			c.mu.Unlock()
			return nil, err
		}
	}
	c.mu.Unlock()

	return c.fetch(ctx, id, key, fetch)
}

// Refetch forces a new fetch of key, joining one already in flight. It is
// the manual retry behind an error affordance.
func (c *Cache) Refetch(ctx context.Context, key Key, fetch Fetcher) (any, error) {
	id := key.String()
	c.mu.Lock()
	c.entryLocked(id, key).stale = true
	c.mu.Unlock()
	return c.fetch(ctx, id, key, fetch)
}

// Peek returns the current snapshot of key without fetching.
func (c *Cache) Peek(key Key) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.String()]
	if !ok {
		return Snapshot{Key: key, Status: StatusIdle}
	}
	return c.snapshotLocked(e)
}

// Scan calls fn for every entry under prefix, in key order, until fn
// returns false.
func (c *Cache) Scan(prefix Key, fn func(Snapshot) bool) {
	c.mu.Lock()
	ids := make([]string, 0, len(c.entries))
	for id, e := range c.entries {
		if e.key.HasPrefix(prefix) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	snaps := make([]Snapshot, len(ids))
	for i, id := range ids {
		snaps[i] = c.snapshotLocked(c.entries[id])
	}
	c.mu.Unlock()

	for _, s := range snaps {
		if !fn(s) {
			return
		}
	}
}

// Invalidate marks every key under prefix stale. The next read refetches;
// keys with mounted observers refetch right away in the background. It
// returns the number of entries marked.
func (c *Cache) Invalidate(prefix Key) int {
	type job struct {
		id    string
		key   Key
		fetch Fetcher
	}
	type note struct {
		snap Snapshot
		obs  []Listener
	}

	c.mu.Lock()
	var (
		jobs  []job
		notes []note
	)
	for id, e := range c.entries {
		if !e.key.HasPrefix(prefix) {
			continue
		}
		e.gen++
		e.stale = true
		c.group.Forget(id)
		if len(e.observers) > 0 && e.fetcher != nil {
			jobs = append(jobs, job{id: id, key: e.key, fetch: e.fetcher})
		}
		notes = append(notes, note{snap: c.snapshotLocked(e), obs: listenersOf(e)})
	}
	c.mu.Unlock()

	for _, n := range notes {
		if c.opts.Hooks.Invalidated != nil {
			c.opts.Hooks.Invalidated(n.snap.Key.Resource())
		}
		notify(n.obs, n.snap)
	}
	for _, j := range jobs {
		go c.background(j.id, j.key, j.fetch)
	}

	c.log.Debug().Str("prefix", prefix.String()).Int("entries", len(notes)).Int("refetching", len(jobs)).Msg("query invalidated")
	return len(notes)
}

// Subscribe mounts an observer on key. The listener immediately receives the
// current snapshot, then every change. An idle, stale or expired entry is
// fetched in the background. The returned function unmounts the observer;
// fetches already started still complete and populate the cache.
func (c *Cache) Subscribe(key Key, fetch Fetcher, fn Listener) (unsubscribe func()) {
	id := key.String()

	c.mu.Lock()
	e := c.entryLocked(id, key)
	c.nextObs++
	obsID := c.nextObs
	e.observers = append(e.observers, observer{id: obsID, fn: fn})
	e.fetcher = fetch
	snap := c.snapshotLocked(e)
	needFetch := e.inflight == 0 && (e.status == StatusIdle || e.stale || c.expiredLocked(e))
	c.mu.Unlock()

	fn(snap)
	if needFetch {
		go c.background(id, key, fetch)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			e, ok := c.entries[id]
			if !ok {
				return
			}
			for i, o := range e.observers {
				if o.id == obsID {
					e.observers = append(e.observers[:i:i], e.observers[i+1:]...)
					return
				}
			}
		})
	}
}

// Clear drops every entry and observer. Fetches in flight settle into the
// void rather than repopulating the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id := range c.entries {
		c.group.Forget(id)
	}
	c.entries = make(map[string]*entry)
	c.epoch++
}

func (c *Cache) fetch(ctx context.Context, id string, key Key, fetch Fetcher) (any, error) {
	c.mu.Lock()
	joined := c.entryLocked(id, key).inflight > 0
	c.mu.Unlock()
	if joined && c.opts.Hooks.Joined != nil {
		c.opts.Hooks.Joined(key.Resource())
	}

	// The shared call outlives any single caller: a requester that goes
	// away does not cancel it, and its result still lands in the cache.
	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(id, func() (any, error) {
		epoch, gen := c.begin(id, key, fetch)
		start := c.now()
		v, err := c.run(detached, fetch)
		if c.opts.Hooks.Fetched != nil {
			c.opts.Hooks.Fetched(key.Resource(), c.now().Sub(start), err)
		}
		c.settle(id, epoch, gen, v, err)
		return v, err
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Cache) background(id string, key Key, fetch Fetcher) {
	if _, err := c.fetch(context.Background(), id, key, fetch); err != nil {
		c.log.Debug().Err(err).Str("key", id).Msg("background refetch failed")
	}
}

func (c *Cache) run(ctx context.Context, fetch Fetcher) (v any, err error) {
	for attempt := 0; attempt <= c.opts.Retry; attempt++ {
		if attempt > 0 && c.opts.RetryDelay > 0 {
			select {
			case <-time.After(c.opts.RetryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		v, err = c.safeCall(ctx, fetch)
		if err == nil {
			return v, nil
		}
	}
	return nil, err
}

func (c *Cache) safeCall(ctx context.Context, fetch Fetcher) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("query: fetcher panicked: %v", r)
		}
	}()
	return fetch(ctx)
}

func (c *Cache) begin(id string, key Key, fetch Fetcher) (epoch, gen uint64) {
	c.mu.Lock()
	e := c.entryLocked(id, key)
	e.inflight++
	e.fetcher = fetch
	if e.status == StatusIdle {
		e.status = StatusPending
	}
	epoch, gen = c.epoch, e.gen
	snap, obs := c.snapshotLocked(e), listenersOf(e)
	c.mu.Unlock()

	notify(obs, snap)
	return epoch, gen
}

func (c *Cache) settle(id string, epoch, gen uint64, v any, err error) {
	c.mu.Lock()
	e, ok := c.entries[id]
	if epoch != c.epoch || !ok {
		c.mu.Unlock()
		return
	}
	e.inflight--
	// An older generation never overwrites what a newer one settled.
	if gen >= e.settledGen {
		e.settledGen = gen
		if err != nil {
			e.status = StatusError
			e.err = err
		} else {
			e.status = StatusSuccess
			e.data = v
			e.err = nil
		}
		e.updatedAt = c.now()
		e.stale = gen != e.gen
	}
	snap, obs := c.snapshotLocked(e), listenersOf(e)
	c.mu.Unlock()

	notify(obs, snap)
}

func (c *Cache) entryLocked(id string, key Key) *entry {
	e, ok := c.entries[id]
	if !ok {
		e = &entry{key: key, status: StatusIdle}
		c.entries[id] = e
	}
	return e
}

func (c *Cache) expiredLocked(e *entry) bool {
	if c.opts.StaleTime <= 0 || e.status != StatusSuccess {
		return false
	}
	return c.now().Sub(e.updatedAt) > c.opts.StaleTime
}

func (c *Cache) snapshotLocked(e *entry) Snapshot {
	return Snapshot{
		Key:       e.key,
		Status:    e.status,
		Data:      e.data,
		Err:       e.err,
		UpdatedAt: e.updatedAt,
		Stale:     e.stale || c.expiredLocked(e),
		Fetching:  e.inflight > 0,
	}
}

func (c *Cache) hit(key Key) {
	if c.opts.Hooks.Hit != nil {
		c.opts.Hooks.Hit(key.Resource())
	}
}

func listenersOf(e *entry) []Listener {
	out := make([]Listener, len(e.observers))
	for i, o := range e.observers {
		out[i] = o.fn
	}
	return out
}

func notify(listeners []Listener, snap Snapshot) {
	for _, fn := range listeners {
		fn(snap)
	}
}
