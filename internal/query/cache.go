package query

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/desertthunder/correx/internal/shared"
)

// Producer fetches the value for a key on a cache miss.
type Producer func(ctx context.Context) (any, error)

// Store persists successful results between runs.
type Store interface {
	// Load returns the payload saved under key and when it was fetched. ok is false when nothing is stored.
	Load(key string) (payload []byte, fetchedAt time.Time, ok bool, err error)
	Save(key string, tag string, payload []byte) error
	Delete(key string) error
	// DeleteTag removes every payload saved under tag.
	DeleteTag(tag string) error
}

// encoder turns a produced value into a snapshot payload. A nil payload skips the save.
type encoder func(value any) ([]byte, error)

// CacheOpts configures a [Cache]. Zero values disable persistence and logging.
type CacheOpts struct {
	Store  Store
	TTL    time.Duration
	Logger *log.Logger
	Now    func() time.Time
}

type slot struct {
	key       Key
	value     any
	has       bool
	version   uint64
	fetchedAt time.Time
}

// Entry describes a cached value.
type Entry struct {
	Key       Key
	FetchedAt time.Time
	Version   uint64
}

// Cache is a keyed, single-flight query cache.
//
// Concurrent [Cache.Ensure] calls for one key share a single producer run. Each slot carries a version:
// [Cache.Set], [Cache.Invalidate] and the start of a producer bump it, and a producer only writes its
// result when the version is still the one it started with.
type Cache struct {
	mu     sync.Mutex
	slots  map[string]*slot
	group  singleflight.Group
	closed bool

	store  Store
	ttl    time.Duration
	logger *log.Logger
	now    func() time.Time

	// flights run detached from callers and are cancelled on Close
	ctx     context.Context
	cancel  context.CancelFunc
	flights sync.WaitGroup
}

// New creates an empty cache. Close it to stop in-flight producers.
func New(opts CacheOpts) *Cache {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Cache{
		slots:  make(map[string]*slot),
		store:  opts.Store,
		ttl:    opts.TTL,
		logger: opts.Logger,
		now:    opts.Now,
		ctx:    ctx,
		cancel: cancel,
	}
}

// slotLocked returns the slot for key, creating it. c.mu must be held.
func (c *Cache) slotLocked(key Key) *slot {
	s, ok := c.slots[key.String()]
	if !ok {
		s = &slot{key: key}
		c.slots[key.String()] = s
	}
	return s
}

// Get returns the cached value for key without producing it.
func (c *Cache) Get(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.slots[key.String()]
	if !ok || !s.has {
		return nil, false
	}
	return s.value, true
}

// Set seeds key with value. It never calls a producer and supersedes any fetch in flight.
func (c *Cache) Set(key Key, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return shared.ErrCacheClosed
	}

	s := c.slotLocked(key)
	s.version++
	s.value = value
	s.has = true
	s.fetchedAt = c.now()
	return nil
}

// Ensure returns the cached value for key, running producer on a miss.
//
// Callers racing on the same key share one producer run and receive the same value or error.
// Failures are not cached. A caller whose ctx ends stops waiting; the shared run continues.
func (c *Cache) Ensure(ctx context.Context, key Key, producer Producer) (any, error) {
	return c.ensure(ctx, key, producer, nil)
}

func (c *Cache) ensure(ctx context.Context, key Key, producer Producer, encode encoder) (any, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, shared.ErrCacheClosed
	}
	if s, ok := c.slots[key.String()]; ok && s.has {
		value := s.value
		c.mu.Unlock()
		c.logger.Debug("cache hit", "key", key)
		return value, nil
	}
	c.mu.Unlock()

	ch := c.group.DoChan(key.String(), func() (any, error) {
		return c.produce(ctx, key, producer, encode)
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// produce runs producer for key and writes the result, and its snapshot, only if no Set or
// Invalidate landed in between.
func (c *Cache) produce(callerCtx context.Context, key Key, producer Producer, encode encoder) (any, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, shared.ErrCacheClosed
	}
	s := c.slotLocked(key)
	if s.has {
		// filled between the caller's check and this flight starting
		value := s.value
		c.mu.Unlock()
		return value, nil
	}
	s.version++
	version := s.version
	c.flights.Add(1)
	c.mu.Unlock()
	defer c.flights.Done()

	ctx, cancel := context.WithCancel(context.WithoutCancel(callerCtx))
	stop := context.AfterFunc(c.ctx, cancel)
	defer stop()
	defer cancel()

	c.logger.Debug("cache miss", "key", key, "version", version)
	value, err := producer(ctx)
	if err != nil {
		c.logger.Debug("producer failed", "key", key, "error", err)
		return nil, err
	}

	var payload []byte
	if encode != nil && c.store != nil {
		if payload, err = encode(value); err != nil {
			c.logger.Warn("failed to encode snapshot", "key", key, "error", err)
			payload = nil
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return value, nil
	}
	current := c.slotLocked(key)
	if current.version != version {
		c.logger.Debug("discarding superseded result", "key", key, "version", version, "current", current.version)
		return value, nil
	}
	current.value = value
	current.has = true
	current.fetchedAt = c.now()

	// saved under c.mu so a concurrent Invalidate deletes after, never before, this write
	if payload != nil {
		if err := c.store.Save(key.String(), string(key.Tag()), payload); err != nil {
			c.logger.Warn("failed to save snapshot", "key", key, "error", err)
		}
	}
	return value, nil
}

// Invalidate drops the cached values for keys, forgets their in-flight runs and deletes persisted copies.
//
// A run already in flight still answers its waiters but can no longer write to the slot.
func (c *Cache) Invalidate(keys ...Key) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return shared.ErrCacheClosed
	}
	for _, key := range keys {
		s := c.slotLocked(key)
		s.version++
		s.value = nil
		s.has = false
		c.group.Forget(key.String())
	}
	c.mu.Unlock()

	if c.store == nil {
		return nil
	}
	for _, key := range keys {
		if err := c.store.Delete(key.String()); err != nil {
			return fmt.Errorf("failed to delete snapshot %s: %w", key, err)
		}
	}
	return nil
}

// InvalidateTag invalidates every key carrying one of tags, including keys with a fetch in flight
// and snapshots persisted by earlier runs.
func (c *Cache) InvalidateTag(tags ...Tag) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return shared.ErrCacheClosed
	}
	for _, s := range c.slots {
		if !slices.Contains(tags, s.key.Tag()) {
			continue
		}
		s.version++
		s.value = nil
		s.has = false
		c.group.Forget(s.key.String())
	}
	c.mu.Unlock()

	if c.store == nil {
		return nil
	}
	for _, tag := range tags {
		if err := c.store.DeleteTag(string(tag)); err != nil {
			return fmt.Errorf("failed to delete %s snapshots: %w", tag, err)
		}
	}
	return nil
}

// Entries lists the keys holding a value, sorted by canonical key.
func (c *Cache) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := make([]Entry, 0, len(c.slots))
	for _, s := range c.slots {
		if s.has {
			entries = append(entries, Entry{Key: s.key, FetchedAt: s.fetchedAt, Version: s.version})
		}
	}
	slices.SortFunc(entries, func(a, b Entry) int {
		switch {
		case a.Key.String() < b.Key.String():
			return -1
		case a.Key.String() > b.Key.String():
			return 1
		}
		return 0
	})
	return entries
}

// Close cancels in-flight producers and waits for them to return. Later calls fail with [shared.ErrCacheClosed].
func (c *Cache) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.slots = make(map[string]*slot)
	c.mu.Unlock()

	c.cancel()
	c.flights.Wait()
	return nil
}
