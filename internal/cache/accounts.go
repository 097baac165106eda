// Package cache holds the bounded in-memory account cache. It mirrors the
// semantics of a loading cache with maximum size, expire-after-access and a
// removal listener: evictions (capacity or idle) write the account back to
// storage synchronously, replacements and explicit invalidations do not.
package cache

import (
	"container/list"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sharkz-dev/UltraEconomy/internal/core/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// WriteBack persists an account being evicted. It runs synchronously on the
// evicting goroutine so a dirty balance is durable before the entry is gone.
type WriteBack func(account *domain.Account)

type entry struct {
	account    *domain.Account
	lastAccess time.Time
	elem       *list.Element
}

// Accounts is the account cache. Eviction triggers on whichever fires first:
// capacity (LRU victim on insert) or idle timeout (background sweep).
type Accounts struct {
	maxSize       int
	idleTTL       time.Duration
	sweepInterval time.Duration
	log           zerolog.Logger

	mu      sync.Mutex
	entries map[uuid.UUID]*entry
	lru     *list.List // front = most recently used; values are uuid.UUID

	writeBack    WriteBack
	shuttingDown atomic.Bool

	stop chan struct{}
	done chan struct{}
}

// New creates a cache. Call SetWriteBack before Start; the storage backend
// is constructed after the cache, so the handler is wired in a second step.
func New(maxSize int, idleTTL, sweepInterval time.Duration, log zerolog.Logger) *Accounts {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &Accounts{
		maxSize:       maxSize,
		idleTTL:       idleTTL,
		sweepInterval: sweepInterval,
		log:           log,
		entries:       make(map[uuid.UUID]*entry),
		lru:           list.New(),
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// SetWriteBack wires the eviction write-back handler.
func (c *Accounts) SetWriteBack(fn WriteBack) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeBack = fn
}

// Get returns the cached account and refreshes its last-access time, or nil.
func (c *Accounts) Get(id uuid.UUID) *domain.Account {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	if !ok {
		return nil
	}
	e.lastAccess = time.Now()
	c.lru.MoveToFront(e.elem)
	return e.account
}

// Put inserts or replaces an entry. Replacing never triggers write-back: the
// caller holds the newest state. Inserting over capacity evicts the LRU
// victim with write-back.
func (c *Accounts) Put(id uuid.UUID, account *domain.Account) {
	var victim *domain.Account

	c.mu.Lock()
	if e, ok := c.entries[id]; ok {
		e.account = account
		e.lastAccess = time.Now()
		c.lru.MoveToFront(e.elem)
		c.mu.Unlock()
		return
	}
	e := &entry{account: account, lastAccess: time.Now()}
	e.elem = c.lru.PushFront(id)
	c.entries[id] = e

	if len(c.entries) > c.maxSize {
		if back := c.lru.Back(); back != nil {
			victimID := back.Value.(uuid.UUID)
			victim = c.removeLocked(victimID)
		}
	}
	c.mu.Unlock()

	if victim != nil {
		c.evicted(victim, "capacity")
	}
}

// Invalidate removes an entry without write-back. Used on explicit
// disconnect when persistence already happened through the mutation path.
func (c *Accounts) Invalidate(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(id)
}

// InvalidateAll drops every entry without write-back.
func (c *Accounts) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[uuid.UUID]*entry)
	c.lru.Init()
}

// Keys returns the resident account identities.
func (c *Accounts) Keys() []uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]uuid.UUID, 0, len(c.entries))
	for id := range c.entries {
		keys = append(keys, id)
	}
	return keys
}

// Snapshot returns the resident accounts. Used by the periodic flush and the
// final shutdown flush.
func (c *Accounts) Snapshot() []*domain.Account {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*domain.Account, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e.account)
	}
	return out
}

// Len returns the number of resident entries.
func (c *Accounts) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Start launches the idle sweeper. Close stops it.
func (c *Accounts) Start() {
	go c.sweepLoop()
}

// BeginShutdown suppresses eviction write-backs; the shutdown sequence flushes
// the whole cache itself and individual write-backs would race the backend
// disconnect.
func (c *Accounts) BeginShutdown() {
	c.shuttingDown.Store(true)
}

// Close stops the sweeper.
func (c *Accounts) Close() {
	close(c.stop)
	<-c.done
}

// SweepIdle evicts every entry idle past the TTL and returns how many were
// evicted. Exposed for the sweeper and tests.
func (c *Accounts) SweepIdle() int {
	cutoff := time.Now().Add(-c.idleTTL)

	var victims []*domain.Account
	c.mu.Lock()
	for id, e := range c.entries {
		if e.lastAccess.Before(cutoff) {
			victims = append(victims, c.removeLocked(id))
		}
	}
	c.mu.Unlock()

	for _, v := range victims {
		c.evicted(v, "idle")
	}
	return len(victims)
}

func (c *Accounts) sweepLoop() {
	defer close(c.done)
	interval := c.sweepInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.SweepIdle()
		}
	}
}

// removeLocked unlinks an entry and returns its account. Caller holds c.mu.
func (c *Accounts) removeLocked(id uuid.UUID) *domain.Account {
	e, ok := c.entries[id]
	if !ok {
		return nil
	}
	c.lru.Remove(e.elem)
	delete(c.entries, id)
	return e.account
}

func (c *Accounts) evicted(account *domain.Account, cause string) {
	if c.shuttingDown.Load() {
		return
	}
	c.mu.Lock()
	fn := c.writeBack
	c.mu.Unlock()
	if fn == nil {
		return
	}
	c.log.Info().
		Str("account", account.ID().String()).
		Str("cause", cause).
		Msg("Writing evicted account back to storage")
	fn(account)
}
