package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"goldengate/internal/feed"
	"goldengate/internal/repos"
)

// ErrCorruptSlot marks a durable slot that does not decode to a record sequence.
var ErrCorruptSlot = errors.New("corrupt persisted data")

// Record is anything a Collection can hold.
type Record interface {
	RecordID() string
}

// Reconcile decides what a collection holds after another context rewrote its slot.
type Reconcile[T Record] func(local, remote []T) []T

// LastWriteWins drops the local copy in favour of the remote one.
func LastWriteWins[T Record](_, remote []T) []T { return remote }

// Backing is the storage a workspace shares between its stores.
type Backing struct {
	Slots  repos.SlotStore
	Feed   feed.Notifier
	Origin string
	Logger *zap.Logger
	Clock  func() time.Time
}

type CollectionConfig[T Record] struct {
	Key       string
	IDPrefix  string
	Seed      func() []T
	Protected []string
	Reconcile Reconcile[T]
}

// Collection is a slot-backed list of uniquely keyed records. Every mutation
// rewrites the whole slot before returning and is announced on the feed.
type Collection[T Record] struct {
	key       string
	prefix    string
	seed      func() []T
	protected map[string]struct{}
	reconcile Reconcile[T]

	slots  repos.SlotStore
	feed   feed.Notifier
	origin string
	clock  func() time.Time
	log    *zap.Logger

	mu     sync.RWMutex
	items  []T
	loaded bool
	lastID int64

	// last persisted value, announced after mu is released
	pending    string
	pendingSeq uint64

	pubMu        sync.Mutex
	publishedSeq uint64
}

func NewCollection[T Record](b Backing, cfg CollectionConfig[T]) *Collection[T] {
	c := &Collection[T]{
		key:       cfg.Key,
		prefix:    cfg.IDPrefix,
		seed:      cfg.Seed,
		protected: make(map[string]struct{}, len(cfg.Protected)),
		reconcile: cfg.Reconcile,
		slots:     b.Slots,
		feed:      b.Feed,
		origin:    b.Origin,
		clock:     b.Clock,
		log:       b.Logger,
		items:     []T{},
	}
	for _, id := range cfg.Protected {
		c.protected[id] = struct{}{}
	}
	if c.seed == nil {
		c.seed = func() []T { return []T{} }
	}
	if c.reconcile == nil {
		c.reconcile = LastWriteWins[T]
	}
	if c.clock == nil {
		c.clock = time.Now
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	c.log = c.log.With(zap.String("slot", c.key))
	return c
}

func (c *Collection[T]) Key() string { return c.key }

// Decode parses a raw slot value. The value must be a JSON array of objects
// that each carry an id; anything else wraps ErrCorruptSlot.
func Decode[T Record](raw string) ([]T, error) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "[") {
		return nil, fmt.Errorf("%w: not a sequence", ErrCorruptSlot)
	}
	var out []T
	if err := json.Unmarshal([]byte(trimmed), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSlot, err)
	}
	for i, r := range out {
		if r.RecordID() == "" {
			return nil, fmt.Errorf("%w: element %d has no id", ErrCorruptSlot, i)
		}
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// Load reads the slot on first call and is a no-op afterwards. An absent or
// corrupt slot is overwritten with the seed.
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	items, seeded, err := c.load(ctx)
	if seeded {
		c.announce(ctx)
	}
	return items, err
}

func (c *Collection[T]) load(ctx context.Context) ([]T, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return c.snapshot(), false, nil
	}

	raw, ok, err := c.slots.Get(ctx, c.key)
	if err != nil {
		return nil, false, fmt.Errorf("read slot %s: %w", c.key, err)
	}
	if ok {
		items, derr := Decode[T](raw)
		if derr == nil {
			c.items = items
			c.loaded = true
			return c.snapshot(), false, nil
		}
		c.log.Warn("replacing corrupt slot with seed data", zap.Error(derr))
	}

	c.items = c.seed()
	if err := c.persist(ctx); err != nil {
		c.items = []T{}
		return nil, false, err
	}
	c.loaded = true
	return c.snapshot(), true, nil
}

// List returns a copy of the collection, newest creations first.
func (c *Collection[T]) List() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot()
}

func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.indexOf(id); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

func (c *Collection[T]) IsProtected(id string) bool {
	_, ok := c.protected[id]
	return ok
}

// Create assigns a fresh id, prepends the record built from it and persists.
func (c *Collection[T]) Create(ctx context.Context, build func(id string) T) (T, error) {
	c.mu.Lock()
	rec := build(c.nextID())
	prev := c.items
	c.items = append([]T{rec}, c.items...)
	if err := c.persist(ctx); err != nil {
		c.items = prev
		c.mu.Unlock()
		var zero T
		return zero, err
	}
	c.mu.Unlock()

	c.announce(ctx)
	return rec, nil
}

// Update replaces the record with the given id by apply(record), keeping its
// position. Unknown ids are a no-op reported as false.
func (c *Collection[T]) Update(ctx context.Context, id string, apply func(T) T) (T, bool, error) {
	var zero T
	c.mu.Lock()
	i := c.indexOf(id)
	if i < 0 {
		c.mu.Unlock()
		return zero, false, nil
	}
	old := c.items[i]
	updated := apply(old)
	c.items[i] = updated
	if err := c.persist(ctx); err != nil {
		c.items[i] = old
		c.mu.Unlock()
		return zero, false, err
	}
	c.mu.Unlock()

	c.announce(ctx)
	return updated, true, nil
}

// Delete removes a record. Unknown and protected ids are a no-op reported as false.
func (c *Collection[T]) Delete(ctx context.Context, id string) (bool, error) {
	if c.IsProtected(id) {
		return false, nil
	}
	c.mu.Lock()
	i := c.indexOf(id)
	if i < 0 {
		c.mu.Unlock()
		return false, nil
	}
	prev := c.items
	next := make([]T, 0, len(prev)-1)
	next = append(next, prev[:i]...)
	next = append(next, prev[i+1:]...)
	c.items = next
	if err := c.persist(ctx); err != nil {
		c.items = prev
		c.mu.Unlock()
		return false, err
	}
	c.mu.Unlock()

	c.announce(ctx)
	return true, nil
}

// HandleChange applies a slot rewrite made by another context.
func (c *Collection[T]) HandleChange(ch feed.Change) {
	if ch.Key != c.key || ch.Origin == c.origin {
		return
	}
	var remote []T
	if ch.Value != nil {
		items, err := Decode[T](*ch.Value)
		if err != nil {
			c.log.Warn("external change is corrupt, falling back to seed", zap.String("origin", ch.Origin), zap.Error(err))
			remote = c.seed()
		} else {
			remote = items
		}
	} else {
		remote = c.seed()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = c.reconcile(c.snapshot(), remote)
	if c.items == nil {
		c.items = []T{}
	}
	c.loaded = true
	c.log.Debug("reloaded from external change", zap.String("origin", ch.Origin), zap.Int("records", len(c.items)))
}

// Watch subscribes the collection to changes of its slot.
func (c *Collection[T]) Watch() (cancel func(), err error) {
	if c.feed == nil {
		return func() {}, nil
	}
	return c.feed.Subscribe(c.key, c.HandleChange)
}

// persist writes the whole collection and records it for announce. Callers hold c.mu.
func (c *Collection[T]) persist(ctx context.Context) error {
	b, err := json.Marshal(c.items)
	if err != nil {
		return fmt.Errorf("encode slot %s: %w", c.key, err)
	}
	raw := string(b)
	if err := c.slots.Set(ctx, c.key, raw); err != nil {
		c.log.Error("slot write failed", zap.Error(err))
		return fmt.Errorf("write slot %s: %w", c.key, err)
	}
	c.pending = raw
	c.pendingSeq++
	return nil
}

// announce publishes the newest persisted value. It must run without c.mu:
// a subscriber applying another context's change may be waiting for it.
// Writers racing here publish at most once per value and never an older one.
func (c *Collection[T]) announce(ctx context.Context) {
	if c.feed == nil {
		return
	}
	c.pubMu.Lock()
	defer c.pubMu.Unlock()

	c.mu.RLock()
	raw, seq := c.pending, c.pendingSeq
	c.mu.RUnlock()
	if seq <= c.publishedSeq {
		return
	}
	if err := c.feed.Publish(ctx, feed.Change{Key: c.key, Value: &raw, Origin: c.origin}); err != nil {
		// the write itself succeeded; other contexts catch up on their next load
		c.log.Warn("change notification failed", zap.Error(err))
		return
	}
	c.publishedSeq = seq
}

// nextID is time based and strictly increasing within this process. Two
// processes creating in the same millisecond can still collide.
func (c *Collection[T]) nextID() string {
	ms := c.clock().UnixMilli()
	if ms <= c.lastID {
		ms = c.lastID + 1
	}
	c.lastID = ms
	return fmt.Sprintf("%s-%d", c.prefix, ms)
}

func (c *Collection[T]) indexOf(id string) int {
	for i, r := range c.items {
		if r.RecordID() == id {
			return i
		}
	}
	return -1
}

func (c *Collection[T]) snapshot() []T {
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}
