package feed

import (
	"context"
	"sync"
)

const busQueue = 64

// Bus is an in-process Notifier. Each subscriber gets its own goroutine, so
// changes reach it in publish order and never on the publisher's stack.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string]map[*busSub]struct{}
	closed bool

	quit      chan struct{}
	closeOnce sync.Once
}

type busSub struct {
	ch   chan Change
	once sync.Once
	done chan struct{}
}

func NewBus() *Bus {
	return &Bus{subs: make(map[string]map[*busSub]struct{}), quit: make(chan struct{})}
}

func (b *Bus) Publish(ctx context.Context, ch Change) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil
	}
	for s := range b.subs[ch.Key] {
		select {
		case s.ch <- ch:
		case <-s.done:
		case <-b.quit:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (b *Bus) Subscribe(key string, h Handler) (func(), error) {
	s := &busSub{ch: make(chan Change, busQueue), done: make(chan struct{})}

	b.mu.Lock()
	if b.subs[key] == nil {
		b.subs[key] = make(map[*busSub]struct{})
	}
	b.subs[key][s] = struct{}{}
	b.mu.Unlock()

	go func() {
		for {
			select {
			case ch := <-s.ch:
				h(ch)
			case <-s.done:
				return
			case <-b.quit:
				return
			}
		}
	}()

	cancel := func() {
		s.once.Do(func() {
			// done first: a Publish blocked on a full queue holds the read lock.
			close(s.done)
			b.mu.Lock()
			delete(b.subs[key], s)
			b.mu.Unlock()
		})
	}
	return cancel, nil
}

// Close drops every subscription.
func (b *Bus) Close() error {
	// quit first: a Publish blocked on a full queue holds the read lock.
	b.closeOnce.Do(func() { close(b.quit) })
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for key, set := range b.subs {
		for s := range set {
			s.once.Do(func() { close(s.done) })
		}
		delete(b.subs, key)
	}
	return nil
}
