// Package feed carries "slot K changed" notifications between execution
// contexts that share durable storage.
package feed

import "context"

// Change describes a new raw slot value. A nil Value means the slot was removed.
type Change struct {
	Key    string  `json:"key"`
	Value  *string `json:"value"`
	Origin string  `json:"origin"`
}

// Removed reports whether the slot no longer holds a value.
func (c Change) Removed() bool { return c.Value == nil }

type Handler func(Change)

type Notifier interface {
	Publish(ctx context.Context, ch Change) error
	// Subscribe registers h for changes to key. The returned func cancels the
	// subscription and is safe to call more than once.
	Subscribe(key string, h Handler) (cancel func(), err error)
}

// Value is a small helper for building a Change from a string.
func Value(s string) *string { return &s }
