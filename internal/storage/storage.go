package storage

import "context"

// Change describes one write to a storage slot.
type Change struct {
	Key     string // Key is the slot that changed
	Value   string // Value is the new value; empty when Present is false
	Present bool   // Present is false when the slot was removed
	Origin  string // Origin identifies the context that performed the write
}

// Storage is one context's view of a backend.
type Storage interface {
	// Get returns the value stored at key. ok is false when the slot is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value at key and notifies the other contexts.
	Set(ctx context.Context, key, value string) error

	// Remove deletes the slot at key and notifies the other contexts when it existed.
	Remove(ctx context.Context, key string) error

	// Watch registers fn for changes made by other contexts. The returned function stops delivery.
	Watch(fn func(Change)) (cancel func())

	// Origin returns the identifier stamped on changes made through this context.
	Origin() string
}

// Op names a storage operation, used for failure injection.
type Op int

const (
	OpGet Op = iota
	OpSet
	OpRemove
)

func (o Op) String() string {
	switch o {
	case OpGet:
		return "get"
	case OpSet:
		return "set"
	case OpRemove:
		return "remove"
	default:
		return ""
	}
}
