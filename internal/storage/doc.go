// Package storage provides origin-scoped durable key/value storage with change notification.
//
// Every participant that reads and writes the shared slots (a TUI session, a CLI invocation,
// a browser tab connected to the server) opens its own [Storage] context from a backend.
// A write through one context is pushed to the watchers of every other context of the same
// backend. The writing context never receives its own change.
//
// # Backends
//
//   - [MemoryBackend] : process-local map, used by tests and as the memory-only fallback
//   - [SQLiteBackend] : kv_store table in the reel database, last write wins
//
// # Cross-process fan-out
//
// A [SQLiteBackend] built with a [Notifier] forwards a [Notice] for each local write and applies
// remote notices by re-reading the durable value. [NATSNotifier] carries notices over a NATS subject.
//
// Delivery is asynchronous and ordered per watcher. Watch callbacks may freely call back into
// storage.
package storage
