package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reel/internal/shared"
)

var _ Storage = (*SQLiteStorage)(nil)

const remoteReadTimeout = 5 * time.Second

// SQLiteBackend stores slots in the kv_store table. Every process opening the same database
// file shares the slots; a [Notifier] carries change notices between those processes.
type SQLiteBackend struct {
	db       *sql.DB
	hub      *hub
	node     string
	notifier Notifier
	logger   *log.Logger
	writeMu  sync.Mutex
	cancel   func()
}

// SQLiteOption configures a [SQLiteBackend].
type SQLiteOption func(*SQLiteBackend)

// WithNotifier forwards local writes to other processes and applies theirs.
func WithNotifier(n Notifier) SQLiteOption {
	return func(b *SQLiteBackend) { b.notifier = n }
}

// WithLogger sets the logger used for best-effort notification failures.
func WithLogger(l *log.Logger) SQLiteOption {
	return func(b *SQLiteBackend) { b.logger = l }
}

// NewSQLiteBackend creates a backend on db. The kv_store table must exist (see [shared.RunMigrations]).
func NewSQLiteBackend(db *sql.DB, opts ...SQLiteOption) (*SQLiteBackend, error) {
	b := &SQLiteBackend{
		db:   db,
		hub:  newHub(),
		node: shared.GenerateID(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = shared.NewLogger(nil)
	}

	if b.notifier != nil {
		cancel, err := b.notifier.Subscribe(b.applyRemote)
		if err != nil {
			return nil, fmt.Errorf("failed to subscribe to change notices: %w", err)
		}
		b.cancel = cancel
	}

	return b, nil
}

// Node identifies this backend instance in cross-process notices.
func (b *SQLiteBackend) Node() string { return b.node }

// NewContext opens a new context with a fresh origin.
func (b *SQLiteBackend) NewContext() *SQLiteStorage {
	return &SQLiteStorage{backend: b, origin: shared.GenerateID()}
}

// Close stops remote notices and local delivery. The database is owned by the caller.
func (b *SQLiteBackend) Close() {
	if b.cancel != nil {
		b.cancel()
	}
	b.hub.close()
}

func (b *SQLiteBackend) get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := b.db.QueryRowContext(ctx, "SELECT value FROM kv_store WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", shared.ErrStorageUnavailable, err)
	}
	return value, true, nil
}

// notify forwards a local write to other processes. Failures are logged: the durable write already succeeded.
func (b *SQLiteBackend) notify(ctx context.Context, key, origin string) {
	if b.notifier == nil {
		return
	}
	if err := b.notifier.Publish(ctx, Notice{Node: b.node, Key: key, Origin: origin}); err != nil {
		b.logger.Warn("failed to publish change notice", "key", key, "error", err)
	}
}

// applyRemote re-reads a slot written by another process and delivers it to every local context.
func (b *SQLiteBackend) applyRemote(n Notice) {
	if n.Node == b.node {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), remoteReadTimeout)
	defer cancel()

	value, ok, err := b.get(ctx, n.Key)
	if err != nil {
		b.logger.Warn("failed to read remotely changed slot", "key", n.Key, "node", n.Node, "error", err)
		return
	}
	b.hub.publish(Change{Key: n.Key, Value: value, Present: ok, Origin: n.Origin})
}

// SQLiteStorage is one context of a [SQLiteBackend].
type SQLiteStorage struct {
	backend *SQLiteBackend
	origin  string
}

func (s *SQLiteStorage) Origin() string { return s.origin }

func (s *SQLiteStorage) Get(ctx context.Context, key string) (string, bool, error) {
	return s.backend.get(ctx, key)
}

func (s *SQLiteStorage) Set(ctx context.Context, key, value string) error {
	b := s.backend
	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	query := `
		INSERT INTO kv_store (key, value, origin, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, origin = excluded.origin, updated_at = excluded.updated_at
	`
	if _, err := b.db.ExecContext(ctx, query, key, value, s.origin, time.Now().UTC()); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStorageWrite, err)
	}

	b.hub.publish(Change{Key: key, Value: value, Present: true, Origin: s.origin})
	b.notify(ctx, key, s.origin)
	return nil
}

func (s *SQLiteStorage) Remove(ctx context.Context, key string) error {
	b := s.backend
	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	result, err := b.db.ExecContext(ctx, "DELETE FROM kv_store WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStorageWrite, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return nil
	}

	b.hub.publish(Change{Key: key, Origin: s.origin})
	b.notify(ctx, key, s.origin)
	return nil
}

func (s *SQLiteStorage) Watch(fn func(Change)) func() {
	return s.backend.hub.watch(s.origin, fn)
}
