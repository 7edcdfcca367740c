// Package store persists the platform's durable records in Pebble.
//
// Every mutation runs inside a unit of work: an indexed batch that is
// committed with a sync write or discarded whole. Units of work are
// serialized by a store-level mutex so read-modify-write sequences
// (point tallies, read flags) cannot interleave.
package store

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/cockroachdb/pebble"
	"go.uber.org/zap"

	"github.com/storyverse/realtime-platform/pkg/logger"
)

var (
	// ErrNotFound reports a referenced entity that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists reports a violated uniqueness constraint.
	ErrAlreadyExists = errors.New("already exists")
)

// Store is a Pebble-backed durable store.
type Store struct {
	db     *pebble.DB
	logger *logger.Logger

	// mu serializes units of work. Pebble batches are atomic but do not
	// detect write conflicts, so concurrent read-modify-write batches
	// against the same key would lose updates without this.
	mu sync.Mutex
}

// Open opens (or creates) a Pebble database at the given path.
func Open(path string, log *logger.Logger) (*Store, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble db: %w", err)
	}
	log.Info("store opened", zap.String("path", path))
	return &Store{db: db, logger: log}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Ready reports whether the store is open.
func (s *Store) Ready() bool {
	return s.db != nil
}

// reader is the read surface shared by the DB and an indexed batch.
type reader interface {
	Get(key []byte) ([]byte, io.Closer, error)
	NewIter(o *pebble.IterOptions) (*pebble.Iterator, error)
}

// Update runs fn inside a unit of work. All writes made through the Txn
// commit together with a sync write, or not at all if fn errors.
func (s *Store) Update(fn func(tx *Txn) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.db.NewIndexedBatch()
	tx := &Txn{r: b, b: b}
	if err := fn(tx); err != nil {
		_ = b.Close()
		return err
	}
	if err := b.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("failed to commit unit of work: %w", err)
	}
	return nil
}

// View runs fn with a read-only Txn over the committed state.
func (s *Store) View(fn func(tx *Txn) error) error {
	return fn(&Txn{r: s.db})
}
