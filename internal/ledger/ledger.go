// Package ledger owns user identity lookups and the per-user point tally.
//
// Points are credited and debited inside the caller's unit of work so a
// point change and the entity creation it pays for commit together. A
// tally never goes below zero: debits are clamped, not rejected.
package ledger

import (
	"github.com/storyverse/realtime-platform/internal/model"
	"github.com/storyverse/realtime-platform/internal/store"
)

// Ledger adjusts point tallies within a store unit of work.
type Ledger struct {
	store *store.Store
}

// New creates a ledger over the durable store.
func New(s *store.Store) *Ledger {
	return &Ledger{store: s}
}

// GetUser retrieves a user by ID from committed state.
func (l *Ledger) GetUser(id string) (*model.User, error) {
	var u *model.User
	err := l.store.View(func(tx *store.Txn) error {
		var err error
		u, err = tx.GetUser(id)
		return err
	})
	return u, err
}

// Adjust applies a point delta to the user inside the given unit of work,
// clamping the result at zero. Returns the new tally.
func (l *Ledger) Adjust(tx *store.Txn, userID string, delta int) (int, error) {
	u, err := tx.GetUser(userID)
	if err != nil {
		return 0, err
	}
	u.Points += delta
	if u.Points < 0 {
		u.Points = 0
	}
	if err := tx.PutUser(u); err != nil {
		return 0, err
	}
	return u.Points, nil
}
