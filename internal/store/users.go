package store

import (
	"github.com/storyverse/realtime-platform/internal/model"
)

// GetUser retrieves a user by ID.
func (t *Txn) GetUser(id string) (*model.User, error) {
	var u model.User
	if err := t.getJSON(userKey(id), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// PutUser writes a user record.
func (t *Txn) PutUser(u *model.User) error {
	return t.setJSON(userKey(u.ID), u)
}
