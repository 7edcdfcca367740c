package store

import (
	"github.com/storyverse/realtime-platform/internal/model"
)

// GetPost retrieves a post by ID.
func (t *Txn) GetPost(id string) (*model.Post, error) {
	var p model.Post
	if err := t.getJSON(postKey(id), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// PutPost writes a post record.
func (t *Txn) PutPost(p *model.Post) error {
	return t.setJSON(postKey(p.ID), p)
}
