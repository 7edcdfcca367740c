package store

import (
	"fmt"

	"github.com/storyverse/realtime-platform/internal/model"
)

// GetComment retrieves a comment by ID.
func (t *Txn) GetComment(id string) (*model.Comment, error) {
	var c model.Comment
	if err := t.getJSON(commentKey(id), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// PutComment writes a comment and its post index entry.
func (t *Txn) PutComment(c *model.Comment) error {
	if err := t.setJSON(commentKey(c.ID), c); err != nil {
		return err
	}
	return t.set(postCommentKey(c.PostID, c.ID), nil)
}

// ListPostComments returns all comments on a post in creation order.
func (t *Txn) ListPostComments(postID string) ([]model.Comment, error) {
	prefix := postCommentPrefix(postID)
	var out []model.Comment
	err := t.forEach(prefix, func(key, _ []byte) error {
		commentID := string(key[len(prefix):])
		c, err := t.GetComment(commentID)
		if err != nil {
			return fmt.Errorf("comment %s indexed but missing: %w", commentID, err)
		}
		out = append(out, *c)
		return nil
	})
	return out, err
}

// CommentsCount returns the number of comments on a post.
func (t *Txn) CommentsCount(postID string) (int, error) {
	return t.countPrefix(postCommentPrefix(postID))
}
