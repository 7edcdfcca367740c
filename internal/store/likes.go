package store

import (
	"time"

	"github.com/storyverse/realtime-platform/internal/model"
)

// CreateLike records a like if absent. Returns false when the (post, user)
// pair already exists; the store never holds two likes for one pair.
func (t *Txn) CreateLike(postID, userID string, now time.Time) (bool, error) {
	key := likeKey(postID, userID)
	ok, err := t.exists(key)
	if err != nil {
		return false, err
	}
	if ok {
		return false, nil
	}
	like := model.Like{PostID: postID, UserID: userID, CreatedAt: now}
	if err := t.setJSON(key, &like); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteLike removes a like if present. Returns false when there was none.
func (t *Txn) DeleteLike(postID, userID string) (bool, error) {
	key := likeKey(postID, userID)
	ok, err := t.exists(key)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if err := t.delete(key); err != nil {
		return false, err
	}
	return true, nil
}

// LikesCount returns the number of likes on a post.
func (t *Txn) LikesCount(postID string) (int, error) {
	return t.countPrefix(likePrefix(postID))
}
