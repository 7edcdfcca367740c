package store

import (
	"time"

	"github.com/storyverse/realtime-platform/internal/model"
)

// CreateFollow records a follow if absent, maintaining the reverse
// follower index in the same unit of work. Returns false when the pair
// already exists.
func (t *Txn) CreateFollow(followerID, followingID string, now time.Time) (bool, error) {
	key := followKey(followerID, followingID)
	ok, err := t.exists(key)
	if err != nil {
		return false, err
	}
	if ok {
		return false, nil
	}
	follow := model.Follow{FollowerID: followerID, FollowingID: followingID, CreatedAt: now}
	if err := t.setJSON(key, &follow); err != nil {
		return false, err
	}
	if err := t.set(followerKey(followingID, followerID), nil); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteFollow removes a follow and its index entry if present.
func (t *Txn) DeleteFollow(followerID, followingID string) (bool, error) {
	key := followKey(followerID, followingID)
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
	if err := t.delete(followerKey(followingID, followerID)); err != nil {
		return false, err
	}
	return true, nil
}

// FollowersCount returns how many users follow the given user.
func (t *Txn) FollowersCount(userID string) (int, error) {
	return t.countPrefix(followerPrefix(userID))
}
