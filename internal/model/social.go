package model

import (
	"time"
)

// Like is the unique pairing of a post and a user. Existence is binary;
// the store enforces at most one per pair.
type Like struct {
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Follow is the unique pairing of a follower and a followed user.
type Follow struct {
	FollowerID  string    `json:"follower_id"`
	FollowingID string    `json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`
}
