package model

import (
	"time"
)

// Comment belongs to exactly one post and optionally replies to a parent
// comment. Comments form an arena indexed by ID; ParentID is a lookup key,
// never a pointer, so reply threads are walked by ID.
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	ParentID  string    `json:"parent_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// IsReply reports whether the comment is a direct reply to another comment.
func (c *Comment) IsReply() bool {
	return c.ParentID != ""
}

// CommentThread is a top-level comment with its direct replies.
type CommentThread struct {
	CommentData
	Replies []CommentData `json:"replies"`
}
