package model

import (
	"time"
)

// Post is a blog post. The core only reads posts; creation is part of the
// seed surface so likes and comments have something to reference.
type Post struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// CreatePostRequest is the request to create a post.
type CreatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// PostResponse is a post with its derived counts.
type PostResponse struct {
	Post
	LikesCount    int `json:"likes_count"`
	CommentsCount int `json:"comments_count"`
}
