package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/storyverse/realtime-platform/internal/model"
	"github.com/storyverse/realtime-platform/internal/store"
	"github.com/storyverse/realtime-platform/pkg/logger"
	"github.com/storyverse/realtime-platform/pkg/tracing"
)

// ContentService backs the seed REST surface: users and posts are
// created here so the socket channels have something to act on.
type ContentService struct {
	store  *store.Store
	logger *logger.Logger
}

// NewContentService creates a new content service.
func NewContentService(s *store.Store, log *logger.Logger) *ContentService {
	return &ContentService{store: s, logger: log}
}

// CreateUser registers a user with zero points.
func (s *ContentService) CreateUser(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	_, span := tracing.Tracer("service").Start(ctx, "content.create_user")
	defer span.End()

	user := &model.User{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Username:  req.Username,
		Avatar:    req.Avatar,
		Points:    0,
		CreatedAt: time.Now().UTC(),
	}
	err := s.store.Update(func(tx *store.Txn) error {
		if err := tx.PutUser(user); err != nil {
			return Unexpected(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUser fetches a user by ID.
func (s *ContentService) GetUser(ctx context.Context, id string) (*model.User, error) {
	var user *model.User
	err := s.store.View(func(tx *store.Txn) error {
		var err error
		user, err = tx.GetUser(id)
		if errors.Is(err, store.ErrNotFound) {
			return NotFound("User not found")
		}
		if err != nil {
			return Unexpected(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// CreatePost creates a post authored by the given user.
func (s *ContentService) CreatePost(ctx context.Context, authorID string, req *model.CreatePostRequest) (*model.Post, error) {
	_, span := tracing.Tracer("service").Start(ctx, "content.create_post")
	defer span.End()

	post := &model.Post{
		ID:        uuid.Must(uuid.NewV7()).String(),
		AuthorID:  authorID,
		Title:     req.Title,
		Content:   req.Content,
		CreatedAt: time.Now().UTC(),
	}
	err := s.store.Update(func(tx *store.Txn) error {
		if _, err := tx.GetUser(authorID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return NotFound("User not found")
			}
			return Unexpected(err)
		}
		if err := tx.PutPost(post); err != nil {
			return Unexpected(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// GetPost fetches a post with its derived like and comment counts.
func (s *ContentService) GetPost(ctx context.Context, id string) (*model.PostResponse, error) {
	var resp *model.PostResponse
	err := s.store.View(func(tx *store.Txn) error {
		post, err := tx.GetPost(id)
		if errors.Is(err, store.ErrNotFound) {
			return NotFound("Post not found")
		}
		if err != nil {
			return Unexpected(err)
		}
		likes, err := tx.LikesCount(id)
		if err != nil {
			return Unexpected(err)
		}
		comments, err := tx.CommentsCount(id)
		if err != nil {
			return Unexpected(err)
		}
		resp = &model.PostResponse{Post: *post, LikesCount: likes, CommentsCount: comments}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ListPostComments returns the post's comment threads: top-level comments
// in creation order, each with its direct replies. Replies nest one level;
// a reply to a reply attaches to the same thread.
func (s *ContentService) ListPostComments(ctx context.Context, postID string) ([]model.CommentThread, error) {
	var threads []model.CommentThread
	err := s.store.View(func(tx *store.Txn) error {
		if _, err := tx.GetPost(postID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return NotFound("Post not found")
			}
			return Unexpected(err)
		}
		comments, err := tx.ListPostComments(postID)
		if err != nil {
			return Unexpected(err)
		}

		names := make(map[string]*model.User)
		author := func(id string) *model.User {
			if u, ok := names[id]; ok {
				return u
			}
			u, err := tx.GetUser(id)
			if err != nil {
				u = &model.User{ID: id}
			}
			names[id] = u
			return u
		}

		// First pass lays out top-level threads, second attaches replies.
		// A reply's parent may itself be a reply; walk up to the root.
		byID := make(map[string]*model.Comment, len(comments))
		for i := range comments {
			byID[comments[i].ID] = &comments[i]
		}
		root := func(c *model.Comment) string {
			for c.IsReply() {
				parent, ok := byID[c.ParentID]
				if !ok {
					break
				}
				c = parent
			}
			return c.ID
		}

		threadIdx := make(map[string]int)
		for i := range comments {
			c := &comments[i]
			if c.IsReply() {
				continue
			}
			u := author(c.AuthorID)
			threadIdx[c.ID] = len(threads)
			threads = append(threads, model.CommentThread{
				CommentData: model.CommentData{
					ID:        c.ID,
					Author:    u.Username,
					AuthorID:  c.AuthorID,
					Content:   c.Content,
					CreatedAt: model.WireTime(c.CreatedAt),
					Avatar:    u.Avatar,
				},
			})
		}
		for i := range comments {
			c := &comments[i]
			if !c.IsReply() {
				continue
			}
			idx, ok := threadIdx[root(c)]
			if !ok {
				continue
			}
			u := author(c.AuthorID)
			threads[idx].Replies = append(threads[idx].Replies, model.CommentData{
				ID:        c.ID,
				Author:    u.Username,
				AuthorID:  c.AuthorID,
				Content:   c.Content,
				CreatedAt: model.WireTime(c.CreatedAt),
				ParentID:  c.ParentID,
				Avatar:    u.Avatar,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return threads, nil
}
