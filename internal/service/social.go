package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/storyverse/realtime-platform/internal/dispatch"
	"github.com/storyverse/realtime-platform/internal/ledger"
	"github.com/storyverse/realtime-platform/internal/model"
	"github.com/storyverse/realtime-platform/internal/store"
	"github.com/storyverse/realtime-platform/pkg/logger"
	"github.com/storyverse/realtime-platform/pkg/tracing"
)

// Point deltas credited to the receiving side of a social action.
const (
	followPoints  = 5
	likePoints    = 2
	commentPoints = 3
)

// Actor is the authenticated identity performing an action.
type Actor struct {
	ID       string
	Username string
	Avatar   string
}

// SocialService handles follow and like actions.
type SocialService struct {
	store    *store.Store
	ledger   *ledger.Ledger
	notifier NotificationSink
	logger   *logger.Logger
}

// NewSocialService creates a new social service.
func NewSocialService(s *store.Store, l *ledger.Ledger, sink NotificationSink, log *logger.Logger) *SocialService {
	return &SocialService{store: s, ledger: l, notifier: sink, logger: log}
}

// Follow creates the follow pair if absent. The target is credited
// followPoints only when the pair is newly created; a repeat follow is
// an info result with no point change.
func (s *SocialService) Follow(ctx context.Context, actor Actor, targetID string) (*model.FollowResult, []dispatch.Event, error) {
	_, span := tracing.Tracer("service").Start(ctx, "social.follow")
	defer span.End()

	var result *model.FollowResult
	var events []dispatch.Event

	err := s.store.Update(func(tx *store.Txn) error {
		if _, err := tx.GetUser(targetID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return NotFound("User not found")
			}
			return Unexpected(err)
		}

		created, err := tx.CreateFollow(actor.ID, targetID, time.Now().UTC())
		if err != nil {
			return Unexpected(err)
		}

		if created {
			if _, err := s.ledger.Adjust(tx, targetID, followPoints); err != nil {
				return Unexpected(err)
			}
			n := &model.Notification{
				RecipientID: targetID,
				SenderID:    actor.ID,
				Type:        model.NotificationFollow,
				Text:        fmt.Sprintf("%s started following you", actor.Username),
			}
			ok, err := s.notifier.Notify(tx, n)
			if err != nil {
				return Unexpected(err)
			}
			if ok {
				events = append(events, dispatch.Event{
					Topic: dispatch.NotificationsTopic(targetID),
					Payload: model.NotificationFrame{
						Type:             model.FrameNotification,
						NotificationData: notificationData(n, actor.Username),
					},
				})
			}
		}

		count, err := tx.FollowersCount(targetID)
		if err != nil {
			return Unexpected(err)
		}

		if created {
			result = &model.FollowResult{
				Status:         model.StatusSuccess,
				Message:        "You are now following this user",
				FollowersCount: count,
			}
		} else {
			result = &model.FollowResult{
				Status:         model.StatusInfo,
				Message:        "You are already following this user",
				FollowersCount: count,
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return result, events, nil
}

// Unfollow deletes the follow pair if present, debiting followPoints
// clamped at zero. Unfollowing someone never followed is an info result.
func (s *SocialService) Unfollow(ctx context.Context, actor Actor, targetID string) (*model.FollowResult, []dispatch.Event, error) {
	_, span := tracing.Tracer("service").Start(ctx, "social.unfollow")
	defer span.End()

	var result *model.FollowResult

	err := s.store.Update(func(tx *store.Txn) error {
		if _, err := tx.GetUser(targetID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return NotFound("User not found")
			}
			return Unexpected(err)
		}

		deleted, err := tx.DeleteFollow(actor.ID, targetID)
		if err != nil {
			return Unexpected(err)
		}
		if deleted {
			if _, err := s.ledger.Adjust(tx, targetID, -followPoints); err != nil {
				return Unexpected(err)
			}
		}

		count, err := tx.FollowersCount(targetID)
		if err != nil {
			return Unexpected(err)
		}

		if deleted {
			result = &model.FollowResult{
				Status:         model.StatusSuccess,
				Message:        "You have unfollowed this user",
				FollowersCount: count,
			}
		} else {
			result = &model.FollowResult{
				Status:         model.StatusInfo,
				Message:        "You are not following this user",
				FollowersCount: count,
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return result, nil, nil
}

// Like creates the (post, user) like if absent, crediting the post author
// likePoints only on creation. A repeat like is an info result.
func (s *SocialService) Like(ctx context.Context, actor Actor, postID string) (*model.LikeResult, []dispatch.Event, error) {
	_, span := tracing.Tracer("service").Start(ctx, "social.like")
	defer span.End()

	var result *model.LikeResult
	var events []dispatch.Event

	err := s.store.Update(func(tx *store.Txn) error {
		post, err := tx.GetPost(postID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return NotFound("Post not found")
			}
			return Unexpected(err)
		}

		created, err := tx.CreateLike(postID, actor.ID, time.Now().UTC())
		if err != nil {
			return Unexpected(err)
		}

		if created {
			if _, err := s.ledger.Adjust(tx, post.AuthorID, likePoints); err != nil {
				return Unexpected(err)
			}
			n := &model.Notification{
				RecipientID:     post.AuthorID,
				SenderID:        actor.ID,
				Type:            model.NotificationLike,
				Text:            fmt.Sprintf("%s liked your post", actor.Username),
				RelatedObjectID: post.ID,
			}
			ok, err := s.notifier.Notify(tx, n)
			if err != nil {
				return Unexpected(err)
			}
			if ok {
				events = append(events, dispatch.Event{
					Topic: dispatch.NotificationsTopic(post.AuthorID),
					Payload: model.NotificationFrame{
						Type:             model.FrameNotification,
						NotificationData: notificationData(n, actor.Username),
					},
				})
			}
		}

		count, err := tx.LikesCount(postID)
		if err != nil {
			return Unexpected(err)
		}

		if created {
			result = &model.LikeResult{
				Status:     model.StatusSuccess,
				Message:    "You liked this post",
				LikesCount: count,
			}
		} else {
			result = &model.LikeResult{
				Status:     model.StatusInfo,
				Message:    "You already liked this post",
				LikesCount: count,
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return result, events, nil
}

// Unlike deletes the like if present, debiting the post author
// likePoints clamped at zero.
func (s *SocialService) Unlike(ctx context.Context, actor Actor, postID string) (*model.LikeResult, []dispatch.Event, error) {
	_, span := tracing.Tracer("service").Start(ctx, "social.unlike")
	defer span.End()

	var result *model.LikeResult

	err := s.store.Update(func(tx *store.Txn) error {
		post, err := tx.GetPost(postID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return NotFound("Post not found")
			}
			return Unexpected(err)
		}

		deleted, err := tx.DeleteLike(postID, actor.ID)
		if err != nil {
			return Unexpected(err)
		}
		if deleted {
			if _, err := s.ledger.Adjust(tx, post.AuthorID, -likePoints); err != nil {
				return Unexpected(err)
			}
		}

		count, err := tx.LikesCount(postID)
		if err != nil {
			return Unexpected(err)
		}

		if deleted {
			result = &model.LikeResult{
				Status:     model.StatusSuccess,
				Message:    "You unliked this post",
				LikesCount: count,
			}
		} else {
			result = &model.LikeResult{
				Status:     model.StatusInfo,
				Message:    "You did not like this post",
				LikesCount: count,
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return result, nil, nil
}
