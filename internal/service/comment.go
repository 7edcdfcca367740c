package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/storyverse/realtime-platform/internal/dispatch"
	"github.com/storyverse/realtime-platform/internal/ledger"
	"github.com/storyverse/realtime-platform/internal/model"
	"github.com/storyverse/realtime-platform/internal/store"
	"github.com/storyverse/realtime-platform/pkg/logger"
	"github.com/storyverse/realtime-platform/pkg/tracing"
)

// CommentService handles the add_comment action.
type CommentService struct {
	store    *store.Store
	ledger   *ledger.Ledger
	notifier NotificationSink
	logger   *logger.Logger
}

// NewCommentService creates a new comment service.
func NewCommentService(s *store.Store, l *ledger.Ledger, sink NotificationSink, log *logger.Logger) *CommentService {
	return &CommentService{store: s, ledger: l, notifier: sink, logger: log}
}

// AddComment creates a comment on a post, optionally as a reply to a
// parent comment. Not idempotent: resubmission creates a duplicate by
// design. The author earns commentPoints unconditionally, including on
// their own post; the notification goes to the parent comment's author
// for a reply, otherwise the post's author, and is suppressed when that
// would be the commenter themselves.
func (s *CommentService) AddComment(ctx context.Context, actor Actor, postID, content, parentID string) (*model.CommentData, []dispatch.Event, error) {
	_, span := tracing.Tracer("service").Start(ctx, "comment.add")
	defer span.End()

	var data *model.CommentData
	var events []dispatch.Event

	err := s.store.Update(func(tx *store.Txn) error {
		post, err := tx.GetPost(postID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return NotFound("Post not found")
			}
			return Unexpected(err)
		}

		notifyRecipient := post.AuthorID
		notifyType := model.NotificationComment
		notifyText := fmt.Sprintf("%s commented on your post", actor.Username)

		if parentID != "" {
			parent, err := tx.GetComment(parentID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return NotFound("Parent comment not found")
				}
				return Unexpected(err)
			}
			notifyRecipient = parent.AuthorID
			notifyType = model.NotificationReply
			notifyText = fmt.Sprintf("%s replied to your comment", actor.Username)
		}

		comment := &model.Comment{
			ID:        uuid.Must(uuid.NewV7()).String(),
			PostID:    postID,
			AuthorID:  actor.ID,
			Content:   content,
			ParentID:  parentID,
			CreatedAt: time.Now().UTC(),
		}
		if err := tx.PutComment(comment); err != nil {
			return Unexpected(err)
		}

		if _, err := s.ledger.Adjust(tx, actor.ID, commentPoints); err != nil {
			return Unexpected(err)
		}

		n := &model.Notification{
			RecipientID:     notifyRecipient,
			SenderID:        actor.ID,
			Type:            notifyType,
			Text:            notifyText,
			RelatedObjectID: comment.ID,
		}
		ok, err := s.notifier.Notify(tx, n)
		if err != nil {
			return Unexpected(err)
		}
		if ok {
			events = append(events, dispatch.Event{
				Topic: dispatch.NotificationsTopic(notifyRecipient),
				Payload: model.NotificationFrame{
					Type:             model.FrameNotification,
					NotificationData: notificationData(n, actor.Username),
				},
			})
		}

		data = &model.CommentData{
			ID:        comment.ID,
			Author:    actor.Username,
			AuthorID:  actor.ID,
			Content:   comment.Content,
			CreatedAt: model.WireTime(comment.CreatedAt),
			ParentID:  comment.ParentID,
			Avatar:    actor.Avatar,
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	// The comment broadcast goes to everyone viewing the post,
	// commenter included.
	events = append([]dispatch.Event{{
		Topic:   dispatch.PostTopic(postID),
		Payload: model.CommentFrame{Type: model.FrameComment, CommentData: *data},
	}}, events...)

	return data, events, nil
}
