package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storyverse/realtime-platform/internal/dispatch"
	"github.com/storyverse/realtime-platform/internal/model"
	"github.com/storyverse/realtime-platform/internal/store"
	"github.com/storyverse/realtime-platform/pkg/logger"
	"github.com/storyverse/realtime-platform/pkg/metrics"
	"github.com/storyverse/realtime-platform/pkg/tracing"
)

// ChatService handles direct messaging actions.
type ChatService struct {
	store  *store.Store
	logger *logger.Logger
}

// NewChatService creates a new chat service.
func NewChatService(s *store.Store, log *logger.Logger) *ChatService {
	return &ChatService{store: s, logger: log}
}

// SendMessage persists a message, lazily creating the conversation for
// the unordered (sender, recipient) pair on first contact. The fan-out
// event targets the recipient's user topic; the message_sent echo to the
// sender is the caller's direct reply.
func (s *ChatService) SendMessage(ctx context.Context, actor Actor, recipientID, content string) (*model.MessageData, []dispatch.Event, error) {
	_, span := tracing.Tracer("service").Start(ctx, "chat.send_message")
	defer span.End()

	var data *model.MessageData

	err := s.store.Update(func(tx *store.Txn) error {
		if _, err := tx.GetUser(recipientID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return NotFound("Recipient not found")
			}
			return Unexpected(err)
		}

		conv, err := tx.FindConversationByPair(actor.ID, recipientID)
		if errors.Is(err, store.ErrNotFound) {
			conv = &model.Conversation{
				ID:           uuid.Must(uuid.NewV7()).String(),
				Participants: []string{actor.ID, recipientID},
				CreatedAt:    time.Now().UTC(),
			}
			if err := tx.CreateConversation(conv); err != nil {
				return Unexpected(err)
			}
			s.logger.Debug("conversation created", zap.String("conversation_id", conv.ID))
		} else if err != nil {
			return Unexpected(err)
		}

		msg := &model.Message{
			ID:             uuid.Must(uuid.NewV7()).String(),
			ConversationID: conv.ID,
			SenderID:       actor.ID,
			RecipientID:    recipientID,
			Content:        content,
			IsRead:         false,
			CreatedAt:      time.Now().UTC(),
		}
		if err := tx.AppendMessage(msg); err != nil {
			return Unexpected(err)
		}

		data = &model.MessageData{
			ID:             msg.ID,
			ConversationID: msg.ConversationID,
			SenderID:       msg.SenderID,
			SenderUsername: actor.Username,
			RecipientID:    msg.RecipientID,
			Content:        msg.Content,
			IsRead:         msg.IsRead,
			CreatedAt:      model.WireTime(msg.CreatedAt),
			SenderAvatar:   actor.Avatar,
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	metrics.MessagesTotal.Inc()

	events := []dispatch.Event{{
		Topic:   dispatch.UserTopic(recipientID),
		Payload: model.MessageFrame{Type: model.FrameNewMessage, MessageData: *data},
	}}
	return data, events, nil
}

// MarkMessagesRead flips is_read on all unread messages addressed to the
// actor in the conversation. Idempotent; the second call is a no-op.
// A requester who is not a participant gets an unauthorized failure that
// the channel ignores.
func (s *ChatService) MarkMessagesRead(ctx context.Context, actor Actor, conversationID string) (*model.MarkReadResult, error) {
	_, span := tracing.Tracer("service").Start(ctx, "chat.mark_read")
	defer span.End()

	err := s.store.Update(func(tx *store.Txn) error {
		conv, err := tx.GetConversation(conversationID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return NotFound("Conversation not found")
			}
			return Unexpected(err)
		}
		if !conv.HasParticipant(actor.ID) {
			return Unauthorized("not a participant of this conversation")
		}
		if _, err := tx.MarkMessagesRead(conversationID, actor.ID); err != nil {
			return Unexpected(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &model.MarkReadResult{Status: model.StatusSuccess}, nil
}

// UnreadCount counts unread messages addressed to the actor in one
// conversation, recomputed by scan.
func (s *ChatService) UnreadCount(ctx context.Context, actor Actor, conversationID string) (int, error) {
	var n int
	err := s.store.View(func(tx *store.Txn) error {
		var err error
		n, err = tx.UnreadMessagesCount(conversationID, actor.ID)
		return err
	})
	return n, err
}
