package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/courierlab/messenger-backend/internal/common"
	"github.com/courierlab/messenger-backend/internal/domain"
	"github.com/courierlab/messenger-backend/internal/repository"
	"github.com/courierlab/messenger-backend/pkg/logger"
	"github.com/courierlab/messenger-backend/pkg/queue"
	"gorm.io/gorm"
)

// MessageService business logic for private messages.
//
// Lifecycle steps are explicit function composition, not an event bus:
// Send runs the notification dispatch after its insert commits, Edit
// runs the audit interception inside the same transaction as the
// guarded update.
type MessageService interface {
	Send(senderID uint64, req *domain.SendMessageRequest) (*domain.Message, error)
	Get(id uint64) (*domain.Message, error)
	Edit(id, editorID uint64, content string) (*domain.Message, error)
	MarkAsRead(id, userID uint64) error
	GetUnread(userID uint64) ([]domain.Message, error)
	GetHistory(messageID uint64) ([]domain.MessageHistory, error)
	GetConversations(userID uint64) ([]domain.ConversationSummary, error)
}

type messageService struct {
	db            *gorm.DB
	messages      repository.MessageRepository
	histories     repository.MessageHistoryRepository
	notifications repository.NotificationRepository
	users         repository.UserRepository
	deliveryQueue queue.DeliveryQueue
}

// NewMessageService creates a new MessageService. deliveryQueue may be
// nil when no delivery worker is attached.
func NewMessageService(
	db *gorm.DB,
	messages repository.MessageRepository,
	histories repository.MessageHistoryRepository,
	notifications repository.NotificationRepository,
	users repository.UserRepository,
	deliveryQueue queue.DeliveryQueue,
) MessageService {
	return &messageService{
		db:            db,
		messages:      messages,
		histories:     histories,
		notifications: notifications,
		users:         users,
		deliveryQueue: deliveryQueue,
	}
}

// Send creates a message and then raises its notification. The
// notification is a separate unit of work: a dispatch failure is
// logged and dropped, never unwinding the committed message.
func (s *messageService) Send(senderID uint64, req *domain.SendMessageRequest) (*domain.Message, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("%w: message content cannot be empty", common.ErrInvalidInput)
	}

	if _, err := s.users.FindByID(senderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: sender %d does not exist", common.ErrConstraintViolation, senderID)
		}
		return nil, err
	}
	if _, err := s.users.FindByID(req.ReceiverID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: receiver %d does not exist", common.ErrConstraintViolation, req.ReceiverID)
		}
		return nil, err
	}

	if req.ParentID != nil {
		if err := s.checkParent(*req.ParentID, senderID, req.ReceiverID); err != nil {
			return nil, err
		}
	}

	msg := &domain.Message{
		SenderID:   senderID,
		ReceiverID: req.ReceiverID,
		Content:    req.Content,
		ParentID:   req.ParentID,
	}
	if err := s.messages.Create(msg); err != nil {
		return nil, err
	}

	s.dispatchNotification(msg)

	return msg, nil
}

// checkParent enforces the reply constraints: the parent must exist
// and must belong to the same sender/receiver pair.
func (s *messageService) checkParent(parentID, senderID, receiverID uint64) error {
	parent, err := s.messages.FindByID(parentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: parent message %d does not exist", common.ErrConstraintViolation, parentID)
		}
		return err
	}

	sameDirection := parent.SenderID == senderID && parent.ReceiverID == receiverID
	replyDirection := parent.SenderID == receiverID && parent.ReceiverID == senderID
	if !sameDirection && !replyDirection {
		return fmt.Errorf("%w: parent message %d belongs to another conversation",
			common.ErrConstraintViolation, parentID)
	}
	return nil
}

// dispatchNotification creates exactly one notification for a freshly
// created message and enqueues its ID for the delivery worker.
// Runs only on creation, never on edits. Messages without a resolvable
// receiver (system-internal) get no notification.
func (s *messageService) dispatchNotification(msg *domain.Message) {
	if msg.ReceiverID == 0 {
		return
	}

	notification := &domain.Notification{
		UserID:    msg.ReceiverID,
		MessageID: msg.ID,
	}
	if err := s.notifications.Create(notification); err != nil {
		logger.GetLogger().Error().
			Err(err).
			Uint64("message_id", msg.ID).
			Uint64("receiver_id", msg.ReceiverID).
			Msg("notification dispatch failed, dropping")
		return
	}

	if s.deliveryQueue == nil {
		return
	}
	if err := s.deliveryQueue.Enqueue(context.Background(), notification.ID); err != nil {
		logger.GetLogger().Warn().
			Err(err).
			Uint64("notification_id", notification.ID).
			Msg("notification enqueue failed, delivery worker will not be woken")
	}
}

func (s *messageService) Get(id uint64) (*domain.Message, error) {
	msg, err := s.messages.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrMessageNotFound
		}
		return nil, err
	}
	return msg, nil
}

// Edit applies a content change guarded by the audit interception:
// the prior content is fetched fresh inside the transaction, and when
// it differs from the proposed content a history snapshot is written
// and the edited flag stamped before the update commits. A reader can
// therefore never observe an edited message without its history row.
func (s *messageService) Edit(id, editorID uint64, content string) (*domain.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: message content cannot be empty", common.ErrInvalidInput)
	}

	var updated *domain.Message
	err := s.db.Transaction(func(tx *gorm.DB) error {
		messages := s.messages.WithTx(tx)

		prior, err := messages.FindByID(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Deleted underneath: nothing to audit, nothing to update.
				return common.ErrMessageNotFound
			}
			return err
		}

		if prior.SenderID != editorID {
			return common.ErrForbidden
		}

		if prior.Content != content {
			now := time.Now()
			snapshot := &domain.MessageHistory{
				MessageID:  prior.ID,
				OldContent: prior.Content,
				EditedByID: &editorID,
				EditedAt:   now,
			}
			if err := s.histories.WithTx(tx).Create(snapshot); err != nil {
				return err
			}

			prior.Content = content
			prior.Edited = true
			prior.EditedAt = &now
			prior.EditedByID = &editorID
			if err := messages.Save(prior); err != nil {
				return err
			}
		}

		updated = prior
		return nil
	})
	if err != nil {
		return nil, wrapTxErr(err)
	}
	return updated, nil
}

// MarkAsRead flips the read flag without touching content, so no
// history snapshot is taken.
func (s *messageService) MarkAsRead(id, userID uint64) error {
	msg, err := s.messages.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrMessageNotFound
		}
		return err
	}
	if msg.ReceiverID != userID {
		return common.ErrForbidden
	}
	return s.messages.MarkAsRead(id)
}

func (s *messageService) GetUnread(userID uint64) ([]domain.Message, error) {
	return s.messages.FindUnread(userID)
}

func (s *messageService) GetHistory(messageID uint64) ([]domain.MessageHistory, error) {
	if _, err := s.messages.FindByID(messageID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrMessageNotFound
		}
		return nil, err
	}
	return s.histories.FindByMessageID(messageID)
}

// GetConversations lists one summary per partner, newest conversation
// first.
func (s *messageService) GetConversations(userID uint64) ([]domain.ConversationSummary, error) {
	messages, err := s.messages.FindByParticipant(userID)
	if err != nil {
		return nil, err
	}

	var summaries []domain.ConversationSummary
	index := make(map[uint64]int)
	for i := range messages {
		m := &messages[i]
		partnerID := m.SenderID
		if partnerID == userID {
			partnerID = m.ReceiverID
		}

		pos, ok := index[partnerID]
		if !ok {
			// Messages arrive newest first, so the first hit per
			// partner is the latest message of that conversation.
			index[partnerID] = len(summaries)
			summaries = append(summaries, domain.ConversationSummary{
				PartnerID:   partnerID,
				LastMessage: m.Content,
				LastSentAt:  m.CreatedAt,
			})
			pos = index[partnerID]
		}
		if m.ReceiverID == userID && !m.IsRead {
			summaries[pos].UnreadCount++
		}
	}
	return summaries, nil
}

// wrapTxErr keeps typed outcomes intact and marks everything else as
// a transaction failure that rolled back in full.
func wrapTxErr(err error) error {
	if errors.Is(err, common.ErrMessageNotFound) ||
		errors.Is(err, common.ErrUserNotFound) ||
		errors.Is(err, common.ErrForbidden) ||
		errors.Is(err, common.ErrConstraintViolation) {
		return err
	}
	return fmt.Errorf("%w: %v", common.ErrTransactionFailure, err)
}
