package repository

import (
	"time"

	"github.com/courierlab/messenger-backend/internal/domain"
	"gorm.io/gorm"
)

// MessageRepository message data access interface
type MessageRepository interface {
	WithTx(tx *gorm.DB) MessageRepository
	Create(msg *domain.Message) error
	FindByID(id uint64) (*domain.Message, error)
	Save(msg *domain.Message) error
	MarkAsRead(id uint64) error
	FindConversation(userA, userB uint64) ([]domain.Message, error)
	FindByParticipant(userID uint64) ([]domain.Message, error)
	FindUnread(receiverID uint64) ([]domain.Message, error)
	IDsByParticipant(userID uint64) ([]uint64, error)
	DeleteByParticipant(userID uint64) (int64, error)
	ClearParentRefs(parentIDs []uint64) error
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) WithTx(tx *gorm.DB) MessageRepository {
	return &messageRepository{db: tx}
}

func (r *messageRepository) Create(msg *domain.Message) error {
	return r.db.Create(msg).Error
}

func (r *messageRepository) FindByID(id uint64) (*domain.Message, error) {
	var msg domain.Message
	err := r.db.Where("id = ?", id).First(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepository) Save(msg *domain.Message) error {
	return r.db.Save(msg).Error
}

func (r *messageRepository) MarkAsRead(id uint64) error {
	now := time.Now()
	return r.db.Model(&domain.Message{}).Where("id = ?", id).
		Updates(map[string]interface{}{"is_read": true, "read_at": now}).Error
}

// FindConversation returns all messages exchanged between two users,
// oldest first. Sibling order for thread materialization comes from
// this ordering.
func (r *messageRepository) FindConversation(userA, userB uint64) ([]domain.Message, error) {
	var messages []domain.Message
	err := r.db.
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userA, userB, userB, userA).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	return messages, err
}

func (r *messageRepository) FindByParticipant(userID uint64) ([]domain.Message, error) {
	var messages []domain.Message
	err := r.db.
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at DESC, id DESC").
		Find(&messages).Error
	return messages, err
}

func (r *messageRepository) FindUnread(receiverID uint64) ([]domain.Message, error) {
	var messages []domain.Message
	err := r.db.
		Where("receiver_id = ? AND is_read = ?", receiverID, false).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	return messages, err
}

func (r *messageRepository) IDsByParticipant(userID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.Model(&domain.Message{}).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *messageRepository) DeleteByParticipant(userID uint64) (int64, error) {
	res := r.db.Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Delete(&domain.Message{})
	return res.RowsAffected, res.Error
}

// ClearParentRefs detaches surviving replies whose parent was just
// deleted, so no message keeps a dangling parent reference.
func (r *messageRepository) ClearParentRefs(parentIDs []uint64) error {
	if len(parentIDs) == 0 {
		return nil
	}
	return r.db.Model(&domain.Message{}).
		Where("parent_id IN ?", parentIDs).
		Update("parent_id", nil).Error
}
