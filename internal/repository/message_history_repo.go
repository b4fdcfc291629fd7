package repository

import (
	"github.com/courierlab/messenger-backend/internal/domain"
	"gorm.io/gorm"
)

// MessageHistoryRepository append-only edit snapshot access
type MessageHistoryRepository interface {
	WithTx(tx *gorm.DB) MessageHistoryRepository
	Create(history *domain.MessageHistory) error
	FindByMessageID(messageID uint64) ([]domain.MessageHistory, error)
	DeleteByMessageIDs(messageIDs []uint64) (int64, error)
	DeleteByEditor(userID uint64) (int64, error)
}

type messageHistoryRepository struct {
	db *gorm.DB
}

// NewMessageHistoryRepository creates a new MessageHistoryRepository
func NewMessageHistoryRepository(db *gorm.DB) MessageHistoryRepository {
	return &messageHistoryRepository{db: db}
}

func (r *messageHistoryRepository) WithTx(tx *gorm.DB) MessageHistoryRepository {
	return &messageHistoryRepository{db: tx}
}

func (r *messageHistoryRepository) Create(history *domain.MessageHistory) error {
	return r.db.Create(history).Error
}

// FindByMessageID returns snapshots in replay order, oldest edit first
func (r *messageHistoryRepository) FindByMessageID(messageID uint64) ([]domain.MessageHistory, error) {
	var histories []domain.MessageHistory
	err := r.db.
		Where("message_id = ?", messageID).
		Order("edited_at ASC, id ASC").
		Find(&histories).Error
	return histories, err
}

func (r *messageHistoryRepository) DeleteByMessageIDs(messageIDs []uint64) (int64, error) {
	if len(messageIDs) == 0 {
		return 0, nil
	}
	res := r.db.Where("message_id IN ?", messageIDs).Delete(&domain.MessageHistory{})
	return res.RowsAffected, res.Error
}

func (r *messageHistoryRepository) DeleteByEditor(userID uint64) (int64, error) {
	res := r.db.Where("edited_by_id = ?", userID).Delete(&domain.MessageHistory{})
	return res.RowsAffected, res.Error
}
