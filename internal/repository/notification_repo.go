package repository

import (
	"errors"

	"github.com/courierlab/messenger-backend/internal/domain"
	"gorm.io/gorm"
)

// NotificationRepository handles notification data operations
type NotificationRepository interface {
	WithTx(tx *gorm.DB) NotificationRepository
	Create(notification *domain.Notification) error
	FindByID(id uint64) (*domain.Notification, error)
	GetList(userID uint64, offset, limit int) ([]domain.Notification, int64, error)
	GetUnreadCount(userID uint64) (int64, error)
	MarkAsRead(id uint64) error
	MarkAllAsRead(userID uint64) error
	DeleteByUser(userID uint64) (int64, error)
	DeleteByMessageIDs(messageIDs []uint64) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) WithTx(tx *gorm.DB) NotificationRepository {
	return &notificationRepository{db: tx}
}

func (r *notificationRepository) Create(notification *domain.Notification) error {
	return r.db.Create(notification).Error
}

// FindByID returns a notification by ID, nil when absent
func (r *notificationRepository) FindByID(id uint64) (*domain.Notification, error) {
	var notification domain.Notification
	err := r.db.Where("id = ?", id).First(&notification).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &notification, nil
}

// GetList returns paginated notifications for a user, newest first
func (r *notificationRepository) GetList(userID uint64, offset, limit int) ([]domain.Notification, int64, error) {
	var notifications []domain.Notification
	var total int64

	if err := r.db.Model(&domain.Notification{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&notifications).Error; err != nil {
		return nil, 0, err
	}

	return notifications, total, nil
}

// GetUnreadCount returns the number of unread notifications for a user
func (r *notificationRepository) GetUnreadCount(userID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkAsRead marks a notification as read
func (r *notificationRepository) MarkAsRead(id uint64) error {
	return r.db.Model(&domain.Notification{}).
		Where("id = ?", id).
		Update("is_read", true).Error
}

// MarkAllAsRead marks all notifications as read for a user
func (r *notificationRepository) MarkAllAsRead(userID uint64) error {
	return r.db.Model(&domain.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}

func (r *notificationRepository) DeleteByUser(userID uint64) (int64, error) {
	res := r.db.Where("user_id = ?", userID).Delete(&domain.Notification{})
	return res.RowsAffected, res.Error
}

func (r *notificationRepository) DeleteByMessageIDs(messageIDs []uint64) (int64, error) {
	if len(messageIDs) == 0 {
		return 0, nil
	}
	res := r.db.Where("message_id IN ?", messageIDs).Delete(&domain.Notification{})
	return res.RowsAffected, res.Error
}
