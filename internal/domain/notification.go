package domain

import "time"

// Notification is raised once when a message with a resolvable
// receiver is created, and removed when the owning message or
// user is removed.
type Notification struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID    uint64    `gorm:"column:user_id;index" json:"user_id"`
	MessageID uint64    `gorm:"column:message_id;index" json:"message_id"`
	IsRead    bool      `gorm:"column:is_read;default:false" json:"is_read"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }

// NotificationSummaryResponse unread counter payload
type NotificationSummaryResponse struct {
	TotalUnread int `json:"total_unread"`
}
