package domain

import "time"

// Message represents a private message between users.
// A message with ParentID set is a reply inside the same conversation.
type Message struct {
	ID         uint64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SenderID   uint64     `gorm:"column:sender_id;index" json:"sender_id"`
	ReceiverID uint64     `gorm:"column:receiver_id;index" json:"receiver_id"`
	Content    string     `gorm:"column:content;type:text" json:"content"`
	ParentID   *uint64    `gorm:"column:parent_id;index" json:"parent_id,omitempty"`
	IsRead     bool       `gorm:"column:is_read;default:false" json:"is_read"`
	ReadAt     *time.Time `gorm:"column:read_at" json:"read_at,omitempty"`
	Edited     bool       `gorm:"column:edited;default:false" json:"edited"`
	EditedAt   *time.Time `gorm:"column:edited_at" json:"edited_at,omitempty"`
	EditedByID *uint64    `gorm:"column:edited_by_id" json:"edited_by_id,omitempty"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Message) TableName() string { return "messages" }

// SendMessageRequest message creation payload
type SendMessageRequest struct {
	ReceiverID uint64  `json:"receiver_id" binding:"required"`
	Content    string  `json:"content" binding:"required"`
	ParentID   *uint64 `json:"parent_id,omitempty"`
}

// EditMessageRequest message edit payload
type EditMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// ConversationSummary one row per conversation partner, newest first
type ConversationSummary struct {
	PartnerID   uint64    `json:"partner_id"`
	LastMessage string    `json:"last_message"`
	LastSentAt  time.Time `json:"last_sent_at"`
	UnreadCount int64     `json:"unread_count"`
}
