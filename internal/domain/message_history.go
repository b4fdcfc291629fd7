package domain

import "time"

// MessageHistory is an append-only snapshot of a message's content
// taken immediately before an edit overwrote it. Rows are never
// updated or reused; replay order is edited_at ascending.
type MessageHistory struct {
	ID         uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	MessageID  uint64    `gorm:"column:message_id;index" json:"message_id"`
	OldContent string    `gorm:"column:old_content;type:text" json:"old_content"`
	EditedByID *uint64   `gorm:"column:edited_by_id" json:"edited_by_id,omitempty"`
	EditedAt   time.Time `gorm:"column:edited_at" json:"edited_at"`
}

func (MessageHistory) TableName() string { return "message_histories" }
