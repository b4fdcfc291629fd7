package migration

import (
	"github.com/courierlab/messenger-backend/internal/domain"
	"gorm.io/gorm"
)

// Run executes AutoMigrate for the messenger tables.
// Creates missing tables and columns, leaves existing data alone.
func Run(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Message{},
		&domain.MessageHistory{},
		&domain.Notification{},
	)
}
