package repository

import (
	"testing"
	"time"

	"github.com/courierlab/messenger-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupRepoDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&domain.Message{}))
	return db
}

func seedMessage(t *testing.T, db *gorm.DB, sender, receiver uint64, content string, createdAt time.Time) *domain.Message {
	t.Helper()
	msg := &domain.Message{SenderID: sender, ReceiverID: receiver, Content: content, CreatedAt: createdAt}
	require.NoError(t, db.Create(msg).Error)
	return msg
}

func TestFindConversation_BothDirectionsChronological(t *testing.T) {
	db := setupRepoDB(t)
	repo := NewMessageRepository(db)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	seedMessage(t, db, 1, 2, "first", base)
	seedMessage(t, db, 2, 1, "second", base.Add(time.Minute))
	seedMessage(t, db, 1, 2, "third", base.Add(2*time.Minute))
	seedMessage(t, db, 1, 3, "other conversation", base)

	messages, err := repo.FindConversation(1, 2)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "first", messages[0].Content)
	assert.Equal(t, "second", messages[1].Content)
	assert.Equal(t, "third", messages[2].Content)
}

func TestFindUnread_OrderAndFilter(t *testing.T) {
	db := setupRepoDB(t)
	repo := NewMessageRepository(db)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	older := seedMessage(t, db, 1, 2, "older", base)
	newer := seedMessage(t, db, 3, 2, "newer", base.Add(time.Hour))
	readMsg := seedMessage(t, db, 1, 2, "already read", base.Add(time.Minute))
	require.NoError(t, repo.MarkAsRead(readMsg.ID))
	seedMessage(t, db, 2, 1, "outbound", base)

	unread, err := repo.FindUnread(2)
	require.NoError(t, err)
	require.Len(t, unread, 2)
	assert.Equal(t, older.ID, unread[0].ID)
	assert.Equal(t, newer.ID, unread[1].ID)
}

func TestIDsByParticipant_CoversBothColumns(t *testing.T) {
	db := setupRepoDB(t)
	repo := NewMessageRepository(db)
	now := time.Now()

	sent := seedMessage(t, db, 5, 6, "sent", now)
	received := seedMessage(t, db, 7, 5, "received", now)
	seedMessage(t, db, 6, 7, "unrelated", now)

	ids, err := repo.IDsByParticipant(5)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint64{sent.ID, received.ID}, ids)
}

func TestClearParentRefs(t *testing.T) {
	db := setupRepoDB(t)
	repo := NewMessageRepository(db)
	now := time.Now()

	parent := seedMessage(t, db, 1, 2, "parent", now)
	child := &domain.Message{SenderID: 2, ReceiverID: 1, Content: "child", ParentID: &parent.ID, CreatedAt: now}
	require.NoError(t, db.Create(child).Error)

	require.NoError(t, repo.ClearParentRefs([]uint64{parent.ID}))

	var reloaded domain.Message
	require.NoError(t, db.First(&reloaded, child.ID).Error)
	assert.Nil(t, reloaded.ParentID)

	// Empty input is a no-op, not a broken IN clause
	require.NoError(t, repo.ClearParentRefs(nil))
}
