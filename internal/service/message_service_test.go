package service

import (
	"errors"
	"testing"

	"github.com/courierlab/messenger-backend/internal/common"
	"github.com/courierlab/messenger-backend/internal/domain"
	"github.com/courierlab/messenger-backend/internal/repository"
	"github.com/courierlab/messenger-backend/pkg/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newMessageService(db *gorm.DB, q *fakeDeliveryQueue) MessageService {
	messages := repository.NewMessageRepository(db)
	histories := repository.NewMessageHistoryRepository(db)
	notifications := repository.NewNotificationRepository(db)
	users := repository.NewUserRepository(db)

	var deliveryQueue queue.DeliveryQueue
	if q != nil {
		deliveryQueue = q
	}
	return NewMessageService(db, messages, histories, notifications, users, deliveryQueue)
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(model).Count(&count).Error)
	return count
}

func TestSend_CreatesNotificationOnce(t *testing.T) {
	db := setupTestDB(t)
	q := &fakeDeliveryQueue{}
	svc := newMessageService(db, q)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	msg, err := svc.Send(alice.ID, &domain.SendMessageRequest{ReceiverID: bob.ID, Content: "hi"})
	require.NoError(t, err)
	require.NotZero(t, msg.ID)

	var notifications []domain.Notification
	require.NoError(t, db.Find(&notifications).Error)
	require.Len(t, notifications, 1)
	assert.Equal(t, bob.ID, notifications[0].UserID)
	assert.Equal(t, msg.ID, notifications[0].MessageID)
	assert.False(t, notifications[0].IsRead)

	assert.Equal(t, []uint64{notifications[0].ID}, q.enqueued)

	// Creation produces no audit rows
	assert.Zero(t, countRows(t, db, &domain.MessageHistory{}))
}

func TestSend_EnqueueFailureDoesNotAbort(t *testing.T) {
	db := setupTestDB(t)
	q := &fakeDeliveryQueue{failWith: errors.New("redis down")}
	svc := newMessageService(db, q)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	msg, err := svc.Send(alice.ID, &domain.SendMessageRequest{ReceiverID: bob.ID, Content: "hi"})
	require.NoError(t, err)

	// Message and notification both survive the failed handoff
	assert.NotZero(t, msg.ID)
	assert.EqualValues(t, 1, countRows(t, db, &domain.Notification{}))
}

func TestDispatch_NoReceiverNoNotification(t *testing.T) {
	db := setupTestDB(t)
	q := &fakeDeliveryQueue{}
	svc := newMessageService(db, q).(*messageService)

	// System-internal message without a resolvable receiver
	svc.dispatchNotification(&domain.Message{ID: 1, SenderID: 1})

	assert.Zero(t, countRows(t, db, &domain.Notification{}))
	assert.Empty(t, q.enqueued)
}

func TestSend_UnknownReceiverIsConstraintViolation(t *testing.T) {
	db := setupTestDB(t)
	svc := newMessageService(db, nil)
	alice := createTestUser(t, db, "alice")

	_, err := svc.Send(alice.ID, &domain.SendMessageRequest{ReceiverID: 999, Content: "hi"})
	require.ErrorIs(t, err, common.ErrConstraintViolation)

	assert.Zero(t, countRows(t, db, &domain.Message{}))
	assert.Zero(t, countRows(t, db, &domain.Notification{}))
}

func TestSend_UnknownSenderIsConstraintViolation(t *testing.T) {
	db := setupTestDB(t)
	svc := newMessageService(db, nil)
	bob := createTestUser(t, db, "bob")

	_, err := svc.Send(999, &domain.SendMessageRequest{ReceiverID: bob.ID, Content: "hi"})
	require.ErrorIs(t, err, common.ErrConstraintViolation)
}

func TestSend_EmptyContentRejected(t *testing.T) {
	db := setupTestDB(t)
	svc := newMessageService(db, nil)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	_, err := svc.Send(alice.ID, &domain.SendMessageRequest{ReceiverID: bob.ID, Content: "   "})
	require.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestSend_ParentConstraints(t *testing.T) {
	db := setupTestDB(t)
	svc := newMessageService(db, nil)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	carol := createTestUser(t, db, "carol")

	parent, err := svc.Send(alice.ID, &domain.SendMessageRequest{ReceiverID: bob.ID, Content: "hi"})
	require.NoError(t, err)

	// Missing parent
	missing := uint64(12345)
	_, err = svc.Send(bob.ID, &domain.SendMessageRequest{ReceiverID: alice.ID, Content: "re", ParentID: &missing})
	require.ErrorIs(t, err, common.ErrConstraintViolation)

	// Parent from another conversation
	_, err = svc.Send(carol.ID, &domain.SendMessageRequest{ReceiverID: bob.ID, Content: "re", ParentID: &parent.ID})
	require.ErrorIs(t, err, common.ErrConstraintViolation)

	// Valid reply, opposite direction
	reply, err := svc.Send(bob.ID, &domain.SendMessageRequest{ReceiverID: alice.ID, Content: "hello back", ParentID: &parent.ID})
	require.NoError(t, err)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, parent.ID, *reply.ParentID)
}

func TestEdit_WritesHistorySnapshot(t *testing.T) {
	db := setupTestDB(t)
	svc := newMessageService(db, nil)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	msg, err := svc.Send(alice.ID, &domain.SendMessageRequest{ReceiverID: bob.ID, Content: "hi"})
	require.NoError(t, err)

	edited, err := svc.Edit(msg.ID, alice.ID, "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", edited.Content)
	assert.True(t, edited.Edited)
	require.NotNil(t, edited.EditedAt)
	require.NotNil(t, edited.EditedByID)
	assert.Equal(t, alice.ID, *edited.EditedByID)

	histories, err := svc.GetHistory(msg.ID)
	require.NoError(t, err)
	require.Len(t, histories, 1)
	assert.Equal(t, "hi", histories[0].OldContent)
	assert.Equal(t, msg.ID, histories[0].MessageID)

	// Edits never re-fire the notification
	assert.EqualValues(t, 1, countRows(t, db, &domain.Notification{}))
}

func TestEdit_NoChangeWritesNothing(t *testing.T) {
	db := setupTestDB(t)
	svc := newMessageService(db, nil)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	msg, err := svc.Send(alice.ID, &domain.SendMessageRequest{ReceiverID: bob.ID, Content: "hello"})
	require.NoError(t, err)

	edited, err := svc.Edit(msg.ID, alice.ID, "hello")
	require.NoError(t, err)
	assert.False(t, edited.Edited)
	assert.Nil(t, edited.EditedAt)
	assert.Zero(t, countRows(t, db, &domain.MessageHistory{}))
}

func TestEdit_AuditCompleteness(t *testing.T) {
	db := setupTestDB(t)
	svc := newMessageService(db, nil)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	msg, err := svc.Send(alice.ID, &domain.SendMessageRequest{ReceiverID: bob.ID, Content: "v1"})
	require.NoError(t, err)

	_, err = svc.Edit(msg.ID, alice.ID, "v2")
	require.NoError(t, err)
	_, err = svc.Edit(msg.ID, alice.ID, "v2") // no change
	require.NoError(t, err)
	_, err = svc.Edit(msg.ID, alice.ID, "v3")
	require.NoError(t, err)

	histories, err := svc.GetHistory(msg.ID)
	require.NoError(t, err)
	require.Len(t, histories, 2)
	// Replay order: each snapshot holds the content the edit overwrote
	assert.Equal(t, "v1", histories[0].OldContent)
	assert.Equal(t, "v2", histories[1].OldContent)

	current, err := svc.Get(msg.ID)
	require.NoError(t, err)
	assert.Equal(t, "v3", current.Content)
}

func TestEdit_MissingMessageIsNoOp(t *testing.T) {
	db := setupTestDB(t)
	svc := newMessageService(db, nil)
	createTestUser(t, db, "alice")

	_, err := svc.Edit(12345, 1, "anything")
	require.ErrorIs(t, err, common.ErrMessageNotFound)
	assert.Zero(t, countRows(t, db, &domain.MessageHistory{}))
}

func TestEdit_NonSenderForbidden(t *testing.T) {
	db := setupTestDB(t)
	svc := newMessageService(db, nil)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	msg, err := svc.Send(alice.ID, &domain.SendMessageRequest{ReceiverID: bob.ID, Content: "hi"})
	require.NoError(t, err)

	_, err = svc.Edit(msg.ID, bob.ID, "tampered")
	require.ErrorIs(t, err, common.ErrForbidden)
	assert.Zero(t, countRows(t, db, &domain.MessageHistory{}))
}

func TestMarkAsRead_DoesNotAudit(t *testing.T) {
	db := setupTestDB(t)
	svc := newMessageService(db, nil)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	msg, err := svc.Send(alice.ID, &domain.SendMessageRequest{ReceiverID: bob.ID, Content: "hi"})
	require.NoError(t, err)

	require.NoError(t, svc.MarkAsRead(msg.ID, bob.ID))

	read, err := svc.Get(msg.ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)
	assert.NotNil(t, read.ReadAt)
	assert.False(t, read.Edited)
	assert.Zero(t, countRows(t, db, &domain.MessageHistory{}))

	// Only the receiver may flip the flag
	err = svc.MarkAsRead(msg.ID, alice.ID)
	require.ErrorIs(t, err, common.ErrForbidden)
}

func TestGetUnread_FilterCorrectness(t *testing.T) {
	db := setupTestDB(t)
	svc := newMessageService(db, nil)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	carol := createTestUser(t, db, "carol")

	first, err := svc.Send(alice.ID, &domain.SendMessageRequest{ReceiverID: bob.ID, Content: "one"})
	require.NoError(t, err)
	second, err := svc.Send(alice.ID, &domain.SendMessageRequest{ReceiverID: bob.ID, Content: "two"})
	require.NoError(t, err)
	read, err := svc.Send(alice.ID, &domain.SendMessageRequest{ReceiverID: bob.ID, Content: "three"})
	require.NoError(t, err)
	require.NoError(t, svc.MarkAsRead(read.ID, bob.ID))
	// Addressed to someone else, must not leak in
	_, err = svc.Send(alice.ID, &domain.SendMessageRequest{ReceiverID: carol.ID, Content: "other"})
	require.NoError(t, err)

	unread, err := svc.GetUnread(bob.ID)
	require.NoError(t, err)
	require.Len(t, unread, 2)
	assert.Equal(t, first.ID, unread[0].ID)
	assert.Equal(t, second.ID, unread[1].ID)
	for _, m := range unread {
		assert.Equal(t, bob.ID, m.ReceiverID)
		assert.False(t, m.IsRead)
	}
}

func TestGetConversations_SummariesPerPartner(t *testing.T) {
	db := setupTestDB(t)
	svc := newMessageService(db, nil)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	carol := createTestUser(t, db, "carol")

	_, err := svc.Send(bob.ID, &domain.SendMessageRequest{ReceiverID: alice.ID, Content: "from bob"})
	require.NoError(t, err)
	_, err = svc.Send(carol.ID, &domain.SendMessageRequest{ReceiverID: alice.ID, Content: "from carol"})
	require.NoError(t, err)
	_, err = svc.Send(alice.ID, &domain.SendMessageRequest{ReceiverID: bob.ID, Content: "to bob"})
	require.NoError(t, err)

	summaries, err := svc.GetConversations(alice.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	byPartner := make(map[uint64]domain.ConversationSummary)
	for _, s := range summaries {
		byPartner[s.PartnerID] = s
	}
	assert.Equal(t, "to bob", byPartner[bob.ID].LastMessage)
	assert.EqualValues(t, 1, byPartner[bob.ID].UnreadCount)
	assert.Equal(t, "from carol", byPartner[carol.ID].LastMessage)
	assert.EqualValues(t, 1, byPartner[carol.ID].UnreadCount)
}
