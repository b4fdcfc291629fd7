package service

import (
	"errors"
	"fmt"

	"github.com/courierlab/messenger-backend/internal/common"
	"github.com/courierlab/messenger-backend/internal/domain"
	"github.com/courierlab/messenger-backend/internal/repository"
	"github.com/courierlab/messenger-backend/pkg/logger"
	"gorm.io/gorm"
)

// UserService account lifecycle, including the cascading purge of all
// rows referencing a deleted account.
type UserService interface {
	Register(req *domain.CreateUserRequest) (*domain.User, error)
	Get(id uint64) (*domain.User, error)
	GetByUsername(username string) (*domain.User, error)
	Delete(id uint64) error
}

type userService struct {
	db            *gorm.DB
	users         repository.UserRepository
	messages      repository.MessageRepository
	histories     repository.MessageHistoryRepository
	notifications repository.NotificationRepository
}

// NewUserService creates a new UserService
func NewUserService(
	db *gorm.DB,
	users repository.UserRepository,
	messages repository.MessageRepository,
	histories repository.MessageHistoryRepository,
	notifications repository.NotificationRepository,
) UserService {
	return &userService{
		db:            db,
		users:         users,
		messages:      messages,
		histories:     histories,
		notifications: notifications,
	}
}

func (s *userService) Register(req *domain.CreateUserRequest) (*domain.User, error) {
	if _, err := s.users.FindByUsername(req.Username); err == nil {
		return nil, common.ErrUserExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user := &domain.User{
		Username: req.Username,
		Nickname: req.Nickname,
	}
	if err := s.users.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) Get(id uint64) (*domain.User, error) {
	user, err := s.users.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) GetByUsername(username string) (*domain.User, error) {
	user, err := s.users.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// Delete removes the account and every dependent row in one
// transaction. A mid-purge failure rolls the whole deletion back, so
// no reader ever sees a partially reaped account.
func (s *userService) Delete(id uint64) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return s.purge(tx, id)
	})
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", common.ErrTransactionFailure, err)
	}
	return nil
}

// purge deletes, inside the given transaction:
//  1. history rows of the user's messages and history rows the user
//     authored as editor (cascade-of-cascade),
//  2. notifications owned by the user or attached to those messages,
//  3. the messages themselves (sender or receiver side),
//  4. dangling parent references on surviving replies,
//  5. the user row.
//
// Deleting a user with no dependents is a valid no-op purge.
func (s *userService) purge(tx *gorm.DB, userID uint64) error {
	users := s.users.WithTx(tx)
	messages := s.messages.WithTx(tx)
	histories := s.histories.WithTx(tx)
	notifications := s.notifications.WithTx(tx)

	if _, err := users.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrUserNotFound
		}
		return err
	}

	messageIDs, err := messages.IDsByParticipant(userID)
	if err != nil {
		return err
	}

	historiesByMessage, err := histories.DeleteByMessageIDs(messageIDs)
	if err != nil {
		return err
	}
	historiesByEditor, err := histories.DeleteByEditor(userID)
	if err != nil {
		return err
	}

	ownNotifications, err := notifications.DeleteByUser(userID)
	if err != nil {
		return err
	}
	messageNotifications, err := notifications.DeleteByMessageIDs(messageIDs)
	if err != nil {
		return err
	}

	deletedMessages, err := messages.DeleteByParticipant(userID)
	if err != nil {
		return err
	}
	if err := messages.ClearParentRefs(messageIDs); err != nil {
		return err
	}

	if _, err := users.Delete(userID); err != nil {
		return err
	}

	logger.GetLogger().Info().
		Uint64("user_id", userID).
		Int64("messages", deletedMessages).
		Int64("histories", historiesByMessage+historiesByEditor).
		Int64("notifications", ownNotifications+messageNotifications).
		Msg("user purged with dependents")
	return nil
}
