package common

import "errors"

// Business logic errors
var (
	// General errors
	ErrNotFound  = errors.New("resource not found")
	ErrForbidden = errors.New("forbidden")

	// Message errors
	ErrMessageNotFound = errors.New("message not found")

	// User errors
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")

	// Lifecycle errors
	ErrConstraintViolation = errors.New("constraint violation")
	ErrCycleDetected       = errors.New("reply cycle detected")
	ErrTransactionFailure  = errors.New("transaction failure")

	// Notification errors
	ErrNotificationNotFound = errors.New("notification not found")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)
