package domain

import "errors"

// Domain errors.
var (
	ErrTaskNotFound           = errors.New("task not found")
	ErrEmptyTitle             = errors.New("title cannot be empty")
	ErrInvalidDate            = errors.New("invalid date (want YYYY-MM-DD)")
	ErrEtaBeforeDate          = errors.New("ETA date is before the task date")
	ErrReminderMissing        = errors.New("reminder needs both a date and a time")
	ErrReminderInPast         = errors.New("reminder is in the past")
	ErrInvalidStatus          = errors.New("invalid status")
	ErrInvalidPriority        = errors.New("invalid priority")
	ErrInvalidDepartment      = errors.New("invalid department")
	ErrNoFieldsToUpdate       = errors.New("no fields to update")
	ErrConfirmationPending    = errors.New("another confirmation is already pending")
	ErrConfirmationNotFound   = errors.New("confirmation not found or already resolved")
	ErrServerClockUnavailable = errors.New("server clock unavailable")
	ErrRemoteUnavailable      = errors.New("remote store unavailable")
	ErrNotInitialized         = errors.New("local store not initialized")
	ErrConfigExists           = errors.New("config file already exists")
	ErrUnknownRemoteDriver    = errors.New("unknown remote driver")
)
