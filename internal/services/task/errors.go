package task

import (
	"errors"
	"fmt"

	"github.com/thenoetrevino/sitebook/internal/models"
)

// Task-related errors
var (
	// Validation errors
	ErrEmptyText      = errors.New("task text cannot be empty")
	ErrTextTooLong    = errors.New("task text cannot exceed 255 characters")
	ErrInvalidTaskID  = errors.New("invalid task ID")
	ErrMissingDueDate = errors.New("task due date is required")
	ErrInvalidTime    = errors.New("task time must be HH:MM")
	ErrInvalidRange   = errors.New("range end is before its start")
	ErrUnknownMember  = errors.New("assignee is not a member of the organization")

	// Business logic errors
	ErrTaskNotFound = fmt.Errorf("task %w", models.ErrNotFound)
)
