package client

import (
	"errors"
	"fmt"

	"github.com/thenoetrevino/sitebook/internal/models"
)

// Domain errors for client service
var (
	// Validation errors
	ErrEmptyName         = errors.New("client name cannot be empty")
	ErrNameTooLong       = fmt.Errorf("client name cannot exceed %d characters", models.MaxNameLength)
	ErrInvalidClientID   = errors.New("invalid client ID")
	ErrInvalidOrgID      = errors.New("invalid organization ID")
	ErrNegativePrice     = errors.New("price cannot be negative")
	ErrInvalidTransition = errors.New("status can only move forward")

	// Business logic errors
	ErrClientNotFound = fmt.Errorf("client %w", models.ErrNotFound)
)
