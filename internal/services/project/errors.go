package project

import (
	"errors"
	"fmt"

	"github.com/thenoetrevino/sitebook/internal/models"
)

// Domain errors for project service
var (
	// Validation errors
	ErrInvalidProjectID   = errors.New("invalid project ID")
	ErrInvalidClientID    = errors.New("invalid client ID")
	ErrNegativePrice      = errors.New("price cannot be negative")
	ErrDescriptionTooLong = errors.New("description cannot exceed 2000 characters")

	// Business logic errors
	ErrProjectNotFound = fmt.Errorf("project %w", models.ErrNotFound)
)
