package inventory

import (
	"errors"
	"fmt"

	"github.com/thenoetrevino/sitebook/internal/models"
)

// Domain errors for inventory service
var (
	ErrEmptyName         = errors.New("item name cannot be empty")
	ErrNameTooLong       = fmt.Errorf("item name cannot exceed %d characters", models.MaxNameLength)
	ErrNegativeQuantity  = errors.New("quantity cannot be negative")
	ErrInvalidItemID     = errors.New("invalid item ID")
	ErrUnknownAdjustment = errors.New("unknown stock adjustment (must be: add, subtract, set)")
	ErrItemNotFound      = fmt.Errorf("item %w", models.ErrNotFound)
)
