package target

import (
	"errors"
	"fmt"

	"github.com/thenoetrevino/sitebook/internal/models"
)

// Domain errors for target service
var (
	ErrEmptyText       = errors.New("target text cannot be empty")
	ErrInvalidTargetID = errors.New("invalid target ID")
	ErrInvalidClientID = errors.New("invalid client ID")

	ErrClientNotFound = fmt.Errorf("client %w", models.ErrNotFound)
	ErrTargetNotFound = fmt.Errorf("target %w", models.ErrNotFound)
)
