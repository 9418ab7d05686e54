package cost

import (
	"errors"
	"fmt"

	"github.com/thenoetrevino/sitebook/internal/models"
)

// Domain errors for cost service
var (
	ErrEmptyTitle      = errors.New("cost title cannot be empty")
	ErrInvalidAmount   = errors.New("cost amount must be greater than zero")
	ErrInvalidPayer    = errors.New("payer must be the client or a team member")
	ErrInvalidClientID = errors.New("invalid client ID")

	ErrClientNotFound = fmt.Errorf("client %w", models.ErrNotFound)
	ErrCostNotFound   = fmt.Errorf("cost %w", models.ErrNotFound)
)
