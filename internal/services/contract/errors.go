package contract

import (
	"errors"
	"fmt"

	"github.com/thenoetrevino/sitebook/internal/models"
)

// Domain errors for contract service
var (
	// Validation errors
	ErrInvalidClientID   = errors.New("invalid client ID")
	ErrInvalidContractID = errors.New("invalid contract ID")
	ErrEmptySigner       = errors.New("signer name cannot be empty")
	ErrEmptyTerm         = errors.New("term cannot be empty")
	ErrNegativePrice     = errors.New("price cannot be negative")

	// Business logic errors
	ErrClientNotFound   = fmt.Errorf("client %w", models.ErrNotFound)
	ErrContractNotFound = fmt.Errorf("contract %w", models.ErrNotFound)
	ErrTermNotFound     = fmt.Errorf("term %w", models.ErrNotFound)
	ErrAlreadySigned    = errors.New("contract is already signed")
)
