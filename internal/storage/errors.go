package storage

import (
	"errors"
	"fmt"

	"github.com/thenoetrevino/sitebook/internal/models"
)

// Domain errors for file storage
var (
	ErrInvalidKey      = errors.New("invalid object key")
	ErrInvalidCategory = errors.New("invalid file category")
	ErrEmptyName       = errors.New("file name cannot be empty")
	ErrInvalidClientID = errors.New("invalid client ID")
	ErrInvalidFileID   = errors.New("invalid file ID")
	ErrInvalidBranding = errors.New("invalid branding image (must be: logo, letterhead)")
	ErrNotImage        = errors.New("branding upload must be an image")
	ErrTooLarge        = errors.New("file exceeds the upload limit")

	ErrBlobNotFound   = fmt.Errorf("blob %w", models.ErrNotFound)
	ErrClientNotFound = fmt.Errorf("client %w", models.ErrNotFound)
	ErrFileNotFound   = fmt.Errorf("file %w", models.ErrNotFound)
)
