package team

import (
	"errors"
	"fmt"

	"github.com/thenoetrevino/sitebook/internal/models"
)

// Domain errors for team service
var (
	// Validation errors
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrInvalidRole      = errors.New("invalid role (must be: owner, admin, worker)")
	ErrInvalidColor     = errors.New("color must be a hex value like #3B82F6")
	ErrInvalidMemberID  = errors.New("invalid member ID")
	ErrEmptyName        = errors.New("member name cannot be empty")
	ErrNameTooLong      = fmt.Errorf("member name cannot exceed %d characters", models.MaxNameLength)
	ErrInvalidAvatarURL = errors.New("avatar must be an http or https URL")

	// Business logic errors
	ErrMemberNotFound = fmt.Errorf("member %w", models.ErrNotFound)
	ErrInviteNotFound = fmt.Errorf("invite %w", models.ErrNotFound)
	ErrAlreadyMember  = errors.New("email already belongs to a team member")
	ErrLastOwner      = errors.New("organization must keep at least one owner")
)
