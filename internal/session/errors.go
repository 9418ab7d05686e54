package session

import "errors"

// Session errors
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrEmptyName          = errors.New("full name cannot be empty")
	ErrNoOrganization     = errors.New("profile has no organization")
	ErrOrganizationNeeded = errors.New("no pending invite: an organization name is required")
	ErrProfileTimeout     = errors.New("profile load timed out")
	ErrUnauthenticated    = errors.New("not signed in")
	ErrSessionExpired     = errors.New("session expired")
	ErrInvalidTransition  = errors.New("invalid session state transition")
	ErrUnknownPolicy      = errors.New("unknown timeout policy (must be: retain, sign_out)")
)
