package models

import "errors"

// Errors shared by the store and the services
var (
	// ErrNotFound indicates the requested record does not exist in the organization
	ErrNotFound = errors.New("record not found")

	// ErrForbidden indicates the record belongs to another organization
	ErrForbidden = errors.New("record belongs to another organization")
)
