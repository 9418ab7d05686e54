package schedule

import (
	"errors"
	"fmt"

	"github.com/thenoetrevino/sitebook/internal/models"
)

// Domain errors for the scheduler
var (
	// Validation errors
	ErrInvalidProjectID   = errors.New("invalid project ID")
	ErrInvalidRange       = errors.New("end date is before start date")
	ErrPartialSecondary   = errors.New("secondary range needs both a start and an end date")
	ErrUnknownResolution  = errors.New("unknown resolution (must be: split, shift, ignore)")
	ErrSplitNotApplicable = errors.New("split is only possible when the new range lies inside the conflicting project")

	// Business logic errors
	ErrProjectNotFound = fmt.Errorf("project %w", models.ErrNotFound)
	ErrConflict        = errors.New("date range conflicts with scheduled projects")
)

// ConflictError is returned by Schedule when the candidate range overlaps
// other projects and no resolution was chosen. Nothing has been written.
type ConflictError struct {
	Plan *Plan
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("project %d: %d conflicting project(s), %s suggested",
		e.Plan.ProjectID, len(e.Plan.Conflicts), e.Plan.Kind)
}

// Is lets callers match any ConflictError with errors.Is(err, ErrConflict)
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
