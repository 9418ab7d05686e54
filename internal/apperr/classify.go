// Package apperr sorts service errors into the few kinds the HTTP API and the
// CLI report differently.
package apperr

import (
	"context"
	"errors"

	"github.com/thenoetrevino/sitebook/internal/blueprint"
	"github.com/thenoetrevino/sitebook/internal/models"
	"github.com/thenoetrevino/sitebook/internal/services/client"
	"github.com/thenoetrevino/sitebook/internal/services/contract"
	"github.com/thenoetrevino/sitebook/internal/services/cost"
	"github.com/thenoetrevino/sitebook/internal/services/inventory"
	"github.com/thenoetrevino/sitebook/internal/services/organization"
	"github.com/thenoetrevino/sitebook/internal/services/project"
	"github.com/thenoetrevino/sitebook/internal/services/schedule"
	"github.com/thenoetrevino/sitebook/internal/services/target"
	"github.com/thenoetrevino/sitebook/internal/services/task"
	"github.com/thenoetrevino/sitebook/internal/services/team"
	"github.com/thenoetrevino/sitebook/internal/session"
	"github.com/thenoetrevino/sitebook/internal/storage"
)

// Kind is the category of a failure
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindUnauthenticated
	KindForbidden
	KindTooLarge
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindTooLarge:
		return "too_large"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

var validation = []error{
	client.ErrEmptyName, client.ErrNameTooLong, client.ErrInvalidClientID, client.ErrInvalidOrgID,
	client.ErrNegativePrice, client.ErrInvalidTransition,
	contract.ErrInvalidClientID, contract.ErrInvalidContractID, contract.ErrEmptySigner,
	contract.ErrEmptyTerm, contract.ErrNegativePrice,
	cost.ErrEmptyTitle, cost.ErrInvalidAmount, cost.ErrInvalidPayer, cost.ErrInvalidClientID,
	inventory.ErrEmptyName, inventory.ErrNameTooLong, inventory.ErrNegativeQuantity,
	inventory.ErrInvalidItemID, inventory.ErrUnknownAdjustment,
	organization.ErrEmptyName, organization.ErrNameTooLong, organization.ErrInvalidOrgID,
	organization.ErrInvalidPadding,
	project.ErrInvalidProjectID, project.ErrInvalidClientID, project.ErrNegativePrice,
	project.ErrDescriptionTooLong,
	schedule.ErrInvalidProjectID, schedule.ErrInvalidRange, schedule.ErrPartialSecondary,
	schedule.ErrUnknownResolution, schedule.ErrSplitNotApplicable,
	target.ErrEmptyText, target.ErrInvalidTargetID, target.ErrInvalidClientID,
	task.ErrEmptyText, task.ErrTextTooLong, task.ErrInvalidTaskID, task.ErrMissingDueDate,
	task.ErrInvalidTime, task.ErrInvalidRange, task.ErrUnknownMember,
	team.ErrInvalidEmail, team.ErrInvalidRole, team.ErrInvalidColor, team.ErrInvalidMemberID,
	team.ErrLastOwner, team.ErrEmptyName, team.ErrNameTooLong, team.ErrInvalidAvatarURL,
	session.ErrWeakPassword, session.ErrEmptyName, session.ErrOrganizationNeeded,
	session.ErrUnknownPolicy,
	storage.ErrInvalidKey, storage.ErrInvalidCategory, storage.ErrEmptyName,
	storage.ErrInvalidClientID, storage.ErrInvalidFileID, storage.ErrInvalidBranding, storage.ErrNotImage,
	blueprint.ErrNotBlueprint, blueprint.ErrInvalidRenderWidth, blueprint.ErrUnknownKind,
	blueprint.ErrInvalidColor, blueprint.ErrInvalidWidth, blueprint.ErrInvalidPoints,
	blueprint.ErrEmptyText, blueprint.ErrInvalidCanvas, blueprint.ErrVersion,
	ErrInvalidInput,
}

var conflict = []error{
	schedule.ErrConflict, contract.ErrAlreadySigned, team.ErrAlreadyMember, session.ErrEmailTaken,
}

var unauthenticated = []error{
	session.ErrInvalidCredentials, session.ErrUnauthenticated, session.ErrSessionExpired,
}

var unavailable = []error{
	session.ErrProfileTimeout, session.ErrNoOrganization, context.DeadlineExceeded,
}

// ErrInvalidInput marks malformed input detected outside the services, such
// as an unparsable date or id
var ErrInvalidInput = errors.New("invalid input")

// Classify returns the kind of err; nil and unknown errors are internal
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, models.ErrForbidden):
		return KindForbidden
	case errors.Is(err, models.ErrNotFound):
		return KindNotFound
	case errors.Is(err, storage.ErrTooLarge):
		return KindTooLarge
	case isAny(err, conflict):
		return KindConflict
	case isAny(err, unauthenticated):
		return KindUnauthenticated
	case isAny(err, unavailable):
		return KindUnavailable
	case isAny(err, validation):
		return KindValidation
	}
	return KindInternal
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}
