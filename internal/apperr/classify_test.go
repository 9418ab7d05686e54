package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/thenoetrevino/sitebook/internal/models"
	"github.com/thenoetrevino/sitebook/internal/services/inventory"
	"github.com/thenoetrevino/sitebook/internal/services/schedule"
	"github.com/thenoetrevino/sitebook/internal/services/team"
	"github.com/thenoetrevino/sitebook/internal/session"
	"github.com/thenoetrevino/sitebook/internal/storage"
)

func TestClassify(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindInternal},
		{"unknown", errors.New("disk on fire"), KindInternal},
		{"wrapped not found", fmt.Errorf("load: %w", inventory.ErrItemNotFound), KindNotFound},
		{"forbidden", models.ErrForbidden, KindForbidden},
		{"conflict error", &schedule.ConflictError{Plan: &schedule.Plan{}}, KindConflict},
		{"validation", fmt.Errorf("%w: %q", schedule.ErrUnknownResolution, "later"), KindValidation},
		{"last owner", team.ErrLastOwner, KindValidation},
		{"credentials", session.ErrInvalidCredentials, KindUnauthenticated},
		{"profile timeout", session.ErrProfileTimeout, KindUnavailable},
		{"too large", storage.ErrTooLarge, KindTooLarge},
		{"input", fmt.Errorf("%w: bad date", ErrInvalidInput), KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
	assert.Equal(t, "not_found", KindNotFound.String())
}
