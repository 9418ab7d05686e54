package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/thenoetrevino/sitebook/internal/models"
)

// SettingsRepo handles the per-organization branding row
type SettingsRepo struct {
	db DBTX
}

// Get retrieves the settings of an organization
func (r *SettingsRepo) Get(ctx context.Context, orgID int) (*models.OrganizationSettings, error) {
	s := &models.OrganizationSettings{OrganizationID: orgID}
	var updated sql.NullTime
	err := r.db.QueryRowContext(ctx, `
		SELECT logo_key, logo_url, letterhead_key, letterhead_url,
			padding_top, padding_bottom, padding_right, padding_left, updated_at
		FROM organization_settings WHERE organization_id = ?`, orgID,
	).Scan(&s.LogoKey, &s.LogoURL, &s.LetterheadKey, &s.LetterheadURL,
		&s.Padding.Top, &s.Padding.Bottom, &s.Padding.Right, &s.Padding.Left, &updated)
	if err != nil {
		return nil, notFound(err, "settings of organization", orgID)
	}
	s.UpdatedAt = NullTimeToTime(updated)
	return s, nil
}

// Upsert writes the whole settings row of s.OrganizationID
func (r *SettingsRepo) Upsert(ctx context.Context, s *models.OrganizationSettings) (*models.OrganizationSettings, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO organization_settings (
			organization_id, logo_key, logo_url, letterhead_key, letterhead_url,
			padding_top, padding_bottom, padding_right, padding_left
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (organization_id) DO UPDATE SET
			logo_key = excluded.logo_key,
			logo_url = excluded.logo_url,
			letterhead_key = excluded.letterhead_key,
			letterhead_url = excluded.letterhead_url,
			padding_top = excluded.padding_top,
			padding_bottom = excluded.padding_bottom,
			padding_right = excluded.padding_right,
			padding_left = excluded.padding_left,
			updated_at = CURRENT_TIMESTAMP`,
		s.OrganizationID, s.LogoKey, s.LogoURL, s.LetterheadKey, s.LetterheadURL,
		s.Padding.Top, s.Padding.Bottom, s.Padding.Right, s.Padding.Left,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save settings of organization %d: %w", s.OrganizationID, err)
	}
	return r.Get(ctx, s.OrganizationID)
}
