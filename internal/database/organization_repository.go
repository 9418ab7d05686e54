package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/thenoetrevino/sitebook/internal/models"
)

// OrganizationRepo handles pure data access for organizations
type OrganizationRepo struct {
	db DBTX
}

// Create inserts an organization
func (r *OrganizationRepo) Create(ctx context.Context, name string) (*models.Organization, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO organizations (name) VALUES (?)`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, int(id))
}

// GetByID retrieves an organization
func (r *OrganizationRepo) GetByID(ctx context.Context, id int) (*models.Organization, error) {
	org := &models.Organization{}
	var created sql.NullTime
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM organizations WHERE id = ?`, id,
	).Scan(&org.ID, &org.Name, &created)
	if err != nil {
		return nil, notFound(err, "organization", id)
	}
	org.CreatedAt = NullTimeToTime(created)
	return org, nil
}

// List retrieves all organizations
func (r *OrganizationRepo) List(ctx context.Context) ([]*models.Organization, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at FROM organizations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	defer rows.Close()

	var orgs []*models.Organization
	for rows.Next() {
		org := &models.Organization{}
		var created sql.NullTime
		if err := rows.Scan(&org.ID, &org.Name, &created); err != nil {
			return nil, err
		}
		org.CreatedAt = NullTimeToTime(created)
		orgs = append(orgs, org)
	}
	return orgs, rows.Err()
}

// Delete removes an organization and, through cascades, everything it owns
func (r *OrganizationRepo) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM organizations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete organization %d: %w", id, err)
	}
	return requireAffected(res, "organization", id)
}
