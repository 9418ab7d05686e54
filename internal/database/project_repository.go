package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/thenoetrevino/sitebook/internal/models"
)

// ProjectRepo handles pure data access for projects. Dates are stored as
// YYYY-MM-DD text so lexical comparison matches chronological order.
type ProjectRepo struct {
	db DBTX
}

const projectSelect = `
	SELECT p.id, p.organization_id, p.client_id, c.full_name, c.status,
	       p.description, p.price, p.start_date, p.end_date, p.start_date_2, p.end_date_2,
	       p.created_at, p.updated_at
	FROM projects p
	INNER JOIN clients c ON c.id = p.client_id`

func scanProject(row interface{ Scan(...any) error }) (*models.Project, error) {
	p := &models.Project{}
	var status string
	var s1, e1, s2, e2 sql.NullString
	var created, updated sql.NullTime
	err := row.Scan(&p.ID, &p.OrganizationID, &p.ClientID, &p.ClientName, &status,
		&p.Description, &p.Price, &s1, &e1, &s2, &e2, &created, &updated)
	if err != nil {
		return nil, err
	}
	p.ClientStatus = models.Status(status)
	p.CreatedAt = NullTimeToTime(created)
	p.UpdatedAt = NullTimeToTime(updated)

	if p.Primary.Start, err = parseDate(s1); err != nil {
		return nil, err
	}
	if p.Primary.End, err = parseDate(e1); err != nil {
		return nil, err
	}
	var secondary models.DateRange
	if secondary.Start, err = parseDate(s2); err != nil {
		return nil, err
	}
	if secondary.End, err = parseDate(e2); err != nil {
		return nil, err
	}
	if !secondary.IsEmpty() {
		p.Secondary = &secondary
	}
	return p, nil
}

func (r *ProjectRepo) queryProjects(ctx context.Context, query string, args ...any) ([]*models.Project, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// CreateForClient inserts the empty project record that every client owns
func (r *ProjectRepo) CreateForClient(ctx context.Context, orgID, clientID int, description string, price float64) (*models.Project, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO projects (organization_id, client_id, description, price) VALUES (?, ?, ?, ?)`,
		orgID, clientID, description, price)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, orgID, int(id))
}

// GetByID retrieves a project that belongs to orgID
func (r *ProjectRepo) GetByID(ctx context.Context, orgID, id int) (*models.Project, error) {
	p, err := scanProject(r.db.QueryRowContext(ctx,
		projectSelect+` WHERE p.id = ? AND p.organization_id = ?`, id, orgID))
	if err != nil {
		return nil, notFound(err, "project", id)
	}
	return p, nil
}

// GetByClient retrieves the project of a client
func (r *ProjectRepo) GetByClient(ctx context.Context, orgID, clientID int) (*models.Project, error) {
	p, err := scanProject(r.db.QueryRowContext(ctx,
		projectSelect+` WHERE p.client_id = ? AND p.organization_id = ?`, clientID, orgID))
	if err != nil {
		return nil, notFound(err, "project of client", clientID)
	}
	return p, nil
}

// UpdateDetails changes the description and price
func (r *ProjectRepo) UpdateDetails(ctx context.Context, orgID, id int, description string, price float64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE projects SET description = ?, price = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND organization_id = ?`, description, price, id, orgID)
	if err != nil {
		return fmt.Errorf("failed to update project %d: %w", id, err)
	}
	return requireAffected(res, "project", id)
}

// UpdateRanges writes both date ranges of a project. A nil secondary clears it.
func (r *ProjectRepo) UpdateRanges(ctx context.Context, orgID, id int, primary models.DateRange, secondary *models.DateRange) error {
	var s2, e2 sql.NullString
	if secondary != nil {
		s2, e2 = dateValue(secondary.Start), dateValue(secondary.End)
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE projects
		SET start_date = ?, end_date = ?, start_date_2 = ?, end_date_2 = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND organization_id = ?`,
		dateValue(primary.Start), dateValue(primary.End), s2, e2, id, orgID)
	if err != nil {
		return fmt.Errorf("failed to update dates of project %d: %w", id, err)
	}
	return requireAffected(res, "project", id)
}

// SetEndDate stamps the primary end date, used when a client is completed
func (r *ProjectRepo) SetEndDate(ctx context.Context, orgID, clientID int, end time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE projects SET end_date = ?, updated_at = CURRENT_TIMESTAMP
		WHERE client_id = ? AND organization_id = ?`, dateValue(end), clientID, orgID)
	if err != nil {
		return fmt.Errorf("failed to set end date for client %d: %w", clientID, err)
	}
	return requireAffected(res, "project of client", clientID)
}

// ListOverlapping returns the scheduled projects whose primary range overlaps
// r, excluding excludeID, ordered by start date then id.
func (r *ProjectRepo) ListOverlapping(ctx context.Context, orgID, excludeID int, rng models.DateRange) ([]*models.Project, error) {
	return r.queryProjects(ctx, projectSelect+`
		WHERE p.organization_id = ?
		  AND p.id != ?
		  AND p.start_date IS NOT NULL AND p.end_date IS NOT NULL
		  AND p.start_date <= ? AND p.end_date >= ?
		ORDER BY p.start_date, p.id`,
		orgID, excludeID, dateValue(rng.End), dateValue(rng.Start))
}

// ListStartingFrom returns scheduled projects whose primary start is on or
// after from, excluding excludeID, ordered by start date then id.
func (r *ProjectRepo) ListStartingFrom(ctx context.Context, orgID, excludeID int, from time.Time) ([]*models.Project, error) {
	return r.queryProjects(ctx, projectSelect+`
		WHERE p.organization_id = ?
		  AND p.id != ?
		  AND p.start_date IS NOT NULL AND p.end_date IS NOT NULL
		  AND p.start_date >= ?
		ORDER BY p.start_date, p.id`,
		orgID, excludeID, dateValue(from))
}

// ListScheduled returns every project with a primary range, for calendars
func (r *ProjectRepo) ListScheduled(ctx context.Context, orgID int) ([]*models.Project, error) {
	return r.queryProjects(ctx, projectSelect+`
		WHERE p.organization_id = ?
		  AND p.start_date IS NOT NULL AND p.end_date IS NOT NULL
		ORDER BY p.start_date, p.id`, orgID)
}

// ListSignedStarted returns projects of signed clients whose start is on or before today
func (r *ProjectRepo) ListSignedStarted(ctx context.Context, orgID int, today time.Time) ([]*models.Project, error) {
	return r.queryProjects(ctx, projectSelect+`
		WHERE p.organization_id = ?
		  AND c.status = 'signed'
		  AND p.start_date IS NOT NULL
		  AND p.start_date <= ?
		ORDER BY p.start_date, p.id`, orgID, dateValue(today))
}
