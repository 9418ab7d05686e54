package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/thenoetrevino/sitebook/internal/models"
)

// TargetRepo handles a project's checklist
type TargetRepo struct {
	db DBTX
}

// Create inserts a target
func (r *TargetRepo) Create(ctx context.Context, clientID int, text string) (*models.Target, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO targets (client_id, text) VALUES (?, ?)`, clientID, text)
	if err != nil {
		return nil, fmt.Errorf("failed to create target: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, clientID, int(id))
}

// GetByID retrieves a target of a client
func (r *TargetRepo) GetByID(ctx context.Context, clientID, id int) (*models.Target, error) {
	t := &models.Target{}
	var created sql.NullTime
	err := r.db.QueryRowContext(ctx,
		`SELECT id, client_id, text, is_completed, created_at FROM targets WHERE id = ? AND client_id = ?`, id, clientID,
	).Scan(&t.ID, &t.ClientID, &t.Text, &t.IsCompleted, &created)
	if err != nil {
		return nil, notFound(err, "target", id)
	}
	t.CreatedAt = NullTimeToTime(created)
	return t, nil
}

// ListByClient returns the checklist in creation order
func (r *TargetRepo) ListByClient(ctx context.Context, clientID int) ([]*models.Target, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, client_id, text, is_completed, created_at FROM targets WHERE client_id = ? ORDER BY id`, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list targets: %w", err)
	}
	defer rows.Close()

	var targets []*models.Target
	for rows.Next() {
		t := &models.Target{}
		var created sql.NullTime
		if err := rows.Scan(&t.ID, &t.ClientID, &t.Text, &t.IsCompleted, &created); err != nil {
			return nil, err
		}
		t.CreatedAt = NullTimeToTime(created)
		targets = append(targets, t)
	}
	return targets, rows.Err()
}

// SetCompleted marks a target done or open
func (r *TargetRepo) SetCompleted(ctx context.Context, clientID, id int, done bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE targets SET is_completed = ? WHERE id = ? AND client_id = ?`, done, id, clientID)
	if err != nil {
		return fmt.Errorf("failed to update target %d: %w", id, err)
	}
	return requireAffected(res, "target", id)
}

// Delete removes a target
func (r *TargetRepo) Delete(ctx context.Context, clientID, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM targets WHERE id = ? AND client_id = ?`, id, clientID)
	if err != nil {
		return fmt.Errorf("failed to delete target %d: %w", id, err)
	}
	return requireAffected(res, "target", id)
}
