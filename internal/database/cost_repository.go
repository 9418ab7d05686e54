package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/thenoetrevino/sitebook/internal/models"
)

// CostRepo handles a client's cost ledger
type CostRepo struct {
	db DBTX
}

// Create inserts a cost entry
func (r *CostRepo) Create(ctx context.Context, c *models.Cost) (*models.Cost, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO costs (client_id, title, amount, payer) VALUES (?, ?, ?, ?)`,
		c.ClientID, c.Title, c.Amount, c.Payer)
	if err != nil {
		return nil, fmt.Errorf("failed to create cost: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	out := &models.Cost{}
	var created sql.NullTime
	err = r.db.QueryRowContext(ctx,
		`SELECT id, client_id, title, amount, payer, created_at FROM costs WHERE id = ?`, id,
	).Scan(&out.ID, &out.ClientID, &out.Title, &out.Amount, &out.Payer, &created)
	if err != nil {
		return nil, notFound(err, "cost", int(id))
	}
	out.CreatedAt = NullTimeToTime(created)
	return out, nil
}

// ListByClient returns a client's costs, newest first
func (r *CostRepo) ListByClient(ctx context.Context, clientID int) ([]*models.Cost, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, client_id, title, amount, payer, created_at FROM costs
		WHERE client_id = ? ORDER BY created_at DESC, id DESC`, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list costs: %w", err)
	}
	defer rows.Close()

	var costs []*models.Cost
	for rows.Next() {
		c := &models.Cost{}
		var created sql.NullTime
		if err := rows.Scan(&c.ID, &c.ClientID, &c.Title, &c.Amount, &c.Payer, &created); err != nil {
			return nil, err
		}
		c.CreatedAt = NullTimeToTime(created)
		costs = append(costs, c)
	}
	return costs, rows.Err()
}

// Delete removes a cost from a client's ledger
func (r *CostRepo) Delete(ctx context.Context, clientID, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM costs WHERE id = ? AND client_id = ?`, id, clientID)
	if err != nil {
		return fmt.Errorf("failed to delete cost %d: %w", id, err)
	}
	return requireAffected(res, "cost", id)
}
