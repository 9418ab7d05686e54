package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/thenoetrevino/sitebook/internal/models"
)

// ClientRepo handles pure data access for clients
type ClientRepo struct {
	db DBTX
}

const clientColumns = `id, organization_id, full_name, phone, email, address, status, created_at`

func scanClient(row interface{ Scan(...any) error }) (*models.Client, error) {
	c := &models.Client{}
	var phone, email, address sql.NullString
	var status string
	var created sql.NullTime
	if err := row.Scan(&c.ID, &c.OrganizationID, &c.FullName, &phone, &email, &address, &status, &created); err != nil {
		return nil, err
	}
	c.Phone = NullStringToString(phone)
	c.Email = NullStringToString(email)
	c.Address = NullStringToString(address)
	c.Status = models.Status(status)
	c.CreatedAt = NullTimeToTime(created)
	return c, nil
}

// Create inserts a client
func (r *ClientRepo) Create(ctx context.Context, c *models.Client) (*models.Client, error) {
	status := c.Status
	if status == "" {
		status = models.StatusProposal
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO clients (organization_id, full_name, phone, email, address, status) VALUES (?, ?, ?, ?, ?, ?)`,
		c.OrganizationID, c.FullName, nullString(c.Phone), nullString(c.Email), nullString(c.Address), string(status),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, c.OrganizationID, int(id))
}

// GetByID retrieves a client that belongs to orgID
func (r *ClientRepo) GetByID(ctx context.Context, orgID, id int) (*models.Client, error) {
	c, err := scanClient(r.db.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = ? AND organization_id = ?`, id, orgID))
	if err != nil {
		return nil, notFound(err, "client", id)
	}
	return c, nil
}

// List returns the clients of an organization, optionally filtered by status
func (r *ClientRepo) List(ctx context.Context, orgID int, status models.Status) ([]*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE organization_id = ?`
	args := []any{orgID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []*models.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// Update rewrites the contact details of a client
func (r *ClientRepo) Update(ctx context.Context, c *models.Client) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE clients SET full_name = ?, phone = ?, email = ?, address = ? WHERE id = ? AND organization_id = ?`,
		c.FullName, nullString(c.Phone), nullString(c.Email), nullString(c.Address), c.ID, c.OrganizationID)
	if err != nil {
		return fmt.Errorf("failed to update client %d: %w", c.ID, err)
	}
	return requireAffected(res, "client", c.ID)
}

// UpdateStatus moves a client to a new lifecycle status
func (r *ClientRepo) UpdateStatus(ctx context.Context, orgID, id int, status models.Status) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE clients SET status = ? WHERE id = ? AND organization_id = ?`, string(status), id, orgID)
	if err != nil {
		return fmt.Errorf("failed to update status of client %d: %w", id, err)
	}
	return requireAffected(res, "client", id)
}

// Delete removes a client together with its project and ledgers
func (r *ClientRepo) Delete(ctx context.Context, orgID, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = ? AND organization_id = ?`, id, orgID)
	if err != nil {
		return fmt.Errorf("failed to delete client %d: %w", id, err)
	}
	return requireAffected(res, "client", id)
}

// CountByStatus returns how many clients sit in each lifecycle status
func (r *ClientRepo) CountByStatus(ctx context.Context, orgID int) (map[models.Status]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM clients WHERE organization_id = ? GROUP BY status`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to count clients: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.Status]int, len(models.Statuses))
	for _, s := range models.Statuses {
		counts[s] = 0
	}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[models.Status(status)] = n
	}
	return counts, rows.Err()
}
