package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/thenoetrevino/sitebook/internal/models"
)

// ContractRepo handles contracts and the reusable terms library
type ContractRepo struct {
	db DBTX
}

const contractColumns = `id, organization_id, client_id, terms, price, notes, signer_name, signed_at, created_at`

func scanContract(row interface{ Scan(...any) error }) (*models.Contract, error) {
	c := &models.Contract{}
	var terms string
	var signed, created sql.NullTime
	if err := row.Scan(&c.ID, &c.OrganizationID, &c.ClientID, &terms, &c.Price, &c.Notes, &c.SignerName, &signed, &created); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(terms), &c.Terms); err != nil {
		return nil, fmt.Errorf("corrupt terms on contract %d: %w", c.ID, err)
	}
	if signed.Valid {
		t := signed.Time
		c.SignedAt = &t
	}
	c.CreatedAt = NullTimeToTime(created)
	return c, nil
}

// Create inserts a draft contract
func (r *ContractRepo) Create(ctx context.Context, c *models.Contract) (*models.Contract, error) {
	terms := c.Terms
	if terms == nil {
		terms = []string{}
	}
	raw, err := json.Marshal(terms)
	if err != nil {
		return nil, err
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO contracts (organization_id, client_id, terms, price, notes) VALUES (?, ?, ?, ?, ?)`,
		c.OrganizationID, c.ClientID, string(raw), c.Price, c.Notes)
	if err != nil {
		return nil, fmt.Errorf("failed to create contract: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, c.OrganizationID, int(id))
}

// GetByID retrieves a contract of orgID
func (r *ContractRepo) GetByID(ctx context.Context, orgID, id int) (*models.Contract, error) {
	c, err := scanContract(r.db.QueryRowContext(ctx,
		`SELECT `+contractColumns+` FROM contracts WHERE id = ? AND organization_id = ?`, id, orgID))
	if err != nil {
		return nil, notFound(err, "contract", id)
	}
	return c, nil
}

// ListByClient returns a client's contracts, newest first
func (r *ContractRepo) ListByClient(ctx context.Context, orgID, clientID int) ([]*models.Contract, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+contractColumns+` FROM contracts
		WHERE organization_id = ? AND client_id = ?
		ORDER BY id DESC`, orgID, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	defer rows.Close()

	var contracts []*models.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, c)
	}
	return contracts, rows.Err()
}

// Sign records the signer and signing time of a draft
func (r *ContractRepo) Sign(ctx context.Context, orgID, id int, signer string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE contracts SET signer_name = ?, signed_at = ?
		WHERE id = ? AND organization_id = ? AND signed_at IS NULL`,
		signer, at.UTC(), id, orgID)
	if err != nil {
		return fmt.Errorf("failed to sign contract %d: %w", id, err)
	}
	return requireAffected(res, "unsigned contract", id)
}

// AddTerm appends a clause to the organization's terms library
func (r *ContractRepo) AddTerm(ctx context.Context, orgID int, content string, isDefault bool) (*models.Term, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO terms (organization_id, content, is_default) VALUES (?, ?, ?)`, orgID, content, isDefault)
	if err != nil {
		return nil, fmt.Errorf("failed to add term: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &models.Term{ID: int(id), OrganizationID: orgID, Content: content, IsDefault: isDefault}, nil
}

// ListTerms returns the terms library; defaultsOnly limits it to preselected clauses
func (r *ContractRepo) ListTerms(ctx context.Context, orgID int, defaultsOnly bool) ([]*models.Term, error) {
	query := `SELECT id, organization_id, content, is_default FROM terms WHERE organization_id = ?`
	if defaultsOnly {
		query += ` AND is_default = 1`
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list terms: %w", err)
	}
	defer rows.Close()

	var terms []*models.Term
	for rows.Next() {
		t := &models.Term{}
		if err := rows.Scan(&t.ID, &t.OrganizationID, &t.Content, &t.IsDefault); err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	return terms, rows.Err()
}

// DeleteTerm removes a clause from the library
func (r *ContractRepo) DeleteTerm(ctx context.Context, orgID, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM terms WHERE id = ? AND organization_id = ?`, id, orgID)
	if err != nil {
		return fmt.Errorf("failed to delete term %d: %w", id, err)
	}
	return requireAffected(res, "term", id)
}
