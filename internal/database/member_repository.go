package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/thenoetrevino/sitebook/internal/models"
)

// MemberRepo handles team member profiles and invites
type MemberRepo struct {
	db DBTX
}

const memberColumns = `id, COALESCE(organization_id, 0), email, full_name, role, color, avatar_url, password_hash, created_at`

func scanMember(row interface{ Scan(...any) error }) (*models.Member, error) {
	m := &models.Member{}
	var role string
	var created sql.NullTime
	if err := row.Scan(&m.ID, &m.OrganizationID, &m.Email, &m.FullName, &role, &m.Color, &m.AvatarURL, &m.PasswordHash, &created); err != nil {
		return nil, err
	}
	m.Role = models.Role(role)
	m.CreatedAt = NullTimeToTime(created)
	return m, nil
}

// Create inserts a member profile
func (r *MemberRepo) Create(ctx context.Context, m *models.Member) (*models.Member, error) {
	var org sql.NullInt64
	if m.OrganizationID > 0 {
		org = sql.NullInt64{Int64: int64(m.OrganizationID), Valid: true}
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO members (organization_id, email, full_name, role, color, password_hash) VALUES (?, ?, ?, ?, ?, ?)`,
		org, m.Email, m.FullName, string(m.Role), m.Color, m.PasswordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create member: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, int(id))
}

// GetByID retrieves a member by id regardless of organization
func (r *MemberRepo) GetByID(ctx context.Context, id int) (*models.Member, error) {
	m, err := scanMember(r.db.QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "member", id)
	}
	return m, nil
}

// GetByEmail retrieves a member by email (case-insensitive)
func (r *MemberRepo) GetByEmail(ctx context.Context, email string) (*models.Member, error) {
	m, err := scanMember(r.db.QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE email = ?`, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("member %q: %w", email, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get member %q: %w", email, err)
	}
	return m, nil
}

// ListByOrganization returns the team ordered by role then name
func (r *MemberRepo) ListByOrganization(ctx context.Context, orgID int) ([]*models.Member, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+memberColumns+` FROM members
		WHERE organization_id = ?
		ORDER BY CASE role WHEN 'owner' THEN 0 WHEN 'admin' THEN 1 ELSE 2 END, full_name`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*models.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// UpdateProfile changes the display name and avatar
func (r *MemberRepo) UpdateProfile(ctx context.Context, id int, fullName, avatarURL string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE members SET full_name = ?, avatar_url = ? WHERE id = ?`, fullName, avatarURL, id)
	if err != nil {
		return fmt.Errorf("failed to update member %d: %w", id, err)
	}
	return requireAffected(res, "member", id)
}

// UpdateRole changes a member's role within their organization
func (r *MemberRepo) UpdateRole(ctx context.Context, orgID, id int, role models.Role) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE members SET role = ? WHERE id = ? AND organization_id = ?`, string(role), id, orgID)
	if err != nil {
		return fmt.Errorf("failed to update role of member %d: %w", id, err)
	}
	return requireAffected(res, "member", id)
}

// UpdateColor changes the calendar colour of a member
func (r *MemberRepo) UpdateColor(ctx context.Context, orgID, id int, color string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE members SET color = ? WHERE id = ? AND organization_id = ?`, color, id, orgID)
	if err != nil {
		return fmt.Errorf("failed to update color of member %d: %w", id, err)
	}
	return requireAffected(res, "member", id)
}

// Delete removes a member from an organization
func (r *MemberRepo) Delete(ctx context.Context, orgID, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM members WHERE id = ? AND organization_id = ?`, id, orgID)
	if err != nil {
		return fmt.Errorf("failed to delete member %d: %w", id, err)
	}
	return requireAffected(res, "member", id)
}

// CountOwners returns how many owners an organization has
func (r *MemberRepo) CountOwners(ctx context.Context, orgID int) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM members WHERE organization_id = ? AND role = 'owner'`, orgID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count owners: %w", err)
	}
	return n, nil
}

// CreateInvite records an invitation; inviting the same email twice updates the role
func (r *MemberRepo) CreateInvite(ctx context.Context, orgID int, email string, role models.Role) (*models.Invite, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO invites (organization_id, email, role) VALUES (?, ?, ?)
		ON CONFLICT (organization_id, email) DO UPDATE SET role = excluded.role`,
		orgID, email, string(role))
	if err != nil {
		return nil, fmt.Errorf("failed to create invite: %w", err)
	}

	inv := &models.Invite{}
	var r2 string
	var created sql.NullTime
	err = r.db.QueryRowContext(ctx,
		`SELECT id, organization_id, email, role, created_at FROM invites WHERE organization_id = ? AND email = ?`,
		orgID, email).Scan(&inv.ID, &inv.OrganizationID, &inv.Email, &r2, &created)
	if err != nil {
		return nil, fmt.Errorf("failed to read invite: %w", err)
	}
	inv.Role = models.Role(r2)
	inv.CreatedAt = NullTimeToTime(created)
	return inv, nil
}

// FindInvite returns the oldest pending invite for an email in any organization
func (r *MemberRepo) FindInvite(ctx context.Context, email string) (*models.Invite, error) {
	inv := &models.Invite{}
	var role string
	var created sql.NullTime
	err := r.db.QueryRowContext(ctx, `
		SELECT id, organization_id, email, role, created_at FROM invites
		WHERE email = ? ORDER BY id LIMIT 1`, email,
	).Scan(&inv.ID, &inv.OrganizationID, &inv.Email, &role, &created)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("invite for %q: %w", email, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find invite: %w", err)
	}
	inv.Role = models.Role(role)
	inv.CreatedAt = NullTimeToTime(created)
	return inv, nil
}

// ListInvites returns the pending invites of an organization
func (r *MemberRepo) ListInvites(ctx context.Context, orgID int) ([]*models.Invite, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, organization_id, email, role, created_at FROM invites WHERE organization_id = ? ORDER BY id`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}
	defer rows.Close()

	var invites []*models.Invite
	for rows.Next() {
		inv := &models.Invite{}
		var role string
		var created sql.NullTime
		if err := rows.Scan(&inv.ID, &inv.OrganizationID, &inv.Email, &role, &created); err != nil {
			return nil, err
		}
		inv.Role = models.Role(role)
		inv.CreatedAt = NullTimeToTime(created)
		invites = append(invites, inv)
	}
	return invites, rows.Err()
}

// DeleteInvite removes an invite
func (r *MemberRepo) DeleteInvite(ctx context.Context, orgID, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM invites WHERE id = ? AND organization_id = ?`, id, orgID)
	if err != nil {
		return fmt.Errorf("failed to delete invite %d: %w", id, err)
	}
	return requireAffected(res, "invite", id)
}
