// Package team manages the members of an organization, their roles and
// calendar colours, and pending invitations.
package team

import (
	"context"
	"errors"
	"net/mail"
	"net/url"
	"regexp"
	"strings"

	"github.com/thenoetrevino/sitebook/internal/database"
	"github.com/thenoetrevino/sitebook/internal/events"
	"github.com/thenoetrevino/sitebook/internal/models"
)

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Service defines all team operations. Permission checks belong to callers.
type Service interface {
	ListMembers(ctx context.Context, orgID int) ([]*models.Member, error)
	GetMember(ctx context.Context, orgID, id int) (*models.Member, error)
	SetRole(ctx context.Context, orgID, id int, role models.Role) error
	SetColor(ctx context.Context, orgID, id int, color string) error
	UpdateProfile(ctx context.Context, orgID, id int, fullName, avatarURL string) (*models.Member, error)
	RemoveMember(ctx context.Context, orgID, id int) error

	Invite(ctx context.Context, orgID int, email string, role models.Role) (*models.Invite, error)
	ListInvites(ctx context.Context, orgID int) ([]*models.Invite, error)
	RevokeInvite(ctx context.Context, orgID, id int) error
}

type service struct {
	store       *database.Store
	eventClient events.EventPublisher
}

// NewService creates a new team service
func NewService(store *database.Store, eventClient events.EventPublisher) Service {
	return &service{store: store, eventClient: eventClient}
}

// ListMembers returns owners first, then admins, then workers
func (s *service) ListMembers(ctx context.Context, orgID int) ([]*models.Member, error) {
	return s.store.Members.ListByOrganization(ctx, orgID)
}

// GetMember returns a member of orgID
func (s *service) GetMember(ctx context.Context, orgID, id int) (*models.Member, error) {
	if id <= 0 {
		return nil, ErrInvalidMemberID
	}
	return getMember(ctx, s.store, orgID, id)
}

// SetRole changes a member's role. The last owner cannot be demoted.
func (s *service) SetRole(ctx context.Context, orgID, id int, role models.Role) error {
	if !role.Valid() {
		return ErrInvalidRole
	}
	if id <= 0 {
		return ErrInvalidMemberID
	}

	err := s.store.InTx(ctx, func(tx *database.Store) error {
		m, err := getMember(ctx, tx, orgID, id)
		if err != nil {
			return err
		}
		if m.Role == models.RoleOwner && role != models.RoleOwner {
			if err := requireAnotherOwner(ctx, tx, orgID); err != nil {
				return err
			}
		}
		return tx.Members.UpdateRole(ctx, orgID, id, role)
	})
	if err != nil {
		return err
	}
	s.publish(orgID, "member", id)
	return nil
}

// SetColor changes the member's calendar colour
func (s *service) SetColor(ctx context.Context, orgID, id int, color string) error {
	color = strings.ToUpper(strings.TrimSpace(color))
	if !colorPattern.MatchString(color) {
		return ErrInvalidColor
	}
	if id <= 0 {
		return ErrInvalidMemberID
	}
	if err := s.store.Members.UpdateColor(ctx, orgID, id, color); err != nil {
		return memberLookupError(err)
	}
	s.publish(orgID, "member", id)
	return nil
}

// UpdateProfile changes a member's display name and avatar. An empty
// avatarURL clears the avatar.
func (s *service) UpdateProfile(ctx context.Context, orgID, id int, fullName, avatarURL string) (*models.Member, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, ErrEmptyName
	}
	if len(fullName) > models.MaxNameLength {
		return nil, ErrNameTooLong
	}
	avatarURL = strings.TrimSpace(avatarURL)
	if err := validateAvatarURL(avatarURL); err != nil {
		return nil, err
	}
	if id <= 0 {
		return nil, ErrInvalidMemberID
	}

	var updated *models.Member
	err := s.store.InTx(ctx, func(tx *database.Store) error {
		if _, err := getMember(ctx, tx, orgID, id); err != nil {
			return err
		}
		if err := tx.Members.UpdateProfile(ctx, id, fullName, avatarURL); err != nil {
			return memberLookupError(err)
		}
		var err error
		updated, err = tx.Members.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publish(orgID, "member", id)
	return updated, nil
}

// RemoveMember deletes a member. The last owner cannot be removed.
func (s *service) RemoveMember(ctx context.Context, orgID, id int) error {
	if id <= 0 {
		return ErrInvalidMemberID
	}

	err := s.store.InTx(ctx, func(tx *database.Store) error {
		m, err := getMember(ctx, tx, orgID, id)
		if err != nil {
			return err
		}
		if m.Role == models.RoleOwner {
			if err := requireAnotherOwner(ctx, tx, orgID); err != nil {
				return err
			}
		}
		return tx.Members.Delete(ctx, orgID, id)
	})
	if err != nil {
		return err
	}
	s.publish(orgID, "member", id)
	return nil
}

// Invite lets email join orgID with role on registration. Inviting the same
// address again updates the role.
func (s *service) Invite(ctx context.Context, orgID int, email string, role models.Role) (*models.Invite, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if role == "" {
		role = models.RoleWorker
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	existing, err := s.store.Members.GetByEmail(ctx, email)
	switch {
	case err == nil && existing.OrganizationID == orgID:
		return nil, ErrAlreadyMember
	case err != nil && !errors.Is(err, models.ErrNotFound):
		return nil, err
	}

	inv, err := s.store.Members.CreateInvite(ctx, orgID, email, role)
	if err != nil {
		return nil, err
	}
	s.publish(orgID, "invite", inv.ID)
	return inv, nil
}

// ListInvites returns the pending invites
func (s *service) ListInvites(ctx context.Context, orgID int) ([]*models.Invite, error) {
	return s.store.Members.ListInvites(ctx, orgID)
}

// RevokeInvite deletes a pending invite
func (s *service) RevokeInvite(ctx context.Context, orgID, id int) error {
	if err := s.store.Members.DeleteInvite(ctx, orgID, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return ErrInviteNotFound
		}
		return err
	}
	s.publish(orgID, "invite", id)
	return nil
}

// NormalizeEmail validates an address and returns its lower-cased bare form
func NormalizeEmail(email string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil || addr.Name != "" {
		return "", ErrInvalidEmail
	}
	return strings.ToLower(addr.Address), nil
}

func validateAvatarURL(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidAvatarURL
	}
	return nil
}

func getMember(ctx context.Context, store *database.Store, orgID, id int) (*models.Member, error) {
	m, err := store.Members.GetByID(ctx, id)
	if err != nil {
		return nil, memberLookupError(err)
	}
	if m.OrganizationID != orgID {
		return nil, ErrMemberNotFound
	}
	return m, nil
}

func requireAnotherOwner(ctx context.Context, tx *database.Store, orgID int) error {
	owners, err := tx.Members.CountOwners(ctx, orgID)
	if err != nil {
		return err
	}
	if owners <= 1 {
		return ErrLastOwner
	}
	return nil
}

func memberLookupError(err error) error {
	if errors.Is(err, models.ErrNotFound) {
		return ErrMemberNotFound
	}
	return err
}

func (s *service) publish(orgID int, entity string, id int) {
	events.Publish(s.eventClient, nil, events.Event{
		Type:           events.EventDatabaseChanged,
		OrganizationID: orgID,
		Entity:         entity,
		EntityID:       id,
	})
}
