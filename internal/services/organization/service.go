// Package organization creates and removes tenants and keeps the branding
// printed on their documents.
package organization

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/thenoetrevino/sitebook/internal/database"
	"github.com/thenoetrevino/sitebook/internal/events"
	"github.com/thenoetrevino/sitebook/internal/models"
)

// Domain errors for organization service
var (
	ErrEmptyName    = errors.New("organization name cannot be empty")
	ErrNameTooLong  = fmt.Errorf("organization name cannot exceed %d characters", models.MaxNameLength)
	ErrInvalidOrgID = errors.New("invalid organization ID")
	ErrOrgNotFound  = fmt.Errorf("organization %w", models.ErrNotFound)

	ErrInvalidPadding = fmt.Errorf("padding must be between 0 and %d pixels", models.MaxPadding)
)

// Service defines organization operations
type Service interface {
	Create(ctx context.Context, name string) (*models.Organization, error)
	Get(ctx context.Context, id int) (*models.Organization, error)
	List(ctx context.Context) ([]*models.Organization, error)
	Delete(ctx context.Context, id int) error

	// Branding
	Settings(ctx context.Context, orgID int) (*models.OrganizationSettings, error)
	SavePadding(ctx context.Context, orgID int, padding models.Padding) (*models.OrganizationSettings, error)
}

type service struct {
	store       *database.Store
	orgs        *database.OrganizationRepo
	eventClient events.EventPublisher
}

// NewService creates a new organization service
func NewService(store *database.Store, eventClient events.EventPublisher) Service {
	return &service{store: store, orgs: store.Organizations, eventClient: eventClient}
}

// Create adds an organization with no members
func (s *service) Create(ctx context.Context, name string) (*models.Organization, error) {
	name = strings.TrimSpace(name)
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	org, err := s.orgs.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	s.publish(org.ID)
	return org, nil
}

// Get returns an organization
func (s *service) Get(ctx context.Context, id int) (*models.Organization, error) {
	if id <= 0 {
		return nil, ErrInvalidOrgID
	}
	org, err := s.orgs.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err)
	}
	return org, nil
}

// List returns every organization
func (s *service) List(ctx context.Context) ([]*models.Organization, error) {
	return s.orgs.List(ctx)
}

// Delete removes an organization and everything it owns
func (s *service) Delete(ctx context.Context, id int) error {
	if id <= 0 {
		return ErrInvalidOrgID
	}
	if err := s.orgs.Delete(ctx, id); err != nil {
		return lookupError(err)
	}
	s.publish(id)
	return nil
}

// Settings returns the branding of orgID, or the defaults when none was saved
func (s *service) Settings(ctx context.Context, orgID int) (*models.OrganizationSettings, error) {
	if _, err := s.Get(ctx, orgID); err != nil {
		return nil, err
	}
	return LoadSettings(ctx, s.store, orgID)
}

// SavePadding upserts the page margins and keeps the uploaded images
func (s *service) SavePadding(ctx context.Context, orgID int, padding models.Padding) (*models.OrganizationSettings, error) {
	if err := ValidatePadding(padding); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, orgID); err != nil {
		return nil, err
	}

	var saved *models.OrganizationSettings
	err := s.store.InTx(ctx, func(tx *database.Store) error {
		current, err := LoadSettings(ctx, tx, orgID)
		if err != nil {
			return err
		}
		current.Padding = padding
		saved, err = tx.Settings.Upsert(ctx, current)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publishSettings(orgID)
	return saved, nil
}

// LoadSettings reads the settings row of orgID, falling back to the defaults
func LoadSettings(ctx context.Context, store *database.Store, orgID int) (*models.OrganizationSettings, error) {
	settings, err := store.Settings.Get(ctx, orgID)
	if errors.Is(err, models.ErrNotFound) {
		return models.DefaultSettings(orgID), nil
	}
	return settings, err
}

// ValidatePadding checks every margin is within 0..MaxPadding
func ValidatePadding(p models.Padding) error {
	for _, v := range []int{p.Top, p.Bottom, p.Right, p.Left} {
		if v < 0 || v > models.MaxPadding {
			return ErrInvalidPadding
		}
	}
	return nil
}

// ValidateName checks an already trimmed organization name
func ValidateName(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	if len(name) > models.MaxNameLength {
		return ErrNameTooLong
	}
	return nil
}

func lookupError(err error) error {
	if errors.Is(err, models.ErrNotFound) {
		return ErrOrgNotFound
	}
	return err
}

func (s *service) publish(id int) {
	events.Publish(s.eventClient, nil, events.Event{
		Type:           events.EventDatabaseChanged,
		OrganizationID: id,
		Entity:         "organization",
		EntityID:       id,
	})
}

func (s *service) publishSettings(orgID int) {
	events.Publish(s.eventClient, nil, events.Event{
		Type:           events.EventDatabaseChanged,
		OrganizationID: orgID,
		Entity:         "settings",
		EntityID:       orgID,
	})
}
