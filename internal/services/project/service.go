// Package project reads and edits the work details of a client's project.
// Dates are owned by the schedule service.
package project

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/thenoetrevino/sitebook/internal/database"
	"github.com/thenoetrevino/sitebook/internal/events"
	"github.com/thenoetrevino/sitebook/internal/models"
)

const maxDescriptionLength = 2000

// Service defines all project-related business operations
type Service interface {
	// Read operations
	GetProject(ctx context.Context, orgID, id int) (*models.Project, error)
	GetByClient(ctx context.Context, orgID, clientID int) (*models.Project, error)
	ListScheduled(ctx context.Context, orgID int) ([]*models.Project, error)

	// Write operations
	UpdateDetails(ctx context.Context, req UpdateDetailsRequest) error
}

// UpdateDetailsRequest encapsulates data for updating a project; nil fields are kept
type UpdateDetailsRequest struct {
	OrganizationID int
	ID             int
	Description    *string
	Price          *float64
}

// service implements Service
type service struct {
	projects    *database.ProjectRepo
	eventClient events.EventPublisher
}

// NewService creates a new project service
func NewService(store *database.Store, eventClient events.EventPublisher) Service {
	return &service{
		projects:    store.Projects,
		eventClient: eventClient,
	}
}

// GetProject retrieves a specific project
func (s *service) GetProject(ctx context.Context, orgID, id int) (*models.Project, error) {
	if id <= 0 {
		return nil, ErrInvalidProjectID
	}
	p, err := s.projects.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, lookupError(err)
	}
	return p, nil
}

// GetByClient retrieves the project of a client
func (s *service) GetByClient(ctx context.Context, orgID, clientID int) (*models.Project, error) {
	if clientID <= 0 {
		return nil, ErrInvalidClientID
	}
	p, err := s.projects.GetByClient(ctx, orgID, clientID)
	if err != nil {
		return nil, lookupError(err)
	}
	return p, nil
}

// ListScheduled returns every dated project with its client name and status,
// ordered by start date, for the availability calendar
func (s *service) ListScheduled(ctx context.Context, orgID int) ([]*models.Project, error) {
	return s.projects.ListScheduled(ctx, orgID)
}

// UpdateDetails updates the description and price of a project
func (s *service) UpdateDetails(ctx context.Context, req UpdateDetailsRequest) error {
	if req.ID <= 0 {
		return ErrInvalidProjectID
	}
	if req.Price != nil && *req.Price < 0 {
		return ErrNegativePrice
	}
	if req.Description != nil && len(*req.Description) > maxDescriptionLength {
		return ErrDescriptionTooLong
	}

	existing, err := s.projects.GetByID(ctx, req.OrganizationID, req.ID)
	if err != nil {
		return lookupError(err)
	}

	description := existing.Description
	if req.Description != nil {
		description = strings.TrimSpace(*req.Description)
	}
	price := existing.Price
	if req.Price != nil {
		price = *req.Price
	}

	if err := s.projects.UpdateDetails(ctx, req.OrganizationID, req.ID, description, price); err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}

	events.Publish(s.eventClient, nil, events.Event{
		Type:           events.EventDatabaseChanged,
		OrganizationID: req.OrganizationID,
		Entity:         "project",
		EntityID:       req.ID,
	})
	return nil
}

func lookupError(err error) error {
	if errors.Is(err, models.ErrNotFound) {
		return ErrProjectNotFound
	}
	return err
}
