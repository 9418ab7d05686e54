// Package client manages clients and their lifecycle from proposal to
// completed work.
package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/thenoetrevino/sitebook/internal/database"
	"github.com/thenoetrevino/sitebook/internal/events"
	"github.com/thenoetrevino/sitebook/internal/models"
	"github.com/thenoetrevino/sitebook/internal/workdays"
	"go.uber.org/zap"
)

// Service defines all client-related business operations
type Service interface {
	// Read operations
	ListClients(ctx context.Context, orgID int, status models.Status) ([]*models.Client, error)
	GetClient(ctx context.Context, orgID, id int) (*models.Client, error)
	StatusCounts(ctx context.Context, orgID int) (map[models.Status]int, error)

	// Write operations
	CreateClient(ctx context.Context, req CreateClientRequest) (*models.Client, error)
	UpdateClient(ctx context.Context, req UpdateClientRequest) error
	DeleteClient(ctx context.Context, orgID, id int) error

	// Lifecycle operations
	MarkSigned(ctx context.Context, orgID, id int) error
	Complete(ctx context.Context, orgID, id int) error
	AdvanceStarted(ctx context.Context, orgID int) ([]int, error)
}

// CreateClientRequest encapsulates data for creating a client and its project
type CreateClientRequest struct {
	OrganizationID int
	FullName       string
	Phone          string
	Email          string
	Address        string
	Description    string
	Price          float64
}

// UpdateClientRequest encapsulates data for updating a client; nil fields are kept
type UpdateClientRequest struct {
	OrganizationID int
	ID             int
	FullName       *string
	Phone          *string
	Email          *string
	Address        *string
}

// Option configures the service
type Option func(*service)

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// WithLogger sets the service logger
func WithLogger(l *zap.Logger) Option {
	return func(s *service) {
		if l != nil {
			s.log = l
		}
	}
}

type service struct {
	store       *database.Store
	cal         *workdays.Calendar
	eventClient events.EventPublisher
	log         *zap.Logger
	now         func() time.Time
}

// NewService creates a new client service. cal decides which day is today.
func NewService(store *database.Store, cal *workdays.Calendar, eventClient events.EventPublisher, opts ...Option) Service {
	if cal == nil {
		cal = workdays.Default()
	}
	s := &service{
		store:       store,
		cal:         cal,
		eventClient: eventClient,
		log:         zap.NewNop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListClients returns the organization's clients, newest first. An empty
// status lists every client.
func (s *service) ListClients(ctx context.Context, orgID int, status models.Status) ([]*models.Client, error) {
	if orgID <= 0 {
		return nil, ErrInvalidOrgID
	}
	if status != "" {
		if _, err := models.ParseStatus(string(status)); err != nil {
			return nil, err
		}
	}
	return s.store.Clients.List(ctx, orgID, status)
}

// GetClient retrieves a specific client
func (s *service) GetClient(ctx context.Context, orgID, id int) (*models.Client, error) {
	if id <= 0 {
		return nil, ErrInvalidClientID
	}
	c, err := s.store.Clients.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, lookupError(err)
	}
	return c, nil
}

// StatusCounts returns the number of clients per status, every status present
func (s *service) StatusCounts(ctx context.Context, orgID int) (map[models.Status]int, error) {
	if orgID <= 0 {
		return nil, ErrInvalidOrgID
	}
	return s.store.Clients.CountByStatus(ctx, orgID)
}

// CreateClient creates a client in status proposal together with its project
func (s *service) CreateClient(ctx context.Context, req CreateClientRequest) (*models.Client, error) {
	if req.OrganizationID <= 0 {
		return nil, ErrInvalidOrgID
	}
	req.FullName = strings.TrimSpace(req.FullName)
	if err := validateName(req.FullName); err != nil {
		return nil, err
	}
	if req.Price < 0 {
		return nil, ErrNegativePrice
	}

	var created *models.Client
	err := s.store.InTx(ctx, func(tx *database.Store) error {
		c, err := tx.Clients.Create(ctx, &models.Client{
			OrganizationID: req.OrganizationID,
			FullName:       req.FullName,
			Phone:          strings.TrimSpace(req.Phone),
			Email:          strings.TrimSpace(req.Email),
			Address:        strings.TrimSpace(req.Address),
			Status:         models.StatusProposal,
		})
		if err != nil {
			return err
		}
		if _, err := tx.Projects.CreateForClient(ctx, req.OrganizationID, c.ID, req.Description, req.Price); err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}
		created = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishClientEvent(created.OrganizationID, created.ID)
	return created, nil
}

// UpdateClient updates the contact details of a client
func (s *service) UpdateClient(ctx context.Context, req UpdateClientRequest) error {
	if req.ID <= 0 {
		return ErrInvalidClientID
	}
	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if err := validateName(name); err != nil {
			return err
		}
		req.FullName = &name
	}

	existing, err := s.store.Clients.GetByID(ctx, req.OrganizationID, req.ID)
	if err != nil {
		return lookupError(err)
	}

	if req.FullName != nil {
		existing.FullName = *req.FullName
	}
	if req.Phone != nil {
		existing.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Email != nil {
		existing.Email = strings.TrimSpace(*req.Email)
	}
	if req.Address != nil {
		existing.Address = strings.TrimSpace(*req.Address)
	}

	if err := s.store.Clients.Update(ctx, existing); err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}

	s.publishClientEvent(req.OrganizationID, req.ID)
	return nil
}

// DeleteClient deletes a client with its project, ledgers, targets and files
func (s *service) DeleteClient(ctx context.Context, orgID, id int) error {
	if id <= 0 {
		return ErrInvalidClientID
	}
	if err := s.store.Clients.Delete(ctx, orgID, id); err != nil {
		return lookupError(err)
	}
	s.publishClientEvent(orgID, id)
	return nil
}

// MarkSigned moves a proposal to signed. Clients further along are left as is.
func (s *service) MarkSigned(ctx context.Context, orgID, id int) error {
	changed, err := s.advance(ctx, orgID, id, models.StatusSigned, nil)
	if err != nil {
		return err
	}
	if changed {
		s.publishClientEvent(orgID, id)
	}
	return nil
}

// Complete marks the client completed and stamps today as the project end date
func (s *service) Complete(ctx context.Context, orgID, id int) error {
	today := s.cal.Today(s.now())
	changed, err := s.advance(ctx, orgID, id, models.StatusCompleted, func(tx *database.Store) error {
		return tx.Projects.SetEndDate(ctx, orgID, id, today)
	})
	if err != nil || !changed {
		return err
	}

	s.log.Info("client completed",
		zap.Int("organization_id", orgID),
		zap.Int("client_id", id),
		zap.String("end_date", workdays.FormatDate(today)))
	s.publishClientEvent(orgID, id)
	return nil
}

// advance moves a client forward to status in one transaction with also.
// Clients already at or past status are left untouched and also is skipped.
func (s *service) advance(ctx context.Context, orgID, id int, status models.Status, also func(tx *database.Store) error) (bool, error) {
	if id <= 0 {
		return false, ErrInvalidClientID
	}

	changed := false
	err := s.store.InTx(ctx, func(tx *database.Store) error {
		c, err := tx.Clients.GetByID(ctx, orgID, id)
		if err != nil {
			return lookupError(err)
		}
		if !c.Status.Precedes(status) {
			return nil
		}
		if err := tx.Clients.UpdateStatus(ctx, orgID, id, status); err != nil {
			return err
		}
		if also != nil {
			if err := also(tx); err != nil {
				return err
			}
		}
		changed = true
		return nil
	})
	return changed, err
}

// AdvanceStarted moves every signed client whose work has started to
// in_progress and returns their ids.
func (s *service) AdvanceStarted(ctx context.Context, orgID int) ([]int, error) {
	if orgID <= 0 {
		return nil, ErrInvalidOrgID
	}
	today := s.cal.Today(s.now())

	var advanced []int
	err := s.store.InTx(ctx, func(tx *database.Store) error {
		started, err := tx.Projects.ListSignedStarted(ctx, orgID, today)
		if err != nil {
			return err
		}
		for _, p := range started {
			if err := tx.Clients.UpdateStatus(ctx, orgID, p.ClientID, models.StatusInProgress); err != nil {
				return err
			}
			advanced = append(advanced, p.ClientID)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to advance started clients: %w", err)
	}

	if len(advanced) > 0 {
		s.log.Info("clients moved to in progress",
			zap.Int("organization_id", orgID),
			zap.Ints("client_ids", advanced))
		events.Publish(s.eventClient, s.log, events.Event{
			Type:           events.EventDatabaseChanged,
			OrganizationID: orgID,
			Entity:         "client",
		})
	}
	return advanced, nil
}

func validateName(name string) error {
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
		return ErrClientNotFound
	}
	return err
}

// publishClientEvent publishes a client change for the organization
func (s *service) publishClientEvent(orgID, clientID int) {
	events.Publish(s.eventClient, s.log, events.Event{
		Type:           events.EventDatabaseChanged,
		OrganizationID: orgID,
		Entity:         "client",
		EntityID:       clientID,
	})
}
