// Package cost keeps the expense ledger of each client and who paid what.
package cost

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/thenoetrevino/sitebook/internal/database"
	"github.com/thenoetrevino/sitebook/internal/events"
	"github.com/thenoetrevino/sitebook/internal/models"
)

// Service defines all cost ledger operations
type Service interface {
	AddCost(ctx context.Context, req AddCostRequest) (*models.Cost, error)
	DeleteCost(ctx context.Context, orgID, clientID, id int) error
	ListCosts(ctx context.Context, orgID, clientID int) ([]*models.Cost, error)
	Summary(ctx context.Context, orgID, clientID int) (*Summary, error)
}

// AddCostRequest encapsulates one ledger entry. An empty Payer means the client.
type AddCostRequest struct {
	OrganizationID int
	ClientID       int
	Title          string
	Amount         float64
	Payer          string
}

// Summary totals a client's ledger
type Summary struct {
	Total        float64         `json:"total"`
	PaidByClient float64         `json:"paid_by_client"`
	PaidByTeam   float64         `json:"paid_by_team"`
	ByMember     map[int]float64 `json:"by_member"`
	Entries      int             `json:"entries"`
}

type service struct {
	store       *database.Store
	eventClient events.EventPublisher
}

// NewService creates a new cost service
func NewService(store *database.Store, eventClient events.EventPublisher) Service {
	return &service{store: store, eventClient: eventClient}
}

// AddCost records an expense paid by the client or by a member of the organization
func (s *service) AddCost(ctx context.Context, req AddCostRequest) (*models.Cost, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return nil, ErrEmptyTitle
	}
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if err := s.requireClient(ctx, req.OrganizationID, req.ClientID); err != nil {
		return nil, err
	}

	payer := strings.TrimSpace(req.Payer)
	if payer == "" {
		payer = models.PayerClient
	}
	if payer != models.PayerClient {
		if err := s.requireMember(ctx, req.OrganizationID, payer); err != nil {
			return nil, err
		}
	}

	c, err := s.store.Costs.Create(ctx, &models.Cost{
		ClientID: req.ClientID,
		Title:    req.Title,
		Amount:   req.Amount,
		Payer:    payer,
	})
	if err != nil {
		return nil, err
	}

	s.publish(req.OrganizationID, c.ID)
	return c, nil
}

// DeleteCost removes an entry from a client's ledger
func (s *service) DeleteCost(ctx context.Context, orgID, clientID, id int) error {
	if err := s.requireClient(ctx, orgID, clientID); err != nil {
		return err
	}
	if err := s.store.Costs.Delete(ctx, clientID, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return ErrCostNotFound
		}
		return err
	}
	s.publish(orgID, id)
	return nil
}

// ListCosts returns a client's ledger
func (s *service) ListCosts(ctx context.Context, orgID, clientID int) ([]*models.Cost, error) {
	if err := s.requireClient(ctx, orgID, clientID); err != nil {
		return nil, err
	}
	return s.store.Costs.ListByClient(ctx, clientID)
}

// Summary totals the ledger. Entries with an unknown payer count as paid by the client.
func (s *service) Summary(ctx context.Context, orgID, clientID int) (*Summary, error) {
	costs, err := s.ListCosts(ctx, orgID, clientID)
	if err != nil {
		return nil, err
	}

	sum := &Summary{ByMember: map[int]float64{}, Entries: len(costs)}
	for _, c := range costs {
		sum.Total += c.Amount
		memberID, err := strconv.Atoi(c.Payer)
		if c.Payer == models.PayerClient || err != nil {
			sum.PaidByClient += c.Amount
			continue
		}
		sum.ByMember[memberID] += c.Amount
	}
	sum.PaidByTeam = sum.Total - sum.PaidByClient
	return sum, nil
}

func (s *service) requireClient(ctx context.Context, orgID, clientID int) error {
	if clientID <= 0 {
		return ErrInvalidClientID
	}
	if _, err := s.store.Clients.GetByID(ctx, orgID, clientID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return ErrClientNotFound
		}
		return err
	}
	return nil
}

func (s *service) requireMember(ctx context.Context, orgID int, payer string) error {
	id, err := strconv.Atoi(payer)
	if err != nil || id <= 0 {
		return ErrInvalidPayer
	}
	m, err := s.store.Members.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return ErrInvalidPayer
		}
		return err
	}
	if m.OrganizationID != orgID {
		return ErrInvalidPayer
	}
	return nil
}

func (s *service) publish(orgID, id int) {
	events.Publish(s.eventClient, nil, events.Event{
		Type:           events.EventDatabaseChanged,
		OrganizationID: orgID,
		Entity:         "cost",
		EntityID:       id,
	})
}
