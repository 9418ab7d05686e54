// Package contract drafts and signs client contracts and keeps the
// organization's library of reusable terms.
package contract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/thenoetrevino/sitebook/internal/database"
	"github.com/thenoetrevino/sitebook/internal/events"
	"github.com/thenoetrevino/sitebook/internal/models"
	"github.com/thenoetrevino/sitebook/internal/services/organization"
)

// Service defines all contract-related business operations
type Service interface {
	// Contracts
	SaveDraft(ctx context.Context, req SaveDraftRequest) (*models.Contract, error)
	Get(ctx context.Context, orgID, clientID int) (*models.Contract, error)
	Sign(ctx context.Context, orgID, contractID int, signer string) (*models.Contract, error)
	Document(ctx context.Context, orgID, clientID int) (*Document, error)

	// Terms library
	AddTerm(ctx context.Context, orgID int, content string, isDefault bool) (*models.Term, error)
	ListTerms(ctx context.Context, orgID int) ([]*models.Term, error)
	DeleteTerm(ctx context.Context, orgID, id int) error
}

// SaveDraftRequest encapsulates data for a new contract draft. Nil Terms are
// prefilled with the default terms and a nil Price with the project price.
type SaveDraftRequest struct {
	OrganizationID int
	ClientID       int
	Terms          []string
	Price          *float64
	Notes          string
}

type service struct {
	store       *database.Store
	eventClient events.EventPublisher
	now         func() time.Time
}

// NewService creates a new contract service
func NewService(store *database.Store, eventClient events.EventPublisher) Service {
	return &service{
		store:       store,
		eventClient: eventClient,
		now:         time.Now,
	}
}

// SaveDraft stores a new draft; the latest contract of a client is the current one
func (s *service) SaveDraft(ctx context.Context, req SaveDraftRequest) (*models.Contract, error) {
	if req.ClientID <= 0 {
		return nil, ErrInvalidClientID
	}
	if req.Price != nil && *req.Price < 0 {
		return nil, ErrNegativePrice
	}

	var created *models.Contract
	err := s.store.InTx(ctx, func(tx *database.Store) error {
		project, err := tx.Projects.GetByClient(ctx, req.OrganizationID, req.ClientID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return ErrClientNotFound
			}
			return err
		}

		terms := cleanTerms(req.Terms)
		if req.Terms == nil {
			defaults, err := tx.Contracts.ListTerms(ctx, req.OrganizationID, true)
			if err != nil {
				return err
			}
			for _, t := range defaults {
				terms = append(terms, t.Content)
			}
		}

		price := project.Price
		if req.Price != nil {
			price = *req.Price
		}

		created, err = tx.Contracts.Create(ctx, &models.Contract{
			OrganizationID: req.OrganizationID,
			ClientID:       req.ClientID,
			Terms:          terms,
			Price:          price,
			Notes:          strings.TrimSpace(req.Notes),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(req.OrganizationID, "contract", created.ID)
	return created, nil
}

// Get returns the latest contract of a client
func (s *service) Get(ctx context.Context, orgID, clientID int) (*models.Contract, error) {
	if clientID <= 0 {
		return nil, ErrInvalidClientID
	}
	contracts, err := s.store.Contracts.ListByClient(ctx, orgID, clientID)
	if err != nil {
		return nil, err
	}
	if len(contracts) == 0 {
		return nil, ErrContractNotFound
	}
	return contracts[0], nil
}

// Document loads the current contract of a client with the organization's branding
func (s *service) Document(ctx context.Context, orgID, clientID int) (*Document, error) {
	k, err := s.Get(ctx, orgID, clientID)
	if err != nil {
		return nil, err
	}
	c, err := s.store.Clients.GetByID(ctx, orgID, clientID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	settings, err := organization.LoadSettings(ctx, s.store, orgID)
	if err != nil {
		return nil, err
	}
	return NewDocument(c, k, settings), nil
}

// Sign records the signature and moves a proposal client to signed
func (s *service) Sign(ctx context.Context, orgID, contractID int, signer string) (*models.Contract, error) {
	if contractID <= 0 {
		return nil, ErrInvalidContractID
	}
	signer = strings.TrimSpace(signer)
	if signer == "" {
		return nil, ErrEmptySigner
	}

	var signed *models.Contract
	err := s.store.InTx(ctx, func(tx *database.Store) error {
		c, err := tx.Contracts.GetByID(ctx, orgID, contractID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return ErrContractNotFound
			}
			return err
		}
		if c.IsSigned() {
			return ErrAlreadySigned
		}

		if err := tx.Contracts.Sign(ctx, orgID, contractID, signer, s.now()); err != nil {
			return err
		}

		client, err := tx.Clients.GetByID(ctx, orgID, c.ClientID)
		if err != nil {
			return fmt.Errorf("failed to get client: %w", err)
		}
		if client.Status.Precedes(models.StatusSigned) {
			if err := tx.Clients.UpdateStatus(ctx, orgID, c.ClientID, models.StatusSigned); err != nil {
				return err
			}
		}

		signed, err = tx.Contracts.GetByID(ctx, orgID, contractID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(orgID, "contract", contractID)
	return signed, nil
}

// AddTerm adds a clause to the library
func (s *service) AddTerm(ctx context.Context, orgID int, content string, isDefault bool) (*models.Term, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyTerm
	}
	term, err := s.store.Contracts.AddTerm(ctx, orgID, content, isDefault)
	if err != nil {
		return nil, err
	}
	s.publish(orgID, "term", term.ID)
	return term, nil
}

// ListTerms returns the whole library
func (s *service) ListTerms(ctx context.Context, orgID int) ([]*models.Term, error) {
	return s.store.Contracts.ListTerms(ctx, orgID, false)
}

// DeleteTerm removes a clause; existing contracts keep their copy
func (s *service) DeleteTerm(ctx context.Context, orgID, id int) error {
	if err := s.store.Contracts.DeleteTerm(ctx, orgID, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return ErrTermNotFound
		}
		return err
	}
	s.publish(orgID, "term", id)
	return nil
}

func cleanTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func (s *service) publish(orgID int, entity string, id int) {
	events.Publish(s.eventClient, nil, events.Event{
		Type:           events.EventDatabaseChanged,
		OrganizationID: orgID,
		Entity:         entity,
		EntityID:       id,
	})
}
