// Package target keeps the checklist of goals on a client's project.
package target

import (
	"context"
	"errors"
	"strings"

	"github.com/thenoetrevino/sitebook/internal/database"
	"github.com/thenoetrevino/sitebook/internal/events"
	"github.com/thenoetrevino/sitebook/internal/models"
)

// Service defines the checklist operations
type Service interface {
	AddTarget(ctx context.Context, orgID, clientID int, text string) (*models.Target, error)
	ToggleTarget(ctx context.Context, orgID, clientID, id int) (*models.Target, error)
	DeleteTarget(ctx context.Context, orgID, clientID, id int) error
	ListTargets(ctx context.Context, orgID, clientID int) (*Checklist, error)
}

// Checklist is a client's targets with completion progress
type Checklist struct {
	Targets   []*models.Target `json:"targets"`
	Completed int              `json:"completed"`
	Total     int              `json:"total"`
}

// Progress returns the completed share in [0, 1]; an empty list has no progress
func (c *Checklist) Progress() float64 {
	if c.Total == 0 {
		return 0
	}
	return float64(c.Completed) / float64(c.Total)
}

type service struct {
	store       *database.Store
	eventClient events.EventPublisher
}

// NewService creates a new target service
func NewService(store *database.Store, eventClient events.EventPublisher) Service {
	return &service{store: store, eventClient: eventClient}
}

// AddTarget appends an open target
func (s *service) AddTarget(ctx context.Context, orgID, clientID int, text string) (*models.Target, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	if err := s.requireClient(ctx, orgID, clientID); err != nil {
		return nil, err
	}
	t, err := s.store.Targets.Create(ctx, clientID, text)
	if err != nil {
		return nil, err
	}
	s.publish(orgID, t.ID)
	return t, nil
}

// ToggleTarget flips a target between open and done
func (s *service) ToggleTarget(ctx context.Context, orgID, clientID, id int) (*models.Target, error) {
	if id <= 0 {
		return nil, ErrInvalidTargetID
	}
	if err := s.requireClient(ctx, orgID, clientID); err != nil {
		return nil, err
	}

	var toggled *models.Target
	err := s.store.InTx(ctx, func(tx *database.Store) error {
		t, err := tx.Targets.GetByID(ctx, clientID, id)
		if err != nil {
			return lookupError(err)
		}
		if err := tx.Targets.SetCompleted(ctx, clientID, id, !t.IsCompleted); err != nil {
			return err
		}
		t.IsCompleted = !t.IsCompleted
		toggled = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(orgID, id)
	return toggled, nil
}

// DeleteTarget removes a target
func (s *service) DeleteTarget(ctx context.Context, orgID, clientID, id int) error {
	if id <= 0 {
		return ErrInvalidTargetID
	}
	if err := s.requireClient(ctx, orgID, clientID); err != nil {
		return err
	}
	if err := s.store.Targets.Delete(ctx, clientID, id); err != nil {
		return lookupError(err)
	}
	s.publish(orgID, id)
	return nil
}

// ListTargets returns the checklist in creation order
func (s *service) ListTargets(ctx context.Context, orgID, clientID int) (*Checklist, error) {
	if err := s.requireClient(ctx, orgID, clientID); err != nil {
		return nil, err
	}
	targets, err := s.store.Targets.ListByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	list := &Checklist{Targets: targets, Total: len(targets)}
	for _, t := range targets {
		if t.IsCompleted {
			list.Completed++
		}
	}
	return list, nil
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

func lookupError(err error) error {
	if errors.Is(err, models.ErrNotFound) {
		return ErrTargetNotFound
	}
	return err
}

func (s *service) publish(orgID, id int) {
	events.Publish(s.eventClient, nil, events.Event{
		Type:           events.EventDatabaseChanged,
		OrganizationID: orgID,
		Entity:         "target",
		EntityID:       id,
	})
}
