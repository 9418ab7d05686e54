// Package inventory tracks stocked materials and tools and their reorder
// thresholds.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/thenoetrevino/sitebook/internal/database"
	"github.com/thenoetrevino/sitebook/internal/events"
	"github.com/thenoetrevino/sitebook/internal/models"
)

// Adjustment is how AdjustStock applies an amount
type Adjustment string

const (
	AdjustAdd      Adjustment = "add"
	AdjustSubtract Adjustment = "subtract"
	AdjustSet      Adjustment = "set"
)

// ParseAdjustment validates an adjustment name
func ParseAdjustment(s string) (Adjustment, error) {
	switch a := Adjustment(strings.ToLower(s)); a {
	case AdjustAdd, AdjustSubtract, AdjustSet:
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAdjustment, s)
}

// Service defines all inventory operations
type Service interface {
	ListItems(ctx context.Context, orgID int, search string) ([]*models.InventoryItem, error)
	GetItem(ctx context.Context, orgID, id int) (*models.InventoryItem, error)
	LowStockCount(ctx context.Context, orgID int) (int, error)

	CreateItem(ctx context.Context, req CreateItemRequest) (*models.InventoryItem, error)
	UpdateItem(ctx context.Context, req UpdateItemRequest) error
	DeleteItem(ctx context.Context, orgID, id int) error
	AdjustStock(ctx context.Context, orgID, id int, adj Adjustment, amount int) (*models.InventoryItem, error)
}

// CreateItemRequest encapsulates data for a new item
type CreateItemRequest struct {
	OrganizationID int
	Name           string
	Supplier       string
	Quantity       int
	MinQuantity    int
	Unit           string
}

// UpdateItemRequest encapsulates data for updating an item; nil fields are kept.
// Stock levels change through AdjustStock.
type UpdateItemRequest struct {
	OrganizationID int
	ID             int
	Name           *string
	Supplier       *string
	MinQuantity    *int
	Unit           *string
}

type service struct {
	items       *database.InventoryRepo
	store       *database.Store
	eventClient events.EventPublisher
}

// NewService creates a new inventory service
func NewService(store *database.Store, eventClient events.EventPublisher) Service {
	return &service{items: store.Inventory, store: store, eventClient: eventClient}
}

// ListItems returns items whose name or supplier contains search, ignoring case
func (s *service) ListItems(ctx context.Context, orgID int, search string) ([]*models.InventoryItem, error) {
	items, err := s.items.List(ctx, orgID)
	if err != nil {
		return nil, err
	}
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return items, nil
	}

	matched := items[:0]
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Name), search) ||
			strings.Contains(strings.ToLower(it.Supplier), search) {
			matched = append(matched, it)
		}
	}
	return matched, nil
}

// GetItem retrieves a specific item
func (s *service) GetItem(ctx context.Context, orgID, id int) (*models.InventoryItem, error) {
	if id <= 0 {
		return nil, ErrInvalidItemID
	}
	it, err := s.items.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, lookupError(err)
	}
	return it, nil
}

// LowStockCount returns how many items are at or below their minimum
func (s *service) LowStockCount(ctx context.Context, orgID int) (int, error) {
	return s.items.CountLow(ctx, orgID)
}

// CreateItem adds an item to the inventory
func (s *service) CreateItem(ctx context.Context, req CreateItemRequest) (*models.InventoryItem, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validateName(req.Name); err != nil {
		return nil, err
	}
	if req.Quantity < 0 || req.MinQuantity < 0 {
		return nil, ErrNegativeQuantity
	}

	it, err := s.items.Create(ctx, &models.InventoryItem{
		OrganizationID: req.OrganizationID,
		Name:           req.Name,
		Supplier:       strings.TrimSpace(req.Supplier),
		Quantity:       req.Quantity,
		MinQuantity:    req.MinQuantity,
		Unit:           strings.TrimSpace(req.Unit),
	})
	if err != nil {
		return nil, err
	}
	s.publish(req.OrganizationID, it.ID)
	return it, nil
}

// UpdateItem updates the descriptive fields of an item
func (s *service) UpdateItem(ctx context.Context, req UpdateItemRequest) error {
	if req.ID <= 0 {
		return ErrInvalidItemID
	}
	if req.MinQuantity != nil && *req.MinQuantity < 0 {
		return ErrNegativeQuantity
	}

	existing, err := s.items.GetByID(ctx, req.OrganizationID, req.ID)
	if err != nil {
		return lookupError(err)
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := validateName(name); err != nil {
			return err
		}
		existing.Name = name
	}
	if req.Supplier != nil {
		existing.Supplier = strings.TrimSpace(*req.Supplier)
	}
	if req.MinQuantity != nil {
		existing.MinQuantity = *req.MinQuantity
	}
	if req.Unit != nil {
		existing.Unit = strings.TrimSpace(*req.Unit)
	}

	if err := s.items.Update(ctx, existing); err != nil {
		return err
	}
	s.publish(req.OrganizationID, req.ID)
	return nil
}

// DeleteItem removes an item
func (s *service) DeleteItem(ctx context.Context, orgID, id int) error {
	if id <= 0 {
		return ErrInvalidItemID
	}
	if err := s.items.Delete(ctx, orgID, id); err != nil {
		return lookupError(err)
	}
	s.publish(orgID, id)
	return nil
}

// AdjustStock adds, subtracts or sets the quantity. The result never drops below zero.
func (s *service) AdjustStock(ctx context.Context, orgID, id int, adj Adjustment, amount int) (*models.InventoryItem, error) {
	if id <= 0 {
		return nil, ErrInvalidItemID
	}
	if amount < 0 {
		return nil, ErrNegativeQuantity
	}
	if _, err := ParseAdjustment(string(adj)); err != nil {
		return nil, err
	}

	var updated *models.InventoryItem
	err := s.store.InTx(ctx, func(tx *database.Store) error {
		it, err := tx.Inventory.GetByID(ctx, orgID, id)
		if err != nil {
			return lookupError(err)
		}

		qty := it.Quantity
		switch adj {
		case AdjustAdd:
			qty += amount
		case AdjustSubtract:
			qty = max(0, qty-amount)
		case AdjustSet:
			qty = amount
		}

		if err := tx.Inventory.SetQuantity(ctx, orgID, id, qty); err != nil {
			return err
		}
		it.Quantity = qty
		updated = it
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(orgID, id)
	return updated, nil
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
		return ErrItemNotFound
	}
	return err
}

func (s *service) publish(orgID, id int) {
	events.Publish(s.eventClient, nil, events.Event{
		Type:           events.EventDatabaseChanged,
		OrganizationID: orgID,
		Entity:         "inventory",
		EntityID:       id,
	})
}
