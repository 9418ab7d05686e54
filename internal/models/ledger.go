package models

import "time"

// PayerClient marks a cost paid directly by the client
const PayerClient = "client"

// Cost is one entry in a client's cost ledger. Payer is PayerClient or the
// decimal id of the team member who paid.
type Cost struct {
	ID        int       `json:"id"`
	ClientID  int       `json:"client_id"`
	Title     string    `json:"title"`
	Amount    float64   `json:"amount"`
	Payer     string    `json:"payer"`
	CreatedAt time.Time `json:"created_at"`
}

// GetID returns the cost id
func (c *Cost) GetID() int { return c.ID }

// InventoryItem is a stocked material or tool
type InventoryItem struct {
	ID             int    `json:"id"`
	OrganizationID int    `json:"organization_id"`
	Name           string `json:"name"`
	Supplier       string `json:"supplier,omitempty"`
	Quantity       int    `json:"quantity"`
	MinQuantity    int    `json:"min_quantity"`
	Unit           string `json:"unit,omitempty"`
}

// GetID returns the item id
func (i *InventoryItem) GetID() int { return i.ID }

// IsLow reports whether the stock has reached the reorder threshold
func (i *InventoryItem) IsLow() bool {
	return i.Quantity <= i.MinQuantity
}
