package models

import "time"

// Contract is the agreement sent to a client. It is a draft until SignedAt is set.
type Contract struct {
	ID             int        `json:"id"`
	OrganizationID int        `json:"organization_id"`
	ClientID       int        `json:"client_id"`
	Terms          []string   `json:"terms"`
	Price          float64    `json:"price"`
	Notes          string     `json:"notes,omitempty"`
	SignerName     string     `json:"signer_name,omitempty"`
	SignedAt       *time.Time `json:"signed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// GetID returns the contract id
func (c *Contract) GetID() int { return c.ID }

// IsSigned reports whether the client has signed
func (c *Contract) IsSigned() bool { return c.SignedAt != nil }

// Term is a reusable contract clause in an organization's library
type Term struct {
	ID             int    `json:"id"`
	OrganizationID int    `json:"organization_id"`
	Content        string `json:"content"`
	IsDefault      bool   `json:"is_default"`
}
