package models

import (
	"fmt"
	"time"
)

// Status is a client's position in the project lifecycle
type Status string

const (
	StatusProposal   Status = "proposal"
	StatusSigned     Status = "signed"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Statuses lists the lifecycle in order
var Statuses = []Status{StatusProposal, StatusSigned, StatusInProgress, StatusCompleted}

// ParseStatus validates a status string
func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("invalid status %q (must be: proposal, signed, in_progress, completed)", s)
}

// Index returns the position of s in the lifecycle, -1 when unknown
func (s Status) Index() int {
	for i, st := range Statuses {
		if st == s {
			return i
		}
	}
	return -1
}

// Precedes reports whether next lies later in the lifecycle than s.
// Statuses only ever move forward.
func (s Status) Precedes(next Status) bool {
	return s.Index() >= 0 && s.Index() < next.Index()
}

// Label returns a human readable status name
func (s Status) Label() string {
	switch s {
	case StatusProposal:
		return "Proposal"
	case StatusSigned:
		return "Signed"
	case StatusInProgress:
		return "In progress"
	case StatusCompleted:
		return "Completed"
	default:
		return string(s)
	}
}

// Client is a customer of a contracting business
type Client struct {
	ID             int       `json:"id"`
	OrganizationID int       `json:"organization_id"`
	FullName       string    `json:"full_name"`
	Phone          string    `json:"phone,omitempty"`
	Email          string    `json:"email,omitempty"`
	Address        string    `json:"address,omitempty"`
	Status         Status    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// GetID returns the client id
func (c *Client) GetID() int { return c.ID }
