package models

import "time"

// DateRange is an inclusive span of civil dates. A zero Start or End means the
// boundary has not been chosen yet.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// IsSet reports whether both boundaries are present
func (r DateRange) IsSet() bool {
	return !r.Start.IsZero() && !r.End.IsZero()
}

// IsEmpty reports whether neither boundary is present
func (r DateRange) IsEmpty() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// Overlaps uses the inclusive test stored.start <= other.end && stored.end >= other.start
func (r DateRange) Overlaps(other DateRange) bool {
	if !r.IsSet() || !other.IsSet() {
		return false
	}
	return !r.Start.After(other.End) && !r.End.Before(other.Start)
}

// Contains reports whether other lies strictly inside r on both sides
func (r DateRange) Contains(other DateRange) bool {
	if !r.IsSet() || !other.IsSet() {
		return false
	}
	return other.Start.After(r.Start) && other.End.Before(r.End)
}

// Project is the work record of a client: what is being built, for how much,
// and when. A project may be split across a primary and a secondary range.
type Project struct {
	ID             int        `json:"id"`
	OrganizationID int        `json:"organization_id"`
	ClientID       int        `json:"client_id"`
	ClientName     string     `json:"client_name,omitempty"`
	ClientStatus   Status     `json:"client_status,omitempty"`
	Description    string     `json:"description"`
	Price          float64    `json:"price"`
	Primary        DateRange  `json:"primary"`
	Secondary      *DateRange `json:"secondary,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// GetID returns the project id (used by quiet CLI output)
func (p *Project) GetID() int { return p.ID }

// Ranges returns the primary range followed by the secondary one when present
func (p *Project) Ranges() []DateRange {
	ranges := []DateRange{p.Primary}
	if p.Secondary != nil {
		ranges = append(ranges, *p.Secondary)
	}
	return ranges
}
