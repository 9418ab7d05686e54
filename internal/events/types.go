package events

import "time"

// ProtocolVersion is stamped on every wire message
const ProtocolVersion = 1

// EventType indicates what kind of change occurred
type EventType string

const (
	EventDatabaseChanged EventType = "db_changed"
	EventPing            EventType = "ping"
	EventPong            EventType = "pong"
)

// Event represents a store change notification for one organization
type Event struct {
	Type           EventType `json:"type"`
	OrganizationID int       `json:"organization_id"`     // 0 = several or all organizations
	Entity         string    `json:"entity,omitempty"`    // e.g. "project", "client"; empty after batching
	EntityID       int       `json:"entity_id,omitempty"` // id of Entity when known
	Timestamp      time.Time `json:"timestamp"`
	SequenceID     int64     `json:"sequence_id"` // assigned by the daemon
}

// SubscribeMessage is sent by clients to choose which organization they follow
type SubscribeMessage struct {
	OrganizationID int `json:"organization_id"` // 0 = all organizations
}

// Message wraps events and control messages for wire protocol
type Message struct {
	Version   int               `json:"version,omitempty"`
	Type      string            `json:"type"` // "event", "subscribe", "ping", "pong"
	Event     *Event            `json:"event,omitempty"`
	Subscribe *SubscribeMessage `json:"subscribe,omitempty"`
}

// Matches reports whether a subscriber following orgID should receive e
func (e Event) Matches(orgID int) bool {
	return e.OrganizationID == 0 || orgID == 0 || e.OrganizationID == orgID
}
