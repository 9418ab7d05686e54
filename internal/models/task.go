package models

import "time"

// DefaultTaskTime is used when a task is created without a time of day
const DefaultTaskTime = "09:00"

// Task is an organization calendar entry assigned to zero or more members
type Task struct {
	ID             int       `json:"id"`
	OrganizationID int       `json:"organization_id"`
	Text           string    `json:"text"`
	DueDate        time.Time `json:"due_date"`
	Time           string    `json:"time"`
	AssignedTo     []int     `json:"assigned_to"`
	IsCompleted    bool      `json:"is_completed"`
	CreatedAt      time.Time `json:"created_at"`
}

// GetID returns the task id
func (t *Task) GetID() int { return t.ID }

// Target is a checklist entry on a client's project
type Target struct {
	ID          int       `json:"id"`
	ClientID    int       `json:"client_id"`
	Text        string    `json:"text"`
	IsCompleted bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
}

// GetID returns the target id
func (t *Target) GetID() int { return t.ID }
