// Package task manages the organization calendar: dated tasks assigned to
// team members.
package task

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/thenoetrevino/sitebook/internal/database"
	"github.com/thenoetrevino/sitebook/internal/events"
	"github.com/thenoetrevino/sitebook/internal/models"
	"github.com/thenoetrevino/sitebook/internal/workdays"
)

const maxTextLength = 255

// Service defines all task-related business operations
type Service interface {
	// Read operations
	ListTasks(ctx context.Context, orgID int) ([]*models.Task, error)
	ListRange(ctx context.Context, orgID int, from, to time.Time) ([]*models.Task, error)
	GetTask(ctx context.Context, orgID, id int) (*models.Task, error)

	// Write operations
	CreateTask(ctx context.Context, req CreateTaskRequest) (*models.Task, error)
	UpdateTask(ctx context.Context, req UpdateTaskRequest) (*models.Task, error)
	ToggleTask(ctx context.Context, orgID, id int) (*models.Task, error)
	DeleteTask(ctx context.Context, orgID, id int) error
}

// CreateTaskRequest encapsulates data for creating a task. An empty Time
// defaults to 09:00.
type CreateTaskRequest struct {
	OrganizationID int
	Text           string
	DueDate        time.Time
	Time           string
	AssignedTo     []int
}

// UpdateTaskRequest encapsulates data for updating a task; nil fields are kept
type UpdateTaskRequest struct {
	OrganizationID int
	ID             int
	Text           *string
	DueDate        *time.Time
	Time           *string
	AssignedTo     *[]int
}

type service struct {
	store       *database.Store
	eventClient events.EventPublisher
}

// NewService creates a new task service
func NewService(store *database.Store, eventClient events.EventPublisher) Service {
	return &service{store: store, eventClient: eventClient}
}

// ListTasks returns every task ordered by due date and time
func (s *service) ListTasks(ctx context.Context, orgID int) ([]*models.Task, error) {
	return s.store.Tasks.List(ctx, orgID)
}

// ListRange returns the tasks due between from and to inclusive
func (s *service) ListRange(ctx context.Context, orgID int, from, to time.Time) ([]*models.Task, error) {
	from, to = civil(from), civil(to)
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return nil, ErrInvalidRange
	}
	return s.store.Tasks.ListBetween(ctx, orgID, from, to)
}

// GetTask retrieves a specific task
func (s *service) GetTask(ctx context.Context, orgID, id int) (*models.Task, error) {
	if id <= 0 {
		return nil, ErrInvalidTaskID
	}
	t, err := s.store.Tasks.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, lookupError(err)
	}
	return t, nil
}

// CreateTask creates a task and its assignments
func (s *service) CreateTask(ctx context.Context, req CreateTaskRequest) (*models.Task, error) {
	text, err := validateText(req.Text)
	if err != nil {
		return nil, err
	}
	if req.DueDate.IsZero() {
		return nil, ErrMissingDueDate
	}
	clock, err := validateTime(req.Time)
	if err != nil {
		return nil, err
	}

	var created *models.Task
	err = s.store.InTx(ctx, func(tx *database.Store) error {
		assignees, err := checkAssignees(ctx, tx, req.OrganizationID, req.AssignedTo)
		if err != nil {
			return err
		}
		created, err = tx.Tasks.Create(ctx, &models.Task{
			OrganizationID: req.OrganizationID,
			Text:           text,
			DueDate:        civil(req.DueDate),
			Time:           clock,
			AssignedTo:     assignees,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishTaskEvent(req.OrganizationID, created.ID)
	return created, nil
}

// UpdateTask changes the text, date, time or assignees of a task
func (s *service) UpdateTask(ctx context.Context, req UpdateTaskRequest) (*models.Task, error) {
	if req.ID <= 0 {
		return nil, ErrInvalidTaskID
	}

	var updated *models.Task
	err := s.store.InTx(ctx, func(tx *database.Store) error {
		t, err := tx.Tasks.GetByID(ctx, req.OrganizationID, req.ID)
		if err != nil {
			return lookupError(err)
		}

		if req.Text != nil {
			if t.Text, err = validateText(*req.Text); err != nil {
				return err
			}
		}
		if req.DueDate != nil {
			if req.DueDate.IsZero() {
				return ErrMissingDueDate
			}
			t.DueDate = civil(*req.DueDate)
		}
		if req.Time != nil {
			if t.Time, err = validateTime(*req.Time); err != nil {
				return err
			}
		}
		if err := tx.Tasks.Update(ctx, t); err != nil {
			return err
		}

		if req.AssignedTo != nil {
			assignees, err := checkAssignees(ctx, tx, req.OrganizationID, *req.AssignedTo)
			if err != nil {
				return err
			}
			if err := tx.Tasks.SetAssignees(ctx, t.ID, assignees); err != nil {
				return err
			}
		}

		updated, err = tx.Tasks.GetByID(ctx, req.OrganizationID, req.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishTaskEvent(req.OrganizationID, req.ID)
	return updated, nil
}

// ToggleTask flips the completion flag
func (s *service) ToggleTask(ctx context.Context, orgID, id int) (*models.Task, error) {
	if id <= 0 {
		return nil, ErrInvalidTaskID
	}

	var toggled *models.Task
	err := s.store.InTx(ctx, func(tx *database.Store) error {
		t, err := tx.Tasks.GetByID(ctx, orgID, id)
		if err != nil {
			return lookupError(err)
		}
		if err := tx.Tasks.SetCompleted(ctx, orgID, id, !t.IsCompleted); err != nil {
			return err
		}
		t.IsCompleted = !t.IsCompleted
		toggled = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishTaskEvent(orgID, id)
	return toggled, nil
}

// DeleteTask deletes a task and its assignments
func (s *service) DeleteTask(ctx context.Context, orgID, id int) error {
	if id <= 0 {
		return ErrInvalidTaskID
	}
	if err := s.store.Tasks.Delete(ctx, orgID, id); err != nil {
		return lookupError(err)
	}
	s.publishTaskEvent(orgID, id)
	return nil
}

func validateText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyText
	}
	if len(text) > maxTextLength {
		return "", ErrTextTooLong
	}
	return text, nil
}

// validateTime normalizes a time of day to HH:MM
func validateTime(clock string) (string, error) {
	clock = strings.TrimSpace(clock)
	if clock == "" {
		return models.DefaultTaskTime, nil
	}
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, clock)
	}
	return t.Format("15:04"), nil
}

// checkAssignees dedupes ids and verifies each is a member of orgID
func checkAssignees(ctx context.Context, tx *database.Store, orgID int, ids []int) ([]int, error) {
	out := slices.Clone(ids)
	slices.Sort(out)
	out = slices.Compact(out)

	for _, id := range out {
		m, err := tx.Members.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return nil, fmt.Errorf("%w: %d", ErrUnknownMember, id)
			}
			return nil, err
		}
		if m.OrganizationID != orgID {
			return nil, fmt.Errorf("%w: %d", ErrUnknownMember, id)
		}
	}
	if out == nil {
		out = []int{}
	}
	return out, nil
}

func civil(t time.Time) time.Time {
	var cal workdays.Calendar
	return cal.Date(t)
}

func lookupError(err error) error {
	if errors.Is(err, models.ErrNotFound) {
		return ErrTaskNotFound
	}
	return err
}

// publishTaskEvent publishes a task change for the organization
func (s *service) publishTaskEvent(orgID, taskID int) {
	events.Publish(s.eventClient, nil, events.Event{
		Type:           events.EventDatabaseChanged,
		OrganizationID: orgID,
		Entity:         "task",
		EntityID:       taskID,
	})
}
