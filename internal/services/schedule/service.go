// Package schedule places a project's work dates on the organization
// calendar and resolves overlaps with already scheduled projects.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/thenoetrevino/sitebook/internal/database"
	"github.com/thenoetrevino/sitebook/internal/events"
	"github.com/thenoetrevino/sitebook/internal/models"
	"github.com/thenoetrevino/sitebook/internal/workdays"
	"go.uber.org/zap"
)

// Service defines the scheduling operations
type Service interface {
	// Check reports what committing req would collide with, without writing
	Check(ctx context.Context, req Request) (*Plan, error)

	// Schedule commits req. When conflicts exist and res is ResolveNone it
	// returns a *ConflictError and writes nothing.
	Schedule(ctx context.Context, req Request, res Resolution) (*Result, error)

	// Calendar returns the working-day calendar used for all arithmetic
	Calendar() *workdays.Calendar
}

// Request carries the candidate dates of one project
type Request struct {
	OrganizationID int
	ProjectID      int
	Primary        models.DateRange
	Secondary      *models.DateRange
}

// Result describes a committed schedule change
type Result struct {
	Project       *models.Project `json:"project"`
	Kind          Kind            `json:"kind"`
	Resolution    Resolution      `json:"resolution,omitempty"`
	Moved         []Move          `json:"moved,omitempty"`
	StatusChanged bool            `json:"status_changed"`
}

// Recorder receives scheduling outcomes, typically for metrics
type Recorder interface {
	ObserveSchedule(kind, resolution string)
}

// Option configures the service
type Option func(*service)

// WithClock overrides time.Now, used to decide whether work has started
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// WithLogger sets the service logger
func WithLogger(l *zap.Logger) Option {
	return func(s *service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithRecorder reports every committed outcome to r
func WithRecorder(r Recorder) Option {
	return func(s *service) { s.recorder = r }
}

type service struct {
	store       *database.Store
	cal         *workdays.Calendar
	eventClient events.EventPublisher
	recorder    Recorder
	log         *zap.Logger
	now         func() time.Time
}

// NewService creates a scheduler over store using cal for working-day math
func NewService(store *database.Store, cal *workdays.Calendar, eventClient events.EventPublisher, opts ...Option) Service {
	if cal == nil {
		cal = workdays.Default()
	}
	s := &service{
		store:       store,
		cal:         cal,
		eventClient: eventClient,
		log:         zap.NewNop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Calendar() *workdays.Calendar {
	return s.cal
}

// Check computes the conflict plan for req
func (s *service) Check(ctx context.Context, req Request) (*Plan, error) {
	req, err := s.normalize(req)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.Projects.GetByID(ctx, req.OrganizationID, req.ProjectID); err != nil {
		return nil, projectLookupError(err)
	}

	return s.buildPlan(ctx, s.store, req)
}

// Schedule commits req inside one transaction: the chosen resolution's moves,
// the candidate's own ranges, and the automatic status transition.
func (s *service) Schedule(ctx context.Context, req Request, res Resolution) (*Result, error) {
	req, err := s.normalize(req)
	if err != nil {
		return nil, err
	}
	if _, err := ParseResolution(string(res)); err != nil {
		return nil, err
	}

	result := &Result{Kind: KindNone}

	err = s.store.InTx(ctx, func(tx *database.Store) error {
		current, err := tx.Projects.GetByID(ctx, req.OrganizationID, req.ProjectID)
		if err != nil {
			return projectLookupError(err)
		}

		plan, err := s.buildPlan(ctx, tx, req)
		if err != nil {
			return err
		}
		result.Kind = plan.Kind

		if plan.HasConflict() {
			if res == ResolveNone {
				return &ConflictError{Plan: plan}
			}
			if !plan.Allows(res) {
				return ErrSplitNotApplicable
			}
			result.Resolution = res

			moves, err := s.apply(ctx, tx, req.OrganizationID, plan, res)
			if err != nil {
				return err
			}
			result.Moved = moves
		}

		if err := tx.Projects.UpdateRanges(ctx, req.OrganizationID, req.ProjectID, req.Primary, req.Secondary); err != nil {
			return fmt.Errorf("failed to save project dates: %w", err)
		}

		changed, err := s.advanceStatus(ctx, tx, current, req)
		if err != nil {
			return err
		}
		result.StatusChanged = changed

		result.Project, err = tx.Projects.GetByID(ctx, req.OrganizationID, req.ProjectID)
		return err
	})
	if err != nil {
		var conflict *ConflictError
		if !errors.As(err, &conflict) {
			s.log.Warn("schedule failed",
				zap.Int("organization_id", req.OrganizationID),
				zap.Int("project_id", req.ProjectID),
				zap.Error(err))
		}
		return nil, err
	}

	s.log.Info("project scheduled",
		zap.Int("organization_id", req.OrganizationID),
		zap.Int("project_id", req.ProjectID),
		zap.String("kind", string(result.Kind)),
		zap.String("resolution", string(result.Resolution)),
		zap.Int("moved", len(result.Moved)),
		zap.Bool("status_changed", result.StatusChanged))

	if s.recorder != nil {
		s.recorder.ObserveSchedule(string(result.Kind), string(result.Resolution))
	}
	s.publishScheduleEvent(req.OrganizationID, req.ProjectID)

	return result, nil
}

// normalize validates req and reduces all date values to civil dates
func (s *service) normalize(req Request) (Request, error) {
	if req.ProjectID <= 0 {
		return req, ErrInvalidProjectID
	}

	req.Primary = s.civil(req.Primary)
	if req.Primary.IsSet() && req.Primary.End.Before(req.Primary.Start) {
		return req, fmt.Errorf("primary range: %w", ErrInvalidRange)
	}

	if req.Secondary != nil {
		secondary := s.civil(*req.Secondary)
		switch {
		case secondary.IsEmpty():
			req.Secondary = nil
		case !secondary.IsSet():
			return req, ErrPartialSecondary
		case secondary.End.Before(secondary.Start):
			return req, fmt.Errorf("secondary range: %w", ErrInvalidRange)
		default:
			req.Secondary = &secondary
		}
	}
	return req, nil
}

func (s *service) civil(r models.DateRange) models.DateRange {
	out := models.DateRange{}
	if !r.Start.IsZero() {
		out.Start = s.cal.Date(r.Start)
	}
	if !r.End.IsZero() {
		out.End = s.cal.Date(r.End)
	}
	return out
}

// buildPlan queries overlaps and previews both resolutions. An incomplete
// primary range is never checked.
func (s *service) buildPlan(ctx context.Context, store *database.Store, req Request) (*Plan, error) {
	plan := &Plan{
		ProjectID: req.ProjectID,
		Candidate: req.Primary,
		Kind:      KindNone,
	}
	if !req.Primary.IsSet() {
		return plan, nil
	}

	conflicts, err := store.Projects.ListOverlapping(ctx, req.OrganizationID, req.ProjectID, req.Primary)
	if err != nil {
		return nil, fmt.Errorf("failed to check overlaps: %w", err)
	}
	if len(conflicts) == 0 {
		return plan, nil
	}

	plan.Conflicts = conflicts
	plan.Kind = classify(req.Primary, conflicts[0].Primary)

	if plan.Kind == KindSplit {
		m := splitMove(s.cal, conflicts[0], req.Primary)
		plan.Split = &m
	}

	plan.ShiftDays = s.cal.RangeDuration(req.Primary)
	followers, err := store.Projects.ListStartingFrom(ctx, req.OrganizationID, req.ProjectID, req.Primary.Start)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects to shift: %w", err)
	}
	for _, p := range followers {
		plan.Shift = append(plan.Shift, shiftMove(s.cal, p, plan.ShiftDays))
	}

	return plan, nil
}

// apply writes the moves of the chosen resolution
func (s *service) apply(ctx context.Context, tx *database.Store, orgID int, plan *Plan, res Resolution) ([]Move, error) {
	var moves []Move
	switch res {
	case ResolveIgnore:
		return nil, nil
	case ResolveSplit:
		moves = []Move{*plan.Split}
	case ResolveShift:
		moves = plan.Shift
	}

	for _, m := range moves {
		if err := tx.Projects.UpdateRanges(ctx, orgID, m.ProjectID, m.After, m.AfterSecondary); err != nil {
			return nil, fmt.Errorf("failed to move project %d: %w", m.ProjectID, err)
		}
	}
	return moves, nil
}

// advanceStatus moves the client to in_progress once committed work has
// started. Completed clients are left alone.
func (s *service) advanceStatus(ctx context.Context, tx *database.Store, p *models.Project, req Request) (bool, error) {
	if p.ClientStatus == models.StatusCompleted || p.ClientStatus == models.StatusInProgress {
		return false, nil
	}

	today := s.cal.Today(s.now())
	started := !req.Primary.Start.IsZero() && !req.Primary.Start.After(today)
	if req.Secondary != nil && !req.Secondary.Start.After(today) {
		started = true
	}
	if !started {
		return false, nil
	}

	if err := tx.Clients.UpdateStatus(ctx, p.OrganizationID, p.ClientID, models.StatusInProgress); err != nil {
		return false, fmt.Errorf("failed to update client status: %w", err)
	}
	return true, nil
}

func projectLookupError(err error) error {
	if errors.Is(err, models.ErrNotFound) {
		return ErrProjectNotFound
	}
	return fmt.Errorf("failed to get project: %w", err)
}

// publishScheduleEvent publishes a project change for the organization
func (s *service) publishScheduleEvent(orgID, projectID int) {
	events.Publish(s.eventClient, s.log, events.Event{
		Type:           events.EventDatabaseChanged,
		OrganizationID: orgID,
		Entity:         "project",
		EntityID:       projectID,
	})
}
