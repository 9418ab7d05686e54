package schedule

import (
	"fmt"
	"time"

	"github.com/thenoetrevino/sitebook/internal/models"
	"github.com/thenoetrevino/sitebook/internal/workdays"
)

// Kind classifies an overlap by its first conflicting project
type Kind string

const (
	KindNone  Kind = "none"
	KindSplit Kind = "split"
	KindShift Kind = "shift"
)

// Resolution is the operator's answer to a conflict
type Resolution string

const (
	ResolveNone   Resolution = ""
	ResolveSplit  Resolution = "split"
	ResolveShift  Resolution = "shift"
	ResolveIgnore Resolution = "ignore"
)

// ParseResolution validates a resolution name; "" means none chosen
func ParseResolution(s string) (Resolution, error) {
	switch r := Resolution(s); r {
	case ResolveNone, ResolveSplit, ResolveShift, ResolveIgnore:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownResolution, s)
	}
}

// Move describes the dates a project has before and after a resolution
type Move struct {
	ProjectID       int               `json:"project_id"`
	ClientID        int               `json:"client_id"`
	ClientName      string            `json:"client_name"`
	Before          models.DateRange  `json:"before"`
	BeforeSecondary *models.DateRange `json:"before_secondary,omitempty"`
	After           models.DateRange  `json:"after"`
	AfterSecondary  *models.DateRange `json:"after_secondary,omitempty"`
}

// Plan is the outcome of an overlap check, including a preview of what each
// resolution would write.
type Plan struct {
	ProjectID int               `json:"project_id"`
	Candidate models.DateRange  `json:"candidate"`
	Kind      Kind              `json:"kind"`
	Conflicts []*models.Project `json:"conflicts"`
	Split     *Move             `json:"split,omitempty"`
	Shift     []Move            `json:"shift,omitempty"`
	ShiftDays int               `json:"shift_days,omitempty"`
}

// HasConflict reports whether any project overlaps the candidate
func (p *Plan) HasConflict() bool {
	return len(p.Conflicts) > 0
}

// Allows reports whether r may be applied to this plan. Shift and ignore are
// always allowed; split only for a split conflict.
func (p *Plan) Allows(r Resolution) bool {
	switch r {
	case ResolveShift, ResolveIgnore:
		return true
	case ResolveSplit:
		return p.Kind == KindSplit
	default:
		return !p.HasConflict()
	}
}

// Options returns the resolutions the operator may choose from, split first
// when it applies.
func (p *Plan) Options() []Resolution {
	if !p.HasConflict() {
		return nil
	}
	if p.Kind == KindSplit {
		return []Resolution{ResolveSplit, ResolveShift, ResolveIgnore}
	}
	return []Resolution{ResolveShift, ResolveIgnore}
}

// classify decides between split and shift for the first conflict: split when
// the candidate sits strictly inside it, shift otherwise.
func classify(candidate, conflict models.DateRange) Kind {
	if conflict.Contains(candidate) {
		return KindSplit
	}
	return KindShift
}

// splitMove cuts the victim around the candidate. The first segment ends the
// working day before the candidate starts; the second starts the working day
// after the candidate ends and carries the remaining working days. The
// victim's old secondary range is replaced, or cleared when no days remain.
func splitMove(cal *workdays.Calendar, victim *models.Project, candidate models.DateRange) Move {
	m := newMove(victim)

	firstEnd := cal.SubtractWorkDays(candidate.Start, 1)
	if firstEnd.Before(victim.Primary.Start) {
		firstEnd = victim.Primary.Start
	}
	m.After = models.DateRange{Start: victim.Primary.Start, End: firstEnd}

	total := cal.RangeDuration(victim.Primary)
	done := cal.Duration(victim.Primary.Start, firstEnd)
	remaining := total - done
	if remaining > 0 {
		start := cal.AddWorkDays(candidate.End, 1)
		m.AfterSecondary = &models.DateRange{
			Start: start,
			End:   cal.AddWorkDays(start, remaining-1),
		}
	}
	return m
}

// shiftMove pushes a project forward by shift working days, keeping its
// working-day duration. Boundaries on days off are first snapped onto the
// working days they bound, so every working day of the project moves by
// exactly shift. A secondary range moves boundary by boundary.
func shiftMove(cal *workdays.Calendar, p *models.Project, shift int) Move {
	m := newMove(p)

	duration := cal.RangeDuration(p.Primary)
	start := cal.AddWorkDays(firstWorkDay(cal, p.Primary.Start), shift)
	m.After = models.DateRange{
		Start: start,
		End:   cal.AddWorkDays(start, max(0, duration-1)),
	}

	if p.Secondary != nil {
		moved := models.DateRange{}
		if !p.Secondary.Start.IsZero() {
			moved.Start = cal.AddWorkDays(firstWorkDay(cal, p.Secondary.Start), shift)
		}
		if !p.Secondary.End.IsZero() {
			moved.End = cal.AddWorkDays(lastWorkDay(cal, p.Secondary.End), shift)
		}
		if !moved.Start.IsZero() && !moved.End.IsZero() && moved.End.Before(moved.Start) {
			moved.End = moved.Start
		}
		m.AfterSecondary = &moved
	}
	return m
}

// firstWorkDay returns d, or the working day after it when d is a day off
func firstWorkDay(cal *workdays.Calendar, d time.Time) time.Time {
	if cal.IsWorkDay(d) {
		return cal.Date(d)
	}
	return cal.AddWorkDays(d, 1)
}

// lastWorkDay returns d, or the working day before it when d is a day off
func lastWorkDay(cal *workdays.Calendar, d time.Time) time.Time {
	if cal.IsWorkDay(d) {
		return cal.Date(d)
	}
	return cal.SubtractWorkDays(d, 1)
}

func newMove(p *models.Project) Move {
	m := Move{
		ProjectID:  p.ID,
		ClientID:   p.ClientID,
		ClientName: p.ClientName,
		Before:     p.Primary,
	}
	if p.Secondary != nil {
		s := *p.Secondary
		m.BeforeSecondary = &s
	}
	return m
}
