package picker

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thenoetrevino/sitebook/internal/models"
	"github.com/thenoetrevino/sitebook/internal/services/schedule"
)

func day(s string) time.Time {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func splitPlan() *schedule.Plan {
	victim := &models.Project{
		ID: 1, ClientName: "First",
		Primary: models.DateRange{Start: day("2026-11-02"), End: day("2026-11-05")},
	}
	return &schedule.Plan{
		ProjectID: 2,
		Candidate: models.DateRange{Start: day("2026-11-03"), End: day("2026-11-04")},
		Kind:      schedule.KindSplit,
		Conflicts: []*models.Project{victim},
		Split: &schedule.Move{
			ProjectID: 1, ClientName: "First",
			Before:         victim.Primary,
			After:          models.DateRange{Start: day("2026-11-02"), End: day("2026-11-02")},
			AfterSecondary: &models.DateRange{Start: day("2026-11-05"), End: day("2026-11-08")},
		},
		Shift: []schedule.Move{{
			ProjectID: 1, ClientName: "First",
			Before: victim.Primary,
			After:  models.DateRange{Start: day("2026-11-05"), End: day("2026-11-10")},
		}},
		ShiftDays: 3,
	}
}

func press(m tea.Model, keys ...tea.KeyPressMsg) tea.Model {
	for _, k := range keys {
		m, _ = m.Update(k)
	}
	return m
}

var (
	down  = tea.KeyPressMsg(tea.Key{Code: tea.KeyDown})
	up    = tea.KeyPressMsg(tea.Key{Code: tea.KeyUp})
	enter = tea.KeyPressMsg(tea.Key{Code: tea.KeyEnter})
	esc   = tea.KeyPressMsg(tea.Key{Code: tea.KeyEsc})
)

func TestModel_Navigation(t *testing.T) {
	m := New(splitPlan())
	assert.Equal(t, schedule.ResolveSplit, m.Cursor())

	m = press(m, down).(Model)
	assert.Equal(t, schedule.ResolveShift, m.Cursor())

	m = press(m, down, down, down).(Model)
	assert.Equal(t, schedule.ResolveIgnore, m.Cursor(), "cursor stops at the last option")

	m = press(m, up, up, up, up).(Model)
	assert.Equal(t, schedule.ResolveSplit, m.Cursor(), "cursor stops at the first option")
}

func TestModel_Choose(t *testing.T) {
	m := press(New(splitPlan()), down, enter).(Model)
	choice, ok := m.Choice()
	require.True(t, ok)
	assert.Equal(t, schedule.ResolveShift, choice)
	assert.Empty(t, m.View().Content)
}

func TestModel_Cancel(t *testing.T) {
	m := press(New(splitPlan()), esc).(Model)
	_, ok := m.Choice()
	assert.False(t, ok)
	assert.True(t, m.Cancelled())

	m = press(New(splitPlan()), tea.KeyPressMsg(tea.Key{Text: "q", Code: 'q'})).(Model)
	assert.True(t, m.Cancelled())
}

func TestModel_View(t *testing.T) {
	view := New(splitPlan()).View().Content
	assert.Contains(t, view, "Project 2: Tue Nov 3 to Wed Nov 4")
	assert.Contains(t, view, "First: Mon Nov 2 to Thu Nov 5")
	assert.Contains(t, view, "split")
	assert.Contains(t, view, "shift")
	assert.Contains(t, view, "ignore")
	// only the highlighted option shows its preview
	assert.Contains(t, view, "Mon Nov 2, Thu Nov 5 to Sun Nov 8")
	assert.NotContains(t, view, "Thu Nov 5 to Tue Nov 10")
	assert.Contains(t, view, "enter apply")
}

func TestDescribeMove(t *testing.T) {
	mv := splitPlan().Shift[0]
	assert.Equal(t, "First: Mon Nov 2 to Thu Nov 5  =>  Thu Nov 5 to Tue Nov 10", DescribeMove(mv))

	mv.ClientName = ""
	assert.True(t, strings.HasPrefix(DescribeMove(mv), "project 1:"))
}

func TestFormatRange(t *testing.T) {
	assert.Equal(t, "unscheduled", FormatRange(models.DateRange{}))
	assert.Equal(t, "Mon Nov 2", FormatRange(models.DateRange{Start: day("2026-11-02"), End: day("2026-11-02")}))
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	res, err := Run(ctx, &schedule.Plan{ProjectID: 1}, strings.NewReader(""), io.Discard)
	require.NoError(t, err)
	assert.Equal(t, schedule.ResolveNone, res, "no conflict needs no choice")

	res, err = Run(ctx, splitPlan(), strings.NewReader("j\r"), io.Discard)
	require.NoError(t, err)
	assert.Equal(t, schedule.ResolveShift, res)
}
