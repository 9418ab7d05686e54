// Package picker is the interactive chooser shown when new project dates
// collide with scheduled work.
package picker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/thenoetrevino/sitebook/internal/models"
	"github.com/thenoetrevino/sitebook/internal/services/schedule"
	"github.com/thenoetrevino/sitebook/internal/tui/notifications"
	"github.com/thenoetrevino/sitebook/internal/tui/theme"
)

// ErrCancelled is returned by Run when the operator backs out
var ErrCancelled = errors.New("schedule change cancelled")

// Model lists the resolutions a conflict plan allows
type Model struct {
	plan      *schedule.Plan
	options   []schedule.Resolution
	cursor    int
	choice    schedule.Resolution
	done      bool
	cancelled bool

	keys keyMap
}

// New creates a picker for plan. A plan without conflicts has no options.
func New(plan *schedule.Plan) Model {
	return Model{
		plan:    plan,
		options: plan.Options(),
		keys:    defaultKeys,
	}
}

// Choice returns the selected resolution once the picker has finished
func (m Model) Choice() (schedule.Resolution, bool) {
	return m.choice, m.done && !m.cancelled
}

// Cancelled reports whether the operator backed out
func (m Model) Cancelled() bool {
	return m.cancelled
}

// Cursor returns the highlighted option
func (m Model) Cursor() schedule.Resolution {
	if len(m.options) == 0 {
		return schedule.ResolveNone
	}
	return m.options[m.cursor]
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch {
		case key.Matches(msg, m.keys.Cancel):
			m.cancelled = true
			m.done = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.options)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Choose):
			if len(m.options) == 0 {
				m.cancelled = true
			} else {
				m.choice = m.options[m.cursor]
			}
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) View() tea.View {
	var view tea.View
	view.Content = m.render()
	return view
}

func (m Model) render() string {
	if m.done {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Title)).Bold(true)
	subtle := lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Subtle))

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Project %d: %s", m.plan.ProjectID, FormatRange(m.plan.Candidate))))
	b.WriteString("\n")
	b.WriteString(notifications.RenderInline(notifications.Warning,
		fmt.Sprintf("overlaps %d scheduled project(s)", len(m.plan.Conflicts))))
	b.WriteString("\n")
	for _, p := range m.plan.Conflicts {
		b.WriteString(subtle.Render("  " + describeProject(p)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for i, opt := range m.options {
		cursor := "  "
		label := lipgloss.NewStyle().Foreground(lipgloss.Color(optionColor(opt)))
		if i == m.cursor {
			cursor = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Accent)).Render("> ")
			label = label.Bold(true)
		}
		b.WriteString(cursor + label.Render(string(opt)) + "  " + m.summary(opt) + "\n")
		if i == m.cursor {
			for _, line := range m.preview(opt) {
				b.WriteString(subtle.Render("    "+line) + "\n")
			}
		}
	}

	b.WriteString("\n" + subtle.Render(m.keys.helpLine()))
	return b.String()
}

func (m Model) summary(opt schedule.Resolution) string {
	switch opt {
	case schedule.ResolveSplit:
		return "cut the surrounding project around these dates"
	case schedule.ResolveShift:
		return fmt.Sprintf("push later projects %d working day(s)", m.plan.ShiftDays)
	case schedule.ResolveIgnore:
		return "save with the overlap"
	default:
		return ""
	}
}

// preview lists the date changes opt would make
func (m Model) preview(opt schedule.Resolution) []string {
	var moves []schedule.Move
	switch opt {
	case schedule.ResolveSplit:
		if m.plan.Split != nil {
			moves = []schedule.Move{*m.plan.Split}
		}
	case schedule.ResolveShift:
		moves = m.plan.Shift
	}
	lines := make([]string, 0, len(moves))
	for _, mv := range moves {
		lines = append(lines, DescribeMove(mv))
	}
	return lines
}

func optionColor(opt schedule.Resolution) string {
	switch opt {
	case schedule.ResolveSplit:
		return theme.Split
	case schedule.ResolveShift:
		return theme.Shift
	default:
		return theme.Ignore
	}
}

// FormatRange renders a date range for people, e.g. "Mon Nov 2 to Thu Nov 5"
func FormatRange(r models.DateRange) string {
	if !r.IsSet() {
		return "unscheduled"
	}
	if r.Start.Equal(r.End) {
		return r.Start.Format("Mon Jan 2")
	}
	return r.Start.Format("Mon Jan 2") + " to " + r.End.Format("Mon Jan 2")
}

func formatRanges(primary models.DateRange, secondary *models.DateRange) string {
	s := FormatRange(primary)
	if secondary != nil {
		s += ", " + FormatRange(*secondary)
	}
	return s
}

func describeProject(p *models.Project) string {
	name := p.ClientName
	if name == "" {
		name = fmt.Sprintf("project %d", p.ID)
	}
	return name + ": " + formatRanges(p.Primary, p.Secondary)
}

// DescribeMove renders one project's before and after dates on a line
func DescribeMove(mv schedule.Move) string {
	name := mv.ClientName
	if name == "" {
		name = fmt.Sprintf("project %d", mv.ProjectID)
	}
	return fmt.Sprintf("%s: %s  =>  %s", name,
		formatRanges(mv.Before, mv.BeforeSecondary),
		formatRanges(mv.After, mv.AfterSecondary))
}

// Run shows the picker on in/out and returns the chosen resolution, or
// ErrCancelled
func Run(ctx context.Context, plan *schedule.Plan, in io.Reader, out io.Writer) (schedule.Resolution, error) {
	if !plan.HasConflict() {
		return schedule.ResolveNone, nil
	}
	p := tea.NewProgram(New(plan), tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("conflict picker: %w", err)
	}
	choice, ok := final.(Model).Choice()
	if !ok {
		return "", ErrCancelled
	}
	return choice, nil
}
