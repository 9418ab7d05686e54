// Package styles renders human readable CLI output.
package styles

import (
	"fmt"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/dustin/go-humanize"
	"github.com/thenoetrevino/sitebook/internal/config"
	"github.com/thenoetrevino/sitebook/internal/models"
)

var (
	// Card styles
	CardStyle lipgloss.Style
	CardWidth = 80

	// Text styles
	TitleStyle    lipgloss.Style
	SubtitleStyle lipgloss.Style
	LabelStyle    lipgloss.Style // For field labels like "Phone:", "Dates:"
	ValueStyle    lipgloss.Style
	SectionStyle  lipgloss.Style

	// Status styles
	SuccessStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	WarningStyle lipgloss.Style
)

func init() {
	Init(config.DefaultTheme())
}

// Init initializes all CLI styles with the given theme
func Init(t config.Theme) {
	t.ApplyDefaults()

	CardStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(t.Accent)).
		Padding(1, 2).
		Width(CardWidth)

	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(t.Title))

	SubtitleStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.Subtle))

	LabelStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(t.Accent))

	ValueStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.Normal))

	SectionStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.Accent)).
		Bold(true).
		MarginTop(1)

	SuccessStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(t.Accent))

	ErrorStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(t.Error))

	WarningStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(t.Warning))
}

// Money renders an amount with thousands separators and two decimals
func Money(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return sign + "$" + humanize.FormatFloat("#,###.##", amount)
}

// Day renders a civil date, adding how far it is from now when now is set
func Day(d, now time.Time) string {
	if d.IsZero() {
		return "-"
	}
	s := d.Format("Mon Jan 2, 2006")
	if now.IsZero() {
		return s
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if d.Equal(today) {
		return s + " (today)"
	}
	return s + " (" + humanize.RelTime(d, today, "ago", "from now") + ")"
}

// Range renders a date range
func Range(r models.DateRange) string {
	if !r.IsSet() {
		return "unscheduled"
	}
	return fmt.Sprintf("%s to %s", r.Start.Format("Mon Jan 2"), r.End.Format("Mon Jan 2, 2006"))
}

// Status renders a client status with a color per lifecycle stage
func Status(s models.Status) string {
	switch s {
	case models.StatusCompleted:
		return SubtitleStyle.Render(string(s))
	case models.StatusInProgress:
		return SuccessStyle.Render(string(s))
	case models.StatusSigned:
		return LabelStyle.Render(string(s))
	default:
		return WarningStyle.Render(string(s))
	}
}

// Field renders "Label: value"
func Field(label, value string) string {
	return LabelStyle.Render(label+":") + " " + ValueStyle.Render(value)
}

// ColoredText renders text with a hex color
func ColoredText(text, hexColor string) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(hexColor)).
		Render(text)
}

// RenderCard wraps content in a styled card border
func RenderCard(content string) string {
	return CardStyle.Render(content)
}
