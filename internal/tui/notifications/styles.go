package notifications

import "github.com/thenoetrevino/sitebook/internal/tui/theme"

// Severity selects the icon, title and color of a notification
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

type style struct {
	icon       string
	title      string
	foreground string
}

func (s Severity) style() style {
	switch s {
	case Warning:
		return style{icon: "⚠", title: "Warning", foreground: theme.Warning}
	case Error:
		return style{icon: "✕", title: "Error", foreground: theme.Error}
	default:
		return style{icon: "•", title: "Info", foreground: theme.Accent}
	}
}

// String returns the notification title for s
func (s Severity) String() string {
	return s.style().title
}
