package theme

import "github.com/thenoetrevino/sitebook/internal/config"

// Colors holds the current theme colors, initialized by Init
var (
	Accent  string
	Title   string
	Subtle  string
	Normal  string
	Split   string
	Shift   string
	Ignore  string
	Warning string
	Error   string
)

func init() {
	Init(config.DefaultTheme())
}

// Init initializes the theme colors from the configured theme. Empty colors
// fall back to the theme's preset.
func Init(t config.Theme) {
	t.ApplyDefaults()
	Accent = t.Accent
	Title = t.Title
	Subtle = t.Subtle
	Normal = t.Normal
	Split = t.Split
	Shift = t.Shift
	Ignore = t.Ignore
	Warning = t.Warning
	Error = t.Error
}
