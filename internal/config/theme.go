package config

// Theme holds the terminal colors used by CLI output and the conflict picker
type Theme struct {
	// Preset name ("default" or "monochrome")
	Preset string `koanf:"preset" yaml:"preset"`

	Accent string `koanf:"accent" yaml:"accent"`
	Title  string `koanf:"title" yaml:"title"`
	Subtle string `koanf:"subtle" yaml:"subtle"`
	Normal string `koanf:"normal" yaml:"normal"`

	// Schedule outcome colors
	Split  string `koanf:"split" yaml:"split"`
	Shift  string `koanf:"shift" yaml:"shift"`
	Ignore string `koanf:"ignore" yaml:"ignore"`

	Warning string `koanf:"warning" yaml:"warning"`
	Error   string `koanf:"error" yaml:"error"`
}

// DefaultTheme is the purple accent theme
func DefaultTheme() Theme {
	return Theme{
		Preset:  "default",
		Accent:  "#874BFD",
		Title:   "#D75FD7",
		Subtle:  "#585858",
		Normal:  "#D0D0D0",
		Split:   "#5F87D7",
		Shift:   "#FFD700",
		Ignore:  "#585858",
		Warning: "#FFD700",
		Error:   "#FF0000",
	}
}

// MonochromeTheme returns a black and white theme
func MonochromeTheme() Theme {
	return Theme{
		Preset:  "monochrome",
		Accent:  "#FFFFFF",
		Title:   "#FFFFFF",
		Subtle:  "#585858",
		Normal:  "#D0D0D0",
		Split:   "#FFFFFF",
		Shift:   "#FFFFFF",
		Ignore:  "#585858",
		Warning: "#FFFFFF",
		Error:   "#FFFFFF",
	}
}

// ThemePreset returns a preset by name; unknown names get the default
func ThemePreset(name string) Theme {
	if name == "monochrome" {
		return MonochromeTheme()
	}
	return DefaultTheme()
}

// ApplyDefaults fills empty colors from the selected preset
func (t *Theme) ApplyDefaults() {
	preset := ThemePreset(t.Preset)
	if t.Preset == "" {
		t.Preset = preset.Preset
	}
	for _, f := range []struct {
		dst *string
		src string
	}{
		{&t.Accent, preset.Accent},
		{&t.Title, preset.Title},
		{&t.Subtle, preset.Subtle},
		{&t.Normal, preset.Normal},
		{&t.Split, preset.Split},
		{&t.Shift, preset.Shift},
		{&t.Ignore, preset.Ignore},
		{&t.Warning, preset.Warning},
		{&t.Error, preset.Error},
	} {
		if *f.dst == "" {
			*f.dst = f.src
		}
	}
}
