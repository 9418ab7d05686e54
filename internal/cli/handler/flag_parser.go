package handler

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/sitebook/internal/apperr"
	"github.com/thenoetrevino/sitebook/internal/models"
	"github.com/thenoetrevino/sitebook/internal/workdays"
)

// FlagParser provides common flag extraction patterns. Every failure wraps
// apperr.ErrInvalidInput so it is reported as a validation error.
type FlagParser struct {
	cmd *cobra.Command
}

// NewFlagParser creates a new flag parser
func NewFlagParser(cmd *cobra.Command) *FlagParser {
	return &FlagParser{cmd: cmd}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", apperr.ErrInvalidInput, fmt.Sprintf(format, args...))
}

// ParseID extracts a required positive id flag
func (p *FlagParser) ParseID(flagName string) (int, error) {
	id, err := p.cmd.Flags().GetInt(flagName)
	if err != nil {
		return 0, invalid("failed to parse %s flag: %v", flagName, err)
	}
	if id <= 0 {
		return 0, invalid("%s must be greater than 0", flagName)
	}
	return id, nil
}

// ParseString extracts a required string flag
func (p *FlagParser) ParseString(flagName string) (string, error) {
	value, err := p.cmd.Flags().GetString(flagName)
	if err != nil {
		return "", invalid("failed to parse %s flag: %v", flagName, err)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", invalid("%s is required", flagName)
	}
	return value, nil
}

// StringIfChanged returns a pointer to the flag value when it was set
func (p *FlagParser) StringIfChanged(flagName string) *string {
	if !p.cmd.Flags().Changed(flagName) {
		return nil
	}
	v, _ := p.cmd.Flags().GetString(flagName)
	return &v
}

// IntIfChanged returns a pointer to the flag value when it was set
func (p *FlagParser) IntIfChanged(flagName string) *int {
	if !p.cmd.Flags().Changed(flagName) {
		return nil
	}
	v, _ := p.cmd.Flags().GetInt(flagName)
	return &v
}

// Float64IfChanged returns a pointer to the flag value when it was set
func (p *FlagParser) Float64IfChanged(flagName string) *float64 {
	if !p.cmd.Flags().Changed(flagName) {
		return nil
	}
	v, _ := p.cmd.Flags().GetFloat64(flagName)
	return &v
}

// ParseDate extracts a required YYYY-MM-DD flag
func (p *FlagParser) ParseDate(flagName string) (time.Time, error) {
	raw, err := p.ParseString(flagName)
	if err != nil {
		return time.Time{}, err
	}
	d, err := workdays.ParseDate(raw)
	if err != nil {
		return time.Time{}, invalid("%s: %v", flagName, err)
	}
	return d, nil
}

// ParseRange extracts a required range from a start and an end flag
func (p *FlagParser) ParseRange(startFlag, endFlag string) (models.DateRange, error) {
	start, err := p.ParseDate(startFlag)
	if err != nil {
		return models.DateRange{}, err
	}
	end, err := p.ParseDate(endFlag)
	if err != nil {
		return models.DateRange{}, err
	}
	return models.DateRange{Start: start, End: end}, nil
}

// ParseRangeOptional returns nil when neither flag was set and an error
// when only one was
func (p *FlagParser) ParseRangeOptional(startFlag, endFlag string) (*models.DateRange, error) {
	startSet := p.cmd.Flags().Changed(startFlag)
	endSet := p.cmd.Flags().Changed(endFlag)
	switch {
	case !startSet && !endSet:
		return nil, nil
	case startSet != endSet:
		return nil, invalid("%s and %s must be given together", startFlag, endFlag)
	}
	r, err := p.ParseRange(startFlag, endFlag)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
