package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/colorprofile"
	"github.com/thenoetrevino/sitebook/internal/apperr"
	"github.com/thenoetrevino/sitebook/internal/services/schedule"
)

// OutputFormatter handles three output modes: JSON, quiet, and human-readable
type OutputFormatter struct {
	JSON  bool
	Quiet bool

	// Out and Err default to stdout and stderr
	Out io.Writer
	Err io.Writer
}

func (f *OutputFormatter) out() io.Writer {
	if f.Out == nil {
		return os.Stdout
	}
	return f.Out
}

func (f *OutputFormatter) errOut() io.Writer {
	if f.Err == nil {
		return os.Stderr
	}
	return f.Err
}

// Success outputs successful operation result
func (f *OutputFormatter) Success(data any) error {
	return f.Print(data, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "%+v\n", data)
		return err
	})
}

// Print outputs data in JSON or quiet mode and calls human otherwise
func (f *OutputFormatter) Print(data any, human func(w io.Writer) error) error {
	if f.Quiet {
		// Extract ID if possible
		if idGetter, ok := data.(interface{ GetID() int }); ok {
			_, err := fmt.Fprintf(f.out(), "%d\n", idGetter.GetID())
			return err
		}
	}

	if f.JSON {
		return json.NewEncoder(f.out()).Encode(map[string]any{
			"success": true,
			"data":    data,
		})
	}
	return human(f.human(f.out()))
}

// human wraps w so styled text is downsampled to what w supports, and plain
// when w is not a terminal
func (f *OutputFormatter) human(w io.Writer) io.Writer {
	return colorprofile.NewWriter(w, os.Environ())
}

// Error outputs error information
func (f *OutputFormatter) Error(code string, message string) error {
	return f.ErrorWithSuggestion(code, message, "")
}

// ErrorWithSuggestion outputs error information with an optional suggestion
func (f *OutputFormatter) ErrorWithSuggestion(code string, message string, suggestion string) error {
	return f.failure(code, message, suggestion, nil)
}

// failure reports an error. A conflict plan, when given, is listed after the
// message, or included as "plan" in JSON errors.
func (f *OutputFormatter) failure(code, message, suggestion string, plan *schedule.Plan) error {
	if f.JSON {
		errData := map[string]any{
			"code":    code,
			"message": message,
		}
		if suggestion != "" {
			errData["suggestion"] = suggestion
		}
		if plan != nil {
			errData["plan"] = plan
		}
		return json.NewEncoder(f.out()).Encode(map[string]any{
			"success": false,
			"error":   errData,
		})
	}

	fmt.Fprintf(f.errOut(), "❌ Error: %s\n", message)
	if plan != nil {
		if err := WritePlan(f.human(f.errOut()), plan); err != nil {
			return err
		}
	}
	if suggestion != "" {
		fmt.Fprintf(f.errOut(), "💡 Suggestion: %s\n", suggestion)
	}
	return nil
}

// Fail reports err and returns it wrapped with the matching exit code
func (f *OutputFormatter) Fail(err error) error {
	var exitErr *CodedError
	if errors.As(err, &exitErr) {
		return err
	}

	kind := apperr.Classify(err)
	suggestion := ""
	var plan *schedule.Plan
	var conflict *schedule.ConflictError
	switch {
	case errors.As(err, &conflict):
		plan = conflict.Plan
		opts := make([]string, 0, len(conflict.Plan.Options()))
		for _, o := range conflict.Plan.Options() {
			opts = append(opts, string(o))
		}
		suggestion = "rerun with --resolve " + strings.Join(opts, "|")
	case errors.Is(err, ErrNoOrganization):
		suggestion = "select one with: eval $(sitebook use org <organization-id>)"
	}

	if fmtErr := f.failure(errorCode(kind), err.Error(), suggestion, plan); fmtErr != nil {
		fmt.Fprintf(os.Stderr, "Error formatting error message: %v\n", fmtErr)
	}
	code := codeFor(kind)
	if errors.Is(err, ErrNoOrganization) {
		code = ExitUsage
	}
	return &CodedError{Code: code, Err: err}
}

// Formatter builds the formatter selected by the --json and --quiet flags
func Formatter(flags interface {
	GetBool(name string) (bool, error)
}) *OutputFormatter {
	jsonOutput, _ := flags.GetBool("json")
	quietMode, _ := flags.GetBool("quiet")
	return &OutputFormatter{JSON: jsonOutput, Quiet: quietMode}
}
