package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/thenoetrevino/sitebook/internal/cli/styles"
	"github.com/thenoetrevino/sitebook/internal/models"
	"github.com/thenoetrevino/sitebook/internal/services/schedule"
	"github.com/thenoetrevino/sitebook/internal/tui/picker"
	"github.com/thenoetrevino/sitebook/internal/workdays"
)

// DescribeDates renders the primary range of p and its second segment
func DescribeDates(p *models.Project) string {
	s := styles.Range(p.Primary)
	if p.Secondary != nil {
		s += " + " + styles.Range(*p.Secondary)
	}
	return s
}

// Countdown tells how many working days remain before p starts, or before it
// ends once it is under way. Finished projects get an empty string.
func Countdown(cal *workdays.Calendar, today time.Time, p *models.Project) string {
	if !p.Primary.IsSet() {
		return ""
	}
	end := p.Primary.End
	if p.Secondary != nil {
		end = p.Secondary.End
	}
	switch {
	case p.Primary.Start.After(today):
		return fmt.Sprintf("starts in %s", workingDays(cal.Between(today, p.Primary.Start)))
	case !end.Before(today):
		return fmt.Sprintf("%s left", workingDays(cal.Duration(today, end)))
	}
	return ""
}

func workingDays(n int) string {
	if n == 1 {
		return "1 working day"
	}
	return fmt.Sprintf("%d working days", n)
}

// WritePlan lists the conflicting projects of plan and what each resolution
// would change
func WritePlan(w io.Writer, plan *schedule.Plan) error {
	if !plan.HasConflict() {
		_, err := fmt.Fprintf(w, "✓ %s is free\n", picker.FormatRange(plan.Candidate))
		return err
	}
	fmt.Fprintf(w, "%s %s overlaps %d project(s):\n",
		styles.WarningStyle.Render("!"), picker.FormatRange(plan.Candidate), len(plan.Conflicts))
	for _, p := range plan.Conflicts {
		fmt.Fprintf(w, "    %s: %s\n", p.ClientName, DescribeDates(p))
	}
	if plan.Split != nil {
		fmt.Fprintf(w, "  split:  %s\n", picker.DescribeMove(*plan.Split))
	}
	for i, mv := range plan.Shift {
		prefix := "         "
		if i == 0 {
			prefix = fmt.Sprintf("  shift (%d days): ", plan.ShiftDays)
		}
		fmt.Fprintf(w, "%s%s\n", prefix, picker.DescribeMove(mv))
	}
	_, err := fmt.Fprintln(w, "  ignore: keep the overlap")
	return err
}
