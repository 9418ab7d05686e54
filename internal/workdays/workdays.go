// Package workdays implements date arithmetic that skips an organization's
// weekend days.
package workdays

import (
	"fmt"
	"strings"
	"time"

	"github.com/thenoetrevino/sitebook/internal/models"
)

// DefaultWeekend is Friday and Saturday
var DefaultWeekend = []time.Weekday{time.Friday, time.Saturday}

// Calendar knows which weekdays are not worked. Civil dates are represented as
// UTC midnights; the location only decides which day "today" is. The zero value
// treats every day as a working day; use New for a configured calendar.
type Calendar struct {
	weekend [7]bool
	loc     *time.Location
}

// New builds a calendar with the given weekend days in UTC
func New(weekend ...time.Weekday) *Calendar {
	c := &Calendar{loc: time.UTC}
	for _, d := range weekend {
		c.weekend[d] = true
	}
	return c
}

// Default returns the Friday/Saturday calendar
func Default() *Calendar {
	return New(DefaultWeekend...)
}

// In returns a copy of the calendar whose current day is taken in loc
func (c *Calendar) In(loc *time.Location) *Calendar {
	if loc == nil {
		loc = time.UTC
	}
	cp := *c
	cp.loc = loc
	return &cp
}

// Location returns the calendar's time zone
func (c *Calendar) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

// Weekend returns the configured weekend days in weekday order
func (c *Calendar) Weekend() []time.Weekday {
	var days []time.Weekday
	for d, off := range c.weekend {
		if off {
			days = append(days, time.Weekday(d))
		}
	}
	return days
}

// Date truncates t to the UTC midnight of the calendar day t is expressed in
func (c *Calendar) Date(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the civil date of now in the calendar's location
func (c *Calendar) Today(now time.Time) time.Time {
	return c.Date(now.In(c.Location()))
}

// IsWorkDay reports whether d is not a weekend day
func (c *Calendar) IsWorkDay(d time.Time) bool {
	return !c.weekend[c.Date(d).Weekday()]
}

// AddWorkDays steps forward from d until n working days have been passed.
// The start day itself is never counted; n <= 0 returns d unchanged.
func (c *Calendar) AddWorkDays(d time.Time, n int) time.Time {
	cur := c.Date(d)
	if n <= 0 || c.allWeekend() {
		return cur
	}
	for added := 0; added < n; {
		cur = cur.AddDate(0, 0, 1)
		if c.IsWorkDay(cur) {
			added++
		}
	}
	return cur
}

// SubtractWorkDays is AddWorkDays going backwards
func (c *Calendar) SubtractWorkDays(d time.Time, n int) time.Time {
	cur := c.Date(d)
	if n <= 0 || c.allWeekend() {
		return cur
	}
	for removed := 0; removed < n; {
		cur = cur.AddDate(0, 0, -1)
		if c.IsWorkDay(cur) {
			removed++
		}
	}
	return cur
}

// Duration counts the working days in [start, end], both ends included.
// A range whose start is after its end counts no days.
func (c *Calendar) Duration(start, end time.Time) int {
	cur, finish := c.Date(start), c.Date(end)
	if cur.IsZero() || finish.IsZero() || cur.After(finish) {
		return 0
	}
	count := 0
	for !cur.After(finish) {
		if c.IsWorkDay(cur) {
			count++
		}
		cur = cur.AddDate(0, 0, 1)
	}
	return count
}

// RangeDuration is Duration over a DateRange
func (c *Calendar) RangeDuration(r models.DateRange) int {
	return c.Duration(r.Start, r.End)
}

// Between counts the working days after start up to and including end.
// Equal dates give zero, and Between(d, AddWorkDays(d, n)) == n.
func (c *Calendar) Between(start, end time.Time) int {
	s := c.Date(start)
	if s.IsZero() {
		return 0
	}
	return c.Duration(s.AddDate(0, 0, 1), end)
}

func (c *Calendar) allWeekend() bool {
	for _, off := range c.weekend {
		if !off {
			return false
		}
	}
	return true
}

// ParseWeekday accepts full or three letter English day names
func ParseWeekday(s string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if name == full || name == full[:3] {
			return d, nil
		}
	}
	return 0, fmt.Errorf("invalid weekday %q", s)
}

// ParseWeekend parses a list of weekday names. An empty list yields DefaultWeekend.
func ParseWeekend(names []string) ([]time.Weekday, error) {
	if len(names) == 0 {
		return DefaultWeekend, nil
	}
	days := make([]time.Weekday, 0, len(names))
	for _, n := range names {
		d, err := ParseWeekday(n)
		if err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	if len(days) >= 7 {
		return nil, fmt.Errorf("weekend cannot cover the whole week")
	}
	return days, nil
}

// ParseDate parses a YYYY-MM-DD civil date. An empty string is the unset date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(models.DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// FormatDate renders a civil date, or "" for the unset date
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(models.DateLayout)
}
