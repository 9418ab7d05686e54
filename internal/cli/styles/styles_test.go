package styles

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/thenoetrevino/sitebook/internal/models"
)

func TestMoney(t *testing.T) {
	assert.Equal(t, "$1,234.50", Money(1234.5))
	assert.Equal(t, "$0.00", Money(0))
	assert.Equal(t, "-$12.00", Money(-12))
}

func TestDay(t *testing.T) {
	d := time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "-", Day(time.Time{}, time.Time{}))
	assert.Equal(t, "Mon Nov 2, 2026", Day(d, time.Time{}))
	assert.Equal(t, "Mon Nov 2, 2026 (today)", Day(d, d.Add(9*time.Hour)))
	assert.Contains(t, Day(d, time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)), "from now")
}

func TestRange(t *testing.T) {
	assert.Equal(t, "unscheduled", Range(models.DateRange{}))
	r := models.DateRange{
		Start: time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 11, 5, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, "Mon Nov 2 to Thu Nov 5, 2026", Range(r))
}
