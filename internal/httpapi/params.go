package httpapi

import (
	"fmt"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/thenoetrevino/sitebook/internal/apperr"
	"github.com/thenoetrevino/sitebook/internal/models"
	"github.com/thenoetrevino/sitebook/internal/workdays"
)

func pathID(c echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", apperr.ErrInvalidInput, name)
	}
	return id, nil
}

func bind(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return fmt.Errorf("%w: malformed request body", apperr.ErrInvalidInput)
	}
	return nil
}

func parseDate(field, s string) (time.Time, error) {
	t, err := workdays.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %v", apperr.ErrInvalidInput, field, err)
	}
	return t, nil
}

// rangeBody is a date range as sent by clients, days formatted YYYY-MM-DD
type rangeBody struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (r rangeBody) parse(field string) (models.DateRange, error) {
	start, err := parseDate(field+".start", r.Start)
	if err != nil {
		return models.DateRange{}, err
	}
	end, err := parseDate(field+".end", r.End)
	if err != nil {
		return models.DateRange{}, err
	}
	return models.DateRange{Start: start, End: end}, nil
}
