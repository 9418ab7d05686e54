package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/thenoetrevino/sitebook/internal/apperr"
	"github.com/thenoetrevino/sitebook/internal/services/schedule"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// ConflictResponse is returned when a schedule change needs a resolution
type ConflictResponse struct {
	Error   string                `json:"error"`
	Kind    string                `json:"kind"`
	Plan    *schedule.Plan        `json:"plan"`
	Options []schedule.Resolution `json:"options"`
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		// cross-organization access is reported as missing
		return http.StatusNotFound
	case apperr.KindTooLarge:
		return http.StatusRequestEntityTooLarge
	case apperr.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg, ok := he.Message.(string)
		if !ok {
			msg = http.StatusText(he.Code)
		}
		s.respond(c, he.Code, ErrorResponse{Error: msg, Kind: kindForStatus(he.Code)})
		return
	}

	var conflict *schedule.ConflictError
	if errors.As(err, &conflict) {
		s.respond(c, http.StatusConflict, ConflictResponse{
			Error:   err.Error(),
			Kind:    apperr.KindConflict.String(),
			Plan:    conflict.Plan,
			Options: conflict.Plan.Options(),
		})
		return
	}

	kind := apperr.Classify(err)
	status := statusFor(kind)
	msg := err.Error()
	if kind == apperr.KindInternal {
		s.logger.Error("internal error", zap.Error(err), zap.String("path", c.Path()))
		msg = "internal server error"
	}
	s.respond(c, status, ErrorResponse{Error: msg, Kind: kind.String()})
}

func (s *Server) respond(c echo.Context, status int, body any) {
	var err error
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		s.logger.Warn("failed to write error response", zap.Error(err))
	}
}

func kindForStatus(code int) string {
	switch code {
	case http.StatusBadRequest:
		return apperr.KindValidation.String()
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return apperr.KindNotFound.String()
	case http.StatusUnauthorized:
		return apperr.KindUnauthenticated.String()
	case http.StatusForbidden:
		return apperr.KindForbidden.String()
	case http.StatusRequestEntityTooLarge:
		return apperr.KindTooLarge.String()
	case http.StatusTooManyRequests:
		return "rate_limited"
	default:
		return apperr.KindInternal.String()
	}
}
