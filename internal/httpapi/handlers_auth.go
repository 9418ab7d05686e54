package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/thenoetrevino/sitebook/internal/session"
)

type registerBody struct {
	Email            string `json:"email"`
	Password         string `json:"password"`
	FullName         string `json:"full_name"`
	OrganizationName string `json:"organization_name"`
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(c echo.Context) error {
	var body registerBody
	if err := bind(c, &body); err != nil {
		return err
	}
	member, err := s.app.Sessions.Register(c.Request().Context(), session.RegisterRequest{
		Email:            body.Email,
		Password:         body.Password,
		FullName:         body.FullName,
		OrganizationName: body.OrganizationName,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, member)
}

// handleLogin signs in. A profile that fails to load still yields a session
// in the error state, which the client may retry through /session/reload.
func (s *Server) handleLogin(c echo.Context) error {
	var body loginBody
	if err := bind(c, &body); err != nil {
		return err
	}
	sess, err := s.app.Sessions.SignIn(c.Request().Context(), body.Email, body.Password)
	s.observeLogin(sess, err)
	if err != nil {
		if sess != nil && sess.State == session.StateError {
			return c.JSON(http.StatusAccepted, sess)
		}
		return err
	}
	return c.JSON(http.StatusOK, sess)
}

func (s *Server) observeLogin(sess *session.Session, err error) {
	if s.app.Metrics == nil {
		return
	}
	switch {
	case err == nil:
		s.app.Metrics.ObserveLogin("ok")
	case errors.Is(err, session.ErrInvalidCredentials):
		s.app.Metrics.ObserveLogin("invalid")
	case sess != nil && sess.State == session.StateError:
		s.app.Metrics.ObserveLogin("degraded")
	default:
		s.app.Metrics.ObserveLogin("error")
	}
}

func (s *Server) handleReload(c echo.Context) error {
	token := bearerToken(c.Request())
	if token == "" {
		return session.ErrUnauthenticated
	}
	sess, err := s.app.Sessions.Reload(c.Request().Context(), token)
	if err != nil {
		if sess != nil && sess.State == session.StateError {
			return c.JSON(http.StatusAccepted, sess)
		}
		return err
	}
	return c.JSON(http.StatusOK, sess)
}

func (s *Server) handleLogout(c echo.Context) error {
	s.app.Sessions.SignOut(currentSession(c).Token)
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleSession(c echo.Context) error {
	return c.JSON(http.StatusOK, currentSession(c))
}
