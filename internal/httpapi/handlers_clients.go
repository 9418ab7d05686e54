package httpapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/thenoetrevino/sitebook/internal/apperr"
	"github.com/thenoetrevino/sitebook/internal/models"
	"github.com/thenoetrevino/sitebook/internal/services/client"
	"github.com/thenoetrevino/sitebook/internal/services/project"
	"github.com/thenoetrevino/sitebook/internal/services/schedule"
)

type createClientBody struct {
	FullName    string  `json:"full_name"`
	Phone       string  `json:"phone"`
	Email       string  `json:"email"`
	Address     string  `json:"address"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

type updateClientBody struct {
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
	Address  *string `json:"address"`
}

func (s *Server) handleListClients(c echo.Context) error {
	var status models.Status
	if raw := c.QueryParam("status"); raw != "" {
		st, err := models.ParseStatus(raw)
		if err != nil {
			return fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
		}
		status = st
	}
	clients, err := s.app.Clients.ListClients(c.Request().Context(), orgID(c), status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, clients)
}

func (s *Server) handleStatusCounts(c echo.Context) error {
	counts, err := s.app.Clients.StatusCounts(c.Request().Context(), orgID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, counts)
}

func (s *Server) handleCreateClient(c echo.Context) error {
	var body createClientBody
	if err := bind(c, &body); err != nil {
		return err
	}
	created, err := s.app.Clients.CreateClient(c.Request().Context(), client.CreateClientRequest{
		OrganizationID: orgID(c),
		FullName:       body.FullName,
		Phone:          body.Phone,
		Email:          body.Email,
		Address:        body.Address,
		Description:    body.Description,
		Price:          body.Price,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

func (s *Server) handleGetClient(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	found, err := s.app.Clients.GetClient(c.Request().Context(), orgID(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, found)
}

func (s *Server) handleUpdateClient(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var body updateClientBody
	if err := bind(c, &body); err != nil {
		return err
	}
	ctx := c.Request().Context()
	err = s.app.Clients.UpdateClient(ctx, client.UpdateClientRequest{
		OrganizationID: orgID(c),
		ID:             id,
		FullName:       body.FullName,
		Phone:          body.Phone,
		Email:          body.Email,
		Address:        body.Address,
	})
	if err != nil {
		return err
	}
	updated, err := s.app.Clients.GetClient(ctx, orgID(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

func (s *Server) handleDeleteClient(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := s.app.Clients.DeleteClient(c.Request().Context(), orgID(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleCompleteClient(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err := s.app.Clients.Complete(ctx, orgID(c), id); err != nil {
		return err
	}
	done, err := s.app.Clients.GetClient(ctx, orgID(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, done)
}

type updateProjectBody struct {
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
}

func (s *Server) handleGetProject(c echo.Context) error {
	clientID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	p, err := s.app.Projects.GetByClient(c.Request().Context(), orgID(c), clientID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) handleUpdateProject(c echo.Context) error {
	clientID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var body updateProjectBody
	if err := bind(c, &body); err != nil {
		return err
	}
	ctx := c.Request().Context()
	p, err := s.app.Projects.GetByClient(ctx, orgID(c), clientID)
	if err != nil {
		return err
	}
	err = s.app.Projects.UpdateDetails(ctx, project.UpdateDetailsRequest{
		OrganizationID: orgID(c),
		ID:             p.ID,
		Description:    body.Description,
		Price:          body.Price,
	})
	if err != nil {
		return err
	}
	p, err = s.app.Projects.GetProject(ctx, orgID(c), p.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) handleListScheduled(c echo.Context) error {
	projects, err := s.app.Projects.ListScheduled(c.Request().Context(), orgID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, projects)
}

// scheduleBody is the candidate date set for a project
type scheduleBody struct {
	Primary    rangeBody  `json:"primary"`
	Secondary  *rangeBody `json:"secondary"`
	Resolution string     `json:"resolution"`
}

func (s *Server) scheduleRequest(c echo.Context) (schedule.Request, schedule.Resolution, error) {
	id, err := pathID(c, "id")
	if err != nil {
		return schedule.Request{}, "", err
	}
	var body scheduleBody
	if err := bind(c, &body); err != nil {
		return schedule.Request{}, "", err
	}
	primary, err := body.Primary.parse("primary")
	if err != nil {
		return schedule.Request{}, "", err
	}
	req := schedule.Request{OrganizationID: orgID(c), ProjectID: id, Primary: primary}
	if body.Secondary != nil {
		secondary, err := body.Secondary.parse("secondary")
		if err != nil {
			return schedule.Request{}, "", err
		}
		req.Secondary = &secondary
	}
	res, err := schedule.ParseResolution(body.Resolution)
	if err != nil {
		return schedule.Request{}, "", err
	}
	return req, res, nil
}

func (s *Server) handleCheckSchedule(c echo.Context) error {
	req, _, err := s.scheduleRequest(c)
	if err != nil {
		return err
	}
	plan, err := s.app.Schedule.Check(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, struct {
		*schedule.Plan
		Options []schedule.Resolution `json:"options"`
	}{plan, plan.Options()})
}

// handleSchedule commits new dates. Without a resolution a conflicting
// change is refused with 409 and the plan the caller must choose from.
func (s *Server) handleSchedule(c echo.Context) error {
	req, res, err := s.scheduleRequest(c)
	if err != nil {
		return err
	}
	result, err := s.app.Schedule.Schedule(c.Request().Context(), req, res)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}
