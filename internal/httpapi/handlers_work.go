package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/thenoetrevino/sitebook/internal/services/contract"
	"github.com/thenoetrevino/sitebook/internal/services/cost"
)

type saveContractBody struct {
	Terms []string `json:"terms"`
	Price *float64 `json:"price"`
	Notes string   `json:"notes"`
}

type signContractBody struct {
	Signer string `json:"signer"`
}

type termBody struct {
	Content   string `json:"content"`
	IsDefault bool   `json:"is_default"`
}

func (s *Server) handleGetContract(c echo.Context) error {
	clientID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ct, err := s.app.Contracts.Get(c.Request().Context(), orgID(c), clientID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ct)
}

func (s *Server) handleSaveContract(c echo.Context) error {
	clientID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var body saveContractBody
	if err := bind(c, &body); err != nil {
		return err
	}
	ct, err := s.app.Contracts.SaveDraft(c.Request().Context(), contract.SaveDraftRequest{
		OrganizationID: orgID(c),
		ClientID:       clientID,
		Terms:          body.Terms,
		Price:          body.Price,
		Notes:          body.Notes,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ct)
}

// handleSignContract signs as the named signer, defaulting to the member
func (s *Server) handleSignContract(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var body signContractBody
	if err := bind(c, &body); err != nil {
		return err
	}
	if body.Signer == "" {
		body.Signer = currentSession(c).FullName
	}
	ct, err := s.app.Contracts.Sign(c.Request().Context(), orgID(c), id, body.Signer)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ct)
}

func (s *Server) handleListTerms(c echo.Context) error {
	terms, err := s.app.Contracts.ListTerms(c.Request().Context(), orgID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, terms)
}

func (s *Server) handleAddTerm(c echo.Context) error {
	var body termBody
	if err := bind(c, &body); err != nil {
		return err
	}
	term, err := s.app.Contracts.AddTerm(c.Request().Context(), orgID(c), body.Content, body.IsDefault)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, term)
}

func (s *Server) handleDeleteTerm(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := s.app.Contracts.DeleteTerm(c.Request().Context(), orgID(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

type addCostBody struct {
	Title  string  `json:"title"`
	Amount float64 `json:"amount"`
	Payer  string  `json:"payer"`
}

func (s *Server) handleListCosts(c echo.Context) error {
	clientID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	costs, err := s.app.Costs.ListCosts(c.Request().Context(), orgID(c), clientID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, costs)
}

func (s *Server) handleAddCost(c echo.Context) error {
	clientID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var body addCostBody
	if err := bind(c, &body); err != nil {
		return err
	}
	entry, err := s.app.Costs.AddCost(c.Request().Context(), cost.AddCostRequest{
		OrganizationID: orgID(c),
		ClientID:       clientID,
		Title:          body.Title,
		Amount:         body.Amount,
		Payer:          body.Payer,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, entry)
}

func (s *Server) handleCostSummary(c echo.Context) error {
	clientID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	sum, err := s.app.Costs.Summary(c.Request().Context(), orgID(c), clientID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sum)
}

func (s *Server) handleDeleteCost(c echo.Context) error {
	clientID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	id, err := pathID(c, "costID")
	if err != nil {
		return err
	}
	if err := s.app.Costs.DeleteCost(c.Request().Context(), orgID(c), clientID, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

type targetBody struct {
	Text string `json:"text"`
}

func (s *Server) handleListTargets(c echo.Context) error {
	clientID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	list, err := s.app.Targets.ListTargets(c.Request().Context(), orgID(c), clientID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, struct {
		Targets   any     `json:"targets"`
		Completed int     `json:"completed"`
		Total     int     `json:"total"`
		Progress  float64 `json:"progress"`
	}{list.Targets, list.Completed, list.Total, list.Progress()})
}

func (s *Server) handleAddTarget(c echo.Context) error {
	clientID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var body targetBody
	if err := bind(c, &body); err != nil {
		return err
	}
	t, err := s.app.Targets.AddTarget(c.Request().Context(), orgID(c), clientID, body.Text)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, t)
}

func (s *Server) handleToggleTarget(c echo.Context) error {
	clientID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	id, err := pathID(c, "targetID")
	if err != nil {
		return err
	}
	t, err := s.app.Targets.ToggleTarget(c.Request().Context(), orgID(c), clientID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

func (s *Server) handleDeleteTarget(c echo.Context) error {
	clientID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	id, err := pathID(c, "targetID")
	if err != nil {
		return err
	}
	if err := s.app.Targets.DeleteTarget(c.Request().Context(), orgID(c), clientID, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
