package httpapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/thenoetrevino/sitebook/internal/models"
	"github.com/thenoetrevino/sitebook/internal/services/inventory"
	"github.com/thenoetrevino/sitebook/internal/services/task"
)

type createItemBody struct {
	Name        string `json:"name"`
	Supplier    string `json:"supplier"`
	Quantity    int    `json:"quantity"`
	MinQuantity int    `json:"min_quantity"`
	Unit        string `json:"unit"`
}

type updateItemBody struct {
	Name        *string `json:"name"`
	Supplier    *string `json:"supplier"`
	MinQuantity *int    `json:"min_quantity"`
	Unit        *string `json:"unit"`
}

type adjustBody struct {
	Adjustment string `json:"adjustment"`
	Amount     int    `json:"amount"`
}

func (s *Server) handleListItems(c echo.Context) error {
	items, err := s.app.Inventory.ListItems(c.Request().Context(), orgID(c), c.QueryParam("q"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (s *Server) handleLowStock(c echo.Context) error {
	n, err := s.app.Inventory.LowStockCount(c.Request().Context(), orgID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int{"low_stock": n})
}

func (s *Server) handleCreateItem(c echo.Context) error {
	var body createItemBody
	if err := bind(c, &body); err != nil {
		return err
	}
	item, err := s.app.Inventory.CreateItem(c.Request().Context(), inventory.CreateItemRequest{
		OrganizationID: orgID(c),
		Name:           body.Name,
		Supplier:       body.Supplier,
		Quantity:       body.Quantity,
		MinQuantity:    body.MinQuantity,
		Unit:           body.Unit,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, item)
}

func (s *Server) handleUpdateItem(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var body updateItemBody
	if err := bind(c, &body); err != nil {
		return err
	}
	ctx := c.Request().Context()
	err = s.app.Inventory.UpdateItem(ctx, inventory.UpdateItemRequest{
		OrganizationID: orgID(c),
		ID:             id,
		Name:           body.Name,
		Supplier:       body.Supplier,
		MinQuantity:    body.MinQuantity,
		Unit:           body.Unit,
	})
	if err != nil {
		return err
	}
	item, err := s.app.Inventory.GetItem(ctx, orgID(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

func (s *Server) handleDeleteItem(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := s.app.Inventory.DeleteItem(c.Request().Context(), orgID(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleAdjustStock(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var body adjustBody
	if err := bind(c, &body); err != nil {
		return err
	}
	adj, err := inventory.ParseAdjustment(body.Adjustment)
	if err != nil {
		return err
	}
	item, err := s.app.Inventory.AdjustStock(c.Request().Context(), orgID(c), id, adj, body.Amount)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

type createTaskBody struct {
	Text       string `json:"text"`
	DueDate    string `json:"due_date"`
	Time       string `json:"time"`
	AssignedTo []int  `json:"assigned_to"`
}

type updateTaskBody struct {
	Text       *string `json:"text"`
	DueDate    *string `json:"due_date"`
	Time       *string `json:"time"`
	AssignedTo *[]int  `json:"assigned_to"`
}

// handleListTasks lists every task, or those due in [from, to] when both
// query parameters are present
func (s *Server) handleListTasks(c echo.Context) error {
	ctx := c.Request().Context()
	from, to := c.QueryParam("from"), c.QueryParam("to")
	if from == "" && to == "" {
		tasks, err := s.app.Tasks.ListTasks(ctx, orgID(c))
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, tasks)
	}
	start, err := parseDate("from", from)
	if err != nil {
		return err
	}
	end, err := parseDate("to", to)
	if err != nil {
		return err
	}
	tasks, err := s.app.Tasks.ListRange(ctx, orgID(c), start, end)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tasks)
}

func (s *Server) handleCreateTask(c echo.Context) error {
	var body createTaskBody
	if err := bind(c, &body); err != nil {
		return err
	}
	var due time.Time
	if body.DueDate != "" {
		d, err := parseDate("due_date", body.DueDate)
		if err != nil {
			return err
		}
		due = d
	}
	t, err := s.app.Tasks.CreateTask(c.Request().Context(), task.CreateTaskRequest{
		OrganizationID: orgID(c),
		Text:           body.Text,
		DueDate:        due,
		Time:           body.Time,
		AssignedTo:     body.AssignedTo,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, t)
}

func (s *Server) handleUpdateTask(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var body updateTaskBody
	if err := bind(c, &body); err != nil {
		return err
	}
	req := task.UpdateTaskRequest{
		OrganizationID: orgID(c),
		ID:             id,
		Text:           body.Text,
		Time:           body.Time,
		AssignedTo:     body.AssignedTo,
	}
	if body.DueDate != nil {
		d, err := parseDate("due_date", *body.DueDate)
		if err != nil {
			return err
		}
		req.DueDate = &d
	}
	t, err := s.app.Tasks.UpdateTask(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

func (s *Server) handleToggleTask(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	t, err := s.app.Tasks.ToggleTask(c.Request().Context(), orgID(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

func (s *Server) handleDeleteTask(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := s.app.Tasks.DeleteTask(c.Request().Context(), orgID(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

type roleBody struct {
	Role string `json:"role"`
}

type colorBody struct {
	Color string `json:"color"`
}

type inviteBody struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (s *Server) handleListMembers(c echo.Context) error {
	members, err := s.app.Team.ListMembers(c.Request().Context(), orgID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, members)
}

func (s *Server) handleSetRole(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var body roleBody
	if err := bind(c, &body); err != nil {
		return err
	}
	role := models.Role(body.Role)
	// only owners hand out ownership
	if role == models.RoleOwner && memberRole(c) != models.RoleOwner {
		return echo.NewHTTPError(http.StatusForbidden, "only an owner can grant the owner role")
	}
	if err := s.app.Team.SetRole(c.Request().Context(), orgID(c), id, role); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// handleSetColor lets members change their own color; managers may change any
func (s *Server) handleSetColor(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if id != currentSession(c).MemberID && !memberRole(c).CanManage() {
		return echo.NewHTTPError(http.StatusForbidden, "cannot change another member's color")
	}
	var body colorBody
	if err := bind(c, &body); err != nil {
		return err
	}
	if err := s.app.Team.SetColor(c.Request().Context(), orgID(c), id, body.Color); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleRemoveMember(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := s.app.Team.RemoveMember(c.Request().Context(), orgID(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleListInvites(c echo.Context) error {
	invites, err := s.app.Team.ListInvites(c.Request().Context(), orgID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, invites)
}

func (s *Server) handleInvite(c echo.Context) error {
	var body inviteBody
	if err := bind(c, &body); err != nil {
		return err
	}
	if body.Role == "" {
		body.Role = string(models.RoleWorker)
	}
	inv, err := s.app.Team.Invite(c.Request().Context(), orgID(c), body.Email, models.Role(body.Role))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, inv)
}

func (s *Server) handleRevokeInvite(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := s.app.Team.RevokeInvite(c.Request().Context(), orgID(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
