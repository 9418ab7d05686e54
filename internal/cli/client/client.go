// Package client holds all cli commands related to clients
//
// e.g., sitebook client ...
package client

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/sitebook/internal/apperr"
	"github.com/thenoetrevino/sitebook/internal/cli/handler"
	"github.com/thenoetrevino/sitebook/internal/cli/styles"
	"github.com/thenoetrevino/sitebook/internal/models"
	clientservice "github.com/thenoetrevino/sitebook/internal/services/client"
)

// ClientCmd returns the client parent command
func ClientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Manage clients",
	}
	handler.AddOrgFlag(cmd)

	cmd.AddCommand(CreateCmd())
	cmd.AddCommand(ListCmd())
	cmd.AddCommand(ShowCmd())
	cmd.AddCommand(UpdateCmd())
	cmd.AddCommand(CompleteCmd())
	cmd.AddCommand(DeleteCmd())

	return cmd
}

// CreateCmd returns the client create subcommand
func CreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a client and its project",
		Long: `Create a new client. Every client starts as a proposal with an
unscheduled project.

Examples:
  sitebook client create --name="Alice Homeowner" --price=12000
  CLIENT_ID=$(sitebook client create --name="Alice" --quiet)`,
		RunE: handler.Command(runCreate),
	}
	cmd.Flags().String("name", "", "Client full name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().String("phone", "", "Phone number")
	cmd.Flags().String("email", "", "Email address")
	cmd.Flags().String("address", "", "Job site address")
	cmd.Flags().String("description", "", "Project description")
	cmd.Flags().Float64("price", 0, "Quoted price")
	handler.AddOutputFlags(cmd)
	return cmd
}

func runCreate(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	name, err := env.Flags.ParseString("name")
	if err != nil {
		return nil, err
	}
	flags := env.Cmd.Flags()
	phone, _ := flags.GetString("phone")
	email, _ := flags.GetString("email")
	address, _ := flags.GetString("address")
	description, _ := flags.GetString("description")
	price, _ := flags.GetFloat64("price")

	c, err := env.CLI.App.Clients.CreateClient(ctx, clientservice.CreateClientRequest{
		OrganizationID: env.OrganizationID,
		FullName:       name,
		Phone:          phone,
		Email:          email,
		Address:        address,
		Description:    description,
		Price:          price,
	})
	if err != nil {
		return nil, err
	}
	return &handler.Result{Data: c, Human: func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "✓ Client '%s' created (ID: %d)\n", c.FullName, c.ID)
		return err
	}}, nil
}

// ListCmd returns the client list subcommand
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List clients",
		RunE:  handler.Command(runList),
	}
	cmd.Flags().String("status", "", "Only clients in this status (proposal, signed, in_progress, completed)")
	handler.AddOutputFlags(cmd)
	return cmd
}

func runList(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	raw, _ := env.Cmd.Flags().GetString("status")
	var status models.Status
	if raw != "" {
		st, err := models.ParseStatus(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
		}
		status = st
	}
	clients, err := env.CLI.App.Clients.ListClients(ctx, env.OrganizationID, status)
	if err != nil {
		return nil, err
	}
	return &handler.Result{Data: clients, Human: func(w io.Writer) error {
		if len(clients) == 0 {
			_, err := fmt.Fprintln(w, "No clients found")
			return err
		}
		for _, c := range clients {
			if _, err := fmt.Fprintf(w, "%4d  %-30s %s\n", c.ID, c.FullName, styles.Status(c.Status)); err != nil {
				return err
			}
		}
		return nil
	}}, nil
}

// ShowCmd returns the client show subcommand
func ShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a client with its project, costs and targets",
		RunE:  handler.Command(runShow),
	}
	cmd.Flags().Int("id", 0, "Client ID (required)")
	_ = cmd.MarkFlagRequired("id")
	handler.AddOutputFlags(cmd)
	return cmd
}

// clientDetails is the combined view printed by client show
type clientDetails struct {
	Client   *models.Client  `json:"client"`
	Project  *models.Project `json:"project"`
	Costs    any             `json:"costs"`
	Targets  any             `json:"targets"`
	Progress float64         `json:"progress"`
}

func (d clientDetails) GetID() int { return d.Client.ID }

func runShow(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	id, err := env.Flags.ParseID("id")
	if err != nil {
		return nil, err
	}
	app := env.CLI.App
	c, err := app.Clients.GetClient(ctx, env.OrganizationID, id)
	if err != nil {
		return nil, err
	}
	p, err := app.Projects.GetByClient(ctx, env.OrganizationID, id)
	if err != nil {
		return nil, err
	}
	sum, err := app.Costs.Summary(ctx, env.OrganizationID, id)
	if err != nil {
		return nil, err
	}
	checklist, err := app.Targets.ListTargets(ctx, env.OrganizationID, id)
	if err != nil {
		return nil, err
	}

	details := clientDetails{Client: c, Project: p, Costs: sum, Targets: checklist.Targets, Progress: checklist.Progress()}
	return &handler.Result{Data: details, Human: func(w io.Writer) error {
		dates := styles.Range(p.Primary)
		if p.Secondary != nil {
			dates += " + " + styles.Range(*p.Secondary)
		}
		body := styles.TitleStyle.Render(c.FullName) + "\n" +
			styles.Field("Status", styles.Status(c.Status)) + "\n" +
			styles.Field("Phone", orDash(c.Phone)) + "\n" +
			styles.Field("Address", orDash(c.Address)) + "\n" +
			styles.Field("Price", styles.Money(p.Price)) + "\n" +
			styles.Field("Dates", dates) + "\n" +
			styles.Field("Costs", fmt.Sprintf("%s (%d entries)", styles.Money(sum.Total), sum.Entries)) + "\n" +
			styles.Field("Targets", fmt.Sprintf("%d/%d done", checklist.Completed, checklist.Total))
		_, err := fmt.Fprintln(w, styles.RenderCard(body))
		return err
	}}, nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// UpdateCmd returns the client update subcommand
func UpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update client contact details",
		RunE:  handler.Command(runUpdate),
	}
	cmd.Flags().Int("id", 0, "Client ID (required)")
	_ = cmd.MarkFlagRequired("id")
	cmd.Flags().String("name", "", "Client full name")
	cmd.Flags().String("phone", "", "Phone number")
	cmd.Flags().String("email", "", "Email address")
	cmd.Flags().String("address", "", "Job site address")
	handler.AddOutputFlags(cmd)
	return cmd
}

func runUpdate(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	id, err := env.Flags.ParseID("id")
	if err != nil {
		return nil, err
	}
	err = env.CLI.App.Clients.UpdateClient(ctx, clientservice.UpdateClientRequest{
		OrganizationID: env.OrganizationID,
		ID:             id,
		FullName:       env.Flags.StringIfChanged("name"),
		Phone:          env.Flags.StringIfChanged("phone"),
		Email:          env.Flags.StringIfChanged("email"),
		Address:        env.Flags.StringIfChanged("address"),
	})
	if err != nil {
		return nil, err
	}
	c, err := env.CLI.App.Clients.GetClient(ctx, env.OrganizationID, id)
	if err != nil {
		return nil, err
	}
	return &handler.Result{Data: c, Human: func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "✓ Client %d updated\n", c.ID)
		return err
	}}, nil
}

// CompleteCmd returns the client complete subcommand
func CompleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "complete",
		Short: "Mark a client's work finished",
		Long: `Mark the client completed. The project's end date becomes today and
the client leaves the schedule.`,
		RunE: handler.Command(runComplete),
	}
	cmd.Flags().Int("id", 0, "Client ID (required)")
	_ = cmd.MarkFlagRequired("id")
	handler.AddOutputFlags(cmd)
	return cmd
}

func runComplete(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	id, err := env.Flags.ParseID("id")
	if err != nil {
		return nil, err
	}
	if err := env.CLI.App.Clients.Complete(ctx, env.OrganizationID, id); err != nil {
		return nil, err
	}
	c, err := env.CLI.App.Clients.GetClient(ctx, env.OrganizationID, id)
	if err != nil {
		return nil, err
	}
	return &handler.Result{Data: c, Human: func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "✓ Client '%s' completed\n", c.FullName)
		return err
	}}, nil
}

// DeleteCmd returns the client delete subcommand
func DeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a client with its project, contract, costs and files",
		RunE:  handler.Command(runDelete),
	}
	cmd.Flags().Int("id", 0, "Client ID (required)")
	_ = cmd.MarkFlagRequired("id")
	handler.AddOutputFlags(cmd)
	return cmd
}

func runDelete(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	id, err := env.Flags.ParseID("id")
	if err != nil {
		return nil, err
	}
	if err := env.CLI.App.Clients.DeleteClient(ctx, env.OrganizationID, id); err != nil {
		return nil, err
	}
	return &handler.Result{Data: map[string]int{"deleted": id}, Human: func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "✓ Client %d deleted\n", id)
		return err
	}}, nil
}
