// Package cost holds all cli commands related to a client's cost ledger
//
// e.g., sitebook cost ...
package cost

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/sitebook/internal/cli/handler"
	"github.com/thenoetrevino/sitebook/internal/cli/styles"
	"github.com/thenoetrevino/sitebook/internal/models"
	costservice "github.com/thenoetrevino/sitebook/internal/services/cost"
)

// CostCmd returns the cost parent command
func CostCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cost",
		Short: "Track what a project costs and who paid",
	}
	handler.AddOrgFlag(cmd)

	cmd.AddCommand(AddCmd())
	cmd.AddCommand(ListCmd())
	cmd.AddCommand(DeleteCmd())

	return cmd
}

// AddCmd returns the cost add subcommand
func AddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a ledger entry",
		Long: `Add a cost to a client's ledger. --payer is "client" (the default) or
the ID of the team member who paid.

Examples:
  sitebook cost add --client=4 --title="Lumber" --amount=812.40 --payer=2`,
		RunE: handler.Command(runAdd),
	}
	cmd.Flags().Int("client", 0, "Client ID (required)")
	_ = cmd.MarkFlagRequired("client")
	cmd.Flags().String("title", "", "What was bought (required)")
	_ = cmd.MarkFlagRequired("title")
	cmd.Flags().Float64("amount", 0, "Amount (required)")
	_ = cmd.MarkFlagRequired("amount")
	cmd.Flags().String("payer", models.PayerClient, "Who paid: client or a member ID")
	handler.AddOutputFlags(cmd)
	return cmd
}

func runAdd(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	clientID, err := env.Flags.ParseID("client")
	if err != nil {
		return nil, err
	}
	title, err := env.Flags.ParseString("title")
	if err != nil {
		return nil, err
	}
	amount, _ := env.Cmd.Flags().GetFloat64("amount")
	payer, _ := env.Cmd.Flags().GetString("payer")

	c, err := env.CLI.App.Costs.AddCost(ctx, costservice.AddCostRequest{
		OrganizationID: env.OrganizationID,
		ClientID:       clientID,
		Title:          title,
		Amount:         amount,
		Payer:          payer,
	})
	if err != nil {
		return nil, err
	}
	return &handler.Result{Data: c, Human: func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "✓ %s %s added (ID: %d)\n", c.Title, styles.Money(c.Amount), c.ID)
		return err
	}}, nil
}

type ledger struct {
	Costs   []*models.Cost       `json:"costs"`
	Summary *costservice.Summary `json:"summary"`
}

// ListCmd returns the cost list subcommand
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a client's ledger with totals",
		RunE:  handler.Command(runList),
	}
	cmd.Flags().Int("client", 0, "Client ID (required)")
	_ = cmd.MarkFlagRequired("client")
	handler.AddOutputFlags(cmd)
	return cmd
}

func runList(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	clientID, err := env.Flags.ParseID("client")
	if err != nil {
		return nil, err
	}
	costs, err := env.CLI.App.Costs.ListCosts(ctx, env.OrganizationID, clientID)
	if err != nil {
		return nil, err
	}
	summary, err := env.CLI.App.Costs.Summary(ctx, env.OrganizationID, clientID)
	if err != nil {
		return nil, err
	}
	return &handler.Result{Data: ledger{Costs: costs, Summary: summary}, Human: func(w io.Writer) error {
		for _, c := range costs {
			fmt.Fprintf(w, "%4d  %-30s %12s  %s\n", c.ID, c.Title, styles.Money(c.Amount), payerLabel(c.Payer))
		}
		if len(costs) > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "Total:          %s\n", styles.Money(summary.Total))
		fmt.Fprintf(w, "Paid by client: %s\n", styles.Money(summary.PaidByClient))
		fmt.Fprintf(w, "Paid by team:   %s\n", styles.Money(summary.PaidByTeam))
		ids := make([]int, 0, len(summary.ByMember))
		for id := range summary.ByMember {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		for _, id := range ids {
			fmt.Fprintf(w, "  member %d:     %s\n", id, styles.Money(summary.ByMember[id]))
		}
		return nil
	}}, nil
}

func payerLabel(payer string) string {
	if payer == models.PayerClient {
		return "client"
	}
	return "member " + payer
}

// DeleteCmd returns the cost delete subcommand
func DeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a ledger entry",
		RunE:  handler.Command(runDelete),
	}
	cmd.Flags().Int("client", 0, "Client ID (required)")
	_ = cmd.MarkFlagRequired("client")
	cmd.Flags().Int("id", 0, "Cost ID (required)")
	_ = cmd.MarkFlagRequired("id")
	handler.AddOutputFlags(cmd)
	return cmd
}

func runDelete(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	clientID, err := env.Flags.ParseID("client")
	if err != nil {
		return nil, err
	}
	id, err := env.Flags.ParseID("id")
	if err != nil {
		return nil, err
	}
	if err := env.CLI.App.Costs.DeleteCost(ctx, env.OrganizationID, clientID, id); err != nil {
		return nil, err
	}
	return &handler.Result{Data: map[string]int{"id": id}, Human: func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "✓ Cost %d deleted\n", id)
		return err
	}}, nil
}
