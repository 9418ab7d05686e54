// Package inventory holds all cli commands related to stocked materials
//
// e.g., sitebook inventory ...
package inventory

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/sitebook/internal/apperr"
	"github.com/thenoetrevino/sitebook/internal/cli/handler"
	"github.com/thenoetrevino/sitebook/internal/cli/styles"
	"github.com/thenoetrevino/sitebook/internal/models"
	inventoryservice "github.com/thenoetrevino/sitebook/internal/services/inventory"
)

// InventoryCmd returns the inventory parent command
func InventoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "inventory",
		Aliases: []string{"inv"},
		Short:   "Track materials and tools in stock",
	}
	handler.AddOrgFlag(cmd)

	cmd.AddCommand(ListCmd())
	cmd.AddCommand(AddCmd())
	cmd.AddCommand(UpdateCmd())
	cmd.AddCommand(AdjustCmd())
	cmd.AddCommand(DeleteCmd())

	return cmd
}

// ListCmd returns the inventory list subcommand
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List items, optionally filtered",
		RunE:  handler.Command(runList),
	}
	cmd.Flags().String("search", "", "Match name or supplier")
	cmd.Flags().Bool("low", false, "Only items at or below their minimum")
	handler.AddOutputFlags(cmd)
	return cmd
}

func runList(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	search, _ := env.Cmd.Flags().GetString("search")
	lowOnly, _ := env.Cmd.Flags().GetBool("low")
	items, err := env.CLI.App.Inventory.ListItems(ctx, env.OrganizationID, search)
	if err != nil {
		return nil, err
	}
	if lowOnly {
		low := items[:0]
		for _, it := range items {
			if it.IsLow() {
				low = append(low, it)
			}
		}
		items = low
	}
	return &handler.Result{Data: items, Human: func(w io.Writer) error {
		if len(items) == 0 {
			_, err := fmt.Fprintln(w, "No items found")
			return err
		}
		for _, it := range items {
			fmt.Fprintf(w, "%4d  %-28s %s\n", it.ID, it.Name, stock(it))
		}
		return nil
	}}, nil
}

func stock(it *models.InventoryItem) string {
	s := fmt.Sprintf("%d", it.Quantity)
	if it.Unit != "" {
		s += " " + it.Unit
	}
	if it.IsLow() {
		s += "  " + styles.WarningStyle.Render(fmt.Sprintf("low (min %d)", it.MinQuantity))
	}
	return s
}

// AddCmd returns the inventory add subcommand
func AddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an item",
		RunE:  handler.Command(runAdd),
	}
	cmd.Flags().String("name", "", "Item name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().String("supplier", "", "Supplier")
	cmd.Flags().Int("quantity", 0, "Quantity on hand")
	cmd.Flags().Int("min", 0, "Reorder threshold")
	cmd.Flags().String("unit", "", "Unit, e.g. boxes")
	handler.AddOutputFlags(cmd)
	return cmd
}

func runAdd(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	name, err := env.Flags.ParseString("name")
	if err != nil {
		return nil, err
	}
	supplier, _ := env.Cmd.Flags().GetString("supplier")
	quantity, _ := env.Cmd.Flags().GetInt("quantity")
	minQuantity, _ := env.Cmd.Flags().GetInt("min")
	unit, _ := env.Cmd.Flags().GetString("unit")

	it, err := env.CLI.App.Inventory.CreateItem(ctx, inventoryservice.CreateItemRequest{
		OrganizationID: env.OrganizationID,
		Name:           name,
		Supplier:       supplier,
		Quantity:       quantity,
		MinQuantity:    minQuantity,
		Unit:           unit,
	})
	if err != nil {
		return nil, err
	}
	return &handler.Result{Data: it, Human: func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "✓ %s added (ID: %d)\n", it.Name, it.ID)
		return err
	}}, nil
}

// UpdateCmd returns the inventory update subcommand
func UpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update an item's details",
		RunE:  handler.Command(runUpdate),
	}
	cmd.Flags().Int("id", 0, "Item ID (required)")
	_ = cmd.MarkFlagRequired("id")
	cmd.Flags().String("name", "", "Item name")
	cmd.Flags().String("supplier", "", "Supplier")
	cmd.Flags().Int("min", 0, "Reorder threshold")
	cmd.Flags().String("unit", "", "Unit")
	handler.AddOutputFlags(cmd)
	return cmd
}

func runUpdate(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	id, err := env.Flags.ParseID("id")
	if err != nil {
		return nil, err
	}
	err = env.CLI.App.Inventory.UpdateItem(ctx, inventoryservice.UpdateItemRequest{
		OrganizationID: env.OrganizationID,
		ID:             id,
		Name:           env.Flags.StringIfChanged("name"),
		Supplier:       env.Flags.StringIfChanged("supplier"),
		MinQuantity:    env.Flags.IntIfChanged("min"),
		Unit:           env.Flags.StringIfChanged("unit"),
	})
	if err != nil {
		return nil, err
	}
	it, err := env.CLI.App.Inventory.GetItem(ctx, env.OrganizationID, id)
	if err != nil {
		return nil, err
	}
	return &handler.Result{Data: it, Human: func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "✓ Item %d updated\n", it.ID)
		return err
	}}, nil
}

// AdjustCmd returns the inventory adjust subcommand
func AdjustCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "adjust <add|subtract|set> <amount>",
		Short: "Change the quantity on hand",
		Long: `Change the quantity on hand. Subtracting never drops below zero.

Examples:
  sitebook inventory adjust --id=3 subtract 2
  sitebook inventory adjust --id=3 set 40`,
		Args: cobra.ExactArgs(2),
		RunE: handler.Command(runAdjust),
	}
	cmd.Flags().Int("id", 0, "Item ID (required)")
	_ = cmd.MarkFlagRequired("id")
	handler.AddOutputFlags(cmd)
	return cmd
}

func runAdjust(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	id, err := env.Flags.ParseID("id")
	if err != nil {
		return nil, err
	}
	adj, err := inventoryservice.ParseAdjustment(env.Args[0])
	if err != nil {
		return nil, err
	}
	amount, err := strconv.Atoi(env.Args[1])
	if err != nil {
		return nil, fmt.Errorf("%w: amount %q is not a whole number", apperr.ErrInvalidInput, env.Args[1])
	}
	it, err := env.CLI.App.Inventory.AdjustStock(ctx, env.OrganizationID, id, adj, amount)
	if err != nil {
		return nil, err
	}
	return &handler.Result{Data: it, Human: func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "✓ %s: %s\n", it.Name, stock(it))
		return err
	}}, nil
}

// DeleteCmd returns the inventory delete subcommand
func DeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete an item",
		RunE:  handler.Command(runDelete),
	}
	cmd.Flags().Int("id", 0, "Item ID (required)")
	_ = cmd.MarkFlagRequired("id")
	handler.AddOutputFlags(cmd)
	return cmd
}

func runDelete(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	id, err := env.Flags.ParseID("id")
	if err != nil {
		return nil, err
	}
	if err := env.CLI.App.Inventory.DeleteItem(ctx, env.OrganizationID, id); err != nil {
		return nil, err
	}
	return &handler.Result{Data: map[string]int{"id": id}, Human: func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "✓ Item %d deleted\n", id)
		return err
	}}, nil
}
