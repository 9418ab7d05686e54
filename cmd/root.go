// Package cmd assembles the sitebook command tree.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/sitebook/internal/cli"
	"github.com/thenoetrevino/sitebook/internal/cli/blueprint"
	"github.com/thenoetrevino/sitebook/internal/cli/client"
	"github.com/thenoetrevino/sitebook/internal/cli/contract"
	"github.com/thenoetrevino/sitebook/internal/cli/cost"
	"github.com/thenoetrevino/sitebook/internal/cli/file"
	"github.com/thenoetrevino/sitebook/internal/cli/inventory"
	"github.com/thenoetrevino/sitebook/internal/cli/org"
	"github.com/thenoetrevino/sitebook/internal/cli/project"
	"github.com/thenoetrevino/sitebook/internal/cli/serve"
	"github.com/thenoetrevino/sitebook/internal/cli/target"
	"github.com/thenoetrevino/sitebook/internal/cli/task"
	"github.com/thenoetrevino/sitebook/internal/cli/team"
	"github.com/thenoetrevino/sitebook/internal/cli/use"
)

// NewRootCmd builds the full command tree
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sitebook",
		Short: "Sitebook - scheduling and job records for contractors",
		Long: `Sitebook keeps a contracting business's clients, contracts, costs,
inventory and calendar, and schedules project dates so jobs never
silently overlap.

Start with:
  sitebook org create "My Company"
  eval $(sitebook use org 1)
  sitebook client create --name="Alice Homeowner" --price=12000`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "Config file (default $XDG_CONFIG_HOME/sitebook/config.yaml)")

	root.AddCommand(
		org.OrgCmd(),
		use.UseCmd(),
		client.ClientCmd(),
		project.ProjectCmd(),
		contract.ContractCmd(),
		cost.CostCmd(),
		target.TargetCmd(),
		file.FileCmd(),
		blueprint.BlueprintCmd(),
		inventory.InventoryCmd(),
		task.TaskCmd(),
		team.TeamCmd(),
		serve.ServeCmd(),
		serve.SweepCmd(),
	)
	return root
}

// Execute runs the command line and returns the process exit code
func Execute(ctx context.Context, args []string) int {
	root := NewRootCmd()
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return cli.ExitSuccess
	}
	// Errors from commands are already reported by their formatter
	var exitErr *cli.CodedError
	if !errors.As(err, &exitErr) {
		fmt.Fprintf(os.Stderr, "❌ Error: %v\n", err)
	}
	return cli.ExitCode(err)
}
