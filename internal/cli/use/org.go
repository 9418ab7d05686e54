package use

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/sitebook/internal/apperr"
	"github.com/thenoetrevino/sitebook/internal/cli"
	"github.com/thenoetrevino/sitebook/internal/cli/handler"
)

// OrgCmd returns the use org subcommand
func OrgCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "org [organization-id]",
		Short: "Set organization context for current shell session",
		Long: `Set the current organization using an environment variable.
This command outputs shell commands that should be evaluated:

  eval $(sitebook use org 3)           # Use organization 3
  eval $(sitebook use org --clear)     # Clear organization context
  sitebook use org --show              # Show current organization

The ` + cli.OrganizationEnv + ` environment variable is set in your current shell
session only. The --org flag on other commands takes precedence over it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: handler.Global(runUseOrg),
	}

	cmd.Flags().Bool("clear", false, "Clear the current organization context")
	cmd.Flags().Bool("show", false, "Show the current organization context")
	cmd.Flags().Bool("dry-run", false, "Show what would be exported without outputting shell commands")

	return cmd
}

func runUseOrg(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	flags := env.Cmd.Flags()
	clearFlag, _ := flags.GetBool("clear")
	showFlag, _ := flags.GetBool("show")
	dryRun, _ := flags.GetBool("dry-run")
	stderr := env.Cmd.ErrOrStderr()

	if showFlag {
		return showCurrentOrg(ctx, env)
	}

	if clearFlag {
		if dryRun {
			fmt.Fprintf(stderr, "Would clear %s\n", cli.OrganizationEnv)
			return nil, nil
		}
		fmt.Fprintf(stderr, "Cleared organization context\n")
		return &handler.Result{Human: func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "unset %s\n", cli.OrganizationEnv)
			return err
		}}, nil
	}

	if len(env.Args) == 0 {
		return nil, fmt.Errorf("%w: organization ID required (usage: eval $(sitebook use org <organization-id>))", apperr.ErrInvalidInput)
	}
	orgID, err := strconv.Atoi(env.Args[0])
	if err != nil || orgID <= 0 {
		return nil, fmt.Errorf("%w: invalid organization ID: %s", apperr.ErrInvalidInput, env.Args[0])
	}

	org, err := env.CLI.App.Organizations.Get(ctx, orgID)
	if err != nil {
		return nil, err
	}

	if dryRun {
		fmt.Fprintf(stderr, "Would set %s=%d (%s)\n", cli.OrganizationEnv, orgID, org.Name)
		return nil, nil
	}
	fmt.Fprintf(stderr, "Now using organization %d: %s\n", orgID, org.Name)
	return &handler.Result{Human: func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "export %s=%d\n", cli.OrganizationEnv, orgID)
		return err
	}}, nil
}

func showCurrentOrg(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	current := os.Getenv(cli.OrganizationEnv)
	return &handler.Result{Human: func(w io.Writer) error {
		if current == "" {
			fmt.Fprintln(w, "No organization context set")
			_, err := fmt.Fprintln(w, "Use 'eval $(sitebook use org <organization-id>)' to set one")
			return err
		}
		orgID, err := strconv.Atoi(current)
		if err != nil {
			_, err := fmt.Fprintf(w, "Invalid organization context: %s\n", current)
			return err
		}
		org, err := env.CLI.App.Organizations.Get(ctx, orgID)
		if err != nil {
			_, err := fmt.Fprintf(w, "Current organization: %s (not found)\n", current)
			return err
		}
		_, err = fmt.Fprintf(w, "Current organization: %d (%s)\n", orgID, org.Name)
		return err
	}}, nil
}
