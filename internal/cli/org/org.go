// Package org holds all cli commands related to organizations
//
// e.g., sitebook org ...
package org

import (
	"context"
	"errors"
	"fmt"
	"io"

	"charm.land/huh/v2"
	"github.com/spf13/cobra"
	"github.com/thenoetrevino/sitebook/internal/cli/handler"
	"github.com/thenoetrevino/sitebook/internal/models"
	"github.com/thenoetrevino/sitebook/internal/tui/theme"
)

// OrgCmd returns the org parent command
func OrgCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "org",
		Short: "Manage organizations",
	}

	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an organization",
		Long: `Create an organization. Select it afterwards with:

  eval $(sitebook use org <organization-id>)`,
		Args: cobra.ExactArgs(1),
		RunE: handler.Global(runCreate),
	}
	handler.AddOutputFlags(create)

	list := &cobra.Command{
		Use:   "list",
		Short: "List organizations",
		RunE:  handler.Global(runList),
	}
	handler.AddOutputFlags(list)

	del := &cobra.Command{
		Use:   "delete",
		Short: "Delete an organization and everything it owns",
		RunE:  handler.Global(runDelete),
	}
	del.Flags().Int("id", 0, "Organization ID (required)")
	_ = del.MarkFlagRequired("id")
	del.Flags().Bool("force", false, "Skip confirmation")
	handler.AddOutputFlags(del)

	cmd.AddCommand(create, list, del)
	return cmd
}

func runCreate(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	o, err := env.CLI.App.Organizations.Create(ctx, env.Args[0])
	if err != nil {
		return nil, err
	}
	return &handler.Result{Data: o, Human: func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "✓ Organization '%s' created (ID: %d)\n", o.Name, o.ID)
		return err
	}}, nil
}

func runList(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	orgs, err := env.CLI.App.Organizations.List(ctx)
	if err != nil {
		return nil, err
	}
	return &handler.Result{Data: orgs, Human: func(w io.Writer) error {
		if len(orgs) == 0 {
			_, err := fmt.Fprintln(w, "No organizations")
			return err
		}
		for _, o := range orgs {
			fmt.Fprintf(w, "%4d  %s\n", o.ID, o.Name)
		}
		return nil
	}}, nil
}

func runDelete(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	id, err := env.Flags.ParseID("id")
	if err != nil {
		return nil, err
	}
	force, _ := env.Cmd.Flags().GetBool("force")
	if !force && !env.Formatter.JSON && !env.Formatter.Quiet {
		o, err := env.CLI.App.Organizations.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		confirmed, err := confirm(ctx, env, o)
		if err != nil {
			return nil, err
		}
		if !confirmed {
			return &handler.Result{Data: map[string]int{"id": id}, Human: func(w io.Writer) error {
				_, err := fmt.Fprintln(w, "Cancelled")
				return err
			}}, nil
		}
	}
	if err := env.CLI.App.Organizations.Delete(ctx, id); err != nil {
		return nil, err
	}
	return &handler.Result{Data: map[string]int{"id": id}, Human: func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "✓ Organization %d deleted\n", id)
		return err
	}}, nil
}

// confirm asks before deleting o: a form on a terminal, a y/N line otherwise
func confirm(ctx context.Context, env *handler.Env, o *models.Organization) (bool, error) {
	if env.Interactive() {
		var confirmed bool
		err := confirmForm(o, &confirmed).
			WithInput(env.Cmd.InOrStdin()).
			WithOutput(env.Cmd.ErrOrStderr()).
			RunWithContext(ctx)
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return confirmed, err
	}

	fmt.Fprintf(env.Cmd.ErrOrStderr(), "Delete organization '%s' (ID: %d) and all of its data? [y/N]: ", o.Name, o.ID)
	var answer string
	if _, err := fmt.Fscanln(env.Cmd.InOrStdin(), &answer); err != nil {
		return false, nil
	}
	return answer == "y" || answer == "Y", nil
}

func confirmForm(o *models.Organization, confirmed *bool) *huh.Form {
	return huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Key("confirm").
			Title(fmt.Sprintf("Delete organization '%s' (ID: %d)?", o.Name, o.ID)).
			Description("Clients, projects, files and the team are deleted with it.").
			Affirmative("Delete").
			Negative("Keep").
			Value(confirmed),
	)).WithTheme(theme.Form())
}
