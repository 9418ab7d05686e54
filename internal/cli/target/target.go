// Package target holds all cli commands related to project checklists
//
// e.g., sitebook target ...
package target

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/sitebook/internal/cli/handler"
)

// TargetCmd returns the target parent command
func TargetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "target",
		Short: "Manage a project's checklist",
	}
	handler.AddOrgFlag(cmd)
	cmd.PersistentFlags().Int("client", 0, "Client ID (required)")
	_ = cmd.MarkPersistentFlagRequired("client")

	list := &cobra.Command{
		Use:   "list",
		Short: "Show the checklist and its progress",
		RunE:  handler.Command(runList),
	}
	handler.AddOutputFlags(list)

	add := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a checklist entry",
		Args:  cobra.ExactArgs(1),
		RunE:  handler.Command(runAdd),
	}
	handler.AddOutputFlags(add)

	toggle := &cobra.Command{
		Use:   "toggle",
		Short: "Mark an entry done or not done",
		RunE:  handler.Command(runToggle),
	}
	toggle.Flags().Int("id", 0, "Target ID (required)")
	_ = toggle.MarkFlagRequired("id")
	handler.AddOutputFlags(toggle)

	del := &cobra.Command{
		Use:   "delete",
		Short: "Delete a checklist entry",
		RunE:  handler.Command(runDelete),
	}
	del.Flags().Int("id", 0, "Target ID (required)")
	_ = del.MarkFlagRequired("id")
	handler.AddOutputFlags(del)

	cmd.AddCommand(list, add, toggle, del)
	return cmd
}

func runList(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	clientID, err := env.Flags.ParseID("client")
	if err != nil {
		return nil, err
	}
	list, err := env.CLI.App.Targets.ListTargets(ctx, env.OrganizationID, clientID)
	if err != nil {
		return nil, err
	}
	return &handler.Result{Data: list, Human: func(w io.Writer) error {
		for _, t := range list.Targets {
			box := "[ ]"
			if t.IsCompleted {
				box = "[x]"
			}
			fmt.Fprintf(w, "%4d %s %s\n", t.ID, box, t.Text)
		}
		_, err := fmt.Fprintf(w, "%d/%d done (%.0f%%)\n", list.Completed, list.Total, list.Progress()*100)
		return err
	}}, nil
}

func runAdd(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	clientID, err := env.Flags.ParseID("client")
	if err != nil {
		return nil, err
	}
	t, err := env.CLI.App.Targets.AddTarget(ctx, env.OrganizationID, clientID, env.Args[0])
	if err != nil {
		return nil, err
	}
	return &handler.Result{Data: t, Human: func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "✓ Target %d added\n", t.ID)
		return err
	}}, nil
}

func runToggle(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	clientID, err := env.Flags.ParseID("client")
	if err != nil {
		return nil, err
	}
	id, err := env.Flags.ParseID("id")
	if err != nil {
		return nil, err
	}
	t, err := env.CLI.App.Targets.ToggleTarget(ctx, env.OrganizationID, clientID, id)
	if err != nil {
		return nil, err
	}
	return &handler.Result{Data: t, Human: func(w io.Writer) error {
		state := "not done"
		if t.IsCompleted {
			state = "done"
		}
		_, err := fmt.Fprintf(w, "✓ Target %d marked %s\n", t.ID, state)
		return err
	}}, nil
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
	if err := env.CLI.App.Targets.DeleteTarget(ctx, env.OrganizationID, clientID, id); err != nil {
		return nil, err
	}
	return &handler.Result{Data: map[string]int{"id": id}, Human: func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "✓ Target %d deleted\n", id)
		return err
	}}, nil
}
