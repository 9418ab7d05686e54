// Package team holds all cli commands related to members and invites
//
// e.g., sitebook team ...
package team

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/sitebook/internal/apperr"
	"github.com/thenoetrevino/sitebook/internal/cli/handler"
	"github.com/thenoetrevino/sitebook/internal/cli/styles"
	"github.com/thenoetrevino/sitebook/internal/models"
)

// TeamCmd returns the team parent command
func TeamCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "team",
		Short: "Manage team members and invites",
	}
	handler.AddOrgFlag(cmd)

	list := &cobra.Command{
		Use:   "list",
		Short: "List members",
		RunE:  handler.Command(runList),
	}
	handler.AddOutputFlags(list)

	invite := &cobra.Command{
		Use:   "invite <email>",
		Short: "Invite someone to the organization",
		Args:  cobra.ExactArgs(1),
		RunE:  handler.Command(runInvite),
	}
	invite.Flags().String("role", string(models.RoleWorker), "Role granted on sign up (owner, admin, worker)")
	handler.AddOutputFlags(invite)

	invites := &cobra.Command{
		Use:   "invites",
		Short: "List pending invites",
		RunE:  handler.Command(runInvites),
	}
	handler.AddOutputFlags(invites)

	revoke := &cobra.Command{
		Use:   "revoke",
		Short: "Revoke a pending invite",
		RunE:  handler.Command(runRevoke),
	}
	revoke.Flags().Int("id", 0, "Invite ID (required)")
	_ = revoke.MarkFlagRequired("id")
	handler.AddOutputFlags(revoke)

	role := &cobra.Command{
		Use:   "role <owner|admin|worker>",
		Short: "Change a member's role",
		Args:  cobra.ExactArgs(1),
		RunE:  handler.Command(runRole),
	}
	role.Flags().Int("id", 0, "Member ID (required)")
	_ = role.MarkFlagRequired("id")
	handler.AddOutputFlags(role)

	color := &cobra.Command{
		Use:   "color <#rrggbb>",
		Short: "Change a member's calendar color",
		Args:  cobra.ExactArgs(1),
		RunE:  handler.Command(runColor),
	}
	color.Flags().Int("id", 0, "Member ID (required)")
	_ = color.MarkFlagRequired("id")
	handler.AddOutputFlags(color)

	remove := &cobra.Command{
		Use:   "remove",
		Short: "Remove a member from the organization",
		RunE:  handler.Command(runRemove),
	}
	remove.Flags().Int("id", 0, "Member ID (required)")
	_ = remove.MarkFlagRequired("id")
	handler.AddOutputFlags(remove)

	cmd.AddCommand(list, invite, invites, revoke, role, color, remove)
	return cmd
}

func parseRole(s string) (models.Role, error) {
	r := models.Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: role %q (must be: owner, admin, worker)", apperr.ErrInvalidInput, s)
	}
	return r, nil
}

func runList(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	members, err := env.CLI.App.Team.ListMembers(ctx, env.OrganizationID)
	if err != nil {
		return nil, err
	}
	return &handler.Result{Data: members, Human: func(w io.Writer) error {
		for _, m := range members {
			name := m.FullName
			if m.Color != "" {
				name = styles.ColoredText(name, m.Color)
			}
			fmt.Fprintf(w, "%4d  %-24s %-28s %s\n", m.ID, name, m.Email, m.Role)
		}
		return nil
	}}, nil
}

func runInvite(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	raw, _ := env.Cmd.Flags().GetString("role")
	role, err := parseRole(raw)
	if err != nil {
		return nil, err
	}
	inv, err := env.CLI.App.Team.Invite(ctx, env.OrganizationID, env.Args[0], role)
	if err != nil {
		return nil, err
	}
	return &handler.Result{Data: inv, Human: func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "✓ Invited %s as %s\n", inv.Email, inv.Role)
		return err
	}}, nil
}

func runInvites(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	invites, err := env.CLI.App.Team.ListInvites(ctx, env.OrganizationID)
	if err != nil {
		return nil, err
	}
	return &handler.Result{Data: invites, Human: func(w io.Writer) error {
		if len(invites) == 0 {
			_, err := fmt.Fprintln(w, "No pending invites")
			return err
		}
		for _, inv := range invites {
			fmt.Fprintf(w, "%4d  %-28s %s\n", inv.ID, inv.Email, inv.Role)
		}
		return nil
	}}, nil
}

func runRevoke(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	id, err := env.Flags.ParseID("id")
	if err != nil {
		return nil, err
	}
	if err := env.CLI.App.Team.RevokeInvite(ctx, env.OrganizationID, id); err != nil {
		return nil, err
	}
	return &handler.Result{Data: map[string]int{"id": id}, Human: func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "✓ Invite %d revoked\n", id)
		return err
	}}, nil
}

func runRole(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	id, err := env.Flags.ParseID("id")
	if err != nil {
		return nil, err
	}
	role, err := parseRole(env.Args[0])
	if err != nil {
		return nil, err
	}
	if err := env.CLI.App.Team.SetRole(ctx, env.OrganizationID, id, role); err != nil {
		return nil, err
	}
	return memberResult(ctx, env, id, "role set to "+string(role))
}

func runColor(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	id, err := env.Flags.ParseID("id")
	if err != nil {
		return nil, err
	}
	if err := env.CLI.App.Team.SetColor(ctx, env.OrganizationID, id, env.Args[0]); err != nil {
		return nil, err
	}
	return memberResult(ctx, env, id, "color updated")
}

func memberResult(ctx context.Context, env *handler.Env, id int, what string) (*handler.Result, error) {
	m, err := env.CLI.App.Team.GetMember(ctx, env.OrganizationID, id)
	if err != nil {
		return nil, err
	}
	return &handler.Result{Data: m, Human: func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "✓ %s: %s\n", m.FullName, what)
		return err
	}}, nil
}

func runRemove(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	id, err := env.Flags.ParseID("id")
	if err != nil {
		return nil, err
	}
	if err := env.CLI.App.Team.RemoveMember(ctx, env.OrganizationID, id); err != nil {
		return nil, err
	}
	return &handler.Result{Data: map[string]int{"id": id}, Human: func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "✓ Member %d removed\n", id)
		return err
	}}, nil
}
