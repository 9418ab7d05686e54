// Package project holds all cli commands related to project dates
//
// e.g., sitebook project ...
package project

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/sitebook/internal/cli"
	"github.com/thenoetrevino/sitebook/internal/cli/handler"
	"github.com/thenoetrevino/sitebook/internal/cli/styles"
	projectservice "github.com/thenoetrevino/sitebook/internal/services/project"
	"github.com/thenoetrevino/sitebook/internal/services/schedule"
	"github.com/thenoetrevino/sitebook/internal/tui/picker"
)

// ProjectCmd returns the project parent command
func ProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Schedule projects and edit their details",
	}
	handler.AddOrgFlag(cmd)

	cmd.AddCommand(ListCmd())
	cmd.AddCommand(CheckCmd())
	cmd.AddCommand(ScheduleCmd())
	cmd.AddCommand(UpdateCmd())

	return cmd
}

// ListCmd returns the project list subcommand
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List scheduled projects in date order",
		RunE:  handler.Command(runList),
	}
	handler.AddOutputFlags(cmd)
	return cmd
}

func runList(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	projects, err := env.CLI.App.Projects.ListScheduled(ctx, env.OrganizationID)
	if err != nil {
		return nil, err
	}
	return &handler.Result{Data: projects, Human: func(w io.Writer) error {
		if len(projects) == 0 {
			_, err := fmt.Fprintln(w, "No scheduled projects")
			return err
		}
		cal, today := env.CLI.App.Calendar, env.CLI.App.Today()
		for _, p := range projects {
			line := fmt.Sprintf("%4d  %-24s %s", p.ID, p.ClientName, cli.DescribeDates(p))
			if countdown := cli.Countdown(cal, today, p); countdown != "" {
				line += "  " + styles.SubtitleStyle.Render("("+countdown+")")
			}
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
		return nil
	}}, nil
}

func addDateFlags(cmd *cobra.Command) {
	cmd.Flags().Int("id", 0, "Project ID (required)")
	_ = cmd.MarkFlagRequired("id")
	cmd.Flags().String("start", "", "First working day, YYYY-MM-DD (required)")
	cmd.Flags().String("end", "", "Last working day, YYYY-MM-DD (required)")
	cmd.Flags().String("start2", "", "Start of a second range, YYYY-MM-DD")
	cmd.Flags().String("end2", "", "End of a second range, YYYY-MM-DD")
	handler.AddOutputFlags(cmd)
}

func parseRequest(env *handler.Env) (schedule.Request, error) {
	id, err := env.Flags.ParseID("id")
	if err != nil {
		return schedule.Request{}, err
	}
	primary, err := env.Flags.ParseRange("start", "end")
	if err != nil {
		return schedule.Request{}, err
	}
	secondary, err := env.Flags.ParseRangeOptional("start2", "end2")
	if err != nil {
		return schedule.Request{}, err
	}
	return schedule.Request{
		OrganizationID: env.OrganizationID,
		ProjectID:      id,
		Primary:        primary,
		Secondary:      secondary,
	}, nil
}

// CheckCmd returns the project check subcommand
func CheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Show what new dates would collide with, without saving",
		RunE:  handler.Command(runCheck),
	}
	addDateFlags(cmd)
	return cmd
}

func runCheck(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	req, err := parseRequest(env)
	if err != nil {
		return nil, err
	}
	plan, err := env.CLI.App.Schedule.Check(ctx, req)
	if err != nil {
		return nil, err
	}
	return &handler.Result{Data: plan, Human: func(w io.Writer) error {
		return cli.WritePlan(w, plan)
	}}, nil
}

// ScheduleCmd returns the project schedule subcommand
func ScheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Save project dates, resolving conflicts",
		Long: `Save new dates for a project. When the dates overlap other scheduled
projects a resolution is required:

  split   cut the surrounding project around the new dates
  shift   push the overlapping and later projects forward
  ignore  save with the overlap

Without --resolve an interactive terminal opens a picker; otherwise the
command fails with exit code 6 and lists the options.

Examples:
  sitebook project schedule --id=3 --start=2026-11-02 --end=2026-11-05
  sitebook project schedule --id=3 --start=2026-11-03 --end=2026-11-04 --resolve=split`,
		RunE: handler.Command(runSchedule),
	}
	addDateFlags(cmd)
	cmd.Flags().String("resolve", "", "Conflict resolution (split, shift, ignore)")
	cmd.Flags().Bool("no-input", false, "Never open the interactive picker")
	return cmd
}

func runSchedule(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	req, err := parseRequest(env)
	if err != nil {
		return nil, err
	}
	raw, _ := env.Cmd.Flags().GetString("resolve")
	res, err := schedule.ParseResolution(raw)
	if err != nil {
		return nil, err
	}

	result, err := env.CLI.App.Schedule.Schedule(ctx, req, res)
	var conflict *schedule.ConflictError
	if errors.As(err, &conflict) && res == schedule.ResolveNone && interactive(env) {
		choice, pickErr := picker.Run(ctx, conflict.Plan, env.Cmd.InOrStdin(), env.Cmd.ErrOrStderr())
		if errors.Is(pickErr, picker.ErrCancelled) {
			return &handler.Result{Data: conflict.Plan, Human: func(w io.Writer) error {
				_, err := fmt.Fprintln(w, "Cancelled, nothing saved")
				return err
			}}, nil
		}
		if pickErr != nil {
			return nil, pickErr
		}
		result, err = env.CLI.App.Schedule.Schedule(ctx, req, choice)
	}
	if err != nil {
		return nil, err
	}

	return &handler.Result{Data: result, Human: func(w io.Writer) error {
		fmt.Fprintf(w, "✓ Project %d scheduled: %s\n", result.Project.ID, cli.DescribeDates(result.Project))
		for _, mv := range result.Moved {
			fmt.Fprintf(w, "  moved %s\n", picker.DescribeMove(mv))
		}
		if result.StatusChanged {
			fmt.Fprintf(w, "  client is now %s\n", styles.Status(result.Project.ClientStatus))
		}
		return nil
	}}, nil
}

// interactive reports whether the picker can be shown
func interactive(env *handler.Env) bool {
	noInput, _ := env.Cmd.Flags().GetBool("no-input")
	return !noInput && env.Interactive()
}

// UpdateCmd returns the project update subcommand
func UpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update a project's description or price",
		RunE:  handler.Command(runUpdate),
	}
	cmd.Flags().Int("id", 0, "Project ID (required)")
	_ = cmd.MarkFlagRequired("id")
	cmd.Flags().String("description", "", "Project description")
	cmd.Flags().Float64("price", 0, "Project price")
	handler.AddOutputFlags(cmd)
	return cmd
}

func runUpdate(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	id, err := env.Flags.ParseID("id")
	if err != nil {
		return nil, err
	}
	err = env.CLI.App.Projects.UpdateDetails(ctx, projectservice.UpdateDetailsRequest{
		OrganizationID: env.OrganizationID,
		ID:             id,
		Description:    env.Flags.StringIfChanged("description"),
		Price:          env.Flags.Float64IfChanged("price"),
	})
	if err != nil {
		return nil, err
	}
	p, err := env.CLI.App.Projects.GetProject(ctx, env.OrganizationID, id)
	if err != nil {
		return nil, err
	}
	return &handler.Result{Data: p, Human: func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "✓ Project %d updated (%s)\n", p.ID, styles.Money(p.Price))
		return err
	}}, nil
}
