// Package task holds all cli commands related to the team calendar
//
// e.g., sitebook task ...
package task

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/sitebook/internal/apperr"
	"github.com/thenoetrevino/sitebook/internal/cli/handler"
	"github.com/thenoetrevino/sitebook/internal/cli/styles"
	"github.com/thenoetrevino/sitebook/internal/models"
	taskservice "github.com/thenoetrevino/sitebook/internal/services/task"
)

// TaskCmd returns the task parent command
func TaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage calendar tasks",
	}
	handler.AddOrgFlag(cmd)

	cmd.AddCommand(ListCmd())
	cmd.AddCommand(AddCmd())
	cmd.AddCommand(UpdateCmd())
	cmd.AddCommand(DoneCmd())
	cmd.AddCommand(DeleteCmd())

	return cmd
}

// ListCmd returns the task list subcommand
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, optionally within a date range",
		RunE:  handler.Command(runList),
	}
	cmd.Flags().String("from", "", "First day, YYYY-MM-DD")
	cmd.Flags().String("to", "", "Last day, YYYY-MM-DD")
	handler.AddOutputFlags(cmd)
	return cmd
}

func runList(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	var (
		tasks []*models.Task
		err   error
	)
	if env.Cmd.Flags().Changed("from") || env.Cmd.Flags().Changed("to") {
		r, perr := env.Flags.ParseRange("from", "to")
		if perr != nil {
			return nil, perr
		}
		tasks, err = env.CLI.App.Tasks.ListRange(ctx, env.OrganizationID, r.Start, r.End)
	} else {
		tasks, err = env.CLI.App.Tasks.ListTasks(ctx, env.OrganizationID)
	}
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return &handler.Result{Data: tasks, Human: func(w io.Writer) error {
		if len(tasks) == 0 {
			_, err := fmt.Fprintln(w, "No tasks")
			return err
		}
		for _, t := range tasks {
			box := "[ ]"
			if t.IsCompleted {
				box = "[x]"
			}
			fmt.Fprintf(w, "%4d %s %s %s  %s\n", t.ID, box, styles.Day(t.DueDate, now), t.Time, t.Text)
		}
		return nil
	}}, nil
}

// parseAssignees reads a comma separated member id list
func parseAssignees(raw string) ([]int, error) {
	ids := []int{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%w: assignee %q is not a member id", apperr.ErrInvalidInput, part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// AddCmd returns the task add subcommand
func AddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a task",
		Long: `Add a task to the calendar.

Examples:
  sitebook task add "Order windows" --due=2026-11-03 --time=14:00 --assign=2,5`,
		Args: cobra.ExactArgs(1),
		RunE: handler.Command(runAdd),
	}
	cmd.Flags().String("due", "", "Due date, YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("due")
	cmd.Flags().String("time", "", "Time of day, HH:MM (default "+models.DefaultTaskTime+")")
	cmd.Flags().String("assign", "", "Comma separated member IDs")
	handler.AddOutputFlags(cmd)
	return cmd
}

func runAdd(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	due, err := env.Flags.ParseDate("due")
	if err != nil {
		return nil, err
	}
	at, _ := env.Cmd.Flags().GetString("time")
	raw, _ := env.Cmd.Flags().GetString("assign")
	assignees, err := parseAssignees(raw)
	if err != nil {
		return nil, err
	}
	t, err := env.CLI.App.Tasks.CreateTask(ctx, taskservice.CreateTaskRequest{
		OrganizationID: env.OrganizationID,
		Text:           env.Args[0],
		DueDate:        due,
		Time:           at,
		AssignedTo:     assignees,
	})
	if err != nil {
		return nil, err
	}
	return &handler.Result{Data: t, Human: func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "✓ Task %d added for %s %s\n", t.ID, t.DueDate.Format("Mon Jan 2"), t.Time)
		return err
	}}, nil
}

// UpdateCmd returns the task update subcommand
func UpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update a task",
		RunE:  handler.Command(runUpdate),
	}
	cmd.Flags().Int("id", 0, "Task ID (required)")
	_ = cmd.MarkFlagRequired("id")
	cmd.Flags().String("text", "", "Task text")
	cmd.Flags().String("due", "", "Due date, YYYY-MM-DD")
	cmd.Flags().String("time", "", "Time of day, HH:MM")
	cmd.Flags().String("assign", "", "Comma separated member IDs (empty clears)")
	handler.AddOutputFlags(cmd)
	return cmd
}

func runUpdate(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	id, err := env.Flags.ParseID("id")
	if err != nil {
		return nil, err
	}
	req := taskservice.UpdateTaskRequest{
		OrganizationID: env.OrganizationID,
		ID:             id,
		Text:           env.Flags.StringIfChanged("text"),
		Time:           env.Flags.StringIfChanged("time"),
	}
	if env.Cmd.Flags().Changed("due") {
		due, err := env.Flags.ParseDate("due")
		if err != nil {
			return nil, err
		}
		req.DueDate = &due
	}
	if raw := env.Flags.StringIfChanged("assign"); raw != nil {
		assignees, err := parseAssignees(*raw)
		if err != nil {
			return nil, err
		}
		req.AssignedTo = &assignees
	}
	t, err := env.CLI.App.Tasks.UpdateTask(ctx, req)
	if err != nil {
		return nil, err
	}
	return &handler.Result{Data: t, Human: func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "✓ Task %d updated\n", t.ID)
		return err
	}}, nil
}

// DoneCmd returns the task done subcommand
func DoneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "done",
		Short: "Toggle a task's completion",
		RunE:  handler.Command(runDone),
	}
	cmd.Flags().Int("id", 0, "Task ID (required)")
	_ = cmd.MarkFlagRequired("id")
	handler.AddOutputFlags(cmd)
	return cmd
}

func runDone(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	id, err := env.Flags.ParseID("id")
	if err != nil {
		return nil, err
	}
	t, err := env.CLI.App.Tasks.ToggleTask(ctx, env.OrganizationID, id)
	if err != nil {
		return nil, err
	}
	return &handler.Result{Data: t, Human: func(w io.Writer) error {
		state := "reopened"
		if t.IsCompleted {
			state = "done"
		}
		_, err := fmt.Fprintf(w, "✓ Task %d %s\n", t.ID, state)
		return err
	}}, nil
}

// DeleteCmd returns the task delete subcommand
func DeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a task",
		RunE:  handler.Command(runDelete),
	}
	cmd.Flags().Int("id", 0, "Task ID (required)")
	_ = cmd.MarkFlagRequired("id")
	handler.AddOutputFlags(cmd)
	return cmd
}

func runDelete(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	id, err := env.Flags.ParseID("id")
	if err != nil {
		return nil, err
	}
	if err := env.CLI.App.Tasks.DeleteTask(ctx, env.OrganizationID, id); err != nil {
		return nil, err
	}
	return &handler.Result{Data: map[string]int{"id": id}, Human: func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "✓ Task %d deleted\n", id)
		return err
	}}, nil
}
