package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/thenoetrevino/sitebook/internal/models"
)

// TaskRepo handles calendar tasks and their assignees
type TaskRepo struct {
	db DBTX
}

func scanTask(row interface{ Scan(...any) error }) (*models.Task, error) {
	t := &models.Task{}
	var due sql.NullString
	var created sql.NullTime
	if err := row.Scan(&t.ID, &t.OrganizationID, &t.Text, &due, &t.Time, &t.IsCompleted, &created); err != nil {
		return nil, err
	}
	var err error
	if t.DueDate, err = parseDate(due); err != nil {
		return nil, err
	}
	t.CreatedAt = NullTimeToTime(created)
	t.AssignedTo = []int{}
	return t, nil
}

// Create inserts a task and its assignees
func (r *TaskRepo) Create(ctx context.Context, t *models.Task) (*models.Task, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (organization_id, text, due_date, time) VALUES (?, ?, ?, ?)`,
		t.OrganizationID, t.Text, dateValue(t.DueDate), t.Time)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	if err := r.SetAssignees(ctx, int(id), t.AssignedTo); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, t.OrganizationID, int(id))
}

// GetByID retrieves a task with its assignees
func (r *TaskRepo) GetByID(ctx context.Context, orgID, id int) (*models.Task, error) {
	t, err := scanTask(r.db.QueryRowContext(ctx, `
		SELECT id, organization_id, text, due_date, time, is_completed, created_at
		FROM tasks WHERE id = ? AND organization_id = ?`, id, orgID))
	if err != nil {
		return nil, notFound(err, "task", id)
	}
	if err := r.loadAssignees(ctx, []*models.Task{t}); err != nil {
		return nil, err
	}
	return t, nil
}

// List returns every task of the organization, ordered by date then time
func (r *TaskRepo) List(ctx context.Context, orgID int) ([]*models.Task, error) {
	return r.queryTasks(ctx, `
		SELECT id, organization_id, text, due_date, time, is_completed, created_at
		FROM tasks
		WHERE organization_id = ?
		ORDER BY due_date, time, id`, orgID)
}

// ListBetween returns the tasks due in [from, to], ordered by date then time
func (r *TaskRepo) ListBetween(ctx context.Context, orgID int, from, to time.Time) ([]*models.Task, error) {
	return r.queryTasks(ctx, `
		SELECT id, organization_id, text, due_date, time, is_completed, created_at
		FROM tasks
		WHERE organization_id = ? AND due_date >= ? AND due_date <= ?
		ORDER BY due_date, time, id`, orgID, dateValue(from), dateValue(to))
}

func (r *TaskRepo) queryTasks(ctx context.Context, query string, args ...any) ([]*models.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadAssignees(ctx, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update rewrites the text, due date and time of a task
func (r *TaskRepo) Update(ctx context.Context, t *models.Task) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET text = ?, due_date = ?, time = ? WHERE id = ? AND organization_id = ?`,
		t.Text, dateValue(t.DueDate), t.Time, t.ID, t.OrganizationID)
	if err != nil {
		return fmt.Errorf("failed to update task %d: %w", t.ID, err)
	}
	return requireAffected(res, "task", t.ID)
}

// SetCompleted marks a task done or open
func (r *TaskRepo) SetCompleted(ctx context.Context, orgID, id int, done bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET is_completed = ? WHERE id = ? AND organization_id = ?`, done, id, orgID)
	if err != nil {
		return fmt.Errorf("failed to update task %d: %w", id, err)
	}
	return requireAffected(res, "task", id)
}

// Delete removes a task
func (r *TaskRepo) Delete(ctx context.Context, orgID, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND organization_id = ?`, id, orgID)
	if err != nil {
		return fmt.Errorf("failed to delete task %d: %w", id, err)
	}
	return requireAffected(res, "task", id)
}

// SetAssignees replaces the member list of a task
func (r *TaskRepo) SetAssignees(ctx context.Context, taskID int, memberIDs []int) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM task_assignees WHERE task_id = ?`, taskID); err != nil {
		return fmt.Errorf("failed to clear assignees of task %d: %w", taskID, err)
	}
	for _, m := range memberIDs {
		_, err := r.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO task_assignees (task_id, member_id) VALUES (?, ?)`, taskID, m)
		if err != nil {
			return fmt.Errorf("failed to assign member %d to task %d: %w", m, taskID, err)
		}
	}
	return nil
}

// loadAssignees fills AssignedTo for tasks with a single query
func (r *TaskRepo) loadAssignees(ctx context.Context, tasks []*models.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	byID := make(map[int]*models.Task, len(tasks))
	placeholders := make([]string, len(tasks))
	args := make([]any, len(tasks))
	for i, t := range tasks {
		byID[t.ID] = t
		placeholders[i] = "?"
		args[i] = t.ID
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT task_id, member_id FROM task_assignees
		WHERE task_id IN (`+strings.Join(placeholders, ",")+`)
		ORDER BY task_id, member_id`, args...)
	if err != nil {
		return fmt.Errorf("failed to load assignees: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var taskID, memberID int
		if err := rows.Scan(&taskID, &memberID); err != nil {
			return err
		}
		if t, ok := byID[taskID]; ok {
			t.AssignedTo = append(t.AssignedTo, memberID)
		}
	}
	return rows.Err()
}
