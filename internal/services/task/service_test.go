package task

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thenoetrevino/sitebook/internal/database"
	"github.com/thenoetrevino/sitebook/internal/models"
	"github.com/thenoetrevino/sitebook/internal/testutil"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

func setup(t *testing.T) (Service, *sql.DB, int) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	org := testutil.CreateTestOrganization(t, db, "Builders")
	return NewService(database.NewStore(db), nil), db, org
}

func taskTexts(tasks []*models.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Text
	}
	return out
}

// ============================================================================
// CREATE
// ============================================================================

func TestCreateTask(t *testing.T) {
	t.Parallel()
	svc, db, org := setup(t)
	ctx := context.Background()

	avi := testutil.CreateTestMember(t, db, org, "avi@example.com", models.RoleWorker)
	noa := testutil.CreateTestMember(t, db, org, "noa@example.com", models.RoleWorker)

	task, err := svc.CreateTask(ctx, CreateTaskRequest{
		OrganizationID: org,
		Text:           " Measure kitchen ",
		DueDate:        time.Date(2026, 10, 21, 18, 45, 0, 0, time.UTC),
		AssignedTo:     []int{noa, avi, noa},
	})
	require.NoError(t, err)

	assert.Equal(t, "Measure kitchen", task.Text)
	assert.Equal(t, models.DefaultTaskTime, task.Time)
	assert.Equal(t, testutil.Date(t, "2026-10-21"), task.DueDate)
	assert.ElementsMatch(t, []int{avi, noa}, task.AssignedTo)
	assert.False(t, task.IsCompleted)
}

func TestCreateTask_Validation(t *testing.T) {
	t.Parallel()
	svc, db, org := setup(t)
	due := time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC)

	other := testutil.CreateTestOrganization(t, db, "Rivals")
	outsider := testutil.CreateTestMember(t, db, other, "x@example.com", models.RoleWorker)

	tests := []struct {
		name string
		req  CreateTaskRequest
		want error
	}{
		{"empty text", CreateTaskRequest{DueDate: due}, ErrEmptyText},
		{"missing date", CreateTaskRequest{Text: "A"}, ErrMissingDueDate},
		{"bad time", CreateTaskRequest{Text: "A", DueDate: due, Time: "25:00"}, ErrInvalidTime},
		{"unknown member", CreateTaskRequest{Text: "A", DueDate: due, AssignedTo: []int{999}}, ErrUnknownMember},
		{"member of another organization", CreateTaskRequest{Text: "A", DueDate: due, AssignedTo: []int{outsider}}, ErrUnknownMember},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.OrganizationID = org
			_, err := svc.CreateTask(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	tasks, err := svc.ListTasks(context.Background(), org)
	require.NoError(t, err)
	assert.Empty(t, tasks, "failed creates leave nothing behind")
}

// ============================================================================
// READ
// ============================================================================

func TestListTasks_OrderedByDueDateAndTime(t *testing.T) {
	t.Parallel()
	svc, _, org := setup(t)
	ctx := context.Background()

	for _, req := range []CreateTaskRequest{
		{Text: "late", DueDate: testutil.Date(t, "2026-10-25"), Time: "08:00"},
		{Text: "afternoon", DueDate: testutil.Date(t, "2026-10-21"), Time: "14:30"},
		{Text: "morning", DueDate: testutil.Date(t, "2026-10-21"), Time: "7:15"},
	} {
		req.OrganizationID = org
		_, err := svc.CreateTask(ctx, req)
		require.NoError(t, err)
	}

	tasks, err := svc.ListTasks(ctx, org)
	require.NoError(t, err)
	assert.Equal(t, []string{"morning", "afternoon", "late"}, taskTexts(tasks))
	assert.Equal(t, "07:15", tasks[0].Time)
}

func TestListRange(t *testing.T) {
	t.Parallel()
	svc, _, org := setup(t)
	ctx := context.Background()

	for _, d := range []string{"2026-10-18", "2026-10-20", "2026-10-24", "2026-10-25"} {
		_, err := svc.CreateTask(ctx, CreateTaskRequest{OrganizationID: org, Text: d, DueDate: testutil.Date(t, d)})
		require.NoError(t, err)
	}

	tasks, err := svc.ListRange(ctx, org, testutil.Date(t, "2026-10-18"), testutil.Date(t, "2026-10-24"))
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-10-18", "2026-10-20", "2026-10-24"}, taskTexts(tasks))

	_, err = svc.ListRange(ctx, org, testutil.Date(t, "2026-10-24"), testutil.Date(t, "2026-10-18"))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

// ============================================================================
// UPDATE / TOGGLE / DELETE
// ============================================================================

func TestUpdateTask_ReassignsAndKeepsFields(t *testing.T) {
	t.Parallel()
	svc, db, org := setup(t)
	ctx := context.Background()

	avi := testutil.CreateTestMember(t, db, org, "avi@example.com", models.RoleWorker)
	noa := testutil.CreateTestMember(t, db, org, "noa@example.com", models.RoleWorker)

	task, err := svc.CreateTask(ctx, CreateTaskRequest{
		OrganizationID: org, Text: "Order tiles", DueDate: testutil.Date(t, "2026-10-21"), Time: "10:00", AssignedTo: []int{avi},
	})
	require.NoError(t, err)

	assignees := []int{noa}
	newTime := "16:00"
	updated, err := svc.UpdateTask(ctx, UpdateTaskRequest{OrganizationID: org, ID: task.ID, Time: &newTime, AssignedTo: &assignees})
	require.NoError(t, err)
	assert.Equal(t, "Order tiles", updated.Text)
	assert.Equal(t, "16:00", updated.Time)
	assert.Equal(t, []int{noa}, updated.AssignedTo)

	none := []int{}
	updated, err = svc.UpdateTask(ctx, UpdateTaskRequest{OrganizationID: org, ID: task.ID, AssignedTo: &none})
	require.NoError(t, err)
	assert.Empty(t, updated.AssignedTo)

	_, err = svc.UpdateTask(ctx, UpdateTaskRequest{OrganizationID: org, ID: 999})
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestToggleTask(t *testing.T) {
	t.Parallel()
	svc, _, org := setup(t)
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, CreateTaskRequest{OrganizationID: org, Text: "Call supplier", DueDate: testutil.Date(t, "2026-10-21")})
	require.NoError(t, err)

	toggled, err := svc.ToggleTask(ctx, org, task.ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsCompleted)

	toggled, err = svc.ToggleTask(ctx, org, task.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsCompleted)

	_, err = svc.ToggleTask(ctx, org+1, task.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestDeleteTask(t *testing.T) {
	t.Parallel()
	svc, db, org := setup(t)
	ctx := context.Background()
	avi := testutil.CreateTestMember(t, db, org, "avi@example.com", models.RoleWorker)

	task, err := svc.CreateTask(ctx, CreateTaskRequest{OrganizationID: org, Text: "A", DueDate: testutil.Date(t, "2026-10-21"), AssignedTo: []int{avi}})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTask(ctx, org, task.ID))
	assert.ErrorIs(t, svc.DeleteTask(ctx, org, task.ID), ErrTaskNotFound)
	assert.ErrorIs(t, svc.DeleteTask(ctx, org, 0), ErrInvalidTaskID)

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM task_assignees").Scan(&n))
	assert.Zero(t, n)
}
