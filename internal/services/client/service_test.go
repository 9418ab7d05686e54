package client

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thenoetrevino/sitebook/internal/database"
	"github.com/thenoetrevino/sitebook/internal/models"
	"github.com/thenoetrevino/sitebook/internal/testutil"
	"github.com/thenoetrevino/sitebook/internal/workdays"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

var testNow = time.Date(2026, 10, 20, 15, 30, 0, 0, time.UTC)

func setup(t *testing.T) (Service, *database.Store, int) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	store := database.NewStore(db)
	org := testutil.CreateTestOrganization(t, db, "Builders")
	svc := NewService(store, workdays.Default(), nil, WithClock(func() time.Time { return testNow }))
	return svc, store, org
}

func ptr[T any](v T) *T { return &v }

// ============================================================================
// TEST CASES
// ============================================================================

func TestCreateClient(t *testing.T) {
	t.Parallel()
	svc, store, org := setup(t)
	ctx := context.Background()

	c, err := svc.CreateClient(ctx, CreateClientRequest{
		OrganizationID: org,
		FullName:       "  Dana Cohen ",
		Phone:          "050-1234567",
		Description:    "Kitchen renovation",
		Price:          42000,
	})
	require.NoError(t, err)

	assert.Equal(t, "Dana Cohen", c.FullName)
	assert.Equal(t, models.StatusProposal, c.Status)

	p, err := store.Projects.GetByClient(ctx, org, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kitchen renovation", p.Description)
	assert.InDelta(t, 42000, p.Price, 0.001)
	assert.True(t, p.Primary.IsEmpty())
}

func TestCreateClient_Validation(t *testing.T) {
	t.Parallel()
	svc, _, org := setup(t)

	tests := []struct {
		name string
		req  CreateClientRequest
		want error
	}{
		{"empty name", CreateClientRequest{OrganizationID: org, FullName: "   "}, ErrEmptyName},
		{"long name", CreateClientRequest{OrganizationID: org, FullName: strings.Repeat("a", 101)}, ErrNameTooLong},
		{"negative price", CreateClientRequest{OrganizationID: org, FullName: "A", Price: -1}, ErrNegativePrice},
		{"no organization", CreateClientRequest{FullName: "A"}, ErrInvalidOrgID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateClient(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestListClients_FiltersByStatusAndOrganization(t *testing.T) {
	t.Parallel()
	svc, store, org := setup(t)
	ctx := context.Background()

	a, err := svc.CreateClient(ctx, CreateClientRequest{OrganizationID: org, FullName: "A"})
	require.NoError(t, err)
	b, err := svc.CreateClient(ctx, CreateClientRequest{OrganizationID: org, FullName: "B"})
	require.NoError(t, err)
	require.NoError(t, svc.MarkSigned(ctx, org, b.ID))

	other := testutil.CreateTestOrganization(t, store.DB(), "Rivals")
	_, err = svc.CreateClient(ctx, CreateClientRequest{OrganizationID: other, FullName: "C"})
	require.NoError(t, err)

	all, err := svc.ListClients(ctx, org, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, b.ID, all[0].ID, "newest first")
	assert.Equal(t, a.ID, all[1].ID)

	signed, err := svc.ListClients(ctx, org, models.StatusSigned)
	require.NoError(t, err)
	require.Len(t, signed, 1)
	assert.Equal(t, b.ID, signed[0].ID)

	_, err = svc.ListClients(ctx, org, models.Status("archived"))
	assert.Error(t, err)
}

func TestGetClient_OtherOrganization(t *testing.T) {
	t.Parallel()
	svc, store, org := setup(t)
	ctx := context.Background()

	other := testutil.CreateTestOrganization(t, store.DB(), "Rivals")
	c, err := svc.CreateClient(ctx, CreateClientRequest{OrganizationID: other, FullName: "C"})
	require.NoError(t, err)

	_, err = svc.GetClient(ctx, org, c.ID)
	assert.ErrorIs(t, err, ErrClientNotFound)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = svc.GetClient(ctx, org, 0)
	assert.ErrorIs(t, err, ErrInvalidClientID)
}

func TestUpdateClient_PartialFields(t *testing.T) {
	t.Parallel()
	svc, _, org := setup(t)
	ctx := context.Background()

	c, err := svc.CreateClient(ctx, CreateClientRequest{OrganizationID: org, FullName: "Dana", Phone: "1", Email: "d@example.com"})
	require.NoError(t, err)

	require.NoError(t, svc.UpdateClient(ctx, UpdateClientRequest{
		OrganizationID: org,
		ID:             c.ID,
		Phone:          ptr("2"),
		Address:        ptr(" Herzl 1 "),
	}))

	got, err := svc.GetClient(ctx, org, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dana", got.FullName)
	assert.Equal(t, "2", got.Phone)
	assert.Equal(t, "d@example.com", got.Email)
	assert.Equal(t, "Herzl 1", got.Address)

	err = svc.UpdateClient(ctx, UpdateClientRequest{OrganizationID: org, ID: c.ID, FullName: ptr("")})
	assert.ErrorIs(t, err, ErrEmptyName)

	err = svc.UpdateClient(ctx, UpdateClientRequest{OrganizationID: org, ID: 999, Phone: ptr("3")})
	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestDeleteClient_CascadesProject(t *testing.T) {
	t.Parallel()
	svc, store, org := setup(t)
	ctx := context.Background()

	c, err := svc.CreateClient(ctx, CreateClientRequest{OrganizationID: org, FullName: "Dana"})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteClient(ctx, org, c.ID))

	_, err = store.Projects.GetByClient(ctx, org, c.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	assert.ErrorIs(t, svc.DeleteClient(ctx, org, c.ID), ErrClientNotFound)
}

func TestMarkSigned_OnlyMovesForward(t *testing.T) {
	t.Parallel()
	svc, store, org := setup(t)
	ctx := context.Background()

	c, err := svc.CreateClient(ctx, CreateClientRequest{OrganizationID: org, FullName: "Dana"})
	require.NoError(t, err)

	require.NoError(t, svc.MarkSigned(ctx, org, c.ID))
	got, err := svc.GetClient(ctx, org, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSigned, got.Status)

	testutil.SetClientStatus(t, store.DB(), c.ID, models.StatusInProgress)
	require.NoError(t, svc.MarkSigned(ctx, org, c.ID))
	got, err = svc.GetClient(ctx, org, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, got.Status)
}

func TestComplete_StampsEndDate(t *testing.T) {
	t.Parallel()
	svc, store, org := setup(t)
	ctx := context.Background()

	c, err := svc.CreateClient(ctx, CreateClientRequest{OrganizationID: org, FullName: "Dana"})
	require.NoError(t, err)
	p, err := store.Projects.GetByClient(ctx, org, c.ID)
	require.NoError(t, err)
	testutil.SetProjectDates(t, store.DB(), p.ID, "2026-10-04", "2026-10-29", "", "")
	testutil.SetClientStatus(t, store.DB(), c.ID, models.StatusInProgress)

	require.NoError(t, svc.Complete(ctx, org, c.ID))

	got, err := svc.GetClient(ctx, org, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)

	p, err = store.Projects.GetByClient(ctx, org, c.ID)
	require.NoError(t, err)
	assert.Equal(t, testutil.Range(t, "2026-10-04", "2026-10-20"), p.Primary)

	// Completing again keeps the first end date
	testutil.SetProjectDates(t, store.DB(), p.ID, "2026-10-04", "2026-10-21", "", "")
	require.NoError(t, svc.Complete(ctx, org, c.ID))
	p, err = store.Projects.GetByClient(ctx, org, c.ID)
	require.NoError(t, err)
	assert.Equal(t, testutil.Date(t, "2026-10-21"), p.Primary.End)
}

func TestAdvanceStarted(t *testing.T) {
	t.Parallel()
	svc, store, org := setup(t)
	ctx := context.Background()
	db := store.DB()

	started, startedProject := testutil.CreateTestClient(t, db, org, "Started")
	testutil.SetClientStatus(t, db, started, models.StatusSigned)
	testutil.SetProjectDates(t, db, startedProject, "2026-10-20", "2026-10-25", "", "")

	future, futureProject := testutil.CreateTestClient(t, db, org, "Future")
	testutil.SetClientStatus(t, db, future, models.StatusSigned)
	testutil.SetProjectDates(t, db, futureProject, "2026-10-21", "2026-10-25", "", "")

	_, proposalProject := testutil.CreateTestClient(t, db, org, "Proposal")
	testutil.SetProjectDates(t, db, proposalProject, "2026-10-01", "2026-10-05", "", "")

	unscheduled, _ := testutil.CreateTestClient(t, db, org, "Unscheduled")
	testutil.SetClientStatus(t, db, unscheduled, models.StatusSigned)

	advanced, err := svc.AdvanceStarted(ctx, org)
	require.NoError(t, err)
	assert.Equal(t, []int{started}, advanced)

	counts, err := svc.StatusCounts(ctx, org)
	require.NoError(t, err)
	assert.Equal(t, map[models.Status]int{
		models.StatusProposal:   1,
		models.StatusSigned:     2,
		models.StatusInProgress: 1,
		models.StatusCompleted:  0,
	}, counts)

	again, err := svc.AdvanceStarted(ctx, org)
	require.NoError(t, err)
	assert.Empty(t, again)
}
