package cost

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thenoetrevino/sitebook/internal/database"
	"github.com/thenoetrevino/sitebook/internal/models"
	"github.com/thenoetrevino/sitebook/internal/testutil"
)

func TestAddCost_AndSummary(t *testing.T) {
	t.Parallel()
	db := testutil.SetupTestDB(t)
	svc := NewService(database.NewStore(db), nil)
	ctx := context.Background()

	org := testutil.CreateTestOrganization(t, db, "Builders")
	clientID, _ := testutil.CreateTestClient(t, db, org, "Dana")
	avi := testutil.CreateTestMember(t, db, org, "avi@example.com", models.RoleWorker)
	noa := testutil.CreateTestMember(t, db, org, "noa@example.com", models.RoleAdmin)

	entries := []AddCostRequest{
		{Title: "Tiles", Amount: 1200},
		{Title: "Cement", Amount: 300.5, Payer: models.PayerClient},
		{Title: "Screws", Amount: 45, Payer: strconv.Itoa(avi)},
		{Title: "Rental", Amount: 500, Payer: strconv.Itoa(avi)},
		{Title: "Paint", Amount: 250, Payer: strconv.Itoa(noa)},
	}
	for _, e := range entries {
		e.OrganizationID, e.ClientID = org, clientID
		_, err := svc.AddCost(ctx, e)
		require.NoError(t, err)
	}

	sum, err := svc.Summary(ctx, org, clientID)
	require.NoError(t, err)
	assert.Equal(t, 5, sum.Entries)
	assert.InDelta(t, 2295.5, sum.Total, 0.001)
	assert.InDelta(t, 1500.5, sum.PaidByClient, 0.001)
	assert.InDelta(t, 795, sum.PaidByTeam, 0.001)
	assert.InDelta(t, 545, sum.ByMember[avi], 0.001)
	assert.InDelta(t, 250, sum.ByMember[noa], 0.001)
}

func TestAddCost_Validation(t *testing.T) {
	t.Parallel()
	db := testutil.SetupTestDB(t)
	svc := NewService(database.NewStore(db), nil)

	org := testutil.CreateTestOrganization(t, db, "Builders")
	other := testutil.CreateTestOrganization(t, db, "Rivals")
	clientID, _ := testutil.CreateTestClient(t, db, org, "Dana")
	outsider := testutil.CreateTestMember(t, db, other, "x@example.com", models.RoleOwner)

	tests := []struct {
		name string
		req  AddCostRequest
		want error
	}{
		{"empty title", AddCostRequest{ClientID: clientID, Amount: 1}, ErrEmptyTitle},
		{"zero amount", AddCostRequest{ClientID: clientID, Title: "A"}, ErrInvalidAmount},
		{"negative amount", AddCostRequest{ClientID: clientID, Title: "A", Amount: -5}, ErrInvalidAmount},
		{"bad payer", AddCostRequest{ClientID: clientID, Title: "A", Amount: 1, Payer: "boss"}, ErrInvalidPayer},
		{"unknown member", AddCostRequest{ClientID: clientID, Title: "A", Amount: 1, Payer: "999"}, ErrInvalidPayer},
		{"member of another organization", AddCostRequest{ClientID: clientID, Title: "A", Amount: 1, Payer: strconv.Itoa(outsider)}, ErrInvalidPayer},
		{"unknown client", AddCostRequest{ClientID: 999, Title: "A", Amount: 1}, ErrClientNotFound},
		{"invalid client", AddCostRequest{Title: "A", Amount: 1}, ErrInvalidClientID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.OrganizationID = org
			_, err := svc.AddCost(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDeleteCost(t *testing.T) {
	t.Parallel()
	db := testutil.SetupTestDB(t)
	svc := NewService(database.NewStore(db), nil)
	ctx := context.Background()

	org := testutil.CreateTestOrganization(t, db, "Builders")
	clientID, _ := testutil.CreateTestClient(t, db, org, "Dana")
	otherClient, _ := testutil.CreateTestClient(t, db, org, "Levi")

	c, err := svc.AddCost(ctx, AddCostRequest{OrganizationID: org, ClientID: clientID, Title: "Tiles", Amount: 10})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteCost(ctx, org, otherClient, c.ID), ErrCostNotFound)
	require.NoError(t, svc.DeleteCost(ctx, org, clientID, c.ID))

	costs, err := svc.ListCosts(ctx, org, clientID)
	require.NoError(t, err)
	assert.Empty(t, costs)

	sum, err := svc.Summary(ctx, org, clientID)
	require.NoError(t, err)
	assert.Zero(t, sum.Total)
	assert.Empty(t, sum.ByMember)
}
