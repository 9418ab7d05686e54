package project

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thenoetrevino/sitebook/internal/database"
	"github.com/thenoetrevino/sitebook/internal/models"
	"github.com/thenoetrevino/sitebook/internal/testutil"
)

func ptr[T any](v T) *T { return &v }

func TestGetByClient(t *testing.T) {
	t.Parallel()
	db := testutil.SetupTestDB(t)
	svc := NewService(database.NewStore(db), nil) // nil event publisher is OK

	org := testutil.CreateTestOrganization(t, db, "Builders")
	clientID, projectID := testutil.CreateTestClient(t, db, org, "Dana")

	p, err := svc.GetByClient(context.Background(), org, clientID)
	require.NoError(t, err)
	assert.Equal(t, projectID, p.ID)
	assert.Equal(t, "Dana", p.ClientName)
	assert.Equal(t, models.StatusProposal, p.ClientStatus)

	_, err = svc.GetByClient(context.Background(), org+1, clientID)
	assert.ErrorIs(t, err, ErrProjectNotFound)

	_, err = svc.GetByClient(context.Background(), org, 0)
	assert.ErrorIs(t, err, ErrInvalidClientID)
}

func TestUpdateDetails(t *testing.T) {
	t.Parallel()
	db := testutil.SetupTestDB(t)
	svc := NewService(database.NewStore(db), nil)
	ctx := context.Background()

	org := testutil.CreateTestOrganization(t, db, "Builders")
	_, projectID := testutil.CreateTestClient(t, db, org, "Dana")

	require.NoError(t, svc.UpdateDetails(ctx, UpdateDetailsRequest{
		OrganizationID: org, ID: projectID, Description: ptr(" Bathroom "), Price: ptr(15500.5),
	}))
	require.NoError(t, svc.UpdateDetails(ctx, UpdateDetailsRequest{
		OrganizationID: org, ID: projectID, Price: ptr(16000.0),
	}))

	p, err := svc.GetProject(ctx, org, projectID)
	require.NoError(t, err)
	assert.Equal(t, "Bathroom", p.Description)
	assert.InDelta(t, 16000.0, p.Price, 0.001)
}

func TestUpdateDetails_Validation(t *testing.T) {
	t.Parallel()
	db := testutil.SetupTestDB(t)
	svc := NewService(database.NewStore(db), nil)
	org := testutil.CreateTestOrganization(t, db, "Builders")
	_, projectID := testutil.CreateTestClient(t, db, org, "Dana")

	tests := []struct {
		name string
		req  UpdateDetailsRequest
		want error
	}{
		{"invalid id", UpdateDetailsRequest{OrganizationID: org}, ErrInvalidProjectID},
		{"negative price", UpdateDetailsRequest{OrganizationID: org, ID: projectID, Price: ptr(-1.0)}, ErrNegativePrice},
		{"long description", UpdateDetailsRequest{OrganizationID: org, ID: projectID, Description: ptr(strings.Repeat("x", 2001))}, ErrDescriptionTooLong},
		{"missing", UpdateDetailsRequest{OrganizationID: org, ID: 999, Price: ptr(1.0)}, ErrProjectNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, svc.UpdateDetails(context.Background(), tt.req), tt.want)
		})
	}
}

func TestListScheduled_OnlyDatedProjects(t *testing.T) {
	t.Parallel()
	db := testutil.SetupTestDB(t)
	svc := NewService(database.NewStore(db), nil)
	org := testutil.CreateTestOrganization(t, db, "Builders")

	_, late := testutil.CreateTestClient(t, db, org, "Late")
	testutil.SetProjectDates(t, db, late, "2026-11-01", "2026-11-04", "", "")
	_, early := testutil.CreateTestClient(t, db, org, "Early")
	testutil.SetProjectDates(t, db, early, "2026-10-04", "2026-10-06", "2026-10-18", "2026-10-19")
	testutil.CreateTestClient(t, db, org, "Unscheduled")

	got, err := svc.ListScheduled(context.Background(), org)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, early, got[0].ID)
	require.NotNil(t, got[0].Secondary)
	assert.Equal(t, testutil.Range(t, "2026-10-18", "2026-10-19"), *got[0].Secondary)
	assert.Equal(t, late, got[1].ID)
	assert.Len(t, got[1].Ranges(), 1)
}
