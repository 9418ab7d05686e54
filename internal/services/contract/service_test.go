package contract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thenoetrevino/sitebook/internal/database"
	"github.com/thenoetrevino/sitebook/internal/models"
	"github.com/thenoetrevino/sitebook/internal/testutil"
)

func setup(t *testing.T) (Service, *database.Store, int, int) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	store := database.NewStore(db)
	org := testutil.CreateTestOrganization(t, db, "Builders")
	clientID, projectID := testutil.CreateTestClient(t, db, org, "Dana")
	require.NoError(t, store.Projects.UpdateDetails(context.Background(), org, projectID, "Deck", 9000))
	return NewService(store, nil), store, org, clientID
}

func TestSaveDraft_PrefillsDefaults(t *testing.T) {
	t.Parallel()
	svc, _, org, clientID := setup(t)
	ctx := context.Background()

	_, err := svc.AddTerm(ctx, org, "Payment within 30 days", true)
	require.NoError(t, err)
	_, err = svc.AddTerm(ctx, org, "Optional cleanup", false)
	require.NoError(t, err)
	_, err = svc.AddTerm(ctx, org, "Warranty 12 months", true)
	require.NoError(t, err)

	c, err := svc.SaveDraft(ctx, SaveDraftRequest{OrganizationID: org, ClientID: clientID})
	require.NoError(t, err)
	assert.Equal(t, []string{"Payment within 30 days", "Warranty 12 months"}, c.Terms)
	assert.InDelta(t, 9000, c.Price, 0.001)
	assert.False(t, c.IsSigned())
}

func TestSaveDraft_ExplicitValues(t *testing.T) {
	t.Parallel()
	svc, _, org, clientID := setup(t)
	ctx := context.Background()

	price := 12000.0
	c, err := svc.SaveDraft(ctx, SaveDraftRequest{
		OrganizationID: org,
		ClientID:       clientID,
		Terms:          []string{" One ", "", "Two"},
		Price:          &price,
		Notes:          "with railing",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"One", "Two"}, c.Terms)
	assert.InDelta(t, 12000, c.Price, 0.001)

	latest, err := svc.Get(ctx, org, clientID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, latest.ID)

	empty, err := svc.SaveDraft(ctx, SaveDraftRequest{OrganizationID: org, ClientID: clientID, Terms: []string{}})
	require.NoError(t, err)
	assert.Empty(t, empty.Terms)

	latest, err = svc.Get(ctx, org, clientID)
	require.NoError(t, err)
	assert.Equal(t, empty.ID, latest.ID, "latest draft wins")
}

func TestSaveDraft_UnknownClient(t *testing.T) {
	t.Parallel()
	svc, _, org, _ := setup(t)

	_, err := svc.SaveDraft(context.Background(), SaveDraftRequest{OrganizationID: org, ClientID: 999})
	assert.ErrorIs(t, err, ErrClientNotFound)

	_, err = svc.Get(context.Background(), org, 999)
	assert.ErrorIs(t, err, ErrContractNotFound)
}

func TestSign_MovesClientToSigned(t *testing.T) {
	t.Parallel()
	svc, store, org, clientID := setup(t)
	ctx := context.Background()

	draft, err := svc.SaveDraft(ctx, SaveDraftRequest{OrganizationID: org, ClientID: clientID})
	require.NoError(t, err)

	signed, err := svc.Sign(ctx, org, draft.ID, " Dana Cohen ")
	require.NoError(t, err)
	assert.True(t, signed.IsSigned())
	assert.Equal(t, "Dana Cohen", signed.SignerName)

	c, err := store.Clients.GetByID(ctx, org, clientID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSigned, c.Status)

	_, err = svc.Sign(ctx, org, draft.ID, "Again")
	assert.ErrorIs(t, err, ErrAlreadySigned)
}

func TestSign_DoesNotRegressStatus(t *testing.T) {
	t.Parallel()
	svc, store, org, clientID := setup(t)
	ctx := context.Background()
	testutil.SetClientStatus(t, store.DB(), clientID, models.StatusInProgress)

	draft, err := svc.SaveDraft(ctx, SaveDraftRequest{OrganizationID: org, ClientID: clientID})
	require.NoError(t, err)
	_, err = svc.Sign(ctx, org, draft.ID, "Dana")
	require.NoError(t, err)

	c, err := store.Clients.GetByID(ctx, org, clientID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, c.Status)
}

func TestSign_Validation(t *testing.T) {
	t.Parallel()
	svc, _, org, _ := setup(t)
	ctx := context.Background()

	_, err := svc.Sign(ctx, org, 0, "Dana")
	assert.ErrorIs(t, err, ErrInvalidContractID)
	_, err = svc.Sign(ctx, org, 1, "  ")
	assert.ErrorIs(t, err, ErrEmptySigner)
	_, err = svc.Sign(ctx, org, 999, "Dana")
	assert.ErrorIs(t, err, ErrContractNotFound)
}

func TestTerms(t *testing.T) {
	t.Parallel()
	svc, _, org, _ := setup(t)
	ctx := context.Background()

	_, err := svc.AddTerm(ctx, org, "  ", true)
	assert.ErrorIs(t, err, ErrEmptyTerm)

	term, err := svc.AddTerm(ctx, org, "No work on holidays", false)
	require.NoError(t, err)

	terms, err := svc.ListTerms(ctx, org)
	require.NoError(t, err)
	require.Len(t, terms, 1)
	assert.False(t, terms[0].IsDefault)

	require.NoError(t, svc.DeleteTerm(ctx, org, term.ID))
	assert.ErrorIs(t, svc.DeleteTerm(ctx, org, term.ID), ErrTermNotFound)
}
