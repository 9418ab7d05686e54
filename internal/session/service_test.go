package session

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thenoetrevino/sitebook/internal/database"
	"github.com/thenoetrevino/sitebook/internal/models"
	"github.com/thenoetrevino/sitebook/internal/services/team"
	"github.com/thenoetrevino/sitebook/internal/testutil"
	"golang.org/x/crypto/bcrypt"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

type clock struct{ now atomic.Int64 }

func newClock() *clock {
	c := &clock{}
	c.now.Store(time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC).UnixNano())
	return c
}

func (c *clock) Now() time.Time          { return time.Unix(0, c.now.Load()).UTC() }
func (c *clock) Advance(d time.Duration) { c.now.Add(int64(d)) }

// stallingLoader blocks until the context ends while stall is set
func stallingLoader(store *database.Store, stall *atomic.Bool) ProfileLoader {
	return func(ctx context.Context, id int) (*models.Member, error) {
		if stall.Load() {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return store.Members.GetByID(ctx, id)
	}
}

func testConfig(policy Policy) Config {
	return Config{
		ProfileTimeout: 50 * time.Millisecond,
		Policy:         policy,
		TTL:            time.Hour,
		HashCost:       bcrypt.MinCost,
	}
}

func register(t *testing.T, m *Manager, email, org string) *models.Member {
	t.Helper()
	member, err := m.Register(context.Background(), RegisterRequest{
		Email: email, Password: "correct horse", FullName: "Dana Cohen", OrganizationName: org,
	})
	require.NoError(t, err)
	return member
}

// ============================================================================
// REGISTER
// ============================================================================

func TestRegister_CreatesOrganizationAsOwner(t *testing.T) {
	t.Parallel()
	store := testutil.SetupTestStore(t)
	m := NewManager(store, testConfig(PolicyRetain))

	member := register(t, m, "Dana@Example.com", "Cohen Renovations")
	assert.Equal(t, "dana@example.com", member.Email)
	assert.Equal(t, models.RoleOwner, member.Role)
	assert.NotZero(t, member.OrganizationID)
	assert.NotEqual(t, "correct horse", member.PasswordHash)

	org, err := store.Organizations.GetByID(context.Background(), member.OrganizationID)
	require.NoError(t, err)
	assert.Equal(t, "Cohen Renovations", org.Name)
}

func TestRegister_ConsumesInvite(t *testing.T) {
	t.Parallel()
	store := testutil.SetupTestStore(t)
	m := NewManager(store, testConfig(PolicyRetain))
	ctx := context.Background()

	owner := register(t, m, "owner@example.com", "Cohen Renovations")
	_, err := team.NewService(store, nil).Invite(ctx, owner.OrganizationID, "avi@example.com", models.RoleAdmin)
	require.NoError(t, err)

	member := register(t, m, "AVI@example.com", "ignored")
	assert.Equal(t, owner.OrganizationID, member.OrganizationID)
	assert.Equal(t, models.RoleAdmin, member.Role)

	invites, err := store.Members.ListInvites(ctx, owner.OrganizationID)
	require.NoError(t, err)
	assert.Empty(t, invites)

	orgs, err := store.Organizations.List(ctx)
	require.NoError(t, err)
	assert.Len(t, orgs, 1)
}

func TestRegister_Validation(t *testing.T) {
	t.Parallel()
	store := testutil.SetupTestStore(t)
	m := NewManager(store, testConfig(PolicyRetain))
	register(t, m, "taken@example.com", "Org")

	tests := []struct {
		name string
		req  RegisterRequest
		want error
	}{
		{"bad email", RegisterRequest{Email: "nope", Password: "long enough", FullName: "A", OrganizationName: "O"}, team.ErrInvalidEmail},
		{"short password", RegisterRequest{Email: "a@example.com", Password: "short", FullName: "A", OrganizationName: "O"}, ErrWeakPassword},
		{"no name", RegisterRequest{Email: "a@example.com", Password: "long enough", OrganizationName: "O"}, ErrEmptyName},
		{"no invite and no organization", RegisterRequest{Email: "a@example.com", Password: "long enough", FullName: "A"}, ErrOrganizationNeeded},
		{"email taken", RegisterRequest{Email: "TAKEN@example.com", Password: "long enough", FullName: "A", OrganizationName: "O"}, ErrEmailTaken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Register(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

// ============================================================================
// SIGN IN
// ============================================================================

func TestSignIn_Ready(t *testing.T) {
	t.Parallel()
	store := testutil.SetupTestStore(t)
	m := NewManager(store, testConfig(PolicyRetain))
	member := register(t, m, "dana@example.com", "Cohen Renovations")

	sess, err := m.SignIn(context.Background(), " DANA@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, StateReady, sess.State)
	assert.Equal(t, member.ID, sess.MemberID)
	assert.Equal(t, member.OrganizationID, sess.OrganizationID)
	assert.Equal(t, models.RoleOwner, sess.Role)
	assert.NotEmpty(t, sess.Token)

	got, err := m.Authenticate(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.MemberID, got.MemberID)

	m.SignOut(sess.Token)
	_, err = m.Authenticate(sess.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestSignIn_RejectsBadCredentials(t *testing.T) {
	t.Parallel()
	store := testutil.SetupTestStore(t)
	m := NewManager(store, testConfig(PolicyRetain))
	register(t, m, "dana@example.com", "Cohen Renovations")

	_, err := m.SignIn(context.Background(), "dana@example.com", "wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = m.SignIn(context.Background(), "nobody@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Zero(t, m.Active())
}

func TestSignIn_ProfileTimeoutRetain(t *testing.T) {
	t.Parallel()
	store := testutil.SetupTestStore(t)
	var stall atomic.Bool
	m := NewManager(store, testConfig(PolicyRetain), WithProfileLoader(stallingLoader(store, &stall)))
	register(t, m, "dana@example.com", "Cohen Renovations")

	stall.Store(true)
	sess, err := m.SignIn(context.Background(), "dana@example.com", "correct horse")
	require.ErrorIs(t, err, ErrProfileTimeout)
	require.NotNil(t, sess)
	assert.Equal(t, StateError, sess.State)
	assert.Equal(t, ErrProfileTimeout.Error(), sess.Error)

	_, err = m.Authenticate(sess.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated, "a failed session cannot authenticate")

	stall.Store(false)
	reloaded, err := m.Reload(context.Background(), sess.Token)
	require.NoError(t, err)
	assert.Equal(t, StateReady, reloaded.State)
	assert.Empty(t, reloaded.Error)

	_, err = m.Authenticate(sess.Token)
	assert.NoError(t, err)
}

func TestSignIn_ProfileTimeoutSignOut(t *testing.T) {
	t.Parallel()
	store := testutil.SetupTestStore(t)
	var stall atomic.Bool
	m := NewManager(store, testConfig(PolicySignOut), WithProfileLoader(stallingLoader(store, &stall)))
	register(t, m, "dana@example.com", "Cohen Renovations")

	stall.Store(true)
	sess, err := m.SignIn(context.Background(), "dana@example.com", "correct horse")
	require.ErrorIs(t, err, ErrProfileTimeout)
	assert.Equal(t, StateSignedOut, sess.State)

	_, ok := m.Lookup(sess.Token)
	assert.False(t, ok)
	_, err = m.Reload(context.Background(), sess.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestSignIn_NoOrganization(t *testing.T) {
	t.Parallel()
	store := testutil.SetupTestStore(t)
	m := NewManager(store, testConfig(PolicyRetain))

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	_, err = store.Members.Create(context.Background(), &models.Member{
		Email: "orphan@example.com", FullName: "Orphan", Role: models.RoleWorker, Color: "#000000", PasswordHash: string(hash),
	})
	require.NoError(t, err)

	sess, err := m.SignIn(context.Background(), "orphan@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrNoOrganization)
	require.NotNil(t, sess)
	assert.Equal(t, StateError, sess.State)
}

func TestSession_Expiry(t *testing.T) {
	t.Parallel()
	store := testutil.SetupTestStore(t)
	clk := newClock()
	m := NewManager(store, testConfig(PolicyRetain), WithClock(clk.Now))
	register(t, m, "dana@example.com", "Cohen Renovations")

	first, err := m.SignIn(context.Background(), "dana@example.com", "correct horse")
	require.NoError(t, err)
	clk.Advance(30 * time.Minute)
	second, err := m.SignIn(context.Background(), "dana@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, 2, m.Active())

	clk.Advance(31 * time.Minute)
	assert.Equal(t, 1, m.Sweep())

	_, err = m.Authenticate(first.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = m.Authenticate(second.Token)
	require.NoError(t, err)

	clk.Advance(time.Hour)
	_, err = m.Authenticate(second.Token)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Zero(t, m.Active())
}

// ============================================================================
// STATE MACHINE
// ============================================================================

func TestCanTransition(t *testing.T) {
	t.Parallel()
	tests := []struct {
		from, to State
		want     bool
	}{
		{StateIdle, StateAuthenticating, true},
		{StateIdle, StateReady, false},
		{StateAuthenticating, StateProfileLoading, true},
		{StateAuthenticating, StateReady, false},
		{StateProfileLoading, StateReady, true},
		{StateProfileLoading, StateError, true},
		{StateError, StateProfileLoading, true},
		{StateReady, StateProfileLoading, true},
		{StateReady, StateSignedOut, true},
		{StateError, StateSignedOut, true},
		{StateSignedOut, StateAuthenticating, false},
		{StateSignedOut, StateSignedOut, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestParsePolicy(t *testing.T) {
	t.Parallel()
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyRetain, p)

	p, err = ParsePolicy("SIGN_OUT")
	require.NoError(t, err)
	assert.Equal(t, PolicySignOut, p)

	_, err = ParsePolicy("forever")
	assert.ErrorIs(t, err, ErrUnknownPolicy)
}
