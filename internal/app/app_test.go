package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thenoetrevino/sitebook/internal/config"
	"github.com/thenoetrevino/sitebook/internal/database"
	"github.com/thenoetrevino/sitebook/internal/metrics"
	"github.com/thenoetrevino/sitebook/internal/models"
	"github.com/thenoetrevino/sitebook/internal/storage"
	"github.com/thenoetrevino/sitebook/internal/testutil"
)

func testBucket(t *testing.T) storage.Bucket {
	t.Helper()
	b, err := storage.NewFSBucket(t.TempDir(), "http://localhost/files")
	require.NoError(t, err)
	return b
}

func TestNew(t *testing.T) {
	t.Parallel()
	store := testutil.SetupTestStore(t)

	_, err := New(store)
	assert.ErrorIs(t, err, ErrNoBucket)

	app, err := New(store, WithBucket(testBucket(t)))
	require.NoError(t, err)
	assert.NotNil(t, app.Organizations)
	assert.NotNil(t, app.Clients)
	assert.NotNil(t, app.Projects)
	assert.NotNil(t, app.Schedule)
	assert.NotNil(t, app.Contracts)
	assert.NotNil(t, app.Costs)
	assert.NotNil(t, app.Inventory)
	assert.NotNil(t, app.Tasks)
	assert.NotNil(t, app.Targets)
	assert.NotNil(t, app.Team)
	assert.NotNil(t, app.Files)
	assert.NotNil(t, app.Blueprints)
	assert.NotNil(t, app.Sessions)
	assert.Same(t, store, app.Store())
	assert.NoError(t, app.Close())
}

func TestSweep_AdvancesStartedClients(t *testing.T) {
	t.Parallel()
	db := testutil.SetupTestDB(t)
	m := metrics.New(prometheus.NewRegistry())
	now := func() time.Time { return time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC) }

	app, err := New(database.NewStore(db), WithBucket(testBucket(t)), WithMetrics(m), WithClock(now))
	require.NoError(t, err)
	ctx := context.Background()

	org := testutil.CreateTestOrganization(t, db, "Builders")
	started, startedProject := testutil.CreateTestClient(t, db, org, "Started")
	future, futureProject := testutil.CreateTestClient(t, db, org, "Future")
	testutil.SetClientStatus(t, db, started, models.StatusSigned)
	testutil.SetClientStatus(t, db, future, models.StatusSigned)
	testutil.SetProjectDates(t, db, startedProject, "2026-10-18", "2026-10-22", "", "")
	testutil.SetProjectDates(t, db, futureProject, "2026-11-01", "2026-11-05", "", "")

	n, err := app.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1.0, promtest.ToFloat64(m.ClientsAdvanced))

	c, err := app.Clients.GetClient(ctx, org, started)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, c.Status)

	c, err = app.Clients.GetClient(ctx, org, future)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSigned, c.Status)

	n, err = app.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "sweeping twice changes nothing")
}

func TestOpen_FromConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Database.Path = filepath.Join(dir, "data", "sitebook.db")
	cfg.Storage.Dir = filepath.Join(dir, "files")
	cfg.Schedule.Weekend = []string{"saturday", "sunday"}

	app, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	assert.False(t, app.Calendar.IsWorkDay(time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)), "sunday")

	org, err := app.Organizations.Create(context.Background(), "Builders")
	require.NoError(t, err)
	assert.NotZero(t, org.ID)
	require.NoError(t, app.Close())
	assert.Error(t, app.DB().Ping(), "database is closed")

	cfg.Schedule.Weekend = []string{"someday"}
	_, err = Open(context.Background(), cfg)
	assert.Error(t, err)
}
