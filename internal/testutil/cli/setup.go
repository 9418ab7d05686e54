// Package cli runs sitebook commands against an in-memory application.
// It lives apart from testutil so service tests can import testutil without
// pulling in the command packages.
package cli

import (
	"database/sql"
	"testing"

	"github.com/thenoetrevino/sitebook/internal/app"
	"github.com/thenoetrevino/sitebook/internal/database"
	"github.com/thenoetrevino/sitebook/internal/storage"
	"github.com/thenoetrevino/sitebook/internal/testutil"
	"go.uber.org/zap"
)

// SetupCLITest creates an in-memory DB and returns both the DB and App instance.
// Events are not published; the daemon has its own tests.
func SetupCLITest(t *testing.T, opts ...app.Option) (*sql.DB, *app.App) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	bucket, err := storage.NewFSBucket(t.TempDir(), "http://localhost/files")
	if err != nil {
		t.Fatalf("Failed to create bucket: %v", err)
	}
	base := []app.Option{app.WithBucket(bucket), app.WithLogger(zap.NewNop())}
	appInstance, err := app.New(database.NewStore(db), append(base, opts...)...)
	if err != nil {
		t.Fatalf("Failed to create app: %v", err)
	}
	t.Cleanup(func() { _ = appInstance.Close() })

	return db, appInstance
}

// CreateTestOrganization wraps testutil.CreateTestOrganization for CLI tests
func CreateTestOrganization(t *testing.T, db *sql.DB, name string) int {
	t.Helper()
	return testutil.CreateTestOrganization(t, db, name)
}

// CreateTestClient wraps testutil.CreateTestClient for CLI tests
func CreateTestClient(t *testing.T, db *sql.DB, orgID int, name string) (clientID, projectID int) {
	t.Helper()
	return testutil.CreateTestClient(t, db, orgID, name)
}
