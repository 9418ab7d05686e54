package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/thenoetrevino/sitebook/internal/database"
	"github.com/thenoetrevino/sitebook/internal/models"
)

// SetupTestDB creates an in-memory database with the full migrated schema.
// The database is closed when the test ends.
func SetupTestDB(t testing.TB) *sql.DB {
	t.Helper()
	db, err := database.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// SetupTestStore wraps SetupTestDB in a Store
func SetupTestStore(t testing.TB) *database.Store {
	t.Helper()
	return database.NewStore(SetupTestDB(t))
}

// CreateTestOrganization creates an organization and returns its ID
func CreateTestOrganization(t testing.TB, db *sql.DB, name string) int {
	t.Helper()
	res, err := db.ExecContext(context.Background(), "INSERT INTO organizations (name) VALUES (?)", name)
	if err != nil {
		t.Fatalf("Failed to create test organization: %v", err)
	}
	id, _ := res.LastInsertId()
	return int(id)
}

// CreateTestMember creates a member with an unusable password hash
func CreateTestMember(t testing.TB, db *sql.DB, orgID int, email string, role models.Role) int {
	t.Helper()
	res, err := db.ExecContext(context.Background(),
		"INSERT INTO members (organization_id, email, full_name, role, password_hash) VALUES (?, ?, ?, ?, 'x')",
		orgID, email, email, string(role))
	if err != nil {
		t.Fatalf("Failed to create test member: %v", err)
	}
	id, _ := res.LastInsertId()
	return int(id)
}

// CreateTestClient creates a client in status proposal together with its
// empty project row. Returns the client and project IDs.
func CreateTestClient(t testing.TB, db *sql.DB, orgID int, name string) (clientID, projectID int) {
	t.Helper()
	ctx := context.Background()
	res, err := db.ExecContext(ctx, "INSERT INTO clients (organization_id, full_name) VALUES (?, ?)", orgID, name)
	if err != nil {
		t.Fatalf("Failed to create test client: %v", err)
	}
	cid, _ := res.LastInsertId()

	res, err = db.ExecContext(ctx, "INSERT INTO projects (organization_id, client_id) VALUES (?, ?)", orgID, cid)
	if err != nil {
		t.Fatalf("Failed to create test project: %v", err)
	}
	pid, _ := res.LastInsertId()
	return int(cid), int(pid)
}

// SetClientStatus forces a client's status
func SetClientStatus(t testing.TB, db *sql.DB, clientID int, status models.Status) {
	t.Helper()
	if _, err := db.ExecContext(context.Background(),
		"UPDATE clients SET status = ? WHERE id = ?", string(status), clientID); err != nil {
		t.Fatalf("Failed to set client status: %v", err)
	}
}

// SetProjectDates writes raw YYYY-MM-DD dates; empty strings store NULL
func SetProjectDates(t testing.TB, db *sql.DB, projectID int, start, end, start2, end2 string) {
	t.Helper()
	null := func(s string) any {
		if s == "" {
			return nil
		}
		return s
	}
	_, err := db.ExecContext(context.Background(),
		"UPDATE projects SET start_date = ?, end_date = ?, start_date_2 = ?, end_date_2 = ? WHERE id = ?",
		null(start), null(end), null(start2), null(end2), projectID)
	if err != nil {
		t.Fatalf("Failed to set project dates: %v", err)
	}
}

// Date parses YYYY-MM-DD as a civil date
func Date(t testing.TB, s string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation(models.DateLayout, s, time.UTC)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return d
}

// Range builds a DateRange from two YYYY-MM-DD strings
func Range(t testing.TB, start, end string) models.DateRange {
	t.Helper()
	return models.DateRange{Start: Date(t, start), End: Date(t, end)}
}
