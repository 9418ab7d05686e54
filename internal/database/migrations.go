package database

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// migrations are applied in order; PRAGMA user_version records how many ran
var migrations = []string{
	// 1: tenants and people
	`
	CREATE TABLE organizations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE members (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		organization_id INTEGER REFERENCES organizations(id) ON DELETE CASCADE,
		email TEXT NOT NULL UNIQUE COLLATE NOCASE,
		full_name TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'worker',
		color TEXT NOT NULL DEFAULT '#3B82F6',
		password_hash TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE invites (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		organization_id INTEGER NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
		email TEXT NOT NULL COLLATE NOCASE,
		role TEXT NOT NULL DEFAULT 'worker',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (organization_id, email)
	);
	`,
	// 2: clients and their projects
	`
	CREATE TABLE clients (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		organization_id INTEGER NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
		full_name TEXT NOT NULL,
		phone TEXT,
		email TEXT,
		address TEXT,
		status TEXT NOT NULL DEFAULT 'proposal',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX idx_clients_org_status ON clients(organization_id, status);

	CREATE TABLE projects (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		organization_id INTEGER NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
		client_id INTEGER NOT NULL UNIQUE REFERENCES clients(id) ON DELETE CASCADE,
		description TEXT NOT NULL DEFAULT '',
		price REAL NOT NULL DEFAULT 0,
		start_date TEXT,
		end_date TEXT,
		start_date_2 TEXT,
		end_date_2 TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX idx_projects_org_dates ON projects(organization_id, start_date, end_date);
	`,
	// 3: ledgers, stock, calendar
	`
	CREATE TABLE costs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		client_id INTEGER NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		amount REAL NOT NULL,
		payer TEXT NOT NULL DEFAULT 'client',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE inventory_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		organization_id INTEGER NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		supplier TEXT NOT NULL DEFAULT '',
		quantity INTEGER NOT NULL DEFAULT 0,
		min_quantity INTEGER NOT NULL DEFAULT 0,
		unit TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE tasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		organization_id INTEGER NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
		text TEXT NOT NULL,
		due_date TEXT NOT NULL,
		time TEXT NOT NULL DEFAULT '09:00',
		is_completed BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX idx_tasks_org_due ON tasks(organization_id, due_date);

	CREATE TABLE task_assignees (
		task_id INTEGER NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		member_id INTEGER NOT NULL REFERENCES members(id) ON DELETE CASCADE,
		PRIMARY KEY (task_id, member_id)
	);

	CREATE TABLE targets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		client_id INTEGER NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
		text TEXT NOT NULL,
		is_completed BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`,
	// 4: contracts and files
	`
	CREATE TABLE terms (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		organization_id INTEGER NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
		content TEXT NOT NULL,
		is_default BOOLEAN NOT NULL DEFAULT 1
	);

	CREATE TABLE contracts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		organization_id INTEGER NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
		client_id INTEGER NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
		terms TEXT NOT NULL DEFAULT '[]',
		price REAL NOT NULL DEFAULT 0,
		notes TEXT NOT NULL DEFAULT '',
		signer_name TEXT NOT NULL DEFAULT '',
		signed_at DATETIME,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE project_files (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		client_id INTEGER NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
		category TEXT NOT NULL,
		name TEXT NOT NULL,
		object_key TEXT NOT NULL UNIQUE,
		url TEXT NOT NULL,
		content_type TEXT NOT NULL DEFAULT '',
		size INTEGER NOT NULL DEFAULT 0,
		annotations BLOB,
		uploaded_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`,
	// 5: branding and member avatars
	`
	ALTER TABLE members ADD COLUMN avatar_url TEXT NOT NULL DEFAULT '';

	CREATE TABLE organization_settings (
		organization_id INTEGER PRIMARY KEY REFERENCES organizations(id) ON DELETE CASCADE,
		logo_key TEXT NOT NULL DEFAULT '',
		logo_url TEXT NOT NULL DEFAULT '',
		letterhead_key TEXT NOT NULL DEFAULT '',
		letterhead_url TEXT NOT NULL DEFAULT '',
		padding_top INTEGER NOT NULL DEFAULT 150,
		padding_bottom INTEGER NOT NULL DEFAULT 100,
		padding_right INTEGER NOT NULL DEFAULT 40,
		padding_left INTEGER NOT NULL DEFAULT 40,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`,
}

// runMigrations applies every migration newer than the database's user_version
func runMigrations(ctx context.Context, db *sql.DB) error {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for i := version; i < len(migrations); i++ {
		err := withTx(ctx, db, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, migrations[i]); err != nil {
				return err
			}
			// PRAGMA does not accept bound parameters
			_, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", i+1))
			return err
		})
		if err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		zap.L().Debug("applied migration", zap.Int("version", i+1))
	}

	return nil
}

// SchemaVersion reports how many migrations have been applied
func SchemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version)
	return version, err
}
