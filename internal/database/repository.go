package database

import (
	"context"
	"database/sql"
)

// Store groups the per-entity repositories over one connection or transaction
type Store struct {
	db *sql.DB

	Organizations *OrganizationRepo
	Settings      *SettingsRepo
	Members       *MemberRepo
	Clients       *ClientRepo
	Projects      *ProjectRepo
	Tasks         *TaskRepo
	Targets       *TargetRepo
	Contracts     *ContractRepo
	Costs         *CostRepo
	Inventory     *InventoryRepo
	Files         *FileRepo
}

// NewStore creates a Store wrapping the given database connection.
func NewStore(db *sql.DB) *Store {
	s := newStore(db)
	s.db = db
	return s
}

func newStore(q DBTX) *Store {
	return &Store{
		Organizations: &OrganizationRepo{db: q},
		Settings:      &SettingsRepo{db: q},
		Members:       &MemberRepo{db: q},
		Clients:       &ClientRepo{db: q},
		Projects:      &ProjectRepo{db: q},
		Tasks:         &TaskRepo{db: q},
		Targets:       &TargetRepo{db: q},
		Contracts:     &ContractRepo{db: q},
		Costs:         &CostRepo{db: q},
		Inventory:     &InventoryRepo{db: q},
		Files:         &FileRepo{db: q},
	}
}

// DB returns the underlying connection
func (s *Store) DB() *sql.DB {
	return s.db
}

// InTx runs fn against a Store bound to a single transaction. Every write made
// through the transactional Store commits together or not at all. fn must not
// use the outer Store; the pool holds a single connection.
func (s *Store) InTx(ctx context.Context, fn func(tx *Store) error) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		return fn(newStore(tx))
	})
}
