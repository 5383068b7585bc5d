// Package postgres is the PostgreSQL Store. Reads inside a transaction that
// precede a write use SELECT ... FOR UPDATE, so concurrent decisions on the
// same item or approval request are serialised by row locks.
package postgres

import (
	"context"
	_ "embed"

	"github.com/jackc/pgx/v5"

	"github.com/pesio-ai/be-product-catalog/internal/platform/database"
	"github.com/pesio-ai/be-product-catalog/internal/platform/errors"
	"github.com/pesio-ai/be-product-catalog/internal/repository"
)

//go:embed schema.sql
var schema string

// Migrate applies the schema. Statements are idempotent.
func Migrate(ctx context.Context, db *database.DB) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to apply schema")
	}
	return nil
}

// Store implements repository.Store over a pgx pool.
type Store struct {
	db *database.DB // nil inside a transaction
	q  database.Querier
}

// NewStore creates a Store over the pool.
func NewStore(db *database.DB) *Store {
	return &Store{db: db, q: db}
}

func (s *Store) Items() repository.ItemStore         { return NewItemRepository(s.q) }
func (s *Store) Approvals() repository.ApprovalStore { return NewApprovalRepository(s.q) }

// InTransaction runs fn in a database transaction. Nested calls join the
// outer transaction.
func (s *Store) InTransaction(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.db == nil {
		return fn(s)
	}
	return s.db.InTransaction(ctx, func(tx pgx.Tx) error {
		return fn(&Store{q: tx})
	})
}
