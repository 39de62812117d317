// Package storage is the Postgres adapter. Every balance-affecting method
// runs as one database transaction so the balance change and its paired
// transaction/audit rows land together or not at all.
package storage

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements the core services' store interfaces over pgx.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Pool exposes the underlying pool for middleware that queries directly.
func (r *Repository) Pool() *pgxpool.Pool {
	return r.db
}
