package repository

import (
	"context"
	"hash/fnv"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type sqlStore struct {
	db *sqlx.DB
	// ext is the pool outside a transaction and the *sqlx.Tx inside one.
	ext sqlx.ExtContext
}

func NewStore(db *sqlx.DB) Store {
	return &sqlStore{db: db, ext: db}
}

func (s *sqlStore) WithinTx(ctx context.Context, fn func(ctx context.Context, q Queries) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(ctx, &sqlStore{db: s.db, ext: tx}); err != nil {
		return err
	}

	return tx.Commit()
}

// LockCirculationPair takes a transaction-scoped advisory lock keyed on the
// (edition, location) pair. Every mutating sequence that reads availability
// or reservation counts before writing must take this lock first, otherwise
// two concurrent requests can both observe a free slot and both claim it.
func (s *sqlStore) LockCirculationPair(ctx context.Context, editionID, locationID uuid.UUID) error {
	_, err := s.ext.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, circulationPairKey(editionID, locationID))
	return err
}

// circulationPairKey hashes the pair into the signed 64-bit keyspace
// pg_advisory_xact_lock expects.
func circulationPairKey(editionID, locationID uuid.UUID) int64 {
	h := fnv.New64a()
	h.Write(editionID[:])
	h.Write(locationID[:])
	return int64(h.Sum64())
}
