// Copyright (c) 2026 ToeiRei
// Flatkeeper - apartment occupancy registry
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/uptrace/bun"
)

// Store owns the bun handle for one registry database.
type Store struct {
	bun    *bun.DB
	dbType string
	now    func() time.Time
}

// Repo exposes the registry primitives over either the pool or a single
// transaction. Repos obtained from RunInTx must not escape the callback.
type Repo struct {
	db  bun.IDB
	now func() time.Time
}

// BunDB returns the underlying *bun.DB.
func (s *Store) BunDB() *bun.DB { return s.bun }

// Type returns the configured database type.
func (s *Store) Type() string { return s.dbType }

// SetClock overrides the timestamp source. Used by tests.
func (s *Store) SetClock(now func() time.Time) { s.now = now }

// Close releases the connection pool.
func (s *Store) Close() error {
	if s == nil || s.bun == nil {
		return nil
	}
	return s.bun.Close()
}

// Repo returns a repo bound to the connection pool.
func (s *Store) Repo() *Repo {
	return &Repo{db: s.bun, now: s.now}
}

// RunInTx runs fn inside one transaction. fn's error, or a panic, rolls the
// transaction back; otherwise it is committed.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, r *Repo) error) error {
	start := time.Now()
	err := s.bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, &Repo{db: tx, now: s.now})
	})
	dbLogf("tx finished in %s (err=%v)", time.Since(start), err)
	return err
}

func (r *Repo) stamp() time.Time {
	return r.now().UTC()
}
