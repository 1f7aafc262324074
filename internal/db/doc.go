// Copyright (c) 2026 ToeiRei
// Flatkeeper - apartment occupancy registry
// This source code is licensed under the MIT license found in the LICENSE file.

// Store and Repo
//   - `New` opens a database, applies the embedded migrations and returns a
//     `*Store`. There is no package-level store; callers inject it.
//   - `Store.RunInTx` hands a `*Repo` bound to one bun transaction to the
//     callback. The registry engine runs every operation through it, so each
//     operation commits or rolls back as a whole.
//   - `Store.Repo` returns a repo bound to the pool for one-off reads.
//
// Per-unit serialization
//   - `Repo.LockUnit` upserts and bumps the unit's row in `units`. Calling it
//     first in a transaction makes concurrent claims on the same unit queue
//     behind each other on PostgreSQL and MySQL; on SQLite the immediate
//     write lock plus the single pooled connection gives the same ordering.
//   - `Repo.LockOccupant` does the same for one person in `occupant_locks`.
//     Transactions that need both take the occupant lock first.
//   - `Repo.ResolveRequestIfPending` is a conditional update. Exactly one of
//     two racing resolutions observes `applied == true`.
//
// Testing notes
//   - Tests open a file-backed sqlite database under `t.TempDir()` with
//     `New("sqlite", path)`; see `newTestStore` in the package tests.
package db
