// Copyright (c) 2026 ToeiRei
// Flatkeeper - apartment occupancy registry
// This source code is licensed under the MIT license found in the LICENSE file.

package registry

import (
	"context"

	"github.com/toeirei/flatkeeper/internal/db"
	"github.com/toeirei/flatkeeper/internal/model"
)

// Repo is the set of store primitives the engine uses inside a transaction.
// *db.Repo implements it.
type Repo interface {
	FindOccupantUnits(ctx context.Context, occupant int64) ([]int, error)
	FindUnitOccupants(ctx context.Context, unit int) ([]int64, error)
	InsertLink(ctx context.Context, unit int, occupant int64) (model.Link, error)
	DeleteLinks(ctx context.Context, f model.LinkFilter) ([]model.Link, error)
	LockUnit(ctx context.Context, unit int) error
	LockOccupant(ctx context.Context, occupant int64) error
	ListLinks(ctx context.Context) ([]model.Link, error)
	OccupiedUnits(ctx context.Context) ([]int, error)

	IsOperator(ctx context.Context, id int64) (bool, error)
	AddOperator(ctx context.Context, id, addedBy int64) (bool, error)
	RemoveOperator(ctx context.Context, id int64) (bool, error)
	ListOperators(ctx context.Context) ([]model.Operator, error)
	EnsureOperator(ctx context.Context, id int64) error

	CreateRequest(ctx context.Context, unit int, requester, approver int64) (model.ApprovalRequest, error)
	LatestPendingRequest(ctx context.Context, requester, approver int64) (*model.ApprovalRequest, error)
	ResolveRequestIfPending(ctx context.Context, id int64, status model.RequestStatus) (bool, error)
	ApprovePendingFor(ctx context.Context, unit int, requester, approver int64) (int64, error)
	ClearPending(ctx context.Context) (int64, error)
	ResetAll(ctx context.Context) (links, requests int64, err error)

	ExportSnapshot(ctx context.Context) (model.Snapshot, error)
	ImportSnapshot(ctx context.Context, snap model.Snapshot) error
}

// Store runs engine operations as transactions and answers the operator
// lookups the policy needs before a transaction is opened.
type Store interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, r Repo) error) error
	IsOperator(ctx context.Context, id int64) (bool, error)
}

// FromDB adapts a *db.Store to Store.
func FromDB(s *db.Store) Store {
	return dbStore{s: s}
}

type dbStore struct {
	s *db.Store
}

func (d dbStore) RunInTx(ctx context.Context, fn func(ctx context.Context, r Repo) error) error {
	return d.s.RunInTx(ctx, func(ctx context.Context, r *db.Repo) error {
		return fn(ctx, r)
	})
}

func (d dbStore) IsOperator(ctx context.Context, id int64) (bool, error) {
	return d.s.Repo().IsOperator(ctx, id)
}

var _ Repo = (*db.Repo)(nil)
