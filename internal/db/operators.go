// Copyright (c) 2026 ToeiRei
// Flatkeeper - apartment occupancy registry
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"fmt"

	"github.com/toeirei/flatkeeper/internal/model"
)

// IsOperator reports whether id has a row in operators.
func (r *Repo) IsOperator(ctx context.Context, id int64) (bool, error) {
	ok, err := r.db.NewSelect().Model((*OperatorModel)(nil)).Where("occupant_id = ?", id).Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("check operator %d: %w", id, err)
	}
	return ok, nil
}

// AddOperator grants operator rights to id. added is false when id already
// was an operator.
func (r *Repo) AddOperator(ctx context.Context, id, addedBy int64) (bool, error) {
	by := addedBy
	return r.insertOperator(ctx, id, &by)
}

// EnsureOperator seeds id as an operator with no grantor. Used for root.
func (r *Repo) EnsureOperator(ctx context.Context, id int64) error {
	_, err := r.insertOperator(ctx, id, nil)
	return err
}

func (r *Repo) insertOperator(ctx context.Context, id int64, addedBy *int64) (bool, error) {
	m := &OperatorModel{OccupantID: id, AddedBy: addedBy, AddedAt: r.stamp()}
	res, err := r.db.NewInsert().Model(m).Ignore().Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("add operator %d: %w", id, MapDBError(err))
	}
	return affected(res) == 1, nil
}

// RemoveOperator deletes id's operator row. removed is false when there was none.
func (r *Repo) RemoveOperator(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.NewDelete().Model((*OperatorModel)(nil)).Where("occupant_id = ?", id).Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("remove operator %d: %w", id, err)
	}
	return affected(res) > 0, nil
}

// ListOperators returns all operators ordered by the time they were added.
func (r *Repo) ListOperators(ctx context.Context) ([]model.Operator, error) {
	var rows []OperatorModel
	if err := r.db.NewSelect().Model(&rows).OrderExpr("added_at ASC, occupant_id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list operators: %w", err)
	}
	out := make([]model.Operator, 0, len(rows))
	for _, m := range rows {
		out = append(out, operatorToModel(m))
	}
	return out, nil
}
