// Copyright (c) 2026 ToeiRei
// Flatkeeper - apartment occupancy registry
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"fmt"

	"github.com/toeirei/flatkeeper/internal/model"
	"github.com/uptrace/bun"
)

// FindOccupantUnits returns every unit linked to occupant, oldest link first.
func (r *Repo) FindOccupantUnits(ctx context.Context, occupant int64) ([]int, error) {
	var units []int
	err := r.db.NewSelect().Model((*LinkModel)(nil)).
		Column("unit").
		Where("occupant_id = ?", occupant).
		OrderExpr("id ASC").
		Scan(ctx, &units)
	if err != nil {
		return nil, fmt.Errorf("find units of %d: %w", occupant, err)
	}
	return units, nil
}

// FindUnitOccupants returns the occupants of unit ordered by link id, so the
// first element is the longest-standing occupant.
func (r *Repo) FindUnitOccupants(ctx context.Context, unit int) ([]int64, error) {
	var occupants []int64
	err := r.db.NewSelect().Model((*LinkModel)(nil)).
		Column("occupant_id").
		Where("unit = ?", unit).
		OrderExpr("id ASC").
		Scan(ctx, &occupants)
	if err != nil {
		return nil, fmt.Errorf("find occupants of unit %d: %w", unit, err)
	}
	return occupants, nil
}

// InsertLink creates the (unit, occupant) link. An existing pair yields
// ErrDuplicate.
func (r *Repo) InsertLink(ctx context.Context, unit int, occupant int64) (model.Link, error) {
	m := &LinkModel{Unit: unit, OccupantID: occupant, CreatedAt: r.stamp()}
	if _, err := r.db.NewInsert().Model(m).Exec(ctx); err != nil {
		return model.Link{}, MapDBError(err)
	}
	dbLogf("link inserted unit=%d occupant=%d id=%d", unit, occupant, m.ID)
	return linkToModel(*m), nil
}

// DeleteLinks removes every link matching f and returns the removed rows.
// An empty filter is refused with ErrEmptyFilter.
func (r *Repo) DeleteLinks(ctx context.Context, f model.LinkFilter) ([]model.Link, error) {
	if f.IsEmpty() {
		return nil, ErrEmptyFilter
	}
	var rows []LinkModel
	sel := r.db.NewSelect().Model(&rows).OrderExpr("id ASC")
	applyLinkFilter(sel.QueryBuilder(), f)
	if err := sel.Scan(ctx); err != nil {
		return nil, fmt.Errorf("select links for delete: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	del := r.db.NewDelete().Model((*LinkModel)(nil))
	applyLinkFilter(del.QueryBuilder(), f)
	if _, err := del.Exec(ctx); err != nil {
		return nil, fmt.Errorf("delete links: %w", err)
	}
	out := make([]model.Link, 0, len(rows))
	for _, m := range rows {
		out = append(out, linkToModel(m))
	}
	dbLogf("links deleted count=%d", len(out))
	return out, nil
}

func applyLinkFilter(q bun.QueryBuilder, f model.LinkFilter) {
	if f.Unit != nil {
		q.Where("unit = ?", *f.Unit)
	}
	if f.OccupantID != nil {
		q.Where("occupant_id = ?", *f.OccupantID)
	}
}

// LockUnit takes the per-unit lock for the rest of the transaction by
// upserting and bumping the unit's row in units. Call it before reading the
// unit's occupancy.
func (r *Repo) LockUnit(ctx context.Context, unit int) error {
	if _, err := r.db.NewInsert().Model(&UnitModel{Unit: unit}).Ignore().Exec(ctx); err != nil {
		return fmt.Errorf("seed unit %d: %w", unit, err)
	}
	_, err := r.db.NewUpdate().Model((*UnitModel)(nil)).
		Set("claims = claims + 1").
		Where("unit = ?", unit).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("lock unit %d: %w", unit, err)
	}
	return nil
}

// LockOccupant takes the per-occupant lock for the rest of the transaction.
// Operations that need both locks take this one before LockUnit.
func (r *Repo) LockOccupant(ctx context.Context, occupant int64) error {
	if _, err := r.db.NewInsert().Model(&OccupantLockModel{OccupantID: occupant}).Ignore().Exec(ctx); err != nil {
		return fmt.Errorf("seed occupant %d: %w", occupant, err)
	}
	_, err := r.db.NewUpdate().Model((*OccupantLockModel)(nil)).
		Set("claims = claims + 1").
		Where("occupant_id = ?", occupant).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("lock occupant %d: %w", occupant, err)
	}
	return nil
}

// ListLinks returns all links ordered by unit, then link id.
func (r *Repo) ListLinks(ctx context.Context) ([]model.Link, error) {
	var rows []LinkModel
	if err := r.db.NewSelect().Model(&rows).OrderExpr("unit ASC, id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	out := make([]model.Link, 0, len(rows))
	for _, m := range rows {
		out = append(out, linkToModel(m))
	}
	return out, nil
}

// OccupiedUnits returns the distinct units that have at least one link.
func (r *Repo) OccupiedUnits(ctx context.Context) ([]int, error) {
	var units []int
	err := r.db.NewSelect().Model((*LinkModel)(nil)).
		ColumnExpr("DISTINCT unit").
		OrderExpr("unit ASC").
		Scan(ctx, &units)
	if err != nil {
		return nil, fmt.Errorf("occupied units: %w", err)
	}
	return units, nil
}
