// Copyright (c) 2026 ToeiRei
// Flatkeeper - apartment occupancy registry
// This source code is licensed under the MIT license found in the LICENSE file.

package registry

import (
	"context"

	"github.com/toeirei/flatkeeper/internal/db"
	"github.com/toeirei/flatkeeper/internal/model"
)

// Report computes occupancy per configured building. Units linked outside
// every building are counted as anomalies, not as occupancy.
func (e *Engine) Report(ctx context.Context, actor int64) (OccupancyReport, error) {
	cmd := ReportOccupancy{}
	if err := e.begin(ctx, actor, cmd); err != nil {
		return OccupancyReport{}, err
	}
	var occupied []int
	err := e.run(ctx, cmd.Name(), actor, func(ctx context.Context, r Repo) error {
		var err error
		occupied, err = r.OccupiedUnits(ctx)
		return err
	})
	if err != nil {
		return OccupancyReport{}, err
	}
	return buildReport(e.cfg.Buildings, occupied), nil
}

// buildReport aggregates distinct occupied units into per-building stats.
func buildReport(buildings []model.Building, occupied []int) OccupancyReport {
	rep := OccupancyReport{Buildings: make([]BuildingStats, len(buildings))}
	for i, b := range buildings {
		rep.Buildings[i] = BuildingStats{Building: b, Size: b.Size()}
	}
	seen := make(map[int]struct{}, len(occupied))
	for _, u := range occupied {
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		matched := false
		for i := range rep.Buildings {
			if rep.Buildings[i].Building.Contains(u) {
				rep.Buildings[i].Occupied++
				matched = true
				break
			}
		}
		if !matched {
			rep.Anomalies++
		}
	}
	for i := range rep.Buildings {
		s := &rep.Buildings[i]
		s.Vacant = max(s.Size-s.Occupied, 0)
		rep.Total.Size += s.Size
		rep.Total.Occupied += s.Occupied
		rep.Total.Vacant += s.Vacant
	}
	return rep
}

// ListOccupancy returns every link grouped by building, ordered by unit.
func (e *Engine) ListOccupancy(ctx context.Context, actor int64) (OccupancyList, error) {
	cmd := ListOccupancy{}
	if err := e.begin(ctx, actor, cmd); err != nil {
		return OccupancyList{}, err
	}
	var links []model.Link
	err := e.run(ctx, cmd.Name(), actor, func(ctx context.Context, r Repo) error {
		var err error
		links, err = r.ListLinks(ctx)
		return err
	})
	if err != nil {
		return OccupancyList{}, err
	}

	res := OccupancyList{Groups: make([]OccupancyGroup, len(e.cfg.Buildings))}
	for i, b := range e.cfg.Buildings {
		res.Groups[i].Building = b
	}
	for _, l := range links {
		placed := false
		for i := range res.Groups {
			if res.Groups[i].Building.Contains(l.Unit) {
				res.Groups[i].Links = append(res.Groups[i].Links, l)
				placed = true
				break
			}
		}
		if !placed {
			res.Other = append(res.Other, l)
		}
	}
	return res, nil
}

// WhoAmI reports actor's tier and current units.
func (e *Engine) WhoAmI(ctx context.Context, actor int64) (WhoAmIResult, error) {
	cmd := WhoAmI{}
	if err := e.begin(ctx, actor, cmd); err != nil {
		return WhoAmIResult{}, err
	}
	tier, err := e.TierOf(ctx, actor)
	if err != nil {
		return WhoAmIResult{}, e.internal(cmd.Name(), actor, err)
	}
	res := WhoAmIResult{ID: actor, Tier: tier}
	err = e.run(ctx, cmd.Name(), actor, func(ctx context.Context, r Repo) error {
		var err error
		res.Units, err = r.FindOccupantUnits(ctx, actor)
		return err
	})
	if err != nil {
		return WhoAmIResult{}, err
	}
	return res, nil
}

// Export reads a full snapshot of the registry. Operator tier.
func (e *Engine) Export(ctx context.Context, actor int64) (model.Snapshot, error) {
	const op = "export"
	if actor <= 0 {
		return model.Snapshot{}, validationError(op, "error.invalid_id", map[string]any{"Value": actor})
	}
	if _, err := e.authorize(ctx, op, actor, TierOperator); err != nil {
		return model.Snapshot{}, err
	}
	var snap model.Snapshot
	err := e.run(ctx, op, actor, func(ctx context.Context, r Repo) error {
		var err error
		snap, err = r.ExportSnapshot(ctx)
		return err
	})
	if err != nil {
		return model.Snapshot{}, err
	}
	return snap, nil
}

// Restore replaces links and requests with the snapshot's and merges its
// operators. The root operator row is re-seeded in the same transaction.
// Root tier.
func (e *Engine) Restore(ctx context.Context, actor int64, snap model.Snapshot) (RestoreResult, error) {
	const op = "restore"
	if actor <= 0 {
		return RestoreResult{}, validationError(op, "error.invalid_id", map[string]any{"Value": actor})
	}
	if _, err := e.authorize(ctx, op, actor, TierRoot); err != nil {
		return RestoreResult{}, err
	}
	if snap.Version != db.SnapshotVersion {
		return RestoreResult{}, validationError(op, "error.snapshot_version", map[string]any{"Version": snap.Version})
	}
	err := e.run(ctx, op, actor, func(ctx context.Context, r Repo) error {
		if err := r.ImportSnapshot(ctx, snap); err != nil {
			return err
		}
		return r.EnsureOperator(ctx, e.cfg.RootOperator)
	})
	if err != nil {
		return RestoreResult{}, err
	}
	res := RestoreResult{Links: len(snap.Links), Operators: len(snap.Operators), Requests: len(snap.Requests)}
	e.audit(op, actor, "links", res.Links, "operators", res.Operators, "requests", res.Requests)
	return res, nil
}
