// Copyright (c) 2026 ToeiRei
// Flatkeeper - apartment occupancy registry
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/toeirei/flatkeeper/internal/model"
)

// SnapshotVersion is the format version written by ExportSnapshot.
const SnapshotVersion = 1

// ExportSnapshot reads the full registry content.
func (r *Repo) ExportSnapshot(ctx context.Context) (model.Snapshot, error) {
	links, err := r.ListLinks(ctx)
	if err != nil {
		return model.Snapshot{}, err
	}
	ops, err := r.ListOperators(ctx)
	if err != nil {
		return model.Snapshot{}, err
	}
	reqs, err := r.ListRequests(ctx)
	if err != nil {
		return model.Snapshot{}, err
	}
	return model.Snapshot{
		Version:   SnapshotVersion,
		CreatedAt: r.stamp(),
		Links:     links,
		Operators: ops,
		Requests:  reqs,
	}, nil
}

// ImportSnapshot replaces links and requests with the snapshot's rows and
// merges its operators into the existing ones. Row ids are reassigned; the
// relative order of links and requests is preserved.
func (r *Repo) ImportSnapshot(ctx context.Context, snap model.Snapshot) error {
	if snap.Version != SnapshotVersion {
		return fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}
	if _, _, err := r.ResetAll(ctx); err != nil {
		return err
	}
	for _, l := range sortedLinks(snap.Links) {
		m := &LinkModel{Unit: l.Unit, OccupantID: l.OccupantID, CreatedAt: l.CreatedAt}
		if _, err := r.db.NewInsert().Model(m).Exec(ctx); err != nil {
			return fmt.Errorf("restore link %s: %w", l, MapDBError(err))
		}
	}
	for _, o := range snap.Operators {
		m := &OperatorModel{OccupantID: o.ID, AddedBy: o.AddedBy, AddedAt: o.AddedAt}
		if _, err := r.db.NewInsert().Model(m).Ignore().Exec(ctx); err != nil {
			return fmt.Errorf("restore operator %d: %w", o.ID, err)
		}
	}
	for _, q := range sortedRequests(snap.Requests) {
		if !q.Status.Valid() {
			return fmt.Errorf("restore request %d: invalid status %q", q.ID, q.Status)
		}
		m := &RequestModel{
			Unit:        q.Unit,
			RequesterID: q.RequesterID,
			ApproverID:  q.ApproverID,
			Status:      string(q.Status),
			CreatedAt:   q.CreatedAt,
		}
		if _, err := r.db.NewInsert().Model(m).Exec(ctx); err != nil {
			return fmt.Errorf("restore request %d: %w", q.ID, err)
		}
	}
	dbLogf("snapshot imported links=%d operators=%d requests=%d", len(snap.Links), len(snap.Operators), len(snap.Requests))
	return nil
}

func sortedLinks(in []model.Link) []model.Link {
	out := append([]model.Link(nil), in...)
	slices.SortStableFunc(out, func(a, b model.Link) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

func sortedRequests(in []model.ApprovalRequest) []model.ApprovalRequest {
	out := append([]model.ApprovalRequest(nil), in...)
	slices.SortStableFunc(out, func(a, b model.ApprovalRequest) int { return cmp.Compare(a.ID, b.ID) })
	return out
}
