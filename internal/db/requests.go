// Copyright (c) 2026 ToeiRei
// Flatkeeper - apartment occupancy registry
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/toeirei/flatkeeper/internal/model"
)

// CreateRequest records a pending approval request.
func (r *Repo) CreateRequest(ctx context.Context, unit int, requester, approver int64) (model.ApprovalRequest, error) {
	m := &RequestModel{
		Unit:        unit,
		RequesterID: requester,
		ApproverID:  approver,
		Status:      string(model.StatusPending),
		CreatedAt:   r.stamp(),
	}
	if _, err := r.db.NewInsert().Model(m).Exec(ctx); err != nil {
		return model.ApprovalRequest{}, fmt.Errorf("create request: %w", MapDBError(err))
	}
	dbLogf("request created id=%d unit=%d requester=%d approver=%d", m.ID, unit, requester, approver)
	return requestToModel(*m), nil
}

// LatestPendingRequest returns the newest pending request from requester
// addressed to approver, or nil when there is none.
func (r *Repo) LatestPendingRequest(ctx context.Context, requester, approver int64) (*model.ApprovalRequest, error) {
	var m RequestModel
	err := r.db.NewSelect().Model(&m).
		Where("requester_id = ?", requester).
		Where("approver_id = ?", approver).
		Where("status = ?", string(model.StatusPending)).
		OrderExpr("id DESC").
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest pending request: %w", err)
	}
	req := requestToModel(m)
	return &req, nil
}

// ResolveRequestIfPending moves request id to status if it is still pending.
// applied is false when another resolution got there first.
func (r *Repo) ResolveRequestIfPending(ctx context.Context, id int64, status model.RequestStatus) (bool, error) {
	if status == model.StatusPending || !status.Valid() {
		return false, fmt.Errorf("resolve request %d: invalid target status %q", id, status)
	}
	res, err := r.db.NewUpdate().Model((*RequestModel)(nil)).
		Set("status = ?", string(status)).
		Where("id = ?", id).
		Where("status = ?", string(model.StatusPending)).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("resolve request %d: %w", id, err)
	}
	return affected(res) == 1, nil
}

// ApprovePendingFor approves every pending request for unit from requester,
// whoever it was addressed to, and records approver as the one who resolved
// it. Returns how many were approved.
func (r *Repo) ApprovePendingFor(ctx context.Context, unit int, requester, approver int64) (int64, error) {
	res, err := r.db.NewUpdate().Model((*RequestModel)(nil)).
		Set("status = ?", string(model.StatusApproved)).
		Set("approver_id = ?", approver).
		Where("unit = ?", unit).
		Where("requester_id = ?", requester).
		Where("status = ?", string(model.StatusPending)).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("approve pending for unit %d: %w", unit, err)
	}
	return affected(res), nil
}

// ClearPending deletes every pending request and returns the count.
func (r *Repo) ClearPending(ctx context.Context) (int64, error) {
	res, err := r.db.NewDelete().Model((*RequestModel)(nil)).
		Where("status = ?", string(model.StatusPending)).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear pending: %w", err)
	}
	return affected(res), nil
}

// ListRequests returns every request ordered by id.
func (r *Repo) ListRequests(ctx context.Context) ([]model.ApprovalRequest, error) {
	var rows []RequestModel
	if err := r.db.NewSelect().Model(&rows).OrderExpr("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	out := make([]model.ApprovalRequest, 0, len(rows))
	for _, m := range rows {
		out = append(out, requestToModel(m))
	}
	return out, nil
}

// ResetAll deletes every link and every request. Operators and unit lock
// rows are kept.
func (r *Repo) ResetAll(ctx context.Context) (links, requests int64, err error) {
	res, err := ExecRaw(ctx, r.db, "DELETE FROM unit_links")
	if err != nil {
		return 0, 0, fmt.Errorf("reset links: %w", err)
	}
	links = affected(res)
	res, err = ExecRaw(ctx, r.db, "DELETE FROM approval_requests")
	if err != nil {
		return 0, 0, fmt.Errorf("reset requests: %w", err)
	}
	requests = affected(res)
	dbLogf("registry reset links=%d requests=%d", links, requests)
	return links, requests, nil
}
