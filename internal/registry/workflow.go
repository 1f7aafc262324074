// Copyright (c) 2026 ToeiRei
// Flatkeeper - apartment occupancy registry
// This source code is licensed under the MIT license found in the LICENSE file.

package registry

import (
	"context"
	"errors"
	"slices"

	"github.com/toeirei/flatkeeper/internal/db"
	"github.com/toeirei/flatkeeper/internal/model"
)

// Submit registers actor in unit when it is vacant, or opens a pending
// request addressed to the unit's longest-standing occupant. It does not
// check whether actor already lives elsewhere.
func (e *Engine) Submit(ctx context.Context, actor int64, unit int) (ClaimResult, error) {
	cmd := SubmitClaim{Unit: unit}
	op := cmd.Name()
	if err := e.begin(ctx, actor, cmd); err != nil {
		return ClaimResult{}, err
	}
	if err := e.checkUnit(op, unit); err != nil {
		return ClaimResult{}, err
	}

	var (
		res     ClaimResult
		notices []Notice
	)
	err := e.run(ctx, op, actor, func(ctx context.Context, r Repo) error {
		res, notices = ClaimResult{Unit: unit}, nil
		if err := r.LockUnit(ctx, unit); err != nil {
			return err
		}
		occupants, err := r.FindUnitOccupants(ctx, unit)
		if err != nil {
			return err
		}
		linkExists := conflictError(op, "error.link_exists", map[string]any{"Occupant": e.name(actor), "Unit": unit})
		if len(occupants) == 0 {
			if _, err := r.InsertLink(ctx, unit, actor); err != nil {
				if errors.Is(err, db.ErrDuplicate) {
					return linkExists
				}
				return err
			}
			res.Linked = true
			return nil
		}
		if slices.Contains(occupants, actor) {
			return linkExists
		}

		approver := occupants[0]
		req, err := r.CreateRequest(ctx, unit, actor, approver)
		if err != nil {
			return err
		}
		res.Request = &req
		notices = append(notices, Notice{
			Recipient: approver,
			MessageID: "notice.claim_request",
			Args:      map[string]any{"Requester": e.name(actor), "RequesterID": actor, "Unit": unit},
		})
		return nil
	})
	if err != nil {
		return ClaimResult{}, err
	}
	if res.Linked {
		e.audit(op, actor, "unit", unit, "linked", true)
	} else {
		e.audit(op, actor, "unit", unit, "request", res.Request.ID, "approver", res.Request.ApproverID)
	}
	e.deliver(ctx, notices)
	return res, nil
}

// Approve accepts the latest pending request from requester addressed to
// actor and links requester to its unit. A requester who already has any
// link is refused; the old link must be released first. When the request
// was resolved concurrently the link still stands and the result reports
// AlreadyResolved.
func (e *Engine) Approve(ctx context.Context, actor, requester int64) (ApproveResult, error) {
	cmd := Approve{Requester: requester}
	op := cmd.Name()
	if err := e.begin(ctx, actor, cmd); err != nil {
		return ApproveResult{}, err
	}
	if err := checkID(op, requester); err != nil {
		return ApproveResult{}, err
	}

	var res ApproveResult
	err := e.run(ctx, op, actor, func(ctx context.Context, r Repo) error {
		// Two approvals of one requester for different units meet here.
		if err := r.LockOccupant(ctx, requester); err != nil {
			return err
		}
		req, err := r.LatestPendingRequest(ctx, requester, actor)
		if err != nil {
			return err
		}
		if req == nil {
			return notFoundError(op, "error.no_pending_request", map[string]any{"Requester": e.name(requester)})
		}
		if err := r.LockUnit(ctx, req.Unit); err != nil {
			return err
		}
		units, err := r.FindOccupantUnits(ctx, requester)
		if err != nil {
			return err
		}
		if len(units) > 0 {
			return conflictError(op, "error.already_linked", map[string]any{"Occupant": e.name(requester), "Unit": units[0]})
		}
		if _, err := r.InsertLink(ctx, req.Unit, requester); err != nil {
			if errors.Is(err, db.ErrDuplicate) {
				return conflictError(op, "error.link_exists", map[string]any{"Occupant": e.name(requester), "Unit": req.Unit})
			}
			return err
		}
		applied, err := r.ResolveRequestIfPending(ctx, req.ID, model.StatusApproved)
		if err != nil {
			return err
		}
		res = ApproveResult{Request: *req, AlreadyResolved: !applied}
		if applied {
			res.Request.Status = model.StatusApproved
		}
		return nil
	})
	if err != nil {
		return ApproveResult{}, err
	}
	e.audit(op, actor, "requester", requester, "unit", res.Request.Unit, "already_resolved", res.AlreadyResolved)
	e.deliver(ctx, []Notice{{
		Recipient: requester,
		MessageID: "notice.claim_approved",
		Args:      map[string]any{"Unit": res.Request.Unit, "Approver": e.name(actor)},
	}})
	return res, nil
}

// Reject declines the latest pending request from requester addressed to
// actor. Losing a race against another resolution is a state error: nothing
// changed.
func (e *Engine) Reject(ctx context.Context, actor, requester int64) (RejectResult, error) {
	cmd := Reject{Requester: requester}
	op := cmd.Name()
	if err := e.begin(ctx, actor, cmd); err != nil {
		return RejectResult{}, err
	}
	if err := checkID(op, requester); err != nil {
		return RejectResult{}, err
	}

	var res RejectResult
	err := e.run(ctx, op, actor, func(ctx context.Context, r Repo) error {
		req, err := r.LatestPendingRequest(ctx, requester, actor)
		if err != nil {
			return err
		}
		if req == nil {
			return notFoundError(op, "error.no_pending_request", map[string]any{"Requester": e.name(requester)})
		}
		applied, err := r.ResolveRequestIfPending(ctx, req.ID, model.StatusRejected)
		if err != nil {
			return err
		}
		if !applied {
			return stateError(op, "error.request_resolved", map[string]any{"Requester": e.name(requester)})
		}
		res = RejectResult{Request: *req}
		res.Request.Status = model.StatusRejected
		return nil
	})
	if err != nil {
		return RejectResult{}, err
	}
	e.audit(op, actor, "requester", requester, "unit", res.Request.Unit)
	e.deliver(ctx, []Notice{{
		Recipient: requester,
		MessageID: "notice.claim_rejected",
		Args:      map[string]any{"Unit": res.Request.Unit, "Approver": e.name(actor)},
	}})
	return res, nil
}

// ClearPending deletes every pending request regardless of approver.
func (e *Engine) ClearPending(ctx context.Context, actor int64) (ClearPendingResult, error) {
	cmd := ClearPending{}
	op := cmd.Name()
	if err := e.begin(ctx, actor, cmd); err != nil {
		return ClearPendingResult{}, err
	}
	var res ClearPendingResult
	err := e.run(ctx, op, actor, func(ctx context.Context, r Repo) error {
		n, err := r.ClearPending(ctx)
		res.Cleared = n
		return err
	})
	if err != nil {
		return ClearPendingResult{}, err
	}
	e.audit(op, actor, "cleared", res.Cleared)
	return res, nil
}

// ReleaseOwn removes every link of actor.
func (e *Engine) ReleaseOwn(ctx context.Context, actor int64) (ReleaseResult, error) {
	cmd := ReleaseOwn{}
	op := cmd.Name()
	if err := e.begin(ctx, actor, cmd); err != nil {
		return ReleaseResult{}, err
	}
	var res ReleaseResult
	err := e.run(ctx, op, actor, func(ctx context.Context, r Repo) error {
		removed, err := r.DeleteLinks(ctx, model.LinkFilter{OccupantID: &actor})
		if err != nil {
			return err
		}
		if len(removed) == 0 {
			return notFoundError(op, "error.no_link", map[string]any{"Occupant": e.name(actor)})
		}
		res.Units = unitsOf(removed)
		return nil
	})
	if err != nil {
		return ReleaseResult{}, err
	}
	e.audit(op, actor, "units", res.Units)
	return res, nil
}

func unitsOf(links []model.Link) []int {
	out := make([]int, 0, len(links))
	for _, l := range links {
		out = append(out, l.Unit)
	}
	return out
}

func occupantsOf(links []model.Link) []int64 {
	out := make([]int64, 0, len(links))
	for _, l := range links {
		out = append(out, l.OccupantID)
	}
	return out
}
