// Copyright (c) 2026 ToeiRei
// Flatkeeper - apartment occupancy registry
// This source code is licensed under the MIT license found in the LICENSE file.

package registry

import (
	"context"
	"crypto/subtle"

	"github.com/toeirei/flatkeeper/internal/model"
)

// ForceAssign makes occupant the only occupant of unit and unit the only
// unit of occupant, then approves any pending request of occupant for unit
// on actor's behalf. All of it happens in one transaction.
func (e *Engine) ForceAssign(ctx context.Context, actor int64, unit int, occupant int64) (ForceAssignResult, error) {
	cmd := ForceAssign{Unit: unit, Occupant: occupant}
	op := cmd.Name()
	if err := e.begin(ctx, actor, cmd); err != nil {
		return ForceAssignResult{}, err
	}
	if err := e.checkUnit(op, unit); err != nil {
		return ForceAssignResult{}, err
	}
	if err := checkID(op, occupant); err != nil {
		return ForceAssignResult{}, err
	}

	var res ForceAssignResult
	err := e.run(ctx, op, actor, func(ctx context.Context, r Repo) error {
		res = ForceAssignResult{Unit: unit, Occupant: occupant}
		if err := r.LockOccupant(ctx, occupant); err != nil {
			return err
		}
		if err := r.LockUnit(ctx, unit); err != nil {
			return err
		}
		var err error
		if res.PriorOccupants, err = r.FindUnitOccupants(ctx, unit); err != nil {
			return err
		}
		if res.PriorUnits, err = r.FindOccupantUnits(ctx, occupant); err != nil {
			return err
		}
		if _, err := r.DeleteLinks(ctx, model.LinkFilter{Unit: &unit}); err != nil {
			return err
		}
		if _, err := r.DeleteLinks(ctx, model.LinkFilter{OccupantID: &occupant}); err != nil {
			return err
		}
		if _, err := r.InsertLink(ctx, unit, occupant); err != nil {
			return err
		}
		res.AutoApproved, err = r.ApprovePendingFor(ctx, unit, occupant, actor)
		return err
	})
	if err != nil {
		return ForceAssignResult{}, err
	}
	e.audit(op, actor, "unit", unit, "occupant", occupant,
		"prior_occupants", res.PriorOccupants, "prior_units", res.PriorUnits, "auto_approved", res.AutoApproved)

	notices := []Notice{{Recipient: occupant, MessageID: "notice.force_assigned", Args: map[string]any{"Unit": unit}}}
	for _, prev := range res.PriorOccupants {
		if prev != occupant {
			notices = append(notices, Notice{Recipient: prev, MessageID: "notice.displaced", Args: map[string]any{"Unit": unit}})
		}
	}
	e.deliver(ctx, notices)
	return res, nil
}

// Unlink removes occupant from unit, or from every unit when unit is nil.
// Nothing to remove is a not-found error.
func (e *Engine) Unlink(ctx context.Context, actor, occupant int64, unit *int) (UnlinkResult, error) {
	cmd := Unlink{Occupant: occupant, Unit: unit}
	op := cmd.Name()
	if err := e.begin(ctx, actor, cmd); err != nil {
		return UnlinkResult{}, err
	}
	if err := checkID(op, occupant); err != nil {
		return UnlinkResult{}, err
	}

	filter := model.LinkFilter{OccupantID: &occupant}
	if unit != nil {
		u := *unit
		filter.Unit = &u
	}
	var res UnlinkResult
	err := e.run(ctx, op, actor, func(ctx context.Context, r Repo) error {
		if filter.Unit != nil {
			if err := r.LockUnit(ctx, *filter.Unit); err != nil {
				return err
			}
		}
		removed, err := r.DeleteLinks(ctx, filter)
		if err != nil {
			return err
		}
		if len(removed) == 0 {
			if filter.Unit != nil {
				return notFoundError(op, "error.no_link_in_unit", map[string]any{"Occupant": e.name(occupant), "Unit": *filter.Unit})
			}
			return notFoundError(op, "error.no_link", map[string]any{"Occupant": e.name(occupant)})
		}
		res = UnlinkResult{Occupant: occupant, Units: unitsOf(removed)}
		return nil
	})
	if err != nil {
		return UnlinkResult{}, err
	}
	e.audit(op, actor, "occupant", occupant, "units", res.Units)
	notices := make([]Notice, 0, len(res.Units))
	for _, u := range res.Units {
		notices = append(notices, Notice{Recipient: occupant, MessageID: "notice.unlinked", Args: map[string]any{"Unit": u}})
	}
	e.deliver(ctx, notices)
	return res, nil
}

// ReleaseUnit removes every occupant of unit. A vacant unit is reported as
// AlreadyVacant, not as an error.
func (e *Engine) ReleaseUnit(ctx context.Context, actor int64, unit int) (ReleaseUnitResult, error) {
	cmd := ReleaseUnit{Unit: unit}
	op := cmd.Name()
	if err := e.begin(ctx, actor, cmd); err != nil {
		return ReleaseUnitResult{}, err
	}
	if err := e.checkUnit(op, unit); err != nil {
		return ReleaseUnitResult{}, err
	}

	var res ReleaseUnitResult
	err := e.run(ctx, op, actor, func(ctx context.Context, r Repo) error {
		res = ReleaseUnitResult{Unit: unit}
		if err := r.LockUnit(ctx, unit); err != nil {
			return err
		}
		removed, err := r.DeleteLinks(ctx, model.LinkFilter{Unit: &unit})
		if err != nil {
			return err
		}
		res.Removed = occupantsOf(removed)
		res.AlreadyVacant = len(removed) == 0
		return nil
	})
	if err != nil {
		return ReleaseUnitResult{}, err
	}
	if res.AlreadyVacant {
		return res, nil
	}
	e.audit(op, actor, "unit", unit, "removed", res.Removed)
	notices := make([]Notice, 0, len(res.Removed))
	for _, occ := range res.Removed {
		notices = append(notices, Notice{Recipient: occ, MessageID: "notice.unlinked", Args: map[string]any{"Unit": unit}})
	}
	e.deliver(ctx, notices)
	return res, nil
}

// Reset deletes every link and request after checking token against the
// configured one. Operators are kept.
func (e *Engine) Reset(ctx context.Context, actor int64, token string) (ResetResult, error) {
	cmd := Reset{Token: token}
	op := cmd.Name()
	if err := e.begin(ctx, actor, cmd); err != nil {
		return ResetResult{}, err
	}
	if e.cfg.ResetToken == "" {
		return ResetResult{}, validationError(op, "error.reset_disabled", nil)
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(e.cfg.ResetToken)) != 1 {
		return ResetResult{}, validationError(op, "error.reset_token", nil)
	}

	var res ResetResult
	err := e.run(ctx, op, actor, func(ctx context.Context, r Repo) error {
		var err error
		res.Links, res.Requests, err = r.ResetAll(ctx)
		return err
	})
	if err != nil {
		return ResetResult{}, err
	}
	e.audit(op, actor, "links", res.Links, "requests", res.Requests)
	return res, nil
}
