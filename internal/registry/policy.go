// Copyright (c) 2026 ToeiRei
// Flatkeeper - apartment occupancy registry
// This source code is licensed under the MIT license found in the LICENSE file.

package registry

import (
	"context"
)

// Tier is an actor's access level. Higher tiers include the lower ones.
type Tier int

const (
	TierAnonymous Tier = iota
	TierOperator
	TierRoot
)

func (t Tier) String() string {
	switch t {
	case TierOperator:
		return "operator"
	case TierRoot:
		return "root"
	default:
		return "anonymous"
	}
}

// MessageID returns the i18n key of the tier's display name.
func (t Tier) MessageID() string {
	return "tier." + t.String()
}

// Satisfies reports whether t is at least need.
func (t Tier) Satisfies(need Tier) bool {
	return t >= need
}

// RequiredTier returns the minimum tier for cmd. approvalsRequireOperator
// selects whether approve and reject are operator-gated.
func RequiredTier(cmd Command, approvalsRequireOperator bool) Tier {
	switch cmd.(type) {
	case SubmitClaim, ReleaseOwn, WhoAmI:
		return TierAnonymous
	case Approve, Reject:
		if approvalsRequireOperator {
			return TierOperator
		}
		return TierAnonymous
	case ForceAssign, Unlink, ReleaseUnit, ClearPending, ReportOccupancy, ListOccupancy, ListOperators:
		return TierOperator
	case AddOperator, RemoveOperator, Reset:
		return TierRoot
	default:
		return TierRoot
	}
}

// TierOf resolves actor's tier. Root-ness comes from configuration only;
// operator-ness from the store.
func (e *Engine) TierOf(ctx context.Context, actor int64) (Tier, error) {
	if actor == e.cfg.RootOperator {
		return TierRoot, nil
	}
	ok, err := e.store.IsOperator(ctx, actor)
	if err != nil {
		return TierAnonymous, err
	}
	if ok {
		return TierOperator, nil
	}
	return TierAnonymous, nil
}

// authorize fails with a permission error when actor is below need. It runs
// before any transaction is opened.
func (e *Engine) authorize(ctx context.Context, op string, actor int64, need Tier) (Tier, error) {
	if need == TierAnonymous {
		return TierAnonymous, nil
	}
	if need == TierRoot {
		if actor == e.cfg.RootOperator {
			return TierRoot, nil
		}
		return TierAnonymous, permissionError(op, need)
	}
	tier, err := e.TierOf(ctx, actor)
	if err != nil {
		return TierAnonymous, e.internal(op, actor, err)
	}
	if !tier.Satisfies(need) {
		return tier, permissionError(op, need)
	}
	return tier, nil
}
