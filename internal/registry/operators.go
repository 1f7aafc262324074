// Copyright (c) 2026 ToeiRei
// Flatkeeper - apartment occupancy registry
// This source code is licensed under the MIT license found in the LICENSE file.

package registry

import "context"

// AddOperator grants operator rights to id. Granting to an existing operator
// succeeds with Changed false.
func (e *Engine) AddOperator(ctx context.Context, actor, id int64) (OperatorResult, error) {
	cmd := AddOperator{ID: id}
	op := cmd.Name()
	if err := e.begin(ctx, actor, cmd); err != nil {
		return OperatorResult{}, err
	}
	if err := checkID(op, id); err != nil {
		return OperatorResult{}, err
	}
	res := OperatorResult{ID: id}
	err := e.run(ctx, op, actor, func(ctx context.Context, r Repo) error {
		added, err := r.AddOperator(ctx, id, actor)
		res.Changed = added
		return err
	})
	if err != nil {
		return OperatorResult{}, err
	}
	if res.Changed {
		e.audit(op, actor, "operator", id)
		e.deliver(ctx, []Notice{{Recipient: id, MessageID: "notice.operator_added"}})
	}
	return res, nil
}

// RemoveOperator revokes operator rights from id. The root operator can
// never be removed, whoever asks. Removing a non-operator succeeds with
// Changed false.
func (e *Engine) RemoveOperator(ctx context.Context, actor, id int64) (OperatorResult, error) {
	cmd := RemoveOperator{ID: id}
	op := cmd.Name()
	if id == e.cfg.RootOperator {
		return OperatorResult{}, newError(KindPermission, op, "error.root_protected", nil)
	}
	if err := e.begin(ctx, actor, cmd); err != nil {
		return OperatorResult{}, err
	}
	if err := checkID(op, id); err != nil {
		return OperatorResult{}, err
	}
	res := OperatorResult{ID: id}
	err := e.run(ctx, op, actor, func(ctx context.Context, r Repo) error {
		removed, err := r.RemoveOperator(ctx, id)
		res.Changed = removed
		return err
	})
	if err != nil {
		return OperatorResult{}, err
	}
	if res.Changed {
		e.audit(op, actor, "operator", id)
		e.deliver(ctx, []Notice{{Recipient: id, MessageID: "notice.operator_removed"}})
	}
	return res, nil
}

// ListOperators returns every operator in the order they were added.
func (e *Engine) ListOperators(ctx context.Context, actor int64) (OperatorList, error) {
	cmd := ListOperators{}
	if err := e.begin(ctx, actor, cmd); err != nil {
		return OperatorList{}, err
	}
	res := OperatorList{Root: e.cfg.RootOperator}
	err := e.run(ctx, cmd.Name(), actor, func(ctx context.Context, r Repo) error {
		var err error
		res.Operators, err = r.ListOperators(ctx)
		return err
	})
	if err != nil {
		return OperatorList{}, err
	}
	return res, nil
}
