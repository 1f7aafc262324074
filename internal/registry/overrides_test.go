// Copyright (c) 2026 ToeiRei
// Flatkeeper - apartment occupancy registry
// This source code is licensed under the MIT license found in the LICENSE file.

package registry

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/toeirei/flatkeeper/internal/model"
)

func TestForceAssignReplacesBothSides(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, _ = f.engine.Submit(ctx, 100, 10)
	_, _ = f.engine.Submit(ctx, 101, 10)
	_, _ = f.store.Repo().InsertLink(ctx, 10, 102)
	_, _ = f.engine.Submit(ctx, 200, 20)
	_, _ = f.engine.Submit(ctx, 200, 30)
	// 200 has a pending request on unit 10.
	_, _ = f.engine.Submit(ctx, 200, 10)
	f.notifier.notices = nil

	res, err := f.engine.ForceAssign(ctx, operatorID, 10, 200)
	if err != nil {
		t.Fatalf("ForceAssign failed: %v", err)
	}
	if len(res.PriorOccupants) != 2 || len(res.PriorUnits) != 2 || res.AutoApproved != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if occ := f.occupants(t, 10); len(occ) != 1 || occ[0] != 200 {
		t.Fatalf("unit 10 occupants = %v", occ)
	}
	units, _ := f.store.Repo().FindOccupantUnits(ctx, 200)
	if len(units) != 1 || units[0] != 10 {
		t.Fatalf("200 should only hold unit 10, got %v", units)
	}
	for _, q := range f.requests(t) {
		if q.RequesterID == 200 && q.Unit == 10 {
			if q.Status != model.StatusApproved || q.ApproverID != operatorID {
				t.Fatalf("pending request not auto-approved by the operator: %+v", q)
			}
		}
	}
	if got := f.notifier.For(200); len(got) != 1 || got[0].MessageID != "notice.force_assigned" {
		t.Fatalf("target not notified: %+v", got)
	}
	if got := f.notifier.For(100); len(got) != 1 || got[0].MessageID != "notice.displaced" {
		t.Fatalf("displaced occupant not notified: %+v", got)
	}
}

func TestForceAssignIdempotentOnSamePair(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.engine.ForceAssign(ctx, operatorID, 10, 200); err != nil {
		t.Fatalf("first ForceAssign failed: %v", err)
	}
	res, err := f.engine.ForceAssign(ctx, operatorID, 10, 200)
	if err != nil {
		t.Fatalf("second ForceAssign failed: %v", err)
	}
	if len(res.PriorOccupants) != 1 || res.PriorOccupants[0] != 200 {
		t.Fatalf("unexpected prior occupants: %v", res.PriorOccupants)
	}
	if occ := f.occupants(t, 10); len(occ) != 1 {
		t.Fatalf("unit 10 occupants = %v", occ)
	}
}

// failInsertStore fails every InsertLink after the steps before it ran.
type failInsertStore struct {
	Store
}

func (s failInsertStore) RunInTx(ctx context.Context, fn func(ctx context.Context, r Repo) error) error {
	return s.Store.RunInTx(ctx, func(ctx context.Context, r Repo) error {
		return fn(ctx, failInsertRepo{Repo: r})
	})
}

type failInsertRepo struct {
	Repo
}

func (failInsertRepo) InsertLink(context.Context, int, int64) (model.Link, error) {
	return model.Link{}, errors.New("insert failed")
}

func TestForceAssignRollsBackAsAWhole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, _ = f.engine.Submit(ctx, 100, 10)
	_, _ = f.engine.Submit(ctx, 200, 20)

	e, err := New(testConfig(), failInsertStore{Store: FromDB(f.store)})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	_, err = e.ForceAssign(ctx, operatorID, 10, 200)
	wantKind(t, err, KindInternal)

	if occ := f.occupants(t, 10); !slices.Equal(occ, []int64{100}) {
		t.Fatalf("unit 10 occupants = %v; want [100]", occ)
	}
	if occ := f.occupants(t, 20); !slices.Equal(occ, []int64{200}) {
		t.Fatalf("unit 20 occupants = %v; want [200]", occ)
	}
}

func TestForceAssignValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.engine.ForceAssign(ctx, operatorID, 999, 200)
	wantKind(t, err, KindValidation)
	_, err = f.engine.ForceAssign(ctx, operatorID, 10, 0)
	wantKind(t, err, KindValidation)
	_, err = f.engine.ForceAssign(ctx, 100, 10, 200)
	wantKind(t, err, KindPermission)
}

func TestUnlink(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, _ = f.engine.Submit(ctx, 100, 10)
	_, _ = f.engine.Submit(ctx, 100, 20)
	_, _ = f.engine.Submit(ctx, 100, 30)

	unit := 20
	res, err := f.engine.Unlink(ctx, operatorID, 100, &unit)
	if err != nil || len(res.Units) != 1 || res.Units[0] != 20 {
		t.Fatalf("Unlink with unit = %+v err=%v", res, err)
	}
	_, err = f.engine.Unlink(ctx, operatorID, 100, &unit)
	wantKind(t, err, KindNotFound)

	res, err = f.engine.Unlink(ctx, operatorID, 100, nil)
	if err != nil || len(res.Units) != 2 {
		t.Fatalf("Unlink all = %+v err=%v", res, err)
	}
	if got := f.notifier.For(100); len(got) != 3 {
		t.Fatalf("expected one notice per removed unit, got %+v", got)
	}
	_, err = f.engine.Unlink(ctx, operatorID, 100, nil)
	wantKind(t, err, KindNotFound)
}

func TestReleaseUnit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, _ = f.engine.Submit(ctx, 100, 10)
	_, _ = f.store.Repo().InsertLink(ctx, 10, 101)

	res, err := f.engine.ReleaseUnit(ctx, operatorID, 10)
	if err != nil || res.AlreadyVacant || len(res.Removed) != 2 {
		t.Fatalf("ReleaseUnit = %+v err=%v", res, err)
	}
	res, err = f.engine.ReleaseUnit(ctx, operatorID, 10)
	if err != nil {
		t.Fatalf("release of a vacant unit must not fail: %v", err)
	}
	if !res.AlreadyVacant || len(res.Removed) != 0 {
		t.Fatalf("expected already-vacant outcome, got %+v", res)
	}
	_, err = f.engine.ReleaseUnit(ctx, operatorID, 404)
	wantKind(t, err, KindValidation)
}

func TestReset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, _ = f.engine.Submit(ctx, 100, 10)
	_, _ = f.engine.Submit(ctx, 200, 10)

	_, err := f.engine.Reset(ctx, operatorID, resetToken)
	wantKind(t, err, KindPermission)
	_, err = f.engine.Reset(ctx, rootID, "wrong")
	wantKind(t, err, KindValidation)
	if occ := f.occupants(t, 10); len(occ) != 1 {
		t.Fatalf("failed reset must not change anything, occupants=%v", occ)
	}

	res, err := f.engine.Reset(ctx, rootID, resetToken)
	if err != nil || res.Links != 1 || res.Requests != 1 {
		t.Fatalf("Reset = %+v err=%v", res, err)
	}
	if occ := f.occupants(t, 10); len(occ) != 0 {
		t.Fatalf("links survived reset: %v", occ)
	}
	ops, err := f.engine.ListOperators(ctx, rootID)
	if err != nil || len(ops.Operators) != 2 {
		t.Fatalf("operators must survive reset: %+v err=%v", ops, err)
	}
}

func TestResetDisabledWithoutToken(t *testing.T) {
	f := newFixture(t, func(c *Config) { c.ResetToken = "" })
	_, err := f.engine.Reset(context.Background(), rootID, "")
	wantKind(t, err, KindValidation)
	if e, ok := err.(*Error); !ok || e.MessageID != "error.reset_disabled" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestOperatorManagement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.engine.AddOperator(ctx, rootID, 50)
	if err != nil || !res.Changed {
		t.Fatalf("AddOperator = %+v err=%v", res, err)
	}
	if got := f.notifier.For(50); len(got) != 1 || got[0].MessageID != "notice.operator_added" {
		t.Fatalf("new operator not notified: %+v", got)
	}
	res, err = f.engine.AddOperator(ctx, rootID, 50)
	if err != nil || res.Changed {
		t.Fatalf("re-adding must be a no-op success: %+v err=%v", res, err)
	}
	_, err = f.engine.AddOperator(ctx, operatorID, 51)
	wantKind(t, err, KindPermission)

	list, err := f.engine.ListOperators(ctx, 50)
	if err != nil {
		t.Fatalf("ListOperators failed: %v", err)
	}
	if len(list.Operators) != 3 || list.Operators[0].ID != rootID || list.Root != rootID {
		t.Fatalf("unexpected operator list: %+v", list)
	}
	_, err = f.engine.ListOperators(ctx, 100)
	wantKind(t, err, KindPermission)

	res, err = f.engine.RemoveOperator(ctx, rootID, 50)
	if err != nil || !res.Changed {
		t.Fatalf("RemoveOperator = %+v err=%v", res, err)
	}
	res, err = f.engine.RemoveOperator(ctx, rootID, 50)
	if err != nil || res.Changed {
		t.Fatalf("removing a non-operator must be a no-op success: %+v err=%v", res, err)
	}
	_, err = f.engine.RemoveOperator(ctx, operatorID, operatorID)
	wantKind(t, err, KindPermission)
}

func TestRootCannotBeRemoved(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, actor := range []int64{rootID, operatorID, 100} {
		_, err := f.engine.RemoveOperator(ctx, actor, rootID)
		wantKind(t, err, KindPermission)
		if e := err.(*Error); e.MessageID != "error.root_protected" {
			t.Fatalf("unexpected message for actor %d: %s", actor, e.MessageID)
		}
	}
	if ok, _ := f.store.Repo().IsOperator(ctx, rootID); !ok {
		t.Fatalf("root operator row disappeared")
	}
}
