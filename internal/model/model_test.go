// Copyright (c) 2026 ToeiRei
// Flatkeeper - apartment occupancy registry
// This source code is licensed under the MIT license found in the LICENSE file.

package model

import "testing"

func TestBuildingContainsAndSize(t *testing.T) {
	b := Building{Name: "House 1", First: 1, Last: 252}
	if !b.Contains(1) || !b.Contains(252) {
		t.Errorf("expected inclusive bounds to be contained")
	}
	if b.Contains(0) || b.Contains(253) {
		t.Errorf("unexpected containment outside range")
	}
	if got := b.Size(); got != 252 {
		t.Errorf("unexpected size: %d", got)
	}
	if got := (Building{First: 10, Last: 5}).Size(); got != 0 {
		t.Errorf("inverted range should have size 0, got %d", got)
	}
	if got := b.String(); got != "House 1 (1-252)" {
		t.Errorf("unexpected Building.String(): %q", got)
	}
}

func TestLinkFilterIsEmpty(t *testing.T) {
	if !(LinkFilter{}).IsEmpty() {
		t.Errorf("zero filter should be empty")
	}
	u := 10
	if (LinkFilter{Unit: &u}).IsEmpty() {
		t.Errorf("filter with unit should not be empty")
	}
}

func TestRequestStatusValid(t *testing.T) {
	for _, s := range []RequestStatus{StatusPending, StatusApproved, StatusRejected} {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	if RequestStatus("cancelled").Valid() {
		t.Errorf("unknown status reported valid")
	}
	if !(ApprovalRequest{Status: StatusPending}).IsPending() {
		t.Errorf("pending request not reported pending")
	}
}
