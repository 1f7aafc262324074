// Copyright (c) 2026 ToeiRei
// Flatkeeper - apartment occupancy registry
// This source code is licensed under the MIT license found in the LICENSE file.

// package model defines the registry entities shared by the store and the
// workflow engine.
package model // import "github.com/toeirei/flatkeeper/internal/model"

import (
	"fmt"
	"time"
)

// Building is one inclusive range of unit numbers.
type Building struct {
	Name  string
	First int
	Last  int
}

// Contains reports whether unit falls inside the building's range.
func (b Building) Contains(unit int) bool {
	return unit >= b.First && unit <= b.Last
}

// Size returns the number of units in the range.
func (b Building) Size() int {
	if b.Last < b.First {
		return 0
	}
	return b.Last - b.First + 1
}

// String returns "name (first-last)".
func (b Building) String() string {
	return fmt.Sprintf("%s (%d-%d)", b.Name, b.First, b.Last)
}

// Link asserts that a person currently occupies a unit.
// The (Unit, OccupantID) pair is unique in the store.
type Link struct {
	ID         int64     `json:"id"`
	Unit       int       `json:"unit"`
	OccupantID int64     `json:"occupant_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// String returns "unit:occupant".
func (l Link) String() string {
	return fmt.Sprintf("%d:%d", l.Unit, l.OccupantID)
}

// LinkFilter selects links by unit and/or occupant. A filter with neither
// field set matches nothing; full wipes go through ResetAll.
type LinkFilter struct {
	Unit       *int
	OccupantID *int64
}

// IsEmpty reports whether the filter has no criteria.
func (f LinkFilter) IsEmpty() bool {
	return f.Unit == nil && f.OccupantID == nil
}

// Operator is a privileged identity. AddedBy is nil for the seeded root.
type Operator struct {
	ID      int64     `json:"id"`
	AddedBy *int64    `json:"added_by,omitempty"`
	AddedAt time.Time `json:"added_at"`
}

// RequestStatus is the state of an approval request.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

// Valid reports whether s is one of the known statuses.
func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// ApprovalRequest is a claim on an already-occupied unit awaiting the
// nominated occupant's decision. Only pending requests transition.
type ApprovalRequest struct {
	ID          int64         `json:"id"`
	Unit        int           `json:"unit"`
	RequesterID int64         `json:"requester_id"`
	ApproverID  int64         `json:"approver_id"`
	Status      RequestStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
}

// IsPending reports whether the request can still be resolved.
func (r ApprovalRequest) IsPending() bool {
	return r.Status == StatusPending
}

// Snapshot is the full registry content used by backup and restore.
type Snapshot struct {
	Version   int               `json:"version"`
	CreatedAt time.Time         `json:"created_at"`
	Links     []Link            `json:"links"`
	Operators []Operator        `json:"operators"`
	Requests  []ApprovalRequest `json:"requests"`
}
