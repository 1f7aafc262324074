// Copyright (c) 2026 ToeiRei
// Flatkeeper - apartment occupancy registry
// This source code is licensed under the MIT license found in the LICENSE file.

package registry

import (
	"github.com/toeirei/flatkeeper/internal/model"
)

// Result is the success payload of a command. Like Command, the set is closed.
type Result interface {
	result()
}

// ClaimResult reports a submitted claim. Exactly one of Linked and Request
// is set: a vacant unit links directly, an occupied one opens a request.
type ClaimResult struct {
	Unit    int
	Linked  bool
	Request *model.ApprovalRequest
}

// ApproveResult reports an approval. AlreadyResolved is true when the
// request was resolved concurrently; the link was still created.
type ApproveResult struct {
	Request         model.ApprovalRequest
	AlreadyResolved bool
}

// RejectResult reports a rejected request.
type RejectResult struct {
	Request model.ApprovalRequest
}

// ReleaseResult lists the units the actor left.
type ReleaseResult struct {
	Units []int
}

// ForceAssignResult reports the state that an assignment replaced.
type ForceAssignResult struct {
	Unit           int
	Occupant       int64
	PriorOccupants []int64
	PriorUnits     []int
	AutoApproved   int64
}

// UnlinkResult lists the units Occupant was removed from.
type UnlinkResult struct {
	Occupant int64
	Units    []int
}

// ReleaseUnitResult lists removed occupants. AlreadyVacant is set, and
// Removed empty, when the unit had none.
type ReleaseUnitResult struct {
	Unit          int
	Removed       []int64
	AlreadyVacant bool
}

// ClearPendingResult reports how many pending requests were deleted.
type ClearPendingResult struct {
	Cleared int64
}

// ResetResult reports how many rows a reset deleted.
type ResetResult struct {
	Links    int64
	Requests int64
}

// BuildingStats is one row of the occupancy report. Vacant is never negative.
type BuildingStats struct {
	Building model.Building
	Size     int
	Occupied int
	Vacant   int
}

// OccupancyReport summarizes occupancy per building. Anomalies counts
// distinct occupied units outside every configured building.
type OccupancyReport struct {
	Buildings []BuildingStats
	Total     BuildingStats
	Anomalies int
}

// OccupancyGroup holds the links of one building, ordered by unit.
type OccupancyGroup struct {
	Building model.Building
	Links    []model.Link
}

// OccupancyList is every link grouped by building; Other holds links whose
// unit is outside every building.
type OccupancyList struct {
	Groups []OccupancyGroup
	Other  []model.Link
}

// OperatorResult reports an operator grant or revocation. Changed is false
// when the grant was already in place.
type OperatorResult struct {
	ID      int64
	Changed bool
}

// OperatorList lists operators in the order they were added.
type OperatorList struct {
	Operators []model.Operator
	Root      int64
}

// WhoAmIResult describes the actor.
type WhoAmIResult struct {
	ID    int64
	Tier  Tier
	Units []int
}

// RestoreResult reports what a snapshot restore wrote.
type RestoreResult struct {
	Links     int
	Operators int
	Requests  int
}

func (ClaimResult) result()        {}
func (ApproveResult) result()      {}
func (RejectResult) result()       {}
func (ReleaseResult) result()      {}
func (ForceAssignResult) result()  {}
func (UnlinkResult) result()       {}
func (ReleaseUnitResult) result()  {}
func (ClearPendingResult) result() {}
func (ResetResult) result()        {}
func (OccupancyReport) result()    {}
func (OccupancyList) result()      {}
func (OperatorResult) result()     {}
func (OperatorList) result()       {}
func (WhoAmIResult) result()       {}
func (RestoreResult) result()      {}
