// Copyright (c) 2026 ToeiRei
// Flatkeeper - apartment occupancy registry
// This source code is licensed under the MIT license found in the LICENSE file.

package registry

// Command is one registry verb. The set is closed: only the types in this
// file implement it, and Engine.Execute handles each of them.
type Command interface {
	command()
	// Name is the verb used in logs and errors.
	Name() string
}

// SubmitClaim asks for the actor to be registered in Unit.
type SubmitClaim struct{ Unit int }

// Approve accepts the latest pending request from Requester addressed to the actor.
type Approve struct{ Requester int64 }

// Reject declines the latest pending request from Requester addressed to the actor.
type Reject struct{ Requester int64 }

// ReleaseOwn removes every link of the actor.
type ReleaseOwn struct{}

// ForceAssign makes Occupant the sole occupant of Unit and Unit the sole
// unit of Occupant.
type ForceAssign struct {
	Unit     int
	Occupant int64
}

// Unlink removes Occupant from Unit, or from every unit when Unit is nil.
type Unlink struct {
	Occupant int64
	Unit     *int
}

// ReleaseUnit removes every occupant of Unit.
type ReleaseUnit struct{ Unit int }

// ClearPending deletes every pending request.
type ClearPending struct{}

// Reset deletes all links and requests once Token matches the configured one.
type Reset struct{ Token string }

// ReportOccupancy computes per-building occupancy statistics.
type ReportOccupancy struct{}

// ListOccupancy lists every link grouped by building.
type ListOccupancy struct{}

// AddOperator grants operator rights to ID.
type AddOperator struct{ ID int64 }

// RemoveOperator revokes operator rights from ID.
type RemoveOperator struct{ ID int64 }

// ListOperators lists all operators.
type ListOperators struct{}

// WhoAmI reports the actor's tier and units.
type WhoAmI struct{}

func (SubmitClaim) command()     {}
func (Approve) command()         {}
func (Reject) command()          {}
func (ReleaseOwn) command()      {}
func (ForceAssign) command()     {}
func (Unlink) command()          {}
func (ReleaseUnit) command()     {}
func (ClearPending) command()    {}
func (Reset) command()           {}
func (ReportOccupancy) command() {}
func (ListOccupancy) command()   {}
func (AddOperator) command()     {}
func (RemoveOperator) command()  {}
func (ListOperators) command()   {}
func (WhoAmI) command()          {}

func (SubmitClaim) Name() string     { return "submit-claim" }
func (Approve) Name() string         { return "approve" }
func (Reject) Name() string          { return "reject" }
func (ReleaseOwn) Name() string      { return "release-own-link" }
func (ForceAssign) Name() string     { return "force-assign" }
func (Unlink) Name() string          { return "unlink" }
func (ReleaseUnit) Name() string     { return "release-unit" }
func (ClearPending) Name() string    { return "clear-pending" }
func (Reset) Name() string           { return "reset" }
func (ReportOccupancy) Name() string { return "report-occupancy" }
func (ListOccupancy) Name() string   { return "list-occupancy" }
func (AddOperator) Name() string     { return "add-operator" }
func (RemoveOperator) Name() string  { return "remove-operator" }
func (ListOperators) Name() string   { return "list-operators" }
func (WhoAmI) Name() string          { return "whoami" }
