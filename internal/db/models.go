// Copyright (c) 2026 ToeiRei
// Flatkeeper - apartment occupancy registry
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"time"

	"github.com/toeirei/flatkeeper/internal/model"
	"github.com/uptrace/bun"
)

// LinkModel maps the unit_links table.
type LinkModel struct {
	bun.BaseModel `bun:"table:unit_links"`
	ID            int64     `bun:"id,pk,autoincrement"`
	Unit          int       `bun:"unit"`
	OccupantID    int64     `bun:"occupant_id"`
	CreatedAt     time.Time `bun:"created_at"`
}

// OperatorModel maps the operators table. AddedBy is NULL for the seeded root.
type OperatorModel struct {
	bun.BaseModel `bun:"table:operators"`
	OccupantID    int64     `bun:"occupant_id,pk"`
	AddedBy       *int64    `bun:"added_by"`
	AddedAt       time.Time `bun:"added_at"`
}

// RequestModel maps the approval_requests table.
type RequestModel struct {
	bun.BaseModel `bun:"table:approval_requests"`
	ID            int64     `bun:"id,pk,autoincrement"`
	Unit          int       `bun:"unit"`
	RequesterID   int64     `bun:"requester_id"`
	ApproverID    int64     `bun:"approver_id"`
	Status        string    `bun:"status"`
	CreatedAt     time.Time `bun:"created_at"`
}

// UnitModel maps the units lock table.
type UnitModel struct {
	bun.BaseModel `bun:"table:units"`
	Unit          int   `bun:"unit,pk"`
	Claims        int64 `bun:"claims"`
}

// OccupantLockModel maps the occupant_locks lock table.
type OccupantLockModel struct {
	bun.BaseModel `bun:"table:occupant_locks"`
	OccupantID    int64 `bun:"occupant_id,pk"`
	Claims        int64 `bun:"claims"`
}

func linkToModel(m LinkModel) model.Link {
	return model.Link{ID: m.ID, Unit: m.Unit, OccupantID: m.OccupantID, CreatedAt: m.CreatedAt}
}

func operatorToModel(m OperatorModel) model.Operator {
	return model.Operator{ID: m.OccupantID, AddedBy: m.AddedBy, AddedAt: m.AddedAt}
}

func requestToModel(m RequestModel) model.ApprovalRequest {
	return model.ApprovalRequest{
		ID:          m.ID,
		Unit:        m.Unit,
		RequesterID: m.RequesterID,
		ApproverID:  m.ApproverID,
		Status:      model.RequestStatus(m.Status),
		CreatedAt:   m.CreatedAt,
	}
}
