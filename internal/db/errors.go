// Copyright (c) 2026 ToeiRei
// Flatkeeper - apartment occupancy registry
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"errors"
	"strings"
)

// ErrDuplicate is returned when an insert hits a uniqueness constraint, for
// example a second link for the same (unit, occupant) pair.
var ErrDuplicate = errors.New("duplicate record")

// ErrEmptyFilter is returned by DeleteLinks when the filter has no criteria.
var ErrEmptyFilter = errors.New("link filter has no criteria")

// MapDBError maps driver-specific constraint violations to ErrDuplicate.
// The mapping is string based so this file does not import driver packages.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}
	le := strings.ToLower(err.Error())
	// MySQL duplicate entry, Postgres unique violation (23505), SQLite unique constraint
	if strings.Contains(le, "duplicate") || strings.Contains(le, "unique") || strings.Contains(le, "23505") || strings.Contains(le, "1062") {
		return ErrDuplicate
	}
	return err
}
