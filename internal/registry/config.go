// Copyright (c) 2026 ToeiRei
// Flatkeeper - apartment occupancy registry
// This source code is licensed under the MIT license found in the LICENSE file.

package registry

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/toeirei/flatkeeper/internal/model"
)

// Config is the immutable engine configuration. It is copied into the
// engine at construction; later changes to the caller's value have no effect.
type Config struct {
	// RootOperator is the fixed root identity. It is never read from or
	// removed from the operators table.
	RootOperator int64
	// Buildings are the disjoint inclusive unit ranges that can be claimed.
	Buildings []model.Building
	// ResetToken must be presented to Reset. Empty disables Reset.
	ResetToken string
	// ApprovalsRequireOperator restricts approve and reject to operators.
	// When false the nominated approver may act at any tier.
	ApprovalsRequireOperator bool
}

// DefaultBuildings returns the two standard buildings, units 1-252 and 253-403.
func DefaultBuildings() []model.Building {
	return []model.Building{
		{Name: "House 1", First: 1, Last: 252},
		{Name: "House 2", First: 253, Last: 403},
	}
}

// Validate checks the configuration for a usable root and well-formed,
// non-overlapping buildings.
func (c Config) Validate() error {
	var errs []error
	if c.RootOperator <= 0 {
		errs = append(errs, fmt.Errorf("root operator id must be positive, got %d", c.RootOperator))
	}
	if len(c.Buildings) == 0 {
		errs = append(errs, errors.New("at least one building must be configured"))
	}
	for i, b := range c.Buildings {
		if b.First <= 0 || b.Last < b.First {
			errs = append(errs, fmt.Errorf("building %q has invalid range %d-%d", b.Name, b.First, b.Last))
			continue
		}
		for _, o := range c.Buildings[i+1:] {
			if b.First <= o.Last && o.First <= b.Last {
				errs = append(errs, fmt.Errorf("buildings %q and %q overlap", b.Name, o.Name))
			}
		}
	}
	return errors.Join(errs...)
}

// clone returns a deep copy so the engine never shares the building slice.
func (c Config) clone() Config {
	c.Buildings = slices.Clone(c.Buildings)
	return c
}

// UnitValid reports whether unit belongs to a configured building.
func (c Config) UnitValid(unit int) bool {
	_, ok := c.BuildingOf(unit)
	return ok
}

// BuildingOf returns the building containing unit.
func (c Config) BuildingOf(unit int) (model.Building, bool) {
	for _, b := range c.Buildings {
		if b.Contains(unit) {
			return b, true
		}
	}
	return model.Building{}, false
}

// RangesString renders the buildings as "1-252, 253-403".
func (c Config) RangesString() string {
	parts := make([]string, 0, len(c.Buildings))
	for _, b := range c.Buildings {
		parts = append(parts, fmt.Sprintf("%d-%d", b.First, b.Last))
	}
	return strings.Join(parts, ", ")
}
