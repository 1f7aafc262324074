// Copyright (c) 2026 ToeiRei
// Flatkeeper - apartment occupancy registry
// This source code is licensed under the MIT license found in the LICENSE file.

// Package registry is the apartment registry engine: occupancy links,
// neighbor approval of claims on occupied units, operator overrides and
// occupancy reporting.
//
// Every operation authorizes the actor first (see RequiredTier), then runs
// as a single store transaction. Operations that change who lives in a unit
// lock that unit for the duration of the transaction, so concurrent claims
// on one unit are serialized. Request resolution is a conditional update;
// of two racing resolutions exactly one applies.
//
// Failures are always *Error values classified by Kind. Store errors never
// leak: uniqueness violations become KindConflict and anything unexpected
// is logged and returned as KindInternal.
//
// Notices for third parties (the approver of a new request, a displaced
// occupant) go to the configured Notifier after the transaction commits.
package registry
