// Copyright (c) 2026 ToeiRei
// Flatkeeper - apartment occupancy registry
// This source code is licensed under the MIT license found in the LICENSE file.

// Package buildvars contains variables injected at build time.
package buildvars

// Version is set at link time via
// `-ldflags -X github.com/toeirei/flatkeeper/buildvars.Version=...`.
// It is empty for local builds.
var Version string

// Commit is the short VCS revision set at link time.
var Commit string

// VersionOrDefault returns Version if set, otherwise def.
func VersionOrDefault(def string) string {
	if Version != "" {
		return Version
	}
	return def
}

// CommitOrDefault returns Commit if set, otherwise def.
func CommitOrDefault(def string) string {
	if Commit != "" {
		return Commit
	}
	return def
}
