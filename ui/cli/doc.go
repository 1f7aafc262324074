// Copyright (c) 2026 ToeiRei
// Flatkeeper - apartment occupancy registry
// This source code is licensed under the MIT license found in the LICENSE file.
//
// Package cli implements the command-line interface for Flatkeeper using Cobra.
// It loads configuration, opens the store, builds the registry engine and maps
// each verb onto one registry command. CLI code stays thin: parsing, output
// and error rendering only.
package cli
