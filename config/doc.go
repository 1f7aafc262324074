// Copyright (c) 2026 ToeiRei
// Flatkeeper - apartment occupancy registry
// This source code is licensed under the MIT license found in the LICENSE file.

// Package config provides configuration loading and persistence for
// Flatkeeper. It uses Viper for file/env/flag parsing and turns the result
// into the immutable registry.Config the engine is built from.
package config
