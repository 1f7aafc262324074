// Copyright (c) 2026 ToeiRei
// Flatkeeper - apartment occupancy registry
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for Flatkeeper.
//
// Usage:
//
//	go run . [command] [flags]
//	./flatkeeper [command] [flags]
//
// See --help for the available commands.
package main

import (
	"os"

	"github.com/toeirei/flatkeeper/ui/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
