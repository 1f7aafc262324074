// Copyright (c) 2026 ToeiRei
// Flatkeeper - apartment occupancy registry
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import "strings"

// sqliteDSN adds the connection options the registry relies on: a busy
// timeout and BEGIN IMMEDIATE for every transaction, so a transaction holds
// the write lock from its first statement. Options already present in dsn
// are kept.
func sqliteDSN(dsn string) string {
	var opts []string
	if !strings.Contains(dsn, "busy_timeout") {
		opts = append(opts, "_pragma=busy_timeout(5000)")
	}
	if !strings.Contains(dsn, "_txlock") {
		opts = append(opts, "_txlock=immediate")
	}
	if len(opts) == 0 {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(opts, "&")
}
