// Copyright (c) 2026 ToeiRei
// Flatkeeper - apartment occupancy registry
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/toeirei/flatkeeper/internal/i18n"
)

const testConfig = `database:
  type: sqlite
  dsn: %s
language: en
registry:
  root_operator: 1
  reset_token: "2512"
directory:
  - id: 1
    name: Root
  - id: 10
    name: Anna
  - id: 11
    name: Boris
  - id: 12
    name: Clara
`

// cliEnv is an isolated config file and SQLite database for one test.
type cliEnv struct {
	dir    string
	config string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	// Keep first-run config writes out of the real user directory.
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))

	cfgPath := filepath.Join(dir, "flatkeeper.yaml")
	content := fmt.Sprintf(testConfig, filepath.Join(dir, "flatkeeper.db"))
	if err := os.WriteFile(cfgPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Cleanup(func() { i18n.Init("en") })
	return &cliEnv{dir: dir, config: cfgPath}
}

// run executes one CLI invocation and returns stdout, stderr and the error.
func (e *cliEnv) run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	a := newApp()
	root := a.rootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append(args, "--config", e.config))
	err := root.ExecuteContext(context.Background())
	a.close()
	return out.String(), errOut.String(), err
}

// ok runs a command that must succeed and returns its stdout.
func (e *cliEnv) ok(t *testing.T, args ...string) string {
	t.Helper()
	out, errOut, err := e.run(t, "", args...)
	if err != nil {
		t.Fatalf("%v failed: %v\nstdout: %s\nstderr: %s", args, err, out, errOut)
	}
	return out
}

// fails runs a command that must be rejected and returns its stderr.
func (e *cliEnv) fails(t *testing.T, args ...string) string {
	t.Helper()
	out, errOut, err := e.run(t, "", args...)
	if !errors.Is(err, errReported) {
		t.Fatalf("%v: expected reported error, got %v\nstdout: %s\nstderr: %s", args, err, out, errOut)
	}
	return errOut
}

func assertContains(t *testing.T, got string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(got, w) {
			t.Fatalf("expected output to contain %q, got:\n%s", w, got)
		}
	}
}

func TestClaimApproveFlow(t *testing.T) {
	env := newCLIEnv(t)

	assertContains(t, env.ok(t, "claim", "5", "--as", "10"), "Registered in unit 5.")

	out := env.ok(t, "claim", "5", "--as", "11")
	assertContains(t, out,
		"Unit 5 is occupied. Request #1 was sent to Anna.",
		"@Anna: Boris asks to join unit 5. Approve with: flatkeeper approve 11",
	)

	out = env.ok(t, "approve", "11", "--as", "10")
	assertContains(t, out,
		"Boris is now registered in unit 5.",
		"@Boris: Your request for unit 5 was approved by Anna.",
	)

	out = env.ok(t, "whoami", "--as", "11")
	assertContains(t, out, "Boris, tier: resident", "Registered in: 5")

	// A second approval finds nothing pending.
	errOut := env.fails(t, "approve", "11", "--as", "10")
	assertContains(t, errOut, "Not found: There is no pending request from Boris addressed to you.")
}

func TestClaimRejectAndRelease(t *testing.T) {
	env := newCLIEnv(t)

	env.ok(t, "claim", "300", "--as", "10")
	env.ok(t, "claim", "300", "--as", "12")

	out := env.ok(t, "reject", "12", "--as", "10")
	assertContains(t, out,
		"Request from Clara for unit 300 rejected.",
		"@Clara: Your request for unit 300 was rejected by Anna.",
	)

	assertContains(t, env.ok(t, "whoami", "--as", "12"), "Not registered in any unit.")
	assertContains(t, env.ok(t, "release", "--as", "10"), "Released unit(s): 300.")

	errOut := env.fails(t, "release", "--as", "10")
	assertContains(t, errOut, "Not found: Anna is not registered in any unit.")
}

func TestErrorsAreRenderedByKind(t *testing.T) {
	env := newCLIEnv(t)

	assertContains(t, env.fails(t, "claim", "999", "--as", "10"),
		"Invalid request: Unit 999 is outside the configured buildings (1-252, 253-403).")
	assertContains(t, env.fails(t, "claim", "abc", "--as", "10"),
		"Invalid request: Unit must be a number, got abc.")
	assertContains(t, env.fails(t, "assign", "5", "11", "--as", "10"),
		"Permission denied: This action requires operator rights.")
	assertContains(t, env.fails(t, "operator", "remove", "1", "--as", "1"),
		"Permission denied: The root operator cannot be removed.")

	env.ok(t, "claim", "5", "--as", "10")
	assertContains(t, env.fails(t, "claim", "5", "--as", "10"),
		"Conflict: Anna is already registered in unit 5.")
}

func TestOperatorCommands(t *testing.T) {
	env := newCLIEnv(t)

	assertContains(t, env.ok(t, "operator", "add", "10", "--as", "1"), "Anna is now an operator.")
	assertContains(t, env.ok(t, "operator", "add", "10", "--as", "1"), "Anna already is an operator.")

	out := env.ok(t, "operator", "list", "--as", "10")
	assertContains(t, out, "Operators", "Root", "Anna", "root")

	// Operators may force-assign; the displaced occupant is notified.
	env.ok(t, "claim", "7", "--as", "11")
	out = env.ok(t, "assign", "7", "12", "--as", "10")
	assertContains(t, out,
		"Unit 7 assigned to Clara.",
		"Removed from the unit: Boris",
		"@Boris: An operator removed your registration from unit 7.",
	)

	assertContains(t, env.ok(t, "operator", "remove", "10", "--as", "1"), "Anna is no longer an operator.")
	assertContains(t, env.ok(t, "operator", "remove", "10", "--as", "1"), "Anna was not an operator.")
	assertContains(t, env.fails(t, "operator", "list", "--as", "10"), "Permission denied")
}

func TestOverrideCommands(t *testing.T) {
	env := newCLIEnv(t)

	env.ok(t, "claim", "20", "--as", "10")
	env.ok(t, "claim", "20", "--as", "11")
	env.ok(t, "approve", "11", "--as", "10")

	assertContains(t, env.ok(t, "unlink", "11", "20", "--as", "1"), "Boris removed from unit(s): 20.")
	assertContains(t, env.fails(t, "unlink", "11", "--as", "1"), "Not found: Boris is not registered in any unit.")

	assertContains(t, env.ok(t, "release-unit", "20", "--as", "1"), "Unit 20 released. Removed: Anna.")
	assertContains(t, env.ok(t, "release-unit", "20", "--as", "1"), "Unit 20 is already vacant.")

	env.ok(t, "claim", "21", "--as", "10")
	env.ok(t, "claim", "21", "--as", "12")
	assertContains(t, env.ok(t, "clear-pending", "--as", "1"), "Deleted 1 pending request(s).")
	assertContains(t, env.ok(t, "clear-pending", "--as", "1"), "Deleted 0 pending request(s).")
}

func TestResetReadsTokenFromStdin(t *testing.T) {
	env := newCLIEnv(t)
	env.ok(t, "claim", "5", "--as", "10")

	_, errOut, err := env.run(t, "wrong\n", "reset", "--as", "1")
	if !errors.Is(err, errReported) {
		t.Fatalf("expected reported error, got %v", err)
	}
	assertContains(t, errOut, "Invalid request: The confirmation token is wrong.")

	out, _, err := env.run(t, "2512\n", "reset", "--as", "1")
	if err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	assertContains(t, out, "Registry reset: 1 link(s) and 0 request(s) deleted.")

	assertContains(t, env.ok(t, "reset", "2512", "--as", "1"), "Registry reset: 0 link(s) and 0 request(s) deleted.")
	assertContains(t, env.fails(t, "reset", "2512", "--as", "10"), "Permission denied")
}

func TestReportAndList(t *testing.T) {
	env := newCLIEnv(t)

	assertContains(t, env.ok(t, "list", "--as", "1"), "No units are registered.")

	env.ok(t, "claim", "5", "--as", "10")
	env.ok(t, "claim", "260", "--as", "11")

	out := env.ok(t, "report", "--as", "1")
	assertContains(t, out, "Occupancy", "House 1", "1-252", "House 2", "253-403", "All buildings", "403")

	out = env.ok(t, "list", "--as", "1")
	assertContains(t, out, "House 1 (1-252)", "House 2 (253-403)", "Anna", "Boris", "260")

	assertContains(t, env.fails(t, "report", "--as", "10"), "Permission denied")
}

func TestBackupRestoreAndMigrate(t *testing.T) {
	env := newCLIEnv(t)
	env.ok(t, "claim", "5", "--as", "10")

	file := filepath.Join(env.dir, "registry")
	out := env.ok(t, "backup", file, "--as", "1")
	assertContains(t, out, "Backup written to "+file+".zst.")
	if _, err := os.Stat(file + ".zst"); err != nil {
		t.Fatalf("backup file missing: %v", err)
	}

	env.ok(t, "release-unit", "5", "--as", "1")
	assertContains(t, env.ok(t, "restore", file+".zst", "--as", "1"),
		"Restored 1 link(s), 1 operator(s) and 0 request(s).")
	assertContains(t, env.ok(t, "whoami", "--as", "10"), "Registered in: 5")

	assertContains(t, env.fails(t, "restore", file+".zst", "--as", "10"), "Permission denied")

	target := filepath.Join(env.dir, "target.db")
	out = env.ok(t, "migrate", "--type", "sqlite", "--dsn", target, "--as", "1")
	assertContains(t, out, "Copied 1 link(s), 1 operator(s) and 0 request(s) into the sqlite database.")

	// The flag overrides the configured DSN, so this reads the migrated copy.
	assertContains(t, env.ok(t, "whoami", "--as", "10", "--database.dsn", target), "Registered in: 5")
}

func TestDBMaintain(t *testing.T) {
	env := newCLIEnv(t)
	env.ok(t, "claim", "5", "--as", "10")

	assertContains(t, env.ok(t, "db", "maintain", "--as", "1"), "Database maintenance completed.")
	assertContains(t, env.fails(t, "db", "maintain", "--as", "10"), "Permission denied")
}

func TestVersionCommandNeedsNoConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	a := newApp()
	root := a.rootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	assertContains(t, out.String(), "version: ", "commit: ")
}

func TestMissingRootOperatorIsReported(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	cfgPath := filepath.Join(dir, "bad.yaml")
	content := fmt.Sprintf("database:\n  type: sqlite\n  dsn: %s\n", filepath.Join(dir, "x.db"))
	if err := os.WriteFile(cfgPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	env := &cliEnv{dir: dir, config: cfgPath}
	_, _, err := env.run(t, "", "whoami", "--as", "10")
	if err == nil || !strings.Contains(err.Error(), "root operator") {
		t.Fatalf("expected root operator configuration error, got %v", err)
	}
}
