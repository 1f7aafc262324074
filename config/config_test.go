// Copyright (c) 2026 ToeiRei
// Flatkeeper - apartment occupancy registry
// This source code is licensed under the MIT license found in the LICENSE file.

package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	cfg "github.com/toeirei/flatkeeper/config"
	"github.com/toeirei/flatkeeper/internal/registry"
)

func resetViper() {
	viper.Reset()
}

func baseDefaults() map[string]any {
	return map[string]any{
		"database.type":                       "sqlite",
		"database.dsn":                        "./flatkeeper.db",
		"language":                            "en",
		"registry.root_operator":              int64(1),
		"registry.reset_token":                "",
		"registry.approvals_require_operator": false,
	}
}

func isolateUserConfig(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)
	return tmp
}

func TestLoadConfig_NoFile_ReturnsNotFoundWithDefaults(t *testing.T) {
	isolateUserConfig(t)
	resetViper()
	defer resetViper()

	got, err := cfg.LoadConfig[cfg.Config](&cobra.Command{}, baseDefaults(), nil)
	if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
		t.Fatalf("expected ConfigFileNotFoundError, got: %T %v", err, err)
	}
	if got.Database.Type != "sqlite" || got.Language != "en" {
		t.Fatalf("defaults not applied: %+v", got)
	}
	if got.Registry.RootOperator != 1 {
		t.Fatalf("expected root operator 1, got %d", got.Registry.RootOperator)
	}
}

func TestLoadConfig_EmptyCandidate_TreatedAsNotFound(t *testing.T) {
	tmp := isolateUserConfig(t)

	cfgDir := filepath.Join(tmp, "flatkeeper")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	f, err := os.Create(filepath.Join(cfgDir, "flatkeeper.yaml"))
	if err != nil {
		t.Fatalf("create empty file: %v", err)
	}
	_ = f.Close()

	resetViper()
	defer resetViper()

	_, err = cfg.LoadConfig[cfg.Config](&cobra.Command{}, baseDefaults(), nil)
	if err == nil {
		t.Fatalf("expected ConfigFileNotFoundError for empty candidate, got nil")
	}
	if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
		t.Fatalf("expected ConfigFileNotFoundError, got: %T %v", err, err)
	}
}

func TestLoadConfig_ReadsExplicitFile(t *testing.T) {
	tmp := t.TempDir()
	yaml := `database:
  type: postgres
  dsn: postgresql://user@/db
language: ru
registry:
  root_operator: 42
  reset_token: "2512"
  approvals_require_operator: true
  buildings:
    - name: North
      first: 1
      last: 100
    - name: South
      first: 101
      last: 150
directory:
  - id: 42
    name: Vera
  - id: 7
    name: Oleg
`
	file := filepath.Join(tmp, "cfg.yaml")
	if err := os.WriteFile(file, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	resetViper()
	defer resetViper()

	got, err := cfg.LoadConfig[cfg.Config](&cobra.Command{}, baseDefaults(), &file)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if got.Database.Type != "postgres" {
		t.Fatalf("expected postgres, got %q", got.Database.Type)
	}
	if got.Language != "ru" {
		t.Fatalf("expected ru, got %q", got.Language)
	}
	if got.Registry.RootOperator != 42 || got.Registry.ResetToken != "2512" || !got.Registry.ApprovalsRequireOperator {
		t.Fatalf("unexpected registry section: %+v", got.Registry)
	}
	if len(got.Registry.Buildings) != 2 || got.Registry.Buildings[1].Name != "South" || got.Registry.Buildings[1].Last != 150 {
		t.Fatalf("unexpected buildings: %+v", got.Registry.Buildings)
	}
	names := got.Names()
	if names[42] != "Vera" || names[7] != "Oleg" {
		t.Fatalf("unexpected directory: %+v", names)
	}
}

func TestLoadConfig_BrokenConfig_ReturnsParseError(t *testing.T) {
	tmp := t.TempDir()
	// 0x01 is a control character YAML forbids.
	yaml := "language: en\n" + string([]byte{0x01}) + "\n"
	file := filepath.Join(tmp, "broken.yaml")
	if err := os.WriteFile(file, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write broken file: %v", err)
	}

	resetViper()
	defer resetViper()

	_, err := cfg.LoadConfig[cfg.Config](&cobra.Command{}, baseDefaults(), &file)
	if err == nil {
		t.Fatalf("expected parse error for broken yaml, got nil")
	}
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		t.Fatalf("parse error must not be reported as not-found: %v", err)
	}
}

func TestLoadConfig_EnvVarParsing(t *testing.T) {
	isolateUserConfig(t)
	t.Setenv("FLATKEEPER_DATABASE_TYPE", "mysql")
	t.Setenv("FLATKEEPER_DATABASE_DSN", "user:pw@tcp(localhost:3306)/flats")
	t.Setenv("FLATKEEPER_REGISTRY_ROOT_OPERATOR", "99")
	t.Setenv("FLATKEEPER_REGISTRY_RESET_TOKEN", "s3cret")

	resetViper()
	defer resetViper()

	got, err := cfg.LoadConfig[cfg.Config](&cobra.Command{}, baseDefaults(), nil)
	if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
		t.Fatalf("expected ConfigFileNotFoundError, got: %T %v", err, err)
	}
	if got.Database.Type != "mysql" {
		t.Fatalf("expected mysql from env, got %q", got.Database.Type)
	}
	if got.Database.Dsn != "user:pw@tcp(localhost:3306)/flats" {
		t.Fatalf("expected env DSN, got %q", got.Database.Dsn)
	}
	if got.Registry.RootOperator != 99 {
		t.Fatalf("expected root 99 from env, got %d", got.Registry.RootOperator)
	}
	if got.Registry.ResetToken != "s3cret" {
		t.Fatalf("expected reset token from env, got %q", got.Registry.ResetToken)
	}
}

func TestLoadConfig_FlagBindingOverridesEnv(t *testing.T) {
	isolateUserConfig(t)
	t.Setenv("FLATKEEPER_LANGUAGE", "en")

	resetViper()
	defer resetViper()

	cmd := &cobra.Command{}
	cmd.Flags().String("language", "", "language")
	if err := cmd.Flags().Set("language", "ru"); err != nil {
		t.Fatalf("failed to set flag: %v", err)
	}

	got, _ := cfg.LoadConfig[cfg.Config](cmd, baseDefaults(), nil)
	if got.Language != "ru" {
		t.Fatalf("expected ru from flag, got %q", got.Language)
	}
}

func TestLoadConfig_WorkingDirectoryFile(t *testing.T) {
	tmp := t.TempDir()
	origWd, _ := os.Getwd()
	defer func() { _ = os.Chdir(origWd) }()
	if err := os.Chdir(tmp); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "noconfig"))

	local := "database:\n  type: sqlite\n  dsn: ./local.db\nlanguage: ru\n"
	if err := os.WriteFile("flatkeeper.yaml", []byte(local), 0o600); err != nil {
		t.Fatalf("write local config: %v", err)
	}

	resetViper()
	defer resetViper()

	got, err := cfg.LoadConfig[cfg.Config](&cobra.Command{}, baseDefaults(), nil)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if got.Database.Dsn != "./local.db" || got.Language != "ru" {
		t.Fatalf("working directory file not loaded: %+v", got)
	}
}

func TestLoadConfig_UserFileBeatsWorkingDirectory(t *testing.T) {
	tmp := t.TempDir()
	origWd, _ := os.Getwd()
	defer func() { _ = os.Chdir(origWd) }()
	if err := os.Chdir(tmp); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	xdg := filepath.Join(tmp, "xdg")
	t.Setenv("XDG_CONFIG_HOME", xdg)

	if err := os.MkdirAll(filepath.Join(xdg, "flatkeeper"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(xdg, "flatkeeper", "flatkeeper.yaml"), []byte("database:\n  dsn: ./user.db\n"), 0o600); err != nil {
		t.Fatalf("write user config: %v", err)
	}
	if err := os.WriteFile("flatkeeper.yaml", []byte("database:\n  dsn: ./local.db\n"), 0o600); err != nil {
		t.Fatalf("write local config: %v", err)
	}

	resetViper()
	defer resetViper()

	got, err := cfg.LoadConfig[cfg.Config](&cobra.Command{}, baseDefaults(), nil)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if got.Database.Dsn != "./user.db" {
		t.Fatalf("expected ./user.db from user config, got %q", got.Database.Dsn)
	}
}

func TestWriteConfigFile_CreatesFile(t *testing.T) {
	tmp := isolateUserConfig(t)
	resetViper()
	defer resetViper()

	c := cfg.Config{}
	c.Database.Type = "sqlite"
	c.Database.Dsn = "./flatkeeper.db"
	c.Language = "en"
	c.Registry.RootOperator = 5
	c.Directory = []cfg.DirectoryEntry{{ID: 5, Name: "Root"}}

	if err := cfg.WriteConfigFile(&c, false); err != nil {
		t.Fatalf("WriteConfigFile failed: %v", err)
	}

	path, err := cfg.GetConfigPath(false)
	if err != nil {
		t.Fatalf("GetConfigPath failed: %v", err)
	}
	if want := filepath.Join(tmp, "flatkeeper", "flatkeeper.yaml"); path != want {
		t.Fatalf("GetConfigPath() = %s, want %s", path, want)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected config file at %s, stat error: %v", path, err)
	}
	if cfg.RuntimeOS != "windows" && info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600 permissions, got %v", info.Mode().Perm())
	}

	// The written file loads back through the regular search path.
	got, err := cfg.LoadConfig[cfg.Config](&cobra.Command{}, baseDefaults(), nil)
	if err != nil {
		t.Fatalf("LoadConfig after write: %v", err)
	}
	if got.Registry.RootOperator != 5 || got.Names()[5] != "Root" {
		t.Fatalf("round trip lost values: %+v", got)
	}
}

func TestSave_PersistsViperState(t *testing.T) {
	isolateUserConfig(t)
	resetViper()
	defer resetViper()

	viper.Set("database.type", "mysql")
	viper.Set("database.dsn", "user@tcp(db)/flats")
	viper.Set("language", "ru")

	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	path, err := cfg.GetConfigPath(false)
	if err != nil {
		t.Fatalf("GetConfigPath failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read config file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "mysql") || !strings.Contains(content, "ru") {
		t.Fatalf("saved config missing values: %s", content)
	}
}

func TestGetConfigPath_System(t *testing.T) {
	orig := cfg.RuntimeOS
	defer func() { cfg.RuntimeOS = orig }()

	cfg.RuntimeOS = "linux"
	path, err := cfg.GetConfigPath(true)
	if err != nil {
		t.Fatalf("GetConfigPath(true): %v", err)
	}
	if path != filepath.Join("/etc/flatkeeper", "flatkeeper.yaml") {
		t.Fatalf("unexpected linux system path %s", path)
	}

	cfg.RuntimeOS = "windows"
	t.Setenv("ProgramData", "PD")
	path, err = cfg.GetConfigPath(true)
	if err != nil {
		t.Fatalf("GetConfigPath(true): %v", err)
	}
	if path != filepath.Join("PD", "Flatkeeper", "flatkeeper.yaml") {
		t.Fatalf("unexpected windows system path %s", path)
	}
}

func TestRegistryConfig(t *testing.T) {
	cases := []struct {
		name    string
		in      cfg.Registry
		wantErr bool
		check   func(t *testing.T, rc registry.Config)
	}{
		{
			name: "default buildings",
			in:   cfg.Registry{RootOperator: 1, ResetToken: "2512"},
			check: func(t *testing.T, rc registry.Config) {
				if len(rc.Buildings) != 2 || rc.Buildings[0].Last != 252 || rc.Buildings[1].First != 253 || rc.Buildings[1].Last != 403 {
					t.Fatalf("unexpected default buildings: %+v", rc.Buildings)
				}
				if rc.ResetToken != "2512" || rc.RootOperator != 1 {
					t.Fatalf("unexpected config: %+v", rc)
				}
			},
		},
		{
			name: "custom buildings",
			in: cfg.Registry{RootOperator: 3, ApprovalsRequireOperator: true, Buildings: []cfg.Building{
				{Name: "A", First: 1, Last: 10},
			}},
			check: func(t *testing.T, rc registry.Config) {
				if len(rc.Buildings) != 1 || rc.Buildings[0].Name != "A" || !rc.ApprovalsRequireOperator {
					t.Fatalf("unexpected config: %+v", rc)
				}
			},
		},
		{name: "missing root", in: cfg.Registry{}, wantErr: true},
		{name: "overlapping buildings", in: cfg.Registry{RootOperator: 1, Buildings: []cfg.Building{
			{Name: "A", First: 1, Last: 10},
			{Name: "B", First: 10, Last: 20},
		}}, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rc, err := cfg.Config{Registry: tc.in}.RegistryConfig()
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", rc)
				}
				return
			}
			if err != nil {
				t.Fatalf("RegistryConfig: %v", err)
			}
			tc.check(t, rc)
		})
	}
}
