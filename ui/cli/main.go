// Copyright (c) 2026 ToeiRei
// Flatkeeper - apartment occupancy registry
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go sets up the root command, configuration loading and the shared
// services every subcommand runs against.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/toeirei/flatkeeper/buildvars"
	"github.com/toeirei/flatkeeper/config"
	"github.com/toeirei/flatkeeper/internal/db"
	"github.com/toeirei/flatkeeper/internal/i18n"
	"github.com/toeirei/flatkeeper/internal/logging"
	"github.com/toeirei/flatkeeper/internal/notify"
	"github.com/toeirei/flatkeeper/internal/registry"
)

var version = buildvars.VersionOrDefault("dev")
var gitCommit = buildvars.CommitOrDefault("dev")
var buildDate = "" // set at build time (RFC3339)

// defaultSettings are the lowest-precedence configuration values. Every key
// the environment may override must appear here.
func defaultSettings() map[string]any {
	return map[string]any{
		"database.type":                       db.TypeSqlite,
		"database.dsn":                        "./flatkeeper.db",
		"language":                            "en",
		"registry.root_operator":              int64(0),
		"registry.reset_token":                "",
		"registry.approvals_require_operator": false,
	}
}

// app holds the services of one CLI invocation.
type app struct {
	cfgFile     string
	verbose     bool
	showVersion bool
	actor       int64

	cfg    config.Config
	store  *db.Store
	engine *registry.Engine
	dir    *notify.Directory
}

func newApp() *app {
	return &app{}
}

// Execute runs the CLI entrypoint. Errors are already reported when returned.
func Execute() error {
	a := newApp()
	defer a.close()

	root := a.rootCmd()
	err := root.Execute()
	if err != nil && !errors.Is(err, errReported) {
		logging.Errorf("%v", err)
	}
	return err
}

// NewRootCmd creates a fresh root command with its own service set.
func NewRootCmd() *cobra.Command {
	return newApp().rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flatkeeper",
		Short: "Flatkeeper keeps the registry of who lives in which apartment.",
		Long: `Flatkeeper records which residents occupy which units of the house.
Residents claim a unit; if it is already occupied, the current occupant
has to approve. Operators can override assignments and report occupancy.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.showVersion {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), compositeVersion())
				os.Exit(0)
			}
			if skipsSetup(cmd) {
				return nil
			}
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}
	cmd.Version = compositeVersion()

	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose output (debug and DB logs)")
	cmd.PersistentFlags().BoolVarP(&a.showVersion, "version", "V", false, "Print version and exit")
	cmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file")
	cmd.PersistentFlags().Int64Var(&a.actor, "as", 0, "Identity to act as")
	cmd.PersistentFlags().String("language", "en", `Output language ("en", "ru")`)
	applyDefaultFlags(cmd)

	cmd.AddCommand(
		a.claimCmd(),
		a.approveCmd(),
		a.rejectCmd(),
		a.releaseCmd(),
		a.whoamiCmd(),
		a.assignCmd(),
		a.unlinkCmd(),
		a.releaseUnitCmd(),
		a.clearPendingCmd(),
		a.resetCmd(),
		a.reportCmd(),
		a.listCmd(),
		a.operatorCmd(),
		a.backupCmd(),
		a.restoreCmd(),
		a.migrateCmd(),
		a.dbCmd(),
		versionCmd(),
	)
	return cmd
}

// skipsSetup reports whether cmd runs without config and database.
func skipsSetup(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return true
		}
	}
	return false
}

func applyDefaultFlags(cmd *cobra.Command) {
	if cmd.PersistentFlags().Lookup("database.type") == nil {
		cmd.PersistentFlags().String("database.type", db.TypeSqlite, "Database type (sqlite, postgres, mysql)")
	}
	if cmd.PersistentFlags().Lookup("database.dsn") == nil {
		cmd.PersistentFlags().String("database.dsn", "./flatkeeper.db", "Database connection string (DSN)")
	}
}

func getConfigPathFromCli(cmd *cobra.Command) (*string, error) {
	if !cmd.Flags().Changed("config") {
		return nil, nil
	}
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("could not read --config flag: %w", err)
	}
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file specified via --config flag not found or is not accessible: %w", err)
	}
	return &path, nil
}

// setup loads configuration and builds the store and engine.
func (a *app) setup(cmd *cobra.Command) error {
	path, err := getConfigPathFromCli(cmd)
	if err != nil {
		return err
	}

	defaults := defaultSettings()
	a.cfg, err = config.LoadConfig[config.Config](cmd, defaults, path)
	if errors.As(err, &viper.ConfigFileNotFoundError{}) {
		// First run: persist the defaults so there is a file to edit.
		if writeErr := config.WriteConfigFile(&a.cfg, false); writeErr != nil {
			logging.Warnf("could not write default config file: %v", writeErr)
		} else if p, perr := config.GetConfigPath(false); perr == nil {
			logging.Infof("%s", i18n.T("cli.config.written", map[string]any{"Path": p}))
		}
	} else if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	if a.cfg.Database.Type == "" {
		a.cfg.Database.Type = defaults["database.type"].(string)
	}
	if a.cfg.Database.Dsn == "" {
		a.cfg.Database.Dsn = defaults["database.dsn"].(string)
	}
	if a.cfg.Language == "" {
		a.cfg.Language = defaults["language"].(string)
	}

	logging.SetDebug(a.verbose)
	db.SetDebug(a.verbose)
	i18n.Init(a.cfg.Language)

	rc, err := a.cfg.RegistryConfig()
	if err != nil {
		return err
	}

	a.store, err = db.New(a.cfg.Database.Type, a.cfg.Database.Dsn)
	if err != nil {
		return fmt.Errorf("could not open database: %w", err)
	}
	a.engine, err = a.newEngine(rc, a.store, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	return a.engine.Init(cmdContext(cmd))
}

// newEngine wires an engine to store. Notices are printed on out and, in
// verbose mode, logged as well.
func (a *app) newEngine(rc registry.Config, store *db.Store, out io.Writer) (*registry.Engine, error) {
	dir := notify.NewDirectory(a.cfg.Names())
	a.dir = dir
	sinks := notify.Multi{notify.NewWriterNotifier(out, dir)}
	if a.verbose {
		sinks = append(sinks, notify.LogNotifier{})
	}
	return registry.New(rc, registry.FromDB(store),
		registry.WithNotifier(sinks),
		registry.WithDirectory(dir),
	)
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			logging.Warnf("closing database: %v", err)
		}
		a.store = nil
	}
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func compositeVersion() string {
	v, c, d := resolveBuildVersion(nil)
	out := v
	if c != "" && c != "dev" {
		out += " (" + c + ")"
	}
	if d != "" {
		out += " built: " + d
	}
	return out
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		// No config or database is needed to print the version.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			v, c, d := resolveBuildVersion(nil)
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "version: %s\n", v)
			_, _ = fmt.Fprintf(out, "commit: %s\n", c)
			if d != "" {
				_, _ = fmt.Fprintf(out, "built: %s\n", d)
			}
		},
	}
}

// resolveBuildVersion computes the best-available version, commit and build
// date for the running binary. If info is nil it is read from the runtime.
func resolveBuildVersion(info *debug.BuildInfo) (versionOut, commitOut, dateOut string) {
	resolvedVersion := version
	resolvedCommit := gitCommit
	resolvedDate := buildDate

	if info == nil {
		if local, ok := debug.ReadBuildInfo(); ok {
			info = local
		}
	}

	if info != nil {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			resolvedVersion = info.Main.Version
		}
		if resolvedVersion == "dev" || resolvedVersion == "(devel)" {
			for _, dep := range info.Deps {
				if dep.Path == "github.com/toeirei/flatkeeper" && dep.Version != "" {
					resolvedVersion = dep.Version
					break
				}
			}
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if s.Value != "" {
					resolvedCommit = s.Value
				}
			case "vcs.time":
				if s.Value != "" {
					resolvedDate = s.Value
				}
			}
		}
	}

	if resolvedVersion == "dev" && gitCommit != "dev" && gitCommit != "" {
		resolvedVersion = gitCommit
	}
	return resolvedVersion, resolvedCommit, resolvedDate
}
