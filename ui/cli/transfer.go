// Copyright (c) 2026 ToeiRei
// Flatkeeper - apartment occupancy registry
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/toeirei/flatkeeper/internal/backup"
	"github.com/toeirei/flatkeeper/internal/db"
	"github.com/toeirei/flatkeeper/internal/logging"
	"github.com/toeirei/flatkeeper/internal/registry"
)

func (a *app) backupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup [output-file]",
		Short: "Write a compressed (zstd) JSON backup of the registry (operator)",
		Long: `Dumps every registration, operator and request into a single
Zstandard-compressed JSON file.

If an output file is given, '.zst' is appended when missing. Without one,
'flatkeeper-backup-YYYY-MM-DD.json.zst' is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := backup.DefaultFileName(time.Now())
			if len(args) == 1 {
				out = backup.NormalizeFileName(args[0])
			}
			snap, err := a.engine.Export(cmdContext(cmd), a.actor)
			if err != nil {
				return handle(cmd, err)
			}
			if err := backup.WriteFile(out, snap); err != nil {
				return fmt.Errorf("writing backup: %w", err)
			}
			say(cmd, "cli.backup.done", map[string]any{"Path": out})
			return nil
		},
	}
}

func (a *app) restoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <backup-file.zst>",
		Short: "Replace the registry with a backup (root)",
		Long: `Restores registrations and requests from a backup written by 'backup'.
Existing registrations and requests are deleted first; operators from the
backup are added to the existing ones. The root operator is always kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := backup.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading backup: %w", err)
			}
			res, err := a.engine.Restore(cmdContext(cmd), a.actor, snap)
			if err != nil {
				return handle(cmd, err)
			}
			say(cmd, "cli.restore.done", map[string]any{"Links": res.Links, "Operators": res.Operators, "Requests": res.Requests})
			return nil
		},
	}
}

func (a *app) migrateCmd() *cobra.Command {
	var targetType, targetDsn string
	cmd := &cobra.Command{
		Use:   "migrate --type <db-type> --dsn <target-dsn>",
		Short: "Copy the registry into another database (root)",
		Long: `Exports the configured database and restores the result into the
target database, applying the schema migrations there first.

Example:
  flatkeeper migrate --as 1 --type postgres --dsn "postgres://flatkeeper@localhost/flatkeeper"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if targetType == "" || targetDsn == "" {
				return errors.New("both --type and --dsn are required")
			}
			ctx := cmdContext(cmd)
			snap, err := a.engine.Export(ctx, a.actor)
			if err != nil {
				return handle(cmd, err)
			}

			target, err := db.New(targetType, targetDsn)
			if err != nil {
				return fmt.Errorf("could not open target database: %w", err)
			}
			defer func() {
				if err := target.Close(); err != nil {
					logging.Warnf("closing target database: %v", err)
				}
			}()

			te, err := a.newEngine(a.engine.Config(), target, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if err := te.Init(ctx); err != nil {
				return err
			}
			res, err := te.Restore(ctx, a.actor, snap)
			if err != nil {
				return handle(cmd, err)
			}
			say(cmd, "cli.migrate.done", map[string]any{
				"Links":     res.Links,
				"Operators": res.Operators,
				"Requests":  res.Requests,
				"Type":      targetType,
			})
			return nil
		},
	}
	cmd.Flags().StringVar(&targetType, "type", "", "Target database type (sqlite, postgres, mysql)")
	cmd.Flags().StringVar(&targetDsn, "dsn", "", "Target database connection string")
	return cmd
}

func (a *app) dbCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database administration",
	}

	var skipIntegrity bool
	var timeoutSec int
	maintain := &cobra.Command{
		Use:   "maintain",
		Short: "Run database maintenance (VACUUM/OPTIMIZE) for the configured DB",
		Long:  `Runs engine-specific maintenance tasks (VACUUM, OPTIMIZE TABLE, PRAGMA optimize).`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmdContext(cmd)
			tier, err := a.engine.TierOf(ctx, a.actor)
			if err != nil {
				return handle(cmd, err)
			}
			if !tier.Satisfies(registry.TierOperator) {
				return handle(cmd, &registry.Error{
					Kind:      registry.KindPermission,
					Op:        "db-maintain",
					MessageID: "error.permission",
					Args:      map[string]any{"Tier": registry.TierOperator},
				})
			}
			if timeoutSec > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, time.Duration(timeoutSec)*time.Second)
				defer cancel()
			}
			// The registry connection is released so SQLite can VACUUM.
			a.close()
			if err := db.RunDBMaintenance(ctx, a.cfg.Database.Type, a.cfg.Database.Dsn, skipIntegrity); err != nil {
				return fmt.Errorf("maintenance failed: %w", err)
			}
			say(cmd, "cli.maintain.done", nil)
			return nil
		},
	}
	maintain.Flags().BoolVar(&skipIntegrity, "skip-integrity", false, "Skip integrity_check (SQLite) during maintenance")
	maintain.Flags().IntVar(&timeoutSec, "timeout", 0, "Timeout in seconds for maintenance (0 means no timeout)")

	cmd.AddCommand(maintain)
	return cmd
}
