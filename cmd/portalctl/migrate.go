package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/internship-portal/internal/persistence"
)

var migrationsDir string

var migrateCmd = &cobra.Command{
	Use:     "migrate",
	Short:   "Apply SQL migrations",
	Example: `  portalctl migrate --dir migrations`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt := runtimeFrom(cmd)
		dir := migrationsDir
		if dir == "" {
			dir = rt.cfg.Postgres.MigrationsDir
		}
		if err := persistence.RunMigrations(cmd.Context(), rt.pg.PoolHandle(), dir, rt.logger); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "migrations from %s applied\n", dir)
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrationsDir, "dir", "", "migrations directory (defaults to POSTGRES_MIGRATIONS_DIR)")
}
