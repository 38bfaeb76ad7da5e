package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/internship-portal/internal/config"
	"github.com/spec-kit/internship-portal/internal/observability"
	"github.com/spec-kit/internship-portal/internal/persistence"
)

type runtimeKey struct{}

// runtime holds what subcommands share once PersistentPreRunE has run.
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
	pg     *persistence.Postgres
}

var rootCmd = &cobra.Command{
	Use:   "portalctl",
	Short: "Operator tooling for the internship portal",
	Long: `portalctl runs database migrations and manages account roles
against the same configuration the API server reads.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger, err := observability.NewLogger(cfg.Logger, cfg.App)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		pg, err := persistence.NewPostgres(cmd.Context(), cfg.Postgres, logger)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		cmd.SetContext(context.WithValue(cmd.Context(), runtimeKey{}, &runtime{cfg: cfg, logger: logger, pg: pg}))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if rt := runtimeFrom(cmd); rt != nil {
			rt.pg.Close()
			_ = rt.logger.Sync()
		}
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(setRoleCmd)
}

func runtimeFrom(cmd *cobra.Command) *runtime {
	rt, _ := cmd.Context().Value(runtimeKey{}).(*runtime)
	return rt
}

// Execute runs the root command.
func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		cancel()
		os.Exit(1)
	}
}
