package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mamadbah2/stocktake/internal/config"
	"github.com/mamadbah2/stocktake/internal/repository"
	"github.com/mamadbah2/stocktake/internal/repository/backend"
	"github.com/mamadbah2/stocktake/internal/service/counting"
	"github.com/mamadbah2/stocktake/internal/service/reporting"
	"github.com/mamadbah2/stocktake/pkg/logger"
)

// app holds the services shared by every subcommand.
type app struct {
	envFile string
	format  string
	verbose bool

	ledger    repository.Ledger
	counting  *counting.Service
	reporting *reporting.Service
	logger    *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "stockctl",
		Short:         "stockctl - record and review daily stock counts",
		Long:          "stockctl submits daily item counts, derives sold quantities and reports summaries against the configured ledger.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.close(cmd.Context())
		},
	}

	cmd.PersistentFlags().StringVar(&a.envFile, "env-file", "", "Load configuration from this .env file")
	cmd.PersistentFlags().StringVar(&a.format, "format", "table", "Output format: table or json")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log progress to stderr")

	cmd.AddCommand(newSubmitCmd(a))
	cmd.AddCommand(newTodayCmd(a))
	cmd.AddCommand(newHistoryCmd(a))
	cmd.AddCommand(newSummaryCmd(a))
	cmd.AddCommand(newDeleteCmd(a))
	cmd.AddCommand(newCheckCmd(a))

	return cmd
}

func (a *app) open(ctx context.Context) error {
	if a.format != "table" && a.format != "json" {
		return fmt.Errorf("invalid format: %s (valid values: table, json)", a.format)
	}

	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}

	a.logger, err = logger.NewCLI(a.verbose)
	if err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	a.ledger, err = backend.Open(ctx, cfg.Store, a.logger)
	if err != nil {
		return err
	}

	loc := cfg.Location()
	a.counting = counting.NewService(a.ledger, loc, a.logger.Named("svc.counting"))
	a.reporting = reporting.NewService(a.ledger, loc, a.logger.Named("svc.reporting"))
	return nil
}

func (a *app) close(ctx context.Context) error {
	if a.logger != nil {
		defer func() { _ = a.logger.Sync() }()
	}
	if a.ledger == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return a.ledger.Close(ctx)
}
