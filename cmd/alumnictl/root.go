package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	appServices "github.com/yigit/alumnidesk/internal/app/services"
	"github.com/yigit/alumnidesk/internal/bootstrap"
	"github.com/yigit/alumnidesk/internal/config"
)

// app is what every subcommand gets once the backends are open
type app struct {
	cfg    *config.Config
	infra  *bootstrap.Infrastructure
	logger zerolog.Logger
}

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "alumnictl",
		Short:         "Maintenance commands for the alumni desk",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yaml (defaults to CONFIG_PATH or configs/config.yaml)")

	open := func(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
		cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(configPath)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		infra, err := bootstrap.OpenInfrastructure(ctx, cfg, nil, lgr)
		if err != nil {
			return fmt.Errorf("failed to open backends: %w", err)
		}
		defer func() {
			if err := infra.Close(context.Background()); err != nil {
				lgr.Warn().Err(err).Msg("Failed to close backends")
			}
		}()
		return fn(ctx, &app{cfg: cfg, infra: infra, logger: lgr})
	}

	root.AddCommand(
		newBackfillCommand(open),
		newExportCommand(open),
		newRosterCommand(open),
	)
	return root
}

type openFunc func(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error

func (a *app) backfill() appServices.BackfillService {
	return appServices.NewBackfillService(a.infra.Repos, nil, nil, a.infra.Publisher, a.infra.Metrics, a.logger)
}
