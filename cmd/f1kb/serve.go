package main

import (
	"github.com/spf13/cobra"

	"github.com/Dencchi/f1-knowledge-base/internal/api"
	"github.com/Dencchi/f1-knowledge-base/internal/health"
	"github.com/Dencchi/f1-knowledge-base/internal/scheduler"
)

var withScheduler bool

func init() {
	serveCmd.Flags().BoolVar(&withScheduler, "scheduler", true, "Run scheduled imports when import.schedule is set")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the JSON API with health checks",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		hc := health.Config{
			ServiceName: cfg.App.Name,
			Version:     Version,
			Store:       cfg.Store.Driver,
			Port:        cfg.Server.HealthPort,
			Logger:      logger,
		}
		if application.DB != nil {
			hc.DB = application.DB
		}
		healthServer := health.NewServer(hc)
		if err := healthServer.Start(ctx); err != nil {
			return err
		}

		if withScheduler && cfg.Import.Schedule != "" {
			importer, err := application.Importer()
			if err != nil {
				return err
			}
			sched := scheduler.NewScheduler(importer, logger)
			if _, err := sched.ScheduleSeasonImport(cfg.Import.Schedule, true); err != nil {
				return err
			}
			if err := sched.Start(); err != nil {
				return err
			}
			defer sched.Stop()
		}

		healthServer.SetReady(true)
		defer healthServer.SetReady(false)

		return api.NewServer(application).ListenAndServe(ctx)
	},
}
