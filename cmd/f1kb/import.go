package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Dencchi/f1-knowledge-base/internal/scheduler"
	"github.com/Dencchi/f1-knowledge-base/internal/service"
)

var (
	startYear         int
	endYear           int
	skipReferences    bool
	skipResults       bool
	skipChampionships bool
	calendarCron      string
)

func init() {
	importCmd.Flags().IntVar(&startYear, "start", 0, "First season to import (defaults to import.start_year)")
	importCmd.Flags().IntVar(&endYear, "end", 0, "Last season to import, inclusive (defaults to import.end_year)")
	importCmd.Flags().BoolVar(&skipReferences, "skip-references", false, "Do not import circuits, constructors and drivers")
	importCmd.Flags().BoolVar(&skipResults, "skip-results", false, "Import race schedules only")
	importCmd.Flags().BoolVar(&skipChampionships, "skip-championships", false, "Do not recount championship titles")

	scheduleCmd.Flags().StringVar(&calendarCron, "calendar", "0 */6 * * *", "Cron expression for calendar refreshes, empty to disable")
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import seasons from the Jolpica API into the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		importer, err := application.Importer()
		if err != nil {
			return err
		}

		opts := service.ImportOptions{
			StartYear:         cfg.Import.StartYear,
			EndYear:           cfg.Import.EndYear,
			SkipReferences:    skipReferences,
			SkipResults:       skipResults,
			SkipChampionships: skipChampionships,
		}
		if startYear > 0 {
			opts.StartYear = startYear
		}
		if endYear > 0 {
			opts.EndYear = endYear
		}

		m, err := importer.Run(cmd.Context(), opts)
		if m != nil {
			fmt.Println(m.String())
		}
		return err
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the import scheduler in the foreground",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Import.Schedule == "" && calendarCron == "" {
			return fmt.Errorf("no schedule configured")
		}

		importer, err := application.Importer()
		if err != nil {
			return err
		}
		sched := scheduler.NewScheduler(importer, logger)

		if cfg.Import.Schedule != "" {
			if _, err := sched.ScheduleSeasonImport(cfg.Import.Schedule, true); err != nil {
				return err
			}
		}
		if calendarCron != "" {
			if _, err := sched.ScheduleCalendarRefresh(calendarCron); err != nil {
				return err
			}
		}
		if err := sched.Start(); err != nil {
			return err
		}
		defer sched.Stop()

		logger.WithField("next_run", sched.GetNextRun()).Info("Scheduler running")
		<-cmd.Context().Done()
		return nil
	},
}
