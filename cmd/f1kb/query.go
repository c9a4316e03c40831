package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Dencchi/f1-knowledge-base/internal/models"
	"github.com/Dencchi/f1-knowledge-base/internal/standings"
)

var (
	year      int
	round     int
	sortBy    string
	descOrder bool
)

func init() {
	for _, c := range []*cobra.Command{standingsCmd, championCmd, lineupCmd, driverCmd, calendarCmd, gridCmd} {
		c.Flags().IntVarP(&year, "year", "y", 0, "Season (defaults to the current year)")
	}
	lineupCmd.Flags().IntVarP(&round, "round", "r", 0, "Show the lineup as of this round")
	driverCmd.Flags().BoolVar(&descOrder, "desc", false, "List races newest first")
	gridCmd.Flags().StringVar(&sortBy, "sort", "name", "Order by name, team or number")
}

var standingsCmd = &cobra.Command{
	Use:   "standings [drivers|constructors]",
	Short: "Print the championship table of a season",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kindArg := "drivers"
		if len(args) == 1 {
			kindArg = args[0]
		}
		kind, err := standings.ParseKind(kindArg)
		if err != nil {
			return err
		}

		season := yearOrCurrent(year)
		rows, err := application.Builder.SeasonStandings(cmd.Context(), kind, season)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(rows)
		}
		if len(rows) == 0 {
			fmt.Printf("No results for %d\n", season)
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "POS\tNAME\tTEAM\tPOINTS\tWINS\tPODIUMS")
		for _, r := range rows {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\n", r.Position, r.Name, r.TeamName, formatPoints(r.Points), r.Wins, r.Podiums)
		}
		return w.Flush()
	},
}

var championCmd = &cobra.Command{
	Use:   "champion",
	Short: "Print the drivers' and constructors' champion of a season",
	RunE: func(cmd *cobra.Command, args []string) error {
		season := yearOrCurrent(year)
		driver, err := application.Champions.ChampionOf(cmd.Context(), season)
		if err != nil {
			return err
		}
		team, err := application.Champions.ConstructorChampionOf(cmd.Context(), season)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(map[string]interface{}{"year": season, "driver": driver, "constructor": team})
		}
		if driver == nil {
			fmt.Printf("No results for %d\n", season)
			return nil
		}
		fmt.Printf("%d drivers' champion: %s (%s pts)\n", season, driver.Driver.FullName(), formatPoints(driver.Points))
		if team != nil {
			fmt.Printf("%d constructors' champion: %s (%s pts)\n", season, team.Constructor.Name, formatPoints(team.Points))
		}
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Fuzzy search drivers, teams, circuits and races",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := application.Search.Search(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(res)
		}

		if res.SmartAnswer != nil {
			fmt.Printf("%s: %s\n\n", res.SmartAnswer.Title, res.SmartAnswer.Description)
		}
		if res.Total() == 0 {
			fmt.Println("Nothing found")
			return nil
		}
		for _, d := range res.Drivers {
			fmt.Printf("driver   %-20s %s\n", d.Ref, d.FullName())
		}
		for _, t := range res.Teams {
			fmt.Printf("team     %-20s %s\n", t.Ref, t.Name)
		}
		for _, c := range res.Circuits {
			fmt.Printf("circuit  %-20s %s, %s\n", c.Ref, c.Name, c.Country)
		}
		for _, r := range res.Races {
			fmt.Printf("race     %-20s %s\n", r.Key().String(), r.Name)
		}
		return nil
	},
}

var lineupCmd = &cobra.Command{
	Use:   "lineup <team>",
	Short: "Print a team's drivers as of the latest or a given round",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		season := yearOrCurrent(year)
		var asOf *models.RaceKey
		if round > 0 {
			asOf = &models.RaceKey{Year: season, Round: round}
		}

		lineup, err := application.Lineups.CurrentLineup(cmd.Context(), args[0], season, asOf)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(lineup)
		}

		if lineup.ReferenceRace != nil {
			fmt.Printf("%s %d as of %s\n", args[0], season, lineup.ReferenceRace.Name)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "DRIVER\tRACES\tPOINTS\tWINS\tPODIUMS\tRESERVE")
		for _, d := range lineup.Drivers {
			fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%d\t%t\n", d.Driver.FullName(), d.Races, formatPoints(d.Points), d.Wins, d.Podiums, d.IsReserve)
		}
		return w.Flush()
	},
}

var driverCmd = &cobra.Command{
	Use:   "driver <ref>",
	Short: "Print a driver profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := application.Profiles.Driver(cmd.Context(), args[0], year, descOrder)
		if err != nil {
			return err
		}
		return printJSON(profile)
	},
}

var gridCmd = &cobra.Command{
	Use:   "grid",
	Short: "List the drivers of a season with their current team",
	RunE: func(cmd *cobra.Command, args []string) error {
		season := yearOrCurrent(year)
		drivers, err := application.Lineups.SeasonDrivers(cmd.Context(), season, sortBy)
		if err != nil {
			return err
		}
		return printJSON(drivers)
	},
}

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Print the race calendar of a season",
	RunE: func(cmd *cobra.Command, args []string) error {
		season := yearOrCurrent(year)
		entries, err := application.Profiles.Calendar(cmd.Context(), season)
		if err != nil {
			return err
		}
		return printJSON(entries)
	},
}

func formatPoints(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
