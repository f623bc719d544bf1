package commands

import (
	"fmt"

	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Prints monitor and evidence statistics from a running dashboard.",
	Run: func(cmd *cobra.Command, args []string) {
		stats, err := dashboardClient(readConfig()).GetStats(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to get stats", err)
		}

		next := "-"
		if !stats.Monitor.NextRun.IsZero() {
			next = stats.Monitor.NextRun.Format("2006-01-02 15:04")
		}
		fmt.Printf("schedule %s, next run %s, %d cycles, %d pending alerts\n",
			stats.Monitor.Schedule, next, stats.Monitor.Cycles, stats.PendingAlerts)

		levels := newTable()
		levels.AppendHeader(table.Row{"Listings", "Evidence", "LOW", "MEDIUM", "HIGH", "CRITICAL"})
		levels.AppendRow(table.Row{
			stats.Stats.Listings,
			stats.Stats.Evidence,
			stats.Stats.ByLevel["LOW"],
			stats.Stats.ByLevel["MEDIUM"],
			stats.Stats.ByLevel["HIGH"],
			stats.Stats.ByLevel["CRITICAL"],
		})
		levels.Render()

		platforms := newTable()
		platforms.AppendHeader(table.Row{"Platform", "Listings", "Evidence"})
		for _, p := range stats.Platforms {
			platforms.AppendRow(table.Row{p.Platform, p.Listings, p.Evidence})
		}
		platforms.Render()
	},
}
