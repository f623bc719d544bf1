package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/internal/wildguard"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/serviceutil"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/threat"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	scanPlatform string
	scanKeyword  string
	scanLimit    int
	scanRemote   bool
)

func init() {
	scanCmd.Flags().StringVar(&scanPlatform, "platform", "", "Only scan this platform.")
	scanCmd.Flags().StringVar(&scanKeyword, "keyword", "", "Search this keyword instead of the configured ones.")
	scanCmd.Flags().IntVar(&scanLimit, "limit", 25, "Number of threats to print.")
	scanCmd.Flags().BoolVar(&scanRemote, "remote", false, "Ask the running dashboard to start a scan instead.")
	rootCmd.AddCommand(scanCmd)
}

var scanCmd = &cobra.Command{
	Use:   "scan [--platform <name>] [--keyword <keyword>] [--remote]",
	Short: "Runs a single scan cycle and prints what it found.",
	Run: func(cmd *cobra.Command, args []string) {
		if scanRemote {
			res, err := dashboardClient(readConfig()).TriggerScan(cmd.Context(), false)
			if err != nil {
				serviceutil.Fatal("failed to trigger scan", err)
			}
			fmt.Println("scan started:", res.Started)
			return
		}

		cfg, err := readConfig().Narrow(scanPlatform, scanKeyword)
		if err != nil {
			serviceutil.Fatal("invalid scan target", err)
		}

		opts := wildguard.Options{}
		if verbose {
			opts.DumpDir = ".dev/resty/marketplace"
		}
		app, err := wildguard.Build(cfg, opts)
		if err != nil {
			serviceutil.Fatal("failed to initialize monitor", err)
		}
		defer app.Close()

		started := time.Now()
		run, err := app.Scan(cmd.Context())
		if err != nil {
			slog.Warn("scan finished with errors", "err", err)
		}

		summary := newTable()
		summary.AppendHeader(table.Row{"Scan", "Listings", "Threats", "Alerts", "Errors", "Duration"})
		summary.AppendRow(table.Row{
			run.ID, run.Listings, run.Threats, run.Alerts, len(run.Errors),
			time.Since(started).Round(time.Millisecond),
		})
		summary.Render()

		printThreats(cmd.Context(), app, started)
	},
}

func printThreats(ctx context.Context, app *wildguard.App, since time.Time) {
	packages, err := app.Store.Recent(ctx, threat.LevelLow, scanLimit)
	if err != nil {
		serviceutil.Fatal("failed to read evidence", err)
	}

	t := newTable()
	t.AppendHeader(table.Row{"Level", "Score", "Platform", "Title", "Indicators", "URL"})
	rows := 0
	for _, pkg := range packages {
		if pkg.CapturedAt.Before(since.Truncate(time.Second)) {
			continue
		}
		t.AppendRow(table.Row{
			pkg.Assessment.Level,
			pkg.Assessment.Score,
			pkg.Listing.Platform,
			truncate(pkg.Listing.Title, 48),
			len(pkg.Assessment.Indicators),
			pkg.Listing.URL,
		})
		rows++
	}
	if rows == 0 {
		fmt.Println("no threats found")
		return
	}
	t.Render()
}
