package commands

import (
	"fmt"
	"strings"

	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	threatsLevel string
	threatsLimit int
)

func init() {
	threatsCmd.Flags().StringVar(&threatsLevel, "level", "MEDIUM", "Minimum threat level.")
	threatsCmd.Flags().IntVar(&threatsLimit, "limit", 20, "Number of threats to list.")
	rootCmd.AddCommand(threatsCmd)
}

var threatsCmd = &cobra.Command{
	Use:   "threats [--level <level>] [--limit <n>]",
	Short: "Lists recent evidence packages from a running dashboard.",
	Run: func(cmd *cobra.Command, args []string) {
		client := dashboardClient(readConfig())
		packages, err := client.ListThreats(cmd.Context(), threatsLevel, threatsLimit)
		if err != nil {
			serviceutil.Fatal("failed to list threats", err)
		}
		if len(packages) == 0 {
			fmt.Println("no threats recorded")
			return
		}

		t := newTable()
		t.AppendHeader(table.Row{"Captured", "Level", "Score", "Platform", "Title", "Species", "URL"})
		for _, pkg := range packages {
			t.AppendRow(table.Row{
				pkg.CapturedAt.Format("2006-01-02 15:04"),
				pkg.Assessment.Level,
				pkg.Assessment.Score,
				pkg.Listing.Platform,
				truncate(pkg.Listing.Title, 48),
				strings.Join(pkg.Assessment.Species, ", "),
				pkg.Listing.URL,
			})
		}
		t.Render()
	},
}
