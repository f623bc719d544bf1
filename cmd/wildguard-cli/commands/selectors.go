package commands

import (
	"fmt"
	"os"

	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/internal/wildguard"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/scrapers/marketplace"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	selectorsPlatform string
	selectorsKeyword  string
)

func init() {
	selectorsCheckCmd.Flags().StringVar(&selectorsPlatform, "platform", "", "Only check this platform.")
	selectorsCheckCmd.Flags().StringVar(&selectorsKeyword, "keyword", "ivory", "Keyword to search for.")
	selectorsCmd.AddCommand(selectorsCheckCmd)
	rootCmd.AddCommand(selectorsCmd)
}

var selectorsCmd = &cobra.Command{
	Use:   "selectors",
	Short: "Commands for maintaining platform selectors.",
}

var selectorsCheckCmd = &cobra.Command{
	Use:   "check [--platform <name>] [--keyword <keyword>]",
	Short: "Fetches a search page per platform and reports which selectors still match.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := readConfig().Narrow(selectorsPlatform, "")
		if err != nil {
			serviceutil.Fatal("invalid platform", err)
		}
		fetchers, browser, err := wildguard.NewFetchers(cfg, wildguard.Options{})
		if err != nil {
			serviceutil.Fatal("failed to create fetchers", err)
		}

		summary := newTable()
		summary.AppendHeader(table.Row{"Platform", "Status", "Cards", "Listings", "Detail"})
		failed := false
		for _, platform := range cfg.PlatformConfigs() {
			if platform.Disabled {
				continue
			}
			fetcher, err := fetchers.For(platform)
			if err != nil {
				serviceutil.Fatal("no fetcher", err)
			}

			diagnosis := marketplace.Diagnose(cmd.Context(), platform, fetcher, selectorsKeyword)
			status := "PASS"
			detail := ""
			switch {
			case diagnosis.Blocked:
				status, detail = "BLOCKED", diagnosis.Error
			case diagnosis.Empty:
				status, detail = "EMPTY", "no results for keyword"
			case !diagnosis.Healthy():
				status, detail = "FAIL", diagnosis.Error
			}
			if status != "PASS" {
				failed = true
			}
			summary.AppendRow(table.Row{platform.Name, status, diagnosis.Cards, diagnosis.Listings, truncate(detail, 60)})

			if verbose || status == "FAIL" {
				printProbes(diagnosis)
			}
		}
		summary.Render()
		browser.Close()

		if failed {
			os.Exit(1)
		}
	},
}

func printProbes(d marketplace.Diagnosis) {
	fmt.Printf("\n%s  %s\n", d.Platform, d.Url)
	t := newTable()
	t.AppendHeader(table.Row{"Field", "Selector", "Matches", "Used", "Sample"})
	for _, group := range d.Groups {
		for i, probe := range group.Probes {
			used := ""
			if i == group.Winner {
				used = "*"
			}
			t.AppendRow(table.Row{group.Field, probe.Selector, probe.Matches, used, truncate(probe.Sample, 40)})
		}
		t.AppendSeparator()
	}
	t.Render()
}
