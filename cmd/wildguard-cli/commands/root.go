package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/internal/wildguard"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/configutil"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/serviceutil"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/telemetry"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/services/dashboard"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "wildguard-cli",
	Short: "wildguard-cli runs one-off scans and inspects the wildlife marketplace monitor.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "wildguard.json5", "Path to the configuration file.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func readConfig() wildguard.Config {
	cfg, err := configutil.ReadConfig[wildguard.Config](configPath)
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	return cfg
}

func dashboardClient(cfg wildguard.Config) dashboard.Client {
	return dashboard.NewClient(cfg.DashboardUrl(), cfg.Dashboard.AccessToken)
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

func truncate(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n-1]) + "…"
}
