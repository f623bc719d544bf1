package commands

import (
	"os"

	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/internal/wildguard"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/serviceutil"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/services/evidence"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	dbCmd.AddCommand(dbCheckCmd)
	rootCmd.AddCommand(dbCmd)
}

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Commands for the evidence database.",
}

var dbCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Connects to the configured database and reads from every table.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		database, err := wildguard.OpenDB(cfg)
		if err != nil {
			serviceutil.Fatal("failed to open database", err)
		}

		target := cfg.Database.File
		if cfg.Database.IsRemote() {
			target = cfg.Database.Url
		}

		t := newTable()
		t.SetTitle(target)
		t.AppendHeader(table.Row{"Table", "Rows", "Result"})
		failed := false
		for _, check := range evidence.NewStore(database).Check(cmd.Context()) {
			result := "PASS"
			if check.Err != nil {
				result = "FAIL: " + check.Err.Error()
				failed = true
			}
			t.AppendRow(table.Row{check.Table, check.Rows, result})
		}
		t.Render()
		database.Close()

		if failed {
			os.Exit(1)
		}
	},
}
