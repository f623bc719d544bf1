package commands

import (
	"fmt"

	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var alertsLimit int

func init() {
	alertsCmd.Flags().IntVar(&alertsLimit, "limit", 20, "Number of alerts to list.")
	alertsCmd.AddCommand(alertsAckCmd)
	rootCmd.AddCommand(alertsCmd)
}

var alertsCmd = &cobra.Command{
	Use:   "alerts [--limit <n>]",
	Short: "Lists alerts raised by a running monitor.",
	Run: func(cmd *cobra.Command, args []string) {
		client := dashboardClient(readConfig())
		list, err := client.ListAlerts(cmd.Context(), alertsLimit)
		if err != nil {
			serviceutil.Fatal("failed to list alerts", err)
		}
		if len(list) == 0 {
			fmt.Println("no alerts")
			return
		}

		t := newTable()
		t.AppendHeader(table.Row{"ID", "Created", "Level", "Score", "Platform", "Title", "Emailed", "Ack"})
		for _, a := range list {
			t.AppendRow(table.Row{
				a.ID,
				a.CreatedAt.Format("2006-01-02 15:04"),
				a.Level,
				a.Score,
				a.Platform,
				truncate(a.Title, 40),
				a.Emailed,
				a.Acknowledged,
			})
		}
		t.Render()
	},
}

var alertsAckCmd = &cobra.Command{
	Use:   "ack <id>",
	Short: "Acknowledges an alert.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := dashboardClient(readConfig())
		alert, err := client.AcknowledgeAlert(cmd.Context(), args[0])
		if err != nil {
			serviceutil.Fatal("failed to acknowledge alert", err)
		}
		fmt.Printf("acknowledged %s (%s)\n", alert.ID, alert.Title)
	},
}
