package commands

import (
	"fmt"
	"strings"

	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/internal/wildguard"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/language"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/serviceutil"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/threat"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var scoreDescription string

func init() {
	scoreCmd.Flags().StringVar(&scoreDescription, "description", "", "Listing description to score along with the title.")
	rootCmd.AddCommand(scoreCmd)
}

var scoreCmd = &cobra.Command{
	Use:   "score <title> [--description <text>]",
	Short: "Scores a listing title (and description) and explains the result.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		analyzer, err := wildguard.NewAnalyzer(cfg, language.New(cfg.Monitor.Languages))
		if err != nil {
			serviceutil.Fatal("failed to initialize analyzer", err)
		}

		assessment := analyzer.Analyze(cmd.Context(), threat.Listing{
			Title:       strings.Join(args, " "),
			Description: scoreDescription,
		})

		fmt.Printf("score: %d (%s)\n", assessment.Score, assessment.Level)
		if assessment.Reviewed {
			fmt.Printf("rule score: %d, reviewer: %s\n", assessment.RuleScore, assessment.Rationale)
		}
		if len(assessment.Species) > 0 {
			fmt.Printf("species: %s\n", strings.Join(assessment.Species, ", "))
		}
		if len(assessment.Indicators) == 0 {
			return
		}

		t := newTable()
		t.AppendHeader(table.Row{"Kind", "Term", "Matched", "Fuzzy", "Weight"})
		for _, ind := range assessment.Indicators {
			t.AppendRow(table.Row{ind.Kind, ind.Term, ind.Matched, ind.Fuzzy, ind.Weight})
		}
		t.Render()
	},
}
