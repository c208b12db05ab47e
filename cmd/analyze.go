package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var analyzeNewEntry bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze <url>",
	Short: "Scrape and qualify a single lead",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		lead, err := e.analyzer.Analyze(cmd.Context(), args[0], analyzeNewEntry)
		if err != nil {
			return eris.Wrap(err, "analyze")
		}

		zap.L().Info("analysis complete",
			zap.String("id", lead.ID),
			zap.String("status", string(lead.Status)))

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(lead)
	},
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeNewEntry, "new-entry", false, "keep earlier analyses of this URL as separate records")
	rootCmd.AddCommand(analyzeCmd)
}
