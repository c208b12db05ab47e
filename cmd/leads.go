package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leadscout/internal/leadstore"
	"github.com/sells-group/leadscout/internal/model"
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Inspect stored leads",
}

var (
	leadsMinScore int
	leadsStatus   string
	leadsLimit    int
)

var leadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored leads, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := leadstore.New(cfg.Data.LeadsFile)
		leads, err := store.List(leadstore.Filter{
			MinScore: leadsMinScore,
			Status:   model.LeadStatus(leadsStatus),
			Limit:    leadsLimit,
		})
		if err != nil {
			return eris.Wrap(err, "list leads")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(leads)
	},
}

var leadsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the lead collection",
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := leadstore.New(cfg.Data.LeadsFile).Stats()
		if err != nil {
			return eris.Wrap(err, "stats")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	},
}

var leadsDeleteCmd = &cobra.Command{
	Use:   "delete <lead-id>",
	Short: "Delete a stored lead",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := leadstore.New(cfg.Data.LeadsFile).Delete(args[0]); err != nil {
			return eris.Wrap(err, "delete lead")
		}
		fmt.Printf("deleted %s\n", args[0])
		return nil
	},
}

func init() {
	leadsListCmd.Flags().IntVar(&leadsMinScore, "min-score", 0, "only leads scoring at least this")
	leadsListCmd.Flags().StringVar(&leadsStatus, "status", "", "filter by status (analyzed, scrape_failed, completion_failed)")
	leadsListCmd.Flags().IntVar(&leadsLimit, "limit", 0, "maximum results")

	leadsCmd.AddCommand(leadsListCmd, leadsStatsCmd, leadsDeleteCmd)
	rootCmd.AddCommand(leadsCmd)
}
