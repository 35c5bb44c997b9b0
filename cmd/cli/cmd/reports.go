// Package cmd - saved report commands
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"recipe-cost/adapters/storage"
	"recipe-cost/core/output"
	"recipe-cost/core/types"
	"recipe-cost/internal/config"
)

// reportsCmd groups saved-report subcommands
var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Manage saved cost reports",
}

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved cost reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := storage.Open(config.Get().Reports.DatabasePath)
		if err != nil {
			return err
		}
		defer store.Close()

		saved, err := store.List(context.Background())
		if err != nil {
			return err
		}
		if len(saved) == 0 {
			fmt.Println("No saved reports.")
			return nil
		}

		for _, r := range saved {
			fmt.Printf("%s  %-30s  recipe=%s  %s\n",
				r.ID, r.Name, r.RecipeID, r.CreatedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var reportsShowCmd = &cobra.Command{
	Use:   "show <report-id>",
	Short: "Show a saved cost report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		store, err := storage.Open(cfg.Reports.DatabasePath)
		if err != nil {
			return err
		}
		defer store.Close()

		saved, err := store.Get(context.Background(), types.SavedReportID(args[0]))
		if err != nil {
			return err
		}

		formatter, err := output.New(output.Format(cfg.Output.DefaultFormat), cfg.Output.ShowBreakdown)
		if err != nil {
			return err
		}
		fmt.Printf("Saved report %q (%s)\n\n", saved.Name, saved.CreatedAt.Format("2006-01-02 15:04"))
		return formatter.Render(os.Stdout, saved.Report)
	},
}

func init() {
	reportsCmd.AddCommand(reportsListCmd)
	reportsCmd.AddCommand(reportsShowCmd)
}
