// Package cmd provides the CLI commands for recipe-cost.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"recipe-cost/internal/config"
	"recipe-cost/internal/logging"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "recipe-cost",
	Short: "Calculate recipe costs and suggested selling prices",
	Long: `recipe-cost rolls up the true cost of a recipe, including nested
sub-recipes, unit conversion, and wastage, and derives a suggested
selling price from a target food-cost percentage.

Examples:
  recipe-cost calculate pizza-margherita --labor 1.00 --target-food-cost 30
  recipe-cost calculate dough-basic --format json
  recipe-cost reports list`,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.recipe-cost.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(calculateCmd)
	rootCmd.AddCommand(reportsCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
}

func initConfig() {
	if cfgFile != "" {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		config.Set(cfg)
	}

	cfg := config.Get()
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("recipe-cost version 0.1.0")
	},
}

// configCmd prints the active configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show active configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		fmt.Printf("catalog:    %s\n", cfg.Catalog.Path)
		fmt.Printf("reports db: %s\n", cfg.Reports.DatabasePath)
		fmt.Printf("currency:   %s\n", cfg.Pricing.Currency)
		return nil
	},
}
