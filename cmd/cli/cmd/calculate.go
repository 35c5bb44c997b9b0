// Package cmd - calculate command
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"recipe-cost/adapters/catalog"
	"recipe-cost/adapters/storage"
	"recipe-cost/core/engine"
	"recipe-cost/core/money"
	"recipe-cost/core/output"
	"recipe-cost/core/types"
	"recipe-cost/internal/config"
	"recipe-cost/internal/logging"
)

var (
	outputFormat   string
	laborCost      float64
	overheadCost   float64
	packagingCost  float64
	targetFoodCost float64
	sellingPrice   float64
	saveAs         string
)

// calculateCmd represents the calculate command
var calculateCmd = &cobra.Command{
	Use:   "calculate <recipe-id>",
	Short: "Calculate the cost of a recipe",
	Long: `Roll up the ingredient cost of a recipe, including nested
sub-recipes, and price it with the given overrides.

Examples:
  recipe-cost calculate pizza-margherita
  recipe-cost calculate pizza-margherita --labor 1.00 --overhead 0.50 --packaging 0.25
  recipe-cost calculate pizza-margherita --selling-price 34.50 --format json
  recipe-cost calculate pizza-margherita --save "menu review aug"`,
	Args: cobra.ExactArgs(1),
	RunE: runCalculate,
}

func init() {
	calculateCmd.Flags().StringVarP(&outputFormat, "format", "f", "", "output format (cli, json)")
	calculateCmd.Flags().Float64Var(&laborCost, "labor", 0, "labor cost")
	calculateCmd.Flags().Float64Var(&overheadCost, "overhead", 0, "overhead cost")
	calculateCmd.Flags().Float64Var(&packagingCost, "packaging", 0, "packaging cost")
	calculateCmd.Flags().Float64Var(&targetFoodCost, "target-food-cost", 0, "target food-cost percentage (default from config)")
	calculateCmd.Flags().Float64Var(&sellingPrice, "selling-price", 0, "actual selling price, for profit calculation")
	calculateCmd.Flags().StringVar(&saveAs, "save", "", "persist the report under this name")
}

func runCalculate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := config.Get()
	currency := cfg.Pricing.Currency

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("load catalog %s: %w", cfg.Catalog.Path, err)
	}
	logging.Info("catalog loaded",
		zap.Int("ingredients", cat.Ingredients()),
		zap.Int("recipes", cat.Recipes()))

	eng := engine.New(cat, cat, currency)
	cat.OnPriceChange(eng.Invalidate)

	target := targetFoodCost
	if target == 0 {
		target = cfg.Pricing.DefaultTargetFoodCostPercent
	}

	req := &types.CostCalculationRequest{
		RecipeID:              types.RecipeID(args[0]),
		LaborCost:             money.FromFloat(laborCost, currency),
		OverheadCost:          money.FromFloat(overheadCost, currency),
		PackagingCost:         money.FromFloat(packagingCost, currency),
		TargetFoodCostPercent: decimal.NewFromFloat(target),
	}
	if sellingPrice > 0 {
		actual := money.FromFloat(sellingPrice, currency)
		req.ActualSellingPrice = &actual
	}

	report, err := eng.CalculateCost(ctx, req)
	if err != nil {
		return err
	}

	format := output.Format(outputFormat)
	if outputFormat == "" {
		format = output.Format(cfg.Output.DefaultFormat)
	}
	formatter, err := output.New(format, cfg.Output.ShowBreakdown)
	if err != nil {
		return err
	}
	if err := formatter.Render(os.Stdout, report); err != nil {
		return err
	}

	if saveAs != "" {
		store, err := storage.Open(cfg.Reports.DatabasePath)
		if err != nil {
			return err
		}
		defer store.Close()

		id, err := store.SaveReport(ctx, report, saveAs)
		if err != nil {
			return err
		}
		fmt.Printf("\nSaved report %q (%s)\n", saveAs, id)
	}

	return nil
}
