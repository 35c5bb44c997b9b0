// Package pricing combines a rolled-up ingredient cost with labor,
// overhead, packaging, wastage, and target-margin inputs to produce a
// priced cost report. Monetary outputs are rounded to 2 decimal places
// here and only here; rollup inputs arrive at full precision.
package pricing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"recipe-cost/core/money"
	"recipe-cost/core/rollup"
	"recipe-cost/core/types"
)

// InvalidTargetPercentageError reports a target food-cost percentage
// outside (0, 100]
type InvalidTargetPercentageError struct {
	Value decimal.Decimal
}

func (e *InvalidTargetPercentageError) Error() string {
	return fmt.Sprintf("target food-cost percentage must be in (0, 100], got %s", e.Value)
}

// InvalidWastageError reports a wastage percentage outside [0, 100)
type InvalidWastageError struct {
	Value decimal.Decimal
}

func (e *InvalidWastageError) Error() string {
	return fmt.Sprintf("wastage percentage must be in [0, 100), got %s", e.Value)
}

var hundred = decimal.NewFromInt(100)

// Price produces the final cost report for a recipe from its rollup
// result and the caller's override costs.
//
//	costPerServingWithWastage = costPerServing / (1 - wastage/100)
//	totalCost = costPerServingWithWastage*yieldQty + labor + overhead + packaging
//	suggestedSellingPrice = totalCost / (target/100)
func Price(recipe *types.Recipe, result *rollup.Result, req *types.CostCalculationRequest, epoch uint64) (*types.CostReport, error) {
	target := req.TargetFoodCostPercent
	if !target.IsPositive() || target.GreaterThan(hundred) {
		return nil, &InvalidTargetPercentageError{Value: target}
	}

	wastage := recipe.WastagePercent
	if wastage.IsNegative() || wastage.GreaterThanOrEqual(hundred) {
		return nil, &InvalidWastageError{Value: wastage}
	}

	costPerServing := result.CostPerYieldUnit
	currency := result.TotalCost.Currency()

	labor := orZero(req.LaborCost, currency)
	overhead := orZero(req.OverheadCost, currency)
	packaging := orZero(req.PackagingCost, currency)

	// A 10% wastage means one unit in ten is lost, so the usable-unit
	// cost scales by 1/(1-0.10).
	retained := decimal.NewFromInt(1).Sub(wastage.DivRound(hundred, money.DivisionScale))
	costWithWastage := costPerServing.Div(retained)

	totalCost := costWithWastage.Mul(recipe.Yield.Quantity).
		Add(labor).
		Add(overhead).
		Add(packaging)

	suggested := totalCost.Div(target.DivRound(hundred, money.DivisionScale))

	sellingPrice := suggested
	if req.ActualSellingPrice != nil {
		sellingPrice = orZero(*req.ActualSellingPrice, currency)
	}
	profit := sellingPrice.Sub(totalCost)

	marginPercent := decimal.Zero
	if !sellingPrice.IsZero() {
		marginPercent = profit.Amount().DivRound(sellingPrice.Amount(), money.DivisionScale).Mul(hundred)
	}

	report := &types.CostReport{
		RecipeID:   recipe.ID,
		RecipeName: recipe.Name,
		Status:     recipe.Status,

		YieldQuantity: recipe.Yield.Quantity,
		YieldUnit:     recipe.Yield.Unit,

		Lines: reportLines(result),

		TotalIngredientCost: result.TotalCost.RoundCurrency(),
		LaborCost:           labor.RoundCurrency(),
		OverheadCost:        overhead.RoundCurrency(),
		PackagingCost:       packaging.RoundCurrency(),
		TotalCost:           totalCost.RoundCurrency(),

		CostPerServing:            costPerServing.RoundCurrency(),
		CostPerServingWithWastage: costWithWastage.RoundCurrency(),

		WastagePercent:        money.RoundPercent(wastage),
		TargetFoodCostPercent: money.RoundPercent(target),

		SuggestedSellingPrice: suggested.RoundCurrency(),

		Profit:              profit.RoundCurrency(),
		ProfitMarginPercent: money.RoundPercent(marginPercent),

		Epoch:       epoch,
		GeneratedAt: time.Now().UTC(),
	}

	if req.ActualSellingPrice != nil {
		actual := sellingPrice.RoundCurrency()
		report.ActualSellingPrice = &actual
	}

	return report, nil
}

// orZero maps a zero-value request cost, which carries no currency,
// to zero in the calculation currency.
func orZero(m money.Money, currency string) money.Money {
	if m.Currency() == "" {
		return money.Zero(currency)
	}
	return m
}

// reportLines shapes the rollup breakdown for presentation, rounding
// each line at this boundary. Sub-recipe contributions stay as one
// labeled line rather than being re-flattened to leaf ingredients.
func reportLines(result *rollup.Result) []types.ReportLine {
	lines := make([]types.ReportLine, 0, len(result.Lines))
	for _, lc := range result.Lines {
		lines = append(lines, types.ReportLine{
			Label:       lc.Label,
			Kind:        lc.Kind,
			KindName:    lc.Kind.String(),
			ComponentID: lc.ComponentID,
			Quantity:    lc.Quantity,
			Unit:        lc.Unit,
			UnitCost:    lc.UnitCost.RoundCurrency(),
			Cost:        lc.Cost.RoundCurrency(),
		})
	}
	return lines
}
