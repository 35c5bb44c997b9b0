package types

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"recipe-cost/core/money"
	"recipe-cost/core/units"
)

// CostCalculationRequest names a root recipe plus override costs.
// Transient, created per call.
type CostCalculationRequest struct {
	RecipeID RecipeID

	LaborCost     money.Money
	OverheadCost  money.Money
	PackagingCost money.Money

	// TargetFoodCostPercent is the fraction of selling price the
	// ingredient cost should represent (0, 100]
	TargetFoodCostPercent decimal.Decimal

	// ActualSellingPrice, when set, is used for profit calculation
	// instead of the suggested price
	ActualSellingPrice *money.Money
}

// Validate checks the request shape. The target percentage bound is
// enforced by the pricing calculator, which owns that failure mode.
func (r *CostCalculationRequest) Validate() error {
	if r.RecipeID == "" {
		return fmt.Errorf("request has no recipe id")
	}
	if r.LaborCost.IsNegative() || r.OverheadCost.IsNegative() || r.PackagingCost.IsNegative() {
		return fmt.Errorf("request costs must be >= 0")
	}
	return nil
}

// ReportLine is one row of a cost report breakdown. A sub-recipe line
// carries its rolled-up cost as a single labeled row.
type ReportLine struct {
	Label       string        `json:"label"`
	Kind        ComponentKind `json:"-"`
	KindName    string        `json:"kind"`
	ComponentID string        `json:"component_id"`

	Quantity decimal.Decimal `json:"quantity"`
	Unit     units.Unit      `json:"unit"`

	// UnitCost is the cost per usage/yield unit of the component
	UnitCost money.Money `json:"unit_cost"`

	// Cost is the full line cost
	Cost money.Money `json:"cost"`
}

// CostReport is the final priced output. Immutable once constructed;
// a saved copy is a point-in-time snapshot, not a live view.
type CostReport struct {
	RecipeID   RecipeID     `json:"recipe_id"`
	RecipeName string       `json:"recipe_name"`
	Status     RecipeStatus `json:"status"`

	YieldQuantity decimal.Decimal `json:"yield_quantity"`
	YieldUnit     units.Unit      `json:"yield_unit"`

	Lines []ReportLine `json:"lines"`

	TotalIngredientCost money.Money `json:"total_ingredient_cost"`
	LaborCost           money.Money `json:"labor_cost"`
	OverheadCost        money.Money `json:"overhead_cost"`
	PackagingCost       money.Money `json:"packaging_cost"`
	TotalCost           money.Money `json:"total_cost"`

	CostPerServing            money.Money `json:"cost_per_serving"`
	CostPerServingWithWastage money.Money `json:"cost_per_serving_with_wastage"`

	WastagePercent        decimal.Decimal `json:"wastage_percent"`
	TargetFoodCostPercent decimal.Decimal `json:"target_food_cost_percent"`

	SuggestedSellingPrice money.Money  `json:"suggested_selling_price"`
	ActualSellingPrice    *money.Money `json:"actual_selling_price,omitempty"`

	Profit              money.Money     `json:"profit"`
	ProfitMarginPercent decimal.Decimal `json:"profit_margin_percent"`

	// Epoch is the price epoch the calculation observed
	Epoch uint64 `json:"epoch"`

	GeneratedAt time.Time `json:"generated_at"`
}

// SavedReportID identifies a persisted cost report snapshot
type SavedReportID string

// ReportSink persists named, timestamped report snapshots.
// Provided by the persistence collaborator.
type ReportSink interface {
	SaveReport(ctx context.Context, report *CostReport, name string) (SavedReportID, error)
}
