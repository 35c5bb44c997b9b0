// Package rollup computes the bottom-up cost of every recipe reachable
// from a root, memoized and shared across parents so each distinct
// node is evaluated once per price epoch.
package rollup

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"recipe-cost/core/money"
	"recipe-cost/core/types"
	"recipe-cost/core/units"
)

// LineCost is the evaluated cost of one recipe line
type LineCost struct {
	Label       string
	Kind        types.ComponentKind
	ComponentID string

	Quantity decimal.Decimal
	Unit     units.Unit

	// UnitCost is the cost per usage unit (ingredient) or per yield
	// unit (sub-recipe), full precision
	UnitCost money.Money

	// Cost is the full line cost, full precision
	Cost money.Money
}

// Result is the memoized cost rollup of one recipe. Owned exclusively
// by the evaluator's cache; callers receive it read-only and must not
// mutate it.
type Result struct {
	RecipeID types.RecipeID

	// TotalCost is the ingredient cost for the full yield
	TotalCost money.Money

	// CostPerYieldUnit is TotalCost / yield quantity, unrounded so a
	// parent recipe consumes it at full precision
	CostPerYieldUnit money.Money

	Lines []LineCost

	// LeafVersions records every transitive leaf ingredient id and the
	// price version observed at computation time. The result is stale
	// when any current version differs.
	LeafVersions map[types.IngredientID]uint64

	// Fingerprint is a stable digest of LeafVersions
	Fingerprint string

	// Epoch is the price epoch the computation ran under
	Epoch uint64

	ComputedAt time.Time
}

// fingerprint digests a leaf version set into a short stable string
func fingerprint(versions map[types.IngredientID]uint64) string {
	parts := make([]string, 0, len(versions))
	money.RangeMapSorted(versions, func(id types.IngredientID, v uint64) bool {
		parts = append(parts, fmt.Sprintf("%s=%d", id, v))
		return true
	})
	sum := sha256.Sum256([]byte(strings.Join(parts, ";")))
	return hex.EncodeToString(sum[:8])
}
