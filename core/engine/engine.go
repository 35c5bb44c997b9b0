// Package engine is the entry point of the cost engine. It wires the
// graph builder, cycle detector, rollup evaluator, and pricing
// calculator behind two operations: CalculateCost and Invalidate.
package engine

import (
	"context"
	"errors"
	"sync/atomic"

	"go.uber.org/zap"

	"recipe-cost/core/graph"
	"recipe-cost/core/pricing"
	"recipe-cost/core/rollup"
	"recipe-cost/core/types"
	"recipe-cost/core/units"
	errs "recipe-cost/internal/errors"
	"recipe-cost/internal/logging"
)

// Engine executes cost calculations over records supplied by the
// recipe and ingredient lookups. Calculations run concurrently; the
// shared state is the evaluator's memo cache and the price epoch.
type Engine struct {
	recipes     types.RecipeLookup
	ingredients types.IngredientLookup
	evaluator   *rollup.Evaluator

	// epoch increments on every ingredient price write. Captured once
	// at the start of a calculation so a concurrent price update never
	// mixes old and new prices within one graph.
	epoch atomic.Uint64
}

// New creates an engine over the given lookups
func New(recipes types.RecipeLookup, ingredients types.IngredientLookup, currency string) *Engine {
	return &Engine{
		recipes:     recipes,
		ingredients: ingredients,
		evaluator:   rollup.NewEvaluator(currency),
	}
}

// Epoch returns the current price epoch
func (e *Engine) Epoch() uint64 {
	return e.epoch.Load()
}

// Stats returns evaluator instrumentation counters
func (e *Engine) Stats() rollup.Stats {
	return e.evaluator.Stats()
}

// Invalidate records an ingredient price change. Future calculations
// observe the new price version through the lookup and recompute the
// affected branches lazily; nothing is recomputed eagerly, so a batch
// import of many price changes costs one epoch bump each and no more.
func (e *Engine) Invalidate(id types.IngredientID, newPriceVersion uint64) {
	epoch := e.epoch.Add(1)
	logging.Debug("ingredient price invalidated",
		zap.String("ingredient", string(id)),
		zap.Uint64("price_version", newPriceVersion),
		zap.Uint64("epoch", epoch))
}

// CalculateCost resolves the request's root recipe into a dependency
// graph, validates it, rolls up ingredient costs bottom-up, and prices
// the result. Any failure aborts the whole calculation; no branch is
// ever silently zeroed.
func (e *Engine) CalculateCost(ctx context.Context, req *types.CostCalculationRequest) (*types.CostReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, errs.Input("nil calculation request")
	}
	if err := req.Validate(); err != nil {
		return nil, errs.Wrap(errs.TypeInput, "invalid calculation request", err)
	}

	epoch := e.epoch.Load()

	g, err := graph.Build(req.RecipeID, e.recipes, e.ingredients)
	if err != nil {
		return nil, errs.Wrap(errs.TypeUnresolvedReference, "build dependency graph", err)
	}

	if err := graph.DetectCycle(g); err != nil {
		return nil, errs.Wrap(errs.TypeCircularDependency, "validate dependency graph", err)
	}

	result, err := e.evaluator.Rollup(g, epoch)
	if err != nil {
		return nil, wrapRollupError(err)
	}

	recipe := g.RootRecipe().Recipe
	report, err := pricing.Price(recipe, result, req, epoch)
	if err != nil {
		return nil, wrapPricingError(err)
	}

	logging.Debug("cost calculation complete",
		zap.String("recipe", string(recipe.ID)),
		zap.Int("graph_nodes", g.Size()),
		zap.String("total_cost", report.TotalCost.String()),
		zap.Uint64("epoch", epoch))

	return report, nil
}

// wrapRollupError classifies an evaluation failure into the engine's
// error taxonomy while preserving the typed cause for errors.As.
func wrapRollupError(err error) error {
	var unresolved *graph.UnresolvedReferenceError
	var incompatible *units.IncompatibleUnitsError
	var unknown *units.UnknownUnitError

	switch {
	case errors.As(err, &unresolved):
		return errs.Wrap(errs.TypeUnresolvedReference, "rollup evaluation", err)
	case errors.As(err, &incompatible), errors.As(err, &unknown):
		return errs.Wrap(errs.TypeIncompatibleUnits, "rollup evaluation", err)
	default:
		return errs.Wrap(errs.TypeInternal, "rollup evaluation", err)
	}
}

func wrapPricingError(err error) error {
	var target *pricing.InvalidTargetPercentageError
	if errors.As(err, &target) {
		return errs.Wrap(errs.TypeInvalidTarget, "price calculation", err)
	}
	return errs.Wrap(errs.TypeInput, "price calculation", err)
}
