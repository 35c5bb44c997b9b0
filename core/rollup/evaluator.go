package rollup

import (
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"recipe-cost/core/graph"
	"recipe-cost/core/money"
	"recipe-cost/core/types"
	"recipe-cost/core/units"
	"recipe-cost/internal/logging"
)

// Stats counts evaluator work for instrumentation
type Stats struct {
	// Evaluations is the number of recipe cost computations performed
	Evaluations uint64

	// CacheHits is the number of rollups served from the memo cache
	CacheHits uint64
}

// Evaluator computes rollup costs over a dependency graph with a
// shared memo cache. Safe for concurrent use: each call works on its
// own graph snapshot, and the cache swaps entries atomically.
type Evaluator struct {
	cache    *Cache
	currency string

	evaluations atomic.Uint64
	cacheHits   atomic.Uint64
}

// NewEvaluator creates an evaluator with an empty cache
func NewEvaluator(currency string) *Evaluator {
	return &Evaluator{cache: NewCache(), currency: currency}
}

// Cache exposes the memo cache (tests and cache maintenance)
func (e *Evaluator) Cache() *Cache {
	return e.cache
}

// Stats returns a snapshot of the instrumentation counters
func (e *Evaluator) Stats() Stats {
	return Stats{
		Evaluations: e.evaluations.Load(),
		CacheHits:   e.cacheHits.Load(),
	}
}

// Rollup computes the cost-per-yield-unit of the root recipe in the
// graph, reusing cached sub-results whose observed price versions still
// match. The graph must already be cycle-checked. Post-order: a recipe
// is costed only after every component it references.
func (e *Evaluator) Rollup(g *graph.Graph, epoch uint64) (*Result, error) {
	root := g.RootRecipe()
	if root == nil || root.Recipe == nil {
		return nil, fmt.Errorf("graph has no root recipe")
	}

	// computed holds this call's results so a sub-recipe shared by two
	// parents inside one graph is evaluated at most once per call even
	// when the shared cache is cold.
	computed := make(map[types.RecipeID]*Result)
	return e.evaluate(g, root, epoch, computed)
}

func (e *Evaluator) evaluate(g *graph.Graph, node *graph.Node, epoch uint64, computed map[types.RecipeID]*Result) (*Result, error) {
	recipe := node.Recipe
	if r, ok := computed[recipe.ID]; ok {
		return r, nil
	}

	// Children first. Sub-results are needed both for line costs and
	// for this recipe's leaf version set.
	leafVersions := make(map[types.IngredientID]uint64)
	for _, edge := range node.Edges {
		child, ok := g.Node(edge.To)
		if !ok {
			return nil, &graph.UnresolvedReferenceError{Component: edge.To, ReferencedBy: recipe.ID}
		}
		switch child.Ref.Kind {
		case types.KindIngredient:
			leafVersions[child.Ingredient.ID] = child.Ingredient.PriceVersion
		case types.KindSubRecipe:
			sub, err := e.evaluate(g, child, epoch, computed)
			if err != nil {
				return nil, err
			}
			for id, v := range sub.LeafVersions {
				leafVersions[id] = v
			}
		}
	}

	// A cached rollup is reusable only when every leaf price version it
	// recorded matches what this calculation observes.
	fp := fingerprint(leafVersions)
	if cached, ok := e.cache.Get(recipe.ID); ok && cached.Fingerprint == fp {
		e.cacheHits.Add(1)
		computed[recipe.ID] = cached
		return cached, nil
	}

	result, err := e.compute(g, node, leafVersions, fp, epoch, computed)
	if err != nil {
		return nil, err
	}

	e.evaluations.Add(1)
	e.cache.Put(result)
	computed[recipe.ID] = result

	logging.Debug("evaluated recipe rollup",
		zap.String("recipe", string(recipe.ID)),
		zap.String("cost_per_yield_unit", result.CostPerYieldUnit.StringRaw()),
		zap.String("fingerprint", fp),
		zap.Uint64("epoch", epoch))

	return result, nil
}

// compute prices every line of one recipe and aggregates the total
func (e *Evaluator) compute(g *graph.Graph, node *graph.Node, leafVersions map[types.IngredientID]uint64, fp string, epoch uint64, computed map[types.RecipeID]*Result) (*Result, error) {
	recipe := node.Recipe
	total := money.Zero(e.currency)
	lines := make([]LineCost, 0, len(node.Edges))

	for _, edge := range node.Edges {
		child, _ := g.Node(edge.To)

		var lc LineCost
		var err error
		switch child.Ref.Kind {
		case types.KindIngredient:
			lc, err = e.ingredientLineCost(recipe, edge.Line, child.Ingredient)
		case types.KindSubRecipe:
			lc, err = e.subRecipeLineCost(recipe, edge.Line, child.Recipe, computed[child.Recipe.ID])
		}
		if err != nil {
			return nil, err
		}

		total = total.Add(lc.Cost)
		lines = append(lines, lc)
	}

	return &Result{
		RecipeID:         recipe.ID,
		TotalCost:        total,
		CostPerYieldUnit: total.Div(recipe.Yield.Quantity),
		Lines:            lines,
		LeafVersions:     leafVersions,
		Fingerprint:      fp,
		Epoch:            epoch,
		ComputedAt:       time.Now().UTC(),
	}, nil
}

// ingredientLineCost prices a leaf line: the quantity converted to the
// ingredient's usage unit times the purchase price normalized to one
// usage unit.
func (e *Evaluator) ingredientLineCost(recipe *types.Recipe, line types.ComponentLine, ing *types.Ingredient) (LineCost, error) {
	packInUsage, err := units.Convert(ing.PurchasePackSize, ing.PurchaseUnit, ing.UsageUnit, ing.Conversion)
	if err != nil {
		return LineCost{}, fmt.Errorf("ingredient %s purchase pack: %w", ing.ID, err)
	}
	if !packInUsage.IsPositive() {
		return LineCost{}, fmt.Errorf("ingredient %s: purchase pack converts to non-positive usage quantity", ing.ID)
	}

	qtyInUsage, err := units.Convert(line.Quantity, line.Unit, ing.UsageUnit, ing.Conversion)
	if err != nil {
		return LineCost{}, fmt.Errorf("recipe %s line %s: %w", recipe.ID, line.Ref.Key(), err)
	}

	unitCost := money.FromDecimal(ing.PurchasePrice, e.currency).Div(packInUsage)
	return LineCost{
		Label:       ing.Name,
		Kind:        types.KindIngredient,
		ComponentID: string(ing.ID),
		Quantity:    line.Quantity,
		Unit:        line.Unit,
		UnitCost:    unitCost,
		Cost:        unitCost.Mul(qtyInUsage),
	}, nil
}

// subRecipeLineCost prices a sub-recipe line from its memoized
// cost-per-yield-unit, unrounded.
func (e *Evaluator) subRecipeLineCost(recipe *types.Recipe, line types.ComponentLine, sub *types.Recipe, subResult *Result) (LineCost, error) {
	if subResult == nil {
		return LineCost{}, &graph.UnresolvedReferenceError{Component: line.Ref.Key(), ReferencedBy: recipe.ID}
	}

	qtyInYieldUnits, err := units.Convert(line.Quantity, line.Unit, sub.Yield.Unit, nil)
	if err != nil {
		return LineCost{}, fmt.Errorf("recipe %s line %s: %w", recipe.ID, line.Ref.Key(), err)
	}

	return LineCost{
		Label:       sub.Name,
		Kind:        types.KindSubRecipe,
		ComponentID: string(sub.ID),
		Quantity:    line.Quantity,
		Unit:        line.Unit,
		UnitCost:    subResult.CostPerYieldUnit,
		Cost:        subResult.CostPerYieldUnit.Mul(qtyInYieldUnits),
	}, nil
}
