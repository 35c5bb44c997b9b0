package rollup

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"recipe-cost/core/graph"
	"recipe-cost/core/types"
	"recipe-cost/core/units"
)

type recipeMap map[types.RecipeID]*types.Recipe

func (m recipeMap) Recipe(id types.RecipeID) (*types.Recipe, bool) {
	r, ok := m[id]
	return r, ok
}

type ingredientMap map[types.IngredientID]*types.Ingredient

func (m ingredientMap) Ingredient(id types.IngredientID) (*types.Ingredient, bool) {
	i, ok := m[id]
	return i, ok
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func gramIngredient(id, packPrice, packGrams string) *types.Ingredient {
	return &types.Ingredient{
		ID:               types.IngredientID(id),
		Name:             id,
		PurchasePrice:    dec(packPrice),
		PurchaseUnit:     units.Gram,
		PurchasePackSize: dec(packGrams),
		UsageUnit:        units.Gram,
		Active:           true,
		PriceVersion:     1,
	}
}

func gramLine(id, qty string) types.ComponentLine {
	return types.ComponentLine{
		Ref:      types.IngredientRef(types.IngredientID(id)),
		Quantity: dec(qty),
		Unit:     units.Gram,
	}
}

func subLine(id, qty string) types.ComponentLine {
	return types.ComponentLine{
		Ref:      types.SubRecipeRef(types.RecipeID(id)),
		Quantity: dec(qty),
		Unit:     units.Each,
	}
}

func eachRecipe(id string, lines ...types.ComponentLine) *types.Recipe {
	return &types.Recipe{
		ID:     types.RecipeID(id),
		Name:   id,
		Lines:  lines,
		Yield:  types.Yield{Quantity: dec("1"), Unit: units.Each},
		Status: types.StatusLive,
	}
}

func mustBuild(t *testing.T, root types.RecipeID, recipes recipeMap, ingredients ingredientMap) *graph.Graph {
	t.Helper()
	g, err := graph.Build(root, recipes, ingredients)
	if err != nil {
		t.Fatalf("Build(%s) failed: %v", root, err)
	}
	return g
}

// TestRollupSingleLevel prices one recipe over raw ingredients:
// 500 g from a $10.00 / 1000 g pack costs $5.00
func TestRollupSingleLevel(t *testing.T) {
	recipes := recipeMap{"dough": eachRecipe("dough", gramLine("flour", "500"))}
	ingredients := ingredientMap{"flour": gramIngredient("flour", "10.00", "1000")}

	e := NewEvaluator("USD")
	result, err := e.Rollup(mustBuild(t, "dough", recipes, ingredients), 0)
	if err != nil {
		t.Fatalf("Rollup failed: %v", err)
	}

	if !result.TotalCost.Amount().Equal(dec("5")) {
		t.Errorf("total cost = %s, want 5", result.TotalCost.StringRaw())
	}
	if !result.CostPerYieldUnit.Amount().Equal(dec("5")) {
		t.Errorf("cost per yield unit = %s, want 5", result.CostPerYieldUnit.StringRaw())
	}
	if len(result.Lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(result.Lines))
	}
	if !result.Lines[0].UnitCost.Amount().Equal(dec("0.01")) {
		t.Errorf("flour unit cost = %s, want 0.01", result.Lines[0].UnitCost.StringRaw())
	}
	if result.LeafVersions["flour"] != 1 {
		t.Errorf("leaf version = %d, want 1", result.LeafVersions["flour"])
	}
}

// TestRollupNested verifies the sub-recipe contribution flows through
// its cost-per-yield-unit unrounded
func TestRollupNested(t *testing.T) {
	recipes := recipeMap{
		"dough": eachRecipe("dough", gramLine("flour", "500")),
		"pizza": {
			ID:   "pizza",
			Name: "pizza",
			Lines: []types.ComponentLine{
				subLine("dough", "1"),
				gramLine("cheese", "250"),
			},
			Yield:  types.Yield{Quantity: dec("2"), Unit: units.Serving},
			Status: types.StatusLive,
		},
	}
	ingredients := ingredientMap{
		"flour":  gramIngredient("flour", "10.00", "1000"),
		"cheese": gramIngredient("cheese", "8.00", "1000"),
	}

	e := NewEvaluator("USD")
	result, err := e.Rollup(mustBuild(t, "pizza", recipes, ingredients), 0)
	if err != nil {
		t.Fatalf("Rollup failed: %v", err)
	}

	if !result.TotalCost.Amount().Equal(dec("7")) {
		t.Errorf("total cost = %s, want 7", result.TotalCost.StringRaw())
	}
	if !result.CostPerYieldUnit.Amount().Equal(dec("3.5")) {
		t.Errorf("cost per serving = %s, want 3.5", result.CostPerYieldUnit.StringRaw())
	}

	// Both leaves appear in the root's version set.
	if len(result.LeafVersions) != 2 {
		t.Errorf("leaf versions = %v, want flour and cheese", result.LeafVersions)
	}

	if result.Lines[0].Kind != types.KindSubRecipe || result.Lines[0].ComponentID != "dough" {
		t.Errorf("line 0 = %+v, want dough sub-recipe line", result.Lines[0])
	}
	if !result.Lines[0].Cost.Amount().Equal(dec("5")) {
		t.Errorf("dough line cost = %s, want 5", result.Lines[0].Cost.StringRaw())
	}
}

// TestRollupAdditivity verifies increasing one line quantity moves the
// total by exactly quantity delta times unit cost
func TestRollupAdditivity(t *testing.T) {
	ingredients := ingredientMap{"flour": gramIngredient("flour", "10.00", "1000")}

	e := NewEvaluator("USD")

	small, err := e.Rollup(mustBuild(t, "small", recipeMap{
		"small": eachRecipe("small", gramLine("flour", "500")),
	}, ingredients), 0)
	if err != nil {
		t.Fatalf("Rollup(small) failed: %v", err)
	}

	large, err := e.Rollup(mustBuild(t, "large", recipeMap{
		"large": eachRecipe("large", gramLine("flour", "600")),
	}, ingredients), 0)
	if err != nil {
		t.Fatalf("Rollup(large) failed: %v", err)
	}

	diff := large.TotalCost.Sub(small.TotalCost)
	if !diff.Amount().Equal(dec("1")) {
		t.Errorf("cost delta = %s, want 1 (100 g at 0.01/g)", diff.StringRaw())
	}
}

// TestRollupSharedSubRecipe verifies a sub-recipe used by two parents is
// evaluated once per calculation, and that its cost is counted once per
// referencing line
func TestRollupSharedSubRecipe(t *testing.T) {
	recipes := recipeMap{
		"stock":   eachRecipe("stock", gramLine("bones", "1000")),
		"sauce":   eachRecipe("sauce", subLine("stock", "1")),
		"gravy":   eachRecipe("gravy", subLine("stock", "2")),
		"platter": eachRecipe("platter", subLine("sauce", "1"), subLine("gravy", "1")),
	}
	ingredients := ingredientMap{"bones": gramIngredient("bones", "5.00", "1000")}

	e := NewEvaluator("USD")
	result, err := e.Rollup(mustBuild(t, "platter", recipes, ingredients), 0)
	if err != nil {
		t.Fatalf("Rollup failed: %v", err)
	}

	// stock $5, sauce 1x = $5, gravy 2x = $10, platter $15
	if !result.TotalCost.Amount().Equal(dec("15")) {
		t.Errorf("total cost = %s, want 15", result.TotalCost.StringRaw())
	}

	stats := e.Stats()
	if stats.Evaluations != 4 {
		t.Errorf("evaluations = %d, want 4 (stock evaluated once, not per parent)", stats.Evaluations)
	}
}

// TestRollupCacheReuse verifies repeated rollups with unchanged prices
// come from the cache without recomputation
func TestRollupCacheReuse(t *testing.T) {
	recipes := recipeMap{
		"dough": eachRecipe("dough", gramLine("flour", "500")),
		"pizza": eachRecipe("pizza", subLine("dough", "1")),
	}
	ingredients := ingredientMap{"flour": gramIngredient("flour", "10.00", "1000")}

	e := NewEvaluator("USD")
	g := mustBuild(t, "pizza", recipes, ingredients)

	first, err := e.Rollup(g, 0)
	if err != nil {
		t.Fatalf("first Rollup failed: %v", err)
	}
	if e.Stats().Evaluations != 2 {
		t.Fatalf("evaluations after first run = %d, want 2", e.Stats().Evaluations)
	}

	second, err := e.Rollup(g, 0)
	if err != nil {
		t.Fatalf("second Rollup failed: %v", err)
	}

	stats := e.Stats()
	if stats.Evaluations != 2 {
		t.Errorf("evaluations after second run = %d, want still 2", stats.Evaluations)
	}
	if stats.CacheHits == 0 {
		t.Error("expected cache hits on second run")
	}
	if !second.TotalCost.Equal(first.TotalCost) {
		t.Errorf("second total = %s, first = %s", second.TotalCost, first.TotalCost)
	}
}

// TestRollupPriceChangeInvalidates verifies a bumped leaf price version
// changes the fingerprint and forces recomputation up the chain
func TestRollupPriceChangeInvalidates(t *testing.T) {
	recipes := recipeMap{
		"dough": eachRecipe("dough", gramLine("flour", "500")),
		"pizza": eachRecipe("pizza", subLine("dough", "1")),
	}
	ingredients := ingredientMap{"flour": gramIngredient("flour", "10.00", "1000")}

	e := NewEvaluator("USD")

	first, err := e.Rollup(mustBuild(t, "pizza", recipes, ingredients), 0)
	if err != nil {
		t.Fatalf("first Rollup failed: %v", err)
	}
	if !first.TotalCost.Amount().Equal(dec("5")) {
		t.Fatalf("first total = %s, want 5", first.TotalCost.StringRaw())
	}

	// New price snapshot: $15.00 / 1000 g, version 2.
	flour := gramIngredient("flour", "15.00", "1000")
	flour.PriceVersion = 2
	ingredients["flour"] = flour

	second, err := e.Rollup(mustBuild(t, "pizza", recipes, ingredients), 1)
	if err != nil {
		t.Fatalf("second Rollup failed: %v", err)
	}

	if !second.TotalCost.Amount().Equal(dec("7.5")) {
		t.Errorf("total after price change = %s, want 7.5", second.TotalCost.StringRaw())
	}
	if second.Fingerprint == first.Fingerprint {
		t.Error("fingerprint must change when a leaf price version changes")
	}
	if e.Stats().Evaluations != 4 {
		t.Errorf("evaluations = %d, want 4 (both recipes recomputed)", e.Stats().Evaluations)
	}
}

// TestRollupDensityConversion verifies an ingredient purchased by
// volume and used by mass prices through its density rule
func TestRollupDensityConversion(t *testing.T) {
	milk := &types.Ingredient{
		ID:               "milk",
		Name:             "milk",
		PurchasePrice:    dec("2.06"),
		PurchaseUnit:     units.Liter,
		PurchasePackSize: dec("1"),
		UsageUnit:        units.Gram,
		Conversion:       units.DensityRule(dec("1.03")),
		Active:           true,
		PriceVersion:     1,
	}
	recipes := recipeMap{"custard": eachRecipe("custard", gramLine("milk", "515"))}
	ingredients := ingredientMap{"milk": milk}

	e := NewEvaluator("USD")
	result, err := e.Rollup(mustBuild(t, "custard", recipes, ingredients), 0)
	if err != nil {
		t.Fatalf("Rollup failed: %v", err)
	}

	// 1 l = 1030 g, so $2.06/pack is $0.002/g; 515 g costs $1.03.
	if !result.TotalCost.Amount().Equal(dec("1.03")) {
		t.Errorf("total cost = %s, want 1.03", result.TotalCost.StringRaw())
	}
}

// TestRollupFactorRuleIngredientMassLine verifies a mass line against a
// factor-rule ingredient converts through the fixed table, with the
// factor applied only to the cross-dimension purchase pack
func TestRollupFactorRuleIngredientMassLine(t *testing.T) {
	butter := &types.Ingredient{
		ID:               "butter",
		Name:             "butter",
		PurchasePrice:    dec("2.00"),
		PurchaseUnit:     units.Each,
		PurchasePackSize: dec("1"),
		UsageUnit:        units.Gram,
		Conversion:       units.FactorRule(dec("250")),
		Active:           true,
		PriceVersion:     1,
	}
	recipes := recipeMap{
		"pastry": eachRecipe("pastry", types.ComponentLine{
			Ref:      types.IngredientRef("butter"),
			Quantity: dec("0.5"),
			Unit:     units.Kilogram,
		}),
	}
	ingredients := ingredientMap{"butter": butter}

	e := NewEvaluator("USD")
	result, err := e.Rollup(mustBuild(t, "pastry", recipes, ingredients), 0)
	if err != nil {
		t.Fatalf("Rollup failed: %v", err)
	}

	// Pack: 1 ea = 250 g at $2.00, so $0.008/g; 0.5 kg = 500 g costs $4.00.
	if !result.TotalCost.Amount().Equal(dec("4")) {
		t.Errorf("total cost = %s, want 4", result.TotalCost.StringRaw())
	}
}

// TestRollupIncompatibleUnits verifies a line unit that cannot reach
// the ingredient's usage unit fails the whole rollup
func TestRollupIncompatibleUnits(t *testing.T) {
	recipes := recipeMap{
		"batter": eachRecipe("batter", types.ComponentLine{
			Ref:      types.IngredientRef("flour"),
			Quantity: dec("200"),
			Unit:     units.Milliliter,
		}),
	}
	ingredients := ingredientMap{"flour": gramIngredient("flour", "10.00", "1000")}

	e := NewEvaluator("USD")
	_, err := e.Rollup(mustBuild(t, "batter", recipes, ingredients), 0)
	if err == nil {
		t.Fatal("expected error converting ml to g without a rule")
	}

	var incompatible *units.IncompatibleUnitsError
	if !errors.As(err, &incompatible) {
		t.Fatalf("expected IncompatibleUnitsError, got %T: %v", err, err)
	}
}
