// Package catalog loads ingredient and recipe records from a JSON file
// and serves them to the engine as immutable snapshots. It stands in
// for the record-management collaborators: edits go through the CRUD
// application; the engine only reads what this adapter resolves.
package catalog

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"recipe-cost/core/types"
	"recipe-cost/core/units"
	errs "recipe-cost/internal/errors"
)

// ingredientRecord is the file shape of an ingredient
type ingredientRecord struct {
	ID               string   `json:"id" validate:"required"`
	Name             string   `json:"name" validate:"required"`
	PurchasePrice    float64  `json:"purchase_price" validate:"gte=0"`
	PurchaseUnit     string   `json:"purchase_unit" validate:"required"`
	PurchasePackSize float64  `json:"purchase_pack_size" validate:"gt=0"`
	UsageUnit        string   `json:"usage_unit" validate:"required"`
	ConversionFactor *float64 `json:"conversion_factor,omitempty" validate:"omitempty,gt=0"`
	Density          *float64 `json:"density_g_per_ml,omitempty" validate:"omitempty,gt=0"`
	TaxRate          float64  `json:"tax_rate" validate:"gte=0"`
	Active           bool     `json:"active"`
	PriceVersion     uint64   `json:"price_version"`
}

// lineRecord is the file shape of a recipe component line
type lineRecord struct {
	IngredientID string  `json:"ingredient_id,omitempty"`
	RecipeID     string  `json:"recipe_id,omitempty"`
	Quantity     float64 `json:"quantity" validate:"gt=0"`
	Unit         string  `json:"unit" validate:"required"`
}

// recipeRecord is the file shape of a recipe
type recipeRecord struct {
	ID             string       `json:"id" validate:"required"`
	Name           string       `json:"name" validate:"required"`
	Lines          []lineRecord `json:"lines" validate:"required,min=1,dive"`
	YieldQuantity  float64      `json:"yield_quantity" validate:"gt=0"`
	YieldUnit      string       `json:"yield_unit" validate:"required"`
	WastagePercent float64      `json:"wastage_percent" validate:"gte=0,lt=100"`
	Status         string       `json:"status" validate:"omitempty,oneof=draft live archived"`
}

// file is the catalog file shape
type file struct {
	Ingredients []ingredientRecord `json:"ingredients"`
	Recipes     []recipeRecord     `json:"recipes"`
}

// Invalidator receives ingredient price-change notifications.
// Satisfied by the engine's Invalidate method.
type Invalidator func(id types.IngredientID, newPriceVersion uint64)

// Catalog is an in-memory record set implementing the engine's lookup
// interfaces. Reads return the current snapshot; price writes replace
// the snapshot and notify the invalidator.
type Catalog struct {
	mu          sync.RWMutex
	ingredients map[types.IngredientID]*types.Ingredient
	recipes     map[types.RecipeID]*types.Recipe
	invalidate  Invalidator
}

var validate = validator.New()

// Load reads and validates a catalog file
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Catalog("read catalog file", err)
	}

	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errs.Catalog("parse catalog file", err)
	}

	c := &Catalog{
		ingredients: make(map[types.IngredientID]*types.Ingredient, len(f.Ingredients)),
		recipes:     make(map[types.RecipeID]*types.Recipe, len(f.Recipes)),
	}

	for i := range f.Ingredients {
		rec := &f.Ingredients[i]
		if err := validate.Struct(rec); err != nil {
			return nil, errs.Wrapf(errs.TypeCatalog, err, "invalid ingredient record %s", rec.ID)
		}
		ing := toIngredient(rec)
		if err := ing.Validate(); err != nil {
			return nil, errs.Wrapf(errs.TypeCatalog, err, "invalid ingredient record %s", rec.ID)
		}
		c.ingredients[ing.ID] = ing
	}

	for i := range f.Recipes {
		rec := &f.Recipes[i]
		if err := validate.Struct(rec); err != nil {
			return nil, errs.Wrapf(errs.TypeCatalog, err, "invalid recipe record %s", rec.ID)
		}
		r, err := toRecipe(rec)
		if err != nil {
			return nil, errs.Wrapf(errs.TypeCatalog, err, "invalid recipe record %s", rec.ID)
		}
		c.recipes[r.ID] = r
	}

	return c, nil
}

// OnPriceChange registers the invalidation callback
func (c *Catalog) OnPriceChange(fn Invalidator) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidate = fn
}

// Ingredient implements types.IngredientLookup
func (c *Catalog) Ingredient(id types.IngredientID) (*types.Ingredient, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ing, ok := c.ingredients[id]
	return ing, ok
}

// Recipe implements types.RecipeLookup
func (c *Catalog) Recipe(id types.RecipeID) (*types.Recipe, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.recipes[id]
	return r, ok
}

// Ingredients returns the number of ingredient records
func (c *Catalog) Ingredients() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.ingredients)
}

// Recipes returns the number of recipe records
func (c *Catalog) Recipes() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.recipes)
}

// SetIngredientPrice replaces an ingredient's purchase price, bumps its
// price version, and notifies the invalidator. The old snapshot is
// never mutated; readers holding it keep a consistent view.
func (c *Catalog) SetIngredientPrice(id types.IngredientID, price decimal.Decimal) error {
	if price.IsNegative() {
		return errs.Input("purchase price must be >= 0")
	}

	c.mu.Lock()
	old, ok := c.ingredients[id]
	if !ok {
		c.mu.Unlock()
		return errs.NotFound("ingredient", string(id))
	}

	next := *old
	next.PurchasePrice = price
	next.PriceVersion = old.PriceVersion + 1
	c.ingredients[id] = &next
	fn := c.invalidate
	c.mu.Unlock()

	if fn != nil {
		fn(id, next.PriceVersion)
	}
	return nil
}

func toIngredient(rec *ingredientRecord) *types.Ingredient {
	ing := &types.Ingredient{
		ID:               types.IngredientID(rec.ID),
		Name:             rec.Name,
		PurchasePrice:    decimal.NewFromFloat(rec.PurchasePrice),
		PurchaseUnit:     units.Unit(rec.PurchaseUnit),
		PurchasePackSize: decimal.NewFromFloat(rec.PurchasePackSize),
		UsageUnit:        units.Unit(rec.UsageUnit),
		TaxRate:          decimal.NewFromFloat(rec.TaxRate),
		Active:           rec.Active,
		PriceVersion:     rec.PriceVersion,
	}
	switch {
	case rec.ConversionFactor != nil:
		ing.Conversion = units.FactorRule(decimal.NewFromFloat(*rec.ConversionFactor))
	case rec.Density != nil:
		ing.Conversion = units.DensityRule(decimal.NewFromFloat(*rec.Density))
	}
	return ing
}

func toRecipe(rec *recipeRecord) (*types.Recipe, error) {
	r := &types.Recipe{
		ID:   types.RecipeID(rec.ID),
		Name: rec.Name,
		Yield: types.Yield{
			Quantity: decimal.NewFromFloat(rec.YieldQuantity),
			Unit:     units.Unit(rec.YieldUnit),
		},
		WastagePercent: decimal.NewFromFloat(rec.WastagePercent),
		Status:         types.RecipeStatus(rec.Status),
	}
	if rec.Status == "" {
		r.Status = types.StatusDraft
	}

	for _, line := range rec.Lines {
		var ref types.ComponentRef
		switch {
		case line.IngredientID != "" && line.RecipeID != "":
			return nil, errs.Input("line references both an ingredient and a recipe")
		case line.IngredientID != "":
			ref = types.IngredientRef(types.IngredientID(line.IngredientID))
		case line.RecipeID != "":
			ref = types.SubRecipeRef(types.RecipeID(line.RecipeID))
		default:
			return nil, errs.Input("line references neither an ingredient nor a recipe")
		}
		r.Lines = append(r.Lines, types.ComponentLine{
			Ref:      ref,
			Quantity: decimal.NewFromFloat(line.Quantity),
			Unit:     units.Unit(line.Unit),
		})
	}

	return r, r.Validate()
}
