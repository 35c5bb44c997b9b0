package types

import (
	"testing"

	"github.com/shopspring/decimal"

	"recipe-cost/core/money"
	"recipe-cost/core/units"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func validRecipe() *Recipe {
	return &Recipe{
		ID:   "dough",
		Name: "Dough",
		Lines: []ComponentLine{
			{Ref: IngredientRef("flour"), Quantity: dec("500"), Unit: units.Gram},
		},
		Yield:  Yield{Quantity: dec("1"), Unit: units.Each},
		Status: StatusLive,
	}
}

func TestRecipeValidate(t *testing.T) {
	if err := validRecipe().Validate(); err != nil {
		t.Errorf("valid recipe rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Recipe)
	}{
		{"missing id", func(r *Recipe) { r.ID = "" }},
		{"zero yield", func(r *Recipe) { r.Yield.Quantity = dec("0") }},
		{"negative wastage", func(r *Recipe) { r.WastagePercent = dec("-1") }},
		{"wastage at 100", func(r *Recipe) { r.WastagePercent = dec("100") }},
		{"zero line quantity", func(r *Recipe) { r.Lines[0].Quantity = dec("0") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRecipe()
			tt.mutate(r)
			if err := r.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestIngredientValidate(t *testing.T) {
	valid := func() *Ingredient {
		return &Ingredient{
			ID:               "flour",
			Name:             "Flour",
			PurchasePrice:    dec("10"),
			PurchaseUnit:     units.Gram,
			PurchasePackSize: dec("1000"),
			UsageUnit:        units.Gram,
		}
	}

	if err := valid().Validate(); err != nil {
		t.Errorf("valid ingredient rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Ingredient)
	}{
		{"missing id", func(i *Ingredient) { i.ID = "" }},
		{"negative price", func(i *Ingredient) { i.PurchasePrice = dec("-1") }},
		{"zero pack size", func(i *Ingredient) { i.PurchasePackSize = dec("0") }},
		{"zero conversion factor", func(i *Ingredient) { i.Conversion = units.FactorRule(dec("0")) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i := valid()
			tt.mutate(i)
			if err := i.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestComponentRefKey(t *testing.T) {
	if got := IngredientRef("flour").Key(); got != "ingredient:flour" {
		t.Errorf("ingredient key = %s", got)
	}
	if got := SubRecipeRef("dough").Key(); got != "recipe:dough" {
		t.Errorf("recipe key = %s", got)
	}
	// An ingredient and a recipe sharing an id remain distinct nodes.
	if IngredientRef("stock").Key() == SubRecipeRef("stock").Key() {
		t.Error("ingredient and recipe keys must not collide")
	}
}

func TestRequestValidate(t *testing.T) {
	valid := func() *CostCalculationRequest {
		return &CostCalculationRequest{
			RecipeID:              "pizza",
			LaborCost:             money.MustNew("1", "USD"),
			OverheadCost:          money.Zero("USD"),
			PackagingCost:         money.Zero("USD"),
			TargetFoodCostPercent: dec("30"),
		}
	}

	if err := valid().Validate(); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}

	r := valid()
	r.RecipeID = ""
	if err := r.Validate(); err == nil {
		t.Error("expected error for missing recipe id")
	}

	r = valid()
	r.OverheadCost = money.MustNew("-1", "USD")
	if err := r.Validate(); err == nil {
		t.Error("expected error for negative cost")
	}
}

func TestRecipeStatus(t *testing.T) {
	for _, s := range []RecipeStatus{StatusDraft, StatusLive, StatusArchived} {
		if !s.IsValid() {
			t.Errorf("status %s must be valid", s)
		}
	}
	if RecipeStatus("retired").IsValid() {
		t.Error("unknown status must be invalid")
	}
}
