// Package types defines the core domain model for the cost engine:
// ingredient and recipe records, component references, calculation
// requests, and cost reports.
package types

import (
	"fmt"

	"github.com/shopspring/decimal"

	"recipe-cost/core/units"
)

// IngredientID identifies an ingredient record
type IngredientID string

// RecipeID identifies a recipe record
type RecipeID string

// Ingredient is an immutable snapshot of an ingredient record at
// evaluation time, identified by its id plus a monotonically increasing
// price version.
type Ingredient struct {
	ID   IngredientID
	Name string

	// PurchasePrice is the price of one purchase pack
	PurchasePrice decimal.Decimal

	// PurchaseUnit and PurchasePackSize describe the pack the price
	// applies to (e.g. 25 kg bag: unit kg, pack size 25)
	PurchaseUnit     units.Unit
	PurchasePackSize decimal.Decimal

	// UsageUnit is the unit recipes reference this ingredient by
	UsageUnit units.Unit

	// Conversion is an optional rule bridging purchase and usage units
	// when the fixed table cannot (density or explicit factor)
	Conversion *units.Rule

	// TaxRate is the purchase tax percentage, informational for reports
	TaxRate decimal.Decimal

	Active bool

	// PriceVersion increases on every price write
	PriceVersion uint64
}

// Validate checks the ingredient record invariants
func (i *Ingredient) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("ingredient has no id")
	}
	if i.PurchasePrice.IsNegative() {
		return fmt.Errorf("ingredient %s: purchase price must be >= 0", i.ID)
	}
	if !i.PurchasePackSize.IsPositive() {
		return fmt.Errorf("ingredient %s: purchase pack size must be > 0", i.ID)
	}
	if i.Conversion != nil && !i.Conversion.Factor.IsPositive() {
		return fmt.Errorf("ingredient %s: conversion factor must be > 0", i.ID)
	}
	return nil
}

// ComponentKind distinguishes the two kinds of line reference
type ComponentKind int

const (
	KindIngredient ComponentKind = iota
	KindSubRecipe
)

// String returns the kind name
func (k ComponentKind) String() string {
	switch k {
	case KindIngredient:
		return "ingredient"
	case KindSubRecipe:
		return "sub-recipe"
	default:
		return "unknown"
	}
}

// ComponentRef is a tagged reference to either an ingredient or a
// sub-recipe. Every consumer must handle both cases explicitly.
type ComponentRef struct {
	Kind         ComponentKind
	IngredientID IngredientID
	RecipeID     RecipeID
}

// IngredientRef builds an ingredient reference
func IngredientRef(id IngredientID) ComponentRef {
	return ComponentRef{Kind: KindIngredient, IngredientID: id}
}

// SubRecipeRef builds a sub-recipe reference
func SubRecipeRef(id RecipeID) ComponentRef {
	return ComponentRef{Kind: KindSubRecipe, RecipeID: id}
}

// Key returns a stable identifier usable as a graph node key
func (r ComponentRef) Key() string {
	if r.Kind == KindIngredient {
		return "ingredient:" + string(r.IngredientID)
	}
	return "recipe:" + string(r.RecipeID)
}

// ComponentLine is one line of a recipe: a component reference, a
// quantity, and the unit the quantity is expressed in.
type ComponentLine struct {
	Ref      ComponentRef
	Quantity decimal.Decimal
	Unit     units.Unit
}

// Validate checks the line invariants
func (l *ComponentLine) Validate() error {
	if !l.Quantity.IsPositive() {
		return fmt.Errorf("line %s: quantity must be > 0", l.Ref.Key())
	}
	return nil
}

// Yield is the quantity and unit a recipe's cost is normalized to
type Yield struct {
	Quantity decimal.Decimal
	Unit     units.Unit
}

// RecipeStatus represents the lifecycle state of a recipe record
type RecipeStatus string

const (
	StatusDraft    RecipeStatus = "draft"
	StatusLive     RecipeStatus = "live"
	StatusArchived RecipeStatus = "archived"
)

// IsValid checks if the status is one of the defined constants
func (s RecipeStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusLive, StatusArchived:
		return true
	}
	return false
}

// Recipe is an immutable snapshot of a recipe record for the duration
// of one evaluation pass. Sub-recipes are referenced by loose id; the
// cycle detector, not construction, enforces acyclicity.
type Recipe struct {
	ID     RecipeID
	Name   string
	Lines  []ComponentLine
	Yield  Yield
	Status RecipeStatus

	// WastagePercent is the default expected loss fraction (0-100)
	WastagePercent decimal.Decimal
}

// Validate checks the recipe record invariants
func (r *Recipe) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("recipe has no id")
	}
	if !r.Yield.Quantity.IsPositive() {
		return fmt.Errorf("recipe %s: yield quantity must be > 0", r.ID)
	}
	if r.WastagePercent.IsNegative() || r.WastagePercent.GreaterThanOrEqual(decimal.NewFromInt(100)) {
		return fmt.Errorf("recipe %s: wastage percent must be in [0, 100)", r.ID)
	}
	for i := range r.Lines {
		if err := r.Lines[i].Validate(); err != nil {
			return fmt.Errorf("recipe %s: %w", r.ID, err)
		}
	}
	return nil
}

// IngredientLookup resolves ingredient records by id.
// Provided by the ingredient-management collaborator.
type IngredientLookup interface {
	Ingredient(id IngredientID) (*Ingredient, bool)
}

// RecipeLookup resolves recipe records by id.
// Provided by the recipe-management collaborator.
type RecipeLookup interface {
	Recipe(id RecipeID) (*Recipe, bool)
}
