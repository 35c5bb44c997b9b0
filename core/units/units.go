// Package units provides unit conversion for recipe quantities.
// Conversions within a dimension use a fixed unit table; crossing
// mass and volume requires a per-ingredient density rule.
package units

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Unit is a measurement unit symbol
type Unit string

const (
	// Mass units
	Milligram Unit = "mg"
	Gram      Unit = "g"
	Kilogram  Unit = "kg"
	Ounce     Unit = "oz"
	Pound     Unit = "lb"

	// Volume units
	Milliliter Unit = "ml"
	Liter      Unit = "l"
	Teaspoon   Unit = "tsp"
	Tablespoon Unit = "tbsp"
	Cup        Unit = "cup"

	// Count units
	Each    Unit = "ea"
	Dozen   Unit = "dozen"
	Serving Unit = "serving"
	Batch   Unit = "batch"
)

// Dimension classifies units by what they measure
type Dimension int

const (
	DimensionMass Dimension = iota
	DimensionVolume
	DimensionCount
)

// String returns the dimension name
func (d Dimension) String() string {
	switch d {
	case DimensionMass:
		return "mass"
	case DimensionVolume:
		return "volume"
	case DimensionCount:
		return "count"
	default:
		return "unknown"
	}
}

// unitDef maps a unit to its dimension and factor to the base unit
// (g for mass, ml for volume, ea for count).
type unitDef struct {
	dim    Dimension
	factor decimal.Decimal
}

var unitTable = map[Unit]unitDef{
	Milligram: {DimensionMass, decimal.RequireFromString("0.001")},
	Gram:      {DimensionMass, decimal.NewFromInt(1)},
	Kilogram:  {DimensionMass, decimal.NewFromInt(1000)},
	Ounce:     {DimensionMass, decimal.RequireFromString("28.3495")},
	Pound:     {DimensionMass, decimal.RequireFromString("453.592")},

	Milliliter: {DimensionVolume, decimal.NewFromInt(1)},
	Liter:      {DimensionVolume, decimal.NewFromInt(1000)},
	Teaspoon:   {DimensionVolume, decimal.RequireFromString("4.92892")},
	Tablespoon: {DimensionVolume, decimal.RequireFromString("14.7868")},
	Cup:        {DimensionVolume, decimal.RequireFromString("236.588")},

	// Count units convert 1:1 unless the table says otherwise; a recipe
	// yield in "serving" is addressable from a line in "ea".
	Each:    {DimensionCount, decimal.NewFromInt(1)},
	Dozen:   {DimensionCount, decimal.NewFromInt(12)},
	Serving: {DimensionCount, decimal.NewFromInt(1)},
	Batch:   {DimensionCount, decimal.NewFromInt(1)},
}

// DimensionOf returns the dimension of a unit
func DimensionOf(u Unit) (Dimension, bool) {
	def, ok := unitTable[u]
	return def.dim, ok
}

// Known reports whether the unit is in the conversion table
func Known(u Unit) bool {
	_, ok := unitTable[u]
	return ok
}

// RuleKind identifies the kind of ingredient conversion rule
type RuleKind int

const (
	// RuleFactor is an explicit purchase-unit to usage-unit multiplier
	RuleFactor RuleKind = iota

	// RuleDensity is a mass-per-volume density in g/ml
	RuleDensity
)

// Rule is a per-ingredient conversion rule supplied by the ingredient
// record. It permits conversions the fixed table cannot express.
type Rule struct {
	Kind   RuleKind
	Factor decimal.Decimal
}

// DensityRule builds a density rule (grams per milliliter)
func DensityRule(gramsPerMilliliter decimal.Decimal) *Rule {
	return &Rule{Kind: RuleDensity, Factor: gramsPerMilliliter}
}

// FactorRule builds an explicit conversion factor rule
// (1 from-unit = factor to-units).
func FactorRule(factor decimal.Decimal) *Rule {
	return &Rule{Kind: RuleFactor, Factor: factor}
}

// UnknownUnitError reports a unit missing from the conversion table
type UnknownUnitError struct {
	Unit Unit
}

func (e *UnknownUnitError) Error() string {
	return fmt.Sprintf("unknown unit %q", e.Unit)
}

// IncompatibleUnitsError reports a conversion that cannot be performed
type IncompatibleUnitsError struct {
	From   Unit
	To     Unit
	Reason string
}

func (e *IncompatibleUnitsError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot convert %s to %s: %s", e.From, e.To, e.Reason)
	}
	return fmt.Sprintf("cannot convert %s to %s", e.From, e.To)
}

// Convert converts a quantity from one unit to another. Same-dimension
// conversions always use the fixed table. An ingredient rule only
// covers pairs the table cannot express: a factor rule for the
// purchase-to-usage pair, a density rule for mass/volume crossings.
func Convert(qty decimal.Decimal, from, to Unit, rule *Rule) (decimal.Decimal, error) {
	if from == to {
		return qty, nil
	}

	fromDef, fromKnown := unitTable[from]
	toDef, toKnown := unitTable[to]

	// Same-dimension pairs are fixed physical facts. The table settles
	// them before any ingredient rule is consulted, so a factor rule
	// meant for the purchase-to-usage pair cannot distort a plain
	// kg-to-g line.
	if fromKnown && toKnown && fromDef.dim == toDef.dim {
		return qty.Mul(fromDef.factor).DivRound(toDef.factor, scale), nil
	}

	// The factor rule covers the ingredient's purchase-to-usage pair,
	// which the table cannot express (cross-dimension or custom units).
	if rule != nil && rule.Kind == RuleFactor {
		return qty.Mul(rule.Factor), nil
	}

	if !fromKnown {
		return decimal.Zero, &UnknownUnitError{Unit: from}
	}
	if !toKnown {
		return decimal.Zero, &UnknownUnitError{Unit: to}
	}

	// Mass <-> volume only with a density rule.
	if rule != nil && rule.Kind == RuleDensity {
		switch {
		case fromDef.dim == DimensionVolume && toDef.dim == DimensionMass:
			grams := qty.Mul(fromDef.factor).Mul(rule.Factor)
			return grams.DivRound(toDef.factor, scale), nil
		case fromDef.dim == DimensionMass && toDef.dim == DimensionVolume:
			milliliters := qty.Mul(fromDef.factor).DivRound(rule.Factor, scale)
			return milliliters.DivRound(toDef.factor, scale), nil
		}
	}

	return decimal.Zero, &IncompatibleUnitsError{
		From:   from,
		To:     to,
		Reason: fmt.Sprintf("%s and %s are incompatible without an ingredient conversion rule", fromDef.dim, toDef.dim),
	}
}

// scale is the fractional precision kept by conversion divisions.
const scale = 8
