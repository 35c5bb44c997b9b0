// Package output renders cost reports for humans and machines.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"recipe-cost/core/types"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is a human-readable CLI table
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"
)

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render writes the report to w
	Render(w io.Writer, report *types.CostReport) error
}

// New returns the formatter for a format name
func New(format Format, showBreakdown bool) (Formatter, error) {
	switch format {
	case FormatCLI:
		return &cliFormatter{showBreakdown: showBreakdown}, nil
	case FormatJSON:
		return &jsonFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

type jsonFormatter struct{}

func (f *jsonFormatter) Format() Format { return FormatJSON }

func (f *jsonFormatter) Render(w io.Writer, report *types.CostReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

type cliFormatter struct {
	showBreakdown bool
}

func (f *cliFormatter) Format() Format { return FormatCLI }

const lineWidth = 72

func (f *cliFormatter) Render(w io.Writer, report *types.CostReport) error {
	rule := func() { fmt.Fprintln(w, strings.Repeat("-", lineWidth)) }
	row := func(label, value string) {
		pad := lineWidth - len(value) - 1
		if pad < len(label) {
			pad = len(label)
		}
		fmt.Fprintf(w, "%-*s %s\n", pad, label, value)
	}

	rule()
	fmt.Fprintf(w, "COST REPORT  %s (%s %s, yield %s %s)\n",
		report.RecipeName, report.RecipeID, report.Status,
		report.YieldQuantity.String(), report.YieldUnit)
	rule()

	if f.showBreakdown {
		for _, line := range report.Lines {
			label := fmt.Sprintf("  %s  (%s %s, %s)",
				truncate(line.Label, 30), line.Quantity.String(), line.Unit, line.KindName)
			row(label, line.Cost.String())
		}
		rule()
	}

	row("Total ingredient cost", report.TotalIngredientCost.String())
	row("Labor", report.LaborCost.String())
	row("Overhead", report.OverheadCost.String())
	row("Packaging", report.PackagingCost.String())
	row(fmt.Sprintf("Cost per serving (wastage %s%%)", report.WastagePercent.String()),
		report.CostPerServingWithWastage.String())
	rule()
	row("TOTAL COST", report.TotalCost.String())
	row(fmt.Sprintf("Suggested price (target %s%%)", report.TargetFoodCostPercent.String()),
		report.SuggestedSellingPrice.String())
	if report.ActualSellingPrice != nil {
		row("Actual selling price", report.ActualSellingPrice.String())
	}
	row("Profit", report.Profit.String())
	row("Profit margin", report.ProfitMarginPercent.String()+"%")
	rule()

	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
