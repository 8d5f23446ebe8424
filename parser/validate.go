package parser

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
)

// BalanceTolerance is how far total profit may drift from zero before the
// set is flagged as unbalanced.
var BalanceTolerance = decimal.NewFromFloat(0.01)

// ValidationResult separates blocking errors from advisory warnings.
type ValidationResult struct {
	IsValid  bool     `json:"isValid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// ValidateParsedData checks entries before they are turned into a game.
// Any error must stop game creation; warnings never do.
func ValidateParsedData(entries []ParsedEntry) ValidationResult {
	res := ValidationResult{Errors: []string{}, Warnings: []string{}}

	if len(entries) == 0 {
		res.Errors = append(res.Errors, "no valid player entries found")
		return res
	}

	fold := cases.Fold()
	seen := make(map[string]bool, len(entries))
	reported := make(map[string]bool)
	total := decimal.Zero

	for i, e := range entries {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			res.Errors = append(res.Errors, fmt.Sprintf("entry %d has an empty player name", i+1))
		} else {
			key := fold.String(name)
			if seen[key] && !reported[key] {
				res.Errors = append(res.Errors, fmt.Sprintf("duplicate player name: %s", name))
				reported[key] = true
			}
			seen[key] = true
		}

		if !e.Profit.Valid {
			res.Errors = append(res.Errors, fmt.Sprintf("invalid profit amount for %q", name))
			continue
		}
		total = total.Add(e.Profit.Decimal)
	}

	if total.Abs().GreaterThan(BalanceTolerance) {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"total profit is %s instead of 0, game may be unbalanced", total.StringFixed(2)))
	}

	res.IsValid = len(res.Errors) == 0
	return res
}
