package insights

import (
	"math"

	"github.com/Charan170903/expense-tracker/internal/core"
)

// driftThresholdPercent is the month-over-month increase a category must
// exceed (strictly, on the unrounded value) to be flagged.
const driftThresholdPercent = 30.0

// DriftInsight reports a category whose expense total rose sharply versus the
// previous calendar month.
type DriftInsight struct {
	Category string     `json:"category"`
	Label    string     `json:"label"`
	Percent  int        `json:"percent"` // rounded for display; the threshold uses the raw value
	Current  core.Money `json:"current"`
	Prev     core.Money `json:"prev"`
}

// DetectCategoryDrift flags categories whose expense total for the target
// month grew more than 30% over the immediately preceding calendar month.
//
// Categories absent (or zero) in the prior month are never flagged: a fresh
// category has no baseline, so division by zero is defined as "no signal"
// rather than infinite growth. Results follow the first-seen order of
// categories in the target month, keeping output deterministic.
func DetectCategoryDrift(transactions []core.Transaction, target core.Month) []DriftInsight {
	current, order := categoryTotalsFor(transactions, target)
	prev, _ := categoryTotalsFor(transactions, target.Prev())

	var out []DriftInsight
	for _, cat := range order {
		prevTotal := prev[cat]
		if prevTotal.Cents <= 0 {
			continue
		}
		curTotal := current[cat]
		increase := (curTotal.Float() - prevTotal.Float()) / prevTotal.Float() * 100
		if increase > driftThresholdPercent {
			out = append(out, DriftInsight{
				Category: cat,
				Label:    core.CategoryLabel(cat),
				Percent:  int(math.Round(increase)),
				Current:  curTotal,
				Prev:     prevTotal,
			})
		}
	}
	return out
}

// categoryTotalsFor sums expenses per category for one calendar month. The
// returned order slice preserves insertion order of first occurrence, which
// downstream code relies on for deterministic iteration.
func categoryTotalsFor(transactions []core.Transaction, month core.Month) (map[string]core.Money, []string) {
	totals := make(map[string]core.Money)
	var order []string
	for _, tx := range transactions {
		if !tx.IsExpense() || !month.Contains(tx.Date) {
			continue
		}
		if _, seen := totals[tx.Category]; !seen {
			order = append(order, tx.Category)
		}
		totals[tx.Category] = core.Money{Cents: totals[tx.Category].Cents + tx.Amount.Cents}
	}
	return totals, order
}
