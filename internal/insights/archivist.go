package insights

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/Charan170903/expense-tracker/internal/core"
)

// Savings-rate bands for anchor derivation, in percent. A closed month below
// the consequence ceiling or above the positive floor yields an anchor;
// months in between leave no trace.
const (
	consequenceRateCeiling = 10.0
	positiveRateFloor      = 25.0

	consequenceThresholdFactor = 0.9
	positiveThresholdFactor    = 1.5
)

// AnchorStore is the persistence port for the memory-anchor list. The whole
// list is read and written as a unit; Save must be all-or-nothing so a failed
// write never leaves a truncated list behind.
type AnchorStore interface {
	Load(ctx context.Context) ([]core.MemoryAnchor, error)
	Save(ctx context.Context, anchors []core.MemoryAnchor) error
}

// Archivist derives memory anchors from closed historical months and owns the
// anchor store's read-modify-write cycle.
type Archivist struct {
	store AnchorStore
}

func NewArchivist(store AnchorStore) *Archivist {
	return &Archivist{store: store}
}

// Archive scans every calendar month present in the snapshot, excluding the
// month containing now (open periods are never archived), and derives an
// anchor for each month that has none yet: a consequence anchor when the
// savings rate fell below 10% and a positive anchor when it exceeded 25%,
// both keyed to the month's dominant expense category.
//
// The operation is idempotent: re-running it over an unchanged snapshot adds
// no anchors and performs no store write. A store read failure degrades to an
// empty list rather than propagating.
func (a *Archivist) Archive(ctx context.Context, transactions []core.Transaction, now time.Time) ([]core.MemoryAnchor, error) {
	anchors, err := a.store.Load(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Failed to load memory anchors, starting from empty list", "error", err)
		anchors = nil
	}

	currentMonth := core.MonthOf(now)
	updated := false

	for _, month := range distinctMonths(transactions) {
		if month == currentMonth || core.HasAnchorFor(anchors, month) {
			continue
		}
		if anchor, ok := deriveAnchor(transactions, month); ok {
			anchors = append(anchors, anchor)
			updated = true
			slog.InfoContext(ctx, "Derived memory anchor",
				"period", month.Label(),
				"kind", string(anchor.Kind),
				"category", anchor.Trigger.Category,
				"threshold_cents", anchor.Trigger.ThresholdCents)
		}
	}

	if updated {
		if err := a.store.Save(ctx, anchors); err != nil {
			return anchors, fmt.Errorf("save memory anchors: %w", err)
		}
	}
	return anchors, nil
}

// MatchAnchor checks the period-filtered snapshot against anchor thresholds
// and returns the insight of the first anchor whose trigger category's
// current expense total meets its threshold. Anchors are walked newest-first
// so recent history takes precedence when several thresholds are exceeded.
func MatchAnchor(transactions []core.Transaction, anchors []core.MemoryAnchor) (string, bool) {
	if len(anchors) == 0 {
		return "", false
	}

	totals := make(map[string]int64)
	for _, tx := range transactions {
		if tx.IsExpense() {
			totals[tx.Category] += tx.Amount.Cents
		}
	}

	for i := len(anchors) - 1; i >= 0; i-- {
		trigger := anchors[i].Trigger
		if totals[trigger.Category] >= trigger.ThresholdCents {
			return anchors[i].Insight, true
		}
	}
	return "", false
}

// deriveAnchor computes one month's income/expense balance and dominant
// expense category. Ties on the dominant category keep the first-seen one.
func deriveAnchor(transactions []core.Transaction, month core.Month) (core.MemoryAnchor, bool) {
	var incomeCents, expenseCents int64
	totals, order := categoryTotalsFor(transactions, month)
	for _, tx := range transactions {
		if !month.Contains(tx.Date) {
			continue
		}
		if tx.Type == core.Income {
			incomeCents += tx.Amount.Cents
		} else {
			expenseCents += tx.Amount.Cents
		}
	}

	rate := 0.0
	if incomeCents > 0 {
		rate = float64(incomeCents-expenseCents) / float64(incomeCents) * 100
	}

	var maxCategory string
	var maxAmount core.Money
	for _, cat := range order {
		if totals[cat].Cents > maxAmount.Cents {
			maxAmount = totals[cat]
			maxCategory = cat
		}
	}
	if maxCategory == "" {
		return core.MemoryAnchor{}, false
	}

	label := core.CategoryLabel(maxCategory)
	switch {
	case rate < consequenceRateCeiling:
		return core.MemoryAnchor{
			Period: month,
			Kind:   core.AnchorConsequence,
			Trigger: core.AnchorTrigger{
				Category:       maxCategory,
				ThresholdCents: maxAmount.Scale(consequenceThresholdFactor).Cents,
			},
			Insight: fmt.Sprintf("In %s, high %s spending contributed to a savings rate drop to %d%%.",
				month.Label(), label, int(math.Round(rate))),
		}, true
	case rate > positiveRateFloor:
		return core.MemoryAnchor{
			Period: month,
			Kind:   core.AnchorPositive,
			Trigger: core.AnchorTrigger{
				Category:       maxCategory,
				ThresholdCents: maxAmount.Scale(positiveThresholdFactor).Cents,
			},
			Insight: fmt.Sprintf("In %s, maintaining %s at %s enabled a %d%% savings rate.",
				month.Label(), label, maxAmount.Display(), int(math.Round(rate))),
		}, true
	}
	return core.MemoryAnchor{}, false
}

// distinctMonths lists the calendar months present in the snapshot, in
// first-seen order.
func distinctMonths(transactions []core.Transaction) []core.Month {
	var out []core.Month
	seen := make(map[core.Month]struct{})
	for _, tx := range transactions {
		m := core.MonthOf(tx.Date.Time)
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}
