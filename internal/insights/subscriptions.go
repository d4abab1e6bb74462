// Package insights implements the behavioral-insight heuristics: recurring
// payment detection, month-over-month category drift, micro-leak accumulation,
// memory anchors and the daily insight selector. Every function here is a pure
// computation over an immutable transaction snapshot; the only state in the
// package is the anchor store injected into the Archivist.
package insights

import (
	"sort"
	"strconv"
	"strings"

	"github.com/Charan170903/expense-tracker/internal/core"
)

// Monthly recurrence window: a gap of 27-33 days between consecutive
// occurrences counts as one month.
const (
	minMonthlyGapDays = 27
	maxMonthlyGapDays = 33
)

// DetectSubscriptions returns the IDs of expenses classified as recurring.
//
// Expenses are grouped by a fuzzy key (normalized title + exact amount);
// within a group of at least two, a single pair of consecutive occurrences
// 27-33 days apart marks the whole group. Transactions already confirmed or
// dismissed by the user are never re-flagged. Empty input yields an empty set.
func DetectSubscriptions(transactions []core.Transaction) map[string]struct{} {
	detected := make(map[string]struct{})
	groups := make(map[string][]core.Transaction)
	for _, tx := range transactions {
		if !tx.IsExpense() || tx.SubscriptionStatus.IsTerminal() {
			continue
		}
		key := groupKey(tx.Title, tx.Amount)
		groups[key] = append(groups[key], tx)
	}

	for _, group := range groups {
		if len(group) < 2 {
			continue
		}
		sorted := make([]core.Transaction, len(group))
		copy(sorted, group)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Date.Before(sorted[j].Date.Time)
		})

		recurring := false
		for i := 1; i < len(sorted); i++ {
			gap := core.DaysBetween(sorted[i-1].Date, sorted[i].Date)
			if gap >= minMonthlyGapDays && gap <= maxMonthlyGapDays {
				recurring = true
				break
			}
		}
		if recurring {
			for _, tx := range sorted {
				detected[tx.ID] = struct{}{}
			}
		}
	}

	return detected
}

// ApplyDetection returns a copy of the snapshot with newly detected
// transactions marked StatusDetected. Only transactions still at StatusNone
// are annotated; user-settled statuses are left untouched.
func ApplyDetection(transactions []core.Transaction) []core.Transaction {
	ids := DetectSubscriptions(transactions)
	out := make([]core.Transaction, len(transactions))
	copy(out, transactions)
	for i := range out {
		if _, ok := ids[out[i].ID]; ok && out[i].SubscriptionStatus == core.StatusNone {
			out[i].SubscriptionStatus = core.StatusDetected
		}
	}
	return out
}

// groupKey builds the fuzzy identity for a transaction: the title lower-cased,
// stripped of all non-alphanumeric characters and truncated to its first six
// characters, joined with the exact amount. Titles that normalize to the empty
// string still form a valid (if collision-prone) key.
//
// The normalization rule is load-bearing: any deviation silently changes
// grouping outcomes.
func groupKey(title string, amount core.Money) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
		if b.Len() == 6 {
			break
		}
	}
	return b.String() + "_" + strconv.FormatInt(amount.Cents, 10)
}
