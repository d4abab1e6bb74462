package insights

import (
	"fmt"
	"time"

	"github.com/Charan170903/expense-tracker/internal/core"
)

// Micro-leak bounds in cents: expenses of 50-200 whole units count as leaks,
// with alert floors at 500 units per week and 1500 per month.
const (
	microLeakMinCents    = 50 * 100
	microLeakMaxCents    = 200 * 100
	weeklyLeakFloorCents = 500 * 100
	monthlyLeakFloor     = 1500 * 100
)

const (
	LeakWeekly  LeakWindow = "weekly"
	LeakMonthly LeakWindow = "monthly"
)

type (
	LeakWindow string

	// MicroLeakInsight reports small, frequent expenses accumulating over the
	// current week or month. At most one is produced per evaluation.
	MicroLeakInsight struct {
		Window  LeakWindow `json:"window"`
		Total   core.Money `json:"total"`
		Count   int        `json:"count"`
		Message string     `json:"message"`
	}
)

// DetectMicroLeaks scans for accumulation of small expenses (50-200 units)
// relative to now. The weekly check (sum ≥ 500 from the start of the current
// calendar week, Sunday) takes priority over the monthly check (sum ≥ 1500
// from the start of the current calendar month); the two never combine into
// one report. Returns nil when neither floor is met.
func DetectMicroLeaks(transactions []core.Transaction, now time.Time) *MicroLeakInsight {
	today := core.DateOf(now)
	weekStart := startOfWeek(today)
	monthStart := core.NewDate(today.Year(), today.Month(), 1)

	var weeklyTotal, monthlyTotal int64
	var weeklyCount, monthlyCount int
	for _, tx := range transactions {
		if !tx.IsExpense() || tx.Amount.Cents < microLeakMinCents || tx.Amount.Cents > microLeakMaxCents {
			continue
		}
		if !tx.Date.Before(weekStart.Time) {
			weeklyTotal += tx.Amount.Cents
			weeklyCount++
		}
		if !tx.Date.Before(monthStart.Time) {
			monthlyTotal += tx.Amount.Cents
			monthlyCount++
		}
	}

	if weeklyTotal >= weeklyLeakFloorCents {
		total := core.Money{Cents: weeklyTotal}
		return &MicroLeakInsight{
			Window: LeakWeekly,
			Total:  total,
			Count:  weeklyCount,
			Message: fmt.Sprintf("You've spent %s on %d small purchases this week. These small leaks add up quickly.",
				total.Display(), weeklyCount),
		}
	}
	if monthlyTotal >= monthlyLeakFloor {
		total := core.Money{Cents: monthlyTotal}
		return &MicroLeakInsight{
			Window: LeakMonthly,
			Total:  total,
			Count:  monthlyCount,
			Message: fmt.Sprintf("Small daily expenses reached %s this month (%d items). Consider if some could be avoided.",
				total.Display(), monthlyCount),
		}
	}
	return nil
}

// startOfWeek returns the Sunday on or before d.
func startOfWeek(d core.Date) core.Date {
	return core.Date{Time: d.AddDate(0, 0, -int(d.Weekday()))}
}
