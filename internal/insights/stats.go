package insights

import (
	"math"
	"time"

	"github.com/Charan170903/expense-tracker/internal/core"
)

const (
	RangeMonth       Range = "month"
	RangeThreeMonths Range = "3months"
	RangeSixMonths   Range = "6months"
	RangeYear        Range = "year"
	RangeAll         Range = "all"
)

const (
	ConfidenceStable    ConfidenceState = "stable"
	ConfidenceStretched ConfidenceState = "stretched"
	ConfidenceAttention ConfidenceState = "attention"
)

type (
	// Range selects the reporting window anchored at a month: the month
	// itself, a rolling multi-month window ending with it, or everything.
	Range string

	ConfidenceState string

	// PeriodSummary aggregates a filtered snapshot.
	PeriodSummary struct {
		Income      core.Money `json:"income"`
		Expense     core.Money `json:"expense"`
		Savings     core.Money `json:"savings"`
		SavingsRate int        `json:"savings_rate"` // rounded percent, 0 when no income
		Count       int        `json:"count"`
	}

	// EOMStatus flags the closing window of the current month.
	EOMStatus struct {
		DaysLeft  int  `json:"days_left"`
		IsLastDay bool `json:"is_last_day"`
	}

	// Confidence is a coarse 0-100 health score folded into three states.
	Confidence struct {
		State ConfidenceState `json:"state"`
		Text  string          `json:"text"`
	}
)

func (r Range) IsValid() bool {
	switch r {
	case RangeMonth, RangeThreeMonths, RangeSixMonths, RangeYear, RangeAll:
		return true
	}
	return false
}

// monthsBack returns how many extra months before the anchor the range spans.
func (r Range) monthsBack() int {
	switch r {
	case RangeThreeMonths:
		return 2
	case RangeSixMonths:
		return 5
	default:
		return 11
	}
}

// FilterByRange returns the transactions inside the window selected by anchor
// and rng. Rolling windows start at the first day of (anchor - n months) and
// end on the anchor month's last day.
func FilterByRange(transactions []core.Transaction, anchor core.Month, rng Range) []core.Transaction {
	switch rng {
	case RangeAll:
		out := make([]core.Transaction, len(transactions))
		copy(out, transactions)
		return out
	case RangeMonth:
		var out []core.Transaction
		for _, tx := range transactions {
			if anchor.Contains(tx.Date) {
				out = append(out, tx)
			}
		}
		return out
	default:
		start := anchor.AddMonths(-rng.monthsBack()).Start()
		end := anchor.End()
		var out []core.Transaction
		for _, tx := range transactions {
			if !tx.Date.Before(start) && !tx.Date.After(end) {
				out = append(out, tx)
			}
		}
		return out
	}
}

// Summarize computes income/expense/savings totals over a filtered snapshot.
func Summarize(transactions []core.Transaction) PeriodSummary {
	var incomeCents, expenseCents int64
	for _, tx := range transactions {
		if tx.Type == core.Income {
			incomeCents += tx.Amount.Cents
		} else {
			expenseCents += tx.Amount.Cents
		}
	}
	savings := incomeCents - expenseCents
	rate := 0
	if incomeCents > 0 {
		rate = int(math.Round(float64(savings) / float64(incomeCents) * 100))
	}
	return PeriodSummary{
		Income:      core.Money{Cents: incomeCents},
		Expense:     core.Money{Cents: expenseCents},
		Savings:     core.Money{Cents: savings},
		SavingsRate: rate,
		Count:       len(transactions),
	}
}

// ActiveSubscriptionCount counts transactions in the filtered snapshot whose
// recurring classification is live (detected or confirmed).
func ActiveSubscriptionCount(transactions []core.Transaction) int {
	n := 0
	for _, tx := range transactions {
		if tx.SubscriptionStatus == core.StatusConfirmed || tx.SubscriptionStatus == core.StatusDetected {
			n++
		}
	}
	return n
}

// NoSpendDays counts the calendar days without any expense inside the active
// window. For open periods the window end is capped at today; a window that
// has not started yet counts zero.
func NoSpendDays(filtered []core.Transaction, anchor core.Month, rng Range, now time.Time) int {
	today := core.DateOf(now)

	var start, end core.Date
	switch rng {
	case RangeMonth:
		start = core.DateOf(anchor.Start())
		end = core.DateOf(anchor.End())
	case RangeAll:
		if len(filtered) == 0 {
			return 0
		}
		earliest := filtered[0].Date
		for _, tx := range filtered[1:] {
			if tx.Date.Before(earliest.Time) {
				earliest = tx.Date
			}
		}
		start = earliest
		end = today
	default:
		start = core.DateOf(anchor.AddMonths(-rng.monthsBack()).Start())
		end = core.DateOf(anchor.End())
	}

	if end.After(today.Time) {
		end = today
	}
	if start.After(today.Time) {
		return 0
	}

	totalDays := core.DaysBetween(start, end) + 1
	expenseDates := make(map[core.Date]struct{})
	for _, tx := range filtered {
		if tx.IsExpense() {
			expenseDates[tx.Date] = struct{}{}
		}
	}
	if n := totalDays - len(expenseDates); n > 0 {
		return n
	}
	return 0
}

// EndOfMonthStatus reports the closing window (last seven days) of the
// anchor month, and only while that month is the current one.
func EndOfMonthStatus(anchor core.Month, now time.Time) *EOMStatus {
	if core.MonthOf(now) != anchor {
		return nil
	}
	daysLeft := anchor.Days() - now.UTC().Day() + 1
	if daysLeft <= 7 && daysLeft > 0 {
		return &EOMStatus{DaysLeft: daysLeft, IsLastDay: daysLeft == 1}
	}
	return nil
}

// ConfidenceScore derives a coarse spending-health state from three signals:
// the savings rate (up to 40 points), remaining runway against spend velocity
// for the current month (up to 30), and the last seven days' expense velocity
// against the period average (up to 30).
func ConfidenceScore(filtered []core.Transaction, anchor core.Month, rng Range, now time.Time) Confidence {
	if len(filtered) == 0 {
		return Confidence{State: ConfidenceStable, Text: "Position is currently stable"}
	}

	summary := Summarize(filtered)
	balance := summary.Savings.Float()
	today := now.UTC()
	isCurrentMonth := core.MonthOf(now) == anchor

	savingsScore := clamp(float64(summary.SavingsRate)*2, 0, 40)

	var totalExpense float64
	for _, tx := range filtered {
		if tx.IsExpense() {
			totalExpense += tx.Amount.Float()
		}
	}

	runwayScore := 20.0
	if isCurrentMonth && balance > 0 {
		daysLeft := anchor.Days() - today.Day() + 1
		dailyAllowable := balance / float64(daysLeft)
		avgDailySpend := totalExpense / float64(today.Day())
		if avgDailySpend == 0 {
			avgDailySpend = 1
		}
		runwayScore = clamp(dailyAllowable/avgDailySpend*15, 0, 30)
	} else if balance <= 0 {
		runwayScore = 0
	}

	recentCutoff := core.DateOf(now.AddDate(0, 0, -7))
	var recentTotal float64
	for _, tx := range filtered {
		if tx.IsExpense() && tx.Date.After(recentCutoff.Time) {
			recentTotal += tx.Amount.Float()
		}
	}
	recentDaily := recentTotal / 7

	var periodDays float64
	switch rng {
	case RangeMonth:
		periodDays = float64(today.Day())
	case RangeThreeMonths:
		periodDays = 90
	default:
		periodDays = 180
	}
	periodDaily := totalExpense / periodDays
	if periodDaily == 0 {
		periodDaily = 1
	}

	velocityScore := 30.0
	if recentDaily > periodDaily*1.5 {
		velocityScore = 0
	} else if recentDaily > periodDaily*1.2 {
		velocityScore = 15
	}

	total := savingsScore + runwayScore + velocityScore
	switch {
	case total >= 65:
		return Confidence{State: ConfidenceStable, Text: "Position is currently stable"}
	case total >= 35:
		return Confidence{State: ConfidenceStretched, Text: "Budget is slightly stretched"}
	default:
		return Confidence{State: ConfidenceAttention, Text: "Patterns require closer attention"}
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
