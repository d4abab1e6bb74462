package insights

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/Charan170903/expense-tracker/internal/core"
)

const (
	InsightSubscription InsightType = "subscription"
	InsightDecline      InsightType = "decline"
	InsightLeak         InsightType = "leak"
	InsightDrift        InsightType = "drift"
	InsightTip          InsightType = "tip"
)

type (
	InsightType string

	// Insight is the single ranked message surfaced on the dashboard.
	Insight struct {
		Type    InsightType `json:"type"`
		Message string      `json:"message"`

		priority float64
	}
)

// Fixed candidate priorities. The variable components are bounded so classes
// cannot leapfrog each other arbitrarily: a leak caps at 70, a drift at
// 40 + percent/5.
const (
	prioritySubscription = 80.0
	priorityDeclineBase  = 70.0
	priorityLeakBase     = 50.0
	priorityLeakCap      = 20.0
	priorityDriftBase    = 40.0
	priorityTip          = 10.0
)

// recentSubscriptionWindow bounds how far back subscription activity counts
// as news worth surfacing.
const recentSubscriptionWindow = 7 * 24 * time.Hour

// SelectDailyInsight merges the detector outputs with a deterministic daily
// tip and returns the single highest-priority candidate. Ties are broken by
// lexicographic order of the message text, so the result is fully determined
// by its inputs and the calendar date. The tip is always a candidate, so a
// non-nil insight is returned even for an empty snapshot.
func SelectDailyInsight(drift []DriftInsight, leak *MicroLeakInsight, transactions []core.Transaction, month core.Month, now time.Time) Insight {
	var candidates []Insight

	if hasRecentSubscriptionActivity(transactions, now) {
		candidates = append(candidates, Insight{
			Type:     InsightSubscription,
			Message:  `New subscription activity detected recently. Periodic review prevents "zombie" costs.`,
			priority: prioritySubscription,
		})
	}

	currentRate := periodSavingsRate(transactions, month)
	prevRate := periodSavingsRate(transactions, month.Prev())
	if currentRate < prevRate-5 {
		candidates = append(candidates, Insight{
			Type:     InsightDecline,
			Message:  "Savings rate is down compared to last month. Consider a quick audit of non-essential costs.",
			priority: priorityDeclineBase + (prevRate - currentRate),
		})
	}

	if leak != nil {
		// Floor the raw total so a fractional-unit remainder never bumps
		// the severity step.
		severity := math.Min(priorityLeakCap, math.Floor(leak.Total.Float()/100))
		candidates = append(candidates, Insight{
			Type:     InsightLeak,
			Message:  leak.Message,
			priority: priorityLeakBase + severity,
		})
	}

	for _, d := range drift {
		candidates = append(candidates, Insight{
			Type:     InsightDrift,
			Message:  fmt.Sprintf("%s spending is up by %d%% this month. Monitor this trend closely.", d.Label, d.Percent),
			priority: priorityDriftBase + math.Floor(float64(d.Percent)/5),
		})
	}

	candidates = append(candidates, Insight{
		Type:     InsightTip,
		Message:  DailyTip(now),
		priority: priorityTip,
	})

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].priority != candidates[j].priority {
			return candidates[i].priority > candidates[j].priority
		}
		return candidates[i].Message < candidates[j].Message
	})
	return candidates[0]
}

// PeriodSavingsRate exposes the savings rate for one calendar month as a
// percentage; 0 when the month has no income.
func PeriodSavingsRate(transactions []core.Transaction, month core.Month) float64 {
	return periodSavingsRate(transactions, month)
}

func periodSavingsRate(transactions []core.Transaction, month core.Month) float64 {
	var incomeCents, expenseCents int64
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
	if incomeCents <= 0 {
		return 0
	}
	return float64(incomeCents-expenseCents) / float64(incomeCents) * 100
}

// hasRecentSubscriptionActivity reports whether any recurring transaction
// (detected or user-confirmed) was recorded within the last seven days.
// Record creation time is what matters here, not the occurrence date: a
// backfilled old payment entered yesterday is still news.
func hasRecentSubscriptionActivity(transactions []core.Transaction, now time.Time) bool {
	cutoff := now.Add(-recentSubscriptionWindow)
	for _, tx := range transactions {
		status := tx.SubscriptionStatus
		if (status == core.StatusConfirmed || status == core.StatusDetected) && tx.CreatedAt.After(cutoff) {
			return true
		}
	}
	return false
}
