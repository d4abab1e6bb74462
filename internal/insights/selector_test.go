package insights

import (
	"testing"
	"time"

	"github.com/Charan170903/expense-tracker/internal/core"
)

var (
	selectNow   = time.Date(2025, time.January, 15, 18, 30, 0, 0, time.UTC)
	selectMonth = core.Month{Year: 2025, Month: time.January}
)

func TestSelectDailyInsightEmptySnapshot(t *testing.T) {
	got := SelectDailyInsight(nil, nil, nil, selectMonth, selectNow)
	if got.Type != InsightTip {
		t.Fatalf("type = %q, want tip", got.Type)
	}
	if got.Message != DailyTip(selectNow) {
		t.Errorf("message = %q, want the daily tip", got.Message)
	}
	// Selection is deterministic for a fixed date and snapshot.
	again := SelectDailyInsight(nil, nil, nil, selectMonth, selectNow)
	if got != again {
		t.Errorf("repeated call returned %+v, want %+v", again, got)
	}
}

func TestSelectDailyInsightSubscriptionOutranksDriftAndLeak(t *testing.T) {
	sub := core.Transaction{
		ID:                 "s",
		Title:              "Netflix",
		Amount:             core.UnitsOf(499),
		Type:               core.Expense,
		Category:           "entertainment",
		Date:               core.NewDate(2025, time.January, 14),
		CreatedAt:          selectNow.Add(-24 * time.Hour),
		SubscriptionStatus: core.StatusDetected,
	}
	drift := []DriftInsight{{Category: "food", Label: "Food & Dining", Percent: 45}}
	leak := &MicroLeakInsight{Window: LeakWeekly, Total: core.UnitsOf(600), Count: 6, Message: "leak message"}

	got := SelectDailyInsight(drift, leak, []core.Transaction{sub}, selectMonth, selectNow)
	if got.Type != InsightSubscription {
		t.Errorf("type = %q, want subscription", got.Type)
	}
}

func TestSelectDailyInsightStaleSubscriptionIsIgnored(t *testing.T) {
	sub := core.Transaction{
		ID:                 "s",
		Title:              "Netflix",
		Amount:             core.UnitsOf(499),
		Type:               core.Expense,
		Category:           "entertainment",
		Date:               core.NewDate(2024, time.December, 1),
		CreatedAt:          selectNow.Add(-10 * 24 * time.Hour),
		SubscriptionStatus: core.StatusConfirmed,
	}
	got := SelectDailyInsight(nil, nil, []core.Transaction{sub}, selectMonth, selectNow)
	if got.Type != InsightTip {
		t.Errorf("type = %q, want tip when activity is older than a week", got.Type)
	}
}

func TestSelectDailyInsightSteepDeclineOutranksSubscription(t *testing.T) {
	prevDay := core.NewDate(2024, time.December, 10)
	curDay := core.NewDate(2025, time.January, 10)
	txs := []core.Transaction{
		{ID: "i1", Title: "Salary", Amount: core.UnitsOf(1000), Type: core.Income, Category: "other", Date: prevDay},
		catExpense("food", 500, prevDay), // prev rate 50%
		{ID: "i2", Title: "Salary", Amount: core.UnitsOf(1000), Type: core.Income, Category: "other", Date: curDay},
		catExpense("food", 850, curDay), // current rate 15%, delta 35
		{
			ID: "s", Title: "Netflix", Amount: core.UnitsOf(499), Type: core.Expense,
			Category: "entertainment", Date: curDay,
			CreatedAt: selectNow.Add(-time.Hour), SubscriptionStatus: core.StatusDetected,
		},
	}

	got := SelectDailyInsight(nil, nil, txs, selectMonth, selectNow)
	if got.Type != InsightDecline {
		t.Errorf("type = %q, want decline (70 + 35 delta outranks 80)", got.Type)
	}
}

func TestSelectDailyInsightLeakVersusDrift(t *testing.T) {
	// Leak at 50 + min(20, 600/100) = 56; drift at 40 + 45/5 = 49.
	drift := []DriftInsight{{Category: "food", Label: "Food & Dining", Percent: 45}}
	leak := &MicroLeakInsight{Window: LeakWeekly, Total: core.UnitsOf(600), Count: 6, Message: "leak message"}

	got := SelectDailyInsight(drift, leak, nil, selectMonth, selectNow)
	if got.Type != InsightLeak {
		t.Errorf("type = %q, want leak", got.Type)
	}
	if got.Message != "leak message" {
		t.Errorf("message = %q, want the leak's own message", got.Message)
	}
}

func TestSelectDailyInsightLeakSeverityFloorsRawTotal(t *testing.T) {
	// 599.50 units floors to severity 5 (leak priority 55), not the rounded
	// 600 (severity 6), so a drift at 40 + 80/5 = 56 outranks it.
	drift := []DriftInsight{{Category: "food", Label: "Food & Dining", Percent: 80}}
	leak := &MicroLeakInsight{Window: LeakWeekly, Total: core.Money{Cents: 59950}, Count: 6, Message: "Averaging small costs adds up"}

	got := SelectDailyInsight(drift, leak, nil, selectMonth, selectNow)
	if got.Type != InsightDrift {
		t.Errorf("type = %q, want drift to outrank the leak", got.Type)
	}
}

func TestSelectDailyInsightDriftMessage(t *testing.T) {
	drift := []DriftInsight{{Category: "food", Label: "Food & Dining", Percent: 45}}
	got := SelectDailyInsight(drift, nil, nil, selectMonth, selectNow)
	if got.Type != InsightDrift {
		t.Fatalf("type = %q, want drift", got.Type)
	}
	want := "Food & Dining spending is up by 45% this month. Monitor this trend closely."
	if got.Message != want {
		t.Errorf("message = %q, want %q", got.Message, want)
	}
}

func TestSelectDailyInsightTieBreaksOnMessage(t *testing.T) {
	// Two drifts with equal percent share a priority; the lexicographically
	// smaller message wins.
	drift := []DriftInsight{
		{Category: "transport", Label: "Transportation", Percent: 40},
		{Category: "food", Label: "Food & Dining", Percent: 40},
	}
	got := SelectDailyInsight(drift, nil, nil, selectMonth, selectNow)
	want := "Food & Dining spending is up by 40% this month. Monitor this trend closely."
	if got.Message != want {
		t.Errorf("message = %q, want the lexicographically first of the tied pair", got.Message)
	}
}

func TestDailyTip(t *testing.T) {
	// 2025 + 1 + 15 = 2041, 2041 % 10 = 1.
	if got, want := DailyTip(selectNow), financialTips[1]; got != want {
		t.Errorf("tip = %q, want %q", got, want)
	}
	// Stable across the whole day regardless of clock time.
	evening := time.Date(2025, time.January, 15, 23, 59, 0, 0, time.UTC)
	if DailyTip(selectNow) != DailyTip(evening) {
		t.Error("tip changed within a single day")
	}
	// Different dates rotate.
	next := time.Date(2025, time.January, 16, 0, 0, 0, 0, time.UTC)
	if DailyTip(selectNow) == DailyTip(next) {
		t.Error("tip did not rotate to the next day")
	}
}

func TestPeriodSavingsRate(t *testing.T) {
	day := core.NewDate(2025, time.January, 10)
	txs := []core.Transaction{
		{ID: "i", Title: "Salary", Amount: core.UnitsOf(1000), Type: core.Income, Category: "other", Date: day},
		catExpense("food", 250, day),
	}
	if got := PeriodSavingsRate(txs, selectMonth); got != 75 {
		t.Errorf("rate = %v, want 75", got)
	}
	if got := PeriodSavingsRate(nil, selectMonth); got != 0 {
		t.Errorf("rate with no income = %v, want 0", got)
	}
}
