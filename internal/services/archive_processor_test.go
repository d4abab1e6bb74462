package services

import (
	"context"
	"testing"
	"time"

	"github.com/Charan170903/expense-tracker/internal/core"
	"github.com/Charan170903/expense-tracker/internal/insights"
	"github.com/Charan170903/expense-tracker/internal/source/memory"
)

func TestArchiveProcessorRunOnce(t *testing.T) {
	nov := func(d int) core.Date { return core.NewDate(2024, time.November, d) }
	store := memory.New([]core.Transaction{
		// November 2024: income 1000, expenses 950, savings rate 5%.
		seedTx("1", "Salary", 1000, core.Income, "other", nov(1)),
		seedTx("2", "Groceries", 500, core.Expense, "food", nov(8)),
		seedTx("3", "Fuel", 450, core.Expense, "transport", nov(12)),
		// A recurring pair for detection persistence.
		seedTx("4", "Netflix", 499, core.Expense, "entertainment", nov(5)),
		seedTx("5", "Netflix", 499, core.Expense, "entertainment", core.NewDate(2024, time.December, 5)),
	})

	proc := NewArchiveProcessor(store, store, insights.NewArchivist(store), DefaultArchiveProcessorConfig())
	ctx := context.Background()

	if err := proc.RunOnce(ctx, testNow); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	// Detection was persisted.
	txs, _ := store.ListTransactions(ctx)
	detected := 0
	for _, tx := range txs {
		if tx.SubscriptionStatus == core.StatusDetected {
			detected++
		}
	}
	if detected != 2 {
		t.Errorf("persisted detections = %d, want 2", detected)
	}

	// Both closed months got anchors: November at a 5% savings rate and
	// December with expenses but no income, both consequence months.
	anchors, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(anchors) != 2 {
		t.Fatalf("got %d anchors, want 2", len(anchors))
	}
	a := anchors[0]
	if a.Period != (core.Month{Year: 2024, Month: time.November}) || a.Kind != core.AnchorConsequence {
		t.Errorf("anchor = %+v, want a November consequence", a)
	}
	if a.Trigger.Category != "food" {
		t.Errorf("trigger category = %q, want food", a.Trigger.Category)
	}
	if anchors[1].Trigger.Category != "entertainment" {
		t.Errorf("december trigger category = %q, want entertainment", anchors[1].Trigger.Category)
	}

	// Re-running changes nothing.
	if err := proc.RunOnce(ctx, testNow); err != nil {
		t.Fatalf("second RunOnce: %v", err)
	}
	anchors, _ = store.Load(ctx)
	if len(anchors) != 2 {
		t.Errorf("got %d anchors after re-run, want 2", len(anchors))
	}
}

func TestArchiveProcessorLifecycle(t *testing.T) {
	store := memory.New(nil)
	proc := NewArchiveProcessor(store, store, insights.NewArchivist(store), ArchiveProcessorConfig{Interval: time.Hour})
	ctx := context.Background()

	if err := proc.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !proc.IsRunning() {
		t.Error("processor should report running after Start")
	}
	if err := proc.Start(ctx); err == nil {
		t.Error("second Start should fail")
	}

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := proc.Stop(stopCtx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if proc.IsRunning() {
		t.Error("processor should not report running after Stop")
	}
}
