package insights

import (
	"testing"
	"time"

	"github.com/Charan170903/expense-tracker/internal/core"
)

func catExpense(category string, units int64, date core.Date) core.Transaction {
	return core.Transaction{
		ID:       date.Format("20060102") + category,
		Title:    category,
		Amount:   core.UnitsOf(units),
		Type:     core.Expense,
		Category: category,
		Date:     date,
	}
}

func TestDetectCategoryDrift(t *testing.T) {
	target := core.Month{Year: 2025, Month: time.February}
	prevDay := core.NewDate(2025, time.January, 10)
	curDay := core.NewDate(2025, time.February, 10)

	tests := []struct {
		name         string
		transactions []core.Transaction
		want         []DriftInsight
	}{
		{
			name: "forty percent increase is flagged",
			transactions: []core.Transaction{
				catExpense("food", 100, prevDay),
				catExpense("food", 140, curDay),
			},
			want: []DriftInsight{{
				Category: "food",
				Label:    "Food & Dining",
				Percent:  40,
				Current:  core.UnitsOf(140),
				Prev:     core.UnitsOf(100),
			}},
		},
		{
			name: "twenty five percent stays quiet",
			transactions: []core.Transaction{
				catExpense("food", 100, prevDay),
				catExpense("food", 125, curDay),
			},
			want: nil,
		},
		{
			name: "exactly thirty percent stays quiet",
			transactions: []core.Transaction{
				catExpense("food", 100, prevDay),
				catExpense("food", 130, curDay),
			},
			want: nil,
		},
		{
			name: "no prior month baseline means no signal",
			transactions: []core.Transaction{
				catExpense("shopping", 900, curDay),
			},
			want: nil,
		},
		{
			name: "percent is rounded",
			transactions: []core.Transaction{
				catExpense("transport", 300, prevDay),
				catExpense("transport", 394, curDay),
			},
			want: []DriftInsight{{
				Category: "transport",
				Label:    "Transportation",
				Percent:  31,
				Current:  core.UnitsOf(394),
				Prev:     core.UnitsOf(300),
			}},
		},
		{
			name: "income never contributes",
			transactions: []core.Transaction{
				catExpense("food", 100, prevDay),
				{ID: "i", Title: "Salary", Amount: core.UnitsOf(9000), Type: core.Income, Category: "food", Date: curDay},
				catExpense("food", 120, curDay),
			},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectCategoryDrift(tt.transactions, target)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d drifts, want %d (%v)", len(got), len(tt.want), got)
			}
			for i, want := range tt.want {
				if got[i] != want {
					t.Errorf("drift[%d] = %+v, want %+v", i, got[i], want)
				}
			}
		})
	}
}

func TestDetectCategoryDriftOrder(t *testing.T) {
	target := core.Month{Year: 2025, Month: time.February}
	prevDay := core.NewDate(2025, time.January, 10)
	curDay := core.NewDate(2025, time.February, 10)

	txs := []core.Transaction{
		catExpense("shopping", 100, curDay),
		catExpense("food", 200, curDay),
		catExpense("shopping", 50, prevDay),
		catExpense("food", 100, prevDay),
	}

	got := DetectCategoryDrift(txs, target)
	if len(got) != 2 {
		t.Fatalf("got %d drifts, want 2", len(got))
	}
	if got[0].Category != "shopping" || got[1].Category != "food" {
		t.Errorf("drift order = [%s %s], want first-seen [shopping food]", got[0].Category, got[1].Category)
	}
}
