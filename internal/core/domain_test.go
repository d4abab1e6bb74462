package core

import (
	"testing"
	"time"
)

func validTransaction() Transaction {
	return Transaction{
		ID:        "tx-1",
		Title:     "Coffee",
		Amount:    UnitsOf(120),
		Type:      Expense,
		Category:  "food",
		Date:      NewDate(2025, time.March, 14),
		CreatedAt: time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC),
	}
}

func TestTransactionValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Transaction)
		wantErr error
	}{
		{
			name:   "valid transaction",
			mutate: func(*Transaction) {},
		},
		{
			name:    "empty title",
			mutate:  func(tx *Transaction) { tx.Title = "   " },
			wantErr: ErrEmptyTitle,
		},
		{
			name:    "zero amount",
			mutate:  func(tx *Transaction) { tx.Amount = Money{} },
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			mutate:  func(tx *Transaction) { tx.Amount = Money{Cents: -500} },
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "unknown type",
			mutate:  func(tx *Transaction) { tx.Type = "transfer" },
			wantErr: ErrInvalidType,
		},
		{
			name:    "empty category",
			mutate:  func(tx *Transaction) { tx.Category = "" },
			wantErr: ErrEmptyCategory,
		},
		{
			name:    "zero date",
			mutate:  func(tx *Transaction) { tx.Date = Date{} },
			wantErr: ErrInvalidDate,
		},
		{
			name:    "unknown subscription status",
			mutate:  func(tx *Transaction) { tx.SubscriptionStatus = "maybe" },
			wantErr: ErrInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validTransaction()
			tt.mutate(&tx)
			if err := tx.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSubscriptionStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from SubscriptionStatus
		to   SubscriptionStatus
		want bool
	}{
		{"none to detected", StatusNone, StatusDetected, true},
		{"none to confirmed", StatusNone, StatusConfirmed, false},
		{"detected to confirmed", StatusDetected, StatusConfirmed, true},
		{"detected to dismissed", StatusDetected, StatusDismissed, true},
		{"detected back to none", StatusDetected, StatusNone, false},
		{"confirmed is terminal", StatusConfirmed, StatusDismissed, false},
		{"dismissed is terminal", StatusDismissed, StatusDetected, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo(%q -> %q) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name string
		a, b Date
		want int
	}{
		{"same day", NewDate(2025, time.January, 15), NewDate(2025, time.January, 15), 0},
		{"thirty days", NewDate(2025, time.January, 1), NewDate(2025, time.January, 31), 30},
		{"across month boundary", NewDate(2025, time.January, 31), NewDate(2025, time.March, 2), 30},
		{"reversed is negative", NewDate(2025, time.February, 10), NewDate(2025, time.February, 3), -7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysBetween(tt.a, tt.b); got != tt.want {
				t.Errorf("DaysBetween() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCategoryLabel(t *testing.T) {
	if got := CategoryLabel("food"); got != "Food & Dining" {
		t.Errorf("CategoryLabel(food) = %q, want %q", got, "Food & Dining")
	}
	// Unknown slugs pass through untouched.
	if got := CategoryLabel("cryptids"); got != "cryptids" {
		t.Errorf("CategoryLabel(cryptids) = %q, want %q", got, "cryptids")
	}
}
