package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	StatusNone      SubscriptionStatus = ""
	StatusDetected  SubscriptionStatus = "detected"
	StatusConfirmed SubscriptionStatus = "confirmed"
	StatusDismissed SubscriptionStatus = "dismissed"
)

type (
	TransactionType string

	// SubscriptionStatus tracks the recurring-payment lifecycle of a single
	// transaction. The zero value means the detector has never flagged it.
	SubscriptionStatus string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is one income or expense event as supplied by the external
	// transaction source. Date is the occurrence date; CreatedAt is when the
	// record was entered, which can differ (e.g. backfilled history).
	Transaction struct {
		ID                 string
		Title              string
		Amount             Money
		Type               TransactionType
		Category           string // lowercase slug, normalized at the source boundary
		Date               Date
		CreatedAt          time.Time
		SubscriptionStatus SubscriptionStatus
		ContextTag         string
	}
)

var (
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidType       = errors.New("invalid transaction type")
	ErrEmptyTitle        = errors.New("empty title")
	ErrEmptyCategory     = errors.New("empty category")
	ErrInvalidTransition = errors.New("invalid subscription status transition")
)

func (t TransactionType) IsValid() bool {
	return t == Income || t == Expense
}

func (s SubscriptionStatus) IsValid() bool {
	switch s {
	case StatusNone, StatusDetected, StatusConfirmed, StatusDismissed:
		return true
	}
	return false
}

// IsTerminal reports whether user action has settled this transaction's
// recurring classification. The detector must never re-flag a terminal one.
func (s SubscriptionStatus) IsTerminal() bool {
	return s == StatusConfirmed || s == StatusDismissed
}

// CanTransitionTo enforces the only legal status transitions:
// none -> detected (detector) and detected -> confirmed|dismissed (user).
func (s SubscriptionStatus) CanTransitionTo(next SubscriptionStatus) bool {
	switch s {
	case StatusNone:
		return next == StatusDetected
	case StatusDetected:
		return next == StatusConfirmed || next == StatusDismissed
	}
	return false
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// NewDate creates a Date at UTC midnight for year, month, day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its UTC calendar date.
func DateOf(t time.Time) Date {
	u := t.UTC()
	return NewDate(u.Year(), u.Month(), u.Day())
}

// DaysBetween returns the whole calendar days from a to b (negative when b is
// earlier). Both operands are UTC midnights, so the division is exact.
func DaysBetween(a, b Date) int {
	return int(b.Sub(a.Time) / (24 * time.Hour))
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Validate checks transaction content. The ID is deliberately not checked:
// sources assign ids on append, so a transaction may be validated before it
// has one.
func (t Transaction) Validate() error {
	if len(strings.TrimSpace(t.Title)) == 0 {
		return ErrEmptyTitle
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Type.IsValid() {
		return ErrInvalidType
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if !t.SubscriptionStatus.IsValid() {
		return ErrInvalidTransition
	}
	return nil
}

// IsExpense is a convenience used throughout the heuristics.
func (t Transaction) IsExpense() bool {
	return t.Type == Expense
}

// categoryLabels maps canonical category slugs to their display names. Insight
// message text uses the label; everything else operates on the slug.
var categoryLabels = map[string]string{
	"food":          "Food & Dining",
	"transport":     "Transportation",
	"shopping":      "Shopping",
	"bills":         "Bills & Utilities",
	"entertainment": "Entertainment",
	"health":        "Healthcare",
	"education":     "Education",
	"other":         "Other",
}

// CategoryLabel returns the display label for a category slug, falling back to
// the slug itself for unknown categories.
func CategoryLabel(slug string) string {
	if label, ok := categoryLabels[slug]; ok {
		return label
	}
	return slug
}

// NormalizeCategory maps free-form category input to the canonical slug form.
func NormalizeCategory(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
