package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Charan170903/expense-tracker/internal/core"
	"github.com/Charan170903/expense-tracker/internal/source"
)

// Store is an in-memory transaction source with an embedded anchor list.
// It backs local development and tests; nothing is persisted across restarts.
type Store struct {
	mu      sync.Mutex
	items   []core.Transaction
	anchors []core.MemoryAnchor
	nextID  int
}

func New(transactions []core.Transaction) *Store {
	s := &Store{items: append([]core.Transaction(nil), transactions...)}
	s.nextID = len(s.items) + 1
	return s
}

// NewFromFiles seeds the store from seed_transactions.json under base,
// falling back to a small built-in ledger when the file is missing or
// unreadable.
func NewFromFiles(base string) *Store {
	txs := readSeedFile(filepath.Join(base, "seed_transactions.json"))
	if len(txs) == 0 {
		txs = sampleLedger()
	}
	return New(txs)
}

func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, len(s.items))
	copy(out, s.items)
	return out, nil
}

// Append stores the transaction and returns a synthetic id.
func (s *Store) Append(_ context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if tx.ID == "" {
		tx.ID = fmt.Sprintf("mem:%d", s.nextID)
	}
	s.nextID++
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}
	tx.Category = core.NormalizeCategory(tx.Category)
	s.items = append(s.items, tx)
	return tx.ID, nil
}

func (s *Store) UpdateSubscriptionStatus(_ context.Context, id string, status core.SubscriptionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID != id {
			continue
		}
		if !s.items[i].SubscriptionStatus.CanTransitionTo(status) {
			return fmt.Errorf("%w: %q -> %q", core.ErrInvalidTransition, s.items[i].SubscriptionStatus, status)
		}
		s.items[i].SubscriptionStatus = status
		return nil
	}
	return source.ErrNotFound
}

// Load returns the anchor list. Implements the archivist's store port.
func (s *Store) Load(_ context.Context) ([]core.MemoryAnchor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.MemoryAnchor, len(s.anchors))
	copy(out, s.anchors)
	return out, nil
}

// Save replaces the anchor list.
func (s *Store) Save(_ context.Context, anchors []core.MemoryAnchor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.anchors = append([]core.MemoryAnchor(nil), anchors...)
	return nil
}

// seedRecord is the on-disk seed format, one object per transaction.
type seedRecord struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Amount   string `json:"amount"` // decimal units, e.g. "499" or "499.50"
	Type     string `json:"type"`
	Category string `json:"category"`
	Date     string `json:"date"` // YYYY-MM-DD
	Created  string `json:"created_at,omitempty"`
	Status   string `json:"subscription_status,omitempty"`
	Context  string `json:"context,omitempty"`
}

func readSeedFile(path string) []core.Transaction {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var records []seedRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil
	}
	var out []core.Transaction
	for i, r := range records {
		tx, err := r.toTransaction(i + 1)
		if err != nil {
			continue
		}
		out = append(out, tx)
	}
	return out
}

func (r seedRecord) toTransaction(ordinal int) (core.Transaction, error) {
	day, err := time.Parse("2006-01-02", r.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse date %q: %w", r.Date, err)
	}
	cents, err := core.ParseDecimalToCents(r.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse amount %q: %w", r.Amount, err)
	}
	createdAt := day
	if r.Created != "" {
		if t, err := time.Parse(time.RFC3339, r.Created); err == nil {
			createdAt = t
		}
	}
	id := r.ID
	if id == "" {
		id = fmt.Sprintf("mem:%d", ordinal)
	}
	tx := core.Transaction{
		ID:                 id,
		Title:              r.Title,
		Amount:             core.Money{Cents: cents},
		Type:               core.TransactionType(r.Type),
		Category:           core.NormalizeCategory(r.Category),
		Date:               core.DateOf(day),
		CreatedAt:          createdAt,
		SubscriptionStatus: core.SubscriptionStatus(r.Status),
		ContextTag:         r.Context,
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

// sampleLedger covers two months of plausible activity so an empty dev
// environment still renders insights.
func sampleLedger() []core.Transaction {
	now := time.Now().UTC()
	thisMonth := core.MonthOf(now)
	lastMonth := thisMonth.Prev()

	mk := func(ordinal int, title string, units int64, typ core.TransactionType, category string, date core.Date) core.Transaction {
		return core.Transaction{
			ID:        fmt.Sprintf("mem:%d", ordinal),
			Title:     title,
			Amount:    core.UnitsOf(units),
			Type:      typ,
			Category:  category,
			Date:      date,
			CreatedAt: date.Time,
		}
	}
	prevDay := func(d int) core.Date { return core.NewDate(lastMonth.Year, lastMonth.Month, d) }
	curDay := func(d int) core.Date { return core.NewDate(thisMonth.Year, thisMonth.Month, d) }

	return []core.Transaction{
		mk(1, "Salary", 50000, core.Income, "other", prevDay(1)),
		mk(2, "Rent", 15000, core.Expense, "bills", prevDay(2)),
		mk(3, "Groceries", 4200, core.Expense, "food", prevDay(8)),
		mk(4, "Netflix", 499, core.Expense, "entertainment", prevDay(5)),
		mk(5, "Fuel", 1800, core.Expense, "transport", prevDay(14)),
		mk(6, "Salary", 50000, core.Income, "other", curDay(1)),
		mk(7, "Rent", 15000, core.Expense, "bills", curDay(2)),
		mk(8, "Groceries", 5600, core.Expense, "food", curDay(7)),
		mk(9, "Netflix", 499, core.Expense, "entertainment", curDay(5)),
		mk(10, "Coffee", 120, core.Expense, "food", curDay(9)),
	}
}
