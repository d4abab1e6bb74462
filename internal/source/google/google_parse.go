package google

import (
	"fmt"
	"strings"
	"time"

	"github.com/Charan170903/expense-tracker/internal/core"
)

// parseLedger converts a values matrix (as returned by the Sheets API,
// starting at row 2) into transactions. It returns the parsed rows and the
// number of rows it had to skip.
func parseLedger(values [][]interface{}) ([]core.Transaction, int) {
	var out []core.Transaction
	skipped := 0
	for i, raw := range values {
		row := toStrings(raw)
		if isBlankRow(row) {
			continue
		}
		tx, err := parseLedgerRow(row, i+2)
		if err != nil {
			skipped++
			continue
		}
		out = append(out, tx)
	}
	return out, skipped
}

func parseLedgerRow(row []string, rowNum int) (core.Transaction, error) {
	day, err := time.Parse("2006-01-02", safeGet(row, 0))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("row %d: parse date: %w", rowNum, err)
	}
	cents, err := core.ParseDecimalToCents(safeGet(row, 2))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("row %d: parse amount: %w", rowNum, err)
	}

	createdAt := day
	if raw := safeGet(row, 6); raw != "" {
		if t, perr := time.Parse(time.RFC3339, raw); perr == nil {
			createdAt = t
		}
	}

	tx := core.Transaction{
		ID:                 rowID(rowNum),
		Title:              safeGet(row, 1),
		Amount:             core.Money{Cents: cents},
		Type:               core.TransactionType(safeGet(row, 3)),
		Category:           core.NormalizeCategory(safeGet(row, 4)),
		Date:               core.DateOf(day),
		CreatedAt:          createdAt,
		SubscriptionStatus: core.SubscriptionStatus(safeGet(row, 5)),
		ContextTag:         safeGet(row, 7),
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("row %d: %w", rowNum, err)
	}
	return tx, nil
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}

func toStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func safeGet(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
