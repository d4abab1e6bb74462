package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Charan170903/expense-tracker/internal/core"
	"github.com/Charan170903/expense-tracker/internal/source"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

// SQLiteRepository is the durable transaction source and anchor store.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ListTransactions implements source.TransactionReader.
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, amount_cents, type, category, occurred_on, created_at, subscription_status, context_tag
		FROM transactions
		ORDER BY occurred_on, id`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			id         int64
			tx         core.Transaction
			occurredOn string
			createdAt  string
		)
		if err := rows.Scan(&id, &tx.Title, &tx.Amount.Cents, &tx.Type, &tx.Category,
			&occurredOn, &createdAt, &tx.SubscriptionStatus, &tx.ContextTag); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		day, err := time.Parse(dateLayout, occurredOn)
		if err != nil {
			return nil, fmt.Errorf("parse occurred_on %q: %w", occurredOn, err)
		}
		tx.ID = strconv.FormatInt(id, 10)
		tx.Date = core.DateOf(day)
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			tx.CreatedAt = t
		} else {
			tx.CreatedAt = day
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

// Append implements source.TransactionAppender.
func (r *SQLiteRepository) Append(ctx context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	createdAt := tx.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (title, amount_cents, type, category, occurred_on, created_at, subscription_status, context_tag)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.Title,
		tx.Amount.Cents,
		string(tx.Type),
		core.NormalizeCategory(tx.Category),
		tx.Date.Format(dateLayout),
		createdAt.UTC().Format(time.RFC3339),
		string(tx.SubscriptionStatus),
		tx.ContextTag)
	if err != nil {
		return "", fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", id,
		"title", tx.Title,
		"amount_cents", tx.Amount.Cents,
		"type", string(tx.Type),
		"category", tx.Category)

	return strconv.FormatInt(id, 10), nil
}

// UpdateSubscriptionStatus implements source.SubscriptionUpdater. The current
// status is read and the transition checked inside one transaction so
// concurrent updates cannot skip the lifecycle rules.
func (r *SQLiteRepository) UpdateSubscriptionStatus(ctx context.Context, id string, status core.SubscriptionStatus) error {
	rowID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %q", source.ErrNotFound, id)
	}

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	var current core.SubscriptionStatus
	err = dbTx.QueryRowContext(ctx,
		`SELECT subscription_status FROM transactions WHERE id = ?`, rowID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %q", source.ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("read subscription status: %w", err)
	}

	if !current.CanTransitionTo(status) {
		return fmt.Errorf("%w: %q -> %q", core.ErrInvalidTransition, current, status)
	}

	if _, err := dbTx.ExecContext(ctx,
		`UPDATE transactions SET subscription_status = ? WHERE id = ?`, string(status), rowID); err != nil {
		return fmt.Errorf("update subscription status: %w", err)
	}
	return dbTx.Commit()
}

// Load implements the archivist's anchor store port.
func (r *SQLiteRepository) Load(ctx context.Context) ([]core.MemoryAnchor, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT period, kind, trigger_category, threshold_cents, insight
		FROM memory_anchors
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load memory anchors: %w", err)
	}
	defer rows.Close()

	var out []core.MemoryAnchor
	for rows.Next() {
		var (
			a      core.MemoryAnchor
			period string
		)
		if err := rows.Scan(&period, &a.Kind, &a.Trigger.Category, &a.Trigger.ThresholdCents, &a.Insight); err != nil {
			return nil, fmt.Errorf("scan memory anchor: %w", err)
		}
		if a.Period, err = core.ParseMonth(period); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Save replaces the anchor list in one transaction, keeping the
// all-or-nothing contract of the store port.
func (r *SQLiteRepository) Save(ctx context.Context, anchors []core.MemoryAnchor) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	if _, err := dbTx.ExecContext(ctx, `DELETE FROM memory_anchors`); err != nil {
		return fmt.Errorf("clear memory anchors: %w", err)
	}
	for _, a := range anchors {
		if err := a.Validate(); err != nil {
			return err
		}
		if _, err := dbTx.ExecContext(ctx, `
			INSERT INTO memory_anchors (period, kind, trigger_category, threshold_cents, insight)
			VALUES (?, ?, ?, ?, ?)`,
			a.Period.Label(), string(a.Kind), a.Trigger.Category, a.Trigger.ThresholdCents, a.Insight); err != nil {
			return fmt.Errorf("insert memory anchor: %w", err)
		}
	}
	return dbTx.Commit()
}
