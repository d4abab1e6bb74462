package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Charan170903/expense-tracker/internal/core"
	"github.com/Charan170903/expense-tracker/internal/source"
	"github.com/Charan170903/expense-tracker/internal/source/google"
	"github.com/Charan170903/expense-tracker/internal/source/memory"
	"github.com/Charan170903/expense-tracker/internal/storage"
)

// CreateBackend constructs the backend named by the factory config.
func (f *Factory) CreateBackend(ctx context.Context) (*BackendResult, error) {
	if err := f.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid backend config: %w", err)
	}

	switch f.config.Type {
	case BackendMemory:
		return f.createMemoryBackend(ctx)
	case BackendSheets:
		return f.createSheetsBackend(ctx)
	case BackendSQLite:
		return f.createSQLiteBackend(ctx)
	default:
		return nil, fmt.Errorf("unknown backend type: %s", f.config.Type)
	}
}

func (f *Factory) createMemoryBackend(ctx context.Context) (*BackendResult, error) {
	store := memory.NewFromFiles(f.config.SeedDir)

	slog.InfoContext(ctx, "Memory backend created",
		"anchor_store_path", f.config.AnchorStorePath)

	return &BackendResult{
		Backend: &anchoredBackend{
			ledger:  store,
			anchors: storage.NewAnchorFile(f.config.AnchorStorePath),
		},
	}, nil
}

func (f *Factory) createSheetsBackend(ctx context.Context) (*BackendResult, error) {
	client, err := google.NewFromEnv(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}

	slog.InfoContext(ctx, "Sheets backend created",
		"anchor_store_path", f.config.AnchorStorePath)

	return &BackendResult{
		Backend: &anchoredBackend{
			ledger:  client,
			anchors: storage.NewAnchorFile(f.config.AnchorStorePath),
		},
	}, nil
}

func (f *Factory) createSQLiteBackend(ctx context.Context) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(f.config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite repository: %w", err)
	}

	slog.InfoContext(ctx, "SQLite backend created", "db_path", f.config.SQLiteDBPath)

	return &BackendResult{
		Backend: repo,
		Cleanup: repo.Close,
	}, nil
}

// ledgerPorts is the transaction-facing half of a backend.
type ledgerPorts interface {
	source.TransactionReader
	source.TransactionAppender
	source.SubscriptionUpdater
}

// anchoredBackend pairs a transaction source that has no durable
// anchor storage of its own with a file-based anchor store.
type anchoredBackend struct {
	ledger  ledgerPorts
	anchors *storage.AnchorFile
}

func (b *anchoredBackend) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return b.ledger.ListTransactions(ctx)
}

func (b *anchoredBackend) Append(ctx context.Context, tx core.Transaction) (string, error) {
	return b.ledger.Append(ctx, tx)
}

func (b *anchoredBackend) UpdateSubscriptionStatus(ctx context.Context, id string, status core.SubscriptionStatus) error {
	return b.ledger.UpdateSubscriptionStatus(ctx, id, status)
}

func (b *anchoredBackend) Load(ctx context.Context) ([]core.MemoryAnchor, error) {
	return b.anchors.Load(ctx)
}

func (b *anchoredBackend) Save(ctx context.Context, anchors []core.MemoryAnchor) error {
	return b.anchors.Save(ctx, anchors)
}
