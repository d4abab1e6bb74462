package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Charan170903/expense-tracker/internal/core"
	"github.com/Charan170903/expense-tracker/internal/insights"
	"github.com/Charan170903/expense-tracker/internal/log"
	"github.com/Charan170903/expense-tracker/internal/source"
)

// ArchiveProcessorConfig holds configuration for the archive processor
type ArchiveProcessorConfig struct {
	// Interval is how often the backup pass runs (default: 1h)
	Interval time.Duration
}

// DefaultArchiveProcessorConfig returns sensible defaults
func DefaultArchiveProcessorConfig() ArchiveProcessorConfig {
	return ArchiveProcessorConfig{Interval: time.Hour}
}

// ArchiveProcessor runs the detection and archival pass: it persists newly
// detected recurring transactions and derives memory anchors for closed
// months. It runs on ledger-change notifications and on a backup timer; both
// paths call RunOnce, which is idempotent.
type ArchiveProcessor struct {
	reader    source.TransactionReader
	updater   source.SubscriptionUpdater
	archivist *insights.Archivist
	config    ArchiveProcessorConfig
	logger    *log.StructuredLogger

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewArchiveProcessor creates a new archive processor. updater may be nil;
// detection persistence is then skipped and only archival runs.
func NewArchiveProcessor(
	reader source.TransactionReader,
	updater source.SubscriptionUpdater,
	archivist *insights.Archivist,
	config ArchiveProcessorConfig,
) *ArchiveProcessor {
	return &ArchiveProcessor{
		reader:    reader,
		updater:   updater,
		archivist: archivist,
		config:    config,
		logger:    log.NewStructuredLogger(log.Default(log.ComponentArchivist)),
	}
}

// Start begins the timer loop. Returns an error if already running.
func (p *ArchiveProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("archive processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Archive processor started", "interval", p.config.Interval)
	return nil
}

// Stop gracefully stops the processor and waits for completion.
func (p *ArchiveProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	close(p.stopCh)

	select {
	case <-p.doneCh:
		slog.InfoContext(ctx, "Archive processor stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Archive processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
	return nil
}

// IsRunning returns whether the processor is currently running
func (p *ArchiveProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *ArchiveProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	// Process immediately on startup
	if err := p.RunOnce(ctx, time.Now()); err != nil {
		slog.ErrorContext(ctx, "Archival pass failed", "error", err)
	}

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.RunOnce(ctx, time.Now()); err != nil {
				slog.ErrorContext(ctx, "Archival pass failed", "error", err)
			}
		}
	}
}

// RunOnce executes one full pass over the current snapshot.
func (p *ArchiveProcessor) RunOnce(ctx context.Context, now time.Time) error {
	snapshot, err := p.reader.ListTransactions(ctx)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}

	if p.updater != nil {
		flagged := insights.DetectSubscriptions(snapshot)
		persisted := 0
		for _, tx := range snapshot {
			if _, ok := flagged[tx.ID]; !ok || tx.SubscriptionStatus != core.StatusNone {
				continue
			}
			if err := p.updater.UpdateSubscriptionStatus(ctx, tx.ID, core.StatusDetected); err != nil {
				slog.WarnContext(ctx, "Failed to persist detection",
					"transaction_id", tx.ID, "error", err)
				continue
			}
			persisted++
		}
		if persisted > 0 {
			slog.InfoContext(ctx, "Persisted newly detected subscriptions", "count", persisted)
		}
	}

	detected := insights.ApplyDetection(snapshot)
	anchors, err := p.archivist.Archive(ctx, detected, now)
	if err != nil {
		return fmt.Errorf("archive: %w", err)
	}

	p.logger.LogArchivePass(ctx, len(snapshot), len(anchors))
	return nil
}
