package services

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"time"

	"github.com/Charan170903/expense-tracker/internal/cache"
	"github.com/Charan170903/expense-tracker/internal/core"
	"github.com/Charan170903/expense-tracker/internal/insights"
	"github.com/Charan170903/expense-tracker/internal/source"
)

type (
	// InsightsView is the behavioral layer for one month: the ranked daily
	// insight plus the raw detector outputs it was selected from.
	InsightsView struct {
		Period     string                     `json:"period"`
		Daily      insights.Insight           `json:"daily_insight"`
		Drift      []insights.DriftInsight    `json:"category_drift,omitempty"`
		Leak       *insights.MicroLeakInsight `json:"micro_leak,omitempty"`
		Recurring  []string                   `json:"recurring_transaction_ids,omitempty"`
		AnchorEcho string                     `json:"anchor_echo,omitempty"`
	}

	// SummaryView aggregates one reporting window.
	SummaryView struct {
		Period              string                 `json:"period"`
		Range               insights.Range         `json:"range"`
		Summary             insights.PeriodSummary `json:"summary"`
		NoSpendDays         int                    `json:"no_spend_days"`
		ActiveSubscriptions int                    `json:"active_subscriptions"`
		EndOfMonth          *insights.EOMStatus    `json:"end_of_month,omitempty"`
		Confidence          insights.Confidence    `json:"confidence"`
	}
)

// InsightService derives read-side views from the transaction source. Views
// are memoized per snapshot fingerprint, so repeated dashboard loads against
// an unchanged ledger skip the detector pipeline.
type InsightService struct {
	reader  source.TransactionReader
	anchors insights.AnchorStore

	insightCache cache.Cache[InsightsView]
	summaryCache cache.Cache[SummaryView]
	cacheManager *cache.Manager
}

func NewInsightService(reader source.TransactionReader, anchors insights.AnchorStore) *InsightService {
	insightCache := cache.NewLRUCache[InsightsView](64, 5*time.Minute)
	summaryCache := cache.NewLRUCache[SummaryView](64, 5*time.Minute)

	manager := cache.NewManager()
	manager.Register(insightCache)
	manager.Register(summaryCache)
	manager.StartCleanup(10 * time.Minute)

	return &InsightService{
		reader:       reader,
		anchors:      anchors,
		insightCache: insightCache,
		summaryCache: summaryCache,
		cacheManager: manager,
	}
}

// Close stops the background cache sweeper.
func (s *InsightService) Close() {
	s.cacheManager.Stop()
}

// Insights computes the behavioral view for the given month.
func (s *InsightService) Insights(ctx context.Context, month core.Month, now time.Time) (InsightsView, error) {
	snapshot, err := s.reader.ListTransactions(ctx)
	if err != nil {
		return InsightsView{}, fmt.Errorf("list transactions: %w", err)
	}

	key := fmt.Sprintf("insights|%s|%s|%s", month.Label(), core.DateOf(now).Format("2006-01-02"), snapshotFingerprint(snapshot))
	if view, ok := s.insightCache.Get(key); ok {
		return view, nil
	}

	detected := insights.ApplyDetection(snapshot)
	filtered := insights.FilterByRange(detected, month, insights.RangeMonth)

	drift := insights.DetectCategoryDrift(detected, month)
	leak := insights.DetectMicroLeaks(detected, now)

	view := InsightsView{
		Period:    month.Label(),
		Daily:     insights.SelectDailyInsight(drift, leak, detected, month, now),
		Drift:     drift,
		Leak:      leak,
		Recurring: recurringIDs(filtered),
	}

	anchors, err := s.anchors.Load(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Anchor store read failed, skipping anchor match", "error", err)
	} else if echo, ok := insights.MatchAnchor(filtered, anchors); ok {
		view.AnchorEcho = echo
	}

	s.insightCache.Set(key, view)
	return view, nil
}

// Summary computes the aggregate view for the given month and range.
func (s *InsightService) Summary(ctx context.Context, month core.Month, rng insights.Range, now time.Time) (SummaryView, error) {
	snapshot, err := s.reader.ListTransactions(ctx)
	if err != nil {
		return SummaryView{}, fmt.Errorf("list transactions: %w", err)
	}

	key := fmt.Sprintf("summary|%s|%s|%s|%s", month.Label(), rng, core.DateOf(now).Format("2006-01-02"), snapshotFingerprint(snapshot))
	if view, ok := s.summaryCache.Get(key); ok {
		return view, nil
	}

	detected := insights.ApplyDetection(snapshot)
	filtered := insights.FilterByRange(detected, month, rng)

	view := SummaryView{
		Period:              month.Label(),
		Range:               rng,
		Summary:             insights.Summarize(filtered),
		NoSpendDays:         insights.NoSpendDays(filtered, month, rng, now),
		ActiveSubscriptions: insights.ActiveSubscriptionCount(filtered),
		EndOfMonth:          insights.EndOfMonthStatus(month, now),
		Confidence:          insights.ConfidenceScore(filtered, month, rng, now),
	}

	s.summaryCache.Set(key, view)
	return view, nil
}

// recurringIDs lists the transactions in the filtered set that carry an
// active subscription status, so the dashboard can badge them.
func recurringIDs(transactions []core.Transaction) []string {
	var ids []string
	for _, tx := range transactions {
		switch tx.SubscriptionStatus {
		case core.StatusDetected, core.StatusConfirmed:
			ids = append(ids, tx.ID)
		}
	}
	return ids
}

// snapshotFingerprint folds the fields that influence derived views into one
// key component, so a ledger change invalidates memoized views immediately.
func snapshotFingerprint(transactions []core.Transaction) string {
	h := fnv.New64a()
	for _, tx := range transactions {
		fmt.Fprintf(h, "%s|%d|%s|%s|%s;", tx.ID, tx.Amount.Cents, tx.Date.Format("2006-01-02"), tx.SubscriptionStatus, tx.Category)
	}
	return fmt.Sprintf("%d-%x", len(transactions), h.Sum64())
}
