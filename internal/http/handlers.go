package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Charan170903/expense-tracker/internal/core"
	"github.com/Charan170903/expense-tracker/internal/log"
	"github.com/Charan170903/expense-tracker/internal/source"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Payload(map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).String(),
	}).Write(w)
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]interface{})

	if _, err := s.reader.ListTransactions(ctx); err != nil {
		checks["transaction_source"] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["transaction_source"] = "ok"
	}

	checks["rate_limiter"] = map[string]interface{}{
		"active_clients": s.rateLimiter.ActiveClients(),
		"status":         "ok",
	}

	NewJSONResponse().Status(httpStatus).Payload(map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

// handleInsights serves the daily insight, drift list, micro-leak, and the
// matched memory anchor for a month.
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	params, err := ParsePeriodParams(r.URL.Query(), time.Now())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	view, err := s.insightSvc.Insights(r.Context(), params.Month, time.Now())
	if err != nil {
		s.logError(r, "Insights computation failed", err, params.Month.Label())
		InternalServerError("failed to compute insights").Write(w)
		return
	}

	NewJSONResponse().Payload(view).Write(w)
}

// handleSummary serves the period summary and companion statistics.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	params, err := ParsePeriodParams(r.URL.Query(), time.Now())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	view, err := s.insightSvc.Summary(r.Context(), params.Month, params.Range, time.Now())
	if err != nil {
		s.logError(r, "Summary computation failed", err, params.Month.Label())
		InternalServerError("failed to compute summary").Write(w)
		return
	}

	NewJSONResponse().Payload(view).Write(w)
}

// handleCreateTransaction ingests one transaction into the ledger source.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodPost); resp != nil {
		resp.Write(w)
		return
	}

	tx, err := ParseTransaction(NewRequestBodyParser(r), time.Now())
	if err != nil {
		if isValidationError(err) {
			UnprocessableEntityError(err.Error()).Write(w)
		} else {
			BadRequestError(err.Error()).Write(w)
		}
		return
	}

	id, err := s.ledgerSvc.AddTransaction(r.Context(), tx)
	if err != nil {
		s.logError(r, "Transaction append failed", err, "")
		InternalServerError("failed to save transaction").Write(w)
		return
	}

	NewJSONResponse().Status(http.StatusCreated).Payload(map[string]string{"id": id}).Write(w)
}

// handleTransactionAction routes /api/transactions/{id}/subscription.
func (s *Server) handleTransactionAction(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "subscription" {
		NotFoundError("not found").Write(w)
		return
	}

	if resp := RequireMethod(r, http.MethodPost); resp != nil {
		resp.Write(w)
		return
	}

	s.handleSubscriptionDecision(w, r, parts[0])
}

// handleSubscriptionDecision applies a user decision (confirm or dismiss) to
// a detected subscription.
func (s *Server) handleSubscriptionDecision(w http.ResponseWriter, r *http.Request, id string) {
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError("malformed request body").Write(w)
		return
	}

	status := core.SubscriptionStatus(parser.Get("status"))
	if !status.IsValid() || status == core.StatusNone {
		UnprocessableEntityError(fmt.Sprintf("invalid status %q, want %q or %q",
			parser.Get("status"), core.StatusConfirmed, core.StatusDismissed)).Write(w)
		return
	}

	if err := s.ledgerSvc.UpdateSubscription(r.Context(), id, status); err != nil {
		switch {
		case errors.Is(err, source.ErrNotFound):
			NotFoundError("transaction not found").Write(w)
		case errors.Is(err, core.ErrInvalidTransition):
			ConflictError(err.Error()).Write(w)
		default:
			s.logError(r, "Subscription update failed", err, "")
			InternalServerError("failed to update subscription status").Write(w)
		}
		return
	}

	NewJSONResponse().Payload(map[string]string{
		"id":     id,
		"status": string(status),
	}).Write(w)
}

func (s *Server) logError(r *http.Request, msg string, err error, period string) {
	args := []any{
		log.FieldComponent, log.ComponentHTTP,
		log.FieldError, err,
		log.FieldPath, r.URL.Path,
	}
	if period != "" {
		args = append(args, log.FieldPeriod, period)
	}
	slog.ErrorContext(r.Context(), msg, args...)
}

// isValidationError reports whether the error stems from invalid transaction
// content rather than a malformed request.
func isValidationError(err error) bool {
	return errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrInvalidDate) ||
		errors.Is(err, core.ErrInvalidType) ||
		errors.Is(err, core.ErrEmptyTitle) ||
		errors.Is(err, core.ErrEmptyCategory)
}
