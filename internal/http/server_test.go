package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Charan170903/expense-tracker/internal/core"
	"github.com/Charan170903/expense-tracker/internal/services"
	"github.com/Charan170903/expense-tracker/internal/source/memory"
)

func newTestServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()

	now := time.Now().UTC()
	store := memory.New([]core.Transaction{
		{
			ID:       "tx1",
			Title:    "Salary",
			Amount:   core.UnitsOf(50000),
			Type:     core.Income,
			Category: "other",
			Date:     core.NewDate(now.Year(), now.Month(), 1),
		},
		{
			ID:                 "tx2",
			Title:              "Netflix",
			Amount:             core.UnitsOf(499),
			Type:               core.Expense,
			Category:           "entertainment",
			Date:               core.NewDate(now.Year(), now.Month(), 2),
			SubscriptionStatus: core.StatusDetected,
		},
	})

	insightSvc := services.NewInsightService(store, store)
	ledgerSvc := services.NewLedgerService(store, store, nil)
	return NewServer(":0", insightSvc, ledgerSvc, store), store
}

func doRequest(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	out := make(map[string]interface{})
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rr.Body.String(), err)
	}
	return out
}

func TestHealthAndReady(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := doRequest(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rr.Code)
		}
		if got := decodeBody(t, rr)["status"]; got != "ok" && got != "ready" {
			t.Errorf("%s status field = %v", path, got)
		}
	}
}

func TestSecurityHeadersApplied(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := doRequest(t, srv, http.MethodGet, "/healthz", "")
	if got := rr.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := rr.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
}

func TestInsightsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := doRequest(t, srv, http.MethodGet, "/api/insights", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	if body["period"] != core.MonthOf(time.Now()).Label() {
		t.Errorf("period = %v, want current month", body["period"])
	}
	if _, ok := body["daily_insight"]; !ok {
		t.Error("response missing daily_insight")
	}
}

func TestInsightsRejectsBadMonth(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := doRequest(t, srv, http.MethodGet, "/api/insights?month=2025-01", "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := doRequest(t, srv, http.MethodGet, "/api/summary?range=3months", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	if body["range"] != "3months" {
		t.Errorf("range = %v, want 3months", body["range"])
	}
	summary, ok := body["summary"].(map[string]interface{})
	if !ok {
		t.Fatalf("summary missing in %v", body)
	}
	if summary["income"] == nil {
		t.Error("summary missing income")
	}
}

func TestSummaryRejectsBadRange(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := doRequest(t, srv, http.MethodGet, "/api/summary?range=decade", "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestCreateTransaction(t *testing.T) {
	srv, store := newTestServer(t)

	rr := doRequest(t, srv, http.MethodPost, "/api/transactions",
		`{"title":"Coffee","amount":"4.50","category":"Food"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	id, _ := decodeBody(t, rr)["id"].(string)
	if id == "" {
		t.Fatal("response missing id")
	}

	txs, err := store.ListTransactions(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	found := false
	for _, tx := range txs {
		if tx.ID == id {
			found = true
			if tx.Category != "food" {
				t.Errorf("category = %q, want normalized slug", tx.Category)
			}
			if tx.Amount.Cents != 450 {
				t.Errorf("amount = %d cents, want 450", tx.Amount.Cents)
			}
		}
	}
	if !found {
		t.Errorf("transaction %q not stored", id)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"invalid amount", `{"title":"x","amount":"abc","category":"food"}`, http.StatusUnprocessableEntity},
		{"missing title", `{"title":"","amount":"5","category":"food"}`, http.StatusUnprocessableEntity},
		{"missing category", `{"title":"x","amount":"5","category":""}`, http.StatusUnprocessableEntity},
		{"bad json", `{"title":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, srv, http.MethodPost, "/api/transactions", tt.body)
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rr.Code, tt.want, rr.Body.String())
			}
		})
	}
}

func TestCreateTransactionMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := doRequest(t, srv, http.MethodGet, "/api/transactions", "")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rr.Code)
	}
	if got := rr.Header().Get("Allow"); got != http.MethodPost {
		t.Errorf("Allow = %q, want POST", got)
	}
}

func TestSubscriptionDecision(t *testing.T) {
	srv, store := newTestServer(t)

	rr := doRequest(t, srv, http.MethodPost, "/api/transactions/tx2/subscription",
		`{"status":"confirmed"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	txs, _ := store.ListTransactions(context.Background())
	for _, tx := range txs {
		if tx.ID == "tx2" && tx.SubscriptionStatus != core.StatusConfirmed {
			t.Errorf("status = %q, want confirmed", tx.SubscriptionStatus)
		}
	}

	// The decision is terminal; a second one conflicts.
	rr = doRequest(t, srv, http.MethodPost, "/api/transactions/tx2/subscription",
		`{"status":"dismissed"}`)
	if rr.Code != http.StatusConflict {
		t.Errorf("second decision status = %d, want 409", rr.Code)
	}
}

func TestSubscriptionDecisionErrors(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"unknown id", "/api/transactions/nope/subscription", `{"status":"confirmed"}`, http.StatusNotFound},
		{"invalid status", "/api/transactions/tx2/subscription", `{"status":"maybe"}`, http.StatusUnprocessableEntity},
		{"non-terminal status", "/api/transactions/tx2/subscription", `{"status":"detected"}`, http.StatusConflict},
		{"bad path", "/api/transactions/tx2/other", `{"status":"confirmed"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, srv, http.MethodPost, tt.path, tt.body)
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rr.Code, tt.want, rr.Body.String())
			}
		})
	}
}
