package http

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/Charan170903/expense-tracker/internal/core"
	"github.com/Charan170903/expense-tracker/internal/insights"
)

var parserNow = time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC)

func TestParsePeriodParams(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantMonth string
		wantRange insights.Range
		wantErr   bool
	}{
		{"defaults", "", "Jan 2025", insights.RangeMonth, false},
		{"explicit month", "month=Dec+2024", "Dec 2024", insights.RangeMonth, false},
		{"explicit range", "range=6months", "Jan 2025", insights.RangeSixMonths, false},
		{"month and range", "month=Nov+2024&range=all", "Nov 2024", insights.RangeAll, false},
		{"bad month", "month=2025-01", "", "", true},
		{"bad range", "range=fortnight", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("parse query: %v", err)
			}
			params, err := ParsePeriodParams(query, parserNow)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if params.Month.Label() != tt.wantMonth {
				t.Errorf("month = %q, want %q", params.Month.Label(), tt.wantMonth)
			}
			if params.Range != tt.wantRange {
				t.Errorf("range = %q, want %q", params.Range, tt.wantRange)
			}
		})
	}
}

func newBodyRequest(t *testing.T, body, contentType string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", contentType)
	return req
}

func TestParseTransactionJSON(t *testing.T) {
	req := newBodyRequest(t,
		`{"title":"Netflix","amount":"499","type":"expense","category":"Entertainment","date":"2025-01-05","context":"monthly plan"}`,
		"application/json")

	tx, err := ParseTransaction(NewRequestBodyParser(req), parserNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.Title != "Netflix" {
		t.Errorf("title = %q", tx.Title)
	}
	if tx.Amount.Cents != 49900 {
		t.Errorf("amount = %d cents, want 49900", tx.Amount.Cents)
	}
	if tx.Category != "entertainment" {
		t.Errorf("category = %q, want normalized slug", tx.Category)
	}
	if got := tx.Date.Format("2006-01-02"); got != "2025-01-05" {
		t.Errorf("date = %s", got)
	}
	if tx.ContextTag != "monthly plan" {
		t.Errorf("context = %q", tx.ContextTag)
	}
}

func TestParseTransactionForm(t *testing.T) {
	req := newBodyRequest(t, "title=Coffee&amount=4.50&category=food",
		"application/x-www-form-urlencoded")

	tx, err := ParseTransaction(NewRequestBodyParser(req), parserNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.Amount.Cents != 450 {
		t.Errorf("amount = %d cents, want 450", tx.Amount.Cents)
	}
	if tx.Type != core.Expense {
		t.Errorf("type = %q, want expense default", tx.Type)
	}
	if got := tx.Date; !got.Equal(core.DateOf(parserNow).Time) {
		t.Errorf("date = %v, want today default", got)
	}
}

func TestParseTransactionErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{"bad amount", `{"title":"x","amount":"-5","category":"food"}`, core.ErrInvalidAmount},
		{"empty title", `{"title":" ","amount":"5","category":"food"}`, core.ErrEmptyTitle},
		{"empty category", `{"title":"x","amount":"5","category":""}`, core.ErrEmptyCategory},
		{"bad type", `{"title":"x","amount":"5","type":"transfer","category":"food"}`, core.ErrInvalidType},
		{"bad date", `{"title":"x","amount":"5","category":"food","date":"05/01/2025"}`, core.ErrInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newBodyRequest(t, tt.body, "application/json")
			_, err := ParseTransaction(NewRequestBodyParser(req), parserNow)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRequestBodyParserSanitizes(t *testing.T) {
	req := newBodyRequest(t, `{"title":"Cof\u0007fee"}`, "application/json")
	p := NewRequestBodyParser(req)
	if err := p.Parse(); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := p.Get("title"); got != "Coffee" {
		t.Errorf("title = %q, want control characters stripped", got)
	}
	if !p.IsJSON() {
		t.Error("expected JSON detection")
	}
}
