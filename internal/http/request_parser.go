// Package http provides the JSON API server for the insight engine.
//
// This file implements utilities for parsing and validating HTTP request
// data: period/range query parameters and transaction request bodies.

package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Charan170903/expense-tracker/internal/core"
	"github.com/Charan170903/expense-tracker/internal/insights"
)

// PeriodParams holds the parsed month and range of a read request.
type PeriodParams struct {
	Month core.Month
	Range insights.Range
}

// ParsePeriodParams extracts month and range query parameters, defaulting to
// the current month and the single-month range.
func ParsePeriodParams(query url.Values, now time.Time) (PeriodParams, error) {
	params := PeriodParams{
		Month: core.MonthOf(now),
		Range: insights.RangeMonth,
	}

	if v := strings.TrimSpace(query.Get("month")); v != "" {
		month, err := core.ParseMonth(v)
		if err != nil {
			return PeriodParams{}, fmt.Errorf("invalid month %q, want e.g. %q", v, core.MonthOf(now).Label())
		}
		params.Month = month
	}
	if v := strings.TrimSpace(query.Get("range")); v != "" {
		rng := insights.Range(v)
		if !rng.IsValid() {
			return PeriodParams{}, fmt.Errorf("invalid range %q", v)
		}
		params.Range = rng
	}

	return params, nil
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]interface{}
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}

	p.body, p.err = io.ReadAll(r.Body)
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	// Try JSON first if content looks like JSON
	if p.body[0] == '{' || p.body[0] == '[' {
		p.jsonData = make(map[string]interface{})
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	// Fall back to form parsing
	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return strings.TrimSpace(sanitizeInput(stringValue(val)))
		}
	}
	if p.formData != nil {
		return strings.TrimSpace(sanitizeInput(p.formData.Get(key)))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// ParseTransaction builds a transaction from the request body. The date
// defaults to today and the type to expense when omitted.
func ParseTransaction(p *RequestBodyParser, now time.Time) (core.Transaction, error) {
	if err := p.Parse(); err != nil {
		return core.Transaction{}, fmt.Errorf("malformed request body: %w", err)
	}

	cents, err := core.ParseDecimalToCents(p.Get("amount"))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("invalid amount %q: %w", p.Get("amount"), err)
	}

	txType := core.TransactionType(p.Get("type"))
	if txType == "" {
		txType = core.Expense
	}

	date := core.DateOf(now)
	if v := p.Get("date"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD: %w", v, core.ErrInvalidDate)
		}
		date = core.DateOf(parsed)
	}

	tx := core.Transaction{
		Title:      p.Get("title"),
		Amount:     core.Money{Cents: cents},
		Type:       txType,
		Category:   core.NormalizeCategory(p.Get("category")),
		Date:       date,
		ContextTag: p.Get("context"),
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

// sanitizeInput removes control characters except tab, newline, carriage return.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// stringValue converts an interface{} to string.
func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *JSONResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}
