package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Charan170903/expense-tracker/internal/core"
	"github.com/Charan170903/expense-tracker/internal/source"

	"golang.org/x/oauth2"
	goauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client reads and writes the ledger sheet. Row layout, starting at row 2:
// A date (YYYY-MM-DD), B title, C amount in decimal units, D type,
// E category, F subscription status, G created-at (RFC3339), H context tag.
// Row numbers double as transaction ids ("row:N").
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	ledgerSheet   string
}

// Ensure interface conformance
var (
	_ source.TransactionReader   = (*Client)(nil)
	_ source.TransactionAppender = (*Client)(nil)
	_ source.SubscriptionUpdater = (*Client)(nil)
)

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID
// Optional: GOOGLE_SHEET_NAME (default "Ledger"). Credentials come from a
// service account (GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE,
// or GOOGLE_APPLICATION_CREDENTIALS) or, when none is set, from an OAuth
// client and the token written by cmd/oauth-init (GOOGLE_OAUTH_CLIENT_JSON/
// GOOGLE_OAUTH_CLIENT_FILE plus GOOGLE_OAUTH_TOKEN_JSON/GOOGLE_OAUTH_TOKEN_FILE).
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	ledger := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if ledger == "" {
		ledger = "Ledger"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		ledgerSheet:   ledger,
	}, nil
}

// newSheetsService initializes a Sheets Service. Service account credentials
// take precedence; without them the OAuth client and saved token are used.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return newOAuthSheetsService(ctx)
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// newOAuthSheetsService builds the service from an OAuth client and the token
// saved by cmd/oauth-init. This is the path for personal spreadsheets that
// cannot be shared with a service account.
func newOAuthSheetsService(ctx context.Context) (*gsheet.Service, error) {
	clientJSON, err := readEnvCredential("GOOGLE_OAUTH_CLIENT_JSON", "GOOGLE_OAUTH_CLIENT_FILE")
	if err != nil {
		return nil, err
	}
	if clientJSON == nil {
		return nil, errors.New("missing credentials (set service account vars, or GOOGLE_OAUTH_CLIENT_JSON/GOOGLE_OAUTH_CLIENT_FILE)")
	}

	cfg, err := goauth.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("oauth config: %w", err)
	}

	tokenJSON, err := readEnvCredential("GOOGLE_OAUTH_TOKEN_JSON", "GOOGLE_OAUTH_TOKEN_FILE")
	if err != nil {
		return nil, err
	}
	if tokenJSON == nil {
		return nil, errors.New("missing oauth token (set GOOGLE_OAUTH_TOKEN_JSON or GOOGLE_OAUTH_TOKEN_FILE, or run oauth-init)")
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenJSON, &token); err != nil {
		return nil, fmt.Errorf("parse oauth token: %w", err)
	}

	service, err := gsheet.NewService(ctx,
		goption.WithTokenSource(cfg.TokenSource(ctx, &token)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// readEnvCredential resolves a credential set either inline or via a file
// path. A nil result with nil error means neither variable is set.
func readEnvCredential(jsonVar, fileVar string) ([]byte, error) {
	if v := strings.TrimSpace(os.Getenv(jsonVar)); v != "" {
		return []byte(v), nil
	}
	if f := strings.TrimSpace(os.Getenv(fileVar)); f != "" {
		b, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", fileVar, err)
		}
		return b, nil
	}
	return nil, nil
}

// ListTransactions reads the full ledger. Malformed rows are skipped, not
// fatal: a single bad cell must not take the whole dashboard down.
func (c *Client) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A2:H", c.ledgerSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}

	txs, skipped := parseLedger(resp.Values)
	if skipped > 0 {
		slog.WarnContext(ctx, "Skipped malformed ledger rows", "sheet", c.ledgerSheet, "skipped", skipped)
	}
	return txs, nil
}

// Append writes the transaction to the next empty row and returns its id.
func (c *Client) Append(ctx context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:A", c.ledgerSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to get sheet dimensions for %s: %w", c.ledgerSheet, err)
	}
	nextRow := len(resp.Values) + 1

	createdAt := tx.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	dataRange := fmt.Sprintf("%s!A%d:H%d", c.ledgerSheet, nextRow, nextRow)
	vr := &gsheet.ValueRange{Values: [][]any{{
		tx.Date.Format("2006-01-02"),
		tx.Title,
		tx.Amount.Float(),
		string(tx.Type),
		core.NormalizeCategory(tx.Category),
		string(tx.SubscriptionStatus),
		createdAt.Format(time.RFC3339),
		tx.ContextTag,
	}}}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to update %s: %w", dataRange, err)
	}
	return rowID(nextRow), nil
}

// UpdateSubscriptionStatus rewrites the status cell of the row named by id,
// enforcing the transition rules against the cell's current value.
func (c *Client) UpdateSubscriptionStatus(ctx context.Context, id string, status core.SubscriptionStatus) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	row, err := parseRowID(id)
	if err != nil {
		return err
	}

	cell := fmt.Sprintf("%s!F%d", c.ledgerSheet, row)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, cell).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read %s: %w", cell, err)
	}
	current := core.StatusNone
	if len(resp.Values) > 0 && len(resp.Values[0]) > 0 {
		current = core.SubscriptionStatus(strings.TrimSpace(fmt.Sprint(resp.Values[0][0])))
	}
	if !current.CanTransitionTo(status) {
		return fmt.Errorf("%w: %q -> %q", core.ErrInvalidTransition, current, status)
	}

	vr := &gsheet.ValueRange{Values: [][]any{{string(status)}}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, cell, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", cell, err)
	}
	return nil
}

func rowID(row int) string {
	return fmt.Sprintf("row:%d", row)
}

func parseRowID(id string) (int, error) {
	raw, ok := strings.CutPrefix(id, "row:")
	if !ok {
		return 0, fmt.Errorf("%w: %q", source.ErrNotFound, id)
	}
	row, err := strconv.Atoi(raw)
	if err != nil || row < 2 {
		return 0, fmt.Errorf("%w: %q", source.ErrNotFound, id)
	}
	return row, nil
}
