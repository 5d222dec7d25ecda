package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"pankti/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Columns written per ledger row: date, party, amount, mode/type, notes, id.
const ledgerColumns = "A:F"

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	paymentsSheet string
	advancesSheet string
}

var _ sheets.LedgerWriter = (*Client)(nil)

type Options struct {
	SpreadsheetID   string
	CredentialsJSON string
	CredentialsFile string
	PaymentsSheet   string
	AdvancesSheet   string
}

// New creates a Sheets ledger client authenticated with a service account.
func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	creds, err := loadCredentials(ctx, opts.CredentialsJSON, opts.CredentialsFile)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(creds),
		"scope", gsheet.SpreadsheetsScope)
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return newWithService(svc, opts), nil
}

func newWithService(svc *gsheet.Service, opts Options) *Client {
	payments := strings.TrimSpace(opts.PaymentsSheet)
	if payments == "" {
		payments = "Payments"
	}
	advances := strings.TrimSpace(opts.AdvancesSheet)
	if advances == "" {
		advances = "Advances"
	}
	return &Client{
		svc:           svc,
		spreadsheetID: strings.TrimSpace(opts.SpreadsheetID),
		paymentsSheet: payments,
		advancesSheet: advances,
	}
}

// loadCredentials prefers inline JSON over a credentials file.
func loadCredentials(ctx context.Context, inline, file string) ([]byte, error) {
	inline = strings.TrimSpace(inline)
	file = strings.TrimSpace(file)
	switch {
	case inline != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		return []byte(inline), nil
	case file != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", file)
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

func (c *Client) AppendPayment(ctx context.Context, row sheets.PaymentRow) (string, error) {
	return c.append(ctx, c.paymentsSheet, row.Values())
}

func (c *Client) AppendAdvance(ctx context.Context, row sheets.AdvanceRow) (string, error) {
	return c.append(ctx, c.advancesSheet, row.Values())
}

func (c *Client) append(ctx context.Context, sheet string, values []any) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	rng := sheetRange(sheet, ledgerColumns)
	vr := &gsheet.ValueRange{Values: [][]any{values}}

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", sheet, err)
	}
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		return resp.Updates.UpdatedRange, nil
	}
	return rng, nil
}

// sheetRange builds an A1 range, quoting sheet names that need it.
func sheetRange(sheet, cols string) string {
	if strings.ContainsAny(sheet, " '!") {
		sheet = "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
	}
	return sheet + "!" + cols
}
