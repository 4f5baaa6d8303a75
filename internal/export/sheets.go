// Package export appends ledger records to a Google Sheets spreadsheet,
// the off-site backup of record. Rows are append-only; deletes are
// recorded as reversal marker rows instead of removing history.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"dompet/internal/config"
	"dompet/internal/core"
)

type SheetsWriter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// NewSheetsWriter builds a writer from service account credentials in the
// config, falling back to GOOGLE_APPLICATION_CREDENTIALS.
func NewSheetsWriter(ctx context.Context, cfg *config.Config) (*SheetsWriter, error) {
	if cfg.GoogleSpreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	sheetName := cfg.GoogleSheetName
	if sheetName == "" {
		sheetName = "Ledger"
	}

	credentialsJSON, err := resolveCredentials(cfg)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &SheetsWriter{
		svc:           svc,
		spreadsheetID: cfg.GoogleSpreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func resolveCredentials(cfg *config.Config) ([]byte, error) {
	switch {
	case cfg.GoogleServiceAccountJSON != "":
		return []byte(cfg.GoogleServiceAccountJSON), nil
	case cfg.GoogleServiceAccountFile != "":
		data, err := os.ReadFile(cfg.GoogleServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		if path := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")); path != "" {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("read application credentials: %w", err)
			}
			return data, nil
		}
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
}

// AppendTransaction appends one transaction row and returns the sheet
// range it landed in.
func (w *SheetsWriter) AppendTransaction(ctx context.Context, t core.Transaction) (string, error) {
	row := []any{
		t.OccurredAt.Format("2006-01-02"),
		t.Title,
		string(t.Kind),
		t.Category,
		t.Amount.Units,
		t.Amount.FormatCurrency(),
		t.Notes,
		t.ID,
	}
	return w.appendRow(ctx, row)
}

// AppendReversal appends a marker row for a deleted record. The backup
// keeps full history, so deletes never remove rows.
func (w *SheetsWriter) AppendReversal(ctx context.Context, collection, id string) (string, error) {
	row := []any{
		time.Now().Format("2006-01-02"),
		"DELETED",
		collection,
		"",
		0,
		"",
		"",
		id,
	}
	return w.appendRow(ctx, row)
}

func (w *SheetsWriter) appendRow(ctx context.Context, row []any) (string, error) {
	vr := &gsheet.ValueRange{Values: [][]any{row}}
	rng := fmt.Sprintf("%s!A:H", w.sheetName)

	resp, err := w.svc.Spreadsheets.Values.Append(w.spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("append row: %w", err)
	}
	if resp.Updates != nil {
		return resp.Updates.UpdatedRange, nil
	}
	return "", nil
}
