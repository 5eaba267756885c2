// Package export writes monthly transaction summaries to a Google
// spreadsheet so users can keep a long-lived report outside the app.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"resourceguardian/internal/core"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// SheetsExporter appends monthly summary rows to one sheet of a
// spreadsheet. One row per category plus a totals row per export run.
type SheetsExporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// Options configures NewSheetsExporter. CredentialsFile may be empty
// when GOOGLE_SERVICE_ACCOUNT_JSON carries the key inline.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsFile string
}

func NewSheetsExporter(ctx context.Context, opts Options) (*SheetsExporter, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	sheetName := strings.TrimSpace(opts.SheetName)
	if sheetName == "" {
		sheetName = "Monthly"
	}

	svc, err := newSheetsService(ctx, opts.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &SheetsExporter{
		svc:           svc,
		spreadsheetID: opts.SpreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func newSheetsService(ctx context.Context, credentialsFile string) (*gsheet.Service, error) {
	inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))

	var credentialsJSON []byte
	switch {
	case inline != "":
		credentialsJSON = []byte(inline)
	case strings.TrimSpace(credentialsFile) != "":
		data, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = data
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_CREDENTIALS_FILE)")
	}

	return gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
}

// ExportMonthlySummary appends the summary as rows under the sheet's
// existing content. Category rows are sorted by name so repeated runs
// for the same month produce identical blocks.
func (e *SheetsExporter) ExportMonthlySummary(ctx context.Context, username string, s core.MonthlySummary) error {
	rows := summaryRows(username, s)
	vr := &gsheet.ValueRange{Values: rows}

	_, err := e.svc.Spreadsheets.Values.
		Append(e.spreadsheetID, e.sheetName+"!A:F", vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append summary for %s: %w", s.Month, err)
	}
	return nil
}

// summaryRows renders the sheet rows: one totals row followed by one
// row per expense category.
func summaryRows(username string, s core.MonthlySummary) [][]any {
	rows := [][]any{{
		s.Month, username, "TOTAL",
		s.TotalIncome.String(), s.TotalExpense.String(), s.NetBalance.String(),
	}}

	categories := make([]core.TransactionCategory, 0, len(s.CategoryBreakdown))
	for c := range s.CategoryBreakdown {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })

	for _, c := range categories {
		rows = append(rows, []any{
			s.Month, username, string(c),
			"", s.CategoryBreakdown[c].String(), "",
		})
	}
	return rows
}
