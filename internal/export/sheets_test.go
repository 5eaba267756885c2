package export

import (
	"context"
	"testing"

	"resourceguardian/internal/core"
)

func TestNewSheetsExporterMissingSpreadsheetID(t *testing.T) {
	_, err := NewSheetsExporter(context.Background(), Options{})
	if err == nil {
		t.Fatal("expected error for missing spreadsheet id")
	}
}

func TestSummaryRows(t *testing.T) {
	s := core.MonthlySummary{
		Month:        "2025-09",
		TotalIncome:  core.Money{Cents: 50000},
		TotalExpense: core.Money{Cents: 32050},
		NetBalance:   core.Money{Cents: 17950},
		CategoryBreakdown: map[core.TransactionCategory]core.Money{
			core.CategoryTransport: {Cents: 12050},
			core.CategoryFood:      {Cents: 20000},
		},
	}

	rows := summaryRows("alice", s)
	if len(rows) != 3 {
		t.Fatalf("row count = %d, want 3", len(rows))
	}

	total := rows[0]
	if total[0] != "2025-09" || total[2] != "TOTAL" {
		t.Fatalf("unexpected totals row: %v", total)
	}
	if total[3] != "500.00" || total[4] != "320.50" || total[5] != "179.50" {
		t.Fatalf("unexpected totals amounts: %v", total)
	}

	// Category rows are sorted by name.
	if rows[1][2] != "FOOD" || rows[2][2] != "TRANSPORT" {
		t.Fatalf("unexpected category order: %v / %v", rows[1], rows[2])
	}
	if rows[1][4] != "200.00" {
		t.Fatalf("unexpected FOOD amount: %v", rows[1])
	}
}
