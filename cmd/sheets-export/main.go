package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"

	"resourceguardian/internal/config"
	"resourceguardian/internal/export"
	"resourceguardian/internal/log"
	"resourceguardian/internal/services"
	"resourceguardian/internal/storage"
)

// previousMonth returns the calendar month before now. Anchoring on
// the first of the month keeps AddDate from normalizing past the
// intended month at the end of long months.
func previousMonth(now time.Time) (int, time.Month) {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	prev := first.AddDate(0, -1, 0)
	return prev.Year(), prev.Month()
}

// sheets-export appends one user's monthly transaction summary to the
// configured Google spreadsheet. Defaults to the previous month.
func main() {
	_ = godotenv.Load()

	logger := log.New(log.Config{Component: log.ComponentExport})
	log.SetDefault(logger)

	var (
		username = flag.String("user", "", "username whose summary to export")
		year     = flag.Int("year", 0, "summary year (default: previous month)")
		month    = flag.Int("month", 0, "summary month 1-12 (default: previous month)")
	)
	flag.Parse()

	if *username == "" {
		logger.Error("Missing required -user flag")
		os.Exit(1)
	}

	prevYear, prevMonth := previousMonth(time.Now().UTC())
	if *year == 0 {
		*year = prevYear
	}
	if *month == 0 {
		*month = int(prevMonth)
	}
	if *month < 1 || *month > 12 {
		logger.Error("Invalid -month flag", "month", *month)
		os.Exit(1)
	}

	cfg := config.Load()
	if err := cfg.ValidateExport(); err != nil {
		logger.Error("Export configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.New(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	user, err := repo.GetUserByUsername(ctx, *username)
	if err != nil {
		logger.Error("Failed to look up user", "username", *username, "error", err)
		os.Exit(1)
	}

	summary, err := services.NewTransactionService(repo).MonthlySummary(ctx, user.ID, *year, time.Month(*month))
	if err != nil {
		logger.Error("Failed to build monthly summary", log.FieldUserID, user.ID, "error", err)
		os.Exit(1)
	}

	exporter, err := export.NewSheetsExporter(ctx, export.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsFile: cfg.GoogleCredentialsFile,
	})
	if err != nil {
		logger.Error("Failed to initialize sheets exporter", "error", err)
		os.Exit(1)
	}

	if err := exporter.ExportMonthlySummary(ctx, user.Username, summary); err != nil {
		logger.Error("Export failed", "month", summary.Month, "error", err)
		os.Exit(1)
	}

	logger.Info("Exported monthly summary",
		"username", user.Username, "month", summary.Month,
		"transactions", summary.TransactionCount)
}
