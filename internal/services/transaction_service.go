package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"resourceguardian/internal/core"
	"resourceguardian/internal/storage"
)

// TransactionService records income and expense events and serves the
// aggregations built on them.
type TransactionService struct {
	storage *storage.Repository
}

func NewTransactionService(storage *storage.Repository) *TransactionService {
	return &TransactionService{storage: storage}
}

// Record stores a manual or imported transaction. Missing status
// defaults to completed, missing date to now.
func (s *TransactionService) Record(ctx context.Context, t *core.Transaction) (*core.Transaction, error) {
	if t.Status == "" {
		t.Status = core.StatusCompleted
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	created, err := s.storage.CreateTransaction(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("record transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction recorded",
		"id", created.ID,
		"user_id", created.UserID,
		"type", created.Type,
		"amount_cents", created.Amount.Cents)
	return created, nil
}

// RecordFromPaymentNotification maps a mobile-money payload onto a
// transaction. The payload's amount string goes through the same
// parser as user input; mapping is fixed to an expense from M-Pesa in
// the catch-all category.
func (s *TransactionService) RecordFromPaymentNotification(ctx context.Context, userID int64, n core.PaymentNotification) (*core.Transaction, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}

	amount, err := core.ParseAmount(n.Amount)
	if err != nil {
		return nil, core.Validationf("amount", "unparseable amount %q", n.Amount)
	}

	description := "M-Pesa payment"
	if n.Merchant != "" {
		description = "M-Pesa payment to " + n.Merchant
	}

	return s.Record(ctx, &core.Transaction{
		UserID:             userID,
		Amount:             amount,
		Type:               core.TransactionExpense,
		Category:           core.CategoryOther,
		Source:             core.SourceMpesa,
		Status:             core.StatusCompleted,
		Description:        description,
		Merchant:           n.Merchant,
		MpesaReceiptNumber: n.ReceiptNumber,
		MpesaTransactionID: n.TransactionID,
		RecipientPhone:     n.RecipientPhone,
	})
}

func (s *TransactionService) Get(ctx context.Context, id, userID int64) (*core.Transaction, error) {
	return s.storage.GetTransaction(ctx, id, userID)
}

func (s *TransactionService) List(ctx context.Context, userID int64, f storage.TransactionFilter) ([]core.Transaction, error) {
	return s.storage.ListTransactions(ctx, userID, f)
}

// Recent returns the newest n transactions.
func (s *TransactionService) Recent(ctx context.Context, userID int64, n int) ([]core.Transaction, error) {
	if n <= 0 {
		n = 10
	}
	return s.storage.ListTransactions(ctx, userID, storage.TransactionFilter{Limit: n})
}

// Update rewrites a transaction's descriptive fields and amount.
func (s *TransactionService) Update(ctx context.Context, userID int64, t *core.Transaction) (*core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	existing, err := s.storage.GetTransaction(ctx, t.ID, userID)
	if err != nil {
		return nil, err
	}
	t.UserID = userID
	t.CreatedAt = existing.CreatedAt
	return s.storage.UpdateTransaction(ctx, t)
}

// UpdateStatus transitions a transaction to the given status.
func (s *TransactionService) UpdateStatus(ctx context.Context, id, userID int64, status core.TransactionStatus) (*core.Transaction, error) {
	parsed, err := core.ParseTransactionStatus(string(status))
	if err != nil {
		return nil, err
	}
	return s.storage.UpdateTransactionStatus(ctx, id, userID, parsed)
}

func (s *TransactionService) Delete(ctx context.Context, id, userID int64) error {
	return s.storage.DeleteTransaction(ctx, id, userID)
}

func (s *TransactionService) MonthlySummary(ctx context.Context, userID int64, year int, month time.Month) (core.MonthlySummary, error) {
	return s.storage.MonthlySummary(ctx, userID, year, month)
}

// CategorySummary totals expenses per category, optionally bounded to
// a date range. Absent bounds cover all time.
func (s *TransactionService) CategorySummary(ctx context.Context, userID int64, from, to *time.Time) (map[core.TransactionCategory]core.Money, error) {
	return s.storage.CategorySummary(ctx, userID, from, to)
}

func (s *TransactionService) Statistics(ctx context.Context, userID int64) (core.TransactionStatistics, error) {
	return s.storage.TransactionStatistics(ctx, userID)
}
