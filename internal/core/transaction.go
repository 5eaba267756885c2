package core

import (
	"strings"
	"time"
)

const (
	TransactionIncome  TransactionType = "INCOME"
	TransactionExpense TransactionType = "EXPENSE"

	SourceManual TransactionSource = "MANUAL"
	SourceMpesa  TransactionSource = "MPESA"
	SourceBank   TransactionSource = "BANK"

	StatusCompleted TransactionStatus = "COMPLETED"
	StatusPending   TransactionStatus = "PENDING"
	StatusFailed    TransactionStatus = "FAILED"
	StatusCancelled TransactionStatus = "CANCELLED"

	CategoryFood          TransactionCategory = "FOOD"
	CategoryTransport     TransactionCategory = "TRANSPORT"
	CategoryEntertainment TransactionCategory = "ENTERTAINMENT"
	CategoryEducation     TransactionCategory = "EDUCATION"
	CategoryHealth        TransactionCategory = "HEALTH"
	CategoryShopping      TransactionCategory = "SHOPPING"
	CategoryBills         TransactionCategory = "BILLS"
	CategorySavings       TransactionCategory = "SAVINGS"
	CategoryInvestment    TransactionCategory = "INVESTMENT"
	CategoryEmergency     TransactionCategory = "EMERGENCY"
	CategoryOther         TransactionCategory = "OTHER"
)

type (
	TransactionType     string
	TransactionSource   string
	TransactionCategory string

	// TransactionStatus is an enum rather than free text so that
	// status transitions stay queryable and typo-proof.
	TransactionStatus string
)

// ParseTransactionType validates a transaction type name.
func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(s) {
	case TransactionIncome, TransactionExpense:
		return TransactionType(s), nil
	}
	return "", Validationf("type", "unknown transaction type %q", s)
}

// ParseTransactionSource validates a transaction source name.
func ParseTransactionSource(s string) (TransactionSource, error) {
	switch TransactionSource(s) {
	case SourceManual, SourceMpesa, SourceBank:
		return TransactionSource(s), nil
	}
	return "", Validationf("source", "unknown transaction source %q", s)
}

// ParseTransactionStatus validates a transaction status name.
func ParseTransactionStatus(s string) (TransactionStatus, error) {
	switch TransactionStatus(s) {
	case StatusCompleted, StatusPending, StatusFailed, StatusCancelled:
		return TransactionStatus(s), nil
	}
	return "", Validationf("status", "unknown transaction status %q", s)
}

// ParseTransactionCategory validates a transaction category name.
func ParseTransactionCategory(s string) (TransactionCategory, error) {
	switch TransactionCategory(s) {
	case CategoryFood, CategoryTransport, CategoryEntertainment,
		CategoryEducation, CategoryHealth, CategoryShopping,
		CategoryBills, CategorySavings, CategoryInvestment,
		CategoryEmergency, CategoryOther:
		return TransactionCategory(s), nil
	}
	return "", Validationf("category", "unknown transaction category %q", s)
}

// Transaction records a single income or expense event. Immutable in
// spirit: edits touch descriptive fields and status, never derive
// other entities.
type Transaction struct {
	ID     int64 `json:"id"`
	UserID int64 `json:"userId"`

	Amount   Money               `json:"amount"`
	Type     TransactionType     `json:"type"`
	Category TransactionCategory `json:"category"`
	Source   TransactionSource   `json:"source"`
	Status   TransactionStatus   `json:"status"`

	Description string `json:"description"`
	Merchant    string `json:"merchant,omitempty"`
	Location    string `json:"location,omitempty"`
	Notes       string `json:"notes,omitempty"`

	// Mobile-money metadata, set only for SourceMpesa transactions.
	MpesaReceiptNumber string `json:"mpesaReceiptNumber,omitempty"`
	MpesaTransactionID string `json:"mpesaTransactionId,omitempty"`
	RecipientPhone     string `json:"recipientPhone,omitempty"`

	TransactionDate time.Time `json:"transactionDate"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Validate checks creation-time constraints.
func (t Transaction) Validate() error {
	if err := t.Amount.Validate(); err != nil {
		return Validationf("amount", "must be positive")
	}
	if strings.TrimSpace(t.Description) == "" {
		return Validationf("description", "must not be empty")
	}
	if len(t.Description) > 200 {
		return Validationf("description", "too long (max 200 characters)")
	}
	if _, err := ParseTransactionType(string(t.Type)); err != nil {
		return err
	}
	if _, err := ParseTransactionCategory(string(t.Category)); err != nil {
		return err
	}
	if _, err := ParseTransactionSource(string(t.Source)); err != nil {
		return err
	}
	if t.Status != "" {
		if _, err := ParseTransactionStatus(string(t.Status)); err != nil {
			return err
		}
	}
	return nil
}

// MonthlySummary is the per-month aggregation of a user's transactions.
type MonthlySummary struct {
	Month             string                        `json:"month"` // "2025-09"
	TotalIncome       Money                         `json:"totalIncome"`
	TotalExpense      Money                         `json:"totalExpense"`
	NetBalance        Money                         `json:"netBalance"`
	TransactionCount  int                           `json:"transactionCount"`
	CategoryBreakdown map[TransactionCategory]Money `json:"categoryBreakdown"`
}

// TransactionStatistics is the all-time aggregation for a user.
type TransactionStatistics struct {
	TotalTransactions int                           `json:"totalTransactions"`
	TotalIncome       Money                         `json:"totalIncome"`
	TotalExpense      Money                         `json:"totalExpense"`
	NetBalance        Money                         `json:"netBalance"`
	ByCategory        map[TransactionCategory]int64 `json:"transactionsByCategory"`
	AverageAmount     Money                         `json:"averageTransactionAmount"`
}

// PaymentNotification is the external mobile-money payload. Merchant
// is the only optional field.
type PaymentNotification struct {
	Amount         string `json:"amount"`
	ReceiptNumber  string `json:"receiptNumber"`
	TransactionID  string `json:"transactionId"`
	RecipientPhone string `json:"recipientPhone"`
	Merchant       string `json:"merchant,omitempty"`
}

// Validate checks that every required notification field is present.
// Missing fields are an error, never silently defaulted.
func (p PaymentNotification) Validate() error {
	if strings.TrimSpace(p.Amount) == "" {
		return Validationf("amount", "missing required field")
	}
	if strings.TrimSpace(p.ReceiptNumber) == "" {
		return Validationf("receiptNumber", "missing required field")
	}
	if strings.TrimSpace(p.TransactionID) == "" {
		return Validationf("transactionId", "missing required field")
	}
	if strings.TrimSpace(p.RecipientPhone) == "" {
		return Validationf("recipientPhone", "missing required field")
	}
	return nil
}
