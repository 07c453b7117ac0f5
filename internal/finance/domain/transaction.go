package domain

import (
	"time"

	"github.com/shopspring/decimal"

	financeErrors "fintrack/internal/finance/errors"
)

const (
	TransactionDebit  = "debit"
	TransactionCredit = "credit"

	maxDescriptionLength = 500
)

// Transaction is immutable once synced except for its category assignment.
type Transaction struct {
	ID          int             `json:"id"`
	UserID      string          `json:"-"`
	Account     AccountRef      `json:"-"`
	CategoryID  *int            `json:"category_id"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"transaction_type"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (t *Transaction) Validate() error {
	if t.Amount.IsNegative() {
		return financeErrors.NewValidationError("Amount must not be negative")
	}
	if t.Type != TransactionDebit && t.Type != TransactionCredit {
		return financeErrors.NewValidationError("Type must be 'debit' or 'credit'")
	}
	if t.Description == "" {
		return financeErrors.NewValidationError("Description must not be empty")
	}
	if len(t.Description) > maxDescriptionLength {
		return financeErrors.NewValidationError("Description must be of length less than 500")
	}
	return nil
}

// Categorized reports whether a category has been assigned; the nil state is
// the "Uncategorized" bucket, a valid terminal state rather than an error.
func (t *Transaction) Categorized() bool {
	return t.CategoryID != nil
}

// CategoryAmount is one breakdown entry of a monthly aggregate.
type CategoryAmount struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// MonthlyAggregate is the raw grouping the store computes for one scope and
// one calendar month. CategoryTotals covers categorized transactions only,
// ordered by amount descending then name ascending.
type MonthlyAggregate struct {
	TotalSpending      decimal.Decimal
	TransactionCount   int
	CategoryTotals     []CategoryAmount
	UncategorizedTotal decimal.Decimal
}

type TransactionRepository interface {
	BeginTx() (Tx, error)
	SaveTx(tx Tx, transaction *Transaction) error
	ExistsDuplicateTx(tx Tx, ref AccountRef, date time.Time, description string, amount decimal.Decimal) (bool, error)
	AssignCategoryIfUnsetTx(tx Tx, transactionID, categoryID int) (bool, error)
	DeleteByUserTx(tx Tx, userID string) error
	DeleteByAccountTx(tx Tx, ref AccountRef) error

	FindByID(transactionID int) (*Transaction, error)
	FindForMonth(scope Scope, year int, month time.Month) ([]Transaction, error)
	MonthsWithTransactions(scope Scope) ([]string, error)
	MonthlyAggregate(scope Scope, year int, month time.Month) (*MonthlyAggregate, error)
	StatsForAccount(ref AccountRef) (int, decimal.Decimal, error)
	SetCategory(transactionID int, categoryID *int) error
}
