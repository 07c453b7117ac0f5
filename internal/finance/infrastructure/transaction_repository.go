package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/finance/domain"
	financeErrors "fintrack/internal/finance/errors"
)

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) BeginTx() (domain.Tx, error) {
	return r.db.Begin()
}

func asSQLTx(tx domain.Tx) (*sql.Tx, error) {
	t, ok := tx.(*sql.Tx)
	if !ok {
		return nil, fmt.Errorf("unexpected transaction type %T", tx)
	}
	return t, nil
}

// scopeFilter renders the WHERE fragment selecting a scope's transactions.
// The account reference wins over the user filter because an account already
// implies its owner.
func scopeFilter(scope domain.Scope) (string, interface{}) {
	switch scope.Account.Kind {
	case domain.AccountLegacy:
		return "bank_account_id = $1", scope.Account.ID
	case domain.AccountLinked:
		return "account_id = $1", scope.Account.ID
	default:
		return "user_id = $1", scope.UserID
	}
}

func accountColumn(ref domain.AccountRef) (string, error) {
	switch ref.Kind {
	case domain.AccountLegacy:
		return "bank_account_id", nil
	case domain.AccountLinked:
		return "account_id", nil
	default:
		return "", errors.New("account reference required")
	}
}

func (r *TransactionRepository) SaveTx(tx domain.Tx, transaction *domain.Transaction) error {
	t, err := asSQLTx(tx)
	if err != nil {
		return err
	}

	var bankAccountID, linkedAccountID *int
	switch transaction.Account.Kind {
	case domain.AccountLegacy:
		bankAccountID = &transaction.Account.ID
	case domain.AccountLinked:
		linkedAccountID = &transaction.Account.ID
	}

	return t.QueryRow(
		`INSERT INTO transactions
		(user_id, bank_account_id, account_id, category_id, date, description, amount, transaction_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`,
		transaction.UserID, bankAccountID, linkedAccountID, transaction.CategoryID,
		transaction.Date, transaction.Description, transaction.Amount, transaction.Type,
	).Scan(&transaction.ID, &transaction.CreatedAt)
}

func (r *TransactionRepository) ExistsDuplicateTx(tx domain.Tx, ref domain.AccountRef, date time.Time, description string, amount decimal.Decimal) (bool, error) {
	t, err := asSQLTx(tx)
	if err != nil {
		return false, err
	}
	column, err := accountColumn(ref)
	if err != nil {
		return false, err
	}

	var exists bool
	query := fmt.Sprintf(
		`SELECT EXISTS(SELECT 1 FROM transactions WHERE %s = $1 AND date = $2 AND description = $3 AND amount = $4)`,
		column,
	)
	if err := t.QueryRow(query, ref.ID, date, description, amount).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *TransactionRepository) AssignCategoryIfUnsetTx(tx domain.Tx, transactionID, categoryID int) (bool, error) {
	t, err := asSQLTx(tx)
	if err != nil {
		return false, err
	}
	result, err := t.Exec(
		`UPDATE transactions SET category_id = $1 WHERE id = $2 AND category_id IS NULL`,
		categoryID, transactionID,
	)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *TransactionRepository) DeleteByUserTx(tx domain.Tx, userID string) error {
	t, err := asSQLTx(tx)
	if err != nil {
		return err
	}
	_, err = t.Exec(`DELETE FROM transactions WHERE user_id = $1`, userID)
	return err
}

func (r *TransactionRepository) DeleteByAccountTx(tx domain.Tx, ref domain.AccountRef) error {
	t, err := asSQLTx(tx)
	if err != nil {
		return err
	}
	column, err := accountColumn(ref)
	if err != nil {
		return err
	}
	_, err = t.Exec(fmt.Sprintf(`DELETE FROM transactions WHERE %s = $1`, column), ref.ID)
	return err
}

func (r *TransactionRepository) FindByID(transactionID int) (*domain.Transaction, error) {
	row := r.db.QueryRow(
		`SELECT id, user_id, bank_account_id, account_id, category_id, date, description, amount, transaction_type, created_at
		FROM transactions WHERE id = $1`,
		transactionID,
	)
	transaction, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, financeErrors.ErrTransactionNotFound
		}
		return nil, err
	}
	return transaction, nil
}

func (r *TransactionRepository) FindForMonth(scope domain.Scope, year int, month time.Month) ([]domain.Transaction, error) {
	filter, arg := scopeFilter(scope)
	query := fmt.Sprintf(
		`SELECT id, user_id, bank_account_id, account_id, category_id, date, description, amount, transaction_type, created_at
		FROM transactions
		WHERE %s AND EXTRACT(YEAR FROM date) = $2 AND EXTRACT(MONTH FROM date) = $3
		ORDER BY date DESC, id DESC`,
		filter,
	)
	rows, err := r.db.Query(query, arg, year, int(month))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *transaction)
	}
	return transactions, rows.Err()
}

func (r *TransactionRepository) MonthsWithTransactions(scope domain.Scope) ([]string, error) {
	filter, arg := scopeFilter(scope)
	query := fmt.Sprintf(
		`SELECT DISTINCT to_char(date, 'YYYY-MM') FROM transactions WHERE %s ORDER BY 1 DESC`,
		filter,
	)
	rows, err := r.db.Query(query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var months []string
	for rows.Next() {
		var month string
		if err := rows.Scan(&month); err != nil {
			return nil, err
		}
		months = append(months, month)
	}
	return months, rows.Err()
}

// MonthlyAggregate runs its three reads inside one read-only transaction so
// total, count and breakdown describe the same snapshot.
func (r *TransactionRepository) MonthlyAggregate(scope domain.Scope, year int, month time.Month) (aggregate *domain.MonthlyAggregate, err error) {
	tx, err := r.db.BeginTx(context.Background(), &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	filter, arg := scopeFilter(scope)
	monthFilter := fmt.Sprintf("%s AND EXTRACT(YEAR FROM date) = $2 AND EXTRACT(MONTH FROM date) = $3", filter)

	aggregate = &domain.MonthlyAggregate{}

	err = tx.QueryRow(
		fmt.Sprintf(`SELECT COALESCE(SUM(amount), 0), COUNT(*) FROM transactions WHERE %s`, monthFilter),
		arg, year, int(month),
	).Scan(&aggregate.TotalSpending, &aggregate.TransactionCount)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(
		fmt.Sprintf(
			`SELECT c.name, SUM(t.amount)
			FROM transactions t
			JOIN categories c ON c.id = t.category_id
			WHERE %s
			GROUP BY c.name
			ORDER BY SUM(t.amount) DESC, c.name ASC`,
			monthFilter,
		),
		arg, year, int(month),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var entry domain.CategoryAmount
		if err = rows.Scan(&entry.Name, &entry.Amount); err != nil {
			return nil, err
		}
		aggregate.CategoryTotals = append(aggregate.CategoryTotals, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	err = tx.QueryRow(
		fmt.Sprintf(`SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE %s AND category_id IS NULL`, monthFilter),
		arg, year, int(month),
	).Scan(&aggregate.UncategorizedTotal)
	if err != nil {
		return nil, err
	}

	return aggregate, nil
}

func (r *TransactionRepository) StatsForAccount(ref domain.AccountRef) (int, decimal.Decimal, error) {
	column, err := accountColumn(ref)
	if err != nil {
		return 0, decimal.Zero, err
	}
	var count int
	var total decimal.Decimal
	query := fmt.Sprintf(`SELECT COUNT(*), COALESCE(SUM(amount), 0) FROM transactions WHERE %s = $1`, column)
	if err := r.db.QueryRow(query, ref.ID).Scan(&count, &total); err != nil {
		return 0, decimal.Zero, err
	}
	return count, total, nil
}

func (r *TransactionRepository) SetCategory(transactionID int, categoryID *int) error {
	_, err := r.db.Exec(`UPDATE transactions SET category_id = $1 WHERE id = $2`, categoryID, transactionID)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var transaction domain.Transaction
	var bankAccountID, linkedAccountID sql.NullInt64
	err := row.Scan(
		&transaction.ID, &transaction.UserID, &bankAccountID, &linkedAccountID,
		&transaction.CategoryID, &transaction.Date, &transaction.Description,
		&transaction.Amount, &transaction.Type, &transaction.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	switch {
	case bankAccountID.Valid:
		transaction.Account = domain.LegacyRef(int(bankAccountID.Int64))
	case linkedAccountID.Valid:
		transaction.Account = domain.LinkedRef(int(linkedAccountID.Int64))
	}
	return &transaction, nil
}
