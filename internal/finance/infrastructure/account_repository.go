package infrastructure

import (
	"database/sql"
	"errors"
	"time"

	"fintrack/internal/finance/domain"
	financeErrors "fintrack/internal/finance/errors"
)

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) CreateLegacy(account *domain.BankAccount) error {
	return r.db.QueryRow(
		`INSERT INTO bank_accounts (user_id, account_name, account_type, is_active, last_synced)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		account.UserID, account.AccountName, nullString(account.AccountType), account.IsActive, account.LastSynced,
	).Scan(&account.ID, &account.CreatedAt)
}

func (r *AccountRepository) FindLegacyByID(id int) (*domain.BankAccount, error) {
	var account domain.BankAccount
	var accountType sql.NullString
	err := r.db.QueryRow(
		`SELECT id, user_id, account_name, account_type, is_active, last_synced, created_at
		FROM bank_accounts WHERE id = $1`,
		id,
	).Scan(&account.ID, &account.UserID, &account.AccountName, &accountType, &account.IsActive, &account.LastSynced, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, financeErrors.ErrAccountNotFound
		}
		return nil, err
	}
	account.AccountType = accountType.String
	return &account, nil
}

func (r *AccountRepository) FindLegacyByUser(userID string) ([]domain.BankAccount, error) {
	rows, err := r.db.Query(
		`SELECT id, user_id, account_name, account_type, is_active, last_synced, created_at
		FROM bank_accounts WHERE user_id = $1 ORDER BY created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.BankAccount
	for rows.Next() {
		var account domain.BankAccount
		var accountType sql.NullString
		if err := rows.Scan(&account.ID, &account.UserID, &account.AccountName, &accountType, &account.IsActive, &account.LastSynced, &account.CreatedAt); err != nil {
			return nil, err
		}
		account.AccountType = accountType.String
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func (r *AccountRepository) RenameLegacy(id int, name string) error {
	_, err := r.db.Exec(`UPDATE bank_accounts SET account_name = $1 WHERE id = $2`, name, id)
	return err
}

func (r *AccountRepository) SetLegacyActive(id int, active bool) error {
	_, err := r.db.Exec(`UPDATE bank_accounts SET is_active = $1 WHERE id = $2`, active, id)
	return err
}

func (r *AccountRepository) CreateLinked(account *domain.LinkedAccount) error {
	return r.db.QueryRow(
		`INSERT INTO linked_accounts (user_id, bank_name, account_nickname, consent_status, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, creation_date`,
		account.UserID, account.BankName, account.AccountNickname, account.ConsentStatus, account.IsActive,
	).Scan(&account.ID, &account.CreatedAt)
}

func (r *AccountRepository) FindLinkedByID(id int) (*domain.LinkedAccount, error) {
	var account domain.LinkedAccount
	err := r.db.QueryRow(
		`SELECT id, user_id, bank_name, account_nickname, consent_status, is_active, last_synced, creation_date
		FROM linked_accounts WHERE id = $1`,
		id,
	).Scan(&account.ID, &account.UserID, &account.BankName, &account.AccountNickname, &account.ConsentStatus, &account.IsActive, &account.LastSynced, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, financeErrors.ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) FindLinkedByUser(userID string) ([]domain.LinkedAccount, error) {
	rows, err := r.db.Query(
		`SELECT id, user_id, bank_name, account_nickname, consent_status, is_active, last_synced, creation_date
		FROM linked_accounts WHERE user_id = $1 ORDER BY creation_date ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLinkedAccounts(rows)
}

func (r *AccountRepository) FindStaleLinked(olderThan time.Time) ([]domain.LinkedAccount, error) {
	rows, err := r.db.Query(
		`SELECT id, user_id, bank_name, account_nickname, consent_status, is_active, last_synced, creation_date
		FROM linked_accounts
		WHERE is_active AND (last_synced IS NULL OR last_synced < $1)
		ORDER BY id ASC`,
		olderThan,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLinkedAccounts(rows)
}

func (r *AccountRepository) DeleteLinkedTx(tx domain.Tx, id int) error {
	t, err := asSQLTx(tx)
	if err != nil {
		return err
	}
	_, err = t.Exec(`DELETE FROM linked_accounts WHERE id = $1`, id)
	return err
}

func (r *AccountRepository) TouchSyncedTx(tx domain.Tx, ref domain.AccountRef, at time.Time) error {
	t, err := asSQLTx(tx)
	if err != nil {
		return err
	}
	switch ref.Kind {
	case domain.AccountLegacy:
		_, err = t.Exec(`UPDATE bank_accounts SET last_synced = $1 WHERE id = $2`, at, ref.ID)
	case domain.AccountLinked:
		_, err = t.Exec(`UPDATE linked_accounts SET last_synced = $1 WHERE id = $2`, at, ref.ID)
	default:
		err = errors.New("account reference required")
	}
	return err
}

func scanLinkedAccounts(rows *sql.Rows) ([]domain.LinkedAccount, error) {
	var accounts []domain.LinkedAccount
	for rows.Next() {
		var account domain.LinkedAccount
		if err := rows.Scan(&account.ID, &account.UserID, &account.BankName, &account.AccountNickname, &account.ConsentStatus, &account.IsActive, &account.LastSynced, &account.CreatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
