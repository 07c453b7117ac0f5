package application

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/finance/domain"
	financeErrors "fintrack/internal/finance/errors"
)

// LegacyAccountInfo is a legacy account with its cached usage stats.
type LegacyAccountInfo struct {
	domain.BankAccount
	TransactionCount int             `json:"transaction_count"`
	Balance          decimal.Decimal `json:"balance"`
}

// LinkedAccountInfo is a linked account with its transaction count.
type LinkedAccountInfo struct {
	domain.LinkedAccount
	TransactionCount int `json:"transaction_count"`
}

// AccountService manages both account variants. Mutations verify ownership
// and surface financeErrors.ErrAccountNotFound for foreign or missing
// accounts; the handlers translate that into an explicit 403.
type AccountService struct {
	accounts     domain.AccountRepository
	transactions domain.TransactionRepository
}

func NewAccountService(accounts domain.AccountRepository, transactions domain.TransactionRepository) *AccountService {
	return &AccountService{accounts: accounts, transactions: transactions}
}

func (s *AccountService) ListAccounts(userID string) ([]LegacyAccountInfo, []LinkedAccountInfo, error) {
	legacy, err := s.accounts.FindLegacyByUser(userID)
	if err != nil {
		return nil, nil, err
	}
	linked, err := s.accounts.FindLinkedByUser(userID)
	if err != nil {
		return nil, nil, err
	}

	legacyInfos := make([]LegacyAccountInfo, 0, len(legacy))
	for _, account := range legacy {
		count, total, err := s.transactions.StatsForAccount(domain.LegacyRef(account.ID))
		if err != nil {
			return nil, nil, err
		}
		legacyInfos = append(legacyInfos, LegacyAccountInfo{
			BankAccount:      account,
			TransactionCount: count,
			Balance:          total,
		})
	}

	linkedInfos := make([]LinkedAccountInfo, 0, len(linked))
	for _, account := range linked {
		count, _, err := s.transactions.StatsForAccount(domain.LinkedRef(account.ID))
		if err != nil {
			return nil, nil, err
		}
		linkedInfos = append(linkedInfos, LinkedAccountInfo{
			LinkedAccount:    account,
			TransactionCount: count,
		})
	}

	return legacyInfos, linkedInfos, nil
}

// LinkAccount creates a new linked account from a bank name and nickname.
// The consent dance with a real Account Aggregator is out of scope, so the
// consent status starts out active.
func (s *AccountService) LinkAccount(userID, bankName, nickname string) (*domain.LinkedAccount, error) {
	bankName = strings.TrimSpace(bankName)
	nickname = strings.TrimSpace(nickname)
	if bankName == "" || nickname == "" {
		return nil, financeErrors.NewValidationError("Bank name and account nickname are required")
	}

	account := &domain.LinkedAccount{
		UserID:          userID,
		BankName:        bankName,
		AccountNickname: nickname,
		ConsentStatus:   "active",
		IsActive:        true,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.accounts.CreateLinked(account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *AccountService) RenameLegacy(userID string, accountID int, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return financeErrors.NewValidationError("Account name cannot be empty")
	}
	if _, err := s.ownedLegacy(userID, accountID); err != nil {
		return err
	}
	return s.accounts.RenameLegacy(accountID, name)
}

// ToggleLegacy flips the active flag and returns the new state.
func (s *AccountService) ToggleLegacy(userID string, accountID int) (bool, error) {
	account, err := s.ownedLegacy(userID, accountID)
	if err != nil {
		return false, err
	}
	next := !account.IsActive
	if err := s.accounts.SetLegacyActive(accountID, next); err != nil {
		return false, err
	}
	return next, nil
}

// DeleteLinked removes a linked account together with its transactions, in
// one store transaction. The user's other data is untouched.
func (s *AccountService) DeleteLinked(userID string, accountID int) (name string, err error) {
	account, err := s.accounts.FindLinkedByID(accountID)
	if err != nil || account.UserID != userID {
		return "", financeErrors.ErrAccountNotFound
	}

	tx, err := s.transactions.BeginTx()
	if err != nil {
		return "", err
	}
	defer func() {
		if p := recover(); p != nil {
			safeRollback(tx)
			panic(p)
		} else if err != nil {
			safeRollback(tx)
		} else {
			err = tx.Commit()
		}
	}()

	if err = s.transactions.DeleteByAccountTx(tx, domain.LinkedRef(accountID)); err != nil {
		return "", err
	}
	if err = s.accounts.DeleteLinkedTx(tx, accountID); err != nil {
		return "", err
	}
	return account.AccountNickname, nil
}

func (s *AccountService) ownedLegacy(userID string, accountID int) (*domain.BankAccount, error) {
	account, err := s.accounts.FindLegacyByID(accountID)
	if err != nil || account.UserID != userID {
		return nil, financeErrors.ErrAccountNotFound
	}
	return account, nil
}
