package interfaces

import (
	"errors"
	"time"

	"fintrack/internal/finance/application"
	"fintrack/internal/finance/domain"
)

var errMockFailure = errors.New("mock failure")

type MockResolver struct {
	selection application.Selection
	lastUser  string
	lastQuery [2]string
}

func (m *MockResolver) Resolve(userID, selector, monthParam string) application.Selection {
	m.lastUser = userID
	m.lastQuery = [2]string{selector, monthParam}
	return m.selection
}

type MockAggregator struct {
	summary   application.MonthlySummary
	lastScope domain.Scope
}

func (m *MockAggregator) Aggregate(scope domain.Scope, year int, month time.Month) application.MonthlySummary {
	m.lastScope = scope
	return m.summary
}

type MockTransactionService struct {
	transactions []domain.Transaction
	categories   []domain.Category
	updated      *domain.Transaction
	setErr       error
	shouldFail   bool

	lastCategoryID *int
}

func (m *MockTransactionService) ListForMonth(scope domain.Scope, year int, month time.Month) ([]domain.Transaction, error) {
	if m.shouldFail {
		return nil, errMockFailure
	}
	return m.transactions, nil
}

func (m *MockTransactionService) SetCategory(userID string, transactionID int, categoryID *int) (*domain.Transaction, error) {
	if m.setErr != nil {
		return nil, m.setErr
	}
	m.lastCategoryID = categoryID
	return m.updated, nil
}

func (m *MockTransactionService) ListCategories() ([]domain.Category, error) {
	if m.shouldFail {
		return nil, errMockFailure
	}
	return m.categories, nil
}

type MockAccountService struct {
	legacy     []application.LegacyAccountInfo
	linked     []application.LinkedAccountInfo
	account    *domain.LinkedAccount
	active     bool
	deleted    string
	err        error
	shouldFail bool
}

func (m *MockAccountService) ListAccounts(userID string) ([]application.LegacyAccountInfo, []application.LinkedAccountInfo, error) {
	if m.shouldFail {
		return nil, nil, errMockFailure
	}
	return m.legacy, m.linked, nil
}

func (m *MockAccountService) LinkAccount(userID, bankName, nickname string) (*domain.LinkedAccount, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.account, nil
}

func (m *MockAccountService) RenameLegacy(userID string, accountID int, name string) error {
	return m.err
}

func (m *MockAccountService) ToggleLegacy(userID string, accountID int) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.active, nil
}

func (m *MockAccountService) DeleteLinked(userID string, accountID int) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.deleted, nil
}

type MockSyncService struct {
	added    int
	accounts int
	err      error
	lastRef  domain.AccountRef
}

func (m *MockSyncService) SyncAccount(userID string, ref domain.AccountRef) (int, error) {
	m.lastRef = ref
	if m.err != nil {
		return 0, m.err
	}
	return m.added, nil
}

func (m *MockSyncService) GenerateDemoData(userID string) (int, int, error) {
	if m.err != nil {
		return 0, 0, m.err
	}
	return m.added, m.accounts, nil
}
