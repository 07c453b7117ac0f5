package infrastructure

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/finance/domain"
	financeErrors "fintrack/internal/finance/errors"
)

// In-memory repository doubles for the application and handler tests.

type noopTx struct{}

func (noopTx) Commit() error   { return nil }
func (noopTx) Rollback() error { return nil }

type MockTransactionRepository struct {
	Transactions []domain.Transaction
	// CategoryNames resolves category ids for aggregation, standing in for
	// the categories join.
	CategoryNames map[int]string
	// Err, when set, makes every method fail with it.
	Err    error
	nextID int
}

func (m *MockTransactionRepository) BeginTx() (domain.Tx, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return noopTx{}, nil
}

func (m *MockTransactionRepository) SaveTx(_ domain.Tx, transaction *domain.Transaction) error {
	if m.Err != nil {
		return m.Err
	}
	m.nextID++
	transaction.ID = m.nextID
	transaction.CreatedAt = time.Now().UTC()
	m.Transactions = append(m.Transactions, *transaction)
	return nil
}

func (m *MockTransactionRepository) ExistsDuplicateTx(_ domain.Tx, ref domain.AccountRef, date time.Time, description string, amount decimal.Decimal) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	for _, t := range m.Transactions {
		if t.Account == ref && t.Date.Equal(date) && t.Description == description && t.Amount.Equal(amount) {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockTransactionRepository) AssignCategoryIfUnsetTx(_ domain.Tx, transactionID, categoryID int) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	for i := range m.Transactions {
		if m.Transactions[i].ID == transactionID && m.Transactions[i].CategoryID == nil {
			id := categoryID
			m.Transactions[i].CategoryID = &id
			return true, nil
		}
	}
	return false, nil
}

func (m *MockTransactionRepository) DeleteByUserTx(_ domain.Tx, userID string) error {
	if m.Err != nil {
		return m.Err
	}
	kept := m.Transactions[:0]
	for _, t := range m.Transactions {
		if t.UserID != userID {
			kept = append(kept, t)
		}
	}
	m.Transactions = kept
	return nil
}

func (m *MockTransactionRepository) DeleteByAccountTx(_ domain.Tx, ref domain.AccountRef) error {
	if m.Err != nil {
		return m.Err
	}
	kept := m.Transactions[:0]
	for _, t := range m.Transactions {
		if t.Account != ref {
			kept = append(kept, t)
		}
	}
	m.Transactions = kept
	return nil
}

func (m *MockTransactionRepository) FindByID(transactionID int) (*domain.Transaction, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for _, t := range m.Transactions {
		if t.ID == transactionID {
			found := t
			return &found, nil
		}
	}
	return nil, financeErrors.ErrTransactionNotFound
}

func (m *MockTransactionRepository) FindForMonth(scope domain.Scope, year int, month time.Month) ([]domain.Transaction, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var matched []domain.Transaction
	for _, t := range m.Transactions {
		if scopeContains(scope, t) && t.Date.Year() == year && t.Date.Month() == month {
			matched = append(matched, t)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].Date.Equal(matched[j].Date) {
			return matched[i].Date.After(matched[j].Date)
		}
		return matched[i].ID > matched[j].ID
	})
	return matched, nil
}

func (m *MockTransactionRepository) MonthsWithTransactions(scope domain.Scope) ([]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	seen := map[string]bool{}
	var months []string
	for _, t := range m.Transactions {
		if !scopeContains(scope, t) {
			continue
		}
		month := fmt.Sprintf("%04d-%02d", t.Date.Year(), int(t.Date.Month()))
		if !seen[month] {
			seen[month] = true
			months = append(months, month)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(months)))
	return months, nil
}

func (m *MockTransactionRepository) MonthlyAggregate(scope domain.Scope, year int, month time.Month) (*domain.MonthlyAggregate, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	aggregate := &domain.MonthlyAggregate{
		TotalSpending:      decimal.Zero,
		UncategorizedTotal: decimal.Zero,
	}
	totals := map[string]decimal.Decimal{}
	for _, t := range m.Transactions {
		if !scopeContains(scope, t) || t.Date.Year() != year || t.Date.Month() != month {
			continue
		}
		aggregate.TotalSpending = aggregate.TotalSpending.Add(t.Amount)
		aggregate.TransactionCount++
		if t.CategoryID == nil {
			aggregate.UncategorizedTotal = aggregate.UncategorizedTotal.Add(t.Amount)
			continue
		}
		name := m.CategoryNames[*t.CategoryID]
		totals[name] = totals[name].Add(t.Amount)
	}
	for name, amount := range totals {
		aggregate.CategoryTotals = append(aggregate.CategoryTotals, domain.CategoryAmount{Name: name, Amount: amount})
	}
	sort.SliceStable(aggregate.CategoryTotals, func(i, j int) bool {
		a, b := aggregate.CategoryTotals[i], aggregate.CategoryTotals[j]
		if !a.Amount.Equal(b.Amount) {
			return a.Amount.GreaterThan(b.Amount)
		}
		return a.Name < b.Name
	})
	return aggregate, nil
}

func (m *MockTransactionRepository) StatsForAccount(ref domain.AccountRef) (int, decimal.Decimal, error) {
	if m.Err != nil {
		return 0, decimal.Zero, m.Err
	}
	count := 0
	total := decimal.Zero
	for _, t := range m.Transactions {
		if t.Account == ref {
			count++
			total = total.Add(t.Amount)
		}
	}
	return count, total, nil
}

func (m *MockTransactionRepository) SetCategory(transactionID int, categoryID *int) error {
	if m.Err != nil {
		return m.Err
	}
	for i := range m.Transactions {
		if m.Transactions[i].ID == transactionID {
			m.Transactions[i].CategoryID = categoryID
			return nil
		}
	}
	return financeErrors.ErrTransactionNotFound
}

func scopeContains(scope domain.Scope, t domain.Transaction) bool {
	if scope.Account.IsNone() {
		return t.UserID == scope.UserID
	}
	return t.Account == scope.Account
}

type MockAccountRepository struct {
	Legacy []domain.BankAccount
	Linked []domain.LinkedAccount
	Err    error
	nextID int
}

func (m *MockAccountRepository) CreateLegacy(account *domain.BankAccount) error {
	if m.Err != nil {
		return m.Err
	}
	m.nextID++
	account.ID = m.nextID
	account.CreatedAt = time.Now().UTC()
	m.Legacy = append(m.Legacy, *account)
	return nil
}

func (m *MockAccountRepository) FindLegacyByID(id int) (*domain.BankAccount, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for _, account := range m.Legacy {
		if account.ID == id {
			found := account
			return &found, nil
		}
	}
	return nil, financeErrors.ErrAccountNotFound
}

func (m *MockAccountRepository) FindLegacyByUser(userID string) ([]domain.BankAccount, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var accounts []domain.BankAccount
	for _, account := range m.Legacy {
		if account.UserID == userID {
			accounts = append(accounts, account)
		}
	}
	return accounts, nil
}

func (m *MockAccountRepository) RenameLegacy(id int, name string) error {
	if m.Err != nil {
		return m.Err
	}
	for i := range m.Legacy {
		if m.Legacy[i].ID == id {
			m.Legacy[i].AccountName = name
			return nil
		}
	}
	return financeErrors.ErrAccountNotFound
}

func (m *MockAccountRepository) SetLegacyActive(id int, active bool) error {
	if m.Err != nil {
		return m.Err
	}
	for i := range m.Legacy {
		if m.Legacy[i].ID == id {
			m.Legacy[i].IsActive = active
			return nil
		}
	}
	return financeErrors.ErrAccountNotFound
}

func (m *MockAccountRepository) CreateLinked(account *domain.LinkedAccount) error {
	if m.Err != nil {
		return m.Err
	}
	m.nextID++
	account.ID = m.nextID
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}
	m.Linked = append(m.Linked, *account)
	return nil
}

func (m *MockAccountRepository) FindLinkedByID(id int) (*domain.LinkedAccount, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for _, account := range m.Linked {
		if account.ID == id {
			found := account
			return &found, nil
		}
	}
	return nil, financeErrors.ErrAccountNotFound
}

func (m *MockAccountRepository) FindLinkedByUser(userID string) ([]domain.LinkedAccount, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var accounts []domain.LinkedAccount
	for _, account := range m.Linked {
		if account.UserID == userID {
			accounts = append(accounts, account)
		}
	}
	return accounts, nil
}

func (m *MockAccountRepository) FindStaleLinked(olderThan time.Time) ([]domain.LinkedAccount, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var stale []domain.LinkedAccount
	for _, account := range m.Linked {
		if !account.IsActive {
			continue
		}
		if account.LastSynced == nil || account.LastSynced.Before(olderThan) {
			stale = append(stale, account)
		}
	}
	return stale, nil
}

func (m *MockAccountRepository) DeleteLinkedTx(_ domain.Tx, id int) error {
	if m.Err != nil {
		return m.Err
	}
	kept := m.Linked[:0]
	for _, account := range m.Linked {
		if account.ID != id {
			kept = append(kept, account)
		}
	}
	m.Linked = kept
	return nil
}

func (m *MockAccountRepository) TouchSyncedTx(_ domain.Tx, ref domain.AccountRef, at time.Time) error {
	if m.Err != nil {
		return m.Err
	}
	switch ref.Kind {
	case domain.AccountLegacy:
		for i := range m.Legacy {
			if m.Legacy[i].ID == ref.ID {
				synced := at
				m.Legacy[i].LastSynced = &synced
				return nil
			}
		}
	case domain.AccountLinked:
		for i := range m.Linked {
			if m.Linked[i].ID == ref.ID {
				synced := at
				m.Linked[i].LastSynced = &synced
				return nil
			}
		}
	}
	return financeErrors.ErrAccountNotFound
}

type MockCategoryRepository struct {
	Categories []domain.Category
	Err        error
}

// NewMockCategoryRepository assigns ids 1..n in the order given.
func NewMockCategoryRepository(names ...string) *MockCategoryRepository {
	repo := &MockCategoryRepository{}
	for i, name := range names {
		repo.Categories = append(repo.Categories, domain.Category{ID: i + 1, Name: name})
	}
	return repo
}

func (m *MockCategoryRepository) EnsureDefaults(names []string) error {
	if m.Err != nil {
		return m.Err
	}
	for _, name := range names {
		exists := false
		for _, category := range m.Categories {
			if category.Name == name {
				exists = true
				break
			}
		}
		if !exists {
			m.Categories = append(m.Categories, domain.Category{ID: len(m.Categories) + 1, Name: name})
		}
	}
	return nil
}

func (m *MockCategoryRepository) FindAll() ([]domain.Category, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Categories, nil
}

func (m *MockCategoryRepository) FindByID(id int) (*domain.Category, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for _, category := range m.Categories {
		if category.ID == id {
			found := category
			return &found, nil
		}
	}
	return nil, financeErrors.ErrInvalidCategory
}

func (m *MockCategoryRepository) NameLookup() (map[string]int, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	lookup := make(map[string]int, len(m.Categories))
	for _, category := range m.Categories {
		lookup[category.Name] = category.ID
	}
	return lookup, nil
}

// NameMap is a convenience for wiring MockTransactionRepository.CategoryNames.
func (m *MockCategoryRepository) NameMap() map[int]string {
	return categoryNameMap(m.Categories)
}

func categoryNameMap(categories []domain.Category) map[int]string {
	names := make(map[int]string, len(categories))
	for _, category := range categories {
		names[category.ID] = category.Name
	}
	return names
}
