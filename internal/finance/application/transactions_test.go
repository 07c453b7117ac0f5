package application

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/finance/domain"
	financeErrors "fintrack/internal/finance/errors"
	"fintrack/internal/finance/infrastructure"
)

func newTransactionFixture() (*TransactionService, *infrastructure.MockTransactionRepository, *infrastructure.MockCategoryRepository) {
	categories := infrastructure.NewMockCategoryRepository(DefaultCategoryNames()...)
	transactions := &infrastructure.MockTransactionRepository{
		CategoryNames: categories.NameMap(),
		Transactions: []domain.Transaction{
			{ID: 1, UserID: "user-1", Date: time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC), Description: "Payment to Zomato", Amount: decimal.NewFromInt(450)},
			{ID: 2, UserID: "user-1", Date: time.Date(2025, time.March, 9, 0, 0, 0, 0, time.UTC), Description: "Payment to Uber", Amount: decimal.NewFromInt(350)},
			{ID: 3, UserID: "user-2", Date: time.Date(2025, time.March, 9, 0, 0, 0, 0, time.UTC), Description: "Payment to Netflix", Amount: decimal.NewFromInt(199)},
		},
	}
	return NewTransactionService(transactions, categories), transactions, categories
}

func TestTransactionService_ListForMonth(t *testing.T) {
	service, _, _ := newTransactionFixture()

	listed, err := service.ListForMonth(domain.CombinedScope("user-1"), 2025, time.March)

	require.NoError(t, err)
	require.Len(t, listed, 2)
	// Newest first.
	assert.Equal(t, 2, listed[0].ID)
	assert.Equal(t, 1, listed[1].ID)
}

func TestTransactionService_ListForMonthEmpty(t *testing.T) {
	service, _, _ := newTransactionFixture()

	listed, err := service.ListForMonth(domain.CombinedScope("user-1"), 2024, time.July)

	require.NoError(t, err)
	assert.NotNil(t, listed)
	assert.Empty(t, listed)
}

func TestTransactionService_SetCategory(t *testing.T) {
	service, transactions, categories := newTransactionFixture()
	lookup, _ := categories.NameLookup()
	food := lookup["Food & Drink"]

	updated, err := service.SetCategory("user-1", 1, &food)

	require.NoError(t, err)
	require.NotNil(t, updated.CategoryID)
	assert.Equal(t, food, *updated.CategoryID)
	require.NotNil(t, transactions.Transactions[0].CategoryID)
	assert.Equal(t, food, *transactions.Transactions[0].CategoryID)
}

func TestTransactionService_SetCategoryOverwritesAndClears(t *testing.T) {
	service, transactions, categories := newTransactionFixture()
	lookup, _ := categories.NameLookup()
	food, other := lookup["Food & Drink"], lookup["Other"]

	_, err := service.SetCategory("user-1", 1, &food)
	require.NoError(t, err)

	// Manual assignment may overwrite, unlike the sync-time categorizer.
	_, err = service.SetCategory("user-1", 1, &other)
	require.NoError(t, err)
	assert.Equal(t, other, *transactions.Transactions[0].CategoryID)

	_, err = service.SetCategory("user-1", 1, nil)
	require.NoError(t, err)
	assert.Nil(t, transactions.Transactions[0].CategoryID)
}

func TestTransactionService_SetCategoryErrors(t *testing.T) {
	service, _, categories := newTransactionFixture()
	lookup, _ := categories.NameLookup()
	food := lookup["Food & Drink"]

	_, err := service.SetCategory("user-1", 42, &food)
	assert.ErrorIs(t, err, financeErrors.ErrTransactionNotFound)

	_, err = service.SetCategory("user-1", 3, &food)
	assert.ErrorIs(t, err, financeErrors.ErrUnauthorized)

	unknown := 9999
	_, err = service.SetCategory("user-1", 1, &unknown)
	assert.ErrorIs(t, err, financeErrors.ErrInvalidCategory)
}

func TestTransactionService_ListCategories(t *testing.T) {
	service, _, _ := newTransactionFixture()

	listed, err := service.ListCategories()

	require.NoError(t, err)
	assert.Len(t, listed, len(DefaultCategoryNames()))
}
