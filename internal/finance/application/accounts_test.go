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

func newAccountFixture() (*AccountService, *infrastructure.MockAccountRepository, *infrastructure.MockTransactionRepository) {
	accounts := &infrastructure.MockAccountRepository{
		Legacy: []domain.BankAccount{{ID: 1, UserID: "user-1", AccountName: "Salary", IsActive: true}},
		Linked: []domain.LinkedAccount{{ID: 2, UserID: "user-1", BankName: "HDFC", AccountNickname: "Savings", IsActive: true}},
	}
	transactions := &infrastructure.MockTransactionRepository{
		Transactions: []domain.Transaction{
			{ID: 1, UserID: "user-1", Account: domain.LegacyRef(1), Date: time.Now(), Amount: decimal.NewFromInt(100)},
			{ID: 2, UserID: "user-1", Account: domain.LinkedRef(2), Date: time.Now(), Amount: decimal.NewFromInt(200)},
			{ID: 3, UserID: "user-1", Account: domain.LinkedRef(2), Date: time.Now(), Amount: decimal.NewFromInt(300)},
		},
	}
	return NewAccountService(accounts, transactions), accounts, transactions
}

func TestAccountService_ListAccounts(t *testing.T) {
	service, _, _ := newAccountFixture()

	legacy, linked, err := service.ListAccounts("user-1")

	require.NoError(t, err)
	require.Len(t, legacy, 1)
	assert.Equal(t, 1, legacy[0].TransactionCount)
	assert.True(t, legacy[0].Balance.Equal(decimal.NewFromInt(100)))

	require.Len(t, linked, 1)
	assert.Equal(t, 2, linked[0].TransactionCount)
}

func TestAccountService_LinkAccount(t *testing.T) {
	service, accounts, _ := newAccountFixture()

	account, err := service.LinkAccount("user-1", "  ICICI  ", "Joint ")

	require.NoError(t, err)
	assert.Equal(t, "ICICI", account.BankName)
	assert.Equal(t, "Joint", account.AccountNickname)
	assert.Equal(t, "active", account.ConsentStatus)
	assert.True(t, account.IsActive)
	assert.NotZero(t, account.ID)
	assert.Len(t, accounts.Linked, 2)
}

func TestAccountService_LinkAccountValidates(t *testing.T) {
	service, _, _ := newAccountFixture()

	_, err := service.LinkAccount("user-1", "", "Savings")
	assert.True(t, financeErrors.IsValidationError(err))

	_, err = service.LinkAccount("user-1", "HDFC", "   ")
	assert.True(t, financeErrors.IsValidationError(err))
}

func TestAccountService_RenameLegacy(t *testing.T) {
	service, accounts, _ := newAccountFixture()

	require.NoError(t, service.RenameLegacy("user-1", 1, " Household "))
	assert.Equal(t, "Household", accounts.Legacy[0].AccountName)

	err := service.RenameLegacy("user-1", 1, "  ")
	assert.True(t, financeErrors.IsValidationError(err))

	err = service.RenameLegacy("someone-else", 1, "Mine now")
	assert.ErrorIs(t, err, financeErrors.ErrAccountNotFound)
}

func TestAccountService_ToggleLegacy(t *testing.T) {
	service, accounts, _ := newAccountFixture()

	active, err := service.ToggleLegacy("user-1", 1)
	require.NoError(t, err)
	assert.False(t, active)
	assert.False(t, accounts.Legacy[0].IsActive)

	active, err = service.ToggleLegacy("user-1", 1)
	require.NoError(t, err)
	assert.True(t, active)

	_, err = service.ToggleLegacy("someone-else", 1)
	assert.ErrorIs(t, err, financeErrors.ErrAccountNotFound)
}

func TestAccountService_DeleteLinked(t *testing.T) {
	service, accounts, transactions := newAccountFixture()

	name, err := service.DeleteLinked("user-1", 2)

	require.NoError(t, err)
	assert.Equal(t, "Savings", name)
	assert.Empty(t, accounts.Linked)

	// Only the linked account's transactions go with it.
	require.Len(t, transactions.Transactions, 1)
	assert.Equal(t, domain.LegacyRef(1), transactions.Transactions[0].Account)
}

func TestAccountService_DeleteLinkedChecksOwnership(t *testing.T) {
	service, accounts, transactions := newAccountFixture()

	_, err := service.DeleteLinked("someone-else", 2)

	assert.ErrorIs(t, err, financeErrors.ErrAccountNotFound)
	assert.Len(t, accounts.Linked, 1)
	assert.Len(t, transactions.Transactions, 3)
}
