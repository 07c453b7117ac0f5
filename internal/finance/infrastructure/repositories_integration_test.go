package infrastructure

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	database "fintrack/db"
	"fintrack/internal/finance/application"
	"fintrack/internal/finance/domain"
	financeErrors "fintrack/internal/finance/errors"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx := context.Background()
	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("fintrack_test"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminating container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("pgx", connStr)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.RunMigrations(db))
	return db
}

func createTestUser(t *testing.T, db *sql.DB, id string) {
	t.Helper()
	_, err := db.Exec(
		`INSERT INTO users (id, email, login, password_hash, hash_token) VALUES ($1, $2, $3, 'hash', 'token')`,
		id, fmt.Sprintf("%s@example.com", id[:8]), id[:8],
	)
	require.NoError(t, err)
}

func TestCategoryRepository_Integration(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCategoryRepository(db)

	names := application.DefaultCategoryNames()
	require.NoError(t, repo.EnsureDefaults(names))
	require.NoError(t, repo.EnsureDefaults(names), "seeding must be idempotent")

	categories, err := repo.FindAll()
	require.NoError(t, err)
	assert.Len(t, categories, len(names))

	lookup, err := repo.NameLookup()
	require.NoError(t, err)
	require.Contains(t, lookup, "Food & Drink")

	category, err := repo.FindByID(lookup["Food & Drink"])
	require.NoError(t, err)
	assert.Equal(t, "Food & Drink", category.Name)

	_, err = repo.FindByID(99999)
	assert.ErrorIs(t, err, financeErrors.ErrInvalidCategory)
}

func TestAccountRepository_Integration(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewAccountRepository(db)
	transactions := NewTransactionRepository(db)

	userID := "11111111-1111-1111-1111-111111111111"
	createTestUser(t, db, userID)

	legacy := &domain.BankAccount{UserID: userID, AccountName: "HDFC Savings", AccountType: "savings", IsActive: true}
	require.NoError(t, accounts.CreateLegacy(legacy))
	require.NotZero(t, legacy.ID)

	owned, err := accounts.FindLegacyByUser(userID)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, "HDFC Savings", owned[0].AccountName)

	require.NoError(t, accounts.RenameLegacy(legacy.ID, "HDFC Primary"))
	require.NoError(t, accounts.SetLegacyActive(legacy.ID, false))

	renamed, err := accounts.FindLegacyByID(legacy.ID)
	require.NoError(t, err)
	assert.Equal(t, "HDFC Primary", renamed.AccountName)
	assert.False(t, renamed.IsActive)

	linked := &domain.LinkedAccount{UserID: userID, BankName: "ICICI", AccountNickname: "Salary", ConsentStatus: "active", IsActive: true}
	require.NoError(t, accounts.CreateLinked(linked))
	require.NotZero(t, linked.ID)

	// Never synced, so it counts as stale from any cutoff.
	stale, err := accounts.FindStaleLinked(time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, linked.ID, stale[0].ID)

	tx, err := transactions.BeginTx()
	require.NoError(t, err)
	require.NoError(t, accounts.TouchSyncedTx(tx, domain.LinkedRef(linked.ID), time.Now()))
	require.NoError(t, tx.Commit())

	stale, err = accounts.FindStaleLinked(time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Empty(t, stale)

	tx, err = transactions.BeginTx()
	require.NoError(t, err)
	require.NoError(t, accounts.DeleteLinkedTx(tx, linked.ID))
	require.NoError(t, tx.Commit())

	remaining, err := accounts.FindLinkedByUser(userID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestTransactionRepository_Integration(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewAccountRepository(db)
	categories := NewCategoryRepository(db)
	transactions := NewTransactionRepository(db)

	userID := "22222222-2222-2222-2222-222222222222"
	createTestUser(t, db, userID)
	require.NoError(t, categories.EnsureDefaults(application.DefaultCategoryNames()))

	lookup, err := categories.NameLookup()
	require.NoError(t, err)
	foodID := lookup["Food & Drink"]

	account := &domain.BankAccount{UserID: userID, AccountName: "SBI Savings", IsActive: true}
	require.NoError(t, accounts.CreateLegacy(account))
	ref := domain.LegacyRef(account.ID)

	march := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	february := time.Date(2025, time.February, 5, 0, 0, 0, 0, time.UTC)

	tx, err := transactions.BeginTx()
	require.NoError(t, err)

	zomato := &domain.Transaction{
		UserID: userID, Account: ref, Date: march,
		Description: "Payment to Zomato", Amount: decimal.NewFromInt(450), Type: domain.TransactionDebit,
	}
	require.NoError(t, transactions.SaveTx(tx, zomato))
	require.NotZero(t, zomato.ID)

	atm := &domain.Transaction{
		UserID: userID, Account: ref, Date: march.AddDate(0, 0, 5),
		Description: "Payment to ATM Withdrawal", Amount: decimal.NewFromInt(5000), Type: domain.TransactionDebit,
	}
	require.NoError(t, transactions.SaveTx(tx, atm))

	older := &domain.Transaction{
		UserID: userID, Account: ref, Date: february,
		Description: "Payment to Netflix", Amount: decimal.NewFromInt(199), Type: domain.TransactionDebit,
	}
	require.NoError(t, transactions.SaveTx(tx, older))

	exists, err := transactions.ExistsDuplicateTx(tx, ref, march, "Payment to Zomato", decimal.NewFromInt(450))
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = transactions.ExistsDuplicateTx(tx, ref, march, "Payment to Zomato", decimal.NewFromInt(451))
	require.NoError(t, err)
	assert.False(t, exists)

	applied, err := transactions.AssignCategoryIfUnsetTx(tx, zomato.ID, foodID)
	require.NoError(t, err)
	assert.True(t, applied)

	// Second assignment must not overwrite.
	applied, err = transactions.AssignCategoryIfUnsetTx(tx, zomato.ID, lookup["Shopping"])
	require.NoError(t, err)
	assert.False(t, applied)

	require.NoError(t, tx.Commit())

	monthly, err := transactions.FindForMonth(domain.AccountScope(userID, ref), 2025, time.March)
	require.NoError(t, err)
	require.Len(t, monthly, 2)
	assert.Equal(t, "Payment to ATM Withdrawal", monthly[0].Description, "newest first")
	require.NotNil(t, monthly[1].CategoryID)
	assert.Equal(t, foodID, *monthly[1].CategoryID)

	months, err := transactions.MonthsWithTransactions(domain.CombinedScope(userID))
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-03", "2025-02"}, months)

	aggregate, err := transactions.MonthlyAggregate(domain.CombinedScope(userID), 2025, time.March)
	require.NoError(t, err)
	assert.Equal(t, 2, aggregate.TransactionCount)
	assert.True(t, aggregate.TotalSpending.Equal(decimal.NewFromInt(5450)))
	require.Len(t, aggregate.CategoryTotals, 1)
	assert.Equal(t, "Food & Drink", aggregate.CategoryTotals[0].Name)
	assert.True(t, aggregate.CategoryTotals[0].Amount.Equal(decimal.NewFromInt(450)))
	assert.True(t, aggregate.UncategorizedTotal.Equal(decimal.NewFromInt(5000)))

	count, total, err := transactions.StatsForAccount(ref)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.True(t, total.Equal(decimal.NewFromInt(5649)))

	require.NoError(t, transactions.SetCategory(atm.ID, &foodID))
	updated, err := transactions.FindByID(atm.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.CategoryID)

	require.NoError(t, transactions.SetCategory(atm.ID, nil))
	updated, err = transactions.FindByID(atm.ID)
	require.NoError(t, err)
	assert.Nil(t, updated.CategoryID)

	tx, err = transactions.BeginTx()
	require.NoError(t, err)
	require.NoError(t, transactions.DeleteByUserTx(tx, userID))
	require.NoError(t, tx.Commit())

	months, err = transactions.MonthsWithTransactions(domain.CombinedScope(userID))
	require.NoError(t, err)
	assert.Empty(t, months)
}
