package application

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/finance/domain"
	"fintrack/internal/finance/infrastructure"
)

func aggregatorFixture() (*infrastructure.MockTransactionRepository, domain.Scope) {
	march := func(day int) time.Time {
		return time.Date(2025, time.March, day, 0, 0, 0, 0, time.UTC)
	}
	food := 1
	repo := &infrastructure.MockTransactionRepository{
		CategoryNames: map[int]string{1: "Food & Drink", 2: "Transport"},
		Transactions: []domain.Transaction{
			{ID: 1, UserID: "user-1", Date: march(1), Amount: decimal.NewFromInt(100), CategoryID: &food},
			{ID: 2, UserID: "user-1", Date: march(10), Amount: decimal.NewFromInt(200), CategoryID: &food},
			{ID: 3, UserID: "user-1", Date: march(20), Amount: decimal.NewFromInt(50)},
		},
	}
	return repo, domain.CombinedScope("user-1")
}

func TestAggregator_Aggregate(t *testing.T) {
	repo, scope := aggregatorFixture()

	summary := NewAggregator(repo).Aggregate(scope, 2025, time.March)

	assert.True(t, summary.TotalSpending.Equal(decimal.NewFromInt(350)), "total %s", summary.TotalSpending)
	assert.Equal(t, 3, summary.TransactionCount)
	assert.Equal(t, "Food & Drink", summary.TopCategory)

	require.Len(t, summary.Breakdown, 2)
	assert.Equal(t, "Food & Drink", summary.Breakdown[0].Name)
	assert.True(t, summary.Breakdown[0].Amount.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, UncategorizedLabel, summary.Breakdown[1].Name)
	assert.True(t, summary.Breakdown[1].Amount.Equal(decimal.NewFromInt(50)))
}

func TestAggregator_EmptyMonth(t *testing.T) {
	repo, scope := aggregatorFixture()

	summary := NewAggregator(repo).Aggregate(scope, 2025, time.July)

	assert.True(t, summary.TotalSpending.IsZero())
	assert.Equal(t, 0, summary.TransactionCount)
	assert.Equal(t, NoTopCategory, summary.TopCategory)
	assert.Empty(t, summary.Breakdown)
}

func TestAggregator_OnlyUncategorized(t *testing.T) {
	repo := &infrastructure.MockTransactionRepository{
		Transactions: []domain.Transaction{
			{ID: 1, UserID: "user-1", Date: time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(75)},
		},
	}

	summary := NewAggregator(repo).Aggregate(domain.CombinedScope("user-1"), 2025, time.March)

	// Uncategorized spending never becomes the top category.
	assert.Equal(t, NoTopCategory, summary.TopCategory)
	require.Len(t, summary.Breakdown, 1)
	assert.Equal(t, UncategorizedLabel, summary.Breakdown[0].Name)
}

func TestAggregator_TieBreaksAlphabetically(t *testing.T) {
	shopping, transport := 1, 2
	repo := &infrastructure.MockTransactionRepository{
		CategoryNames: map[int]string{1: "Shopping", 2: "Transport"},
		Transactions: []domain.Transaction{
			{ID: 1, UserID: "user-1", Date: time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(100), CategoryID: &transport},
			{ID: 2, UserID: "user-1", Date: time.Date(2025, time.March, 2, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(100), CategoryID: &shopping},
		},
	}

	summary := NewAggregator(repo).Aggregate(domain.CombinedScope("user-1"), 2025, time.March)

	assert.Equal(t, "Shopping", summary.TopCategory)
	require.Len(t, summary.Breakdown, 2)
	assert.Equal(t, "Shopping", summary.Breakdown[0].Name)
	assert.Equal(t, "Transport", summary.Breakdown[1].Name)
}

func TestAggregator_StoreFaultDegradesToEmptySummary(t *testing.T) {
	repo := &infrastructure.MockTransactionRepository{Err: errors.New("connection refused")}

	summary := NewAggregator(repo).Aggregate(domain.CombinedScope("user-1"), 2025, time.March)

	assert.True(t, summary.TotalSpending.IsZero())
	assert.Equal(t, 0, summary.TransactionCount)
	assert.Equal(t, NoTopCategory, summary.TopCategory)
	assert.Empty(t, summary.Breakdown)
}
