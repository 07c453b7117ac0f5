package bank

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulator_MonthlyStatement(t *testing.T) {
	sim := NewSimulator(42)

	statement := sim.MonthlyStatement(2025, time.March)

	require.GreaterOrEqual(t, len(statement), minPerMonth)
	require.LessOrEqual(t, len(statement), maxPerMonth)

	floor := decimal.NewFromInt(minimumAmount)
	for _, candidate := range statement {
		assert.Equal(t, 2025, candidate.Date.Year())
		assert.Equal(t, time.March, candidate.Date.Month())
		assert.GreaterOrEqual(t, candidate.Date.Day(), 1)
		assert.LessOrEqual(t, candidate.Date.Day(), 28)
		assert.True(t, strings.HasPrefix(candidate.Description, "Payment to "), candidate.Description)
		assert.True(t, candidate.Amount.GreaterThanOrEqual(floor), "amount %s below floor", candidate.Amount)
	}
}

func TestSimulator_MonthlyStatementSameSeedIsDeterministic(t *testing.T) {
	first := NewSimulator(7).MonthlyStatement(2025, time.January)
	second := NewSimulator(7).MonthlyStatement(2025, time.January)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Date, second[i].Date)
		assert.Equal(t, first[i].Description, second[i].Description)
		assert.True(t, first[i].Amount.Equal(second[i].Amount))
	}
}

func TestSimulator_KnownMerchantNames(t *testing.T) {
	sim := NewSimulator(1)

	names := make(map[string]bool, len(merchants))
	for _, m := range merchants {
		names["Payment to "+m.name] = true
	}

	for _, candidate := range sim.MonthlyStatement(2024, time.December) {
		assert.True(t, names[candidate.Description], "unknown merchant %q", candidate.Description)
	}
}
