package application

import (
	"log"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/finance/domain"
)

// UncategorizedLabel is the literal bucket name appended for transactions
// without a category assignment.
const UncategorizedLabel = "Uncategorized"

// NoTopCategory is reported when the month has no categorized spending.
const NoTopCategory = "N/A"

// MonthlySummary is what the dashboard and chart endpoints render for one
// scope and calendar month.
type MonthlySummary struct {
	TotalSpending    decimal.Decimal
	TransactionCount int
	TopCategory      string
	// Breakdown is ordered by amount descending, name ascending, with the
	// Uncategorized bucket appended last when it is positive.
	Breakdown []domain.CategoryAmount
}

// Aggregator computes monthly spending figures for a resolved scope.
type Aggregator struct {
	transactions domain.TransactionRepository
}

func NewAggregator(transactions domain.TransactionRepository) *Aggregator {
	return &Aggregator{transactions: transactions}
}

// Aggregate sums the scope's transactions for one calendar month. A store
// fault degrades to an empty summary instead of propagating; the dashboard
// must render something no matter what.
func (a *Aggregator) Aggregate(scope domain.Scope, year int, month time.Month) MonthlySummary {
	aggregate, err := a.transactions.MonthlyAggregate(scope, year, month)
	if err != nil {
		log.Printf("aggregator: monthly aggregate for %q %04d-%02d: %v", scope.Account.Selector(), year, int(month), err)
		return emptySummary()
	}
	if aggregate == nil {
		return emptySummary()
	}

	totals := make([]domain.CategoryAmount, len(aggregate.CategoryTotals))
	copy(totals, aggregate.CategoryTotals)
	// Deterministic order regardless of how the store grouped: largest first,
	// alphabetical on equal sums. The same rule decides the top category.
	sort.SliceStable(totals, func(i, j int) bool {
		if !totals[i].Amount.Equal(totals[j].Amount) {
			return totals[i].Amount.GreaterThan(totals[j].Amount)
		}
		return totals[i].Name < totals[j].Name
	})

	top := NoTopCategory
	if len(totals) > 0 {
		top = totals[0].Name
	}

	if aggregate.UncategorizedTotal.IsPositive() {
		totals = append(totals, domain.CategoryAmount{
			Name:   UncategorizedLabel,
			Amount: aggregate.UncategorizedTotal,
		})
	}

	return MonthlySummary{
		TotalSpending:    aggregate.TotalSpending,
		TransactionCount: aggregate.TransactionCount,
		TopCategory:      top,
		Breakdown:        totals,
	}
}

func emptySummary() MonthlySummary {
	return MonthlySummary{
		TotalSpending: decimal.Zero,
		TopCategory:   NoTopCategory,
		Breakdown:     []domain.CategoryAmount{},
	}
}
