package interfaces

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/finance/application"
	"fintrack/internal/finance/domain"
)

type SelectionResolverInterface interface {
	Resolve(userID, selector, monthParam string) application.Selection
}

type AggregatorInterface interface {
	Aggregate(scope domain.Scope, year int, month time.Month) application.MonthlySummary
}

// DashboardHandler serves the dashboard summary and the spending chart. Both
// read the same (account, month) query parameters and degrade rather than
// fail: bad selectors widen to the combined scope, bad months reset to the
// current one.
type DashboardHandler struct {
	resolver     SelectionResolverInterface
	aggregator   AggregatorInterface
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string)
}

func NewDashboardHandler(
	resolver SelectionResolverInterface,
	aggregator AggregatorInterface,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
) *DashboardHandler {
	if resolver == nil || aggregator == nil || respondJSON == nil || respondError == nil {
		panic("Services and response functions must not be nil")
	}
	return &DashboardHandler{
		resolver:     resolver,
		aggregator:   aggregator,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

type categoryBreakdownEntry struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	selection := h.resolver.Resolve(userID, r.URL.Query().Get("account"), r.URL.Query().Get("month"))
	summary := h.aggregator.Aggregate(selection.Scope, selection.Year, selection.Month)

	breakdown := make([]categoryBreakdownEntry, 0, len(summary.Breakdown))
	for _, entry := range summary.Breakdown {
		breakdown = append(breakdown, categoryBreakdownEntry{Name: entry.Name, Amount: entry.Amount})
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"selected_account":   selection.Scope.Account.Selector(),
			"selected_month":     selection.SelectedMonth,
			"available_months":   selection.AvailableMonths,
			"total_spending":     summary.TotalSpending,
			"transaction_count":  summary.TransactionCount,
			"top_category":       summary.TopCategory,
			"category_breakdown": breakdown,
		},
	})
}

// GetSpendingChart renders the breakdown as parallel label/value arrays for
// the chart widget.
func (h *DashboardHandler) GetSpendingChart(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	selection := h.resolver.Resolve(userID, r.URL.Query().Get("account"), r.URL.Query().Get("month"))
	summary := h.aggregator.Aggregate(selection.Scope, selection.Year, selection.Month)

	labels := make([]string, 0, len(summary.Breakdown))
	values := make([]decimal.Decimal, 0, len(summary.Breakdown))
	for _, entry := range summary.Breakdown {
		labels = append(labels, entry.Name)
		values = append(values, entry.Amount)
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"month":  selection.SelectedMonth,
			"labels": labels,
			"values": values,
		},
	})
}
