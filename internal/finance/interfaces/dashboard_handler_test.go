package interfaces

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/finance/application"
	"fintrack/internal/finance/domain"
)

func authenticatedRequest(method, target string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	return req.WithContext(context.WithValue(req.Context(), "userID", "user-1"))
}

func testSelection() application.Selection {
	return application.Selection{
		Scope:           domain.CombinedScope("user-1"),
		SelectedMonth:   "2025-03",
		AvailableMonths: []string{"2025-03", "2025-02"},
		Year:            2025,
		Month:           3,
	}
}

func TestGetDashboard(t *testing.T) {
	resolver := &MockResolver{selection: testSelection()}
	aggregator := &MockAggregator{summary: application.MonthlySummary{
		TotalSpending:    decimal.NewFromInt(350),
		TransactionCount: 3,
		TopCategory:      "Food & Drink",
		Breakdown: []domain.CategoryAmount{
			{Name: "Food & Drink", Amount: decimal.NewFromInt(300)},
			{Name: "Uncategorized", Amount: decimal.NewFromInt(50)},
		},
	}}
	handler := NewDashboardHandler(resolver, aggregator, respondJSON, respondError)

	w := httptest.NewRecorder()
	handler.GetDashboard(w, authenticatedRequest(http.MethodGet, "/api/protected/dashboard?account=all&month=2025-03", nil))

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var response struct {
		Status string `json:"status"`
		Data   struct {
			SelectedAccount   string   `json:"selected_account"`
			SelectedMonth     string   `json:"selected_month"`
			AvailableMonths   []string `json:"available_months"`
			TotalSpending     string   `json:"total_spending"`
			TransactionCount  int      `json:"transaction_count"`
			TopCategory       string   `json:"top_category"`
			CategoryBreakdown []struct {
				Name   string `json:"name"`
				Amount string `json:"amount"`
			} `json:"category_breakdown"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&response))

	assert.Equal(t, "success", response.Status)
	assert.Equal(t, "all", response.Data.SelectedAccount)
	assert.Equal(t, "2025-03", response.Data.SelectedMonth)
	assert.Equal(t, []string{"2025-03", "2025-02"}, response.Data.AvailableMonths)
	assert.Equal(t, "350", response.Data.TotalSpending)
	assert.Equal(t, 3, response.Data.TransactionCount)
	assert.Equal(t, "Food & Drink", response.Data.TopCategory)
	require.Len(t, response.Data.CategoryBreakdown, 2)
	assert.Equal(t, "Uncategorized", response.Data.CategoryBreakdown[1].Name)

	assert.Equal(t, "user-1", resolver.lastUser)
	assert.Equal(t, [2]string{"all", "2025-03"}, resolver.lastQuery)
}

func TestGetDashboard_Unauthorized(t *testing.T) {
	handler := NewDashboardHandler(&MockResolver{}, &MockAggregator{}, respondJSON, respondError)

	w := httptest.NewRecorder()
	handler.GetDashboard(w, httptest.NewRequest(http.MethodGet, "/api/protected/dashboard", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Result().StatusCode)
}

func TestGetSpendingChart(t *testing.T) {
	resolver := &MockResolver{selection: testSelection()}
	aggregator := &MockAggregator{summary: application.MonthlySummary{
		TotalSpending: decimal.NewFromInt(500),
		TopCategory:   "Shopping",
		Breakdown: []domain.CategoryAmount{
			{Name: "Shopping", Amount: decimal.NewFromInt(400)},
			{Name: "Transport", Amount: decimal.NewFromInt(100)},
		},
	}}
	handler := NewDashboardHandler(resolver, aggregator, respondJSON, respondError)

	w := httptest.NewRecorder()
	handler.GetSpendingChart(w, authenticatedRequest(http.MethodGet, "/api/protected/charts/spending-by-category", nil))

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var response struct {
		Data struct {
			Month  string   `json:"month"`
			Labels []string `json:"labels"`
			Values []string `json:"values"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&response))

	assert.Equal(t, "2025-03", response.Data.Month)
	assert.Equal(t, []string{"Shopping", "Transport"}, response.Data.Labels)
	assert.Equal(t, []string{"400", "100"}, response.Data.Values)
}

func TestGetSpendingChart_EmptyMonth(t *testing.T) {
	resolver := &MockResolver{selection: testSelection()}
	aggregator := &MockAggregator{summary: application.MonthlySummary{
		TotalSpending: decimal.Zero,
		TopCategory:   application.NoTopCategory,
		Breakdown:     []domain.CategoryAmount{},
	}}
	handler := NewDashboardHandler(resolver, aggregator, respondJSON, respondError)

	w := httptest.NewRecorder()
	handler.GetSpendingChart(w, authenticatedRequest(http.MethodGet, "/api/protected/charts/spending-by-category", nil))

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var response struct {
		Data struct {
			Labels []string `json:"labels"`
			Values []string `json:"values"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&response))
	assert.Empty(t, response.Data.Labels)
	assert.Empty(t, response.Data.Values)
}
