package interfaces

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/finance/domain"
	financeErrors "fintrack/internal/finance/errors"
)

func TestGetTransactions(t *testing.T) {
	food := 1
	service := &MockTransactionService{
		transactions: []domain.Transaction{
			{ID: 2, Description: "Payment to Uber", Amount: decimal.NewFromInt(350), Date: time.Date(2025, time.March, 9, 0, 0, 0, 0, time.UTC)},
			{ID: 1, Description: "Payment to Zomato", Amount: decimal.NewFromInt(450), CategoryID: &food, Date: time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC)},
		},
	}
	handler := NewTransactionHandler(service, &MockResolver{selection: testSelection()}, respondJSON, respondError)

	w := httptest.NewRecorder()
	handler.GetTransactions(w, authenticatedRequest(http.MethodGet, "/api/protected/transactions?month=2025-03", nil))

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var response struct {
		Data struct {
			SelectedMonth string                   `json:"selected_month"`
			Transactions  []map[string]interface{} `json:"transactions"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&response))
	assert.Equal(t, "2025-03", response.Data.SelectedMonth)
	require.Len(t, response.Data.Transactions, 2)
	assert.Equal(t, "Payment to Uber", response.Data.Transactions[0]["description"])
}

func TestGetTransactions_ServiceError(t *testing.T) {
	handler := NewTransactionHandler(&MockTransactionService{shouldFail: true}, &MockResolver{selection: testSelection()}, respondJSON, respondError)

	w := httptest.NewRecorder()
	handler.GetTransactions(w, authenticatedRequest(http.MethodGet, "/api/protected/transactions", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Result().StatusCode)
}

func updateCategoryRequest(t *testing.T, transactionID, body string) *http.Request {
	t.Helper()
	req := authenticatedRequest(http.MethodPut, "/api/protected/transactions/"+transactionID+"/category", strings.NewReader(body))
	req.SetPathValue("transactionID", transactionID)
	return req
}

func TestUpdateCategory(t *testing.T) {
	food := 1
	service := &MockTransactionService{updated: &domain.Transaction{ID: 1, CategoryID: &food}}
	handler := NewTransactionHandler(service, &MockResolver{}, respondJSON, respondError)

	w := httptest.NewRecorder()
	handler.UpdateCategory(w, updateCategoryRequest(t, "1", `{"category_id": 1}`))

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	require.NotNil(t, service.lastCategoryID)
	assert.Equal(t, 1, *service.lastCategoryID)
}

func TestUpdateCategory_ClearsWithNull(t *testing.T) {
	service := &MockTransactionService{updated: &domain.Transaction{ID: 1}}
	handler := NewTransactionHandler(service, &MockResolver{}, respondJSON, respondError)

	w := httptest.NewRecorder()
	handler.UpdateCategory(w, updateCategoryRequest(t, "1", `{"category_id": null}`))

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
	assert.Nil(t, service.lastCategoryID)
}

func TestUpdateCategory_Errors(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		body     string
		err      error
		expected int
	}{
		{"bad transaction id", "abc", `{}`, nil, http.StatusBadRequest},
		{"malformed body", "1", `{`, nil, http.StatusBadRequest},
		{"not found", "42", `{"category_id": 1}`, financeErrors.ErrTransactionNotFound, http.StatusNotFound},
		{"foreign transaction", "1", `{"category_id": 1}`, financeErrors.ErrUnauthorized, http.StatusForbidden},
		{"unknown category", "1", `{"category_id": 9999}`, financeErrors.ErrInvalidCategory, http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewTransactionHandler(&MockTransactionService{setErr: tc.err}, &MockResolver{}, respondJSON, respondError)

			w := httptest.NewRecorder()
			handler.UpdateCategory(w, updateCategoryRequest(t, tc.id, tc.body))

			assert.Equal(t, tc.expected, w.Result().StatusCode)
		})
	}
}

func TestGetCategoriesList(t *testing.T) {
	service := &MockTransactionService{categories: []domain.Category{
		{ID: 1, Name: "Food & Drink"},
		{ID: 2, Name: "Transport"},
	}}
	handler := NewTransactionHandler(service, &MockResolver{}, respondJSON, respondError)

	w := httptest.NewRecorder()
	handler.GetCategories(w, authenticatedRequest(http.MethodGet, "/api/protected/categories", nil))

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var response struct {
		Categories []domain.Category `json:"categories"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&response))
	assert.Len(t, response.Categories, 2)
}
