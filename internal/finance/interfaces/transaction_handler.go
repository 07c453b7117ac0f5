package interfaces

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"fintrack/internal/finance/domain"
	financeErrors "fintrack/internal/finance/errors"
)

type TransactionServiceInterface interface {
	ListForMonth(scope domain.Scope, year int, month time.Month) ([]domain.Transaction, error)
	SetCategory(userID string, transactionID int, categoryID *int) (*domain.Transaction, error)
	ListCategories() ([]domain.Category, error)
}

type TransactionHandler struct {
	service      TransactionServiceInterface
	resolver     SelectionResolverInterface
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string)
}

func NewTransactionHandler(
	service TransactionServiceInterface,
	resolver SelectionResolverInterface,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
) *TransactionHandler {
	if service == nil || resolver == nil || respondJSON == nil || respondError == nil {
		panic("Service and response functions must not be nil")
	}
	return &TransactionHandler{
		service:      service,
		resolver:     resolver,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

// GetTransactions lists the resolved scope's transactions for the selected
// month, newest first, together with the month selector state.
func (h *TransactionHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	selection := h.resolver.Resolve(userID, r.URL.Query().Get("account"), r.URL.Query().Get("month"))

	transactions, err := h.service.ListForMonth(selection.Scope, selection.Year, selection.Month)
	if err != nil {
		log.Println("Error listing transactions:", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve transactions")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"selected_account": selection.Scope.Account.Selector(),
			"selected_month":   selection.SelectedMonth,
			"available_months": selection.AvailableMonths,
			"transactions":     transactions,
		},
	})
}

// UpdateCategory sets or clears (null) a transaction's category. Manual
// assignment may overwrite an existing one.
func (h *TransactionHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	transactionID, err := strconv.Atoi(r.PathValue("transactionID"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid transaction ID")
		return
	}

	var req struct {
		CategoryID *int `json:"category_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	transaction, err := h.service.SetCategory(userID, transactionID, req.CategoryID)
	if err != nil {
		switch {
		case errors.Is(err, financeErrors.ErrTransactionNotFound):
			h.respondError(w, http.StatusNotFound, "Transaction not found")
		case errors.Is(err, financeErrors.ErrUnauthorized):
			h.respondError(w, http.StatusForbidden, "Transaction does not belong to the user")
		case errors.Is(err, financeErrors.ErrInvalidCategory):
			h.respondError(w, http.StatusBadRequest, "Invalid category")
		default:
			log.Println("Error updating transaction category:", err)
			h.respondError(w, http.StatusInternalServerError, "Failed to update category")
		}
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Category updated successfully.",
		"data":    transaction,
	})
}

func (h *TransactionHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories()
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve categories")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "success",
		"categories": categories,
	})
}
