package interfaces

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"fintrack/internal/finance/application"
	"fintrack/internal/finance/domain"
	financeErrors "fintrack/internal/finance/errors"
)

type AccountServiceInterface interface {
	ListAccounts(userID string) ([]application.LegacyAccountInfo, []application.LinkedAccountInfo, error)
	LinkAccount(userID, bankName, nickname string) (*domain.LinkedAccount, error)
	RenameLegacy(userID string, accountID int, name string) error
	ToggleLegacy(userID string, accountID int) (bool, error)
	DeleteLinked(userID string, accountID int) (string, error)
}

// AccountHandler manages both account variants. Reads degrade silently
// elsewhere; mutations here answer foreign or missing accounts with an
// explicit 403.
type AccountHandler struct {
	service      AccountServiceInterface
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string)
}

func NewAccountHandler(
	service AccountServiceInterface,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
) *AccountHandler {
	if service == nil || respondJSON == nil || respondError == nil {
		panic("Service and response functions must not be nil")
	}
	return &AccountHandler{
		service:      service,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

func (h *AccountHandler) GetAccounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	legacy, linked, err := h.service.ListAccounts(userID)
	if err != nil {
		log.Println("Error listing accounts:", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve accounts")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"bank_accounts":   legacy,
			"linked_accounts": linked,
		},
	})
}

func (h *AccountHandler) LinkAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		BankName        string `json:"bank_name"`
		AccountNickname string `json:"account_nickname"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	account, err := h.service.LinkAccount(userID, req.BankName, req.AccountNickname)
	if err != nil {
		if financeErrors.IsValidationError(err) {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Println("Error linking account:", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to link account")
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": fmt.Sprintf("Account '%s' linked successfully.", account.AccountNickname),
		"data":    account,
	})
}

func (h *AccountHandler) RenameAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	accountID, err := strconv.Atoi(r.PathValue("accountID"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid account ID")
		return
	}

	var req struct {
		AccountName string `json:"account_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.RenameLegacy(userID, accountID, req.AccountName); err != nil {
		h.respondAccountError(w, err, "Failed to rename account")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Account renamed successfully.",
	})
}

func (h *AccountHandler) ToggleAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	accountID, err := strconv.Atoi(r.PathValue("accountID"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid account ID")
		return
	}

	active, err := h.service.ToggleLegacy(userID, accountID)
	if err != nil {
		h.respondAccountError(w, err, "Failed to toggle account")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"is_active": active,
		},
	})
}

// DeleteLinkedAccount removes a linked account and its transactions.
func (h *AccountHandler) DeleteLinkedAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	accountID, err := strconv.Atoi(r.PathValue("accountID"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid account ID")
		return
	}

	name, err := h.service.DeleteLinked(userID, accountID)
	if err != nil {
		h.respondAccountError(w, err, "Failed to delete account")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": fmt.Sprintf("Account '%s' and its transactions deleted.", name),
	})
}

func (h *AccountHandler) respondAccountError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, financeErrors.ErrAccountNotFound):
		h.respondError(w, http.StatusForbidden, "Account not found or unauthorized")
	case financeErrors.IsValidationError(err):
		h.respondError(w, http.StatusBadRequest, err.Error())
	default:
		log.Println("Account handler error:", err)
		h.respondError(w, http.StatusInternalServerError, fallback)
	}
}
