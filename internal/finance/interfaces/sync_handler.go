package interfaces

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"fintrack/internal/finance/application"
	"fintrack/internal/finance/domain"
	financeErrors "fintrack/internal/finance/errors"
)

type SyncServiceInterface interface {
	SyncAccount(userID string, ref domain.AccountRef) (int, error)
	GenerateDemoData(userID string) (int, int, error)
}

type SyncHandler struct {
	service      SyncServiceInterface
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string)
}

func NewSyncHandler(
	service SyncServiceInterface,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
) *SyncHandler {
	if service == nil || respondJSON == nil || respondError == nil {
		panic("Service and response functions must not be nil")
	}
	return &SyncHandler{
		service:      service,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

// SyncTransactions pulls the current month's statement into one account. The
// account selector here is required and must name a concrete account; a sync
// has a target, unlike the display filters.
func (h *SyncHandler) SyncTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		Account string `json:"account"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ref := application.ParseAccountSelector(req.Account)
	if ref.IsNone() {
		h.respondError(w, http.StatusBadRequest, "A concrete account is required")
		return
	}

	added, err := h.service.SyncAccount(userID, ref)
	if err != nil {
		if errors.Is(err, financeErrors.ErrAccountNotFound) {
			h.respondError(w, http.StatusForbidden, "Account not found or unauthorized")
			return
		}
		log.Println("Error during sync:", err)
		h.respondError(w, http.StatusInternalServerError, "Sync failed")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": fmt.Sprintf("Synced %d new transactions.", added),
		"data": map[string]interface{}{
			"added": added,
		},
	})
}

// GenerateDemoData wipes and regenerates the caller's transaction history.
func (h *SyncHandler) GenerateDemoData(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	added, accounts, err := h.service.GenerateDemoData(userID)
	if err != nil {
		if errors.Is(err, financeErrors.ErrNoAccountsLinked) {
			h.respondError(w, http.StatusBadRequest, "Link an account before generating demo data")
			return
		}
		log.Println("Error generating demo data:", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to generate demo data")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": fmt.Sprintf("Generated %d transactions across %d accounts.", added, accounts),
		"data": map[string]interface{}{
			"added":    added,
			"accounts": accounts,
		},
	})
}
