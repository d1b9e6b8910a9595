package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dlozanor/finanzas/internal/api/middleware"
	"github.com/dlozanor/finanzas/internal/storage"
)

// Corrector applies a user correction to a transaction description.
type Corrector interface {
	Correct(ctx context.Context, description string, categoryID int64) (int64, error)
}

// TransactionsHandler handles transaction listing and category corrections.
type TransactionsHandler struct {
	store     storage.TransactionStore
	corrector Corrector
	log       zerolog.Logger
}

func NewTransactionsHandler(store storage.TransactionStore, corrector Corrector, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{
		store:     store,
		corrector: corrector,
		log:       log,
	}
}

// List handles GET /api/transactions?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if to == "" {
		to = time.Now().UTC().Format("2006-01-02")
	}
	if from == "" {
		// Default window: last 90 days.
		from = time.Now().UTC().AddDate(0, 0, -90).Format("2006-01-02")
	}

	txs, err := h.store.TransactionsByDateRange(ctx, from, to)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list transactions")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": txs,
		"count":        len(txs),
		"from":         from,
		"to":           to,
	})
}

// Correct handles PATCH /api/transactions/{id}. The new category spreads to
// every transaction sharing the description, and the association is pinned
// at full confidence.
func (h *TransactionsHandler) Correct(w http.ResponseWriter, r *http.Request, transactionID string) {
	ctx := r.Context()

	var req struct {
		CategoryID int64 `json:"category_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.CategoryID == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "category_id is required")
		return
	}

	tx, err := h.store.TransactionByID(ctx, transactionID)
	if err != nil {
		h.log.Error().Err(err).Str("transaction_id", transactionID).Msg("Failed to load transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load transaction")
		return
	}
	if tx == nil {
		middleware.WriteError(w, http.StatusNotFound, "Transaction not found")
		return
	}

	updated, err := h.corrector.Correct(ctx, tx.Description, req.CategoryID)
	if err != nil {
		h.log.Error().Err(err).Str("transaction_id", transactionID).Msg("Failed to apply correction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to apply correction")
		return
	}

	h.log.Info().
		Str("transaction_id", transactionID).
		Str("description", tx.Description).
		Int64("category_id", req.CategoryID).
		Int64("updated", updated).
		Msg("Category correction applied")

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transaction_id": transactionID,
		"category_id":    req.CategoryID,
		"total_updated":  updated,
	})
}
