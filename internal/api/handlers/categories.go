package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dlozanor/finanzas/internal/api/middleware"
	"github.com/dlozanor/finanzas/internal/storage"
)

// CategoriesHandler serves the category taxonomy and the learned-concept
// listing.
type CategoriesHandler struct {
	store   storage.CategoryStore
	learned storage.LearnedStore
	log     zerolog.Logger
}

func NewCategoriesHandler(store storage.CategoryStore, learned storage.LearnedStore, log zerolog.Logger) *CategoriesHandler {
	return &CategoriesHandler{store: store, learned: learned, log: log}
}

// List handles GET /api/categories
func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.Categories(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list categories")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list categories")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
		"count":      len(categories),
	})
}

// ValidatedConcepts handles GET /api/validated-concepts: the descriptions
// learned with high confidence, i.e. the ones the engine answers without
// consulting the AI.
func (h *CategoriesHandler) ValidatedConcepts(w http.ResponseWriter, r *http.Request) {
	concepts, err := h.learned.ValidatedDescriptions(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list validated concepts")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list validated concepts")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"concepts": concepts,
		"count":    len(concepts),
	})
}
