package http

import (
	"context"
	"net/http"

	"github.com/atinyakov/ourstory/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

// RecipeService defines the recipe operations required by RecipeHandler.
type RecipeService interface {
	AppendRecipe(ctx context.Context, r models.Recipe) (string, error)
	Recipes(ctx context.Context, limit int) ([]models.Recipe, error)
	DeleteRecipes(ctx context.Context, ids []string) (int64, error)
}

// RecipeHandler serves the recipe feed.
type RecipeHandler struct {
	Service RecipeService
}

// List handles GET /api/recipes, newest first.
func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		http.Error(w, "invalid query", http.StatusBadRequest)
		return
	}
	recipes, err := h.Service.Recipes(r.Context(), q.Limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, recipes)
}

// Append handles POST /api/recipes.
func (h *RecipeHandler) Append(w http.ResponseWriter, r *http.Request) {
	var rec models.Recipe
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	id, err := h.Service.AppendRecipe(r.Context(), rec)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// DeleteMany handles POST /api/recipes/delete.
func (h *RecipeHandler) DeleteMany(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	n, err := h.Service.DeleteRecipes(r.Context(), req.IDs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

// Delete handles DELETE /api/recipes/{id}.
func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.Service.DeleteRecipes(r.Context(), []string{id}); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
