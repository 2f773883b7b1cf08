package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	applog "bakesub/internal/log"
	"bakesub/models"

	"bakesub/internal/ingredients"
)

type ingredientRequest struct {
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	Functions    []string `json:"functions"`
	CommonUses   []string `json:"common_uses"`
	DietaryFlags []string `json:"dietary_flags"`
	Allergens    []string `json:"allergens"`
	DefaultUnit  string   `json:"default_unit"`
	Notes        string   `json:"notes"`
	ImageURL     string   `json:"image_url"`
}

type ingredientResponse struct {
	Slug         string           `json:"slug"`
	Name         string           `json:"name"`
	Category     string           `json:"category"`
	Functions    []string         `json:"functions"`
	CommonUses   []string         `json:"common_uses"`
	DietaryFlags []string         `json:"dietary_flags"`
	Allergens    []string         `json:"allergens"`
	DefaultUnit  string           `json:"default_unit"`
	Notes        string           `json:"notes"`
	Nutrition    models.Nutrition `json:"nutrition"`
	SearchCount  int64            `json:"search_count"`
	ImageURL     string           `json:"image_url"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// IngredientResource handles REST-style interactions for ingredient
// records: listing and creation on the collection, show/update/delete
// on a single slug.
func (h *Set) IngredientResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/ingredients")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.listIngredients(w, r)
		case http.MethodPost:
			h.createIngredient(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.showIngredient(w, r, path)
	case http.MethodPut:
		h.updateIngredient(w, r, path)
	case http.MethodDelete:
		h.deleteIngredient(w, r, path)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Set) listIngredients(w http.ResponseWriter, r *http.Request) {
	results, err := h.ingredients.List(r.Context(), r.URL.Query().Get("q"), r.URL.Query().Get("category"))
	if err != nil {
		writeAppError(w, err)
		return
	}

	responses := make([]ingredientResponse, 0, len(results))
	for _, ingredient := range results {
		responses = append(responses, projectIngredient(ingredient))
	}
	writeJSON(w, http.StatusOK, responses)
}

func (h *Set) createIngredient(w http.ResponseWriter, r *http.Request) {
	var payload ingredientRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(r.Context(), "invalid ingredient payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	created, err := h.ingredients.Create(r.Context(), ingredientInput(payload))
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, projectIngredient(*created))
}

func (h *Set) showIngredient(w http.ResponseWriter, r *http.Request, ingredientSlug string) {
	recordSearch := r.URL.Query().Get("track") == "1"
	ingredient, err := h.ingredients.Get(r.Context(), ingredientSlug, recordSearch)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, projectIngredient(*ingredient))
}

func (h *Set) updateIngredient(w http.ResponseWriter, r *http.Request, ingredientSlug string) {
	var payload ingredientRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(r.Context(), "invalid ingredient update payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	updated, err := h.ingredients.Update(r.Context(), ingredientSlug, ingredientInput(payload))
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, projectIngredient(*updated))
}

func (h *Set) deleteIngredient(w http.ResponseWriter, r *http.Request, ingredientSlug string) {
	if err := h.ingredients.Delete(r.Context(), ingredientSlug); err != nil {
		writeAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func ingredientInput(payload ingredientRequest) ingredients.Input {
	return ingredients.Input{
		Name:         payload.Name,
		Category:     payload.Category,
		Functions:    payload.Functions,
		CommonUses:   payload.CommonUses,
		DietaryFlags: payload.DietaryFlags,
		Allergens:    payload.Allergens,
		DefaultUnit:  payload.DefaultUnit,
		Notes:        payload.Notes,
		ImageURL:     payload.ImageURL,
	}
}

func projectIngredient(ingredient models.Ingredient) ingredientResponse {
	return ingredientResponse{
		Slug:         ingredient.Slug,
		Name:         ingredient.Name,
		Category:     ingredient.Category,
		Functions:    ingredient.Functions,
		CommonUses:   ingredient.CommonUses,
		DietaryFlags: ingredient.DietaryFlags,
		Allergens:    ingredient.Allergens,
		DefaultUnit:  ingredient.DefaultUnit,
		Notes:        ingredient.Notes,
		Nutrition:    ingredient.Nutrition,
		SearchCount:  ingredient.SearchCount,
		ImageURL:     ingredient.ImageURL,
		CreatedAt:    ingredient.CreatedAt,
		UpdatedAt:    ingredient.UpdatedAt,
	}
}
