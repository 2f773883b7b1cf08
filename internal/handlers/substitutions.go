package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	applog "bakesub/internal/log"
	"bakesub/internal/slug"
	"bakesub/internal/substitutions"
	"bakesub/models"
)

type substitutionItemRequest struct {
	IngredientName string  `json:"ingredientName"`
	Amount         float64 `json:"amount"`
	Unit           string  `json:"unit"`
	Notes          string  `json:"notes"`
}

type substitutionCreateRequest struct {
	FromIngredientID string                    `json:"fromIngredientId"`
	Ingredients      []substitutionItemRequest `json:"ingredients"`
	Name             string                    `json:"name"`
	Amount           float64                   `json:"amount"`
	Unit             string                    `json:"unit"`
	Rating           *float64                  `json:"rating"`
	Effects          string                    `json:"effects"`
	BestFor          []string                  `json:"bestFor"`
}

type substitutionItemResponse struct {
	IngredientSlug string  `json:"ingredient_slug"`
	IngredientName string  `json:"ingredient_name,omitempty"`
	Amount         float64 `json:"amount"`
	Unit           string  `json:"unit"`
	Notes          string  `json:"notes,omitempty"`
}

type substitutionResponse struct {
	Slug         string                     `json:"slug"`
	Name         string                     `json:"name"`
	OriginalSlug string                     `json:"original_slug"`
	Amount       float64                    `json:"amount"`
	Unit         string                     `json:"unit"`
	Rating       *float64                   `json:"rating"`
	RatingCount  int64                      `json:"rating_count"`
	DietaryFlags []string                   `json:"dietary_flags"`
	Allergens    []string                   `json:"allergens"`
	Effects      string                     `json:"effects,omitempty"`
	BestFor      []string                   `json:"best_for"`
	Ingredients  []substitutionItemResponse `json:"ingredients"`
	AlreadyRated bool                       `json:"already_rated"`
	CreatedAt    time.Time                  `json:"created_at"`
	UpdatedAt    time.Time                  `json:"updated_at"`
}

// SubstitutionResource handles REST-style interactions for
// substitution records.
func (h *Set) SubstitutionResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/substitutions")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.listSubstitutions(w, r)
		case http.MethodPost:
			h.createSubstitution(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.showSubstitution(w, r, path)
	case http.MethodDelete:
		h.deleteSubstitution(w, r, path)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Set) listSubstitutions(w http.ResponseWriter, r *http.Request) {
	var (
		results []models.Substitution
		err     error
	)
	if forSlug := strings.TrimSpace(r.URL.Query().Get("for")); forSlug != "" {
		results, err = h.substitutions.ListForIngredient(r.Context(), forSlug)
	} else {
		results, err = h.substitutions.List(r.Context())
	}
	if err != nil {
		writeAppError(w, err)
		return
	}

	responses := make([]substitutionResponse, 0, len(results))
	for _, substitution := range results {
		responses = append(responses, h.projectSubstitution(r, substitution))
	}
	writeJSON(w, http.StatusOK, responses)
}

func (h *Set) createSubstitution(w http.ResponseWriter, r *http.Request) {
	var payload substitutionCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(r.Context(), "invalid substitution payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	replacements := make([]substitutions.Replacement, 0, len(payload.Ingredients))
	for _, item := range payload.Ingredients {
		// Display names and slugs are interchangeable at the edge:
		// slugs are derived from names by the same function.
		replacements = append(replacements, substitutions.Replacement{
			IngredientSlug: slug.Make(item.IngredientName),
			Amount:         item.Amount,
			Unit:           item.Unit,
			Notes:          item.Notes,
		})
	}

	created, err := h.substitutions.Create(r.Context(), substitutions.CreateInput{
		Name:         payload.Name,
		OriginalSlug: payload.FromIngredientID,
		Replacements: replacements,
		Amount:       payload.Amount,
		Unit:         payload.Unit,
		Rating:       payload.Rating,
		Effects:      payload.Effects,
		BestFor:      payload.BestFor,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, h.projectSubstitution(r, *created))
}

func (h *Set) showSubstitution(w http.ResponseWriter, r *http.Request, substitutionSlug string) {
	substitution, err := h.substitutions.Get(r.Context(), substitutionSlug)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.projectSubstitution(r, *substitution))
}

func (h *Set) deleteSubstitution(w http.ResponseWriter, r *http.Request, substitutionSlug string) {
	if err := h.substitutions.Delete(r.Context(), substitutionSlug); err != nil {
		writeAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Set) projectSubstitution(r *http.Request, substitution models.Substitution) substitutionResponse {
	items := make([]substitutionItemResponse, 0, len(substitution.Ingredients))
	for _, item := range substitution.Ingredients {
		projected := substitutionItemResponse{
			IngredientSlug: item.IngredientSlug,
			Amount:         item.Amount,
			Unit:           item.Unit,
			Notes:          item.Notes,
		}
		if item.Ingredient != nil {
			projected.IngredientName = item.Ingredient.Name
		}
		items = append(items, projected)
	}

	return substitutionResponse{
		Slug:         substitution.Slug,
		Name:         substitution.Name,
		OriginalSlug: substitution.OriginalSlug,
		Amount:       substitution.Amount,
		Unit:         substitution.Unit,
		Rating:       substitution.Rating,
		RatingCount:  substitution.RatingCount,
		DietaryFlags: substitution.DietaryFlags,
		Allergens:    substitution.Allergens,
		Effects:      substitution.Effects,
		BestFor:      substitution.BestFor,
		Ingredients:  items,
		AlreadyRated: h.alreadyRated(r, substitution.Slug),
		CreatedAt:    substitution.CreatedAt,
		UpdatedAt:    substitution.UpdatedAt,
	}
}
