package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"bakesub/models"
)

func TestIngredientCreateAndShow(t *testing.T) {
	db := withTestDatabase(t)
	set, _ := newTestSet(t, db)

	payload := ingredientRequest{
		Name:         "Almond Flour",
		Category:     "flour",
		Functions:    []string{"structure"},
		DietaryFlags: []string{"gluten-free", "vegan"},
		Allergens:    []string{"tree nuts"},
		DefaultUnit:  models.UnitCup,
	}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/api/ingredients", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	set.IngredientResource(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	var created ingredientResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if created.Slug != "almond-flour" {
		t.Fatalf("expected derived slug almond-flour, got %q", created.Slug)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/ingredients/almond-flour", nil)
	w = httptest.NewRecorder()
	set.IngredientResource(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var shown ingredientResponse
	if err := json.Unmarshal(w.Body.Bytes(), &shown); err != nil {
		t.Fatalf("failed to decode show response: %v", err)
	}
	if shown.Name != "Almond Flour" || len(shown.DietaryFlags) != 2 {
		t.Fatalf("unexpected ingredient payload: %+v", shown)
	}
	if shown.SearchCount != 0 {
		t.Fatalf("expected untracked show to leave search count at 0, got %d", shown.SearchCount)
	}
}

func TestIngredientShowTracksSearches(t *testing.T) {
	db := withTestDatabase(t)
	set, _ := newTestSet(t, db)
	seedIngredient(t, db, models.Ingredient{Slug: "butter", Name: "Butter"})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/ingredients/butter?track=1", nil)
		w := httptest.NewRecorder()
		set.IngredientResource(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", w.Code)
		}
	}

	var stored models.Ingredient
	if err := db.First(&stored, "slug = ?", "butter").Error; err != nil {
		t.Fatalf("failed to reload ingredient: %v", err)
	}
	if stored.SearchCount != 2 {
		t.Fatalf("expected search count 2, got %d", stored.SearchCount)
	}
}

func TestIngredientCreateConflict(t *testing.T) {
	db := withTestDatabase(t)
	set, _ := newTestSet(t, db)
	seedIngredient(t, db, models.Ingredient{Slug: "butter", Name: "Butter"})

	body, _ := json.Marshal(ingredientRequest{Name: "Butter"})
	req := httptest.NewRequest(http.MethodPost, "/api/ingredients", bytes.NewReader(body))
	w := httptest.NewRecorder()
	set.IngredientResource(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", w.Code)
	}
}

func TestIngredientList(t *testing.T) {
	db := withTestDatabase(t)
	set, _ := newTestSet(t, db)
	seedIngredient(t, db, models.Ingredient{Slug: "butter", Name: "Butter", Category: "fat"})
	seedIngredient(t, db, models.Ingredient{Slug: "almond-flour", Name: "Almond Flour", Category: "flour"})

	req := httptest.NewRequest(http.MethodGet, "/api/ingredients?category=fat", nil)
	w := httptest.NewRecorder()
	set.IngredientResource(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var listed []ingredientResponse
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if len(listed) != 1 || listed[0].Slug != "butter" {
		t.Fatalf("expected only the fat category, got %+v", listed)
	}
}

func TestIngredientUpdatePreservesNutrition(t *testing.T) {
	db := withTestDatabase(t)
	set, _ := newTestSet(t, db)
	calories := 717.0
	seedIngredient(t, db, models.Ingredient{
		Slug:      "butter",
		Name:      "Butter",
		Nutrition: models.Nutrition{Calories: &calories},
	})

	body, _ := json.Marshal(ingredientRequest{Name: "Butter", Notes: "unsalted preferred"})
	req := httptest.NewRequest(http.MethodPut, "/api/ingredients/butter", bytes.NewReader(body))
	w := httptest.NewRecorder()
	set.IngredientResource(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var updated ingredientResponse
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if updated.Notes != "unsalted preferred" {
		t.Fatalf("expected notes to update, got %+v", updated)
	}
	if updated.Nutrition.Calories == nil || *updated.Nutrition.Calories != calories {
		t.Fatalf("expected nutrition facts to survive update, got %+v", updated.Nutrition)
	}
}

func TestIngredientDeleteCascades(t *testing.T) {
	db := withTestDatabase(t)
	set, _ := newTestSet(t, db)
	seedSubstitutionPair(t, db)
	created := createSubstitutionViaAPI(t, set)

	req := httptest.NewRequest(http.MethodDelete, "/api/ingredients/butter", nil)
	w := httptest.NewRecorder()
	set.IngredientResource(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d: %s", w.Code, w.Body.String())
	}

	var count int64
	if err := db.Model(&models.Substitution{}).Where("slug = ?", created.Slug).Count(&count).Error; err != nil {
		t.Fatalf("failed to count substitutions: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected substitutions for the deleted ingredient to be removed")
	}
}

func TestIngredientNotFound(t *testing.T) {
	db := withTestDatabase(t)
	set, _ := newTestSet(t, db)

	req := httptest.NewRequest(http.MethodGet, "/api/ingredients/nope", nil)
	w := httptest.NewRecorder()
	set.IngredientResource(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}

