package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"bakesub/models"
)

func seedSubstitutionPair(t *testing.T, db *gorm.DB) {
	t.Helper()
	seedIngredient(t, db, models.Ingredient{
		Slug:         "butter",
		Name:         "Butter",
		DietaryFlags: datatypes.NewJSONSlice([]string{"vegetarian"}),
		Allergens:    datatypes.NewJSONSlice([]string{"dairy"}),
		DefaultUnit:  models.UnitCup,
	})
	seedIngredient(t, db, models.Ingredient{
		Slug:         "coconut-oil",
		Name:         "Coconut Oil",
		DietaryFlags: datatypes.NewJSONSlice([]string{"vegan", "vegetarian"}),
		Allergens:    datatypes.NewJSONSlice([]string{"tree nuts"}),
		DefaultUnit:  models.UnitCup,
	})
}

func createSubstitutionViaAPI(t *testing.T, set *Set) substitutionResponse {
	t.Helper()
	payload := substitutionCreateRequest{
		FromIngredientID: "butter",
		Name:             "Coconut Oil for Butter",
		Amount:           1,
		Unit:             models.UnitCup,
		Effects:          "Adds a subtle coconut flavor.",
		BestFor:          []string{"cookies", "brownies"},
		Ingredients: []substitutionItemRequest{
			{IngredientName: "Coconut Oil", Amount: 0.75, Unit: models.UnitCup},
		},
	}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/api/substitutions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = withSession(t, set.sessions, req)
	w := httptest.NewRecorder()
	set.SubstitutionResource(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	var response substitutionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return response
}

func TestSubstitutionCreate(t *testing.T) {
	db := withTestDatabase(t)
	set, _ := newTestSet(t, db)
	seedSubstitutionPair(t, db)

	response := createSubstitutionViaAPI(t, set)
	if response.Slug != "coconut-oil-for-butter" {
		t.Fatalf("expected derived slug, got %q", response.Slug)
	}
	if response.OriginalSlug != "butter" {
		t.Fatalf("expected original slug butter, got %q", response.OriginalSlug)
	}
	if len(response.DietaryFlags) != 2 {
		t.Fatalf("expected union of replacement dietary flags, got %v", response.DietaryFlags)
	}
	if len(response.Allergens) != 1 || response.Allergens[0] != "tree nuts" {
		t.Fatalf("expected replacement allergens only, got %v", response.Allergens)
	}
	if len(response.Ingredients) != 1 || response.Ingredients[0].IngredientSlug != "coconut-oil" {
		t.Fatalf("expected one coconut-oil line item, got %+v", response.Ingredients)
	}
	if response.AlreadyRated {
		t.Fatalf("expected fresh substitution to not be marked rated")
	}
}

func TestSubstitutionCreateConflict(t *testing.T) {
	db := withTestDatabase(t)
	set, _ := newTestSet(t, db)
	seedSubstitutionPair(t, db)

	createSubstitutionViaAPI(t, set)

	payload := substitutionCreateRequest{
		FromIngredientID: "butter",
		Name:             "Coconut Oil for Butter",
		Amount:           1,
		Unit:             models.UnitCup,
		Ingredients: []substitutionItemRequest{
			{IngredientName: "Coconut Oil", Amount: 0.75, Unit: models.UnitCup},
		},
	}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/api/substitutions", bytes.NewReader(body))
	w := httptest.NewRecorder()
	set.SubstitutionResource(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409 for duplicate name, got %d", w.Code)
	}
}

func TestSubstitutionCreateValidation(t *testing.T) {
	db := withTestDatabase(t)
	set, _ := newTestSet(t, db)
	seedSubstitutionPair(t, db)

	cases := []struct {
		name    string
		payload substitutionCreateRequest
	}{
		{
			name: "missing name",
			payload: substitutionCreateRequest{
				FromIngredientID: "butter",
				Amount:           1,
				Unit:             models.UnitCup,
				Ingredients:      []substitutionItemRequest{{IngredientName: "Coconut Oil", Amount: 1, Unit: models.UnitCup}},
			},
		},
		{
			name: "no replacements",
			payload: substitutionCreateRequest{
				FromIngredientID: "butter",
				Name:             "Empty",
				Amount:           1,
				Unit:             models.UnitCup,
			},
		},
		{
			name: "self substitution",
			payload: substitutionCreateRequest{
				FromIngredientID: "butter",
				Name:             "Butter for Butter",
				Amount:           1,
				Unit:             models.UnitCup,
				Ingredients:      []substitutionItemRequest{{IngredientName: "Butter", Amount: 1, Unit: models.UnitCup}},
			},
		},
		{
			name: "bad unit",
			payload: substitutionCreateRequest{
				FromIngredientID: "butter",
				Name:             "Bad Unit",
				Amount:           1,
				Unit:             models.UnitCup,
				Ingredients:      []substitutionItemRequest{{IngredientName: "Coconut Oil", Amount: 1, Unit: "bushel"}},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, _ := json.Marshal(tc.payload)
			req := httptest.NewRequest(http.MethodPost, "/api/substitutions", bytes.NewReader(body))
			w := httptest.NewRecorder()
			set.SubstitutionResource(w, req)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestSubstitutionShowAndList(t *testing.T) {
	db := withTestDatabase(t)
	set, _ := newTestSet(t, db)
	seedSubstitutionPair(t, db)
	created := createSubstitutionViaAPI(t, set)

	req := httptest.NewRequest(http.MethodGet, "/api/substitutions/"+created.Slug, nil)
	req = withSession(t, set.sessions, req)
	w := httptest.NewRecorder()
	set.SubstitutionResource(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var shown substitutionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &shown); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if shown.Ingredients[0].IngredientName != "Coconut Oil" {
		t.Fatalf("expected preloaded ingredient name, got %+v", shown.Ingredients)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/substitutions?for=butter", nil)
	req = withSession(t, set.sessions, req)
	w = httptest.NewRecorder()
	set.SubstitutionResource(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200 for list, got %d", w.Code)
	}
	var listed []substitutionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if len(listed) != 1 || listed[0].Slug != created.Slug {
		t.Fatalf("expected the created substitution in the list, got %+v", listed)
	}
}

func TestSubstitutionShowNotFound(t *testing.T) {
	db := withTestDatabase(t)
	set, _ := newTestSet(t, db)

	req := httptest.NewRequest(http.MethodGet, "/api/substitutions/nope", nil)
	w := httptest.NewRecorder()
	set.SubstitutionResource(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}

func TestSubstitutionDelete(t *testing.T) {
	db := withTestDatabase(t)
	set, _ := newTestSet(t, db)
	seedSubstitutionPair(t, db)
	created := createSubstitutionViaAPI(t, set)

	req := httptest.NewRequest(http.MethodDelete, "/api/substitutions/"+created.Slug, nil)
	w := httptest.NewRecorder()
	set.SubstitutionResource(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", w.Code)
	}

	var count int64
	if err := db.Model(&models.SubstitutionIngredient{}).Where("substitution_slug = ?", created.Slug).Count(&count).Error; err != nil {
		t.Fatalf("failed to count line items: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected line items to be removed with the substitution, found %d", count)
	}
}
