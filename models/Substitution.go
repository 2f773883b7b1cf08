package models

import (
	"time"

	"gorm.io/datatypes"
)

// Substitution is a named recipe for replacing one ingredient with one
// or more others. DietaryFlags and Allergens are the union of the
// corresponding sets across all replacement ingredients, computed once
// when the substitution is created.
type Substitution struct {
	Slug         string                      `gorm:"primaryKey" json:"slug"`
	Name         string                      `gorm:"not null" json:"name"`
	OriginalSlug string                      `gorm:"not null;index" json:"original_slug"`
	Original     *Ingredient                 `gorm:"foreignKey:OriginalSlug;references:Slug" json:"original,omitempty"`
	Amount       float64                     `json:"amount"`
	Unit         string                      `json:"unit"`
	Rating       *float64                    `json:"rating"`
	RatingCount  int64                       `gorm:"not null;default:0" json:"rating_count"`
	DietaryFlags datatypes.JSONSlice[string] `json:"dietary_flags"`
	Allergens    datatypes.JSONSlice[string] `json:"allergens"`
	Effects      string                      `gorm:"type:text" json:"effects"`
	BestFor      datatypes.JSONSlice[string] `json:"best_for"`
	Ingredients  []SubstitutionIngredient    `gorm:"foreignKey:SubstitutionSlug;references:Slug" json:"ingredients"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}
