package models

import "time"

// SubstitutionIngredient is one line item within a substitution: a
// replacement ingredient with its quantity. Position preserves the
// order the replacements were submitted in.
type SubstitutionIngredient struct {
	ID               uint        `gorm:"primaryKey" json:"id"`
	SubstitutionSlug string      `gorm:"not null;index" json:"substitution_slug"`
	IngredientSlug   string      `gorm:"not null;index" json:"ingredient_slug"`
	Ingredient       *Ingredient `gorm:"foreignKey:IngredientSlug;references:Slug" json:"ingredient,omitempty"`
	Amount           float64     `gorm:"not null" json:"amount"`
	Unit             string      `gorm:"not null" json:"unit"`
	Notes            string      `gorm:"type:text" json:"notes"`
	Position         int         `gorm:"not null;default:0" json:"position"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}
