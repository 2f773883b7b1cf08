package models

import (
	"time"

	"gorm.io/datatypes"
)

// Ingredient is a raw baking component identified by a stable slug
// derived from its display name.
type Ingredient struct {
	Slug         string                      `gorm:"primaryKey" json:"slug"`
	Name         string                      `gorm:"uniqueIndex;not null" json:"name"`
	Category     string                      `gorm:"index" json:"category"`
	Functions    datatypes.JSONSlice[string] `json:"functions"`
	CommonUses   datatypes.JSONSlice[string] `json:"common_uses"`
	DietaryFlags datatypes.JSONSlice[string] `json:"dietary_flags"`
	Allergens    datatypes.JSONSlice[string] `json:"allergens"`
	DefaultUnit  string                      `json:"default_unit"`
	Notes        string                      `gorm:"type:text" json:"notes"`
	Nutrition    Nutrition                   `gorm:"embedded;embeddedPrefix:nutrition_" json:"nutrition"`
	SearchCount  int64                       `gorm:"not null;default:0" json:"search_count"`
	ImageURL     string                      `json:"image_url"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}

// Nutrition holds per-serving facts cached onto the ingredient row at
// creation time. Every field is nullable: a failed lookup leaves the
// whole block empty.
type Nutrition struct {
	Calories      *float64 `json:"calories"`
	Fat           *float64 `json:"fat"`
	Carbohydrates *float64 `json:"carbohydrates"`
	Protein       *float64 `json:"protein"`
	Sodium        *float64 `json:"sodium"`
	Fiber         *float64 `json:"fiber"`
	Sugar         *float64 `json:"sugar"`
}

// Empty reports whether no nutrition fact is present at all.
func (n Nutrition) Empty() bool {
	return n.Calories == nil && n.Fat == nil && n.Carbohydrates == nil &&
		n.Protein == nil && n.Sodium == nil && n.Fiber == nil && n.Sugar == nil
}
