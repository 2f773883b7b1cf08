// Package ingredients implements administrative ingredient management
// and the read projections for the public ingredient pages.
package ingredients

import (
	"context"
	"errors"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"bakesub/internal/apperr"
	"bakesub/internal/invalidate"
	applog "bakesub/internal/log"
	"bakesub/internal/slug"
	"bakesub/models"
)

// NutritionSource looks up per-serving facts for an ingredient name.
// Lookups are consumed fail-open: an error degrades to empty facts.
type NutritionSource interface {
	Lookup(ctx context.Context, name string) (models.Nutrition, error)
}

// Service owns all ingredient reads and writes.
type Service struct {
	db          *gorm.DB
	nutrition   NutritionSource
	invalidator invalidate.Invalidator
}

// NewService builds a Service. Both nutrition and invalidator may be
// nil, disabling the nutrition fill and broadcasts respectively.
func NewService(db *gorm.DB, nutrition NutritionSource, invalidator invalidate.Invalidator) *Service {
	if invalidator == nil {
		invalidator = invalidate.Nop{}
	}
	return &Service{db: db, nutrition: nutrition, invalidator: invalidator}
}

// Input carries the administrative fields for creating or updating an
// ingredient.
type Input struct {
	Name         string
	Category     string
	Functions    []string
	CommonUses   []string
	DietaryFlags []string
	Allergens    []string
	DefaultUnit  string
	Notes        string
	ImageURL     string
}

// Create derives the slug from the display name, fills nutrition facts
// from the external source when available, and persists the row. A
// failed nutrition lookup is logged and leaves the facts empty; it
// never aborts the create.
func (s *Service) Create(ctx context.Context, in Input) (*models.Ingredient, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}

	id := slug.Make(name)
	if id == "" {
		return nil, apperr.Validation("name must contain at least one letter or digit")
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.Ingredient{}).Where("slug = ?", id).Count(&existing).Error; err != nil {
		applog.Error(ctx, "failed to check ingredient id availability", "error", err, "slug", id)
		return nil, apperr.Dependency("check ingredient id", err)
	}
	if existing > 0 {
		return nil, apperr.Conflict("ingredient %q already exists", id)
	}

	facts := models.Nutrition{}
	if s.nutrition != nil {
		looked, err := s.nutrition.Lookup(ctx, name)
		if err != nil {
			applog.Warn(ctx, "nutrition lookup failed, storing empty facts", "error", err, "ingredient", id)
		} else {
			facts = looked
		}
	}

	ingredient := models.Ingredient{
		Slug:         id,
		Name:         name,
		Category:     strings.TrimSpace(in.Category),
		Functions:    datatypes.NewJSONSlice(trimAll(in.Functions)),
		CommonUses:   datatypes.NewJSONSlice(trimAll(in.CommonUses)),
		DietaryFlags: datatypes.NewJSONSlice(trimAll(in.DietaryFlags)),
		Allergens:    datatypes.NewJSONSlice(trimAll(in.Allergens)),
		DefaultUnit:  models.NormalizeUnit(in.DefaultUnit),
		Notes:        strings.TrimSpace(in.Notes),
		Nutrition:    facts,
		ImageURL:     strings.TrimSpace(in.ImageURL),
	}

	if err := s.db.WithContext(ctx).Create(&ingredient).Error; err != nil {
		applog.Error(ctx, "failed to create ingredient", "error", err, "slug", id)
		return nil, apperr.Dependency("create ingredient", err)
	}

	s.signal(ctx, invalidate.TopicIngredient)
	applog.Info(ctx, "ingredient created", "slug", id)
	return &ingredient, nil
}

// Update overwrites the administrative fields of an existing
// ingredient. The slug and cached nutrition facts are left alone, and
// substitutions that snapshotted this ingredient's flags are not
// recomputed.
func (s *Service) Update(ctx context.Context, ingredientSlug string, in Input) (*models.Ingredient, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}

	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, "slug = ?", ingredientSlug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("ingredient %q not found", ingredientSlug)
		}
		applog.Error(ctx, "failed to load ingredient for update", "error", err, "slug", ingredientSlug)
		return nil, apperr.Dependency("load ingredient", err)
	}

	updates := map[string]any{
		"name":          name,
		"category":      strings.TrimSpace(in.Category),
		"functions":     datatypes.NewJSONSlice(trimAll(in.Functions)),
		"common_uses":   datatypes.NewJSONSlice(trimAll(in.CommonUses)),
		"dietary_flags": datatypes.NewJSONSlice(trimAll(in.DietaryFlags)),
		"allergens":     datatypes.NewJSONSlice(trimAll(in.Allergens)),
		"default_unit":  models.NormalizeUnit(in.DefaultUnit),
		"notes":         strings.TrimSpace(in.Notes),
		"image_url":     strings.TrimSpace(in.ImageURL),
	}

	if err := s.db.WithContext(ctx).Model(&ingredient).Updates(updates).Error; err != nil {
		applog.Error(ctx, "failed to update ingredient", "error", err, "slug", ingredientSlug)
		return nil, apperr.Dependency("update ingredient", err)
	}

	if err := s.db.WithContext(ctx).First(&ingredient, "slug = ?", ingredientSlug).Error; err != nil {
		applog.Error(ctx, "failed to reload ingredient after update", "error", err, "slug", ingredientSlug)
		return nil, apperr.Dependency("reload ingredient", err)
	}

	s.signal(ctx, invalidate.TopicIngredient)
	return &ingredient, nil
}

// Delete removes the ingredient and cascades to every substitution that
// references it as the original or as a replacement, including those
// substitutions' line items.
func (s *Service) Delete(ctx context.Context, ingredientSlug string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("slug = ?", ingredientSlug).Delete(&models.Ingredient{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		var affected []string
		if err := tx.Model(&models.Substitution{}).
			Distinct("substitutions.slug").
			Joins("LEFT JOIN substitution_ingredients ON substitution_ingredients.substitution_slug = substitutions.slug").
			Where("substitutions.original_slug = ? OR substitution_ingredients.ingredient_slug = ?", ingredientSlug, ingredientSlug).
			Pluck("substitutions.slug", &affected).Error; err != nil {
			return err
		}

		if len(affected) == 0 {
			return nil
		}

		if err := tx.Where("substitution_slug IN ?", affected).Delete(&models.SubstitutionIngredient{}).Error; err != nil {
			return err
		}
		return tx.Where("slug IN ?", affected).Delete(&models.Substitution{}).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("ingredient %q not found", ingredientSlug)
		}
		applog.Error(ctx, "failed to delete ingredient", "error", err, "slug", ingredientSlug)
		return apperr.Dependency("delete ingredient", err)
	}

	s.signal(ctx, invalidate.TopicIngredient)
	s.signal(ctx, invalidate.TopicSubstitution)
	return nil
}

// Get loads one ingredient. When recordSearch is set the row's
// popularity counter is bumped with a server-side increment.
func (s *Service) Get(ctx context.Context, ingredientSlug string, recordSearch bool) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, "slug = ?", ingredientSlug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("ingredient %q not found", ingredientSlug)
		}
		applog.Error(ctx, "failed to load ingredient", "error", err, "slug", ingredientSlug)
		return nil, apperr.Dependency("load ingredient", err)
	}

	if recordSearch {
		if err := s.db.WithContext(ctx).Model(&models.Ingredient{}).
			Where("slug = ?", ingredientSlug).
			UpdateColumn("search_count", gorm.Expr("search_count + 1")).Error; err != nil {
			applog.Warn(ctx, "failed to bump search counter", "error", err, "slug", ingredientSlug)
		} else {
			ingredient.SearchCount++
		}
	}

	return &ingredient, nil
}

// List returns ingredients ordered by name, optionally filtered by a
// case-insensitive name fragment and an exact category.
func (s *Service) List(ctx context.Context, query, category string) ([]models.Ingredient, error) {
	q := s.db.WithContext(ctx).Order("name asc")
	if fragment := strings.TrimSpace(query); fragment != "" {
		q = q.Where("lower(name) LIKE ?", "%"+strings.ToLower(fragment)+"%")
	}
	if category = strings.TrimSpace(category); category != "" {
		q = q.Where("category = ?", category)
	}

	var results []models.Ingredient
	if err := q.Find(&results).Error; err != nil {
		applog.Error(ctx, "failed to list ingredients", "error", err)
		return nil, apperr.Dependency("list ingredients", err)
	}
	return results, nil
}

func (s *Service) signal(ctx context.Context, topic string) {
	if err := s.invalidator.Invalidate(ctx, topic); err != nil {
		applog.Warn(ctx, "invalidation broadcast failed", "error", err, "topic", topic)
	}
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}
