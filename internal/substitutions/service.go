// Package substitutions implements the substitution writer, the rating
// aggregator, and the read projections behind the public pages.
package substitutions

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

// Service owns all substitution reads and writes. Construct it with
// NewService; it keeps no package-level state.
type Service struct {
	db          *gorm.DB
	invalidator invalidate.Invalidator
}

// NewService builds a Service around an injected database handle and
// invalidation port. A nil invalidator disables broadcasts.
func NewService(db *gorm.DB, invalidator invalidate.Invalidator) *Service {
	if invalidator == nil {
		invalidator = invalidate.Nop{}
	}
	return &Service{db: db, invalidator: invalidator}
}

// Replacement is one requested line item: an ingredient plus the
// quantity of it that stands in for the original.
type Replacement struct {
	IngredientSlug string
	Amount         float64
	Unit           string
	Notes          string
}

// CreateInput carries a fully-parsed substitution creation request.
type CreateInput struct {
	Name         string
	OriginalSlug string
	Replacements []Replacement
	Amount       float64
	Unit         string
	Rating       *float64
	Effects      string
	BestFor      []string
}

// Create validates the request, derives the id and the dietary-flag and
// allergen unions, and persists the substitution with its line items in
// one transaction. The dietary and allergen unions are a snapshot:
// later edits to the underlying ingredients do not update them.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Substitution, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}

	if len(in.Replacements) == 0 {
		return nil, apperr.Validation("at least one replacement ingredient is required")
	}

	seen := make(map[string]struct{}, len(in.Replacements))
	replacementSlugs := make([]string, 0, len(in.Replacements))
	for _, replacement := range in.Replacements {
		ingredientSlug := strings.TrimSpace(replacement.IngredientSlug)
		if ingredientSlug == "" {
			return nil, apperr.Validation("replacement ingredient id is required")
		}
		if replacement.Amount <= 0 {
			return nil, apperr.Validation("replacement amount for %q must be positive", ingredientSlug)
		}
		if !models.ValidUnit(replacement.Unit) {
			return nil, apperr.Validation("unrecognized unit %q for %q", replacement.Unit, ingredientSlug)
		}
		if _, dup := seen[ingredientSlug]; dup {
			return nil, apperr.Validation("ingredient %q is listed twice", ingredientSlug)
		}
		seen[ingredientSlug] = struct{}{}
		replacementSlugs = append(replacementSlugs, ingredientSlug)
	}

	originalSlug := strings.TrimSpace(in.OriginalSlug)
	if originalSlug == "" {
		return nil, apperr.Validation("original ingredient id is required")
	}
	if _, self := seen[originalSlug]; self {
		return nil, apperr.Validation("ingredient %q cannot substitute for itself", originalSlug)
	}

	if in.Rating != nil && (*in.Rating < 1 || *in.Rating > 5) {
		return nil, apperr.Validation("rating must be between 1 and 5")
	}

	id := slug.Make(name)
	if id == "" {
		return nil, apperr.Validation("name must contain at least one letter or digit")
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.Substitution{}).Where("slug = ?", id).Count(&existing).Error; err != nil {
		applog.Error(ctx, "failed to check substitution id availability", "error", err, "slug", id)
		return nil, apperr.Dependency("check substitution id", err)
	}
	if existing > 0 {
		return nil, apperr.Conflict("substitution %q already exists", id)
	}

	var sources []models.Ingredient
	if err := s.db.WithContext(ctx).Where("slug IN ?", replacementSlugs).Find(&sources).Error; err != nil {
		applog.Error(ctx, "failed to load replacement ingredients", "error", err, "slug", id)
		return nil, apperr.Dependency("load replacement ingredients", err)
	}

	dietaryFlags := make([]string, 0)
	allergens := make([]string, 0)
	for _, source := range sources {
		dietaryFlags = unionStrings(dietaryFlags, source.DietaryFlags)
		allergens = unionStrings(allergens, source.Allergens)
	}

	substitution := models.Substitution{
		Slug:         id,
		Name:         name,
		OriginalSlug: originalSlug,
		Amount:       in.Amount,
		Unit:         models.NormalizeUnit(in.Unit),
		DietaryFlags: datatypes.NewJSONSlice(dietaryFlags),
		Allergens:    datatypes.NewJSONSlice(allergens),
		Effects:      strings.TrimSpace(in.Effects),
		BestFor:      datatypes.NewJSONSlice(trimAll(in.BestFor)),
	}
	if in.Rating != nil {
		substitution.Rating = in.Rating
		substitution.RatingCount = 1
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&substitution).Error; err != nil {
			return err
		}
		for position, replacement := range in.Replacements {
			item := models.SubstitutionIngredient{
				SubstitutionSlug: substitution.Slug,
				IngredientSlug:   strings.TrimSpace(replacement.IngredientSlug),
				Amount:           replacement.Amount,
				Unit:             replacement.Unit,
				Notes:            strings.TrimSpace(replacement.Notes),
				Position:         position,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			substitution.Ingredients = append(substitution.Ingredients, item)
		}
		return nil
	})
	if err != nil {
		applog.Error(ctx, "failed to persist substitution", "error", err, "slug", id)
		return nil, apperr.Dependency("create substitution", err)
	}

	s.signal(ctx, invalidate.TopicSubstitution)
	applog.Info(ctx, "substitution created", "slug", id, "original", originalSlug, "replacements", len(in.Replacements))
	return &substitution, nil
}

// SubmitRating folds one 1-5 star rating into the substitution's
// running mean. The mean and the count are recomputed by the store in a
// single UPDATE from the pre-update column values, so concurrent
// submissions cannot lose each other's contribution.
func (s *Service) SubmitRating(ctx context.Context, substitutionSlug string, rating int) error {
	substitutionSlug = strings.TrimSpace(substitutionSlug)
	if substitutionSlug == "" {
		return apperr.Validation("substitution id is required")
	}
	if rating < 1 || rating > 5 {
		return apperr.Validation("rating must be between 1 and 5")
	}

	result := s.db.WithContext(ctx).Model(&models.Substitution{}).
		Where("slug = ?", substitutionSlug).
		Updates(map[string]any{
			"rating":       gorm.Expr("(COALESCE(rating, 0) * rating_count + ?) / (rating_count + 1.0)", rating),
			"rating_count": gorm.Expr("rating_count + 1"),
		})
	if result.Error != nil {
		applog.Error(ctx, "failed to record rating", "error", result.Error, "slug", substitutionSlug)
		return apperr.Dependency("submit rating", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("substitution %q not found", substitutionSlug)
	}

	s.signal(ctx, invalidate.TopicSubstitution)
	applog.Debug(ctx, "rating recorded", "slug", substitutionSlug, "rating", rating)
	return nil
}

// Get loads one substitution with its ordered line items and the
// ingredient rows behind them.
func (s *Service) Get(ctx context.Context, substitutionSlug string) (*models.Substitution, error) {
	var substitution models.Substitution
	err := s.db.WithContext(ctx).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("position asc")
		}).
		Preload("Ingredients.Ingredient").
		Preload("Original").
		First(&substitution, "slug = ?", substitutionSlug).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("substitution %q not found", substitutionSlug)
		}
		applog.Error(ctx, "failed to load substitution", "error", err, "slug", substitutionSlug)
		return nil, apperr.Dependency("load substitution", err)
	}
	return &substitution, nil
}

// List returns every substitution ordered by name.
func (s *Service) List(ctx context.Context) ([]models.Substitution, error) {
	var results []models.Substitution
	if err := s.db.WithContext(ctx).Order("name asc").Find(&results).Error; err != nil {
		applog.Error(ctx, "failed to list substitutions", "error", err)
		return nil, apperr.Dependency("list substitutions", err)
	}
	return results, nil
}

// ListForIngredient returns the substitutions replacing the given
// ingredient, rated entries first, ties broken by name.
func (s *Service) ListForIngredient(ctx context.Context, originalSlug string) ([]models.Substitution, error) {
	var results []models.Substitution
	err := s.db.WithContext(ctx).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("position asc")
		}).
		Where("original_slug = ?", originalSlug).
		Order("rating_count = 0, rating desc, name asc").
		Find(&results).Error
	if err != nil {
		applog.Error(ctx, "failed to list substitutions for ingredient", "error", err, "ingredient", originalSlug)
		return nil, apperr.Dependency("list substitutions", err)
	}
	return results, nil
}

// Delete removes a substitution and its line items. Ingredients are
// untouched.
func (s *Service) Delete(ctx context.Context, substitutionSlug string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("substitution_slug = ?", substitutionSlug).Delete(&models.SubstitutionIngredient{}).Error; err != nil {
			return err
		}
		result := tx.Where("slug = ?", substitutionSlug).Delete(&models.Substitution{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("substitution %q not found", substitutionSlug)
		}
		applog.Error(ctx, "failed to delete substitution", "error", err, "slug", substitutionSlug)
		return apperr.Dependency("delete substitution", err)
	}

	s.signal(ctx, invalidate.TopicSubstitution)
	return nil
}

func (s *Service) signal(ctx context.Context, topic string) {
	if err := s.invalidator.Invalidate(ctx, topic); err != nil {
		applog.Warn(ctx, "invalidation broadcast failed", "error", err, "topic", topic)
	}
}

// unionStrings appends the members of extra that base does not already
// contain, preserving first-seen order.
func unionStrings(base []string, extra []string) []string {
	known := make(map[string]struct{}, len(base))
	for _, value := range base {
		known[value] = struct{}{}
	}
	for _, value := range extra {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, ok := known[value]; ok {
			continue
		}
		known[value] = struct{}{}
		base = append(base, value)
	}
	return base
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
