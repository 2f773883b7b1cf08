package mock

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	applog "bakesub/internal/log"
	"bakesub/models"
)

// New returns an in-memory sqlite database seeded with representative
// baking ingredients and substitutions, suitable for local development
// runs without a postgres instance.
func New(ctx context.Context) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock database")

	db, err := gorm.Open(sqlite.Open("file:bakesub-mock?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		PrepareStmt:                              true,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&models.Ingredient{},
		&models.Substitution{},
		&models.SubstitutionIngredient{},
	); err != nil {
		return nil, err
	}

	if err := seed(ctx, db); err != nil {
		return nil, err
	}

	applog.Debug(ctx, "mock database ready")
	return db, nil
}

func seed(ctx context.Context, db *gorm.DB) error {
	applog.Debug(ctx, "seeding mock database")

	egg := models.Ingredient{
		Slug:        "egg",
		Name:        "Egg",
		Category:    "binding",
		Functions:   datatypes.NewJSONSlice([]string{"binding", "leavening", "moisture"}),
		CommonUses:  datatypes.NewJSONSlice([]string{"cakes", "cookies", "breads"}),
		Allergens:   datatypes.NewJSONSlice([]string{"eggs"}),
		DefaultUnit: models.UnitWhole,
		Notes:       "The workhorse binder of home baking.",
		Nutrition: models.Nutrition{
			Calories: ptr(72.0),
			Fat:      ptr(4.8),
			Protein:  ptr(6.3),
		},
	}

	flaxEgg := models.Ingredient{
		Slug:         "flax-egg",
		Name:         "Flax Egg",
		Category:     "binding",
		Functions:    datatypes.NewJSONSlice([]string{"binding", "moisture"}),
		CommonUses:   datatypes.NewJSONSlice([]string{"muffins", "pancakes", "quick breads"}),
		DietaryFlags: datatypes.NewJSONSlice([]string{"vegan", "gluten-free"}),
		DefaultUnit:  models.UnitTablespoon,
		Notes:        "Ground flaxseed whisked with water until gelled.",
	}

	butter := models.Ingredient{
		Slug:         "butter",
		Name:         "Butter",
		Category:     "fat",
		Functions:    datatypes.NewJSONSlice([]string{"tenderizing", "flavor", "structure"}),
		CommonUses:   datatypes.NewJSONSlice([]string{"cookies", "pastry", "cakes"}),
		Allergens:    datatypes.NewJSONSlice([]string{"milk"}),
		DefaultUnit:  models.UnitCup,
		DietaryFlags: datatypes.NewJSONSlice([]string{"vegetarian"}),
	}

	coconutOil := models.Ingredient{
		Slug:         "coconut-oil",
		Name:         "Coconut Oil",
		Category:     "fat",
		Functions:    datatypes.NewJSONSlice([]string{"tenderizing", "moisture"}),
		CommonUses:   datatypes.NewJSONSlice([]string{"cookies", "cakes"}),
		DietaryFlags: datatypes.NewJSONSlice([]string{"vegan", "dairy-free"}),
		Allergens:    datatypes.NewJSONSlice([]string{"tree nuts"}),
		DefaultUnit:  models.UnitCup,
	}

	ingredients := []*models.Ingredient{&egg, &flaxEgg, &butter, &coconutOil}
	for _, ingredient := range ingredients {
		if err := db.WithContext(ctx).Create(ingredient).Error; err != nil {
			return err
		}
	}

	flaxSub := models.Substitution{
		Slug:         "flax-egg-substitute",
		Name:         "Flax Egg Substitute",
		OriginalSlug: egg.Slug,
		Amount:       1,
		Unit:         models.UnitTablespoon,
		DietaryFlags: datatypes.NewJSONSlice([]string{"vegan", "gluten-free"}),
		Allergens:    datatypes.NewJSONSlice([]string{}),
		Effects:      "Denser crumb, slightly nutty flavor. Best in rustic bakes.",
		BestFor:      datatypes.NewJSONSlice([]string{"muffins", "pancakes"}),
	}
	if err := db.WithContext(ctx).Create(&flaxSub).Error; err != nil {
		return err
	}

	coconutSub := models.Substitution{
		Slug:         "coconut-oil-for-butter",
		Name:         "Coconut Oil for Butter",
		OriginalSlug: butter.Slug,
		Amount:       1,
		Unit:         models.UnitCup,
		DietaryFlags: datatypes.NewJSONSlice([]string{"vegan", "dairy-free"}),
		Allergens:    datatypes.NewJSONSlice([]string{"tree nuts"}),
		Effects:      "Crisper edges, subtle coconut aroma.",
		BestFor:      datatypes.NewJSONSlice([]string{"cookies"}),
	}
	if err := db.WithContext(ctx).Create(&coconutSub).Error; err != nil {
		return err
	}

	lineItems := []models.SubstitutionIngredient{
		{
			SubstitutionSlug: flaxSub.Slug,
			IngredientSlug:   flaxEgg.Slug,
			Amount:           1,
			Unit:             models.UnitTablespoon,
			Notes:            "Whisk with 3 tbsp water, rest 5 minutes.",
			Position:         0,
		},
		{
			SubstitutionSlug: coconutSub.Slug,
			IngredientSlug:   coconutOil.Slug,
			Amount:           1,
			Unit:             models.UnitCup,
			Notes:            "Use solid, not melted, for creaming.",
			Position:         0,
		},
	}

	for _, item := range lineItems {
		itemCopy := item
		if err := db.WithContext(ctx).Create(&itemCopy).Error; err != nil {
			return err
		}
	}

	applog.Debug(ctx, "mock database seeded")
	return nil
}

func ptr(v float64) *float64 {
	return &v
}
