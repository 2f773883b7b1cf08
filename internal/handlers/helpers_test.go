package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/alexedwards/scs/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"bakesub/internal/ingredients"
	"bakesub/internal/invalidate"
	"bakesub/internal/substitutions"
	"bakesub/models"
)

func withTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:handlers-%s?mode=memory&cache=shared&_busy_timeout=10000", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}
	if err := db.AutoMigrate(&models.Ingredient{}, &models.Substitution{}, &models.SubstitutionIngredient{}); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func withTestSessionManager(t *testing.T) *scs.SessionManager {
	t.Helper()
	sm := scs.New()
	sm.Cookie.Name = "bakesub_session_test"
	return sm
}

func newTestSet(t *testing.T, db *gorm.DB) (*Set, *scs.SessionManager) {
	t.Helper()
	sm := withTestSessionManager(t)
	ingredientSvc := ingredients.NewService(db, nil, invalidate.Nop{})
	substitutionSvc := substitutions.NewService(db, invalidate.Nop{})
	return New(sm, ingredientSvc, substitutionSvc, nil), sm
}

// withSession attaches a live session context to the request the same
// way the scs middleware would.
func withSession(t *testing.T, sm *scs.SessionManager, req *http.Request) *http.Request {
	t.Helper()
	ctx, err := sm.Load(req.Context(), "")
	if err != nil {
		t.Fatalf("failed to load session context: %v", err)
	}
	return req.WithContext(ctx)
}

func seedIngredient(t *testing.T, db *gorm.DB, ingredient models.Ingredient) models.Ingredient {
	t.Helper()
	if err := db.Create(&ingredient).Error; err != nil {
		t.Fatalf("failed to seed ingredient %q: %v", ingredient.Slug, err)
	}
	return ingredient
}
