package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"gorm.io/gorm"

	"bakesub/internal/config"
	"bakesub/internal/content"
	"bakesub/internal/db"
	"bakesub/internal/db/mock"
	"bakesub/internal/ingredients"
	"bakesub/internal/invalidate"
	applog "bakesub/internal/log"
	"bakesub/internal/nutrition"
	"bakesub/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	applog.SetLevel(cfg.Log.Level)

	ctx := context.Background()

	database, err := openDatabase(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	invalidator, err := buildInvalidator(cfg)
	if err != nil {
		log.Fatalf("failed to connect invalidation publisher: %v", err)
	}

	srv, err := server.New(server.Config{
		Addr: cfg.Server.Addr,
		Session: server.SessionConfig{
			Lifetime:     cfg.Server.SessionLifetime,
			CookieName:   cfg.Server.SessionCookie,
			CookieDomain: cfg.Server.CookieDomain,
			CookieSecure: cfg.Server.CookieSecure,
		},
		Database:    database,
		Invalidator: invalidator,
		Nutrition:   buildNutritionSource(cfg),
		Content:     buildContentClient(cfg),
	})
	if err != nil {
		log.Fatalf("failed to build server: %v", err)
	}

	go func() {
		log.Printf("starting http server on %s", cfg.Server.Addr)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server encountered an error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	<-sigCh

	log.Println("shutting down http server")
	if err := srv.Stop(); err != nil {
		log.Fatalf("graceful shutdown failed: %v", err)
	}
	if closer, ok := invalidator.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			applog.Error(ctx, "failed to close invalidation publisher", "error", err)
		}
	}
}

// openDatabase connects to postgres when DATABASE_URL is set and falls
// back to the seeded in-memory store for local development.
func openDatabase(ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	if cfg.Database.URL != "" {
		return db.Configure(cfg.Database)
	}
	applog.Info(ctx, "DATABASE_URL not set, using in-memory mock database")
	return mock.New(ctx)
}

func buildInvalidator(cfg config.Config) (invalidate.Invalidator, error) {
	if cfg.Redis.Addr == "" {
		return invalidate.Nop{}, nil
	}
	return invalidate.NewRedis(cfg.Redis)
}

func buildNutritionSource(cfg config.Config) ingredients.NutritionSource {
	if cfg.Nutrition.APIKey == "" {
		return nil
	}
	client, err := nutrition.NewClient(nutrition.Config{
		APIKey:   cfg.Nutrition.APIKey,
		BaseURL:  cfg.Nutrition.BaseURL,
		CacheTTL: cfg.Nutrition.CacheTTL,
	})
	if err != nil {
		log.Printf("nutrition client unavailable: %v", err)
		return nil
	}
	return client
}

func buildContentClient(cfg config.Config) *content.Client {
	if cfg.Content.BaseURL == "" {
		return nil
	}
	client, err := content.NewClient(content.Config{
		BaseURL:  cfg.Content.BaseURL,
		Key:      cfg.Content.Key,
		CacheTTL: cfg.Content.CacheTTL,
	})
	if err != nil {
		log.Printf("content client unavailable: %v", err)
		return nil
	}
	return client
}
