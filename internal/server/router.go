package server

import (
	"context"
	"net/http"

	"bakesub/internal/handlers"
	applog "bakesub/internal/log"
)

func newRouter(h *handlers.Set) http.Handler {
	mux := http.NewServeMux()
	applog.Debug(context.Background(), "registering http routes")
	mux.HandleFunc("/healthz", h.Health)
	mux.HandleFunc("/api/ingredients", h.IngredientResource)
	mux.HandleFunc("/api/ingredients/", h.IngredientResource)
	mux.HandleFunc("/api/substitutions", h.SubstitutionResource)
	mux.HandleFunc("/api/substitutions/", h.SubstitutionResource)
	mux.HandleFunc("/api/ratings", h.RateSubstitution)
	mux.HandleFunc("/api/blog", h.BlogResource)
	mux.HandleFunc("/api/blog/", h.BlogResource)
	applog.Debug(context.Background(), "routes registered")
	return mux
}
