// Package handlers exposes the JSON REST surface over the ingredient
// and substitution services.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"bakesub/internal/apperr"
	"bakesub/internal/content"
	"bakesub/internal/ingredients"
	applog "bakesub/internal/log"
	"bakesub/internal/substitutions"
)

// Set bundles the dependencies every handler needs. Construct it with
// New and register its methods on a router; there is no package-level
// state.
type Set struct {
	sessions      *scs.SessionManager
	ingredients   *ingredients.Service
	substitutions *substitutions.Service
	content       *content.Client
}

// New builds a handler set. The content client may be nil, which
// disables the blog endpoints with a 503.
func New(sessions *scs.SessionManager, ingredientSvc *ingredients.Service, substitutionSvc *substitutions.Service, contentClient *content.Client) *Set {
	return &Set{
		sessions:      sessions,
		ingredients:   ingredientSvc,
		substitutions: substitutionSvc,
		content:       contentClient,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		applog.Error(context.Background(), "failed to encode json response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeAppError maps a service error onto the transport: validation as
// 400, conflict as 409, not-found as 404, everything else as 500 with a
// generic message so store internals do not leak to clients.
func writeAppError(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	writeJSONError(w, status, message)
}
