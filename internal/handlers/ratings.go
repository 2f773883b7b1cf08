package handlers

import (
	"encoding/json"
	"net/http"

	applog "bakesub/internal/log"
)

type ratingRequest struct {
	SubstitutionID string `json:"substitutionId"`
	Rating         int    `json:"rating"`
}

// RateSubstitution records one visitor rating. The session flag it
// sets afterwards is advisory only: clients use it to hide the rating
// widget, but a repeat submission is still accepted and counted.
func (h *Set) RateSubstitution(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var payload ratingRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(r.Context(), "invalid rating payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := h.substitutions.SubmitRating(r.Context(), payload.SubstitutionID, payload.Rating); err != nil {
		writeAppError(w, err)
		return
	}

	if h.sessions != nil {
		h.sessions.Put(r.Context(), ratedSessionKey(payload.SubstitutionID), true)
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func ratedSessionKey(substitutionSlug string) string {
	return "rated:" + substitutionSlug
}

func (h *Set) alreadyRated(r *http.Request, substitutionSlug string) bool {
	if h.sessions == nil {
		return false
	}
	return h.sessions.GetBool(r.Context(), ratedSessionKey(substitutionSlug))
}
