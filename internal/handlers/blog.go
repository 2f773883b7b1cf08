package handlers

import (
	"net/http"
	"strconv"
	"strings"

	applog "bakesub/internal/log"
)

// BlogResource serves blog posts proxied from the headless CMS. When
// no content client is configured the endpoints answer 503 so the rest
// of the site keeps working.
func (h *Set) BlogResource(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if h.content == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "blog is not configured")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/blog")
	path = strings.Trim(path, "/")

	if path == "" {
		h.listPosts(w, r)
		return
	}
	h.showPost(w, r, path)
}

func (h *Set) listPosts(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeJSONError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	posts, err := h.content.ListPosts(r.Context(), limit)
	if err != nil {
		applog.Error(r.Context(), "failed to list blog posts", "error", err)
		writeJSONError(w, http.StatusBadGateway, "blog is temporarily unavailable")
		return
	}

	writeJSON(w, http.StatusOK, posts)
}

func (h *Set) showPost(w http.ResponseWriter, r *http.Request, postSlug string) {
	post, err := h.content.GetPost(r.Context(), postSlug)
	if err != nil {
		applog.Error(r.Context(), "failed to fetch blog post", "slug", postSlug, "error", err)
		writeJSONError(w, http.StatusBadGateway, "blog is temporarily unavailable")
		return
	}
	if post == nil {
		writeJSONError(w, http.StatusNotFound, "post not found")
		return
	}

	writeJSON(w, http.StatusOK, post)
}
