// Package server exposes the search service over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lepinkainen/shelfsearch/internal/book"
	apperrors "github.com/lepinkainen/shelfsearch/internal/errors"
	"github.com/lepinkainen/shelfsearch/internal/normalize"
)

// Searcher answers one query.
type Searcher interface {
	Search(ctx context.Context, q book.SearchQuery) (book.SearchResult, error)
}

// Handler builds the HTTP routes.
func Handler(s Searcher, rr *Responder) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		rr.SendJSON(r.Context(), w, map[string]string{"status": "ok"})
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/search", func(w http.ResponseWriter, r *http.Request) {
			result, err := s.Search(r.Context(), queryFromValues(r.URL.Query()))
			if err != nil {
				var verr *apperrors.ValidationError
				if errors.As(err, &verr) {
					rr.RespondValidation(r.Context(), w, verr)
					return
				}
				rr.RespondAndLogError(r.Context(), w, err)
				return
			}
			rr.SendJSON(r.Context(), w, result)
		})

		r.Get("/categories", func(w http.ResponseWriter, r *http.Request) {
			rr.SendJSON(r.Context(), w, struct {
				Categories []string `json:"categories"`
			}{Categories: normalize.Labels()})
		})
	})

	return r
}

// queryFromValues maps URL parameters onto a SearchQuery. A missing page
// means the first one; a malformed page is left at zero so validation
// rejects it.
func queryFromValues(q url.Values) book.SearchQuery {
	return book.SearchQuery{
		Title:     q.Get("title"),
		Author:    q.Get("author"),
		Category:  q.Get("category"),
		Subject:   q.Get("subject"),
		Condition: q.Get("condition"),
		Sort:      q.Get("sort"),
		Page:      getIntOrDefault("page", q, 1),
	}
}

func getIntOrDefault(key string, q url.Values, def int) int {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return v
}
