// Package api serves the providers as a read-only JSON bridge. Pagination
// cursors travel as opaque tokens in the "cursor" query parameter.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"mangadventure/internal/provider"
)

// Providers looks up providers by site name.
type Providers interface {
	Get(name string) (provider.Provider, error)
	All() []provider.Provider
}

// Server holds the dependencies for the bridge.
type Server struct {
	providers Providers
	timeout   time.Duration
}

// NewServer creates a new Server instance.
func NewServer(providers Providers) *Server {
	return &Server{providers: providers, timeout: 60 * time.Second}
}

// Router sets up and returns the main router for the bridge.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.Route("/api", func(r chi.Router) {
		r.Get("/sites", s.handleListSites)

		r.Route("/sites/{site}", func(r chi.Router) {
			r.Use(s.providerCtx)

			r.Get("/", s.handleGetSite)
			r.Get("/directory", s.handleDirectory)
			r.Get("/home", s.handleHome)
			r.Get("/search", s.handleSearch)
			r.Get("/tags", s.handleTags)
			r.Get("/series/{slug}", s.handleSeries)
			r.Get("/series/{slug}/chapters", s.handleChapters)
			r.Get("/series/{slug}/chapters/{chapterID}/pages", s.handlePages)
		})
	})

	return r
}

type providerKey struct{}

// providerCtx resolves the {site} parameter to a provider.
func (s *Server) providerCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := s.providers.Get(chi.URLParam(r, "site"))
		if err != nil {
			RespondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		ctx := context.WithValue(r.Context(), providerKey{}, p)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func providerFrom(r *http.Request) provider.Provider {
	return r.Context().Value(providerKey{}).(provider.Provider)
}
