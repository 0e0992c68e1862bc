package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/sohaum/bazar/internal/httpserver/deps"
	"github.com/sohaum/bazar/internal/httpserver/handlers"
)

func init() { Register(registerListings) }

func registerListings(r chi.Router, d deps.Deps) {
	r.Route("/api/listings", func(r chi.Router) {
		r.Get("/", handlers.Listings(d))
		r.Post("/", handlers.Submit(d))
		r.Get("/{id}", handlers.Listing(d))
		r.Delete("/{id}", handlers.DeleteListing(d))
	})
}
