package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/sohaum/bazar/internal/httpserver/deps"
	"github.com/sohaum/bazar/internal/httpserver/handlers"
)

func init() { Register(registerPins) }

func registerPins(r chi.Router, d deps.Deps) {
	r.Get("/api/pins", handlers.Pins(d))
	r.Post("/api/pins/{id}/toggle", handlers.TogglePin(d))
}
