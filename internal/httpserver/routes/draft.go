package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/sohaum/bazar/internal/httpserver/deps"
	"github.com/sohaum/bazar/internal/httpserver/handlers"
)

func init() { Register(registerDraft) }

func registerDraft(r chi.Router, d deps.Deps) {
	r.Get("/api/draft", handlers.Draft(d))
	r.Put("/api/draft", handlers.SaveDraft(d))
}
