package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/sohaum/bazar/internal/httpserver/deps"
	"github.com/sohaum/bazar/internal/httpserver/handlers"
)

func init() { Register(registerAuth) }

func registerAuth(r chi.Router, d deps.Deps) {
	r.Post("/api/login", handlers.Login(d))
	r.Post("/api/logout", handlers.Logout(d))
	r.Get("/api/me", handlers.Me(d))
}
