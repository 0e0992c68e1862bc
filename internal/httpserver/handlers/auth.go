package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sohaum/bazar/internal/domain"
	"github.com/sohaum/bazar/internal/httpserver/deps"
	"github.com/sohaum/bazar/internal/identity"
	"github.com/sohaum/bazar/internal/logger"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type actorResponse struct {
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}

// Login opens a session for the given credentials.
func Login(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, d.Logger, identity.ErrInvalidCredentials)
			return
		}

		actor, err := d.Identity.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		d.Logger.Info("login", logger.String("actor", actor.Username))
		writeJSON(w, http.StatusOK, actorResponse{Username: actor.Username, Role: actor.Role})
	}
}

// Logout closes the session. Logging out twice is fine.
func Logout(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Identity.Logout(r.Context()); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// Me reports the active session, if any.
func Me(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := d.Identity.CurrentActor(r.Context())
		if actor == nil {
			writeError(w, d.Logger, domain.ErrUnauthenticated)
			return
		}
		writeJSON(w, http.StatusOK, actorResponse{Username: actor.Username, Role: actor.Role})
	}
}
