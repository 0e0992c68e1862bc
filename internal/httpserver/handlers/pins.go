package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sohaum/bazar/internal/catalog"
	"github.com/sohaum/bazar/internal/domain"
	"github.com/sohaum/bazar/internal/httpserver/deps"
	"github.com/sohaum/bazar/internal/logger"
)

type pinsResponse struct {
	Items []domain.Listing `json:"items"`
	Limit int              `json:"limit"`
}

type toggleResponse struct {
	ID     string `json:"id"`
	Pinned bool   `json:"pinned"`
}

// Pins serves the promoted strip: pinned listings that still resolve
// and are still visible, in pin order.
func Pins(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		items := domain.PromotedListings(
			d.Repo.List(ctx),
			d.Pins.PinnedIDs(ctx),
			catalog.PinLimit,
			d.TimeNow(),
		)
		writeJSON(w, http.StatusOK, pinsResponse{Items: items, Limit: catalog.PinLimit})
	}
}

// TogglePin flips a listing in or out of the promoted set.
func TogglePin(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := chi.URLParam(r, "id")

		actor := d.Identity.CurrentActor(ctx)
		pinned, err := d.Pins.TogglePin(ctx, id, actor)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		d.Logger.Info("pin toggled",
			logger.String("id", id),
			logger.Bool("pinned", pinned))
		writeJSON(w, http.StatusOK, toggleResponse{ID: id, Pinned: pinned})
	}
}
