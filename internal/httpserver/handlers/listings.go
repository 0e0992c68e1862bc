package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sohaum/bazar/internal/domain"
	"github.com/sohaum/bazar/internal/httpserver/deps"
	"github.com/sohaum/bazar/internal/logger"
)

type pageResponse struct {
	Items      []domain.Listing `json:"items"`
	TotalCount int              `json:"totalCount"`
	PageCount  int              `json:"pageCount"`
	Page       int              `json:"page"`
}

type listingResponse struct {
	domain.Listing
	Pinned bool `json:"pinned"`
}

// Listings serves the browse view: visibility, filters, sort and
// pagination all happen in one pass over the collection snapshot.
// ?mine=true switches to the actor's own listings, expired included.
func Listings(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		q := r.URL.Query()

		if parseBool(q.Get("mine")) {
			actor := d.Identity.CurrentActor(ctx)
			if actor == nil {
				writeError(w, d.Logger, domain.ErrUnauthenticated)
				return
			}
			var mine []domain.Listing
			for _, l := range d.Repo.List(ctx) {
				if actor.Username == l.Owner {
					mine = append(mine, l)
				}
			}
			if mine == nil {
				mine = []domain.Listing{}
			}
			writeJSON(w, http.StatusOK, pageResponse{
				Items:      mine,
				TotalCount: len(mine),
				PageCount:  1,
				Page:       1,
			})
			return
		}

		filters := domain.Filters{
			Text:     q.Get("q"),
			Category: q.Get("category"),
			MinPrice: parseInt(q.Get("minPrice"), 0),
			MaxPrice: parseInt(q.Get("maxPrice"), 0),
			Sort:     domain.Sort(q.Get("sort")),
		}
		page := parseInt(q.Get("page"), 1)

		result := domain.Search(d.Repo.List(ctx), filters, page, d.TimeNow())
		d.Logger.Debug("catalog query",
			logger.String("text", filters.Text),
			logger.String("category", filters.Category),
			logger.Int("matches", result.TotalCount))

		writeJSON(w, http.StatusOK, pageResponse{
			Items:      result.Items,
			TotalCount: result.TotalCount,
			PageCount:  result.PageCount,
			Page:       result.Page,
		})
	}
}

// Listing serves the detail view for a single listing.
func Listing(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := chi.URLParam(r, "id")

		l, err := d.Repo.Read(ctx, id)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, listingResponse{
			Listing: *l,
			Pinned:  d.Pins.IsPinned(ctx, l.ID),
		})
	}
}

// DeleteListing removes a listing, subject to the permission matrix.
func DeleteListing(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := chi.URLParam(r, "id")

		actor := d.Identity.CurrentActor(ctx)
		if actor == nil {
			writeError(w, d.Logger, domain.ErrUnauthenticated)
			return
		}
		if err := d.Repo.Delete(ctx, id, actor); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		d.Logger.Info("listing deleted",
			logger.String("id", id),
			logger.String("actor", actor.Username))
		w.WriteHeader(http.StatusNoContent)
	}
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	return def
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && b
}
