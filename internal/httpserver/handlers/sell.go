package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/sohaum/bazar/internal/domain"
	"github.com/sohaum/bazar/internal/httpserver/deps"
	"github.com/sohaum/bazar/internal/ingest"
	"github.com/sohaum/bazar/internal/logger"
)

// maxSubmitBytes bounds a whole multipart submission. Individual
// images only get a soft advisory; this is the hard request cap.
const maxSubmitBytes = 8 << 20

type submitResponse struct {
	Listing  domain.Listing `json:"listing"`
	Warnings []string       `json:"warnings,omitempty"`
}

// Submit accepts a multipart listing submission: text fields plus up
// to three image files, encoded concurrently while the form is
// validated. An editingId field turns the submit into an edit.
func Submit(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		actor := d.Identity.CurrentActor(ctx)
		if actor == nil {
			writeError(w, d.Logger, domain.ErrUnauthenticated)
			return
		}

		if err := r.ParseMultipartForm(maxSubmitBytes); err != nil {
			writeError(w, d.Logger, &domain.ValidationError{Field: "form"})
			return
		}

		stager := ingest.NewStager()
		var closers []io.Closer
		defer func() {
			for _, c := range closers {
				_ = c.Close()
			}
		}()
		if r.MultipartForm != nil {
			for _, fh := range r.MultipartForm.File["images"] {
				f, err := fh.Open()
				if err != nil {
					writeError(w, d.Logger, err)
					return
				}
				closers = append(closers, f)
				if err := stager.Add(fh.Filename, f); err != nil {
					writeError(w, d.Logger, err)
					return
				}
			}
		}

		images, advisories, err := stager.Wait(ctx)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		sub := ingest.Submission{
			Title:       r.FormValue("title"),
			Description: r.FormValue("description"),
			Category:    r.FormValue("category"),
			Province:    r.FormValue("province"),
			City:        r.FormValue("city"),
			Contact:     r.FormValue("contact"),
			Price:       parseInt(r.FormValue("price"), 0),
			ExpiryDate:  r.FormValue("expiryDate"),
			Images:      images,
			EditingID:   r.FormValue("editingId"),
		}

		listing, err := d.Pipeline.Submit(ctx, actor, sub)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		warnings := make([]string, 0, len(advisories))
		for _, a := range advisories {
			warnings = append(warnings, a.String())
			d.Logger.Warn("oversized image accepted",
				logger.String("actor", actor.Username),
				logger.String("advisory", a.String()))
		}

		status := http.StatusCreated
		if sub.EditingID != "" {
			status = http.StatusOK
		}
		d.Logger.Info("listing submitted",
			logger.String("id", listing.ID),
			logger.String("actor", actor.Username),
			logger.Bool("edit", sub.EditingID != ""))
		writeJSON(w, status, submitResponse{Listing: *listing, Warnings: warnings})
	}
}

// Draft returns the actor's saved draft. No draft is 204, not 404:
// an empty slot is the normal state.
func Draft(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		actor := d.Identity.CurrentActor(ctx)
		if actor == nil {
			writeError(w, d.Logger, domain.ErrUnauthenticated)
			return
		}

		draft, ok, err := d.Pipeline.LoadDraft(ctx, actor)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, draft)
	}
}

// SaveDraft stores the actor's draft, replacing any previous one.
func SaveDraft(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		actor := d.Identity.CurrentActor(ctx)
		if actor == nil {
			writeError(w, d.Logger, domain.ErrUnauthenticated)
			return
		}

		var draft ingest.Draft
		if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
			writeError(w, d.Logger, &domain.ValidationError{Field: "draft"})
			return
		}
		if err := d.Pipeline.SaveDraft(ctx, actor, draft); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
