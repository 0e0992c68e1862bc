// Package catalog owns the persisted listing collection and the pinned
// set. Every mutating operation re-reads the store, applies the change
// and writes the whole document back: concurrent writers race with
// last-write-wins semantics. That is an accepted property of the
// storage contract, not
// something this layer tries to fix with locking it doesn't have.
package catalog

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sohaum/bazar/internal/domain"
	"github.com/sohaum/bazar/internal/logger"
	"github.com/sohaum/bazar/internal/store"
)

// Repository provides CRUD over the listing collection with permission
// checks on mutation. It keeps an in-memory mirror of the last known
// collection so that a failing store degrades the process to
// best-effort persistence instead of failing operations outright.
type Repository struct {
	kv    store.KV
	log   logger.Logger
	now   func() time.Time
	newID func() string

	mu     sync.Mutex
	mirror []domain.Listing
}

// NewRepository creates a repository over the given store.
func NewRepository(kv store.KV, log logger.Logger) *Repository {
	return &Repository{
		kv:    kv,
		log:   log,
		now:   time.Now,
		newID: func() string { return "p-" + uuid.NewString() },
	}
}

// WithClock overrides the creation-timestamp source. Tests only.
func (r *Repository) WithClock(now func() time.Time) *Repository {
	r.now = now
	return r
}

// Patch holds the updatable fields of a listing. Nil pointers leave the
// current value untouched. ID, Owner and CreatedAt cannot be patched.
type Patch struct {
	Title       *string
	Description *string
	Category    *string
	Price       *int
	Images      *[]string // replaces the image set wholesale
	Province    *string
	City        *string
	Contact     *string
	ExpiryDate  *string
}

// Create validates and persists a new listing record, assigning an id
// and creation timestamp, and returns the id. New listings are
// prepended so an unsorted "list all" approximates recency.
func (r *Repository) Create(ctx context.Context, payload domain.Listing) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if payload.ID == "" {
		payload.ID = r.newID()
	}
	if payload.CreatedAt.IsZero() {
		payload.CreatedAt = r.now()
	}
	if payload.Images == nil {
		payload.Images = []string{}
	}
	if err := validateRecord(&payload); err != nil {
		return "", err
	}

	all := r.load(ctx)
	// A caller-supplied id must not collide with an existing record:
	// two listings under one id would make Read/Update/Delete operate
	// on whichever comes first.
	if indexOf(all, payload.ID) >= 0 {
		r.log.Warn("create rejected, id already in use",
			logger.String("id", payload.ID))
		return "", &domain.ValidationError{Field: "id"}
	}
	all = append([]domain.Listing{payload}, all...)
	r.save(ctx, all)

	r.log.Info("listing created",
		logger.String("id", payload.ID),
		logger.String("owner", payload.Owner))
	return payload.ID, nil
}

// Read returns the listing with the given id, expired or not.
func (r *Repository) Read(ctx context.Context, id string) (*domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := r.load(ctx)
	for i := range all {
		if all[i].ID == id {
			l := all[i]
			return &l, nil
		}
	}
	return nil, &domain.NotFound{ID: id}
}

// List returns a snapshot of the whole collection.
func (r *Repository) List(ctx context.Context) []domain.Listing {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := r.load(ctx)
	out := make([]domain.Listing, len(all))
	copy(out, all)
	return out
}

// Update applies a patch to the listing after checking edit permission.
// ID, Owner and CreatedAt always survive the patch.
func (r *Repository) Update(ctx context.Context, id string, patch Patch, actor *domain.Actor) (*domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := r.load(ctx)
	idx := indexOf(all, id)
	if idx < 0 {
		return nil, &domain.NotFound{ID: id}
	}
	if !domain.CanEdit(actor, &all[idx]) {
		r.log.Warn("edit denied",
			logger.String("id", id),
			logger.String("actor", actorName(actor)))
		return nil, &domain.PermissionDenied{Action: domain.ActionEdit}
	}

	updated := all[idx]
	applyPatch(&updated, patch)
	if err := validateRecord(&updated); err != nil {
		return nil, err
	}

	all[idx] = updated
	r.save(ctx, all)

	r.log.Info("listing updated", logger.String("id", id))
	l := updated
	return &l, nil
}

// Delete permanently removes the listing after checking delete
// permission. A missing id is an explicit NotFound, never a no-op, so
// stale-id bugs in callers stay visible.
func (r *Repository) Delete(ctx context.Context, id string, actor *domain.Actor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := r.load(ctx)
	idx := indexOf(all, id)
	if idx < 0 {
		return &domain.NotFound{ID: id}
	}
	if !domain.CanDelete(actor, &all[idx]) {
		r.log.Warn("delete denied",
			logger.String("id", id),
			logger.String("actor", actorName(actor)))
		return &domain.PermissionDenied{Action: domain.ActionDelete}
	}

	all = append(all[:idx], all[idx+1:]...)
	r.save(ctx, all)

	r.log.Info("listing deleted",
		logger.String("id", id),
		logger.String("actor", actorName(actor)))
	return nil
}

// load re-reads the collection from the store. When the store is
// unreachable or holds garbage it falls back to the mirror so readers
// keep working; the condition is logged, not surfaced.
func (r *Repository) load(ctx context.Context) []domain.Listing {
	data, ok, err := r.kv.Get(ctx, store.KeyListings)
	if err != nil {
		r.log.Warn("listings read failed, serving in-memory mirror", logger.Error(err))
		return r.mirror
	}
	if !ok {
		r.mirror = nil
		return nil
	}

	var all []domain.Listing
	if err := json.Unmarshal(data, &all); err != nil {
		r.log.Warn("listings document corrupt, serving in-memory mirror", logger.Error(err))
		return r.mirror
	}
	r.mirror = all
	return all
}

// save writes the collection back and updates the mirror. A write
// failure is an advisory: the operation already succeeded in memory,
// persistence across restarts is simply not guaranteed.
func (r *Repository) save(ctx context.Context, all []domain.Listing) {
	r.mirror = all

	data, err := json.Marshal(all)
	if err != nil {
		r.log.Error("failed to marshal listings", logger.Error(err))
		return
	}
	if err := r.kv.Set(ctx, store.KeyListings, data); err != nil {
		failure := &domain.StorageFailure{Key: store.KeyListings, Err: err}
		r.log.Warn("listings write failed, result kept in memory only", logger.Error(failure))
	}
}

func indexOf(all []domain.Listing, id string) int {
	for i := range all {
		if all[i].ID == id {
			return i
		}
	}
	return -1
}

func applyPatch(l *domain.Listing, p Patch) {
	if p.Title != nil {
		l.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		l.Description = strings.TrimSpace(*p.Description)
	}
	if p.Category != nil {
		l.Category = strings.TrimSpace(*p.Category)
	}
	if p.Price != nil {
		l.Price = *p.Price
	}
	if p.Images != nil {
		l.Images = *p.Images
	}
	if p.Province != nil {
		l.Province = strings.TrimSpace(*p.Province)
	}
	if p.City != nil {
		l.City = strings.TrimSpace(*p.City)
	}
	if p.Contact != nil {
		l.Contact = strings.TrimSpace(*p.Contact)
	}
	if p.ExpiryDate != nil {
		l.ExpiryDate = strings.TrimSpace(*p.ExpiryDate)
	}
}

// validateRecord enforces storage invariants. The ingestion pipeline
// validates submissions in detail; this is the defensive boundary for
// anything that reaches the repository directly.
func validateRecord(l *domain.Listing) error {
	if strings.TrimSpace(l.Title) == "" {
		return &domain.ValidationError{Field: "title"}
	}
	if strings.TrimSpace(l.Category) == "" {
		return &domain.ValidationError{Field: "category"}
	}
	if strings.TrimSpace(l.Province) == "" {
		return &domain.ValidationError{Field: "province"}
	}
	if strings.TrimSpace(l.City) == "" {
		return &domain.ValidationError{Field: "city"}
	}
	if l.Price < 0 {
		return &domain.ValidationError{Field: "price"}
	}
	if strings.TrimSpace(l.Owner) == "" {
		return &domain.ValidationError{Field: "owner"}
	}
	if len(l.Images) > domain.MaxImages {
		return &domain.LimitExceeded{Resource: "images", Limit: domain.MaxImages}
	}
	return nil
}

func actorName(actor *domain.Actor) string {
	if actor == nil {
		return "anonymous"
	}
	return actor.Username
}
