// Package ingest turns a raw listing submission into a validated,
// stored record: field validation in a fixed order, bounded image
// staging, a single draft slot per actor, and the final hand-off to
// the catalog repository.
package ingest

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/sohaum/bazar/internal/catalog"
	"github.com/sohaum/bazar/internal/domain"
	"github.com/sohaum/bazar/internal/logger"
	"github.com/sohaum/bazar/internal/store"
)

// ExpiryWindowDays is the maximum listing lifetime. The expiry date
// defaults to this window and an explicit date may not exceed it.
const ExpiryWindowDays = 7

const dateLayout = "2006-01-02"

// Submission is the raw input of a submit operation. All text fields
// are trimmed before validation. Images are already-encoded data URLs
// (from the Stager); EditingID switches between create and edit.
type Submission struct {
	Title       string
	Description string
	Category    string
	Province    string
	City        string
	Contact     string
	Price       int
	ExpiryDate  string // "2006-01-02", empty = default window
	Images      []string
	EditingID   string
}

// Draft holds the field values of an interrupted submission. Images
// are deliberately excluded: encoded blobs don't belong in the slot.
type Draft struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Province    string    `json:"province"`
	City        string    `json:"city"`
	Contact     string    `json:"contact"`
	Price       int       `json:"price"`
	ExpiryDate  string    `json:"expiryDate"`
	SavedAt     time.Time `json:"savedAt"`
}

// Pipeline validates submissions and feeds them to the repository.
// Draft slots follow the same mirror discipline as the catalog: a
// failing store degrades to in-memory copies instead of failing the
// operation.
type Pipeline struct {
	repo *catalog.Repository
	kv   store.KV
	log  logger.Logger
	now  func() time.Time

	mu     sync.Mutex
	drafts map[string]Draft // per-actor mirror of the draft slots
}

// NewPipeline creates the ingestion pipeline.
func NewPipeline(repo *catalog.Repository, kv store.KV, log logger.Logger) *Pipeline {
	return &Pipeline{
		repo:   repo,
		kv:     kv,
		log:    log,
		now:    time.Now,
		drafts: make(map[string]Draft),
	}
}

// WithClock overrides the submission timestamp source. Tests only.
func (p *Pipeline) WithClock(now func() time.Time) *Pipeline {
	p.now = now
	return p
}

// SaveDraft stores the actor's draft, replacing any previous one. A
// write failure is an advisory: the draft survives in the mirror and
// the save still succeeds from the caller's point of view.
func (p *Pipeline) SaveDraft(ctx context.Context, actor *domain.Actor, d Draft) error {
	if actor == nil {
		return domain.ErrUnauthenticated
	}
	d.SavedAt = p.now()

	p.mu.Lock()
	p.drafts[actor.Username] = d
	p.mu.Unlock()

	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	key := store.DraftKey(actor.Username)
	if err := p.kv.Set(ctx, key, data); err != nil {
		failure := &domain.StorageFailure{Key: key, Err: err}
		p.log.Warn("draft write failed, result kept in memory only", logger.Error(failure))
		return nil
	}
	p.log.Debug("draft saved", logger.String("actor", actor.Username))
	return nil
}

// LoadDraft returns the actor's last saved draft, if any. When the
// store is unreachable or has lost the document, the mirror fills in.
func (p *Pipeline) LoadDraft(ctx context.Context, actor *domain.Actor) (*Draft, bool, error) {
	if actor == nil {
		return nil, false, domain.ErrUnauthenticated
	}

	data, ok, err := p.kv.Get(ctx, store.DraftKey(actor.Username))
	if err != nil || !ok {
		if err != nil {
			p.log.Warn("draft read failed, serving in-memory mirror", logger.Error(err))
		}
		return p.mirrorDraft(actor.Username)
	}

	var d Draft
	if err := json.Unmarshal(data, &d); err != nil {
		p.log.Warn("draft document corrupt, discarding", logger.Error(err))
		return nil, false, nil
	}
	p.mu.Lock()
	p.drafts[actor.Username] = d
	p.mu.Unlock()
	return &d, true, nil
}

func (p *Pipeline) mirrorDraft(username string) (*Draft, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if d, ok := p.drafts[username]; ok {
		return &d, true, nil
	}
	return nil, false, nil
}

// Submit validates the submission and either creates a new listing or,
// when EditingID is set, updates the existing one through the
// repository's permission check. A successful submit clears the
// actor's draft unconditionally.
func (p *Pipeline) Submit(ctx context.Context, actor *domain.Actor, sub Submission) (*domain.Listing, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}

	sub.trim()
	if err := validateSubmission(&sub); err != nil {
		return nil, err
	}
	if len(sub.Images) > domain.MaxImages {
		return nil, &domain.LimitExceeded{Resource: "images", Limit: domain.MaxImages}
	}

	var result *domain.Listing
	if sub.EditingID == "" {
		listing, err := p.create(ctx, actor, sub)
		if err != nil {
			return nil, err
		}
		result = listing
	} else {
		listing, err := p.edit(ctx, actor, sub)
		if err != nil {
			return nil, err
		}
		result = listing
	}

	p.clearDraft(ctx, actor)
	return result, nil
}

func (p *Pipeline) create(ctx context.Context, actor *domain.Actor, sub Submission) (*domain.Listing, error) {
	createdAt := p.now()
	expiry, err := normalizeExpiry(sub.ExpiryDate, createdAt)
	if err != nil {
		return nil, err
	}

	images := sub.Images
	if images == nil {
		images = []string{}
	}
	payload := domain.Listing{
		Title:       sub.Title,
		Description: sub.Description,
		Category:    sub.Category,
		Price:       sub.Price,
		Images:      images,
		Owner:       actor.Username,
		Province:    sub.Province,
		City:        sub.City,
		Contact:     sub.Contact,
		CreatedAt:   createdAt,
		ExpiryDate:  expiry,
	}

	id, err := p.repo.Create(ctx, payload)
	if err != nil {
		return nil, err
	}
	return p.repo.Read(ctx, id)
}

func (p *Pipeline) edit(ctx context.Context, actor *domain.Actor, sub Submission) (*domain.Listing, error) {
	existing, err := p.repo.Read(ctx, sub.EditingID)
	if err != nil {
		return nil, err
	}

	// The expiry window is anchored to the original creation time;
	// editing does not extend a listing's lifetime.
	expiry, err := normalizeExpiry(sub.ExpiryDate, existing.CreatedAt)
	if err != nil {
		return nil, err
	}

	images := sub.Images
	if images == nil {
		images = []string{}
	}
	patch := catalog.Patch{
		Title:       &sub.Title,
		Description: &sub.Description,
		Category:    &sub.Category,
		Price:       &sub.Price,
		Images:      &images, // staged set replaces the old one wholesale
		Province:    &sub.Province,
		City:        &sub.City,
		Contact:     &sub.Contact,
		ExpiryDate:  &expiry,
	}
	return p.repo.Update(ctx, sub.EditingID, patch, actor)
}

// clearDraft is best-effort: a stuck draft is an annoyance, not a
// reason to fail a submission that already persisted.
func (p *Pipeline) clearDraft(ctx context.Context, actor *domain.Actor) {
	p.mu.Lock()
	delete(p.drafts, actor.Username)
	p.mu.Unlock()

	key := store.DraftKey(actor.Username)
	if err := p.kv.Del(ctx, key); err != nil {
		p.log.Warn("failed to clear draft", logger.String("actor", actor.Username), logger.Error(err))
	}
}

func (s *Submission) trim() {
	s.Title = strings.TrimSpace(s.Title)
	s.Description = strings.TrimSpace(s.Description)
	s.Category = strings.TrimSpace(s.Category)
	s.Province = strings.TrimSpace(s.Province)
	s.City = strings.TrimSpace(s.City)
	s.Contact = strings.TrimSpace(s.Contact)
	s.ExpiryDate = strings.TrimSpace(s.ExpiryDate)
}

// validateSubmission checks required fields in a fixed order so the
// reported field is deterministic: title, description, category,
// province, city, price.
func validateSubmission(s *Submission) error {
	checks := []struct {
		field string
		ok    bool
	}{
		{"title", s.Title != ""},
		{"description", s.Description != ""},
		{"category", s.Category != ""},
		{"province", s.Province != ""},
		{"city", s.City != ""},
		{"price", s.Price > 0},
	}
	for _, c := range checks {
		if !c.ok {
			return &domain.ValidationError{Field: c.field}
		}
	}
	return nil
}

// normalizeExpiry resolves the expiry date for a submission created at
// createdAt. Absent dates default to the full window; explicit dates
// must parse and fall within [createdAt's date, createdAt+7d].
func normalizeExpiry(explicit string, createdAt time.Time) (string, error) {
	floor := time.Date(createdAt.Year(), createdAt.Month(), createdAt.Day(), 0, 0, 0, 0, createdAt.Location())
	ceil := floor.AddDate(0, 0, ExpiryWindowDays)

	if explicit == "" {
		return ceil.Format(dateLayout), nil
	}

	day, err := time.ParseInLocation(dateLayout, explicit, createdAt.Location())
	if err != nil {
		return "", &domain.ValidationError{Field: "expiryDate"}
	}
	if day.Before(floor) || day.After(ceil) {
		return "", &domain.ValidationError{Field: "expiryDate"}
	}
	return day.Format(dateLayout), nil
}
