package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sohaum/bazar/internal/catalog"
	"github.com/sohaum/bazar/internal/domain"
	"github.com/sohaum/bazar/internal/logger"
	"github.com/sohaum/bazar/internal/store"
)

var (
	sneha = &domain.Actor{Username: "sneha", Role: domain.RoleUser}
	rajan = &domain.Actor{Username: "rajan", Role: domain.RoleUser}
)

// fixedNow keeps expiry math deterministic across the tests.
var fixedNow = time.Date(2026, time.March, 10, 15, 4, 5, 0, time.UTC)

func newTestPipeline(t *testing.T) (*Pipeline, *catalog.Repository, store.KV) {
	t.Helper()
	kv := store.NewMemory()
	log := logger.Nop()
	clock := func() time.Time { return fixedNow }
	repo := catalog.NewRepository(kv, log).WithClock(clock)
	p := NewPipeline(repo, kv, log).WithClock(clock)
	return p, repo, kv
}

func bikeSubmission() Submission {
	return Submission{
		Title:       "Bike",
		Description: "Well maintained city bike",
		Category:    "Sports",
		Province:    "Bagmati",
		City:        "Kathmandu",
		Price:       9500,
	}
}

func TestSubmitCreate(t *testing.T) {
	p, repo, _ := newTestPipeline(t)
	ctx := context.Background()

	listing, err := p.Submit(ctx, sneha, bikeSubmission())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if listing.Owner != "sneha" {
		t.Errorf("Owner = %q, want sneha", listing.Owner)
	}
	if !listing.CreatedAt.Equal(fixedNow) {
		t.Errorf("CreatedAt = %v, want %v", listing.CreatedAt, fixedNow)
	}
	if listing.Images == nil || len(listing.Images) != 0 {
		t.Errorf("Images = %#v, want empty non-nil slice", listing.Images)
	}
	if want := "2026-03-17"; listing.ExpiryDate != want {
		t.Errorf("ExpiryDate = %q, want default window %q", listing.ExpiryDate, want)
	}

	stored, err := repo.Read(ctx, listing.ID)
	if err != nil {
		t.Fatalf("Read() after submit error = %v", err)
	}
	if stored.Title != "Bike" || stored.Price != 9500 {
		t.Errorf("stored listing = %+v, want submitted fields", stored)
	}
}

func TestSubmitTrimsFields(t *testing.T) {
	p, _, _ := newTestPipeline(t)

	sub := bikeSubmission()
	sub.Title = "  Bike  "
	sub.City = "\tKathmandu\n"

	listing, err := p.Submit(context.Background(), sneha, sub)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if listing.Title != "Bike" || listing.City != "Kathmandu" {
		t.Errorf("Title=%q City=%q, want trimmed values", listing.Title, listing.City)
	}
}

func TestSubmitValidationOrder(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Submission)
		wantField string
	}{
		{"everything missing", func(s *Submission) { *s = Submission{} }, "title"},
		{"title only", func(s *Submission) { *s = Submission{Title: "Bike"} }, "description"},
		{"whitespace title", func(s *Submission) { s.Title = "   " }, "title"},
		{"missing description", func(s *Submission) { s.Description = "" }, "description"},
		{"missing category", func(s *Submission) { s.Category = "" }, "category"},
		{"missing province", func(s *Submission) { s.Province = "" }, "province"},
		{"missing city", func(s *Submission) { s.City = "" }, "city"},
		{"zero price", func(s *Submission) { s.Price = 0 }, "price"},
		{"negative price", func(s *Submission) { s.Price = -50 }, "price"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, repo, _ := newTestPipeline(t)
			sub := bikeSubmission()
			tt.mutate(&sub)

			_, err := p.Submit(context.Background(), sneha, sub)
			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Submit() error = %v, want ValidationError", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("ValidationError.Field = %q, want %q", verr.Field, tt.wantField)
			}
			if got := repo.List(context.Background()); len(got) != 0 {
				t.Errorf("rejected submission stored %d listings, want 0", len(got))
			}
		})
	}
}

func TestSubmitExpiryDate(t *testing.T) {
	tests := []struct {
		name    string
		expiry  string
		want    string
		wantErr bool
	}{
		{"empty defaults to window end", "", "2026-03-17", false},
		{"same day allowed", "2026-03-10", "2026-03-10", false},
		{"window end allowed", "2026-03-17", "2026-03-17", false},
		{"mid window", "2026-03-13", "2026-03-13", false},
		{"beyond window", "2026-03-18", "", true},
		{"in the past", "2026-03-09", "", true},
		{"malformed", "17/03/2026", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _, _ := newTestPipeline(t)
			sub := bikeSubmission()
			sub.ExpiryDate = tt.expiry

			listing, err := p.Submit(context.Background(), sneha, sub)
			if tt.wantErr {
				var verr *domain.ValidationError
				if !errors.As(err, &verr) || verr.Field != "expiryDate" {
					t.Fatalf("Submit() error = %v, want ValidationError on expiryDate", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Submit() error = %v", err)
			}
			if listing.ExpiryDate != tt.want {
				t.Errorf("ExpiryDate = %q, want %q", listing.ExpiryDate, tt.want)
			}
		})
	}
}

func TestSubmitImageLimit(t *testing.T) {
	p, _, _ := newTestPipeline(t)
	sub := bikeSubmission()
	sub.Images = []string{"data:a", "data:b", "data:c", "data:d"}

	_, err := p.Submit(context.Background(), sneha, sub)
	var lerr *domain.LimitExceeded
	if !errors.As(err, &lerr) {
		t.Fatalf("Submit() error = %v, want LimitExceeded", err)
	}
	if lerr.Resource != "images" || lerr.Limit != domain.MaxImages {
		t.Errorf("LimitExceeded = %+v, want images limit %d", lerr, domain.MaxImages)
	}
}

func TestSubmitRequiresActor(t *testing.T) {
	p, _, _ := newTestPipeline(t)

	_, err := p.Submit(context.Background(), nil, bikeSubmission())
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("Submit(nil actor) error = %v, want ErrUnauthenticated", err)
	}
}

func TestSubmitEdit(t *testing.T) {
	p, repo, _ := newTestPipeline(t)
	ctx := context.Background()

	sub := bikeSubmission()
	sub.Images = []string{"data:one", "data:two"}
	created, err := p.Submit(ctx, sneha, sub)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	edit := bikeSubmission()
	edit.EditingID = created.ID
	edit.Title = "Bike (price drop)"
	edit.Price = 8000
	edit.Images = []string{"data:three"}

	updated, err := p.Submit(ctx, sneha, edit)
	if err != nil {
		t.Fatalf("Submit(edit) error = %v", err)
	}

	if updated.ID != created.ID {
		t.Errorf("ID = %q, want original %q", updated.ID, created.ID)
	}
	if updated.Owner != "sneha" || !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("edit changed identity fields: owner=%q createdAt=%v", updated.Owner, updated.CreatedAt)
	}
	if updated.Title != "Bike (price drop)" || updated.Price != 8000 {
		t.Errorf("edit not applied: %+v", updated)
	}
	if len(updated.Images) != 1 || updated.Images[0] != "data:three" {
		t.Errorf("Images = %v, want wholesale replacement [data:three]", updated.Images)
	}

	if got := repo.List(ctx); len(got) != 1 {
		t.Errorf("List() after edit = %d listings, want 1", len(got))
	}
}

func TestSubmitEditExpiryAnchoredToCreation(t *testing.T) {
	p, _, _ := newTestPipeline(t)
	ctx := context.Background()

	created, err := p.Submit(ctx, sneha, bikeSubmission())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	// Three days pass. The window still ends at creation+7d.
	p.WithClock(func() time.Time { return fixedNow.AddDate(0, 0, 3) })

	edit := bikeSubmission()
	edit.EditingID = created.ID
	edit.ExpiryDate = "2026-03-19" // now+9d from creation, within now+7d of the edit

	_, err = p.Submit(ctx, sneha, edit)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Field != "expiryDate" {
		t.Fatalf("Submit(edit) error = %v, want expiry window anchored to creation", err)
	}
}

func TestSubmitEditByNonOwner(t *testing.T) {
	p, _, _ := newTestPipeline(t)
	ctx := context.Background()

	created, err := p.Submit(ctx, sneha, bikeSubmission())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	edit := bikeSubmission()
	edit.EditingID = created.ID

	_, err = p.Submit(ctx, rajan, edit)
	var perr *domain.PermissionDenied
	if !errors.As(err, &perr) {
		t.Fatalf("Submit(edit by non-owner) error = %v, want PermissionDenied", err)
	}
}

func TestSubmitEditUnknownID(t *testing.T) {
	p, _, _ := newTestPipeline(t)

	edit := bikeSubmission()
	edit.EditingID = "p-missing"

	_, err := p.Submit(context.Background(), sneha, edit)
	var nerr *domain.NotFound
	if !errors.As(err, &nerr) {
		t.Fatalf("Submit(edit unknown id) error = %v, want NotFound", err)
	}
}

func TestDraftRoundTrip(t *testing.T) {
	p, _, _ := newTestPipeline(t)
	ctx := context.Background()

	d := Draft{Title: "Half-written ad", Category: "Books", Price: 500}
	if err := p.SaveDraft(ctx, sneha, d); err != nil {
		t.Fatalf("SaveDraft() error = %v", err)
	}

	got, ok, err := p.LoadDraft(ctx, sneha)
	if err != nil || !ok {
		t.Fatalf("LoadDraft() = %v, %v, %v, want draft", got, ok, err)
	}
	if got.Title != d.Title || got.Price != d.Price {
		t.Errorf("LoadDraft() = %+v, want saved fields %+v", got, d)
	}
	if !got.SavedAt.Equal(fixedNow) {
		t.Errorf("SavedAt = %v, want %v", got.SavedAt, fixedNow)
	}

	// A second save replaces the slot rather than stacking.
	if err := p.SaveDraft(ctx, sneha, Draft{Title: "Rewritten"}); err != nil {
		t.Fatalf("SaveDraft() second error = %v", err)
	}
	got, _, _ = p.LoadDraft(ctx, sneha)
	if got.Title != "Rewritten" {
		t.Errorf("second SaveDraft kept %q, want Rewritten", got.Title)
	}
}

func TestDraftIsPerActor(t *testing.T) {
	p, _, _ := newTestPipeline(t)
	ctx := context.Background()

	if err := p.SaveDraft(ctx, sneha, Draft{Title: "sneha's"}); err != nil {
		t.Fatalf("SaveDraft() error = %v", err)
	}

	if _, ok, err := p.LoadDraft(ctx, rajan); err != nil || ok {
		t.Errorf("LoadDraft(rajan) = ok=%v err=%v, want no draft", ok, err)
	}
}

func TestDraftClearedOnSubmit(t *testing.T) {
	p, _, _ := newTestPipeline(t)
	ctx := context.Background()

	if err := p.SaveDraft(ctx, sneha, Draft{Title: "Bike"}); err != nil {
		t.Fatalf("SaveDraft() error = %v", err)
	}
	if _, err := p.Submit(ctx, sneha, bikeSubmission()); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if _, ok, err := p.LoadDraft(ctx, sneha); err != nil || ok {
		t.Errorf("LoadDraft() after submit = ok=%v err=%v, want cleared", ok, err)
	}
}

// flakyKV delegates to a real store but can fail writes and reads.
type flakyKV struct {
	store.KV
	failSet bool
	failGet bool
}

func (f *flakyKV) Set(ctx context.Context, key string, value []byte) error {
	if f.failSet {
		return errors.New("quota exceeded")
	}
	return f.KV.Set(ctx, key, value)
}

func (f *flakyKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if f.failGet {
		return nil, false, errors.New("connection refused")
	}
	return f.KV.Get(ctx, key)
}

func TestDraftSurvivesStoreFailure(t *testing.T) {
	ctx := context.Background()
	kv := &flakyKV{KV: store.NewMemory(), failSet: true}
	log := logger.Nop()
	clock := func() time.Time { return fixedNow }
	repo := catalog.NewRepository(store.NewMemory(), log).WithClock(clock)
	p := NewPipeline(repo, kv, log).WithClock(clock)

	d := Draft{Title: "Half-written ad", Price: 500}
	if err := p.SaveDraft(ctx, sneha, d); err != nil {
		t.Fatalf("SaveDraft() with failing store error = %v, want advisory-only", err)
	}

	// The write never reached the store, the mirror serves it back.
	got, ok, err := p.LoadDraft(ctx, sneha)
	if err != nil || !ok {
		t.Fatalf("LoadDraft() = %v, %v, %v, want mirrored draft", got, ok, err)
	}
	if got.Title != d.Title || got.Price != d.Price {
		t.Errorf("LoadDraft() = %+v, want saved fields %+v", got, d)
	}

	// Failing reads degrade the same way.
	kv.failGet = true
	got, ok, err = p.LoadDraft(ctx, sneha)
	if err != nil || !ok || got.Title != d.Title {
		t.Errorf("LoadDraft() with failing reads = %v, %v, %v, want mirrored draft", got, ok, err)
	}

	// The mirror is per actor.
	if _, ok, err := p.LoadDraft(ctx, rajan); err != nil || ok {
		t.Errorf("LoadDraft(rajan) = ok=%v err=%v, want no draft", ok, err)
	}
}

func TestDraftCorruptDocument(t *testing.T) {
	p, _, kv := newTestPipeline(t)
	ctx := context.Background()

	if err := kv.Set(ctx, store.DraftKey(sneha.Username), []byte("{not json")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	d, ok, err := p.LoadDraft(ctx, sneha)
	if err != nil || ok || d != nil {
		t.Errorf("LoadDraft(corrupt) = %v, %v, %v, want discarded without error", d, ok, err)
	}
}

func TestDraftRequiresActor(t *testing.T) {
	p, _, _ := newTestPipeline(t)
	ctx := context.Background()

	if err := p.SaveDraft(ctx, nil, Draft{}); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Errorf("SaveDraft(nil actor) error = %v, want ErrUnauthenticated", err)
	}
	if _, _, err := p.LoadDraft(ctx, nil); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Errorf("LoadDraft(nil actor) error = %v, want ErrUnauthenticated", err)
	}
}
