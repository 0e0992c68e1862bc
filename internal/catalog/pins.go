package catalog

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/sohaum/bazar/internal/domain"
	"github.com/sohaum/bazar/internal/logger"
	"github.com/sohaum/bazar/internal/store"
)

// PinLimit is the maximum number of pinned listings.
const PinLimit = 5

// Pins maintains the bounded, ordered set of promoted listing ids.
// Membership is independent of listing existence: deleting a listing
// leaves its pin behind, and readers reconcile by intersection
// (domain.PromotedListings). Same store discipline as the repository:
// read-modify-write per mutation, mirror fallback, best-effort writes.
type Pins struct {
	kv  store.KV
	log logger.Logger

	mu     sync.Mutex
	mirror []string
}

// NewPins creates the pin governor over the given store.
func NewPins(kv store.KV, log logger.Logger) *Pins {
	return &Pins{kv: kv, log: log}
}

// PinnedIDs returns the pinned listing ids in insertion order.
func (p *Pins) PinnedIDs(ctx context.Context) []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	ids := p.load(ctx)
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

// IsPinned reports whether the id is currently pinned.
func (p *Pins) IsPinned(ctx context.Context, id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, pinned := range p.load(ctx) {
		if pinned == id {
			return true
		}
	}
	return false
}

// TogglePin flips pin membership for the id and reports the resulting
// state. Requires a logged-in actor. Unpinning always succeeds;
// pinning a 6th distinct id fails with LimitExceeded and leaves the
// set untouched.
func (p *Pins) TogglePin(ctx context.Context, id string, actor *domain.Actor) (bool, error) {
	if actor == nil {
		return false, domain.ErrUnauthenticated
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ids := p.load(ctx)
	for i, pinned := range ids {
		if pinned == id {
			ids = append(ids[:i], ids[i+1:]...)
			p.save(ctx, ids)
			p.log.Info("listing unpinned",
				logger.String("id", id),
				logger.String("actor", actor.Username))
			return false, nil
		}
	}

	if len(ids) >= PinLimit {
		return false, &domain.LimitExceeded{Resource: "pins", Limit: PinLimit}
	}

	ids = append(ids, id)
	p.save(ctx, ids)
	p.log.Info("listing pinned",
		logger.String("id", id),
		logger.String("actor", actor.Username))
	return true, nil
}

func (p *Pins) load(ctx context.Context) []string {
	data, ok, err := p.kv.Get(ctx, store.KeyPins)
	if err != nil {
		p.log.Warn("pins read failed, serving in-memory mirror", logger.Error(err))
		return p.mirror
	}
	if !ok {
		p.mirror = nil
		return nil
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		p.log.Warn("pins document corrupt, serving in-memory mirror", logger.Error(err))
		return p.mirror
	}
	p.mirror = ids
	return ids
}

func (p *Pins) save(ctx context.Context, ids []string) {
	p.mirror = ids

	data, err := json.Marshal(ids)
	if err != nil {
		p.log.Error("failed to marshal pins", logger.Error(err))
		return
	}
	if err := p.kv.Set(ctx, store.KeyPins, data); err != nil {
		failure := &domain.StorageFailure{Key: store.KeyPins, Err: err}
		p.log.Warn("pins write failed, result kept in memory only", logger.Error(failure))
	}
}
