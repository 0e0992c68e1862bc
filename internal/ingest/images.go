package ingest

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/sohaum/bazar/internal/domain"
)

// SoftImageBytes is the size above which an image triggers a non-fatal
// advisory. The backing store has a hard but unspecified capacity
// limit, so this is a warning threshold, not a rejection threshold.
const SoftImageBytes = 600 * 1024

// Advisory is a non-fatal warning raised while staging an image.
type Advisory struct {
	Index int
	Name  string
	Size  int
}

func (a Advisory) String() string {
	return fmt.Sprintf("image %q is %dKB, may hit the storage quota", a.Name, a.Size/1024)
}

type slot struct {
	name    string
	removed bool

	done    chan struct{}
	dataURL string
	size    int
	err     error
}

// Stager collects up to domain.MaxImages image inputs and encodes each
// into a self-contained data URL. Encoding runs concurrently (reading
// file content is the one genuinely asynchronous step of a submission),
// but Wait reassembles results by original index, so the final sequence
// always matches submission order no matter which encode finishes first.
type Stager struct {
	mu    sync.Mutex
	slots []*slot
}

// NewStager creates an empty stager.
func NewStager() *Stager {
	return &Stager{}
}

// Add stages one image input and starts encoding it in the background.
// Inputs beyond the limit are rejected with LimitExceeded rather than
// silently dropped.
func (s *Stager) Add(name string, r io.Reader) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.active()) >= domain.MaxImages {
		return &domain.LimitExceeded{Resource: "images", Limit: domain.MaxImages}
	}

	sl := &slot{name: name, done: make(chan struct{})}
	s.slots = append(s.slots, sl)

	go func() {
		defer close(sl.done)
		data, err := io.ReadAll(r)
		if err != nil {
			sl.err = fmt.Errorf("failed to read image %q: %w", name, err)
			return
		}
		sl.size = len(data)
		sl.dataURL = encodeDataURL(data)
	}()

	return nil
}

// Remove discards the staged image at the given position (by current
// staging order). Removing an index that no longer exists is a no-op,
// not an error: the caller may race its own removals.
func (s *Stager) Remove(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := s.active()
	if index < 0 || index >= len(active) {
		return
	}
	active[index].removed = true
}

// Count returns the number of currently staged images.
func (s *Stager) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active())
}

// Wait blocks until every staged encode has finished and returns the
// data URLs in submission order, together with any size advisories.
// Advisories are informational; only read failures are errors.
func (s *Stager) Wait(ctx context.Context) ([]string, []Advisory, error) {
	s.mu.Lock()
	active := s.active()
	s.mu.Unlock()

	urls := make([]string, 0, len(active))
	var advisories []Advisory
	for i, sl := range active {
		select {
		case <-sl.done:
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		}
		if sl.err != nil {
			return nil, nil, sl.err
		}
		urls = append(urls, sl.dataURL)
		if sl.size > SoftImageBytes {
			advisories = append(advisories, Advisory{Index: i, Name: sl.name, Size: sl.size})
		}
	}
	return urls, advisories, nil
}

// active returns the non-removed slots in staging order. Caller holds mu.
func (s *Stager) active() []*slot {
	out := make([]*slot, 0, len(s.slots))
	for _, sl := range s.slots {
		if !sl.removed {
			out = append(out, sl)
		}
	}
	return out
}

func encodeDataURL(data []byte) string {
	mime := http.DetectContentType(data)
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
