package domain

import (
	"sort"
	"strings"
	"time"
)

// PageSize is the fixed number of listings per result page.
const PageSize = 12

// Sort selects the ordering of query results.
type Sort string

const (
	SortNewest    Sort = "newest"
	SortOldest    Sort = "oldest"
	SortPriceAsc  Sort = "price-asc"
	SortPriceDesc Sort = "price-desc"
)

// Filters narrows a catalog query. Zero values mean "no constraint":
// empty text/category skip their filters, MaxPrice 0 means unbounded.
type Filters struct {
	Text     string // case-insensitive substring match on title only
	Category string // case-insensitive exact match
	MinPrice int
	MaxPrice int
	Sort     Sort
}

// Page is one page of query results.
type Page struct {
	Items      []Listing
	TotalCount int // listings matching the filters, across all pages
	PageCount  int // always >= 1
	Page       int // the page actually returned, after clamping
}

// Search runs the full query pipeline over a catalog snapshot:
// visibility, text filter, category filter, price range, sort,
// pagination. It is pure: no I/O, no mutation of the input slice.
//
// The requested page is clamped into [1, PageCount]. Sort ties are
// broken by id ascending so repeated calls return identical pages.
func Search(all []Listing, f Filters, page int, now time.Time) Page {
	matched := ActiveListings(all, now)

	if text := strings.ToLower(strings.TrimSpace(f.Text)); text != "" {
		matched = keep(matched, func(l *Listing) bool {
			return strings.Contains(strings.ToLower(l.Title), text)
		})
	}
	if category := strings.TrimSpace(f.Category); category != "" {
		matched = keep(matched, func(l *Listing) bool {
			return strings.EqualFold(l.Category, category)
		})
	}
	matched = keep(matched, func(l *Listing) bool {
		if l.Price < f.MinPrice {
			return false
		}
		return f.MaxPrice <= 0 || l.Price <= f.MaxPrice
	})

	sortListings(matched, f.Sort)

	total := len(matched)
	pageCount := (total + PageSize - 1) / PageSize
	if pageCount < 1 {
		pageCount = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pageCount {
		page = pageCount
	}
	start := (page - 1) * PageSize
	end := start + PageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Page{
		Items:      matched[start:end],
		TotalCount: total,
		PageCount:  pageCount,
		Page:       page,
	}
}

// PromotedListings reconciles a pinned id set with the catalog at read
// time: only pins that still point at an existing, currently active
// listing are returned, in pin order, capped at limit. Orphan pins
// (deleted listings) are skipped, not removed from the set.
func PromotedListings(all []Listing, pinnedIDs []string, limit int, now time.Time) []Listing {
	byID := make(map[string]*Listing, len(all))
	for i := range all {
		byID[all[i].ID] = &all[i]
	}

	promoted := make([]Listing, 0, limit)
	for _, id := range pinnedIDs {
		if len(promoted) >= limit {
			break
		}
		l, ok := byID[id]
		if !ok || !l.ActiveAt(now) {
			continue
		}
		promoted = append(promoted, *l)
	}
	return promoted
}

func keep(listings []Listing, pred func(*Listing) bool) []Listing {
	out := listings[:0]
	for i := range listings {
		if pred(&listings[i]) {
			out = append(out, listings[i])
		}
	}
	return out
}

func sortListings(listings []Listing, order Sort) {
	less := func(a, b *Listing) bool { return b.CreatedAt.Before(a.CreatedAt) } // newest default
	switch order {
	case SortOldest:
		less = func(a, b *Listing) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case SortPriceAsc:
		less = func(a, b *Listing) bool { return a.Price < b.Price }
	case SortPriceDesc:
		less = func(a, b *Listing) bool { return a.Price > b.Price }
	}

	sort.Slice(listings, func(i, j int) bool {
		a, b := &listings[i], &listings[j]
		if less(a, b) {
			return true
		}
		if less(b, a) {
			return false
		}
		return a.ID < b.ID // deterministic tiebreak
	})
}
