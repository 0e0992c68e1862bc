package domain

import "time"

// expiryLayout is the calendar-date format used for ExpiryDate.
const expiryLayout = "2006-01-02"

// ActiveAt reports whether the listing is visible at the given instant.
// A listing with no expiry date never expires. The expiry date denotes
// end of day: a listing expiring "2025-07-08" is still active at any
// time on the 8th. An expiry date that fails to parse counts as active
// (fail-open) so malformed-but-intentional data is never silently hidden.
func (l *Listing) ActiveAt(now time.Time) bool {
	if l.ExpiryDate == "" {
		return true
	}
	day, err := time.ParseInLocation(expiryLayout, l.ExpiryDate, now.Location())
	if err != nil {
		return true
	}
	endOfDay := day.Add(24*time.Hour - time.Nanosecond)
	return !endOfDay.Before(now)
}

// ActiveListings returns the subset of listings visible at the given
// instant. It never mutates the input: expired listings stay in the
// store, remain readable by id and remain subject to explicit delete.
func ActiveListings(all []Listing, now time.Time) []Listing {
	active := make([]Listing, 0, len(all))
	for _, l := range all {
		if l.ActiveAt(now) {
			active = append(active, l)
		}
	}
	return active
}
