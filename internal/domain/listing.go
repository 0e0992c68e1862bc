package domain

import "time"

// MaxImages is the maximum number of encoded images a listing may carry.
const MaxImages = 3

// Listing represents a single for-sale item in the catalog.
//
// It is the canonical record shape persisted to the store; images are
// self-contained data URLs, never references to external files.
type Listing struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is the canonical unique identifier, assigned at creation.
	// Example: p-9f1c2e4d-...
	ID string `json:"id"`

	// Owner is the username of the actor who created the listing.
	// Set once at creation, never changed by update.
	Owner string `json:"owner"`

	// CreatedAt is set at creation and never changes.
	CreatedAt time.Time `json:"createdAt"`

	// ─────────────────────────────
	// Content
	// ─────────────────────────────

	// Title is the display title. Non-empty after trimming.
	Title string `json:"title"`

	// Description is free text. May be empty on stored records.
	Description string `json:"description"`

	// Category is the filtering category. Non-empty after trimming.
	Category string `json:"category"`

	// Price in rupees. 0 means "free". Never negative.
	Price int `json:"price"`

	// Images holds at most MaxImages encoded data URLs,
	// in submission order. Order survives edits.
	Images []string `json:"images"`

	// ─────────────────────────────
	// Location & contact
	// ─────────────────────────────

	// Province and City are both required at creation.
	Province string `json:"province"`
	City     string `json:"city"`

	// Contact is optional free text (phone, email, ...).
	Contact string `json:"contact,omitempty"`

	// ─────────────────────────────
	// Lifetime
	// ─────────────────────────────

	// ExpiryDate is a calendar date ("2006-01-02") with end-of-day
	// semantics, or empty for a listing that never expires by date.
	ExpiryDate string `json:"expiryDate,omitempty"`
}

// Role is the access level of a user.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User is an account record. The catalog core never mutates users;
// they are seeded once and read by the identity provider.
type User struct {
	Username string `json:"username"` // unique
	Password string `json:"password"` // illustrative only, stored in clear
	Role     Role   `json:"role"`
}

// Actor is the identity performing an operation. A nil *Actor means
// an unauthenticated caller.
type Actor struct {
	Username string
	Role     Role
}

// IsAdmin reports whether the actor holds the admin role.
func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}

// Owns reports whether the actor is the owner of the listing.
func (a *Actor) Owns(l *Listing) bool {
	return a != nil && l != nil && a.Username == l.Owner
}
