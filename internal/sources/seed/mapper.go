package seed

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/sohaum/bazar/internal/domain"
	"github.com/sohaum/bazar/internal/ingest"
)

// Mapper converts the seed config to domain users and listings.
type Mapper struct{}

// NewMapper creates a new seed mapper.
func NewMapper() *Mapper {
	return &Mapper{}
}

// MapUsers converts the configured accounts to domain users.
func (m *Mapper) MapUsers(cfg *Config) ([]domain.User, error) {
	users := make([]domain.User, 0, len(cfg.Users))
	for _, entry := range cfg.Users {
		if entry.Username == "" || entry.Password == "" {
			continue
		}
		role := domain.RoleUser
		if entry.Role == string(domain.RoleAdmin) {
			role = domain.RoleAdmin
		}
		users = append(users, domain.User{
			Username: entry.Username,
			Password: entry.Password,
			Role:     role,
		})
	}

	if len(users) == 0 {
		return nil, fmt.Errorf("no valid users found in seed config")
	}
	return users, nil
}

// MapListings converts the configured listings to domain listings.
// Entries without a title or owner are skipped. Timestamps anchor at
// now; expiry defaults to the full window when ExpiryDays is zero.
func (m *Mapper) MapListings(cfg *Config, now time.Time) []domain.Listing {
	listings := make([]domain.Listing, 0, len(cfg.Listings))
	for _, entry := range cfg.Listings {
		if entry.Title == "" || entry.Owner == "" {
			continue
		}

		days := entry.ExpiryDays
		if days <= 0 {
			days = ingest.ExpiryWindowDays
		}

		listings = append(listings, domain.Listing{
			ID:          generateListingID(entry.Owner, entry.Title),
			Title:       entry.Title,
			Description: entry.Description,
			Category:    entry.Category,
			Price:       entry.Price,
			Images:      []string{},
			Owner:       entry.Owner,
			Province:    entry.Province,
			City:        entry.City,
			Contact:     entry.Contact,
			CreatedAt:   now,
			ExpiryDate:  now.AddDate(0, 0, days).Format("2006-01-02"),
		})
	}
	return listings
}

// generateListingID creates a stable ID from the owner and title so
// reseeding the same catalog never duplicates records.
func generateListingID(owner, title string) string {
	hash := sha256.Sum256([]byte(owner + "/" + title))
	return "p-" + hex.EncodeToString(hash[:])[:16]
}
