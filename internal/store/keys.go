package store

// Document keys. The v1 suffix allows a clean break if the record shape
// ever changes incompatibly.
const (
	// KeyListings holds the JSON array of all listing records.
	KeyListings = "bazar:listings:v1"
	// KeyPins holds the JSON array of pinned listing ids.
	KeyPins = "bazar:pins:v1"
	// KeyUsers holds the JSON array of user accounts.
	KeyUsers = "bazar:users:v1"
	// KeySession holds the username of the logged-in actor.
	KeySession = "bazar:session:v1"
	// keyPrefixDraft prefixes the per-actor draft slot.
	keyPrefixDraft = "bazar:draft:v1:"
)

// DraftKey returns the draft-slot key for an actor.
func DraftKey(username string) string {
	return keyPrefixDraft + username
}
