// Package store defines the persistent key→document contract the catalog
// runs on. Each key holds one self-contained JSON document (the whole
// listings collection, the pin set, ...), mirroring the flat key/value
// layout of the browser storage this engine replaces.
package store

import "context"

// KV is the persistent store consumed by the repository, the pin
// governor and the ingestion draft slot.
//
// Get reports absence through the second return value, not an error.
// Set failures are real errors (quota, connectivity); callers decide
// whether to degrade gracefully or fail.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) error
}
