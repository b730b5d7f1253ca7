package dedup

import "context"

// Store loads and persists the dedup record.
//
// Load must treat a missing or undecodable state as an empty record.
// Persist must publish the full record atomically: a concurrent or later
// Load sees either the previous state or the new one, never a partial write.
type Store interface {
	Load(ctx context.Context) (*Record, error)
	Persist(ctx context.Context, record *Record) error
}
