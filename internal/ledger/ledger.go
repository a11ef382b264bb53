// Package ledger provides the keyed state store underlying the contract core.
//
// The store is deliberately primitive: opaque byte records addressed by string
// keys, with a single atomic Apply for write sets. There are no relational
// queries and no scans — every higher-level access pattern (uniqueness checks,
// parent/child lookups) is built from derived keys maintained by the contract
// layer at write time.
//
// Two implementations of the Store interface are provided:
//   - MemoryStore: in-process, for testing and development.
//   - PostgresStore: durable, for production use.
package ledger

import "context"

// Write is a single key/value mutation within an atomic write set.
type Write struct {
	Key   string
	Value []byte
}

// Store is the persistence capability handed to the contract engine.
// Implementations must apply a write set atomically: either every write in the
// slice becomes visible or none of them do.
type Store interface {
	// Get returns the value stored under key, or (nil, nil) when the key
	// is absent. A nil value is never a valid stored record.
	Get(ctx context.Context, key string) ([]byte, error)

	// Apply commits the write set atomically, in order. Later writes to the
	// same key within one set win.
	Apply(ctx context.Context, writes []Write) error
}
