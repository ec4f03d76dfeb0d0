// CLAUDE:SUMMARY Pluggable string id generation (prefixed UUIDv7) for cache entries and HTTP requests.
// Package idgen generates identifiers for cache entries and HTTP requests.
// The strategy is a Generator value so callers and tests can swap it.
package idgen

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator produces unique string identifiers.
type Generator func() string

// UUIDv7 returns a Generator of RFC 9562 version 7 UUIDs (time-sortable).
func UUIDv7() Generator {
	return func() string {
		return uuid.Must(uuid.NewV7()).String()
	}
}

// Prefixed prepends prefix to every id of gen.
func Prefixed(prefix string, gen Generator) Generator {
	return func() string {
		return prefix + gen()
	}
}

// Sequence returns a deterministic Generator: prefix followed by 1, 2, 3...
// Not safe for concurrent use; meant for tests.
func Sequence(prefix string) Generator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}

var (
	// Entry identifies a cached snapshot.
	Entry = Prefixed("snap_", UUIDv7())
	// Request identifies an HTTP request.
	Request = Prefixed("req_", UUIDv7())
)
