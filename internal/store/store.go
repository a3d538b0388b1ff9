package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Tree is the keyed hierarchical store the signaling core runs against.
// Paths are slash-joined segments rooted at a top-level collection, e.g.
// "rooms/R1/notifications/p2". Each call is individually consistent, but a
// read followed by a write is not atomic: concurrent requests touching the
// same subtree race, last write wins on overlapping keys.
type Tree interface {
	// Get reads the whole subtree at path. Absent paths yield (nil, nil).
	Get(ctx context.Context, path string) (any, error)
	// Set overwrites the whole subtree at path.
	Set(ctx context.Context, path string, value any) error
	// Update merges fields into the map at path, creating it if absent.
	// Only the named keys are touched; siblings are preserved.
	Update(ctx context.Context, path string, fields map[string]any) error
	// Delete removes the subtree at path. Deleting an absent path is a no-op.
	Delete(ctx context.Context, path string) error
	// Push appends value under a generated key at path and returns the key.
	// Generated keys sort lexicographically in generation order.
	Push(ctx context.Context, path string, value any) (string, error)
}

// Join builds a slash path from segments.
func Join(segments ...string) string {
	return strings.Join(segments, "/")
}

func splitPath(path string) []string {
	var segs []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

var (
	pushMu  sync.Mutex
	pushMS  int64
	pushSeq uint32
	pushNow = time.Now
)

// pushKey generates a chronologically ordered key: hex millis plus a
// sequence that disambiguates keys minted within the same millisecond.
func pushKey() string {
	pushMu.Lock()
	defer pushMu.Unlock()

	ms := pushNow().UnixMilli()
	if ms <= pushMS {
		pushSeq++
	} else {
		pushMS = ms
		pushSeq = 0
	}
	return fmt.Sprintf("%013x-%06x", pushMS, pushSeq)
}
