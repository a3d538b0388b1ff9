package domain

import (
	"sort"
	"time"
)

// MaxPlayers caps room membership, one host plus up to seven clients.
const MaxPlayers = 8

// Room represents a signaling session grouping one host and its clients.
// The room id is caller-supplied and opaque; negotiation payloads live in
// the store alongside the room and are not part of this snapshot.
type Room struct {
	ID        string
	Host      string
	Players   map[string]bool
	CreatedAt time.Time
}

// NewRoom constructs a room whose creator is its initial host.
func NewRoom(id, hostID string, now time.Time) *Room {
	return &Room{
		ID:        id,
		Host:      hostID,
		Players:   map[string]bool{hostID: true},
		CreatedAt: now.UTC(),
	}
}

// HasPlayer reports whether playerID is a current member.
func (r *Room) HasPlayer(playerID string) bool {
	if r == nil {
		return false
	}
	return r.Players[playerID]
}

// PlayerIDs returns the member ids in lexicographic order.
func (r *Room) PlayerIDs() []string {
	ids := make([]string, 0, len(r.Players))
	for id := range r.Players {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// NextHost picks the replacement host after leavingID departs: the
// lexicographically smallest remaining member, or "" if none remain.
func (r *Room) NextHost(leavingID string) string {
	next := ""
	for id := range r.Players {
		if id == leavingID {
			continue
		}
		if next == "" || id < next {
			next = id
		}
	}
	return next
}

// IsExpired reports whether the room has outlived the retention window.
func (r *Room) IsExpired(now time.Time, timeout time.Duration) bool {
	if r == nil {
		return true
	}
	return now.Sub(r.CreatedAt) > timeout
}
