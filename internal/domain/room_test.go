package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRoom_NextHostPicksSmallestRemaining(t *testing.T) {
	room := NewRoom("R1", "m-host", time.Now())
	room.Players["z-player"] = true
	room.Players["a-player"] = true

	assert.Equal(t, "a-player", room.NextHost("m-host"))
	assert.Equal(t, "a-player", room.NextHost("z-player"))
	assert.Equal(t, "m-host", room.NextHost("a-player"))
}

func TestRoom_NextHostEmpty(t *testing.T) {
	room := NewRoom("R1", "host1", time.Now())

	assert.Equal(t, "", room.NextHost("host1"))
}

func TestRoom_IsExpired(t *testing.T) {
	now := time.Now().UTC()
	room := NewRoom("R1", "host1", now.Add(-25*time.Hour))

	assert.True(t, room.IsExpired(now, 24*time.Hour))

	fresh := NewRoom("R2", "host1", now.Add(-time.Hour))
	assert.False(t, fresh.IsExpired(now, 24*time.Hour))
}

func TestRoom_PlayerIDsSorted(t *testing.T) {
	room := NewRoom("R1", "c", time.Now())
	room.Players["a"] = true
	room.Players["b"] = true

	assert.Equal(t, []string{"a", "b", "c"}, room.PlayerIDs())
}
