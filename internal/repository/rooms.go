package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/hostbound/signaling/internal/domain"
	"github.com/hostbound/signaling/internal/store"
	"github.com/pion/webrtc/v3"
)

var (
	ErrRoomExists   = errors.New("room already exists")
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room is full")
)

const roomsKey = "rooms"

// RemovePlayerResult reports what RemovePlayer did to the room.
type RemovePlayerResult struct {
	// Closed is true when the departing player was the last member and the
	// room was deleted.
	Closed bool
	// HostChanged is true when the departing player was the host and a
	// replacement was promoted.
	HostChanged bool
	// Host is the room's host after the removal; empty when Closed.
	Host string
	// Remaining lists the members left in the room, in lexicographic order.
	Remaining []string
}

type RoomRepository interface {
	Create(ctx context.Context, room *domain.Room) error
	Get(ctx context.Context, roomID string) (*domain.Room, error)
	AddPlayer(ctx context.Context, roomID, playerID string) (string, error)
	RemovePlayer(ctx context.Context, roomID, playerID string) (*RemovePlayerResult, error)
	Destroy(ctx context.Context, roomID string) error
	List(ctx context.Context) ([]*domain.Room, error)

	RecordOffer(ctx context.Context, roomID, senderID string, sdp webrtc.SessionDescription) error
	RecordAnswer(ctx context.Context, roomID, senderID string, sdp webrtc.SessionDescription) error
	RecordCandidates(ctx context.Context, roomID, senderID string, candidates []webrtc.ICECandidateInit) error
}

// TreeRoomRepository keeps rooms in a keyed tree store. Every operation is
// a read of the room subtree followed by at most one write; the two are
// not atomic, so concurrent operations on the same room can race (two
// joins may both pass the capacity check). Last write wins.
type TreeRoomRepository struct {
	tree       store.Tree
	maxPlayers int
	now        func() time.Time
}

func NewRoomRepository(tree store.Tree, maxPlayers int) *TreeRoomRepository {
	if maxPlayers <= 0 {
		maxPlayers = domain.MaxPlayers
	}
	return &TreeRoomRepository{
		tree:       tree,
		maxPlayers: maxPlayers,
		now:        time.Now,
	}
}

func (r *TreeRoomRepository) Create(ctx context.Context, room *domain.Room) error {
	existing, err := r.tree.Get(ctx, store.Join(roomsKey, room.ID))
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrRoomExists
	}

	if room.CreatedAt.IsZero() {
		room.CreatedAt = r.now().UTC()
	}
	return r.tree.Set(ctx, store.Join(roomsKey, room.ID), encodeRoom(room))
}

func (r *TreeRoomRepository) Get(ctx context.Context, roomID string) (*domain.Room, error) {
	raw, err := r.tree.Get(ctx, store.Join(roomsKey, roomID))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, ErrRoomNotFound
	}
	return decodeRoom(roomID, raw)
}

func (r *TreeRoomRepository) AddPlayer(ctx context.Context, roomID, playerID string) (string, error) {
	room, err := r.Get(ctx, roomID)
	if err != nil {
		return "", err
	}

	if room.HasPlayer(playerID) {
		return room.Host, nil
	}
	if len(room.Players) >= r.maxPlayers {
		return "", ErrRoomFull
	}

	err = r.tree.Update(ctx, store.Join(roomsKey, roomID, "players"), map[string]any{playerID: true})
	if err != nil {
		return "", err
	}
	return room.Host, nil
}

func (r *TreeRoomRepository) RemovePlayer(ctx context.Context, roomID, playerID string) (*RemovePlayerResult, error) {
	room, err := r.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}

	remaining := len(room.Players)
	if room.HasPlayer(playerID) {
		remaining--
	}
	if remaining == 0 {
		if err := r.tree.Delete(ctx, store.Join(roomsKey, roomID)); err != nil {
			return nil, err
		}
		return &RemovePlayerResult{Closed: true}, nil
	}

	if err := r.tree.Delete(ctx, store.Join(roomsKey, roomID, "players", playerID)); err != nil {
		return nil, err
	}

	remainingIDs := make([]string, 0, remaining)
	for _, id := range room.PlayerIDs() {
		if id != playerID {
			remainingIDs = append(remainingIDs, id)
		}
	}

	if room.Host != playerID {
		return &RemovePlayerResult{Host: room.Host, Remaining: remainingIDs}, nil
	}

	newHost := room.NextHost(playerID)
	err = r.tree.Update(ctx, store.Join(roomsKey, roomID), map[string]any{"host": newHost})
	if err != nil {
		return nil, err
	}
	return &RemovePlayerResult{HostChanged: true, Host: newHost, Remaining: remainingIDs}, nil
}

func (r *TreeRoomRepository) Destroy(ctx context.Context, roomID string) error {
	return r.tree.Delete(ctx, store.Join(roomsKey, roomID))
}

func (r *TreeRoomRepository) List(ctx context.Context) ([]*domain.Room, error) {
	raw, err := r.tree.Get(ctx, roomsKey)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	entries, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected rooms collection shape %T", raw)
	}

	rooms := make([]*domain.Room, 0, len(entries))
	for id, val := range entries {
		room, err := decodeRoom(id, val)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms, nil
}

func (r *TreeRoomRepository) RecordOffer(ctx context.Context, roomID, senderID string, sdp webrtc.SessionDescription) error {
	return r.tree.Update(ctx, store.Join(roomsKey, roomID, "offers"), map[string]any{senderID: sdp})
}

func (r *TreeRoomRepository) RecordAnswer(ctx context.Context, roomID, senderID string, sdp webrtc.SessionDescription) error {
	return r.tree.Update(ctx, store.Join(roomsKey, roomID, "answers"), map[string]any{senderID: sdp})
}

// RecordCandidates writes each candidate under a key unique per
// sender, timestamp and index so concurrent batches from the same sender
// never overwrite each other.
func (r *TreeRoomRepository) RecordCandidates(ctx context.Context, roomID, senderID string, candidates []webrtc.ICECandidateInit) error {
	ms := r.now().UnixMilli()
	fields := make(map[string]any, len(candidates))
	for i, c := range candidates {
		fields[fmt.Sprintf("%s-%d-%d", senderID, ms, i)] = c
	}
	return r.tree.Update(ctx, store.Join(roomsKey, roomID, "ice_candidates"), fields)
}

func encodeRoom(room *domain.Room) map[string]any {
	players := make(map[string]any, len(room.Players))
	for id := range room.Players {
		players[id] = true
	}
	return map[string]any{
		"host":      room.Host,
		"players":   players,
		"createdAt": room.CreatedAt.UnixMilli(),
	}
}

func decodeRoom(id string, raw any) (*domain.Room, error) {
	fields, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected room shape %T for %q", raw, id)
	}

	room := &domain.Room{ID: id, Players: make(map[string]bool)}
	if host, ok := fields["host"].(string); ok {
		room.Host = host
	}
	if players, ok := fields["players"].(map[string]any); ok {
		for pid := range players {
			room.Players[pid] = true
		}
	}
	switch created := fields["createdAt"].(type) {
	case float64:
		room.CreatedAt = time.UnixMilli(int64(created)).UTC()
	case int64:
		room.CreatedAt = time.UnixMilli(created).UTC()
	}
	return room, nil
}
