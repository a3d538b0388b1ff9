package repository

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/hostbound/signaling/internal/domain"
	"github.com/hostbound/signaling/internal/store"
)

type NotificationQueue interface {
	Push(ctx context.Context, roomID, playerID string, notification domain.Notification) error
	Drain(ctx context.Context, roomID, playerID string) ([]domain.Notification, error)
}

// TreeNotificationQueue keeps one ordered mailbox per room per player
// under rooms/<roomID>/notifications/<playerID>, with generated push keys
// preserving append order.
type TreeNotificationQueue struct {
	tree store.Tree
}

func NewNotificationQueue(tree store.Tree) *TreeNotificationQueue {
	return &TreeNotificationQueue{tree: tree}
}

func (q *TreeNotificationQueue) Push(ctx context.Context, roomID, playerID string, notification domain.Notification) error {
	_, err := q.tree.Push(ctx, mailboxPath(roomID, playerID), notification)
	return err
}

// Drain returns the pending mailbox in FIFO order and clears it. The read
// and the clearing delete are two separate store calls: a notification
// pushed in between is lost. Best-effort by contract; callers must not
// depend on that window being closed.
func (q *TreeNotificationQueue) Drain(ctx context.Context, roomID, playerID string) ([]domain.Notification, error) {
	raw, err := q.tree.Get(ctx, mailboxPath(roomID, playerID))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return []domain.Notification{}, nil
	}

	entries, ok := raw.(map[string]any)
	if !ok {
		return []domain.Notification{}, nil
	}

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	notifications := make([]domain.Notification, 0, len(keys))
	for _, k := range keys {
		n, err := decodeNotification(entries[k])
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}

	if err := q.tree.Delete(ctx, mailboxPath(roomID, playerID)); err != nil {
		return nil, err
	}
	return notifications, nil
}

func mailboxPath(roomID, playerID string) string {
	return store.Join(roomsKey, roomID, "notifications", playerID)
}

func decodeNotification(raw any) (domain.Notification, error) {
	var n domain.Notification
	buf, err := json.Marshal(raw)
	if err != nil {
		return n, err
	}
	if err := json.Unmarshal(buf, &n); err != nil {
		return n, err
	}
	return n, nil
}
