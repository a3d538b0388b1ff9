package store

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryTree is an in-memory Tree used for tests and single-node deploys.
// Values are normalized through JSON on write so reads observe the same
// shapes (map[string]any, []any, float64, ...) a document store would
// return.
type MemoryTree struct {
	mu   sync.RWMutex
	root map[string]any
}

func NewMemoryTree() *MemoryTree {
	return &MemoryTree{root: make(map[string]any)}
}

func (t *MemoryTree) Get(ctx context.Context, path string) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	node := any(t.root)
	for _, seg := range splitPath(path) {
		m, ok := node.(map[string]any)
		if !ok {
			return nil, nil
		}
		node, ok = m[seg]
		if !ok {
			return nil, nil
		}
	}
	return clone(node), nil
}

func (t *MemoryTree) Set(ctx context.Context, path string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	normalized, err := normalize(value)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	parent, key := t.descend(path)
	parent[key] = normalized
	return nil
}

func (t *MemoryTree) Update(ctx context.Context, path string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	parent, key := t.descend(path)
	target, ok := parent[key].(map[string]any)
	if !ok {
		target = make(map[string]any)
		parent[key] = target
	}
	for k, v := range fields {
		normalized, err := normalize(v)
		if err != nil {
			return err
		}
		target[k] = normalized
	}
	return nil
}

func (t *MemoryTree) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	segs := splitPath(path)
	if len(segs) == 0 {
		t.root = make(map[string]any)
		return nil
	}

	node := t.root
	for _, seg := range segs[:len(segs)-1] {
		next, ok := node[seg].(map[string]any)
		if !ok {
			return nil
		}
		node = next
	}
	delete(node, segs[len(segs)-1])
	return nil
}

func (t *MemoryTree) Push(ctx context.Context, path string, value any) (string, error) {
	key := pushKey()
	if err := t.Set(ctx, Join(path, key), value); err != nil {
		return "", err
	}
	return key, nil
}

// descend walks to the parent map of the final segment, creating
// intermediate maps along the way. Caller holds the write lock.
func (t *MemoryTree) descend(path string) (map[string]any, string) {
	segs := splitPath(path)
	node := t.root
	for _, seg := range segs[:len(segs)-1] {
		next, ok := node[seg].(map[string]any)
		if !ok {
			next = make(map[string]any)
			node[seg] = next
		}
		node = next
	}
	return node, segs[len(segs)-1]
}

func normalize(value any) (any, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func clone(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, child := range v {
			out[k] = clone(child)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, child := range v {
			out[i] = clone(child)
		}
		return out
	default:
		return value
	}
}
