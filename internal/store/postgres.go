package store

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Node is one top-level document of a collection: the whole subtree under
// "collection/key" stored as a JSONB blob. Deeper paths are resolved by
// read-modify-write on the owning row inside a transaction.
type Node struct {
	Collection string `gorm:"primaryKey;size:64"`
	Key        string `gorm:"primaryKey;size:128"`
	Doc        []byte `gorm:"type:jsonb"`
}

func (Node) TableName() string { return "tree_nodes" }

// PostgresTree persists the keyed tree in Postgres via gorm. Row-level
// locking makes each single call consistent; sequences of calls still
// race, same as any Tree.
type PostgresTree struct {
	db *gorm.DB
}

func NewPostgresTree(db *gorm.DB) *PostgresTree {
	return &PostgresTree{db: db}
}

func (t *PostgresTree) Get(ctx context.Context, path string) (any, error) {
	segs := splitPath(path)
	if len(segs) == 0 {
		return nil, errors.New("empty path")
	}

	if len(segs) == 1 {
		var nodes []Node
		if err := t.db.WithContext(ctx).Where("collection = ?", segs[0]).Find(&nodes).Error; err != nil {
			return nil, err
		}
		if len(nodes) == 0 {
			return nil, nil
		}
		out := make(map[string]any, len(nodes))
		for _, n := range nodes {
			var doc any
			if err := json.Unmarshal(n.Doc, &doc); err != nil {
				return nil, err
			}
			out[n.Key] = doc
		}
		return out, nil
	}

	var node Node
	err := t.db.WithContext(ctx).First(&node, "collection = ? AND key = ?", segs[0], segs[1]).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var doc any
	if err := json.Unmarshal(node.Doc, &doc); err != nil {
		return nil, err
	}
	return dig(doc, segs[2:]), nil
}

func (t *PostgresTree) Set(ctx context.Context, path string, value any) error {
	segs := splitPath(path)
	if len(segs) < 2 {
		return errors.New("set requires a collection and key")
	}

	if len(segs) == 2 {
		raw, err := json.Marshal(value)
		if err != nil {
			return err
		}
		node := Node{Collection: segs[0], Key: segs[1], Doc: raw}
		return t.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "collection"}, {Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"doc"}),
			}).
			Create(&node).Error
	}

	return t.mutateDoc(ctx, segs[0], segs[1], func(doc map[string]any) error {
		parent := digMaps(doc, segs[2:len(segs)-1])
		parent[segs[len(segs)-1]] = value
		return nil
	})
}

func (t *PostgresTree) Update(ctx context.Context, path string, fields map[string]any) error {
	segs := splitPath(path)
	if len(segs) < 2 {
		return errors.New("update requires a collection and key")
	}

	return t.mutateDoc(ctx, segs[0], segs[1], func(doc map[string]any) error {
		target := digMaps(doc, segs[2:])
		for k, v := range fields {
			target[k] = v
		}
		return nil
	})
}

func (t *PostgresTree) Delete(ctx context.Context, path string) error {
	segs := splitPath(path)
	switch len(segs) {
	case 0:
		return errors.New("empty path")
	case 1:
		return t.db.WithContext(ctx).Where("collection = ?", segs[0]).Delete(&Node{}).Error
	case 2:
		return t.db.WithContext(ctx).Where("collection = ? AND key = ?", segs[0], segs[1]).Delete(&Node{}).Error
	}

	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var node Node
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&node, "collection = ? AND key = ?", segs[0], segs[1]).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		var doc map[string]any
		if err := json.Unmarshal(node.Doc, &doc); err != nil {
			return err
		}

		parent := doc
		for _, seg := range segs[2 : len(segs)-1] {
			next, ok := parent[seg].(map[string]any)
			if !ok {
				return nil
			}
			parent = next
		}
		delete(parent, segs[len(segs)-1])

		raw, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		return tx.Model(&Node{}).
			Where("collection = ? AND key = ?", segs[0], segs[1]).
			Update("doc", raw).Error
	})
}

func (t *PostgresTree) Push(ctx context.Context, path string, value any) (string, error) {
	key := pushKey()
	if err := t.Set(ctx, Join(path, key), value); err != nil {
		return "", err
	}
	return key, nil
}

// mutateDoc loads the row for collection/key under a row lock, applies fn
// to the decoded document, and writes the result back, creating the row if
// it did not exist.
func (t *PostgresTree) mutateDoc(ctx context.Context, collection, key string, fn func(doc map[string]any) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var node Node
		doc := make(map[string]any)
		exists := true

		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&node, "collection = ? AND key = ?", collection, key).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			exists = false
		} else if err := json.Unmarshal(node.Doc, &doc); err != nil {
			return err
		}

		if err := fn(doc); err != nil {
			return err
		}

		raw, err := json.Marshal(doc)
		if err != nil {
			return err
		}

		if exists {
			return tx.Model(&Node{}).
				Where("collection = ? AND key = ?", collection, key).
				Update("doc", raw).Error
		}
		return tx.Create(&Node{Collection: collection, Key: key, Doc: raw}).Error
	})
}

func dig(doc any, segs []string) any {
	node := doc
	for _, seg := range segs {
		m, ok := node.(map[string]any)
		if !ok {
			return nil
		}
		node, ok = m[seg]
		if !ok {
			return nil
		}
	}
	return node
}

func digMaps(doc map[string]any, segs []string) map[string]any {
	node := doc
	for _, seg := range segs {
		next, ok := node[seg].(map[string]any)
		if !ok {
			next = make(map[string]any)
			node[seg] = next
		}
		node = next
	}
	return node
}
