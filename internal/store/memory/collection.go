// internal/store/memory/collection.go
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/model"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/store"
)

// collection is a goroutine-safe map of entities. Every read returns a copy,
// so callers mutate entities only through Save.
type collection[T any, F any] struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*T
	seq   map[uuid.UUID]uint64
	next  uint64

	id      func(*T) uuid.UUID
	clone   func(*T) *T
	match   func(F, *T) bool
	isEmpty func(F) bool
	// collides reports whether two distinct entities break a uniqueness rule.
	collides func(a, b *T) bool
	order    map[string]func(a, b *T) int
}

var _ store.Repository[model.Book, model.FindBook] = (*collection[model.Book, model.FindBook])(nil)

func (c *collection[T, F]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return c.clone(item), nil
}

func (c *collection[T, F]) FindOne(ctx context.Context, filter F) (*T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var (
		found  *T
		lowest uint64
	)
	for id, item := range c.items {
		if !c.match(filter, item) {
			continue
		}
		if found == nil || c.seq[id] < lowest {
			found, lowest = item, c.seq[id]
		}
	}
	if found == nil {
		return nil, store.ErrNotFound
	}
	return c.clone(found), nil
}

func (c *collection[T, F]) Find(ctx context.Context, filter F, sort model.Sort) ([]*T, error) {
	var compare func(a, b *T) int
	if sort.Field != "" {
		var ok bool
		if compare, ok = c.order[sort.Field]; !ok {
			return nil, store.ErrUnsupportedSort
		}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	list := make([]*T, 0)
	for _, item := range c.items {
		if c.match(filter, item) {
			list = append(list, item)
		}
	}

	// Insertion order breaks ties so equal keys sort the same way every time.
	slices.SortFunc(list, func(a, b *T) int {
		if compare != nil {
			r := compare(a, b)
			if sort.Desc {
				r = -r
			}
			if r != 0 {
				return r
			}
		}
		return cmp.Compare(c.seq[c.id(a)], c.seq[c.id(b)])
	})

	out := make([]*T, len(list))
	for i, item := range list {
		out[i] = c.clone(item)
	}
	return out, nil
}

func (c *collection[T, F]) Insert(ctx context.Context, entity *T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.id(entity)
	if _, ok := c.items[id]; ok {
		return store.ErrDuplicate
	}
	if err := c.checkUnique(entity); err != nil {
		return err
	}

	c.next++
	c.items[id] = c.clone(entity)
	c.seq[id] = c.next
	return nil
}

func (c *collection[T, F]) Save(ctx context.Context, entity *T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.id(entity)
	if _, ok := c.items[id]; !ok {
		return store.ErrNotFound
	}
	if err := c.checkUnique(entity); err != nil {
		return err
	}

	c.items[id] = c.clone(entity)
	return nil
}

func (c *collection[T, F]) DeleteMany(ctx context.Context, filter F) (int64, error) {
	if c.isEmpty(filter) {
		return 0, store.ErrEmptyFilter
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var n int64
	for id, item := range c.items {
		if c.match(filter, item) {
			delete(c.items, id)
			delete(c.seq, id)
			n++
		}
	}
	return n, nil
}

func (c *collection[T, F]) checkUnique(entity *T) error {
	if c.collides == nil {
		return nil
	}
	id := c.id(entity)
	for other, item := range c.items {
		if other != id && c.collides(entity, item) {
			return store.ErrDuplicate
		}
	}
	return nil
}

func (c *collection[T, F]) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
