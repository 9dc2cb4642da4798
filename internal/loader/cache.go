package loader

import (
	"context"
	"sync"
	"sync/atomic"

	"pedigree/internal/errors"
	"pedigree/internal/extractor"

	"golang.org/x/sync/singleflight"
)

// Cache memoizes successful loads for the life of the Cache. Entries are
// never evicted; failures are not cached. Concurrent requests for the same id
// share one fetch.
type Cache struct {
	next    Loader
	entries sync.Map // id -> *extractor.Person
	group   singleflight.Group
	size    atomic.Int64
}

func NewCache(next Loader) *Cache {
	return &Cache{next: next}
}

func (c *Cache) LoadPerson(ctx context.Context, id string) (*extractor.Person, error) {
	if v, ok := c.entries.Load(id); ok {
		return v.(*extractor.Person), nil
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "load person %s", id), errors.ErrLinkUnresolved)
	}

	// The shared fetch outlives any one caller's cancellation; each caller
	// stops waiting when its own ctx is done.
	ch := c.group.DoChan(id, func() (any, error) {
		p, err := c.next.LoadPerson(context.WithoutCancel(ctx), id)
		if err != nil {
			return nil, err
		}
		if _, loaded := c.entries.LoadOrStore(id, p); !loaded {
			c.size.Add(1)
		}
		return p, nil
	})

	select {
	case <-ctx.Done():
		return nil, errors.Mark(errors.Wrapf(ctx.Err(), "load person %s", id), errors.ErrLinkUnresolved)
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*extractor.Person), nil
	}
}

// Len reports how many people are cached.
func (c *Cache) Len() int {
	return int(c.size.Load())
}
