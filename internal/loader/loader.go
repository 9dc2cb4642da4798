// Package loader fetches normalized people by id. Backends may be local
// (the parsed record store, an export directory, SQLite) or remote; callers
// depend only on the Loader contract and treat every fetch as fallible.
package loader

import (
	"context"
	"sync"

	"pedigree/internal/errors"
	"pedigree/internal/extractor"
	"pedigree/internal/gedcom"

	"golang.org/x/sync/errgroup"
)

// Loader fetches one person. Implementations return an error wrapping
// errors.ErrNotFound when the id does not exist and errors.ErrLinkUnresolved
// for any other failure.
type Loader interface {
	LoadPerson(ctx context.Context, id string) (*extractor.Person, error)
}

// Func adapts a function to the Loader interface.
type Func func(ctx context.Context, id string) (*extractor.Person, error)

func (f Func) LoadPerson(ctx context.Context, id string) (*extractor.Person, error) {
	return f(ctx, id)
}

// MemoryLoader normalizes people on demand from an in-memory record store.
type MemoryLoader struct {
	store *gedcom.Store
}

func NewMemoryLoader(store *gedcom.Store) *MemoryLoader {
	return &MemoryLoader{store: store}
}

func (m *MemoryLoader) LoadPerson(ctx context.Context, id string) (*extractor.Person, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "load person %s", id), errors.ErrLinkUnresolved)
	}
	p, ok := extractor.Extract(m.store, id)
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "person %s", id)
	}
	return p, nil
}

// Batch is the settled outcome of LoadMany. People and Failed are keyed by
// the requested id; every requested id lands in exactly one of them.
type Batch struct {
	People map[string]*extractor.Person
	Failed map[string]error
}

// Get returns the loaded person for id, if any.
func (b *Batch) Get(id string) (*extractor.Person, bool) {
	p, ok := b.People[id]
	return p, ok
}

// InOrder returns the loaded people following ids, skipping failures.
func (b *Batch) InOrder(ids []string) []*extractor.Person {
	out := make([]*extractor.Person, 0, len(ids))
	for _, id := range ids {
		if p, ok := b.People[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// LoadMany fetches ids concurrently and waits for all of them. A failed id
// never cancels the others. limit bounds the number of in-flight fetches;
// zero or less means no bound. Duplicate ids are fetched once.
func LoadMany(ctx context.Context, l Loader, ids []string, limit int) *Batch {
	batch := &Batch{
		People: make(map[string]*extractor.Person, len(ids)),
		Failed: make(map[string]error),
	}

	var (
		mu   sync.Mutex
		g    errgroup.Group
		seen = make(map[string]bool, len(ids))
	)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		g.Go(func() error {
			var (
				p   *extractor.Person
				err error
			)
			if err = ctx.Err(); err == nil {
				p, err = l.LoadPerson(ctx, id)
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				batch.Failed[id] = err
			} else {
				batch.People[id] = p
			}
			// Failures are recorded, never returned, so the group keeps going.
			return nil
		})
	}
	_ = g.Wait()

	return batch
}
