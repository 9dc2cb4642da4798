// Package resolver loads a person's family around a focal id: immediate
// relatives first, then siblings, grandparents, grandchildren and the other
// parents of half-siblings. Every linked lookup is best-effort.
package resolver

import (
	"context"
	"encoding/json"
	"time"

	"pedigree/internal/errors"
	"pedigree/internal/extractor"
	"pedigree/internal/loader"
	"pedigree/internal/logger"

	"go.uber.org/zap"
)

// DefaultConcurrency bounds in-flight lookups per batch.
const DefaultConcurrency = 8

// Relationships partitions the loaded relatives of a focal person. No person
// appears in more than one category.
type Relationships struct {
	Parents       []*extractor.Person
	Spouses       []*extractor.Person
	Children      []*extractor.Person
	Siblings      []*extractor.Person
	Grandparents  []*extractor.Person
	Grandchildren []*extractor.Person
	// CoParents are the parents of half-siblings who are not the focal
	// person's own parents. They only anchor partnerships in the graph.
	CoParents []*extractor.Person
}

// MarshalJSON encodes each category as a list of person ids.
func (r Relationships) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Parents       []string `json:"parents"`
		Spouses       []string `json:"spouses"`
		Children      []string `json:"children"`
		Siblings      []string `json:"siblings"`
		Grandparents  []string `json:"grandparents"`
		Grandchildren []string `json:"grandchildren"`
		CoParents     []string `json:"coParents"`
	}{
		Parents:       IDs(r.Parents),
		Spouses:       IDs(r.Spouses),
		Children:      IDs(r.Children),
		Siblings:      IDs(r.Siblings),
		Grandparents:  IDs(r.Grandparents),
		Grandchildren: IDs(r.Grandchildren),
		CoParents:     IDs(r.CoParents),
	})
}

// Stats counts the linked lookups made while resolving one family.
type Stats struct {
	Requested int `json:"requested"`
	Loaded    int `json:"loaded"`
	Failed    int `json:"failed"`
}

func (s *Stats) add(b *loader.Batch) {
	s.Requested += len(b.People) + len(b.Failed)
	s.Loaded += len(b.People)
	s.Failed += len(b.Failed)
}

// Family is a resolved focal person with every loaded relative.
type Family struct {
	Person *extractor.Person `json:"person"`
	// Members lists every relative once, ordered by category: parents,
	// spouses, children, siblings, grandparents, grandchildren, co-parents.
	Members       []*extractor.Person `json:"family"`
	Relationships Relationships       `json:"relationships"`
	Stats         Stats               `json:"stats"`
}

// Resolver resolves families through a Loader.
type Resolver struct {
	loader      loader.Loader
	concurrency int
	logger      *zap.SugaredLogger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithConcurrency bounds concurrent lookups per batch. n <= 0 removes the
// bound.
func WithConcurrency(n int) Option {
	return func(r *Resolver) { r.concurrency = n }
}

// WithLogger sets the resolver's logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(r *Resolver) { r.logger = logger.OrNop(l) }
}

// New creates a resolver over l.
func New(l loader.Loader, opts ...Option) *Resolver {
	r := &Resolver{
		loader:      l,
		concurrency: DefaultConcurrency,
		logger:      logger.OrNop(nil),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveFamily loads id and its family. Only a failure to load id itself is
// returned; relatives that fail to load are left out.
func (r *Resolver) ResolveFamily(ctx context.Context, id string) (*Family, error) {
	start := time.Now()

	focal, err := r.loader.LoadPerson(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.WithHintf(errors.Wrap(err, "resolve family"),
				"%q is not an individual id in the loaded records", id)
		}
		return nil, errors.Wrapf(err, "resolve family of %s", id)
	}

	fam := &Family{Person: focal}
	claims := newClaims(focal.ID)
	rels := &fam.Relationships

	immediate := loader.LoadMany(ctx, r.loader,
		concatIDs(focal.ParentIDs, focal.SpouseIDs, focal.ChildIDs), r.concurrency)
	fam.Stats.add(immediate)

	rels.Parents = claims.take(immediate, focal.ParentIDs, nil)
	rels.Spouses = claims.take(immediate, focal.SpouseIDs, nil)
	rels.Children = claims.take(immediate, focal.ChildIDs, nil)

	var siblingIDs, grandparentIDs, grandchildIDs []string
	for _, p := range rels.Parents {
		siblingIDs = append(siblingIDs, p.ChildIDs...)
		grandparentIDs = append(grandparentIDs, p.ParentIDs...)
	}
	for _, c := range rels.Children {
		grandchildIDs = append(grandchildIDs, c.ChildIDs...)
	}

	extended := loader.LoadMany(ctx, r.loader,
		claims.unclaimed(concatIDs(siblingIDs, grandparentIDs, grandchildIDs)), r.concurrency)
	fam.Stats.add(extended)

	rels.Siblings = claims.take(extended, siblingIDs, func(p *extractor.Person) bool {
		return p.SharesParentWith(focal)
	})
	rels.Grandparents = claims.take(extended, grandparentIDs, nil)
	rels.Grandchildren = claims.take(extended, grandchildIDs, nil)

	var coParentIDs []string
	for _, s := range rels.Siblings {
		for _, pid := range s.ParentIDs {
			if !focal.HasParent(pid) {
				coParentIDs = append(coParentIDs, pid)
			}
		}
	}
	if pending := claims.unclaimed(dedupe(coParentIDs)); len(pending) > 0 {
		coParents := loader.LoadMany(ctx, r.loader, pending, r.concurrency)
		fam.Stats.add(coParents)
		rels.CoParents = claims.take(coParents, coParentIDs, nil)
	}

	fam.Members = make([]*extractor.Person, 0, fam.Stats.Loaded)
	for _, group := range [][]*extractor.Person{
		rels.Parents, rels.Spouses, rels.Children,
		rels.Siblings, rels.Grandparents, rels.Grandchildren, rels.CoParents,
	} {
		fam.Members = append(fam.Members, group...)
	}

	r.logger.Debugw("family resolved",
		logger.FieldPersonID, focal.ID,
		logger.FieldCount, len(fam.Members),
		logger.FieldFailed, fam.Stats.Failed,
		logger.FieldDurationMS, time.Since(start).Milliseconds(),
	)
	return fam, nil
}

// IDs returns the ids of people in order.
func IDs(people []*extractor.Person) []string {
	out := make([]string, 0, len(people))
	for _, p := range people {
		out = append(out, p.ID)
	}
	return out
}

// claims tracks which ids already belong to a category.
type claims map[string]bool

func newClaims(focalID string) claims {
	return claims{focalID: true}
}

// take claims, in ids order, every loaded person not yet claimed and
// accepted by keep (nil keeps all).
func (c claims) take(b *loader.Batch, ids []string, keep func(*extractor.Person) bool) []*extractor.Person {
	out := []*extractor.Person{}
	for _, id := range ids {
		if c[id] {
			continue
		}
		p, ok := b.Get(id)
		if !ok || (keep != nil && !keep(p)) {
			continue
		}
		c[id] = true
		out = append(out, p)
	}
	return out
}

func (c claims) unclaimed(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !c[id] {
			out = append(out, id)
		}
	}
	return out
}

func concatIDs(lists ...[]string) []string {
	var all []string
	for _, l := range lists {
		all = append(all, l...)
	}
	return dedupe(all)
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
