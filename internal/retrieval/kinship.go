// Package retrieval searches the family network for kinship paths between
// two people.
package retrieval

import (
	"context"
	"fmt"
	"strings"

	"pedigree/internal/errors"
	"pedigree/internal/extractor"
	"pedigree/internal/loader"
)

// ErrNoPath is returned when two people are not linked within the hop limit.
var ErrNoPath = errors.New("no kinship path")

type Via string

const (
	ViaParent Via = "parent"
	ViaChild  Via = "child"
	ViaSpouse Via = "spouse"
)

// Step is one hop of a path. Via says how PersonID relates to the previous
// step's person; the first step has no Via.
type Step struct {
	PersonID string `json:"personId"`
	Via      Via    `json:"via,omitempty"`
}

// Config controls a kinship search.
type Config struct {
	MaxHops     int
	Concurrency int
}

func DefaultConfig() Config {
	return Config{
		MaxHops:     12,
		Concurrency: 8,
	}
}

// Relate finds the shortest path from one person to another within maxHops.
func Relate(ctx context.Context, l loader.Loader, from, to string, maxHops int) ([]Step, error) {
	cfg := DefaultConfig()
	cfg.MaxHops = maxHops
	return Search(ctx, l, from, to, cfg)
}

// Search is Relate with full configuration. Both endpoints must load; links
// that fail to load are treated as dead ends.
func Search(ctx context.Context, l loader.Loader, from, to string, cfg Config) ([]Step, error) {
	if cfg.MaxHops < 0 {
		cfg.MaxHops = 0
	}

	ends := loader.LoadMany(ctx, l, []string{from, to}, 2)
	for _, id := range []string{from, to} {
		if err, failed := ends.Failed[id]; failed {
			return nil, errors.Wrapf(err, "relate %s to %s", from, to)
		}
	}
	if from == to {
		return []Step{{PersonID: from}}, nil
	}

	visited := map[string]Step{from: {PersonID: from}}
	prev := map[string]string{}
	frontier := []string{from}
	known := ends

	for depth := 0; depth < cfg.MaxHops && len(frontier) > 0; depth++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "relate")
		}

		var pending []string
		for _, id := range frontier {
			if _, ok := known.Get(id); !ok {
				pending = append(pending, id)
			}
		}
		batch := loader.LoadMany(ctx, l, pending, cfg.Concurrency)

		var next []string
		for _, id := range frontier {
			p, ok := batch.Get(id)
			if !ok {
				if p, ok = known.Get(id); !ok {
					continue
				}
			}
			for _, hop := range neighbours(p) {
				if _, seen := visited[hop.PersonID]; seen {
					continue
				}
				visited[hop.PersonID] = hop
				prev[hop.PersonID] = id
				if hop.PersonID == to {
					return unwind(visited, prev, from, to), nil
				}
				next = append(next, hop.PersonID)
			}
		}
		frontier = next
	}

	return nil, errors.WithDetailf(errors.Wrapf(ErrNoPath, "%s to %s", from, to),
		"searched up to %d hops", cfg.MaxHops)
}

func neighbours(p *extractor.Person) []Step {
	out := make([]Step, 0, len(p.ParentIDs)+len(p.ChildIDs)+len(p.SpouseIDs))
	for _, id := range p.ParentIDs {
		out = append(out, Step{PersonID: id, Via: ViaParent})
	}
	for _, id := range p.ChildIDs {
		out = append(out, Step{PersonID: id, Via: ViaChild})
	}
	for _, id := range p.SpouseIDs {
		out = append(out, Step{PersonID: id, Via: ViaSpouse})
	}
	return out
}

func unwind(visited map[string]Step, prev map[string]string, from, to string) []Step {
	var path []Step
	for id := to; id != from; id = prev[id] {
		path = append(path, visited[id])
	}
	path = append(path, Step{PersonID: from})
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Describe names the relation of the last person in path to the first,
// e.g. "grandparent" or "first cousin once removed". Paths with no common
// name come back as a chain such as "spouse's parent's child".
func Describe(path []Step) string {
	if len(path) <= 1 {
		return "self"
	}
	vias := make([]Via, 0, len(path)-1)
	for _, s := range path[1:] {
		vias = append(vias, s.Via)
	}

	if name, ok := blood(vias); ok {
		return name
	}

	switch {
	case vias[0] == ViaSpouse:
		if name, ok := blood(vias[1:]); ok && inLawable(name) {
			return name + "-in-law"
		}
	case vias[len(vias)-1] == ViaSpouse:
		if name, ok := blood(vias[:len(vias)-1]); ok && inLawable(name) {
			return name + "-in-law"
		}
	}

	parts := make([]string, len(vias))
	for i, v := range vias {
		parts[i] = string(v)
	}
	return strings.Join(parts, "'s ")
}

func inLawable(name string) bool {
	return name == "parent" || name == "child" || name == "sibling"
}

// blood names paths of the form parent^up child^down, or a lone spouse.
func blood(vias []Via) (string, bool) {
	if len(vias) == 1 && vias[0] == ViaSpouse {
		return "spouse", true
	}

	up, down := 0, 0
	for _, v := range vias {
		switch {
		case v == ViaParent && down == 0:
			up++
		case v == ViaChild:
			down++
		default:
			return "", false
		}
	}

	switch {
	case up == 0 && down == 0:
		return "", false
	case down == 0:
		return lineal(up, "parent"), true
	case up == 0:
		return lineal(down, "child"), true
	case up == 1 && down == 1:
		return "sibling", true
	case down == 1:
		return greats(up-2) + "aunt/uncle", true
	case up == 1:
		return greats(down-2) + "niece/nephew", true
	}

	degree := min(up, down) - 1
	name := ordinal(degree) + " cousin"
	if removed := abs(up - down); removed > 0 {
		name += " " + times(removed) + " removed"
	}
	return name, true
}

func lineal(n int, base string) string {
	if n == 1 {
		return base
	}
	return greats(n-2) + "grand" + base
}

func greats(n int) string {
	return strings.Repeat("great-", n)
}

func ordinal(n int) string {
	switch n {
	case 1:
		return "first"
	case 2:
		return "second"
	case 3:
		return "third"
	}
	suffix := "th"
	if n%100 < 11 || n%100 > 13 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

func times(n int) string {
	switch n {
	case 1:
		return "once"
	case 2:
		return "twice"
	}
	return fmt.Sprintf("%d times", n)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
