package graph

import (
	"regexp"

	"pedigree/internal/extractor"
	"pedigree/internal/resolver"
)

var birthYear = regexp.MustCompile(`\d{4}`)

// Label renders a person's display label: the name, or "Unknown", followed
// by the birth year when the birth date carries one.
func Label(p *extractor.Person) string {
	label := p.Name
	if label == "" {
		label = "Unknown"
	}
	if year := birthYear.FindString(p.BirthDate); year != "" {
		label += "\nb. " + year
	}
	return label
}

// FromFamily builds the graph of a resolved family.
func FromFamily(fam *resolver.Family) *Graph {
	return Build(fam.Person, fam.Members, fam.Relationships)
}

// Build synthesizes the family graph around focal. members are the loaded
// relatives; rels says which tier each belongs to.
func Build(focal *extractor.Person, members []*extractor.Person, rels resolver.Relationships) *Graph {
	b := &builder{
		g:       NewGraph(),
		present: make(map[string]bool, len(members)+1),
		used:    make(map[string]map[int]bool),
	}

	b.addPerson(focal, RoleFocal)
	for _, m := range members {
		b.addPerson(m, RoleFamily)
	}

	// Focal partnerships come first so they take the focal person's lowest
	// indices.
	for _, spouseID := range focal.SpouseIDs {
		var kids []string
		for _, c := range rels.Children {
			if c.HasParent(spouseID) {
				kids = append(kids, c.ID)
			}
		}
		if Decide(b.present, [2]string{focal.ID, spouseID}, kids).Decision == CreatePartnership {
			b.partnership(NewPair(focal.ID, spouseID))
		}
	}

	b.anchor(focal, true)
	for _, s := range rels.Siblings {
		b.anchor(s, true)
	}
	for _, c := range rels.Children {
		b.anchor(c, true)
	}
	for _, gc := range rels.Grandchildren {
		b.anchor(gc, false)
	}

	for _, gp := range rels.Grandparents {
		for _, p := range rels.Parents {
			if p.HasParent(gp.ID) {
				b.g.AddEdge(gp.ID, p.ID, EdgeParentage)
			}
		}
	}

	return b.g
}

type builder struct {
	g       *Graph
	present map[string]bool
	// used holds the partnership indices already taken by each person.
	used map[string]map[int]bool
}

func (b *builder) addPerson(p *extractor.Person, role Role) {
	if p == nil || b.present[p.ID] {
		return
	}
	b.present[p.ID] = true
	b.g.AddNode(&Node{
		ID:    p.ID,
		Kind:  NodePerson,
		Label: Label(p),
		Sex:   p.Sex,
		Role:  role,
	})
}

// anchor attaches child to its parents. With viaChild set the child itself
// counts toward the partnership existence test; grandchildren do not, so a
// lone present parent connects to them directly.
func (b *builder) anchor(child *extractor.Person, viaChild bool) {
	parents := child.ParentIDs
	switch len(parents) {
	case 0:
		return
	case 1:
		if b.present[parents[0]] {
			b.g.AddEdge(parents[0], child.ID, EdgeParentage)
		}
		return
	}

	var kids []string
	if viaChild {
		kids = []string{child.ID}
	}
	v := Decide(b.present, [2]string{parents[0], parents[1]}, kids)
	switch v.Decision {
	case CreatePartnership:
		n := b.partnership(NewPair(parents[0], parents[1]))
		b.g.AddEdge(n.ID, child.ID, EdgeParentage)
	case DirectEdge:
		b.g.AddEdge(v.Parent, child.ID, EdgeParentage)
	}

	for _, extra := range parents[2:] {
		if b.present[extra] {
			b.g.AddEdge(extra, child.ID, EdgeParentage)
		}
	}
}

// partnership returns the node for pair, creating it on first use. The
// index is fixed at creation: the smallest index neither partner holds yet.
func (b *builder) partnership(pair Pair) *Node {
	if n, ok := b.g.Node(pair.ID()); ok {
		return n
	}

	index := 0
	for b.used[pair.A][index] || b.used[pair.B][index] {
		index++
	}
	for _, id := range []string{pair.A, pair.B} {
		if b.used[id] == nil {
			b.used[id] = make(map[int]bool)
		}
		b.used[id][index] = true
	}

	n := b.g.AddNode(&Node{
		ID:   pair.ID(),
		Kind: NodePartnership,
		Partnership: &Partnership{
			Partners: [2]string{pair.A, pair.B},
			Index:    index,
			Color:    ColorFor(index),
		},
	})
	for _, id := range []string{pair.A, pair.B} {
		if b.present[id] {
			b.g.AddEdge(id, n.ID, EdgeMembership)
		}
	}
	return n
}
