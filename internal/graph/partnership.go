package graph

import "github.com/google/uuid"

// Palette colors partnerships by index, wrapping past the end.
var Palette = []string{"#ff6b9d", "#8ab4f8", "#f4b400", "#34a853", "#a142f4", "#ff8a65"}

// ColorFor returns the palette color for a partnership index.
func ColorFor(index int) string {
	return Palette[index%len(Palette)]
}

var partnershipNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("pedigree/partnership"))

// Pair is an unordered pair of co-parent ids, stored sorted.
type Pair struct {
	A, B string
}

func NewPair(x, y string) Pair {
	if y < x {
		x, y = y, x
	}
	return Pair{A: x, B: y}
}

// Key is the dedup key for the pair.
func (p Pair) Key() string {
	return p.A + "|" + p.B
}

// ID is the deterministic partnership node id for the pair.
func (p Pair) ID() string {
	return "partnership-" + uuid.NewSHA1(partnershipNamespace, []byte(p.Key())).String()
}

type Decision int

const (
	// Skip leaves the child without a parent edge at this tier.
	Skip Decision = iota
	// CreatePartnership anchors the child on the pair's partnership node.
	CreatePartnership
	// DirectEdge connects Verdict.Parent straight to the child.
	DirectEdge
)

type Verdict struct {
	Decision Decision
	Parent   string
}

// Decide chooses how children of a co-parent pair attach to the graph.
// parents is in canonical order (husband, wife) and children lists the
// pair's children; present reports which ids are loaded nodes.
//
// A partnership exists when both parents are present, or when one is and at
// least one listed child is. Otherwise the first present parent gets a direct
// edge, and with no parent present the children stay unconnected.
func Decide(present map[string]bool, parents [2]string, children []string) Verdict {
	var found []string
	for _, p := range parents {
		if p != "" && present[p] {
			found = append(found, p)
		}
	}

	switch len(found) {
	case 0:
		return Verdict{Decision: Skip}
	case 2:
		return Verdict{Decision: CreatePartnership}
	}

	for _, c := range children {
		if present[c] {
			return Verdict{Decision: CreatePartnership}
		}
	}
	return Verdict{Decision: DirectEdge, Parent: found[0]}
}
