package gedcom

// Kind distinguishes the two record types the parser keeps.
type Kind string

const (
	KindIndividual Kind = "INDI"
	KindFamily     Kind = "FAM"
)

// Attrs is one node of a record's attribute tree. Scalar tags overwrite,
// list tags append, and structured tags nest further Attrs.
type Attrs struct {
	Scalars map[string]string   `json:"scalars,omitempty"`
	Lists   map[string][]string `json:"lists,omitempty"`
	Singles map[string]*Attrs   `json:"singles,omitempty"` // BIRT, DEAT, BAPM, BURI
	Repeats map[string][]*Attrs `json:"repeats,omitempty"` // CENS, RESI, OBJE
}

func newAttrs() *Attrs {
	return &Attrs{}
}

// Value returns the scalar stored under tag.
func (a *Attrs) Value(tag string) (string, bool) {
	if a == nil || a.Scalars == nil {
		return "", false
	}
	v, ok := a.Scalars[tag]
	return v, ok
}

// String returns the scalar stored under tag, or "" if absent.
func (a *Attrs) String(tag string) string {
	v, _ := a.Value(tag)
	return v
}

// List returns the values appended under tag in source order.
func (a *Attrs) List(tag string) []string {
	if a == nil || a.Lists == nil {
		return nil
	}
	return a.Lists[tag]
}

// Single returns the singleton structure under tag, or nil.
func (a *Attrs) Single(tag string) *Attrs {
	if a == nil || a.Singles == nil {
		return nil
	}
	return a.Singles[tag]
}

// Repeated returns the structures appended under tag in source order.
func (a *Attrs) Repeated(tag string) []*Attrs {
	if a == nil || a.Repeats == nil {
		return nil
	}
	return a.Repeats[tag]
}

func (a *Attrs) setScalar(tag, value string) {
	if a.Scalars == nil {
		a.Scalars = make(map[string]string)
	}
	a.Scalars[tag] = value
}

func (a *Attrs) appendList(tag, value string) {
	if a.Lists == nil {
		a.Lists = make(map[string][]string)
	}
	a.Lists[tag] = append(a.Lists[tag], value)
}

func (a *Attrs) single(tag string) *Attrs {
	if a.Singles == nil {
		a.Singles = make(map[string]*Attrs)
	}
	child, ok := a.Singles[tag]
	if !ok {
		child = newAttrs()
		a.Singles[tag] = child
	}
	return child
}

func (a *Attrs) appendRepeat(tag string) *Attrs {
	if a.Repeats == nil {
		a.Repeats = make(map[string][]*Attrs)
	}
	child := newAttrs()
	a.Repeats[tag] = append(a.Repeats[tag], child)
	return child
}

// Record is one top-level INDI or FAM entry.
type Record struct {
	ID    string `json:"id"`
	Kind  Kind   `json:"kind"`
	Attrs *Attrs `json:"attrs"`
}

// Store holds every parsed record keyed by id. Ids are unique per kind;
// a later record with a repeated id replaces the earlier one in place.
type Store struct {
	individuals map[string]*Record
	families    map[string]*Record
	indiOrder   []string
	famOrder    []string
}

func NewStore() *Store {
	return &Store{
		individuals: make(map[string]*Record),
		families:    make(map[string]*Record),
	}
}

// Individual looks up an INDI record.
func (s *Store) Individual(id string) (*Record, bool) {
	r, ok := s.individuals[id]
	return r, ok
}

// Family looks up a FAM record.
func (s *Store) Family(id string) (*Record, bool) {
	r, ok := s.families[id]
	return r, ok
}

// IndividualIDs returns individual ids in first-seen order.
func (s *Store) IndividualIDs() []string {
	return append([]string(nil), s.indiOrder...)
}

// FamilyIDs returns family ids in first-seen order.
func (s *Store) FamilyIDs() []string {
	return append([]string(nil), s.famOrder...)
}

func (s *Store) NumIndividuals() int { return len(s.individuals) }
func (s *Store) NumFamilies() int    { return len(s.families) }

func (s *Store) register(r *Record) {
	switch r.Kind {
	case KindIndividual:
		if _, seen := s.individuals[r.ID]; !seen {
			s.indiOrder = append(s.indiOrder, r.ID)
		}
		s.individuals[r.ID] = r
	case KindFamily:
		if _, seen := s.families[r.ID]; !seen {
			s.famOrder = append(s.famOrder, r.ID)
		}
		s.families[r.ID] = r
	}
}
