package extractor

// Event is a dated, placed entry such as a census or residence record.
type Event struct {
	Date  string `json:"date,omitempty"`
	Place string `json:"place,omitempty"`
}

// Person is the display-ready view of one individual. It is rebuilt from the
// record store on every extraction and never mutated afterwards.
//
// Optional fields are omitted from JSON when the source has no data for them.
// The three id lists are always present, possibly empty.
type Person struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	GivenName string `json:"givenName"`
	Surname   string `json:"surname"`
	Sex       string `json:"sex,omitempty"`

	BirthDate    string `json:"birthDate,omitempty"`
	BirthPlace   string `json:"birthPlace,omitempty"`
	DeathDate    string `json:"deathDate,omitempty"`
	DeathPlace   string `json:"deathPlace,omitempty"`
	BaptismDate  string `json:"baptismDate,omitempty"`
	BaptismPlace string `json:"baptismPlace,omitempty"`
	BurialDate   string `json:"burialDate,omitempty"`
	BurialPlace  string `json:"burialPlace,omitempty"`

	Occupations   []string `json:"occupations,omitempty"`
	Notes         []string `json:"notes,omitempty"`
	Email         string   `json:"email,omitempty"`
	Phone         string   `json:"phone,omitempty"`
	CensusRecords []Event  `json:"censusRecords,omitempty"`
	Residences    []Event  `json:"residences,omitempty"`

	// Photos are portable media paths, e.g. "Data/Media/1901/court.jpg".
	Photos []string `json:"photos"`
	// Avatar is written back by the avatar pipeline; nothing here reads it.
	Avatar string `json:"avatar,omitempty"`

	SpouseIDs []string `json:"spouseIds"`
	ChildIDs  []string `json:"childIds"`
	ParentIDs []string `json:"parentIds"`
}

// LifeEvent is one labelled vital event for display.
type LifeEvent struct {
	Label string `json:"label"`
	Date  string `json:"date,omitempty"`
	Place string `json:"place,omitempty"`
}

// LifeEvents lists birth, baptism, death and burial in that order, skipping
// events with neither a date nor a place.
func (p *Person) LifeEvents() []LifeEvent {
	candidates := []LifeEvent{
		{Label: "Birth", Date: p.BirthDate, Place: p.BirthPlace},
		{Label: "Baptism", Date: p.BaptismDate, Place: p.BaptismPlace},
		{Label: "Death", Date: p.DeathDate, Place: p.DeathPlace},
		{Label: "Burial", Date: p.BurialDate, Place: p.BurialPlace},
	}
	var out []LifeEvent
	for _, ev := range candidates {
		if ev.Date != "" || ev.Place != "" {
			out = append(out, ev)
		}
	}
	return out
}

// HasParent reports whether id is one of p's parents.
func (p *Person) HasParent(id string) bool {
	return contains(p.ParentIDs, id)
}

// HasChild reports whether id is one of p's children.
func (p *Person) HasChild(id string) bool {
	return contains(p.ChildIDs, id)
}

// SharesParentWith reports whether p and other have at least one parent id
// in common.
func (p *Person) SharesParentWith(other *Person) bool {
	for _, id := range other.ParentIDs {
		if p.HasParent(id) {
			return true
		}
	}
	return false
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
