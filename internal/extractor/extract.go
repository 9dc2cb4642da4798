package extractor

import (
	"pedigree/internal/gedcom"
)

// RecordSource is the read side of a parsed record store.
type RecordSource interface {
	Individual(id string) (*gedcom.Record, bool)
	Family(id string) (*gedcom.Record, bool)
}

// Extract builds the Person view of personID. It returns false when the id
// is not an individual in src. Family ids that do not resolve are skipped.
func Extract(src RecordSource, personID string) (*Person, bool) {
	rec, ok := src.Individual(personID)
	if !ok {
		return nil, false
	}
	data := rec.Attrs

	given, surname := SplitName(data.String(gedcom.TagName))
	p := &Person{
		ID:        personID,
		Name:      DisplayName(given, surname),
		GivenName: given,
		Surname:   surname,
		Sex:       data.String(gedcom.TagSex),
		Email:     data.String(gedcom.TagEmail),
		Phone:     data.String(gedcom.TagPhone),
		Photos:    extractPhotos(data),
	}

	p.BirthDate, p.BirthPlace = eventOf(data, gedcom.TagBirth)
	p.DeathDate, p.DeathPlace = eventOf(data, gedcom.TagDeath)
	p.BaptismDate, p.BaptismPlace = eventOf(data, gedcom.TagBaptism)
	p.BurialDate, p.BurialPlace = eventOf(data, gedcom.TagBurial)

	p.Occupations = cloneNonEmpty(data.List(gedcom.TagOccupation))
	p.Notes = cloneNonEmpty(data.List(gedcom.TagNote))
	p.CensusRecords = eventsOf(data, gedcom.TagCensus)
	p.Residences = eventsOf(data, gedcom.TagResidence)

	p.SpouseIDs, p.ChildIDs = partnersAndChildren(src, personID, data.List(gedcom.TagSpouseFamily))
	p.ParentIDs = parentsOf(src, personID, data.List(gedcom.TagChildFamily))

	return p, true
}

func partnersAndChildren(src RecordSource, personID string, famIDs []string) (spouses, children []string) {
	spouseSet := newIDList(personID)
	childSet := newIDList(personID)

	for _, famID := range famIDs {
		fam, ok := src.Family(famID)
		if !ok {
			continue
		}
		spouseSet.add(fam.Attrs.String(gedcom.TagHusband))
		spouseSet.add(fam.Attrs.String(gedcom.TagWife))
		for _, childID := range fam.Attrs.List(gedcom.TagChild) {
			childSet.add(childID)
		}
	}
	return spouseSet.ids, childSet.ids
}

func parentsOf(src RecordSource, personID string, famIDs []string) []string {
	parents := newIDList(personID)
	for _, famID := range famIDs {
		fam, ok := src.Family(famID)
		if !ok {
			continue
		}
		parents.add(fam.Attrs.String(gedcom.TagHusband))
		parents.add(fam.Attrs.String(gedcom.TagWife))
	}
	return parents.ids
}

// idList keeps first-seen order, drops blanks and duplicates, and never
// contains its owner.
type idList struct {
	owner string
	ids   []string
	seen  map[string]bool
}

func newIDList(owner string) *idList {
	return &idList{owner: owner, ids: []string{}, seen: make(map[string]bool)}
}

func (l *idList) add(id string) {
	if id == "" || id == l.owner || l.seen[id] {
		return
	}
	l.seen[id] = true
	l.ids = append(l.ids, id)
}

func eventOf(data *gedcom.Attrs, tag string) (date, place string) {
	ev := data.Single(tag)
	return ev.String(gedcom.TagDate), ev.String(gedcom.TagPlace)
}

func eventsOf(data *gedcom.Attrs, tag string) []Event {
	entries := data.Repeated(tag)
	if len(entries) == 0 {
		return nil
	}
	out := make([]Event, 0, len(entries))
	for _, e := range entries {
		ev := Event{Date: e.String(gedcom.TagDate), Place: e.String(gedcom.TagPlace)}
		if ev.Date == "" && ev.Place == "" {
			continue
		}
		out = append(out, ev)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func extractPhotos(data *gedcom.Attrs) []string {
	photos := []string{}
	for _, obj := range data.Repeated(gedcom.TagObject) {
		for _, file := range obj.List(gedcom.TagFile) {
			if file == "" {
				continue
			}
			photos = append(photos, NormalizeMediaPath(file))
		}
	}
	return photos
}

func cloneNonEmpty(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	return append([]string(nil), values...)
}
