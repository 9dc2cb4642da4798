package extractor

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"pedigree/internal/gedcom"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadSample(t *testing.T) *gedcom.Store {
	t.Helper()
	store, err := gedcom.ParseFile(filepath.Join("..", "gedcom", "testdata", "sample.ged"))
	require.NoError(t, err)
	return store
}

func TestExtract_PersonWithRelationships(t *testing.T) {
	store := loadSample(t)

	person, ok := Extract(store, "I1")
	require.True(t, ok)

	assert.Equal(t, "I1", person.ID)
	assert.Equal(t, "Ian A'Court", person.Name)
	assert.Equal(t, "Ian", person.GivenName)
	assert.Equal(t, "A'Court", person.Surname)
	assert.Equal(t, "M", person.Sex)
	assert.Equal(t, "1 JAN 1980", person.BirthDate)
	assert.Equal(t, "London, England", person.BirthPlace)
	assert.Equal(t, []string{"Engineer"}, person.Occupations)

	assert.Equal(t, []string{"Data/Media/photo1.jpg", "Data/Media/photo2.jpg"}, person.Photos)

	assert.Equal(t, []string{"I2"}, person.SpouseIDs)
	assert.Equal(t, []string{"I3"}, person.ChildIDs)
	assert.Equal(t, []string{"I4", "I5"}, person.ParentIDs)
}

func TestExtract_SpouseRoundTrip(t *testing.T) {
	store := loadSample(t)

	husband, _ := Extract(store, "I1")
	wife, _ := Extract(store, "I2")
	child, _ := Extract(store, "I3")

	assert.Equal(t, []string{"I2"}, husband.SpouseIDs)
	assert.Equal(t, []string{"I1"}, wife.SpouseIDs)
	assert.Equal(t, []string{"I1", "I2"}, child.ParentIDs)
	assert.Equal(t, []string{"I3"}, husband.ChildIDs)
}

func TestExtract_OptionalFields(t *testing.T) {
	store := loadSample(t)

	john, ok := Extract(store, "I4")
	require.True(t, ok)
	assert.Equal(t, "2 AUG 2001", john.DeathDate)
	assert.Equal(t, "Selborne, Hampshire", john.DeathPlace)
	assert.Empty(t, john.BurialDate)
	assert.Equal(t, "Selborne churchyard", john.BurialPlace)
	// the second CENS entry has neither date nor place
	assert.Equal(t, []Event{{Date: "1961", Place: "Alton, Hampshire"}}, john.CensusRecords)

	mary, _ := Extract(store, "I5")
	raw, err := json.Marshal(mary)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	for _, absent := range []string{"birthDate", "baptismDate", "burialPlace", "occupations", "notes", "email", "phone", "censusRecords", "residences"} {
		assert.NotContains(t, fields, absent)
	}
	for _, present := range []string{"id", "name", "photos", "spouseIds", "childIds", "parentIds"} {
		assert.Contains(t, fields, present)
	}
}

func TestExtract_NotFound(t *testing.T) {
	store := loadSample(t)

	person, ok := Extract(store, "I404")
	assert.False(t, ok)
	assert.Nil(t, person)
}

func TestExtract_NoRelationships(t *testing.T) {
	store := gedcom.Parse(`0 @I99@ INDI
1 NAME Single /Person/
1 SEX F
0 TRLR`)

	person, ok := Extract(store, "I99")
	require.True(t, ok)
	assert.Equal(t, []string{}, person.SpouseIDs)
	assert.Equal(t, []string{}, person.ChildIDs)
	assert.Equal(t, []string{}, person.ParentIDs)
	assert.Equal(t, []string{}, person.Photos)
}

func TestExtract_DanglingFamiliesAreSkipped(t *testing.T) {
	store := gedcom.Parse(`0 @I1@ INDI
1 FAMS @F404@
1 FAMS @F1@
1 FAMC @F405@
0 @F1@ FAM
1 WIFE @I1@
1 HUSB @I2@
1 CHIL @I3@
`)

	person, ok := Extract(store, "I1")
	require.True(t, ok)
	assert.Equal(t, []string{"I2"}, person.SpouseIDs)
	assert.Equal(t, []string{"I3"}, person.ChildIDs)
	assert.Equal(t, []string{}, person.ParentIDs)
}

func TestExtract_SelfNeverListed(t *testing.T) {
	store := gedcom.Parse(`0 @I1@ INDI
1 FAMS @F1@
1 FAMC @F1@
0 @F1@ FAM
1 HUSB @I1@
1 WIFE @I1@
1 CHIL @I1@
1 CHIL @I2@
`)

	person, ok := Extract(store, "I1")
	require.True(t, ok)
	assert.NotContains(t, person.SpouseIDs, "I1")
	assert.NotContains(t, person.ChildIDs, "I1")
	assert.NotContains(t, person.ParentIDs, "I1")
	assert.Equal(t, []string{"I2"}, person.ChildIDs)
}

func TestExtract_MultiplePartnershipsKeepFamilyOrder(t *testing.T) {
	store := gedcom.Parse(`0 @I1@ INDI
1 FAMS @F2@
1 FAMS @F1@
0 @F1@ FAM
1 HUSB @I1@
1 WIFE @I10@
1 CHIL @I11@
0 @F2@ FAM
1 HUSB @I1@
1 WIFE @I20@
1 CHIL @I21@
1 CHIL @I22@
`)

	person, _ := Extract(store, "I1")
	assert.Equal(t, []string{"I20", "I10"}, person.SpouseIDs)
	assert.Equal(t, []string{"I21", "I22", "I11"}, person.ChildIDs)
}

func TestExtract_Idempotent(t *testing.T) {
	store := loadSample(t)

	for _, id := range store.IndividualIDs() {
		first, _ := Extract(store, id)
		second, _ := Extract(store, id)
		assert.Equal(t, first, second, id)
	}
}

func TestLifeEvents(t *testing.T) {
	p := &Person{BirthDate: "1900", DeathPlace: "Leeds", BaptismDate: ""}
	assert.Equal(t, []LifeEvent{
		{Label: "Birth", Date: "1900"},
		{Label: "Death", Place: "Leeds"},
	}, p.LifeEvents())

	assert.Empty(t, (&Person{}).LifeEvents())
}

func TestSharesParentWith(t *testing.T) {
	a := &Person{ID: "A", ParentIDs: []string{"P1", "P2"}}
	half := &Person{ID: "B", ParentIDs: []string{"P2", "P3"}}
	stranger := &Person{ID: "C", ParentIDs: []string{"P9"}}

	assert.True(t, a.SharesParentWith(half))
	assert.False(t, a.SharesParentWith(stranger))
	assert.False(t, a.SharesParentWith(&Person{}))
}
