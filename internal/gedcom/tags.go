package gedcom

const (
	TagHead       = "HEAD"
	TagTrailer    = "TRLR"
	TagIndividual = "INDI"
	TagFamily     = "FAM"

	TagName  = "NAME"
	TagSex   = "SEX"
	TagDate  = "DATE"
	TagPlace = "PLAC"
	TagEmail = "EMAIL"
	TagPhone = "PHON"

	TagOccupation = "OCCU"
	TagNote       = "NOTE"
	TagFile       = "FILE"

	TagBirth   = "BIRT"
	TagDeath   = "DEAT"
	TagBaptism = "BAPM"
	TagBurial  = "BURI"

	TagCensus    = "CENS"
	TagResidence = "RESI"
	TagObject    = "OBJE"

	TagSpouseFamily = "FAMS"
	TagChildFamily  = "FAMC"
	TagHusband      = "HUSB"
	TagWife         = "WIFE"
	TagChild        = "CHIL"
)

type tagKind int

const (
	tagUnknown tagKind = iota
	tagScalar
	tagList
	tagSingle
	tagRepeat
	tagPointer
	tagPointerList
)

// tagKinds is matched exactly: "Name" or "name" are unknown tags.
var tagKinds = map[string]tagKind{
	TagName:  tagScalar,
	TagSex:   tagScalar,
	TagDate:  tagScalar,
	TagPlace: tagScalar,
	TagEmail: tagScalar,
	TagPhone: tagScalar,

	TagOccupation: tagList,
	TagNote:       tagList,
	TagFile:       tagList,

	TagBirth:   tagSingle,
	TagDeath:   tagSingle,
	TagBaptism: tagSingle,
	TagBurial:  tagSingle,

	TagCensus:    tagRepeat,
	TagResidence: tagRepeat,
	TagObject:    tagRepeat,

	TagHusband: tagPointer,
	TagWife:    tagPointer,

	TagSpouseFamily: tagPointerList,
	TagChildFamily:  tagPointerList,
	TagChild:        tagPointerList,
}
