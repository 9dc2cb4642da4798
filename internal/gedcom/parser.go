package gedcom

import (
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"pedigree/internal/errors"
)

// linePattern matches "<level> [@xref@] <tag> [value]".
var linePattern = regexp.MustCompile(`^(\d+)\s+(@[^@]+@\s+)?(.+)$`)

const byteOrderMark = "\ufeff"

// Parse reads a whole pedigree file and returns its INDI and FAM records.
// It never fails: lines that do not match the line grammar, unknown tags and
// INDI/FAM headers without an xref are dropped.
func Parse(text string) *Store {
	p := &parser{store: NewStore()}
	text = strings.TrimPrefix(text, byteOrderMark)
	for _, raw := range strings.Split(text, "\n") {
		p.feed(raw)
	}
	return p.store
}

// ParseReader reads r fully and parses it.
func ParseReader(r io.Reader) (*Store, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read records")
	}
	return Parse(string(data)), nil
}

// ParseFile loads and parses a file from disk.
func ParseFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return Parse(string(data)), nil
}

type parser struct {
	store   *Store
	current *Record
	// stack[i] is the attachment point for lines at level i+1. A nil entry
	// swallows everything nested under a line that opened no structure.
	stack []*Attrs
}

func (p *parser) feed(raw string) {
	line := strings.TrimSpace(raw)
	if line == "" {
		return
	}

	m := linePattern.FindStringSubmatch(line)
	if m == nil {
		return
	}

	level, err := strconv.Atoi(m[1])
	if err != nil {
		return
	}
	xref := stripPointer(m[2])
	tag, value := splitTag(m[3])

	if level == 0 {
		p.openRecord(tag, xref)
		return
	}

	if p.current == nil {
		return
	}

	for len(p.stack) > level {
		p.stack = p.stack[:len(p.stack)-1]
	}
	parent := p.stack[len(p.stack)-1]
	p.stack = append(p.stack, attach(parent, tag, value))
}

func (p *parser) openRecord(tag, xref string) {
	p.current = nil
	p.stack = p.stack[:0]

	var kind Kind
	switch tag {
	case TagIndividual:
		kind = KindIndividual
	case TagFamily:
		kind = KindFamily
	default:
		// HEAD, TRLR and any other top-level record close the open one.
		return
	}
	if xref == "" {
		return
	}

	rec := &Record{ID: xref, Kind: kind, Attrs: newAttrs()}
	p.store.register(rec)
	p.current = rec
	p.stack = append(p.stack, rec.Attrs)
}

// attach applies one line to parent and returns the attachment point for the
// lines nested beneath it.
func attach(parent *Attrs, tag, value string) *Attrs {
	if parent == nil {
		return nil
	}

	switch tagKinds[tag] {
	case tagScalar:
		parent.setScalar(tag, value)
	case tagList:
		parent.appendList(tag, value)
	case tagSingle:
		return parent.single(tag)
	case tagRepeat:
		return parent.appendRepeat(tag)
	case tagPointer:
		if id := stripPointer(value); id != "" {
			parent.setScalar(tag, id)
		}
	case tagPointerList:
		if id := stripPointer(value); id != "" {
			parent.appendList(tag, id)
		}
	}
	return nil
}

func splitTag(rest string) (tag, value string) {
	i := strings.IndexAny(rest, " \t")
	if i < 0 {
		return rest, ""
	}
	return rest[:i], strings.TrimSpace(rest[i+1:])
}

func stripPointer(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "@", ""))
}
