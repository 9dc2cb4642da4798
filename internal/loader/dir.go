package loader

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"pedigree/internal/errors"
	"pedigree/internal/extractor"
	"pedigree/internal/index"
)

// DirLoader reads people from an export directory: one <id>.json per person
// plus index.json.
type DirLoader struct {
	dir string
}

func NewDirLoader(dir string) *DirLoader {
	return &DirLoader{dir: dir}
}

func (d *DirLoader) LoadPerson(ctx context.Context, id string) (*extractor.Person, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "load person %s", id), errors.ErrLinkUnresolved)
	}
	if !isPlainID(id) {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "person id %q", id)
	}

	data, err := os.ReadFile(filepath.Join(d.dir, id+".json"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrapf(errors.ErrNotFound, "person %s", id)
	}
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "load person %s", id), errors.ErrLinkUnresolved)
	}

	p, err := decodePerson(data)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "decode person %s", id), errors.ErrLinkUnresolved)
	}
	return p, nil
}

// LoadIndex reads the export's index.json.
func (d *DirLoader) LoadIndex() (*index.Manifest, error) {
	return index.LoadManifest(d.dir)
}

// isPlainID rejects ids that could escape the export directory or collide
// with the manifest file.
func isPlainID(id string) bool {
	if id == "" || id == "." || id == ".." || id == index.ManifestName {
		return false
	}
	return !strings.ContainsAny(id, `/\`)
}

func decodePerson(data []byte) (*extractor.Person, error) {
	var p extractor.Person
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	if p.ID == "" {
		return nil, errors.New("person record has no id")
	}
	if p.SpouseIDs == nil {
		p.SpouseIDs = []string{}
	}
	if p.ChildIDs == nil {
		p.ChildIDs = []string{}
	}
	if p.ParentIDs == nil {
		p.ParentIDs = []string{}
	}
	if p.Photos == nil {
		p.Photos = []string{}
	}
	return &p, nil
}
