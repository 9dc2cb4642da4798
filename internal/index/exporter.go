// Package index builds record stores from pedigree files and exports them as
// static per-person JSON with an id manifest.
package index

import (
	"encoding/json"
	"os"
	"path/filepath"

	"pedigree/internal/crawler"
	"pedigree/internal/errors"
	"pedigree/internal/extractor"
	"pedigree/internal/gedcom"
	"pedigree/internal/logger"

	"go.uber.org/zap"
)

// ManifestName is the file name of the id manifest inside an export dir.
const ManifestName = "index"

// Manifest lists every exported person id in parse order.
type Manifest struct {
	TotalPeople   int      `json:"totalPeople"`
	FirstPersonID string   `json:"firstPersonId"`
	AllIDs        []string `json:"allIds"`
}

// ExportReport summarizes one export run.
type ExportReport struct {
	Dir           string
	People        int
	FirstPersonID string
	// MissingMedia counts photo references dropped because the file was
	// absent from the media index.
	MissingMedia int
}

// Exporter writes a record store out as static JSON.
type Exporter struct {
	media  *crawler.MediaIndex
	logger *zap.SugaredLogger
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithMedia drops photo paths that are not present in idx.
func WithMedia(idx *crawler.MediaIndex) Option {
	return func(e *Exporter) { e.media = idx }
}

// WithLogger sets the exporter's logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(e *Exporter) { e.logger = logger.OrNop(l) }
}

// NewExporter creates an exporter.
func NewExporter(opts ...Option) *Exporter {
	e := &Exporter{logger: logger.OrNop(nil)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BuildStore parses the pedigree file at path.
func BuildStore(path string) (*gedcom.Store, error) {
	store, err := gedcom.ParseFile(path)
	if err != nil {
		return nil, errors.WithHint(err, "check source.ged_file in pedigree.yaml")
	}
	return store, nil
}

// Export writes <dir>/<id>.json for every individual and then
// <dir>/index.json.
func (e *Exporter) Export(store *gedcom.Store, dir string) (*ExportReport, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create export dir %s", dir)
	}

	ids := store.IndividualIDs()
	report := &ExportReport{Dir: dir}

	for _, id := range ids {
		p, ok := extractor.Extract(store, id)
		if !ok {
			continue
		}
		if e.media != nil {
			var dropped int
			p.Photos, dropped = e.media.Filter(p.Photos)
			if dropped > 0 {
				e.logger.Debugw("dropped missing media",
					logger.FieldPersonID, id,
					logger.FieldCount, dropped,
				)
			}
			report.MissingMedia += dropped
		}
		if err := writeJSON(filepath.Join(dir, id+".json"), p); err != nil {
			return nil, errors.Wrapf(err, "export person %s", id)
		}
		report.People++
	}

	manifest := NewManifest(ids)
	report.FirstPersonID = manifest.FirstPersonID
	if err := SaveManifest(dir, manifest); err != nil {
		return nil, err
	}

	e.logger.Infow("export complete",
		logger.FieldPath, dir,
		logger.FieldCount, report.People,
		"missing_media", report.MissingMedia,
	)
	return report, nil
}

// NewManifest builds a manifest for ids, keeping their order.
func NewManifest(ids []string) *Manifest {
	m := &Manifest{
		TotalPeople: len(ids),
		AllIDs:      append([]string{}, ids...),
	}
	if len(ids) > 0 {
		m.FirstPersonID = ids[0]
	}
	return m
}

// SaveManifest writes <dir>/index.json.
func SaveManifest(dir string, m *Manifest) error {
	if err := writeJSON(filepath.Join(dir, ManifestName+".json"), m); err != nil {
		return errors.Wrap(err, "write manifest")
	}
	return nil
}

// LoadManifest reads <dir>/index.json.
func LoadManifest(dir string) (*Manifest, error) {
	f, err := os.Open(filepath.Join(dir, ManifestName+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(errors.ErrNotFound, "manifest in %s", dir)
		}
		return nil, errors.Wrap(err, "open manifest")
	}
	defer f.Close()

	var m Manifest
	if err := json.NewDecoder(f).Decode(&m); err != nil {
		return nil, errors.Wrap(err, "decode manifest")
	}
	if m.AllIDs == nil {
		m.AllIDs = []string{}
	}
	return &m, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
