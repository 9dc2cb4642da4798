// Package storage persists normalized people in SQLite.
package storage

import (
	"context"

	"pedigree/internal/extractor"
	"pedigree/internal/loader"
)

// PersonStore persists snapshots of normalized people.
type PersonStore interface {
	loader.Loader

	// SavePersons replaces the stored snapshot with people.
	SavePersons(ctx context.Context, people []*extractor.Person) error

	// ListIDs returns stored ids in the order they were saved.
	ListIDs(ctx context.Context) ([]string, error)

	Close() error
}

var _ PersonStore = (*SQLiteStore)(nil)
