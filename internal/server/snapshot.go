package server

import (
	"time"

	"pedigree/internal/gedcom"
	"pedigree/internal/index"
	"pedigree/internal/loader"
	"pedigree/internal/resolver"

	"go.uber.org/zap"
)

// Snapshot is one immutable generation of served data. The cache inside it
// only grows; a reload builds a new Snapshot instead of clearing it.
type Snapshot struct {
	Loader   loader.Loader
	Cache    *loader.Cache
	Resolver *resolver.Resolver
	Manifest *index.Manifest
	LoadedAt time.Time
}

// NewSnapshot serves people from l, listing ids in the manifest.
func NewSnapshot(l loader.Loader, ids []string, concurrency int, log *zap.SugaredLogger) *Snapshot {
	cache := loader.NewCache(l)
	return &Snapshot{
		Loader: l,
		Cache:  cache,
		Resolver: resolver.New(cache,
			resolver.WithConcurrency(concurrency),
			resolver.WithLogger(log),
		),
		Manifest: index.NewManifest(ids),
		LoadedAt: time.Now(),
	}
}

// SnapshotFromStore serves a parsed record store.
func SnapshotFromStore(store *gedcom.Store, concurrency int, log *zap.SugaredLogger) *Snapshot {
	return NewSnapshot(loader.NewMemoryLoader(store), store.IndividualIDs(), concurrency, log)
}
