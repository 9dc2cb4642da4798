package loader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"pedigree/internal/errors"
	"pedigree/internal/index"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exportSample(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	_, err := index.NewExporter().Export(sampleStore(t), dir)
	require.NoError(t, err)
	return dir
}

func TestDirLoader(t *testing.T) {
	dir := exportSample(t)
	l := NewDirLoader(dir)
	ctx := context.Background()

	p, err := l.LoadPerson(ctx, "I1")
	require.NoError(t, err)
	assert.Equal(t, []string{"I4", "I5"}, p.ParentIDs)
	assert.Equal(t, []string{"I3"}, p.ChildIDs)

	_, err = l.LoadPerson(ctx, "I42")
	assert.True(t, errors.IsNotFound(err))

	m, err := l.LoadIndex()
	require.NoError(t, err)
	assert.Equal(t, 5, m.TotalPeople)
}

func TestDirLoaderRejectsUnsafeIDs(t *testing.T) {
	l := NewDirLoader(exportSample(t))
	for _, id := range []string{"", "..", "../I1", `a\b`, "index"} {
		_, err := l.LoadPerson(context.Background(), id)
		assert.ErrorIs(t, err, errors.ErrInvalidRequest, "id %q", id)
	}
}

func TestDirLoaderCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "I1.json"), []byte("{not json"), 0o644))

	_, err := NewDirLoader(dir).LoadPerson(context.Background(), "I1")
	require.Error(t, err)
	assert.True(t, errors.IsLinkUnresolved(err))
}

func TestDirLoaderFillsMissingLists(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "I9.json"), []byte(`{"id":"I9","name":"Solo"}`), 0o644))

	p, err := NewDirLoader(dir).LoadPerson(context.Background(), "I9")
	require.NoError(t, err)
	assert.Equal(t, []string{}, p.SpouseIDs)
	assert.Equal(t, []string{}, p.ChildIDs)
	assert.Equal(t, []string{}, p.ParentIDs)
	assert.Equal(t, []string{}, p.Photos)
}

func TestHTTPLoader(t *testing.T) {
	dir := exportSample(t)
	srv := httptest.NewServer(http.StripPrefix("/data", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/people/index":
			http.ServeFile(w, r, filepath.Join(dir, "index.json"))
		case "/people/broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			id := filepath.Base(r.URL.Path)
			path := filepath.Join(dir, id+".json")
			if _, err := os.Stat(path); err != nil {
				http.NotFound(w, r)
				return
			}
			http.ServeFile(w, r, path)
		}
	})))
	defer srv.Close()

	l := NewHTTPLoader(srv.URL+"/data/", srv.Client())
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		p, err := l.LoadPerson(ctx, "I2")
		require.NoError(t, err)
		assert.Equal(t, "Jane Smith", p.Name)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := l.LoadPerson(ctx, "I77")
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("server error", func(t *testing.T) {
		_, err := l.LoadPerson(ctx, "broken")
		assert.True(t, errors.IsLinkUnresolved(err))
		assert.False(t, errors.IsNotFound(err))
	})

	t.Run("index", func(t *testing.T) {
		m, err := l.LoadIndex(ctx)
		require.NoError(t, err)
		assert.Equal(t, "I1", m.FirstPersonID)
	})
}

func TestHTTPLoaderUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPLoader(url, nil).LoadPerson(context.Background(), "I1")
	require.Error(t, err)
	assert.True(t, errors.IsLinkUnresolved(err))
}
