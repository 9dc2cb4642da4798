package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"pedigree/internal/gedcom"
	"pedigree/internal/graph"
	"pedigree/internal/index"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const fixture = "../resolver/testdata/family.ged"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store, err := gedcom.ParseFile(fixture)
	require.NoError(t, err)
	log := zaptest.NewLogger(t).Sugar()
	return New(SnapshotFromStore(store, 4, log), WithLogger(log))
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestGetIndex(t *testing.T) {
	rec := get(t, newTestServer(t), "/people/index")
	require.Equal(t, http.StatusOK, rec.Code)

	m := decode[index.Manifest](t, rec)
	assert.Equal(t, 13, m.TotalPeople)
	assert.Equal(t, "I1", m.FirstPersonID)
}

func TestGetPerson(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/people/I6")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "Daniel Hale", body["name"])
	assert.Equal(t, "Leeds", body["birthPlace"])
	assert.Equal(t, 1, s.Snapshot().Cache.Len())

	rec = get(t, s, "/people/I404")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["error"], "not found")
}

func TestGetFamily(t *testing.T) {
	rec := get(t, newTestServer(t), "/people/I6/family")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Person        map[string]any      `json:"person"`
		Family        []map[string]any    `json:"family"`
		Relationships map[string][]string `json:"relationships"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "I6", body.Person["id"])
	assert.Len(t, body.Family, 12)
	assert.Equal(t, []string{"I7", "I8", "I13"}, body.Relationships["siblings"])
}

func TestGetGraph(t *testing.T) {
	rec := get(t, newTestServer(t), "/people/I6/graph")
	require.Equal(t, http.StatusOK, rec.Code)

	g := decode[graph.Graph](t, rec)
	assert.Len(t, g.Nodes, 17)
	assert.Len(t, g.Edges, 16)
}

func TestGetGraphNotFound(t *testing.T) {
	rec := get(t, newTestServer(t), "/people/nobody/graph")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetRelate(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		target string
		status int
		want   string
	}{
		{"cousin chain", "/relate?from=I11&to=I7", http.StatusOK, "great-aunt/uncle"},
		{"in-law", "/relate?from=I9&to=I3", http.StatusOK, "parent-in-law"},
		{"hop limit", "/relate?from=I1&to=I11&max_hops=2", http.StatusNotFound, ""},
		{"missing to", "/relate?from=I1", http.StatusBadRequest, ""},
		{"bad hops", "/relate?from=I1&to=I2&max_hops=abc", http.StatusBadRequest, ""},
		{"hops out of range", "/relate?from=I1&to=I2&max_hops=500", http.StatusBadRequest, ""},
		{"unknown person", "/relate?from=I1&to=I99", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s, tt.target)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.want != "" {
				assert.Equal(t, tt.want, decode[relateResponse](t, rec).Description)
			}
		})
	}
}

func TestSwapKeepsServing(t *testing.T) {
	s := newTestServer(t)
	store := gedcom.Parse("0 @X1@ INDI\n1 NAME Solo /Person/\n")

	old := s.Swap(SnapshotFromStore(store, 1, nil))
	require.NotNil(t, old)

	assert.Equal(t, http.StatusNotFound, get(t, s, "/people/I6").Code)
	assert.Equal(t, http.StatusOK, get(t, s, "/people/X1").Code)
}

func TestReload(t *testing.T) {
	s := newTestServer(t)
	path := filepath.Join(t.TempDir(), "tree.ged")
	require.NoError(t, os.WriteFile(path, []byte("0 @N1@ INDI\n1 NAME New /One/\n"), 0o644))

	require.NoError(t, s.Reload(path))
	assert.Equal(t, 1, s.Snapshot().Manifest.TotalPeople)

	assert.Error(t, s.Reload(filepath.Join(t.TempDir(), "missing.ged")))
	assert.Equal(t, 1, s.Snapshot().Manifest.TotalPeople, "failed reload keeps the old snapshot")
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.ged")
	require.NoError(t, os.WriteFile(path, []byte("0 @A@ INDI\n"), 0o644))

	// Reloads run on timer goroutines that may outlive the test, so no
	// test-bound logger here.
	s := New(SnapshotFromStore(gedcom.Parse("0 @A@ INDI\n"), 1, nil))
	w, err := NewWatcher(path, func() error { return s.Reload(path) }, nil)
	require.NoError(t, err)
	w.SetDebounce(20 * time.Millisecond)
	w.Start()
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("0 @A@ INDI\n0 @B@ INDI\n"), 0o644))

	assert.Eventually(t, func() bool {
		return s.Snapshot().Manifest.TotalPeople == 2
	}, 5*time.Second, 20*time.Millisecond)
}

func TestStartAndShutdown(t *testing.T) {
	s := New(SnapshotFromStore(gedcom.Parse(""), 1, nil))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Start(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
