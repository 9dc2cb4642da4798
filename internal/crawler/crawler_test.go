package crawler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestScanMedia(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Data/Media/1901/court.jpg")
	writeFile(t, root, "Data/Picture/portrait.png")
	writeFile(t, root, ".git/objects/ab")
	writeFile(t, root, ".cache/thumb.jpg")
	writeFile(t, root, "node_modules/pkg/index.js")

	idx, err := ScanMedia(root)
	require.NoError(t, err)

	t.Run("indexes visible files", func(t *testing.T) {
		assert.Equal(t, 2, idx.Len())
		assert.True(t, idx.Has("Data/Media/1901/court.jpg"))
		assert.True(t, idx.Has("Data/Picture/portrait.png"))
	})

	t.Run("skips hidden and ignored dirs", func(t *testing.T) {
		assert.False(t, idx.Has(".git/objects/ab"))
		assert.False(t, idx.Has(".cache/thumb.jpg"))
		assert.False(t, idx.Has("node_modules/pkg/index.js"))
	})

	t.Run("matching is case-sensitive", func(t *testing.T) {
		assert.False(t, idx.Has("data/media/1901/court.jpg"))
	})

	t.Run("leading slash tolerated", func(t *testing.T) {
		assert.True(t, idx.Has("/Data/Picture/portrait.png"))
	})
}

func TestMediaIndexFilter(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Data/Media/a.jpg")
	writeFile(t, root, "Data/Media/c.jpg")

	idx, err := ScanMedia(root)
	require.NoError(t, err)

	kept, dropped := idx.Filter([]string{"Data/Media/c.jpg", "Data/Media/b.jpg", "Data/Media/a.jpg"})
	assert.Equal(t, []string{"Data/Media/c.jpg", "Data/Media/a.jpg"}, kept)
	assert.Equal(t, 1, dropped)
}

func TestScanMediaMissingRoot(t *testing.T) {
	_, err := ScanMedia(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestNilMediaIndex(t *testing.T) {
	var idx *MediaIndex
	assert.False(t, idx.Has("anything"))
	assert.Zero(t, idx.Len())
}
