package manifest

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Copi24/ftptogpmc/remote"
)

type fakeLister struct {
	dirs  map[string][]string
	files map[string][]remote.Entry
}

func (l *fakeLister) ListDirectories(_ context.Context, path string) ([]string, error) {
	return l.dirs[path], nil
}

func (l *fakeLister) ListFiles(_ context.Context, path string) ([]remote.Entry, error) {
	return l.files[path], nil
}

func testLister() *fakeLister {
	return &fakeLister{
		dirs: map[string][]string{
			"":       {"Movies", "TV Shows"},
			"Movies": {"Extras"},
		},
		files: map[string][]remote.Entry{
			"":              {{Name: "readme.txt", SizeBytes: 10}},
			"Movies":        {{Name: "a.mkv", SizeBytes: 1000}, {Name: "b.iso", SizeBytes: 2000}},
			"Movies/Extras": {{Name: "extra.mkv", SizeBytes: 300}},
			"TV Shows":      {{Name: "pilot.mkv", SizeBytes: 500}},
		},
	}
}

func TestScanRollsUpTotals(t *testing.T) {
	root, err := Scan(context.Background(), testLister(), "")
	require.NoError(t, err)

	assert.Equal(t, "root", root.Name)
	assert.Equal(t, 5, root.TotalFiles)
	assert.Equal(t, int64(10+1000+2000+300+500), root.TotalSize)

	require.Len(t, root.Subdirectories, 2)
	movies := root.Subdirectories[0]
	assert.Equal(t, "Movies", movies.Name)
	assert.Equal(t, 3, movies.TotalFiles)
	assert.Equal(t, int64(3300), movies.TotalSize)

	require.Len(t, movies.Subdirectories, 1)
	extras := movies.Subdirectories[0]
	assert.Equal(t, "Movies/Extras", extras.Path)
	assert.Equal(t, 1, extras.TotalFiles)
	assert.Equal(t, "Movies/Extras/extra.mkv", extras.Files[0].Path)
}

func TestScanStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Scan(ctx, testLister(), "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRenderTextShowsTreeStructure(t *testing.T) {
	root, err := Scan(context.Background(), testLister(), "")
	require.NoError(t, err)

	out := RenderText(root)
	assert.Contains(t, out, "root/ (5 files")
	assert.Contains(t, out, "├── readme.txt (10 B)")
	assert.Contains(t, out, "│   ├── a.mkv")
	assert.Contains(t, out, "└── TV Shows/ (1 files")
	assert.Contains(t, out, "extra.mkv (300 B)")
}

func TestWriteJSONRoundTrip(t *testing.T) {
	root, err := Scan(context.Background(), testLister(), "")
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, WriteJSON(root, "3DFF", out))

	b, err := os.ReadFile(out)
	require.NoError(t, err)

	var doc Document
	require.NoError(t, json.Unmarshal(b, &doc))
	assert.Equal(t, "3DFF", doc.Metadata.Remote)
	assert.NotEmpty(t, doc.Metadata.GeneratedAt)
	assert.Equal(t, 5, doc.Statistics.TotalFiles)
	assert.Equal(t, int64(3810), doc.Statistics.TotalSizeBytes)
	assert.Equal(t, "directory", doc.Structure.Type)

	// Atomic write leaves no temp file behind.
	_, err = os.Stat(out + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
