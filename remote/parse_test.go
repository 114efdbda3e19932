package remote

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDirectoryListing(t *testing.T) {
	out := `          -1 2025-10-31 10:33:09        -1 Movies
          -1 2025-10-31 10:33:09        -1 TV Shows
          -1 2025-10-31 10:33:09        -1 Concerts (Blu-ray)`

	dirs := ParseDirectoryListing(out)
	assert.Equal(t, []string{"Movies", "TV Shows", "Concerts (Blu-ray)"}, dirs)
}

func TestParseDirectoryListingSkipsGarbage(t *testing.T) {
	out := "\n   \nshort line\n          -1 2025-10-31 10:33:09        -1 Good\n"
	dirs := ParseDirectoryListing(out)
	assert.Equal(t, []string{"Good"}, dirs)
}

func TestParseDirectoryListingEmpty(t *testing.T) {
	assert.Empty(t, ParseDirectoryListing(""))
	assert.Empty(t, ParseDirectoryListing("   \n  "))
}

func TestParseFileListing(t *testing.T) {
	out := ` 12345678901 Some Movie (2009).mkv
  4700000000 Disc Image.iso
       99 short.mp4`

	files := ParseFileListing(out)
	assert.Len(t, files, 3)
	assert.Equal(t, Entry{Name: "Some Movie (2009).mkv", SizeBytes: 12345678901}, files[0])
	assert.Equal(t, Entry{Name: "Disc Image.iso", SizeBytes: 4700000000}, files[1])
	assert.Equal(t, Entry{Name: "short.mp4", SizeBytes: 99}, files[2])
}

func TestParseFileListingSkipsUnparseableLines(t *testing.T) {
	out := "notanumber file.mkv\n 100 good.mkv\n12345\n"
	files := ParseFileListing(out)
	assert.Len(t, files, 1)
	assert.Equal(t, "good.mkv", files[0].Name)
}

func TestParseFileListingNameWithLeadingSpacesPreserved(t *testing.T) {
	files := ParseFileListing(" 500  double  spaced name.mkv")
	assert.Len(t, files, 1)
	assert.Equal(t, "double  spaced name.mkv", files[0].Name)
	assert.Equal(t, int64(500), files[0].SizeBytes)
}
