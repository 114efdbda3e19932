package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	return logrus.NewEntry(l)
}

func tempStatePath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "upload_state.json")
}

func TestLoadMissingFileStartsFresh(t *testing.T) {
	s := Load(tempStatePath(t), testLog())
	assert.Equal(t, 0, s.CompletedCount())
	assert.Equal(t, 0, s.FailedCount())
	assert.Equal(t, StatusNotStarted, s.StatusOf("movies/a.mkv"))
}

func TestMarkCompletedRoundTrip(t *testing.T) {
	path := tempStatePath(t)
	s := Load(path, testLog())
	s.MarkCompleted("movies/a.mkv", 1500, "media/a.mkv")

	assert.True(t, s.IsCompleted("movies/a.mkv"))
	assert.Equal(t, 1, s.Stats().TotalUploaded)
	assert.Equal(t, int64(1500), s.Stats().TotalBytes)

	// A fresh load sees the same outcome.
	s2 := Load(path, testLog())
	assert.True(t, s2.IsCompleted("movies/a.mkv"))
	assert.Equal(t, StatusCompleted, s2.StatusOf("movies/a.mkv"))
	assert.Equal(t, int64(1500), s2.Stats().TotalBytes)
}

func TestMarkCompletedIsIdempotentForCounters(t *testing.T) {
	s := Load(tempStatePath(t), testLog())
	s.MarkCompleted("movies/a.mkv", 1500, "media/a.mkv")
	s.MarkCompleted("movies/a.mkv", 1500, "media/a.mkv")

	assert.Equal(t, 1, s.Stats().TotalUploaded)
	assert.Equal(t, int64(1500), s.Stats().TotalBytes)
	assert.Equal(t, 1, s.CompletedCount())
}

func TestMarkFailedAccumulatesAttempts(t *testing.T) {
	s := Load(tempStatePath(t), testLog())
	s.MarkFailed("movies/b.mkv", "download stalled")
	s.MarkFailed("movies/b.mkv", "upload failed")

	assert.True(t, s.IsFailed("movies/b.mkv"))
	assert.Equal(t, 2, s.FailureCount("movies/b.mkv"))
	assert.Equal(t, 2, s.Stats().TotalFailed)
	assert.Equal(t, "upload failed", s.doc.Records["movies/b.mkv"].LastError)
	assert.NotEmpty(t, s.doc.Records["movies/b.mkv"].FirstFailed)
}

func TestShouldRetryRespectsMaxFailures(t *testing.T) {
	s := Load(tempStatePath(t), testLog())

	assert.True(t, s.ShouldRetry("movies/c.mkv", 3))

	s.MarkFailed("movies/c.mkv", "err")
	s.MarkFailed("movies/c.mkv", "err")
	assert.True(t, s.ShouldRetry("movies/c.mkv", 3))

	s.MarkFailed("movies/c.mkv", "err")
	assert.False(t, s.ShouldRetry("movies/c.mkv", 3))
}

func TestFailureThenSuccessClearsFailedState(t *testing.T) {
	s := Load(tempStatePath(t), testLog())
	s.MarkFailed("movies/d.mkv", "err")
	s.MarkCompleted("movies/d.mkv", 900, "media/d.mkv")

	assert.True(t, s.IsCompleted("movies/d.mkv"))
	assert.False(t, s.IsFailed("movies/d.mkv"))
	assert.Equal(t, 0, s.FailureCount("movies/d.mkv"))
}

func TestInProgressSurvivesCrash(t *testing.T) {
	path := tempStatePath(t)
	s := Load(path, testLog())
	s.MarkInProgress("movies/e.mkv", 2000)

	// Simulate a crash: reload from disk without marking an outcome.
	s2 := Load(path, testLog())
	stale, ok := s2.InProgressPath()
	assert.True(t, ok)
	assert.Equal(t, "movies/e.mkv", stale)
	assert.Equal(t, StatusInProgress, s2.StatusOf("movies/e.mkv"))

	// The file is not completed, so a new run picks it up again.
	assert.False(t, s2.IsCompleted("movies/e.mkv"))
}

func TestOutcomeClearsInProgressSlot(t *testing.T) {
	s := Load(tempStatePath(t), testLog())
	s.MarkInProgress("movies/f.mkv", 100)
	s.MarkCompleted("movies/f.mkv", 100, "media/f.mkv")

	_, ok := s.InProgressPath()
	assert.False(t, ok)
	assert.Equal(t, StatusCompleted, s.StatusOf("movies/f.mkv"))
}

func TestMarkSkippedIsIdempotent(t *testing.T) {
	s := Load(tempStatePath(t), testLog())
	s.MarkSkipped("movies/g.iso", "insufficient disk space")
	s.MarkSkipped("movies/g.iso", "insufficient disk space")

	assert.Equal(t, 1, s.SkippedCount())
	assert.Equal(t, StatusSkipped, s.StatusOf("movies/g.iso"))
}

func TestCorruptStateFileStartsFresh(t *testing.T) {
	path := tempStatePath(t)
	assert.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	s := Load(path, testLog())
	assert.Equal(t, 0, s.CompletedCount())
	assert.Equal(t, StatusNotStarted, s.StatusOf("anything"))
}

func TestPersistIsAtomic(t *testing.T) {
	path := tempStatePath(t)
	s := Load(path, testLog())
	s.MarkCompleted("movies/h.mkv", 1, "media/h.mkv")

	// No temp file should linger after a successful flush.
	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestMigrateV1PreservesOutcomes(t *testing.T) {
	v1 := `{
		"version": "1.0",
		"completed": ["movies/old.mkv", "shows/old.iso"],
		"failed": {
			"movies/bad.mkv": {
				"attempts": 4,
				"last_error": "all 5 download attempts failed",
				"first_failed": "2025-01-01T00:00:00Z",
				"last_failed": "2025-01-02T00:00:00Z"
			}
		},
		"skipped": ["movies/tiny.mp4"],
		"stats": {"total_uploaded": 2, "total_failed": 4, "total_bytes": 123456}
	}`

	path := tempStatePath(t)
	assert.NoError(t, os.WriteFile(path, []byte(v1), 0644))

	s := Load(path, testLog())
	assert.True(t, s.IsCompleted("movies/old.mkv"))
	assert.True(t, s.IsCompleted("shows/old.iso"))
	assert.True(t, s.IsFailed("movies/bad.mkv"))
	assert.Equal(t, 4, s.FailureCount("movies/bad.mkv"))
	assert.False(t, s.ShouldRetry("movies/bad.mkv", 3))
	assert.Equal(t, 1, s.SkippedCount())
	assert.Equal(t, 2, s.Stats().TotalUploaded)
	assert.Equal(t, int64(123456), s.Stats().TotalBytes)
}

func TestMigrateV1RewritesAsV2(t *testing.T) {
	v1 := `{"version": "1.0", "completed": ["a.mkv"], "failed": {}}`
	path := tempStatePath(t)
	assert.NoError(t, os.WriteFile(path, []byte(v1), 0644))

	s := Load(path, testLog())
	s.SetRunId("run-1")

	// The flushed file must parse as the current schema.
	s2 := Load(path, testLog())
	assert.Equal(t, schemaVersion, s2.doc.Version)
	assert.True(t, s2.IsCompleted("a.mkv"))
	assert.Equal(t, "run-1", s2.Stats().LastRunId)
}

func TestMissingVersionTreatedAsV1(t *testing.T) {
	legacy := `{"completed": ["b.mkv"]}`
	path := tempStatePath(t)
	assert.NoError(t, os.WriteFile(path, []byte(legacy), 0644))

	s := Load(path, testLog())
	assert.True(t, s.IsCompleted("b.mkv"))
}
