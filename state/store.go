package state

import (
	"encoding/json"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusSkipped    Status = "skipped"
)

const schemaVersion = "2.0"

// Record tracks the outcome of one remote file, keyed by its full remote path.
type Record struct {
	Status      Status `json:"status"`
	SizeBytes   int64  `json:"size_bytes"`
	MediaKey    string `json:"media_key,omitempty"`
	Attempts    int    `json:"attempts,omitempty"`
	LastError   string `json:"last_error,omitempty"`
	FirstFailed string `json:"first_failed,omitempty"`
	LastFailed  string `json:"last_failed,omitempty"`
	LastUpdated string `json:"last_updated"`
}

// InProgress is the single advisory slot for the file currently being
// processed. It exists for crash diagnosis, not mutual exclusion.
type InProgress struct {
	Path      string `json:"path"`
	SizeBytes int64  `json:"size"`
	StartedAt string `json:"started_at"`
}

type Stats struct {
	TotalUploaded int    `json:"total_uploaded"`
	TotalFailed   int    `json:"total_failed"`
	TotalBytes    int64  `json:"total_bytes"`
	LastRunId     string `json:"last_run_id,omitempty"`
}

type document struct {
	Version     string             `json:"version"`
	LastUpdated string             `json:"last_updated"`
	Records     map[string]*Record `json:"records"`
	InProgress  *InProgress        `json:"in_progress"`
	Skipped     []string           `json:"skipped"`
	Stats       Stats              `json:"stats"`
}

// Store is the durable record of per-file transfer outcomes. State lives in
// memory and is flushed to disk after every mutation; a flush failure is
// logged and swallowed so the in-memory state stays authoritative for the
// rest of the process lifetime.
type Store struct {
	path string
	log  *logrus.Entry
	doc  document
}

func Load(path string, log *logrus.Entry) *Store {
	s := &Store{
		path: path,
		log:  log,
		doc:  newDocument(),
	}

	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s
	}
	if err != nil {
		log.Warn("Could not read state file - starting fresh: ", err)
		return s
	}

	doc, err := parseDocument(b)
	if err != nil {
		log.Warn("Could not parse state file - starting fresh: ", err)
		return s
	}
	s.doc = *doc
	return s
}

func newDocument() document {
	return document{
		Version:     schemaVersion,
		LastUpdated: nowStamp(),
		Records:     make(map[string]*Record),
		Skipped:     make([]string, 0),
	}
}

func nowStamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// StatusOf reports the effective status of a path. The advisory in-progress
// slot wins over the stored record so a crash mid-transfer is visible on
// the next load.
func (s *Store) StatusOf(path string) Status {
	if s.doc.InProgress != nil && s.doc.InProgress.Path == path {
		return StatusInProgress
	}
	if r, ok := s.doc.Records[path]; ok {
		return r.Status
	}
	return StatusNotStarted
}

func (s *Store) IsCompleted(path string) bool {
	r, ok := s.doc.Records[path]
	return ok && r.Status == StatusCompleted
}

func (s *Store) IsFailed(path string) bool {
	r, ok := s.doc.Records[path]
	return ok && r.Status == StatusFailed
}

func (s *Store) FailureCount(path string) int {
	if r, ok := s.doc.Records[path]; ok {
		return r.Attempts
	}
	return 0
}

// ShouldRetry is true when the path never failed or has failed fewer than
// maxFailures times. Completed paths are terminal and handled separately.
func (s *Store) ShouldRetry(path string, maxFailures int) bool {
	if !s.IsFailed(path) {
		return true
	}
	return s.FailureCount(path) < maxFailures
}

func (s *Store) MarkInProgress(path string, sizeBytes int64) {
	s.doc.InProgress = &InProgress{
		Path:      path,
		SizeBytes: sizeBytes,
		StartedAt: nowStamp(),
	}
	if r, ok := s.doc.Records[path]; ok {
		r.Status = StatusInProgress
		r.LastUpdated = nowStamp()
	}
	s.persist()
}

func (s *Store) MarkCompleted(path string, sizeBytes int64, mediaKey string) {
	if r, ok := s.doc.Records[path]; !ok || r.Status != StatusCompleted {
		s.doc.Stats.TotalUploaded++
		s.doc.Stats.TotalBytes += sizeBytes
	}
	s.doc.Records[path] = &Record{
		Status:      StatusCompleted,
		SizeBytes:   sizeBytes,
		MediaKey:    mediaKey,
		LastUpdated: nowStamp(),
	}
	s.doc.InProgress = nil
	s.persist()
}

func (s *Store) MarkFailed(path string, reason string) {
	r, ok := s.doc.Records[path]
	if !ok {
		r = &Record{FirstFailed: nowStamp()}
		s.doc.Records[path] = r
	}
	if r.FirstFailed == "" {
		r.FirstFailed = nowStamp()
	}
	r.Status = StatusFailed
	r.Attempts++
	r.LastError = reason
	r.LastFailed = nowStamp()
	r.LastUpdated = nowStamp()
	s.doc.Stats.TotalFailed++

	s.doc.InProgress = nil
	s.persist()
}

func (s *Store) MarkSkipped(path string, reason string) {
	found := false
	for _, p := range s.doc.Skipped {
		if p == path {
			found = true
			break
		}
	}
	if !found {
		s.doc.Skipped = append(s.doc.Skipped, path)
	}
	if _, ok := s.doc.Records[path]; !ok {
		s.doc.Records[path] = &Record{
			Status:      StatusSkipped,
			LastError:   reason,
			LastUpdated: nowStamp(),
		}
	}
	s.doc.InProgress = nil
	s.persist()
}

func (s *Store) SetRunId(runId string) {
	s.doc.Stats.LastRunId = runId
	s.persist()
}

func (s *Store) InProgressPath() (string, bool) {
	if s.doc.InProgress == nil {
		return "", false
	}
	return s.doc.InProgress.Path, true
}

func (s *Store) Stats() Stats {
	return s.doc.Stats
}

func (s *Store) CompletedCount() int {
	n := 0
	for _, r := range s.doc.Records {
		if r.Status == StatusCompleted {
			n++
		}
	}
	return n
}

func (s *Store) FailedCount() int {
	n := 0
	for _, r := range s.doc.Records {
		if r.Status == StatusFailed {
			n++
		}
	}
	return n
}

func (s *Store) SkippedCount() int {
	return len(s.doc.Skipped)
}

// persist writes the whole document to a temp file and renames it over the
// real one so a crash mid-write never leaves a torn state file behind.
func (s *Store) persist() {
	s.doc.LastUpdated = nowStamp()

	b, err := json.MarshalIndent(&s.doc, "", "  ")
	if err != nil {
		s.swallowPersistError(err)
		return
	}

	tmp := s.path + ".tmp"
	if err = os.WriteFile(tmp, b, 0644); err != nil {
		s.swallowPersistError(err)
		return
	}
	if err = os.Rename(tmp, s.path); err != nil {
		s.swallowPersistError(err)
	}
}

func (s *Store) swallowPersistError(err error) {
	s.log.Warn("Could not save state: ", err)
	sentry.CaptureException(err)
}
