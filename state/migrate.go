package state

import (
	"encoding/json"
	"strings"
)

// v1 state files carry completed paths as a flat list with no metadata and
// failures in a separate map. They are upgraded in place before any other
// operation touches the store.
type v1Document struct {
	Version     string               `json:"version"`
	LastUpdated string               `json:"last_updated"`
	Completed   []string             `json:"completed"`
	Failed      map[string]v1Failure `json:"failed"`
	InProgress  *InProgress          `json:"in_progress"`
	Skipped     []string             `json:"skipped"`
	Stats       Stats                `json:"stats"`
}

type v1Failure struct {
	Attempts    int    `json:"attempts"`
	LastError   string `json:"last_error"`
	FirstFailed string `json:"first_failed"`
	LastFailed  string `json:"last_failed"`
}

func parseDocument(b []byte) (*document, error) {
	var probe struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(b, &probe); err != nil {
		return nil, err
	}

	if strings.HasPrefix(probe.Version, "1.") || probe.Version == "" {
		return migrateV1(b)
	}

	doc := newDocument()
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	if doc.Records == nil {
		doc.Records = make(map[string]*Record)
	}
	if doc.Skipped == nil {
		doc.Skipped = make([]string, 0)
	}
	return &doc, nil
}

func migrateV1(b []byte) (*document, error) {
	var old v1Document
	if err := json.Unmarshal(b, &old); err != nil {
		return nil, err
	}

	doc := newDocument()
	migratedAt := nowStamp()

	// Completed paths had no metadata in v1: media key unknown, size zero.
	for _, p := range old.Completed {
		doc.Records[p] = &Record{
			Status:      StatusCompleted,
			SizeBytes:   0,
			LastUpdated: migratedAt,
		}
	}

	for p, f := range old.Failed {
		doc.Records[p] = &Record{
			Status:      StatusFailed,
			Attempts:    f.Attempts,
			LastError:   f.LastError,
			FirstFailed: f.FirstFailed,
			LastFailed:  f.LastFailed,
			LastUpdated: migratedAt,
		}
	}

	if old.Skipped != nil {
		doc.Skipped = old.Skipped
	}
	doc.InProgress = old.InProgress
	doc.Stats = old.Stats

	return &doc, nil
}
