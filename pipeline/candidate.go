package pipeline

import (
	"sort"
	"strings"

	"github.com/Copi24/ftptogpmc/common/config"
	"github.com/Copi24/ftptogpmc/remote"
)

// FileCandidate is a remote file that survived filtering. Transient; only
// outcomes are persisted.
type FileCandidate struct {
	Path      string
	Name      string
	SizeBytes int64
}

func eligible(name string, size int64, filters config.FiltersConfig) bool {
	matched := false
	for _, ext := range filters.Extensions {
		if strings.HasSuffix(strings.ToLower(name), strings.ToLower(ext)) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	return size >= filters.MinSizeBytes && size <= filters.MaxSizeBytes
}

func filterCandidates(dirPath string, entries []remote.Entry, filters config.FiltersConfig, smallestFirst bool) []FileCandidate {
	candidates := make([]FileCandidate, 0)
	for _, e := range entries {
		if !eligible(e.Name, e.SizeBytes, filters) {
			continue
		}
		path := e.Name
		if dirPath != "" {
			path = dirPath + "/" + e.Name
		}
		candidates = append(candidates, FileCandidate{
			Path:      path,
			Name:      e.Name,
			SizeBytes: e.SizeBytes,
		})
	}

	// Smallest first maximizes the odds of landing at least one complete
	// transfer before a runner's time budget expires.
	if smallestFirst {
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].SizeBytes < candidates[j].SizeBytes
		})
	}
	return candidates
}

// sanitizeName keeps the local filename filesystem-safe. Alphanumerics plus
// a small punctuation set survive, matching what the origin names contain.
func sanitizeName(name string) string {
	var b strings.Builder
	for _, c := range name {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') ||
			strings.ContainsRune("._- ", c) {
			b.WriteRune(c)
		}
	}
	return b.String()
}
