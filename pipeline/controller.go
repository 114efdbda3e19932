// Package pipeline sequences the whole transfer: walk the origin tree
// depth-first, and for each qualifying file download, verify, convert if
// needed, upload, clean up. Strictly one file at a time; the local disk is
// the scarce resource, not bandwidth.
package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Copi24/ftptogpmc/common"
	"github.com/Copi24/ftptogpmc/common/rcontext"
	"github.com/Copi24/ftptogpmc/metrics"
	"github.com/Copi24/ftptogpmc/remote"
	"github.com/Copi24/ftptogpmc/state"
	"github.com/Copi24/ftptogpmc/upload"
	"github.com/dustin/go-humanize"
	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

// Downloader is what the transfer supervisor looks like from here.
type Downloader interface {
	Download(ctx rcontext.RunContext, remotePath string, expectedSize int64, localPath string) error
}

// Converter remuxes an optical-disc image into an MKV container.
type Converter interface {
	Remux(ctx rcontext.RunContext, inputPath string, outputPath string) error
}

type Controller struct {
	Remote   remote.Lister
	Download Downloader
	Upload   upload.Uploader
	Convert  Converter // nil when conversion is disabled
	State    *state.Store
	Disk     DiskChecker
	TempDir  string
}

type Summary struct {
	Completed int
	Failed    int
	Skipped   int
	Bytes     int64
}

// Run walks the tree from the root and processes every qualifying file.
// Returns when the walk finishes or the context is cancelled; per-file
// failures never abort the walk.
func (c *Controller) Run(ctx rcontext.RunContext) Summary {
	summary := &Summary{}
	c.traverse(ctx, "", 0, summary)
	return *summary
}

func (c *Controller) traverse(ctx rcontext.RunContext, dirPath string, depth int, summary *Summary) {
	if ctx.Err() != nil {
		return
	}
	ctx = ctx.Refresh()

	display := dirPath
	if display == "" {
		display = "(root)"
	}
	log := ctx.Log.WithField("dir", display)
	log.Info("Scanning directory")

	entries, err := c.Remote.ListFiles(ctx, dirPath)
	if err != nil {
		log.Warn("Could not list files - continuing with subdirectories: ", err)
	}

	filters := ctx.Config.Filters
	candidates := filterCandidates(dirPath, entries, filters, ctx.Config.Pipeline.SmallestFirst)
	if len(candidates) > 0 {
		log.Infof("Found %d qualifying file(s)", len(candidates))
	}

	// Files in this directory first, then descend (pre-order).
	for _, candidate := range candidates {
		if ctx.Err() != nil {
			return
		}
		c.processCandidate(ctx, candidate, summary)
	}

	subdirs, err := c.Remote.ListDirectories(ctx, dirPath)
	if err != nil {
		log.Warn("Could not list subdirectories: ", err)
		return
	}
	for _, subdir := range subdirs {
		subPath := subdir
		if dirPath != "" {
			subPath = dirPath + "/" + subdir
		}
		c.traverse(ctx, subPath, depth+1, summary)
	}
}

// processCandidate wraps processFile with the per-file failure boundary:
// nothing a single file does may halt the rest of the tree.
func (c *Controller) processCandidate(ctx rcontext.RunContext, candidate FileCandidate, summary *Summary) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("unexpected error processing %s: %v", candidate.Path, r)
			ctx.Log.Error(err)
			sentry.CaptureException(err)
			c.State.MarkFailed(candidate.Path, err.Error())
			metrics.FilesFailed.Inc()
			summary.Failed++
		}
	}()

	// Pick up any reloaded tunables before this file starts.
	fileCtx := ctx.Refresh().LogWithFields(logrus.Fields{
		"file": candidate.Path,
		"size": humanize.IBytes(uint64(candidate.SizeBytes)),
	})

	result, bytes := c.processFile(fileCtx, candidate)
	switch result {
	case outcomeCompleted:
		summary.Completed++
		summary.Bytes += bytes
	case outcomeFailed:
		summary.Failed++
	case outcomeSkipped:
		summary.Skipped++
	}
}

type outcome int

const (
	outcomeCompleted outcome = iota
	outcomeFailed
	outcomeSkipped
)

func (c *Controller) processFile(ctx rcontext.RunContext, candidate FileCandidate) (outcome, int64) {
	log := ctx.Log

	// Already done in a previous run: terminal, never revisited.
	if c.State.IsCompleted(candidate.Path) {
		log.Info("Already uploaded - skipping")
		metrics.FilesSkipped.WithLabelValues("already_done").Inc()
		return outcomeSkipped, 0
	}

	maxFailures := ctx.Config.Pipeline.MaxFailures
	if c.State.IsFailed(candidate.Path) && !c.State.ShouldRetry(candidate.Path, maxFailures) {
		log.Warnf("Failed %d times - not retrying", c.State.FailureCount(candidate.Path))
		metrics.FilesSkipped.WithLabelValues("retries_exhausted").Inc()
		return outcomeSkipped, 0
	}

	// Disk gate: the margin covers the state file, logs, and remux
	// scratch space. No I/O happens for a file that cannot fit.
	required := candidate.SizeBytes + ctx.Config.Pipeline.DiskMarginBytes
	free, err := c.Disk.FreeBytes(c.TempDir)
	if err != nil {
		log.Warn("Could not determine free disk space - assuming enough: ", err)
	} else if free < required {
		log.Errorf("Need %s free (file + margin), have %s - not attempting",
			humanize.IBytes(uint64(required)), humanize.IBytes(uint64(free)))
		c.State.MarkFailed(candidate.Path, common.ErrInsufficientDisk.Error())
		metrics.FilesFailed.Inc()
		return outcomeFailed, 0
	}

	c.State.MarkInProgress(candidate.Path, candidate.SizeBytes)

	localPath := filepath.Join(c.TempDir, sanitizeName(candidate.Name))
	log.Info("Downloading to ", localPath)

	if err := c.Download.Download(ctx, candidate.Path, candidate.SizeBytes, localPath); err != nil {
		rescued := ""
		if errors.Is(err, common.ErrFileMissingAfterTransfer) {
			rescued = c.rescueLocalFile(ctx, localPath, candidate.Name)
		}
		if rescued == "" {
			log.Error("Download failed: ", err)
			c.State.MarkFailed(candidate.Path, err.Error())
			metrics.FilesFailed.Inc()
			return outcomeFailed, 0
		}
		localPath = rescued
	}

	c.verifySize(ctx, localPath, candidate.SizeBytes)

	uploadPath := localPath
	if c.Convert != nil && strings.EqualFold(filepath.Ext(candidate.Name), ".iso") {
		converted, err := c.convertImage(ctx, localPath)
		if err != nil {
			log.Error("Conversion failed: ", err)
			c.State.MarkFailed(candidate.Path, err.Error())
			metrics.FilesFailed.Inc()
			return outcomeFailed, 0
		}
		uploadPath = converted
	}

	mediaKey, err := c.Upload.Upload(ctx, uploadPath)
	if err != nil {
		// The local file stays on disk for manual inspection. That can
		// blow the disk budget; accepted trade-off.
		log.Error("Upload failed - keeping local file at ", uploadPath, ": ", err)
		c.State.MarkFailed(candidate.Path, err.Error())
		metrics.FilesFailed.Inc()
		return outcomeFailed, 0
	}

	actualSize := candidate.SizeBytes
	if fi, statErr := os.Stat(uploadPath); statErr == nil {
		actualSize = fi.Size()
	}
	c.State.MarkCompleted(candidate.Path, actualSize, mediaKey)
	metrics.FilesCompleted.Inc()
	metrics.BytesUploaded.Add(float64(actualSize))

	// Free the disk immediately; never hold a finished file waiting.
	if err := os.Remove(uploadPath); err != nil {
		log.Warn("Could not delete local file: ", err)
	} else {
		log.Info("Deleted local file")
	}

	log.Infof("Completed: %s -> %s", candidate.Path, mediaKey)
	return outcomeCompleted, actualSize
}

// verifySize is advisory: FTP servers report stale sizes often enough that
// a mismatch within tolerance is a warning, not a failure.
func (c *Controller) verifySize(ctx rcontext.RunContext, localPath string, expectedSize int64) {
	fi, err := os.Stat(localPath)
	if err != nil {
		return
	}
	diff := fi.Size() - expectedSize
	if diff < 0 {
		diff = -diff
	}
	if diff > ctx.Config.Pipeline.SizeToleranceBytes {
		ctx.Log.Warnf("Size mismatch: expected %s, got %s (diff %s)",
			humanize.IBytes(uint64(expectedSize)), humanize.IBytes(uint64(fi.Size())), humanize.IBytes(uint64(diff)))
	} else {
		ctx.Log.Info("File size verified")
	}
}

// rescueLocalFile handles tools that report success but write the file
// under a differently-cased or decorated name: adopt a case-insensitive
// match, or failing that a substring match, from the destination directory.
func (c *Controller) rescueLocalFile(ctx rcontext.RunContext, expectedPath string, remoteName string) string {
	dir := filepath.Dir(expectedPath)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}

	lowerName := strings.ToLower(remoteName)
	substringMatch := ""
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		lowerEntry := strings.ToLower(e.Name())
		if lowerEntry == lowerName {
			ctx.Log.Info("Found file under differently-cased name: ", e.Name())
			return filepath.Join(dir, e.Name())
		}
		if substringMatch == "" && (strings.Contains(lowerEntry, lowerName) || strings.Contains(lowerName, lowerEntry)) {
			substringMatch = filepath.Join(dir, e.Name())
		}
	}
	if substringMatch != "" {
		ctx.Log.Info("Found file under similar name: ", filepath.Base(substringMatch))
	}
	return substringMatch
}

// convertImage remuxes a disc image and deletes it once the MKV exists, so
// the two never sit on disk together longer than the remux itself.
func (c *Controller) convertImage(ctx rcontext.RunContext, isoPath string) (string, error) {
	outputPath := strings.TrimSuffix(isoPath, filepath.Ext(isoPath)) + ".mkv"

	if err := c.Convert.Remux(ctx, isoPath, outputPath); err != nil {
		return "", err
	}

	if err := os.Remove(isoPath); err != nil {
		ctx.Log.Warn("Could not delete disc image after remux: ", err)
	}
	return outputPath, nil
}
