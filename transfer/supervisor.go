package transfer

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/Copi24/ftptogpmc/common"
	"github.com/Copi24/ftptogpmc/common/config"
	"github.com/Copi24/ftptogpmc/common/rcontext"
	"github.com/Copi24/ftptogpmc/metrics"
	"github.com/Copi24/ftptogpmc/stall"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// Supervisor reliably materializes one remote file to local disk: bounded
// retries with a fixed backoff, resume from whatever partial file survives
// a previous attempt, and stall-based cancellation above whatever timeouts
// the tool enforces internally. The backoff is deliberately not
// exponential; the bottleneck is server-side stability, not client
// congestion.
type Supervisor struct {
	Tool           Tool
	MaxAttempts    int
	Backoff        time.Duration
	StallThreshold time.Duration
	Epsilon        int64
	PollInterval   time.Duration

	// Seams for tests. Nil means the real thing.
	sleep func(ctx context.Context, d time.Duration)
	now   func() time.Time
}

func NewSupervisor(tool Tool, cfg config.TransferConfig) *Supervisor {
	return &Supervisor{
		Tool:           tool,
		MaxAttempts:    cfg.MaxAttempts,
		Backoff:        time.Duration(cfg.BackoffSeconds) * time.Second,
		StallThreshold: time.Duration(cfg.StallThresholdSeconds) * time.Second,
		Epsilon:        cfg.ProgressEpsilonBytes,
		PollInterval:   5 * time.Second,
	}
}

func (s *Supervisor) sleepFn() func(ctx context.Context, d time.Duration) {
	if s.sleep != nil {
		return s.sleep
	}
	return sleepWithContext
}

// sleepWithContext waits out d but gives up as soon as the context is
// cancelled, so a stop signal never sits behind a backoff.
func sleepWithContext(ctx context.Context, d time.Duration) {
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}

func (s *Supervisor) nowFn() func() time.Time {
	if s.now != nil {
		return s.now
	}
	return time.Now
}

// Download fetches remotePath into localPath, retrying up to MaxAttempts.
// Success means the process exited cleanly and the local file exists with
// nonzero size; exact size verification is the caller's concern. The
// partial file is never deleted between attempts so the next one resumes.
func (s *Supervisor) Download(ctx rcontext.RunContext, remotePath string, expectedSize int64, localPath string) error {
	if err := os.MkdirAll(filepath.Dir(localPath), 0755); err != nil {
		return errors.Wrap(err, "creating destination directory")
	}

	log := ctx.Log.WithField("remotePath", remotePath)

	var lastErr error
	for attempt := 1; attempt <= s.MaxAttempts; attempt++ {
		if attempt > 1 {
			log.Infof("Waiting %s before download attempt %d/%d", s.Backoff, attempt, s.MaxAttempts)
			s.sleepFn()(ctx, s.Backoff)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		resumeFrom := int64(0)
		if fi, err := os.Stat(localPath); err == nil {
			resumeFrom = fi.Size()
		}
		if resumeFrom > 0 {
			log.Infof("Resuming from %s", humanize.IBytes(uint64(resumeFrom)))
		}

		err := s.runAttempt(ctx, remotePath, localPath, resumeFrom)
		if err == nil {
			metrics.TransferAttempts.WithLabelValues("success").Inc()
			return nil
		}
		if errors.Is(err, common.ErrFileMissingAfterTransfer) {
			// The tool claims success; another attempt would be a no-op.
			// The caller rescues filename-casing mismatches.
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		lastErr = err
		log.Warnf("Download attempt %d/%d failed: %v", attempt, s.MaxAttempts, err)
	}

	return errors.Wrapf(lastErr, "all %d download attempts failed", s.MaxAttempts)
}

func (s *Supervisor) runAttempt(ctx rcontext.RunContext, remotePath string, localPath string, resumeFrom int64) error {
	now := s.nowFn()

	proc, err := s.Tool.Start(ctx, remotePath, filepath.Dir(localPath), resumeFrom)
	if err != nil {
		metrics.TransferAttempts.WithLabelValues("failed").Inc()
		return errors.Wrap(err, "starting transfer process")
	}

	detector := stall.NewDetector(s.StallThreshold, s.Epsilon)
	detector.Observe(now(), resumeFrom)

	waitCh := make(chan error, 1)
	go func() {
		waitCh <- proc.Wait()
	}()

	ticker := time.NewTicker(s.PollInterval)
	defer ticker.Stop()

	lastLogged := now()
	for {
		select {
		case line := <-proc.Lines():
			if bytes, ok := ParseTransferred(line); ok {
				detector.Observe(now(), bytes)
				if now().Sub(lastLogged) >= 30*time.Second {
					ctx.Log.Info("transfer: ", line)
					lastLogged = now()
				}
			}

		case <-ticker.C:
			if detector.Stuck(now()) {
				ctx.Log.Warnf("No forward progress for %s - killing transfer", detector.SinceProgress(now()))
				_ = proc.Kill()
				<-waitCh
				metrics.TransferAttempts.WithLabelValues("stalled").Inc()
				metrics.StallsDetected.Inc()
				return common.ErrTransferStalled
			}

		case <-ctx.Done():
			_ = proc.Kill()
			<-waitCh
			return ctx.Err()

		case err = <-waitCh:
			return s.inspectOutcome(ctx, err, localPath, resumeFrom)
		}
	}
}

func (s *Supervisor) inspectOutcome(ctx rcontext.RunContext, exitErr error, localPath string, resumeFrom int64) error {
	if exitErr != nil {
		metrics.TransferAttempts.WithLabelValues("failed").Inc()
		return errors.Wrap(common.ErrTransferProcessFailed, exitErr.Error())
	}

	fi, err := os.Stat(localPath)
	if err != nil || fi.Size() == 0 {
		metrics.TransferAttempts.WithLabelValues("failed").Inc()
		return common.ErrFileMissingAfterTransfer
	}

	ctx.Log.Infof("Download completed: %s on disk (resumed at %s)",
		humanize.IBytes(uint64(fi.Size())), humanize.IBytes(uint64(resumeFrom)))
	metrics.BytesDownloaded.Add(float64(fi.Size() - resumeFrom))
	return nil
}
