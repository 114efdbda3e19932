// Package convert turns optical-disc images into MKV containers by stream
// copy. No re-encoding happens here; the external tool repackages the
// streams and this package supervises it.
package convert

import (
	"context"
	"os"
	"os/exec"
	"time"

	"github.com/Copi24/ftptogpmc/common"
	"github.com/Copi24/ftptogpmc/common/config"
	"github.com/Copi24/ftptogpmc/common/rcontext"
	"github.com/Copi24/ftptogpmc/metrics"
	"github.com/Copi24/ftptogpmc/stall"
	"github.com/Copi24/ftptogpmc/transfer"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

type Remuxer struct {
	Binary         string
	StallThreshold time.Duration
	MinSizeRatio   float64

	// start is a seam for tests; nil launches the real tool.
	start func(ctx context.Context, inputPath string, outputPath string) (transfer.Proc, error)

	now func() time.Time
}

func NewRemuxer(cfg config.ConvertConfig) *Remuxer {
	return &Remuxer{
		Binary:         cfg.Binary,
		StallThreshold: time.Duration(cfg.StallThresholdSeconds) * time.Second,
		MinSizeRatio:   cfg.MinSizeRatio,
	}
}

func (r *Remuxer) startFn() func(ctx context.Context, inputPath string, outputPath string) (transfer.Proc, error) {
	if r.start != nil {
		return r.start
	}
	return func(ctx context.Context, inputPath string, outputPath string) (transfer.Proc, error) {
		cmd := exec.CommandContext(ctx, r.Binary,
			"-i", inputPath,
			"-c", "copy", // no re-encoding
			"-map", "0",
			"-y",
			outputPath,
		)
		return transfer.StartCommand(cmd)
	}
}

func (r *Remuxer) nowFn() func() time.Time {
	if r.now != nil {
		return r.now
	}
	return time.Now
}

// Remux repackages inputPath into outputPath. Progress is tracked through
// the output file's size, so a tool that is alive but writing nothing gets
// killed the same way a hung transfer does. When the exit status is
// ambiguous, output existence plus a size ratio against the input decides.
func (r *Remuxer) Remux(ctx rcontext.RunContext, inputPath string, outputPath string) error {
	inputInfo, err := os.Stat(inputPath)
	if err != nil {
		return errors.Wrap(err, "reading remux input")
	}

	log := ctx.Log.WithField("input", inputPath)
	log.Infof("Remuxing %s to MKV (stream copy)", humanize.IBytes(uint64(inputInfo.Size())))

	now := r.nowFn()
	proc, err := r.startFn()(ctx, inputPath, outputPath)
	if err != nil {
		metrics.Remuxes.WithLabelValues("failed").Inc()
		return errors.Wrap(err, "starting remux process")
	}

	detector := stall.NewDetector(r.StallThreshold, 0)
	detector.Observe(now(), 0)

	waitCh := make(chan error, 1)
	go func() {
		waitCh <- proc.Wait()
	}()

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	var exitErr error
loop:
	for {
		select {
		case <-proc.Lines():
			// ffmpeg chatter; the output file size is the progress signal.

		case <-ticker.C:
			if fi, statErr := os.Stat(outputPath); statErr == nil {
				detector.Observe(now(), fi.Size())
			}
			if detector.Stuck(now()) {
				log.Warnf("Remux made no progress for %s - killing", detector.SinceProgress(now()))
				_ = proc.Kill()
				<-waitCh
				metrics.Remuxes.WithLabelValues("stalled").Inc()
				return common.ErrRemuxFailed
			}

		case <-ctx.Done():
			_ = proc.Kill()
			<-waitCh
			return ctx.Err()

		case exitErr = <-waitCh:
			break loop
		}
	}

	outputInfo, err := os.Stat(outputPath)
	if err != nil || outputInfo.Size() == 0 {
		metrics.Remuxes.WithLabelValues("failed").Inc()
		return common.ErrRemuxFailed
	}

	ratio := float64(outputInfo.Size()) / float64(inputInfo.Size())
	if exitErr != nil && ratio < r.MinSizeRatio {
		metrics.Remuxes.WithLabelValues("failed").Inc()
		return errors.Wrap(common.ErrRemuxFailed, exitErr.Error())
	}
	if exitErr != nil {
		// Exit status was ambiguous but the output looks complete.
		log.Warnf("Remux tool exited uncleanly but output is %.0f%% of input - accepting", ratio*100)
	}

	log.Infof("Remux complete: %s -> %s",
		humanize.IBytes(uint64(inputInfo.Size())), humanize.IBytes(uint64(outputInfo.Size())))
	metrics.Remuxes.WithLabelValues("success").Inc()
	return nil
}
