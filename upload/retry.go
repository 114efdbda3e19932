package upload

import (
	"context"
	"time"

	"github.com/Copi24/ftptogpmc/common/config"
	"github.com/Copi24/ftptogpmc/metrics"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// retrying wraps an Uploader with a bounded retry loop and fixed backoff.
// Upload failure modes (expired sessions, throttling) are independent of
// transfer failures, so the budget is separate from the download side.
type retrying struct {
	inner       Uploader
	maxAttempts int
	backoff     time.Duration
	sleep       func(ctx context.Context, d time.Duration)
}

func WithRetries(inner Uploader, cfg config.UploadConfig) Uploader {
	return &retrying{
		inner:       inner,
		maxAttempts: cfg.MaxAttempts,
		backoff:     time.Duration(cfg.BackoffSeconds) * time.Second,
		sleep: func(ctx context.Context, d time.Duration) {
			select {
			case <-time.After(d):
			case <-ctx.Done():
			}
		},
	}
}

func (r *retrying) Upload(ctx context.Context, localPath string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		if attempt > 1 {
			logrus.Infof("Waiting %s before upload attempt %d/%d", r.backoff, attempt, r.maxAttempts)
			r.sleep(ctx, r.backoff)
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		mediaKey, err := r.inner.Upload(ctx, localPath)
		if err == nil {
			metrics.UploadAttempts.WithLabelValues("success").Inc()
			return mediaKey, nil
		}

		lastErr = err
		metrics.UploadAttempts.WithLabelValues("failed").Inc()
		logrus.Warnf("Upload attempt %d/%d failed: %v", attempt, r.maxAttempts, err)
	}
	return "", errors.Wrapf(lastErr, "all %d upload attempts failed", r.maxAttempts)
}
