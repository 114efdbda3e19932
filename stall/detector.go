// Package stall watches a monotonically-reported progress metric and
// declares a stuck condition after a bounded period of no forward progress.
// It is shared by the network transfer supervisor (bytes received) and the
// remux supervisor (output file size).
package stall

import (
	"time"
)

type Detector struct {
	threshold time.Duration
	epsilon   int64

	lastBytes int64
	lastAt    time.Time
}

// NewDetector builds a detector. Increases of epsilon bytes or less do not
// count as progress; the defaults cover FTP servers that dribble a few
// bytes while effectively hung.
func NewDetector(threshold time.Duration, epsilon int64) *Detector {
	return &Detector{
		threshold: threshold,
		epsilon:   epsilon,
	}
}

func (d *Detector) Observe(now time.Time, bytesSoFar int64) {
	if d.lastAt.IsZero() {
		d.lastBytes = bytesSoFar
		d.lastAt = now
		return
	}
	if bytesSoFar-d.lastBytes > d.epsilon {
		d.lastBytes = bytesSoFar
		d.lastAt = now
	}
}

func (d *Detector) SinceProgress(now time.Time) time.Duration {
	if d.lastAt.IsZero() {
		return 0
	}
	return now.Sub(d.lastAt)
}

func (d *Detector) Stuck(now time.Time) bool {
	return d.SinceProgress(now) > d.threshold
}
