package stall

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const mib = 1024 * 1024

func TestStuckAfterThresholdWithoutProgress(t *testing.T) {
	start := time.Now()
	d := NewDetector(300*time.Second, 10*mib)

	d.Observe(start, 0)
	assert.False(t, d.Stuck(start.Add(299*time.Second)))
	assert.False(t, d.Stuck(start.Add(300*time.Second)))
	assert.True(t, d.Stuck(start.Add(301*time.Second)))
}

func TestProgressResetsTheClock(t *testing.T) {
	start := time.Now()
	d := NewDetector(300*time.Second, 10*mib)

	d.Observe(start, 0)
	// Keep moving well above the epsilon every 4 minutes.
	for i := 1; i <= 5; i++ {
		now := start.Add(time.Duration(i) * 4 * time.Minute)
		d.Observe(now, int64(i)*50*mib)
		assert.False(t, d.Stuck(now))
	}
}

func TestTinyIncreasesAreNotProgress(t *testing.T) {
	start := time.Now()
	d := NewDetector(300*time.Second, 10*mib)

	d.Observe(start, 100*mib)
	// A 5 MiB dribble is within the epsilon and must not reset the clock.
	d.Observe(start.Add(200*time.Second), 105*mib)
	assert.True(t, d.Stuck(start.Add(301*time.Second)))
}

func TestIncreaseJustAboveEpsilonCounts(t *testing.T) {
	start := time.Now()
	d := NewDetector(300*time.Second, 10*mib)

	d.Observe(start, 100*mib)
	d.Observe(start.Add(200*time.Second), 100*mib+10*mib+1)
	assert.False(t, d.Stuck(start.Add(301*time.Second)))
	assert.True(t, d.Stuck(start.Add(200*time.Second+301*time.Second)))
}

func TestNeverObservedIsNeverStuck(t *testing.T) {
	d := NewDetector(300*time.Second, 10*mib)
	assert.False(t, d.Stuck(time.Now().Add(time.Hour)))
	assert.Equal(t, time.Duration(0), d.SinceProgress(time.Now()))
}

func TestFirstObservationSetsBaseline(t *testing.T) {
	start := time.Now()
	d := NewDetector(300*time.Second, 10*mib)

	// A resumed transfer starts the counter at the partial file size.
	d.Observe(start, 5000*mib)
	assert.Equal(t, 100*time.Second, d.SinceProgress(start.Add(100*time.Second)))
}
