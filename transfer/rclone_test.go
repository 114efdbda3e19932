package transfer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Copi24/ftptogpmc/common/config"
)

func TestRcloneArgs(t *testing.T) {
	tool := &rcloneTool{
		remote: "3DFF",
		binary: "rclone",
		cfg: config.TransferConfig{
			BufferSize:            "16M",
			StatsIntervalSeconds:  30,
			TimeoutSeconds:        600,
			ConnectTimeoutSeconds: 60,
			TpsLimit:              10,
		},
	}

	args := tool.args("Movies/Some Movie (2009).mkv", "/tmp/staging")

	assert.Equal(t, "copy", args[0])
	assert.Equal(t, "3DFF:Movies/Some Movie (2009).mkv", args[1])
	assert.Equal(t, "/tmp/staging", args[2])
	assert.Contains(t, args, "--progress")
	assert.Contains(t, args, "--inplace")
	assert.Contains(t, args, "--stats")

	// One-line stats omit the "Transferred:" prefix the progress parser
	// needs, which would make every long transfer look stalled.
	assert.NotContains(t, args, "--stats-one-line")
}

func TestRcloneStatsOutputParses(t *testing.T) {
	// The multi-line stats block the flags above produce.
	n, ok := ParseTransferred("Transferred:   \t    1.606 GiB / 8.000 GiB, 20%, 3.456 MiB/s, ETA 32m10s")
	assert.True(t, ok)
	assert.Greater(t, n, int64(0))
}
