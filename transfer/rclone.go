package transfer

import (
	"context"
	"os/exec"
	"strconv"

	"github.com/Copi24/ftptogpmc/common/config"
)

// Tool materializes one remote file into a local directory via an external
// process. resumeFrom is the length of the partial file already on disk;
// the tool's native resume support appends from that offset.
type Tool interface {
	Start(ctx context.Context, remotePath string, destDir string, resumeFrom int64) (Proc, error)
}

type rcloneTool struct {
	remote string
	binary string
	cfg    config.TransferConfig
}

func NewTool(remoteCfg config.RemoteConfig, cfg config.TransferConfig) Tool {
	return &rcloneTool{
		remote: remoteCfg.Name,
		binary: remoteCfg.Binary,
		cfg:    cfg,
	}
}

func (t *rcloneTool) Start(ctx context.Context, remotePath string, destDir string, resumeFrom int64) (Proc, error) {
	cmd := exec.CommandContext(ctx, t.binary, t.args(remotePath, destDir)...)
	return StartCommand(cmd)
}

// args builds the copy invocation. Conservative flags for unstable FTP
// servers: one transfer, one checker, small buffer, generous timeouts.
// The default multi-line stats block is required; one-line stats drop the
// "Transferred:" prefix the progress parser keys on. rclone keys resume
// off the existing partial file's length; resumeFrom exists so alternative
// tools (and tests) receive the offset explicitly.
func (t *rcloneTool) args(remotePath string, destDir string) []string {
	return []string{
		"copy",
		t.remote + ":" + remotePath,
		destDir,
		"--progress",
		"--inplace",
		"--buffer-size", t.cfg.BufferSize,
		"--transfers", "1",
		"--checkers", "1",
		"--low-level-retries", "10",
		"--retries", "1",
		"--stats", strconv.Itoa(t.cfg.StatsIntervalSeconds) + "s",
		"--log-level", "INFO",
		"--timeout", strconv.Itoa(t.cfg.TimeoutSeconds) + "s",
		"--contimeout", strconv.Itoa(t.cfg.ConnectTimeoutSeconds) + "s",
		"--tpslimit", strconv.Itoa(t.cfg.TpsLimit),
		"--tpslimit-burst", "0",
	}
}
