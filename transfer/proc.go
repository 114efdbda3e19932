package transfer

import (
	"bufio"
	"io"
	"os/exec"
	"sync"
	"time"
)

// Proc is a running external tool. Lines carries interleaved stdout and
// stderr output; the readers feeding it make no decisions of their own.
type Proc interface {
	Lines() <-chan string
	Kill() error
	Wait() error
}

// readerJoinWindow bounds how long Wait blocks on the output drainers after
// the process exits. A reader that overruns is abandoned; it holds nothing
// but the append-only line channel.
const readerJoinWindow = 5 * time.Second

// lineBuffer is deliberately generous: progress lines are small and the
// monitoring loop may lag behind by a stats interval or two.
const lineBuffer = 1024

type cmdProc struct {
	cmd   *exec.Cmd
	lines chan string
	wg    sync.WaitGroup
}

// StartCommand launches cmd with both output streams drained concurrently
// so the child never blocks on a full pipe buffer.
func StartCommand(cmd *exec.Cmd) (Proc, error) {
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, err
	}

	if err = cmd.Start(); err != nil {
		return nil, err
	}

	p := &cmdProc{
		cmd:   cmd,
		lines: make(chan string, lineBuffer),
	}
	p.wg.Add(2)
	go p.drain(stdout)
	go p.drain(stderr)
	return p, nil
}

func (p *cmdProc) drain(r io.Reader) {
	defer p.wg.Done()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		select {
		case p.lines <- scanner.Text():
		default:
			// Queue full: the consumer is behind. Progress lines are
			// disposable, so drop rather than block the child.
		}
	}
}

func (p *cmdProc) Lines() <-chan string {
	return p.lines
}

func (p *cmdProc) Kill() error {
	if p.cmd.Process == nil {
		return nil
	}
	return p.cmd.Process.Kill()
}

func (p *cmdProc) Wait() error {
	// Give the drainers a chance to see EOF before Wait tears the pipes
	// down underneath them.
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(readerJoinWindow):
	}

	return p.cmd.Wait()
}
