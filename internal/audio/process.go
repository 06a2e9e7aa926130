package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"
)

// settleDelay is how long a child must survive before it counts as started.
const settleDelay = 250 * time.Millisecond

// child is a long-running media subprocess (ffmpeg, ffplay) that is stopped
// with SIGINT and killed if it ignores it.
type child struct {
	name    string
	process *os.Process
	stderr  *bytes.Buffer
	stdout  io.ReadCloser

	waitErr <-chan error
	done    chan struct{}

	stopOnce sync.Once
	stopErr  error
}

func startChild(ctx context.Context, command string, args []string, withStdout bool) (*child, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	var stdout io.ReadCloser
	if withStdout {
		pipe, err := cmd.StdoutPipe()
		if err != nil {
			return nil, fmt.Errorf("failed to create %s stdout pipe: %w", command, err)
		}
		stdout = pipe
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", command, err)
	}

	waitErr := make(chan error, 1)
	done := make(chan struct{})
	go func() {
		waitErr <- cmd.Wait()
		close(waitErr)
		close(done)
	}()

	select {
	case err := <-waitErr:
		if err != nil {
			return nil, fmt.Errorf("%s exited before it started: %w: %s", command, err, trimOutput(stderr.String()))
		}
		if withStdout {
			return nil, fmt.Errorf("%s exited before it started", command)
		}
		// A short clip can finish inside the settle window.
		return &child{name: command, stderr: &stderr, waitErr: closedErrChan(), done: done}, nil
	case <-time.After(settleDelay):
	}

	return &child{
		name:    command,
		process: cmd.Process,
		stderr:  &stderr,
		stdout:  stdout,
		waitErr: waitErr,
		done:    done,
	}, nil
}

func (c *child) stop(grace time.Duration) error {
	c.stopOnce.Do(func() {
		if c.process != nil {
			_ = c.process.Signal(os.Interrupt)
		}

		select {
		case err, ok := <-c.waitErr:
			if ok {
				c.stopErr = normalizeStopErr(err)
			}
		case <-time.After(grace):
			if c.process != nil {
				_ = c.process.Kill()
			}
			if err, ok := <-c.waitErr; ok {
				c.stopErr = normalizeStopErr(err)
			}
		}

		if c.stdout != nil {
			if closeErr := c.stdout.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) && c.stopErr == nil {
				c.stopErr = closeErr
			}
		}

		if c.stopErr != nil && c.stderr != nil && c.stderr.Len() > 0 {
			c.stopErr = fmt.Errorf("%w: %s", c.stopErr, trimOutput(c.stderr.String()))
		}
	})
	return c.stopErr
}

func closedErrChan() <-chan error {
	ch := make(chan error)
	close(ch)
	return ch
}

// normalizeStopErr drops the exit status a signalled child reports.
func normalizeStopErr(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}

func trimOutput(input string) string {
	if input == "" {
		return input
	}
	return string(bytes.TrimSpace([]byte(input)))
}
