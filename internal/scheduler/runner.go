package scheduler

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
)

// Process is a handle on one running external tool.
type Process interface {
	// Done is closed once the process has exited and its output has
	// been fully drained.
	Done() <-chan struct{}
	// ExitCode is valid only after Done is closed. -1 means the process
	// was killed or never reported a code.
	ExitCode() int
	// Kill terminates the process. Safe to call more than once.
	Kill()
}

// CommandRunner abstracts process spawning for testability.
type CommandRunner interface {
	Start(ctx context.Context, binary string, args []string, onLine func(string)) (Process, error)
}

type execRunner struct{}

// NewCommandRunner returns the production runner backed by os/exec.
func NewCommandRunner() CommandRunner {
	return execRunner{}
}

func (execRunner) Start(ctx context.Context, binary string, args []string, onLine func(string)) (Process, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start command: %w", err)
	}

	proc := &execProcess{cmd: cmd, done: make(chan struct{}), exitCode: -1}

	var wg sync.WaitGroup
	scan := func(r io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			if onLine != nil {
				onLine(scanner.Text())
			}
		}
	}
	wg.Add(2)
	go scan(stdout)
	go scan(stderr)

	go func() {
		wg.Wait()
		err := cmd.Wait()
		code := 0
		if err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				code = exitErr.ExitCode()
			} else {
				code = -1
			}
		}
		proc.setExitCode(code)
		close(proc.done)
	}()

	return proc, nil
}

type execProcess struct {
	cmd  *exec.Cmd
	done chan struct{}

	mu       sync.Mutex
	exitCode int
	killed   bool
}

func (p *execProcess) Done() <-chan struct{} { return p.done }

func (p *execProcess) ExitCode() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exitCode
}

func (p *execProcess) setExitCode(code int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.exitCode = code
}

func (p *execProcess) Kill() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.killed {
		return
	}
	p.killed = true
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
}
