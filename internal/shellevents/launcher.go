package shellevents

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

//go:generate mockgen -destination=mocks/mock_shellevents.go -package=mocks github.com/mattjoyce/playhook/internal/shellevents Launcher,Observer

// BashPath is the interpreter used when ExecuteWithBash is set.
const BashPath = "/bin/bash"

// Mode selects how a command string becomes a process.
type Mode string

const (
	// ModeDirect splits the command on whitespace into program and arguments.
	ModeDirect Mode = "direct"
	// ModeBash passes the command to BashPath -c.
	ModeBash Mode = "bash"
)

// Invocation is one fully resolved process launch.
type Invocation struct {
	Path string
	Args []string
	// Env holds NAME=value pairs added on top of the parent environment.
	Env []string
}

// Launcher starts a process and waits for it. A non-zero exit is reported
// through exitCode with a nil error; err is reserved for launch and wait
// failures.
type Launcher interface {
	Launch(ctx context.Context, inv Invocation) (exitCode int, err error)
}

// ExecLauncher launches processes with os/exec. Output is discarded.
type ExecLauncher struct{}

func (ExecLauncher) Launch(ctx context.Context, inv Invocation) (int, error) {
	// Not CommandContext: a launched command always runs to completion.
	cmd := exec.Command(inv.Path, inv.Args...)
	cmd.Env = append(os.Environ(), inv.Env...)

	if err := cmd.Start(); err != nil {
		return -1, fmt.Errorf("start process: %w", err)
	}
	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, fmt.Errorf("wait for process: %w", err)
	}
	return cmd.ProcessState.ExitCode(), nil
}
