// Package audio plays and records sound through external commands such as
// ffplay, aplay or sox.
//
// Each command runs in its own process group so cancellation kills the whole
// pipeline it may spawn.
package audio

import (
	"context"
	"errors"
	"fmt"
	osexec "os/exec"
	"syscall"
	"time"
)

// waitDelay bounds how long Wait blocks on I/O after the process is killed.
const waitDelay = 2 * time.Second

// ErrNoCommand is returned when a Player or Recorder has no command.
var ErrNoCommand = errors.New("audio: no command configured")

func command(ctx context.Context, argv []string) (*osexec.Cmd, error) {
	if len(argv) == 0 || argv[0] == "" {
		return nil, ErrNoCommand
	}
	cmd := osexec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = waitDelay
	return cmd, nil
}

// runErr turns a Wait error into the error reported to callers. A cancelled
// context wins over the exit status it caused.
func runErr(ctx context.Context, op string, err error, stderr *tailBuffer) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return context.Cause(ctx)
	}
	if msg := stderr.Summary(); msg != "" {
		return fmt.Errorf("audio: %s: %w: %s", op, err, msg)
	}
	return fmt.Errorf("audio: %s: %w", op, err)
}
