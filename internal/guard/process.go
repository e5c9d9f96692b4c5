package guard

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// Process controls OS processes. Tests substitute a fake.
type Process interface {
	// Spawn starts command detached in its own session and returns its pid.
	Spawn(command []string) (int, error)

	// Alive checks pid with signal 0. Any error means not alive.
	Alive(pid int) bool

	// Terminate sends SIGTERM to pid.
	Terminate(pid int) error
}

// OSProcess is the real Process. Output, if set, receives the spawned
// process's stdout and stderr; otherwise they go to /dev/null.
type OSProcess struct {
	Output string
}

// Spawn implements Process.
func (p OSProcess) Spawn(command []string) (int, error) {
	if len(command) == 0 {
		return 0, fmt.Errorf("no command to spawn")
	}

	cmd := exec.Command(command[0], command[1:]...)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if p.Output != "" {
		out, err := os.OpenFile(p.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return 0, fmt.Errorf("failed to open %s: %w", p.Output, err)
		}
		defer out.Close()
		cmd.Stdout = out
		cmd.Stderr = out
	}

	if err := cmd.Start(); err != nil {
		return 0, err
	}

	pid := cmd.Process.Pid
	// The child outlives us; nothing here will Wait on it.
	_ = cmd.Process.Release()
	return pid, nil
}

// Alive implements Process.
func (OSProcess) Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	return unix.Kill(pid, 0) == nil
}

// Terminate implements Process.
func (OSProcess) Terminate(pid int) error {
	if pid <= 0 {
		return fmt.Errorf("invalid pid %d", pid)
	}
	return unix.Kill(pid, unix.SIGTERM)
}
