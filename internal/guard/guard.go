// Package guard keeps at most one monitor running per lock record.
//
// Start spawns the monitor as a detached process and records its pid;
// Stop signals the recorded process and clears the record. Liveness is
// checked with signal 0, so a record naming a dead process is treated as
// free.
package guard

import (
	stderrors "errors"
	"fmt"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/rileyhilliard/vu1/internal/errors"
	"github.com/rileyhilliard/vu1/internal/lock"
	"github.com/rileyhilliard/vu1/internal/logger"
)

// Status is the guard's view of the lock record.
type Status struct {
	// PID is the recorded pid. Check Recorded before trusting it.
	PID   int
	Alive bool

	recorded bool
}

// Recorded reports whether the lock names a process, including a
// nonsensical pid such as 0.
func (s Status) Recorded() bool {
	return s.recorded
}

// Guard starts and stops the monitor process.
type Guard struct {
	file *lock.File
	proc Process
	log  logger.Logger
}

// New creates a guard over file. A nil proc uses OSProcess.
func New(file *lock.File, proc Process, log logger.Logger) *Guard {
	if proc == nil {
		proc = OSProcess{}
	}
	if log == nil {
		log = logger.Noop()
	}
	return &Guard{file: file, proc: proc, log: log}
}

// Status reads the record and checks whether the recorded pid is alive.
func (g *Guard) Status() (Status, error) {
	rec, err := g.file.Read()
	if err != nil {
		return Status{}, err
	}
	if !rec.HasPID() {
		return Status{}, nil
	}
	return Status{PID: *rec.PID, Alive: g.proc.Alive(*rec.PID), recorded: true}, nil
}

// Start spawns command unless the recorded monitor is still alive. It
// returns the pid of the running monitor and whether this call spawned it.
func (g *Guard) Start(command []string) (int, bool, error) {
	st, err := g.Status()
	if err != nil {
		return 0, false, err
	}
	if st.Alive {
		g.log.Warn("VU1 monitor is already running (pid %d)", st.PID)
		return st.PID, false, nil
	}

	pid, err := g.proc.Spawn(command)
	if err != nil {
		return 0, false, errors.WrapWithCode(err, errors.ErrExec,
			fmt.Sprintf("Failed to start %s", strings.Join(command, " ")),
			"Check the vu1 binary is on your PATH and executable")
	}

	if err := g.file.Write(lock.WithPID(pid)); err != nil {
		// Don't leave an unrecorded monitor behind.
		_ = g.proc.Terminate(pid)
		return 0, false, err
	}

	g.log.Info("VU1 monitor started (pid %d)", pid)
	return pid, true, nil
}

// Stop terminates the recorded monitor if it is alive and clears the
// record. It reports whether a signal was sent. A record naming a dead
// process is cleared without signalling.
func (g *Guard) Stop() (bool, error) {
	st, err := g.Status()
	if err != nil {
		return false, err
	}

	if !st.Alive {
		if st.Recorded() {
			g.log.Warn("VU1 monitor is not running (stale pid %d)", st.PID)
			return false, g.file.Clear()
		}
		g.log.Warn("VU1 monitor is not running")
		return false, nil
	}

	if err := g.proc.Terminate(st.PID); err != nil && !stderrors.Is(err, unix.ESRCH) {
		return false, errors.WrapWithCode(err, errors.ErrExec,
			fmt.Sprintf("Failed to stop VU1 monitor (pid %d)", st.PID),
			"Check you own the process, or kill it manually")
	}

	if err := g.file.Clear(); err != nil {
		return true, err
	}

	g.log.Info("VU1 monitor stopped (pid %d)", st.PID)
	return true, nil
}
