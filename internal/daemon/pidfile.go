package daemon

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// ErrNotRunning is returned when no live daemon owns the pid file.
var ErrNotRunning = errors.New("daemon is not running")

// RuntimeState is written next to the pid file while the daemon runs so
// status probes can find its address.
type RuntimeState struct {
	PID       int       `json:"pid"`
	Addr      string    `json:"addr"`
	StartedAt time.Time `json:"started_at"`
	DBPath    string    `json:"db_path"`
}

// PIDFile guards a single daemon instance. The runtime state lives in a
// ".json" sidecar.
type PIDFile struct {
	Path string
}

// StatePath is the runtime state sidecar path.
func (p PIDFile) StatePath() string {
	return p.Path + ".json"
}

// Acquire claims the pid file for st.PID. A stale file left by a dead
// process is replaced; a live owner is an error.
func (p PIDFile) Acquire(st RuntimeState) error {
	if err := p.EnsureFree(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p.Path), 0o750); err != nil {
		return fmt.Errorf("create daemon directory: %w", err)
	}
	if err := os.WriteFile(p.Path, []byte(strconv.Itoa(st.PID)+"\n"), 0o600); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	// Status falls back to flags when the sidecar is missing.
	_ = os.WriteFile(p.StatePath(), append(data, '\n'), 0o600)
	return nil
}

// EnsureFree fails when a live process owns the pid file and clears it
// otherwise.
func (p PIDFile) EnsureFree() error {
	pid, err := p.PID()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if ProcessAlive(pid) {
		return fmt.Errorf("daemon already running (pid %d)", pid)
	}
	p.Release()
	return nil
}

// Release removes the pid file and its sidecar.
func (p PIDFile) Release() {
	_ = os.Remove(p.Path)
	_ = os.Remove(p.StatePath())
}

// PID reads the recorded process id.
func (p PIDFile) PID() (int, error) {
	//nolint:gosec // daemon pid path is configured by the local user
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid in %s", p.Path)
	}
	return pid, nil
}

// Running returns the pid of the live owner, or ErrNotRunning.
func (p PIDFile) Running() (int, error) {
	pid, err := p.PID()
	if err != nil {
		return 0, ErrNotRunning
	}
	if !ProcessAlive(pid) {
		return pid, ErrNotRunning
	}
	return pid, nil
}

// State reads the runtime state sidecar.
func (p PIDFile) State() (RuntimeState, error) {
	var st RuntimeState
	//nolint:gosec // daemon state path is configured by the local user
	data, err := os.ReadFile(p.StatePath())
	if err != nil {
		return st, err
	}
	err = json.Unmarshal(data, &st)
	return st, err
}

// Stop sends SIGTERM to the owner and waits up to timeout for it to exit.
func (p PIDFile) Stop(timeout time.Duration) (int, error) {
	pid, err := p.Running()
	if err != nil {
		return pid, err
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return pid, fmt.Errorf("find daemon process: %w", err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return pid, fmt.Errorf("signal daemon process: %w", err)
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if !ProcessAlive(pid) {
			p.Release()
			return pid, nil
		}
		time.Sleep(150 * time.Millisecond)
	}
	return pid, fmt.Errorf("daemon (pid %d) did not exit in time", pid)
}

// ProcessAlive probes pid with signal 0.
func ProcessAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}
