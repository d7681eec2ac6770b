package daemon

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// deadPID is above the kernel's pid limit, so it is never alive.
const deadPID = 999999999

func TestPIDFileAcquireAndRelease(t *testing.T) {
	pf := PIDFile{Path: filepath.Join(t.TempDir(), "run", "fincompassd.pid")}
	st := RuntimeState{PID: os.Getpid(), Addr: "127.0.0.1:9999", StartedAt: time.Now().UTC(), DBPath: "/tmp/f.db"}

	require.NoError(t, pf.Acquire(st))

	pid, err := pf.Running()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)

	got, err := pf.State()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9999", got.Addr)
	assert.Equal(t, "/tmp/f.db", got.DBPath)

	// This process is alive, so a second claim fails.
	err = pf.Acquire(st)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already running")

	pf.Release()
	_, err = pf.Running()
	assert.ErrorIs(t, err, ErrNotRunning)
	_, err = os.Stat(pf.StatePath())
	assert.True(t, os.IsNotExist(err))
}

func TestPIDFileReplacesStaleOwner(t *testing.T) {
	pf := PIDFile{Path: filepath.Join(t.TempDir(), "fincompassd.pid")}
	require.NoError(t, os.WriteFile(pf.Path, []byte(strconv.Itoa(deadPID)+"\n"), 0o600))

	_, err := pf.Running()
	assert.ErrorIs(t, err, ErrNotRunning)

	require.NoError(t, pf.Acquire(RuntimeState{PID: os.Getpid()}))
	pid, err := pf.PID()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
}

func TestPIDFileRejectsGarbage(t *testing.T) {
	pf := PIDFile{Path: filepath.Join(t.TempDir(), "fincompassd.pid")}
	require.NoError(t, os.WriteFile(pf.Path, []byte("not-a-pid"), 0o600))

	_, err := pf.PID()
	assert.Error(t, err)
	assert.Error(t, pf.EnsureFree())
}

func TestPIDFileStopWithoutDaemon(t *testing.T) {
	pf := PIDFile{Path: filepath.Join(t.TempDir(), "fincompassd.pid")}
	_, err := pf.Stop(time.Second)
	assert.ErrorIs(t, err, ErrNotRunning)
}

func TestProcessAlive(t *testing.T) {
	assert.True(t, ProcessAlive(os.Getpid()))
	assert.False(t, ProcessAlive(deadPID))
}
