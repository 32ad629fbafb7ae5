package pidfile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/solarion-go/internal/infrastructure/pidfile"
)

func TestPIDFile_AcquireAndRelease(t *testing.T) {
	pf := pidfile.New(filepath.Join(t.TempDir(), "solarion.pid"))

	require.NoError(t, pf.Acquire())
	pid, running := pf.Running()
	assert.True(t, running)
	assert.Equal(t, os.Getpid(), pid)

	// held by a live process: this one
	err := pf.Acquire()
	assert.ErrorIs(t, err, pidfile.ErrAlreadyRunning)

	require.NoError(t, pf.Release())
	_, err = os.Stat(pf.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestPIDFile_ReplacesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solarion.pid")
	require.NoError(t, os.WriteFile(path, []byte("not-a-pid\n"), 0644))
	pf := pidfile.New(path)

	_, running := pf.Running()
	assert.False(t, running)
	require.NoError(t, pf.Acquire())

	pid, err := pf.ReadPID()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
}

func TestPIDFile_ReleaseLeavesForeignFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solarion.pid")
	require.NoError(t, os.WriteFile(path, []byte("1\n"), 0644))

	require.NoError(t, pidfile.New(path).Release())

	_, err := os.Stat(path)
	assert.NoError(t, err)
}
