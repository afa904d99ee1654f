package launch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjy-dv/scpool/scpool/core"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scpool.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
min_size: 2
max_size: 32
acquire_timeout: 3s
idle_timeout: 1m
validate_on_acquire: true
watch_queue_size: 64
`)
	opts, err := LoadFile(path)
	require.NoError(t, err)
	assert.EqualValues(t, 2, opts.MinSize)
	assert.EqualValues(t, 32, opts.MaxSize)
	assert.Equal(t, 3*time.Second, opts.AcquireTimeout)
	assert.Equal(t, time.Minute, opts.IdleTimeout)
	assert.True(t, opts.ValidateOnAcquire)
	assert.EqualValues(t, 64, opts.WatchQueueSize)
}

func TestLoadFileAbsentKeysKeepDefaults(t *testing.T) {
	path := writeConfig(t, "max_size: 8\n")
	opts, err := LoadFile(path)
	require.NoError(t, err)
	assert.EqualValues(t, 8, opts.MaxSize)
	assert.Equal(t, core.DefaultOptions.AcquireTimeout, opts.AcquireTimeout)
	assert.Equal(t, core.DefaultOptions.IdleTimeout, opts.IdleTimeout)
}

func TestLoadFileNoneTimeout(t *testing.T) {
	path := writeConfig(t, "acquire_timeout: none\n")
	opts, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, core.NoTimeout, opts.AcquireTimeout)
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := writeConfig(t, "acquire_timeout: eventually\n")
	_, err = LoadFile(path)
	assert.Error(t, err)

	path = writeConfig(t, "min_size: 9\nmax_size: 3\n")
	_, err = LoadFile(path)
	assert.ErrorIs(t, err, core.ErrBadOptions)
}
