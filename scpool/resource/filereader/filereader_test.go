package filereader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjy-dv/scpool/scpool/core"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.bin")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFactoryLifecycle(t *testing.T) {
	path := writeTempFile(t, "hello")
	f, err := New(path)
	require.NoError(t, err)
	defer f.Close()

	file, err := f.Create(context.Background())
	require.NoError(t, err)

	buf := make([]byte, 5)
	_, err = file.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf))

	assert.True(t, f.Validate(context.Background(), file))
	require.NoError(t, f.Destroy(file))
}

func TestSharedLockAllowsMultipleReaders(t *testing.T) {
	path := writeTempFile(t, "shared")

	f1, err := New(path)
	require.NoError(t, err)
	defer f1.Close()

	// the lock is shared, so a second reader factory attaches fine
	f2, err := New(path)
	require.NoError(t, err)
	defer f2.Close()
}

func TestEachHandleHasOwnOffset(t *testing.T) {
	path := writeTempFile(t, "abcdef")
	f, err := New(path)
	require.NoError(t, err)
	defer f.Close()

	opts := core.DefaultOptions
	opts.MaxSize = 2
	p, err := core.Open(opts, f)
	require.NoError(t, err)
	defer p.Close()

	h1, err := p.Acquire(context.Background())
	require.NoError(t, err)
	h2, err := p.Acquire(context.Background())
	require.NoError(t, err)

	buf := make([]byte, 3)
	_, err = h1.Resource().Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(buf))

	_, err = h2.Resource().Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(buf), "second handle reads from its own offset")

	require.NoError(t, h1.Release())
	require.NoError(t, h2.Release())
}

func TestCreateFailsAfterFileRemoved(t *testing.T) {
	path := writeTempFile(t, "gone")
	f, err := New(path)
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, os.Remove(path))
	_, err = f.Create(context.Background())
	assert.Error(t, err)
}
