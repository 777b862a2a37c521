package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return dir
}

// waitFor drains batches until one contains want or the timeout expires.
func waitFor(t *testing.T, changed <-chan []string, want string, timeout time.Duration) {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case paths := <-changed:
			for _, p := range paths {
				if p == want {
					return
				}
			}
		case <-deadline:
			t.Fatalf("timed out waiting for change of %s", want)
		}
	}
}

func TestNewWatcher_RejectsNilCallback(t *testing.T) {
	w, err := NewWatcher(100*time.Millisecond, nil, nil, nil)
	require.ErrorIs(t, err, os.ErrInvalid)
	assert.Nil(t, w)
}

func TestNewWatcher_RejectsBadPattern(t *testing.T) {
	_, err := NewWatcher(100*time.Millisecond, []string{"[unclosed"}, nil, func([]string) {})
	require.Error(t, err)
}

func TestWatcher_Directory(t *testing.T) {
	dir := tempDir(t)

	changed := make(chan []string, 8)
	w, err := NewWatcher(50*time.Millisecond, []string{"__pycache__"}, []string{"*_generated.py"}, func(paths []string) {
		changed <- paths
	})
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Watch([]string{dir}))

	target := filepath.Join(dir, "main.py")
	require.NoError(t, os.WriteFile(target, []byte("x = 1\n"), 0o644))
	waitFor(t, changed, target, 2*time.Second)

	excluded := filepath.Join(dir, "schema_generated.py")
	require.NoError(t, os.WriteFile(excluded, []byte("y = 2\n"), 0o644))
	select {
	case paths := <-changed:
		assert.NotContains(t, paths, excluded)
	case <-time.After(300 * time.Millisecond):
	}

	sub := filepath.Join(dir, "pkg")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	time.Sleep(100 * time.Millisecond)
	nested := filepath.Join(sub, "mod.py")
	require.NoError(t, os.WriteFile(nested, []byte("z = 3\n"), 0o644))
	waitFor(t, changed, nested, 2*time.Second)
}

func TestWatcher_FileTargetsNarrowReports(t *testing.T) {
	dir := tempDir(t)
	target := filepath.Join(dir, "open.py")
	other := filepath.Join(dir, "other.py")
	require.NoError(t, os.WriteFile(target, []byte("a = 1\n"), 0o644))

	changed := make(chan []string, 8)
	w, err := NewWatcher(50*time.Millisecond, nil, nil, func(paths []string) {
		changed <- paths
	})
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Watch([]string{target}))

	require.NoError(t, os.WriteFile(other, []byte("b = 2\n"), 0o644))
	require.NoError(t, os.WriteFile(target, []byte("a = 'one'\n"), 0o644))

	deadline := time.After(2 * time.Second)
	for {
		select {
		case paths := <-changed:
			assert.NotContains(t, paths, other)
			for _, p := range paths {
				if p == target {
					return
				}
			}
		case <-deadline:
			t.Fatal("timed out waiting for target change")
		}
	}
}

func TestWatcher_ExtensionFilter(t *testing.T) {
	w, err := NewWatcher(10*time.Millisecond, nil, []string{"conftest.py"}, func([]string) {})
	require.NoError(t, err)
	defer w.Close()

	assert.False(t, w.shouldExcludeFile("main.py"))
	assert.False(t, w.shouldExcludeFile("stubs.pyi"))
	assert.True(t, w.shouldExcludeFile("main.go"))
	assert.True(t, w.shouldExcludeFile("conftest.py"))

	w.SetExtensions([]string{".pyw"})
	assert.True(t, w.shouldExcludeFile("main.py"))
	assert.False(t, w.shouldExcludeFile("gui.PYW"))

	w.SetExtensions(nil)
	assert.False(t, w.shouldExcludeFile("README"))
}
