package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
	"typeinspector/internal/core/config"
	"typeinspector/internal/core/errors"
	"typeinspector/internal/core/inspector"
	"typeinspector/internal/shared/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Watch.Debounce = 20 * time.Millisecond
	a, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestApp_Inspect(t *testing.T) {
	a := newTestApp(t)
	path := writeSource(t, t.TempDir(), "main.py", "x = 5\nprint(x)\n")

	result, err := a.Inspect(context.Background(), path, 0)
	require.NoError(t, err)
	assert.Equal(t, inspector.TypeResult("int"), result)

	id, err := a.OpenFile(path)
	require.NoError(t, err)
	offset, err := a.OffsetOf(id, util.Position{Line: 2, Column: 1})
	require.NoError(t, err)
	result, err = a.Inspect(context.Background(), path, offset)
	require.NoError(t, err)
	assert.Equal(t, inspector.ResultNoVariableFound, result)
	assert.Equal(t, 2, a.Session.Cache().Len())
}

func TestApp_OpenFile_Errors(t *testing.T) {
	a := newTestApp(t)
	dir := t.TempDir()

	_, err := a.OpenFile(writeSource(t, dir, "main.go", "package main\n"))
	assert.True(t, errors.IsCode(err, errors.CodeNotSupported))

	_, err = a.Inspect(context.Background(), filepath.Join(dir, "missing.py"), 0)
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))
}

func TestApp_Inspect_NegativeOffset(t *testing.T) {
	a := newTestApp(t)
	path := writeSource(t, t.TempDir(), "main.py", "x = 5\n")

	_, err := a.Inspect(context.Background(), path, -1)
	require.Error(t, err)
	assert.Equal(t, errors.CodeValidationError, errors.CodeOf(err))

	var de *errors.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, -1, de.Context[errors.CtxOffset])
	assert.Equal(t, path, de.Context[errors.CtxPath])
	assert.Equal(t, 0, a.Session.Cache().Len())
}

func TestApp_OffsetOf_OutOfRange(t *testing.T) {
	a := newTestApp(t)
	id, err := a.OpenFile(writeSource(t, t.TempDir(), "main.py", "x = 5\n"))
	require.NoError(t, err)

	_, err = a.OffsetOf(id, util.Position{Line: 9, Column: 1})
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))
}

func TestApp_HandleChangesInvalidates(t *testing.T) {
	a := newTestApp(t)
	path := writeSource(t, t.TempDir(), "main.py", "x = 5\n")

	result, err := a.Inspect(context.Background(), path, 0)
	require.NoError(t, err)
	assert.Equal(t, inspector.TypeResult("int"), result)

	require.NoError(t, os.WriteFile(path, []byte("x = 'five'\n"), 0o644))
	a.HandleChanges([]string{path, filepath.Join(filepath.Dir(path), "unopened.py")})

	result, err = a.Inspect(context.Background(), path, 0)
	require.NoError(t, err)
	assert.Equal(t, inspector.TypeResult("str"), result)
}

func TestApp_WatcherReloadsBuffers(t *testing.T) {
	a := newTestApp(t)
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	path := writeSource(t, dir, "main.py", "x = 5\n")

	_, err = a.OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, a.StartWatcher())
	require.NoError(t, a.StartWatcher(), "second start is a no-op")

	require.NoError(t, os.WriteFile(path, []byte("x = 5.0\n"), 0o644))

	assert.Eventually(t, func() bool {
		result, err := a.Inspect(context.Background(), path, 0)
		return err == nil && result == inspector.TypeResult("float")
	}, 3*time.Second, 20*time.Millisecond)
}

func TestHealthService_Check(t *testing.T) {
	a := newTestApp(t)
	_, err := a.OpenFile(writeSource(t, t.TempDir(), "main.py", "x = 5\n"))
	require.NoError(t, err)

	status := NewHealthService(a).Check(context.Background())
	assert.Equal(t, "up", status.Status)
	assert.Equal(t, "ok", status.Components["type_backend"])
	assert.Equal(t, "ok (1 buffers)", status.Components["workspace"])
	assert.Equal(t, "stopped", status.Components["watcher"])

	a.Backend.Close()
	status = NewHealthService(a).Check(context.Background())
	assert.Equal(t, "degraded", status.Status)
}
