package discovery

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wagiedev/lspbridge/internal/errors"
)

func writeExecutable(t *testing.T, path string) {
	t.Helper()

	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755))
}

func TestDiscoverer_ExplicitPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Test requires Unix permission bits")
	}

	fake := filepath.Join(t.TempDir(), "fake-ls")
	writeExecutable(t, fake)

	path, err := NewDiscoverer(nil).Discover(fake)

	require.NoError(t, err)
	require.Equal(t, fake, path)
}

func TestDiscoverer_ExplicitPathNotFound(t *testing.T) {
	_, err := NewDiscoverer(nil).Discover("/nonexistent/path/to/server")

	notFound, ok := stderrors.AsType[*errors.ExecutableNotFoundError](err)
	require.True(t, ok)
	require.Equal(t, []string{"/nonexistent/path/to/server"}, notFound.SearchedPaths)
	require.ErrorIs(t, err, fs.ErrNotExist)
	require.ErrorContains(t, err, "no such file or directory")
}

func TestDiscoverer_ExplicitPathNotExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Test requires Unix permission bits")
	}

	plain := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(plain, []byte("hi"), 0o644))

	_, err := NewDiscoverer(nil).Discover(plain)
	require.IsType(t, &errors.ExecutableNotFoundError{}, err)
	require.ErrorIs(t, err, fs.ErrPermission)
}

func TestDiscoverer_FoundInPath(t *testing.T) {
	d := NewDiscoverer(nil).(*discoverer)
	d.lookPath = func(name string) (string, error) {
		return "/opt/tools/" + name, nil
	}

	path, err := d.Discover("gopls")

	require.NoError(t, err)
	require.Equal(t, "/opt/tools/gopls", path)
}

func TestDiscoverer_FallsBackToExtraDirs(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Test requires Unix permission bits")
	}

	dir := t.TempDir()
	writeExecutable(t, filepath.Join(dir, "my-ls"))

	d := NewDiscoverer(&Config{ExtraDirs: []string{dir}}).(*discoverer)
	d.lookPath = func(string) (string, error) { return "", os.ErrNotExist }

	path, err := d.Discover("my-ls")

	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "my-ls"), path)
}

func TestDiscoverer_NotFoundListsSearchedPaths(t *testing.T) {
	home := t.TempDir()

	d := NewDiscoverer(nil).(*discoverer)
	d.lookPath = func(string) (string, error) { return "", os.ErrNotExist }
	d.homeDir = func() (string, error) { return home, nil }

	_, err := d.Discover("definitely-not-a-real-language-server")

	notFound, ok := stderrors.AsType[*errors.ExecutableNotFoundError](err)
	require.True(t, ok)
	require.Equal(t, "definitely-not-a-real-language-server", notFound.Name)
	require.Equal(t, "$PATH", notFound.SearchedPaths[0])
	require.Contains(t, notFound.SearchedPaths,
		filepath.Join(home, ".cargo", "bin", "definitely-not-a-real-language-server"))
}

func TestDiscoverer_EmptyName(t *testing.T) {
	_, err := NewDiscoverer(nil).Discover("")
	require.IsType(t, &errors.ExecutableNotFoundError{}, err)
}
