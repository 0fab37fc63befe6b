package discovery

import (
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/wagiedev/lspbridge/internal/errors"
)

// Config holds configuration for executable discovery.
type Config struct {
	// ExtraDirs are searched after PATH and before the common directories.
	ExtraDirs []string

	// Logger is an optional logger for discovery operations.
	// If nil, discovery is silent.
	Logger *slog.Logger
}

// Discoverer locates language server executables.
type Discoverer interface {
	// Discover returns the path to run for name.
	Discover(name string) (string, error)
}

// discoverer implements the Discoverer interface.
type discoverer struct {
	cfg      *Config
	log      *slog.Logger
	lookPath func(string) (string, error)
	homeDir  func() (string, error)
}

// Compile-time verification that discoverer implements Discoverer.
var _ Discoverer = (*discoverer)(nil)

// NewDiscoverer creates a new discoverer with the given configuration.
func NewDiscoverer(cfg *Config) Discoverer {
	if cfg == nil {
		cfg = &Config{}
	}

	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &discoverer{
		cfg:      cfg,
		log:      log,
		lookPath: exec.LookPath,
		homeDir:  os.UserHomeDir,
	}
}

// Discover locates the executable for name.
func (d *discoverer) Discover(name string) (string, error) {
	if name == "" {
		return "", &errors.ExecutableNotFoundError{Name: name}
	}

	// Explicit paths are used as is.
	if strings.ContainsRune(name, filepath.Separator) || strings.ContainsRune(name, '/') {
		err := checkExecutable(name)
		if err == nil {
			d.log.Debug("Using explicit executable path", "path", name)

			return name, nil
		}

		d.log.Debug("Explicit executable path not usable", "path", name, "error", err)

		return "", &errors.ExecutableNotFoundError{Name: name, SearchedPaths: []string{name}, Err: err}
	}

	searchedPaths := make([]string, 0, 8)

	if path, err := d.lookPath(name); err == nil {
		d.log.Debug("Found executable in PATH", "name", name, "path", path)

		return path, nil
	}

	searchedPaths = append(searchedPaths, "$PATH")

	for _, dir := range d.candidateDirs() {
		path := filepath.Join(dir, name)
		searchedPaths = append(searchedPaths, path)

		if isExecutableFile(path) {
			d.log.Debug("Found executable in fallback directory", "path", path)

			return path, nil
		}
	}

	d.log.Warn("Executable not found in any searched paths", "name", name, "searched_paths", searchedPaths)

	return "", &errors.ExecutableNotFoundError{Name: name, SearchedPaths: searchedPaths}
}

// candidateDirs returns fallback directories in search order.
func (d *discoverer) candidateDirs() []string {
	dirs := append([]string{}, d.cfg.ExtraDirs...)
	dirs = append(dirs, "/usr/local/bin", "/usr/bin")

	if home, err := d.homeDir(); err == nil {
		dirs = append(dirs,
			filepath.Join(home, ".local", "bin"),
			filepath.Join(home, "go", "bin"),
			filepath.Join(home, ".cargo", "bin"),
		)
	}

	return dirs
}

func isExecutableFile(path string) bool {
	return checkExecutable(path) == nil
}

// checkExecutable returns the reason path cannot be executed, or nil.
func checkExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	if info.IsDir() {
		return &fs.PathError{Op: "exec", Path: path, Err: syscall.EISDIR}
	}

	if info.Mode()&0o111 == 0 {
		return &fs.PathError{Op: "exec", Path: path, Err: fs.ErrPermission}
	}

	return nil
}
