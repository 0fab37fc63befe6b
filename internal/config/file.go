package config

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wagiedev/lspbridge/internal/frame"
)

// File is the on-disk configuration used by the lspbridge command.
type File struct {
	// LogLevel is one of debug, info, warn, error. Defaults to info.
	LogLevel string `yaml:"log_level"`

	// DefaultServer names the server to run when none is given.
	DefaultServer string `yaml:"default_server"`

	// Servers maps a name to a server definition.
	Servers map[string]*Server `yaml:"servers"`
}

// Server describes how to launch one language server.
type Server struct {
	Command      string            `yaml:"command"`
	Args         []string          `yaml:"args"`
	Env          map[string]string `yaml:"env"`
	Dir          string            `yaml:"dir"`
	SearchDirs   []string          `yaml:"search_dirs"`
	HeaderMode   string            `yaml:"header_mode"`
	MaxFrameSize int               `yaml:"max_frame_size"`
	StderrTail   int               `yaml:"stderr_tail"`
}

// Load reads and validates a configuration file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	return f, nil
}

// Parse decodes and validates configuration from YAML.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if f.LogLevel == "" {
		f.LogLevel = "info"
	}

	if err := f.Validate(); err != nil {
		return nil, err
	}

	return &f, nil
}

// Validate checks the configuration for errors.
func (f *File) Validate() error {
	if _, err := parseLevel(f.LogLevel); err != nil {
		return err
	}

	for _, name := range f.ServerNames() {
		s := f.Servers[name]
		if s == nil {
			return fmt.Errorf("server %q: empty definition", name)
		}

		if strings.TrimSpace(s.Command) == "" {
			return fmt.Errorf("server %q: command is required", name)
		}

		if _, err := frame.ParseHeaderMode(s.HeaderMode); err != nil {
			return fmt.Errorf("server %q: %w", name, err)
		}

		if s.MaxFrameSize < 0 {
			return fmt.Errorf("server %q: max_frame_size must not be negative", name)
		}
	}

	if f.DefaultServer != "" {
		if _, ok := f.Servers[f.DefaultServer]; !ok {
			return fmt.Errorf("default_server %q is not defined", f.DefaultServer)
		}
	}

	return nil
}

// ServerNames returns the configured server names in sorted order.
func (f *File) ServerNames() []string {
	names := make([]string, 0, len(f.Servers))
	for name := range f.Servers {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Server returns the named server, falling back to DefaultServer, then to
// the only configured server.
func (f *File) Server(name string) (*Server, error) {
	if name == "" {
		name = f.DefaultServer
	}

	if name == "" {
		if len(f.Servers) != 1 {
			return nil, fmt.Errorf("no server selected and %d servers configured", len(f.Servers))
		}

		name = f.ServerNames()[0]
	}

	s, ok := f.Servers[name]
	if !ok {
		return nil, fmt.Errorf("server %q is not defined", name)
	}

	return s, nil
}

// Level returns the configured log level.
func (f *File) Level() slog.Level {
	level, _ := parseLevel(f.LogLevel)

	return level
}

// Apply copies the server definition into options.
func (s *Server) Apply(o *Options) {
	o.Env = s.Env
	o.Dir = s.Dir
	o.SearchDirs = s.SearchDirs
	o.HeaderMode, _ = frame.ParseHeaderMode(s.HeaderMode)
	o.MaxFrameSize = s.MaxFrameSize
	o.StderrTail = s.StderrTail
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q", s)
	}

	return level, nil
}
