package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wagiedev/lspbridge"
	"github.com/wagiedev/lspbridge/internal/config"
	"github.com/wagiedev/lspbridge/internal/frame"
)

// maxInputLine bounds one message body read from stdin.
const maxInputLine = 16 * 1024 * 1024

var (
	runConfigPath   string
	runServerName   string
	runHeaderMode   string
	runLogLevel     string
	runMaxFrameSize int
)

var runCmd = &cobra.Command{
	Use:   "run [-- command [args...]]",
	Short: "Spawn a language server and relay messages",
	Long: `Spawn a language server and relay messages.

Each line read from stdin is sent to the server as one message body. Every
event from the server is written to stdout as a JSON object, one per line.
When stdin ends the server's input is closed and lspbridge waits for it to
exit. Interrupting lspbridge kills the server.

The server comes either from the command line after "--" or from a named
entry in the config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		spec, err := resolveServer(args)
		if err != nil {
			return err
		}

		return runBridge(ctx, os.Stdin, os.Stdout, spec)
	},
}

func init() {
	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "path to a YAML config file")
	runCmd.Flags().StringVarP(&runServerName, "server", "s", "", "server name from the config file")
	runCmd.Flags().StringVar(&runHeaderMode, "header-mode", "", "frame header parsing: compat or strict")
	runCmd.Flags().StringVar(&runLogLevel, "log-level", "", "log level: debug, info, warn, error")
	runCmd.Flags().IntVar(&runMaxFrameSize, "max-frame-size", 0, "largest accepted frame body in bytes")
	rootCmd.AddCommand(runCmd)
}

// serverSpec is a fully resolved server to run.
type serverSpec struct {
	command string
	args    []string
	level   slog.Level
	options config.Options
}

// resolveServer merges the config file, positional args, and flags.
func resolveServer(args []string) (*serverSpec, error) {
	spec := &serverSpec{level: slog.LevelInfo}

	if runConfigPath != "" {
		f, err := config.Load(runConfigPath)
		if err != nil {
			return nil, err
		}

		spec.level = f.Level()

		if len(args) == 0 {
			s, err := f.Server(runServerName)
			if err != nil {
				return nil, err
			}

			spec.command = s.Command
			spec.args = s.Args
			s.Apply(&spec.options)
		}
	}

	if len(args) > 0 {
		spec.command = args[0]
		spec.args = args[1:]
	}

	if spec.command == "" {
		return nil, fmt.Errorf("no server command: pass one after -- or use --config")
	}

	if runHeaderMode != "" {
		mode, err := frame.ParseHeaderMode(runHeaderMode)
		if err != nil {
			return nil, err
		}

		spec.options.HeaderMode = mode
	}

	if runLogLevel != "" {
		if err := spec.level.UnmarshalText([]byte(runLogLevel)); err != nil {
			return nil, fmt.Errorf("invalid --log-level %q", runLogLevel)
		}
	}

	if runMaxFrameSize > 0 {
		spec.options.MaxFrameSize = runMaxFrameSize
	}

	return spec, nil
}

// jsonSink writes each event as one JSON line.
type jsonSink struct {
	mu  sync.Mutex
	enc *json.Encoder
	log *slog.Logger
}

func newJSONSink(w io.Writer, log *slog.Logger) *jsonSink {
	return &jsonSink{enc: json.NewEncoder(w), log: log}
}

// Publish implements lspbridge.Sink.
func (s *jsonSink) Publish(e lspbridge.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.enc.Encode(e); err != nil {
		s.log.Warn("Failed to write event", "kind", e.Kind, "error", err)
	}
}

// runBridge spawns the server, pumps in into it, and streams events to out
// until the server exits or ctx is cancelled.
func runBridge(ctx context.Context, in io.Reader, out io.Writer, spec *serverSpec) error {
	log := lspbridge.NewLogger(os.Stderr, spec.level)

	opts := spec.options
	opts.Logger = log
	opts.Sink = newJSONSink(out, log)

	b := lspbridge.New(lspbridge.WithOptions(&opts))
	defer b.Close()

	msg, err := b.Spawn(ctx, spec.command, spec.args)
	if err != nil {
		return err
	}

	log.Info(msg)

	go func() {
		if err := pumpInput(ctx, in, b); err != nil {
			log.Warn("Input pump stopped", "error", err)
		}

		if err := b.CloseInput(); err != nil {
			log.Debug("Closing server input", "error", err)
		}
	}()

	if err := b.Wait(ctx); err != nil {
		log.Info("Interrupted, stopping language server")
	}

	return nil
}

// pumpInput sends each line of in as a message body.
func pumpInput(ctx context.Context, in io.Reader, b *lspbridge.Bridge) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxInputLine)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		if err := b.Send(ctx, line); err != nil {
			return fmt.Errorf("send: %w", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}

	return nil
}
