package subprocess

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sort"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/wagiedev/lspbridge/internal/config"
	"github.com/wagiedev/lspbridge/internal/discovery"
	"github.com/wagiedev/lspbridge/internal/errors"
	"github.com/wagiedev/lspbridge/internal/event"
	"github.com/wagiedev/lspbridge/internal/frame"
	"github.com/wagiedev/lspbridge/internal/logbuf"
)

const (
	// maxDiagnosticLine is the longest stderr line that is published.
	// Longer lines are skipped.
	maxDiagnosticLine = 1024 * 1024 // 1MB

	// writeAbandonTimeout bounds how long a cancelled Send waits for its
	// write goroutine after stdin has been closed.
	writeAbandonTimeout = 1 * time.Second
)

// Process is a running language server child process.
type Process struct {
	log       *slog.Logger
	session   string
	path      string
	cmd       *exec.Cmd
	sink      event.Sink
	tail      *logbuf.Ring
	readerCfg frame.ReaderConfig

	mu          sync.Mutex // Protects stdin writes
	stdin       io.WriteCloser
	writer      *frame.Writer
	inputClosed bool

	killed atomic.Bool
	done   chan struct{}
}

// Compile-time verification that Process implements config.Process.
var _ config.Process = (*Process)(nil)

// Start spawns the executable at path with args and starts both relays.
//
// The path is resolved with the discovery package: a bare name is searched for
// on PATH and in common install directories. ctx only bounds the spawn itself;
// the process keeps running after ctx is done until it exits or Kill is called.
//
// Returns a SpawnError if the executable cannot be resolved or started, or if
// any of the three pipes cannot be created.
func Start(ctx context.Context, path string, args []string, options *config.Options) (*Process, error) {
	if options == nil {
		options = &config.Options{}
	}

	log := options.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if err := ctx.Err(); err != nil {
		return nil, &errors.SpawnError{Path: path, Err: err}
	}

	session := ulid.Make().String()
	log = log.With("component", "subprocess", "session", session)

	log.Info("Starting language server", "path", path, "args", args)

	resolved, err := discovery.NewDiscoverer(&discovery.Config{
		ExtraDirs: options.SearchDirs,
		Logger:    log,
	}).Discover(path)
	if err != nil {
		return nil, &errors.SpawnError{Path: path, Op: "resolve executable", Err: err}
	}

	//nolint:gosec // G204: launching a user-configured language server is the point.
	cmd := exec.Command(resolved, args...)
	cmd.Dir = options.Dir
	cmd.Env = BuildEnvironment(options.Env)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		log.Error("Failed to create stdin pipe", "error", err)

		return nil, &errors.SpawnError{Path: path, Op: "stdin pipe", Err: err}
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		log.Error("Failed to create stdout pipe", "error", err)

		return nil, &errors.SpawnError{Path: path, Op: "stdout pipe", Err: err}
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		log.Error("Failed to create stderr pipe", "error", err)

		return nil, &errors.SpawnError{Path: path, Op: "stderr pipe", Err: err}
	}

	if err := cmd.Start(); err != nil {
		log.Error("Failed to start language server", "error", err)

		return nil, &errors.SpawnError{Path: path, Op: "start process", Err: err}
	}

	sink := options.Sink
	if sink == nil {
		sink = event.Discard
	}

	p := &Process{
		log:     log,
		session: session,
		path:    path,
		cmd:     cmd,
		sink:    sink,
		tail:    logbuf.New(options.StderrTailSize()),
		readerCfg: frame.ReaderConfig{
			Mode:         options.HeaderMode,
			MaxFrameSize: options.MaxFrameSize,
		},
		stdin:  stdin,
		writer: frame.NewWriter(stdin),
		done:   make(chan struct{}),
	}

	log.Info("Language server started", "pid", cmd.Process.Pid)

	p.run(stdout, stderr)

	return p, nil
}

// run starts the output and diagnostic relays and the reaper.
func (p *Process) run(stdout, stderr io.Reader) {
	var g errgroup.Group

	g.Go(func() error { return p.relayOutput(stdout) })
	g.Go(func() error { return p.relayDiagnostics(stderr) })

	go func() {
		defer close(p.done)

		if err := g.Wait(); err != nil {
			p.log.Debug("Relay stopped with error", "error", err)
		}

		// Both pipes are drained, so Wait may now close them.
		exitCode := p.wait()

		p.publish(event.Event{Kind: event.KindExit, Payload: p.tail.String(), ExitCode: exitCode})
	}()
}

// relayOutput drains stdout through the frame reader.
func (p *Process) relayOutput(stdout io.Reader) error {
	r := frame.NewReader(stdout, p.readerCfg)
	messageCount := 0

	for {
		item, err := r.Next()
		if err != nil {
			p.log.Debug("Output relay stopped", "message_count", messageCount)

			if stderrors.Is(err, io.EOF) || stderrors.Is(err, os.ErrClosed) {
				return nil
			}

			return fmt.Errorf("read output: %w", err)
		}

		switch item.Kind {
		case frame.ItemMessage:
			messageCount++
			p.publish(event.Event{Kind: event.KindMessage, Payload: item.Text})
		case frame.ItemLog:
			p.publish(event.Event{Kind: event.KindLog, Payload: item.Text})
		case frame.ItemDropped:
			p.log.Debug("Dropped frame", "reason", item.Reason, "length", item.Length)
		}
	}
}

// relayDiagnostics publishes each stderr line until the stream ends.
func (p *Process) relayDiagnostics(stderr io.Reader) error {
	br := bufio.NewReaderSize(stderr, 64*1024)

	var (
		line      []byte
		oversized bool
	)

	for {
		chunk, isPrefix, err := br.ReadLine()
		if err != nil {
			if stderrors.Is(err, io.EOF) || stderrors.Is(err, os.ErrClosed) {
				return nil
			}

			return fmt.Errorf("read diagnostics: %w", err)
		}

		if !oversized {
			if len(line)+len(chunk) > maxDiagnosticLine {
				oversized = true
				line = line[:0]
			} else {
				line = append(line, chunk...)
			}
		}

		if isPrefix {
			continue
		}

		switch {
		case oversized:
			p.log.Debug("Skipped oversized diagnostic line", "max_length", maxDiagnosticLine)
		case utf8.Valid(line):
			text := string(line)
			p.tail.Add(text)
			p.publish(event.Event{Kind: event.KindDiagnostic, Payload: text})
		}

		line = line[:0]
		oversized = false
	}
}

// wait reaps the process and returns its exit code.
func (p *Process) wait() int {
	err := p.cmd.Wait()
	if err == nil {
		p.log.Info("Language server exited", "exit_code", 0)

		return 0
	}

	exitCode := -1
	if exitErr, ok := stderrors.AsType[*exec.ExitError](err); ok {
		exitCode = exitErr.ExitCode()
	}

	if p.killed.Load() {
		p.log.Debug("Language server terminated during shutdown", "exit_code", exitCode)
	} else {
		p.log.Warn("Language server exited with error", "exit_code", exitCode, "error", err)
	}

	return exitCode
}

func (p *Process) publish(e event.Event) {
	e.Session = p.session
	e.Time = time.Now()
	p.sink.Publish(e)
}

// Session returns the ULID identifying this spawn.
func (p *Process) Session() string {
	return p.session
}

// Pid returns the operating system process ID.
func (p *Process) Pid() int {
	if p.cmd == nil || p.cmd.Process == nil {
		return 0
	}

	return p.cmd.Process.Pid
}

// Send frames body and writes it to the server's stdin.
//
// The write and flush happen under a mutex, so concurrent calls are
// serialized in lock order. If ctx is cancelled while the write is blocked,
// stdin is closed to unblock it; subsequent calls return an IoError wrapping
// ErrInputClosed.
func (p *Process) Send(ctx context.Context, body string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.inputClosed || p.writer == nil {
		return &errors.IoError{Op: "send message", Err: errors.ErrInputClosed}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	p.log.Debug("Sending message", "body_len", len(body))

	done := make(chan error, 1)

	go func() {
		done <- p.writer.WriteFrame(body)
	}()

	select {
	case err := <-done:
		if err != nil {
			p.log.Error("Failed to write message", "error", err)

			return &errors.IoError{Op: "send message", Err: err}
		}

		return nil

	case <-ctx.Done():
		p.log.Debug("Context cancelled during write, closing stdin")

		_ = p.stdin.Close()
		p.inputClosed = true

		select {
		case <-done:
		case <-time.After(writeAbandonTimeout):
			p.log.Warn("Write goroutine did not exit after stdin close, potential leak")
		}

		return ctx.Err()
	}
}

// CloseInput closes stdin, signalling end of input to the server.
func (p *Process) CloseInput() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.inputClosed || p.stdin == nil {
		return nil
	}

	p.log.Debug("Closing stdin pipe")

	p.inputClosed = true

	return p.stdin.Close()
}

// Kill terminates the server. It does not take the input lock, so it can
// unblock a Send stuck on a server that stopped reading.
func (p *Process) Kill() error {
	if p.cmd == nil || p.cmd.Process == nil {
		return nil
	}

	if p.killed.Swap(true) {
		return nil
	}

	p.log.Debug("Killing language server", "pid", p.cmd.Process.Pid)

	if err := p.cmd.Process.Kill(); err != nil && !stderrors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("kill language server (pid %d): %w", p.cmd.Process.Pid, err)
	}

	return nil
}

// Done is closed after both relays have finished and the process has been
// reaped. The exit event has been published by then.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// BuildEnvironment returns the current environment with extra appended.
// Later entries win, so extra overrides inherited variables.
func BuildEnvironment(extra map[string]string) []string {
	env := os.Environ()

	keys := make([]string, 0, len(extra))
	for key := range extra {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		env = append(env, fmt.Sprintf("%s=%s", key, extra[key]))
	}

	return env
}
