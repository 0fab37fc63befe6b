package bridge

import (
	"context"
	stderrors "errors"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wagiedev/lspbridge/internal/config"
	"github.com/wagiedev/lspbridge/internal/errors"
	"github.com/wagiedev/lspbridge/internal/event"
)

const waitTimeout = 5 * time.Second

// fakeProcess records calls made by the bridge.
type fakeProcess struct {
	session string

	mu          sync.Mutex
	sent        []string
	inputClosed bool
	killed      bool

	done     chan struct{}
	doneOnce sync.Once
}

func newFakeProcess(session string) *fakeProcess {
	return &fakeProcess{session: session, done: make(chan struct{})}
}

func (p *fakeProcess) Session() string { return p.session }

func (p *fakeProcess) Send(_ context.Context, body string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.inputClosed {
		return &errors.IoError{Op: "send message", Err: errors.ErrInputClosed}
	}

	p.sent = append(p.sent, body)

	return nil
}

func (p *fakeProcess) CloseInput() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.inputClosed = true

	return nil
}

func (p *fakeProcess) Kill() error {
	p.mu.Lock()
	p.killed = true
	p.mu.Unlock()

	p.exit()

	return nil
}

func (p *fakeProcess) Done() <-chan struct{} { return p.done }

func (p *fakeProcess) exit() { p.doneOnce.Do(func() { close(p.done) }) }

func (p *fakeProcess) state() (sent []string, inputClosed, killed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]string(nil), p.sent...), p.inputClosed, p.killed
}

// fakeStarter hands out the given processes in order.
func fakeStarter(procs ...*fakeProcess) config.Starter {
	var mu sync.Mutex

	return func(context.Context, string, []string, *config.Options) (config.Process, error) {
		mu.Lock()
		defer mu.Unlock()

		p := procs[0]
		procs = procs[1:]

		return p, nil
	}
}

func TestSend_NotRunning(t *testing.T) {
	b := New(nil)

	err := b.Send(context.Background(), "hello")

	require.IsType(t, &errors.NotRunningError{}, err)
	require.ErrorIs(t, err, errors.ErrNotRunning)
	require.False(t, b.Running())
	require.Empty(t, b.Session())
}

func TestSpawn_ForwardsSends(t *testing.T) {
	proc := newFakeProcess("s1")
	b := New(&config.Options{Starter: fakeStarter(proc)})

	msg, err := b.Spawn(context.Background(), "gopls", []string{"serve"})
	require.NoError(t, err)
	require.Equal(t, "LSP started: gopls", msg)
	require.Equal(t, "s1", b.Session())

	require.NoError(t, b.Send(context.Background(), "a"))
	require.NoError(t, b.Send(context.Background(), "bb"))

	sent, _, _ := proc.state()
	require.Equal(t, []string{"a", "bb"}, sent)
}

func TestSpawn_ReplacesPreviousProcess(t *testing.T) {
	first, second := newFakeProcess("s1"), newFakeProcess("s2")
	b := New(&config.Options{Starter: fakeStarter(first, second)})

	_, err := b.Spawn(context.Background(), "gopls", nil)
	require.NoError(t, err)

	_, err = b.Spawn(context.Background(), "gopls", nil)
	require.NoError(t, err)

	_, inputClosed, killed := first.state()
	require.True(t, inputClosed)
	require.True(t, killed)

	require.NoError(t, b.Send(context.Background(), "to-second"))

	sent, _, _ := second.state()
	require.Equal(t, []string{"to-second"}, sent)
	require.Equal(t, "s2", b.Session())

	// The retired process finishing must not detach the new one.
	time.Sleep(20 * time.Millisecond)
	require.True(t, b.Running())
}

func TestSpawn_ErrorKeepsCurrentProcess(t *testing.T) {
	proc := newFakeProcess("s1")
	calls := 0

	b := New(&config.Options{Starter: func(context.Context, string, []string, *config.Options) (config.Process, error) {
		calls++
		if calls == 1 {
			return proc, nil
		}

		return nil, stderrors.New("exec format error")
	}})

	_, err := b.Spawn(context.Background(), "gopls", nil)
	require.NoError(t, err)

	_, err = b.Spawn(context.Background(), "broken", nil)

	spawnErr, ok := stderrors.AsType[*errors.SpawnError](err)
	require.True(t, ok)
	require.Equal(t, "broken", spawnErr.Path)
	require.Contains(t, err.Error(), "exec format error")

	require.Equal(t, "s1", b.Session())

	_, _, killed := proc.state()
	require.False(t, killed)
}

func TestProcessExitDetaches(t *testing.T) {
	proc := newFakeProcess("s1")
	b := New(&config.Options{Starter: fakeStarter(proc)})

	_, err := b.Spawn(context.Background(), "gopls", nil)
	require.NoError(t, err)

	proc.exit()

	require.Eventually(t, func() bool { return !b.Running() }, waitTimeout, 5*time.Millisecond)
	require.ErrorIs(t, b.Send(context.Background(), "x"), errors.ErrNotRunning)
}

func TestWait(t *testing.T) {
	proc := newFakeProcess("s1")
	b := New(&config.Options{Starter: fakeStarter(proc)})

	require.NoError(t, b.Wait(context.Background()))

	_, err := b.Spawn(context.Background(), "gopls", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	require.ErrorIs(t, b.Wait(ctx), context.DeadlineExceeded)

	go proc.exit()

	require.NoError(t, b.Wait(context.Background()))
}

func TestClose(t *testing.T) {
	proc := newFakeProcess("s1")
	b := New(&config.Options{Starter: fakeStarter(proc)})

	_, err := b.Spawn(context.Background(), "gopls", nil)
	require.NoError(t, err)

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())

	_, inputClosed, killed := proc.state()
	require.True(t, inputClosed)
	require.True(t, killed)

	require.ErrorIs(t, b.Send(context.Background(), "x"), errors.ErrNotRunning)

	_, err = b.Spawn(context.Background(), "gopls", nil)
	require.ErrorIs(t, err, errors.ErrBridgeClosed)
}

func TestSpawn_RealProcessEcho(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Test requires cat")
	}

	rec := event.NewRecorder()
	b := New(&config.Options{Sink: rec})

	t.Cleanup(func() { _ = b.Close() })

	msg, err := b.Spawn(context.Background(), "cat", nil)
	require.NoError(t, err)
	require.Equal(t, "LSP started: cat", msg)

	require.NoError(t, b.Send(context.Background(), "a"))
	require.NoError(t, b.Send(context.Background(), "bb"))

	require.Eventually(t, func() bool {
		return len(rec.Of(event.KindMessage)) == 2
	}, waitTimeout, 10*time.Millisecond)

	require.Equal(t, []string{"a", "bb"}, rec.Of(event.KindMessage))
	require.Empty(t, rec.Of(event.KindLog))
}

func TestSpawn_RealProcessNotFound(t *testing.T) {
	b := New(nil)

	_, err := b.Spawn(context.Background(), "/nonexistent/language-server", nil)

	require.IsType(t, &errors.SpawnError{}, err)
	require.False(t, b.Running())
}

func TestSpawn_RealProcessExitEvent(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Test requires a Unix shell")
	}

	rec := event.NewRecorder()
	b := New(&config.Options{Sink: rec})

	_, err := b.Spawn(context.Background(), "/bin/sh", []string{"-c", "echo bye >&2; exit 2"})
	require.NoError(t, err)

	require.True(t, rec.WaitFor(event.KindExit, waitTimeout))
	require.Eventually(t, func() bool { return !b.Running() }, waitTimeout, 5*time.Millisecond)

	require.Equal(t, []string{"bye"}, rec.Of(event.KindDiagnostic))
	require.ErrorIs(t, b.Send(context.Background(), "late"), errors.ErrNotRunning)
}

func TestCloseInput(t *testing.T) {
	b := New(&config.Options{Starter: fakeStarter(newFakeProcess("s1"))})

	require.ErrorIs(t, b.CloseInput(), errors.ErrNotRunning)

	_, err := b.Spawn(context.Background(), "gopls", nil)
	require.NoError(t, err)

	require.NoError(t, b.CloseInput())

	err = b.Send(context.Background(), "x")
	require.ErrorIs(t, err, errors.ErrInputClosed)
}
