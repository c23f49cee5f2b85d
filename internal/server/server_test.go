package server

import (
	"bufio"
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cruciblehq/cruxpkg/internal/builder"
	"github.com/cruciblehq/cruxpkg/internal/client"
	"github.com/cruciblehq/cruxpkg/internal/process"
	"github.com/cruciblehq/cruxpkg/internal/protocol"
)

// Builder that runs a shell script per call.
type fakeBuilder struct {
	mu     sync.Mutex
	script string   // Script run by Build.
	calls  []string // Base directories seen by Build and Clean.
	clean  error    // Returned by Clean.
}

func (b *fakeBuilder) Build(ctx context.Context, baseDir, envContext string, targets []string) (*process.Output, error) {
	b.mu.Lock()
	b.calls = append(b.calls, baseDir)
	b.mu.Unlock()

	h, err := process.Launch(ctx, process.Command{
		Dir:  baseDir,
		Args: append([]string{"sh", "-c", b.script, "build"}, targets...),
	})
	if err != nil {
		return nil, errors.Join(builder.ErrCallBuilder, err)
	}
	return h.Relay(nil)
}

func (b *fakeBuilder) Clean(ctx context.Context, baseDir, envContext string, targets []string) error {
	b.mu.Lock()
	b.calls = append(b.calls, baseDir)
	b.mu.Unlock()
	return b.clean
}

// Returns the base directories seen so far.
func (b *fakeBuilder) seen() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

// Starts a server on a socket in a temporary directory.
func startServer(t *testing.T, b builder.Builder) (*Server, string) {
	t.Helper()

	dir, err := os.MkdirTemp("", "cruxpkg")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	socket := filepath.Join(dir, "d.sock")

	srv, err := New(Config{
		SocketPath: socket,
		PIDFile:    filepath.Join(dir, "d.pid"),
		Builder:    b,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := srv.Start(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { srv.Stop() })

	return srv, socket
}

func TestNewRequiresBuilder(t *testing.T) {
	if _, err := New(Config{}); !errors.Is(err, ErrNoBuilder) {
		t.Fatalf("New() error = %v, want ErrNoBuilder", err)
	}
}

func TestStartWritesPIDAndSocket(t *testing.T) {
	srv, socket := startServer(t, &fakeBuilder{})

	info, err := os.Stat(socket)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != socketMode {
		t.Fatalf("socket mode = %v, want %v", info.Mode().Perm(), os.FileMode(socketMode))
	}

	data, err := os.ReadFile(srv.pidFile)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(data)) == "" {
		t.Fatal("empty PID file")
	}
}

func TestBuildStreamsEvents(t *testing.T) {
	b := &fakeBuilder{script: `echo "building $1"; echo "careful" >&2; exit 2`}
	_, socket := startServer(t, b)

	var events []process.Event
	status, err := client.Build(context.Background(), socket, protocol.BuildRequest{
		BaseDir: t.TempDir(),
		Targets: []string{"hello"},
	}, func(ev process.Event) {
		events = append(events, ev)
	})
	if err != nil {
		t.Fatal(err)
	}

	if status.Code != 2 {
		t.Fatalf("status = %v, want exit status 2", status)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3: %+v", len(events), events)
	}
	if last := events[len(events)-1]; last.Kind != process.Terminal {
		t.Fatalf("last event = %+v, want terminal", last)
	}

	var stdout, stderr string
	for _, ev := range events {
		switch ev.Kind {
		case process.Stdout:
			stdout = ev.Line
		case process.Stderr:
			stderr = ev.Line
		}
	}
	if stdout != "building hello" || stderr != "careful" {
		t.Fatalf("stdout = %q, stderr = %q", stdout, stderr)
	}
}

func TestBuildLaunchFailure(t *testing.T) {
	b := &fakeBuilder{script: "true"}
	_, socket := startServer(t, b)

	_, err := client.Build(context.Background(), socket, protocol.BuildRequest{
		BaseDir: filepath.Join(t.TempDir(), "missing"),
	}, func(process.Event) {
		t.Fatal("no events expected")
	})

	var remote *client.RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("error = %v, want RemoteError", err)
	}
}

func TestBuildDisconnectAbandons(t *testing.T) {
	b := &fakeBuilder{script: `echo started; exec sleep 30`}
	srv, socket := startServer(t, b)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dir := t.TempDir()
	errc := make(chan error, 1)
	go func() {
		_, err := client.Build(ctx, socket, protocol.BuildRequest{BaseDir: dir}, func(ev process.Event) {
			if ev.Kind == process.Stdout {
				cancel()
			}
		})
		errc <- err
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("error = %v, want context.Canceled", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("client did not return")
	}

	deadline := time.Now().Add(10 * time.Second)
	for {
		srv.mu.Lock()
		active := srv.active
		srv.mu.Unlock()
		if active == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("build still active after disconnect")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestClean(t *testing.T) {
	b := &fakeBuilder{}
	_, socket := startServer(t, b)

	if err := client.Clean(context.Background(), socket, protocol.CleanRequest{BaseDir: "/src"}); err != nil {
		t.Fatal(err)
	}
	if calls := b.seen(); len(calls) != 1 || calls[0] != "/src" {
		t.Fatalf("calls = %v", calls)
	}
}

func TestCleanFailureCarriesOutput(t *testing.T) {
	b := &fakeBuilder{clean: &builder.CleanError{
		Stdout: "refusing\n",
		Stderr: "broken\n",
		Status: process.ExitStatus{Code: 3},
	}}
	_, socket := startServer(t, b)

	err := client.Clean(context.Background(), socket, protocol.CleanRequest{BaseDir: "/src"})

	var remote *client.RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("error = %v, want RemoteError", err)
	}
	if remote.Stdout != "refusing\n" || remote.Stderr != "broken\n" {
		t.Fatalf("unexpected output %+v", remote)
	}
	if remote.Code == nil || *remote.Code != 3 {
		t.Fatalf("code = %v, want 3", remote.Code)
	}
}

func TestStatusCounts(t *testing.T) {
	b := &fakeBuilder{script: "echo ok"}
	_, socket := startServer(t, b)

	ctx := context.Background()
	if _, err := client.Build(ctx, socket, protocol.BuildRequest{BaseDir: t.TempDir()}, func(process.Event) {}); err != nil {
		t.Fatal(err)
	}
	if err := client.Clean(ctx, socket, protocol.CleanRequest{BaseDir: "/src"}); err != nil {
		t.Fatal(err)
	}

	status, err := client.Status(ctx, socket)
	if err != nil {
		t.Fatal(err)
	}
	if !status.Running || status.Pid != os.Getpid() {
		t.Fatalf("unexpected status %+v", status)
	}
	if status.Builds != 1 || status.Cleans != 1 {
		t.Fatalf("builds = %d, cleans = %d, want 1 and 1", status.Builds, status.Cleans)
	}
}

func TestShutdown(t *testing.T) {
	srv, socket := startServer(t, &fakeBuilder{})

	if err := client.Shutdown(context.Background(), socket); err != nil {
		t.Fatal(err)
	}

	select {
	case <-srv.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}

	if _, err := os.Stat(socket); !os.IsNotExist(err) {
		t.Fatalf("socket still present: %v", err)
	}
}

func TestStatusWithoutDaemon(t *testing.T) {
	srv, _ := startServer(t, &fakeBuilder{})

	_, err := client.Status(context.Background(), filepath.Join(filepath.Dir(srv.socketPath), "missing.sock"))
	if !errors.Is(err, client.ErrConnect) {
		t.Fatalf("error = %v, want ErrConnect", err)
	}
}

func TestUnknownCommand(t *testing.T) {
	_, socket := startServer(t, &fakeBuilder{})

	conn, err := net.Dial("unix", socket)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(`{"command":"bogus"}` + "\n")); err != nil {
		t.Fatal(err)
	}

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		t.Fatal(err)
	}

	env, payload, err := protocol.Decode(line)
	if err != nil {
		t.Fatal(err)
	}
	if env.Command != protocol.CmdError {
		t.Fatalf("command = %q, want error", env.Command)
	}

	result, err := protocol.DecodePayload[protocol.ErrorResult](payload)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(result.Message, "unknown command") {
		t.Fatalf("message = %q", result.Message)
	}
}
