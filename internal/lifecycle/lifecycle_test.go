package lifecycle

import (
	"cand/internal/global"
	"cand/internal/logctx"
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"
)

// Listens like systemd on a temporary NOTIFY_SOCKET
func fakeNotifySocket(t *testing.T) (conn *net.UnixConn) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notify.sock")
	conn, err := net.ListenUnixgram("unixgram", &net.UnixAddr{Name: path, Net: "unixgram"})
	if err != nil {
		t.Fatalf("failed to listen on notify socket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	t.Setenv("NOTIFY_SOCKET", path)
	return
}

func readNotify(t *testing.T, conn *net.UnixConn) string {
	t.Helper()
	buf := make([]byte, 512)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, err := conn.Read(buf)
	if err != nil {
		t.Fatalf("failed reading notify message: %v", err)
	}
	return string(buf[:n])
}

func TestNotifyMessages(t *testing.T) {
	ctx := context.Background()
	conn := fakeNotifySocket(t)

	tests := []struct {
		name       string
		send       func() error
		wantPrefix string
	}{
		{"ready", func() error { return NotifyReady(ctx) }, "READY=1"},
		{"status", func() error { return NotifyStatus(ctx, "frames=10 dropped=0") }, "STATUS=frames=10 dropped=0"},
		{"stopping", func() error { return NotifyStopping(ctx) }, "STOPPING=1\nMONOTONIC_USEC="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.send(); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := readNotify(t, conn)
			if !strings.HasPrefix(got, tt.wantPrefix) {
				t.Fatalf("expected prefix %q, got %q", tt.wantPrefix, got)
			}
		})
	}
}

func TestNotifyWithoutSystemd(t *testing.T) {
	t.Setenv("NOTIFY_SOCKET", "")
	if err := NotifyReady(context.Background()); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
}

func TestNotifyMissingSocket(t *testing.T) {
	t.Setenv("NOTIFY_SOCKET", filepath.Join(t.TempDir(), "absent.sock"))
	if err := NotifyStatus(context.Background(), "x"); err == nil {
		t.Fatalf("expected dial error for missing socket")
	}
}

type fakeDaemon struct {
	shutdowns int
}

func (daemon *fakeDaemon) Shutdown() {
	daemon.shutdowns++
}

func TestHandleSignals(t *testing.T) {
	t.Setenv("NOTIFY_SOCKET", "")
	ctx := logctx.New(context.Background(), global.NSTest, global.VerbosityNone, make(chan struct{}))

	t.Run("signal shuts down", func(t *testing.T) {
		sigChan := make(chan os.Signal, 1)
		sigChan <- syscall.SIGTERM
		daemon := &fakeDaemon{}
		handleSignals(ctx, sigChan, daemon)
		if daemon.shutdowns != 1 {
			t.Fatalf("expected one shutdown, got %d", daemon.shutdowns)
		}
	})

	t.Run("context end returns without shutdown", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		daemon := &fakeDaemon{}
		handleSignals(cancelled, make(chan os.Signal), daemon)
		if daemon.shutdowns != 0 {
			t.Fatalf("expected no shutdown, got %d", daemon.shutdowns)
		}
	})
}
