package gateway

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/dispatch"
	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/fileops"
	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/sandbox"
	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/system"
)

func newDispatcher(t *testing.T) *dispatch.Dispatcher {
	t.Helper()
	ws, err := sandbox.New(filepath.Join(t.TempDir(), "ws"), []string{"/etc", "/proc"})
	require.NoError(t, err)
	return dispatch.New(fileops.New(ws), system.NewStats(), nil)
}

func startGateway(t *testing.T, s *Server) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("gateway did not stop")
		}
	})
	return ln.Addr().String()
}

type client struct {
	conn net.Conn
	r    *bufio.Reader
	id   int
}

func dial(t *testing.T, addr string) *client {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))
	t.Cleanup(func() { conn.Close() })
	return &client{conn: conn, r: bufio.NewReader(conn)}
}

func (c *client) exec(t *testing.T, cmd string) string {
	t.Helper()
	c.id++
	req, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0", "id": c.id, "method": "vshell.exec",
		"params": map[string]string{"cmd": cmd},
	})
	require.NoError(t, err)
	_, err = fmt.Fprintf(c.conn, "%s\n", req)
	require.NoError(t, err)

	line, err := c.r.ReadString('\n')
	require.NoError(t, err)
	var resp struct {
		Result struct {
			Out string `json:"out"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(line), &resp))
	return resp.Result.Out
}

func TestSharedWorkspace(t *testing.T) {
	d := newDispatcher(t)
	addr := startGateway(t, NewServer("", MCPHandler{Dispatcher: d}, nil))
	root := d.Workspace().Root()

	a, b := dial(t, addr), dial(t, addr)
	assert.Equal(t, "Directory 'docs' created.", a.exec(t, "mkdir docs"))
	assert.Equal(t, "Changed directory to "+filepath.Join(root, "docs"), a.exec(t, "cd docs"))
	assert.Equal(t, filepath.Join(root, "docs"), b.exec(t, "pwd"))
}

func TestIsolatedSessions(t *testing.T) {
	d := newDispatcher(t)
	addr := startGateway(t, NewServer("", MCPHandler{Dispatcher: d, Isolate: true}, nil))
	root := d.Workspace().Root()

	a, b := dial(t, addr), dial(t, addr)
	a.exec(t, "mkdir docs && cd docs")
	assert.Equal(t, filepath.Join(root, "docs"), a.exec(t, "pwd"))
	assert.Equal(t, root, b.exec(t, "pwd"))
	assert.Equal(t, root, d.Workspace().Cwd())
}

func TestSessionTracking(t *testing.T) {
	s := NewServer("", MCPHandler{Dispatcher: newDispatcher(t)}, nil)
	addr := startGateway(t, s)

	c := dial(t, addr)
	c.exec(t, "pwd")
	require.Len(t, s.ListSessions(), 1)
	assert.NotEmpty(t, s.ListSessions()[0].ID)

	c.conn.Close()
	assert.Eventually(t, func() bool { return s.SessionCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestMaxSessions(t *testing.T) {
	s := NewServer("", MCPHandler{Dispatcher: newDispatcher(t)}, nil)
	s.SetMaxSessions(1)
	addr := startGateway(t, s)

	first := dial(t, addr)
	first.exec(t, "pwd")

	second := dial(t, addr)
	_, err := second.r.ReadString('\n')
	assert.Error(t, err)
}

func TestAllowlistAuthorizer(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, AllowlistAuthorizer{}.Allow(ctx, "10.0.0.1:5000"))
	assert.NoError(t, AllowlistAuthorizer{Allowed: []string{"127.0.0.1"}}.Allow(ctx, "127.0.0.1:4000"))
	assert.NoError(t, AllowlistAuthorizer{Allowed: []string{"10.0.0.0/8"}}.Allow(ctx, "10.1.2.3:80"))
	assert.Error(t, AllowlistAuthorizer{Allowed: []string{"10.0.0.0/8"}}.Allow(ctx, "192.168.1.1:80"))

	s := NewServer("", MCPHandler{Dispatcher: newDispatcher(t)}, AllowlistAuthorizer{Allowed: []string{"192.0.2.1"}})
	addr := startGateway(t, s)
	c := dial(t, addr)
	_, err := c.r.ReadString('\n')
	assert.Error(t, err)
}
