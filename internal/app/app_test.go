package app

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/config"
	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/rpc"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Workspace.Root = filepath.Join(t.TempDir(), "ws")
	cfg.Workspace.ForbiddenRoots = []string{"/etc", "/proc"}
	cfg.Fallback.Provider = "none"
	cfg.Server.HTTPAddr = "127.0.0.1:0"
	cfg.Server.GRPCAddr = "127.0.0.1:0"
	cfg.Server.StaticDir = ""
	cfg.Gateway.Addr = "127.0.0.1:0"
	return cfg
}

func TestNewDispatcherAppliesConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Commands.Disabled = []string{"rm"}

	d, err := NewDispatcher(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, cfg.Workspace.Root, d.Workspace().Root())
	assert.NotContains(t, d.Verbs(), "rm")
	assert.Contains(t, d.Verbs(), "mkdir")

	report, err := d.Execute(context.Background(), "rm x")
	require.NoError(t, err)
	assert.Equal(t, "Unknown command: rm", report.String())
}

func TestNewDispatcherBadSize(t *testing.T) {
	cfg := testConfig(t)
	cfg.Workspace.MaxReadSize = "lots"
	_, err := NewDispatcher(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func TestBuildWithoutGateway(t *testing.T) {
	cfg := testConfig(t)
	cfg.Gateway.Addr = ""
	a, err := Build(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Nil(t, a.Gateway)
	assert.NotNil(t, a.HTTP)
	assert.NotNil(t, a.RPC)
}

func TestServeAllFrontEnds(t *testing.T) {
	cfg := testConfig(t)
	a, err := Build(context.Background(), cfg, nil)
	require.NoError(t, err)

	ls, err := a.Listen()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx, ls) }()

	// HTTP
	resp, err := http.Post("http://"+ls.HTTP.Addr().String()+"/api/exec", "application/json",
		strings.NewReader(`{"cmd":"mkdir docs"}`))
	require.NoError(t, err)
	var body struct {
		OK  bool   `json:"ok"`
		Out string `json:"out"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	assert.True(t, body.OK)
	assert.Equal(t, "Directory 'docs' created.", body.Out)

	// gRPC shares the workspace
	client, err := rpc.Dial(ls.GRPC.Addr().String())
	require.NoError(t, err)
	defer client.Close()
	rctx, rcancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer rcancel()
	out, err := client.Exec(rctx, "ls")
	require.NoError(t, err)
	assert.Equal(t, "docs", out.Out)

	// gateway
	conn, err := net.Dial("tcp", ls.Gateway.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))
	_, err = fmt.Fprintln(conn, `{"jsonrpc":"2.0","id":1,"method":"vshell.pwd"}`)
	require.NoError(t, err)
	line, err := bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, line, cfg.Workspace.Root)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop")
	}
}

func TestListenFailureClosesOthers(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	cfg := testConfig(t)
	cfg.Server.GRPCAddr = busy.Addr().String()
	a, err := Build(context.Background(), cfg, nil)
	require.NoError(t, err)

	_, err = a.Listen()
	assert.ErrorContains(t, err, "listen grpc")
}
