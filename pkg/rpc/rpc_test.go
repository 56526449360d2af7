package rpc

import (
	"context"
	"net"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/dispatch"
	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/fileops"
	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/nlp"
	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/sandbox"
	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/system"
)

func startServer(t *testing.T) *Client {
	t.Helper()
	ws, err := sandbox.New(filepath.Join(t.TempDir(), "ws"), []string{"/etc", "/proc"})
	require.NoError(t, err)
	d := dispatch.New(fileops.New(ws), system.NewStats(), nlp.NewInterpreter(nil))

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewServer(d, nil).Serve(ctx, lis) }()

	client, err := Dial("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = client.Close()
		cancel()
		assert.NoError(t, <-done)
	})
	return client
}

func TestExec(t *testing.T) {
	client := startServer(t)
	ctx := context.Background()

	resp, err := client.Exec(ctx, "touch a.txt && mkdir docs && move a.txt docs")
	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.Equal(t, "Directory 'docs' created.\nFile 'a.txt' created.\nMoved 'a.txt' to 'docs'", resp.Out)

	resp, err = client.Exec(ctx, "ai show files")
	require.NoError(t, err)
	assert.Equal(t, "ls", resp.Interpreted)
	assert.Equal(t, nlp.SourceRules, resp.Source)
	assert.Equal(t, "docs", resp.Out)

	resp, err = client.Exec(ctx, "ai banana")
	require.NoError(t, err)
	assert.False(t, resp.OK)
	assert.Equal(t, "AI could not interpret command", resp.Error)
}

func TestExecEmpty(t *testing.T) {
	client := startServer(t)

	_, err := client.Exec(context.Background(), "   ")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestTranslate(t *testing.T) {
	client := startServer(t)
	ctx := context.Background()

	resp, err := client.Translate(ctx, "create a folder called reports and move it to archive")
	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.Equal(t, "mkdir reports && move reports archive", resp.Interpreted)

	resp, err = client.Translate(ctx, "banana")
	require.NoError(t, err)
	assert.False(t, resp.OK)
	assert.Equal(t, "Could not interpret", resp.Error)

	_, err = client.Translate(ctx, "")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}
