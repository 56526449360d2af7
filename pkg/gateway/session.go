package gateway

import (
	"context"
	"net"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/dispatch"
	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/mcp"
)

// Session tracks a single client connection.
type Session struct {
	ID         string    `json:"id"`
	RemoteAddr string    `json:"remoteAddr"`
	StartedAt  time.Time `json:"startedAt"`
}

// Handler serves one accepted connection until it closes or ctx ends.
type Handler interface {
	ServeSession(ctx context.Context, session *Session, conn net.Conn) error
}

// MCPHandler speaks JSON-RPC on each session. With Isolate set every session
// gets its own working directory; otherwise all sessions share the
// dispatcher's workspace.
type MCPHandler struct {
	Dispatcher *dispatch.Dispatcher
	Isolate    bool
	Logger     logrus.FieldLogger
}

func (h MCPHandler) ServeSession(ctx context.Context, session *Session, conn net.Conn) error {
	d := h.Dispatcher
	if h.Isolate {
		d = d.WithWorkspace(d.Workspace().Clone())
	}
	srv := mcp.NewServer(d)
	if h.Logger != nil {
		srv.SetLogger(h.Logger.WithField("session", session.ID))
	}
	return srv.Serve(ctx, conn, conn)
}
