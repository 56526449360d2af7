// Package app assembles the shell components from configuration and runs
// the network front ends.
package app

import (
	"context"
	"fmt"
	"net"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/agent"
	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/config"
	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/dispatch"
	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/fileops"
	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/gateway"
	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/logging"
	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/nlp"
	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/rpc"
	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/sandbox"
	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/system"
	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/server"
)

// App holds the wired components. Gateway is nil unless an address is configured.
type App struct {
	Config     *config.Config
	Logger     logrus.FieldLogger
	Dispatcher *dispatch.Dispatcher
	HTTP       *server.HTTPServer
	RPC        *rpc.Server
	Gateway    *gateway.Server
}

// NewDispatcher builds the sandbox, file and system operations and the
// interpreter described by cfg.
func NewDispatcher(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (*dispatch.Dispatcher, error) {
	if logger == nil {
		logger = logging.Discard()
	}

	ws, err := sandbox.New(cfg.Workspace.Root, cfg.ForbiddenRoots())
	if err != nil {
		return nil, err
	}

	files := fileops.New(ws)
	maxRead, err := cfg.MaxReadSize()
	if err != nil {
		return nil, err
	}
	files.SetMaxReadSize(maxRead)

	stats := system.NewStats()
	stats.Interval = cfg.CPUInterval()

	fallback, err := agent.NewFallback(ctx, cfg.FallbackOptions())
	if err != nil {
		return nil, fmt.Errorf("fallback: %w", err)
	}
	interp := nlp.NewInterpreter(fallback)
	interp.SetLogger(logger.WithField("component", "nlp"))

	d := dispatch.New(files, stats, interp)
	d.SetLogger(logger.WithField("component", "dispatch"))
	d.Disable(cfg.Commands.Disabled...)

	logger.WithFields(logrus.Fields{
		"root":     ws.Root(),
		"fallback": cfg.Fallback.Provider,
		"commands": d.Verbs(),
	}).Info("workspace_ready")
	return d, nil
}

// Build wires every front end around one dispatcher.
func Build(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (*App, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	d, err := NewDispatcher(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:     cfg,
		Logger:     logger,
		Dispatcher: d,
		HTTP: server.NewHTTPServer(d, server.HTTPOptions{
			StaticDir:      cfg.Server.StaticDir,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			Logger:         logger.WithField("component", "http"),
		}),
		RPC: rpc.NewServer(d, logger.WithField("component", "grpc")),
	}

	if cfg.Gateway.Addr != "" {
		handler := gateway.MCPHandler{
			Dispatcher: d,
			Isolate:    cfg.Gateway.IsolateSessions,
			Logger:     logger.WithField("component", "mcp"),
		}
		gw := gateway.NewServer(cfg.Gateway.Addr, handler, gateway.AllowlistAuthorizer{Allowed: cfg.Gateway.AllowedAddrs})
		gw.SetMaxSessions(cfg.Gateway.MaxSessions)
		gw.SetLogger(logger.WithField("component", "gateway"))
		a.Gateway = gw
	}
	return a, nil
}

// Listeners are the sockets Serve runs on. A nil listener disables that front end.
type Listeners struct {
	HTTP    net.Listener
	GRPC    net.Listener
	Gateway net.Listener
}

// Listen opens the configured addresses. An empty gRPC address disables gRPC.
func (a *App) Listen() (*Listeners, error) {
	var ls Listeners
	var err error
	closeAll := func() {
		for _, ln := range []net.Listener{ls.HTTP, ls.GRPC, ls.Gateway} {
			if ln != nil {
				_ = ln.Close()
			}
		}
	}

	if ls.HTTP, err = net.Listen("tcp", a.Config.Server.HTTPAddr); err != nil {
		return nil, fmt.Errorf("listen http: %w", err)
	}
	if addr := a.Config.Server.GRPCAddr; addr != "" {
		if ls.GRPC, err = net.Listen("tcp", addr); err != nil {
			closeAll()
			return nil, fmt.Errorf("listen grpc: %w", err)
		}
	}
	if a.Gateway != nil {
		if ls.Gateway, err = net.Listen("tcp", a.Gateway.Addr()); err != nil {
			closeAll()
			return nil, fmt.Errorf("listen gateway: %w", err)
		}
	}
	return &ls, nil
}

// Serve runs every front end with a listener until ctx is cancelled or one of
// them fails, which stops the others.
func (a *App) Serve(ctx context.Context, ls *Listeners) error {
	g, ctx := errgroup.WithContext(ctx)

	if ls.HTTP != nil {
		g.Go(func() error { return a.HTTP.Serve(ctx, ls.HTTP, a.Config.ShutdownTimeout()) })
	}
	if ls.GRPC != nil {
		g.Go(func() error { return a.RPC.Serve(ctx, ls.GRPC) })
	}
	if ls.Gateway != nil && a.Gateway != nil {
		g.Go(func() error { return a.Gateway.Serve(ctx, ls.Gateway) })
	}
	return g.Wait()
}

// Run listens on the configured addresses and serves until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ls, err := a.Listen()
	if err != nil {
		return err
	}
	return a.Serve(ctx, ls)
}
