package rpc

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/dispatch"
	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/logging"
	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/metrics"
)

// Server implements ShellServer on top of a dispatcher.
type Server struct {
	dispatcher *dispatch.Dispatcher
	logger     logrus.FieldLogger
}

func NewServer(d *dispatch.Dispatcher, logger logrus.FieldLogger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Server{dispatcher: d, logger: logger}
}

func (s *Server) Exec(ctx context.Context, req *ExecRequest) (*ExecResponse, error) {
	report, err := s.dispatcher.Execute(ctx, req.Cmd)
	switch {
	case errors.Is(err, dispatch.ErrEmptyCommand):
		return nil, status.Error(codes.InvalidArgument, dispatch.UserMessage(err))
	case err != nil:
		return &ExecResponse{Error: dispatch.UserMessage(err)}, nil
	}
	return &ExecResponse{
		OK:          true,
		Out:         report.String(),
		Interpreted: report.Interpreted,
		Source:      report.Source,
	}, nil
}

func (s *Server) Translate(ctx context.Context, req *TranslateRequest) (*TranslateResponse, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, status.Error(codes.InvalidArgument, "Empty text")
	}
	interp := s.dispatcher.Interpreter()
	if interp == nil {
		return &TranslateResponse{Error: "Could not interpret"}, nil
	}
	in, ok := interp.Interpret(ctx, req.Text)
	if !ok {
		return &TranslateResponse{Error: "Could not interpret"}, nil
	}
	return &TranslateResponse{OK: true, Interpreted: in.Command, Source: in.Source}, nil
}

// NewGRPCServer returns a grpc.Server with the Shell service and the
// metrics interceptor installed.
func (s *Server) NewGRPCServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(s.observe)}, opts...)
	gs := grpc.NewServer(opts...)
	RegisterShellServer(gs, s)
	return gs
}

func (s *Server) observe(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	code := status.Code(err)

	metrics.RequestDuration.WithLabelValues("grpc", info.FullMethod).Observe(time.Since(start).Seconds())
	metrics.RequestsTotal.WithLabelValues("grpc", info.FullMethod, code.String()).Inc()
	s.logger.WithFields(logrus.Fields{
		"method":   info.FullMethod,
		"code":     code.String(),
		"duration": time.Since(start).String(),
	}).Debug("grpc_request")
	return resp, err
}

// Serve runs the service on ln until ctx is cancelled, then stops gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	gs := s.NewGRPCServer()
	go func() {
		<-ctx.Done()
		gs.GracefulStop()
	}()

	s.logger.WithField("addr", ln.Addr().String()).Info("grpc_listening")
	if err := gs.Serve(ln); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// StartGRPC listens on addr and serves until ctx is cancelled.
func StartGRPC(ctx context.Context, s *Server, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}
