// Package rpc exposes the shell as the gRPC service vshell.v1.Shell using a
// JSON codec.
package rpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/nlp"
)

const ServiceName = "vshell.v1.Shell"

const (
	execMethod      = "/" + ServiceName + "/Exec"
	translateMethod = "/" + ServiceName + "/Translate"
)

type ExecRequest struct {
	Cmd string `json:"cmd"`
}

type ExecResponse struct {
	OK          bool       `json:"ok"`
	Out         string     `json:"out,omitempty"`
	Interpreted string     `json:"interpreted,omitempty"`
	Source      nlp.Source `json:"source,omitempty"`
	Error       string     `json:"error,omitempty"`
}

type TranslateRequest struct {
	Text string `json:"text"`
}

type TranslateResponse struct {
	OK          bool       `json:"ok"`
	Interpreted string     `json:"interpreted,omitempty"`
	Source      nlp.Source `json:"source,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// ShellServer is the server API for the Shell service.
type ShellServer interface {
	Exec(context.Context, *ExecRequest) (*ExecResponse, error)
	Translate(context.Context, *TranslateRequest) (*TranslateResponse, error)
}

func RegisterShellServer(s grpc.ServiceRegistrar, srv ShellServer) {
	s.RegisterService(&shellServiceDesc, srv)
}

var shellServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ShellServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Exec", Handler: execHandler},
		{MethodName: "Translate", Handler: translateHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "vshell/v1/shell.proto",
}

func execHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ExecRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ShellServer).Exec(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: execMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ShellServer).Exec(ctx, req.(*ExecRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func translateHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(TranslateRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ShellServer).Translate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: translateMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ShellServer).Translate(ctx, req.(*TranslateRequest))
	}
	return interceptor(ctx, in, info, handler)
}
