// Package mcp serves the shell over JSON-RPC 2.0, framed with Content-Length
// headers or one JSON object per line, on stdio or any stream.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/dispatch"
	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/version"
)

type Server struct {
	dispatcher *dispatch.Dispatcher
	logger     logrus.FieldLogger
}

func NewServer(d *dispatch.Dispatcher) *Server {
	return &Server{dispatcher: d}
}

func (s *Server) SetLogger(logger logrus.FieldLogger) {
	s.logger = logger
}

// Serve answers requests from reader until EOF or ctx is cancelled.
// Notifications (requests without an id) get no reply.
func (s *Server) Serve(ctx context.Context, reader io.Reader, writer io.Writer) error {
	bufReader := bufio.NewReader(reader)
	bufWriter := bufio.NewWriter(writer)

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		payload, framed, err := readMessage(bufReader)
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			s.logError("mcp_read_failed", err)
			return err
		}

		out := replier{w: bufWriter, framed: framed}

		var req rpcRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			s.logWarn("mcp_parse_error", err)
			_ = out.failWithoutID(codeParseError, "parse error", err.Error())
			continue
		}
		if req.Method == "" {
			_ = out.fail(req.ID, codeInvalidRequest, "invalid request", "missing method")
			continue
		}

		if err := s.handle(ctx, req, out); err != nil {
			s.logError("mcp_write_failed", err)
			return err
		}
	}
}

func (s *Server) ServeStdio(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

func (s *Server) handle(ctx context.Context, req rpcRequest, out replier) error {
	switch req.Method {
	case "initialize":
		return out.result(req.ID, map[string]any{
			"protocolVersion": protocolVersion,
			"capabilities": map[string]any{
				"tools": map[string]any{},
			},
			"serverInfo": map[string]any{
				"name":    version.Name,
				"version": version.Version,
			},
		})
	case "ping":
		return out.result(req.ID, map[string]any{})
	case "tools/list":
		return out.result(req.ID, map[string]any{"tools": ToolDescriptors()})
	case "tools/call":
		return s.handleToolCall(ctx, req, out)
	case "vshell.exec":
		var p execParams
		if err := decodeParams(req.Params, &p); err != nil {
			return out.fail(req.ID, codeInvalidParams, "invalid params", err.Error())
		}
		res, err := s.exec(ctx, p.Cmd)
		if err != nil {
			return out.fail(req.ID, codeExecFailed, dispatch.UserMessage(err), nil)
		}
		return out.result(req.ID, res)
	case "vshell.translate":
		var p translateParams
		if err := decodeParams(req.Params, &p); err != nil {
			return out.fail(req.ID, codeInvalidParams, "invalid params", err.Error())
		}
		if strings.TrimSpace(p.Text) == "" {
			return out.fail(req.ID, codeInvalidParams, "Empty text", nil)
		}
		return out.result(req.ID, s.translate(ctx, p.Text))
	case "vshell.pwd":
		ws := s.dispatcher.Workspace()
		return out.result(req.ID, map[string]string{"cwd": ws.Cwd(), "root": ws.Root()})
	default:
		return out.fail(req.ID, codeMethodNotFound, "method not found", req.Method)
	}
}

func (s *Server) handleToolCall(ctx context.Context, req rpcRequest, out replier) error {
	var call toolCallParams
	if err := decodeParams(req.Params, &call); err != nil {
		return out.fail(req.ID, codeInvalidParams, "invalid params", err.Error())
	}

	switch call.Name {
	case ToolExec:
		var p execParams
		if err := decodeParams(call.Arguments, &p); err != nil {
			return out.fail(req.ID, codeInvalidParams, "invalid arguments", err.Error())
		}
		res, err := s.exec(ctx, p.Cmd)
		if err != nil {
			return out.result(req.ID, textResult(dispatch.UserMessage(err), true))
		}
		return out.result(req.ID, textResult(res.Out, false))
	case ToolTranslate:
		var p translateParams
		if err := decodeParams(call.Arguments, &p); err != nil {
			return out.fail(req.ID, codeInvalidParams, "invalid arguments", err.Error())
		}
		res := s.translate(ctx, p.Text)
		if !res.OK {
			return out.result(req.ID, textResult(res.Error, true))
		}
		return out.result(req.ID, textResult(res.Interpreted, false))
	case "":
		return out.fail(req.ID, codeInvalidParams, "invalid params", "missing tool name")
	default:
		return out.fail(req.ID, codeMethodNotFound, "tool not found", call.Name)
	}
}

func (s *Server) exec(ctx context.Context, cmd string) (*execResult, error) {
	report, err := s.dispatcher.Execute(ctx, cmd)
	if err != nil {
		s.logInfo("mcp_exec_rejected", logrus.Fields{"error": err.Error()})
		return nil, err
	}
	return &execResult{
		OK:          true,
		Out:         report.String(),
		Interpreted: report.Interpreted,
		Source:      string(report.Source),
	}, nil
}

func (s *Server) translate(ctx context.Context, text string) translateResult {
	interp := s.dispatcher.Interpreter()
	if interp == nil || strings.TrimSpace(text) == "" {
		return translateResult{Error: "Could not interpret"}
	}
	in, ok := interp.Interpret(ctx, text)
	if !ok {
		return translateResult{Error: "Could not interpret"}
	}
	return translateResult{OK: true, Interpreted: in.Command, Source: string(in.Source)}
}

func decodeParams(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, v)
}

func textResult(text string, isError bool) ToolResult {
	return ToolResult{Content: []ToolContent{{Type: "text", Text: text}}, IsError: isError}
}

// replier writes responses in the framing of the request being answered.
type replier struct {
	w      *bufio.Writer
	framed bool
}

func (r replier) result(id interface{}, result interface{}) error {
	if id == nil {
		return nil
	}
	return r.send(rpcResponse{JSONRPC: "2.0", ID: id, Result: result})
}

func (r replier) fail(id interface{}, code int, message string, data interface{}) error {
	if id == nil {
		return nil
	}
	return r.send(rpcResponse{JSONRPC: "2.0", ID: id, Error: &rpcError{Code: code, Message: message, Data: data}})
}

// failWithoutID replies even without an id, as for unparseable input.
func (r replier) failWithoutID(code int, message string, data interface{}) error {
	return r.send(rpcResponse{JSONRPC: "2.0", Error: &rpcError{Code: code, Message: message, Data: data}})
}

func (r replier) send(resp rpcResponse) error {
	payload, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return writeMessage(r.w, payload, r.framed)
}

func (s *Server) logInfo(msg string, fields logrus.Fields) {
	if s.logger != nil {
		s.logger.WithFields(fields).Info(msg)
	}
}

func (s *Server) logWarn(msg string, err error) {
	if s.logger != nil {
		s.logger.WithError(err).Warn(msg)
	}
}

func (s *Server) logError(msg string, err error) {
	if s.logger != nil {
		s.logger.WithError(err).Error(msg)
	}
}
