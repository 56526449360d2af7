package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/dispatch"
	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/nlp"
	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/system"
	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/version"
)

const maxBodyBytes = 1 << 20

type execRequest struct {
	Cmd string `json:"cmd"`
}

type execResponse struct {
	OK          bool       `json:"ok"`
	Out         string     `json:"out"`
	Interpreted string     `json:"interpreted,omitempty"`
	Source      nlp.Source `json:"source,omitempty"`
}

type nlpRequest struct {
	Text string `json:"text"`
}

type nlpResponse struct {
	OK          bool       `json:"ok"`
	Interpreted string     `json:"interpreted"`
	Source      nlp.Source `json:"source"`
}

type errorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

type workspaceInfo struct {
	Root string `json:"root"`
	Cwd  string `json:"cwd"`
}

type infoResponse struct {
	Version   version.Info    `json:"version"`
	Profile   *system.Profile `json:"profile,omitempty"`
	Workspace workspaceInfo   `json:"workspace"`
	Commands  []string        `json:"commands"`
}

func (s *HTTPServer) handleExec(w http.ResponseWriter, r *http.Request) {
	var req execRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	status, body := s.execute(r.Context(), req.Cmd)
	writeJSON(w, status, body)
}

// execute runs one request and shapes the response shared by /api/exec and
// the websocket.
func (s *HTTPServer) execute(ctx context.Context, cmd string) (int, interface{}) {
	report, err := s.dispatcher.Execute(ctx, cmd)
	if err != nil {
		s.logger.WithError(err).WithField("requestId", requestIDFrom(ctx)).Info("exec_rejected")
		return http.StatusBadRequest, errorResponse{Error: dispatch.UserMessage(err)}
	}
	return http.StatusOK, execResponse{
		OK:          true,
		Out:         report.String(),
		Interpreted: report.Interpreted,
		Source:      report.Source,
	}
}

func (s *HTTPServer) handleNLP(w http.ResponseWriter, r *http.Request) {
	var req nlpRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if req.Text == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Empty text"})
		return
	}

	interp := s.dispatcher.Interpreter()
	if interp == nil {
		writeJSON(w, http.StatusOK, errorResponse{Error: "Could not interpret"})
		return
	}
	in, ok := interp.Interpret(r.Context(), req.Text)
	if !ok {
		writeJSON(w, http.StatusOK, errorResponse{Error: "Could not interpret"})
		return
	}
	writeJSON(w, http.StatusOK, nlpResponse{OK: true, Interpreted: in.Command, Source: in.Source})
}

func (s *HTTPServer) handleInfo(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	profile, err := system.DetectContext(ctx)
	if err != nil {
		s.logger.WithError(err).Debug("host_profile_partial")
	}
	ws := s.dispatcher.Workspace()
	writeJSON(w, http.StatusOK, infoResponse{
		Version:   version.Get(),
		Profile:   profile,
		Workspace: workspaceInfo{Root: ws.Root(), Cwd: ws.Cwd()},
		Commands:  s.dispatcher.Verbs(),
	})
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"uptime": time.Since(s.started).Round(time.Second).String(),
	})
}

// decodeBody treats an empty body as an empty object.
func decodeBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
