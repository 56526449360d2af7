package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/dispatch"
	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/fileops"
	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/nlp"
	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/sandbox"
	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/system"
)

func newTestServer(t *testing.T, opts HTTPOptions) *HTTPServer {
	t.Helper()
	ws, err := sandbox.New(filepath.Join(t.TempDir(), "ws"), []string{"/etc", "/proc"})
	require.NoError(t, err)
	d := dispatch.New(fileops.New(ws), system.NewStats(), nlp.NewInterpreter(nil))
	return NewHTTPServer(d, opts)
}

func do(t *testing.T, s *HTTPServer, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	var out map[string]interface{}
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestExecEndpoint(t *testing.T) {
	s := newTestServer(t, HTTPOptions{})

	rec, out := do(t, s, http.MethodPost, "/api/exec", `{"cmd":"touch a.txt && mkdir docs && ls"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, out["ok"])
	assert.Equal(t, "Directory 'docs' created.\nFile 'a.txt' created.\na.txt\ndocs", out["out"])
	assert.NotContains(t, out, "interpreted")
}

func TestExecEndpointNotAllowedIsSuccess(t *testing.T) {
	s := newTestServer(t, HTTPOptions{})

	rec, out := do(t, s, http.MethodPost, "/api/exec", `{"cmd":"xyz123"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, out["ok"])
	assert.Equal(t, "Not allowed: xyz123", out["out"])
}

func TestExecEndpointNaturalLanguage(t *testing.T) {
	s := newTestServer(t, HTTPOptions{})

	rec, out := do(t, s, http.MethodPost, "/api/exec", `{"cmd":"ai create a folder called reports"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "mkdir reports", out["interpreted"])
	assert.Equal(t, "rules", out["source"])
	assert.Equal(t, "Directory 'reports' created.", out["out"])

	rec, out = do(t, s, http.MethodPost, "/api/exec", `{"cmd":"ai banana"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, out["ok"])
	assert.Equal(t, "AI could not interpret command", out["error"])
}

func TestExecEndpointBadInput(t *testing.T) {
	s := newTestServer(t, HTTPOptions{})

	rec, out := do(t, s, http.MethodPost, "/api/exec", `{"cmd":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid JSON body", out["error"])

	rec, out = do(t, s, http.MethodPost, "/api/exec", ``)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Empty command", out["error"])

	rec, _ = do(t, s, http.MethodGet, "/api/exec", ``)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestNLPEndpoint(t *testing.T) {
	s := newTestServer(t, HTTPOptions{})

	rec, out := do(t, s, http.MethodPost, "/api/nlp", `{"text":"delete the files a.txt, b.txt"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]interface{}{"ok": true, "interpreted": "rm a.txt b.txt", "source": "rules"}, out)

	rec, out = do(t, s, http.MethodPost, "/api/nlp", `{"text":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Empty text", out["error"])

	rec, out = do(t, s, http.MethodPost, "/api/nlp", `{"text":"banana"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]interface{}{"ok": false, "error": "Could not interpret"}, out)
}

func TestInfoAndHealth(t *testing.T) {
	s := newTestServer(t, HTTPOptions{})

	rec, out := do(t, s, http.MethodGet, "/api/info", ``)
	assert.Equal(t, http.StatusOK, rec.Code)
	ws := out["workspace"].(map[string]interface{})
	assert.Equal(t, s.dispatcher.Workspace().Root(), ws["root"])
	assert.Contains(t, out["commands"], "move")
	assert.Equal(t, "vshell", out["version"].(map[string]interface{})["name"])

	rec, out = do(t, s, http.MethodGet, "/health", ``)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", out["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, HTTPOptions{})
	do(t, s, http.MethodPost, "/api/exec", `{"cmd":"pwd"}`)

	rec, _ := do(t, s, http.MethodGet, "/metrics", ``)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "vshell_commands_total")
	assert.Contains(t, rec.Body.String(), `vshell_requests_total{code="200",route="/api/exec",transport="http"}`)
}

func TestCORSAndRequestID(t *testing.T) {
	s := newTestServer(t, HTTPOptions{AllowedOrigins: []string{"http://app.local"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/exec", nil)
	req.Header.Set("Origin", "http://app.local")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://app.local", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.local")
	req.Header.Set(requestIDHeader, "req-42")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "req-42", rec.Header().Get(requestIDHeader))
}

func TestStaticFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>vshell</h1>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644))
	s := newTestServer(t, HTTPOptions{StaticDir: dir})

	rec, _ := do(t, s, http.MethodGet, "/", ``)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h1>vshell</h1>")

	rec, _ = do(t, s, http.MethodGet, "/static/app.js", ``)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "console.log(1)", rec.Body.String())
}

func TestWebsocket(t *testing.T) {
	s := newTestServer(t, HTTPOptions{})
	ts := httptest.NewServer(s)
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/api/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(execRequest{Cmd: "mkdir a && pwd"}))
	var reply map[string]interface{}
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, true, reply["ok"])
	assert.Equal(t, "Directory 'a' created.\n"+s.dispatcher.Workspace().Root(), reply["out"])

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	reply = nil
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, "invalid JSON message", reply["error"])

	require.NoError(t, conn.WriteJSON(execRequest{Cmd: "  "}))
	reply = nil
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, "Empty command", reply["error"])
}

func TestServeShutsDownOnCancel(t *testing.T) {
	s := newTestServer(t, HTTPOptions{})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln, time.Second) }()

	resp, err := http.Post("http://"+ln.Addr().String()+"/api/exec", "application/json", bytes.NewBufferString(`{"cmd":"pwd"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}
