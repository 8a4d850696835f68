//go:build unix

package daemon

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kiassist/kiassist/internal/apiclient"
	"github.com/kiassist/kiassist/internal/app"
	"github.com/kiassist/kiassist/internal/recent"
)

type memCreds struct{ key string }

func (m *memCreds) Get() (string, bool) { return m.key, m.key != "" }
func (m *memCreds) Has() bool           { return m.key != "" }
func (m *memCreds) Clear()              { m.key = "" }
func (m *memCreds) Set(s string) (string, error) {
	m.key = strings.TrimSpace(s)
	return "", nil
}

func newTestDaemon(t *testing.T, socketPath string) *Daemon {
	t.Helper()
	a := app.New(app.Options{
		Credentials: &memCreds{},
		Recent:      recent.New(filepath.Join(t.TempDir(), "recent.json"), nil),
	})
	return New(Config{
		SocketPath: socketPath,
		PIDFile:    filepath.Join(t.TempDir(), "daemon.pid"),
		App:        a,
	})
}

func post(t *testing.T, srv *httptest.Server, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

// TestHandler_Health tests the health endpoint and request id header
func TestHandler_Health(t *testing.T) {
	srv := httptest.NewServer(newTestDaemon(t, "").Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if _, err := uuid.Parse(resp.Header.Get(apiclient.RequestIDHeader)); err != nil {
		t.Errorf("Expected a uuid request id, got %q", resp.Header.Get(apiclient.RequestIDHeader))
	}

	var health HealthResponse
	decode(t, resp, &health)
	if health.Status != "ok" {
		t.Errorf("Expected status 'ok', got %q", health.Status)
	}
	if health.Service != ServiceName || health.PID != os.Getpid() {
		t.Errorf("Expected %s with pid %d, got %+v", ServiceName, os.Getpid(), health)
	}
}

// TestHandler_RequestIDReused tests that a caller-supplied id is echoed back
func TestHandler_RequestIDReused(t *testing.T) {
	srv := httptest.NewServer(newTestDaemon(t, "").Handler())
	defer srv.Close()

	id := uuid.NewString()
	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/echo", strings.NewReader(`{"message":"x"}`))
	req.Header.Set(apiclient.RequestIDHeader, id)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get(apiclient.RequestIDHeader); got != id {
		t.Errorf("Expected request id %s, got %s", id, got)
	}
}

// TestHandler_Echo tests a simple facade call
func TestHandler_Echo(t *testing.T) {
	srv := httptest.NewServer(newTestDaemon(t, "").Handler())
	defer srv.Close()

	resp := post(t, srv, "/api/echo", `{"message":"hello"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	var out EchoResponse
	decode(t, resp, &out)
	if out.Message != "Echo: hello" {
		t.Errorf("Expected 'Echo: hello', got %q", out.Message)
	}
}

// TestHandler_BadRequests tests method and body validation
func TestHandler_BadRequests(t *testing.T) {
	srv := httptest.NewServer(newTestDaemon(t, "").Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/echo")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", resp.StatusCode)
	}

	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"malformed json", "/api/echo", `{"message":`, http.StatusBadRequest},
		{"unknown field", "/api/echo", `{"msg":"x"}`, http.StatusBadRequest},
		{"unknown method", "/api/does_not_exist", `{}`, http.StatusNotFound},
		{"empty body", "/api/wizard_questions", ``, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, srv, tt.path, tt.body)
			if resp.StatusCode != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, resp.StatusCode)
			}
		})
	}
}

// TestHandler_APIKeyFlow tests setting, reading and clearing the key
func TestHandler_APIKeyFlow(t *testing.T) {
	srv := httptest.NewServer(newTestDaemon(t, "").Handler())
	defer srv.Close()

	var key APIKeyResponse
	decode(t, post(t, srv, "/api/get_api_key", ``), &key)
	if key.APIKey != nil {
		t.Errorf("Expected null api_key, got %q", *key.APIKey)
	}

	var set app.KeyResult
	decode(t, post(t, srv, "/api/set_api_key", `{"api_key":"abc"}`), &set)
	if !set.Success {
		t.Fatalf("Expected success, got error %q", set.Error)
	}

	var has HasKeyResponse
	decode(t, post(t, srv, "/api/check_api_key", `{}`), &has)
	if !has.HasKey {
		t.Errorf("Expected has_key true")
	}

	decode(t, post(t, srv, "/api/get_api_key", `{}`), &key)
	if key.APIKey == nil || *key.APIKey != "abc" {
		t.Errorf("Expected api_key 'abc', got %v", key.APIKey)
	}

	// No key means the message fails before any network call
	post(t, srv, "/api/clear_api_key", ``)
	var msg app.MessageResult
	decode(t, post(t, srv, "/api/send_message", `{"message":"hi"}`), &msg)
	if msg.Success || msg.Error != app.ErrAPIKeyNotConfigured {
		t.Errorf("Expected %q, got %+v", app.ErrAPIKeyNotConfigured, msg)
	}
}

// TestHandler_Projects tests validation and the recent list over HTTP
func TestHandler_Projects(t *testing.T) {
	srv := httptest.NewServer(newTestDaemon(t, "").Handler())
	defer srv.Close()

	dir := t.TempDir()
	pro := filepath.Join(dir, "amp.kicad_pro")
	if err := os.WriteFile(pro, []byte("{}"), 0o644); err != nil {
		t.Fatalf("Failed to write project: %v", err)
	}
	body, _ := json.Marshal(PathRequest{Path: pro})

	var v struct {
		Valid bool `json:"valid"`
		Info  struct {
			ProjectName string `json:"project_name"`
		} `json:"info"`
	}
	decode(t, post(t, srv, "/api/validate_project", string(body)), &v)
	if !v.Valid || v.Info.ProjectName != "amp" {
		t.Errorf("Expected valid project 'amp', got %+v", v)
	}

	var added app.RecentResult
	decode(t, post(t, srv, "/api/add_recent_project", string(body)), &added)
	if !added.Success {
		t.Fatalf("Expected success, got %q", added.Error)
	}

	var list RecentProjectsResponse
	decode(t, post(t, srv, "/api/recent_projects", ``), &list)
	if len(list.Projects) != 1 || list.Projects[0].Path != pro {
		t.Errorf("Expected [%s], got %+v", pro, list.Projects)
	}

	var note app.NoteResult
	noteBody, _ := json.Marshal(InjectNoteRequest{ProjectPath: pro, Text: "hi"})
	decode(t, post(t, srv, "/api/inject_test_note", string(noteBody)), &note)
	if !note.Success || !note.CreatedNew {
		t.Errorf("Expected new schematic, got %+v", note)
	}
}

// TestRun_UnixSocket tests the full lifecycle over a real socket
func TestRun_UnixSocket(t *testing.T) {
	// Short path; unix socket paths are length limited
	dir, err := os.MkdirTemp("", "kad")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)
	sock := filepath.Join(dir, "d.sock")

	d := newTestDaemon(t, sock)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	c := apiclient.New(sock)
	defer c.CloseIdleConnections()

	deadline := time.Now().Add(5 * time.Second)
	for {
		var h HealthResponse
		err := c.GetJSON(context.Background(), "/health", &h)
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			cancel()
			t.Fatalf("Daemon did not become healthy: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	var out EchoResponse
	if err := c.Call(context.Background(), "echo", EchoRequest{Message: "sock"}, &out); err != nil {
		t.Fatalf("PostJSON failed: %v", err)
	}
	if out.Message != "Echo: sock" {
		t.Errorf("Expected 'Echo: sock', got %q", out.Message)
	}

	err = c.PostJSON(context.Background(), "/api/nope", Empty{}, nil)
	if !apiclient.IsNotFound(err) {
		t.Errorf("Expected not found error, got %v", err)
	}

	status, err := d.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus failed: %v", err)
	}
	if !status.Running || status.PID != os.Getpid() {
		t.Errorf("Expected running daemon with our PID, got %+v", status)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	if _, err := os.Stat(sock); !os.IsNotExist(err) {
		t.Errorf("Expected socket to be removed, got %v", err)
	}
	if d.IsRunning() {
		t.Errorf("Expected daemon to report not running")
	}
}

// TestGetStatus_NotRunning tests status without a pid file
func TestGetStatus_NotRunning(t *testing.T) {
	d := newTestDaemon(t, filepath.Join(t.TempDir(), "none.sock"))
	status, err := d.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus failed: %v", err)
	}
	if status.Running || status.PID != 0 {
		t.Errorf("Expected not running, got %+v", status)
	}
	if err := d.Stop(); err == nil {
		t.Errorf("Expected error stopping a daemon that is not running")
	}
}

// TestApiclient_ConnectionHint tests the friendly error for a missing socket
func TestApiclient_ConnectionHint(t *testing.T) {
	c := apiclient.New(filepath.Join(t.TempDir(), "missing.sock"))
	err := c.GetJSON(context.Background(), "/health", &HealthResponse{})
	if err == nil || !strings.Contains(err.Error(), "kiassist daemon start") {
		t.Errorf("Expected connection hint, got %v", err)
	}
}

// TestPIDFile_Acquire tests stale replacement and refusal of a live owner
func TestPIDFile_Acquire(t *testing.T) {
	p := pidFile(filepath.Join(t.TempDir(), "run", "daemon.pid"))

	if err := p.acquire(); err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	pid, err := p.read()
	if err != nil || pid != os.Getpid() {
		t.Fatalf("Expected pid %d, got %d (%v)", os.Getpid(), pid, err)
	}

	// Re-acquiring our own file succeeds
	if err := p.acquire(); err != nil {
		t.Errorf("Expected re-acquire to succeed, got %v", err)
	}

	// A file naming a live process other than us is refused
	if err := os.WriteFile(string(p), []byte(strconv.Itoa(os.Getppid())), 0o600); err != nil {
		t.Fatalf("Failed to write pid file: %v", err)
	}
	if err := p.acquire(); err == nil || !strings.Contains(err.Error(), "already running") {
		t.Errorf("Expected already running error, got %v", err)
	}

	// Garbage is treated as stale
	if err := os.WriteFile(string(p), []byte("not a pid"), 0o600); err != nil {
		t.Fatalf("Failed to write pid file: %v", err)
	}
	if err := p.acquire(); err != nil {
		t.Errorf("Expected stale file to be replaced, got %v", err)
	}

	p.release()
	if _, err := os.Stat(string(p)); !os.IsNotExist(err) {
		t.Errorf("Expected pid file to be removed, got %v", err)
	}
}

// TestRemoveSocket_RefusesRegularFile tests that only sockets are removed
func TestRemoveSocket_RefusesRegularFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.sock")
	if err := removeSocket(path); err != nil {
		t.Errorf("Expected nil for missing path, got %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	if err := removeSocket(path); err == nil {
		t.Errorf("Expected error for a regular file")
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected regular file to survive, got %v", err)
	}
}

// TestRun_LiveOwnerKeepsSocket tests that a refused start leaves the socket alone
func TestRun_LiveOwnerKeepsSocket(t *testing.T) {
	dir, err := os.MkdirTemp("", "kad")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)
	sock := filepath.Join(dir, "d.sock")

	// A socket that accepts but never answers /health, like a busy daemon
	l, err := net.Listen("unix", sock)
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	defer l.Close()

	pidPath := filepath.Join(dir, "d.pid")
	if err := os.WriteFile(pidPath, []byte(strconv.Itoa(os.Getppid())), 0o600); err != nil {
		t.Fatalf("Failed to write pid file: %v", err)
	}

	d := New(Config{
		SocketPath: sock,
		PIDFile:    pidPath,
		App:        app.New(app.Options{Credentials: &memCreds{}}),
	})
	err = d.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "already running") {
		t.Fatalf("Expected already running error, got %v", err)
	}
	if _, err := os.Stat(sock); err != nil {
		t.Errorf("Expected socket to survive, got %v", err)
	}
	if pid, _ := pidFile(pidPath).read(); pid != os.Getppid() {
		t.Errorf("Expected pid file to keep %d, got %d", os.Getppid(), pid)
	}
}
