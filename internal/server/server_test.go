package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Hice-Bot/linkmark/internal/dataset"
	"github.com/Hice-Bot/linkmark/internal/match"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	root := t.TempDir()

	page := "<html><body><p>Bill Clinton spoke.</p></body></html>"
	if err := os.WriteFile(filepath.Join(root, "page.html"), []byte(page), 0644); err != nil {
		t.Fatal(err)
	}

	list := &dataset.List{Primary: []dataset.Entry{
		{Name: "Bill Clinton", Anchor: "Bill_Clinton"},
	}}
	table := match.NewTable(list, "https://ref.example/people#")
	return New(Config{Addr: ":0", Root: root}, table), root
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/healthz")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestDocAnnotates(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/doc/page.html")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "data-linkmark-href=\"https://ref.example/people#Bill_Clinton\"") {
		t.Errorf("annotated marker missing from response:\n%s", body)
	}
}

func TestDocNotFound(t *testing.T) {
	s, _ := newTestServer(t)
	if rec := get(t, s, "/doc/absent.html"); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestDocEmptyPath(t *testing.T) {
	s, _ := newTestServer(t)
	if rec := get(t, s, "/doc/"); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestDocTraversalStaysUnderRoot(t *testing.T) {
	s, root := newTestServer(t)

	// A file next to the root must not be reachable through "..".
	outside := filepath.Join(filepath.Dir(root), "secret.html")
	if err := os.WriteFile(outside, []byte("<p>secret</p>"), 0644); err != nil {
		t.Fatal(err)
	}
	defer os.Remove(outside)

	rec := get(t, s, "/doc/../secret.html")
	if rec.Code == http.StatusOK && strings.Contains(rec.Body.String(), "secret") {
		t.Error("path traversal escaped the document root")
	}
}

func TestReloadBroadcast(t *testing.T) {
	s, _ := newTestServer(t)
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dialing %s: %v", wsURL, err)
	}
	defer conn.Close()

	// Give the handler a moment to register the connection.
	time.Sleep(100 * time.Millisecond)
	s.Broadcast("reload")

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("reading broadcast: %v", err)
	}
	if string(msg) != "reload" {
		t.Errorf("message = %q, want reload", msg)
	}
}
