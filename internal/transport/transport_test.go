// SPDX-License-Identifier: MIT
package transport

import (
	"bytes"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	applog "audiointel/internal/log"
	"audiointel/internal/predict"
	"audiointel/pkg/utils"
)

type failingTransport struct{ err error }

func (f failingTransport) Send(any) error { return f.err }
func (f failingTransport) Close() error   { return f.err }

func TestMulti(t *testing.T) {
	a, b := &utils.MockTransport{}, &utils.MockTransport{}
	boom := errors.New("boom")
	m := Multi{a, failingTransport{boom}, b}

	if err := m.Send("hello"); !errors.Is(err, boom) {
		t.Errorf("Send() error = %v, want boom", err)
	}
	if len(a.Messages()) != 1 || len(b.Messages()) != 1 {
		t.Error("a failing transport must not stop delivery to the others")
	}
	if err := m.Close(); !errors.Is(err, boom) {
		t.Errorf("Close() error = %v, want boom", err)
	}
	if !a.Closed() || !b.Closed() {
		t.Error("Close should reach every transport")
	}
}

func TestMessageJSON(t *testing.T) {
	var s predict.Snapshot
	s.Section.Current = predict.Drop
	state, err := json.Marshal(NewStateMessage(s, predict.Camera{}, predict.Spread{Direction: predict.SpreadExpand}))
	if err != nil {
		t.Fatalf("marshal state: %v", err)
	}
	for _, want := range []string{`"type":"state"`, `"currentSection":"drop"`, `"direction":"expand"`} {
		if !strings.Contains(string(state), want) {
			t.Errorf("state JSON %s missing %s", state, want)
		}
	}

	effects, err := json.Marshal(NewEffectsMessage([]predict.Effect{
		{Params: predict.DropParams{Intensity: 1, DurationMs: 1000}, TimestampMs: 5},
	}))
	if err != nil {
		t.Fatalf("marshal effects: %v", err)
	}
	if !strings.Contains(string(effects), `"type":"effects"`) || !strings.Contains(string(effects), `"type":"drop"`) {
		t.Errorf("effects JSON = %s", effects)
	}
}

func TestLoggingTransportSectionChanges(t *testing.T) {
	var buf bytes.Buffer
	applog.SetOutput(&buf)
	defer applog.SetOutput(os.Stderr)

	lt := NewLoggingTransport()
	var s predict.Snapshot
	s.Section.Current = predict.Verse
	for range 3 {
		_ = lt.Send(NewStateMessage(s, predict.Camera{}, predict.Spread{}))
	}
	s.Section.Current = predict.Chorus
	_ = lt.Send(NewStateMessage(s, predict.Camera{}, predict.Spread{}))

	out := buf.String()
	if n := strings.Count(out, "Section: verse"); n != 1 {
		t.Errorf("verse logged %d times, want once:\n%s", n, out)
	}
	if !strings.Contains(out, "Section: chorus") {
		t.Errorf("chorus change not logged:\n%s", out)
	}
}

func newTestServer(t *testing.T, staticDir string) (*WebSocketTransport, *httptest.Server) {
	t.Helper()
	wst := NewWebSocketTransport("", staticDir)
	srv := httptest.NewServer(wst.Handler())
	t.Cleanup(func() {
		_ = wst.Close()
		srv.Close()
	})
	return wst, srv
}

func TestWebSocketBroadcast(t *testing.T) {
	wst, srv := newTestServer(t, "")

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for wst.Clients() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	var s predict.Snapshot
	s.Frames = 9
	if err := wst.Send(NewStateMessage(s, predict.Camera{}, predict.Spread{})); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got struct {
		Type  string `json:"type"`
		State struct {
			Frames uint64 `json:"frames"`
		} `json:"state"`
	}
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if got.Type != TypeState || got.State.Frames != 9 {
		t.Errorf("received %+v, want state with 9 frames", got)
	}
}

func TestWebSocketStaticFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>viz</html>"), 0644); err != nil {
		t.Fatal(err)
	}
	_, srv := newTestServer(t, dir)

	resp, err := http.Get(srv.URL + "/index.html")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/index.html", nil)
	pre, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS error = %v", err)
	}
	pre.Body.Close()
	if pre.StatusCode != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", pre.StatusCode)
	}
}

func TestWebSocketNoStaticDir(t *testing.T) {
	_, srv := newTestServer(t, "")
	resp, err := http.Get(srv.URL + "/index.html")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404 without a static dir", resp.StatusCode)
	}
}

func TestListenWithFallback(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("cannot listen: %v", err)
	}
	defer taken.Close()

	port := taken.Addr().(*net.TCPAddr).Port
	ln, err := listenWithFallback(taken.Addr().String(), 5)
	if err != nil {
		t.Skipf("no neighbouring port free: %v", err)
	}
	defer ln.Close()

	got := ln.Addr().(*net.TCPAddr).Port
	if got == port || got > port+4 {
		t.Errorf("bound port %d, want one of the next 4 after %d", got, port)
	}
}

func TestListenWithFallbackInvalid(t *testing.T) {
	for _, addr := range []string{"nonsense", "127.0.0.1:http-ish"} {
		if _, err := listenWithFallback(addr, 1); err == nil {
			t.Errorf("listenWithFallback(%q) should fail", addr)
		}
	}
}

func TestWebSocketStartAndClose(t *testing.T) {
	wst := NewWebSocketTransport("127.0.0.1:0", "")
	addr, err := wst.Start()
	if err != nil {
		t.Skipf("cannot listen: %v", err)
	}
	if _, port, _ := net.SplitHostPort(addr); port == "0" {
		t.Errorf("Start() returned unbound address %s", addr)
	} else if _, err := strconv.Atoi(port); err != nil {
		t.Errorf("Start() returned bad port %q", port)
	}
	if err := wst.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := wst.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestJSONTransport(t *testing.T) {
	var buf bytes.Buffer
	j := NewJSONTransport(&buf)
	_ = j.Send(NewStateMessage(predict.Snapshot{Frames: 1}, predict.Camera{}, predict.Spread{}))
	_ = j.Send(NewEffectsMessage([]predict.Effect{{Params: predict.BeatParams{Strength: 0.5}}}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("wrote %d lines, want 2:\n%s", len(lines), buf.String())
	}
	var first struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil || first.Type != TypeState {
		t.Errorf("first line = %s (%v), want a state message", lines[0], err)
	}
}
