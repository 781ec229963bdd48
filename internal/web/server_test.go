package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sweeney/sos-beacon/internal/logic"
	"github.com/sweeney/sos-beacon/internal/status"
)

func newTestServer(t *testing.T) (*httptest.Server, *Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		PeriodMs:    500,
		HeartbeatMs: 900000,
		Broker:      "tcp://192.168.1.200:1883",
		HTTPAddr:    ":80",
		PinDot:      17,
		PinDash:     27,
		PinButtons:  []int{22, 23},
	}
	tr := status.NewTracker(start, cfg)
	srv := New(":0", tr)
	srv.pushInterval = 10 * time.Millisecond
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, srv, tr
}

func playback(active, mode logic.Mode) status.Playback {
	return status.Playback{
		Mode:   mode,
		Active: active,
		Phase:  logic.PhasePlaying,
		Cursor: 3,
		Dot:    true,
		Ticks:  9,
		Counts: logic.Counts{SOSCycles: 5, OKCycles: 2, Toggles: 1},
	}
}

func getBody(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, string(body)
}

func TestJSONEndpoint(t *testing.T) {
	ts, _, tr := newTestServer(t)
	tr.Update(playback(logic.ModeSOS, logic.ModeOK))
	tr.SetMQTTConnected(true)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}

	if sj.Status.Active != "SOS" {
		t.Errorf("Active: got %q, want SOS", sj.Status.Active)
	}
	if sj.Status.Mode != "OK" {
		t.Errorf("Mode: got %q, want OK", sj.Status.Mode)
	}
	if !sj.Status.Running {
		t.Error("expected Running=true")
	}
	if !sj.Status.Outputs.Dot || sj.Status.Outputs.Dash {
		t.Errorf("Outputs: got %+v", sj.Status.Outputs)
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if sj.Status.Counts.SOSCycles != 5 || sj.Status.Counts.OKCycles != 2 {
		t.Errorf("Counts: got %+v", sj.Status.Counts)
	}
	if sj.Status.Config.PeriodMs != 500 {
		t.Errorf("Config.PeriodMs: got %d, want 500", sj.Status.Config.PeriodMs)
	}
}

func TestJSONBeforeFirstTick(t *testing.T) {
	ts, _, _ := newTestServer(t)

	_, body := getBody(t, ts.URL+"/index.json")

	var sj status.StatusJSON
	if err := json.Unmarshal([]byte(body), &sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if sj.Status.Running {
		t.Error("expected Running=false before first tick")
	}
	if sj.Status.Phase != "START" {
		t.Errorf("Phase: got %q, want START", sj.Status.Phase)
	}
}

func TestJSONNetworkInfo(t *testing.T) {
	ts, _, tr := newTestServer(t)
	tr.SetNetwork(&status.NetworkInfo{Type: "wifi", IP: "192.168.1.42", Status: "connected", SSID: "MyNet"})

	_, body := getBody(t, ts.URL+"/index.json")

	var sj status.StatusJSON
	json.Unmarshal([]byte(body), &sj)
	if sj.Status.Network == nil || sj.Status.Network.IP != "192.168.1.42" {
		t.Errorf("Network: got %+v", sj.Status.Network)
	}
}

func TestHTMLEndpointRoot(t *testing.T) {
	ts, _, tr := newTestServer(t)
	tr.Update(playback(logic.ModeOK, logic.ModeOK))

	resp, body := getBody(t, ts.URL+"/")

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}
	for _, want := range []string{"SOS Beacon", "PLAYING", "tcp://192.168.1.200:1883", "--- -.-", "/ws"} {
		if !strings.Contains(body, want) {
			t.Errorf("HTML missing %q", want)
		}
	}
}

func TestHTMLEndpointIndexHTML(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, body := getBody(t, ts.URL+"/index.html")

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(body, "... --- ...") {
		t.Error("HTML missing SOS pattern")
	}
}

func TestNotFoundForUnknownPath(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, _ := getBody(t, ts.URL+"/nonexistent")

	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestStateChangesReflectedInResponse(t *testing.T) {
	ts, _, tr := newTestServer(t)
	tr.Update(playback(logic.ModeSOS, logic.ModeSOS))

	_, body := getBody(t, ts.URL+"/index.json")
	var sj status.StatusJSON
	json.Unmarshal([]byte(body), &sj)
	if sj.Status.Mode != "SOS" {
		t.Fatalf("Mode: got %q, want SOS", sj.Status.Mode)
	}

	tr.SetMode(logic.ModeOK, 2)

	_, body = getBody(t, ts.URL+"/index.json")
	json.Unmarshal([]byte(body), &sj)
	if sj.Status.Mode != "OK" {
		t.Errorf("Mode after toggle: got %q, want OK", sj.Status.Mode)
	}
	if sj.Status.Counts.Toggles != 2 {
		t.Errorf("Toggles: got %d, want 2", sj.Status.Counts.Toggles)
	}
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readStatus(t *testing.T, conn *websocket.Conn) status.StatusInner {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var sj status.StatusJSON
	if err := json.Unmarshal(data, &sj); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return sj.Status
}

func TestLiveFeedSendsInitialStatus(t *testing.T) {
	ts, _, tr := newTestServer(t)
	tr.Update(playback(logic.ModeOK, logic.ModeOK))

	conn := dialWS(t, ts)

	s := readStatus(t, conn)
	if s.Active != "OK" || s.Phase != "PLAYING" {
		t.Errorf("initial status: got active=%s phase=%s", s.Active, s.Phase)
	}
}

func TestLiveFeedPushesChanges(t *testing.T) {
	ts, _, tr := newTestServer(t)
	conn := dialWS(t, ts)

	if s := readStatus(t, conn); s.Running {
		t.Fatal("expected Running=false in initial message")
	}

	tr.Update(playback(logic.ModeSOS, logic.ModeSOS))
	s := readStatus(t, conn)
	if !s.Running || s.Cursor != 3 {
		t.Errorf("pushed status: got running=%v cursor=%d", s.Running, s.Cursor)
	}

	tr.SetMode(logic.ModeOK, 1)
	s = readStatus(t, conn)
	if s.Mode != "OK" {
		t.Errorf("pushed mode: got %s, want OK", s.Mode)
	}
}

func TestLiveFeedClosedOnShutdown(t *testing.T) {
	ts, srv, _ := newTestServer(t)
	conn := dialWS(t, ts)
	readStatus(t, conn)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	srv.Shutdown(ctx)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Errorf("expected going-away close, got %v", err)
	}
}
