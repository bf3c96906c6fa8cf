package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tl/afv/pkg/analyzer"
	"github.com/tl/afv/pkg/config"
	"github.com/tl/afv/pkg/output"
	"github.com/tl/afv/pkg/parser"
)

const activeDump = `Notification Clients:
 30548  10553  com.salt.music

Output thread 0x7a2c0c1740, name AudioOut_D, tid 1512, type 0 (MIXER):
  Standby: no
  1 Tracks of which 1 are active
Type     Id Active Client Session Port Id S  Flags   Format Chn mask  SRate
7      yes   30548    89     41 A  0x000 00000001 00000003  48000
`

func newTestReport(t *testing.T, raw string) *output.Report {
	t.Helper()
	result, err := analyzer.NewAnalyzer().Analyze(context.Background(), "test.txt", raw)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	return output.NewReport(result)
}

func TestClient_Send_Success(t *testing.T) {
	var receivedBody []byte
	var receivedContentType string
	var receivedAuth string
	var receivedAgent string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedContentType = r.Header.Get("Content-Type")
		receivedAuth = r.Header.Get("Authorization")
		receivedAgent = r.Header.Get("User-Agent")
		receivedBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	client := NewClient()
	report := newTestReport(t, activeDump)

	resp := client.Send(context.Background(), report, SendOptions{
		URL: server.URL,
	})

	if !resp.Success() {
		t.Errorf("expected success, got error: %v", resp.Error)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
	if resp.Body != `{"status":"ok"}` {
		t.Errorf("unexpected body: %s", resp.Body)
	}
	if receivedContentType != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", receivedContentType)
	}
	if receivedAgent != "afv-webhook" {
		t.Errorf("expected User-Agent afv-webhook, got %s", receivedAgent)
	}
	if receivedAuth != "" {
		t.Errorf("expected no auth header, got %s", receivedAuth)
	}

	var payload Payload
	if err := json.Unmarshal(receivedBody, &payload); err != nil {
		t.Fatalf("failed to parse received payload: %v", err)
	}
	if payload.Event != EventSnapshot {
		t.Errorf("event = %q, want %q", payload.Event, EventSnapshot)
	}
	if payload.Report == nil || payload.Report.Summary.Tracks != 1 {
		t.Errorf("payload report = %+v, want 1 track", payload.Report)
	}
	if got := payload.Report.Snapshot.Tracks[0].ApplicationID; got != "com.salt.music" {
		t.Errorf("application id = %q, want com.salt.music", got)
	}
}

func TestClient_Send_FailureEvent(t *testing.T) {
	var payload Payload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&payload)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	resp := NewClient().Send(context.Background(), newTestReport(t, parser.SentinelNotRunning), SendOptions{URL: server.URL})
	if !resp.Success() {
		t.Fatalf("expected success, got error: %v", resp.Error)
	}
	if payload.Event != EventFailure {
		t.Errorf("event = %q, want %q", payload.Event, EventFailure)
	}
	if payload.Report.Failure != parser.SentinelNotRunning {
		t.Errorf("failure = %q", payload.Report.Failure)
	}
}

func TestClient_Send_WithBearerToken(t *testing.T) {
	var receivedAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	resp := NewClient().Send(context.Background(), newTestReport(t, activeDump), SendOptions{
		URL:   server.URL,
		Token: "secret-token-123",
	})

	if !resp.Success() {
		t.Errorf("expected success, got error: %v", resp.Error)
	}
	if receivedAuth != "Bearer secret-token-123" {
		t.Errorf("expected Bearer token, got %s", receivedAuth)
	}
}

func TestClient_Send_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal error"}`))
	}))
	defer server.Close()

	resp := NewClient().Send(context.Background(), newTestReport(t, activeDump), SendOptions{
		URL: server.URL,
	})

	if resp.Success() {
		t.Error("expected failure, got success")
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", resp.StatusCode)
	}
	if resp.Error == nil {
		t.Error("expected error to be set")
	}
}

func TestClient_Send_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	resp := NewClient().Send(context.Background(), newTestReport(t, activeDump), SendOptions{
		URL:     server.URL,
		Timeout: 50 * time.Millisecond,
	})

	if resp.Success() {
		t.Error("expected failure due to timeout")
	}
	if resp.Error == nil {
		t.Error("expected error to be set")
	}
}

func TestClient_Send_InvalidURL(t *testing.T) {
	resp := NewClient().Send(context.Background(), newTestReport(t, activeDump), SendOptions{
		URL: "://invalid-url",
	})

	if resp.Success() {
		t.Error("expected failure for invalid URL")
	}
	if resp.Error == nil {
		t.Error("expected error to be set")
	}
}

func TestClient_Send_ConnectionRefused(t *testing.T) {
	resp := NewClient().Send(context.Background(), newTestReport(t, activeDump), SendOptions{
		URL:     "http://127.0.0.1:59999", // Unlikely to be listening
		Timeout: 100 * time.Millisecond,
	})

	if resp.Success() {
		t.Error("expected failure for connection refused")
	}
	if resp.Error == nil {
		t.Error("expected error to be set")
	}
}

func TestShouldFire(t *testing.T) {
	withTracks := newTestReport(t, activeDump)
	empty := newTestReport(t, "Output thread 0x1:\n  Standby: yes\n")
	failure := newTestReport(t, parser.SentinelShizukuNotRunning)

	tests := []struct {
		name    string
		trigger config.WebhookTrigger
		report  *output.Report
		want    bool
	}{
		{"on_tracks with tracks", config.WebhookTriggerOnTracks, withTracks, true},
		{"on_tracks without tracks", config.WebhookTriggerOnTracks, empty, false},
		{"on_tracks failure", config.WebhookTriggerOnTracks, failure, false},
		{"empty trigger defaults to on_tracks", "", withTracks, true},
		{"always without tracks", config.WebhookTriggerAlways, empty, true},
		{"always failure", config.WebhookTriggerAlways, failure, true},
		{"never", config.WebhookTriggerNever, withTracks, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldFire(tt.trigger, tt.report); got != tt.want {
				t.Errorf("ShouldFire() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClient_Dispatch(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	hooks := []config.WebhookConfig{
		{Name: "tracks", URL: server.URL, Trigger: config.WebhookTriggerOnTracks},
		{Name: "disabled", URL: server.URL, Trigger: config.WebhookTriggerNever},
		{URL: server.URL, Trigger: config.WebhookTriggerAlways},
	}

	responses := NewClient().Dispatch(context.Background(), newTestReport(t, activeDump), hooks)
	if len(responses) != 2 {
		t.Fatalf("responses = %d, want 2", len(responses))
	}
	if hits.Load() != 2 {
		t.Errorf("server hits = %d, want 2", hits.Load())
	}
	if responses[0].Name != "tracks" {
		t.Errorf("responses[0].Name = %q, want tracks", responses[0].Name)
	}
	if responses[1].Name != server.URL {
		t.Errorf("responses[1].Name = %q, want url fallback", responses[1].Name)
	}
	for _, r := range responses {
		if !r.Success() {
			t.Errorf("%s failed: %v", r.Name, r.Error)
		}
	}
}

func TestResponse_Success(t *testing.T) {
	tests := []struct {
		name        string
		resp        Response
		wantSuccess bool
	}{
		{"200 OK", Response{StatusCode: 200}, true},
		{"201 Created", Response{StatusCode: 201}, true},
		{"204 No Content", Response{StatusCode: 204}, true},
		{"400 Bad Request", Response{StatusCode: 400}, false},
		{"500 Server Error", Response{StatusCode: 500}, false},
		{"With Error", Response{StatusCode: 200, Error: io.EOF}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.resp.Success(); got != tt.wantSuccess {
				t.Errorf("Success() = %v, want %v", got, tt.wantSuccess)
			}
		})
	}
}
