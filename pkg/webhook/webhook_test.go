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

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/ccollicutt/lrcparse/pkg/config"
	"github.com/ccollicutt/lrcparse/pkg/lrc"
	"github.com/ccollicutt/lrcparse/pkg/output"
)

func newTestReport() *output.Report {
	return &output.Report{
		Summary: output.Summary{
			FilesChecked:   2,
			FilesParsed:    1,
			FilesNotLRC:    1,
			TotalIntervals: 2,
			LinesRead:      25,
		},
		Files: []output.FileReport{
			{
				Path:   "one.lrc",
				Status: output.StatusParsed,
				Intervals: []lrc.TimedInterval{
					{StartMS: 1000, EndMS: 2000, Lines: []string{"a"}},
					{StartMS: 2000, EndMS: lrc.Unknown, Lines: []string{"b"}},
				},
			},
			{
				Path:   "notes.lrc",
				Status: output.StatusNotLRC,
				Error:  "stream is not in LRC format",
			},
		},
		Metadata: output.Metadata{
			ConfigFile:    "test.yaml",
			SearchTimeout: 20,
			ParsedAt:      time.Now(),
			Duration:      time.Second,
		},
	}
}

func TestClient_Send_Success(t *testing.T) {
	var receivedBody []byte
	var receivedContentType string
	var receivedAuth string
	var receivedAgent string
	var receivedResult string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedContentType = r.Header.Get("Content-Type")
		receivedAgent = r.Header.Get("User-Agent")
		receivedResult = r.Header.Get(ResultHeader)
		receivedAuth = r.Header.Get("Authorization")
		receivedBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	client := NewClient()
	report := newTestReport()

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

	if receivedAuth != "" {
		t.Errorf("expected no auth header, got %s", receivedAuth)
	}

	if receivedAgent != UserAgent {
		t.Errorf("expected User-Agent %s, got %s", UserAgent, receivedAgent)
	}

	if receivedResult != "failed" {
		t.Errorf("expected %s failed, got %q", ResultHeader, receivedResult)
	}

	// Verify payload is valid JSON containing expected fields
	var payload map[string]interface{}
	if err := json.Unmarshal(receivedBody, &payload); err != nil {
		t.Errorf("failed to parse received payload: %v", err)
	}

	if _, ok := payload["summary"]; !ok {
		t.Error("payload missing summary field")
	}
	if files, ok := payload["files"].([]interface{}); !ok || len(files) != 2 {
		t.Errorf("payload files = %v, want 2 entries", payload["files"])
	}
}

func TestClient_Send_WithBearerToken(t *testing.T) {
	var receivedAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient()
	report := newTestReport()

	resp := client.Send(context.Background(), report, SendOptions{
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

	client := NewClient()
	report := newTestReport()

	resp := client.Send(context.Background(), report, SendOptions{
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

	client := NewClient()
	report := newTestReport()

	resp := client.Send(context.Background(), report, SendOptions{
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
	client := NewClient()
	report := newTestReport()

	resp := client.Send(context.Background(), report, SendOptions{
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
	client := NewClient()
	report := newTestReport()

	resp := client.Send(context.Background(), report, SendOptions{
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

func TestResult(t *testing.T) {
	report := newTestReport()
	if got := Result(report); got != "failed" {
		t.Errorf("Result() = %q, want failed", got)
	}

	report.Summary.FilesNotLRC = 0
	if got := Result(report); got != "ok" {
		t.Errorf("Result() = %q, want ok", got)
	}
}

func TestClient_Send_DurationOnError(t *testing.T) {
	resp := NewClient().Send(context.Background(), newTestReport(), SendOptions{URL: "://invalid-url"})
	if resp.Error == nil {
		t.Fatal("expected error to be set")
	}
	if resp.Duration <= 0 {
		t.Errorf("Duration = %v, want it recorded on failure too", resp.Duration)
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

func TestShouldFire(t *testing.T) {
	tests := []struct {
		trigger     config.WebhookTrigger
		hasFailures bool
		want        bool
	}{
		{config.WebhookTriggerAlways, false, true},
		{config.WebhookTriggerAlways, true, true},
		{config.WebhookTriggerNever, true, false},
		{config.WebhookTriggerOnFailure, true, true},
		{config.WebhookTriggerOnFailure, false, false},
		{"", true, true},
		{"", false, false},
	}

	for _, tt := range tests {
		if got := ShouldFire(tt.trigger, tt.hasFailures); got != tt.want {
			t.Errorf("ShouldFire(%q, %v) = %v, want %v", tt.trigger, tt.hasFailures, got, tt.want)
		}
	}
}

func TestClient_Notify(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer failing.Close()

	hooks := []config.WebhookConfig{
		{Name: "always", URL: server.URL, Trigger: config.WebhookTriggerAlways},
		{Name: "never", URL: server.URL, Trigger: config.WebhookTriggerNever},
		{Name: "on-failure", URL: server.URL, Trigger: config.WebhookTriggerOnFailure},
		{Name: "broken", URL: failing.URL, Trigger: config.WebhookTriggerAlways},
	}

	logger, hook := test.NewNullLogger()
	report := newTestReport()

	sent := NewClient().Notify(context.Background(), hooks, report, logger)
	if sent != 2 {
		t.Errorf("Notify() = %d, want 2", sent)
	}
	if atomic.LoadInt32(&hits) != 2 {
		t.Errorf("server hits = %d, want 2", hits)
	}

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Data["webhook"] == "broken" {
			warned = true
		}
	}
	if !warned {
		t.Error("expected a warning for the failing webhook")
	}
}

func TestClient_Notify_NoFailures(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer server.Close()

	report := newTestReport()
	report.Summary.FilesNotLRC = 0

	logger, _ := test.NewNullLogger()
	hooks := []config.WebhookConfig{{URL: server.URL, Trigger: config.WebhookTriggerOnFailure}}
	if sent := NewClient().Notify(context.Background(), hooks, report, logger); sent != 0 {
		t.Errorf("Notify() = %d, want 0", sent)
	}
	if hits != 0 {
		t.Errorf("server hits = %d, want 0", hits)
	}
}
