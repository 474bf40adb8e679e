package cli

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/sketchport/pkg/cache"
	perrors "github.com/matzehuels/sketchport/pkg/errors"
	"github.com/matzehuels/sketchport/pkg/jobs"
	"github.com/matzehuels/sketchport/pkg/pipeline"
)

const serveDocument = `{
	"elements": [
		{"type": "rectangle", "x": 0, "y": 0, "width": 120, "height": 60},
		{"type": "arrow", "x": 120, "y": 30, "points": [[0, 0], [80, 10]]},
		{"type": "text", "x": 10, "y": 100, "text": "hello"}
	]
}`

func testServer(t *testing.T) *server {
	t.Helper()
	c := &CLI{
		Logger: newLogger(io.Discard, log.InfoLevel),
		Config: defaultConfig(),
	}
	runner := pipeline.NewRunner(cache.NewNullCache(), nil, c.Logger)
	t.Cleanup(func() { runner.Close() })

	store := jobs.NewMemoryStore()
	t.Cleanup(func() { store.Close() })

	return newServer(c, runner, store)
}

func TestServeHealth(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var health HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if health.Status != "ok" {
		t.Errorf("status = %q, want ok", health.Status)
	}
}

func TestServeRenderSVG(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/render?format=svg", strings.NewReader(serveDocument))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q, want image/svg+xml", ct)
	}
	if rec.Header().Get("X-Job-Id") == "" {
		t.Error("X-Job-Id header not set")
	}
	if !strings.Contains(rec.Body.String(), "<svg") {
		t.Errorf("body does not look like SVG: %.80s", rec.Body.String())
	}
}

func TestServeRenderJobLifecycle(t *testing.T) {
	srv := testServer(t)

	// Render once to create a job.
	req := httptest.NewRequest(http.MethodPost, "/render?format=json", strings.NewReader(serveDocument))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("render status = %d; body: %s", rec.Code, rec.Body.String())
	}
	jobID := rec.Header().Get("X-Job-Id")
	if uuid.Validate(jobID) != nil {
		t.Fatalf("X-Job-Id %q is not a UUID", jobID)
	}
	artifact := rec.Body.Bytes()

	// The job shows up in the listing, without its artifact.
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var list JobListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if list.Count != 1 || len(list.Jobs) != 1 {
		t.Fatalf("list count = %d, want 1", list.Count)
	}
	if list.Jobs[0].ID != jobID {
		t.Errorf("listed job ID = %q, want %q", list.Jobs[0].ID, jobID)
	}
	if list.Jobs[0].Status != jobs.StatusDone {
		t.Errorf("listed job status = %q, want done", list.Jobs[0].Status)
	}
	if len(list.Jobs[0].Artifact) != 0 {
		t.Error("listing should not carry artifact payloads")
	}

	// Job detail.
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs/"+jobID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("detail status = %d", rec.Code)
	}
	var detail jobs.Job
	if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode detail: %v", err)
	}
	if detail.ElementCount != 3 {
		t.Errorf("ElementCount = %d, want 3", detail.ElementCount)
	}
	if detail.Format != "json" {
		t.Errorf("Format = %q, want json", detail.Format)
	}

	// Artifact re-download matches the original response.
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs/"+jobID+"/artifact", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("artifact status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("artifact Content-Type = %q", ct)
	}
	if string(rec.Body.Bytes()) != string(artifact) {
		t.Error("re-downloaded artifact differs from the render response")
	}
}

func TestServeRenderByURL(t *testing.T) {
	// Host the document on a second test server.
	docServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, serveDocument)
	}))
	defer docServer.Close()

	srv := testServer(t)
	body := `{"url": "` + docServer.URL + `/flow.json"}`
	req := httptest.NewRequest(http.MethodPost, "/render?format=svg", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "<svg") {
		t.Errorf("body does not look like SVG: %.80s", rec.Body.String())
	}
}

func TestServeRenderErrors(t *testing.T) {
	srv := testServer(t)

	tests := []struct {
		name       string
		target     string
		body       string
		wantStatus int
	}{
		{"empty body", "/render", "", http.StatusBadRequest},
		{"malformed document", "/render?format=svg", "{nope", http.StatusBadRequest},
		{"empty document", "/render?format=svg", `{"elements": []}`, http.StatusBadRequest},
		{"bad format", "/render?format=pdf", serveDocument, http.StatusBadRequest},
		{"bad backend", "/render?backend=webgl", serveDocument, http.StatusBadRequest},
		{"bad scale", "/render?scale=-1", serveDocument, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.target, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d; body: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			var resp ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("error responses must be JSON envelopes: %v", err)
			}
			if resp.Error == "" {
				t.Error("error envelope has no message")
			}
		})
	}
}

func TestServeRenderEmptyDocumentAllowed(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/render?format=svg&allow_empty=true",
		strings.NewReader(`{"elements": []}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
}

func TestServeJobNotFound(t *testing.T) {
	srv := testServer(t)

	for _, target := range []string{
		"/jobs/" + uuid.NewString(),
		"/jobs/" + uuid.NewString() + "/artifact",
		"/jobs/not-a-uuid",
	} {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", target, rec.Code)
		}
	}
}

func TestServeJobListLimit(t *testing.T) {
	srv := testServer(t)

	for range 3 {
		req := httptest.NewRequest(http.MethodPost, "/render?format=json", strings.NewReader(serveDocument))
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("render status = %d", rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs?limit=2", nil))
	var list JobListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if list.Count != 2 {
		t.Errorf("count = %d, want 2", list.Count)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"parse", perrors.New(perrors.ErrCodeParse, "bad json"), http.StatusBadRequest},
		{"empty document", perrors.New(perrors.ErrCodeEmptyDocument, "no elements"), http.StatusBadRequest},
		{"timeout", perrors.New(perrors.ErrCodeTimeout, "capture timed out"), http.StatusGatewayTimeout},
		{"environment", perrors.New(perrors.ErrCodeEnvironment, "no browser"), http.StatusServiceUnavailable},
		{"not found", perrors.New(perrors.ErrCodeNotFound, "missing"), http.StatusNotFound},
		{"internal", perrors.New(perrors.ErrCodeInternal, "boom"), http.StatusInternalServerError},
		{"plain error", io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestContentTypeFor(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"png", "image/png"},
		{"svg", "image/svg+xml"},
		{"json", "application/json"},
		{"other", "application/octet-stream"},
	}
	for _, tt := range tests {
		if got := contentTypeFor(tt.format); got != tt.want {
			t.Errorf("contentTypeFor(%q) = %q, want %q", tt.format, got, tt.want)
		}
	}
}
