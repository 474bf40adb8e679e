package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/sketchport/pkg/httputil"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		want Kind
	}{
		{"stdin", "-", KindStdin},
		{"http url", "http://example.com/flow.json", KindRemote},
		{"https url", "https://example.com/flow.json", KindRemote},
		{"relative path", "scenes/flow.json", KindFile},
		{"absolute path", "/tmp/flow.json", KindFile},
		{"dash prefix path", "-flow.json", KindFile},
		{"empty", "", KindFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.ref); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.ref, got, tt.want)
			}
		})
	}
}

func TestResolveFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flow.json")
	if err := os.WriteFile(path, []byte(`{"elements":[]}`), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	r := NewResolver()
	data, err := r.Resolve(context.Background(), path)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if string(data) != `{"elements":[]}` {
		t.Errorf("Resolve() = %q, want document bytes", data)
	}
}

func TestResolveFileMissing(t *testing.T) {
	r := NewResolver()
	_, err := r.Resolve(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Fatal("Resolve() should fail for missing file")
	}
	if !os.IsNotExist(err) {
		t.Errorf("Resolve() error = %v, want not-exist", err)
	}
}

func TestResolveStdin(t *testing.T) {
	r := NewResolver(WithStdin(strings.NewReader(`{"elements":[]}`)))
	data, err := r.Resolve(context.Background(), "-")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if string(data) != `{"elements":[]}` {
		t.Errorf("Resolve() = %q, want stdin bytes", data)
	}
}

func TestResolveRemote(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		w.Write([]byte(`{"elements":[]}`))
	}))
	defer server.Close()

	r := NewResolver(WithHTTPClient(server.Client()))
	data, err := r.Resolve(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if string(data) != `{"elements":[]}` {
		t.Errorf("Resolve() = %q, want fetched bytes", data)
	}
	if requests != 1 {
		t.Errorf("requests = %d, want 1", requests)
	}
}

func TestResolveRemoteCached(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(`{"elements":[]}`))
	}))
	defer server.Close()

	cache, err := httputil.NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("NewCache() error: %v", err)
	}

	r := NewResolver(WithHTTPClient(server.Client()), WithCache(cache))

	// First resolve hits the network, second is served from cache.
	for i := 0; i < 2; i++ {
		data, err := r.Resolve(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("Resolve() #%d error: %v", i+1, err)
		}
		if string(data) != `{"elements":[]}` {
			t.Errorf("Resolve() #%d = %q, want fetched bytes", i+1, data)
		}
	}
	if requests != 1 {
		t.Errorf("requests = %d, want 1 (second resolve should hit cache)", requests)
	}
}

func TestResolveRemoteRefresh(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(`{"elements":[]}`))
	}))
	defer server.Close()

	cache, err := httputil.NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("NewCache() error: %v", err)
	}

	r := NewResolver(WithHTTPClient(server.Client()), WithCache(cache), WithRefresh(true))
	for i := 0; i < 2; i++ {
		if _, err := r.Resolve(context.Background(), server.URL); err != nil {
			t.Fatalf("Resolve() #%d error: %v", i+1, err)
		}
	}
	if requests != 2 {
		t.Errorf("requests = %d, want 2 (refresh bypasses cache)", requests)
	}
}

func TestResolveRemote404(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	r := NewResolver(WithHTTPClient(server.Client()))
	_, err := r.Resolve(context.Background(), server.URL)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Resolve() error = %v, want ErrNotFound", err)
	}
	if requests != 1 {
		t.Errorf("requests = %d, want 1 (404 is not retried)", requests)
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		name       string
		code       int
		wantErr    bool
		wantType   error
		isRetryErr bool
	}{
		{name: "200 OK", code: 200},
		{name: "404 Not Found", code: 404, wantErr: true, wantType: ErrNotFound},
		{name: "500 Internal Server Error", code: 500, wantErr: true, isRetryErr: true},
		{name: "502 Bad Gateway", code: 502, wantErr: true, isRetryErr: true},
		{name: "503 Service Unavailable", code: 503, wantErr: true, isRetryErr: true},
		{name: "400 Bad Request", code: 400, wantErr: true},
		{name: "403 Forbidden", code: 403, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkStatus(tt.code)

			if !tt.wantErr {
				if err != nil {
					t.Errorf("checkStatus() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("checkStatus() should return error")
			}
			if tt.wantType != nil && !errors.Is(err, tt.wantType) {
				t.Errorf("checkStatus() error = %v, want %v", err, tt.wantType)
			}
			if tt.isRetryErr {
				var retryErr *httputil.RetryableError
				if !errors.As(err, &retryErr) {
					t.Errorf("checkStatus() error should be RetryableError, got %T", err)
				}
			}
		})
	}
}
