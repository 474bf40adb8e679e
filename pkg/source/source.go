// Package source resolves render inputs to raw document bytes.
//
// A reference is one of three kinds: "-" reads standard input, an
// http(s) URL is fetched with retry and response caching, and anything
// else is treated as a filesystem path. Classification is by shape of
// the reference alone, so callers never need to know where a document
// lives.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/matzehuels/sketchport/pkg/httputil"
)

const (
	httpTimeout = 10 * time.Second

	// cacheNamespace scopes cached responses away from other users of
	// the shared cache directory.
	cacheNamespace = "scene:"
)

var (
	// ErrNotFound is returned when a remote document does not exist (404).
	ErrNotFound = errors.New("document not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// Kind classifies a source reference.
type Kind string

const (
	KindFile   Kind = "file"
	KindStdin  Kind = "stdin"
	KindRemote Kind = "remote"
)

// Classify reports what kind of input ref names.
func Classify(ref string) Kind {
	switch {
	case ref == "-":
		return KindStdin
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return KindRemote
	default:
		return KindFile
	}
}

// Resolver loads raw document bytes from files, standard input, or URLs.
// Remote fetches are retried on transient failures and cached so that
// repeated exports of the same URL skip the network.
type Resolver struct {
	http    *http.Client
	cache   *httputil.Cache
	stdin   io.Reader
	refresh bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCache sets the response cache for remote documents. Without it,
// every resolve of a URL hits the network.
func WithCache(c *httputil.Cache) Option {
	return func(r *Resolver) { r.cache = c }
}

// WithRefresh bypasses cached responses, forcing a fresh fetch.
func WithRefresh(refresh bool) Option {
	return func(r *Resolver) { r.refresh = refresh }
}

// WithStdin sets the reader used for "-" references. Defaults to os.Stdin.
func WithStdin(in io.Reader) Option {
	return func(r *Resolver) { r.stdin = in }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Resolver) { r.http = c }
}

// NewResolver creates a Resolver with the given options.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		http:  &http.Client{Timeout: httpTimeout},
		stdin: os.Stdin,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve loads the bytes behind ref.
func (r *Resolver) Resolve(ctx context.Context, ref string) ([]byte, error) {
	switch Classify(ref) {
	case KindStdin:
		return io.ReadAll(r.stdin)
	case KindRemote:
		return r.fetch(ctx, ref)
	default:
		return os.ReadFile(ref)
	}
}

// fetch downloads url, consulting the response cache first.
func (r *Resolver) fetch(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	if r.cache != nil && !r.refresh {
		if ok, _ := r.cache.Get(cacheNamespace+url, &body); ok {
			return body, nil
		}
	}

	err := httputil.RetryWithBackoff(ctx, func() error {
		var err error
		body, err = r.fetchOnce(ctx, url)
		return err
	})
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		_ = r.cache.Set(cacheNamespace+url, body)
	}
	return body, nil
}

func (r *Resolver) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, &httputil.RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}
	return io.ReadAll(resp.Body)
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= 500:
		return &httputil.RetryableError{Err: fmt.Errorf("%w: status %d", ErrNetwork, code)}
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
