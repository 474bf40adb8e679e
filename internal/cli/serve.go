package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sketchport/pkg/buildinfo"
	"github.com/matzehuels/sketchport/pkg/errors"
	"github.com/matzehuels/sketchport/pkg/jobs"
	"github.com/matzehuels/sketchport/pkg/observability"
	"github.com/matzehuels/sketchport/pkg/pipeline"
)

// maxRenderBody caps POST /render request bodies.
const maxRenderBody = 10 << 20 // 10 MiB

// jobCleanupInterval is how often expired jobs are swept.
const jobCleanupInterval = time.Hour

// serveCommand creates the serve command for the HTTP render service.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		storeName string
		mongoURI  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the render pipeline over HTTP",
		Long: `Serve the render pipeline over HTTP.

POST a diagram document to /render and get the rendered artifact back.
Each request is recorded as a job, so recent exports can be listed and
their artifacts re-downloaded without re-rendering.

Endpoints:
  POST /render              render a document (query: format, backend, scale)
  GET  /jobs                list recent render jobs
  GET  /jobs/{id}           job details
  GET  /jobs/{id}/artifact  re-download a rendered artifact
  GET  /healthz             liveness probe

The request body is either the document itself or {"url": "..."} to
render a remote document. Job history lives in memory by default; use
--store file or --store mongo to keep it across restarts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, storeName, mongoURI)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :8311)")
	cmd.Flags().StringVar(&storeName, "store", "", "job store: memory (default), file, mongo")
	cmd.Flags().StringVar(&mongoURI, "mongo-uri", "", "mongodb connection string for --store mongo")

	return cmd
}

// runServe starts the HTTP server and blocks until ctx is cancelled.
func (c *CLI) runServe(ctx context.Context, addr, storeName, mongoURI string) error {
	if addr == "" {
		addr = c.Config.Serve.Addr
	}
	if storeName == "" {
		storeName = c.Config.Serve.Store
	}
	if mongoURI == "" {
		mongoURI = c.Config.Serve.MongoURI
	}

	store, err := c.newJobStore(ctx, storeName, mongoURI)
	if err != nil {
		return fmt.Errorf("initialize job store: %w", err)
	}
	defer store.Close()

	runner, err := c.newRunner(ctx, false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	srv := newServer(c, runner, store)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go srv.cleanupLoop(ctx)

	errCh := make(chan error, 1)
	go func() { errCh <- httpServer.ListenAndServe() }()

	c.Logger.Info("serving", "addr", addr, "store", storeName)
	printSuccess("Listening on %s", addr)
	printDetail("POST /render, GET /jobs, GET /healthz")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// newJobStore selects the job store backend.
func (c *CLI) newJobStore(ctx context.Context, name, mongoURI string) (jobs.Store, error) {
	switch name {
	case jobStoreMemory, "":
		return jobs.NewMemoryStore(), nil
	case jobStoreFile:
		return jobs.NewFileStore("")
	case jobStoreMongo:
		if mongoURI == "" {
			return nil, fmt.Errorf("--store mongo requires --mongo-uri or [serve] mongo_uri")
		}
		return jobs.NewMongoStore(ctx, mongoURI)
	default:
		return nil, fmt.Errorf("unknown job store: %q (must be memory, file, or mongo)", name)
	}
}

// =============================================================================
// Server
// =============================================================================

// server wires the pipeline runner and job store into HTTP handlers.
type server struct {
	cli    *CLI
	runner *pipeline.Runner
	store  jobs.Store
	router chi.Router
}

// newServer creates the render service with its routes configured.
func newServer(c *CLI, runner *pipeline.Runner, store jobs.Store) *server {
	s := &server{cli: c, runner: runner, store: store}
	s.setupRouter()
	return s
}

// setupRouter configures all routes.
func (s *server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Post("/render", s.handleRender)
	r.Route("/jobs", func(r chi.Router) {
		r.Get("/", s.handleListJobs)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetJob)
			r.Get("/artifact", s.handleGetArtifact)
		})
	})

	s.router = r
}

// Handler returns the HTTP handler.
func (s *server) Handler() http.Handler {
	return s.router
}

// observe is middleware reporting requests to the observability hooks
// and the debug log.
func (s *server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		observability.HTTP().OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), duration)
		s.cli.Logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", duration.Round(time.Millisecond))
	})
}

// cleanupLoop sweeps expired jobs until ctx is cancelled.
func (s *server) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(jobCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.store.Cleanup(ctx); err != nil {
				s.cli.Logger.Warn("job cleanup failed", "err", err)
			}
		}
	}
}

// =============================================================================
// Response Types
// =============================================================================

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	JobID string `json:"job_id,omitempty"`
}

// HealthResponse is the response for /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// JobListResponse wraps the jobs listing.
type JobListResponse struct {
	Jobs  []*jobs.Job `json:"jobs"`
	Count int         `json:"count"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Version: buildinfo.Version})
}

// renderSource distinguishes an inline document body from a URL pointer.
type renderSource struct {
	URL string `json:"url"`
}

func (s *server) handleRender(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRenderBody))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large", "", "")
		return
	}
	if len(body) == 0 {
		writeError(w, http.StatusBadRequest, "empty request body", "", "")
		return
	}

	opts, badReq := s.renderOptions(r, body)
	if badReq != "" {
		writeError(w, http.StatusBadRequest, badReq, "", "")
		return
	}
	format := opts.Formats[0]

	job := jobs.New(opts.Source, jobs.DefaultTTL)
	job.Format = format
	job.Backend = opts.Backend
	job.Scale = opts.Scale
	job.Start()
	if err := s.store.Set(r.Context(), job); err != nil {
		s.cli.Logger.Warn("record job", "err", err)
	}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		job.Fail(err)
		if serr := s.store.Set(r.Context(), job); serr != nil {
			s.cli.Logger.Warn("record job", "err", serr)
		}
		observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
		writeError(w, statusFor(err), errors.UserMessage(err), string(errors.GetCode(err)), job.ID)
		return
	}

	artifact := result.Artifacts[format]
	job.Complete(format, artifact, contentTypeFor(format))
	job.DocumentHash = result.DocumentHash
	job.ElementCount = result.Stats.ElementCount
	job.SkippedCount = result.Stats.SkippedCount
	if err := s.store.Set(r.Context(), job); err != nil {
		s.cli.Logger.Warn("record job", "err", err)
	}

	w.Header().Set("Content-Type", contentTypeFor(format))
	w.Header().Set("X-Job-Id", job.ID)
	w.WriteHeader(http.StatusOK)
	w.Write(artifact)
}

// renderOptions builds pipeline options from the request. The second
// return value carries a client-facing validation message when the
// request is malformed.
func (s *server) renderOptions(r *http.Request, body []byte) (pipeline.Options, string) {
	opts := pipeline.Options{Logger: s.cli.Logger}
	s.cli.applyCaptureConfig(&opts)

	q := r.URL.Query()
	format := q.Get("format")
	if format == "" {
		format = pipeline.FormatPNG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		return opts, err.Error()
	}
	opts.Formats = []string{format}

	if backend := q.Get("backend"); backend != "" {
		if err := pipeline.ValidateBackend(backend); err != nil {
			return opts, err.Error()
		}
		opts.Backend = backend
	}
	if scaleStr := q.Get("scale"); scaleStr != "" {
		scale, err := strconv.ParseFloat(scaleStr, 64)
		if err != nil || scale <= 0 {
			return opts, fmt.Sprintf("invalid scale: %q", scaleStr)
		}
		opts.Scale = scale
	}
	opts.Transparent = boolParam(q.Get("transparent"))
	opts.AllowEmpty = boolParam(q.Get("allow_empty"))
	opts.Refresh = boolParam(q.Get("refresh"))

	// {"url": ...} points at a remote document; anything else is the
	// document itself.
	var src renderSource
	if err := json.Unmarshal(body, &src); err == nil && src.URL != "" {
		opts.Source = src.URL
	} else {
		opts.Document = body
	}

	// Resolve defaults now so the job record reflects the actual
	// backend and scale used.
	opts.SetRenderDefaults()
	return opts, ""
}

func (s *server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil {
			limit = n
		}
	}

	list, err := s.store.List(r.Context(), limit)
	if err != nil {
		observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
		writeError(w, http.StatusInternalServerError, "list jobs failed", "", "")
		return
	}

	// Strip artifact payloads from the listing.
	summaries := make([]*jobs.Job, len(list))
	for i, job := range list {
		summaries[i] = job.Summary()
	}
	writeJSON(w, http.StatusOK, JobListResponse{Jobs: summaries, Count: len(summaries)})
}

func (s *server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, ok := s.lookupJob(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, job.Summary())
}

func (s *server) handleGetArtifact(w http.ResponseWriter, r *http.Request) {
	job, ok := s.lookupJob(w, r)
	if !ok {
		return
	}
	if job.Status != jobs.StatusDone || len(job.Artifact) == 0 {
		writeError(w, http.StatusNotFound, "job has no artifact", "", job.ID)
		return
	}

	w.Header().Set("Content-Type", job.ArtifactType)
	w.WriteHeader(http.StatusOK)
	w.Write(job.Artifact)
}

// lookupJob fetches the job addressed by the URL, writing the error
// response itself when the ID is malformed or unknown.
func (s *server) lookupJob(w http.ResponseWriter, r *http.Request) (*jobs.Job, bool) {
	id := chi.URLParam(r, "id")
	if uuid.Validate(id) != nil {
		writeError(w, http.StatusNotFound, "job not found", "", "")
		return nil, false
	}

	job, err := s.store.Get(r.Context(), id)
	if err == jobs.ErrNotFound {
		writeError(w, http.StatusNotFound, "job not found", "", "")
		return nil, false
	}
	if err != nil {
		observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
		writeError(w, http.StatusInternalServerError, "job lookup failed", "", "")
		return nil, false
	}
	return job, true
}

// =============================================================================
// Helpers
// =============================================================================

// statusFor maps pipeline error codes to HTTP statuses.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeParse, errors.ErrCodeSchema, errors.ErrCodeEmptyDocument,
		errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidBackend:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeEnvironment:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// contentTypeFor returns the MIME type for a render format.
func contentTypeFor(format string) string {
	switch format {
	case pipeline.FormatPNG:
		return "image/png"
	case pipeline.FormatSVG:
		return "image/svg+xml"
	case pipeline.FormatJSON:
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

// boolParam interprets query parameter booleans.
func boolParam(v string) bool {
	return v == "1" || v == "true"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message, code, jobID string) {
	writeJSON(w, status, ErrorResponse{Error: message, Code: code, JobID: jobID})
}
