package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/matzehuels/ember/internal/config"
	"github.com/matzehuels/ember/pkg/buildinfo"
	"github.com/matzehuels/ember/pkg/cache"
	emerrors "github.com/matzehuels/ember/pkg/errors"
	"github.com/matzehuels/ember/pkg/frame"
	"github.com/matzehuels/ember/pkg/observability"
	"github.com/matzehuels/ember/pkg/pipeline"
	"github.com/matzehuels/ember/pkg/scene"
	"github.com/matzehuels/ember/pkg/theme"
)

// maxSceneBytes bounds request bodies.
const maxSceneBytes = 1 << 20

// serveCommand creates the serve command, which hosts the inspector API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	var noCache bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the scene inspector HTTP API",
		Long: `Serve an HTTP API that resolves inline scenes and returns frames and artifacts.

  GET  /healthz
  GET  /api/v1/version
  GET  /api/v1/themes
  POST /api/v1/resolve          body: pipeline options with scene_data
  POST /api/v1/render/{format}  body: pipeline options with scene_data
  GET  /api/v1/frames/{hash}    frame JSON of an earlier resolve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.Config.Serve.Addr
			}
			return c.runServe(cmd.Context(), addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching (frames cannot be fetched by hash)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	srv := &http.Server{
		Addr:         addr,
		Handler:      newInspector(runner, c.Config.Serve, component(c.Logger, "inspector")),
		ReadTimeout:  c.Config.Serve.ReadTimeout,
		WriteTimeout: c.Config.Serve.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		c.Logger.Info("inspector listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c.Logger.Info("shutting down inspector")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return ctx.Err()
}

// =============================================================================
// Inspector API
// =============================================================================

// inspector serves the HTTP API over a pipeline runner.
type inspector struct {
	runner *pipeline.Runner
	log    *log.Logger
}

// response is the JSON envelope of every API reply.
type response struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
	Code   string `json:"code,omitempty"`
}

// resolveReply is the data of a successful resolve.
type resolveReply struct {
	FrameHash string       `json:"frame_hash"`
	Frame     *frame.Frame `json:"frame"`
	Nodes     int          `json:"nodes"`
	FrameHit  bool         `json:"frame_hit"`
	RenderHit bool         `json:"render_hit"`
}

// newInspector builds the router with its middleware stack.
func newInspector(runner *pipeline.Runner, cfg config.ServeConfig, logger *log.Logger) http.Handler {
	h := &inspector{runner: runner, log: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(h.observe)
	if cfg.RateLimit > 0 {
		r.Use(rateLimit(rate.NewLimiter(rate.Limit(cfg.RateLimit), max(cfg.Burst, 1))))
	}

	r.Get("/healthz", h.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/version", h.handleVersion)
		r.Get("/themes", h.handleThemes)
		r.Post("/resolve", h.handleResolve)
		r.Post("/render/{format}", h.handleRender)
		r.Get("/frames/{hash}", h.handleFrame)
	})
	return r
}

// observe reports requests to the HTTP hooks and the debug log.
func (h *inspector) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)
		w.Header().Set("Server", buildinfo.UserAgent())
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		observability.HTTP().OnResponse(r.Context(), r.Method, r.URL.Path, status, time.Since(start))
		h.log.Debug("request", "method", r.Method, "path", r.URL.Path, "status", status,
			"id", middleware.GetReqID(r.Context()), "duration", time.Since(start))
	})
}

// rateLimit rejects requests beyond the limiter's budget with 429.
func rateLimit(lim *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !lim.Allow() {
				writeJSON(w, http.StatusTooManyRequests, response{Status: "error", Error: "rate limit exceeded"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (h *inspector) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *inspector) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, response{Status: "success", Data: map[string]string{
		"version": buildinfo.Version,
		"commit":  buildinfo.Commit,
		"date":    buildinfo.Date,
	}})
}

func (h *inspector) handleThemes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, response{Status: "success", Data: theme.Names()})
}

func (h *inspector) handleResolve(w http.ResponseWriter, r *http.Request) {
	opts, err := decodeOptions(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	// The frame JSON is cached under the frame hash so it can be fetched later.
	opts.Formats = []string{pipeline.FormatJSON}
	result, err := h.runner.Execute(r.Context(), opts)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Status: "success", Data: resolveReply{
		FrameHash: result.FrameHash,
		Frame:     result.Frame,
		Nodes:     result.Stats.Nodes,
		FrameHit:  result.CacheInfo.FrameHit,
		RenderHit: result.CacheInfo.RenderHit,
	}})
}

func (h *inspector) handleRender(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		h.fail(w, err)
		return
	}
	opts, err := decodeOptions(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	opts.Formats = []string{format}
	result, err := h.runner.Execute(r.Context(), opts)
	if err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType(format))
	w.Header().Set("X-Frame-Hash", result.FrameHash)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

func (h *inspector) handleFrame(w http.ResponseWriter, r *http.Request) {
	hash := chi.URLParam(r, "hash")
	key := h.runner.Keyer.ArtifactKey(hash, cache.ArtifactKeyOpts{Format: pipeline.FormatJSON})
	data, err := cache.Lookup(r.Context(), h.runner.Cache, key)
	if errors.Is(err, cache.ErrCacheMiss) {
		h.fail(w, emerrors.New(emerrors.ErrCodeNotFound, "no frame with hash %s", hash))
		return
	}
	if err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType(pipeline.FormatJSON))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// decodeOptions reads pipeline options from the request body. Only inline
// scenes are accepted; the server never reads scene paths from its disk.
func decodeOptions(r *http.Request) (pipeline.Options, error) {
	var opts pipeline.Options
	dec := json.NewDecoder(io.LimitReader(r.Body, maxSceneBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&opts); err != nil {
		return opts, emerrors.Wrap(emerrors.ErrCodeInvalidInput, err, "invalid request body")
	}
	if opts.Scene != "" {
		return opts, emerrors.New(emerrors.ErrCodeInvalidInput, "scene paths are not accepted; send scene_data")
	}
	if opts.SceneData == "" {
		return opts, emerrors.New(emerrors.ErrCodeInvalidInput, "scene_data is required")
	}
	if opts.Theme != "" && !isBuiltinTheme(opts.Theme) {
		return opts, emerrors.New(emerrors.ErrCodeInvalidInput, "theme must be one of the built-in themes")
	}
	sc, err := scene.Parse([]byte(opts.SceneData))
	if err != nil {
		return opts, err
	}
	if opts.Theme == "" && sc.Theme != "" && !isBuiltinTheme(sc.Theme) {
		return opts, emerrors.New(emerrors.ErrCodeInvalidInput, "scene theme must be one of the built-in themes")
	}
	return opts, nil
}

func isBuiltinTheme(name string) bool {
	return slices.Contains(theme.Names(), name)
}

// fail writes a coded error with the matching HTTP status.
func (h *inspector) fail(w http.ResponseWriter, err error) {
	code := emerrors.GetCode(err)
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", "code", code, "err", err)
	}
	writeJSON(w, status, response{Status: "error", Error: emerrors.UserMessage(err), Code: string(code)})
}

// statusFor maps error codes to HTTP status codes.
func statusFor(code emerrors.Code) int {
	switch code {
	case emerrors.ErrCodeInvalidInput, emerrors.ErrCodeInvalidScene, emerrors.ErrCodeInvalidTrait,
		emerrors.ErrCodeInvalidFormat, emerrors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case emerrors.ErrCodeNotFound, emerrors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case emerrors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func contentType(format string) string {
	switch format {
	case pipeline.FormatJSON:
		return "application/json"
	case pipeline.FormatBSON:
		return "application/bson"
	case pipeline.FormatPNG:
		return "image/png"
	case pipeline.FormatSVG:
		return "image/svg+xml"
	case pipeline.FormatDOT:
		return "text/vnd.graphviz"
	}
	return "text/plain; charset=utf-8"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
