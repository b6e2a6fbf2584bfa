package cli

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cadlayout/pkg/buildinfo"
	"github.com/matzehuels/cadlayout/pkg/cache"
	"github.com/matzehuels/cadlayout/pkg/config"
	cerrors "github.com/matzehuels/cadlayout/pkg/errors"
	"github.com/matzehuels/cadlayout/pkg/loader"
	"github.com/matzehuels/cadlayout/pkg/observability"
	"github.com/matzehuels/cadlayout/pkg/pipeline"
)

const (
	// maxUploadBytes caps the size of a drawing posted to the server.
	maxUploadBytes = 32 << 20

	shutdownTimeout = 10 * time.Second
)

// contentTypes maps output formats to response content types.
var contentTypes = map[string]string{
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatYAML: "application/yaml",
}

// serveCommand creates the HTTP server command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		redisURL string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve layouts over HTTP",
		Long: `Start an HTTP server that lays out posted drawings.

  POST /v1/render   body: DXF or YAML drawing; responds with the rendered image
  GET  /healthz     liveness check

Query parameters of /v1/render override the config file: format, rotation,
columns, width, height, container, only_if_fits, refresh and name.`,
		Example: `  cadlayout serve --addr :8080
  curl --data-binary @bracket.dxf 'localhost:8080/v1/render?rotation=90' > bracket.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if redisURL != "" {
				cfg.Cache.RedisURL = redisURL
			}

			runner, err := c.newRunner(cmd.Context(), cfg, false)
			if err != nil {
				return err
			}
			defer runner.Close()
			runner.Keyer = cache.NewScopedKeyer(nil, "serve:")

			srv := &server{runner: runner, cfg: cfg, logger: c.Logger}
			return srv.listen(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&redisURL, "redis", "", "Redis URL for a shared cache (overrides the config file)")

	return cmd
}

// server handles render requests. Each request runs its own pipeline; only
// the runner's cache is shared.
type server struct {
	runner *pipeline.Runner
	cfg    config.Config
	logger *log.Logger
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SetHeader("Server", buildinfo.UserAgent()))
	r.Use(httpHooks)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok\n")
	})
	r.Route("/v1", func(r chi.Router) {
		r.Post("/render", s.handleRender)
	})
	return r
}

func (s *server) listen(ctx context.Context, addr string) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- hs.ListenAndServe() }()
	printSuccess("Listening on %s", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}

// httpHooks reports every request to the registered HTTP hooks.
func httpHooks(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.HTTP()
		start := time.Now()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, time.Since(start))
	})
}

func (s *server) handleRender(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	w.Header().Set("X-Render-ID", id)

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		writeError(w, cerrors.Wrap(cerrors.ErrCodeInvalidInput, err, "read body"))
		return
	}
	if len(data) == 0 {
		writeError(w, cerrors.New(cerrors.ErrCodeInvalidInput, "empty request body"))
		return
	}

	opts, err := s.requestOptions(r, data)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.logger.Warn("render request failed", "id", id, "err", err)
		writeError(w, err)
		return
	}

	format := opts.Formats[0]
	out := result.Artifacts[format]
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("Content-Length", strconv.Itoa(len(out)))
	if result.CacheInfo.RenderHit {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	_, _ = w.Write(out)

	s.logger.Info("rendered", "id", id, "format", format, "bytes", len(out), "cached", result.CacheInfo.RenderHit)
}

// requestOptions merges query parameters over the server config.
func (s *server) requestOptions(r *http.Request, data []byte) (pipeline.Options, error) {
	cfg := s.cfg
	q := r.URL.Query()

	name := q.Get("name")
	if name == "" {
		name = "upload"
	}

	var err error
	setFloat := func(key string, dst *float64) {
		if v := q.Get(key); v != "" && err == nil {
			var f float64
			if f, err = strconv.ParseFloat(v, 64); err == nil {
				*dst = f
			} else {
				err = cerrors.Wrap(cerrors.ErrCodeInvalidOption, err, "query parameter %s", key)
			}
		}
	}
	setBool := func(key string, dst *bool) {
		if v := q.Get(key); v != "" && err == nil {
			var b bool
			if b, err = strconv.ParseBool(v); err == nil {
				*dst = b
			} else {
				err = cerrors.Wrap(cerrors.ErrCodeInvalidOption, err, "query parameter %s", key)
			}
		}
	}

	setFloat("rotation", &cfg.Rotation)
	setFloat("width", &cfg.Width)
	setFloat("height", &cfg.Height)
	setBool("container", &cfg.DrawContainer)
	setBool("only_if_fits", &cfg.ShowOriginalOnlyIfFits)
	var refresh bool
	setBool("refresh", &refresh)
	if v := q.Get("columns"); v != "" && err == nil {
		if cfg.Columns, err = strconv.Atoi(v); err != nil {
			err = cerrors.Wrap(cerrors.ErrCodeInvalidOption, err, "query parameter columns")
		}
	}
	if err != nil {
		return pipeline.Options{}, err
	}

	opts, err := pipeline.FromConfig(&cfg, loader.BytesSource(name, data))
	if err != nil {
		return opts, err
	}
	opts.Formats = []string{pipeline.DefaultFormat}
	if f := q.Get("format"); f != "" {
		opts.Formats = []string{f}
	}
	opts.Strict = true
	opts.Refresh = refresh
	opts.Logger = s.logger
	return opts, nil
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, err error) {
	code := cerrors.GetCode(err)
	if code == "" {
		code = cerrors.ErrCodeInternal
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(cerrors.HTTPStatus(err))
	_ = json.NewEncoder(w).Encode(errorBody{Code: string(code), Message: cerrors.UserMessage(err)})
}
