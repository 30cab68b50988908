package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"sync/atomic"

	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/kartlytics/pkg/cache"
	"github.com/Sumatoshi-tech/kartlytics/pkg/observability"
	"github.com/Sumatoshi-tech/kartlytics/pkg/race"
	"github.com/Sumatoshi-tech/kartlytics/pkg/report"
)

// errDraining is reported by the readiness probe once shutdown has begun.
var errDraining = errors.New("server is draining")

// ServerOptions configures the analysis HTTP API.
type ServerOptions struct {
	Report         report.Options
	Render         report.RenderOptions
	DefaultFormat  report.Format
	MaxBodyBytes   int64
	Logger         *slog.Logger
	Tracer         trace.Tracer
	RED            *observability.REDMetrics
	MetricsHandler http.Handler
	// Cache is optional; nil disables response caching.
	Cache *cache.ResponseCache
}

// Server serves race analyses over HTTP.
//
//	POST /analyze?format=json|yaml|text|plot   body: race result (YAML or JSON)
//	GET  /healthz, /readyz, /metrics
type Server struct {
	opts     ServerOptions
	draining atomic.Bool
}

// NewServer creates a server; call Handler to obtain the routes.
func NewServer(opts ServerOptions) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.DefaultFormat == "" {
		opts.DefaultFormat = report.FormatJSON
	}

	return &Server{opts: opts}
}

// Drain makes the readiness probe fail so load balancers stop routing here.
func (s *Server) Drain() {
	s.draining.Store(true)
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST /analyze", s.wrap("analyze", http.HandlerFunc(s.handleAnalyze)))
	mux.Handle("GET /healthz", observability.HealthHandler())
	mux.Handle("GET /readyz", observability.ReadyHandler(s.ready))

	if s.opts.MetricsHandler != nil {
		mux.Handle("GET /metrics", s.opts.MetricsHandler)
	}

	return mux
}

func (s *Server) wrap(op string, next http.Handler) http.Handler {
	if s.opts.Tracer == nil {
		return next
	}

	return observability.HTTPMiddleware(s.opts.Tracer, s.opts.RED, op, next)
}

func (s *Server) ready(context.Context) error {
	if s.draining.Load() {
		return errDraining
	}

	return nil
}

func (s *Server) handleAnalyze(rw http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	format := s.opts.DefaultFormat

	if name := req.URL.Query().Get("format"); name != "" {
		parsed, err := report.ParseFormat(name)
		if err != nil {
			s.writeError(ctx, rw, http.StatusBadRequest, err)

			return
		}

		format = parsed
	}

	body := req.Body
	if s.opts.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(rw, req.Body, s.opts.MaxBodyBytes)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		s.writeError(ctx, rw, decodeStatus(err), fmt.Errorf("read request body: %w", err))

		return
	}

	srcFormat := inputFormat(req)
	key := cache.NewKey(string(format)+"/"+string(srcFormat), data)

	if s.opts.Cache != nil {
		if cached, contentType, ok := s.opts.Cache.Get(key); ok {
			s.writeBody(ctx, rw, contentType, cached)

			return
		}
	}

	res, err := race.Decode(bytes.NewReader(data), srcFormat)
	if err != nil {
		s.writeError(ctx, rw, decodeStatus(err), err)

		return
	}

	bundle, err := report.Build(ctx, res, s.opts.Report)
	if err != nil {
		s.writeError(ctx, rw, buildStatus(err), err)

		return
	}

	var buf bytes.Buffer

	renderErr := report.Render(&buf, bundle, format, s.opts.Render)
	if renderErr != nil {
		s.writeError(ctx, rw, http.StatusInternalServerError, renderErr)

		return
	}

	if s.opts.Cache != nil {
		s.opts.Cache.Put(key, buf.Bytes(), format.ContentType())
	}

	s.writeBody(ctx, rw, format.ContentType(), buf.Bytes())
}

func (s *Server) writeBody(ctx context.Context, rw http.ResponseWriter, contentType string, body []byte) {
	rw.Header().Set("Content-Type", contentType)

	_, writeErr := rw.Write(body)
	if writeErr != nil {
		s.opts.Logger.WarnContext(ctx, "write analysis response", "error", writeErr)
	}
}

// inputFormat reads the race document format from the Content-Type header.
// Anything that is not JSON is decoded as YAML.
func inputFormat(req *http.Request) race.Format {
	mediaType, _, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if err == nil && mediaType == "application/json" {
		return race.FormatJSON
	}

	return race.FormatYAML
}

func decodeStatus(err error) int {
	var maxBytesErr *http.MaxBytesError

	switch {
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, race.ErrMalformedRaceData):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

func buildStatus(err error) int {
	switch {
	case errors.Is(err, race.ErrMalformedRaceData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(ctx context.Context, rw http.ResponseWriter, status int, err error) {
	level := slog.LevelInfo
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}

	s.opts.Logger.Log(ctx, level, "analysis request rejected", "status", status, "error", err)

	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)

	encodeErr := json.NewEncoder(rw).Encode(errorResponse{Error: err.Error()})
	if encodeErr != nil {
		s.opts.Logger.ErrorContext(ctx, "failed to encode JSON response", "error", encodeErr)
	}
}
