package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/kartlytics/pkg/cache"
	"github.com/Sumatoshi-tech/kartlytics/pkg/observability"
	"github.com/Sumatoshi-tech/kartlytics/pkg/report"
)

const (
	serverIdleTimeout     = 120 * time.Second
	serverShutdownTimeout = 10 * time.Second
)

// ServeCommand holds the flags of the serve command.
type ServeCommand struct {
	globals *Globals
	host    string
	port    int
}

// NewServeCommand creates the serve command.
func NewServeCommand(globals *Globals) *cobra.Command {
	sc := &ServeCommand{globals: globals}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve race analyses over HTTP",
		Long: `Serve starts an HTTP API:

  POST /analyze?format=json|yaml|text|plot   analyse the race result in the body
  GET  /healthz                              liveness probe
  GET  /readyz                               readiness probe
  GET  /metrics                              Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: sc.run,
	}

	cmd.Flags().StringVar(&sc.host, "host", "", "Listen host (default: server.host)")
	cmd.Flags().IntVarP(&sc.port, "port", "p", 0, "Listen port (default: server.port)")

	return cmd
}

func (sc *ServeCommand) run(cmd *cobra.Command, _ []string) error {
	rt, err := sc.globals.setup(observability.ModeServe, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.shutdown()

	maxBody, err := rt.cfg.Server.MaxBodyBytes()
	if err != nil {
		return err
	}

	renderOpts, err := rt.renderOptions("", "", true)
	if err != nil {
		return err
	}

	defaultFormat, err := report.ParseFormat(rt.cfg.Report.Format)
	if err != nil {
		return err
	}

	cacheBytes, err := rt.cfg.Server.CacheBytes()
	if err != nil {
		return err
	}

	var responses *cache.ResponseCache
	if cacheBytes > 0 {
		responses = cache.New(cacheBytes)
	}

	red, err := observability.NewREDMetrics(rt.providers.Meter)
	if err != nil {
		return fmt.Errorf("create request metrics: %w", err)
	}

	server := NewServer(ServerOptions{
		Report:         rt.reportOptions(),
		Render:         renderOpts,
		DefaultFormat:  defaultFormat,
		MaxBodyBytes:   maxBody,
		Logger:         rt.logger,
		Tracer:         rt.providers.Tracer,
		RED:            red,
		MetricsHandler: rt.providers.MetricsHandler,
		Cache:          responses,
	})

	host := rt.cfg.Server.Host
	if sc.host != "" {
		host = sc.host
	}

	port := rt.cfg.Server.Port
	if sc.port != 0 {
		port = sc.port
	}

	httpServer := &http.Server{
		Addr:         net.JoinHostPort(host, strconv.Itoa(port)),
		Handler:      server.Handler(),
		ReadTimeout:  rt.cfg.Server.ReadTimeout,
		WriteTimeout: rt.cfg.Server.WriteTimeout,
		IdleTimeout:  serverIdleTimeout,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)

	go func() {
		rt.logger.Info("kartlytics server starting", "addr", httpServer.Addr)
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err = <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	rt.logger.Info("shutting down server")
	server.Drain()

	if responses != nil {
		stats := responses.Stats()
		rt.logger.Info("response cache",
			"hits", stats.Hits, "misses", stats.Misses,
			"entries", stats.Entries, "hit_rate", stats.HitRate())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
	defer cancel()

	shutdownErr := httpServer.Shutdown(shutdownCtx)
	if shutdownErr != nil {
		return fmt.Errorf("shutdown server: %w", shutdownErr)
	}

	return nil
}
