package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/exprgraph/pkg/config"
	"github.com/Sumatoshi-tech/exprgraph/pkg/mcp"
	"github.com/Sumatoshi-tech/exprgraph/pkg/observability"
	"github.com/Sumatoshi-tech/exprgraph/pkg/version"
)

const (
	metricsPath = "/metrics"

	metricsReadTimeout     = 5 * time.Second
	metricsWriteTimeout    = 10 * time.Second
	metricsIdleTimeout     = 60 * time.Second
	metricsShutdownTimeout = 5 * time.Second
)

// ErrMetricsUnavailable is returned when observability was initialized
// without a Prometheus handler.
var ErrMetricsUnavailable = errors.New("prometheus handler not initialized")

// newMCPCommand creates the MCP server command.
func newMCPCommand(global *globalOptions) *cobra.Command {
	var debug bool

	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The MCP server exposes the expression compiler as tools that AI agents can
discover and invoke:
  - expr_compile: Compile a document into an expression and parameter tables
  - expr_validate: Check a document against the document schema
  - expr_functions: List the supported operators and functions

With --metrics-addr a Prometheus scrape endpoint is served at /metrics.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMCP(cmd, global, debug, metricsAddr)
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging and full trace sampling")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "",
		"address for the Prometheus metrics endpoint, e.g. :9464 (default from config)")

	return cmd
}

func runMCP(cmd *cobra.Command, global *globalOptions, debug bool, metricsAddr string) error {
	if metricsAddr == "" {
		addr, err := configuredMetricsAddr(global)
		if err != nil {
			return err
		}

		metricsAddr = addr
	}

	sess, err := openSession(cmd, global, sessionOptions{
		mode:       observability.ModeMCP,
		prometheus: metricsAddr != "",
		debug:      debug,
	})
	if err != nil {
		return err
	}
	defer sess.close()

	ctx := cmd.Context()

	if metricsAddr != "" {
		stop, serveErr := serveMetrics(ctx, sess, metricsAddr)
		if serveErr != nil {
			return serveErr
		}
		defer stop()
	}

	srv := mcp.NewServer(mcp.ServerDeps{
		Logger:   sess.providers.Logger,
		Metrics:  sess.red,
		Tracer:   sess.providers.Tracer,
		Compiler: sess.compiler,
		Version:  version.Version,
	})

	sess.providers.Logger.InfoContext(ctx, "mcp server starting", "tools", srv.ListToolNames())

	return srv.Run(ctx)
}

// configuredMetricsAddr reads telemetry.metrics_addr before observability is
// initialized, since it decides whether Prometheus is enabled.
func configuredMetricsAddr(global *globalOptions) (string, error) {
	cfg, err := config.LoadConfig(global.configPath)
	if err != nil {
		return "", err
	}

	return cfg.Telemetry.MetricsAddr, nil
}

// serveMetrics binds addr and serves the Prometheus handler until the
// returned stop function is called.
func serveMetrics(ctx context.Context, sess *session, addr string) (func(), error) {
	if sess.providers.MetricsHandler == nil {
		return nil, ErrMetricsUnavailable
	}

	listener, err := (&net.ListenConfig{}).Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle(metricsPath, sess.providers.MetricsHandler)

	server := &http.Server{
		Handler:      mux,
		ReadTimeout:  metricsReadTimeout,
		WriteTimeout: metricsWriteTimeout,
		IdleTimeout:  metricsIdleTimeout,
	}

	logger := sess.providers.Logger

	go func() {
		serveErr := server.Serve(listener)
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", serveErr)
		}
	}()

	logger.InfoContext(ctx, "metrics endpoint listening", "addr", listener.Addr().String(), "path", metricsPath)

	stop := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()

		shutdownErr := server.Shutdown(shutdownCtx)
		if shutdownErr != nil {
			logger.Warn("metrics server shutdown failed", "error", shutdownErr)
		}
	}

	return stop, nil
}
