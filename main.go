package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/athapong/adfconv/pkg/convert"
	"github.com/athapong/adfconv/pkg/metrics"
	"github.com/athapong/adfconv/prompts"
	"github.com/athapong/adfconv/tools"
)

func main() {
	envFile := flag.String("env", ".env", "Path to environment file")
	enableSSE := flag.Bool("sse", false, "Enable SSE server")
	sseAddr := flag.String("sse-addr", ":8080", "Address for SSE server to listen on")
	sseBasePath := flag.String("sse-base-path", "/mcp", "Base path for SSE endpoints")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	// stdout carries the stdio transport.
	logger.SetOutput(os.Stderr)

	if err := godotenv.Load(*envFile); err != nil {
		logger.WithError(err).WithField("file", *envFile).Warn("Error loading env file")
	}
	if level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logger.SetLevel(level)
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	opts := []convert.Option{convert.WithLogger(logger), convert.WithMetrics(m)}
	if os.Getenv("ADF_STRICT_MARK_ORDER") == "true" {
		opts = append(opts, convert.WithStrictMarkOrder())
	}
	if os.Getenv("ADF_GENERATE_LOCAL_IDS") == "true" {
		opts = append(opts, convert.WithGeneratedLocalIDs())
	}

	// Create MCP server
	mcpServer := server.NewMCPServer(
		"adfconv",
		"1.0.0",
		server.WithLogging(),
		server.WithPromptCapabilities(true),
	)

	tools.RegisterToolManagerTool(mcpServer)

	enableTools := strings.Split(os.Getenv("ENABLE_TOOLS"), ",")
	allToolsEnabled := len(enableTools) == 1 && enableTools[0] == ""

	isEnabled := func(toolName string) bool {
		return allToolsEnabled || slices.Contains(enableTools, toolName)
	}

	if isEnabled("conversion") {
		tools.RegisterConversionTools(mcpServer, opts...)
	}

	if isEnabled("document") {
		tools.RegisterDocumentTools(mcpServer, opts...)
	}

	if isEnabled("confluence") {
		tools.RegisterConfluenceTool(mcpServer, opts...)
	}

	if isEnabled("jira") {
		tools.RegisterJiraTool(mcpServer, opts...)
	}

	prompts.RegisterADFPrompts(mcpServer)

	if addr := os.Getenv("METRICS_ADDR"); addr != "" {
		go serveMetrics(logger, addr, m)
	}

	// Check if SSE server should be enabled
	if *enableSSE || os.Getenv("ENABLE_SSE") == "true" {
		sseServer := server.NewSSEServer(
			mcpServer,
			server.WithBasePath(*sseBasePath),
			server.WithKeepAlive(true),
		)

		go func() {
			logger.WithFields(logrus.Fields{"addr": *sseAddr, "base_path": *sseBasePath}).Info("Starting SSE server")
			if err := sseServer.Start(*sseAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.WithError(err).Fatal("Failed to start SSE server")
			}
		}()

		// Set up signal handling for graceful shutdown
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		sig := <-sigCh
		logger.WithField("signal", sig.String()).Info("Shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := sseServer.Shutdown(ctx); err != nil {
			logger.WithError(err).Error("Error during SSE server shutdown")
		}
		logger.Info("SSE server shutdown complete")
	} else {
		if err := server.ServeStdio(mcpServer); err != nil {
			panic(fmt.Sprintf("Server error: %v", err))
		}
	}
}

// serveMetrics exposes Prometheus metrics and refreshes the system gauges.
func serveMetrics(logger *logrus.Logger, addr string, m *metrics.Metrics) {
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			m.UpdateSystemMetrics()
		}
	}()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	logger.WithField("addr", addr).Info("Serving metrics")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.WithError(err).Error("Metrics server stopped")
	}
}
