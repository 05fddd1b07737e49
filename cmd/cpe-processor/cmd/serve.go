package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/AlexArancibia/SicloConcarDashboard-sub001/internal/config"
	"github.com/AlexArancibia/SicloConcarDashboard-sub001/internal/logger"
	"github.com/AlexArancibia/SicloConcarDashboard-sub001/internal/server"
)

var (
	serverAddr   string
	serverDebug  bool
	readTimeout  time.Duration
	writeTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP API server for processing electronic tax documents.

The API provides endpoints for:
  - POST /api/v1/documents/parse           - Parse a CPE XML document
  - POST /api/v1/documents/parse/fallback  - Parse with the relaxed traversal parser
  - POST /api/v1/documents/validate        - Validate a CPE XML document
  - GET  /health                           - Health check

Duplicate uploads (same document ID, supplier RUC and total) are rejected
with 409 Conflict.

Configuration is read from environment variables (APP_ENV, HTTP_HOST,
HTTP_PORT, LOG_LEVEL) or an optional config.env file; flags override both.

Examples:
  # Start server on the configured port
  cpe-processor serve

  # Start on a custom address in debug mode
  cpe-processor serve --address :8080 --debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", "", "Server listen address (overrides HTTP_HOST/HTTP_PORT)")
	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 0, "HTTP read timeout (overrides config)")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", 0, "HTTP write timeout (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	addr := cfg.HTTP.Addr()
	if serverAddr != "" {
		addr = serverAddr
	}
	if readTimeout == 0 {
		readTimeout = cfg.HTTP.ReadTimeout
	}
	if writeTimeout == 0 {
		writeTimeout = cfg.HTTP.WriteTimeout
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})

	srvConfig := &server.Config{
		Address:      addr,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		Debug:        serverDebug || cfg.HTTP.Debug,
	}

	srv := server.NewServer(srvConfig, server.WithLogger(log))

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info().Msg("shutting down server")
		os.Exit(0)
	}()

	log.Info().Str("address", addr).Msg("starting server")
	return srv.Run()
}
