package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/harun/loginstats/internal/audit"
	"github.com/harun/loginstats/internal/metrics"
	"github.com/harun/loginstats/internal/tracing"
	"github.com/harun/loginstats/pkg/ledger"
	"github.com/harun/loginstats/pkg/server"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

var (
	serveFile string
	serveDB   string
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the loginstats query server",
	Long: `Start the HTTP query server in the foreground.

The server loads the configured events, answers session queries under
/v1/users, exposes Prometheus metrics on /metrics and notifies websocket
clients on /v1/ws whenever the events are reloaded. Reloads happen when the
events file changes, on the configured schedule, or on POST /v1/reload.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveFile, "file", "", "events file to serve")
	serveCmd.Flags().StringVar(&serveDB, "db", "", "SQLite archive to serve")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "listen host (overrides server.host)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (overrides server.port)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	pidFile := getPIDFilePath()
	if isRunning(pidFile) {
		return fmt.Errorf("server is already running (PID file: %s)", pidFile)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Close()

	src, err := resolveSource(cfg, serveFile, serveDB)
	if err != nil {
		return err
	}

	if cfg.Tracing.Enabled {
		if err := tracing.InitOpenTelemetry(tracing.ProviderConfig{
			ServiceName:    "loginstats",
			ServiceVersion: GetVersion(),
			SampleRatio:    cfg.Tracing.SampleRatio,
		}); err != nil {
			log.Warn().Err(err).Msg("Failed to initialize tracing")
		}
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tracing.ShutdownOpenTelemetry(ctx)
	}()

	auditLog, err := audit.New(filepath.Join(cfg.DataDir, "audit.log"))
	if err != nil {
		return err
	}
	defer auditLog.Close()

	zl := log.GetZerolog()
	srvCfg := server.Config{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		SharedSecret: cfg.Server.SharedSecret,
		Schedule:     cfg.Reload.Schedule,
		Metrics:      metrics.NewMetrics(),
		Audit:        auditLog,
		Logger:       zl,
		Loader: func(ctx context.Context) (*ledger.Ledger, error) {
			return src.load(ctx, zl)
		},
	}
	if src.file != "" && cfg.Reload.Watch {
		srvCfg.WatchPath = src.file
		srvCfg.WatchDebounce = time.Duration(cfg.Reload.DebounceMs) * time.Millisecond
	}

	srv, err := server.NewServer(srvCfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	if err := writePIDFile(pidFile); err != nil {
		log.Warn().Err(err).Str("pid_file", pidFile).Msg("Failed to write PID file")
	}
	defer os.Remove(pidFile)

	log.Info().
		Str("addr", srv.Addr()).
		Str("source", src.String()).
		Msg("Loginstats server running")
	fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on http://%s\n", src, srv.Addr())

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
