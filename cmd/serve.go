package cmd

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"sofie/core/app"
	"sofie/core/logger"
	"sofie/core/metrics"
	"sofie/core/server"
	"sofie/feature/mock"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	mockConfig      mock.Config
	metricsAddr     string
	shutdownTimeout time.Duration
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"start"},
	Short:   "Serve a canned response on every path",
	Long: `Resolves the listener configuration, then answers every request to "/" and below
with the configured body until SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	flags := serveCmd.Flags()
	flags.StringVar(&mockConfig.Body, "body", "", "response body (default \""+mock.DefaultBody+"\")")
	flags.StringVar(&mockConfig.BodyFile, "body-file", "", "read the response body from a file")
	flags.StringVar(&mockConfig.ContentType, "content-type", "", "response content type (detected when empty)")
	flags.IntVar(&mockConfig.Status, "status", 200, "response status code")
	flags.StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9100")
	flags.DurationVar(&shutdownTimeout, "shutdown-timeout", server.DefaultShutdownTimeout, "graceful shutdown limit")

	RootCmd.AddCommand(serveCmd)
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}

	logg, err := logger.New(logConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logg.Sync()
	zap.ReplaceGlobals(logg)

	handler, err := mock.NewHandler(mockConfig, logg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var m *metrics.Metrics
	if metricsAddr != "" {
		m = metrics.New("sofie")
		go func() {
			if err := serveMetrics(ctx, metricsAddr, m, logg); err != nil {
				logg.Error("Metrics server failed", zap.Error(err))
			}
		}()
	}

	a := app.FromSource(configSource(), app.Options{
		Logger:          logg,
		Metrics:         m,
		ShutdownTimeout: shutdownTimeout,
	})
	logg.Info("Starting server", zap.String("addr", a.Config().Addr()))

	return a.Serve(ctx, handler)
}

// serveMetrics runs a second runtime server exposing m on /metrics.
func serveMetrics(ctx context.Context, addr string, m *metrics.Metrics, logg *zap.Logger) error {
	listener, err := listenerFromAddr(addr)
	if err != nil {
		return err
	}

	hostConfig, err := server.NewVirtualHostConfig(app.DefaultHostname, listener.Port)
	if err != nil {
		return err
	}
	host := server.NewVirtualHost(hostConfig)

	path, err := server.NewHandlerPath("/metrics", m.Handler())
	if err != nil {
		return err
	}
	if err := host.AddPath(path); err != nil {
		return err
	}

	srv := server.New(listener, server.Options{Logger: logg.Named("metrics")})
	if err := srv.AddVirtualHost(host); err != nil {
		return err
	}
	return srv.Run(ctx)
}

func listenerFromAddr(addr string) (server.ListenerConfig, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return server.ListenerConfig{}, fmt.Errorf("metrics address %q: %w", addr, err)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return server.ListenerConfig{}, fmt.Errorf("metrics address %q: invalid port: %w", addr, err)
	}
	return server.NewListenerConfig(uint16(port), host), nil
}
