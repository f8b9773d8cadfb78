package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sam0x17/containerflare/command"
	"github.com/sam0x17/containerflare/config"
	"github.com/sam0x17/containerflare/logging"
	"github.com/sam0x17/containerflare/platform"
)

// Runtime holds the per-process state a containerflare service shares across
// requests: resolved config, logger, detected platform, and the single
// command client connected at startup.
type Runtime struct {
	cfg      *config.Config
	logger   *slog.Logger
	client   *command.Client
	platform platform.Platform
}

// New builds a runtime from cfg, connecting the command channel once. A nil
// logger gets one built from the config. Connect failures abort startup;
// nothing retries them later.
func New(cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	if logger == nil {
		var err error
		logger, err = logging.NewFromConfig(cfg)
		if err != nil {
			return nil, err
		}
	}

	p := platform.Detect()
	client, err := connectClient(cfg, p)
	if err != nil {
		return nil, err
	}

	logger.Info("command channel ready",
		slog.String("endpoint", client.Endpoint().String()),
		slog.String("platform", p.String()),
		slog.Bool("available", client.Available()))

	return &Runtime{cfg: cfg, logger: logger, client: client, platform: p}, nil
}

// NewFromEnv resolves config from the environment (and CF_CONFIG_FILE, when
// set) and builds a runtime from it.
func NewFromEnv() (*Runtime, error) {
	cfg, err := config.Resolve("")
	if err != nil {
		return nil, err
	}
	return New(cfg, nil)
}

func connectClient(cfg *config.Config, p platform.Platform) (*command.Client, error) {
	endpoint, err := cfg.CommandEndpoint()
	if err != nil {
		return nil, err
	}
	// Cloud Run has no host-side command bus; its stdio pipes carry logs.
	// An explicitly configured socket endpoint is still honored there.
	if p.IsCloudRun() && endpoint.Kind == command.EndpointStdio {
		return command.Unavailable("cloud run does not expose a host command channel"), nil
	}
	client, err := command.ConnectTimeout(endpoint, cfg.CommandTimeout())
	if err != nil {
		return nil, fmt.Errorf("connect command channel: %w", err)
	}
	return client, nil
}

// Config returns the resolved configuration.
func (rt *Runtime) Config() *config.Config {
	return rt.cfg
}

// Logger returns the process logger.
func (rt *Runtime) Logger() *slog.Logger {
	return rt.logger
}

// Client returns the shared command client.
func (rt *Runtime) Client() *command.Client {
	return rt.client
}

// Platform returns the detected platform.
func (rt *Runtime) Platform() platform.Platform {
	return rt.platform
}

// Close releases the command channel. Call it once, at process shutdown.
func (rt *Runtime) Close() error {
	return rt.client.Close()
}

// Serve listens on the configured bind address and serves handler until ctx
// is cancelled, then shuts down gracefully.
func (rt *Runtime) Serve(ctx context.Context, handler http.Handler) error {
	ln, err := net.Listen("tcp", rt.cfg.BindAddr())
	if err != nil {
		return fmt.Errorf("listen %s: %w", rt.cfg.BindAddr(), err)
	}
	return rt.ServeListener(ctx, ln, handler)
}

// ServeListener serves handler on an already-open listener. The listener is
// closed when serving stops.
func (rt *Runtime) ServeListener(ctx context.Context, ln net.Listener, handler http.Handler) error {
	srv := &http.Server{
		Handler:           rt.instrument(handler),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	rt.logger.Info("containerflare listening", slog.String("address", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		<-errCh
		return err
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Run is the whole bootstrap in one call: environment config, logging,
// platform detection, command channel, HTTP serving, and shutdown on
// SIGINT/SIGTERM.
func Run(handler http.Handler) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := NewFromEnv()
	if err != nil {
		return err
	}
	defer rt.Close()

	return rt.Serve(ctx, handler)
}
