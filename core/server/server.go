package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"sofie/core/metrics"
	"sofie/core/middleware/rayid"
	"sofie/core/middleware/requestlog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"
)

// DefaultShutdownTimeout bounds graceful shutdown when Options leaves it unset.
const DefaultShutdownTimeout = 10 * time.Second

var (
	// ErrNilVirtualHost is returned by AddVirtualHost for a nil host.
	ErrNilVirtualHost = errors.New("virtual host must not be nil")
	// ErrDuplicateHost is returned when a hostname is registered twice.
	ErrDuplicateHost = errors.New("virtual host already registered")
	// ErrNoVirtualHosts is returned by Run when nothing has been registered.
	ErrNoVirtualHosts = errors.New("no virtual hosts registered")
	// ErrAlreadyRunning is returned by Run and AddVirtualHost once the server has started.
	ErrAlreadyRunning = errors.New("server already started")
)

// Options tunes a Server. The zero value is usable.
type Options struct {
	// Logger receives lifecycle and request logs. Defaults to a no-op logger.
	Logger *zap.Logger
	// Metrics, when set, instruments every request.
	Metrics *metrics.Metrics
	// ShutdownTimeout bounds graceful shutdown. Defaults to DefaultShutdownTimeout.
	ShutdownTimeout time.Duration
}

// Server serves a set of virtual hosts on one listener.
type Server struct {
	listener ListenerConfig
	opts     Options
	log      *zap.Logger
	app      *fiber.App

	mu    sync.RWMutex
	hosts []*VirtualHost
	ln    net.Listener

	running atomic.Bool
	ready   chan struct{}
	done    chan struct{}
}

// New creates a server bound to listener. Nothing is bound until Run.
func New(listener ListenerConfig, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = DefaultShutdownTimeout
	}

	s := &Server{
		listener: listener,
		opts:     opts,
		log:      opts.Logger,
		ready:    make(chan struct{}),
		done:     make(chan struct{}),
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "sofie",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	s.app.Use(rayid.New())
	s.app.Use(requestlog.New(s.log))
	if opts.Metrics != nil {
		s.app.Use(opts.Metrics.Middleware())
	}
	s.app.Use(recover.New())
	s.app.Use(s.dispatch)

	return s
}

// Listener returns the listener configuration the server was built with.
func (s *Server) Listener() ListenerConfig {
	return s.listener
}

// AddVirtualHost moves host into the server. The first registered host also
// answers requests whose Host header matches no registered hostname.
func (s *Server) AddVirtualHost(host *VirtualHost) error {
	if host == nil {
		return ErrNilVirtualHost
	}
	if s.running.Load() {
		return ErrAlreadyRunning
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.hosts {
		if existing.config.Hostname == host.config.Hostname {
			return fmt.Errorf("%w: %s", ErrDuplicateHost, host.config.Hostname)
		}
	}
	s.hosts = append(s.hosts, host)
	return nil
}

// Ready is closed once the listener is bound. It stays open when binding
// fails; wait on Done as well.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Done is closed when Run returns, whether it served or failed.
func (s *Server) Done() <-chan struct{} {
	return s.done
}

// Addr returns the bound address, or nil before the listener is bound.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Run binds the listener and serves until ctx is cancelled or serving fails.
// Cancellation triggers a graceful shutdown and a nil return. A server runs at
// most once.
func (s *Server) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(s.done)

	s.mu.RLock()
	hostnames := make([]string, 0, len(s.hosts))
	for _, h := range s.hosts {
		hostnames = append(hostnames, h.config.Hostname)
	}
	s.mu.RUnlock()

	if len(hostnames) == 0 {
		return ErrNoVirtualHosts
	}

	addr := s.listener.Addr()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	close(s.ready)

	s.log.Info("Server listening",
		zap.String("addr", ln.Addr().String()),
		zap.Strings("hosts", hostnames),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listener(ln)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve on %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("Shutting down server")
	shutdownErr := s.app.ShutdownWithTimeout(s.opts.ShutdownTimeout)
	// Unblocks Listener if shutdown raced ahead of it.
	_ = ln.Close()

	if err := <-errCh; err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("serve on %s: %w", addr, err)
	}
	if shutdownErr != nil {
		return fmt.Errorf("shutdown: %w", shutdownErr)
	}
	return nil
}

func (s *Server) dispatch(c *fiber.Ctx) error {
	host := s.lookup(hostnameOf(c))
	if host == nil {
		return fiber.ErrNotFound
	}

	p, ok := host.match(c.Path())
	if !ok {
		return fiber.ErrNotFound
	}

	c.Locals(metrics.PatternLocal, p.uri)
	return p.handler(c)
}

func (s *Server) lookup(hostname string) *VirtualHost {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, h := range s.hosts {
		if strings.EqualFold(h.config.Hostname, hostname) {
			return h
		}
	}
	if len(s.hosts) > 0 {
		return s.hosts[0]
	}
	return nil
}

// handleError renders errors that escape the handler chain. Details of
// non-fiber errors stay in the logs.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := utils.StatusMessage(code)

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.Status(code).SendString(message)
}

func hostnameOf(c *fiber.Ctx) string {
	host := string(c.Request().Host())
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.TrimSuffix(strings.Trim(host, "[]"), ".")
}
