package app

import (
	"context"
	"net"
	"reflect"
	"sync/atomic"
	"time"

	"sofie/core/config"
	"sofie/core/metrics"
	"sofie/core/server"

	"go.uber.org/zap"
)

// Options carries the ambient collaborators of an App. The zero value is usable.
type Options struct {
	Logger          *zap.Logger
	Metrics         *metrics.Metrics
	ShutdownTimeout time.Duration
}

// App binds one resolved configuration to one server and serves a single
// handler on it. An App serves once.
type App struct {
	config   config.Config
	listener server.ListenerConfig
	hostname string
	server   *server.Server
	logger   *zap.Logger
	served   atomic.Bool
}

// New assembles the listener for cfg and constructs the server bound to it.
func New(cfg config.Config, opts Options) *App {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	listener := assembleListener(cfg)
	return &App{
		config:   cfg,
		listener: listener,
		hostname: DefaultHostname,
		logger:   opts.Logger,
		server: server.New(listener, server.Options{
			Logger:          opts.Logger,
			Metrics:         opts.Metrics,
			ShutdownTimeout: opts.ShutdownTimeout,
		}),
	}
}

// FromSource resolves the configuration from src and calls New.
func FromSource(src config.Source, opts Options) *App {
	return New(config.Resolve(src, opts.Logger), opts)
}

// Default resolves the configuration from the default source, logging through
// the global zap logger.
func Default() *App {
	return FromSource(config.DefaultSource(), Options{Logger: zap.L()})
}

// Config returns the resolved configuration.
func (a *App) Config() config.Config {
	return a.config
}

// Listener returns the listener configuration assembled at construction.
func (a *App) Listener() server.ListenerConfig {
	return a.listener
}

// Ready is closed once the listener is bound. A Serve that fails before
// binding never closes it; Done covers that case.
func (a *App) Ready() <-chan struct{} {
	return a.server.Ready()
}

// Done is closed once the server has stopped or failed to start. It stays
// open when Serve is rejected before reaching the server.
func (a *App) Done() <-chan struct{} {
	return a.server.Done()
}

// Addr returns the bound address, or nil before Serve has bound the listener.
func (a *App) Addr() net.Addr {
	return a.server.Addr()
}

// Serve registers h for every path of the "localhost" virtual host and runs the
// server until ctx is cancelled (nil is returned) or the server fails. Every
// failure is logged and returned as a ServerStart *Error. Serve may be called
// once per App.
func (a *App) Serve(ctx context.Context, h Handler) error {
	if isNilHandler(h) {
		return a.fail(ErrNilHandler)
	}
	if !a.served.CompareAndSwap(false, true) {
		return a.fail(ErrAlreadyServed)
	}

	_, hostConfig, err := Assemble(a.config, a.hostname)
	if err != nil {
		return a.fail(err)
	}

	host := server.NewVirtualHost(hostConfig)
	path, err := server.NewHandlerPath(RootPath, Adapt(h))
	if err != nil {
		return a.fail(err)
	}
	if err := host.AddPath(path); err != nil {
		return a.fail(err)
	}
	if err := a.server.AddVirtualHost(host); err != nil {
		return a.fail(err)
	}

	if err := a.server.Run(ctx); err != nil {
		return a.fail(err)
	}
	return nil
}

// isNilHandler also catches typed nils such as (*T)(nil) or a nil HandlerFunc,
// which would otherwise panic on every request.
func isNilHandler(h Handler) bool {
	if h == nil {
		return true
	}
	v := reflect.ValueOf(h)
	switch v.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Slice, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

func (a *App) fail(err error) error {
	a.logger.Error("Failed to start server", zap.Error(err))
	return serverStart(err)
}
