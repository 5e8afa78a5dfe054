package server

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
)

var (
	// ErrInvalidPath is returned for URI patterns that are not absolute.
	ErrInvalidPath = errors.New("uri pattern must start with '/'")
	// ErrNilHandler is returned when a path is bound to no handler.
	ErrNilHandler = errors.New("handler must not be nil")
	// ErrDuplicatePath is returned when a virtual host already binds a pattern.
	ErrDuplicatePath = errors.New("path already registered")
)

// HandlerPath binds a URI prefix pattern to a handler. The pattern "/" matches
// every request; "/api" matches "/api" and everything below "/api/".
type HandlerPath struct {
	uri     string
	handler fiber.Handler
}

// NewHandlerPath validates the binding of uri to handler.
func NewHandlerPath(uri string, handler fiber.Handler) (HandlerPath, error) {
	if !strings.HasPrefix(uri, "/") {
		return HandlerPath{}, fmt.Errorf("handler path %q: %w", uri, ErrInvalidPath)
	}
	if handler == nil {
		return HandlerPath{}, fmt.Errorf("handler path %q: %w", uri, ErrNilHandler)
	}
	return HandlerPath{uri: uri, handler: handler}, nil
}

// URI returns the pattern.
func (p HandlerPath) URI() string {
	return p.uri
}

func (p HandlerPath) matches(path string) bool {
	if strings.HasSuffix(p.uri, "/") {
		return strings.HasPrefix(path, p.uri)
	}
	return path == p.uri || strings.HasPrefix(path, p.uri+"/")
}

// VirtualHost collects the handler paths served under one hostname.
type VirtualHost struct {
	config VirtualHostConfig
	paths  []HandlerPath
}

// NewVirtualHost returns an empty virtual host for cfg.
func NewVirtualHost(cfg VirtualHostConfig) *VirtualHost {
	return &VirtualHost{config: cfg}
}

// Config returns the host configuration.
func (v *VirtualHost) Config() VirtualHostConfig {
	return v.config
}

// Paths returns a copy of the registered paths in registration order.
func (v *VirtualHost) Paths() []HandlerPath {
	return append([]HandlerPath(nil), v.paths...)
}

// AddPath registers p. Patterns must be unique within a host.
func (v *VirtualHost) AddPath(p HandlerPath) error {
	if p.handler == nil {
		return fmt.Errorf("handler path %q: %w", p.uri, ErrNilHandler)
	}
	for _, existing := range v.paths {
		if existing.uri == p.uri {
			return fmt.Errorf("virtual host %s: %w: %s", v.config.Hostname, ErrDuplicatePath, p.uri)
		}
	}
	v.paths = append(v.paths, p)
	return nil
}

// match returns the longest pattern matching path.
func (v *VirtualHost) match(path string) (HandlerPath, bool) {
	var (
		best  HandlerPath
		found bool
	)
	for _, p := range v.paths {
		if p.matches(path) && (!found || len(p.uri) > len(best.uri)) {
			best, found = p, true
		}
	}
	return best, found
}
