// Package server is the HTTP runtime underneath sofie applications.
//
// It is a thin layer over Fiber that speaks in listener, virtual host and
// handler path objects instead of routes:
//
//   - ListenerConfig: interface and port to bind.
//   - VirtualHostConfig: a validated hostname (and the port it is announced on).
//   - HandlerPath: a URI prefix pattern bound to a fiber.Handler.
//   - VirtualHost: the handler paths served under one hostname.
//   - Server: owns the listener and the registered virtual hosts; Run blocks
//     until the context is cancelled or serving fails.
//
// # Routing
//
// The Host header (port stripped, case-insensitive) selects the virtual host; the
// first registered host is the fallback for unknown hosts. Within a host the longest
// matching prefix pattern wins, so "/" catches everything no other pattern claims.
//
// Every request passes through the rayid, requestlog and (optionally) metrics
// middleware before reaching its handler.
//
// # Usage
//
//	srv := server.New(server.NewListenerConfig(8080, "0.0.0.0"), server.Options{Logger: log})
//	cfg, err := server.NewVirtualHostConfig("localhost", 8080)
//	host := server.NewVirtualHost(cfg)
//	path, err := server.NewHandlerPath("/", handler)
//	err = host.AddPath(path)
//	err = srv.AddVirtualHost(host)
//	err = srv.Run(ctx)
package server
