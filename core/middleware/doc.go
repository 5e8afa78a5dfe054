// Package middleware contains the HTTP middleware the runtime installs in front of
// every virtual host.
//
// # Components
//
//   - RayID: assigns a unique Request ID (RayID) to every incoming request, storing it
//     in the Fiber locals and echoing it in the X-Ray-ID response header.
//   - RequestLog: logs each request through Zap, tagged with its RayID.
//
// These are not user-configurable; core/server registers them in a fixed order.
package middleware
