// Package app is the entry point for sofie applications.
//
// An App is constructed from a resolved config.Config (or resolves one itself
// through FromSource/Default), assembles the listener, and owns a core/server
// runtime. Serve binds one Handler to every path of the "localhost" virtual host
// and blocks until the context is cancelled or the server fails.
//
// # Handlers
//
// Handler receives an owned *Request and returns a *Response or an error. It is
// invoked concurrently, once per request, and is shared across invocations:
//
//	a := app.Default()
//	err := a.Serve(ctx, app.HandlerFunc(func(ctx context.Context, req *app.Request) (*app.Response, error) {
//	    return app.Text(http.StatusOK, "Hello World"), nil
//	}))
//
// # Errors
//
// Every failure surfaced by Serve is an *Error of kind ServerStart rendering as
// "Failed to start server: <cause>"; the cause stays reachable via errors.Is/As.
//
// # Lifecycle
//
// An App serves once. A second Serve returns a ServerStart error wrapping
// ErrAlreadyServed.
package app
