package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"sofie/core/middleware/rayid"

	"github.com/gofiber/fiber/v2"
)

// Request is an owned copy of an incoming HTTP request. It stays valid after
// the handler returns.
type Request struct {
	// ID is the ray id assigned by the runtime.
	ID         string
	Method     string
	Path       string
	Host       string
	RemoteAddr string
	Query      url.Values
	Header     http.Header
	Body       []byte
}

// Response is what a Handler returns. A zero Status means 200.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Text builds a plain-text response.
func Text(status int, body string) *Response {
	return &Response{
		Status: status,
		Header: http.Header{fiber.HeaderContentType: {fiber.MIMETextPlainCharsetUTF8}},
		Body:   []byte(body),
	}
}

// JSON builds a response with v encoded as JSON.
func JSON(status int, v any) (*Response, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &Response{
		Status: status,
		Header: http.Header{fiber.HeaderContentType: {fiber.MIMEApplicationJSONCharsetUTF8}},
		Body:   body,
	}, nil
}

// Clone returns a deep copy of r.
func (r *Response) Clone() *Response {
	return &Response{
		Status: r.Status,
		Header: r.Header.Clone(),
		Body:   bytes.Clone(r.Body),
	}
}

// Handler serves every request of an App. It is called concurrently from the
// runtime's request goroutines and is never consumed by a call.
type Handler interface {
	Handle(ctx context.Context, req *Request) (*Response, error)
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx context.Context, req *Request) (*Response, error)

// Handle calls f(ctx, req).
func (f HandlerFunc) Handle(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// Adapt wraps h in the runtime's handler convention. The returned handler shares h
// across calls; each call gets its own Request.
func Adapt(h Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		resp, err := h.Handle(c.UserContext(), newRequest(c))
		if err != nil {
			return err
		}
		if resp == nil {
			return ErrNoResponse
		}
		return writeResponse(c, resp)
	}
}

// newRequest copies everything out of c, whose buffers are reused once the
// handler returns.
func newRequest(c *fiber.Ctx) *Request {
	req := &Request{
		ID:         rayid.FromCtx(c),
		Method:     strings.Clone(c.Method()),
		Path:       strings.Clone(c.Path()),
		Host:       string(c.Request().Host()),
		RemoteAddr: c.Context().RemoteAddr().String(),
		Query:      url.Values{},
		Header:     http.Header{},
		Body:       bytes.Clone(c.Body()),
	}

	c.Request().URI().QueryArgs().VisitAll(func(key, value []byte) {
		req.Query.Add(string(key), string(value))
	})
	c.Request().Header.VisitAll(func(key, value []byte) {
		req.Header.Add(string(key), string(value))
	})

	return req
}

func writeResponse(c *fiber.Ctx, resp *Response) error {
	status := resp.Status
	if status == 0 {
		status = fiber.StatusOK
	}

	for key, values := range resp.Header {
		for _, v := range values {
			c.Response().Header.Add(key, v)
		}
	}

	return c.Status(status).Send(resp.Body)
}
