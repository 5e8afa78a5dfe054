package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"sofie/core/app"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// DefaultBody is served when neither Body nor BodyFile is set.
const DefaultBody = "Hello World"

// Config describes the canned response.
type Config struct {
	// Status is the HTTP status code. Zero means 200.
	Status int
	// ContentType overrides content detection.
	ContentType string
	// Body is the literal response body.
	Body string
	// BodyFile, when set, is read once at construction and takes precedence over Body.
	BodyFile string
}

// Handler answers every request with the same response.
type Handler struct {
	response *app.Response
	logger   *zap.Logger
}

// NewHandler validates cfg and prepares the response.
func NewHandler(cfg Config, logger *zap.Logger) (*Handler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	status := cfg.Status
	if status == 0 {
		status = http.StatusOK
	}
	if status < 100 || status > 599 {
		return nil, fmt.Errorf("mock: status %d out of range", status)
	}

	body := []byte(cfg.Body)
	switch {
	case cfg.BodyFile != "":
		data, err := os.ReadFile(cfg.BodyFile)
		if err != nil {
			return nil, fmt.Errorf("mock: read body file: %w", err)
		}
		body = data
	case cfg.Body == "":
		body = []byte(DefaultBody)
	}

	contentType := cfg.ContentType
	if contentType == "" {
		contentType = detectContentType(body)
	}

	return &Handler{
		response: &app.Response{
			Status: status,
			Header: http.Header{fiber.HeaderContentType: {contentType}},
			Body:   body,
		},
		logger: logger,
	}, nil
}

// Handle returns a copy of the canned response.
func (h *Handler) Handle(ctx context.Context, req *app.Request) (*app.Response, error) {
	h.logger.Debug("Serving canned response",
		zap.String("ray_id", req.ID),
		zap.String("method", req.Method),
		zap.String("path", req.Path),
	)
	return h.response.Clone(), nil
}

func detectContentType(body []byte) string {
	if len(body) > 0 && json.Valid(body) {
		return fiber.MIMEApplicationJSONCharsetUTF8
	}
	return fiber.MIMETextPlainCharsetUTF8
}
