package rayid

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// Header carries the ray id in both directions.
	Header = "X-Ray-ID"
	// LocalKey is the Fiber locals key holding the ray id.
	LocalKey = "ray_id"

	maxLength = 128
)

// New returns a middleware that tags every request with a ray id. A client id
// (e.g. from a proxy) is reused when it is at most 128 bytes of [A-Za-z0-9._-];
// anything else is replaced by a fresh UUID.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(Header)
		if !valid(id) {
			id = uuid.NewString()
		} else {
			// Header values alias fasthttp's buffers.
			id = strings.Clone(id)
		}

		c.Locals(LocalKey, id)
		c.Set(Header, id)
		return c.Next()
	}
}

// FromCtx returns the ray id of the request, or "" outside the middleware.
func FromCtx(c *fiber.Ctx) string {
	if id, ok := c.Locals(LocalKey).(string); ok {
		return id
	}
	return ""
}

func valid(id string) bool {
	if id == "" || len(id) > maxLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		switch b := id[i]; {
		case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		case b == '.', b == '_', b == '-':
		default:
			return false
		}
	}
	return true
}
