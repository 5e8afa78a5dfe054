package server

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(c *fiber.Ctx) error { return nil }

func TestNewHandlerPath(t *testing.T) {
	tests := []struct {
		name    string
		uri     string
		handler fiber.Handler
		wantErr error
	}{
		{"Root", "/", noop, nil},
		{"Nested", "/api/v1", noop, nil},
		{"Empty", "", noop, ErrInvalidPath},
		{"Relative", "api", noop, ErrInvalidPath},
		{"NilHandler", "/", nil, ErrNilHandler},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewHandlerPath(tt.uri, tt.handler)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.uri, p.URI())
		})
	}
}

func TestVirtualHost_AddPath(t *testing.T) {
	host := NewVirtualHost(VirtualHostConfig{Hostname: "localhost", Port: 8080})

	root, err := NewHandlerPath("/", noop)
	require.NoError(t, err)
	require.NoError(t, host.AddPath(root))

	dup, err := NewHandlerPath("/", noop)
	require.NoError(t, err)
	err = host.AddPath(dup)
	assert.ErrorIs(t, err, ErrDuplicatePath)

	assert.ErrorIs(t, host.AddPath(HandlerPath{uri: "/zero"}), ErrNilHandler)

	paths := host.Paths()
	require.Len(t, paths, 1)
	assert.Equal(t, "/", paths[0].URI())
	assert.Equal(t, "localhost", host.Config().Hostname)
}

func TestVirtualHost_Match(t *testing.T) {
	host := NewVirtualHost(VirtualHostConfig{Hostname: "localhost"})
	for _, uri := range []string{"/", "/api", "/api/v2", "/static/"} {
		p, err := NewHandlerPath(uri, noop)
		require.NoError(t, err)
		require.NoError(t, host.AddPath(p))
	}

	tests := []struct {
		path string
		want string
	}{
		{"/", "/"},
		{"/index.html", "/"},
		{"/api", "/api"},
		{"/api/users", "/api"},
		{"/apix", "/"},
		{"/api/v2", "/api/v2"},
		{"/api/v2/items/1", "/api/v2"},
		{"/static/app.js", "/static/"},
		{"/static", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			p, ok := host.match(tt.path)
			require.True(t, ok)
			assert.Equal(t, tt.want, p.URI())
		})
	}
}

func TestVirtualHost_MatchWithoutRoot(t *testing.T) {
	host := NewVirtualHost(VirtualHostConfig{Hostname: "localhost"})
	p, err := NewHandlerPath("/api", noop)
	require.NoError(t, err)
	require.NoError(t, host.AddPath(p))

	_, ok := host.match("/other")
	assert.False(t, ok)
}
