package app_test

import (
	"testing"

	"sofie/core/app"
	"sofie/core/config"
	"sofie/core/server"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssemble(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
	}{
		{"Loopback", config.Config{Port: 8080, Interface: "127.0.0.1"}},
		{"AllInterfaces", config.Config{Port: 9090, Interface: "0.0.0.0"}},
		{"IPv6", config.Config{Port: 443, Interface: "::"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			listener, host, err := app.Assemble(tt.cfg, app.DefaultHostname)
			require.NoError(t, err)

			assert.Equal(t, server.ListenerConfig{Port: tt.cfg.Port, Interface: tt.cfg.Interface}, listener)
			assert.Equal(t, server.VirtualHostConfig{Hostname: "localhost", Port: tt.cfg.Port}, host)
		})
	}
}

func TestAssemble_InvalidHostname(t *testing.T) {
	cfg := config.Default()

	listener, host, err := app.Assemble(cfg, "")
	require.ErrorIs(t, err, server.ErrEmptyHostname)
	assert.Equal(t, server.VirtualHostConfig{}, host)
	assert.Equal(t, server.NewListenerConfig(8080, "0.0.0.0"), listener)
}
