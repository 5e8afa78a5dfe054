package app

import (
	"sofie/core/config"
	"sofie/core/server"
)

const (
	// DefaultHostname is the virtual host every App serves.
	DefaultHostname = "localhost"
	// RootPath is the pattern the handler is bound to; it matches every request.
	RootPath = "/"
)

// Assemble translates cfg into the runtime's listener and virtual host
// configuration. Only the virtual host step can fail.
func Assemble(cfg config.Config, hostname string) (server.ListenerConfig, server.VirtualHostConfig, error) {
	listener := assembleListener(cfg)

	host, err := server.NewVirtualHostConfig(hostname, cfg.Port)
	if err != nil {
		return listener, server.VirtualHostConfig{}, err
	}
	return listener, host, nil
}

func assembleListener(cfg config.Config) server.ListenerConfig {
	return server.NewListenerConfig(cfg.Port, cfg.Interface)
}
