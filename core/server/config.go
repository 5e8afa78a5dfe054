package server

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
)

var (
	// ErrEmptyHostname is returned when a virtual host is configured without a hostname.
	ErrEmptyHostname = errors.New("hostname must not be empty")
	// ErrInvalidHostname is returned for hostnames that are not valid DNS names.
	ErrInvalidHostname = errors.New("invalid hostname")
)

const (
	maxHostnameLength = 253
	maxLabelLength    = 63
)

// ListenerConfig holds the network parameters a server binds to.
type ListenerConfig struct {
	// Port is the TCP port. Zero asks the kernel for a free port.
	Port uint16
	// Interface is the address to bind, e.g. "0.0.0.0" or "::".
	Interface string
}

// NewListenerConfig copies port and interface into a ListenerConfig.
func NewListenerConfig(port uint16, iface string) ListenerConfig {
	return ListenerConfig{Port: port, Interface: iface}
}

// Addr renders the listener as a host:port pair suitable for net.Listen.
func (l ListenerConfig) Addr() string {
	return net.JoinHostPort(l.Interface, strconv.Itoa(int(l.Port)))
}

// VirtualHostConfig names a virtual host.
type VirtualHostConfig struct {
	Hostname string
	Port     uint16
}

// NewVirtualHostConfig validates hostname and returns the configuration.
func NewVirtualHostConfig(hostname string, port uint16) (VirtualHostConfig, error) {
	if err := validateHostname(hostname); err != nil {
		return VirtualHostConfig{}, fmt.Errorf("virtual host config: %w", err)
	}
	return VirtualHostConfig{Hostname: strings.ToLower(strings.TrimSuffix(hostname, ".")), Port: port}, nil
}

func validateHostname(hostname string) error {
	if hostname == "" {
		return ErrEmptyHostname
	}
	if len(hostname) > maxHostnameLength {
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidHostname, maxHostnameLength)
	}

	for _, label := range strings.Split(strings.TrimSuffix(hostname, "."), ".") {
		switch {
		case label == "":
			return fmt.Errorf("%w %q: empty label", ErrInvalidHostname, hostname)
		case len(label) > maxLabelLength:
			return fmt.Errorf("%w %q: label longer than %d bytes", ErrInvalidHostname, hostname, maxLabelLength)
		case label[0] == '-' || label[len(label)-1] == '-':
			return fmt.Errorf("%w %q: label %q starts or ends with '-'", ErrInvalidHostname, hostname, label)
		}
		for _, r := range label {
			if !isLabelRune(r) {
				return fmt.Errorf("%w %q: unexpected character %q", ErrInvalidHostname, hostname, r)
			}
		}
	}
	return nil
}

func isLabelRune(r rune) bool {
	return r == '-' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}
