package model

import (
	"fmt"
	"net"
	"strings"
	"time"
)

// Role selects which side of the tunnel this installation runs.
type Role string

const (
	RoleServer Role = "server"
	RoleClient Role = "client"
)

// Modes supported by the wrapped binary. The values are opaque to the
// panel beyond membership in this set.
var SupportedModes = []string{"plain", "obfuscated"}

const DefaultMode = "plain"

// TunnelConfig is the on-disk configuration consumed by the pingtunnel
// binary at launch. The file at config.GetConfigPath() is the single
// source of truth; nothing is cached across invocations.
type TunnelConfig struct {
	Role Role   `json:"role"`
	Mode string `json:"mode,omitempty"`
	// Address is the bind address for a server, or the upstream server
	// address for a client. Always host:port.
	Address     string   `json:"address"`
	Key         string   `json:"key"`
	ExtraArgs   []string `json:"extra_args,omitempty"`
	MemoryMB    int      `json:"memory_mb,omitempty"`
	InstalledAt string   `json:"installed_at,omitempty"`
}

// Default returns the config the installer writes on a fresh machine.
func Default() *TunnelConfig {
	return &TunnelConfig{
		Role:        RoleServer,
		Mode:        DefaultMode,
		Address:     "0.0.0.0:4000",
		Key:         "changeme",
		MemoryMB:    512,
		InstalledAt: time.Now().Format("2006-01-02 15:04:05"),
	}
}

// Validate checks the invariants a runnable config must satisfy.
func (c *TunnelConfig) Validate() error {
	switch c.Role {
	case RoleServer, RoleClient:
	case "":
		return fmt.Errorf("role is required (server or client)")
	default:
		return fmt.Errorf("unsupported role: %s", c.Role)
	}
	if c.Mode != "" && !isSupportedMode(c.Mode) {
		return fmt.Errorf("unsupported mode: %s (supported: %s)", c.Mode, strings.Join(SupportedModes, ", "))
	}
	if c.Address == "" {
		return fmt.Errorf("address is required")
	}
	host, port, err := net.SplitHostPort(c.Address)
	if err != nil {
		return fmt.Errorf("address must be host:port: %v", err)
	}
	if host == "" || port == "" {
		return fmt.Errorf("address must be host:port, got %q", c.Address)
	}
	if c.Key == "" {
		return fmt.Errorf("key must not be empty")
	}
	if c.MemoryMB < 0 {
		return fmt.Errorf("memory_mb must not be negative")
	}
	return nil
}

// BuildArgs assembles the launch argv for the tunnel binary. Extra args
// are appended last so operators can override anything.
func (c *TunnelConfig) BuildArgs() []string {
	var args []string
	switch c.Role {
	case RoleClient:
		host, port, _ := net.SplitHostPort(c.Address)
		args = append(args, "-mode", "client", "-server", host, "-port", port)
	default:
		args = append(args, "-mode", "server", "-l", c.Address)
	}
	args = append(args, "-password", c.Key)
	if c.Mode == "obfuscated" {
		args = append(args, "-obfuscate", "1")
	}
	args = append(args, c.ExtraArgs...)
	return args
}

func isSupportedMode(mode string) bool {
	for _, m := range SupportedModes {
		if m == mode {
			return true
		}
	}
	return false
}
