package model

import (
	"reflect"
	"testing"
)

func validConfig() *TunnelConfig {
	return &TunnelConfig{
		Role:    RoleServer,
		Mode:    "plain",
		Address: "0.0.0.0:4000",
		Key:     "secret",
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*TunnelConfig)
		wantErr bool
	}{
		{"valid server", func(c *TunnelConfig) {}, false},
		{"valid client", func(c *TunnelConfig) { c.Role = RoleClient; c.Address = "1.2.3.4:4000" }, false},
		{"empty mode defaults", func(c *TunnelConfig) { c.Mode = "" }, false},
		{"obfuscated mode", func(c *TunnelConfig) { c.Mode = "obfuscated" }, false},
		{"missing role", func(c *TunnelConfig) { c.Role = "" }, true},
		{"bad role", func(c *TunnelConfig) { c.Role = "relay" }, true},
		{"bad mode", func(c *TunnelConfig) { c.Mode = "stealth" }, true},
		{"missing address", func(c *TunnelConfig) { c.Address = "" }, true},
		{"address without port", func(c *TunnelConfig) { c.Address = "0.0.0.0" }, true},
		{"address without host", func(c *TunnelConfig) { c.Address = ":4000" }, true},
		{"empty key", func(c *TunnelConfig) { c.Key = "" }, true},
		{"negative memory", func(c *TunnelConfig) { c.MemoryMB = -1 }, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestBuildArgsServer(t *testing.T) {
	cfg := validConfig()
	got := cfg.BuildArgs()
	want := []string{"-mode", "server", "-l", "0.0.0.0:4000", "-password", "secret"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestBuildArgsClient(t *testing.T) {
	cfg := validConfig()
	cfg.Role = RoleClient
	cfg.Address = "198.51.100.7:4000"
	got := cfg.BuildArgs()
	want := []string{"-mode", "client", "-server", "198.51.100.7", "-port", "4000", "-password", "secret"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestBuildArgsObfuscatedAndExtra(t *testing.T) {
	cfg := validConfig()
	cfg.Mode = "obfuscated"
	cfg.ExtraArgs = []string{"-nolog", "1"}
	got := cfg.BuildArgs()
	want := []string{"-mode", "server", "-l", "0.0.0.0:4000", "-password", "secret", "-obfuscate", "1", "-nolog", "1"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestDefaultIsRunnable(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}
