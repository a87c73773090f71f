package config

import (
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	t.Setenv("PTPANEL_INSTALL_DIR", "")
	t.Setenv("PTPANEL_LOG_DIR", "")
	t.Setenv("PTPANEL_CONFIG_PATH", "")
	t.Setenv("PTPANEL_SERVICE_NAME", "")

	if got := GetInstallDir(); got != "/opt/pingtunnel" {
		t.Errorf("GetInstallDir() = %q", got)
	}
	if got := GetLogDir(); got != "/var/log/pingtunnel" {
		t.Errorf("GetLogDir() = %q", got)
	}
	if got := GetServiceName(); got != "pingtunnel" {
		t.Errorf("GetServiceName() = %q", got)
	}
	if got := GetConfigPath(); got != filepath.Join("/opt/pingtunnel", "conf", "config.json") {
		t.Errorf("GetConfigPath() = %q", got)
	}
	if got := GetBinDir(); got != filepath.Join("/opt/pingtunnel", "bin") {
		t.Errorf("GetBinDir() = %q", got)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PTPANEL_INSTALL_DIR", "/tmp/pt")
	t.Setenv("PTPANEL_SERVICE_NAME", "pt-test")
	t.Setenv("PTPANEL_CONFIG_PATH", "")

	if got := GetInstallDir(); got != "/tmp/pt" {
		t.Errorf("GetInstallDir() = %q", got)
	}
	if got := GetBinDir(); got != "/tmp/pt/bin" {
		t.Errorf("GetBinDir() = %q", got)
	}
	// Config path derives from the install dir unless set explicitly.
	if got := GetConfigPath(); got != "/tmp/pt/conf/config.json" {
		t.Errorf("GetConfigPath() = %q", got)
	}
	t.Setenv("PTPANEL_CONFIG_PATH", "/etc/pt.json")
	if got := GetConfigPath(); got != "/etc/pt.json" {
		t.Errorf("GetConfigPath() = %q", got)
	}
	if got := GetServiceName(); got != "pt-test" {
		t.Errorf("GetServiceName() = %q", got)
	}
}

func TestLogLevel(t *testing.T) {
	t.Setenv("PTPANEL_DEBUG", "")
	t.Setenv("PTPANEL_LOG_LEVEL", "")
	if got := GetLogLevel(); got != Info {
		t.Errorf("default level = %q, want info", got)
	}
	t.Setenv("PTPANEL_LOG_LEVEL", "warn")
	if got := GetLogLevel(); got != Warn {
		t.Errorf("level = %q, want warn", got)
	}
	t.Setenv("PTPANEL_DEBUG", "true")
	if got := GetLogLevel(); got != Debug {
		t.Errorf("debug mode must force the debug level, got %q", got)
	}
}
