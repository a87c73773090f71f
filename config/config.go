package config

import (
	"os"
	"path/filepath"
)

type LogLevel string

const (
	Debug LogLevel = "debug"
	Info  LogLevel = "info"
	Warn  LogLevel = "warn"
	Error LogLevel = "error"
)

var (
	name    = "ptpanel"
	version = "1.2.0"
)

// Defaults mirror the layout the installer creates. Every path is
// overridable through PTPANEL_* so tests and non-root runs never touch
// the system locations.
const (
	defaultInstallDir  = "/opt/pingtunnel"
	defaultLogDir      = "/var/log/pingtunnel"
	defaultServiceName = "pingtunnel"
)

func GetName() string {
	return name
}

func GetVersion() string {
	return version
}

func GetLogLevel() LogLevel {
	if IsDebug() {
		return Debug
	}
	logLevel := os.Getenv("PTPANEL_LOG_LEVEL")
	if logLevel == "" {
		return Info
	}
	return LogLevel(logLevel)
}

func IsDebug() bool {
	return os.Getenv("PTPANEL_DEBUG") == "true"
}

func GetInstallDir() string {
	dir := os.Getenv("PTPANEL_INSTALL_DIR")
	if dir == "" {
		return defaultInstallDir
	}
	return dir
}

func GetBinDir() string {
	return filepath.Join(GetInstallDir(), "bin")
}

func GetConfigPath() string {
	path := os.Getenv("PTPANEL_CONFIG_PATH")
	if path == "" {
		return filepath.Join(GetInstallDir(), "conf", "config.json")
	}
	return path
}

func GetNotifyConfigPath() string {
	path := os.Getenv("PTPANEL_NOTIFY_CONFIG_PATH")
	if path == "" {
		return filepath.Join(GetInstallDir(), "conf", "telegram.json")
	}
	return path
}

func GetLogDir() string {
	dir := os.Getenv("PTPANEL_LOG_DIR")
	if dir == "" {
		return defaultLogDir
	}
	return dir
}

func GetServiceName() string {
	svc := os.Getenv("PTPANEL_SERVICE_NAME")
	if svc == "" {
		return defaultServiceName
	}
	return svc
}
