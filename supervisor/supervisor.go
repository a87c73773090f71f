package supervisor

import (
	"context"
	"os/exec"
)

// Status is the observed state of the managed tunnel service.
type Status string

const (
	StatusRunning      Status = "RUNNING"
	StatusStopped      Status = "STOPPED"
	StatusNotInstalled Status = "NOT_INSTALLED"
	StatusUnknown      Status = "UNKNOWN"
)

// Definition describes how the supervisor should launch the tunnel
// binary. It is rebuilt from the on-disk config on every invocation and
// baked into the service definition at install/edit time.
type Definition struct {
	Name       string
	BinaryPath string
	Args       []string
	WorkingDir string
	LogDir     string
	MemoryMB   int
}

// Supervisor manages exactly one named service.
type Supervisor interface {
	// Install writes (or rewrites) the service definition and enables it.
	// It does not start the service.
	Install(ctx context.Context, def Definition) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	QueryStatus(ctx context.Context) (Status, error)
	// Logs yields recent log lines, oldest first. With follow the channel
	// stays open until ctx is cancelled; cancellation detaches without
	// touching the service.
	Logs(ctx context.Context, lines int, follow bool) (<-chan string, error)
	// Uninstall removes the service definition. Safe to call when nothing
	// is installed.
	Uninstall(ctx context.Context) error
}

// New picks the systemd supervisor when systemctl is available and falls
// back to the pidfile supervisor otherwise, matching how the service is
// managed on minimal containers.
func New(name string, stateDir string, logDir string) Supervisor {
	if _, err := exec.LookPath("systemctl"); err == nil {
		return NewSystemd(name)
	}
	return NewPidfile(name, stateDir, logDir)
}
