package supervisor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ptpanel/ptpanel/logger"
	"github.com/ptpanel/ptpanel/util"
)

const defaultUnitDir = "/etc/systemd/system"

// Systemd drives one unit through systemctl/journalctl.
type Systemd struct {
	name    string
	unitDir string
}

func NewSystemd(name string) *Systemd {
	return &Systemd{name: name, unitDir: defaultUnitDir}
}

func (s *Systemd) unitName() string {
	return s.name + ".service"
}

func (s *Systemd) unitPath() string {
	return filepath.Join(s.unitDir, s.unitName())
}

func (s *Systemd) dropinDir() string {
	return filepath.Join(s.unitDir, s.unitName()+".d")
}

func (s *Systemd) Install(ctx context.Context, def Definition) error {
	unit := renderUnit(def)
	if err := os.MkdirAll(s.unitDir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(s.unitPath(), []byte(unit), 0o644); err != nil {
		return fmt.Errorf("write unit %s: %w", s.unitPath(), err)
	}
	if err := s.syncMemoryDropin(def.MemoryMB); err != nil {
		return err
	}
	if err := s.systemctl(ctx, "daemon-reload"); err != nil {
		return err
	}
	if err := s.systemctl(ctx, "enable", s.unitName()); err != nil {
		// enable failing (e.g. chroot without a running systemd) should
		// not fail the install; the unit file is in place.
		logger.Warningf("systemctl enable %s: %v", s.unitName(), err)
	}
	return nil
}

func (s *Systemd) Start(ctx context.Context) error {
	return s.systemctl(ctx, "start", s.unitName())
}

func (s *Systemd) Stop(ctx context.Context) error {
	return s.systemctl(ctx, "stop", s.unitName())
}

func (s *Systemd) QueryStatus(ctx context.Context) (Status, error) {
	if _, err := os.Stat(s.unitPath()); os.IsNotExist(err) {
		return StatusNotInstalled, nil
	}
	out, err := exec.CommandContext(ctx, "systemctl", "is-active", s.unitName()).CombinedOutput()
	// is-active exits non-zero for any state but "active", so the output
	// matters more than the exit code.
	status := parseIsActive(string(out))
	if status == StatusUnknown && err != nil && len(out) == 0 {
		return StatusUnknown, fmt.Errorf("systemctl is-active %s: %w", s.unitName(), err)
	}
	return status, nil
}

func (s *Systemd) Logs(ctx context.Context, lines int, follow bool) (<-chan string, error) {
	if lines < 0 {
		lines = 0
	}
	args := []string{"-u", s.unitName(), "-n", strconv.Itoa(lines), "--no-pager", "-o", "cat"}
	if follow {
		args = append(args, "-f")
	}
	cmd := exec.CommandContext(ctx, "journalctl", args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("journalctl: %w", err)
	}

	ch := make(chan string)
	go func() {
		defer close(ch)
		scanner := util.NewLineScanner(stdout)
		for scanner.Scan() {
			select {
			case ch <- scanner.Text():
			case <-ctx.Done():
				// Cancellation kills journalctl via CommandContext; the
				// tunnel service itself is untouched.
			}
		}
		cmd.Wait()
	}()
	return ch, nil
}

func (s *Systemd) Uninstall(ctx context.Context) error {
	if _, err := os.Stat(s.unitPath()); os.IsNotExist(err) {
		return nil
	}
	if err := s.systemctl(ctx, "stop", s.unitName()); err != nil {
		logger.Warningf("systemctl stop %s: %v", s.unitName(), err)
	}
	if err := s.systemctl(ctx, "disable", s.unitName()); err != nil {
		logger.Warningf("systemctl disable %s: %v", s.unitName(), err)
	}
	if err := os.RemoveAll(s.dropinDir()); err != nil {
		return err
	}
	if err := os.Remove(s.unitPath()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return s.systemctl(ctx, "daemon-reload")
}

func (s *Systemd) syncMemoryDropin(memoryMB int) error {
	memFile := filepath.Join(s.dropinDir(), "memory.conf")
	if memoryMB > 0 {
		if err := os.MkdirAll(s.dropinDir(), 0o755); err != nil {
			return err
		}
		content := fmt.Sprintf("[Service]\nMemoryLimit=%dM\n", memoryMB)
		return os.WriteFile(memFile, []byte(content), 0o644)
	}
	if err := os.Remove(memFile); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *Systemd) systemctl(ctx context.Context, args ...string) error {
	out, err := exec.CommandContext(ctx, "systemctl", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("systemctl %s: %v: %s", strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return nil
}

// parseIsActive maps `systemctl is-active` output onto the status set the
// panel reports.
func parseIsActive(out string) Status {
	switch strings.TrimSpace(out) {
	case "active", "activating", "reloading":
		return StatusRunning
	case "inactive", "deactivating", "failed":
		return StatusStopped
	default:
		return StatusUnknown
	}
}

// renderUnit produces the unit file contents for a Definition. Arguments
// with whitespace are quoted the way systemd expects.
func renderUnit(def Definition) string {
	execStart := def.BinaryPath
	for _, arg := range def.Args {
		execStart += " " + quoteUnitArg(arg)
	}
	logFile := filepath.Join(def.LogDir, def.Name+".log")
	return fmt.Sprintf(`[Unit]
Description=%s tunnel service (managed by ptpanel)
After=network.target

[Service]
Type=simple
ExecStart=%s
Restart=on-failure
RestartSec=5
WorkingDirectory=%s
StandardOutput=append:%s
StandardError=append:%s

[Install]
WantedBy=multi-user.target
`, def.Name, execStart, def.WorkingDir, logFile, logFile)
}

func quoteUnitArg(arg string) string {
	if !strings.ContainsAny(arg, " \t\"\\") {
		return arg
	}
	escaped := strings.ReplaceAll(arg, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return `"` + escaped + `"`
}
