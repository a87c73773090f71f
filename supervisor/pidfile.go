package supervisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/ptpanel/ptpanel/logger"
)

// Pidfile is the fallback supervisor for hosts without systemd (minimal
// containers). It launches the binary detached, tracks it through a
// pidfile and appends its output to a log file.
type Pidfile struct {
	name     string
	stateDir string
	logDir   string
}

// launchState is the persisted equivalent of a unit file: what to run,
// written at install/edit time and read back on start.
type launchState struct {
	BinaryPath string   `json:"binary_path"`
	Args       []string `json:"args"`
	WorkingDir string   `json:"working_dir"`
}

func NewPidfile(name string, stateDir string, logDir string) *Pidfile {
	return &Pidfile{name: name, stateDir: stateDir, logDir: logDir}
}

func (p *Pidfile) pidPath() string {
	return filepath.Join(p.stateDir, p.name+".pid")
}

func (p *Pidfile) statePath() string {
	return filepath.Join(p.stateDir, p.name+".launch.json")
}

func (p *Pidfile) logPath() string {
	return filepath.Join(p.logDir, p.name+".log")
}

func (p *Pidfile) Install(ctx context.Context, def Definition) error {
	if err := os.MkdirAll(p.stateDir, 0o755); err != nil {
		return err
	}
	state := launchState{
		BinaryPath: def.BinaryPath,
		Args:       def.Args,
		WorkingDir: def.WorkingDir,
	}
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return os.WriteFile(p.statePath(), data, 0o600)
}

func (p *Pidfile) Start(ctx context.Context) error {
	if pid, ok := p.livePid(); ok {
		logger.Debugf("%s already running with pid %d", p.name, pid)
		return nil
	}
	state, err := p.readState()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(p.logDir, 0o755); err != nil {
		return err
	}
	logFile, err := os.OpenFile(p.logPath(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer logFile.Close()

	cmd := exec.Command(state.BinaryPath, state.Args...)
	cmd.Dir = state.WorkingDir
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	// Own process group so the tunnel survives this short-lived CLI.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", state.BinaryPath, err)
	}
	pid := cmd.Process.Pid
	if err := os.WriteFile(p.pidPath(), []byte(strconv.Itoa(pid)), 0o644); err != nil {
		return err
	}
	// Detach; the process is tracked through the pidfile from here on.
	go cmd.Wait()
	logger.Infof("%s started with pid %d", p.name, pid)
	return nil
}

func (p *Pidfile) Stop(ctx context.Context) error {
	pid, ok := p.livePid()
	if !ok {
		p.clearPidfile()
		return nil
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal pid %d: %w", pid, err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if alive, _ := process.PidExists(int32(pid)); !alive {
			p.clearPidfile()
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
	logger.Warningf("pid %d did not exit after SIGTERM, sending SIGKILL", pid)
	if err := proc.Kill(); err != nil {
		return err
	}
	p.clearPidfile()
	return nil
}

func (p *Pidfile) QueryStatus(ctx context.Context) (Status, error) {
	if _, err := os.Stat(p.statePath()); os.IsNotExist(err) {
		return StatusNotInstalled, nil
	}
	if _, ok := p.livePid(); ok {
		return StatusRunning, nil
	}
	return StatusStopped, nil
}

func (p *Pidfile) Logs(ctx context.Context, lines int, follow bool) (<-chan string, error) {
	if lines < 0 {
		lines = 0
	}
	f, err := os.Open(p.logPath())
	if err != nil {
		if os.IsNotExist(err) {
			ch := make(chan string)
			close(ch)
			return ch, nil
		}
		return nil, err
	}

	ch := make(chan string)
	go func() {
		defer close(ch)
		defer f.Close()

		var offset int64
		tail, err := readCompleteLines(f, &offset)
		if err != nil {
			logger.Warningf("read log %s: %v", p.logPath(), err)
			return
		}
		if len(tail) > lines {
			tail = tail[len(tail)-lines:]
		}
		for _, line := range tail {
			select {
			case ch <- line:
			case <-ctx.Done():
				return
			}
		}
		if !follow {
			return
		}
		// Poll for appended lines until cancelled.
		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			fresh, err := readCompleteLines(f, &offset)
			if err != nil {
				logger.Warningf("read log %s: %v", p.logPath(), err)
				return
			}
			for _, line := range fresh {
				select {
				case ch <- line:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}

// readCompleteLines returns the newline-terminated lines appended since
// *offset and advances it past the last newline. A line still being
// written is held back until its newline lands, never delivered split.
func readCompleteLines(f *os.File, offset *int64) ([]string, error) {
	if _, err := f.Seek(*offset, io.SeekStart); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	last := bytes.LastIndexByte(data, '\n')
	if last < 0 {
		return nil, nil
	}
	*offset += int64(last) + 1
	return strings.Split(string(data[:last]), "\n"), nil
}

func (p *Pidfile) Uninstall(ctx context.Context) error {
	if err := p.Stop(ctx); err != nil {
		logger.Warningf("stop during uninstall: %v", err)
	}
	for _, path := range []string{p.statePath(), p.pidPath()} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

func (p *Pidfile) readState() (*launchState, error) {
	data, err := os.ReadFile(p.statePath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("service %s is not installed", p.name)
		}
		return nil, err
	}
	var state launchState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse %s: %w", p.statePath(), err)
	}
	return &state, nil
}

func (p *Pidfile) livePid() (int, bool) {
	data, err := os.ReadFile(p.pidPath())
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	alive, err := process.PidExists(int32(pid))
	if err != nil || !alive {
		return 0, false
	}
	return pid, true
}

func (p *Pidfile) clearPidfile() {
	if err := os.Remove(p.pidPath()); err != nil && !os.IsNotExist(err) {
		logger.Warningf("remove pidfile: %v", err)
	}
}
