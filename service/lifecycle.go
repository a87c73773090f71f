package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ptpanel/ptpanel/installer"
	"github.com/ptpanel/ptpanel/logger"
	"github.com/ptpanel/ptpanel/model"
	"github.com/ptpanel/ptpanel/store"
	"github.com/ptpanel/ptpanel/supervisor"
)

// Notifier receives lifecycle event messages. The telegram notifier
// satisfies it; tests inject a fake.
type Notifier interface {
	Notify(ctx context.Context, text string)
}

// Options carries the filesystem layout the controller manages.
type Options struct {
	ServiceName string
	InstallDir  string
	BinDir      string
	LogDir      string
}

// LifecycleService is the controller behind every panel command. Each
// command runs against live supervisor state and the on-disk config;
// nothing is cached between invocations, since the panel is re-invoked
// as a fresh process per command.
type LifecycleService struct {
	store     store.Store
	sup       supervisor.Supervisor
	installer installer.BinaryInstaller
	notifier  Notifier
	opts      Options

	// settleDelay is how long a freshly started service gets before the
	// status read-back, so a binary that exits immediately after a
	// transient "started" acknowledgment is caught. Tests shorten it.
	settleDelay time.Duration
}

func NewLifecycleService(st store.Store, sup supervisor.Supervisor, inst installer.BinaryInstaller, notifier Notifier, opts Options) *LifecycleService {
	return &LifecycleService{
		store:       st,
		sup:         sup,
		installer:   inst,
		notifier:    notifier,
		opts:        opts,
		settleDelay: time.Second,
	}
}

// Install brings the machine from NOT_INSTALLED to STOPPED: fetch the
// binary, keep or create the config, write the service definition. It
// deliberately does not start the service.
func (s *LifecycleService) Install(ctx context.Context, version string) error {
	binPath, err := s.installer.FetchAndPlaceBinary(ctx, version, s.opts.BinDir)
	if err != nil {
		return fmt.Errorf("fetch binary: %w", err)
	}

	cfg, err := s.store.Read()
	if errors.Is(err, store.ErrNotFound) {
		cfg = model.Default()
		if err := s.store.WriteAtomic(cfg); err != nil {
			return err
		}
		logger.Infof("default config written to %s", s.opts.InstallDir)
	} else if err != nil {
		return err
	}

	if err := s.sup.Install(ctx, s.definition(cfg, binPath)); err != nil {
		return supErr("install", err)
	}
	s.notify(ctx, "pingtunnel installed")
	return nil
}

// Start brings the service to RUNNING using the current on-disk config.
// The supervisor's exit code is not trusted alone: status is read back
// after a settle delay, and any failure leaves the prior state intact.
func (s *LifecycleService) Start(ctx context.Context) error {
	cfg, err := s.store.Read()
	if errors.Is(err, store.ErrNotFound) {
		return ErrConfigMissing
	}
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}

	status, err := s.sup.QueryStatus(ctx)
	if err != nil {
		return supErr("status query", err)
	}
	if status == supervisor.StatusRunning {
		logger.Info("service is already running")
		return nil
	}

	// The service definition is derived from the config, so re-sync it
	// before starting: start always uses the current on-disk config.
	if err := s.syncDefinition(ctx, cfg); err != nil {
		return err
	}

	if err := s.sup.Start(ctx); err != nil {
		return supErr("start", err)
	}

	if err := s.waitForStatus(ctx, supervisor.StatusRunning, true); err != nil {
		s.notify(ctx, "pingtunnel failed to start")
		return err
	}
	logger.Info("service started")
	s.notify(ctx, "pingtunnel started")
	return nil
}

// Stop is idempotent: already STOPPED or NOT_INSTALLED is success.
func (s *LifecycleService) Stop(ctx context.Context) error {
	status, err := s.sup.QueryStatus(ctx)
	if err != nil {
		return supErr("status query", err)
	}
	if status == supervisor.StatusStopped || status == supervisor.StatusNotInstalled {
		logger.Info("service is not running")
		return nil
	}

	if err := s.sup.Stop(ctx); err != nil {
		return supErr("stop", err)
	}
	if err := s.waitForStatus(ctx, supervisor.StatusStopped, false); err != nil {
		return err
	}
	logger.Info("service stopped")
	s.notify(ctx, "pingtunnel stopped")
	return nil
}

// Restart is stop followed by start. A stop failure aborts: start is
// never attempted against an indeterminate process state.
func (s *LifecycleService) Restart(ctx context.Context) error {
	if err := s.Stop(ctx); err != nil {
		return fmt.Errorf("restart aborted: %w", err)
	}
	return s.Start(ctx)
}

// Status reports the observed state. A failing supervisor query yields
// UNKNOWN, never an error.
func (s *LifecycleService) Status(ctx context.Context) supervisor.Status {
	status, err := s.sup.QueryStatus(ctx)
	if err != nil {
		logger.Warningf("status query: %v", err)
		return supervisor.StatusUnknown
	}
	return status
}

// Logs passes through the supervisor's lazy log stream.
func (s *LifecycleService) Logs(ctx context.Context, lines int, follow bool) (<-chan string, error) {
	ch, err := s.sup.Logs(ctx, lines, follow)
	if err != nil {
		return nil, supErr("logs", err)
	}
	return ch, nil
}

// Edit validates and atomically writes cfg, then re-syncs the service
// definition so the staged config applies on the next start/restart. The
// running service is deliberately not touched.
func (s *LifecycleService) Edit(ctx context.Context, cfg *model.TunnelConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}

	if prev, err := s.store.Read(); err == nil && cfg.InstalledAt == "" {
		cfg.InstalledAt = prev.InstalledAt
	}
	if cfg.InstalledAt == "" {
		cfg.InstalledAt = time.Now().Format("2006-01-02 15:04:05")
	}
	if err := s.store.WriteAtomic(cfg); err != nil {
		return err
	}

	status, err := s.sup.QueryStatus(ctx)
	if err != nil {
		return supErr("status query", err)
	}
	if status != supervisor.StatusNotInstalled {
		if err := s.syncDefinition(ctx, cfg); err != nil {
			return err
		}
	}
	if status == supervisor.StatusRunning {
		logger.Info("config saved; run `ptpanel restart` to apply it to the running service")
	} else {
		logger.Info("config saved")
	}
	return nil
}

// Update re-fetches the tunnel binary and restores the prior run state.
func (s *LifecycleService) Update(ctx context.Context, version string) error {
	status, err := s.sup.QueryStatus(ctx)
	if err != nil {
		return supErr("status query", err)
	}
	if status == supervisor.StatusNotInstalled {
		return ErrNotInstalled
	}

	wasRunning := status == supervisor.StatusRunning
	if wasRunning {
		if err := s.Stop(ctx); err != nil {
			return err
		}
	}

	binPath, err := s.installer.FetchAndPlaceBinary(ctx, version, s.opts.BinDir)
	if err != nil {
		return fmt.Errorf("fetch binary: %w", err)
	}
	if cfg, err := s.store.Read(); err == nil {
		if err := s.sup.Install(ctx, s.definition(cfg, binPath)); err != nil {
			return supErr("definition update", err)
		}
	}

	if wasRunning {
		if err := s.Start(ctx); err != nil {
			return err
		}
	}
	s.notify(ctx, "pingtunnel binary updated")
	return nil
}

// Uninstall tears everything down: service definition, binaries, config
// and logs. It refuses to run unconfirmed and is a no-op when nothing is
// installed.
func (s *LifecycleService) Uninstall(ctx context.Context, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}

	status, err := s.sup.QueryStatus(ctx)
	if err != nil {
		logger.Warningf("status query during uninstall: %v", err)
	}
	if status == supervisor.StatusNotInstalled && !s.store.Exists() {
		logger.Info("nothing to uninstall")
		return nil
	}

	if status == supervisor.StatusRunning {
		if err := s.sup.Stop(ctx); err != nil {
			logger.Warningf("stop during uninstall: %v", err)
		}
	}
	if err := s.sup.Uninstall(ctx); err != nil {
		return supErr("uninstall", err)
	}
	if err := s.store.Delete(); err != nil {
		return err
	}
	for _, dir := range []string{s.opts.InstallDir, s.opts.LogDir} {
		if dir == "" {
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			logger.Warningf("remove %s: %v", dir, err)
		}
	}
	logger.Info("uninstall finished")
	s.notify(ctx, "pingtunnel uninstalled")
	return nil
}

// CurrentConfig returns the on-disk config, or nil when none exists.
func (s *LifecycleService) CurrentConfig() *model.TunnelConfig {
	cfg, err := s.store.Read()
	if err != nil {
		return nil
	}
	return cfg
}

// syncDefinition rewrites the service definition from cfg. A missing
// binary is not fatal here: the supervisor keeps whatever definition it
// has and start/status surface the real problem.
func (s *LifecycleService) syncDefinition(ctx context.Context, cfg *model.TunnelConfig) error {
	binPath, err := installer.FindBinary(s.opts.BinDir)
	if err != nil {
		logger.Warningf("tunnel binary not found under %s: %v", s.opts.BinDir, err)
		return nil
	}
	if err := s.sup.Install(ctx, s.definition(cfg, binPath)); err != nil {
		return supErr("definition update", err)
	}
	return nil
}

func (s *LifecycleService) definition(cfg *model.TunnelConfig, binPath string) supervisor.Definition {
	return supervisor.Definition{
		Name:       s.opts.ServiceName,
		BinaryPath: binPath,
		Args:       cfg.BuildArgs(),
		WorkingDir: s.opts.InstallDir,
		LogDir:     s.opts.LogDir,
		MemoryMB:   cfg.MemoryMB,
	}
}

// waitForStatus polls the supervisor until it observes want. With
// requireStable the whole settle window must pass and the final
// observation decides, so a process that exits right after a "started"
// acknowledgment is caught.
func (s *LifecycleService) waitForStatus(ctx context.Context, want supervisor.Status, requireStable bool) error {
	deadline := time.Now().Add(s.settleDelay)
	for {
		status, err := s.sup.QueryStatus(ctx)
		if err != nil {
			return supErr("status read-back", err)
		}
		if !requireStable && status == want {
			return nil
		}
		if !time.Now().Before(deadline) {
			if status == want {
				return nil
			}
			return supErr("status read-back", fmt.Errorf("expected %s but service is %s", want, status))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
}

func (s *LifecycleService) notify(ctx context.Context, text string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, text)
}
