package cmd

import (
	"context"

	"github.com/op/go-logging"
	"github.com/spf13/cobra"

	"github.com/ptpanel/ptpanel/config"
	"github.com/ptpanel/ptpanel/installer"
	"github.com/ptpanel/ptpanel/logger"
	"github.com/ptpanel/ptpanel/service"
	"github.com/ptpanel/ptpanel/store"
	"github.com/ptpanel/ptpanel/supervisor"
	"github.com/ptpanel/ptpanel/telegram"
	"github.com/ptpanel/ptpanel/tui"
)

var rootCmd = &cobra.Command{
	Use:   "ptpanel",
	Short: "Install and manage the pingtunnel UDP-over-ICMP tunnel service",
	Long: "ptpanel manages the lifecycle of the third-party pingtunnel binary:\n" +
		"it installs it as a supervised service, edits its config and drives\n" +
		"start/stop/status/logs. Run without arguments for the interactive panel.",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLog()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return tui.Run(cmd.Context(), newLifecycle())
	},
}

// Execute runs the root command under ctx so interrupts propagate into
// long-running operations like `logs -f`.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// newLifecycle wires the controller with the real collaborators. Every
// command builds a fresh one; no state survives between invocations.
func newLifecycle() *service.LifecycleService {
	opts := service.Options{
		ServiceName: config.GetServiceName(),
		InstallDir:  config.GetInstallDir(),
		BinDir:      config.GetBinDir(),
		LogDir:      config.GetLogDir(),
	}
	st := store.NewFileStore(config.GetConfigPath())
	sup := supervisor.New(opts.ServiceName, opts.InstallDir, opts.LogDir)
	inst := installer.NewGithubInstaller()
	notifier := telegram.LoadNotifier(config.GetNotifyConfigPath())
	return service.NewLifecycleService(st, sup, inst, notifier, opts)
}

func initLog() {
	switch config.GetLogLevel() {
	case config.Debug:
		logger.InitLogger(logging.DEBUG)
	case config.Info:
		logger.InitLogger(logging.INFO)
	case config.Warn:
		logger.InitLogger(logging.WARNING)
	case config.Error:
		logger.InitLogger(logging.ERROR)
	default:
		logger.InitLogger(logging.INFO)
	}
}
