package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ptpanel/ptpanel/model"
	"github.com/ptpanel/ptpanel/tui"
)

var (
	editRole    string
	editMode    string
	editAddress string
	editKey     string
	editExtra   []string
	editMemory  int
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Stage a new tunnel config (applied on the next start/restart)",
	Long: "Updates the tunnel config on disk. The running service is not\n" +
		"touched; run `ptpanel restart` to apply. Without flags an\n" +
		"interactive form is opened.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := newLifecycle()

		if cmd.Flags().NFlag() == 0 {
			return tui.RunEditForm(cmd.Context(), svc)
		}

		cfg := svc.CurrentConfig()
		if cfg == nil {
			cfg = model.Default()
			cfg.InstalledAt = ""
		}
		if cmd.Flags().Changed("role") {
			cfg.Role = model.Role(editRole)
		}
		if cmd.Flags().Changed("mode") {
			cfg.Mode = editMode
		}
		if cmd.Flags().Changed("address") {
			cfg.Address = editAddress
		}
		if cmd.Flags().Changed("key") {
			cfg.Key = editKey
		}
		if cmd.Flags().Changed("extra") {
			cfg.ExtraArgs = editExtra
		}
		if cmd.Flags().Changed("memory") {
			cfg.MemoryMB = editMemory
		}
		return svc.Edit(cmd.Context(), cfg)
	},
}

func init() {
	editCmd.Flags().StringVar(&editRole, "role", "", "tunnel role: server or client")
	editCmd.Flags().StringVar(&editMode, "mode", "", "operating mode: plain or obfuscated")
	editCmd.Flags().StringVar(&editAddress, "address", "", "bind address (server) or upstream target (client), host:port")
	editCmd.Flags().StringVar(&editKey, "key", "", "shared secret for tunnel authentication")
	editCmd.Flags().StringArrayVar(&editExtra, "extra", nil, "extra flag passed verbatim to the binary (repeatable)")
	editCmd.Flags().IntVar(&editMemory, "memory", 0, "systemd memory limit in MB (0 disables)")
	rootCmd.AddCommand(editCmd)
}
