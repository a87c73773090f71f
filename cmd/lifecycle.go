package cmd

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/ptpanel/ptpanel/config"
	"github.com/ptpanel/ptpanel/supervisor"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the tunnel service with the current config",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return newLifecycle().Start(cmd.Context())
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the tunnel service (no-op when not running)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return newLifecycle().Stop(cmd.Context())
	},
}

var restartCmd = &cobra.Command{
	Use:   "restart",
	Short: "Restart the tunnel service, applying any staged config",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return newLifecycle().Restart(cmd.Context())
	},
}

var statusQuiet bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the observed state of the tunnel service",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := newLifecycle()
		status := svc.Status(cmd.Context())
		if statusQuiet {
			fmt.Println(status)
			return nil
		}

		row := []string{config.GetServiceName(), string(status), "-", "-", "-"}
		if cfg := svc.CurrentConfig(); cfg != nil {
			mode := cfg.Mode
			if mode == "" {
				mode = "plain"
			}
			row = []string{config.GetServiceName(), string(status), string(cfg.Role), mode, cfg.Address}
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Service", "State", "Role", "Mode", "Address"})
		table.Append(row)
		table.Render()

		if status == supervisor.StatusNotInstalled {
			fmt.Println("run `ptpanel install` to set up the service")
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVarP(&statusQuiet, "quiet", "q", false, "print only the state")
	rootCmd.AddCommand(startCmd, stopCmd, restartCmd, statusCmd)
}
