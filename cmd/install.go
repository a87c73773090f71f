package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ptpanel/ptpanel/config"
	"github.com/ptpanel/ptpanel/installer"
)

var installVersion string

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Download the pingtunnel binary and register the service",
	Long: "Fetches the prebuilt tunnel binary for this architecture, writes a\n" +
		"default config if none exists and registers the supervised service.\n" +
		"The service is left stopped; review the config and run `ptpanel start`.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return newLifecycle().Install(cmd.Context(), installVersion)
	},
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Re-download the tunnel binary, preserving the run state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return newLifecycle().Update(cmd.Context(), installVersion)
	},
}

var uninstallYes bool

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Stop the service and remove binary, service definition and config",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		confirmed := uninstallYes
		if !confirmed {
			fmt.Print("This removes the service, binary, config and logs. Are you sure? (yes/no): ")
			reader := bufio.NewReader(os.Stdin)
			answer, err := reader.ReadString('\n')
			if err == nil && strings.TrimSpace(strings.ToLower(answer)) == "yes" {
				confirmed = true
			}
		}
		return newLifecycle().Uninstall(cmd.Context(), confirmed)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the panel version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s %s\n", config.GetName(), config.GetVersion())
	},
}

func init() {
	installCmd.Flags().StringVar(&installVersion, "binary-version", installer.DefaultVersion, "pingtunnel release to fetch")
	updateCmd.Flags().StringVar(&installVersion, "binary-version", installer.DefaultVersion, "pingtunnel release to fetch")
	uninstallCmd.Flags().BoolVarP(&uninstallYes, "yes", "y", false, "confirm the uninstall without prompting")
	rootCmd.AddCommand(installCmd, updateCmd, uninstallCmd, versionCmd)
}
