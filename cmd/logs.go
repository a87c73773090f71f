package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	logLines  int
	logFollow bool
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show recent tunnel service logs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// cmd.Context() is the interrupt-aware context from main, so ^C
		// during --follow detaches cleanly without touching the service.
		ch, err := newLifecycle().Logs(cmd.Context(), logLines, logFollow)
		if err != nil {
			return err
		}
		for line := range ch {
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	logsCmd.Flags().IntVarP(&logLines, "lines", "n", 200, "number of recent lines to show")
	logsCmd.Flags().BoolVarP(&logFollow, "follow", "f", false, "keep streaming new lines until interrupted")
	rootCmd.AddCommand(logsCmd)
}
