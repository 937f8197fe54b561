package cli

import (
	"github.com/spf13/cobra"

	"github.com/vdakb/docker-sub018/internal/logging"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "idsync",
	Short: "Identity connector attribute mapping toolkit",
	Long: `Idsync works with the XML mapping descriptors that drive identity
provisioning and reconciliation: it validates them, shows the resulting
attribute mapping, and inspects the stores they are published to.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(logLevel)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(versionCmd)
}
