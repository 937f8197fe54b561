package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is overridable at build time with -ldflags.
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the idsync version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("idsync %s\n", Version)
	},
}
