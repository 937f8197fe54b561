package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vdakb/docker-sub018/internal/descriptor"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Validate mapping descriptor files",
	Long:  `Parses each given descriptor document and reports configuration errors with their source position.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	failed := 0
	for _, path := range args {
		fmt.Printf("Checking %s... ", path)
		if _, err := descriptor.Load(path); err != nil {
			fmt.Println("FAILED")
			fmt.Printf("  %v\n", err)
			failed++
			continue
		}
		fmt.Println("OK")
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d descriptor(s) invalid", failed, len(args))
	}
	return nil
}
