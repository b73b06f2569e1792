package cmd

import (
	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-satatarget/pkg/app/info"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Create a device and report its layout and identity",
	Long: `Allocate a device with the configured capacity, read back its IDENTIFY
data and report how the backing store was assembled.

Examples:
  # Report on a 256MB device
  satatarget info --capacity 256MB

  # Use anonymous mappings instead of the Go heap, JSON output
  satatarget info --allocator mmap -o json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := newContext(cmd)
		response, err := info.Handle(ctx, &info.Request{Config: cfg, Owner: "info"})
		if err != nil {
			return err
		}
		return info.FormatOutput(ctx.Out, response, ctx.OutputFormat)
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
