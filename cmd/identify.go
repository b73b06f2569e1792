package cmd

import (
	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-satatarget/pkg/app/identify"
)

var identifyOut string

var identifyCmd = &cobra.Command{
	Use:   "identify",
	Short: "Dump the IDENTIFY DEVICE block",
	Long: `Build the 512-byte IDENTIFY DEVICE block the configured device reports
and print it decoded, followed by a hex dump.

Examples:
  # Show the block for a 1GB device with write cache off
  satatarget identify --capacity 1GB --write-cache=false

  # Save the raw block for comparison with a real drive
  satatarget identify --out identify.bin`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := newContext(cmd)
		response, err := identify.Handle(ctx, &identify.Request{Config: cfg, OutPath: identifyOut})
		if err != nil {
			return err
		}
		return identify.FormatOutput(ctx.Out, response, ctx.OutputFormat)
	},
}

func init() {
	rootCmd.AddCommand(identifyCmd)
	identifyCmd.Flags().StringVar(&identifyOut, "out", "", "write the raw block to this file")
}
