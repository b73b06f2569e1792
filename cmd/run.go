package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-satatarget/pkg/app/run"
)

var (
	runTimeout   time.Duration
	runKeepGoing bool
)

var runCmd = &cobra.Command{
	Use:   "run [script]",
	Short: "Replay a command script against a device",
	Long: `Create a device and replay a script of map, unmap, read, write, identify,
write_cache and stats steps against it. Scripts are JSON with comments and
trailing commas allowed. A step may name the error kind it is expected to
fail with in "expect_error".

Examples:
  # Replay a script on a 16MB device
  satatarget run smoke.hujson --capacity 16MB

  # Report failures instead of stopping with an error
  satatarget run smoke.hujson --keep-going -o yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := newContext(cmd)
		response, err := run.Handle(ctx, &run.Request{
			Config:     cfg,
			ScriptPath: args[0],
			Timeout:    runTimeout,
			KeepGoing:  runKeepGoing,
		})
		if err != nil {
			return err
		}
		ctx.Log(run.FormatSummary(response))
		if err := run.FormatOutput(ctx.Out, response, ctx.OutputFormat); err != nil {
			return err
		}
		if response.Failed != "" {
			return fmt.Errorf("script %s failed: %s", response.Script, response.Failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "abort the replay after this long (default 30s)")
	runCmd.Flags().BoolVar(&runKeepGoing, "keep-going", false, "report a failed step instead of aborting")
}
