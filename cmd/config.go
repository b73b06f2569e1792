package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-satatarget/internal/config"
	"github.com/deploymenttheory/go-satatarget/pkg/app"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or initialize the configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings := vcfg.AllSettings()
		return app.Render(cmd.OutOrStdout(), outputFormat, settings, func(w io.Writer) error {
			fmt.Fprintf(w, "KEY\tVALUE\n")
			fmt.Fprintf(w, "---\t-----\n")
			for _, key := range config.Keys() {
				fmt.Fprintf(w, "%s\t%v\n", key, vcfg.Get(key))
			}
			if used := vcfg.ConfigFileUsed(); used != "" {
				fmt.Fprintf(w, "\nConfig file\t%s\n", used)
			}
			return nil
		})
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the effective configuration to a new file",
	Long: `Write the effective configuration to path (default satatarget.yaml).
An existing file is never overwritten.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "satatarget.yaml"
		if len(args) == 1 {
			path = args[0]
		}
		if err := vcfg.SafeWriteConfigAs(path); err != nil {
			return app.NewError(app.ErrCodeOutput, "write config", err)
		}
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configInitCmd)
}
