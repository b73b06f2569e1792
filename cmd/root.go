package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/deploymenttheory/go-satatarget/internal/config"
	"github.com/deploymenttheory/go-satatarget/internal/identity"
	"github.com/deploymenttheory/go-satatarget/internal/logging"
	"github.com/deploymenttheory/go-satatarget/internal/types"
	"github.com/deploymenttheory/go-satatarget/pkg/app"
)

var (
	// Global output flags
	verbose      bool
	quiet        bool
	outputFormat string
	cfgFile      string

	// Loaded by the root command before any subcommand runs
	cfg  *config.Config
	vcfg *viper.Viper
)

var rootCmd = &cobra.Command{
	Use:   "satatarget",
	Short: "Memory-backed SATA target disk",
	Long: `satatarget emulates a SATA disk whose contents live entirely in host
memory. The backing store is allocated up front in large physically
contiguous chunks and indexed by sector, so every command can be turned
into a page-granular scatter-gather list.

Commands:
  info        Create a device and report its layout and identity
  identify    Dump the IDENTIFY DEVICE block
  run         Replay a command script against a device
  config      Show or initialize the configuration`,
	Version:       "0.1.0-dev",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := app.ValidateFormat(outputFormat); err != nil {
			return err
		}
		var err error
		cfg, vcfg, err = config.Load(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		return configureLogging(cfg)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(app.ExitCode(err))
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./satatarget.yaml, $HOME/.satatarget/satatarget.yaml)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	pf.BoolVarP(&quiet, "quiet", "q", false, "suppress output except errors")
	pf.StringVarP(&outputFormat, "output", "o", app.FormatTable, "output format (table, json, yaml)")

	// Device flags, bound to configuration keys by config.Load
	pf.String("capacity", "64MB", "device capacity (e.g. 64MB, 1GiB, 2048S)")
	pf.Int("queue-depth", types.DefaultQueueDepth, "number of command slots (1-32)")
	pf.Int("max-segments", 128, "scatter-gather segments per command")
	pf.Int("max-order", types.DefaultMaxOrder, "largest backing chunk order tried first")
	pf.Uint64("reserve-mb", types.DefaultReserveMB, "system memory kept free, in MB")
	pf.String("allocator", config.AllocatorHeap, "page allocator (heap, mmap)")
	pf.Bool("write-cache", true, "report the write cache as enabled")
	pf.String("serial", identity.DefaultSerial, "IDENTIFY serial number")
	pf.String("firmware", identity.DefaultFirmware, "IDENTIFY firmware revision")
	pf.String("model", identity.DefaultModel, "IDENTIFY model string")
	pf.String("log-level", "warn", "log level (debug, info, warn, error)")
	pf.String("log-format", "text", "log format (text, json)")

	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

func configureLogging(c *config.Config) error {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return types.NewError(types.KindConfiguration, "cli.logging", err)
	}
	format, err := logging.ParseFormat(c.LogFormat)
	if err != nil {
		return types.NewError(types.KindConfiguration, "cli.logging", err)
	}
	logging.SetLevel(level)
	logging.Configure(os.Stderr, format)
	logging.Debug(logging.ComponentCLI, "configuration loaded", "file", vcfg.ConfigFileUsed())
	return nil
}

// newContext creates the application context from the global flags
func newContext(cmd *cobra.Command) *app.Context {
	ctx := app.NewContext()
	if c := cmd.Context(); c != nil {
		ctx.Context = c
	}
	ctx.OutputFormat = outputFormat
	ctx.Verbose = verbose
	ctx.Quiet = quiet
	ctx.Out = cmd.OutOrStdout()
	ctx.ErrOut = cmd.ErrOrStderr()
	if verbose {
		ctx.SetProgress(func(message string, percent int) {
			fmt.Fprintf(ctx.ErrOut, "[%3d%%] %s\n", percent, message)
		})
	}
	return ctx
}
