package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fastertools/modelschemas/internal/config"
)

var (
	// Version information
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"

	// Configuration
	cfgFile string
	verbose bool
	noColor bool

	// Colors
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
	warnColor    = color.New(color.FgYellow)
	debugColor   = color.New(color.FgMagenta)

	// Status messages go to stderr so that generated documents can be piped.
	// Tests redirect it.
	colorOutput io.Writer = os.Stderr
)

// newRootCmd builds the command tree
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modelschemas",
		Short: "Aggregate JSON Schema models into an API components registry",
		Long: `modelschemas collects the JSON Schema documents of your models into one
flat registry ready for the components.schemas section of an OpenAPI
document.

Every model's definitions are published next to the model itself, and
references are rewritten to point into the registry:

  #/definitions/Address  ->  #/components/schemas/Address
  {{model: User}}        ->  #/components/schemas/User`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: initConfig,
		Version:           versionString(),
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.modelschemas.yaml)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	// Bind flags to viper
	_ = viper.BindPFlag(config.KeyVerbose, cmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag(config.KeyNoColor, cmd.PersistentFlags().Lookup("no-color"))

	// Add commands
	cmd.AddCommand(
		newAggregateCmd(),
		newRewriteCmd(),
		newInitCmd(),
		newManifestSchemaCmd(),
	)

	return cmd
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	cmd := newRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		Error("%v", err)
		return err
	}
	return nil
}

// SetVersion sets the version information
func SetVersion(v, c, b string) {
	version = v
	commit = c
	buildDate = b
}

func versionString() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate)
}

// initConfig reads in config file and ENV variables if set
func initConfig(cmd *cobra.Command, args []string) error {
	used, err := config.Init(viper.GetViper(), cfgFile)
	if err != nil {
		return err
	}

	if viper.GetBool(config.KeyNoColor) {
		color.NoColor = true
	}
	if used != "" {
		Debug("Using config file: %s", used)
	}
	return nil
}

// bindFlags binds the named flags of the running command to viper keys of
// the same name. Commands bind at run time because several commands share
// keys.
func bindFlags(cmd *cobra.Command, keys ...string) error {
	for _, key := range keys {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(key)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", key, err)
		}
	}
	return nil
}

// Helper functions for consistent output

// Success prints a success message
func Success(format string, args ...interface{}) {
	_, _ = fmt.Fprintln(colorOutput, successColor.Sprintf("✓ "+format, args...))
}

// Error prints an error message
func Error(format string, args ...interface{}) {
	_, _ = fmt.Fprintln(colorOutput, errorColor.Sprintf("✗ "+format, args...))
}

// Info prints an info message
func Info(format string, args ...interface{}) {
	_, _ = fmt.Fprintln(colorOutput, infoColor.Sprintf("ℹ "+format, args...))
}

// Warn prints a warning message
func Warn(format string, args ...interface{}) {
	_, _ = fmt.Fprintln(colorOutput, warnColor.Sprintf("⚠ "+format, args...))
}

// Debug prints a debug message if verbose mode is enabled
func Debug(format string, args ...interface{}) {
	if IsVerbose() {
		_, _ = fmt.Fprintln(colorOutput, debugColor.Sprintf("» "+format, args...))
	}
}

// IsVerbose returns true if verbose mode is enabled
func IsVerbose() bool {
	return viper.GetBool(config.KeyVerbose)
}
