package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"bakematrix/internal/config"
	"bakematrix/internal/flags"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

var cfg = config.New()

var rootCmd = &cobra.Command{
	Use:   "bakematrix",
	Short: "Bake a project template across its option matrix and check every result",
	Long: `bakematrix renders a cookiecutter-style project template once per valid
combination of its options and runs checks against each baked project.

Every configuration is baked into its own temporary directory, which is removed
afterwards whether the bake succeeded or not.

Examples:
	# Show available commands and global flags
	bakematrix --help

	# Print the configurations that would be baked
	bakematrix list --template ./ccds

	# Bake everything and run all checks
	bakematrix bake --template ./ccds

	# Bake a single configuration without checks
	bakematrix bake --template ./ccds -FFF

	# List checks
	bakematrix checks list

	# Print build info
	bakematrix version`,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&cfg.Runtime.Verbose, flags.FlagVerbose, false, "Enable verbose logging (renderer invocations, temp dirs, cleanup)")
}

// newLogger returns the diagnostic logger. It writes to stderr so stdout
// stays reserved for results.
func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}

	rootCmd.Version = fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
