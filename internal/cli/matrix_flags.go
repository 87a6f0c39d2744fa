package cli

import (
	"github.com/spf13/cobra"

	"bakematrix/internal/config"
	"bakematrix/internal/flags"
)

// addMatrixFlags registers the flags that decide which configurations exist.
// Both list and bake use them so a list always previews the exact bake.
func addMatrixFlags(cmd *cobra.Command, cfg *config.Config) {
	// Template
	cmd.Flags().StringVar(&cfg.Template.Root, flags.FlagTemplate, "", "Template source directory passed to the renderer")
	cmd.Flags().StringVar(&cfg.Template.Catalog, flags.FlagCatalog, "", "Option catalog (JSON or YAML). Default: ccds.json or cookiecutter.json under --template")

	// Matrix
	cmd.Flags().CountVarP(&cfg.Matrix.Fast, flags.FlagFast, flags.FlagFastShort, "Speed up the run (repeatable): -F one config with checks, -FF all configs without checks, -FFF one config without checks")
	cmd.Flags().StringVar(&cfg.Matrix.PythonVersion, flags.FlagPythonVersion, "", "python_version_number as major.minor (default: detected from --python)")
	cmd.Flags().StringVar(&cfg.Matrix.Interpreter, flags.FlagInterpreter, cfg.Matrix.Interpreter, "Python interpreter used to detect the version")
}
