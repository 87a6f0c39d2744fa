package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"bakematrix/internal/config"
	"bakematrix/internal/engine"
	"bakematrix/internal/matrix"
)

var listFormat string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the configurations a bake would render",
	Long: `Print the configurations a bake with the same flags would render, in bake
order. Nothing is rendered.

Formats:
	text = one configuration label per line
	json = an array of {"label", "context"} objects, where context is the full
	       template context passed to the renderer

Examples:
	bakematrix list --template ./ccds
	bakematrix list --catalog ccds.json --python-version 3.12 --format json
	bakematrix list --template ./ccds -F
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().NFlag() == 0 {
			return cmd.Help()
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		cmd.SilenceUsage = true
		return runList(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, listFormat, newLogger(cfg.Runtime.Verbose))
	},
}

type listEntry struct {
	Label   string               `json:"label"`
	Context matrix.Configuration `json:"context"`
}

func runList(ctx context.Context, w, stderr io.Writer, cfg *config.Config, format string, logger zerolog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if format != "text" && format != "json" {
		return fmt.Errorf("unsupported --format: %s (must be one of: text, json)", format)
	}

	plan, err := engine.NewEngine(nil, logger).Plan(ctx, cfg)
	if err != nil {
		return err
	}

	if format == "json" {
		entries := make([]listEntry, 0, len(plan.Configs))
		for _, c := range plan.Configs {
			entries = append(entries, listEntry{Label: c.Label(), Context: c})
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	for _, c := range plan.Configs {
		fmt.Fprintln(w, c.Label())
	}
	fmt.Fprintf(stderr, "%d configurations (%s)\n", len(plan.Configs), plan.Level)
	return nil
}

func init() {
	rootCmd.AddCommand(listCmd)
	addMatrixFlags(listCmd, cfg)
	listCmd.Flags().StringVar(&listFormat, "format", "text", "Output format: text|json")
}
