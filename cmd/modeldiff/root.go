package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/artpar/modeldiff/adapters/clock"
	"github.com/artpar/modeldiff/adapters/idgen"
	"github.com/artpar/modeldiff/config"
	"github.com/artpar/modeldiff/core/formatter"
	"github.com/artpar/modeldiff/core/registry"
	"github.com/artpar/modeldiff/core/schema"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile      string
	schemaPaths  []string
	outputFormat string

	// Set up by loadConfig before any command runs
	cfg    *config.Config
	logger = zerolog.Nop()
)

// errDiffers signals a non-empty diff under --exit-code.
var errDiffers = errors.New("documents differ")

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "modeldiff",
	Short: "Schema-driven diffs of JSON and YAML documents",
	Long: `modeldiff compares two documents of a declared schema and prints
the minimal edit script between them.

Records are matched by primary key, so reordering a list is not a change
and removed elements are reported as deletes.

Quick start:
  modeldiff validate                          # Check schema files
  modeldiff diff Order old.json new.json      # Print the edit script
  modeldiff watch Order old.yaml new.yaml     # Re-diff on every save`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, errDiffers) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "modeldiff.yaml", "config file path")
	rootCmd.PersistentFlags().StringSliceVarP(&schemaPaths, "schemas", "s", nil, "schema files or directories (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "", "output format: table, json or yaml (overrides config)")
}

// loadConfig loads configuration and applies flag overrides.
func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.LoadWithFallback(cfgFile)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("schemas") {
		c.Schemas.Paths = schemaPaths
	}
	if outputFormat != "" {
		c.Output.Format = outputFormat
	}

	cfg = c
	logger = config.NewLogger(c.Logging, os.Stderr)
	return nil
}

// loadRegistry parses and compiles the configured schema paths.
func loadRegistry() (*registry.Registry, int, error) {
	defs, err := schema.ParsePaths(cfg.Schemas.Paths)
	if err != nil {
		return nil, 0, err
	}

	reg := registry.New(
		registry.WithLogger(logger),
		registry.WithClock(clock.UTC{}),
		registry.WithIDSource(idgen.UUID{}),
	)
	if err := reg.Compile(defs); err != nil {
		return nil, 0, err
	}
	return reg, len(defs), nil
}

// outputFormatter resolves the configured formatter.
func outputFormatter() (formatter.Formatter, formatter.FormatOptions, error) {
	f, ok := formatter.Get(cfg.Output.Format)
	if !ok {
		return nil, formatter.FormatOptions{}, fmt.Errorf("unknown output format %q (available: %v)", cfg.Output.Format, formatter.List())
	}

	opts := formatter.FormatOptions{
		Compact:  cfg.Output.Compact,
		MaxWidth: cfg.Output.MaxWidth,
	}
	return f, opts, nil
}
