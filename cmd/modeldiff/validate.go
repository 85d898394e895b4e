package main

import (
	"fmt"

	"github.com/artpar/modeldiff/core/formatter"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate schema files",
	Long: `Parse and compile every configured schema file.

Checks:
  - YAML syntax is valid
  - Every attribute has a known $type and a matching default
  - Referenced types exist and do not form cycles

Examples:
  modeldiff validate
  modeldiff validate --schemas ./schemas --format json`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	status := cmd.ErrOrStderr()

	reg, count, err := loadRegistry()
	if err != nil {
		fmt.Fprintf(status, "  %s Schemas valid\n", crossMark)
		return err
	}
	fmt.Fprintf(status, "  %s Parsed %d definitions from %v\n", checkMark, count, cfg.Schemas.Paths)

	f, opts, err := outputFormatter()
	if err != nil {
		return err
	}

	var infos []formatter.SchemaInfo
	for _, name := range reg.Names() {
		if s, ok := reg.Record(name); ok {
			infos = append(infos, formatter.RecordInfo(s))
		} else if ls, ok := reg.List(name); ok {
			infos = append(infos, formatter.ListInfo(ls))
		}
	}

	return f.FormatSchemas(cmd.OutOrStdout(), infos, opts)
}

const (
	checkMark = "\033[32m✓\033[0m"
	crossMark = "\033[31m✗\033[0m"
)
