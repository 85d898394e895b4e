package main

import (
	"github.com/artpar/modeldiff/app"
	"github.com/spf13/cobra"
)

var diffExitCode bool

var diffCmd = &cobra.Command{
	Use:   "diff <schema> <base> <current>",
	Short: "Print the edit script between two documents",
	Long: `Compare two JSON or YAML documents of the named record or list schema.

The output lists only what changed: attributes with new values, records that
were added, and deletes for records missing from the current document. An
empty current document deletes everything in base.

Examples:
  modeldiff diff Order order-v1.json order-v2.json
  modeldiff diff Items before.yaml after.yaml --format yaml
  modeldiff diff Order a.json b.json --exit-code   # status 1 when different`,
	Args: cobra.ExactArgs(3),
	RunE: runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)

	diffCmd.Flags().BoolVar(&diffExitCode, "exit-code", false, "exit with status 1 when the documents differ")
}

func runDiff(cmd *cobra.Command, args []string) error {
	reg, _, err := loadRegistry()
	if err != nil {
		return err
	}

	f, opts, err := outputFormatter()
	if err != nil {
		return err
	}

	differ := app.NewDiffer(reg, nil, logger)
	res, err := differ.DiffFiles(args[0], args[1], args[2])
	if err != nil {
		return err
	}

	if err := f.FormatDiff(cmd.OutOrStdout(), res, opts); err != nil {
		return err
	}

	if diffExitCode && res.Changed() {
		return errDiffers
	}
	return nil
}
