package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lease-abstract-cli/internal/export"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Write the XLSX abstract for a stored run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("export"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "export")
		}
		if run.Result == nil {
			return eris.Errorf("run %s has no result to export (status %s)", run.ID, run.Status)
		}

		out := exportOut
		if out == "" {
			out = abstractFilename(run.Result.Filename)
		}

		if err := export.WriteAbstract(run.Result, out); err != nil {
			return err
		}

		zap.L().Info("abstract exported",
			zap.String("run_id", run.ID),
			zap.String("path", out),
		)
		fmt.Println(out)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output path (default <document>_abstract.xlsx)")
	rootCmd.AddCommand(exportCmd)
}

// abstractFilename derives the default workbook name from the source
// document name.
func abstractFilename(document string) string {
	base := strings.TrimSuffix(filepath.Base(document), filepath.Ext(document))
	if base == "" {
		base = "run"
	}
	return base + "_abstract.xlsx"
}
