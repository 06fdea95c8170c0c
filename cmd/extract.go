package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/lease-abstract-cli/internal/model"
	"github.com/sells-group/lease-abstract-cli/internal/pipeline"
)

var (
	extractFile           string
	extractSubtype        string
	extractSkipExtraction bool
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract a lease abstract from a single document",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx, "extract")
		if err != nil {
			return err
		}
		defer env.Close()

		opts := pipeline.Options{SkipExtraction: extractSkipExtraction}
		if extractSubtype != "" {
			subtype, ok := model.ParseSubtype(extractSubtype)
			if !ok {
				return eris.Errorf("unknown subtype code: %s", extractSubtype)
			}
			opts.ForcedSubtype = subtype
		}

		run, err := processDocument(ctx, env, extractFile, opts)
		if err != nil {
			return eris.Wrap(err, "extract")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractFile, "file", "", "path to the lease PDF (required)")
	extractCmd.Flags().StringVar(&extractSubtype, "subtype", "", "force a subtype code (NNN, FSG, MG, IG, ANN), bypassing classification")
	extractCmd.Flags().BoolVar(&extractSkipExtraction, "skip-extraction", false, "stop after classification, leaving the record set empty")
	_ = extractCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(extractCmd)
}
