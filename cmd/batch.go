package main

import (
	"context"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sells-group/lease-abstract-cli/internal/intake"
	"github.com/sells-group/lease-abstract-cli/internal/model"
	"github.com/sells-group/lease-abstract-cli/internal/pipeline"
)

var batchLimit int

var batchCmd = &cobra.Command{
	Use:   "batch <dir-or-ftp-url>",
	Short: "Process every lease document in a directory or FTP dropbox",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx, "batch")
		if err != nil {
			return err
		}
		defer env.Close()

		paths, err := collectDocuments(ctx, args[0])
		if err != nil {
			return err
		}

		return processBatch(ctx, env, paths, batchLimit, cfg.Batch.MaxConcurrentDocuments, cfg.Batch.StartsPerSec)
	},
}

func init() {
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max number of documents to process (0 = all)")
	rootCmd.AddCommand(batchCmd)
}

// collectDocuments resolves the batch source to local PDF paths. An
// ftp:// source is pulled into the spool directory first.
func collectDocuments(ctx context.Context, source string) ([]string, error) {
	if strings.HasPrefix(source, "ftp://") {
		dropbox := intake.NewFTPDropbox(cfg.Intake)
		return dropbox.Fetch(ctx, source)
	}
	return intake.ListLocal(source)
}

// processBatch runs documents through the pipeline with bounded
// concurrency, pacing run starts so a large batch does not slam the
// model API. Individual failures are recorded on their runs and do not
// abort the batch.
func processBatch(ctx context.Context, env *pipelineEnv, paths []string, limit, concurrency int, startsPerSec float64) error {
	if len(paths) == 0 {
		zap.L().Info("no documents found")
		return nil
	}
	if limit > 0 && len(paths) > limit {
		paths = paths[:limit]
	}

	zap.L().Info("processing batch",
		zap.Int("documents", len(paths)),
		zap.Int("concurrency", concurrency),
	)

	var limiter *rate.Limiter
	if startsPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(startsPerSec), 1)
	}

	var completed, skipped, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, path := range paths {
		g.Go(func() error {
			if limiter != nil {
				if err := limiter.Wait(gctx); err != nil {
					return nil // batch is shutting down
				}
			}

			log := zap.L().With(zap.String("document", filepath.Base(path)))

			run, err := processDocument(gctx, env, path, pipeline.Options{})
			if err != nil {
				failed.Add(1)
				log.Error("document failed", zap.Error(err))
				return nil // don't abort batch on individual failure
			}

			if run.Status == model.RunStatusSkipped {
				skipped.Add(1)
				return nil
			}

			completed.Add(1)
			log.Info("document complete", zap.String("run_id", run.ID))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "batch processing")
	}

	zap.L().Info("batch complete",
		zap.Int64("completed", completed.Load()),
		zap.Int64("skipped", skipped.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return nil
}
