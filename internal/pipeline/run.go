package pipeline

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lease-abstract-cli/internal/config"
	"github.com/sells-group/lease-abstract-cli/internal/model"
	"github.com/sells-group/lease-abstract-cli/internal/render"
	"github.com/sells-group/lease-abstract-cli/internal/synonyms"
	"github.com/sells-group/lease-abstract-cli/pkg/anthropic"
)

// Orchestrator sequences the pipeline stages for one document at a
// time. It holds no per-run state, so independent documents can run
// concurrently through the same instance.
type Orchestrator struct {
	client   anthropic.Client
	renderer render.Renderer
	syn      *synonyms.Table
	cfg      *config.Config
}

// Options tune a single run. The zero value is a normal full run.
type Options struct {
	// ForcedSubtype bypasses classification entirely when set to a
	// valid subtype code.
	ForcedSubtype model.DocumentSubtype
	// SkipExtraction stops after classification, leaving the record
	// set empty and validation untouched. Used for diagnostics.
	SkipExtraction bool
}

// New builds an Orchestrator.
func New(client anthropic.Client, renderer render.Renderer, syn *synonyms.Table, cfg *config.Config) *Orchestrator {
	return &Orchestrator{client: client, renderer: renderer, syn: syn, cfg: cfg}
}

// Run processes a document with default options. Exactly one of the
// result and skip outputs is non-nil on success.
func (o *Orchestrator) Run(ctx context.Context, path string) (*model.PipelineResult, *model.PipelineSkipped, error) {
	return o.RunWithOptions(ctx, path, Options{})
}

// RunWithOptions processes one document through skip-check, page
// rendering, classification, extraction, correction, and validation.
// Stage failures (model errors, zero pages) abort the run with an
// error and no partial result; parse-level problems inside extraction
// are absorbed into the result's error list instead.
func (o *Orchestrator) RunWithOptions(ctx context.Context, path string, opts Options) (*model.PipelineResult, *model.PipelineSkipped, error) {
	filename := filepath.Base(path)

	if reason, skip := matchSkipIndicator(filename, o.cfg.Pipeline.SkipIndicators); skip {
		zap.L().Info("document skipped",
			zap.String("document", filename),
			zap.String("reason", reason),
		)
		return nil, &model.PipelineSkipped{Filename: filename, Reason: reason}, nil
	}

	pages, err := o.renderer.RenderPages(ctx, path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "pipeline: render %s", filename)
	}
	if len(pages) == 0 {
		return nil, nil, eris.Errorf("pipeline: %s rendered zero pages", filename)
	}
	if limit := o.cfg.Pipeline.MaxPages; limit > 0 && len(pages) > limit {
		zap.L().Warn("page limit exceeded, truncating",
			zap.String("document", filename),
			zap.Int("pages", len(pages)),
			zap.Int("max_pages", limit),
		)
		pages = pages[:limit]
	}

	var (
		subtype  model.DocumentSubtype
		modelID  string
		absorbed []string
	)
	if opts.ForcedSubtype.Valid() {
		subtype = opts.ForcedSubtype
		zap.L().Debug("classification bypassed",
			zap.String("document", filename),
			zap.String("subtype", string(subtype)),
		)
	} else {
		classification, err := Classify(ctx, o.client, o.cfg.Anthropic, filename, pages[0].Text)
		if err != nil {
			return nil, nil, err
		}
		subtype = classification.Subtype
		modelID = classification.Model
	}

	records := []*model.Metric{}
	outcomes := []model.ValidationOutcome{}
	if opts.SkipExtraction {
		zap.L().Debug("extraction bypassed", zap.String("document", filename))
	} else {
		extraction, err := Extract(ctx, o.client, o.cfg.Anthropic, filename, subtype, pages, o.syn)
		if err != nil {
			return nil, nil, err
		}
		records = extraction.Records
		modelID = extraction.Model
		absorbed = append(absorbed, extraction.Errors...)

		set := model.NewMetricSet(records)
		corrections := append(CorrectLeaseType(set), CorrectEscalation(set)...)
		ApplyCorrections(set, corrections)
		outcomes = Validate(set, o.cfg.Pipeline.BuildingSqft)
	}

	result := &model.PipelineResult{
		Filename:  filename,
		Subtype:   subtype,
		Records:   records,
		Outcomes:  outcomes,
		PageCount: len(pages),
		Model:     modelID,
		Timestamp: time.Now().UTC(),
		Errors:    absorbed,
	}

	zap.L().Info("document processed",
		zap.String("document", filename),
		zap.String("subtype", string(subtype)),
		zap.Int("pages", result.PageCount),
		zap.Int("records", len(result.Records)),
		zap.Int("absorbed_errors", len(result.Errors)),
	)
	return result, nil, nil
}

// matchSkipIndicator reports whether the filename names an amendment
// rather than a base lease. Amendments reference terms defined in the
// base document and abstract poorly on their own, so they are skipped
// before any stage runs.
func matchSkipIndicator(filename string, indicators []string) (string, bool) {
	lower := strings.ToLower(filename)
	for _, indicator := range indicators {
		if indicator == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(indicator)) {
			return "filename contains amendment indicator " + strconv.Quote(indicator), true
		}
	}
	return "", false
}
