package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lease-abstract-cli/internal/model"
	"github.com/sells-group/lease-abstract-cli/internal/render"
)

// ErrRunNotFound reports a lookup for a run ID the store has never seen.
// Both backends return it so callers can map it to a 404.
var ErrRunNotFound = eris.New("store: run not found")

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status   model.RunStatus `json:"status,omitempty"`
	Document string          `json:"document,omitempty"`
	Limit    int             `json:"limit,omitempty"`
	Offset   int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the extraction pipeline.
// A run moves queued -> running -> exactly one of complete, skipped, or
// failed; the terminal updates write the payload and the status in one
// statement.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, document string) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	CompleteRun(ctx context.Context, runID string, result *model.PipelineResult) error
	SkipRun(ctx context.Context, runID string, skipped *model.PipelineSkipped) error
	FailRun(ctx context.Context, runID string, cause string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Render cache, keyed by document content hash. OCR rendering is
	// the slowest and most expensive stage, so rendered pages are kept
	// until the TTL lapses.
	GetCachedRender(ctx context.Context, docHash string) ([]render.Page, error)
	SetCachedRender(ctx context.Context, docHash string, pages []render.Page, ttl time.Duration) error
	DeleteExpiredRenders(ctx context.Context) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
