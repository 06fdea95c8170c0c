package main

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/lease-abstract-cli/internal/config"
	"github.com/sells-group/lease-abstract-cli/internal/pipeline"
	"github.com/sells-group/lease-abstract-cli/internal/render"
	"github.com/sells-group/lease-abstract-cli/internal/review"
	"github.com/sells-group/lease-abstract-cli/internal/store"
	"github.com/sells-group/lease-abstract-cli/internal/synonyms"
	"github.com/sells-group/lease-abstract-cli/pkg/anthropic"
)

// leaseResponseJSON satisfies both pipeline stages: the classifier
// finds the NNN code in it, and the extractor parses it as a strict
// JSON metrics object.
const leaseResponseJSON = `{"metrics": [{"metric": "lease_type", "value": "NNN", "source_blurb": "this triple net (NNN) lease", "flags": []}]}`

// stubModelClient returns the same canned response for every call and
// counts invocations.
type stubModelClient struct {
	text  string
	err   error
	calls atomic.Int64
}

func (s *stubModelClient) CreateMessage(_ context.Context, _ anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return &anthropic.MessageResponse{
		Model:   "claude-sonnet-4-5-20250929",
		Content: []anthropic.ContentBlock{{Type: "text", Text: s.text}},
		Usage:   anthropic.TokenUsage{InputTokens: 900, OutputTokens: 120},
	}, nil
}

// stubPageRenderer returns fixed pages, failing for paths that contain
// failSubstring.
type stubPageRenderer struct {
	pages         []render.Page
	failSubstring string
	calls         atomic.Int64
}

func (s *stubPageRenderer) RenderPages(_ context.Context, path string) ([]render.Page, error) {
	s.calls.Add(1)
	if s.failSubstring != "" && strings.Contains(path, s.failSubstring) {
		return nil, errors.New("render backend down")
	}
	return s.pages, nil
}

func leasePages() []render.Page {
	return []render.Page{
		{Number: 1, Text: "OFFICE LEASE AGREEMENT by and between Landlord and Acme Corp"},
		{Number: 2, Text: "Base rent shall be $7,907.17 per month"},
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Anthropic: config.AnthropicConfig{
			ClassifyModel: "claude-haiku-4-5-20251001",
			ExtractModel:  "claude-sonnet-4-5-20250929",
			MaxTokens:     4096,
		},
		Pipeline: config.PipelineConfig{
			MaxPages:       25,
			BuildingSqft:   50000,
			SkipIndicators: []string{"amendment", "addendum", "modification", "extension"},
		},
	}
}

// newTestEnv wires a pipelineEnv with a tempdir sqlite store and the
// given stubs.
func newTestEnv(t *testing.T, client anthropic.Client, renderer render.Renderer) *pipelineEnv {
	t.Helper()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		st.Close() //nolint:errcheck
	})
	require.NoError(t, st.Migrate(context.Background()))

	return &pipelineEnv{
		Store:  st,
		Orch:   pipeline.New(client, renderer, &synonyms.Table{}, testConfig()),
		Review: review.New(config.ReviewConfig{}),
	}
}
