// Package pipeline implements the lease abstraction pipeline: subtype
// classification, field extraction with fallback parsing, heuristic
// auto-correction, and deterministic validation, sequenced per document
// by the Orchestrator.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lease-abstract-cli/internal/config"
	"github.com/sells-group/lease-abstract-cli/internal/model"
	"github.com/sells-group/lease-abstract-cli/pkg/anthropic"
)

const classifySystemPrompt = `You classify commercial lease documents by expense-responsibility structure. The codes are:

NNN - triple net: tenant pays taxes, insurance, and maintenance on top of base rent
FSG - full service gross: landlord pays all operating expenses
MG  - modified gross: expenses split between landlord and tenant
IG  - industrial gross: gross lease variant common in industrial parks
ANN - absolute net: tenant bears every cost including structural repairs

Prefer explicit declarations in the text ("this is a triple-net lease", "gross lease") over structural inference from expense clauses. Respond with exactly one code.`

const classifyUserPrompt = `Document: %s

First page:
%s`

// Classification is the classifier stage output: the winning subtype
// plus the raw model text and call latency for diagnostics.
type Classification struct {
	Subtype   model.DocumentSubtype
	RawText   string
	Model     string
	LatencyMS int64
	Usage     anthropic.TokenUsage
}

// Classify determines the document subtype from first-page text with a
// single model call. Model or network failure is fatal for the run; the
// stage never retries.
func Classify(ctx context.Context, client anthropic.Client, aiCfg config.AnthropicConfig, filename, firstPage string) (*Classification, error) {
	temp := aiCfg.Temperature
	resp, err := client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     aiCfg.ClassifyModel,
		MaxTokens: 64,
		System:    anthropic.BuildCachedSystemBlocks(classifySystemPrompt),
		Messages: []anthropic.Message{
			anthropic.TextMessage("user", fmt.Sprintf(classifyUserPrompt, filename, firstPage)),
		},
		Temperature: &temp,
	})
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: classify %s", filename)
	}

	raw := resp.Text()
	subtype := parseSubtype(raw)

	resp.Usage.LogCost(resp.Model, "classify")
	zap.L().Debug("classify: subtype detected",
		zap.String("document", filename),
		zap.String("subtype", string(subtype)),
		zap.Int64("latency_ms", resp.LatencyMS),
	)

	return &Classification{
		Subtype:   subtype,
		RawText:   raw,
		Model:     resp.Model,
		LatencyMS: resp.LatencyMS,
		Usage:     resp.Usage,
	}, nil
}

// parseSubtype scans the model response for a known subtype code. Codes
// are tried in a fixed priority order so a response mentioning several
// resolves deterministically. The match is case-sensitive: lowercase
// prose like "signing" must not hit a short code like IG. No match
// falls back to the most common structure (FSG).
func parseSubtype(raw string) model.DocumentSubtype {
	for _, code := range model.ClassificationOrder {
		if strings.Contains(raw, string(code)) {
			return code
		}
	}
	return model.DefaultSubtype
}
