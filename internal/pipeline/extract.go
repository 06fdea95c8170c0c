package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lease-abstract-cli/internal/config"
	"github.com/sells-group/lease-abstract-cli/internal/model"
	"github.com/sells-group/lease-abstract-cli/internal/render"
	"github.com/sells-group/lease-abstract-cli/internal/synonyms"
	"github.com/sells-group/lease-abstract-cli/pkg/anthropic"
)

const extractSystemPrompt = `You are a commercial lease abstractor. Read the full lease text and extract every metric listed below.

Respond with a JSON object of the form:
{"metrics": [{"metric": "<name>", "value": <value>, "source_blurb": "<verbatim excerpt>", "flags": []}]}

Rules:
- Emit one entry per metric listed, in the order given, using the exact metric names.
- value is a JSON string, number, boolean, or null. Never invent a value: use null when the lease does not state one.
- source_blurb quotes the lease text verbatim where you found the value, trimmed to one or two sentences.
- flags lists short warnings about the value ("handwritten", "conflicting clauses", "illegible") and is usually empty.
- Dates are YYYY-MM-DD. Dollar amounts are plain numbers without symbols. Percentages are decimal fractions (3% is 0.03).`

// subtypeGuidance adds expense-structure context to the extraction
// prompt. Keyed by subtype code.
var subtypeGuidance = map[model.DocumentSubtype]string{
	model.SubtypeNNN: "This is a triple-net (NNN) lease: expect separate tax, insurance, and CAM reimbursement clauses, and expect base rent to exclude them.",
	model.SubtypeFSG: "This is a full-service-gross (FSG) lease: base rent includes operating expenses, usually with a base-year expense stop.",
	model.SubtypeMG:  "This is a modified-gross (MG) lease: read the expense clauses carefully to see which costs pass through to the tenant.",
	model.SubtypeIG:  "This is an industrial-gross (IG) lease: rent is gross but utilities and some maintenance typically fall to the tenant.",
	model.SubtypeANN: "This is an absolute-net (ANN) lease: the tenant bears every cost including structural repairs; deposit and escalation clauses may be nonstandard.",
}

// Extraction is the extractor stage output. Records always covers the
// full abstract schema; Errors collects non-fatal parse and coverage
// problems for reviewer attention.
type Extraction struct {
	Records   []*model.Metric
	RawText   string
	Model     string
	LatencyMS int64
	Usage     anthropic.TokenUsage
	Errors    []string
}

// Extract runs the field-extraction model call for a document and
// parses the response into the fixed abstract schema. Model and network
// failures are fatal; parse failures degrade through the fallback
// parser and placeholder filling instead of failing the stage.
func Extract(ctx context.Context, client anthropic.Client, aiCfg config.AnthropicConfig, filename string, subtype model.DocumentSubtype, pages []render.Page, syn *synonyms.Table) (*Extraction, error) {
	temp := aiCfg.Temperature
	resp, err := client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     aiCfg.ExtractModel,
		MaxTokens: aiCfg.MaxTokens,
		System:    anthropic.BuildCachedSystemBlocks(buildExtractSystem(subtype, syn)),
		Messages: []anthropic.Message{
			anthropic.TextMessage("user", buildExtractUser(filename, pages)),
		},
		Temperature: &temp,
	})
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: extract %s", filename)
	}

	raw := resp.Text()
	records, parseErrors := parseMetrics(raw, filename)

	resp.Usage.LogCost(resp.Model, "extract")
	zap.L().Debug("extract: response parsed",
		zap.String("document", filename),
		zap.Int("records", len(records)),
		zap.Int("parse_errors", len(parseErrors)),
		zap.Int64("latency_ms", resp.LatencyMS),
	)

	return &Extraction{
		Records:   records,
		RawText:   raw,
		Model:     resp.Model,
		LatencyMS: resp.LatencyMS,
		Usage:     resp.Usage,
		Errors:    parseErrors,
	}, nil
}

// buildExtractSystem assembles the system prompt from the base
// instructions, the subtype guidance, the schema metric list, and the
// synonym dictionary.
func buildExtractSystem(subtype model.DocumentSubtype, syn *synonyms.Table) string {
	var sb strings.Builder
	sb.WriteString(extractSystemPrompt)

	if guidance, ok := subtypeGuidance[subtype]; ok {
		sb.WriteString("\n\n")
		sb.WriteString(guidance)
	}

	sb.WriteString("\n\nMetrics to extract:\n")
	for _, f := range model.AllFields() {
		fmt.Fprintf(&sb, "- %s (%s): %s\n", f.Name, f.Kind, f.Guidance)
	}

	if lines := syn.PromptLines(); len(lines) > 0 {
		sb.WriteString("\nAlternate phrasings seen in past leases:\n")
		sb.WriteString(strings.Join(lines, "\n"))
		sb.WriteString("\n")
	}

	return sb.String()
}

// buildExtractUser concatenates page texts with page markers.
func buildExtractUser(filename string, pages []render.Page) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Lease document: %s\n", filename)
	for _, p := range pages {
		fmt.Fprintf(&sb, "\n--- Page %d ---\n%s\n", p.Number, p.Text)
	}
	return sb.String()
}

// wireMetric is the per-metric object shape requested from the model.
type wireMetric struct {
	Metric      string       `json:"metric"`
	Value       model.Scalar `json:"value"`
	SourceBlurb string       `json:"source_blurb"`
	Flags       []string     `json:"flags"`
}

// parseMetrics turns a raw model response into a full-schema record
// list. The contract, in order: strip code fences; strict JSON parse
// (top-level array, or object with a metrics property); on failure,
// regex recovery of metric/value pairs; finally, placeholder records
// for any schema name still missing. All problems accumulate as
// non-fatal error strings.
func parseMetrics(raw, sourceDocument string) ([]*model.Metric, []string) {
	var errs []string

	wires, parseErr := parseStrict(stripFences(raw))
	if parseErr != nil {
		errs = append(errs, fmt.Sprintf("strict JSON parse failed: %v", parseErr))
		wires = parseFallback(raw)
		if len(wires) > 0 {
			zap.L().Warn("extract: fallback parser recovered records",
				zap.String("document", sourceDocument),
				zap.Int("recovered", len(wires)),
			)
		}
	}

	byName := make(map[string]*model.Metric, model.SchemaSize())
	for _, w := range wires {
		if _, ok := model.FieldByName(w.Metric); !ok {
			errs = append(errs, fmt.Sprintf("response contained unknown metric %q", w.Metric))
			continue
		}
		if _, dup := byName[w.Metric]; dup {
			errs = append(errs, fmt.Sprintf("response contained duplicate metric %q", w.Metric))
			continue
		}
		byName[w.Metric] = &model.Metric{
			Name:           w.Metric,
			ExtractedValue: w.Value,
			SourceDocument: sourceDocument,
			SourceQuote:    w.SourceBlurb,
			Notes:          w.Flags,
		}
	}

	var missing []string
	records := make([]*model.Metric, 0, model.SchemaSize())
	for _, name := range model.FieldNames() {
		if rec, ok := byName[name]; ok {
			records = append(records, rec)
			continue
		}
		missing = append(missing, name)
		records = append(records, &model.Metric{
			Name:           name,
			ExtractedValue: model.Null(),
			Notes:          []string{"Field not extracted - requires manual entry"},
		})
	}
	if len(missing) > 0 {
		errs = append(errs, fmt.Sprintf("fields not extracted: %s", strings.Join(missing, ", ")))
	}

	return records, errs
}

// stripFences removes a markdown code fence wrapping the response, with
// or without a language tag. Unfenced responses pass through verbatim.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}
	return strings.TrimSpace(text)
}

// parseStrict decodes the cleaned response. A top-level array is the
// metric list itself; a top-level object contributes its metrics
// property.
func parseStrict(cleaned string) ([]wireMetric, error) {
	if strings.HasPrefix(cleaned, "[") {
		var list []wireMetric
		if err := json.Unmarshal([]byte(cleaned), &list); err != nil {
			return nil, err
		}
		return list, nil
	}
	var wrapper struct {
		Metrics []wireMetric `json:"metrics"`
	}
	if err := json.Unmarshal([]byte(cleaned), &wrapper); err != nil {
		return nil, err
	}
	return wrapper.Metrics, nil
}

// fallbackMetricRe pairs each "metric" name with the next "value" token:
// a quoted string, or a bare token running to the next delimiter.
var fallbackMetricRe = regexp.MustCompile(`"metric"\s*:\s*"([^"]+)"(?s:.*?)"value"\s*:\s*("(?:[^"\\]|\\.)*"|[^,}\]\s]+)`)

// parseFallback scans a malformed response for metric/value pairs.
// Every recovered record is tagged so the reviewer knows it bypassed
// strict parsing.
func parseFallback(raw string) []wireMetric {
	matches := fallbackMetricRe.FindAllStringSubmatch(raw, -1)
	wires := make([]wireMetric, 0, len(matches))
	for _, m := range matches {
		wires = append(wires, wireMetric{
			Metric: m[1],
			Value:  coerceToken(m[2]),
			Flags:  []string{"Extracted via fallback parser"},
		})
	}
	return wires
}

// coerceToken converts a raw value token to a Scalar: JSON literals
// first, then quoted strings, then numbers, else the raw text.
func coerceToken(tok string) model.Scalar {
	tok = strings.TrimSpace(tok)
	switch tok {
	case "null":
		return model.Null()
	case "true":
		return model.Bool(true)
	case "false":
		return model.Bool(false)
	}
	if strings.HasPrefix(tok, `"`) {
		var s string
		if err := json.Unmarshal([]byte(tok), &s); err == nil {
			return model.String(s)
		}
		return model.String(strings.Trim(tok, `"`))
	}
	if f, err := strconv.ParseFloat(tok, 64); err == nil {
		return model.Number(f)
	}
	return model.String(tok)
}
