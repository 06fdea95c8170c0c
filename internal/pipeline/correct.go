package pipeline

import (
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/lease-abstract-cli/internal/model"
)

// usd formats dollar amounts with thousands grouping in notes and
// check details.
var usd = message.NewPrinter(language.English)

// Confidence grades an auto-correction. Only high-confidence findings
// set an override; medium-confidence findings are logged and left for
// the reviewer.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
)

// Escalation heuristics. Values at or above the dollar floor read as
// dollar amounts, values below the percent ceiling read as decimal
// fractions; implied percentages inside the two bands snap to the
// canonical rates. Empirical thresholds, kept as named constants.
const (
	escalationDollarFloor = 0.5
	escalationPercentCeil = 0.20
	nearThreePctLow       = 0.025
	nearThreePctHigh      = 0.035
	nearFivePctLow        = 0.045
	nearFivePctHigh       = 0.055
	canonicalThreePct     = 0.03
	canonicalFivePct      = 0.05
)

// Correction is one auto-corrector finding: an override value for a
// field plus the note explaining it. Correctors return findings; only
// ApplyCorrections mutates the record set.
type Correction struct {
	Field      string
	Override   model.Scalar
	Note       string
	Confidence Confidence
}

// ApplyCorrections writes corrector findings onto the record set.
func ApplyCorrections(set *model.MetricSet, corrections []Correction) {
	for _, c := range corrections {
		rec := set.Get(c.Field)
		if rec == nil {
			continue
		}
		rec.SetOverride(c.Override)
		rec.AddNote(c.Note)
		zap.L().Info("correction applied",
			zap.String("field", c.Field),
			zap.String("override", c.Override.Display()),
			zap.String("confidence", string(c.Confidence)),
		)
	}
}

// tripleNetPhrases are the explicit declarations that mark a lease as
// triple net regardless of what the model classified.
var tripleNetPhrases = []string{"triple net", "triple-net", "triple_net", "nnn"}

// CorrectLeaseType detects the lease-type misclassification pattern:
// the cited source quote declares triple net but the extracted code
// disagrees. The rule covers both the primary lease_type field and its
// expense_structure duplicate kept for the flat export.
func CorrectLeaseType(set *model.MetricSet) []Correction {
	var corrections []Correction
	for _, field := range []string{model.FieldLeaseType, model.FieldExpenseStructure} {
		rec := set.Get(field)
		if rec == nil || !quoteDeclaresTripleNet(rec.SourceQuote) {
			continue
		}
		if current, ok := rec.Effective().AsString(); ok && strings.EqualFold(current, string(model.SubtypeNNN)) {
			continue
		}
		corrections = append(corrections, Correction{
			Field:      field,
			Override:   model.String(string(model.SubtypeNNN)),
			Note:       "Auto-corrected to NNN: the cited source text contains explicit triple-net language.",
			Confidence: ConfidenceHigh,
		})
	}
	return corrections
}

func quoteDeclaresTripleNet(quote string) bool {
	lower := strings.ToLower(quote)
	for _, phrase := range tripleNetPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// CorrectEscalation detects the escalation unit confusion pattern: a
// percentage increase extracted as a dollar figure or vice versa. It
// derives the annual rent rate per square foot and checks whether the
// extracted value, read as dollars, implies one of the canonical
// escalation percentages. Only a near-exact match (3% or 5% band)
// carries high confidence and triggers an override; anything else is
// left as fixed-dollar for the reviewer. Re-running on corrected
// output finds nothing to change.
func CorrectEscalation(set *model.MetricSet) []Correction {
	value, ok := effectiveFloat(set, model.FieldEscalationValue)
	if !ok {
		return nil
	}
	kind := currentEscalationKind(set)

	if value < escalationPercentCeil {
		// Already a plausible decimal fraction: confirm the kind.
		if kind == model.EscalationPercent {
			return nil
		}
		return []Correction{{
			Field:      model.FieldEscalationKind,
			Override:   model.String(string(model.EscalationPercent)),
			Note:       usd.Sprintf("Auto-corrected escalation kind to percent: value %.4f is below %.2f and reads as a decimal fraction, not a dollar amount.", value, escalationPercentCeil),
			Confidence: ConfidenceHigh,
		}}
	}

	if value < escalationDollarFloor {
		// Ambiguous zone between fraction and dollar readings.
		return nil
	}

	monthly, okRent := effectiveFloat(set, model.FieldMonthlyRent)
	area, okArea := effectiveFloat(set, model.FieldLeasedSqft)
	if !okRent || !okArea {
		return nil
	}

	annualRatePerArea := monthly * 12 / area
	if annualRatePerArea <= 0 {
		return nil
	}
	implied := value / annualRatePerArea

	var canonical float64
	switch {
	case implied >= nearThreePctLow && implied <= nearThreePctHigh:
		canonical = canonicalThreePct
	case implied >= nearFivePctLow && implied <= nearFivePctHigh:
		canonical = canonicalFivePct
	default:
		zap.L().Debug("escalation left as fixed dollar",
			zap.Float64("value", value),
			zap.Float64("implied_percent", implied),
			zap.String("confidence", string(ConfidenceMedium)),
		)
		return nil
	}

	note := usd.Sprintf("Auto-corrected escalation: value %.2f read as dollars implies %.2f / ($%.2f * 12 / %.0f sqft) = %.2f / $%.2f = %.4f, within the %.0f%% band. Reclassified as a %.0f%% annual increase.",
		value, value, monthly, area, value, annualRatePerArea, implied, canonical*100, canonical*100)

	corrections := []Correction{{
		Field:      model.FieldEscalationValue,
		Override:   model.Number(canonical),
		Note:       note,
		Confidence: ConfidenceHigh,
	}}
	if kind != model.EscalationPercent {
		corrections = append(corrections, Correction{
			Field:      model.FieldEscalationKind,
			Override:   model.String(string(model.EscalationPercent)),
			Note:       note,
			Confidence: ConfidenceHigh,
		})
	}
	return corrections
}

// effectiveFloat reads a field's effective value as a float. Missing
// records, null values, and zeroes all report false so callers skip
// rather than divide by zero.
func effectiveFloat(set *model.MetricSet, field string) (float64, bool) {
	rec := set.Get(field)
	if rec == nil {
		return 0, false
	}
	f, ok := rec.EffectiveFloat()
	if !ok || f == 0 {
		return 0, false
	}
	return f, true
}

// currentEscalationKind parses the effective escalation kind, tolerant
// of the free-text variants the model emits. Unparseable or missing
// kinds return the empty kind.
func currentEscalationKind(set *model.MetricSet) model.EscalationKind {
	rec := set.Get(model.FieldEscalationKind)
	if rec == nil {
		return ""
	}
	s, ok := rec.Effective().AsString()
	if !ok {
		return ""
	}
	kind, ok := model.ParseEscalationKind(s)
	if !ok {
		return ""
	}
	return kind
}
