package pipeline

import (
	"math"
	"time"

	"github.com/sells-group/lease-abstract-cli/internal/model"
)

// Validation tolerances. A check SKIPs when a required input is
// missing, null, or zero; it only ever fails on present-but-
// inconsistent data.
const (
	rentToleranceDollars = 1.0
	shareTolerance       = 0.002
	dateToleranceMonths  = 1
	depositRatioFloor    = 0.5
	depositRatioCeil     = 6.0
	monthsPerYear        = 12
)

// Validate runs the five cross-checks over the record set's effective
// values in fixed order. Checks are independent and stateless; the
// order exists for presentation only.
func Validate(set *model.MetricSet, buildingSqft float64) []model.ValidationOutcome {
	return []model.ValidationOutcome{
		checkRentArithmetic(set),
		checkProportionateShare(set, buildingSqft),
		checkDateArithmetic(set),
		checkEscalationConsistency(set),
		checkDepositSanity(set),
	}
}

// checkRentArithmetic recomputes the implied annual rate per square
// foot from monthly rent and area, rounds it to cents the way rent
// schedules state it, and recomputes monthly rent from that rate. A
// stated monthly rent more than a dollar off the recomputation fails.
func checkRentArithmetic(set *model.MetricSet) model.ValidationOutcome {
	monthly, ok := effectiveFloat(set, model.FieldMonthlyRent)
	if !ok {
		return model.Skip(model.CheckRentArithmetic, "starting monthly rent missing")
	}
	area, ok := effectiveFloat(set, model.FieldLeasedSqft)
	if !ok {
		return model.Skip(model.CheckRentArithmetic, "leased square footage missing")
	}

	impliedAnnualPSF := round2(monthly * monthsPerYear / area)
	recomputedMonthly := impliedAnnualPSF * area / monthsPerYear
	diff := math.Abs(recomputedMonthly - monthly)

	detail := usd.Sprintf("monthly rent $%.2f over %.0f sqft implies $%.2f/sqft/yr (recomputed monthly $%.2f, off by $%.2f)",
		monthly, area, impliedAnnualPSF, recomputedMonthly, diff)
	if diff > rentToleranceDollars {
		return model.Fail(model.CheckRentArithmetic, detail)
	}
	return model.Pass(model.CheckRentArithmetic, detail)
}

// checkProportionateShare compares the stated share against leased
// area over building area. Shares stated as whole percentages are
// normalized to fractions first.
func checkProportionateShare(set *model.MetricSet, buildingSqft float64) model.ValidationOutcome {
	stated, ok := effectiveFloat(set, model.FieldProportionate)
	if !ok {
		return model.Skip(model.CheckProportionateShare, "proportionate share missing")
	}
	area, ok := effectiveFloat(set, model.FieldLeasedSqft)
	if !ok {
		return model.Skip(model.CheckProportionateShare, "leased square footage missing")
	}
	if buildingSqft <= 0 {
		return model.Skip(model.CheckProportionateShare, "building square footage not configured")
	}

	if stated > 1 {
		stated = stated / 100
	}
	expected := area / buildingSqft
	diff := math.Abs(expected - stated)

	detail := usd.Sprintf("%.0f of %.0f sqft expects share %.4f, stated %.4f (off by %.4f)",
		area, buildingSqft, expected, stated, diff)
	if diff > shareTolerance {
		return model.Fail(model.CheckProportionateShare, detail)
	}
	return model.Pass(model.CheckProportionateShare, detail)
}

// dateLayouts are the formats leases and the model actually produce.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

func parseLeaseDate(raw string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// endOfMonth returns the last calendar day of the month containing t.
func endOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC)
}

// checkDateArithmetic verifies that commencement plus term lands on the
// stated expiration. A lease of N months starting mid-month runs
// through the Nth month, so the expected expiration is the last day of
// month start+(N-1). One month of slack tolerates last-day-of-month
// rounding in how leases state the term.
func checkDateArithmetic(set *model.MetricSet) model.ValidationOutcome {
	startRaw, ok := effectiveString(set, model.FieldLeaseStartDate)
	if !ok {
		return model.Skip(model.CheckDateArithmetic, "lease start date missing")
	}
	endRaw, ok := effectiveString(set, model.FieldLeaseExpiration)
	if !ok {
		return model.Skip(model.CheckDateArithmetic, "lease expiration date missing")
	}
	term, ok := effectiveFloat(set, model.FieldLeaseTermMonths)
	if !ok {
		return model.Skip(model.CheckDateArithmetic, "lease term missing")
	}

	start, ok := parseLeaseDate(startRaw)
	if !ok {
		return model.Skip(model.CheckDateArithmetic, "lease start date unparseable: "+startRaw)
	}
	stated, ok := parseLeaseDate(endRaw)
	if !ok {
		return model.Skip(model.CheckDateArithmetic, "lease expiration date unparseable: "+endRaw)
	}

	months := int(math.Round(term))
	expected := endOfMonth(time.Date(start.Year(), start.Month()+time.Month(months-1), 1, 0, 0, 0, 0, time.UTC))

	deltaMonths := (stated.Year()-expected.Year())*monthsPerYear + int(stated.Month()-expected.Month())
	detail := usd.Sprintf("start %s + %d months expects expiration near %s, stated %s (off by %d months)",
		start.Format("2006-01-02"), months, expected.Format("2006-01-02"), stated.Format("2006-01-02"), deltaMonths)
	if deltaMonths < -dateToleranceMonths || deltaMonths > dateToleranceMonths {
		return model.Fail(model.CheckDateArithmetic, detail)
	}
	return model.Pass(model.CheckDateArithmetic, detail)
}

// checkEscalationConsistency re-derives the implied escalation
// percentage the same way the corrector does and flags kind/value
// disagreements the corrector was not confident enough to fix.
func checkEscalationConsistency(set *model.MetricSet) model.ValidationOutcome {
	value, ok := effectiveFloat(set, model.FieldEscalationValue)
	if !ok {
		return model.Skip(model.CheckEscalationConsistency, "escalation value missing")
	}
	kind := currentEscalationKind(set)
	if kind == "" {
		return model.Skip(model.CheckEscalationConsistency, "escalation kind missing or unrecognized")
	}

	if kind.IsPercent() {
		if value >= escalationDollarFloor {
			return model.Flag(model.CheckEscalationConsistency,
				usd.Sprintf("kind is percent but value %.2f is dollar-sized", value))
		}
		return model.Pass(model.CheckEscalationConsistency,
			usd.Sprintf("percent escalation %.4f is plausible", value))
	}

	if kind.IsDollar() || kind == model.EscalationStepped {
		monthly, okRent := effectiveFloat(set, model.FieldMonthlyRent)
		area, okArea := effectiveFloat(set, model.FieldLeasedSqft)
		if !okRent || !okArea {
			return model.Skip(model.CheckEscalationConsistency, "rent or area missing, cannot re-derive implied percentage")
		}
		annualRatePerArea := monthly * monthsPerYear / area
		if annualRatePerArea <= 0 {
			return model.Skip(model.CheckEscalationConsistency, "implied annual rate is zero")
		}
		implied := value / annualRatePerArea
		if (implied >= nearThreePctLow && implied <= nearThreePctHigh) ||
			(implied >= nearFivePctLow && implied <= nearFivePctHigh) {
			return model.Flag(model.CheckEscalationConsistency,
				usd.Sprintf("kind is %s but value %.2f implies %.4f, near a common round percentage", kind, value, implied))
		}
		return model.Pass(model.CheckEscalationConsistency,
			usd.Sprintf("%s escalation %.2f does not resemble a percentage", kind, value))
	}

	return model.Pass(model.CheckEscalationConsistency,
		usd.Sprintf("%s escalation carries no checkable value", kind))
}

// checkDepositSanity flags deposits far out of line with monthly rent.
// Deposits usually run between half a month and six months of rent.
func checkDepositSanity(set *model.MetricSet) model.ValidationOutcome {
	deposit, ok := effectiveFloat(set, model.FieldSecurityDeposit)
	if !ok {
		return model.Skip(model.CheckDepositSanity, "security deposit missing")
	}
	monthly, ok := effectiveFloat(set, model.FieldMonthlyRent)
	if !ok {
		return model.Skip(model.CheckDepositSanity, "starting monthly rent missing")
	}

	ratio := deposit / monthly
	detail := usd.Sprintf("deposit $%.2f is %.2f months of rent ($%.2f/month)", deposit, ratio, monthly)
	if ratio < depositRatioFloor || ratio > depositRatioCeil {
		return model.Flag(model.CheckDepositSanity, detail)
	}
	return model.Pass(model.CheckDepositSanity, detail)
}

// effectiveString reads a field's effective value as a non-empty string.
func effectiveString(set *model.MetricSet, field string) (string, bool) {
	rec := set.Get(field)
	if rec == nil {
		return "", false
	}
	s, ok := rec.Effective().AsString()
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}
