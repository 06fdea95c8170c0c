package model

import "strings"

// EscalationKind classifies how base rent escalates over the lease term.
type EscalationKind string

const (
	EscalationPercent       EscalationKind = "percent"        // annual percentage increase
	EscalationDollarPSF     EscalationKind = "dollar_psf"     // fixed dollars per square foot per year
	EscalationDollarMonthly EscalationKind = "dollar_monthly" // fixed dollars added to monthly rent
	EscalationCPI           EscalationKind = "cpi"            // index-linked (CPI)
	EscalationMarket        EscalationKind = "market"         // reset to fair market value
	EscalationStepped       EscalationKind = "stepped"        // explicit rent schedule
)

// Valid reports whether the kind is one of the known codes.
func (k EscalationKind) Valid() bool {
	switch k {
	case EscalationPercent, EscalationDollarPSF, EscalationDollarMonthly,
		EscalationCPI, EscalationMarket, EscalationStepped:
		return true
	}
	return false
}

// IsPercent reports whether the kind denotes a percentage escalation.
func (k EscalationKind) IsPercent() bool { return k == EscalationPercent }

// IsDollar reports whether the kind denotes a fixed-dollar escalation.
func (k EscalationKind) IsDollar() bool {
	return k == EscalationDollarPSF || k == EscalationDollarMonthly
}

// ParseEscalationKind normalizes free-text kind values the model may emit
// ("percentage", "fixed_dollar_psf", "CPI", ...) onto the canonical codes.
func ParseEscalationKind(raw string) (EscalationKind, bool) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)
	switch normalized {
	case "percent", "percentage", "pct", "annual_percentage":
		return EscalationPercent, true
	case "dollar_psf", "fixed_dollar_psf", "dollar_per_sf", "psf", "fixed_dollar_per_area":
		return EscalationDollarPSF, true
	case "dollar_monthly", "fixed_dollar_monthly", "dollar_per_month", "fixed_dollar_per_month":
		return EscalationDollarMonthly, true
	case "cpi", "index", "index_linked", "consumer_price_index":
		return EscalationCPI, true
	case "market", "market_reset", "fmv", "fair_market_value":
		return EscalationMarket, true
	case "stepped", "step", "stepped_schedule", "schedule":
		return EscalationStepped, true
	}
	return "", false
}
