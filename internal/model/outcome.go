package model

// CheckStatus is the result class of a validation check.
type CheckStatus string

const (
	CheckPass CheckStatus = "PASS"
	CheckFail CheckStatus = "FAIL"
	CheckFlag CheckStatus = "FLAG"
	CheckSkip CheckStatus = "SKIP"
)

// Check identifiers, in execution order.
const (
	CheckRentArithmetic        = "rent_arithmetic"
	CheckProportionateShare    = "proportionate_share"
	CheckDateArithmetic        = "date_arithmetic"
	CheckEscalationConsistency = "escalation_consistency"
	CheckDepositSanity         = "deposit_sanity"
)

// CheckOrder lists the five validation checks in the order they run.
var CheckOrder = []string{
	CheckRentArithmetic,
	CheckProportionateShare,
	CheckDateArithmetic,
	CheckEscalationConsistency,
	CheckDepositSanity,
}

// ValidationOutcome is the result of a single validation check.
type ValidationOutcome struct {
	CheckID string      `json:"checkId"`
	Status  CheckStatus `json:"status"`
	Detail  string      `json:"detail"`
}

// Pass builds a passing outcome.
func Pass(checkID, detail string) ValidationOutcome {
	return ValidationOutcome{CheckID: checkID, Status: CheckPass, Detail: detail}
}

// Fail builds a failing outcome.
func Fail(checkID, detail string) ValidationOutcome {
	return ValidationOutcome{CheckID: checkID, Status: CheckFail, Detail: detail}
}

// Flag builds a flagged outcome for a human to look at.
func Flag(checkID, detail string) ValidationOutcome {
	return ValidationOutcome{CheckID: checkID, Status: CheckFlag, Detail: detail}
}

// Skip builds a skipped outcome explaining which input was missing.
func Skip(checkID, detail string) ValidationOutcome {
	return ValidationOutcome{CheckID: checkID, Status: CheckSkip, Detail: detail}
}
