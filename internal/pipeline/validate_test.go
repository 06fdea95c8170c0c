package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lease-abstract-cli/internal/model"
)

const testBuildingSqft = 50000

func TestValidate_RunsAllChecksInOrder(t *testing.T) {
	set := makeSet(map[string]model.Scalar{
		model.FieldMonthlyRent:     model.Number(7907.17),
		model.FieldLeasedSqft:      model.Number(2497),
		model.FieldProportionate:   model.Number(0.05),
		model.FieldLeaseStartDate:  model.String("2024-09-01"),
		model.FieldLeaseExpiration: model.String("2027-12-31"),
		model.FieldLeaseTermMonths: model.Number(40),
		model.FieldEscalationValue: model.Number(0.03),
		model.FieldEscalationKind:  model.String("percent"),
		model.FieldSecurityDeposit: model.Number(17279),
	})

	outcomes := Validate(set, testBuildingSqft)

	require.Len(t, outcomes, len(model.CheckOrder))
	for i, o := range outcomes {
		assert.Equal(t, model.CheckOrder[i], o.CheckID)
		assert.Equal(t, model.CheckPass, o.Status, "%s: %s", o.CheckID, o.Detail)
		assert.NotEmpty(t, o.Detail)
	}
}

func TestValidate_EmptySetSkipsEverything(t *testing.T) {
	outcomes := Validate(makeSet(nil), testBuildingSqft)

	require.Len(t, outcomes, len(model.CheckOrder))
	for _, o := range outcomes {
		assert.Equal(t, model.CheckSkip, o.Status, "%s: %s", o.CheckID, o.Detail)
	}
}

func TestCheckRentArithmetic(t *testing.T) {
	tests := []struct {
		name    string
		monthly model.Scalar
		area    model.Scalar
		want    model.CheckStatus
	}{
		// 7907.17/mo over 2497 sqft implies $38.00/sqft/yr, which
		// recomputes to within a cent of the stated rent.
		{"consistent", model.Number(7907.17), model.Number(2497), model.CheckPass},
		{"round rate", model.Number(9500), model.Number(3000), model.CheckPass},
		// Over 10,000 sqft the cent-rounding of the rate moves the
		// recomputed rent by more than a dollar.
		{"off rate", model.Number(7907.17), model.Number(10000), model.CheckFail},
		{"missing rent", model.Null(), model.Number(2497), model.CheckSkip},
		{"missing area", model.Number(7907.17), model.Null(), model.CheckSkip},
		{"zero area", model.Number(7907.17), model.Number(0), model.CheckSkip},
		{"non-numeric rent", model.String("seven thousand"), model.Number(2497), model.CheckSkip},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := makeSet(map[string]model.Scalar{
				model.FieldMonthlyRent: tt.monthly,
				model.FieldLeasedSqft:  tt.area,
			})
			got := checkRentArithmetic(set)
			assert.Equal(t, model.CheckRentArithmetic, got.CheckID)
			assert.Equal(t, tt.want, got.Status, got.Detail)
		})
	}
}

func TestCheckRentArithmetic_UsesOverride(t *testing.T) {
	set := makeSet(map[string]model.Scalar{
		model.FieldMonthlyRent: model.Number(1),
		model.FieldLeasedSqft:  model.Number(2497),
	})
	set.Get(model.FieldMonthlyRent).SetOverride(model.Number(7907.17))

	got := checkRentArithmetic(set)
	assert.Equal(t, model.CheckPass, got.Status, got.Detail)
}

func TestCheckProportionateShare(t *testing.T) {
	tests := []struct {
		name     string
		stated   model.Scalar
		area     model.Scalar
		building float64
		want     model.CheckStatus
	}{
		// 2497 of 50000 sqft is 4.994%.
		{"fraction form", model.Number(0.05), model.Number(2497), testBuildingSqft, model.CheckPass},
		{"percent form normalized", model.Number(5), model.Number(2497), testBuildingSqft, model.CheckPass},
		{"stated too high", model.Number(0.08), model.Number(2497), testBuildingSqft, model.CheckFail},
		{"percent form too high", model.Number(8), model.Number(2497), testBuildingSqft, model.CheckFail},
		{"missing share", model.Null(), model.Number(2497), testBuildingSqft, model.CheckSkip},
		{"missing area", model.Number(0.05), model.Null(), testBuildingSqft, model.CheckSkip},
		{"building not configured", model.Number(0.05), model.Number(2497), 0, model.CheckSkip},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := makeSet(map[string]model.Scalar{
				model.FieldProportionate: tt.stated,
				model.FieldLeasedSqft:    tt.area,
			})
			got := checkProportionateShare(set, tt.building)
			assert.Equal(t, model.CheckProportionateShare, got.CheckID)
			assert.Equal(t, tt.want, got.Status, got.Detail)
		})
	}
}

func TestCheckDateArithmetic(t *testing.T) {
	tests := []struct {
		name  string
		start model.Scalar
		end   model.Scalar
		term  model.Scalar
		want  model.CheckStatus
	}{
		// 40 months from 2024-09-01 runs through December 2027, so the
		// expected expiration is 2027-12-31.
		{"exact", model.String("2024-09-01"), model.String("2027-12-31"), model.Number(40), model.CheckPass},
		{"one month late tolerated", model.String("2024-09-01"), model.String("2028-01-31"), model.Number(40), model.CheckPass},
		{"one month early tolerated", model.String("2024-09-01"), model.String("2027-11-30"), model.Number(40), model.CheckPass},
		{"two months late", model.String("2024-09-01"), model.String("2028-02-28"), model.Number(40), model.CheckFail},
		{"a year off", model.String("2024-09-01"), model.String("2028-12-31"), model.Number(40), model.CheckFail},
		{"mid-month start", model.String("2024-09-15"), model.String("2027-12-31"), model.Number(40), model.CheckPass},
		{"us layout", model.String("09/01/2024"), model.String("12/31/2027"), model.Number(40), model.CheckPass},
		{"prose layout", model.String("September 1, 2024"), model.String("December 31, 2027"), model.Number(40), model.CheckPass},
		{"missing start", model.Null(), model.String("2027-12-31"), model.Number(40), model.CheckSkip},
		{"missing expiration", model.String("2024-09-01"), model.Null(), model.Number(40), model.CheckSkip},
		{"missing term", model.String("2024-09-01"), model.String("2027-12-31"), model.Null(), model.CheckSkip},
		{"unparseable start", model.String("next September"), model.String("2027-12-31"), model.Number(40), model.CheckSkip},
		{"unparseable expiration", model.String("2024-09-01"), model.String("upon completion"), model.Number(40), model.CheckSkip},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := makeSet(map[string]model.Scalar{
				model.FieldLeaseStartDate:  tt.start,
				model.FieldLeaseExpiration: tt.end,
				model.FieldLeaseTermMonths: tt.term,
			})
			got := checkDateArithmetic(set)
			assert.Equal(t, model.CheckDateArithmetic, got.CheckID)
			assert.Equal(t, tt.want, got.Status, got.Detail)
		})
	}
}

func TestCheckEscalationConsistency(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]model.Scalar
		want   model.CheckStatus
	}{
		{"plausible percent", map[string]model.Scalar{
			model.FieldEscalationValue: model.Number(0.03),
			model.FieldEscalationKind:  model.String("percent"),
		}, model.CheckPass},
		{"percent but dollar-sized", map[string]model.Scalar{
			model.FieldEscalationValue: model.Number(3.50),
			model.FieldEscalationKind:  model.String("percent"),
		}, model.CheckFlag},
		{"dollar hiding a percentage", map[string]model.Scalar{
			model.FieldEscalationValue: model.Number(1.14),
			model.FieldEscalationKind:  model.String("dollar_psf"),
			model.FieldMonthlyRent:     model.Number(9500),
			model.FieldLeasedSqft:      model.Number(3000),
		}, model.CheckFlag},
		{"genuine dollar escalation", map[string]model.Scalar{
			model.FieldEscalationValue: model.Number(5.00),
			model.FieldEscalationKind:  model.String("dollar_psf"),
			model.FieldMonthlyRent:     model.Number(9500),
			model.FieldLeasedSqft:      model.Number(3000),
		}, model.CheckPass},
		{"stepped treated like dollar", map[string]model.Scalar{
			model.FieldEscalationValue: model.Number(1.90),
			model.FieldEscalationKind:  model.String("stepped"),
			model.FieldMonthlyRent:     model.Number(9500),
			model.FieldLeasedSqft:      model.Number(3000),
		}, model.CheckFlag},
		{"cpi has no checkable value", map[string]model.Scalar{
			model.FieldEscalationValue: model.Number(1),
			model.FieldEscalationKind:  model.String("cpi"),
		}, model.CheckPass},
		{"missing value", map[string]model.Scalar{
			model.FieldEscalationKind: model.String("percent"),
		}, model.CheckSkip},
		{"unrecognized kind", map[string]model.Scalar{
			model.FieldEscalationValue: model.Number(0.03),
			model.FieldEscalationKind:  model.String("escalates annually"),
		}, model.CheckSkip},
		{"dollar without rent context", map[string]model.Scalar{
			model.FieldEscalationValue: model.Number(1.14),
			model.FieldEscalationKind:  model.String("dollar_psf"),
		}, model.CheckSkip},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := checkEscalationConsistency(makeSet(tt.values))
			assert.Equal(t, model.CheckEscalationConsistency, got.CheckID)
			assert.Equal(t, tt.want, got.Status, got.Detail)
		})
	}
}

func TestCheckDepositSanity(t *testing.T) {
	tests := []struct {
		name    string
		deposit model.Scalar
		monthly model.Scalar
		want    model.CheckStatus
	}{
		// 17279 against 7907.17/mo is about 2.2 months of rent.
		{"typical deposit", model.Number(17279), model.Number(7907.17), model.CheckPass},
		{"half month floor", model.Number(3953.59), model.Number(7907.17), model.CheckPass},
		{"suspiciously small", model.Number(50), model.Number(7907.17), model.CheckFlag},
		{"suspiciously large", model.Number(100000), model.Number(7907.17), model.CheckFlag},
		{"missing deposit", model.Null(), model.Number(7907.17), model.CheckSkip},
		{"missing rent", model.Number(17279), model.Null(), model.CheckSkip},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := makeSet(map[string]model.Scalar{
				model.FieldSecurityDeposit: tt.deposit,
				model.FieldMonthlyRent:     tt.monthly,
			})
			got := checkDepositSanity(set)
			assert.Equal(t, model.CheckDepositSanity, got.CheckID)
			assert.Equal(t, tt.want, got.Status, got.Detail)
		})
	}
}

func TestParseLeaseDate(t *testing.T) {
	tests := []struct {
		raw  string
		ok   bool
		want string
	}{
		{"2024-09-01", true, "2024-09-01"},
		{"09/01/2024", true, "2024-09-01"},
		{"9/1/2024", true, "2024-09-01"},
		{"September 1, 2024", true, "2024-09-01"},
		{"Sep 1, 2024", true, "2024-09-01"},
		{"the first of September", false, ""},
		{"", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := parseLeaseDate(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got.Format("2006-01-02"))
			}
		})
	}
}

func TestEndOfMonth(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2027-12-01", "2027-12-31"},
		{"2024-02-10", "2024-02-29"},
		{"2025-02-10", "2025-02-28"},
		{"2024-04-30", "2024-04-30"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			in, ok := parseLeaseDate(tt.in)
			require.True(t, ok)
			assert.Equal(t, tt.want, endOfMonth(in).Format("2006-01-02"))
		})
	}
}
