package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaShape(t *testing.T) {
	t.Parallel()

	fields := AllFields()
	assert.Len(t, fields, 27)
	assert.Equal(t, 27, SchemaSize())

	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		assert.False(t, seen[f.Name], "duplicate field %s", f.Name)
		seen[f.Name] = true
		assert.NotEmpty(t, f.Label, "field %s missing label", f.Name)
		assert.NotEmpty(t, f.Guidance, "field %s missing guidance", f.Name)
	}

	// The legacy flat-export duplicate rides alongside the primary field.
	assert.True(t, seen[FieldLeaseType])
	assert.True(t, seen[FieldExpenseStructure])
}

func TestFieldNamesOrder(t *testing.T) {
	t.Parallel()

	names := FieldNames()
	require.Len(t, names, 27)
	assert.Equal(t, FieldTenantName, names[0])

	fields := AllFields()
	for i, f := range fields {
		assert.Equal(t, f.Name, names[i])
	}
}

func TestFieldByName(t *testing.T) {
	t.Parallel()

	f, ok := FieldByName(FieldMonthlyRent)
	require.True(t, ok)
	assert.Equal(t, ValueNumber, f.Kind)

	_, ok = FieldByName("building_color")
	assert.False(t, ok)
}

func TestSubtypeParsing(t *testing.T) {
	t.Parallel()

	for _, s := range ClassificationOrder {
		parsed, ok := ParseSubtype(string(s))
		require.True(t, ok)
		assert.Equal(t, s, parsed)
		assert.NotEmpty(t, s.Label())
	}

	_, ok := ParseSubtype("GROSS")
	assert.False(t, ok)
	assert.Equal(t, SubtypeFSG, DefaultSubtype)
}

func TestParseEscalationKind(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want EscalationKind
	}{
		{"percentage", EscalationPercent},
		{"Percent", EscalationPercent},
		{"fixed dollar psf", EscalationDollarPSF},
		{"dollar_per_month", EscalationDollarMonthly},
		{"CPI", EscalationCPI},
		{"fair market value", EscalationMarket},
		{"stepped schedule", EscalationStepped},
	}

	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseEscalationKind(tc.raw)
			require.True(t, ok)
			assert.Equal(t, tc.want, got)
		})
	}

	_, ok := ParseEscalationKind("quarterly bump")
	assert.False(t, ok)
}
