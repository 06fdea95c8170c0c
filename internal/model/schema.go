package model

// ValueKind hints the expected value shape of a schema field. It steers
// prompt guidance only; extraction never rejects a mismatched kind.
type ValueKind string

const (
	ValueText    ValueKind = "text"
	ValueNumber  ValueKind = "number"
	ValueBoolean ValueKind = "boolean"
	ValueDate    ValueKind = "date" // ISO 8601 (YYYY-MM-DD)
	ValueEnum    ValueKind = "enum"
)

// Field describes one metric of the lease abstract schema.
type Field struct {
	Name     string    // unique identifier (snake_case)
	Label    string    // reviewer-facing label
	Kind     ValueKind // expected value shape
	Guidance string    // extraction guidance included in the prompt
}

// Canonical field names referenced by correctors and validators.
const (
	FieldTenantName        = "tenant_name"
	FieldLandlordName      = "landlord_name"
	FieldPropertyAddress   = "property_address"
	FieldSuite             = "suite"
	FieldLeasedSqft        = "leased_sqft"
	FieldLeaseType         = "lease_type"
	FieldExpenseStructure  = "expense_structure" // legacy duplicate of lease_type
	FieldLeaseStartDate    = "lease_start_date"
	FieldLeaseExpiration   = "lease_expiration_date"
	FieldLeaseTermMonths   = "lease_term_months"
	FieldMonthlyRent       = "starting_monthly_rent"
	FieldAnnualRentPSF     = "base_rent_annual_psf"
	FieldEscalationValue   = "escalation_value"
	FieldEscalationKind    = "escalation_kind"
	FieldEscalationFreq    = "escalation_frequency_months"
	FieldSecurityDeposit   = "security_deposit"
	FieldProportionate     = "proportionate_share"
	FieldFreeRentMonths    = "free_rent_months"
	FieldTIAllowancePSF    = "tenant_improvement_psf"
	FieldRenewalOptions    = "renewal_option_count"
	FieldRenewalTermMonths = "renewal_term_months"
	FieldRenewalNotice     = "renewal_notice_months"
	FieldROFO              = "rofo"
	FieldROFR              = "rofr"
	FieldParkingSpaces     = "parking_spaces"
	FieldPermittedUse      = "permitted_use"
	FieldGuarantor         = "guarantor"
)

// AllFields returns the full abstract schema in canonical order. Every
// pipeline result carries exactly these names, in this order.
func AllFields() []Field {
	return schemaFields
}

// FieldNames returns the canonical field names in schema order.
func FieldNames() []string {
	names := make([]string, len(schemaFields))
	for i, f := range schemaFields {
		names[i] = f.Name
	}
	return names
}

// FieldByName returns the schema entry for a name.
func FieldByName(name string) (Field, bool) {
	f, ok := schemaIndex[name]
	return f, ok
}

// SchemaSize is the number of fields in the abstract schema.
func SchemaSize() int {
	return len(schemaFields)
}

var schemaFields = []Field{
	{
		Name: FieldTenantName, Label: "Tenant", Kind: ValueText,
		Guidance: "Full legal name of the tenant entity as written in the preamble or signature block.",
	},
	{
		Name: FieldLandlordName, Label: "Landlord", Kind: ValueText,
		Guidance: "Full legal name of the landlord entity as written in the preamble or signature block.",
	},
	{
		Name: FieldPropertyAddress, Label: "Property Address", Kind: ValueText,
		Guidance: "Street address of the leased property including city and state.",
	},
	{
		Name: FieldSuite, Label: "Suite", Kind: ValueText,
		Guidance: "Suite, unit, or space designation of the leased premises.",
	},
	{
		Name: FieldLeasedSqft, Label: "Leased Area (sqft)", Kind: ValueNumber,
		Guidance: "Rentable square footage of the leased premises as a raw number.",
	},
	{
		Name: FieldLeaseType, Label: "Lease Type", Kind: ValueEnum,
		Guidance: "Expense structure code: NNN, FSG, MG, IG, or ANN.",
	},
	{
		Name: FieldExpenseStructure, Label: "Expense Structure", Kind: ValueEnum,
		Guidance: "Same code as lease_type; kept as a separate field for the flat export.",
	},
	{
		Name: FieldLeaseStartDate, Label: "Commencement Date", Kind: ValueDate,
		Guidance: "Lease commencement date in YYYY-MM-DD format.",
	},
	{
		Name: FieldLeaseExpiration, Label: "Expiration Date", Kind: ValueDate,
		Guidance: "Lease expiration date in YYYY-MM-DD format.",
	},
	{
		Name: FieldLeaseTermMonths, Label: "Term (months)", Kind: ValueNumber,
		Guidance: "Initial lease term in whole months.",
	},
	{
		Name: FieldMonthlyRent, Label: "Starting Monthly Rent", Kind: ValueNumber,
		Guidance: "Base monthly rent for the first lease year in dollars, without currency symbols.",
	},
	{
		Name: FieldAnnualRentPSF, Label: "Base Rent ($/sqft/yr)", Kind: ValueNumber,
		Guidance: "Annual base rent per rentable square foot if stated.",
	},
	{
		Name: FieldEscalationValue, Label: "Escalation Value", Kind: ValueNumber,
		Guidance: "Escalation amount: a decimal fraction for percentage increases (0.03 for 3%) or a dollar figure for fixed increases.",
	},
	{
		Name: FieldEscalationKind, Label: "Escalation Kind", Kind: ValueEnum,
		Guidance: "One of: percent, dollar_psf, dollar_monthly, cpi, market, stepped.",
	},
	{
		Name: FieldEscalationFreq, Label: "Escalation Frequency (months)", Kind: ValueNumber,
		Guidance: "Months between escalations, usually 12.",
	},
	{
		Name: FieldSecurityDeposit, Label: "Security Deposit", Kind: ValueNumber,
		Guidance: "Security deposit amount in dollars.",
	},
	{
		Name: FieldProportionate, Label: "Proportionate Share", Kind: ValueNumber,
		Guidance: "Tenant's proportionate share of the building as a decimal fraction (0.05 for 5%).",
	},
	{
		Name: FieldFreeRentMonths, Label: "Free Rent (months)", Kind: ValueNumber,
		Guidance: "Number of abated rent months granted at commencement.",
	},
	{
		Name: FieldTIAllowancePSF, Label: "TI Allowance ($/sqft)", Kind: ValueNumber,
		Guidance: "Tenant improvement allowance per rentable square foot.",
	},
	{
		Name: FieldRenewalOptions, Label: "Renewal Options", Kind: ValueNumber,
		Guidance: "Number of renewal options granted to the tenant.",
	},
	{
		Name: FieldRenewalTermMonths, Label: "Renewal Term (months)", Kind: ValueNumber,
		Guidance: "Length of each renewal option in months.",
	},
	{
		Name: FieldRenewalNotice, Label: "Renewal Notice (months)", Kind: ValueNumber,
		Guidance: "Months of advance notice required to exercise a renewal option.",
	},
	{
		Name: FieldROFO, Label: "ROFO", Kind: ValueBoolean,
		Guidance: "true if the tenant holds a right of first offer on adjacent or building space.",
	},
	{
		Name: FieldROFR, Label: "ROFR", Kind: ValueBoolean,
		Guidance: "true if the tenant holds a right of first refusal on adjacent or building space.",
	},
	{
		Name: FieldParkingSpaces, Label: "Parking Spaces", Kind: ValueNumber,
		Guidance: "Number of parking spaces allocated to the tenant.",
	},
	{
		Name: FieldPermittedUse, Label: "Permitted Use", Kind: ValueText,
		Guidance: "Permitted use clause summary, e.g. 'general office use'.",
	},
	{
		Name: FieldGuarantor, Label: "Guarantor", Kind: ValueText,
		Guidance: "Name of any lease guarantor, or null when the lease is not guaranteed.",
	},
}

var schemaIndex = buildSchemaIndex()

func buildSchemaIndex() map[string]Field {
	m := make(map[string]Field, len(schemaFields))
	for _, f := range schemaFields {
		m[f.Name] = f
	}
	return m
}
