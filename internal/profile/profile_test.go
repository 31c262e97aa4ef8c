package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Deokateoer1/ksef-checklist-builder/internal/clierr"
)

func valid() Profile {
	return Profile{
		CompanySize:     SizeMedium,
		Industry:        "construction",
		ERPSystem:       ERPCustom,
		MonthlyInvoices: InvoicesMedium,
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, valid().Validate())

	// Industry is free-form, even empty.
	p := valid()
	p.Industry = ""
	assert.NoError(t, p.Validate())

	cases := map[string]func(*Profile){
		"size":     func(x *Profile) { x.CompanySize = "huge" },
		"erp":      func(x *Profile) { x.ERPSystem = "sap" },
		"invoices": func(x *Profile) { x.MonthlyInvoices = "lots" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			p := valid()
			mutate(&p)
			err := p.Validate()
			var cliErr *clierr.Error
			require.ErrorAs(t, err, &cliErr)
			assert.Equal(t, clierr.InvalidProfile, cliErr.Code)
			assert.Contains(t, cliErr.Details, "allowed")
		})
	}
}

func TestWithIndustry(t *testing.T) {
	p := valid()
	derived := p.WithIndustry("transport")

	assert.Equal(t, "transport", derived.Industry)
	assert.Equal(t, p.CompanySize, derived.CompanySize)
	assert.Equal(t, p.ERPSystem, derived.ERPSystem)
	assert.Equal(t, p.MonthlyInvoices, derived.MonthlyInvoices)

	// Original is untouched.
	assert.Equal(t, "construction", p.Industry)
}
