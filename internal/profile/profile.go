// Package profile defines the company profile that drives checklist generation.
package profile

import (
	"github.com/Deokateoer1/ksef-checklist-builder/internal/clierr"
)

// Profile describes the company a checklist is generated for.
// Once attached to a generated checklist it only changes through
// re-generation, never in place.
type Profile struct {
	CompanySize     string `json:"companySize"`
	Industry        string `json:"industry"`
	ERPSystem       string `json:"erpSystem"`
	MonthlyInvoices string `json:"monthlyInvoices"`
}

// Company sizes.
const (
	SizeMicro  = "micro"
	SizeSmall  = "small"
	SizeMedium = "medium"
	SizeLarge  = "large"
)

// ERP system categories.
const (
	ERPPopular    = "popular"
	ERPEnterprise = "enterprise"
	ERPCustom     = "custom"
	ERPNone       = "none"
)

// Monthly invoice volume buckets.
const (
	InvoicesLow      = "1-100"
	InvoicesMedium   = "100-1000"
	InvoicesHigh     = "1000-10000"
	InvoicesVeryHigh = "10000+"
)

// Sizes returns the allowed company size values.
func Sizes() []string {
	return []string{SizeMicro, SizeSmall, SizeMedium, SizeLarge}
}

// ERPSystems returns the allowed ERP system categories.
func ERPSystems() []string {
	return []string{ERPPopular, ERPEnterprise, ERPCustom, ERPNone}
}

// InvoiceBuckets returns the allowed monthly invoice volume buckets.
func InvoiceBuckets() []string {
	return []string{InvoicesLow, InvoicesMedium, InvoicesHigh, InvoicesVeryHigh}
}

// Validate checks the profile's enumerated fields. The industry text is
// free-form; length limits are a concern of the input surface, not the model.
func (p Profile) Validate() error {
	if !contains(Sizes(), p.CompanySize) {
		return clierr.Newf(clierr.InvalidProfile, "invalid company size %q", p.CompanySize).
			WithDetails(map[string]any{"allowed": Sizes()})
	}
	if !contains(ERPSystems(), p.ERPSystem) {
		return clierr.Newf(clierr.InvalidProfile, "invalid ERP system %q", p.ERPSystem).
			WithDetails(map[string]any{"allowed": ERPSystems()})
	}
	if !contains(InvoiceBuckets(), p.MonthlyInvoices) {
		return clierr.Newf(clierr.InvalidProfile, "invalid invoice volume %q", p.MonthlyInvoices).
			WithDetails(map[string]any{"allowed": InvoiceBuckets()})
	}
	return nil
}

// WithIndustry returns a copy of the profile with the industry replaced.
// Used by bulk generation to derive one profile per industry.
func (p Profile) WithIndustry(industry string) Profile {
	return Profile{
		CompanySize:     p.CompanySize,
		Industry:        industry,
		ERPSystem:       p.ERPSystem,
		MonthlyInvoices: p.MonthlyInvoices,
	}
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
