package generator

import (
	"fmt"
	"strings"

	"github.com/Deokateoer1/ksef-checklist-builder/internal/profile"
	"github.com/Deokateoer1/ksef-checklist-builder/internal/task"
)

// ksefKnowledgeBase grounds the model in FA-3 specifics so generated tasks
// reference concrete error codes and deadlines instead of generic advice.
const ksefKnowledgeBase = `KSeF 2.0 (FA-3) EXPERT KNOWLEDGE BASE:
- Logical structure: FA-3 replaces FA-2. Key changes in Podmiot3 nodes and footers.
- Mathematical validation: the Ministry of Finance validates ONLY the XSD schema.
  It does not check that net + VAT = gross. A broken ERP sum (e.g. 100+23=124) is
  accepted and assigned a KSeF number, which is a legal defect on the issuer's side.
- Critical error codes:
  * 21100: general structure error (missing mandatory fields).
  * 21133: content error in field P_7 (item description), e.g. forbidden characters.
  * 21157: XML size limit exceeded (1MB in an interactive session).
  * 25611: no permission for the given NIP.
  * 429: rate limit (bulk submission without queueing triggers MF throttling).
- Field P_7: 256 character limit, no emoji or certain special characters
  (a sanitizer is required before submission).
- Mandate dates: 2026-02-01 (>200M PLN VAT turnover), 2026-04-01 (everyone else),
  2027-01-01 (fiscal penal code sanctions).
- JPK_V7: the KSeF number must be reported in JPK_V7 (KSeFReferenceNumber fields).
- Currency: mandatory VAT-to-PLN conversion in P_14_x fields even for EUR/USD invoices.
- Corrections: correcting invoices only, no correcting notes. A wrong buyer NIP
  requires a correction to zero plus a new invoice.
- Offline mode (Offline24): local SHA-256 digest, mandatory QR code on printouts,
  24 hours to deliver the invoice.`

// robotCapabilities describes the local automation agent the checklist may
// delegate tasks to.
const robotCapabilities = `LOCAL AUTOMATION AGENT (port 8443):
- Endpoints: /api/stats (monitoring), /api/logs (terminal), /api/sync (trigger),
  /api/auth/rotate (token rotation).
- Local XSD 2.0 validation before submission to MF.
- Math-Guard: net/VAT/gross checksum verification, blocks broken ERP output.
- Token manager: JWT 2.0 rotation (KSeF 1.0 tokens expire).
- Bulk processing with queueing and exponential backoff to avoid error 429.
- Local XML archive keyed by assigned KSeF number.
- Multi-client data isolation for accounting offices.`

// buildPrompt assembles the generation prompt for one profile.
func buildPrompt(p profile.Profile) string {
	var b strings.Builder
	b.WriteString("Act as a senior KSeF architect. Generate an expert implementation checklist.\n\n")
	fmt.Fprintf(&b, "PROFILE: size %s, industry %q, ERP %s, %s invoices per month.\n\n",
		p.CompanySize, p.Industry, p.ERPSystem, p.MonthlyInvoices)
	b.WriteString("REQUIREMENTS:\n")
	b.WriteString("- Cover integration with the local automation agent on port 8443.\n")
	b.WriteString("- Focus on data safety and mathematical validation.\n")
	b.WriteString("- Tasks must name concrete error codes (e.g. 21133) and how to avoid them.\n")
	fmt.Fprintf(&b, "- Account for the specifics of the %q industry.\n\n", p.Industry)
	b.WriteString(ksefKnowledgeBase)
	b.WriteString("\n\n")
	b.WriteString(robotCapabilities)
	b.WriteString("\n\nReturn a JSON array of tasks (id, title, description, priority, section, ")
	b.WriteString("deadlineDays, estimatedHours, dependencies, completed, automatable, robotFunction).")
	return b.String()
}

// responseSchema constrains the model output to the task list shape.
// Mirrors the JSON tags of task.Task.
func responseSchema() map[string]any {
	return map[string]any{
		"type": "ARRAY",
		"items": map[string]any{
			"type": "OBJECT",
			"properties": map[string]any{
				"id":             map[string]any{"type": "STRING"},
				"title":          map[string]any{"type": "STRING"},
				"description":    map[string]any{"type": "STRING"},
				"priority":       map[string]any{"type": "STRING", "enum": task.Priorities()},
				"section":        map[string]any{"type": "STRING", "enum": task.Sections()},
				"deadlineDays":   map[string]any{"type": "INTEGER"},
				"estimatedHours": map[string]any{"type": "INTEGER"},
				"dependencies":   map[string]any{"type": "ARRAY", "items": map[string]any{"type": "STRING"}},
				"completed":      map[string]any{"type": "BOOLEAN"},
				"automatable":    map[string]any{"type": "BOOLEAN"},
				"robotFunction":  map[string]any{"type": "STRING"},
			},
			"required": []string{
				"id", "title", "description", "priority", "section",
				"deadlineDays", "estimatedHours", "dependencies", "completed", "automatable",
			},
		},
	}
}
