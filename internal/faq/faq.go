// Package faq provides an offline knowledge base of KSeF 2.0 answers with
// scored keyword search. Answers are embedded; no network is involved.
package faq

// Item is one question/answer pair in the knowledge base.
type Item struct {
	ID       int      `json:"id"`
	Category string   `json:"category"`
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Keywords []string `json:"keywords"`
}

// Categories group answers by topic. CategoryRobot entries get a scoring
// bonus when the query mentions automation.
const (
	CategoryDeadlines  = "deadlines"
	CategoryPenalties  = "penalties"
	CategoryEcommerce  = "ecommerce"
	CategoryTechnical  = "technical"
	CategoryLegal      = "legal"
	CategoryRobot      = "robot"
	CategoryXML        = "xml-structure"
	CategoryIndustries = "industries"
)

// Database is the embedded FAQ content, adapted from the Ministry of
// Finance guidance and the local agent documentation.
var Database = []Item{
	{
		ID: 101, Category: CategoryDeadlines,
		Question: "When do large companies enter KSeF?",
		Answer:   "Taxpayers with turnover above 200M PLN (VAT payers) must use KSeF from 1 February 2026.",
		Keywords: []string{"deadline", "february", "2026", "large"},
	},
	{
		ID: 102, Category: CategoryDeadlines,
		Question: "When do SMEs and micro companies enter KSeF?",
		Answer:   "All remaining taxpayers must use KSeF from 1 April 2026.",
		Keywords: []string{"sme", "micro", "april", "deadline"},
	},
	{
		ID: 103, Category: CategoryPenalties,
		Question: "From when do penalties for missing KSeF invoices apply?",
		Answer:   "Financial sanctions under the fiscal penal code activate on 1 January 2027.",
		Keywords: []string{"penalties", "2027", "sanctions", "fines"},
	},
	{
		ID: 801, Category: CategoryRobot,
		Question: "Why does the automation agent use port 8443?",
		Answer:   "Port 8443 is the standard for secure HTTPS. It lets the dashboard talk to the local PostgreSQL and Redis instances without colliding with ERP systems on port 8000.",
		Keywords: []string{"port", "8443", "https", "fastapi"},
	},
	{
		ID: 802, Category: CategoryRobot,
		Question: "What is the agent's Math-Guard function?",
		Answer:   "Math-Guard is a validation layer that checks net + VAT = gross before an XML is submitted. The Ministry of Finance does not verify this, so the agent prevents mathematically broken documents from entering circulation.",
		Keywords: []string{"math", "validation", "errors", "math-guard"},
	},
	{
		ID: 803, Category: CategoryRobot,
		Question: "How does the agent handle error 429 (rate limit)?",
		Answer:   "The agent queues submissions in Redis with exponential backoff. When the Ministry rejects a connection it waits (2s, 4s, 8s...) and retries automatically.",
		Keywords: []string{"429", "rate limit", "queue", "redis", "backoff"},
	},
	{
		ID: 1301, Category: CategoryXML,
		Question: "How does FA-3 differ from FA-2?",
		Answer:   "FA-3 changes the Podmiot3 section (third parties), clarifies attachment fields (as links) and modifies payment footer fields. Parsers need updating.",
		Keywords: []string{"fa-3", "fa-2", "differences", "changes"},
	},
	{
		ID: 1302, Category: CategoryXML,
		Question: "What is the character limit of field P_7 (item name)?",
		Answer:   "256 characters. Exceeding it triggers critical error 21133 and the invoice is rejected.",
		Keywords: []string{"p_7", "limit", "description", "21133"},
	},
	{
		ID: 301, Category: CategoryEcommerce,
		Question: "Do B2C invoices go to KSeF?",
		Answer:   "No. Under the current 2.0 draft, invoices for consumers (B2C) are excluded from KSeF.",
		Keywords: []string{"b2c", "consumers", "exclusion"},
	},
	{
		ID: 302, Category: CategoryEcommerce,
		Question: "What about the OSS procedure?",
		Answer:   "Taxpayers settling under OSS issue invoices outside KSeF, unless the transactions are B2B under Polish law.",
		Keywords: []string{"oss", "vat", "procedure"},
	},
	{
		ID: 701, Category: CategoryTechnical,
		Question: "How do I avoid error 21157?",
		Answer:   "Error 21157 means the XML exceeds 1MB in an interactive session. Split the invoice or use the batch session handled by the agent.",
		Keywords: []string{"21157", "size", "xml", "batch"},
	},
	{
		ID: 702, Category: CategoryTechnical,
		Question: "What is error code 21133?",
		Answer:   "A semantic validation error in field P_7, usually caused by forbidden characters (emoji, symbols outside UTF-8). Sanitize item descriptions before submission.",
		Keywords: []string{"21133", "p_7", "characters", "utf-8"},
	},
	{
		ID: 703, Category: CategoryTechnical,
		Question: "How do I generate a JWT 2.0 token?",
		Answer:   "Tokens are generated in the taxpayer application. Tokens from version 1.0 will NOT work in 2.0; regenerate after 10 December 2025.",
		Keywords: []string{"token", "jwt", "authorization", "2.0"},
	},
	{
		ID: 1001, Category: CategoryLegal,
		Question: "Does the KSeF number go into JPK_V7M?",
		Answer:   "From 2026 JPK_V7 has a field for the 35-character KSeF number. A missing number can cost 500 PLN per record.",
		Keywords: []string{"jpk", "vat", "ksef number", "penalty"},
	},
	{
		ID: 901, Category: CategoryIndustries,
		Question: "What happens to receipts with NIP up to 450 PLN?",
		Answer:   "Once KSeF starts, a receipt with a NIP no longer counts as a simplified invoice. Every B2B sale must end with a full XML invoice in KSeF.",
		Keywords: []string{"receipt", "nip", "450", "simplified"},
	},
	{
		ID: 1101, Category: CategoryIndustries,
		Question: "Fuel and road tolls in KSeF?",
		Answer:   "Fuel card invoices will be pulled by accounting offices directly from KSeF. No more collecting receipts from drivers.",
		Keywords: []string{"fuel", "transport", "costs"},
	},
}
