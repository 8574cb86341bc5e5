// Package ledger is the back-office domain: companies and their expenses,
// invoices, customs logs, and bank transactions, persisted in bbolt and
// served over HTTP. It feeds receipt uploads through the extraction engine
// and unmatched records through the reconciliation matcher.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/zcarrillo/frontera-books/internal/extraction"
)

// ReconStatus tracks whether a record has been reconciled against the
// other side of the ledger.
type ReconStatus string

const (
	ReconUnmatched ReconStatus = "unmatched"
	ReconMatched   ReconStatus = "matched"
	ReconManual    ReconStatus = "manual"
)

// Company is a tenant: a cross-border business with tax identities on
// both sides.
type Company struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// EIN is the US tax ID; RFC the Mexican one.
	EIN             string    `json:"ein"`
	TexasSalesTaxID string    `json:"texas_sales_tax_id,omitempty"`
	RFC             string    `json:"rfc,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Expense is a company expense, usually created from a scanned receipt.
// Amount is never negative and Currency is always USD or MXN.
type Expense struct {
	ID          string          `json:"id"`
	CompanyID   string          `json:"company_id"`
	Description string          `json:"description,omitempty"`
	Vendor      string          `json:"vendor,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	TipAmount   decimal.Decimal `json:"tip_amount"`
	Currency    string          `json:"currency"`
	Date        time.Time       `json:"date"`
	Category    string          `json:"category,omitempty"`

	// ReceiptFile is the stored receipt filename; Extraction the raw
	// engine output it was pre-filled from, kept for audit.
	ReceiptFile string             `json:"receipt_file,omitempty"`
	ContentType string             `json:"content_type,omitempty"`
	Extraction  *extraction.Result `json:"extraction,omitempty"`

	// NeedsReview is set whenever the extraction band was not high; the
	// record must be confirmed by a human before it is trusted.
	NeedsReview bool        `json:"needs_review"`
	ReconStatus ReconStatus `json:"recon_status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BankTransaction is a bank-reported transaction imported from a
// statement feed. Amount is signed: debits are negative.
type BankTransaction struct {
	ID          string          `json:"id"`
	CompanyID   string          `json:"company_id"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	ReconStatus ReconStatus     `json:"recon_status"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Invoice is an outgoing invoice with the fixed-rate sales tax applied at
// creation time.
type Invoice struct {
	ID            string          `json:"id"`
	CompanyID     string          `json:"company_id"`
	InvoiceNumber string          `json:"invoice_number"`
	Date          time.Time       `json:"date"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	Total         decimal.Decimal `json:"total"`
	Currency      string          `json:"currency"`
	Status        string          `json:"status"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// CustomsLog tracks a cross-border shipment through customs, optionally
// linked to the expense that paid for it.
type CustomsLog struct {
	ID              string          `json:"id"`
	CompanyID       string          `json:"company_id"`
	ExpenseID       string          `json:"expense_id,omitempty"`
	PedimentoNumber string          `json:"pedimento_number"`
	BillOfLading    string          `json:"bill_of_lading,omitempty"`
	ImportDate      time.Time       `json:"import_date"`
	CustomsValue    decimal.Decimal `json:"customs_value"`
	Currency        string          `json:"currency"`
	Status          string          `json:"status"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ReconciliationMatch is an accepted link between one expense and one
// bank transaction. At most one link exists per expense and per
// transaction; a link is removed by manual unlinking, never silently
// overwritten.
type ReconciliationMatch struct {
	ID            string    `json:"id"`
	CompanyID     string    `json:"company_id"`
	ExpenseID     string    `json:"expense_id"`
	TransactionID string    `json:"transaction_id"`
	Score         float64   `json:"score"`
	MatchedAt     time.Time `json:"matched_at"`
}
