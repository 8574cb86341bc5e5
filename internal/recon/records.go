// Package recon pairs expense records with bank transaction records under
// amount, date, and vendor-text tolerance. The matcher is a pure function
// over a snapshot the caller supplies: it computes pairwise scores, commits
// a 1-to-1 assignment above a threshold, and leaves everything ambiguous
// for manual review rather than guessing.
package recon

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the reconciliation state of an expense or bank transaction.
type Status string

const (
	StatusUnmatched Status = "unmatched"
	StatusMatched   Status = "matched"
	// StatusManual marks a record claimed or excluded by a human
	// override; the matcher never touches it.
	StatusManual Status = "manual"
)

// Expense is the matcher's view of an expense record. The caller scopes
// the snapshot to one company before handing it over.
type Expense struct {
	ID       string
	Amount   decimal.Decimal
	Currency string
	Date     time.Time
	Vendor   string
	Status   Status
}

// BankTransaction is the matcher's view of a bank-reported transaction.
// Amount is signed: debits are negative. Scoring compares against the
// magnitude.
type BankTransaction struct {
	ID          string
	Amount      decimal.Decimal
	Currency    string
	Date        time.Time
	Description string
	Status      Status
}

// Candidate is a transient scored pairing of one expense and one
// transaction, with the component signals that produced the score.
// Candidates are never persisted.
type Candidate struct {
	ExpenseID     string  `json:"expense_id"`
	TransactionID string  `json:"transaction_id"`
	Score         float64 `json:"score"`
	AmountScore   float64 `json:"amount_score"`
	DateScore     float64 `json:"date_score"`
	VendorScore   float64 `json:"vendor_score"`
}

// Match is an accepted expense/transaction pairing.
type Match struct {
	ExpenseID     string  `json:"expense_id"`
	TransactionID string  `json:"transaction_id"`
	Score         float64 `json:"score"`
}

// Result is the outcome of one matcher run: accepted matches plus the
// records left over for manual review. An ID never appears in more than
// one match, and never in both a match and a review list.
type Result struct {
	Matches              []Match  `json:"matches"`
	ReviewExpenseIDs     []string `json:"review_expense_ids"`
	ReviewTransactionIDs []string `json:"review_transaction_ids"`
}
