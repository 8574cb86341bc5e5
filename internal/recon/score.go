package recon

import (
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// scorePair computes the component signals and the weighted blend for one
// expense/transaction pair.
func (c Config) scorePair(e Expense, t BankTransaction) Candidate {
	cand := Candidate{
		ExpenseID:     e.ID,
		TransactionID: t.ID,
		AmountScore:   c.amountScore(e, t),
		DateScore:     c.dateScore(e, t),
		VendorScore:   vendorSimilarity(e.Vendor, t.Description),
	}
	cand.Score = c.AmountWeight*cand.AmountScore +
		c.DateWeight*cand.DateScore +
		c.VendorWeight*cand.VendorScore
	return cand
}

// amountScore compares the expense amount against the transaction
// magnitude: 1.0 inside the tolerance, decaying linearly to 0 at the
// maximum delta. Cross-currency pairs score 0 outright; currency
// conversion is someone else's problem.
func (c Config) amountScore(e Expense, t BankTransaction) float64 {
	if e.Currency != t.Currency {
		return 0
	}

	diff := e.Amount.Sub(t.Amount.Abs()).Abs()
	if diff.LessThanOrEqual(c.AmountTolerance) {
		return 1
	}
	if diff.GreaterThanOrEqual(c.MaxAmountDelta) {
		return 0
	}

	span := c.MaxAmountDelta.Sub(c.AmountTolerance)
	over := diff.Sub(c.AmountTolerance)
	score, _ := decimal.NewFromInt(1).Sub(over.Div(span)).Float64()
	return score
}

// dateScore is 1.0 on the same calendar day, decaying linearly to 0 at
// the configured day window.
func (c Config) dateScore(e Expense, t BankTransaction) float64 {
	days := daysApart(e.Date, t.Date)
	if days >= c.MaxDateDeltaDays {
		return 0
	}
	return 1 - float64(days)/float64(c.MaxDateDeltaDays)
}

// daysApart compares calendar days, ignoring the time of day.
func daysApart(a, b time.Time) int {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	d := int(da.Sub(db).Hours() / 24)
	if d < 0 {
		d = -d
	}
	return d
}

// vendorSimilarity is a case-insensitive token-overlap measure (Dice
// coefficient) between the expense vendor and the bank description.
// Store numbers and other letter-free tokens are noise and are dropped,
// so "TACOS EL REY #4" matches "Tacos El Rey" perfectly. Returns 0 when
// either side is absent.
func vendorSimilarity(vendor, description string) float64 {
	a := letterTokens(vendor)
	b := letterTokens(description)
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	common := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			common++
		}
	}
	return 2 * float64(common) / float64(len(a)+len(b))
}

// letterTokens lowercases, splits on non-alphanumeric runs, and keeps
// only tokens that contain at least one letter.
func letterTokens(s string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if strings.ContainsFunc(f, unicode.IsLetter) {
			tokens[f] = struct{}{}
		}
	}
	return tokens
}
