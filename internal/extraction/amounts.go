package extraction

import (
	"regexp"

	"github.com/shopspring/decimal"
)

// AmountCandidate is a monetary field candidate: the parsed value, the
// strength of the match, and the label that produced it.
type AmountCandidate struct {
	Value    decimal.Decimal `json:"value"`
	Strength float64         `json:"strength"`
	Label    string          `json:"label,omitempty"`
}

// labelPattern pairs a labeled-amount regex with the strength its label
// family carries. Primary labels are the terms receipts actually print for
// the field; secondary labels are looser synonyms.
type labelPattern struct {
	re       *regexp.Regexp
	strength float64
}

const amountToken = `\$?\s*([0-9](?:[0-9.,]*[0-9])?)`

var (
	totalPatterns = []labelPattern{
		{regexp.MustCompile(`(?i)\b(total\s+a\s+pagar|importe\s+total|grand\s+total|total)\b[\s:=.]*` + amountToken), 0.9},
		{regexp.MustCompile(`(?i)\b(amount\s+due|balance\s+due|balance)\b[\s:=.]*` + amountToken), 0.75},
	}
	taxPatterns = []labelPattern{
		{regexp.MustCompile(`(?i)\b(sales\s+tax|tax\s+amount|i\.?v\.?a\.?|tax)\b[\s:=.]*`+amountToken), 0.9},
		{regexp.MustCompile(`(?i)\b(impuestos?)\b[\s:=.]*`+amountToken), 0.75},
	}
	tipPatterns = []labelPattern{
		{regexp.MustCompile(`(?i)\b(propina|tip)\b[\s:=.]*`+amountToken), 0.9},
		{regexp.MustCompile(`(?i)\b(gratuity)\b[\s:=.]*`+amountToken), 0.75},
	}
)

// ExtractTotal finds the receipt total. When multiple lines carry a total
// label, the configured tie-break applies: receipts often restate a
// subtotal before the final total, so the last occurrence wins by default.
// An absent total is reported as absent, never inferred from other fields.
func ExtractTotal(doc Document, currency Currency, cfg Config) *AmountCandidate {
	return extractLabeledAmount(doc, totalPatterns, currency, cfg.PreferLastAmount)
}

// ExtractTax finds the tax amount ("sales tax", "IVA", "impuesto").
func ExtractTax(doc Document, currency Currency, cfg Config) *AmountCandidate {
	return extractLabeledAmount(doc, taxPatterns, currency, cfg.PreferLastAmount)
}

// ExtractTip finds the tip amount ("tip", "propina", "gratuity").
func ExtractTip(doc Document, currency Currency, cfg Config) *AmountCandidate {
	return extractLabeledAmount(doc, tipPatterns, currency, cfg.PreferLastAmount)
}

// extractLabeledAmount scans every line for amounts adjacent to a label
// and picks the first or last occurrence in document order.
func extractLabeledAmount(doc Document, patterns []labelPattern, currency Currency, preferLast bool) *AmountCandidate {
	var found []AmountCandidate
	for _, line := range doc.Lines() {
		for _, p := range patterns {
			m := p.re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			value, ok := parseAmount(m[2], currency)
			if !ok {
				continue
			}
			found = append(found, AmountCandidate{
				Value:    value,
				Strength: p.strength,
				Label:    m[1],
			})
			break
		}
	}

	if len(found) == 0 {
		return nil
	}
	if preferLast {
		return &found[len(found)-1]
	}
	return &found[0]
}
