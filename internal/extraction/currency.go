package extraction

import (
	"regexp"
	"strings"
)

// Currency is the detected currency of a receipt. Unknown is an internal
// detection outcome only; persisted expenses are always USD or MXN.
type Currency string

const (
	USD             Currency = "USD"
	MXN             Currency = "MXN"
	CurrencyUnknown Currency = "unknown"
)

// CurrencySignal is the outcome of currency detection: the detected
// currency and how strongly the evidence supports it.
type CurrencySignal struct {
	Currency Currency `json:"currency"`
	Strength float64  `json:"strength"`
	// Reason names the signal that decided the detection, for audit.
	Reason string `json:"reason,omitempty"`
}

var (
	usdCodeRe = regexp.MustCompile(`(?i)\bUSD\b`)
	mxnCodeRe = regexp.MustCompile(`(?i)\bMXN\b`)

	// Mexican convention: period thousands, comma decimal (1.234,56).
	mxGroupedAmountRe = regexp.MustCompile(`\d{1,3}(?:\.\d{3})+,\d{2}\b`)
	// Decimal comma without grouping (45,67). Comma followed by exactly
	// two digits cannot be a thousands separator.
	mxDecimalCommaRe = regexp.MustCompile(`\d+,\d{2}(?:[^\d]|$)`)
	// US convention: comma thousands, period decimal (1,234.56).
	usGroupedAmountRe = regexp.MustCompile(`\d{1,3}(?:,\d{3})+\.\d{2}\b`)
	// Plain decimal point (45.67). Weak on its own, so grouped Mexican
	// cues outvote it when both appear.
	usDecimalPointRe = regexp.MustCompile(`\d+\.\d{2}\b`)
)

// Keyword hints, lowercased. Taken from the vocabulary that shows up on
// receipts from each side of the border.
var (
	mxnHints = []string{"iva", "i.v.a", "impuesto", "propina", "peso", "pesos", "rfc", "total a pagar", "gracias", "factura"}
	usdHints = []string{"sales tax", "dollar", "dollars", "thank you", "gratuity"}
)

// DetectCurrency inspects a normalized document for currency signals in
// priority order: explicit ISO code, locale-specific number formatting,
// then a dollar sign with keyword corroboration. No signal at all yields
// CurrencyUnknown with zero strength.
func DetectCurrency(doc Document) CurrencySignal {
	text := doc.text()
	lower := strings.ToLower(text)

	// 1. Explicit currency code anywhere in the document.
	usdCodes := len(usdCodeRe.FindAllString(text, -1))
	mxnCodes := len(mxnCodeRe.FindAllString(text, -1))
	switch {
	case mxnCodes > usdCodes:
		return CurrencySignal{Currency: MXN, Strength: 1.0, Reason: "currency code"}
	case usdCodes > mxnCodes:
		return CurrencySignal{Currency: USD, Strength: 1.0, Reason: "currency code"}
	case usdCodes > 0:
		// Both codes, equally often. Let keyword evidence break the tie.
		if countHints(lower, mxnHints) > countHints(lower, usdHints) {
			return CurrencySignal{Currency: MXN, Strength: 1.0, Reason: "currency code"}
		}
		return CurrencySignal{Currency: USD, Strength: 1.0, Reason: "currency code"}
	}

	// 2. Number formatting convention. A plain decimal point is also
	// common on Mexican receipts, so it only counts as a US cue when no
	// Spanish keyword evidence contradicts it.
	mxCues := len(mxGroupedAmountRe.FindAllString(text, -1)) + len(mxDecimalCommaRe.FindAllString(text, -1))
	usCues := len(usGroupedAmountRe.FindAllString(text, -1))
	if countHints(lower, mxnHints) == 0 {
		usCues += len(usDecimalPointRe.FindAllString(text, -1))
	}
	switch {
	case mxCues > usCues:
		return CurrencySignal{Currency: MXN, Strength: 0.6, Reason: "number format"}
	case usCues > 0:
		return CurrencySignal{Currency: USD, Strength: 0.6, Reason: "number format"}
	}

	// 3. Dollar sign is ambiguous between USD and MXN; keyword evidence
	// decides which side it corroborates.
	if strings.Contains(text, "$") {
		mxHits := countHints(lower, mxnHints)
		usHits := countHints(lower, usdHints)
		switch {
		case mxHits > usHits:
			return CurrencySignal{Currency: MXN, Strength: 0.3, Reason: "symbol + keywords"}
		case usHits > 0:
			return CurrencySignal{Currency: USD, Strength: 0.3, Reason: "symbol + keywords"}
		default:
			return CurrencySignal{Currency: USD, Strength: 0.2, Reason: "symbol only"}
		}
	}

	return CurrencySignal{Currency: CurrencyUnknown, Strength: 0}
}

func countHints(lower string, hints []string) int {
	n := 0
	for _, h := range hints {
		n += strings.Count(lower, h)
	}
	return n
}
