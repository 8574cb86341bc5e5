package extraction

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var amountCleanupRe = regexp.MustCompile(`[^\d.,]`)

// parseAmount parses a monetary token under the separator convention of
// the given currency. Tokens carrying both separators are self-describing:
// whichever separator comes last is the decimal point, regardless of the
// detected currency.
func parseAmount(token string, currency Currency) (decimal.Decimal, bool) {
	s := amountCleanupRe.ReplaceAllString(token, "")
	if s == "" {
		return decimal.Zero, false
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			// 1.234,56: period thousands, comma decimal.
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			// 1,234.56: comma thousands.
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if currency == MXN && len(s)-lastComma-1 == 2 {
			// 45,67 under Mexican convention: decimal comma.
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastDot >= 0:
		if currency == MXN && len(s)-lastDot-1 == 3 && strings.Count(s, ".") == 1 {
			// 1.234 under Mexican convention: thousands group.
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
