package extraction

import (
	"regexp"
	"strings"
)

// VendorCandidate is the vendor-name field candidate.
type VendorCandidate struct {
	Name     string  `json:"name"`
	Strength float64 `json:"strength"`
	// Line is the zero-based line the name was found on.
	Line int `json:"line"`
}

// Boilerplate terms that lead receipts but are never the vendor name.
var vendorSkipTerms = []string{
	"receipt", "recibo", "invoice", "factura", "ticket", "nota",
	"original", "servicio", "service", "thank you", "gracias",
	"welcome", "bienvenido",
}

var (
	// Lines that are nothing but amounts, dates, and separators.
	nonNameLineRe = regexp.MustCompile(`^[\d\s$.,:/#*=_-]+$`)
	leadingNoise  = regexp.MustCompile(`^[^0-9A-Za-zÁÉÍÓÚÑáéíóúñ]+`)
	trailingNoise = regexp.MustCompile(`[^0-9A-Za-zÁÉÍÓÚÑáéíóúñ.]+$`)

	vendorScanLines  = 10
	vendorMaxNameLen = 30
)

// ExtractVendor picks the vendor name: the first head-of-document line that
// is not an amount, a date, or boilerplate. Slogans tend to run long, so a
// reasonably short line is preferred over an earlier long one. Strength
// decays the further down the document the name is found, reflecting that
// vendor names lead receipts.
func ExtractVendor(doc Document) *VendorCandidate {
	lines := doc.Lines()
	limit := min(len(lines), vendorScanLines)

	type candidate struct {
		name string
		line int
	}
	var candidates []candidate
	for i := 0; i < limit; i++ {
		line := lines[i]
		if len(line) < 3 || nonNameLineRe.MatchString(line) {
			continue
		}
		if containsAnyFold(line, vendorSkipTerms) {
			continue
		}
		candidates = append(candidates, candidate{name: line, line: i})
	}

	if len(candidates) == 0 {
		return nil
	}

	best := candidates[0]
	for _, c := range candidates {
		if len(c.name) < vendorMaxNameLen {
			best = c
			break
		}
	}

	name := leadingNoise.ReplaceAllString(best.name, "")
	name = trailingNoise.ReplaceAllString(name, "")
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	if len(name) > 255 {
		name = name[:255]
	}

	strength := 0.9 - 0.08*float64(best.line)
	if strength < 0.3 {
		strength = 0.3
	}

	return &VendorCandidate{Name: name, Strength: strength, Line: best.line}
}

func containsAnyFold(s string, terms []string) bool {
	lower := strings.ToLower(s)
	for _, t := range terms {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}
