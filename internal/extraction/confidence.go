package extraction

// Band is the coarse quality judgment on a whole extraction. Medium and
// low both force manual review before the expense is finalized; the band
// is the intended failure-reporting channel, not an error.
type Band string

const (
	BandHigh   Band = "high"
	BandMedium Band = "medium"
	BandLow    Band = "low"
)

// confidenceBand is the rule table that maps per-field signals to a band.
// It is deliberately a plain decision function, not a learned score, so a
// reviewer can point at the exact rule that flagged a document.
//
//	high:   vendor, date, and total all present with strength >= 0.7,
//	        and currency strength >= 0.6
//	low:    total absent, or currency unknown, or fewer than two of
//	        {vendor, date, total} present
//	medium: everything else
func confidenceBand(vendor *VendorCandidate, date *DateCandidate, total *AmountCandidate, currency CurrencySignal) Band {
	present := 0
	if vendor != nil {
		present++
	}
	if date != nil {
		present++
	}
	if total != nil {
		present++
	}

	if total == nil || currency.Currency == CurrencyUnknown || present < 2 {
		return BandLow
	}

	if vendor != nil && vendor.Strength >= 0.7 &&
		date != nil && date.Strength >= 0.7 &&
		total.Strength >= 0.7 &&
		currency.Strength >= 0.6 {
		return BandHigh
	}

	return BandMedium
}
