// Package extraction turns raw recognized receipt text into a structured,
// confidence-scored expense record. The whole pipeline is a pure function
// of its input text: same text in, same result out, no side effects, and
// no failure mode. Degraded input surfaces as a low confidence band, not
// as an error.
package extraction

import "time"

// TimeSource provides the current time. Date disambiguation prefers
// non-future readings, so tests inject a fixed source to stay
// reproducible.
type TimeSource interface {
	Now() time.Time
}

type defaultTimeSource struct{}

func (defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Config holds the extraction policy knobs. Both defaults are heuristics
// observed on real receipts rather than hard rules, so they are
// configurable.
type Config struct {
	// PreferLastAmount picks the last occurrence when several lines
	// carry the same amount label (receipts restate subtotal before the
	// final total).
	PreferLastAmount bool

	// PreferMonthFirst resolves an ambiguous numeric date as MM/DD
	// (US-biased) rather than DD/MM.
	PreferMonthFirst bool
}

// DefaultConfig returns the default extraction policy.
func DefaultConfig() Config {
	return Config{
		PreferLastAmount: true,
		PreferMonthFirst: true,
	}
}

// Result is the aggregate outcome of one extraction: every field
// candidate that was found (nil means absent), the detected currency, and
// the overall confidence band. A Result carries no database identity and
// is never mutated after Extract returns.
type Result struct {
	Vendor   *VendorCandidate `json:"vendor,omitempty"`
	Date     *DateCandidate   `json:"date,omitempty"`
	Total    *AmountCandidate `json:"total,omitempty"`
	Tax      *AmountCandidate `json:"tax,omitempty"`
	Tip      *AmountCandidate `json:"tip,omitempty"`
	Currency CurrencySignal   `json:"currency"`
	Band     Band             `json:"band"`
}

// Engine runs the extraction pipeline. It holds no mutable state and is
// safe for concurrent use across documents.
type Engine struct {
	cfg        Config
	timeSource TimeSource
}

// NewEngine creates an Engine with the real clock.
func NewEngine(cfg Config) *Engine {
	return NewEngineWithTimeSource(cfg, defaultTimeSource{})
}

// NewEngineWithTimeSource creates an Engine with an injected clock for
// testing.
func NewEngineWithTimeSource(cfg Config, ts TimeSource) *Engine {
	return &Engine{cfg: cfg, timeSource: ts}
}

// Extract runs normalization, currency detection, the field extractors,
// and confidence scoring over one raw text. Worst case for garbage input
// is a Result with every field absent and band low.
func (e *Engine) Extract(raw string) Result {
	doc := NormalizeText(raw)
	currency := DetectCurrency(doc)
	now := e.timeSource.Now()

	result := Result{
		Vendor:   ExtractVendor(doc),
		Date:     ExtractDate(doc, e.cfg, now),
		Total:    ExtractTotal(doc, currency.Currency, e.cfg),
		Tax:      ExtractTax(doc, currency.Currency, e.cfg),
		Tip:      ExtractTip(doc, currency.Currency, e.cfg),
		Currency: currency,
	}
	result.Band = confidenceBand(result.Vendor, result.Date, result.Total, result.Currency)

	return result
}
