package extraction

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("NormalizeText", func() {
	It("splits into trimmed, non-empty lines", func() {
		doc := NormalizeText("  TACOS  EL REY  \r\n\r\n  123 Main St\n")
		Expect(doc.Lines()).To(Equal([]string{"TACOS EL REY", "123 Main St"}))
	})

	It("strips control characters", func() {
		doc := NormalizeText("TOTAL:\t$45.67\x07")
		Expect(doc.Lines()).To(Equal([]string{"TOTAL: $45.67"}))
	})

	It("returns an empty document for all-whitespace input", func() {
		Expect(NormalizeText("  \n \t \r\n").Empty()).To(BeTrue())
	})

	It("preserves line order", func() {
		doc := NormalizeText("first\nsecond\nthird")
		Expect(doc.Lines()).To(Equal([]string{"first", "second", "third"}))
	})
})

var _ = Describe("ExtractVendor", func() {
	extract := func(raw string) *VendorCandidate {
		return ExtractVendor(NormalizeText(raw))
	}

	It("picks the first plausible line", func() {
		v := extract("TACOS EL REY\n123 Main St")
		Expect(v).NotTo(BeNil())
		Expect(v.Name).To(Equal("TACOS EL REY"))
		Expect(v.Strength).To(BeNumerically("~", 0.9, 1e-9))
	})

	It("skips boilerplate and pure-number lines", func() {
		v := extract("*** RECIBO ***\n03/15/2024\nABARROTES DON PEPE")
		Expect(v).NotTo(BeNil())
		Expect(v.Name).To(Equal("ABARROTES DON PEPE"))
		Expect(v.Line).To(Equal(2))
	})

	It("decays strength the further down the name is found", func() {
		v := extract("$12.00\n#### ====\nTHE CORNER STORE")
		Expect(v).NotTo(BeNil())
		Expect(v.Strength).To(BeNumerically("<", 0.9))
	})

	It("prefers a short name line over an earlier slogan", func() {
		v := extract("serving the finest carnitas in all of south Texas since 1982\nTAQUERIA JALISCO")
		Expect(v).NotTo(BeNil())
		Expect(v.Name).To(Equal("TAQUERIA JALISCO"))
	})

	It("trims decorative noise around the name", func() {
		v := extract("*** LA MICHOACANA ***")
		Expect(v).NotTo(BeNil())
		Expect(v.Name).To(Equal("LA MICHOACANA"))
	})

	It("returns nil when only boilerplate is present", func() {
		Expect(extract("RECIBO\nGRACIAS\n$4.00")).To(BeNil())
	})
})

var _ = Describe("ExtractDate", func() {
	var now = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	extract := func(raw string, cfg Config) *DateCandidate {
		return ExtractDate(NormalizeText(raw), cfg, now)
	}

	It("parses ISO dates with the highest strength", func() {
		d := extract("2024-03-15", DefaultConfig())
		Expect(d).NotTo(BeNil())
		Expect(d.Value).To(Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)))
		Expect(d.Strength).To(Equal(0.95))
	})

	It("parses English month names", func() {
		d := extract("March 15, 2024", DefaultConfig())
		Expect(d).NotTo(BeNil())
		Expect(d.Value).To(Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)))
	})

	It("parses Spanish month names", func() {
		d := extract("15 de marzo de 2024", DefaultConfig())
		Expect(d).NotTo(BeNil())
		Expect(d.Value).To(Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)))
	})

	It("resolves 25/03/2024 as day-first because month 25 is impossible", func() {
		d := extract("25/03/2024", DefaultConfig())
		Expect(d).NotTo(BeNil())
		Expect(d.Value).To(Equal(time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC)))
		Expect(d.Strength).To(Equal(0.85))
	})

	It("prefers the non-future reading when only one is in the past", func() {
		// Month-first reads 2024-12-05, which is after "now".
		d := extract("12/05/2024", DefaultConfig())
		Expect(d).NotTo(BeNil())
		Expect(d.Value).To(Equal(time.Date(2024, 5, 12, 0, 0, 0, 0, time.UTC)))
		Expect(d.Strength).To(Equal(0.85))
	})

	It("falls back to the month-first bias at reduced strength", func() {
		d := extract("03/04/2024", DefaultConfig())
		Expect(d).NotTo(BeNil())
		Expect(d.Value).To(Equal(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)))
		Expect(d.Strength).To(Equal(0.6))
		Expect(d.Layout).To(Equal("numeric ambiguous"))
	})

	It("honors a day-first bias", func() {
		cfg := DefaultConfig()
		cfg.PreferMonthFirst = false
		d := extract("03/04/2024", cfg)
		Expect(d).NotTo(BeNil())
		Expect(d.Value).To(Equal(time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC)))
	})

	It("expands two-digit years", func() {
		d := extract("03/15/24", DefaultConfig())
		Expect(d).NotTo(BeNil())
		Expect(d.Value.Year()).To(Equal(2024))
	})

	It("rejects impossible calendar dates", func() {
		Expect(extract("02/30/2024 13/35/2024", DefaultConfig())).To(BeNil())
	})

	It("returns nil when no date is present", func() {
		Expect(extract("TOTAL: $45.67", DefaultConfig())).To(BeNil())
	})
})

var _ = Describe("ExtractTotal", func() {
	extract := func(raw string, currency Currency) *AmountCandidate {
		return ExtractTotal(NormalizeText(raw), currency, DefaultConfig())
	}

	It("finds a labeled total", func() {
		c := extract("TOTAL: $45.67", USD)
		Expect(c).NotTo(BeNil())
		Expect(c.Value.String()).To(Equal("45.67"))
		Expect(c.Strength).To(Equal(0.9))
	})

	It("prefers the last occurrence when the label repeats", func() {
		c := extract("Total 40.00\nTip 5.67\nTotal 45.67", USD)
		Expect(c).NotTo(BeNil())
		Expect(c.Value.String()).To(Equal("45.67"))
	})

	It("does not mistake a subtotal for the total", func() {
		c := extract("Subtotal: $41.90\nTotal: $45.67", USD)
		Expect(c).NotTo(BeNil())
		Expect(c.Value.String()).To(Equal("45.67"))
	})

	It("parses Mexican-formatted amounts under MXN", func() {
		c := extract("Total a pagar: $1.234,56", MXN)
		Expect(c).NotTo(BeNil())
		Expect(c.Value.String()).To(Equal("1234.56"))
	})

	It("treats a bare decimal comma as the decimal point under MXN", func() {
		c := extract("Total: 45,67", MXN)
		Expect(c).NotTo(BeNil())
		Expect(c.Value.String()).To(Equal("45.67"))
	})

	It("treats a comma as a thousands separator under USD", func() {
		c := extract("Total: $1,234.56", USD)
		Expect(c).NotTo(BeNil())
		Expect(c.Value.String()).To(Equal("1234.56"))
	})

	It("accepts secondary labels at lower strength", func() {
		c := extract("Amount due: 12.00", USD)
		Expect(c).NotTo(BeNil())
		Expect(c.Strength).To(Equal(0.75))
	})

	It("returns nil when no label matches", func() {
		Expect(extract("thanks for shopping\n99.99", USD)).To(BeNil())
	})
})

var _ = Describe("ExtractTax and ExtractTip", func() {
	It("finds IVA as tax", func() {
		c := ExtractTax(NormalizeText("I.V.A.: $170,28"), MXN, DefaultConfig())
		Expect(c).NotTo(BeNil())
		Expect(c.Value.String()).To(Equal("170.28"))
	})

	It("finds sales tax", func() {
		c := ExtractTax(NormalizeText("Sales Tax: $3.77"), USD, DefaultConfig())
		Expect(c).NotTo(BeNil())
		Expect(c.Value.String()).To(Equal("3.77"))
	})

	It("finds propina as tip", func() {
		c := ExtractTip(NormalizeText("Propina: 50,00"), MXN, DefaultConfig())
		Expect(c).NotTo(BeNil())
		Expect(c.Value.String()).To(Equal("50"))
	})

	It("finds gratuity at lower strength", func() {
		c := ExtractTip(NormalizeText("Gratuity 7.00"), USD, DefaultConfig())
		Expect(c).NotTo(BeNil())
		Expect(c.Strength).To(Equal(0.75))
	})
})
