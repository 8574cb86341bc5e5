package recon

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

var _ = Describe("scoring", func() {
	var (
		cfg Config
		e   Expense
		t   BankTransaction
	)

	day := func(d int) time.Time {
		return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
	}

	BeforeEach(func() {
		cfg = DefaultConfig()
		e = Expense{
			ID:       "exp-1",
			Amount:   decimal.NewFromFloat(45.67),
			Currency: "USD",
			Date:     day(15),
			Vendor:   "Tacos El Rey",
		}
		t = BankTransaction{
			ID:          "txn-1",
			Amount:      decimal.NewFromFloat(-45.67),
			Currency:    "USD",
			Date:        day(15),
			Description: "TACOS EL REY #4",
		}
	})

	Describe("amountScore", func() {
		It("is 1 when the expense equals the debit magnitude", func() {
			Expect(cfg.amountScore(e, t)).To(Equal(1.0))
		})

		It("is 1 inside the tolerance", func() {
			t.Amount = decimal.NewFromFloat(-45.68)
			Expect(cfg.amountScore(e, t)).To(Equal(1.0))
		})

		It("decays linearly between the tolerance and the max delta", func() {
			t.Amount = decimal.NewFromFloat(-45.17)
			Expect(cfg.amountScore(e, t)).To(BeNumerically("~", 50.0/99.0, 1e-9))
		})

		It("is 0 at or beyond the max delta", func() {
			t.Amount = decimal.NewFromFloat(-46.67)
			Expect(cfg.amountScore(e, t)).To(Equal(0.0))
		})

		It("is 0 across currencies", func() {
			t.Currency = "MXN"
			Expect(cfg.amountScore(e, t)).To(Equal(0.0))
		})
	})

	Describe("dateScore", func() {
		It("is 1 on the same calendar day", func() {
			Expect(cfg.dateScore(e, t)).To(Equal(1.0))
		})

		It("ignores the time of day", func() {
			t.Date = time.Date(2024, 3, 15, 23, 45, 0, 0, time.UTC)
			Expect(cfg.dateScore(e, t)).To(Equal(1.0))
		})

		It("decays linearly inside the window", func() {
			t.Date = day(16)
			Expect(cfg.dateScore(e, t)).To(BeNumerically("~", 0.8, 1e-9))
		})

		It("is 0 at the window edge", func() {
			t.Date = day(20)
			Expect(cfg.dateScore(e, t)).To(Equal(0.0))
		})
	})

	Describe("vendorSimilarity", func() {
		It("ignores case and store-number noise", func() {
			Expect(vendorSimilarity("Tacos El Rey", "TACOS EL REY #4")).To(Equal(1.0))
		})

		It("scores partial token overlap", func() {
			Expect(vendorSimilarity("Tacos El Rey", "EL REY GAS STATION")).To(BeNumerically("~", 2.0/7.0*2, 1e-9))
		})

		It("is 0 for disjoint names", func() {
			Expect(vendorSimilarity("Tacos El Rey", "HEB GROCERY")).To(Equal(0.0))
		})

		It("is 0 when a side is empty", func() {
			Expect(vendorSimilarity("", "TACOS EL REY")).To(Equal(0.0))
			Expect(vendorSimilarity("Tacos El Rey", "#4 1234")).To(Equal(0.0))
		})
	})

	Describe("scorePair", func() {
		It("blends the components with the configured weights", func() {
			t.Date = day(16)
			c := cfg.scorePair(e, t)
			Expect(c.AmountScore).To(Equal(1.0))
			Expect(c.DateScore).To(BeNumerically("~", 0.8, 1e-9))
			Expect(c.VendorScore).To(Equal(1.0))
			Expect(c.Score).To(BeNumerically("~", 0.94, 1e-9))
		})

		It("carries the pair identity", func() {
			c := cfg.scorePair(e, t)
			Expect(c.ExpenseID).To(Equal("exp-1"))
			Expect(c.TransactionID).To(Equal("txn-1"))
		})
	})
})
