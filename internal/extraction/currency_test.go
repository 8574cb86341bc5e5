package extraction

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("DetectCurrency", func() {
	var (
		raw    string
		signal CurrencySignal
	)

	JustBeforeEach(func() {
		signal = DetectCurrency(NormalizeText(raw))
	})

	When("an explicit currency code is present", func() {
		BeforeEach(func() {
			raw = "STORE\nTotal: 45.67 MXN"
		})

		It("detects it with full strength", func() {
			Expect(signal.Currency).To(Equal(MXN))
			Expect(signal.Strength).To(Equal(1.0))
			Expect(signal.Reason).To(Equal("currency code"))
		})
	})

	When("both codes appear equally often", func() {
		BeforeEach(func() {
			raw = "Exchange rate USD to MXN\nIVA: 12,50\nGracias"
		})

		It("breaks the tie with keyword evidence", func() {
			Expect(signal.Currency).To(Equal(MXN))
			Expect(signal.Strength).To(Equal(1.0))
		})
	})

	When("amounts use Mexican grouping", func() {
		BeforeEach(func() {
			raw = "STORE\nTotal: $1.234,56"
		})

		It("detects MXN from the number format", func() {
			Expect(signal.Currency).To(Equal(MXN))
			Expect(signal.Strength).To(Equal(0.6))
			Expect(signal.Reason).To(Equal("number format"))
		})
	})

	When("amounts use a plain decimal point", func() {
		BeforeEach(func() {
			raw = "STORE\nTotal: $45.67"
		})

		It("detects USD from the number format", func() {
			Expect(signal.Currency).To(Equal(USD))
			Expect(signal.Strength).To(Equal(0.6))
		})
	})

	When("a decimal point coexists with Spanish keywords", func() {
		BeforeEach(func() {
			raw = "RESTAURANTE\nIVA: $3.77\nTotal: $45.67\nGracias"
		})

		It("does not treat the decimal point as a US cue", func() {
			Expect(signal.Currency).To(Equal(MXN))
			Expect(signal.Strength).To(Equal(0.3))
			Expect(signal.Reason).To(Equal("symbol + keywords"))
		})
	})

	When("only a dollar sign is present", func() {
		BeforeEach(func() {
			raw = "STORE\nTotal: $45"
		})

		It("defaults to USD with low strength", func() {
			Expect(signal.Currency).To(Equal(USD))
			Expect(signal.Strength).To(Equal(0.2))
			Expect(signal.Reason).To(Equal("symbol only"))
		})
	})

	When("no signal exists at all", func() {
		BeforeEach(func() {
			raw = "some notes\nwithout any money"
		})

		It("reports unknown with zero strength", func() {
			Expect(signal.Currency).To(Equal(CurrencyUnknown))
			Expect(signal.Strength).To(Equal(0.0))
		})
	})
})
