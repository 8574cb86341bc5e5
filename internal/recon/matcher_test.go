package recon

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

var _ = Describe("GreedyAssigner", func() {
	var assigner GreedyAssigner

	It("claims the highest score first", func() {
		assigned := assigner.Assign([]Candidate{
			{ExpenseID: "e1", TransactionID: "t1", Score: 0.80},
			{ExpenseID: "e1", TransactionID: "t2", Score: 0.95},
			{ExpenseID: "e2", TransactionID: "t2", Score: 0.85},
		})
		Expect(assigned).To(HaveLen(1))
		Expect(assigned[0].TransactionID).To(Equal("t2"))
		Expect(assigned[0].ExpenseID).To(Equal("e1"))
	})

	It("never assigns an expense or transaction twice", func() {
		assigned := assigner.Assign([]Candidate{
			{ExpenseID: "e1", TransactionID: "t1", Score: 0.95},
			{ExpenseID: "e1", TransactionID: "t2", Score: 0.90},
			{ExpenseID: "e2", TransactionID: "t1", Score: 0.90},
			{ExpenseID: "e2", TransactionID: "t2", Score: 0.85},
		})
		Expect(assigned).To(HaveLen(2))
		Expect(assigned[0]).To(Equal(Candidate{ExpenseID: "e1", TransactionID: "t1", Score: 0.95}))
		Expect(assigned[1]).To(Equal(Candidate{ExpenseID: "e2", TransactionID: "t2", Score: 0.85}))
	})

	It("breaks score ties by ID for reproducible runs", func() {
		in := []Candidate{
			{ExpenseID: "e2", TransactionID: "t1", Score: 0.9},
			{ExpenseID: "e1", TransactionID: "t1", Score: 0.9},
		}
		first := assigner.Assign(in)
		Expect(first).To(HaveLen(1))
		Expect(first[0].ExpenseID).To(Equal("e1"))

		// Input order must not matter.
		Expect(assigner.Assign([]Candidate{in[1], in[0]})).To(Equal(first))
	})
})

var _ = Describe("Matcher", func() {
	var (
		matcher      *Matcher
		expenses     []Expense
		transactions []BankTransaction
		result       Result
	)

	day := func(d int) time.Time {
		return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
	}
	amt := func(f float64) decimal.Decimal {
		return decimal.NewFromFloat(f)
	}

	BeforeEach(func() {
		var err error
		matcher, err = NewMatcher(DefaultConfig())
		Expect(err).NotTo(HaveOccurred())
		expenses = nil
		transactions = nil
	})

	JustBeforeEach(func() {
		result = matcher.Match(expenses, transactions)
	})

	When("an expense and a debit clearly correspond", func() {
		BeforeEach(func() {
			expenses = []Expense{{
				ID: "exp-1", Amount: amt(45.67), Currency: "USD",
				Date: day(15), Vendor: "Tacos El Rey", Status: StatusUnmatched,
			}}
			transactions = []BankTransaction{{
				ID: "txn-1", Amount: amt(-45.67), Currency: "USD",
				Date: day(16), Description: "TACOS EL REY #4", Status: StatusUnmatched,
			}}
		})

		It("accepts the pair", func() {
			Expect(result.Matches).To(HaveLen(1))
			Expect(result.Matches[0].ExpenseID).To(Equal("exp-1"))
			Expect(result.Matches[0].TransactionID).To(Equal("txn-1"))
			Expect(result.Matches[0].Score).To(BeNumerically("~", 0.94, 1e-9))
		})

		It("leaves the review lists empty", func() {
			Expect(result.ReviewExpenseIDs).To(BeEmpty())
			Expect(result.ReviewTransactionIDs).To(BeEmpty())
		})
	})

	When("two transactions carry the same amount on different dates", func() {
		BeforeEach(func() {
			expenses = []Expense{{
				ID: "exp-1", Amount: amt(100), Currency: "USD",
				Date: day(15), Vendor: "HEB", Status: StatusUnmatched,
			}}
			transactions = []BankTransaction{
				{ID: "txn-far", Amount: amt(-100), Currency: "USD",
					Date: day(18), Description: "HEB GROCERY", Status: StatusUnmatched},
				{ID: "txn-near", Amount: amt(-100), Currency: "USD",
					Date: day(15), Description: "HEB GROCERY", Status: StatusUnmatched},
			}
		})

		It("assigns the closer date", func() {
			Expect(result.Matches).To(HaveLen(1))
			Expect(result.Matches[0].TransactionID).To(Equal("txn-near"))
		})

		It("sends the other transaction to review", func() {
			Expect(result.ReviewTransactionIDs).To(Equal([]string{"txn-far"}))
		})
	})

	When("the best score is below the threshold", func() {
		BeforeEach(func() {
			expenses = []Expense{{
				ID: "exp-1", Amount: amt(45.67), Currency: "USD",
				Date: day(1), Vendor: "Tacos El Rey", Status: StatusUnmatched,
			}}
			transactions = []BankTransaction{{
				ID: "txn-1", Amount: amt(-45.67), Currency: "USD",
				Date: day(20), Description: "UNRELATED LLC", Status: StatusUnmatched,
			}}
		})

		It("accepts nothing", func() {
			Expect(result.Matches).To(BeEmpty())
		})

		It("sends both sides to review", func() {
			Expect(result.ReviewExpenseIDs).To(Equal([]string{"exp-1"}))
			Expect(result.ReviewTransactionIDs).To(Equal([]string{"txn-1"}))
		})
	})

	When("records are already matched or manually handled", func() {
		BeforeEach(func() {
			expenses = []Expense{
				{ID: "exp-done", Amount: amt(45.67), Currency: "USD",
					Date: day(15), Vendor: "Tacos El Rey", Status: StatusMatched},
				{ID: "exp-manual", Amount: amt(45.67), Currency: "USD",
					Date: day(15), Vendor: "Tacos El Rey", Status: StatusManual},
			}
			transactions = []BankTransaction{{
				ID: "txn-1", Amount: amt(-45.67), Currency: "USD",
				Date: day(15), Description: "TACOS EL REY", Status: StatusUnmatched,
			}}
		})

		It("skips them entirely", func() {
			Expect(result.Matches).To(BeEmpty())
			Expect(result.ReviewExpenseIDs).To(BeEmpty())
			Expect(result.ReviewTransactionIDs).To(Equal([]string{"txn-1"}))
		})
	})

	When("currencies differ", func() {
		BeforeEach(func() {
			expenses = []Expense{{
				ID: "exp-1", Amount: amt(850), Currency: "MXN",
				Date: day(15), Vendor: "Pemex", Status: StatusUnmatched,
			}}
			transactions = []BankTransaction{{
				ID: "txn-1", Amount: amt(-850), Currency: "USD",
				Date: day(15), Description: "PEMEX 0421", Status: StatusUnmatched,
			}}
		})

		It("does not pair across them", func() {
			Expect(result.Matches).To(BeEmpty())
		})
	})

	When("there is nothing to match", func() {
		It("returns an empty result", func() {
			Expect(result.Matches).To(BeEmpty())
			Expect(result.ReviewExpenseIDs).To(BeEmpty())
			Expect(result.ReviewTransactionIDs).To(BeEmpty())
		})
	})
})
