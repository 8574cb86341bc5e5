package recon

import (
	"fmt"
	"sort"
)

// Assigner turns a set of scored candidates into a 1-to-1 assignment.
// It is an interface so the greedy implementation can later be swapped
// for an exact assignment algorithm without touching the scoring.
// Candidates handed to Assign have already passed the acceptance
// threshold.
type Assigner interface {
	Assign(candidates []Candidate) []Candidate
}

// GreedyAssigner claims pairs highest-score-first, consuming each expense
// and each transaction at most once. Greedy maximum-weight matching is
// not optimal in general but is deterministic and good enough here.
type GreedyAssigner struct{}

// Assign sorts by score descending (ties broken by expense ID, then
// transaction ID, so runs are reproducible) and claims greedily.
func (GreedyAssigner) Assign(candidates []Candidate) []Candidate {
	sorted := make([]Candidate, len(candidates))
	copy(sorted, candidates)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		if sorted[i].ExpenseID != sorted[j].ExpenseID {
			return sorted[i].ExpenseID < sorted[j].ExpenseID
		}
		return sorted[i].TransactionID < sorted[j].TransactionID
	})

	claimedExpenses := make(map[string]bool)
	claimedTransactions := make(map[string]bool)
	var assigned []Candidate
	for _, c := range sorted {
		if claimedExpenses[c.ExpenseID] || claimedTransactions[c.TransactionID] {
			continue
		}
		claimedExpenses[c.ExpenseID] = true
		claimedTransactions[c.TransactionID] = true
		assigned = append(assigned, c)
	}
	return assigned
}

// Matcher reconciles one company's unmatched expenses against its
// unmatched bank transactions. It holds no state between runs and is safe
// to use concurrently for different companies.
type Matcher struct {
	cfg      Config
	assigner Assigner
}

// NewMatcher creates a Matcher with the greedy assigner. The Config is
// validated here: a bad configuration is fatal, not a runtime surprise.
func NewMatcher(cfg Config) (*Matcher, error) {
	return NewMatcherWithAssigner(cfg, GreedyAssigner{})
}

// NewMatcherWithAssigner creates a Matcher with a custom assignment
// strategy.
func NewMatcherWithAssigner(cfg Config, assigner Assigner) (*Matcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid matcher config: %w", err)
	}
	if assigner == nil {
		return nil, fmt.Errorf("assigner is required")
	}
	return &Matcher{cfg: cfg, assigner: assigner}, nil
}

// Match scores every unmatched expense against every unmatched
// transaction, commits the assignment at or above the acceptance
// threshold, and reports everything left over for manual review. Records
// whose status is not unmatched are skipped entirely, so re-running over
// a snapshot containing already-matched records is a no-op for them.
func (m *Matcher) Match(expenses []Expense, transactions []BankTransaction) Result {
	open := make([]Expense, 0, len(expenses))
	for _, e := range expenses {
		if e.Status == StatusUnmatched {
			open = append(open, e)
		}
	}
	openTxns := make([]BankTransaction, 0, len(transactions))
	for _, t := range transactions {
		if t.Status == StatusUnmatched {
			openTxns = append(openTxns, t)
		}
	}

	var accepted []Candidate
	for _, e := range open {
		for _, t := range openTxns {
			if c := m.cfg.scorePair(e, t); c.Score >= m.cfg.AcceptThreshold {
				accepted = append(accepted, c)
			}
		}
	}

	assigned := m.assigner.Assign(accepted)

	matchedExpenses := make(map[string]bool, len(assigned))
	matchedTransactions := make(map[string]bool, len(assigned))
	result := Result{Matches: make([]Match, 0, len(assigned))}
	for _, c := range assigned {
		matchedExpenses[c.ExpenseID] = true
		matchedTransactions[c.TransactionID] = true
		result.Matches = append(result.Matches, Match{
			ExpenseID:     c.ExpenseID,
			TransactionID: c.TransactionID,
			Score:         c.Score,
		})
	}

	for _, e := range open {
		if !matchedExpenses[e.ID] {
			result.ReviewExpenseIDs = append(result.ReviewExpenseIDs, e.ID)
		}
	}
	for _, t := range openTxns {
		if !matchedTransactions[t.ID] {
			result.ReviewTransactionIDs = append(result.ReviewTransactionIDs, t.ID)
		}
	}

	return result
}
