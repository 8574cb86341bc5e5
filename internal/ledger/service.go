package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zcarrillo/frontera-books/internal/extraction"
	"github.com/zcarrillo/frontera-books/internal/recognize"
	"github.com/zcarrillo/frontera-books/internal/recon"
)

// IDGenerator generates unique record IDs.
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time.
type TimeSource interface {
	Now() time.Time
}

type uuidGenerator struct{}

func (uuidGenerator) Generate() string {
	return uuid.NewString()
}

type defaultTimeSource struct{}

func (defaultTimeSource) Now() time.Time {
	return time.Now()
}

// texasSalesTaxRate is the fixed rate applied to invoices.
var texasSalesTaxRate = decimal.NewFromFloat(0.0825)

// Service implements the back-office operations: companies, receipt
// intake, invoices, customs logs, bank-transaction import, and
// reconciliation.
type Service struct {
	db          DB
	recognizer  recognize.Recognizer
	storage     Storage
	engine      *extraction.Engine
	matcher     *recon.Matcher
	idGenerator IDGenerator
	timeSource  TimeSource
	taxRate     decimal.Decimal
}

// NewService creates a Service with UUID identifiers and the real clock.
func NewService(db DB, recognizer recognize.Recognizer, storage Storage, engine *extraction.Engine, matcher *recon.Matcher) *Service {
	return NewServiceWithDeps(db, recognizer, storage, engine, matcher, uuidGenerator{}, defaultTimeSource{})
}

// NewServiceWithDeps creates a Service with custom dependencies for
// testing.
func NewServiceWithDeps(db DB, recognizer recognize.Recognizer, storage Storage, engine *extraction.Engine, matcher *recon.Matcher, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:          db,
		recognizer:  recognizer,
		storage:     storage,
		engine:      engine,
		matcher:     matcher,
		idGenerator: idGen,
		timeSource:  timeSrc,
		taxRate:     texasSalesTaxRate,
	}
}

// sanitizeFilename cleans up phone-generated filenames before storage.
func sanitizeFilename(filename string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)

	reg := regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	base = reg.ReplaceAllString(base, "")
	base = strings.Join(strings.Fields(base), " ")

	if len(base) > 50 {
		base = base[:50]
	}
	if base == "" {
		base = "receipt"
	}

	return base + ext
}

// CreateCompany registers a new tenant.
func (s *Service) CreateCompany(name, ein, texasSalesTaxID, rfc string) (*Company, error) {
	if name == "" {
		return nil, fmt.Errorf("company name is required")
	}
	if ein == "" {
		return nil, fmt.Errorf("company EIN is required")
	}

	now := s.timeSource.Now()
	company := &Company{
		ID:              s.idGenerator.Generate(),
		Name:            name,
		EIN:             ein,
		TexasSalesTaxID: texasSalesTaxID,
		RFC:             rfc,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.db.SaveCompany(company); err != nil {
		return nil, fmt.Errorf("saving company: %w", err)
	}
	return company, nil
}

// GetCompany retrieves a company by ID.
func (s *Service) GetCompany(id string) (*Company, error) {
	company, err := s.db.GetCompany(id)
	if err != nil {
		return nil, fmt.Errorf("getting company: %w", err)
	}
	return company, nil
}

// ListCompanies returns all companies.
func (s *Service) ListCompanies() ([]*Company, error) {
	companies, err := s.db.ListCompanies()
	if err != nil {
		return nil, fmt.Errorf("listing companies: %w", err)
	}
	return companies, nil
}

// ProcessReceipt stores an uploaded receipt, runs recognition and
// extraction, and creates a draft expense pre-filled from the result.
// Extraction never fails the upload: a garbled receipt simply comes back
// with empty fields, a low band, and the review flag set.
func (s *Service) ProcessReceipt(ctx context.Context, companyID, filename string, data []byte, contentType string) (*Expense, error) {
	if _, err := s.db.GetCompany(companyID); err != nil {
		return nil, fmt.Errorf("getting company: %w", err)
	}

	id := s.idGenerator.Generate()
	now := s.timeSource.Now()

	cleanFilename := sanitizeFilename(filename)
	savedPath, err := s.storage.Save(fmt.Sprintf("%s_%s", id, cleanFilename), data)
	if err != nil {
		return nil, fmt.Errorf("saving file: %w", err)
	}

	rawText, err := s.recognizer.Recognize(ctx, data, contentType)
	if err != nil {
		slog.Error("Failed to recognize receipt",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		s.storage.Delete(savedPath)
		return nil, fmt.Errorf("recognizing receipt: %w", err)
	}

	result := s.engine.Extract(rawText)

	expense := s.draftExpense(id, companyID, savedPath, contentType, result, now)
	if err := s.db.SaveExpense(expense); err != nil {
		s.storage.Delete(savedPath)
		return nil, fmt.Errorf("saving expense: %w", err)
	}

	slog.Info("Processed receipt",
		"expense_id", expense.ID,
		"company_id", companyID,
		"band", result.Band,
		"currency", result.Currency.Currency,
		"needs_review", expense.NeedsReview,
	)

	return expense, nil
}

// draftExpense maps an extraction result onto a new expense record.
// Absent fields stay at their zero values for a human to fill in; they
// are never inferred.
func (s *Service) draftExpense(id, companyID, savedPath, contentType string, result extraction.Result, now time.Time) *Expense {
	expense := &Expense{
		ID:          id,
		CompanyID:   companyID,
		Currency:    string(result.Currency.Currency),
		Date:        now,
		ReceiptFile: savedPath,
		ContentType: contentType,
		Extraction:  &result,
		NeedsReview: result.Band != extraction.BandHigh,
		ReconStatus: ReconUnmatched,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if result.Vendor != nil {
		expense.Vendor = result.Vendor.Name
		expense.Description = result.Vendor.Name
	}
	if result.Date != nil {
		expense.Date = result.Date.Value
	}
	if result.Total != nil {
		expense.Amount = result.Total.Value
	}
	if result.Tax != nil {
		expense.TaxAmount = result.Tax.Value
	}
	if result.Tip != nil {
		expense.TipAmount = result.Tip.Value
	}

	// Persisted expenses carry USD or MXN only; an unknown detection
	// defaults to USD and always goes to review.
	if result.Currency.Currency == extraction.CurrencyUnknown {
		expense.Currency = string(extraction.USD)
		expense.NeedsReview = true
	}

	return expense
}

// GetExpense retrieves an expense by ID.
func (s *Service) GetExpense(id string) (*Expense, error) {
	expense, err := s.db.GetExpense(id)
	if err != nil {
		return nil, fmt.Errorf("getting expense: %w", err)
	}
	return expense, nil
}

// ListExpenses returns a company's expenses.
func (s *Service) ListExpenses(companyID string) ([]*Expense, error) {
	expenses, err := s.db.ListExpenses(companyID)
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}
	return expenses, nil
}

// UpdateExpense applies a human correction to a draft expense and clears
// the review flag.
func (s *Service) UpdateExpense(id string, vendor, description, category, currency string, amount, taxAmount, tipAmount decimal.Decimal, date time.Time) (*Expense, error) {
	if amount.IsNegative() {
		return nil, fmt.Errorf("expense amount must not be negative")
	}
	if currency != string(extraction.USD) && currency != string(extraction.MXN) {
		return nil, fmt.Errorf("unsupported currency: %s", currency)
	}

	expense, err := s.db.GetExpense(id)
	if err != nil {
		return nil, fmt.Errorf("getting expense: %w", err)
	}

	expense.Vendor = vendor
	expense.Description = description
	expense.Category = category
	expense.Currency = currency
	expense.Amount = amount
	expense.TaxAmount = taxAmount
	expense.TipAmount = tipAmount
	expense.Date = date
	expense.NeedsReview = false
	expense.UpdatedAt = s.timeSource.Now()

	if err := s.db.SaveExpense(expense); err != nil {
		return nil, fmt.Errorf("saving expense: %w", err)
	}
	return expense, nil
}

// DeleteExpense removes an expense and its stored receipt file.
func (s *Service) DeleteExpense(id string) error {
	expense, err := s.db.GetExpense(id)
	if err != nil {
		return fmt.Errorf("getting expense for deletion: %w", err)
	}

	if expense.ReceiptFile != "" {
		if err := s.storage.Delete(expense.ReceiptFile); err != nil {
			slog.Warn("Failed to delete receipt file", "filename", expense.ReceiptFile, "error", err)
		}
	}

	if err := s.db.DeleteExpense(id); err != nil {
		return fmt.Errorf("deleting expense: %w", err)
	}
	return nil
}

// GetReceiptFile retrieves the stored receipt image for an expense.
func (s *Service) GetReceiptFile(id string) ([]byte, string, error) {
	expense, err := s.db.GetExpense(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting expense: %w", err)
	}
	if expense.ReceiptFile == "" {
		return nil, "", fmt.Errorf("expense %s has no receipt file", id)
	}

	data, err := s.storage.Get(expense.ReceiptFile)
	if err != nil {
		return nil, "", fmt.Errorf("getting receipt file: %w", err)
	}

	return data, expense.ContentType, nil
}

// CreateInvoice creates an invoice with the fixed-rate sales tax applied.
func (s *Service) CreateInvoice(companyID, invoiceNumber string, date time.Time, subtotal decimal.Decimal, currency, notes string) (*Invoice, error) {
	if _, err := s.db.GetCompany(companyID); err != nil {
		return nil, fmt.Errorf("getting company: %w", err)
	}
	if invoiceNumber == "" {
		return nil, fmt.Errorf("invoice number is required")
	}
	if subtotal.IsNegative() {
		return nil, fmt.Errorf("invoice subtotal must not be negative")
	}
	if currency != string(extraction.USD) && currency != string(extraction.MXN) {
		return nil, fmt.Errorf("unsupported currency: %s", currency)
	}

	now := s.timeSource.Now()
	tax := subtotal.Mul(s.taxRate).Round(2)
	invoice := &Invoice{
		ID:            s.idGenerator.Generate(),
		CompanyID:     companyID,
		InvoiceNumber: invoiceNumber,
		Date:          date,
		Subtotal:      subtotal,
		TaxAmount:     tax,
		Total:         subtotal.Add(tax),
		Currency:      currency,
		Status:        "pending",
		Notes:         notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.db.SaveInvoice(invoice); err != nil {
		return nil, fmt.Errorf("saving invoice: %w", err)
	}
	return invoice, nil
}

// ListInvoices returns a company's invoices.
func (s *Service) ListInvoices(companyID string) ([]*Invoice, error) {
	invoices, err := s.db.ListInvoices(companyID)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	return invoices, nil
}

// CreateCustomsLog records a cross-border shipment.
func (s *Service) CreateCustomsLog(companyID, expenseID, pedimentoNumber, billOfLading string, importDate time.Time, customsValue decimal.Decimal, currency, notes string) (*CustomsLog, error) {
	if _, err := s.db.GetCompany(companyID); err != nil {
		return nil, fmt.Errorf("getting company: %w", err)
	}
	if pedimentoNumber == "" {
		return nil, fmt.Errorf("pedimento number is required")
	}
	if expenseID != "" {
		if _, err := s.db.GetExpense(expenseID); err != nil {
			return nil, fmt.Errorf("getting linked expense: %w", err)
		}
	}

	now := s.timeSource.Now()
	log := &CustomsLog{
		ID:              s.idGenerator.Generate(),
		CompanyID:       companyID,
		ExpenseID:       expenseID,
		PedimentoNumber: pedimentoNumber,
		BillOfLading:    billOfLading,
		ImportDate:      importDate,
		CustomsValue:    customsValue,
		Currency:        currency,
		Status:          "in_process",
		Notes:           notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.db.SaveCustomsLog(log); err != nil {
		return nil, fmt.Errorf("saving customs log: %w", err)
	}
	return log, nil
}

// ListCustomsLogs returns a company's customs logs.
func (s *Service) ListCustomsLogs(companyID string) ([]*CustomsLog, error) {
	logs, err := s.db.ListCustomsLogs(companyID)
	if err != nil {
		return nil, fmt.Errorf("listing customs logs: %w", err)
	}
	return logs, nil
}

// TransactionImport is one bank transaction row from a statement feed.
type TransactionImport struct {
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
}

// ImportTransactions loads bank-reported transactions for a company.
// Every imported row starts unmatched.
func (s *Service) ImportTransactions(companyID string, rows []TransactionImport) ([]*BankTransaction, error) {
	if _, err := s.db.GetCompany(companyID); err != nil {
		return nil, fmt.Errorf("getting company: %w", err)
	}

	now := s.timeSource.Now()
	imported := make([]*BankTransaction, 0, len(rows))
	for _, row := range rows {
		if row.Currency != string(extraction.USD) && row.Currency != string(extraction.MXN) {
			return nil, fmt.Errorf("unsupported currency: %s", row.Currency)
		}
		txn := &BankTransaction{
			ID:          s.idGenerator.Generate(),
			CompanyID:   companyID,
			Date:        row.Date,
			Description: row.Description,
			Amount:      row.Amount,
			Currency:    row.Currency,
			ReconStatus: ReconUnmatched,
			CreatedAt:   now,
		}
		if err := s.db.SaveTransaction(txn); err != nil {
			return nil, fmt.Errorf("saving transaction: %w", err)
		}
		imported = append(imported, txn)
	}

	slog.Info("Imported bank transactions", "company_id", companyID, "count", len(imported))
	return imported, nil
}

// ListTransactions returns a company's bank transactions.
func (s *Service) ListTransactions(companyID string) ([]*BankTransaction, error) {
	txns, err := s.db.ListTransactions(companyID)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	return txns, nil
}

// Reconcile runs the matcher over one company's unmatched expenses and
// bank transactions, persists the accepted links atomically, and returns
// the run outcome including the records flagged for manual review.
func (s *Service) Reconcile(companyID string) (*recon.Result, error) {
	if _, err := s.db.GetCompany(companyID); err != nil {
		return nil, fmt.Errorf("getting company: %w", err)
	}

	expenses, err := s.db.ListExpenses(companyID)
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}
	txns, err := s.db.ListTransactions(companyID)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	snapshot := make([]recon.Expense, 0, len(expenses))
	for _, e := range expenses {
		snapshot = append(snapshot, recon.Expense{
			ID:       e.ID,
			Amount:   e.Amount,
			Currency: e.Currency,
			Date:     e.Date,
			Vendor:   e.Vendor,
			Status:   recon.Status(e.ReconStatus),
		})
	}
	txnSnapshot := make([]recon.BankTransaction, 0, len(txns))
	for _, t := range txns {
		txnSnapshot = append(txnSnapshot, recon.BankTransaction{
			ID:          t.ID,
			Amount:      t.Amount,
			Currency:    t.Currency,
			Date:        t.Date,
			Description: t.Description,
			Status:      recon.Status(t.ReconStatus),
		})
	}

	result := s.matcher.Match(snapshot, txnSnapshot)

	now := s.timeSource.Now()
	links := make([]*ReconciliationMatch, 0, len(result.Matches))
	for _, m := range result.Matches {
		links = append(links, &ReconciliationMatch{
			ID:            s.idGenerator.Generate(),
			CompanyID:     companyID,
			ExpenseID:     m.ExpenseID,
			TransactionID: m.TransactionID,
			Score:         m.Score,
			MatchedAt:     now,
		})
	}
	if err := s.db.ApplyMatches(links); err != nil {
		return nil, fmt.Errorf("applying matches: %w", err)
	}

	slog.Info("Reconciliation run complete",
		"company_id", companyID,
		"matched", len(result.Matches),
		"review_expenses", len(result.ReviewExpenseIDs),
		"review_transactions", len(result.ReviewTransactionIDs),
	)

	return &result, nil
}

// ListMatches returns a company's accepted reconciliation links.
func (s *Service) ListMatches(companyID string) ([]*ReconciliationMatch, error) {
	matches, err := s.db.ListMatches(companyID)
	if err != nil {
		return nil, fmt.Errorf("listing matches: %w", err)
	}
	return matches, nil
}

// UnlinkMatch removes an accepted link by manual override; both records
// return to the unmatched pool.
func (s *Service) UnlinkMatch(id string) error {
	if err := s.db.DeleteMatch(id); err != nil {
		return fmt.Errorf("unlinking match: %w", err)
	}
	return nil
}
