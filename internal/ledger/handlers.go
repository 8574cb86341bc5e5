package ledger

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// corsError writes an error response with CORS headers set.
func corsError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	http.Error(w, message, code)
}

// setCORSHeaders sets CORS headers on a response.
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

func (s *Server) handleCreateCompany(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name            string `json:"name"`
		EIN             string `json:"ein"`
		TexasSalesTaxID string `json:"texas_sales_tax_id"`
		RFC             string `json:"rfc"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		corsError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	company, err := s.service.CreateCompany(req.Name, req.EIN, req.TexasSalesTaxID, req.RFC)
	if err != nil {
		corsError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, company)
}

func (s *Server) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	company, err := s.service.GetCompany(r.PathValue("id"))
	if err != nil {
		corsError(w, "Company not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, company)
}

func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := s.service.ListCompanies()
	if err != nil {
		slog.Error("Error listing companies", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, companies)
}

// handleUploadReceipt accepts a multipart receipt upload and creates a
// draft expense from the extraction result.
func (s *Server) handleUploadReceipt(w http.ResponseWriter, r *http.Request) {
	// 50MB cap to accommodate high-resolution phone photos.
	if err := r.ParseMultipartForm(int64(50 << 20)); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		msg := "Error parsing form"
		if strings.Contains(err.Error(), "request body too large") {
			msg = "File too large (max 50MB)"
		}
		corsError(w, msg, http.StatusBadRequest)
		return
	}

	companyID := r.FormValue("company_id")
	if companyID == "" {
		corsError(w, "company_id is required", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("receipt")
	if err != nil {
		corsError(w, "receipt file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		slog.Error("Error reading uploaded file", "error", err)
		corsError(w, "Error reading file", http.StatusBadRequest)
		return
	}

	contentType := header.Header.Get("Content-Type")
	expense, err := s.service.ProcessReceipt(r.Context(), companyID, header.Filename, data, contentType)
	if err != nil {
		slog.Error("Error processing receipt", "error", err)
		corsError(w, "Error processing receipt", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, expense)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	expense, err := s.service.GetExpense(r.PathValue("id"))
	if err != nil {
		corsError(w, "Expense not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.service.ListExpenses(r.URL.Query().Get("company_id"))
	if err != nil {
		slog.Error("Error listing expenses", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Vendor      string          `json:"vendor"`
		Description string          `json:"description"`
		Category    string          `json:"category"`
		Currency    string          `json:"currency"`
		Amount      decimal.Decimal `json:"amount"`
		TaxAmount   decimal.Decimal `json:"tax_amount"`
		TipAmount   decimal.Decimal `json:"tip_amount"`
		Date        time.Time       `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		corsError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	expense, err := s.service.UpdateExpense(r.PathValue("id"), req.Vendor, req.Description, req.Category, req.Currency, req.Amount, req.TaxAmount, req.TipAmount, req.Date)
	if err != nil {
		corsError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteExpense(r.PathValue("id")); err != nil {
		corsError(w, "Expense not found", http.StatusNotFound)
		return
	}
	setCORSHeaders(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetReceiptFile(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := s.service.GetReceiptFile(r.PathValue("id"))
	if err != nil {
		corsError(w, "Receipt file not found", http.StatusNotFound)
		return
	}
	setCORSHeaders(w)
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.Write(data)
}

func (s *Server) handleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CompanyID     string          `json:"company_id"`
		InvoiceNumber string          `json:"invoice_number"`
		Date          time.Time       `json:"date"`
		Subtotal      decimal.Decimal `json:"subtotal"`
		Currency      string          `json:"currency"`
		Notes         string          `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		corsError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	invoice, err := s.service.CreateInvoice(req.CompanyID, req.InvoiceNumber, req.Date, req.Subtotal, req.Currency, req.Notes)
	if err != nil {
		corsError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, invoice)
}

func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := s.service.ListInvoices(r.URL.Query().Get("company_id"))
	if err != nil {
		slog.Error("Error listing invoices", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, invoices)
}

func (s *Server) handleCreateCustomsLog(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CompanyID       string          `json:"company_id"`
		ExpenseID       string          `json:"expense_id"`
		PedimentoNumber string          `json:"pedimento_number"`
		BillOfLading    string          `json:"bill_of_lading"`
		ImportDate      time.Time       `json:"import_date"`
		CustomsValue    decimal.Decimal `json:"customs_value"`
		Currency        string          `json:"currency"`
		Notes           string          `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		corsError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	log, err := s.service.CreateCustomsLog(req.CompanyID, req.ExpenseID, req.PedimentoNumber, req.BillOfLading, req.ImportDate, req.CustomsValue, req.Currency, req.Notes)
	if err != nil {
		corsError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, log)
}

func (s *Server) handleListCustomsLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := s.service.ListCustomsLogs(r.URL.Query().Get("company_id"))
	if err != nil {
		slog.Error("Error listing customs logs", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) handleImportTransactions(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CompanyID    string              `json:"company_id"`
		Transactions []TransactionImport `json:"transactions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		corsError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	if len(req.Transactions) == 0 {
		corsError(w, "transactions are required", http.StatusBadRequest)
		return
	}

	imported, err := s.service.ImportTransactions(req.CompanyID, req.Transactions)
	if err != nil {
		corsError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, imported)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txns, err := s.service.ListTransactions(r.URL.Query().Get("company_id"))
	if err != nil {
		slog.Error("Error listing transactions", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, txns)
}

func (s *Server) handleRunReconciliation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CompanyID string `json:"company_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		corsError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.CompanyID == "" {
		corsError(w, "company_id is required", http.StatusBadRequest)
		return
	}

	result, err := s.service.Reconcile(req.CompanyID)
	if err != nil {
		slog.Error("Error running reconciliation", "company_id", req.CompanyID, "error", err)
		corsError(w, "Error running reconciliation", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := s.service.ListMatches(r.URL.Query().Get("company_id"))
	if err != nil {
		slog.Error("Error listing matches", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

func (s *Server) handleUnlinkMatch(w http.ResponseWriter, r *http.Request) {
	if err := s.service.UnlinkMatch(r.PathValue("id")); err != nil {
		corsError(w, "Match not found", http.StatusNotFound)
		return
	}
	setCORSHeaders(w)
	w.WriteHeader(http.StatusNoContent)
}
