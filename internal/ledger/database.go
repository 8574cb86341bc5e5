package ledger

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const (
	companyBucket     = "companies"
	expenseBucket     = "expenses"
	transactionBucket = "bank_transactions"
	invoiceBucket     = "invoices"
	customsBucket     = "customs_logs"
	matchBucket       = "reconciliation_matches"
)

// DB defines the persistence operations the ledger needs.
type DB interface {
	SaveCompany(company *Company) error
	GetCompany(id string) (*Company, error)
	ListCompanies() ([]*Company, error)

	SaveExpense(expense *Expense) error
	GetExpense(id string) (*Expense, error)
	ListExpenses(companyID string) ([]*Expense, error)
	DeleteExpense(id string) error

	SaveTransaction(txn *BankTransaction) error
	GetTransaction(id string) (*BankTransaction, error)
	ListTransactions(companyID string) ([]*BankTransaction, error)

	SaveInvoice(invoice *Invoice) error
	ListInvoices(companyID string) ([]*Invoice, error)

	SaveCustomsLog(log *CustomsLog) error
	ListCustomsLogs(companyID string) ([]*CustomsLog, error)

	// ApplyMatches persists accepted matches atomically: every link plus
	// both status flips commit in one transaction, and a link is only
	// written if both sides are still unmatched and unlinked.
	ApplyMatches(matches []*ReconciliationMatch) error
	ListMatches(companyID string) ([]*ReconciliationMatch, error)
	// DeleteMatch unlinks a match and returns both records to the
	// unmatched pool, in one transaction.
	DeleteMatch(id string) error

	Close() error
}

// BoltDB implements DB using bbolt.
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB opens (or creates) the database file and its buckets.
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	buckets := []string{companyBucket, expenseBucket, transactionBucket, invoiceBucket, customsBucket, matchBucket}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range buckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltDB{db: db}, nil
}

// put marshals a value into a bucket under the given key.
func (b *BoltDB) put(bucket, key string, value any) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("marshaling %s record: %w", bucket, err)
		}
		return tx.Bucket([]byte(bucket)).Put([]byte(key), data)
	})
}

// get unmarshals a value from a bucket into out.
func (b *BoltDB) get(bucket, key string, out any) error {
	return b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(bucket)).Get([]byte(key))
		if data == nil {
			return fmt.Errorf("%s record not found: %s", bucket, key)
		}
		return json.Unmarshal(data, out)
	})
}

func (b *BoltDB) SaveCompany(company *Company) error {
	return b.put(companyBucket, company.ID, company)
}

func (b *BoltDB) GetCompany(id string) (*Company, error) {
	var company Company
	if err := b.get(companyBucket, id, &company); err != nil {
		return nil, err
	}
	return &company, nil
}

func (b *BoltDB) ListCompanies() ([]*Company, error) {
	companies := make([]*Company, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(companyBucket)).ForEach(func(k, v []byte) error {
			var company Company
			if err := json.Unmarshal(v, &company); err != nil {
				return fmt.Errorf("unmarshaling company: %w", err)
			}
			companies = append(companies, &company)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return companies, nil
}

func (b *BoltDB) SaveExpense(expense *Expense) error {
	return b.put(expenseBucket, expense.ID, expense)
}

func (b *BoltDB) GetExpense(id string) (*Expense, error) {
	var expense Expense
	if err := b.get(expenseBucket, id, &expense); err != nil {
		return nil, err
	}
	return &expense, nil
}

func (b *BoltDB) ListExpenses(companyID string) ([]*Expense, error) {
	expenses := make([]*Expense, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(expenseBucket)).ForEach(func(k, v []byte) error {
			var expense Expense
			if err := json.Unmarshal(v, &expense); err != nil {
				return fmt.Errorf("unmarshaling expense: %w", err)
			}
			if companyID == "" || expense.CompanyID == companyID {
				expenses = append(expenses, &expense)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return expenses, nil
}

func (b *BoltDB) DeleteExpense(id string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(expenseBucket)).Delete([]byte(id))
	})
}

func (b *BoltDB) SaveTransaction(txn *BankTransaction) error {
	return b.put(transactionBucket, txn.ID, txn)
}

func (b *BoltDB) GetTransaction(id string) (*BankTransaction, error) {
	var txn BankTransaction
	if err := b.get(transactionBucket, id, &txn); err != nil {
		return nil, err
	}
	return &txn, nil
}

func (b *BoltDB) ListTransactions(companyID string) ([]*BankTransaction, error) {
	txns := make([]*BankTransaction, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(transactionBucket)).ForEach(func(k, v []byte) error {
			var txn BankTransaction
			if err := json.Unmarshal(v, &txn); err != nil {
				return fmt.Errorf("unmarshaling transaction: %w", err)
			}
			if companyID == "" || txn.CompanyID == companyID {
				txns = append(txns, &txn)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return txns, nil
}

func (b *BoltDB) SaveInvoice(invoice *Invoice) error {
	return b.put(invoiceBucket, invoice.ID, invoice)
}

func (b *BoltDB) ListInvoices(companyID string) ([]*Invoice, error) {
	invoices := make([]*Invoice, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(invoiceBucket)).ForEach(func(k, v []byte) error {
			var invoice Invoice
			if err := json.Unmarshal(v, &invoice); err != nil {
				return fmt.Errorf("unmarshaling invoice: %w", err)
			}
			if companyID == "" || invoice.CompanyID == companyID {
				invoices = append(invoices, &invoice)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (b *BoltDB) SaveCustomsLog(log *CustomsLog) error {
	return b.put(customsBucket, log.ID, log)
}

func (b *BoltDB) ListCustomsLogs(companyID string) ([]*CustomsLog, error) {
	logs := make([]*CustomsLog, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(customsBucket)).ForEach(func(k, v []byte) error {
			var log CustomsLog
			if err := json.Unmarshal(v, &log); err != nil {
				return fmt.Errorf("unmarshaling customs log: %w", err)
			}
			if companyID == "" || log.CompanyID == companyID {
				logs = append(logs, &log)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// ApplyMatches writes match links and flips both sides to matched inside
// a single update transaction. A crash cannot leave records
// double-claimed: either the whole batch commits or none of it does. A
// match whose expense or transaction is no longer unmatched is rejected,
// since links must never be overwritten.
func (b *BoltDB) ApplyMatches(matches []*ReconciliationMatch) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		expenses := tx.Bucket([]byte(expenseBucket))
		txns := tx.Bucket([]byte(transactionBucket))
		links := tx.Bucket([]byte(matchBucket))

		for _, match := range matches {
			expenseData := expenses.Get([]byte(match.ExpenseID))
			if expenseData == nil {
				return fmt.Errorf("expense not found: %s", match.ExpenseID)
			}
			var expense Expense
			if err := json.Unmarshal(expenseData, &expense); err != nil {
				return fmt.Errorf("unmarshaling expense: %w", err)
			}
			if expense.ReconStatus != ReconUnmatched {
				return fmt.Errorf("expense %s is already %s", expense.ID, expense.ReconStatus)
			}

			txnData := txns.Get([]byte(match.TransactionID))
			if txnData == nil {
				return fmt.Errorf("transaction not found: %s", match.TransactionID)
			}
			var txn BankTransaction
			if err := json.Unmarshal(txnData, &txn); err != nil {
				return fmt.Errorf("unmarshaling transaction: %w", err)
			}
			if txn.ReconStatus != ReconUnmatched {
				return fmt.Errorf("transaction %s is already %s", txn.ID, txn.ReconStatus)
			}

			expense.ReconStatus = ReconMatched
			expense.UpdatedAt = match.MatchedAt
			txn.ReconStatus = ReconMatched

			if err := putJSON(expenses, expense.ID, &expense); err != nil {
				return err
			}
			if err := putJSON(txns, txn.ID, &txn); err != nil {
				return err
			}
			if err := putJSON(links, match.ID, match); err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *BoltDB) ListMatches(companyID string) ([]*ReconciliationMatch, error) {
	matches := make([]*ReconciliationMatch, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(matchBucket)).ForEach(func(k, v []byte) error {
			var match ReconciliationMatch
			if err := json.Unmarshal(v, &match); err != nil {
				return fmt.Errorf("unmarshaling match: %w", err)
			}
			if companyID == "" || match.CompanyID == companyID {
				matches = append(matches, &match)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// DeleteMatch removes a link and returns both records to the unmatched
// pool in one transaction.
func (b *BoltDB) DeleteMatch(id string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		links := tx.Bucket([]byte(matchBucket))
		data := links.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("match not found: %s", id)
		}
		var match ReconciliationMatch
		if err := json.Unmarshal(data, &match); err != nil {
			return fmt.Errorf("unmarshaling match: %w", err)
		}

		expenses := tx.Bucket([]byte(expenseBucket))
		if expenseData := expenses.Get([]byte(match.ExpenseID)); expenseData != nil {
			var expense Expense
			if err := json.Unmarshal(expenseData, &expense); err != nil {
				return fmt.Errorf("unmarshaling expense: %w", err)
			}
			expense.ReconStatus = ReconUnmatched
			if err := putJSON(expenses, expense.ID, &expense); err != nil {
				return err
			}
		}

		txns := tx.Bucket([]byte(transactionBucket))
		if txnData := txns.Get([]byte(match.TransactionID)); txnData != nil {
			var txn BankTransaction
			if err := json.Unmarshal(txnData, &txn); err != nil {
				return fmt.Errorf("unmarshaling transaction: %w", err)
			}
			txn.ReconStatus = ReconUnmatched
			if err := putJSON(txns, txn.ID, &txn); err != nil {
				return err
			}
		}

		return links.Delete([]byte(id))
	})
}

// Close closes the database.
func (b *BoltDB) Close() error {
	return b.db.Close()
}

func putJSON(bucket *bbolt.Bucket, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}
	return bucket.Put([]byte(key), data)
}
