package ledger

import (
	"context"
	"fmt"
	"sync"
)

/*
ExpenseRecord is one structured expense extracted from a receipt. CompanyID
and Date form the record identity; Date uses the YYYY-MM-DD wire format so
range queries order lexicographically
*/
type ExpenseRecord struct {
	CompanyID                  string `dynamodbav:"company_id" json:"company_id"`
	Date                       string `dynamodbav:"date" json:"date"`
	Profile                    string `dynamodbav:"profile" json:"profile"`
	BusinessPurposeDescription string `dynamodbav:"business_purpose_description" json:"business_purpose_description"`
	ExpenseCountry             string `dynamodbav:"expense_country" json:"expense_country"`
	ReceiptsCurrency           string `dynamodbav:"receipts_currency" json:"receipts_currency"`
	TotalAmount                string `dynamodbav:"total_amount" json:"total_amount"`
	PaymentDate                string `dynamodbav:"payment_date" json:"payment_date"`
	PaymentMethod              string `dynamodbav:"payment_method" json:"payment_method"`
	NumberOfParticipants       string `dynamodbav:"number_of_participants" json:"number_of_participants"`
	Category                   string `dynamodbav:"category" json:"category"`
	ReceiptKey                 string `dynamodbav:"receipt_key" json:"receipt_key,omitempty"`
}

// ExpenseReader exposes all read functions for an expense store
type ExpenseReader interface {
	QueryRange(ctx context.Context, companyID string, startDate string, endDate string) ([]ExpenseRecord, error)
}

// ExpenseWriter exposes all write functions for an expense store
type ExpenseWriter interface {
	Put(ctx context.Context, record ExpenseRecord) error
}

// ExpenseStore represents the durable store of extracted expense records
type ExpenseStore interface {
	ExpenseReader
	ExpenseWriter
}

// MockExpenseStore is an in-memory ExpenseStore for tests
type MockExpenseStore struct {
	mutex   *sync.Mutex
	records []ExpenseRecord
}

func NewMockExpenseStore() *MockExpenseStore {
	return &MockExpenseStore{
		mutex:   &sync.Mutex{},
		records: make([]ExpenseRecord, 0),
	}
}

func (m *MockExpenseStore) Put(ctx context.Context, record ExpenseRecord) error {
	if record.CompanyID == "" || record.Date == "" {
		return fmt.Errorf("record is missing its identity")
	}
	m.mutex.Lock()
	m.records = append(m.records, record)
	m.mutex.Unlock()
	return nil
}

func (m *MockExpenseStore) QueryRange(ctx context.Context, companyID string, startDate string, endDate string) ([]ExpenseRecord, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	matches := make([]ExpenseRecord, 0)
	for _, record := range m.records {
		if record.CompanyID != companyID {
			continue
		}
		if record.Date < startDate || record.Date > endDate {
			continue
		}
		matches = append(matches, record)
	}
	return matches, nil
}

// Records returns everything stored, for test assertions
func (m *MockExpenseStore) Records() []ExpenseRecord {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	records := make([]ExpenseRecord, len(m.records))
	copy(records, m.records)
	return records
}
