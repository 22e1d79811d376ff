package extract

import (
	"context"
	"fmt"
	"testing"
	"time"

	platform "github.com/chequebase/chequebase-ai/platform"
	"github.com/chequebase/chequebase-ai/platform/ledger"
	"github.com/stretchr/testify/assert"
)

// mockTextBucket is a testing mock for TextBucket
type mockTextBucket struct {
	objects map[string][]byte
}

func (m *mockTextBucket) Get(ctx context.Context, key string) ([]byte, error) {
	body, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("no object under key %s", key)
	}
	return body, nil
}

// mockExtractor is a testing mock for FieldExtractor
type mockExtractor struct {
	fields    ExpenseFields
	fail      bool
	lastFile  string
	lastText  string
	extracted int
}

func (m *mockExtractor) ExtractFields(ctx context.Context, fileName string, receiptText string) (ExpenseFields, error) {
	if m.fail {
		return ExpenseFields{}, fmt.Errorf("extraction backend unavailable")
	}
	m.lastFile = fileName
	m.lastText = receiptText
	m.extracted++
	return m.fields, nil
}

func eventBody(bucket string, key string) string {
	return fmt.Sprintf(`{"Records":[{"s3":{"bucket":{"name":"%s"},"object":{"key":"%s"}}}]}`, bucket, key)
}

func TestExtractionWorkerStoresRecord(t *testing.T) {
	bucket := &mockTextBucket{objects: map[string][]byte{
		"acme/receipt.txt": []byte("CAFE MILANO\nTOTAL 12.00 EUR"),
	}}
	extractor := &mockExtractor{fields: ExpenseFields{
		Profile:     "Jane Doe",
		TotalAmount: "12.00",
		PaymentDate: "2024-03-05",
		Category:    "Meals",
	}}
	store := ledger.NewMockExpenseStore()
	worker := NewExtractionWorker("receipts", bucket, extractor, store)

	if err := worker.HandleNotification(eventBody("receipts", "acme/receipt.txt")); err != nil {
		t.Fatalf("failed to handle notification: %v", err)
	}

	assert.Equal(t, extractor.lastFile, "receipt.txt", "extractor saw the wrong file name")
	assert.Equal(t, extractor.lastText, "CAFE MILANO\nTOTAL 12.00 EUR", "extractor saw the wrong text")

	records := store.Records()
	if len(records) != 1 {
		t.Fatalf("expected 1 stored record, got %d", len(records))
	}
	assert.Equal(t, records[0].CompanyID, "acme", "record has the wrong company")
	assert.Equal(t, records[0].Date, "2024-03-05", "record date did not follow the payment date")
	assert.Equal(t, records[0].Category, "Meals", "record lost the extracted category")
	assert.Equal(t, records[0].ReceiptKey, "acme/receipt.txt", "record lost its source key")
}

func TestExtractionWorkerDefaultsUnparseableDate(t *testing.T) {
	bucket := &mockTextBucket{objects: map[string][]byte{
		"acme/receipt.txt": []byte("TOTAL 4.50"),
	}}
	extractor := &mockExtractor{fields: ExpenseFields{PaymentDate: "March 5th"}}
	store := ledger.NewMockExpenseStore()
	worker := NewExtractionWorker("receipts", bucket, extractor, store)

	if err := worker.HandleNotification(eventBody("receipts", "acme/receipt.txt")); err != nil {
		t.Fatalf("failed to handle notification: %v", err)
	}

	records := store.Records()
	if len(records) != 1 {
		t.Fatalf("expected 1 stored record, got %d", len(records))
	}
	today := time.Now().UTC().Format(platform.DateFormat)
	assert.Equal(t, records[0].Date, today, "unparseable payment date should fall back to today")
	assert.Equal(t, records[0].PaymentDate, "March 5th", "raw payment date should be preserved")
}

func TestExtractionWorkerSkipsNonTextObjects(t *testing.T) {
	extractor := &mockExtractor{}
	store := ledger.NewMockExpenseStore()
	worker := NewExtractionWorker("receipts", &mockTextBucket{}, extractor, store)

	skipped := []string{
		eventBody("receipts", "acme/receipt.pdf"),
		eventBody("receipts", "acme/expenseReports/old.txt"),
		eventBody("backups", "acme/receipt.txt"),
	}
	for _, body := range skipped {
		if err := worker.HandleNotification(body); err != nil {
			t.Fatalf("skippable notification should not error: %v", err)
		}
	}

	assert.Equal(t, extractor.extracted, 0, "no extraction should run for skipped keys")
	assert.Equal(t, len(store.Records()), 0, "no records should be stored for skipped keys")
}

func TestExtractionWorkerSurfacesLedgerFailure(t *testing.T) {
	bucket := &mockTextBucket{objects: map[string][]byte{
		"acme/receipt.txt": []byte("TOTAL 4.50"),
	}}
	worker := NewExtractionWorker("receipts", bucket, &mockExtractor{fail: true}, ledger.NewMockExpenseStore())

	if err := worker.HandleNotification(eventBody("receipts", "acme/receipt.txt")); err == nil {
		t.Fatal("expected the extraction failure to surface for redelivery")
	}
}
