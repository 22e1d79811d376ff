package extract

import (
	"context"
	"log"
	"path"
	"strings"
	"time"

	platform "github.com/chequebase/chequebase-ai/platform"
	"github.com/chequebase/chequebase-ai/platform/ledger"
	"github.com/chequebase/chequebase-ai/platform/queue"
)

/*
TextBucket is the slice of the receipt object store the extraction worker
needs. Satisfied by cloud.S3Bucket
*/
type TextBucket interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

/*
ExtractionWorker turns recognized text objects into structured expense
records. The text object key carries the record identity: the company is the
key's leading directory and the record date is the extracted payment date
when it parses, today otherwise
*/
type ExtractionWorker struct {
	bucketName string
	bucket     TextBucket
	extractor  FieldExtractor
	ledger     ledger.ExpenseWriter
}

func NewExtractionWorker(bucketName string, bucket TextBucket, extractor FieldExtractor, writer ledger.ExpenseWriter) *ExtractionWorker {
	return &ExtractionWorker{
		bucketName: bucketName,
		bucket:     bucket,
		extractor:  extractor,
		ledger:     writer,
	}
}

// extractable filters for recognized text objects outside the report directory
func extractable(key string) bool {
	if !strings.HasSuffix(key, platform.RecognizedTextSuffix) {
		return false
	}
	return !strings.Contains(key, platform.ReportStorageDir+"/")
}

func resolveRecordDate(paymentDate string) string {
	if _, err := time.Parse(platform.DateFormat, paymentDate); err == nil {
		return paymentDate
	}
	return time.Now().UTC().Format(platform.DateFormat)
}

// ProcessText extracts one text object and stores the resulting expense record
func (w *ExtractionWorker) ProcessText(ctx context.Context, key string) (ledger.ExpenseRecord, error) {
	companyID, err := platform.KeyCompany(key)
	if err != nil {
		return ledger.ExpenseRecord{}, err
	}

	text, err := w.bucket.Get(ctx, key)
	if err != nil {
		return ledger.ExpenseRecord{}, err
	}

	fields, err := w.extractor.ExtractFields(ctx, path.Base(key), string(text))
	if err != nil {
		return ledger.ExpenseRecord{}, err
	}

	record := ledger.ExpenseRecord{
		CompanyID:                  companyID,
		Date:                       resolveRecordDate(fields.PaymentDate),
		Profile:                    fields.Profile,
		BusinessPurposeDescription: fields.BusinessPurposeDescription,
		ExpenseCountry:             fields.ExpenseCountry,
		ReceiptsCurrency:           fields.ReceiptsCurrency,
		TotalAmount:                fields.TotalAmount,
		PaymentDate:                fields.PaymentDate,
		PaymentMethod:              fields.PaymentMethod,
		NumberOfParticipants:       fields.NumberOfParticipants,
		Category:                   fields.Category,
		ReceiptKey:                 key,
	}
	if err = w.ledger.Put(ctx, record); err != nil {
		return ledger.ExpenseRecord{}, err
	}
	return record, nil
}

/*
HandleNotification consumes one bucket event notification from the text
queue and extracts every referenced text object. Notifications for foreign
buckets and non-text keys are skipped
*/
func (w *ExtractionWorker) HandleNotification(body string) error {
	objects, err := queue.DecodeS3Event(body)
	if err != nil {
		return err
	}

	ctx := context.Background()
	for _, object := range objects {
		if object.Bucket != w.bucketName {
			log.Printf("Skipping notification for foreign bucket %s\n", object.Bucket)
			continue
		}
		if !extractable(object.Key) {
			continue
		}
		if _, err := w.ProcessText(ctx, object.Key); err != nil {
			return err
		}
	}
	return nil
}
