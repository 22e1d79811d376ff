package ocr

import (
	"context"
	"fmt"
	"log"
	"strings"

	platform "github.com/chequebase/chequebase-ai/platform"
	"github.com/chequebase/chequebase-ai/platform/queue"
)

/*
ReceiptBucket is the slice of the receipt object store the recognition
worker needs. Satisfied by cloud.S3Bucket
*/
type ReceiptBucket interface {
	Put(ctx context.Context, key string, body []byte, contentType string, tags string) error
	SetTag(ctx context.Context, key string, name string, value string) error
}

/*
RecognitionWorker turns uploaded receipt objects into recognized text
objects. For every receipt it publishes a {company}/{base}.txt sibling and
flips the receipt's processing-status tag to processed
*/
type RecognitionWorker struct {
	bucketName string
	bucket     ReceiptBucket
	recognizer TextRecognizer
}

func NewRecognitionWorker(bucketName string, bucket ReceiptBucket, recognizer TextRecognizer) *RecognitionWorker {
	return &RecognitionWorker{
		bucketName: bucketName,
		bucket:     bucket,
		recognizer: recognizer,
	}
}

// skippable filters keys that must never enter recognition
func skippable(key string) bool {
	if strings.HasSuffix(key, "/") {
		return true
	}
	if strings.HasSuffix(key, platform.RecognizedTextSuffix) {
		return true
	}
	return strings.Contains(key, platform.ReportStorageDir+"/")
}

/*
ProcessReceipt recognizes one receipt object and publishes its text.
Returns the key the text was published under
*/
func (w *RecognitionWorker) ProcessReceipt(ctx context.Context, key string) (string, error) {
	text, err := w.recognizer.RecognizeText(ctx, w.bucketName, key)
	if err != nil {
		return "", err
	}

	textKey := platform.RecognizedTextKey(key)
	if err = w.bucket.Put(ctx, textKey, []byte(text), "text/plain", ""); err != nil {
		return "", fmt.Errorf("Failed to publish recognized text for %s: %w", key, err)
	}

	if err = w.bucket.SetTag(ctx, key, platform.ProcessingStatusTag, platform.TagStatusProcessed); err != nil {
		return "", fmt.Errorf("Failed to mark %s processed: %w", key, err)
	}
	return textKey, nil
}

/*
HandleNotification consumes one bucket event notification from the upload
queue and recognizes every referenced receipt. Notifications for foreign
buckets, folder markers, and already recognized text are skipped
*/
func (w *RecognitionWorker) HandleNotification(body string) error {
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
		if skippable(object.Key) {
			continue
		}
		if _, err := w.ProcessReceipt(ctx, object.Key); err != nil {
			return err
		}
	}
	return nil
}
