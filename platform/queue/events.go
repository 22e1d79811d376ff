package queue

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/aws/aws-lambda-go/events"
)

// ObjectCreated describes one object referenced by a bucket event notification
type ObjectCreated struct {
	Bucket string
	Key    string
}

/*
DecodeS3Event parses an S3 event notification delivered through the queue
and returns the referenced objects. Object keys arrive url-encoded in
notifications and are decoded before being returned
*/
func DecodeS3Event(body string) ([]ObjectCreated, error) {
	var event events.S3Event
	if err := json.Unmarshal([]byte(body), &event); err != nil {
		return nil, fmt.Errorf("failed to decode bucket event notification: %w", err)
	}

	objects := make([]ObjectCreated, 0, len(event.Records))
	for _, record := range event.Records {
		key, err := url.QueryUnescape(record.S3.Object.Key)
		if err != nil {
			return nil, fmt.Errorf("failed to decode object key(%s): %w", record.S3.Object.Key, err)
		}
		if record.S3.Bucket.Name == "" || key == "" {
			continue
		}
		objects = append(objects, ObjectCreated{
			Bucket: record.S3.Bucket.Name,
			Key:    key,
		})
	}
	return objects, nil
}
