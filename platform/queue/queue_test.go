package queue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMockMessageQueueDelivery(t *testing.T) {
	q := NewMockMessageQueue()
	ctx := context.Background()

	if err := q.Send(ctx, "first"); err != nil {
		t.Fatalf("Failed to send message: %v", err)
	}
	if err := q.Send(ctx, "second"); err != nil {
		t.Fatalf("Failed to send message: %v", err)
	}

	msgs, err := q.Receive(ctx, 1, 0)
	if err != nil {
		t.Fatalf("Failed to receive messages: %v", err)
	}
	assert.Equal(t, len(msgs), 1, "Failed to respect batch size")
	assert.Equal(t, msgs[0].Body, "first", "Failed to deliver in order")

	if err = q.Delete(ctx, msgs[0].Handle); err != nil {
		t.Fatalf("Failed to delete message: %v", err)
	}
	assert.Equal(t, len(q.Deleted()), 1, "Failed to record deletion")
}

func TestDecodeS3Event(t *testing.T) {
	body := `{
		"Records": [
			{
				"eventName": "ObjectCreated:Put",
				"s3": {
					"bucket": {"name": "receipts"},
					"object": {"key": "acme/lunch+receipt%2Bextra.pdf"}
				}
			}
		]
	}`

	objects, err := DecodeS3Event(body)
	if err != nil {
		t.Fatalf("Failed to decode event: %v", err)
	}
	if len(objects) != 1 {
		t.Fatalf("Expected 1 object, got %d", len(objects))
	}
	assert.Equal(t, objects[0].Bucket, "receipts", "Failed to decode bucket name")
	assert.Equal(t, objects[0].Key, "acme/lunch receipt+extra.pdf", "Failed to url-decode object key")
}

func TestDecodeS3EventRejectsGarbage(t *testing.T) {
	if _, err := DecodeS3Event("not json"); err == nil {
		t.Fatalf("Failed to reject malformed event body")
	}
}
