package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// Message is one received queue entry. Handle is needed to delete it after handling
type Message struct {
	Body   string
	Handle string
}

// Sender exposes the write half of a message queue
type Sender interface {
	Send(ctx context.Context, body string) error
}

// Receiver exposes the consume half of a message queue
type Receiver interface {
	Receive(ctx context.Context, max int32, wait time.Duration) ([]Message, error)
	Delete(ctx context.Context, handle string) error
}

// MessageQueue represents a queue that can be produced to and consumed from
type MessageQueue interface {
	Sender
	Receiver
}

type sqsAPI interface {
	SendMessage(ctx context.Context, in *sqs.SendMessageInput, opts ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, in *sqs.ReceiveMessageInput, opts ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, in *sqs.DeleteMessageInput, opts ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// SQSMessageQueue implements MessageQueue on one SQS queue URL
type SQSMessageQueue struct {
	api      sqsAPI
	queueURL string
}

// NewSQSMessageQueue binds an SQS client to a queue URL
func NewSQSMessageQueue(client *sqs.Client, queueURL string) *SQSMessageQueue {
	return &SQSMessageQueue{
		api:      client,
		queueURL: queueURL,
	}
}

func (q *SQSMessageQueue) Send(ctx context.Context, body string) error {
	_, err := q.api.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(q.queueURL),
		MessageBody: aws.String(body),
	})
	if err != nil {
		return fmt.Errorf("failed to send message to queue(%s): %w", q.queueURL, err)
	}
	return nil
}

// Receive long polls for up to max messages, waiting at most wait
func (q *SQSMessageQueue) Receive(ctx context.Context, max int32, wait time.Duration) ([]Message, error) {
	out, err := q.api.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(q.queueURL),
		MaxNumberOfMessages: max,
		WaitTimeSeconds:     int32(wait / time.Second),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to receive from queue(%s): %w", q.queueURL, err)
	}

	msgs := make([]Message, 0, len(out.Messages))
	for _, raw := range out.Messages {
		msgs = append(msgs, Message{
			Body:   aws.ToString(raw.Body),
			Handle: aws.ToString(raw.ReceiptHandle),
		})
	}
	return msgs, nil
}

func (q *SQSMessageQueue) Delete(ctx context.Context, handle string) error {
	_, err := q.api.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(q.queueURL),
		ReceiptHandle: aws.String(handle),
	})
	if err != nil {
		return fmt.Errorf("failed to delete message from queue(%s): %w", q.queueURL, err)
	}
	return nil
}
