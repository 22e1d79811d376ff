package queue

import (
	"context"
	"log"
	"time"
)

// Consumer poll tuning
var (
	ReceiveBatchSize int32 = 10
	ReceiveWaitTime        = 20 * time.Second
	ReceiveBackoff         = 5 * time.Second
)

// Handler processes one message body
type Handler func(body string) error

/*
Consume long polls q and hands every message to handle. Handled messages are
deleted; messages whose handler fails stay queued for redelivery. Receive
failures back off before the next poll. Runs until ctx is canceled
*/
func Consume(ctx context.Context, q MessageQueue, handle Handler) {
	for ctx.Err() == nil {
		msgs, err := q.Receive(ctx, ReceiveBatchSize, ReceiveWaitTime)
		if err != nil {
			log.Println(err)
			time.Sleep(ReceiveBackoff)
			continue
		}

		for _, msg := range msgs {
			if err = handle(msg.Body); err != nil {
				log.Println(err)
				continue
			}
			if err = q.Delete(ctx, msg.Handle); err != nil {
				log.Println(err)
			}
		}
	}
}
