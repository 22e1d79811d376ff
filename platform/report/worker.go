package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	platform "github.com/chequebase/chequebase-ai/platform"
	"github.com/chequebase/chequebase-ai/platform/ledger"
)

// ErrNoRecords indicates a report range matched no expense records
var ErrNoRecords = errors.New("No records found for the given company_id and date range")

/*
ReportBucket is the slice of the object store reports are published to.
Satisfied by cloud.S3Bucket
*/
type ReportBucket interface {
	Put(ctx context.Context, key string, body []byte, contentType string, tags string) error
}

/*
Generator builds and publishes expense reports. The wallet reader is
optional: when present, wallet activity in the report range is summarized
into the document, best effort
*/
type Generator struct {
	ledger ledger.ExpenseReader
	wallet WalletEntryReader
	bucket ReportBucket
}

func NewGenerator(expenses ledger.ExpenseReader, wallet WalletEntryReader, bucket ReportBucket) *Generator {
	return &Generator{
		ledger: expenses,
		wallet: wallet,
		bucket: bucket,
	}
}

// Generate validates a report request, queries the ledger and formats the report
func (g *Generator) Generate(ctx context.Context, req Request) (Document, error) {
	if err := ValidateRequest(req); err != nil {
		return Document{}, err
	}

	records, err := g.ledger.QueryRange(ctx, req.CompanyID, req.StartDate, req.EndDate)
	if err != nil {
		return Document{}, fmt.Errorf("Failed to query expense records: %w", err)
	}
	if len(records) == 0 {
		return Document{}, ErrNoRecords
	}

	var summary *WalletSummary
	if g.wallet != nil {
		start, err := time.Parse(platform.DateFormat, req.StartDate)
		if err != nil {
			return Document{}, fmt.Errorf("Failed to parse report range start: %w", err)
		}
		end, err := time.Parse(platform.DateFormat, req.EndDate)
		if err != nil {
			return Document{}, fmt.Errorf("Failed to parse report range end: %w", err)
		}
		entries, err := g.wallet.WalletEntries(ctx, req.CompanyID, start, end)
		if err != nil {
			log.Printf("Failed to read wallet entries for %s: %v\n", req.CompanyID, err)
		} else {
			summary = SummarizeWalletEntries(entries)
		}
	}

	return BuildDocument(req, records, summary), nil
}

// Publish stores a report document under today's report key and returns the key
func (g *Generator) Publish(ctx context.Context, doc Document) (string, error) {
	body, err := json.MarshalIndent(&doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("Failed to marshal report document: %w", err)
	}

	key := platform.ReportObjectKey(doc.CompanyID, time.Now().UTC().Format(platform.DateFormat))
	if err = g.bucket.Put(ctx, key, body, "application/json", ""); err != nil {
		return "", fmt.Errorf("Failed to save report to %s: %w", key, err)
	}
	return key, nil
}

/*
HandleRequest consumes one queued report request. Malformed and invalid
requests are dropped with a log line since redelivery cannot repair them.
Empty ranges are dropped without publishing. Backend failures surface so
the message stays queued
*/
func (g *Generator) HandleRequest(body string) error {
	var req Request
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		log.Printf("Dropping malformed report request: %v\n", err)
		return nil
	}
	if err := ValidateRequest(req); err != nil {
		log.Printf("Dropping invalid report request: %v\n", err)
		return nil
	}

	ctx := context.Background()
	doc, err := g.Generate(ctx, req)
	if err != nil {
		if errors.Is(err, ErrNoRecords) {
			log.Printf("No records found for company_id %s and date range %s to %s\n",
				req.CompanyID, req.StartDate, req.EndDate)
			return nil
		}
		return err
	}

	key, err := g.Publish(ctx, doc)
	if err != nil {
		return err
	}
	log.Printf("Successfully saved report to %s\n", key)
	return nil
}
