package report

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// WalletScopes lists the wallet entry scopes that count as expense activity
var WalletScopes = []string{"wallet_transfer", "budget_transfer"}

type WalletEntryMeta struct {
	CreatedAt time.Time `bson:"createdAt"`
}

// WalletEntry is one money movement on a company wallet
type WalletEntry struct {
	Organization string          `bson:"organization"`
	Scope        string          `bson:"scope"`
	Amount       float64         `bson:"amount"`
	Currency     string          `bson:"currency"`
	Meta         WalletEntryMeta `bson:"meta"`
}

// WalletSummary condenses a range of wallet entries for the report document
type WalletSummary struct {
	EntryCount   int                `json:"entry_count"`
	TotalByScope map[string]float64 `json:"total_by_scope"`
}

// WalletEntryReader exposes all read functions for company wallet activity
type WalletEntryReader interface {
	WalletEntries(ctx context.Context, companyID string, start time.Time, end time.Time) ([]WalletEntry, error)
}

// SummarizeWalletEntries folds wallet entries into the report summary shape
func SummarizeWalletEntries(entries []WalletEntry) *WalletSummary {
	summary := &WalletSummary{
		EntryCount:   len(entries),
		TotalByScope: make(map[string]float64),
	}
	for _, entry := range entries {
		summary.TotalByScope[entry.Scope] += entry.Amount
	}
	return summary
}

func buildWalletFilter(companyID string, start time.Time, end time.Time) bson.M {
	return bson.M{
		"organization":   companyID,
		"meta.createdAt": bson.M{"$gte": start, "$lte": end},
		"scope":          bson.M{"$in": WalletScopes},
	}
}

// MongoWalletReader implements WalletEntryReader over a walletentries collection
type MongoWalletReader struct {
	entries *mongo.Collection
}

func NewMongoWalletReader(db *mongo.Database) *MongoWalletReader {
	return &MongoWalletReader{
		entries: db.Collection("walletentries"),
	}
}

func (r *MongoWalletReader) WalletEntries(ctx context.Context, companyID string, start time.Time, end time.Time) ([]WalletEntry, error) {
	cursor, err := r.entries.Find(ctx, buildWalletFilter(companyID, start, end))
	if err != nil {
		return nil, fmt.Errorf("Failed to query wallet entries: %w", err)
	}
	defer cursor.Close(ctx)

	entries := make([]WalletEntry, 0)
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("Failed to decode wallet entries: %w", err)
	}
	return entries, nil
}
