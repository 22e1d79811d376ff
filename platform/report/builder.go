package report

import (
	"github.com/chequebase/chequebase-ai/platform/ledger"
)

/*
Entry is one expense line of a client-facing report. The profile field
mirrors the owning company id, which is what report consumers key on
*/
type Entry struct {
	Profile                    string `json:"profile"`
	BusinessPurposeDescription string `json:"business_purpose_description"`
	ExpenseCountry             string `json:"expense_country"`
	ReceiptsCurrency           string `json:"receipts_currency"`
	TotalAmount                string `json:"total_amount"`
	PaymentDate                string `json:"payment_date"`
	PaymentMethod              string `json:"payment_method"`
	NumberOfParticipants       string `json:"number_of_participants"`
	Category                   string `json:"category"`
	Date                       string `json:"date"`
}

// Document is the full report published for one request
type Document struct {
	CompanyID string         `json:"company_id"`
	StartDate string         `json:"start_date"`
	EndDate   string         `json:"end_date"`
	Reports   []Entry        `json:"reports"`
	Wallet    *WalletSummary `json:"wallet_activity,omitempty"`
}

// BuildDocument formats queried expense records into the client report shape
func BuildDocument(req Request, records []ledger.ExpenseRecord, wallet *WalletSummary) Document {
	doc := Document{
		CompanyID: req.CompanyID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Reports:   make([]Entry, 0, len(records)),
		Wallet:    wallet,
	}

	for _, record := range records {
		doc.Reports = append(doc.Reports, Entry{
			Profile:                    record.CompanyID,
			BusinessPurposeDescription: record.BusinessPurposeDescription,
			ExpenseCountry:             record.ExpenseCountry,
			ReceiptsCurrency:           record.ReceiptsCurrency,
			TotalAmount:                record.TotalAmount,
			PaymentDate:                record.PaymentDate,
			PaymentMethod:              record.PaymentMethod,
			NumberOfParticipants:       record.NumberOfParticipants,
			Category:                   record.Category,
			Date:                       record.Date,
		})
	}
	return doc
}
