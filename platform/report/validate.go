package report

import (
	"fmt"
	"net/url"
	"time"

	platform "github.com/chequebase/chequebase-ai/platform"
)

// Request identifies one expense report: a company and an inclusive date range
type Request struct {
	CompanyID string `json:"company_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// RequestFromQuery reads a report request out of URL query parameters
func RequestFromQuery(query url.Values) Request {
	return Request{
		CompanyID: query.Get(platform.CompanyIDParam),
		StartDate: query.Get(platform.StartDateParam),
		EndDate:   query.Get(platform.EndDateParam),
	}
}

/*
ValidateRequest checks a report request before it is queued or served.
Violations come back as client-safe messages
*/
func ValidateRequest(req Request) error {
	if req.CompanyID == "" || req.StartDate == "" || req.EndDate == "" {
		return fmt.Errorf("Missing required parameters: 'company_id', 'start_date', or 'end_date'")
	}

	start, err := time.Parse(platform.DateFormat, req.StartDate)
	if err != nil {
		return fmt.Errorf("Invalid 'start_date'. Expected format YYYY-MM-DD")
	}
	end, err := time.Parse(platform.DateFormat, req.EndDate)
	if err != nil {
		return fmt.Errorf("Invalid 'end_date'. Expected format YYYY-MM-DD")
	}

	if start.After(end) {
		return fmt.Errorf("'start_date' cannot be later than 'end_date'")
	}
	return nil
}
