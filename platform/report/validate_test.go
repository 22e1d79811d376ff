package report

import (
	"net/url"
	"testing"

	platform "github.com/chequebase/chequebase-ai/platform"
	"github.com/stretchr/testify/assert"
)

func TestValidateRequest(t *testing.T) {
	valid := Request{CompanyID: "acme", StartDate: "2024-03-01", EndDate: "2024-03-31"}
	if err := ValidateRequest(valid); err != nil {
		t.Fatalf("valid request was rejected: %v", err)
	}

	// Single-day ranges are allowed
	sameDay := Request{CompanyID: "acme", StartDate: "2024-03-01", EndDate: "2024-03-01"}
	if err := ValidateRequest(sameDay); err != nil {
		t.Fatalf("single-day request was rejected: %v", err)
	}

	invalid := []Request{
		{StartDate: "2024-03-01", EndDate: "2024-03-31"},
		{CompanyID: "acme", EndDate: "2024-03-31"},
		{CompanyID: "acme", StartDate: "2024-03-01"},
		{CompanyID: "acme", StartDate: "03/01/2024", EndDate: "2024-03-31"},
		{CompanyID: "acme", StartDate: "2024-03-01", EndDate: "March 31"},
		{CompanyID: "acme", StartDate: "2024-04-01", EndDate: "2024-03-31"},
	}
	for _, req := range invalid {
		if err := ValidateRequest(req); err == nil {
			t.Fatalf("invalid request was accepted: %+v", req)
		}
	}
}

func TestRequestFromQuery(t *testing.T) {
	query := url.Values{}
	query.Set(platform.CompanyIDParam, "acme")
	query.Set(platform.StartDateParam, "2024-03-01")
	query.Set(platform.EndDateParam, "2024-03-31")

	req := RequestFromQuery(query)
	assert.Equal(t, req.CompanyID, "acme", "company_id was not read from the query")
	assert.Equal(t, req.StartDate, "2024-03-01", "start_date was not read from the query")
	assert.Equal(t, req.EndDate, "2024-03-31", "end_date was not read from the query")
}
