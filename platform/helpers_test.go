package platform

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeHTTPRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(resp http.ResponseWriter, req *http.Request) {
		if req.URL.Query().Get(CompanyIDParam) != "acme" {
			resp.WriteHeader(http.StatusBadRequest)
			return
		}
		WriteJSONResponse(resp, &QueuedResponse{Message: "ok"})
	}))
	defer server.Close()

	query := url.Values{}
	query.Add(CompanyIDParam, "acme")

	var result QueuedResponse
	err := MakeHTTPRequest(http.MethodGet, server.URL, query, nil, server.Client(), JSONBodyDecoder, &result)
	if err != nil {
		t.Fatalf("Failed to perform request: %v", err)
	}
	assert.Equal(t, result.Message, "ok", "Failed to decode response body")

	// Missing query parameter must surface as a bad status error
	err = MakeHTTPRequest(http.MethodGet, server.URL, url.Values{}, nil, server.Client(), JSONBodyDecoder, &result)
	assert.NotNil(t, err, "Failed to report non-200 response")
}

func TestRecognizedTextKey(t *testing.T) {
	assert.Equal(t, RecognizedTextKey("acme/receipt.pdf"), "acme/receipt.txt", "Failed to swap extension")
	assert.Equal(t, RecognizedTextKey("acme/scan.jpeg"), "acme/scan.txt", "Failed to swap extension")
	assert.Equal(t, RecognizedTextKey("acme/noext"), "acme/noext.txt", "Failed to append suffix")
}

func TestKeyCompany(t *testing.T) {
	company, err := KeyCompany("acme/receipts/receipt.pdf")
	if err != nil {
		t.Fatalf("Failed to extract company: %v", err)
	}
	assert.Equal(t, company, "acme", "Failed to extract company directory")

	if _, err = KeyCompany("orphan.pdf"); err == nil {
		t.Fatalf("Failed to reject key without company directory")
	}
}

func TestReportObjectKey(t *testing.T) {
	key := ReportObjectKey("acme", "2024-01-31")
	assert.Equal(t, key, "acme/expenseReports/expense_report_2024-01-31.json", "Failed to build report key")
}
