package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	platform "github.com/chequebase/chequebase-ai/platform"
	"github.com/chequebase/chequebase-ai/platform/directory"
	"github.com/chequebase/chequebase-ai/platform/queue"
	"github.com/chequebase/chequebase-ai/platform/report"
	"github.com/stretchr/testify/assert"
)

// mockAuthorizer is a testing mock for Authorizer
type mockAuthorizer struct {
	err     error
	actions []string
}

func (m *mockAuthorizer) Authorize(ctx context.Context, headers http.Header, actions ...string) (directory.User, error) {
	m.actions = append(m.actions, actions...)
	if m.err != nil {
		return directory.User{}, m.err
	}
	return directory.User{ID: "user-1"}, nil
}

func reportRequest(companyID string, startDate string, endDate string) *http.Request {
	target := fmt.Sprintf("%s?company_id=%s&start_date=%s&end_date=%s",
		platform.GatewayReportResource, companyID, startDate, endDate)
	return httptest.NewRequest(http.MethodPut, target, nil)
}

func TestReportHandlerQueuesRequest(t *testing.T) {
	access := &mockAuthorizer{}
	requests := queue.NewMockMessageQueue()
	handler := createReportHandler(access, requests)

	recorder := httptest.NewRecorder()
	handler(recorder, reportRequest("acme", "2024-03-01", "2024-03-31"))

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", recorder.Code)
	}
	var queued platform.QueuedResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &queued); err != nil {
		t.Fatalf("Failed to decode response body: %v", err)
	}
	assert.Equal(t, queued.Message, "Request successfully queued for processing.", "Wrong queued message")
	assert.Equal(t, access.actions, []string{ActionFetchReports}, "Wrong action authorized")

	sent := requests.Sent()
	if len(sent) != 1 {
		t.Fatalf("Expected 1 queued request, got %d", len(sent))
	}
	var request report.Request
	if err := json.Unmarshal([]byte(sent[0]), &request); err != nil {
		t.Fatalf("Queued request is not valid JSON: %v", err)
	}
	assert.Equal(t, request, report.Request{
		CompanyID: "acme",
		StartDate: "2024-03-01",
		EndDate:   "2024-03-31",
	}, "Wrong request queued")
}

func TestReportHandlerRejectsInvalidRequests(t *testing.T) {
	access := &mockAuthorizer{}
	requests := queue.NewMockMessageQueue()
	handler := createReportHandler(access, requests)

	rejections := []struct {
		req     *http.Request
		code    int
		message string
	}{
		{reportRequest("", "2024-03-01", "2024-03-31"), http.StatusBadRequest, "Missing required parameters"},
		{reportRequest("acme", "03/01/2024", "2024-03-31"), http.StatusBadRequest, "Invalid 'start_date'"},
		{reportRequest("acme", "2024-03-31", "2024-03-01"), http.StatusBadRequest, "'start_date' cannot be later than 'end_date'"},
		{httptest.NewRequest(http.MethodGet, platform.GatewayReportResource, nil), http.StatusMethodNotAllowed, "Method not allowed"},
	}
	for _, rejection := range rejections {
		recorder := httptest.NewRecorder()
		handler(recorder, rejection.req)

		if recorder.Code != rejection.code {
			t.Fatalf("Expected status %d, got %d", rejection.code, recorder.Code)
		}
		var failure platform.ErrorResponse
		if err := json.Unmarshal(recorder.Body.Bytes(), &failure); err != nil {
			t.Fatalf("Failed to decode error body: %v", err)
		}
		assert.Contains(t, failure.Error, rejection.message, "Wrong rejection message")
	}
	assert.Equal(t, len(requests.Sent()), 0, "Rejected requests must not be queued")
}

func TestReportHandlerMapsAccessFailures(t *testing.T) {
	failures := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("%w: Token expired", directory.ErrUnauthorized), http.StatusUnauthorized},
		{fmt.Errorf("%w: Access Denied", directory.ErrForbidden), http.StatusForbidden},
		{fmt.Errorf("directory is unreachable"), http.StatusInternalServerError},
	}
	for _, failure := range failures {
		handler := createReportHandler(&mockAuthorizer{err: failure.err}, queue.NewMockMessageQueue())
		recorder := httptest.NewRecorder()
		handler(recorder, reportRequest("acme", "2024-03-01", "2024-03-31"))

		if recorder.Code != failure.code {
			t.Fatalf("Expected status %d for %v, got %d", failure.code, failure.err, recorder.Code)
		}
	}
}

func TestUploadHandlerProxiesPresignRequests(t *testing.T) {
	upload := httptest.NewServer(http.HandlerFunc(
		func(resp http.ResponseWriter, req *http.Request) {
			body, err := io.ReadAll(req.Body)
			if err != nil {
				t.Fatalf("Failed to read proxied body: %v", err)
			}
			assert.Contains(t, string(body), `"company_id":"acme"`, "Proxied request lost its body")

			resp.Header().Set("Content-Type", "application/json")
			resp.WriteHeader(http.StatusOK)
			resp.Write([]byte(`{"company_id":"acme","presigned_urls":{"a.pdf":{"presigned_url":"https://bucket/a.pdf"}}}`))
		}))
	defer upload.Close()

	access := &mockAuthorizer{}
	handler := createUploadHandler(access, http.DefaultClient, upload.URL+platform.UploadServiceAPIPresignResource)

	body := strings.NewReader(`{"company_id":"acme","filenames":"a.pdf"}`)
	recorder := httptest.NewRecorder()
	handler(recorder, httptest.NewRequest(http.MethodPost, platform.GatewayUploadResource, body))

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", recorder.Code)
	}
	assert.Equal(t, recorder.Header().Get("Content-Type"), "application/json", "Content type was not forwarded")
	assert.Equal(t, access.actions, []string{ActionUploadReceipts}, "Wrong action authorized")

	var presigned platform.PresignResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &presigned); err != nil {
		t.Fatalf("Failed to decode proxied response: %v", err)
	}
	assert.Equal(t, presigned.PresignedURLs["a.pdf"].URL, "https://bucket/a.pdf", "Proxied response lost its body")
}

func TestUploadHandlerRejectsUnauthorizedCallers(t *testing.T) {
	proxied := false
	upload := httptest.NewServer(http.HandlerFunc(
		func(resp http.ResponseWriter, req *http.Request) {
			proxied = true
		}))
	defer upload.Close()

	access := &mockAuthorizer{err: fmt.Errorf("%w: Invalid token", directory.ErrUnauthorized)}
	handler := createUploadHandler(access, http.DefaultClient, upload.URL+platform.UploadServiceAPIPresignResource)

	recorder := httptest.NewRecorder()
	handler(recorder, httptest.NewRequest(http.MethodPost, platform.GatewayUploadResource, nil))

	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("Expected status 401, got %d", recorder.Code)
	}
	assert.Equal(t, proxied, false, "Unauthorized requests must not reach the upload service")
}

func TestProxyHandlerForwardsBackendStatus(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(
		func(resp http.ResponseWriter, req *http.Request) {
			assert.Equal(t, req.URL.Query().Get("company_id"), "acme", "Query parameters were not forwarded")
			resp.WriteHeader(http.StatusBadRequest)
			resp.Write([]byte(`{"error":"Missing required parameters: company_id, filenames"}`))
		}))
	defer backend.Close()

	handler := createProxyHandler(http.DefaultClient, backend.URL)
	recorder := httptest.NewRecorder()
	handler(recorder, httptest.NewRequest(http.MethodPost, "/proxy?company_id=acme", strings.NewReader("{}")))

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("Expected backend status to be forwarded, got %d", recorder.Code)
	}
	assert.Contains(t, recorder.Body.String(), "Missing required parameters", "Backend body was not forwarded")
}
