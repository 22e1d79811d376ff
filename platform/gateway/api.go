package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"

	platform "github.com/chequebase/chequebase-ai/platform"
	"github.com/chequebase/chequebase-ai/platform/directory"
	"github.com/chequebase/chequebase-ai/platform/queue"
	"github.com/chequebase/chequebase-ai/platform/report"
)

// Actions gateway operations demand from the caller's role
const (
	ActionFetchReports   = "fetch_expense_reports"
	ActionUploadReceipts = "upload_receipts"
)

const unexpectedErrorMessage = "An unexpected error occurred."

// Authorizer represents the access check run before every gateway operation
type Authorizer interface {
	Authorize(ctx context.Context, headers http.Header, actions ...string) (directory.User, error)
}

// writeAccessError maps an access failure to its response status
func writeAccessError(resp http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, directory.ErrForbidden):
		platform.WriteErrorResponse(resp, http.StatusForbidden, err.Error())
	case errors.Is(err, directory.ErrUnauthorized):
		platform.WriteErrorResponse(resp, http.StatusUnauthorized, err.Error())
	default:
		log.Println(err)
		platform.WriteErrorResponse(resp, http.StatusInternalServerError, unexpectedErrorMessage)
	}
}

/*
createReportHandler builds the handler for report generation requests.
Validated requests are queued for the report worker rather than served
inline; the caller polls the published report object afterwards
*/
func createReportHandler(access Authorizer, requests queue.Sender) http.HandlerFunc {
	return func(resp http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPut {
			platform.WriteErrorResponse(resp, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		if _, err := access.Authorize(req.Context(), req.Header, ActionFetchReports); err != nil {
			writeAccessError(resp, err)
			return
		}

		request := report.RequestFromQuery(req.URL.Query())
		if err := report.ValidateRequest(request); err != nil {
			platform.WriteErrorResponse(resp, http.StatusBadRequest, err.Error())
			return
		}

		body, err := json.Marshal(&request)
		if err != nil {
			log.Println(err)
			platform.WriteErrorResponse(resp, http.StatusInternalServerError, unexpectedErrorMessage)
			return
		}
		if err = requests.Send(req.Context(), string(body)); err != nil {
			log.Printf("Failed to queue report request: %v\n", err)
			platform.WriteErrorResponse(resp, http.StatusInternalServerError, unexpectedErrorMessage)
			return
		}

		platform.WriteJSONResponse(resp, &platform.QueuedResponse{
			Message: "Request successfully queued for processing.",
		})
	}
}

// createUploadHandler builds the handler proxying presign requests to the upload service
func createUploadHandler(access Authorizer, client *http.Client, presignURL string) http.HandlerFunc {
	proxyPresign := createProxyHandler(client, presignURL)
	return func(resp http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			platform.WriteErrorResponse(resp, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		if _, err := access.Authorize(req.Context(), req.Header, ActionUploadReceipts); err != nil {
			writeAccessError(resp, err)
			return
		}
		proxyPresign(resp, req)
	}
}

/*
StartGatewayAPI starts the public edge API. Both operations demand a bearer
token that clears the access rules for their action; report generation is
queued onto 'requests' and receipt upload is proxied to the upload service
at 'uploadAPI'
*/
func StartGatewayAPI(listenAddr string, access Authorizer, requests queue.Sender, uploadAPI string) {
	presignURL, err := url.JoinPath(uploadAPI, platform.UploadServiceAPIPresignResource)
	if err != nil {
		log.Fatal(err)
	}

	gatewayMux := http.NewServeMux()
	gatewayMux.HandleFunc(platform.GatewayReportResource, createReportHandler(access, requests))
	gatewayMux.HandleFunc(platform.GatewayUploadResource,
		createUploadHandler(access, http.DefaultClient, presignURL))
	log.Fatal(http.ListenAndServe(listenAddr, gatewayMux))
}
