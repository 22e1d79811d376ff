package client

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	platform "github.com/chequebase/chequebase-ai/platform"
)

// service name edge API requests are signed for
const signingService = "execute-api"

// presignRequest is the wire shape of an upload presign request
type presignRequest struct {
	CompanyID string `json:"company_id"`
	Filenames string `json:"filenames"`
}

/*
Client calls the public edge API. Requests are signed with AWS Signature v4
using credentials resolved from the standard chain
*/
type Client struct {
	client      *http.Client
	signer      *v4.Signer
	credentials aws.CredentialsProvider
	region      string
	reportURL   string
	uploadURL   string
}

// New returns a *Client calling the edge API served at endpoint
func New(endpoint string, region string, credentials aws.CredentialsProvider) (*Client, error) {
	reportURL, err := url.JoinPath(endpoint, platform.GatewayReportResource)
	if err != nil {
		return nil, fmt.Errorf("Failed to build report resource URL: %w", err)
	}
	uploadURL, err := url.JoinPath(endpoint, platform.GatewayUploadResource)
	if err != nil {
		return nil, fmt.Errorf("Failed to build upload resource URL: %w", err)
	}

	return &Client{
		client:      http.DefaultClient,
		signer:      v4.NewSigner(),
		credentials: credentials,
		region:      region,
		reportURL:   reportURL,
		uploadURL:   uploadURL,
	}, nil
}

// signAndDo signs req over payload and performs it
func (c *Client) signAndDo(ctx context.Context, req *http.Request, payload []byte) (*http.Response, error) {
	credentials, err := c.credentials.Retrieve(ctx)
	if err != nil {
		return nil, fmt.Errorf("Failed to resolve AWS credentials: %w", err)
	}

	payloadHash := sha256.Sum256(payload)
	err = c.signer.SignHTTP(ctx, credentials, req, hex.EncodeToString(payloadHash[:]),
		signingService, c.region, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("Failed to sign request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("bad HTTP status: %s", resp.Status)
	}
	return resp, nil
}

/*
RequestReport asks the platform to generate an expense report for companyID
over the inclusive date range and returns the queuing acknowledgement. The
report is published to the company's report folder once the worker gets to it
*/
func (c *Client) RequestReport(ctx context.Context, companyID string, startDate string, endDate string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.reportURL, nil)
	if err != nil {
		return "", err
	}
	query := url.Values{}
	query.Add(platform.CompanyIDParam, companyID)
	query.Add(platform.StartDateParam, startDate)
	query.Add(platform.EndDateParam, endDate)
	req.URL.RawQuery = query.Encode()
	req.Header.Set("Accept", "application/json")

	resp, err := c.signAndDo(ctx, req, nil)
	if err != nil {
		return "", fmt.Errorf("Failed to request report: %w", err)
	}
	defer resp.Body.Close()

	var queued platform.QueuedResponse
	if err = json.NewDecoder(resp.Body).Decode(&queued); err != nil {
		return "", fmt.Errorf("Failed to decode report response: %w", err)
	}
	return queued.Message, nil
}

// PresignUploads requests one presigned upload URL per filename
func (c *Client) PresignUploads(ctx context.Context, companyID string, filenames []string) (map[string]platform.PresignedURL, error) {
	payload, err := json.Marshal(&presignRequest{
		CompanyID: companyID,
		Filenames: strings.Join(filenames, ","),
	})
	if err != nil {
		return nil, fmt.Errorf("Failed to marshal presign request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.signAndDo(ctx, req, payload)
	if err != nil {
		return nil, fmt.Errorf("Failed to presign uploads: %w", err)
	}
	defer resp.Body.Close()

	var presigned platform.PresignResponse
	if err = json.NewDecoder(resp.Body).Decode(&presigned); err != nil {
		return nil, fmt.Errorf("Failed to decode presign response: %w", err)
	}
	return presigned.PresignedURLs, nil
}

// uploadContentType guesses a file's content type from its extension
func uploadContentType(filename string) string {
	if contentType := mime.TypeByExtension(path.Ext(filename)); contentType != "" {
		return contentType
	}
	return "application/octet-stream"
}

/*
UploadFile puts one file's content to its presigned URL. Presigned URLs carry
their own authorization, so the request is not signed
*/
func (c *Client) UploadFile(ctx context.Context, presignedURL string, filename string, content []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, presignedURL, bytes.NewReader(content))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", uploadContentType(filename))

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("Failed to upload %s: %w", filename, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Failed to upload %s: bad HTTP status: %s", filename, resp.Status)
	}
	return nil
}
