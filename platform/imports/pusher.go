package imports

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"

	platform "github.com/chequebase/chequebase-ai/platform"
)

/*
SocketAPIClient implements ReplyPusher by calling the socket service's push
resource, so workers can answer connections held by another process
*/
type SocketAPIClient struct {
	client  *http.Client
	pushURL string
}

// NewSocketAPIClient creates a SocketAPIClient talking to the socket service at serviceAddr
func NewSocketAPIClient(serviceAddr string) *SocketAPIClient {
	return &SocketAPIClient{
		client:  http.DefaultClient,
		pushURL: serviceAddr + platform.ImportServiceAPIPushResource,
	}
}

// Push delivers a message to the live connection registered under connectionID
func (s *SocketAPIClient) Push(connectionID string, message []byte) error {
	query := url.Values{}
	query.Add(platform.ConnectionIDParam, connectionID)

	err := platform.MakeHTTPRequest(http.MethodPost, s.pushURL, query,
		bytes.NewReader(message), s.client, nil, nil)
	if err != nil {
		return fmt.Errorf("Failed to push message to connection %s: %w", connectionID, err)
	}
	return nil
}
