package platform

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
)

// RequestBodyDecoder represents a function that can decode a HTTP response body
type RequestBodyDecoder func(io.Reader, interface{}) error

func StringBodyDecoder(in io.Reader, result interface{}) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, in); err != nil {
		return err
	}

	strResult := result.(*string)
	*strResult = buf.String()
	return nil
}

func JSONBodyDecoder(in io.Reader, result interface{}) error {
	if err := json.NewDecoder(in).Decode(result); err != nil {
		return err
	}
	return nil
}

// MakeHTTPRequest is a generic function for making an HTTP request and receiving/decoding a body response
func MakeHTTPRequest(method string, url string, query url.Values, body io.Reader,
	client *http.Client, dec RequestBodyDecoder, result interface{}) error {
	// Create HTTP request
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return err
	}
	req.URL.RawQuery = query.Encode()

	// Perform request and check for failures
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad HTTP status: %s", resp.Status)
	}

	// Unmarshal response body into result
	if result != nil {
		if err = dec(resp.Body, result); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSONResponse encodes data as the JSON body of a 200 response
func WriteJSONResponse(resp http.ResponseWriter, data interface{}) error {
	resp.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(resp).Encode(data); err != nil {
		return err
	}
	return nil
}

// WriteErrorResponse writes a JSON error body with the passed status code
func WriteErrorResponse(resp http.ResponseWriter, code int, msg string) {
	resp.Header().Set("Content-Type", "application/json")
	resp.WriteHeader(code)
	json.NewEncoder(resp).Encode(&ErrorResponse{Error: msg})
}

/*
RecognizedTextKey converts a receipt object key to the key its
recognized text is published under. The text object sits next to the
receipt with the extension swapped for ".txt"
*/
func RecognizedTextKey(key string) string {
	ext := path.Ext(key)
	return strings.TrimSuffix(key, ext) + RecognizedTextSuffix
}

// KeyCompany extracts the company directory from an object key of form {company_id}/...
func KeyCompany(key string) (string, error) {
	parts := strings.SplitN(key, "/", 2)
	if len(parts) < 2 || parts[0] == "" {
		return "", fmt.Errorf("object key %s carries no company directory", key)
	}
	return parts[0], nil
}

// ReportObjectKey builds the bucket key a generated report is published under
func ReportObjectKey(companyID string, date string) string {
	name := fmt.Sprintf("expense_report_%s.json", date)
	return path.Join(companyID, ReportStorageDir, name)
}
