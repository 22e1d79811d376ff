package upload

import (
	"context"
	"encoding/base64"
	"fmt"
	"path"

	"github.com/google/uuid"

	platform "github.com/chequebase/chequebase-ai/platform"
	"github.com/chequebase/chequebase-ai/platform/cloud"
)

const defaultContentType = "application/octet-stream"

const (
	UploadStatusStored = "uploaded"
	UploadStatusFailed = "failed"
)

// FilePayload is one base64-encoded file in a direct upload request
type FilePayload struct {
	Name        string `json:"filename"`
	Content     string `json:"content"`
	ContentType string `json:"content_type"`
}

// UploadResult reports the outcome for one file of a direct upload
type UploadResult struct {
	Name   string `json:"filename"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

/*
DirectUploader stores base64 file payloads straight into the receipt
bucket for clients that cannot use presigned URLs
*/
type DirectUploader struct {
	bucket ReceiptBucket
}

func NewDirectUploader(bucket ReceiptBucket) *DirectUploader {
	return &DirectUploader{bucket: bucket}
}

/*
ensureCompanyFolder creates the zero byte {company_id}/ marker the first
time a company uploads so the directory shows up in bucket listings
*/
func (d *DirectUploader) ensureCompanyFolder(ctx context.Context, companyID string) error {
	prefix := companyID + "/"
	exists, err := d.bucket.PrefixExists(ctx, prefix)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return d.bucket.Put(ctx, prefix, nil, "", "")
}

func (d *DirectUploader) storeFile(ctx context.Context, companyID string, file FilePayload) error {
	data, err := base64.StdEncoding.DecodeString(file.Content)
	if err != nil {
		return fmt.Errorf("Failed to decode file content: %w", err)
	}

	contentType := file.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}

	tags := cloud.EncodeTags(map[string]string{
		platform.UserIDTag:           companyID,
		platform.ProcessingStatusTag: platform.TagStatusUploaded,
	})
	key := path.Join(companyID, file.Name)
	return d.bucket.Put(ctx, key, data, contentType, tags)
}

// UploadAll stores every payload, reporting a per-file outcome list
func (d *DirectUploader) UploadAll(ctx context.Context, companyID string, files []FilePayload) ([]UploadResult, error) {
	if err := d.ensureCompanyFolder(ctx, companyID); err != nil {
		return nil, fmt.Errorf("Failed to prepare company folder for %s: %w", companyID, err)
	}

	results := make([]UploadResult, 0, len(files))
	for _, file := range files {
		result := UploadResult{Name: file.Name, Status: UploadStatusStored}
		if err := d.storeFile(ctx, companyID, file); err != nil {
			result.Status = UploadStatusFailed
			result.Reason = err.Error()
		}
		results = append(results, result)
	}
	return results, nil
}

/*
UploadAnonymous stores a single file under a generated name, keeping only
the original extension. Used when the caller must not control object names
*/
func (d *DirectUploader) UploadAnonymous(ctx context.Context, userID string, file FilePayload) (string, error) {
	if err := d.ensureCompanyFolder(ctx, userID); err != nil {
		return "", fmt.Errorf("Failed to prepare folder for %s: %w", userID, err)
	}

	generated := FilePayload{
		Name:        uuid.New().String() + path.Ext(file.Name),
		Content:     file.Content,
		ContentType: file.ContentType,
	}
	if err := d.storeFile(ctx, userID, generated); err != nil {
		return "", err
	}
	return path.Join(userID, generated.Name), nil
}
