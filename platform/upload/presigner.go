package upload

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	platform "github.com/chequebase/chequebase-ai/platform"
)

var (
	// How long issued upload URLs stay valid
	PresignExpiry = time.Hour
)

/*
ReceiptBucket is the slice of the receipt object store the upload
service needs. Satisfied by cloud.S3Bucket
*/
type ReceiptBucket interface {
	PresignPut(ctx context.Context, key string, expiry time.Duration) (string, error)
	Put(ctx context.Context, key string, body []byte, contentType string, tags string) error
	PrefixExists(ctx context.Context, prefix string) (bool, error)
}

// URLPresigner issues presigned PUT URLs for receipt uploads
type URLPresigner struct {
	bucket ReceiptBucket
}

func NewURLPresigner(bucket ReceiptBucket) *URLPresigner {
	return &URLPresigner{bucket: bucket}
}

/*
PresignAll creates one upload URL per filename. Objects are keyed under the
company directory so every later pipeline stage can recover the owner from
the object key
*/
func (u *URLPresigner) PresignAll(ctx context.Context, companyID string, filenames []string) (map[string]platform.PresignedURL, error) {
	urls := make(map[string]platform.PresignedURL)
	for _, name := range filenames {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		key := path.Join(companyID, name)
		url, err := u.bucket.PresignPut(ctx, key, PresignExpiry)
		if err != nil {
			return nil, fmt.Errorf("Failed to presign upload for %s: %w", name, err)
		}
		urls[name] = platform.PresignedURL{URL: url}
	}

	if len(urls) == 0 {
		return nil, fmt.Errorf("Failed to presign uploads. No valid filenames provided")
	}
	return urls, nil
}
