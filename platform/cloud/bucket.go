package cloud

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObjectTagging(ctx context.Context, in *s3.GetObjectTaggingInput, opts ...func(*s3.Options)) (*s3.GetObjectTaggingOutput, error)
	PutObjectTagging(ctx context.Context, in *s3.PutObjectTaggingInput, opts ...func(*s3.Options)) (*s3.PutObjectTaggingOutput, error)
}

type s3PresignAPI interface {
	PresignPutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

/*
S3Bucket wraps one S3 bucket with the object operations the platform
services need. Service packages narrow this to the subset they consume
*/
type S3Bucket struct {
	api     s3API
	presign s3PresignAPI
	bucket  string
}

// NewS3Bucket binds an S3 client to a single bucket
func NewS3Bucket(client *s3.Client, bucket string) *S3Bucket {
	return &S3Bucket{
		api:     client,
		presign: s3.NewPresignClient(client),
		bucket:  bucket,
	}
}

// Name returns the bound bucket name
func (b *S3Bucket) Name() string {
	return b.bucket
}

// PresignPut creates a presigned PUT URL for key that stays valid for expiry
func (b *S3Bucket) PresignPut(ctx context.Context, key string, expiry time.Duration) (string, error) {
	req, err := b.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign put for key(%s): %w", key, err)
	}
	return req.URL, nil
}

/*
Put writes an object. tags is an url-encoded tag set ("k=v&k2=v2") and may
be empty. contentType may be empty for metadata-only objects like folder markers
*/
func (b *S3Bucket) Put(ctx context.Context, key string, body []byte, contentType string, tags string) error {
	in := &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if tags != "" {
		in.Tagging = aws.String(tags)
	}
	if _, err := b.api.PutObject(ctx, in); err != nil {
		return fmt.Errorf("failed to put object(%s): %w", key, err)
	}
	return nil
}

// Get reads an object body
func (b *S3Bucket) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := b.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object(%s): %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object(%s) body: %w", key, err)
	}
	return data, nil
}

// PrefixExists checks whether any object sits under prefix
func (b *S3Bucket) PrefixExists(ctx context.Context, prefix string) (bool, error) {
	out, err := b.api.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(b.bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return false, fmt.Errorf("failed to list objects under prefix(%s): %w", prefix, err)
	}
	return aws.ToInt32(out.KeyCount) > 0, nil
}

// Tags reads the tag set of an object
func (b *S3Bucket) Tags(ctx context.Context, key string) (map[string]string, error) {
	out, err := b.api.GetObjectTagging(ctx, &s3.GetObjectTaggingInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read tags of object(%s): %w", key, err)
	}

	tags := make(map[string]string)
	for _, tag := range out.TagSet {
		tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
	}
	return tags, nil
}

// SetTag updates a single tag on an object, preserving the rest of the tag set
func (b *S3Bucket) SetTag(ctx context.Context, key string, name string, value string) error {
	tags, err := b.Tags(ctx, key)
	if err != nil {
		return err
	}
	tags[name] = value

	tagSet := make([]types.Tag, 0, len(tags))
	for k, v := range tags {
		tagSet = append(tagSet, types.Tag{Key: aws.String(k), Value: aws.String(v)})
	}
	_, err = b.api.PutObjectTagging(ctx, &s3.PutObjectTaggingInput{
		Bucket:  aws.String(b.bucket),
		Key:     aws.String(key),
		Tagging: &types.Tagging{TagSet: tagSet},
	})
	if err != nil {
		return fmt.Errorf("failed to write tags of object(%s): %w", key, err)
	}
	return nil
}

// EncodeTags builds the url-encoded tag set format Put accepts
func EncodeTags(tags map[string]string) string {
	values := url.Values{}
	for k, v := range tags {
		values.Set(k, v)
	}
	return values.Encode()
}
