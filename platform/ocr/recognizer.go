package ocr

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"
)

var (
	// How often a running text detection job is checked
	DetectionPollFrequency = 5 * time.Second

	// Max time allocated to a text detection job before it is discarded
	DetectionTimeout = 5 * time.Minute
)

// TextRecognizer represents an object that can read the text off a stored receipt
type TextRecognizer interface {
	RecognizeText(ctx context.Context, bucket string, key string) (string, error)
}

type textractAPI interface {
	StartDocumentTextDetection(ctx context.Context, in *textract.StartDocumentTextDetectionInput,
		opts ...func(*textract.Options)) (*textract.StartDocumentTextDetectionOutput, error)
	GetDocumentTextDetection(ctx context.Context, in *textract.GetDocumentTextDetectionInput,
		opts ...func(*textract.Options)) (*textract.GetDocumentTextDetectionOutput, error)
	DetectDocumentText(ctx context.Context, in *textract.DetectDocumentTextInput,
		opts ...func(*textract.Options)) (*textract.DetectDocumentTextOutput, error)
}

func joinLineBlocks(blocks []types.Block) []string {
	lines := make([]string, 0, len(blocks))
	for _, block := range blocks {
		if block.BlockType == types.BlockTypeLine {
			lines = append(lines, aws.ToString(block.Text))
		}
	}
	return lines
}

/*
TextractRecognizer implements TextRecognizer using asynchronous Textract
document text detection. A detection job is started for the object and
polled until it reaches a terminal state
*/
type TextractRecognizer struct {
	api textractAPI
}

func NewTextractRecognizer(client *textract.Client) *TextractRecognizer {
	return &TextractRecognizer{api: client}
}

func (t *TextractRecognizer) collectJobLines(ctx context.Context, jobID string) ([]string, types.JobStatus, error) {
	lines := make([]string, 0)
	var token *string
	for {
		out, err := t.api.GetDocumentTextDetection(ctx, &textract.GetDocumentTextDetectionInput{
			JobId:     aws.String(jobID),
			NextToken: token,
		})
		if err != nil {
			return nil, "", err
		}
		if out.JobStatus == types.JobStatusInProgress {
			return nil, out.JobStatus, nil
		}

		lines = append(lines, joinLineBlocks(out.Blocks)...)
		if out.NextToken == nil {
			return lines, out.JobStatus, nil
		}
		token = out.NextToken
	}
}

// RecognizeText runs a detection job on the object and returns its line text joined with newlines
func (t *TextractRecognizer) RecognizeText(ctx context.Context, bucket string, key string) (string, error) {
	started, err := t.api.StartDocumentTextDetection(ctx, &textract.StartDocumentTextDetectionInput{
		DocumentLocation: &types.DocumentLocation{
			S3Object: &types.S3Object{
				Bucket: aws.String(bucket),
				Name:   aws.String(key),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("Failed to start text detection for %s: %w", key, err)
	}
	jobID := aws.ToString(started.JobId)

	// Poll for terminal status
	startTime := time.Now()
	for time.Since(startTime) < DetectionTimeout {
		time.Sleep(DetectionPollFrequency)

		lines, status, err := t.collectJobLines(ctx, jobID)
		if err != nil {
			return "", fmt.Errorf("Failed to poll text detection job for %s: %w", key, err)
		}

		switch status {
		case types.JobStatusInProgress:
			continue
		case types.JobStatusFailed:
			return "", fmt.Errorf("Text detection job for %s failed", key)
		default:
			return strings.Join(lines, "\n"), nil
		}
	}
	return "", fmt.Errorf("Text detection job for %s timed out", key)
}

/*
SyncTextractRecognizer implements TextRecognizer using single-call document
text detection. Cheaper for small single-page receipts but rejects documents
that need an asynchronous job
*/
type SyncTextractRecognizer struct {
	api textractAPI
}

func NewSyncTextractRecognizer(client *textract.Client) *SyncTextractRecognizer {
	return &SyncTextractRecognizer{api: client}
}

func (t *SyncTextractRecognizer) RecognizeText(ctx context.Context, bucket string, key string) (string, error) {
	out, err := t.api.DetectDocumentText(ctx, &textract.DetectDocumentTextInput{
		Document: &types.Document{
			S3Object: &types.S3Object{
				Bucket: aws.String(bucket),
				Name:   aws.String(key),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("Failed to detect text for %s: %w", key, err)
	}
	return strings.Join(joinLineBlocks(out.Blocks), "\n"), nil
}
