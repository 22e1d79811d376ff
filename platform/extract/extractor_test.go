package extract

import (
	"context"
	"fmt"
	"strings"
	"testing"

	platform "github.com/chequebase/chequebase-ai/platform"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
)

// mockCompletionAPI is a testing mock for completionAPI
type mockCompletionAPI struct {
	reply      string
	fail       bool
	lastParams openai.ChatCompletionNewParams
	calls      int
}

func (m *mockCompletionAPI) New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error) {
	m.lastParams = body
	m.calls++
	if m.fail {
		return nil, fmt.Errorf("completion backend unavailable")
	}

	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: m.reply}},
		},
	}, nil
}

func TestBuildExtractionPrompt(t *testing.T) {
	prompt := buildExtractionPrompt("receipt.txt", "CAFE MILANO\nTOTAL 12.00 EUR")

	if !strings.HasPrefix(prompt, "Human:") {
		t.Fatal("prompt is missing the Human framing")
	}
	if !strings.HasSuffix(prompt, "Assistant:") {
		t.Fatal("prompt is missing the Assistant framing")
	}
	for _, field := range platform.ExpenseFieldNames {
		if !strings.Contains(prompt, "\""+field+"\"") {
			t.Fatalf("prompt template is missing field %s", field)
		}
	}
	assert.Contains(t, prompt, "File Name: receipt.txt", "prompt does not name the file")
	assert.Contains(t, prompt, "TOTAL 12.00 EUR", "prompt does not carry the receipt text")
	assert.Contains(t, prompt, "always JSON", "prompt is missing the closing instruction")
}

func TestSalvageJSON(t *testing.T) {
	wrapped := "Sure, here is the report:\n```json\n{\"Category\": \"Meals\"}\n```\nLet me know if you need more."
	raw, err := salvageJSON(wrapped)
	if err != nil {
		t.Fatalf("failed to salvage wrapped JSON: %v", err)
	}
	assert.Equal(t, raw, "{\"Category\": \"Meals\"}", "salvage returned the wrong slice")

	if _, err = salvageJSON("I cannot read this receipt."); err == nil {
		t.Fatal("expected an error for a completion with no JSON object")
	}
}

func TestOpenAIExtractorParsesWrappedCompletion(t *testing.T) {
	api := &mockCompletionAPI{
		reply: "Here you go:\n{\n  \"Profile\": \"Jane Doe\",\n  \"Total_amount\": \"12.00\",\n  \"Payment_date\": \"2024-03-05\",\n  \"Category\": \"Meals\"\n}",
	}
	extractor := &OpenAIExtractor{api: api, model: DefaultModel}

	fields, err := extractor.ExtractFields(context.Background(), "receipt.txt", "CAFE MILANO")
	if err != nil {
		t.Fatalf("failed to extract fields: %v", err)
	}

	assert.Equal(t, fields.Profile, "Jane Doe", "wrong profile extracted")
	assert.Equal(t, fields.TotalAmount, "12.00", "wrong total extracted")
	assert.Equal(t, fields.Category, "Meals", "wrong category extracted")

	assert.Equal(t, api.lastParams.Model, openai.ChatModelGPT3_5Turbo, "wrong model requested")
	assert.Equal(t, api.lastParams.MaxTokens.Value, int64(4096), "wrong token limit requested")
	if len(api.lastParams.Messages) != 2 {
		t.Fatalf("expected system and user messages, got %d", len(api.lastParams.Messages))
	}
}

func TestOpenAIExtractorRejectsEmptyCompletion(t *testing.T) {
	extractor := &OpenAIExtractor{api: &mockCompletionAPI{reply: ""}, model: DefaultModel}
	if _, err := extractor.ExtractFields(context.Background(), "receipt.txt", "CAFE"); err == nil {
		t.Fatal("expected an error for an empty completion")
	}
}

func TestOpenAIExtractorSurfacesBackendFailure(t *testing.T) {
	extractor := &OpenAIExtractor{api: &mockCompletionAPI{fail: true}, model: DefaultModel}
	if _, err := extractor.ExtractFields(context.Background(), "receipt.txt", "CAFE"); err == nil {
		t.Fatal("expected an error when the completion call fails")
	}
}
